package models

import (
	"testing"
	"time"
)

func TestCollectionRecordSettles(t *testing.T) {
	tests := []struct {
		name   string
		record CollectionRecord
		want   bool
	}{
		{"completed", CollectionRecord{Status: StatusCompleted}, true},
		{"completed but cancelled", CollectionRecord{Status: StatusCompleted, Cancelled: true}, false},
		{"pending", CollectionRecord{Status: StatusPending}, false},
		{"failed", CollectionRecord{Status: StatusFailed}, false},
		{"cancelled status", CollectionRecord{Status: StatusCancelled}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.Settles(); got != tt.want {
				t.Errorf("Settles() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTaxAssignmentCurrentAt(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	past := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	expired := time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		assignment TaxAssignment
		want       bool
	}{
		{
			name:       "open ended active",
			assignment: TaxAssignment{State: StateActive, StartDate: past},
			want:       true,
		},
		{
			name:       "deactivated",
			assignment: TaxAssignment{State: StateDeactivated, StartDate: past},
			want:       false,
		},
		{
			name:       "not started yet",
			assignment: TaxAssignment{State: StateActive, StartDate: future},
			want:       false,
		},
		{
			name:       "already ended",
			assignment: TaxAssignment{State: StateActive, StartDate: past, EndDate: &expired},
			want:       false,
		},
		{
			name:       "ends later",
			assignment: TaxAssignment{State: StateActive, StartDate: past, EndDate: &future},
			want:       true,
		},
		{
			name:       "starts exactly now",
			assignment: TaxAssignment{State: StateActive, StartDate: now},
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.assignment.CurrentAt(now); got != tt.want {
				t.Errorf("CurrentAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTaxpayerHasCoordinates(t *testing.T) {
	lat, lng := 0.39, 9.45

	full := Taxpayer{Latitude: &lat, Longitude: &lng}
	if !full.HasCoordinates() {
		t.Error("expected HasCoordinates() = true")
	}

	half := Taxpayer{Latitude: &lat}
	if half.HasCoordinates() {
		t.Error("latitude alone must not count as a position")
	}

	empty := Taxpayer{}
	if empty.HasCoordinates() {
		t.Error("expected HasCoordinates() = false for empty taxpayer")
	}
}

func TestNeighborhoodHasReferencePoint(t *testing.T) {
	lat, lng := 0.39, 9.45

	n := Neighborhood{RefLatitude: &lat, RefLongitude: &lng}
	if !n.HasReferencePoint() {
		t.Error("expected HasReferencePoint() = true")
	}
	lngOnly := Neighborhood{RefLongitude: &lng}
	if lngOnly.HasReferencePoint() {
		t.Error("longitude alone must not count as a reference point")
	}
}

func TestEnumValidation(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
		check func() bool
	}{
		{"active state", true, LifecycleState("active").Valid},
		{"deactivated state", true, LifecycleState("deactivated").Valid},
		{"unknown state", false, LifecycleState("deleted").Valid},
		{"completed status", true, RecordStatus("completed").Valid},
		{"unknown status", false, RecordStatus("done").Valid},
		{"mobile money", true, PaymentMethod("mobile_money").Valid},
		{"unknown method", false, PaymentMethod("cheque").Valid},
		{"monthly periodicity", true, Periodicity("monthly").Valid},
		{"unknown periodicity", false, Periodicity("yearly").Valid},
		{"quartier kind", true, ZoneKind("quartier").Valid},
		{"unknown kind", false, ZoneKind("commune").Valid},
		{"connected", true, ConnectionState("connected").Valid},
		{"unknown connection", false, ConnectionState("offline").Valid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
		})
	}
}
