package models

import (
	"time"
)

// Taxpayer is a registered taxpayer (contribuable). Each taxpayer belongs
// to exactly one neighborhood and one collector. Taxpayers are never hard
// deleted; deactivation flips State to StateDeactivated.
// All nullable columns use pointers to distinguish zero values from NULL.
type Taxpayer struct {
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	LastName           string         `json:"lastName"`
	FirstName          *string        `json:"firstName,omitempty"`
	Phone              string         `json:"phone"`
	Email              *string        `json:"email,omitempty"`
	Address            *string        `json:"address,omitempty"`
	ActivityName       *string        `json:"activityName,omitempty"`
	PhotoURL           *string        `json:"photoUrl,omitempty"`
	RegistrationNumber *string        `json:"registrationNumber,omitempty"`
	Latitude           *float64       `json:"latitude,omitempty"`
	Longitude          *float64       `json:"longitude,omitempty"`
	State              LifecycleState `json:"state"`
	ID                 int64          `json:"id"`
	TaxpayerTypeID     int64          `json:"taxpayerTypeId"`
	NeighborhoodID     int64          `json:"neighborhoodId"`
	CollectorID        int64          `json:"collectorId"`
}

// HasCoordinates reports whether the taxpayer carries a GPS position.
func (t *Taxpayer) HasCoordinates() bool {
	return t.Latitude != nil && t.Longitude != nil
}
