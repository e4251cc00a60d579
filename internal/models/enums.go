package models

// LifecycleState models soft deletion explicitly instead of a scattered
// boolean flag. Every aggregate computation filters on it the same way.
type LifecycleState string

const (
	StateActive      LifecycleState = "active"
	StateDeactivated LifecycleState = "deactivated"
)

// Valid reports whether the state is one of the closed set of values.
func (s LifecycleState) Valid() bool {
	return s == StateActive || s == StateDeactivated
}

// IsActive reports whether the entity is still live.
func (s LifecycleState) IsActive() bool {
	return s == StateActive
}

// RecordStatus is the completion status of a collection record.
// Only StatusCompleted records can satisfy a tax obligation.
type RecordStatus string

const (
	StatusPending   RecordStatus = "pending"
	StatusCompleted RecordStatus = "completed"
	StatusFailed    RecordStatus = "failed"
	StatusCancelled RecordStatus = "cancelled"
)

// Valid reports whether the status is one of the closed set of values.
func (s RecordStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// PaymentMethod is how a collection was paid.
type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "cash"
	PaymentMobileMoney PaymentMethod = "mobile_money"
	PaymentCard        PaymentMethod = "card"
)

// Valid reports whether the payment method is one of the closed set of values.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentMobileMoney, PaymentCard:
		return true
	}
	return false
}

// Periodicity is how often a tax recurs.
type Periodicity string

const (
	PeriodDaily     Periodicity = "daily"
	PeriodWeekly    Periodicity = "weekly"
	PeriodMonthly   Periodicity = "monthly"
	PeriodQuarterly Periodicity = "quarterly"
)

// Valid reports whether the periodicity is one of the closed set of values.
func (p Periodicity) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodQuarterly:
		return true
	}
	return false
}

// ZoneKind classifies a geographic zone polygon.
type ZoneKind string

const (
	ZoneKindNeighborhood ZoneKind = "quartier"
	ZoneKindDistrict     ZoneKind = "arrondissement"
	ZoneKindSector       ZoneKind = "secteur"
)

// Valid reports whether the zone kind is one of the closed set of values.
func (k ZoneKind) Valid() bool {
	switch k {
	case ZoneKindNeighborhood, ZoneKindDistrict, ZoneKindSector:
		return true
	}
	return false
}

// ConnectionState is the technical state of a collector device.
type ConnectionState string

const (
	CollectorConnected    ConnectionState = "connected"
	CollectorDisconnected ConnectionState = "disconnected"
)

// Valid reports whether the connection state is one of the closed set of values.
func (s ConnectionState) Valid() bool {
	return s == CollectorConnected || s == CollectorDisconnected
}
