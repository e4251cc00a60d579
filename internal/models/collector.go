package models

import (
	"time"
)

// Collector is a field agent who owns a portfolio of taxpayers. The GPS
// position is the last reported location and is used only for map
// display; it plays no part in compliance computation.
type Collector struct {
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	LastConnectedAt  *time.Time      `json:"lastConnectedAt,omitempty"`
	DisconnectedAt   *time.Time      `json:"disconnectedAt,omitempty"`
	LastName         string          `json:"lastName"`
	FirstName        string          `json:"firstName"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone"`
	RegistrationCode string          `json:"registrationCode"`
	Latitude         *float64        `json:"latitude,omitempty"`
	Longitude        *float64        `json:"longitude,omitempty"`
	Connection       ConnectionState `json:"connection"`
	State            LifecycleState  `json:"state"`
	ZoneID           *int64          `json:"zoneId,omitempty"`
	ID               int64           `json:"id"`
}

// HasCoordinates reports whether the collector has a known position.
func (c *Collector) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}
