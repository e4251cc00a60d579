package models

import (
	"time"
)

// Zone is a named administrative grouping of neighborhoods. Zones carry
// no geometry of their own; polygon-based containment lives on
// GeographicZone, which coexists with this hierarchy.
type Zone struct {
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	Name        string         `json:"name"`
	Code        string         `json:"code"`
	Description *string        `json:"description,omitempty"`
	State       LifecycleState `json:"state"`
	ID          int64          `json:"id"`
}

// Neighborhood (quartier) belongs to exactly one zone and carries a
// reference point used as the fallback display location for taxpayers
// whose own GPS capture is missing or implausible.
type Neighborhood struct {
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	Name         string         `json:"name"`
	Code         string         `json:"code"`
	Description  *string        `json:"description,omitempty"`
	RefLatitude  *float64       `json:"refLatitude,omitempty"`
	RefLongitude *float64       `json:"refLongitude,omitempty"`
	State        LifecycleState `json:"state"`
	ID           int64          `json:"id"`
	ZoneID       int64          `json:"zoneId"`
}

// HasReferencePoint reports whether the neighborhood carries a fallback
// coordinate.
func (n *Neighborhood) HasReferencePoint() bool {
	return n.RefLatitude != nil && n.RefLongitude != nil
}

// GeographicZone is a polygon-based fiscal zone used for point-in-polygon
// queries, independent of the Zone→Neighborhood hierarchy. Geometry may
// be absent; a zone without geometry never contains any point.
type GeographicZone struct {
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	Name           string         `json:"name"`
	Kind           ZoneKind       `json:"kind"`
	Code           *string        `json:"code,omitempty"`
	Geom           MultiPolygon   `json:"geometry"`
	NeighborhoodID *int64         `json:"neighborhoodId,omitempty"`
	State          LifecycleState `json:"state"`
	ID             int64          `json:"id"`
}
