package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Polygon is a PostGIS Polygon geometry carried as GeoJSON coordinates:
// [rings][points][lon,lat]. All zone geometry uses SRID 4326 (WGS84).
type Polygon struct {
	Coordinates [][][2]float64
	SRID        int
}

// IsEmpty reports whether the polygon carries no geometry. An empty
// polygon never contains any point and must be excluded from candidate
// sets, not treated as match-everything.
func (p Polygon) IsEmpty() bool {
	return len(p.Coordinates) == 0
}

// Scan implements sql.Scanner for reading geometry selected with
// ST_AsGeoJSON. A NULL column leaves the polygon empty.
func (p *Polygon) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan Polygon: expected []byte, got %T", value)
	}

	var geom struct {
		Type        string         `json:"type"`
		Coordinates [][][2]float64 `json:"coordinates"`
	}
	if err := json.Unmarshal(bytes, &geom); err != nil {
		return fmt.Errorf("failed to unmarshal polygon geometry: %w", err)
	}
	if geom.Type != "Polygon" {
		return fmt.Errorf("expected Polygon type, got %s", geom.Type)
	}

	p.Coordinates = geom.Coordinates
	p.SRID = 4326

	return nil
}

// Value implements driver.Valuer. It returns a GeoJSON string for use
// with ST_GeomFromGeoJSON, or nil for an empty polygon.
func (p Polygon) Value() (driver.Value, error) {
	if p.IsEmpty() {
		return nil, nil
	}

	geoJSON, err := json.Marshal(map[string]interface{}{
		"type":        "Polygon",
		"coordinates": p.Coordinates,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal polygon to GeoJSON: %w", err)
	}

	return string(geoJSON), nil
}

// MarshalJSON renders the polygon as a GeoJSON geometry object.
func (p Polygon) MarshalJSON() ([]byte, error) {
	geom := struct {
		Type        string         `json:"type"`
		Coordinates [][][2]float64 `json:"coordinates"`
	}{
		Type:        "Polygon",
		Coordinates: p.Coordinates,
	}
	return json.Marshal(geom)
}

// UnmarshalJSON parses a GeoJSON Polygon, as submitted when a geographic
// zone is created or updated from imported GeoJSON features.
func (p *Polygon) UnmarshalJSON(data []byte) error {
	var geom struct {
		Type        string         `json:"type"`
		Coordinates [][][2]float64 `json:"coordinates"`
	}
	if err := json.Unmarshal(data, &geom); err != nil {
		return fmt.Errorf("failed to unmarshal polygon: %w", err)
	}
	if geom.Type != "" && geom.Type != "Polygon" {
		return fmt.Errorf("expected Polygon type, got %s", geom.Type)
	}

	p.Coordinates = geom.Coordinates
	p.SRID = 4326

	return nil
}

// MultiPolygon is a PostGIS MultiPolygon geometry carried as GeoJSON
// coordinates: [polygons][rings][points][lon,lat]. Geographic zones that
// consist of several disjoint areas use this form.
type MultiPolygon struct {
	Coordinates [][][][2]float64
	SRID        int
}

// IsEmpty reports whether the multipolygon carries no geometry.
func (mp MultiPolygon) IsEmpty() bool {
	return len(mp.Coordinates) == 0
}

// Scan implements sql.Scanner for reading geometry selected with
// ST_AsGeoJSON. A NULL column leaves the multipolygon empty. Plain
// polygons are promoted to single-element multipolygons so both geometry
// forms flow through the same zone type.
func (mp *MultiPolygon) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan MultiPolygon: expected []byte, got %T", value)
	}

	var geom struct {
		Type        string           `json:"type"`
		Coordinates [][][][2]float64 `json:"coordinates"`
	}
	if err := json.Unmarshal(bytes, &geom); err != nil {
		return fmt.Errorf("failed to unmarshal multipolygon geometry: %w", err)
	}

	switch geom.Type {
	case "MultiPolygon":
		mp.Coordinates = geom.Coordinates
	case "Polygon":
		var poly struct {
			Coordinates [][][2]float64 `json:"coordinates"`
		}
		if err := json.Unmarshal(bytes, &poly); err != nil {
			return fmt.Errorf("failed to unmarshal polygon geometry: %w", err)
		}
		mp.Coordinates = [][][][2]float64{poly.Coordinates}
	default:
		return fmt.Errorf("expected MultiPolygon or Polygon type, got %s", geom.Type)
	}

	mp.SRID = 4326

	return nil
}

// Value implements driver.Valuer. It returns a GeoJSON string for use
// with ST_GeomFromGeoJSON, or nil for an empty multipolygon.
func (mp MultiPolygon) Value() (driver.Value, error) {
	if mp.IsEmpty() {
		return nil, nil
	}

	geoJSON, err := json.Marshal(map[string]interface{}{
		"type":        "MultiPolygon",
		"coordinates": mp.Coordinates,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal multipolygon to GeoJSON: %w", err)
	}

	return string(geoJSON), nil
}

// MarshalJSON renders the multipolygon as a GeoJSON geometry object.
func (mp MultiPolygon) MarshalJSON() ([]byte, error) {
	geom := struct {
		Type        string           `json:"type"`
		Coordinates [][][][2]float64 `json:"coordinates"`
	}{
		Type:        "MultiPolygon",
		Coordinates: mp.Coordinates,
	}
	return json.Marshal(geom)
}

// UnmarshalJSON parses a GeoJSON MultiPolygon.
func (mp *MultiPolygon) UnmarshalJSON(data []byte) error {
	var geom struct {
		Type        string           `json:"type"`
		Coordinates [][][][2]float64 `json:"coordinates"`
	}
	if err := json.Unmarshal(data, &geom); err != nil {
		return fmt.Errorf("failed to unmarshal multipolygon: %w", err)
	}
	if geom.Type != "" && geom.Type != "MultiPolygon" {
		return fmt.Errorf("expected MultiPolygon type, got %s", geom.Type)
	}

	mp.Coordinates = geom.Coordinates
	mp.SRID = 4326

	return nil
}
