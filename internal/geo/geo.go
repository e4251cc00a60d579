// Package geo holds the pure geometric predicates used by the map and
// statistics layers: point-in-polygon containment over GeoJSON zone
// geometry and great-circle distance between WGS84 coordinates. PostGIS
// answers the same questions store-side; these run over already-fetched
// geometry with no round trip.
package geo

import (
	"math"

	"github.com/BebaneMarina/taxe-municipale/internal/models"
)

// Point is a geographic coordinate in SRID 4326 (WGS84).
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// earthRadiusMeters is the mean Earth radius used for haversine distance.
const earthRadiusMeters = 6371000.0

// DistanceMeters returns the great-circle distance between two points in
// meters, computed with the haversine formula. At municipal scale this
// agrees with PostGIS geography distance to well under a meter.
func DistanceMeters(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// Contains reports whether the multipolygon contains the point. An empty
// geometry never contains any point. Holes (interior rings) are
// respected: a point inside a hole is not contained.
func Contains(geom models.MultiPolygon, p Point) bool {
	if geom.IsEmpty() {
		return false
	}
	for _, polygon := range geom.Coordinates {
		if polygonContains(polygon, p) {
			return true
		}
	}
	return false
}

// ContainsPolygon reports whether a single polygon (outer ring plus
// optional holes) contains the point.
func ContainsPolygon(geom models.Polygon, p Point) bool {
	if geom.IsEmpty() {
		return false
	}
	return polygonContains(geom.Coordinates, p)
}

func polygonContains(rings [][][2]float64, p Point) bool {
	if len(rings) == 0 {
		return false
	}
	if !ringContains(rings[0], p) {
		return false
	}
	// Interior rings are holes.
	for _, hole := range rings[1:] {
		if ringContains(hole, p) {
			return false
		}
	}
	return true
}

// ringContains runs an even-odd ray cast against a linear ring.
// Coordinates follow the GeoJSON [lon, lat] order.
func ringContains(ring [][2]float64, p Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}

	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]

		if (yi > p.Lat) != (yj > p.Lat) {
			xCross := (xj-xi)*(p.Lat-yi)/(yj-yi) + xi
			if p.Lng < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// ZoneCandidate pairs a zone identifier with its geometry for containment
// scanning.
type ZoneCandidate struct {
	Geom models.MultiPolygon
	ID   int64
}

// FirstContaining scans candidates in ascending zone-id order and returns
// the id of the first zone containing the point. Zones without geometry
// are skipped, never matched. When overlapping zones both contain the
// point the lowest id wins; the tie-break is deterministic but arbitrary,
// a documented limitation of overlapping zone data.
func FirstContaining(candidates []ZoneCandidate, p Point) (int64, bool) {
	best := int64(0)
	found := false
	for _, c := range candidates {
		if c.Geom.IsEmpty() {
			continue
		}
		if !Contains(c.Geom, p) {
			continue
		}
		if !found || c.ID < best {
			best = c.ID
			found = true
		}
	}
	return best, found
}
