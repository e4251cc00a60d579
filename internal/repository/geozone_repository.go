package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/BebaneMarina/taxe-municipale/internal/database"
	"github.com/BebaneMarina/taxe-municipale/internal/models"
)

// GeoZoneRepository defines data access for polygon-based geographic
// zones. Containment queries run on PostGIS; zones with NULL geometry
// are excluded from every spatial candidate set.
type GeoZoneRepository interface {
	// FindActive returns all active geographic zones, geometry included,
	// ordered by id.
	FindActive(ctx context.Context) ([]models.GeographicZone, error)

	// FindContainingPoint returns the first active zone with geometry
	// containing the point, scanning by zone id ascending so overlapping
	// zones resolve deterministically. Returns nil, nil when no zone
	// contains the point. kind optionally narrows by zone kind.
	FindContainingPoint(ctx context.Context, lat, lng float64, kind *models.ZoneKind) (*models.GeographicZone, error)

	// CountCovered returns the number of active zones that carry geometry.
	CountCovered(ctx context.Context) (int, error)

	// FindUncovered returns active zones with geometry containing no
	// active geolocated taxpayer.
	FindUncovered(ctx context.Context, kind *models.ZoneKind) ([]models.GeographicZone, error)
}

type geoZoneRepository struct {
	db *database.Database
}

// NewGeoZoneRepository creates a new instance of GeoZoneRepository.
func NewGeoZoneRepository(db *database.Database) GeoZoneRepository {
	return &geoZoneRepository{db: db}
}

const geoZoneColumns = `
	id,
	name,
	kind,
	code,
	neighborhood_id,
	ST_AsGeoJSON(geom) AS geometry,
	state,
	created_at,
	updated_at
`

func scanGeoZone(row pgx.Row) (*models.GeographicZone, error) {
	var z models.GeographicZone
	var geomJSON []byte

	err := row.Scan(
		&z.ID,
		&z.Name,
		&z.Kind,
		&z.Code,
		&z.NeighborhoodID,
		&geomJSON,
		&z.State,
		&z.CreatedAt,
		&z.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if geomJSON != nil {
		if err := z.Geom.Scan(geomJSON); err != nil {
			return nil, fmt.Errorf("failed to parse geometry for zone %d: %w", z.ID, err)
		}
	}
	if err := checkEnum("geographic zone kind", z.Kind); err != nil {
		return nil, err
	}
	if err := checkEnum("geographic zone state", z.State); err != nil {
		return nil, err
	}

	return &z, nil
}

func (r *geoZoneRepository) FindActive(ctx context.Context) ([]models.GeographicZone, error) {
	query := `
		SELECT ` + geoZoneColumns + `
		FROM geographic_zones
		WHERE state = 'active'
		ORDER BY id
	`
	return r.queryZones(ctx, query)
}

// FindContainingPoint performs the point-in-polygon lookup with
// ST_Contains. PostGIS expects (longitude, latitude) order.
func (r *geoZoneRepository) FindContainingPoint(ctx context.Context, lat, lng float64, kind *models.ZoneKind) (*models.GeographicZone, error) {
	query := `
		SELECT ` + geoZoneColumns + `
		FROM geographic_zones
		WHERE state = 'active'
		  AND geom IS NOT NULL
		  AND ST_Contains(geom, ST_SetSRID(ST_MakePoint($1, $2), 4326))
	`
	args := []interface{}{lng, lat}
	if kind != nil {
		args = append(args, *kind)
		query += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	query += `
		ORDER BY id
		LIMIT 1
	`

	zone, err := scanGeoZone(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query zone at point (lat=%f, lng=%f): %w", lat, lng, err)
	}

	return zone, nil
}

func (r *geoZoneRepository) CountCovered(ctx context.Context) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM geographic_zones
		WHERE state = 'active'
		  AND geom IS NOT NULL
	`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count covered zones: %w", err)
	}
	return count, nil
}

// FindUncovered joins taxpayers spatially and keeps zones whose contained
// taxpayer count is zero.
func (r *geoZoneRepository) FindUncovered(ctx context.Context, kind *models.ZoneKind) ([]models.GeographicZone, error) {
	query := `
		SELECT ` + geoZoneColumns + `
		FROM geographic_zones gz
		WHERE gz.state = 'active'
		  AND gz.geom IS NOT NULL
		  AND NOT EXISTS (
			SELECT 1
			FROM taxpayers t
			WHERE t.state = 'active'
			  AND t.latitude IS NOT NULL
			  AND t.longitude IS NOT NULL
			  AND ST_Contains(gz.geom, ST_SetSRID(ST_MakePoint(t.longitude, t.latitude), 4326))
		  )
	`
	args := []interface{}{}
	if kind != nil {
		args = append(args, *kind)
		query += fmt.Sprintf(" AND gz.kind = $%d", len(args))
	}
	query += " ORDER BY gz.id"

	return r.queryZones(ctx, query, args...)
}

func (r *geoZoneRepository) queryZones(ctx context.Context, query string, args ...interface{}) ([]models.GeographicZone, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query geographic zones: %w", err)
	}
	defer rows.Close()

	zones := []models.GeographicZone{}
	for rows.Next() {
		z, err := scanGeoZone(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan geographic zone row: %w", err)
		}
		zones = append(zones, *z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating geographic zone rows: %w", err)
	}

	return zones, nil
}
