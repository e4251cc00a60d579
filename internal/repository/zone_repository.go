package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/BebaneMarina/taxe-municipale/internal/database"
	"github.com/BebaneMarina/taxe-municipale/internal/models"
)

// ZoneRepository defines data access for administrative zones.
type ZoneRepository interface {
	// FindActive returns all active zones ordered by id.
	FindActive(ctx context.Context) ([]models.Zone, error)
}

// NeighborhoodRepository defines data access for neighborhoods.
type NeighborhoodRepository interface {
	// FindActive returns all active neighborhoods ordered by id.
	FindActive(ctx context.Context) ([]models.Neighborhood, error)

	// FindByZone returns the active neighborhoods of one zone.
	FindByZone(ctx context.Context, zoneID int64) ([]models.Neighborhood, error)
}

type zoneRepository struct {
	db *database.Database
}

// NewZoneRepository creates a new instance of ZoneRepository.
func NewZoneRepository(db *database.Database) ZoneRepository {
	return &zoneRepository{db: db}
}

func (r *zoneRepository) FindActive(ctx context.Context) ([]models.Zone, error) {
	query := `
		SELECT id, name, code, description, state, created_at, updated_at
		FROM zones
		WHERE state = 'active'
		ORDER BY id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active zones: %w", err)
	}
	defer rows.Close()

	zones := []models.Zone{}
	for rows.Next() {
		var z models.Zone
		if err := rows.Scan(&z.ID, &z.Name, &z.Code, &z.Description, &z.State, &z.CreatedAt, &z.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan zone row: %w", err)
		}
		if err := checkEnum("zone state", z.State); err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating zone rows: %w", err)
	}

	return zones, nil
}

type neighborhoodRepository struct {
	db *database.Database
}

// NewNeighborhoodRepository creates a new instance of NeighborhoodRepository.
func NewNeighborhoodRepository(db *database.Database) NeighborhoodRepository {
	return &neighborhoodRepository{db: db}
}

const neighborhoodColumns = `
	id,
	name,
	code,
	description,
	zone_id,
	ref_latitude,
	ref_longitude,
	state,
	created_at,
	updated_at
`

func scanNeighborhood(row pgx.Row) (*models.Neighborhood, error) {
	var n models.Neighborhood
	err := row.Scan(
		&n.ID,
		&n.Name,
		&n.Code,
		&n.Description,
		&n.ZoneID,
		&n.RefLatitude,
		&n.RefLongitude,
		&n.State,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := checkEnum("neighborhood state", n.State); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *neighborhoodRepository) FindActive(ctx context.Context) ([]models.Neighborhood, error) {
	query := `
		SELECT ` + neighborhoodColumns + `
		FROM neighborhoods
		WHERE state = 'active'
		ORDER BY id
	`
	return r.queryNeighborhoods(ctx, query)
}

func (r *neighborhoodRepository) FindByZone(ctx context.Context, zoneID int64) ([]models.Neighborhood, error) {
	query := `
		SELECT ` + neighborhoodColumns + `
		FROM neighborhoods
		WHERE state = 'active'
		  AND zone_id = $1
		ORDER BY id
	`
	return r.queryNeighborhoods(ctx, query, zoneID)
}

func (r *neighborhoodRepository) queryNeighborhoods(ctx context.Context, query string, args ...interface{}) ([]models.Neighborhood, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query neighborhoods: %w", err)
	}
	defer rows.Close()

	neighborhoods := []models.Neighborhood{}
	for rows.Next() {
		n, err := scanNeighborhood(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan neighborhood row: %w", err)
		}
		neighborhoods = append(neighborhoods, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating neighborhood rows: %w", err)
	}

	return neighborhoods, nil
}
