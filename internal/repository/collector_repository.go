package repository

import (
	"context"
	"fmt"

	"github.com/BebaneMarina/taxe-municipale/internal/database"
	"github.com/BebaneMarina/taxe-municipale/internal/models"
)

// CollectorRepository defines data access for collectors.
type CollectorRepository interface {
	// FindActiveGeolocated returns active collectors with a known GPS
	// position, ordered by id.
	FindActiveGeolocated(ctx context.Context) ([]models.Collector, error)

	// CountActive returns the number of active collectors.
	CountActive(ctx context.Context) (int, error)
}

type collectorRepository struct {
	db *database.Database
}

// NewCollectorRepository creates a new instance of CollectorRepository.
func NewCollectorRepository(db *database.Database) CollectorRepository {
	return &collectorRepository{db: db}
}

func (r *collectorRepository) FindActiveGeolocated(ctx context.Context) ([]models.Collector, error) {
	query := `
		SELECT
			id,
			last_name,
			first_name,
			email,
			phone,
			registration_code,
			latitude,
			longitude,
			connection,
			zone_id,
			last_connected_at,
			disconnected_at,
			state,
			created_at,
			updated_at
		FROM collectors
		WHERE state = 'active'
		  AND latitude IS NOT NULL
		  AND longitude IS NOT NULL
		ORDER BY id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active geolocated collectors: %w", err)
	}
	defer rows.Close()

	collectors := []models.Collector{}
	for rows.Next() {
		var c models.Collector
		err := rows.Scan(
			&c.ID,
			&c.LastName,
			&c.FirstName,
			&c.Email,
			&c.Phone,
			&c.RegistrationCode,
			&c.Latitude,
			&c.Longitude,
			&c.Connection,
			&c.ZoneID,
			&c.LastConnectedAt,
			&c.DisconnectedAt,
			&c.State,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collector row: %w", err)
		}
		if err := checkEnum("collector connection state", c.Connection); err != nil {
			return nil, err
		}
		if err := checkEnum("collector state", c.State); err != nil {
			return nil, err
		}
		collectors = append(collectors, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collector rows: %w", err)
	}

	return collectors, nil
}

func (r *collectorRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM collectors WHERE state = 'active'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active collectors: %w", err)
	}
	return count, nil
}
