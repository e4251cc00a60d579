package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/BebaneMarina/taxe-municipale/internal/database"
	"github.com/BebaneMarina/taxe-municipale/internal/models"
)

// TaxpayerRepository defines data access for taxpayers.
type TaxpayerRepository interface {
	// FindActiveGeolocated returns every active taxpayer carrying a GPS
	// coordinate, ordered by id. Returns an empty slice when none exist.
	FindActiveGeolocated(ctx context.Context) ([]models.Taxpayer, error)

	// FindByID returns the taxpayer with the given id.
	// Returns nil, nil when no taxpayer is found (not an error).
	FindByID(ctx context.Context, id int64) (*models.Taxpayer, error)
}

type taxpayerRepository struct {
	db *database.Database
}

// NewTaxpayerRepository creates a new instance of TaxpayerRepository.
func NewTaxpayerRepository(db *database.Database) TaxpayerRepository {
	return &taxpayerRepository{db: db}
}

const taxpayerColumns = `
	id,
	last_name,
	first_name,
	phone,
	email,
	address,
	activity_name,
	photo_url,
	registration_number,
	latitude,
	longitude,
	taxpayer_type_id,
	neighborhood_id,
	collector_id,
	state,
	created_at,
	updated_at
`

func scanTaxpayer(row pgx.Row) (*models.Taxpayer, error) {
	var t models.Taxpayer
	err := row.Scan(
		&t.ID,
		&t.LastName,
		&t.FirstName,
		&t.Phone,
		&t.Email,
		&t.Address,
		&t.ActivityName,
		&t.PhotoURL,
		&t.RegistrationNumber,
		&t.Latitude,
		&t.Longitude,
		&t.TaxpayerTypeID,
		&t.NeighborhoodID,
		&t.CollectorID,
		&t.State,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := checkEnum("taxpayer state", t.State); err != nil {
		return nil, err
	}
	return &t, nil
}

// FindActiveGeolocated pulls the snapshot the compliance and statistics
// engines iterate. Rows missing either coordinate are filtered at the
// store so the engine never sees half a position.
func (r *taxpayerRepository) FindActiveGeolocated(ctx context.Context) ([]models.Taxpayer, error) {
	query := `
		SELECT ` + taxpayerColumns + `
		FROM taxpayers
		WHERE state = 'active'
		  AND latitude IS NOT NULL
		  AND longitude IS NOT NULL
		ORDER BY id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active geolocated taxpayers: %w", err)
	}
	defer rows.Close()

	taxpayers := []models.Taxpayer{}
	for rows.Next() {
		t, err := scanTaxpayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan taxpayer row: %w", err)
		}
		taxpayers = append(taxpayers, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating taxpayer rows: %w", err)
	}

	return taxpayers, nil
}

// FindByID returns one taxpayer, or nil, nil when the id is unknown.
func (r *taxpayerRepository) FindByID(ctx context.Context, id int64) (*models.Taxpayer, error) {
	query := `
		SELECT ` + taxpayerColumns + `
		FROM taxpayers
		WHERE id = $1
	`

	t, err := scanTaxpayer(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query taxpayer %d: %w", id, err)
	}

	return t, nil
}
