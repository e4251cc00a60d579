package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/BebaneMarina/taxe-municipale/internal/database"
	"github.com/BebaneMarina/taxe-municipale/internal/models"
)

// AssignmentRepository defines data access for tax assignments.
type AssignmentRepository interface {
	// FindCurrentByTaxpayer returns the taxpayer's active assignments
	// whose validity period covers the given instant, ordered by id.
	FindCurrentByTaxpayer(ctx context.Context, taxpayerID int64, now time.Time) ([]models.TaxAssignment, error)
}

type assignmentRepository struct {
	db *database.Database
}

// NewAssignmentRepository creates a new instance of AssignmentRepository.
func NewAssignmentRepository(db *database.Database) AssignmentRepository {
	return &assignmentRepository{db: db}
}

// FindCurrentByTaxpayer applies the currency invariant at the store:
// active state, start on or before now, end null or on or after now.
func (r *assignmentRepository) FindCurrentByTaxpayer(ctx context.Context, taxpayerID int64, now time.Time) ([]models.TaxAssignment, error) {
	query := `
		SELECT
			id,
			taxpayer_id,
			tax_id,
			start_date,
			end_date,
			custom_amount::text,
			state,
			created_at,
			updated_at
		FROM tax_assignments
		WHERE taxpayer_id = $1
		  AND state = 'active'
		  AND start_date <= $2
		  AND (end_date IS NULL OR end_date >= $2)
		ORDER BY id
	`

	rows, err := r.db.Pool.Query(ctx, query, taxpayerID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query current assignments for taxpayer %d: %w", taxpayerID, err)
	}
	defer rows.Close()

	assignments := []models.TaxAssignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment row: %w", err)
		}
		assignments = append(assignments, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignment rows: %w", err)
	}

	return assignments, nil
}

func scanAssignment(row pgx.Row) (*models.TaxAssignment, error) {
	var a models.TaxAssignment
	var customAmount *string

	err := row.Scan(
		&a.ID,
		&a.TaxpayerID,
		&a.TaxID,
		&a.StartDate,
		&a.EndDate,
		&customAmount,
		&a.State,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if customAmount != nil {
		amount, err := decimal.NewFromString(*customAmount)
		if err != nil {
			return nil, fmt.Errorf("invalid custom amount %q: %w", *customAmount, err)
		}
		a.CustomAmount = &amount
	}
	if err := checkEnum("assignment state", a.State); err != nil {
		return nil, err
	}

	return &a, nil
}
