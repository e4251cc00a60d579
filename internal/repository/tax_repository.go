package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/BebaneMarina/taxe-municipale/internal/database"
	"github.com/BebaneMarina/taxe-municipale/internal/models"
)

// TaxRepository defines data access for tax definitions.
type TaxRepository interface {
	// FindByIDs returns the taxes with the given ids, keyed by id.
	// Unknown ids are simply absent from the map, never an error; a
	// dangling assignment must not fail a whole evaluation.
	FindByIDs(ctx context.Context, ids []int64) (map[int64]models.Tax, error)
}

type taxRepository struct {
	db *database.Database
}

// NewTaxRepository creates a new instance of TaxRepository.
func NewTaxRepository(db *database.Database) TaxRepository {
	return &taxRepository{db: db}
}

func (r *taxRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]models.Tax, error) {
	taxes := map[int64]models.Tax{}
	if len(ids) == 0 {
		return taxes, nil
	}

	query := `
		SELECT
			id,
			name,
			code,
			description,
			amount::text,
			variable_amount,
			periodicity,
			commission_percent::text,
			tax_type_id,
			service_id,
			state,
			created_at,
			updated_at
		FROM taxes
		WHERE id = ANY($1)
	`

	rows, err := r.db.Pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query taxes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.Tax
		var amount, commission string
		err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.Code,
			&t.Description,
			&amount,
			&t.VariableAmount,
			&t.Periodicity,
			&commission,
			&t.TaxTypeID,
			&t.ServiceID,
			&t.State,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tax row: %w", err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("invalid tax amount %q: %w", amount, err)
		}
		if t.CommissionPercent, err = decimal.NewFromString(commission); err != nil {
			return nil, fmt.Errorf("invalid commission percent %q: %w", commission, err)
		}
		if err := checkEnum("tax periodicity", t.Periodicity); err != nil {
			return nil, err
		}
		if err := checkEnum("tax state", t.State); err != nil {
			return nil, err
		}
		taxes[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tax rows: %w", err)
	}

	return taxes, nil
}
