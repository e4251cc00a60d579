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

// CollectionFilter narrows sum/count queries to a collection date range.
// Nil bounds are open-ended.
type CollectionFilter struct {
	From *time.Time
	To   *time.Time
}

// DailyTotal is one grouped day of settled collection activity.
type DailyTotal struct {
	Day    time.Time
	Amount decimal.Decimal
	Count  int
}

// CollectionRepository defines data access for collection records.
// Every query here already applies the settlement invariant: only
// completed, non-cancelled records participate.
type CollectionRepository interface {
	// FindSettledSince returns all settled records of one taxpayer whose
	// collection date falls on or after since. Callers index the result
	// by tax id, replacing per-assignment existence probes.
	FindSettledSince(ctx context.Context, taxpayerID int64, since time.Time) ([]models.CollectionRecord, error)

	// FindSettledByTaxpayer returns all settled records of one taxpayer.
	FindSettledByTaxpayer(ctx context.Context, taxpayerID int64) ([]models.CollectionRecord, error)

	// SumSettled returns the total settled amount within the filter range.
	SumSettled(ctx context.Context, filter CollectionFilter) (decimal.Decimal, error)

	// CountSettled returns the number of settled records within the
	// filter range.
	CountSettled(ctx context.Context, filter CollectionFilter) (int, error)

	// DailyTotals returns settled amounts and counts grouped per day for
	// collection dates in [from, to). Days without activity are absent;
	// zero-filling is the caller's concern.
	DailyTotals(ctx context.Context, from, to time.Time) ([]DailyTotal, error)
}

type collectionRepository struct {
	db *database.Database
}

// NewCollectionRepository creates a new instance of CollectionRepository.
func NewCollectionRepository(db *database.Database) CollectionRepository {
	return &collectionRepository{db: db}
}

const collectionColumns = `
	id,
	taxpayer_id,
	tax_id,
	collector_id,
	amount::text,
	commission::text,
	payment_method,
	status,
	reference,
	cancelled,
	cancel_reason,
	collected_at,
	closed_at,
	created_at,
	updated_at
`

func scanCollection(row pgx.Row) (*models.CollectionRecord, error) {
	var rec models.CollectionRecord
	var amount, commission string

	err := row.Scan(
		&rec.ID,
		&rec.TaxpayerID,
		&rec.TaxID,
		&rec.CollectorID,
		&amount,
		&commission,
		&rec.Method,
		&rec.Status,
		&rec.Reference,
		&rec.Cancelled,
		&rec.CancelReason,
		&rec.CollectedAt,
		&rec.ClosedAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if rec.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid collection amount %q: %w", amount, err)
	}
	if rec.Commission, err = decimal.NewFromString(commission); err != nil {
		return nil, fmt.Errorf("invalid commission %q: %w", commission, err)
	}
	if err := checkEnum("record status", rec.Status); err != nil {
		return nil, err
	}
	if err := checkEnum("payment method", rec.Method); err != nil {
		return nil, err
	}

	return &rec, nil
}

func (r *collectionRepository) FindSettledSince(ctx context.Context, taxpayerID int64, since time.Time) ([]models.CollectionRecord, error) {
	query := `
		SELECT ` + collectionColumns + `
		FROM collection_records
		WHERE taxpayer_id = $1
		  AND status = 'completed'
		  AND cancelled = FALSE
		  AND collected_at::date >= $2::date
		ORDER BY collected_at
	`

	return r.queryRecords(ctx, query, taxpayerID, since)
}

func (r *collectionRepository) FindSettledByTaxpayer(ctx context.Context, taxpayerID int64) ([]models.CollectionRecord, error) {
	query := `
		SELECT ` + collectionColumns + `
		FROM collection_records
		WHERE taxpayer_id = $1
		  AND status = 'completed'
		  AND cancelled = FALSE
		ORDER BY collected_at
	`

	return r.queryRecords(ctx, query, taxpayerID)
}

func (r *collectionRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]models.CollectionRecord, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection records: %w", err)
	}
	defer rows.Close()

	records := []models.CollectionRecord{}
	for rows.Next() {
		rec, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection row: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collection rows: %w", err)
	}

	return records, nil
}

// SumSettled aggregates at the store; COALESCE keeps an empty range a
// plain zero instead of NULL.
func (r *collectionRepository) SumSettled(ctx context.Context, filter CollectionFilter) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)::text
		FROM collection_records
		WHERE status = 'completed'
		  AND cancelled = FALSE
	`
	query, args := appendRangeFilter(query, filter)

	var total string
	if err := r.db.Pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum settled collections: %w", err)
	}

	sum, err := decimal.NewFromString(total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid collection sum %q: %w", total, err)
	}
	return sum, nil
}

func (r *collectionRepository) CountSettled(ctx context.Context, filter CollectionFilter) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM collection_records
		WHERE status = 'completed'
		  AND cancelled = FALSE
	`
	query, args := appendRangeFilter(query, filter)

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count settled collections: %w", err)
	}
	return count, nil
}

func appendRangeFilter(query string, filter CollectionFilter) (string, []interface{}) {
	args := []interface{}{}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND collected_at::date >= $%d::date", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND collected_at::date <= $%d::date", len(args))
	}
	return query, args
}

func (r *collectionRepository) DailyTotals(ctx context.Context, from, to time.Time) ([]DailyTotal, error) {
	query := `
		SELECT
			date_trunc('day', collected_at) AS day,
			COALESCE(SUM(amount), 0)::text,
			COUNT(*)
		FROM collection_records
		WHERE status = 'completed'
		  AND cancelled = FALSE
		  AND collected_at >= $1
		  AND collected_at < $2
		GROUP BY day
		ORDER BY day
	`

	rows, err := r.db.Pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily collection totals: %w", err)
	}
	defer rows.Close()

	totals := []DailyTotal{}
	for rows.Next() {
		var dt DailyTotal
		var amount string
		if err := rows.Scan(&dt.Day, &amount, &dt.Count); err != nil {
			return nil, fmt.Errorf("failed to scan daily total row: %w", err)
		}
		if dt.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("invalid daily total %q: %w", amount, err)
		}
		totals = append(totals, dt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily total rows: %w", err)
	}

	return totals, nil
}
