package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CollectionRecord is an immutable payment event recorded by a collector
// against a taxpayer's tax. Records are append-only; only the
// cancellation metadata is ever mutated after the fact.
type CollectionRecord struct {
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	CollectedAt  time.Time       `json:"collectedAt"`
	ClosedAt     *time.Time      `json:"closedAt,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Commission   decimal.Decimal `json:"commission"`
	Method       PaymentMethod   `json:"method"`
	Status       RecordStatus    `json:"status"`
	Reference    string          `json:"reference"`
	CancelReason *string         `json:"cancelReason,omitempty"`
	Cancelled    bool            `json:"cancelled"`
	ID           int64           `json:"id"`
	TaxpayerID   int64           `json:"taxpayerId"`
	TaxID        int64           `json:"taxId"`
	CollectorID  int64           `json:"collectorId"`
}

// Settles reports whether the record can satisfy a tax obligation:
// completed and not cancelled.
func (r *CollectionRecord) Settles() bool {
	return r.Status == StatusCompleted && !r.Cancelled
}
