package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tax is a municipal tax definition (market fee, occupancy tax, ...).
type Tax struct {
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	Name              string          `json:"name"`
	Code              string          `json:"code"`
	Description       *string         `json:"description,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Periodicity       Periodicity     `json:"periodicity"`
	CommissionPercent decimal.Decimal `json:"commissionPercent"`
	VariableAmount    bool            `json:"variableAmount"`
	State             LifecycleState  `json:"state"`
	ID                int64           `json:"id"`
	TaxTypeID         int64           `json:"taxTypeId"`
	ServiceID         int64           `json:"serviceId"`
}

// TaxAssignment binds a taxpayer to a tax for a validity period.
// EndDate nil means the obligation is open-ended. An assignment is
// current when its state is active and StartDate <= now <= EndDate (or
// EndDate is nil).
type TaxAssignment struct {
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	StartDate    time.Time        `json:"startDate"`
	EndDate      *time.Time       `json:"endDate,omitempty"`
	CustomAmount *decimal.Decimal `json:"customAmount,omitempty"`
	State        LifecycleState   `json:"state"`
	ID           int64            `json:"id"`
	TaxpayerID   int64            `json:"taxpayerId"`
	TaxID        int64            `json:"taxId"`
}

// CurrentAt reports whether the assignment is an active, temporally
// current obligation at the given instant.
func (a *TaxAssignment) CurrentAt(now time.Time) bool {
	if !a.State.IsActive() {
		return false
	}
	if a.StartDate.After(now) {
		return false
	}
	if a.EndDate != nil && a.EndDate.Before(now) {
		return false
	}
	return true
}
