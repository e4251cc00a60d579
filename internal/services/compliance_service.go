package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BebaneMarina/taxe-municipale/internal/logger"
	"github.com/BebaneMarina/taxe-municipale/internal/period"
	"github.com/BebaneMarina/taxe-municipale/internal/repository"
)

// Service-level errors
var (
	ErrTaxpayerNotFound = errors.New("taxpayer not found")
)

// ComplianceSummary reports whether a taxpayer is current on every active
// tax obligation, and if not, which taxes are unpaid. A taxpayer with no
// current obligations is trivially compliant.
type ComplianceSummary struct {
	UnpaidTaxes []string `json:"unpaid_taxes"`
	IsCompliant bool     `json:"is_compliant"`
}

// ComplianceService evaluates payment compliance per taxpayer.
type ComplianceService interface {
	// Evaluate returns the full compliance breakdown for one taxpayer,
	// enumerating every unpaid tax. Returns ErrTaxpayerNotFound when the
	// id is unknown.
	Evaluate(ctx context.Context, taxpayerID int64, now time.Time) (*ComplianceSummary, error)

	// IsCompliant answers only the boolean question and may stop at the
	// first unpaid assignment.
	IsCompliant(ctx context.Context, taxpayerID int64, now time.Time) (bool, error)
}

type complianceService struct {
	taxpayers   repository.TaxpayerRepository
	assignments repository.AssignmentRepository
	collections repository.CollectionRepository
	taxes       repository.TaxRepository
	log         *logger.Logger
}

// NewComplianceService creates a new instance of ComplianceService.
func NewComplianceService(
	taxpayers repository.TaxpayerRepository,
	assignments repository.AssignmentRepository,
	collections repository.CollectionRepository,
	taxes repository.TaxRepository,
	log *logger.Logger,
) ComplianceService {
	return &complianceService{
		taxpayers:   taxpayers,
		assignments: assignments,
		collections: collections,
		taxes:       taxes,
		log:         log,
	}
}

// Evaluate fetches the taxpayer's current assignments and their settled
// collections for the accounting period in one round trip each, then
// evaluates every assignment. Unpaid tax names come from the tax table;
// a dangling tax reference yields a blank name rather than an error.
func (s *complianceService) Evaluate(ctx context.Context, taxpayerID int64, now time.Time) (*ComplianceSummary, error) {
	taxpayer, err := s.taxpayers.FindByID(ctx, taxpayerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load taxpayer %d: %w", taxpayerID, err)
	}
	if taxpayer == nil {
		return nil, ErrTaxpayerNotFound
	}

	assignments, err := s.assignments.FindCurrentByTaxpayer(ctx, taxpayerID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments for taxpayer %d: %w", taxpayerID, err)
	}

	if len(assignments) == 0 {
		return &ComplianceSummary{IsCompliant: true, UnpaidTaxes: []string{}}, nil
	}

	// Every reference date is at or after the start of the current month,
	// so one fetch covers all assignments.
	settled, err := s.collections.FindSettledSince(ctx, taxpayerID, period.MonthStart(now))
	if err != nil {
		return nil, fmt.Errorf("failed to load collections for taxpayer %d: %w", taxpayerID, err)
	}

	unpaid := unpaidAssignments(assignments, indexSettled(settled), now)
	if len(unpaid) == 0 {
		return &ComplianceSummary{IsCompliant: true, UnpaidTaxes: []string{}}, nil
	}

	taxIDs := make([]int64, 0, len(unpaid))
	for _, a := range unpaid {
		taxIDs = append(taxIDs, a.TaxID)
	}
	taxNames, err := s.taxes.FindByIDs(ctx, taxIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load tax names: %w", err)
	}

	names := make([]string, 0, len(unpaid))
	for _, a := range unpaid {
		names = append(names, taxNames[a.TaxID].Name)
	}

	s.log.Debug("Taxpayer non-compliant", map[string]interface{}{
		"taxpayer_id":  taxpayerID,
		"unpaid_count": len(names),
	})

	return &ComplianceSummary{IsCompliant: false, UnpaidTaxes: names}, nil
}

// IsCompliant short-circuits at the first unpaid assignment.
func (s *complianceService) IsCompliant(ctx context.Context, taxpayerID int64, now time.Time) (bool, error) {
	assignments, err := s.assignments.FindCurrentByTaxpayer(ctx, taxpayerID, now)
	if err != nil {
		return false, fmt.Errorf("failed to load assignments for taxpayer %d: %w", taxpayerID, err)
	}
	if len(assignments) == 0 {
		return true, nil
	}

	settled, err := s.collections.FindSettledSince(ctx, taxpayerID, period.MonthStart(now))
	if err != nil {
		return false, fmt.Errorf("failed to load collections for taxpayer %d: %w", taxpayerID, err)
	}

	return allSettled(assignments, indexSettled(settled), now), nil
}
