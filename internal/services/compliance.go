package services

import (
	"time"

	"github.com/BebaneMarina/taxe-municipale/internal/models"
	"github.com/BebaneMarina/taxe-municipale/internal/period"
)

// The compliance evaluation has two contracts. allSettled answers the
// pure boolean question and may stop at the first unpaid assignment;
// unpaidAssignments enumerates every failing assignment so detailed
// breakdowns never under-report. Callers wanting names must use the
// enumerating form.

// settledIndex groups a taxpayer's settled collection dates by tax id so
// each assignment check is a map lookup instead of a range scan.
type settledIndex map[int64][]time.Time

func indexSettled(records []models.CollectionRecord) settledIndex {
	idx := make(settledIndex, len(records))
	for _, rec := range records {
		if !rec.Settles() {
			continue
		}
		idx[rec.TaxID] = append(idx[rec.TaxID], rec.CollectedAt)
	}
	return idx
}

// settledOnOrAfter reports whether the tax has a settled collection dated
// on or after ref, at day granularity.
func (idx settledIndex) settledOnOrAfter(taxID int64, ref time.Time) bool {
	for _, collected := range idx[taxID] {
		if !period.DayStart(collected).Before(ref) {
			return true
		}
	}
	return false
}

// unpaidAssignments returns every current assignment lacking a settled
// collection on or after its compliance reference date. A taxpayer with
// no current assignments has no obligations and the result is empty.
func unpaidAssignments(assignments []models.TaxAssignment, idx settledIndex, now time.Time) []models.TaxAssignment {
	var unpaid []models.TaxAssignment
	for _, a := range assignments {
		ref := period.ReferenceDate(a.StartDate, now)
		if !idx.settledOnOrAfter(a.TaxID, ref) {
			unpaid = append(unpaid, a)
		}
	}
	return unpaid
}

// allSettled is the short-circuiting boolean form of the same check.
func allSettled(assignments []models.TaxAssignment, idx settledIndex, now time.Time) bool {
	for _, a := range assignments {
		ref := period.ReferenceDate(a.StartDate, now)
		if !idx.settledOnOrAfter(a.TaxID, ref) {
			return false
		}
	}
	return true
}
