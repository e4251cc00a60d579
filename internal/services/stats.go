package services

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BebaneMarina/taxe-municipale/internal/models"
	"github.com/BebaneMarina/taxe-municipale/internal/period"
	"github.com/BebaneMarina/taxe-municipale/internal/repository"
)

// ZoneStats is the per-zone slice of the dashboard payload.
type ZoneStats struct {
	TotalCollected    decimal.Decimal `json:"total_collected"`
	AverageCollection decimal.Decimal `json:"average_collection"`
	ZoneName          string          `json:"zone_name"`
	ComplianceRatePct float64         `json:"compliance_rate_pct"`
	TotalTaxpayers    int             `json:"total_taxpayers"`
	Compliant         int             `json:"compliant"`
	NonCompliant      int             `json:"non_compliant"`
	CollectionCount   int             `json:"collection_count"`
	ZoneID            int64           `json:"zone_id"`
}

// taxpayerFacts is the per-taxpayer snapshot the aggregation runs over:
// the entity, its evaluated compliance, and its settled collections
// (already restricted to the reporting range when one applies).
type taxpayerFacts struct {
	taxpayer    models.Taxpayer
	collections []models.CollectionRecord
	compliant   bool
}

// roundRate rounds a percentage to two decimals.
func roundRate(compliant, total int) float64 {
	if total == 0 {
		return 0
	}
	rate := float64(compliant) / float64(total) * 100
	return math.Round(rate*100) / 100
}

// averageCollection guards the zero-collection case; rates and averages
// never propagate a division fault.
func averageCollection(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(2)
}

// aggregateZoneStats partitions taxpayers through the neighborhood→zone
// hierarchy and produces one ZoneStats per zone that has at least one
// eligible taxpayer. Zones with none are omitted entirely, not reported
// as zeros. The result is a pure function of its inputs.
func aggregateZoneStats(zones []models.Zone, neighborhoods []models.Neighborhood, facts []taxpayerFacts) []ZoneStats {
	zoneByNeighborhood := make(map[int64]int64, len(neighborhoods))
	for _, n := range neighborhoods {
		zoneByNeighborhood[n.ID] = n.ZoneID
	}
	zoneNames := make(map[int64]string, len(zones))
	for _, z := range zones {
		zoneNames[z.ID] = z.Name
	}

	byZone := map[int64]*ZoneStats{}
	for _, f := range facts {
		zoneID, ok := zoneByNeighborhood[f.taxpayer.NeighborhoodID]
		if !ok {
			// Dangling neighborhood reference: skip the row, never abort
			// the batch.
			continue
		}
		name, ok := zoneNames[zoneID]
		if !ok {
			continue
		}

		zs := byZone[zoneID]
		if zs == nil {
			zs = &ZoneStats{ZoneID: zoneID, ZoneName: name, TotalCollected: decimal.Zero, AverageCollection: decimal.Zero}
			byZone[zoneID] = zs
		}

		zs.TotalTaxpayers++
		if f.compliant {
			zs.Compliant++
		} else {
			zs.NonCompliant++
		}
		for _, rec := range f.collections {
			zs.TotalCollected = zs.TotalCollected.Add(rec.Amount)
			zs.CollectionCount++
		}
	}

	stats := make([]ZoneStats, 0, len(byZone))
	for _, zs := range byZone {
		zs.ComplianceRatePct = roundRate(zs.Compliant, zs.TotalTaxpayers)
		zs.AverageCollection = averageCollection(zs.TotalCollected, zs.CollectionCount)
		stats = append(stats, *zs)
	}

	// Zone id breaks amount ties so identical snapshots aggregate to
	// identical output.
	sort.Slice(stats, func(i, j int) bool {
		if !stats[i].TotalCollected.Equal(stats[j].TotalCollected) {
			return stats[i].TotalCollected.GreaterThan(stats[j].TotalCollected)
		}
		return stats[i].ZoneID < stats[j].ZoneID
	})

	return stats
}

// sortZoneStatsByID reorders a breakdown by zone id ascending, the
// stable order of the untruncated listing.
func sortZoneStatsByID(stats []ZoneStats) {
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].ZoneID < stats[j].ZoneID
	})
}

// TimeSeries is the evolution chart payload: one entry per period, in
// chronological order, zero-filled for periods without activity so chart
// x-axes stay stable.
type TimeSeries struct {
	PeriodLabels []string          `json:"period_labels"`
	Amounts      []decimal.Decimal `json:"amounts"`
	Counts       []int             `json:"counts"`
}

// bucketTotals folds grouped daily totals into the given windows. Days
// falling outside every window are dropped; windows with no activity
// keep zero values.
func bucketTotals(windows []period.Window, totals []repository.DailyTotal) TimeSeries {
	series := TimeSeries{
		PeriodLabels: make([]string, len(windows)),
		Amounts:      make([]decimal.Decimal, len(windows)),
		Counts:       make([]int, len(windows)),
	}
	for i, w := range windows {
		series.PeriodLabels[i] = w.Label
		series.Amounts[i] = decimal.Zero
	}

	for _, dt := range totals {
		for i, w := range windows {
			if w.ContainsTime(dt.Day) {
				series.Amounts[i] = series.Amounts[i].Add(dt.Amount)
				series.Counts[i] += dt.Count
				break
			}
		}
	}

	return series
}

// filterRange keeps settled records whose collection date falls in the
// optional [from, to] day range.
func filterRange(records []models.CollectionRecord, from, to *time.Time) []models.CollectionRecord {
	if from == nil && to == nil {
		return records
	}
	filtered := make([]models.CollectionRecord, 0, len(records))
	for _, rec := range records {
		day := period.DayStart(rec.CollectedAt)
		if from != nil && day.Before(period.DayStart(*from)) {
			continue
		}
		if to != nil && day.After(period.DayStart(*to)) {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered
}
