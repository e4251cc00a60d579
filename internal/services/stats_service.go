package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BebaneMarina/taxe-municipale/internal/cache"
	"github.com/BebaneMarina/taxe-municipale/internal/logger"
	"github.com/BebaneMarina/taxe-municipale/internal/period"
	"github.com/BebaneMarina/taxe-municipale/internal/repository"
)

// Granularity selects the evolution bucket shape.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// Bucket counts per granularity: 7 days, 4 weeks, 6 calendar months.
const (
	dailyBuckets   = 7
	weeklyBuckets  = 4
	monthlyBuckets = 6
)

// ErrInvalidGranularity rejects unknown evolution granularities.
var ErrInvalidGranularity = errors.New("granularity must be day, week or month")

// DashboardStats is the headline payload: city-wide aggregates plus the
// top zones by total collected amount.
type DashboardStats struct {
	TotalCollected     decimal.Decimal `json:"total_collected"`
	CollectedToday     decimal.Decimal `json:"collected_today"`
	CollectedThisMonth decimal.Decimal `json:"collected_this_month"`
	TopZones           []ZoneStats     `json:"top_zones"`
	ComplianceRatePct  float64         `json:"compliance_rate_pct"`
	TotalTaxpayers     int             `json:"total_taxpayers"`
	Compliant          int             `json:"compliant"`
	NonCompliant       int             `json:"non_compliant"`
	CollectionCount    int             `json:"collection_count"`
	ActiveCollectors   int             `json:"active_collectors"`
	CoveredZones       int             `json:"covered_zones"`
}

// topZoneCount truncates the headline zone ranking.
const topZoneCount = 10

// StatsService produces the dashboard, per-zone and time-series payloads.
// Every method computes over a snapshot fetched at call time; identical
// snapshots produce identical output.
type StatsService interface {
	// Dashboard returns city-wide aggregates and the top zones, for an
	// optional reporting range applied to zone collection sums.
	Dashboard(ctx context.Context, now time.Time, from, to *time.Time) (*DashboardStats, error)

	// ZoneBreakdown returns the full, untruncated per-zone list ordered
	// by zone id.
	ZoneBreakdown(ctx context.Context, now time.Time) ([]ZoneStats, error)

	// Evolution returns the zero-filled collection time series for the
	// given granularity.
	Evolution(ctx context.Context, granularity Granularity, now time.Time) (*TimeSeries, error)
}

type statsService struct {
	taxpayers     repository.TaxpayerRepository
	assignments   repository.AssignmentRepository
	collections   repository.CollectionRepository
	zones         repository.ZoneRepository
	neighborhoods repository.NeighborhoodRepository
	geoZones      repository.GeoZoneRepository
	collectors    repository.CollectorRepository
	cache         *cache.Cache
	log           *logger.Logger
}

// NewStatsService creates a new instance of StatsService. cache may be
// nil to disable dashboard caching.
func NewStatsService(
	taxpayers repository.TaxpayerRepository,
	assignments repository.AssignmentRepository,
	collections repository.CollectionRepository,
	zones repository.ZoneRepository,
	neighborhoods repository.NeighborhoodRepository,
	geoZones repository.GeoZoneRepository,
	collectors repository.CollectorRepository,
	c *cache.Cache,
	log *logger.Logger,
) StatsService {
	return &statsService{
		taxpayers:     taxpayers,
		assignments:   assignments,
		collections:   collections,
		zones:         zones,
		neighborhoods: neighborhoods,
		geoZones:      geoZones,
		collectors:    collectors,
		cache:         c,
		log:           log,
	}
}

// snapshotFacts fetches the per-taxpayer data the aggregation needs: one
// assignments query and one collections query per taxpayer, never a
// per-assignment existence probe. The range filter applies only to the
// collection sums; compliance always evaluates the current period.
func (s *statsService) snapshotFacts(ctx context.Context, now time.Time, from, to *time.Time) ([]taxpayerFacts, error) {
	taxpayers, err := s.taxpayers.FindActiveGeolocated(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load taxpayers: %w", err)
	}

	facts := make([]taxpayerFacts, 0, len(taxpayers))
	for _, t := range taxpayers {
		assignments, err := s.assignments.FindCurrentByTaxpayer(ctx, t.ID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to load assignments for taxpayer %d: %w", t.ID, err)
		}

		settled, err := s.collections.FindSettledByTaxpayer(ctx, t.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load collections for taxpayer %d: %w", t.ID, err)
		}

		facts = append(facts, taxpayerFacts{
			taxpayer:    t,
			collections: filterRange(settled, from, to),
			compliant:   allSettled(assignments, indexSettled(settled), now),
		})
	}

	return facts, nil
}

func (s *statsService) Dashboard(ctx context.Context, now time.Time, from, to *time.Time) (*DashboardStats, error) {
	cacheKey := dashboardCacheKey(now, from, to)
	var cached DashboardStats
	if hit, err := s.cache.GetJSON(ctx, cacheKey, &cached); err != nil {
		// A broken cache must not take the dashboard down.
		s.log.Warn("Dashboard cache read failed", map[string]interface{}{"key": cacheKey, "error": err.Error()})
	} else if hit {
		return &cached, nil
	}

	facts, err := s.snapshotFacts(ctx, now, from, to)
	if err != nil {
		return nil, err
	}

	zones, err := s.zones.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load zones: %w", err)
	}
	neighborhoods, err := s.neighborhoods.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load neighborhoods: %w", err)
	}

	stats := &DashboardStats{
		TotalTaxpayers: len(facts),
	}
	for _, f := range facts {
		if f.compliant {
			stats.Compliant++
		} else {
			stats.NonCompliant++
		}
	}
	stats.ComplianceRatePct = roundRate(stats.Compliant, stats.TotalTaxpayers)

	zoneStats := aggregateZoneStats(zones, neighborhoods, facts)
	if len(zoneStats) > topZoneCount {
		zoneStats = zoneStats[:topZoneCount]
	}
	stats.TopZones = zoneStats

	today := period.DayStart(now)
	monthStart := period.MonthStart(now)

	if stats.TotalCollected, err = s.collections.SumSettled(ctx, repository.CollectionFilter{From: from, To: to}); err != nil {
		return nil, err
	}
	if stats.CollectionCount, err = s.collections.CountSettled(ctx, repository.CollectionFilter{From: from, To: to}); err != nil {
		return nil, err
	}
	if stats.CollectedToday, err = s.collections.SumSettled(ctx, repository.CollectionFilter{From: &today}); err != nil {
		return nil, err
	}
	if stats.CollectedThisMonth, err = s.collections.SumSettled(ctx, repository.CollectionFilter{From: &monthStart}); err != nil {
		return nil, err
	}

	if stats.ActiveCollectors, err = s.collectors.CountActive(ctx); err != nil {
		return nil, err
	}
	if stats.CoveredZones, err = s.geoZones.CountCovered(ctx); err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(ctx, cacheKey, stats); err != nil {
		s.log.Warn("Dashboard cache write failed", map[string]interface{}{"key": cacheKey, "error": err.Error()})
	}

	s.log.Info("Dashboard statistics computed", map[string]interface{}{
		"taxpayers": stats.TotalTaxpayers,
		"zones":     len(stats.TopZones),
	})

	return stats, nil
}

// ZoneBreakdown recomputes the same per-zone aggregation but returns
// every zone, reordered by zone id so the list is stable rather than
// ranked.
func (s *statsService) ZoneBreakdown(ctx context.Context, now time.Time) ([]ZoneStats, error) {
	facts, err := s.snapshotFacts(ctx, now, nil, nil)
	if err != nil {
		return nil, err
	}

	zones, err := s.zones.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load zones: %w", err)
	}
	neighborhoods, err := s.neighborhoods.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load neighborhoods: %w", err)
	}

	stats := aggregateZoneStats(zones, neighborhoods, facts)
	sortZoneStatsByID(stats)
	return stats, nil
}

func (s *statsService) Evolution(ctx context.Context, granularity Granularity, now time.Time) (*TimeSeries, error) {
	var windows []period.Window
	switch granularity {
	case GranularityDay:
		windows = period.DailyWindows(now, dailyBuckets)
	case GranularityWeek:
		windows = period.WeeklyWindows(now, weeklyBuckets)
	case GranularityMonth:
		windows = period.MonthlyWindows(now, monthlyBuckets)
	default:
		return nil, fmt.Errorf("%w: got %q", ErrInvalidGranularity, granularity)
	}

	totals, err := s.collections.DailyTotals(ctx, windows[0].Start, windows[len(windows)-1].End)
	if err != nil {
		return nil, err
	}

	series := bucketTotals(windows, totals)
	return &series, nil
}

func dashboardCacheKey(now time.Time, from, to *time.Time) string {
	key := "stats:dashboard:" + now.Format(period.DayFormat)
	if from != nil {
		key += ":f" + from.Format(period.DayFormat)
	}
	if to != nil {
		key += ":t" + to.Format(period.DayFormat)
	}
	return key
}
