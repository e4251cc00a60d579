package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BebaneMarina/taxe-municipale/internal/logger"
	"github.com/BebaneMarina/taxe-municipale/internal/models"
	"github.com/BebaneMarina/taxe-municipale/internal/period"
	"github.com/BebaneMarina/taxe-municipale/internal/repository"
)

type statsServiceFixture struct {
	taxpayers     *MockTaxpayerRepository
	assignments   *MockAssignmentRepository
	collections   *MockCollectionRepository
	zones         *MockZoneRepository
	neighborhoods *MockNeighborhoodRepository
	geoZones      *MockGeoZoneRepository
	collectors    *MockCollectorRepository
	service       StatsService
}

func newStatsFixture() *statsServiceFixture {
	f := &statsServiceFixture{
		taxpayers:     new(MockTaxpayerRepository),
		assignments:   new(MockAssignmentRepository),
		collections:   new(MockCollectionRepository),
		zones:         new(MockZoneRepository),
		neighborhoods: new(MockNeighborhoodRepository),
		geoZones:      new(MockGeoZoneRepository),
		collectors:    new(MockCollectorRepository),
	}
	// A nil cache disables caching; Dashboard must work without Redis.
	f.service = NewStatsService(
		f.taxpayers, f.assignments, f.collections,
		f.zones, f.neighborhoods, f.geoZones, f.collectors,
		nil, logger.New("test"),
	)
	return f
}

func (f *statsServiceFixture) stubCityTotals(ctx context.Context, now time.Time) {
	today := period.DayStart(now)
	monthStart := period.MonthStart(now)

	f.collections.On("SumSettled", ctx, repository.CollectionFilter{}).
		Return(decimal.NewFromInt(10000), nil)
	f.collections.On("CountSettled", ctx, repository.CollectionFilter{}).
		Return(25, nil)
	f.collections.On("SumSettled", ctx, repository.CollectionFilter{From: &today}).
		Return(decimal.NewFromInt(800), nil)
	f.collections.On("SumSettled", ctx, repository.CollectionFilter{From: &monthStart}).
		Return(decimal.NewFromInt(4500), nil)
	f.collectors.On("CountActive", ctx).Return(4, nil)
	f.geoZones.On("CountCovered", ctx).Return(7, nil)
}

func TestDashboard_ComplianceCounts(t *testing.T) {
	f := newStatsFixture()
	ctx := context.Background()
	now := day(2024, time.March, 15)

	zones, neighborhoods := statsFixture()
	taxpayers := make([]models.Taxpayer, 0, 10)
	for i := int64(1); i <= 10; i++ {
		taxpayers = append(taxpayers, models.Taxpayer{ID: i, NeighborhoodID: 11})
	}
	f.taxpayers.On("FindActiveGeolocated", ctx).Return(taxpayers, nil)

	// Taxpayers 1-6 have no obligations (compliant); 7-10 carry an unpaid
	// assignment.
	for i := int64(1); i <= 10; i++ {
		if i <= 6 {
			f.assignments.On("FindCurrentByTaxpayer", ctx, i, now).
				Return([]models.TaxAssignment{}, nil)
		} else {
			f.assignments.On("FindCurrentByTaxpayer", ctx, i, now).
				Return([]models.TaxAssignment{activeAssignment(1, day(2024, time.January, 1))}, nil)
		}
		f.collections.On("FindSettledByTaxpayer", ctx, i).
			Return([]models.CollectionRecord{}, nil)
	}

	f.zones.On("FindActive", ctx).Return(zones, nil)
	f.neighborhoods.On("FindActive", ctx).Return(neighborhoods, nil)
	f.stubCityTotals(ctx, now)

	stats, err := f.service.Dashboard(ctx, now, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 10, stats.TotalTaxpayers)
	assert.Equal(t, 6, stats.Compliant)
	assert.Equal(t, 4, stats.NonCompliant)
	assert.Equal(t, 60.0, stats.ComplianceRatePct)
	assert.True(t, decimal.NewFromInt(10000).Equal(stats.TotalCollected))
	assert.True(t, decimal.NewFromInt(800).Equal(stats.CollectedToday))
	assert.True(t, decimal.NewFromInt(4500).Equal(stats.CollectedThisMonth))
	assert.Equal(t, 25, stats.CollectionCount)
	assert.Equal(t, 4, stats.ActiveCollectors)
	assert.Equal(t, 7, stats.CoveredZones)
}

func TestDashboard_TopZonesTruncatedToTen(t *testing.T) {
	f := newStatsFixture()
	ctx := context.Background()
	now := day(2024, time.March, 15)

	// Twelve zones, one taxpayer each. All amounts tie, so the id
	// tie-break decides which two zones fall off the top ten.
	var zones []models.Zone
	var neighborhoods []models.Neighborhood
	var taxpayers []models.Taxpayer
	for i := int64(1); i <= 12; i++ {
		zones = append(zones, models.Zone{ID: i, Name: fmt.Sprintf("Zone %d", i)})
		neighborhoods = append(neighborhoods, models.Neighborhood{ID: 100 + i, ZoneID: i})
		taxpayers = append(taxpayers, models.Taxpayer{ID: i, NeighborhoodID: 100 + i})
	}

	f.taxpayers.On("FindActiveGeolocated", ctx).Return(taxpayers, nil)
	f.assignments.On("FindCurrentByTaxpayer", ctx, mock.AnythingOfType("int64"), now).
		Return([]models.TaxAssignment{}, nil)
	for i := int64(1); i <= 12; i++ {
		f.collections.On("FindSettledByTaxpayer", ctx, i).
			Return([]models.CollectionRecord{settledRecord(1, now.AddDate(0, 0, -1))}, nil)
	}
	f.zones.On("FindActive", ctx).Return(zones, nil)
	f.neighborhoods.On("FindActive", ctx).Return(neighborhoods, nil)
	f.stubCityTotals(ctx, now)

	stats, err := f.service.Dashboard(ctx, now, nil, nil)

	require.NoError(t, err)
	assert.Len(t, stats.TopZones, 10)
}

func TestDashboard_NoTaxpayers(t *testing.T) {
	f := newStatsFixture()
	ctx := context.Background()
	now := day(2024, time.March, 15)

	zones, neighborhoods := statsFixture()
	f.taxpayers.On("FindActiveGeolocated", ctx).Return([]models.Taxpayer{}, nil)
	f.zones.On("FindActive", ctx).Return(zones, nil)
	f.neighborhoods.On("FindActive", ctx).Return(neighborhoods, nil)
	f.stubCityTotals(ctx, now)

	stats, err := f.service.Dashboard(ctx, now, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalTaxpayers)
	assert.Equal(t, 0.0, stats.ComplianceRatePct, "zero taxpayers must not divide")
	assert.Empty(t, stats.TopZones)
}

func TestZoneBreakdown_OrderedByZoneID(t *testing.T) {
	f := newStatsFixture()
	ctx := context.Background()
	now := day(2024, time.March, 15)

	zones, neighborhoods := statsFixture()
	taxpayers := []models.Taxpayer{
		{ID: 1, NeighborhoodID: 21}, // zone 2, big collector
		{ID: 2, NeighborhoodID: 11}, // zone 1
	}
	f.taxpayers.On("FindActiveGeolocated", ctx).Return(taxpayers, nil)
	f.assignments.On("FindCurrentByTaxpayer", ctx, mock.AnythingOfType("int64"), now).
		Return([]models.TaxAssignment{}, nil)
	f.collections.On("FindSettledByTaxpayer", ctx, int64(1)).
		Return([]models.CollectionRecord{settledRecord(1, now), settledRecord(1, now)}, nil)
	f.collections.On("FindSettledByTaxpayer", ctx, int64(2)).
		Return([]models.CollectionRecord{settledRecord(1, now)}, nil)
	f.zones.On("FindActive", ctx).Return(zones, nil)
	f.neighborhoods.On("FindActive", ctx).Return(neighborhoods, nil)

	breakdown, err := f.service.ZoneBreakdown(ctx, now)

	require.NoError(t, err)
	require.Len(t, breakdown, 2)
	// Id order, not amount order: zone 2 collected more but lists second.
	assert.Equal(t, int64(1), breakdown[0].ZoneID)
	assert.Equal(t, int64(2), breakdown[1].ZoneID)
}

func TestEvolution_DayGranularity(t *testing.T) {
	f := newStatsFixture()
	ctx := context.Background()
	now := day(2024, time.March, 15)

	windows := period.DailyWindows(now, 7)
	f.collections.On("DailyTotals", ctx, windows[0].Start, windows[6].End).
		Return([]repository.DailyTotal{
			{Day: day(2024, time.March, 14), Amount: decimal.NewFromInt(300), Count: 2},
		}, nil)

	series, err := f.service.Evolution(ctx, GranularityDay, now)

	require.NoError(t, err)
	require.Len(t, series.PeriodLabels, 7)
	assert.True(t, decimal.NewFromInt(300).Equal(series.Amounts[5]))
	assert.Equal(t, 2, series.Counts[5])
	assert.True(t, decimal.Zero.Equal(series.Amounts[6]))
	f.collections.AssertExpectations(t)
}

func TestEvolution_WeekAndMonthBucketCounts(t *testing.T) {
	now := day(2024, time.March, 15)

	cases := []struct {
		granularity Granularity
		buckets     int
	}{
		{GranularityWeek, 4},
		{GranularityMonth, 6},
	}

	for _, tc := range cases {
		t.Run(string(tc.granularity), func(t *testing.T) {
			f := newStatsFixture()
			ctx := context.Background()
			f.collections.On("DailyTotals", ctx, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
				Return([]repository.DailyTotal{}, nil)

			series, err := f.service.Evolution(ctx, tc.granularity, now)

			require.NoError(t, err)
			assert.Len(t, series.PeriodLabels, tc.buckets)
			assert.Len(t, series.Amounts, tc.buckets)
			assert.Len(t, series.Counts, tc.buckets)
		})
	}
}

func TestEvolution_InvalidGranularity(t *testing.T) {
	f := newStatsFixture()

	series, err := f.service.Evolution(context.Background(), Granularity("hourly"), day(2024, time.March, 15))

	assert.Nil(t, series)
	assert.ErrorIs(t, err, ErrInvalidGranularity)
	f.collections.AssertNotCalled(t, "DailyTotals")
}

func TestDashboardCacheKey(t *testing.T) {
	now := day(2024, time.March, 15)
	from := day(2024, time.March, 1)
	to := day(2024, time.March, 10)

	assert.Equal(t, "stats:dashboard:2024-03-15", dashboardCacheKey(now, nil, nil))
	assert.Equal(t, "stats:dashboard:2024-03-15:f2024-03-01:t2024-03-10", dashboardCacheKey(now, &from, &to))
	assert.Equal(t, "stats:dashboard:2024-03-15:f2024-03-01", dashboardCacheKey(now, &from, nil))
}
