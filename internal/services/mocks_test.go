package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/BebaneMarina/taxe-municipale/internal/models"
	"github.com/BebaneMarina/taxe-municipale/internal/repository"
)

// Mock repositories shared by the service tests.

type MockTaxpayerRepository struct {
	mock.Mock
}

func (m *MockTaxpayerRepository) FindActiveGeolocated(ctx context.Context) ([]models.Taxpayer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Taxpayer), args.Error(1)
}

func (m *MockTaxpayerRepository) FindByID(ctx context.Context, id int64) (*models.Taxpayer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Taxpayer), args.Error(1)
}

type MockAssignmentRepository struct {
	mock.Mock
}

func (m *MockAssignmentRepository) FindCurrentByTaxpayer(ctx context.Context, taxpayerID int64, now time.Time) ([]models.TaxAssignment, error) {
	args := m.Called(ctx, taxpayerID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TaxAssignment), args.Error(1)
}

type MockCollectionRepository struct {
	mock.Mock
}

func (m *MockCollectionRepository) FindSettledSince(ctx context.Context, taxpayerID int64, since time.Time) ([]models.CollectionRecord, error) {
	args := m.Called(ctx, taxpayerID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CollectionRecord), args.Error(1)
}

func (m *MockCollectionRepository) FindSettledByTaxpayer(ctx context.Context, taxpayerID int64) ([]models.CollectionRecord, error) {
	args := m.Called(ctx, taxpayerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CollectionRecord), args.Error(1)
}

func (m *MockCollectionRepository) SumSettled(ctx context.Context, filter repository.CollectionFilter) (decimal.Decimal, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockCollectionRepository) CountSettled(ctx context.Context, filter repository.CollectionFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockCollectionRepository) DailyTotals(ctx context.Context, from, to time.Time) ([]repository.DailyTotal, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.DailyTotal), args.Error(1)
}

type MockTaxRepository struct {
	mock.Mock
}

func (m *MockTaxRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]models.Tax, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]models.Tax), args.Error(1)
}

type MockZoneRepository struct {
	mock.Mock
}

func (m *MockZoneRepository) FindActive(ctx context.Context) ([]models.Zone, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Zone), args.Error(1)
}

type MockNeighborhoodRepository struct {
	mock.Mock
}

func (m *MockNeighborhoodRepository) FindActive(ctx context.Context) ([]models.Neighborhood, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Neighborhood), args.Error(1)
}

func (m *MockNeighborhoodRepository) FindByZone(ctx context.Context, zoneID int64) ([]models.Neighborhood, error) {
	args := m.Called(ctx, zoneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Neighborhood), args.Error(1)
}

type MockGeoZoneRepository struct {
	mock.Mock
}

func (m *MockGeoZoneRepository) FindActive(ctx context.Context) ([]models.GeographicZone, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GeographicZone), args.Error(1)
}

func (m *MockGeoZoneRepository) FindContainingPoint(ctx context.Context, lat, lng float64, kind *models.ZoneKind) (*models.GeographicZone, error) {
	args := m.Called(ctx, lat, lng, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GeographicZone), args.Error(1)
}

func (m *MockGeoZoneRepository) CountCovered(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockGeoZoneRepository) FindUncovered(ctx context.Context, kind *models.ZoneKind) ([]models.GeographicZone, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GeographicZone), args.Error(1)
}

type MockCollectorRepository struct {
	mock.Mock
}

func (m *MockCollectorRepository) FindActiveGeolocated(ctx context.Context) ([]models.Collector, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Collector), args.Error(1)
}

func (m *MockCollectorRepository) CountActive(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
