package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BebaneMarina/taxe-municipale/internal/geo"
	"github.com/BebaneMarina/taxe-municipale/internal/logger"
	"github.com/BebaneMarina/taxe-municipale/internal/models"
	"github.com/BebaneMarina/taxe-municipale/internal/repository"
)

// Coordinate validation constants
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// Service-level errors
var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// TaxpayerMarker is one taxpayer on the map: the resolved display
// coordinate, the raw distance to the neighborhood reference point, the
// compliance summary and collection totals.
type TaxpayerMarker struct {
	TotalCollected   decimal.Decimal `json:"total_collected"`
	Name             string          `json:"name"`
	ActivityName     *string         `json:"activity_name,omitempty"`
	Phone            string          `json:"phone"`
	Neighborhood     string          `json:"neighborhood"`
	PhotoURL         *string         `json:"photo_url,omitempty"`
	UnpaidTaxes      []string        `json:"unpaid_taxes"`
	DisplayLat       float64         `json:"display_lat"`
	DisplayLng       float64         `json:"display_lng"`
	DistanceMeters   float64         `json:"distance_to_neighborhood_m"`
	CollectionCount  int             `json:"collection_count"`
	ID               int64           `json:"id"`
	NeighborhoodID   int64           `json:"neighborhood_id"`
	CollectorID      int64           `json:"collector_id"`
	IsCompliant      bool            `json:"is_compliant"`
	PointSubstituted bool            `json:"point_substituted"`
}

// CollectorMarker is one collector position for the map overlay.
type CollectorMarker struct {
	Name             string                 `json:"name"`
	RegistrationCode string                 `json:"registration_code"`
	Phone            string                 `json:"phone"`
	Connection       models.ConnectionState `json:"connection"`
	LastConnectedAt  *time.Time             `json:"last_connected_at,omitempty"`
	Lat              float64                `json:"lat"`
	Lng              float64                `json:"lng"`
	ID               int64                  `json:"id"`
}

// ZoneLocation is the outcome of a point-in-zone lookup. Found false is
// a normal answer, not an error.
type ZoneLocation struct {
	Zone  *models.GeographicZone `json:"zone"`
	Found bool                   `json:"found"`
}

// MapService produces the cartography payloads.
type MapService interface {
	// TaxpayerMarkers returns every active geolocated taxpayer with a
	// resolved display coordinate and full compliance detail. Markers
	// beyond a configured hard cutoff are excluded.
	TaxpayerMarkers(ctx context.Context, now time.Time) ([]TaxpayerMarker, error)

	// CollectorMarkers returns active collectors with a known position.
	CollectorMarkers(ctx context.Context) ([]CollectorMarker, error)

	// LocateZone finds the geographic zone containing a point, with a
	// deterministic first match when zones overlap.
	LocateZone(ctx context.Context, lat, lng float64, kind *models.ZoneKind) (*ZoneLocation, error)

	// UncoveredZones lists polygon zones containing no active geolocated
	// taxpayer.
	UncoveredZones(ctx context.Context, kind *models.ZoneKind) ([]models.GeographicZone, error)
}

type mapService struct {
	taxpayers     repository.TaxpayerRepository
	assignments   repository.AssignmentRepository
	collections   repository.CollectionRepository
	taxes         repository.TaxRepository
	neighborhoods repository.NeighborhoodRepository
	collectors    repository.CollectorRepository
	geoZones      repository.GeoZoneRepository
	resolver      geo.ResolverConfig
	log           *logger.Logger
}

// NewMapService creates a new instance of MapService.
func NewMapService(
	taxpayers repository.TaxpayerRepository,
	assignments repository.AssignmentRepository,
	collections repository.CollectionRepository,
	taxes repository.TaxRepository,
	neighborhoods repository.NeighborhoodRepository,
	collectors repository.CollectorRepository,
	geoZones repository.GeoZoneRepository,
	resolver geo.ResolverConfig,
	log *logger.Logger,
) MapService {
	return &mapService{
		taxpayers:     taxpayers,
		assignments:   assignments,
		collections:   collections,
		taxes:         taxes,
		neighborhoods: neighborhoods,
		collectors:    collectors,
		geoZones:      geoZones,
		resolver:      resolver,
		log:           log,
	}
}

// TaxpayerMarkers is a detail-reporting caller, so compliance enumerates
// every unpaid assignment rather than short-circuiting.
func (s *mapService) TaxpayerMarkers(ctx context.Context, now time.Time) ([]TaxpayerMarker, error) {
	taxpayers, err := s.taxpayers.FindActiveGeolocated(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load taxpayers: %w", err)
	}

	neighborhoods, err := s.neighborhoods.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load neighborhoods: %w", err)
	}
	neighborhoodByID := make(map[int64]models.Neighborhood, len(neighborhoods))
	for _, n := range neighborhoods {
		neighborhoodByID[n.ID] = n
	}

	markers := make([]TaxpayerMarker, 0, len(taxpayers))
	excluded := 0
	for _, t := range taxpayers {
		neighborhood, hasNeighborhood := neighborhoodByID[t.NeighborhoodID]

		var own, ref *geo.Point
		if t.HasCoordinates() {
			own = &geo.Point{Lat: *t.Latitude, Lng: *t.Longitude}
		}
		if hasNeighborhood && neighborhood.HasReferencePoint() {
			ref = &geo.Point{Lat: *neighborhood.RefLatitude, Lng: *neighborhood.RefLongitude}
		}

		resolution := geo.ResolveDisplayPoint(own, ref, s.resolver)
		if resolution.Excluded {
			excluded++
			continue
		}

		marker, err := s.buildMarker(ctx, t, neighborhood, resolution, now)
		if err != nil {
			return nil, err
		}
		markers = append(markers, *marker)
	}

	if excluded > 0 {
		s.log.Info("Markers excluded by distance cutoff", map[string]interface{}{
			"excluded": excluded,
			"cutoff_m": s.resolver.HardCutoffMeters,
		})
	}

	return markers, nil
}

func (s *mapService) buildMarker(ctx context.Context, t models.Taxpayer, neighborhood models.Neighborhood, resolution geo.Resolution, now time.Time) (*TaxpayerMarker, error) {
	assignments, err := s.assignments.FindCurrentByTaxpayer(ctx, t.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments for taxpayer %d: %w", t.ID, err)
	}

	settled, err := s.collections.FindSettledByTaxpayer(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load collections for taxpayer %d: %w", t.ID, err)
	}

	unpaid := unpaidAssignments(assignments, indexSettled(settled), now)
	unpaidNames := []string{}
	if len(unpaid) > 0 {
		taxIDs := make([]int64, 0, len(unpaid))
		for _, a := range unpaid {
			taxIDs = append(taxIDs, a.TaxID)
		}
		taxes, err := s.taxes.FindByIDs(ctx, taxIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to load tax names: %w", err)
		}
		for _, a := range unpaid {
			unpaidNames = append(unpaidNames, taxes[a.TaxID].Name)
		}
	}

	total := decimal.Zero
	for _, rec := range settled {
		total = total.Add(rec.Amount)
	}

	name := t.LastName
	if t.FirstName != nil {
		name = name + " " + *t.FirstName
	}

	return &TaxpayerMarker{
		ID:               t.ID,
		Name:             name,
		ActivityName:     t.ActivityName,
		Phone:            t.Phone,
		PhotoURL:         t.PhotoURL,
		Neighborhood:     neighborhood.Name,
		NeighborhoodID:   t.NeighborhoodID,
		CollectorID:      t.CollectorID,
		DisplayLat:       resolution.Point.Lat,
		DisplayLng:       resolution.Point.Lng,
		DistanceMeters:   resolution.DistanceMeters,
		PointSubstituted: resolution.Substituted,
		IsCompliant:      len(unpaid) == 0,
		UnpaidTaxes:      unpaidNames,
		TotalCollected:   total,
		CollectionCount:  len(settled),
	}, nil
}

func (s *mapService) CollectorMarkers(ctx context.Context) ([]CollectorMarker, error) {
	collectors, err := s.collectors.FindActiveGeolocated(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load collectors: %w", err)
	}

	markers := make([]CollectorMarker, 0, len(collectors))
	for _, c := range collectors {
		markers = append(markers, CollectorMarker{
			ID:               c.ID,
			Name:             c.LastName + " " + c.FirstName,
			RegistrationCode: c.RegistrationCode,
			Phone:            c.Phone,
			Connection:       c.Connection,
			LastConnectedAt:  c.LastConnectedAt,
			Lat:              *c.Latitude,
			Lng:              *c.Longitude,
		})
	}

	return markers, nil
}

func (s *mapService) LocateZone(ctx context.Context, lat, lng float64, kind *models.ZoneKind) (*ZoneLocation, error) {
	if err := validateCoordinates(lat, lng); err != nil {
		s.log.Warn("Invalid point for zone lookup", map[string]interface{}{"lat": lat, "lng": lng})
		return nil, err
	}

	zone, err := s.geoZones.FindContainingPoint(ctx, lat, lng, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to locate zone: %w", err)
	}

	if zone == nil {
		return &ZoneLocation{Found: false}, nil
	}
	return &ZoneLocation{Zone: zone, Found: true}, nil
}

func (s *mapService) UncoveredZones(ctx context.Context, kind *models.ZoneKind) ([]models.GeographicZone, error) {
	zones, err := s.geoZones.FindUncovered(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load uncovered zones: %w", err)
	}
	return zones, nil
}

func validateCoordinates(lat, lng float64) error {
	if lat < MinLatitude || lat > MaxLatitude {
		return fmt.Errorf("%w: latitude must be between %.0f and %.0f, got %f",
			ErrInvalidCoordinates, MinLatitude, MaxLatitude, lat)
	}
	if lng < MinLongitude || lng > MaxLongitude {
		return fmt.Errorf("%w: longitude must be between %.0f and %.0f, got %f",
			ErrInvalidCoordinates, MinLongitude, MaxLongitude, lng)
	}
	return nil
}
