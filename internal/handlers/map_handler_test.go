package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BebaneMarina/taxe-municipale/internal/logger"
	"github.com/BebaneMarina/taxe-municipale/internal/middleware"
	"github.com/BebaneMarina/taxe-municipale/internal/models"
	"github.com/BebaneMarina/taxe-municipale/internal/services"
)

// MockMapService is a mock implementation of services.MapService.
type MockMapService struct {
	mock.Mock
}

func (m *MockMapService) TaxpayerMarkers(ctx context.Context, now time.Time) ([]services.TaxpayerMarker, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.TaxpayerMarker), args.Error(1)
}

func (m *MockMapService) CollectorMarkers(ctx context.Context) ([]services.CollectorMarker, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.CollectorMarker), args.Error(1)
}

func (m *MockMapService) LocateZone(ctx context.Context, lat, lng float64, kind *models.ZoneKind) (*services.ZoneLocation, error) {
	args := m.Called(ctx, lat, lng, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ZoneLocation), args.Error(1)
}

func (m *MockMapService) UncoveredZones(ctx context.Context, kind *models.ZoneKind) ([]models.GeographicZone, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GeographicZone), args.Error(1)
}

func setupMapRouter(service services.MapService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.New("test")
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))

	handler := NewMapHandler(service)
	v1 := router.Group("/api/v1")
	v1.GET("/map/taxpayers", handler.Taxpayers)
	v1.GET("/map/collectors", handler.Collectors)
	v1.POST("/geozones/locate-point", handler.LocatePoint)
	v1.GET("/geozones/uncovered", handler.Uncovered)
	return router
}

func TestMapTaxpayers(t *testing.T) {
	service := new(MockMapService)
	service.On("TaxpayerMarkers", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]services.TaxpayerMarker{
			{ID: 1, Name: "Ondo Marie", DisplayLat: 0.39, DisplayLng: 9.45, UnpaidTaxes: []string{}, TotalCollected: decimal.NewFromInt(500)},
		}, nil)

	router := setupMapRouter(service)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/map/taxpayers", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp TaxpayerMarkersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Taxpayers, 1)
	assert.Equal(t, "Ondo Marie", resp.Taxpayers[0].Name)
}

func TestMapCollectors(t *testing.T) {
	service := new(MockMapService)
	service.On("CollectorMarkers", mock.Anything).Return([]services.CollectorMarker{
		{ID: 3, Name: "Mba Jean", Lat: 0.41, Lng: 9.46},
	}, nil)

	router := setupMapRouter(service)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/map/collectors", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp CollectorMarkersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestLocatePoint_Found(t *testing.T) {
	service := new(MockMapService)
	service.On("LocateZone", mock.Anything, 0.39, 9.45, (*models.ZoneKind)(nil)).
		Return(&services.ZoneLocation{Found: true, Zone: &models.GeographicZone{ID: 4, Name: "Centre-ville"}}, nil)

	router := setupMapRouter(service)
	body := bytes.NewBufferString(`{"lat":0.39,"lng":9.45}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/geozones/locate-point", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp services.ZoneLocation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Found)
	require.NotNil(t, resp.Zone)
	assert.Equal(t, int64(4), resp.Zone.ID)
}

func TestLocatePoint_NotFoundIsStillOK(t *testing.T) {
	service := new(MockMapService)
	service.On("LocateZone", mock.Anything, 0.39, 9.45, (*models.ZoneKind)(nil)).
		Return(&services.ZoneLocation{Found: false}, nil)

	router := setupMapRouter(service)
	body := bytes.NewBufferString(`{"lat":0.39,"lng":9.45}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/geozones/locate-point", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp services.ZoneLocation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Found)
}

func TestLocatePoint_KindFilter(t *testing.T) {
	service := new(MockMapService)
	kind := models.ZoneKindDistrict
	service.On("LocateZone", mock.Anything, 0.39, 9.45, &kind).
		Return(&services.ZoneLocation{Found: false}, nil)

	router := setupMapRouter(service)
	body := bytes.NewBufferString(`{"lat":0.39,"lng":9.45,"kind":"arrondissement"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/geozones/locate-point", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	service.AssertExpectations(t)
}

func TestLocatePoint_EquatorIsValid(t *testing.T) {
	// Libreville sits almost exactly on the equator; lat 0 is a real
	// coordinate here, not a missing field.
	service := new(MockMapService)
	service.On("LocateZone", mock.Anything, 0.0, 9.45, (*models.ZoneKind)(nil)).
		Return(&services.ZoneLocation{Found: true, Zone: &models.GeographicZone{ID: 2, Name: "Oloumi"}}, nil)

	router := setupMapRouter(service)
	body := bytes.NewBufferString(`{"lat":0,"lng":9.45}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/geozones/locate-point", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	service.AssertExpectations(t)
}

func TestLocatePoint_OriginIsValid(t *testing.T) {
	service := new(MockMapService)
	service.On("LocateZone", mock.Anything, 0.0, 0.0, (*models.ZoneKind)(nil)).
		Return(&services.ZoneLocation{Found: false}, nil)

	router := setupMapRouter(service)
	body := bytes.NewBufferString(`{"lat":0,"lng":0}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/geozones/locate-point", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	service.AssertExpectations(t)
}

func TestLocatePoint_ValidationErrors(t *testing.T) {
	service := new(MockMapService)
	router := setupMapRouter(service)

	cases := []string{
		`{"lng":9.45}`,                            // missing lat
		`{"lat":95,"lng":9.45}`,                   // lat out of range
		`{"lat":0.39,"lng":200}`,                  // lng out of range
		`{"lat":0.39,"lng":9.45,"kind":"region"}`, // unknown kind
		`not json`,
	}

	for _, c := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/geozones/locate-point", bytes.NewBufferString(c))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", c)
	}
	service.AssertNotCalled(t, "LocateZone")
}

func TestUncovered(t *testing.T) {
	service := new(MockMapService)
	service.On("UncoveredZones", mock.Anything, (*models.ZoneKind)(nil)).
		Return([]models.GeographicZone{{ID: 9, Name: "Alibandeng"}}, nil)

	router := setupMapRouter(service)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/geozones/uncovered", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp UncoveredZonesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestUncovered_BadKind(t *testing.T) {
	service := new(MockMapService)
	router := setupMapRouter(service)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/geozones/uncovered?kind=region", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	service.AssertNotCalled(t, "UncoveredZones")
}
