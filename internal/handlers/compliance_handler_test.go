package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BebaneMarina/taxe-municipale/internal/logger"
	"github.com/BebaneMarina/taxe-municipale/internal/middleware"
	"github.com/BebaneMarina/taxe-municipale/internal/services"
)

// MockComplianceService is a mock implementation of services.ComplianceService.
type MockComplianceService struct {
	mock.Mock
}

func (m *MockComplianceService) Evaluate(ctx context.Context, taxpayerID int64, now time.Time) (*services.ComplianceSummary, error) {
	args := m.Called(ctx, taxpayerID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ComplianceSummary), args.Error(1)
}

func (m *MockComplianceService) IsCompliant(ctx context.Context, taxpayerID int64, now time.Time) (bool, error) {
	args := m.Called(ctx, taxpayerID, now)
	return args.Bool(0), args.Error(1)
}

func setupComplianceRouter(service services.ComplianceService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.New("test")
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))

	handler := NewComplianceHandler(service)
	router.GET("/api/v1/taxpayers/:id/compliance", handler.Get)
	return router
}

func TestComplianceGet_Compliant(t *testing.T) {
	service := new(MockComplianceService)
	service.On("Evaluate", mock.Anything, int64(7), mock.AnythingOfType("time.Time")).
		Return(&services.ComplianceSummary{IsCompliant: true, UnpaidTaxes: []string{}}, nil)

	router := setupComplianceRouter(service)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/taxpayers/7/compliance", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ComplianceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.TaxpayerID)
	assert.True(t, resp.IsCompliant)
	assert.Empty(t, resp.UnpaidTaxes)
}

func TestComplianceGet_NonCompliant(t *testing.T) {
	service := new(MockComplianceService)
	service.On("Evaluate", mock.Anything, int64(7), mock.AnythingOfType("time.Time")).
		Return(&services.ComplianceSummary{IsCompliant: false, UnpaidTaxes: []string{"Taxe de marché"}}, nil)

	router := setupComplianceRouter(service)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/taxpayers/7/compliance", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ComplianceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.IsCompliant)
	assert.Equal(t, []string{"Taxe de marché"}, resp.UnpaidTaxes)
}

func TestComplianceGet_UnknownTaxpayer(t *testing.T) {
	service := new(MockComplianceService)
	service.On("Evaluate", mock.Anything, int64(99), mock.AnythingOfType("time.Time")).
		Return(nil, services.ErrTaxpayerNotFound)

	router := setupComplianceRouter(service)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/taxpayers/99/compliance", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestComplianceGet_BadID(t *testing.T) {
	service := new(MockComplianceService)
	router := setupComplianceRouter(service)

	for _, id := range []string{"abc", "-3", "0"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/taxpayers/"+id+"/compliance", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "id %q", id)
	}
	service.AssertNotCalled(t, "Evaluate")
}

func TestComplianceGet_ServiceError(t *testing.T) {
	service := new(MockComplianceService)
	service.On("Evaluate", mock.Anything, int64(7), mock.AnythingOfType("time.Time")).
		Return(nil, errors.New("db down"))

	router := setupComplianceRouter(service)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/taxpayers/7/compliance", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
