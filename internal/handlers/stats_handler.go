package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/BebaneMarina/taxe-municipale/internal/errors"
	"github.com/BebaneMarina/taxe-municipale/internal/middleware"
	"github.com/BebaneMarina/taxe-municipale/internal/period"
	"github.com/BebaneMarina/taxe-municipale/internal/services"
)

// StatsHandler handles collection statistics HTTP requests.
type StatsHandler struct {
	service services.StatsService
}

// NewStatsHandler creates a new StatsHandler instance.
func NewStatsHandler(service services.StatsService) *StatsHandler {
	return &StatsHandler{
		service: service,
	}
}

// DashboardRequest represents the optional reporting range for the dashboard.
type DashboardRequest struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// EvolutionRequest represents the query parameters for the evolution endpoint.
type EvolutionRequest struct {
	Granularity string `form:"granularity" binding:"omitempty,oneof=day week month"`
}

// ZoneBreakdownResponse represents the response for the per-zone endpoint.
type ZoneBreakdownResponse struct {
	Zones []services.ZoneStats `json:"zones"`
	Count int                  `json:"count"`
}

// Dashboard handles GET /api/v1/stats/dashboard.
// It returns city-wide aggregates and the top zones by collected amount,
// optionally restricted to a from/to reporting range.
func (h *StatsHandler) Dashboard(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req DashboardRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	from, err := parseDay(req.From)
	if err != nil {
		apierrors.BadRequest(c, "Invalid from date", nil)
		return
	}
	to, err := parseDay(req.To)
	if err != nil {
		apierrors.BadRequest(c, "Invalid to date", nil)
		return
	}
	if from != nil && to != nil && to.Before(*from) {
		apierrors.BadRequest(c, "Date range is inverted", nil)
		return
	}

	stats, err := h.service.Dashboard(c.Request.Context(), time.Now(), from, to)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to compute dashboard stats", err)
		return
	}

	if log != nil {
		log.Info("Dashboard stats computed", map[string]interface{}{
			"taxpayers": stats.TotalTaxpayers,
			"top_zones": len(stats.TopZones),
		})
	}

	c.JSON(http.StatusOK, stats)
}

// Zones handles GET /api/v1/stats/zones.
// It returns the full per-zone breakdown ordered by zone id.
func (h *StatsHandler) Zones(c *gin.Context) {
	zones, err := h.service.ZoneBreakdown(c.Request.Context(), time.Now())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to compute zone stats", err)
		return
	}

	c.JSON(http.StatusOK, ZoneBreakdownResponse{
		Zones: zones,
		Count: len(zones),
	})
}

// Evolution handles GET /api/v1/stats/evolution.
// It returns the zero-filled collection time series for the requested
// granularity (day, week or month). Day is the default.
func (h *StatsHandler) Evolution(c *gin.Context) {
	var req EvolutionRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	granularity := services.Granularity(req.Granularity)
	if req.Granularity == "" {
		granularity = services.GranularityDay
	}

	series, err := h.service.Evolution(c.Request.Context(), granularity, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrInvalidGranularity) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to compute evolution series", err)
		return
	}

	c.JSON(http.StatusOK, series)
}

// parseDay parses an optional YYYY-MM-DD query value.
func parseDay(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(period.DayFormat, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
