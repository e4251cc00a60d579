package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/BebaneMarina/taxe-municipale/internal/errors"
	"github.com/BebaneMarina/taxe-municipale/internal/middleware"
	"github.com/BebaneMarina/taxe-municipale/internal/models"
	"github.com/BebaneMarina/taxe-municipale/internal/services"
)

// MapHandler handles cartography HTTP requests.
type MapHandler struct {
	service services.MapService
}

// NewMapHandler creates a new MapHandler instance.
func NewMapHandler(service services.MapService) *MapHandler {
	return &MapHandler{
		service: service,
	}
}

// TaxpayerMarkersResponse represents the response for the map taxpayers endpoint.
type TaxpayerMarkersResponse struct {
	Taxpayers []services.TaxpayerMarker `json:"taxpayers"`
	Count     int                       `json:"count"`
}

// CollectorMarkersResponse represents the response for the map collectors endpoint.
type CollectorMarkersResponse struct {
	Collectors []services.CollectorMarker `json:"collectors"`
	Count      int                        `json:"count"`
}

// LocatePointRequest represents the body for the locate-point endpoint.
// Coordinates are pointers so a missing field is distinguishable from a
// legitimate zero: lat 0 is the equator, which crosses Gabon.
type LocatePointRequest struct {
	Lat  *float64 `json:"lat" binding:"required,min=-90,max=90"`
	Lng  *float64 `json:"lng" binding:"required,min=-180,max=180"`
	Kind string   `json:"kind" binding:"omitempty,oneof=quartier arrondissement secteur"`
}

// ZoneKindQuery represents the optional kind filter on zone list endpoints.
type ZoneKindQuery struct {
	Kind string `form:"kind" binding:"omitempty,oneof=quartier arrondissement secteur"`
}

// UncoveredZonesResponse represents the response for the uncovered zones endpoint.
type UncoveredZonesResponse struct {
	Zones []models.GeographicZone `json:"zones"`
	Count int                     `json:"count"`
}

// Taxpayers handles GET /api/v1/map/taxpayers.
// It returns every active geolocated taxpayer as a map marker with a
// resolved display coordinate and compliance detail.
func (h *MapHandler) Taxpayers(c *gin.Context) {
	log := middleware.GetLogger(c)

	markers, err := h.service.TaxpayerMarkers(c.Request.Context(), time.Now())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load taxpayer markers", err)
		return
	}

	if log != nil {
		log.Info("Taxpayer markers loaded", map[string]interface{}{
			"count": len(markers),
		})
	}

	c.JSON(http.StatusOK, TaxpayerMarkersResponse{
		Taxpayers: markers,
		Count:     len(markers),
	})
}

// Collectors handles GET /api/v1/map/collectors.
// It returns active collectors with a known position.
func (h *MapHandler) Collectors(c *gin.Context) {
	markers, err := h.service.CollectorMarkers(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load collector markers", err)
		return
	}

	c.JSON(http.StatusOK, CollectorMarkersResponse{
		Collectors: markers,
		Count:      len(markers),
	})
}

// LocatePoint handles POST /api/v1/geozones/locate-point.
// It finds the geographic zone containing the given point. A point
// outside every zone is a normal answer with found=false, not an error.
func (h *MapHandler) LocatePoint(c *gin.Context) {
	var req LocatePointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	location, err := h.service.LocateZone(c.Request.Context(), *req.Lat, *req.Lng, zoneKindFilter(req.Kind))
	if err != nil {
		if errors.Is(err, services.ErrInvalidCoordinates) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to locate point", err)
		return
	}

	c.JSON(http.StatusOK, location)
}

// Uncovered handles GET /api/v1/geozones/uncovered.
// It lists polygon zones containing no active geolocated taxpayer.
func (h *MapHandler) Uncovered(c *gin.Context) {
	var req ZoneKindQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	zones, err := h.service.UncoveredZones(c.Request.Context(), zoneKindFilter(req.Kind))
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load uncovered zones", err)
		return
	}

	c.JSON(http.StatusOK, UncoveredZonesResponse{
		Zones: zones,
		Count: len(zones),
	})
}

// zoneKindFilter converts an optional kind string into a filter pointer.
func zoneKindFilter(kind string) *models.ZoneKind {
	if kind == "" {
		return nil
	}
	k := models.ZoneKind(kind)
	return &k
}
