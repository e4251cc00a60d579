package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apierrors "github.com/BebaneMarina/taxe-municipale/internal/errors"
	"github.com/BebaneMarina/taxe-municipale/internal/middleware"
	"github.com/BebaneMarina/taxe-municipale/internal/services"
)

// ComplianceHandler handles taxpayer compliance HTTP requests.
type ComplianceHandler struct {
	service services.ComplianceService
}

// NewComplianceHandler creates a new ComplianceHandler instance.
func NewComplianceHandler(service services.ComplianceService) *ComplianceHandler {
	return &ComplianceHandler{
		service: service,
	}
}

// ComplianceResponse represents the compliance summary for one taxpayer.
type ComplianceResponse struct {
	TaxpayerID  int64    `json:"taxpayer_id"`
	IsCompliant bool     `json:"is_compliant"`
	UnpaidTaxes []string `json:"unpaid_taxes"`
}

// Get handles GET /api/v1/taxpayers/:id/compliance.
// It evaluates the taxpayer's payment status against every current tax
// assignment and lists the unpaid tax names.
func (h *ComplianceHandler) Get(c *gin.Context) {
	log := middleware.GetLogger(c)

	taxpayerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || taxpayerID <= 0 {
		apierrors.BadRequest(c, "Invalid taxpayer id", nil)
		return
	}

	if log != nil {
		log.Info("Processing compliance request", map[string]interface{}{
			"taxpayer_id": taxpayerID,
		})
	}

	summary, err := h.service.Evaluate(c.Request.Context(), taxpayerID, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrTaxpayerNotFound) {
			apierrors.NotFound(c, "Taxpayer not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to evaluate compliance", err)
		return
	}

	c.JSON(http.StatusOK, ComplianceResponse{
		TaxpayerID:  taxpayerID,
		IsCompliant: summary.IsCompliant,
		UnpaidTaxes: summary.UnpaidTaxes,
	})
}
