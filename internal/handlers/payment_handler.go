package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	apierrors "github.com/BebaneMarina/taxe-municipale/internal/errors"
	"github.com/BebaneMarina/taxe-municipale/internal/middleware"
	"github.com/BebaneMarina/taxe-municipale/internal/payment"
)

// PaymentHandler handles payment initiation HTTP requests.
type PaymentHandler struct {
	gateway *payment.Client
}

// NewPaymentHandler creates a new PaymentHandler instance.
func NewPaymentHandler(gateway *payment.Client) *PaymentHandler {
	return &PaymentHandler{
		gateway: gateway,
	}
}

// InitiatePaymentRequest represents the body for the payment initiation endpoint.
type InitiatePaymentRequest struct {
	PayerName string `json:"payer_name" binding:"required"`
	BillingID string `json:"billing_id" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
	Mode      string `json:"mode" binding:"omitempty,oneof=checkout instant"`
	Operator  string `json:"operator" binding:"omitempty"`
	ReturnURL string `json:"return_url" binding:"omitempty,url"`
}

// InitiatePaymentResponse represents the gateway outcome returned to the client.
type InitiatePaymentResponse struct {
	RedirectURL      string `json:"redirect_url,omitempty"`
	GatewayReference string `json:"gateway_reference,omitempty"`
	Status           string `json:"status"`
}

// StatusResponse represents the transaction state reported by the gateway.
type StatusResponse struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// Initiate handles POST /api/v1/payments/initiate.
// Mode "checkout" (the default) starts a hosted-checkout transaction and
// returns a redirect URL; mode "instant" triggers a direct mobile-money
// debit and returns the gateway reference.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.IsNegative() || amount.IsZero() {
		apierrors.BadRequest(c, "Amount must be a positive decimal", nil)
		return
	}

	if log != nil {
		log.Info("Initiating payment", map[string]interface{}{
			"billing_id": req.BillingID,
			"mode":       req.Mode,
		})
	}

	if req.Mode == "instant" {
		result, err := h.gateway.InstantPayment(c.Request.Context(), payment.InstantRequest{
			Phone:     req.Phone,
			PayerName: req.PayerName,
			Reference: req.BillingID,
			Amount:    amount,
			Operator:  req.Operator,
		})
		if err != nil {
			if errors.Is(err, payment.ErrGatewayRejected) {
				apierrors.BadRequest(c, "Payment gateway rejected the request", nil)
				return
			}
			apierrors.InternalServerError(c, "Failed to reach payment gateway", err)
			return
		}

		c.JSON(http.StatusOK, InitiatePaymentResponse{
			GatewayReference: result.GatewayReference,
			Status:           result.Status,
		})
		return
	}

	result, err := h.gateway.Initiate(c.Request.Context(), payment.InitiateRequest{
		PayerName: req.PayerName,
		BillingID: req.BillingID,
		Phone:     req.Phone,
		Amount:    amount,
		ReturnURL: req.ReturnURL,
	})
	if err != nil {
		if errors.Is(err, payment.ErrGatewayRejected) {
			apierrors.BadRequest(c, "Payment gateway rejected the request", nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to reach payment gateway", err)
		return
	}

	c.JSON(http.StatusOK, InitiatePaymentResponse{
		RedirectURL: result.RedirectURL,
		Status:      "initiated",
	})
}

// Status handles GET /api/v1/payments/:reference/status. The gateway is
// the source of truth for transaction state; a rejection means the
// reference is unknown to it.
func (h *PaymentHandler) Status(c *gin.Context) {
	reference := c.Param("reference")
	if reference == "" {
		apierrors.BadRequest(c, "Missing transaction reference", nil)
		return
	}

	result, err := h.gateway.CheckStatus(c.Request.Context(), payment.StatusRequest{
		Reference: reference,
	})
	if err != nil {
		if errors.Is(err, payment.ErrGatewayRejected) {
			apierrors.NotFound(c, "Transaction not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to reach payment gateway", err)
		return
	}

	c.JSON(http.StatusOK, StatusResponse{
		Reference: result.Reference,
		Status:    result.Status,
	})
}
