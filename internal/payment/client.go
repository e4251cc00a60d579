// Package payment holds the mobile-money gateway client. The client is
// an explicitly constructed collaborator injected where needed; there is
// no process-wide instance.
package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BebaneMarina/taxe-municipale/internal/config"
	"github.com/BebaneMarina/taxe-municipale/internal/logger"
)

const requestTimeout = 30 * time.Second

// ErrGatewayRejected is returned when the gateway answers with a
// non-success status.
var ErrGatewayRejected = errors.New("payment gateway rejected the request")

// Client talks to the BambooPay-style payment gateway.
type Client struct {
	httpClient     *http.Client
	log            *logger.Logger
	baseURL        string
	merchantID     string
	merchantSecret string
}

// NewClient builds a gateway client from configuration. httpClient may
// be nil, in which case a default client with a 30s timeout is used.
func NewClient(cfg config.GatewayConfig, httpClient *http.Client, log *logger.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &Client{
		httpClient:     httpClient,
		log:            log,
		baseURL:        cfg.BaseURL,
		merchantID:     cfg.MerchantID,
		merchantSecret: cfg.MerchantSecret,
	}
}

// InitiateRequest describes a hosted-checkout payment initiation.
type InitiateRequest struct {
	PayerName string          `json:"payerName"`
	BillingID string          `json:"billingId"`
	Phone     string          `json:"phone"`
	Amount    decimal.Decimal `json:"transactionAmount"`
	ReturnURL string          `json:"return_url,omitempty"`
	StatusURL string          `json:"update_status_url,omitempty"`
}

// InitiateResponse carries the redirect URL the payer must visit.
type InitiateResponse struct {
	RedirectURL string `json:"redirect_url"`
}

// InstantRequest describes a direct mobile-money debit.
type InstantRequest struct {
	Phone       string          `json:"phone"`
	PayerName   string          `json:"payer_name"`
	Reference   string          `json:"reference"`
	Amount      decimal.Decimal `json:"amount"`
	CallbackURL string          `json:"callback_url"`
	Operator    string          `json:"operateur,omitempty"`
}

// InstantResponse carries the gateway reference for a direct debit.
type InstantResponse struct {
	GatewayReference string `json:"reference_bp"`
	Status           string `json:"status"`
}

// Initiate starts a hosted-checkout transaction via the gateway /send
// endpoint. Amounts travel as strings; the gateway does not accept JSON
// numbers.
func (c *Client) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	payload := map[string]string{
		"payerName":         req.PayerName,
		"billingId":         req.BillingID,
		"transactionAmount": req.Amount.StringFixed(2),
		"merchant_id":       c.merchantID,
		"phone":             req.Phone,
	}
	if req.ReturnURL != "" {
		payload["return_url"] = req.ReturnURL
	}
	if req.StatusURL != "" {
		payload["update_status_url"] = req.StatusURL
	}

	var resp InitiateResponse
	if err := c.post(ctx, "/send", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// InstantPayment triggers a direct mobile-money debit via the gateway
// /mobile/instant-payment endpoint.
func (c *Client) InstantPayment(ctx context.Context, req InstantRequest) (*InstantResponse, error) {
	payload := map[string]string{
		"phone":        req.Phone,
		"amount":       req.Amount.StringFixed(2),
		"payer_name":   req.PayerName,
		"reference":    req.Reference,
		"merchant_id":  c.merchantID,
		"callback_url": req.CallbackURL,
	}
	if req.Operator != "" {
		payload["operateur"] = req.Operator
	}

	var resp InstantResponse
	if err := c.post(ctx, "/mobile/instant-payment", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StatusRequest identifies a previously initiated transaction.
type StatusRequest struct {
	Reference string `json:"reference"`
}

// StatusResponse carries the gateway-reported transaction state.
type StatusResponse struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// CheckStatus queries the gateway for the current state of a
// transaction via /transaction/status.
func (c *Client) CheckStatus(ctx context.Context, req StatusRequest) (*StatusResponse, error) {
	payload := map[string]string{
		"reference":   req.Reference,
		"merchant_id": c.merchantID,
	}

	var resp StatusResponse
	if err := c.post(ctx, "/transaction/status", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal gateway payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", c.authHeader())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("gateway call %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var gatewayErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&gatewayErr)

		c.log.Error("Gateway call rejected", ErrGatewayRejected, map[string]interface{}{
			"path":    path,
			"status":  resp.StatusCode,
			"message": gatewayErr.Message,
		})
		return fmt.Errorf("%w: %s (status %d)", ErrGatewayRejected, gatewayErr.Message, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}

func (c *Client) authHeader() string {
	credentials := c.merchantID + ":" + c.merchantSecret
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
}
