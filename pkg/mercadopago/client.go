package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/lucasmv/zapflow-backend/pkg/errors"
	"github.com/lucasmv/zapflow-backend/pkg/logger"
)

const (
	defaultBaseURL              = "https://api.mercadopago.com"
	responseBodyReadLimit int64 = 4096

	// StatusApproved is the only provider status treated as final-paid.
	StatusApproved = "approved"
)

// Client exposes the Mercado Pago payment primitives with centralized logging
// and error mapping. Access tokens are per-tenant and supplied per call; the
// client itself holds no credentials.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logger.Logger
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the provider base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the Mercado Pago wrapper.
func NewClient(logg *logger.Logger, opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logg,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// PixCreateParams describes a PIX payment creation request.
type PixCreateParams struct {
	IdempotencyKey string
	Amount         decimal.Decimal
	Description    string
	PayerEmail     string
}

// PixPayment is the renderable payload returned by a PIX creation.
type PixPayment struct {
	ID           string
	Status       string
	QRCode       string
	QRCodeBase64 string
}

// CopyPasteCode is the "copia e cola" string shown next to the QR image. The
// provider reuses the QR payload for it.
func (p PixPayment) CopyPasteCode() string {
	return p.QRCode
}

// PaymentInfo is the authoritative payment state fetched from the provider.
type PaymentInfo struct {
	ID     string
	Status string
}

// IsApproved reports whether the provider settled the payment.
func (p PaymentInfo) IsApproved() bool {
	return p.Status == StatusApproved
}

// CreatePixPayment creates a PIX charge under the tenant's own credentials.
// The idempotency key ties the provider-side payment to one order so retried
// calls never double-charge.
func (c *Client) CreatePixPayment(ctx context.Context, accessToken string, params PixCreateParams) (*PixPayment, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "mercadopago client not configured")
	}
	if strings.TrimSpace(accessToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotConfigured, "mercado pago access token required")
	}
	if params.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}

	amount, _ := params.Amount.Round(2).Float64()
	body := map[string]any{
		"transaction_amount": amount,
		"description":        params.Description,
		"payment_method_id":  "pix",
		"installments":       1,
		"payer": map[string]any{
			"email": params.PayerEmail,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal pix request")
	}

	url := fmt.Sprintf("%s/v1/payments", strings.TrimRight(c.baseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build pix request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+accessToken)
	httpReq.Header.Set("X-Idempotency-Key", params.IdempotencyKey)

	c.log(ctx, "request", "create_pix_payment", map[string]any{
		"idempotency_key": params.IdempotencyKey,
		"amount":          amount,
	})

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log(ctx, "error", "create_pix_payment", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute pix request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		providerMsg := providerMessage(msg)
		c.log(ctx, "error", "create_pix_payment", map[string]any{"status": resp.StatusCode, "error": providerMsg})
		return nil, pkgerrors.Wrap(domainCodeForStatus(resp.StatusCode), fmt.Errorf("status %d: %s", resp.StatusCode, providerMsg), "mercado pago create payment failed")
	}

	var apiResp struct {
		ID                 json.Number `json:"id"`
		Status             string      `json:"status"`
		PointOfInteraction struct {
			TransactionData struct {
				QRCode       string `json:"qr_code"`
				QRCodeBase64 string `json:"qr_code_base64"`
			} `json:"transaction_data"`
		} `json:"point_of_interaction"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode pix response")
	}

	payment := &PixPayment{
		ID:           apiResp.ID.String(),
		Status:       apiResp.Status,
		QRCode:       apiResp.PointOfInteraction.TransactionData.QRCode,
		QRCodeBase64: apiResp.PointOfInteraction.TransactionData.QRCodeBase64,
	}
	c.log(ctx, "response", "create_pix_payment", map[string]any{
		"payment_id": payment.ID,
		"status":     payment.Status,
	})
	return payment, nil
}

// GetPayment fetches the authoritative payment state. Used by the webhook
// reconciler to verify status instead of trusting the callback body.
func (c *Client) GetPayment(ctx context.Context, accessToken, paymentID string) (*PaymentInfo, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "mercadopago client not configured")
	}
	if strings.TrimSpace(accessToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotConfigured, "mercado pago access token required")
	}
	trimmedID := strings.TrimSpace(paymentID)
	if trimmedID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}

	url := fmt.Sprintf("%s/v1/payments/%s", strings.TrimRight(c.baseURL, "/"), trimmedID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build get payment request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log(ctx, "error", "get_payment", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute get payment request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(domainCodeForStatus(resp.StatusCode), fmt.Errorf("status %d: %s", resp.StatusCode, providerMessage(msg)), "mercado pago get payment failed")
	}

	var apiResp struct {
		ID     json.Number `json:"id"`
		Status string      `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode get payment response")
	}

	info := &PaymentInfo{ID: apiResp.ID.String(), Status: apiResp.Status}
	c.log(ctx, "response", "get_payment", map[string]any{
		"payment_id": info.ID,
		"status":     info.Status,
	})
	return info, nil
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("mercadopago %s", op), fmt.Errorf("%v", fields["error"]))
	default:
		c.logger.Info(ctx, fmt.Sprintf("mercadopago %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"token", "secret", "email", "phone"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func providerMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(body))
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}
