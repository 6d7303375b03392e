package payments

import (
	"context"
	"fmt"

	pkgerrors "github.com/lucasmv/zapflow-backend/pkg/errors"
	"github.com/lucasmv/zapflow-backend/pkg/logger"
	"github.com/lucasmv/zapflow-backend/pkg/mercadopago"
	"github.com/lucasmv/zapflow-backend/pkg/metrics"

	"github.com/lucasmv/zapflow-backend/internal/orders"
	"github.com/lucasmv/zapflow-backend/pkg/db/models"
	"github.com/lucasmv/zapflow-backend/pkg/enums"
)

// PixIntent is the renderable payment payload returned to the storefront.
type PixIntent struct {
	PaymentID    string `json:"payment_id"`
	QRCode       string `json:"qr_code"`
	QRCodeBase64 string `json:"qr_code_base64"`
	CopyPaste    string `json:"copy_paste"`
}

// Provider is the slice of the Mercado Pago client the service needs.
type Provider interface {
	CreatePixPayment(ctx context.Context, accessToken string, params mercadopago.PixCreateParams) (*mercadopago.PixPayment, error)
}

// Service creates PIX charges for orders under each tenant's own credentials.
type Service interface {
	CreateIntent(ctx context.Context, company *models.Company, order *models.Order) (*PixIntent, error)
}

type service struct {
	provider Provider
	repo     orders.Repository
	logger   *logger.Logger
	metrics  *metrics.StorefrontMetrics
}

// NewService builds the payments service.
func NewService(provider Provider, repo orders.Repository, logg *logger.Logger, m *metrics.StorefrontMetrics) Service {
	return &service{provider: provider, repo: repo, logger: logg, metrics: m}
}

// CreateIntent charges the order total on the tenant's Mercado Pago account.
// The order id doubles as the provider idempotency key, so retrying a failed
// call can never produce a second charge for the same order.
func (s *service) CreateIntent(ctx context.Context, company *models.Company, order *models.Order) (*PixIntent, error) {
	if company == nil || order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company and order are required")
	}
	if order.CompanyID != company.ID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if !company.PixConfigured() {
		s.metrics.IncPixIntent("not_configured")
		return nil, pkgerrors.New(pkgerrors.CodeNotConfigured, "store has no pix account connected")
	}
	if order.PaymentStatus == enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
	}

	params := mercadopago.PixCreateParams{
		IdempotencyKey: order.ID.String(),
		Amount:         order.TotalPrice,
		Description:    fmt.Sprintf("Pedido #%s - %s", order.ShortID(), company.Name),
		PayerEmail:     payerEmail(order),
	}

	payment, err := s.provider.CreatePixPayment(ctx, *company.MPAccessToken, params)
	if err != nil {
		s.metrics.IncPixIntent("failure")
		return nil, err
	}

	if err := s.repo.SetPaymentID(ctx, order.ID, payment.ID); err != nil {
		// the charge exists but the link is lost; the webhook will miss it
		s.error(ctx, "binding payment id to order failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist payment id")
	}

	s.metrics.IncPixIntent("success")
	return &PixIntent{
		PaymentID:    payment.ID,
		QRCode:       payment.QRCode,
		QRCodeBase64: payment.QRCodeBase64,
		CopyPaste:    payment.CopyPasteCode(),
	}, nil
}

// payerEmail synthesizes a stable per-customer address; the storefront does
// not collect email but the provider requires one.
func payerEmail(order *models.Order) string {
	return fmt.Sprintf("cliente-%s@zapflow.app", order.CustomerPhone)
}

func (s *service) error(ctx context.Context, msg string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Error(ctx, msg, err)
}
