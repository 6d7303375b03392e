package mercadopago

import (
	"context"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/lucasmv/zapflow-backend/pkg/errors"
	"github.com/lucasmv/zapflow-backend/pkg/logger"
	mpclient "github.com/lucasmv/zapflow-backend/pkg/mercadopago"
	"github.com/lucasmv/zapflow-backend/pkg/metrics"

	"github.com/lucasmv/zapflow-backend/internal/board"
	"github.com/lucasmv/zapflow-backend/internal/orders"
	"github.com/lucasmv/zapflow-backend/pkg/db/models"
)

// Outcome is what reconciliation decided for one delivery.
type Outcome string

const (
	OutcomePaid        Outcome = "paid"
	OutcomeDuplicate   Outcome = "duplicate"
	OutcomeIgnored     Outcome = "ignored"
	OutcomeNotApproved Outcome = "not_approved"
	OutcomeError       Outcome = "error"
)

// Event is the parsed webhook delivery.
type Event struct {
	Type      string
	PaymentID string
}

// Provider is the slice of the Mercado Pago client used for re-fetching.
type Provider interface {
	GetPayment(ctx context.Context, accessToken, paymentID string) (*mpclient.PaymentInfo, error)
}

// CompanyLoader resolves the tenant owning a webhook's order.
type CompanyLoader interface {
	FindCompanyByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
}

// Service reconciles provider callbacks against local orders. The callback
// body is never trusted: payment state is always re-fetched with the
// tenant's own credentials before anything is written.
type Service struct {
	provider  Provider
	orderRepo orders.Repository
	companies CompanyLoader
	notifier  board.Notifier
	logger    *logger.Logger
	metrics   *metrics.StorefrontMetrics
}

// NewService builds the webhook reconciler.
func NewService(provider Provider, orderRepo orders.Repository, companies CompanyLoader, notifier board.Notifier, logg *logger.Logger, m *metrics.StorefrontMetrics) *Service {
	return &Service{
		provider:  provider,
		orderRepo: orderRepo,
		companies: companies,
		notifier:  notifier,
		logger:    logg,
		metrics:   m,
	}
}

// HandleEvent processes one delivery and reports the outcome. It returns an
// error only for transient failures worth logging; unknown payments and
// duplicate deliveries are normal traffic and resolve silently.
func (s *Service) HandleEvent(ctx context.Context, event Event) (Outcome, error) {
	paymentID := strings.TrimSpace(event.PaymentID)
	if paymentID == "" || event.Type != "payment" {
		s.metrics.IncWebhookEvent(string(OutcomeIgnored))
		return OutcomeIgnored, nil
	}

	order, err := s.orderRepo.FindByPaymentID(ctx, paymentID)
	if err != nil {
		if domainErr := pkgerrors.As(err); domainErr != nil && domainErr.Code() == pkgerrors.CodeNotFound {
			// retries for orders of other deployments, or charges created
			// before a crash wiped the binding; nothing to do
			s.metrics.IncWebhookEvent(string(OutcomeIgnored))
			return OutcomeIgnored, nil
		}
		s.metrics.IncWebhookEvent(string(OutcomeError))
		return OutcomeError, err
	}

	company, err := s.companies.FindCompanyByID(ctx, order.CompanyID)
	if err != nil {
		s.metrics.IncWebhookEvent(string(OutcomeError))
		return OutcomeError, err
	}
	if !company.PixConfigured() {
		s.metrics.IncWebhookEvent(string(OutcomeError))
		return OutcomeError, pkgerrors.New(pkgerrors.CodeNotConfigured, "tenant lost its pix credentials")
	}

	info, err := s.provider.GetPayment(ctx, *company.MPAccessToken, paymentID)
	if err != nil {
		s.metrics.IncWebhookEvent(string(OutcomeError))
		return OutcomeError, err
	}
	if !info.IsApproved() {
		s.metrics.IncWebhookEvent(string(OutcomeNotApproved))
		return OutcomeNotApproved, nil
	}

	marked, err := s.orderRepo.MarkPaid(ctx, order.ID)
	if err != nil {
		s.metrics.IncWebhookEvent(string(OutcomeError))
		return OutcomeError, err
	}
	if !marked {
		s.metrics.IncWebhookEvent(string(OutcomeDuplicate))
		return OutcomeDuplicate, nil
	}

	if s.notifier != nil {
		updated, loadErr := s.orderRepo.FindByPaymentID(ctx, paymentID)
		if loadErr == nil {
			event := board.Event{Kind: board.EventOrderPaid, Order: board.ToOrderView(updated)}
			if publishErr := s.notifier.Publish(ctx, company.ID, event); publishErr != nil {
				s.warn(ctx, "publishing order_paid failed", publishErr)
			}
		}
	}

	s.metrics.IncWebhookEvent(string(OutcomePaid))
	s.info(ctx, order, "pix payment reconciled")
	return OutcomePaid, nil
}

func (s *Service) info(ctx context.Context, order *models.Order, msg string) {
	if s.logger == nil {
		return
	}
	s.logger.Info(s.logger.WithOrderID(ctx, order.ID.String()), msg)
}

func (s *Service) warn(ctx context.Context, msg string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(s.logger.WithField(ctx, "error", err.Error()), msg)
}
