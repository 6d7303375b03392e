package board

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lucasmv/zapflow-backend/internal/orders"
	"github.com/lucasmv/zapflow-backend/pkg/enums"
	pkgerrors "github.com/lucasmv/zapflow-backend/pkg/errors"
	"github.com/lucasmv/zapflow-backend/pkg/logger"
)

// Service drives the operator kanban: full snapshots for (re)connects and
// single-step status advancement.
type Service interface {
	Snapshot(ctx context.Context, companyID uuid.UUID) ([]OrderView, error)
	Advance(ctx context.Context, companyID, orderID uuid.UUID) (*OrderView, error)
}

type service struct {
	repo     orders.Repository
	notifier Notifier
	logger   *logger.Logger
	now      func() time.Time
}

// NewService builds the board service.
func NewService(repo orders.Repository, notifier Notifier, logg *logger.Logger) Service {
	return &service{
		repo:     repo,
		notifier: notifier,
		logger:   logg,
		now:      time.Now,
	}
}

// Snapshot returns every active order plus today's deliveries, the complete
// state a board needs after connect or reconnect.
func (s *service) Snapshot(ctx context.Context, companyID uuid.UUID) ([]OrderView, error) {
	results, err := s.repo.ListBoard(ctx, companyID, startOfDay(s.now()))
	if err != nil {
		return nil, err
	}
	views := make([]OrderView, 0, len(results))
	for i := range results {
		views = append(views, ToOrderView(&results[i]))
	}
	return views, nil
}

// Advance moves an order to its next status. The transition is written as a
// compare-and-set on the current status, so a concurrent advance loses
// cleanly with a state conflict instead of skipping a column.
func (s *service) Advance(ctx context.Context, companyID, orderID uuid.UUID) (*OrderView, error) {
	order, err := s.repo.FindForCompany(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}

	next, ok := order.Status.Next()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already delivered")
	}

	moved, err := s.repo.AdvanceStatus(ctx, companyID, orderID, order.Status, next)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
	}

	// cash and card settle on handoff; PIX settles only through the webhook
	if next == enums.OrderStatusDelivered &&
		order.AddressDetails.PaymentMethod != enums.PaymentMethodPix {
		if _, err := s.repo.MarkPaid(ctx, orderID); err != nil {
			s.warn(ctx, "marking delivered order paid failed", err)
		}
	}

	updated, err := s.repo.FindForCompany(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}

	view := ToOrderView(updated)
	if s.notifier != nil {
		if err := s.notifier.Publish(ctx, companyID, Event{Kind: EventOrderUpdated, Order: view}); err != nil {
			s.warn(ctx, "publishing board update failed", err)
		}
	}
	return &view, nil
}

func (s *service) warn(ctx context.Context, msg string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(s.logger.WithField(ctx, "error", err.Error()), msg)
}

func startOfDay(at time.Time) time.Time {
	year, month, day := at.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, at.Location())
}
