package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucasmv/zapflow-backend/internal/board"
	"github.com/lucasmv/zapflow-backend/internal/orders"
	"github.com/lucasmv/zapflow-backend/pkg/pagination"
)

// Summary is the owner's same-day overview.
type Summary struct {
	OrdersToday       int64             `json:"orders_today"`
	RevenueToday      decimal.Decimal   `json:"revenue_today"`
	PendingCount      int64             `json:"pending_count"`
	NewCustomersToday int64             `json:"new_customers_today"`
	RecentOrders      []board.OrderView `json:"recent_orders"`
}

// HistoryPage is one slice of a tenant's order history.
type HistoryPage struct {
	Orders     []board.OrderView `json:"orders"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

const recentOrdersLimit = 5

// Service computes the dashboard summary and order history.
type Service interface {
	Summarize(ctx context.Context, companyID uuid.UUID) (*Summary, error)
	History(ctx context.Context, companyID uuid.UUID, params pagination.Params) (*HistoryPage, error)
}

type customerCounter interface {
	CountSince(ctx context.Context, companyID uuid.UUID, since time.Time) (int64, error)
}

type service struct {
	repo      orders.Repository
	customers customerCounter
	now       func() time.Time
}

// NewService builds the dashboard service.
func NewService(repo orders.Repository, customers customerCounter) Service {
	return &service{repo: repo, customers: customers, now: time.Now}
}

// Summarize aggregates today's counts and revenue and attaches the latest
// orders. "Today" starts at local midnight of the server clock.
func (s *service) Summarize(ctx context.Context, companyID uuid.UUID) (*Summary, error) {
	since := startOfDay(s.now())

	stats, err := s.repo.DashboardStats(ctx, companyID, since)
	if err != nil {
		return nil, err
	}

	var newCustomers int64
	if s.customers != nil {
		newCustomers, err = s.customers.CountSince(ctx, companyID, since)
		if err != nil {
			return nil, err
		}
	}

	recent, err := s.repo.ListRecent(ctx, companyID, recentOrdersLimit)
	if err != nil {
		return nil, err
	}
	views := make([]board.OrderView, 0, len(recent))
	for i := range recent {
		views = append(views, board.ToOrderView(&recent[i]))
	}

	return &Summary{
		OrdersToday:       stats.OrdersCount,
		RevenueToday:      stats.Revenue,
		PendingCount:      stats.PendingCount,
		NewCustomersToday: newCustomers,
		RecentOrders:      views,
	}, nil
}

// History pages through every order the store ever received, newest first.
func (s *service) History(ctx context.Context, companyID uuid.UUID, params pagination.Params) (*HistoryPage, error) {
	rows, next, err := s.repo.ListHistory(ctx, companyID, params)
	if err != nil {
		return nil, err
	}

	views := make([]board.OrderView, 0, len(rows))
	for i := range rows {
		views = append(views, board.ToOrderView(&rows[i]))
	}

	return &HistoryPage{Orders: views, NextCursor: next}, nil
}

func startOfDay(at time.Time) time.Time {
	year, month, day := at.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, at.Location())
}
