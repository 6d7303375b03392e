package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lucasmv/zapflow-backend/pkg/db/models"
	"github.com/lucasmv/zapflow-backend/pkg/enums"
	"github.com/lucasmv/zapflow-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindForCompany(ctx context.Context, companyID, id uuid.UUID) (*models.Order, error)
	FindByPaymentID(ctx context.Context, paymentID string) (*models.Order, error)
	SetPaymentID(ctx context.Context, id uuid.UUID, paymentID string) error
	MarkPaid(ctx context.Context, id uuid.UUID) (bool, error)
	AdvanceStatus(ctx context.Context, companyID, id uuid.UUID, from, to enums.OrderStatus) (bool, error)
	ListBoard(ctx context.Context, companyID uuid.UUID, deliveredSince time.Time) ([]models.Order, error)
	ListRecent(ctx context.Context, companyID uuid.UUID, limit int) ([]models.Order, error)
	ListHistory(ctx context.Context, companyID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	DashboardStats(ctx context.Context, companyID uuid.UUID, since time.Time) (*DashboardStats, error)
}

// DashboardStats aggregates one tenant's same-day numbers.
type DashboardStats struct {
	OrdersCount  int64
	Revenue      decimal.Decimal
	PendingCount int64
}
