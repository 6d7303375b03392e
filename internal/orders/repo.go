package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lucasmv/zapflow-backend/pkg/db/models"
	"github.com/lucasmv/zapflow-backend/pkg/enums"
	pkgerrors "github.com/lucasmv/zapflow-backend/pkg/errors"
	"github.com/lucasmv/zapflow-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindForCompany(ctx context.Context, companyID, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND company_id = ?", id, companyID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByPaymentID(ctx context.Context, paymentID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("payment_id = ?", paymentID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) SetPaymentID(ctx context.Context, id uuid.UUID, paymentID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("payment_id", paymentID).Error
}

// MarkPaid flips payment_status from unpaid to paid exactly once. The
// conditional update makes duplicate webhook deliveries harmless: the second
// one matches zero rows.
func (r *repository) MarkPaid(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", id, enums.PaymentStatusUnpaid).
		Update("payment_status", enums.PaymentStatusPaid)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// AdvanceStatus moves an order one step forward. The status is part of the
// WHERE clause so two operators clicking the same card concurrently cannot
// double-advance it.
func (r *repository) AdvanceStatus(ctx context.Context, companyID, id uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND company_id = ? AND status = ?", id, companyID, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListBoard returns every non-terminal order plus deliveries completed since
// the given cutoff, oldest first, so the kanban renders full columns after a
// reconnect.
func (r *repository) ListBoard(ctx context.Context, companyID uuid.UUID, deliveredSince time.Time) ([]models.Order, error) {
	var results []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("company_id = ?", companyID).
		Where(
			r.db.Where("status IN ?", activeStatusValues()).
				Or("status = ? AND updated_at >= ?", enums.OrderStatusDelivered, deliveredSince),
		).
		Order("created_at ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *repository) ListRecent(ctx context.Context, companyID uuid.UUID, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 5
	}
	var results []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// DashboardStats aggregates counts and revenue for orders created since the
// cutoff. Revenue counts every order regardless of payment state; cash
// orders are only ever marked paid implicitly on delivery.
func (r *repository) DashboardStats(ctx context.Context, companyID uuid.UUID, since time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{}

	base := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("company_id = ? AND created_at >= ?", companyID, since)

	if err := base.Session(&gorm.Session{}).Count(&stats.OrdersCount).Error; err != nil {
		return nil, err
	}

	var revenue struct {
		Total float64
	}
	err := base.Session(&gorm.Session{}).
		Select("COALESCE(SUM(total_price), 0) AS total").
		Scan(&revenue).Error
	if err != nil {
		return nil, err
	}
	stats.Revenue = decimalFromFloat(revenue.Total)

	err = r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("company_id = ? AND status = ?", companyID, enums.OrderStatusPending).
		Count(&stats.PendingCount).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// ListHistory pages through a tenant's full order history, newest first. The
// cursor orders on (created_at, id) so rows sharing a timestamp never repeat
// or vanish between pages.
func (r *repository) ListHistory(ctx context.Context, companyID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("company_id = ?", companyID)
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var results []models.Order
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&results).Error
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(results) > limit {
		results = results[:limit]
		last := results[len(results)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return results, next, nil
}

func decimalFromFloat(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value).Round(2)
}

func activeStatusValues() []string {
	active := enums.ActiveOrderStatuses()
	values := make([]string, 0, len(active))
	for _, status := range active {
		values = append(values, status.String())
	}
	return values
}
