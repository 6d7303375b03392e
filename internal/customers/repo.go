package customers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucasmv/zapflow-backend/pkg/db"
	"github.com/lucasmv/zapflow-backend/pkg/db/models"
	pkgerrors "github.com/lucasmv/zapflow-backend/pkg/errors"
	"github.com/lucasmv/zapflow-backend/pkg/types"
)

// Repository defines customer persistence. Customers are keyed by
// (company_id, phone) so the same phone number is a distinct customer per
// tenant.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByPhone(ctx context.Context, companyID uuid.UUID, phone string) (*models.Customer, error)
	Upsert(ctx context.Context, companyID uuid.UUID, name, phone string, address *types.Address) (*models.Customer, error)
	CountSince(ctx context.Context, companyID uuid.UUID, since time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a customers repository bound to the provided DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByPhone(ctx context.Context, companyID uuid.UUID, phone string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND phone = ?", companyID, normalizePhone(phone)).
		First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, err
	}
	return &customer, nil
}

// Upsert creates the customer on first contact or refreshes an existing one.
// The latest name wins and the delivery address is appended to the history
// as given; the address list is a log, not a deduplicated set.
func (r *repository) Upsert(ctx context.Context, companyID uuid.UUID, name, phone string, address *types.Address) (*models.Customer, error) {
	normalized := normalizePhone(phone)

	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND phone = ?", companyID, normalized).
		First(&customer).Error

	switch {
	case err == nil:
		customer.Name = name
		if address != nil {
			customer.SavedAddresses = append(customer.SavedAddresses, *address)
		}
		if err := r.db.WithContext(ctx).Save(&customer).Error; err != nil {
			return nil, err
		}
		return &customer, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		customer = models.Customer{
			ID:        uuid.New(),
			CompanyID: companyID,
			Phone:     normalized,
			Name:      name,
		}
		if address != nil {
			customer.SavedAddresses = []types.Address{*address}
		}
		if createErr := r.db.WithContext(ctx).Create(&customer).Error; createErr != nil {
			// concurrent first order from the same phone
			if db.IsUniqueViolation(createErr, "idx_customers_company_phone") {
				return r.Upsert(ctx, companyID, name, phone, address)
			}
			return nil, createErr
		}
		return &customer, nil

	default:
		return nil, err
	}
}

// CountSince counts customers first seen after the given instant.
func (r *repository) CountSince(ctx context.Context, companyID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("company_id = ? AND created_at >= ?", companyID, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
