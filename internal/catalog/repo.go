package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucasmv/zapflow-backend/pkg/db/models"
	pkgerrors "github.com/lucasmv/zapflow-backend/pkg/errors"
)

// Repository handles tenant and catalog reads.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to catalog operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindCompanyBySlug resolves an active tenant by its public slug.
func (r *Repository) FindCompanyBySlug(ctx context.Context, slug string) (*models.Company, error) {
	var company models.Company
	err := r.db.WithContext(ctx).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, err
	}
	return &company, nil
}

// FindCompanyByID loads a tenant by primary key, active or not.
func (r *Repository) FindCompanyByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, err
	}
	return &company, nil
}

// ListCategories returns the tenant's categories in creation order.
func (r *Repository) ListCategories(ctx context.Context, companyID uuid.UUID) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// ListProducts returns the tenant's full catalog, in-stock or not, in
// creation order. The storefront renders sold-out items greyed out instead
// of hiding them.
func (r *Repository) ListProducts(ctx context.Context, companyID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// FindProductsByIDs loads catalog rows for the given ids scoped to one
// tenant. Used by checkout to reprice carts server side.
func (r *Repository) FindProductsByIDs(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id IN ?", companyID, ids).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
