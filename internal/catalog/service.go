package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/lucasmv/zapflow-backend/internal/hours"
	"github.com/lucasmv/zapflow-backend/pkg/db/models"
	pkgerrors "github.com/lucasmv/zapflow-backend/pkg/errors"
)

// Service assembles the public storefront payload.
type Service interface {
	GetStorefront(ctx context.Context, slug string) (*Storefront, error)
	ResolveCompany(ctx context.Context, slug string) (*models.Company, error)
}

type service struct {
	repo *Repository
	gate *hours.Gate
}

// NewService builds the catalog service.
func NewService(repo *Repository, gate *hours.Gate) Service {
	return &service{repo: repo, gate: gate}
}

func (s *service) ResolveCompany(ctx context.Context, slug string) (*models.Company, error) {
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store slug is required")
	}
	return s.repo.FindCompanyBySlug(ctx, slug)
}

// GetStorefront loads the tenant by slug and groups its products under their
// categories. Products without a category land in a trailing "Outros" group
// so nothing silently disappears from the menu.
func (s *service) GetStorefront(ctx context.Context, slug string) (*Storefront, error) {
	company, err := s.ResolveCompany(ctx, slug)
	if err != nil {
		return nil, err
	}

	categories, err := s.repo.ListCategories(ctx, company.ID)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.ListProducts(ctx, company.ID)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[uuid.UUID][]ProductView, len(categories))
	var uncategorized []ProductView
	for _, product := range products {
		view := toProductView(product)
		if product.CategoryID == nil {
			uncategorized = append(uncategorized, view)
			continue
		}
		byCategory[*product.CategoryID] = append(byCategory[*product.CategoryID], view)
	}

	views := make([]CategoryView, 0, len(categories)+1)
	for _, category := range categories {
		group := byCategory[category.ID]
		if group == nil {
			group = []ProductView{}
		}
		views = append(views, CategoryView{
			ID:       category.ID,
			Name:     category.Name,
			Products: group,
		})
		delete(byCategory, category.ID)
	}

	// products pointing at a deleted category are still sellable
	for _, orphans := range byCategory {
		uncategorized = append(uncategorized, orphans...)
	}
	if len(uncategorized) > 0 {
		views = append(views, CategoryView{Name: "Outros", Products: uncategorized})
	}

	return &Storefront{
		Store:      toStoreView(company, s.gate.IsOpen(company.BusinessHours)),
		Categories: views,
	}, nil
}
