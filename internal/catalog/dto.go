package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucasmv/zapflow-backend/pkg/db/models"
	"github.com/lucasmv/zapflow-backend/pkg/types"
)

// StoreView is the public tenant profile. Credentials and internal fields
// never leave through it.
type StoreView struct {
	ID            uuid.UUID           `json:"id"`
	Name          string              `json:"name"`
	Slug          string              `json:"slug"`
	StoreCategory *string             `json:"store_category,omitempty"`
	BannerURL     *string             `json:"banner_url,omitempty"`
	LogoURL       *string             `json:"logo_url,omitempty"`
	WhatsappPhone *string             `json:"whatsapp_phone,omitempty"`
	BusinessHours types.BusinessHours `json:"business_hours,omitempty"`
	IsOpen        bool                `json:"is_open"`
	PixEnabled    bool                `json:"pix_enabled"`
	BaseFee       decimal.Decimal     `json:"base_delivery_fee"`
}

// ProductView is one public catalog entry.
type ProductView struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    *string         `json:"image_url,omitempty"`
	InStock     bool            `json:"in_stock"`
}

// CategoryView groups products for storefront rendering.
type CategoryView struct {
	ID       uuid.UUID     `json:"id"`
	Name     string        `json:"name"`
	Products []ProductView `json:"products"`
}

// Storefront is the full public catalog payload for one tenant.
type Storefront struct {
	Store      StoreView      `json:"store"`
	Categories []CategoryView `json:"categories"`
}

func toStoreView(company *models.Company, isOpen bool) StoreView {
	rule := company.DeliveryRule
	if rule.IsZero() {
		rule = types.DefaultDeliveryRule()
	}
	return StoreView{
		ID:            company.ID,
		Name:          company.Name,
		Slug:          company.Slug,
		StoreCategory: company.StoreCategory,
		BannerURL:     company.BannerURL,
		LogoURL:       company.LogoURL,
		WhatsappPhone: company.WhatsappPhone,
		BusinessHours: company.BusinessHours,
		IsOpen:        isOpen,
		PixEnabled:    company.PixConfigured(),
		BaseFee:       rule.BaseFee,
	}
}

func toProductView(product models.Product) ProductView {
	return ProductView{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		ImageURL:    product.ImageURL,
		InStock:     product.InStock,
	}
}
