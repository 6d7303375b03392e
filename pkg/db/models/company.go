package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lucasmv/zapflow-backend/pkg/types"
)

// Company represents the canonical tenant model: one slug-addressed storefront.
type Company struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug          string              `gorm:"column:slug;not null;uniqueIndex"`
	Name          string              `gorm:"column:name;not null"`
	StoreCategory *string             `gorm:"column:store_category"`
	BannerURL     *string             `gorm:"column:banner_url"`
	LogoURL       *string             `gorm:"column:logo_url"`
	WhatsappPhone *string             `gorm:"column:whatsapp_phone"`
	Lat           *float64            `gorm:"column:lat"`
	Lng           *float64            `gorm:"column:lng"`
	BusinessHours types.BusinessHours `gorm:"column:business_hours;type:jsonb;serializer:json"`
	DeliveryRule  types.DeliveryRule  `gorm:"column:delivery_rules;type:jsonb;serializer:json"`
	MPAccessToken *string             `gorm:"column:mp_access_token"`
	OwnerID       uuid.UUID           `gorm:"column:owner;type:uuid;not null"`
	IsActive      bool                `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// HasCoordinates reports whether the store location was geocoded at setup.
func (c Company) HasCoordinates() bool {
	return c.Lat != nil && c.Lng != nil
}

// PixConfigured reports whether the tenant connected a Mercado Pago account.
func (c Company) PixConfigured() bool {
	return c.MPAccessToken != nil && *c.MPAccessToken != ""
}
