package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lucasmv/zapflow-backend/pkg/types"
)

// Customer is a tenant-scoped identity keyed by (company_id, phone). Orders
// reference it only through denormalized name/phone, so deleting a customer
// never corrupts order history.
type Customer struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID      uuid.UUID       `gorm:"column:company_id;type:uuid;not null;uniqueIndex:idx_customers_company_phone"`
	Phone          string          `gorm:"column:phone;not null;uniqueIndex:idx_customers_company_phone"`
	Name           string          `gorm:"column:name;not null"`
	SavedAddresses []types.Address `gorm:"column:saved_addresses;type:jsonb;serializer:json"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
