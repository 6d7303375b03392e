package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucasmv/zapflow-backend/pkg/enums"
	"github.com/lucasmv/zapflow-backend/pkg/types"
)

// Order is the central transactional entity. TotalPrice is computed once at
// creation and never recomputed from current product prices. Status (board
// axis) and PaymentStatus (money axis) are independent columns so their two
// writers never race on the same field.
type Order struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID      uuid.UUID           `gorm:"column:company_id;type:uuid;not null;index"`
	CustomerID     *uuid.UUID          `gorm:"column:customer_id;type:uuid"`
	CustomerName   string              `gorm:"column:customer_name;not null"`
	CustomerPhone  string              `gorm:"column:customer_phone;not null"`
	TotalPrice     decimal.Decimal     `gorm:"column:total_price;type:numeric(10,2);not null"`
	Status         enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	PaymentStatus  enums.PaymentStatus `gorm:"column:payment_status;not null;default:'unpaid'"`
	AddressDetails types.OrderMetadata `gorm:"column:address_details;type:jsonb;serializer:json"`
	PaymentID      *string             `gorm:"column:payment_id;index"`
	Items          []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// ShortID is the first UUID segment, used on payment descriptions and cards.
func (o Order) ShortID() string {
	id := o.ID.String()
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
