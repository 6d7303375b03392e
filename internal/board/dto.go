package board

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucasmv/zapflow-backend/pkg/db/models"
	"github.com/lucasmv/zapflow-backend/pkg/enums"
)

// ItemView is one order line as rendered on a card.
type ItemView struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// OrderView is the kanban card payload.
type OrderView struct {
	ID            uuid.UUID           `json:"id"`
	ShortID       string              `json:"short_id"`
	CustomerName  string              `json:"customer_name"`
	CustomerPhone string              `json:"customer_phone"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	ChangeFor     *decimal.Decimal    `json:"change_for,omitempty"`
	Address       string              `json:"address"`
	DeliveryFee   decimal.Decimal     `json:"delivery_fee"`
	Total         decimal.Decimal     `json:"total"`
	Items         []ItemView          `json:"items"`
	CreatedAt     time.Time           `json:"created_at"`
}

// ToOrderView maps a persisted order onto its card payload.
func ToOrderView(order *models.Order) OrderView {
	items := make([]ItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, ItemView{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return OrderView{
		ID:            order.ID,
		ShortID:       order.ShortID(),
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		PaymentMethod: order.AddressDetails.PaymentMethod,
		ChangeFor:     order.AddressDetails.ChangeFor,
		Address:       order.AddressDetails.Address,
		DeliveryFee:   order.AddressDetails.DeliveryFee,
		Total:         order.TotalPrice,
		Items:         items,
		CreatedAt:     order.CreatedAt,
	}
}
