package types

import (
	"github.com/shopspring/decimal"

	"github.com/lucasmv/zapflow-backend/pkg/enums"
)

// OrderMetadata is the address/payment blob persisted with each order. It is a
// snapshot: later customer or settings edits never touch it.
type OrderMetadata struct {
	Address       string              `json:"address"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
	ChangeFor     *decimal.Decimal    `json:"changeFor,omitempty"`
	DeliveryFee   decimal.Decimal     `json:"deliveryFee"`
}
