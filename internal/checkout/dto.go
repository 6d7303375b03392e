package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucasmv/zapflow-backend/internal/board"
	"github.com/lucasmv/zapflow-backend/internal/payments"
	"github.com/lucasmv/zapflow-backend/pkg/types"
)

// CartItemInput is one product line submitted by the storefront.
type CartItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// PlaceOrderInput is the full checkout submission for one tenant.
type PlaceOrderInput struct {
	CustomerName  string           `json:"customer_name" validate:"required,min=3"`
	CustomerPhone string           `json:"customer_phone" validate:"required"`
	Address       types.Address    `json:"address"`
	PaymentMethod string           `json:"payment_method" validate:"required"`
	ChangeFor     *decimal.Decimal `json:"change_for,omitempty"`
	Items         []CartItemInput  `json:"items" validate:"required,min=1,dive"`
}

// Confirmation is the checkout response. Pix is set only for PIX orders whose
// charge was created; PixError carries the message when charge creation
// failed but the order itself was accepted.
type Confirmation struct {
	Order    board.OrderView     `json:"order"`
	Pix      *payments.PixIntent `json:"pix,omitempty"`
	PixError *string             `json:"pix_error,omitempty"`
}
