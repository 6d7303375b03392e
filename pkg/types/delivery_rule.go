package types

import "github.com/shopspring/decimal"

// DeliveryRule is the tenant's distance-tiered delivery fee configuration.
type DeliveryRule struct {
	BaseKm   decimal.Decimal `json:"baseKm"`
	BaseFee  decimal.Decimal `json:"baseFee"`
	ExtraFee decimal.Decimal `json:"extraFee"`
}

// DefaultDeliveryRule mirrors the storefront fallback applied when a tenant
// never configured fees.
func DefaultDeliveryRule() DeliveryRule {
	return DeliveryRule{
		BaseKm:   decimal.NewFromInt(5),
		BaseFee:  decimal.NewFromInt(5),
		ExtraFee: decimal.NewFromInt(8),
	}
}

// IsZero reports whether the rule was never configured.
func (r DeliveryRule) IsZero() bool {
	return r.BaseKm.IsZero() && r.BaseFee.IsZero() && r.ExtraFee.IsZero()
}
