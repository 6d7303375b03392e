package checkout

import (
	"strings"

	pkgerrors "github.com/lucasmv/zapflow-backend/pkg/errors"
)

const (
	minNameLength   = 3
	minPhoneDigits  = 10
)

// validateInput applies the storefront rules before anything touches the
// database. Field errors come back as one validation error with details so
// the form can highlight every broken field at once.
func validateInput(input PlaceOrderInput) error {
	fields := map[string]string{}

	if len(strings.TrimSpace(input.CustomerName)) < minNameLength {
		fields["customer_name"] = "name must have at least 3 characters"
	}
	if digits := countDigits(input.CustomerPhone); digits < minPhoneDigits {
		fields["customer_phone"] = "phone must have at least 10 digits"
	}
	if strings.TrimSpace(input.Address.Street) == "" {
		fields["address.street"] = "street is required"
	}
	if strings.TrimSpace(input.Address.Number) == "" {
		fields["address.number"] = "number is required"
	}
	if strings.TrimSpace(input.Address.Neighborhood) == "" {
		fields["address.neighborhood"] = "neighborhood is required"
	}
	if len(input.Items) == 0 {
		fields["items"] = "cart must have at least one item"
	}
	for _, item := range input.Items {
		if item.Quantity < 1 {
			fields["items"] = "item quantities must be at least 1"
			break
		}
	}

	if len(fields) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid checkout submission").
			WithDetails(fields)
	}
	return nil
}

func countDigits(value string) int {
	count := 0
	for _, r := range value {
		if r >= '0' && r <= '9' {
			count++
		}
	}
	return count
}
