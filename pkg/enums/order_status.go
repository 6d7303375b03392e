package enums

import "fmt"

// OrderStatus tracks fulfillment progress on the operator board. The flow is
// linear and forward-only.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
)

var orderStatusFlow = []OrderStatus{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusDelivered,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range orderStatusFlow {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no further transition.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered
}

// Rank returns the position of the status in the flow, or -1 when unknown.
func (s OrderStatus) Rank() int {
	for i, candidate := range orderStatusFlow {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Next returns the following status in the flow. The second return value is
// false for terminal or unknown statuses.
func (s OrderStatus) Next() (OrderStatus, bool) {
	rank := s.Rank()
	if rank < 0 || rank == len(orderStatusFlow)-1 {
		return "", false
	}
	return orderStatusFlow[rank+1], true
}

// ActiveOrderStatuses lists the non-terminal statuses shown on the board resync.
func ActiveOrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusPreparing, OrderStatusReady}
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range orderStatusFlow {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
