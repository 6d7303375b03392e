package board

import (
	"context"

	"github.com/google/uuid"
)

// EventKind labels what happened to an order.
type EventKind string

const (
	EventOrderCreated EventKind = "order_created"
	EventOrderUpdated EventKind = "order_updated"
	EventOrderPaid    EventKind = "order_paid"
)

// Event is one board change notification. The full card payload rides along
// so subscribers never need a follow-up read.
type Event struct {
	Kind  EventKind `json:"kind"`
	Order OrderView `json:"order"`
}

// Notifier fans an order event out to every connected board for the tenant.
type Notifier interface {
	Publish(ctx context.Context, companyID uuid.UUID, event Event) error
}

// Subscriber attaches to a tenant's event stream. The returned cancel func
// must be called when the consumer disconnects.
type Subscriber interface {
	Subscribe(ctx context.Context, companyID uuid.UUID) (<-chan Event, func(), error)
}
