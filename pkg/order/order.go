// Package order holds the order domain model and the contracts the
// creation workflow depends on.
package order

import (
	"context"
	"errors"
)

// Order represents a customer purchase order. The identifier is
// assigned by the caller and the total amount is resolved from the
// pricing service at creation time; neither changes afterwards.
type Order struct {
	ID          string  `json:"id"`
	CustomerID  string  `json:"customerId"`
	TotalAmount float64 `json:"totalAmount"`
}

// CreateOrderCommand instructs the workflow to create a single order.
// It carries no price; the price is resolved downstream.
type CreateOrderCommand struct {
	OrderID    string `json:"orderId"`
	CustomerID string `json:"customerId"`
}

// PriceQuote is the pricing service's answer for a pending order.
type PriceQuote struct {
	OrderID     string  `json:"orderId"`
	TotalAmount float64 `json:"totalAmount"`
}

// OrderCreatedEvent announces that an order was durably stored.
type OrderCreatedEvent struct {
	OrderID string `json:"orderId"`
}

// Store defines behavior for persisting orders. Insert is the
// authoritative uniqueness guard: two concurrent creations for the
// same identifier can both pass Exists, and the loser must get
// ErrDuplicateKey back from Insert.
type Store interface {
	Exists(ctx context.Context, id string) (bool, error)
	Insert(ctx context.Context, o Order) error
	Get(ctx context.Context, id string) (Order, error)
	List(ctx context.Context) ([]Order, error)
}

// PricingClient fetches a price quote for a pending order.
type PricingClient interface {
	Quote(ctx context.Context, orderID string) (PriceQuote, error)
}

// EventPublisher emits domain events to subscribers. The correlation
// token links the event to the request chain that caused it; delivery
// semantics are the transport's concern.
type EventPublisher interface {
	Publish(ctx context.Context, evt OrderCreatedEvent, correlationID string) error
}

var (
	// ErrNotFound indicates the requested order does not exist.
	ErrNotFound = errors.New("order not found")

	// ErrDuplicateKey is returned by Store.Insert when the identifier
	// is already taken.
	ErrDuplicateKey = errors.New("order id already taken")

	// ErrDuplicateOrder rejects a command whose order already exists.
	// Not retryable: the first command won.
	ErrDuplicateOrder = errors.New("order already exists")

	// ErrPricingUnavailable means the quote could not be obtained.
	// The whole command is safe to retry.
	ErrPricingUnavailable = errors.New("pricing unavailable")

	// ErrPersistenceFailed means the insert did not happen; no event
	// was published.
	ErrPersistenceFailed = errors.New("order not persisted")

	// ErrPublicationFailed means the order is durably stored but the
	// created event was not delivered. Callers must treat this
	// distinctly: re-publishing is needed, re-persisting is not.
	ErrPublicationFailed = errors.New("order created event not published")
)
