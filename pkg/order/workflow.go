package order

import (
	"context"
	"errors"
	"fmt"

	"ordersvc/pkg/otel"
)

// CreationWorkflow turns a create-order command into a stored order
// plus a published order.created event. It is stateless and safe for
// concurrent use; each Handle call runs its steps strictly in sequence
// and aborts on the first failure without retrying anything.
type CreationWorkflow struct {
	store     Store
	pricing   PricingClient
	publisher EventPublisher
	obs       Observer
}

// NewCreationWorkflow wires the workflow's collaborators. A nil
// observer is replaced with a no-op one.
func NewCreationWorkflow(store Store, pricing PricingClient, publisher EventPublisher, obs Observer) *CreationWorkflow {
	if obs == nil {
		obs = NopObserver{}
	}
	return &CreationWorkflow{store: store, pricing: pricing, publisher: publisher, obs: obs}
}

// Handle executes the creation pipeline for one command. correlationID
// identifies the causing request chain and is attached to the
// published event.
//
// The existence check is a fast path only; the store's uniqueness
// constraint on insert is the authoritative guard, so a duplicate-key
// insert failure is reported as ErrDuplicateOrder rather than a
// persistence failure. ErrPublicationFailed is the one partial-success
// outcome: the order is already durable when publishing fails.
func (w *CreationWorkflow) Handle(ctx context.Context, cmd CreateOrderCommand, correlationID string) error {
	ctx, span := otel.AddSpan(ctx, "order.create", "order_id", cmd.OrderID)
	defer span.End()

	exists, err := w.store.Exists(ctx, cmd.OrderID)
	if err != nil {
		w.obs.Failed(ctx, cmd.OrderID, StepChecked, err)
		return fmt.Errorf("%w: existence check: %v", ErrPersistenceFailed, err)
	}
	if exists {
		w.obs.Failed(ctx, cmd.OrderID, StepChecked, ErrDuplicateOrder)
		return fmt.Errorf("%w: id %q", ErrDuplicateOrder, cmd.OrderID)
	}
	w.obs.Checked(ctx, cmd.OrderID)

	quote, err := w.pricing.Quote(ctx, cmd.OrderID)
	if err != nil {
		w.obs.Failed(ctx, cmd.OrderID, StepPriced, err)
		return fmt.Errorf("%w: %v", ErrPricingUnavailable, err)
	}
	if quote.TotalAmount < 0 {
		err = fmt.Errorf("negative amount %v for order %q", quote.TotalAmount, cmd.OrderID)
		w.obs.Failed(ctx, cmd.OrderID, StepPriced, err)
		return fmt.Errorf("%w: %v", ErrPricingUnavailable, err)
	}
	w.obs.Priced(ctx, cmd.OrderID, quote.TotalAmount)

	o := Order{ID: cmd.OrderID, CustomerID: cmd.CustomerID, TotalAmount: quote.TotalAmount}

	if err := w.store.Insert(ctx, o); err != nil {
		w.obs.Failed(ctx, cmd.OrderID, StepPersisted, err)
		if errors.Is(err, ErrDuplicateKey) {
			// Lost the check-then-insert race; same outcome as the
			// fast path.
			return fmt.Errorf("%w: id %q", ErrDuplicateOrder, cmd.OrderID)
		}
		return fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	w.obs.Persisted(ctx, cmd.OrderID)

	if err := w.publisher.Publish(ctx, OrderCreatedEvent{OrderID: o.ID}, correlationID); err != nil {
		w.obs.Failed(ctx, cmd.OrderID, StepPublished, err)
		return fmt.Errorf("%w: %v", ErrPublicationFailed, err)
	}
	w.obs.Published(ctx, cmd.OrderID)
	return nil
}
