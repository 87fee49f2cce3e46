package events

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ordersvc/pkg/logger"
	"ordersvc/pkg/order"
)

// Outbox records events that failed to publish so an operator or the
// republish tool can deliver them later without touching the orders
// table. Requires:
// CREATE TABLE IF NOT EXISTS order_outbox (id BIGSERIAL PRIMARY KEY, order_id TEXT NOT NULL, correlation_id TEXT NOT NULL, created_at TIMESTAMPTZ NOT NULL DEFAULT now(), sent_at TIMESTAMPTZ);
type Outbox struct {
	db *sql.DB
}

// NewOutbox creates an outbox on the given database.
func NewOutbox(db *sql.DB) *Outbox {
	return &Outbox{db: db}
}

// Record is one undelivered event.
type Record struct {
	ID            int64
	OrderID       string
	CorrelationID string
	CreatedAt     time.Time
	SentAt        *time.Time
}

// Add stores an undelivered event.
func (o *Outbox) Add(ctx context.Context, orderID, correlationID string) error {
	_, err := o.db.ExecContext(ctx,
		"INSERT INTO order_outbox (order_id, correlation_id) VALUES ($1,$2)", orderID, correlationID)
	if err != nil {
		return fmt.Errorf("outbox add: %w", err)
	}
	return nil
}

// FetchPending returns up to limit unsent records, oldest first.
func (o *Outbox) FetchPending(ctx context.Context, limit int) ([]Record, error) {
	rows, err := o.db.QueryContext(ctx,
		"SELECT id, order_id, correlation_id, created_at, sent_at FROM order_outbox WHERE sent_at IS NULL ORDER BY id LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("outbox fetch: %w", err)
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.OrderID, &r.CorrelationID, &r.CreatedAt, &r.SentAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MarkSent stamps the record as delivered.
func (o *Outbox) MarkSent(ctx context.Context, id int64) error {
	_, err := o.db.ExecContext(ctx, "UPDATE order_outbox SET sent_at=now() WHERE id=$1", id)
	if err != nil {
		return fmt.Errorf("outbox mark sent: %w", err)
	}
	return nil
}

// Recorder parks an undelivered event for later re-publication.
type Recorder interface {
	Add(ctx context.Context, orderID, correlationID string) error
}

// FallbackPublisher decorates a publisher so failed publications land
// in the outbox. The publish error is still returned: the workflow
// reports partial success, and compensation stays an operator
// decision. A re-published event gets a fresh event id, so consumers
// see at-least-once delivery.
type FallbackPublisher struct {
	next   order.EventPublisher
	outbox Recorder
	log    *zap.Logger
}

// NewFallbackPublisher wraps next with outbox recording.
func NewFallbackPublisher(next order.EventPublisher, outbox Recorder, log *zap.Logger) *FallbackPublisher {
	return &FallbackPublisher{next: next, outbox: outbox, log: log}
}

// Publish delegates to the wrapped publisher and records failures.
func (p *FallbackPublisher) Publish(ctx context.Context, evt order.OrderCreatedEvent, correlationID string) error {
	err := p.next.Publish(ctx, evt, correlationID)
	if err == nil {
		return nil
	}
	if obErr := p.outbox.Add(ctx, evt.OrderID, correlationID); obErr != nil {
		logger.For(ctx, p.log).Error("event lost: publish and outbox both failed",
			zap.String("order_id", evt.OrderID), zap.NamedError("publish_error", err), zap.Error(obErr))
	} else {
		logger.For(ctx, p.log).Warn("publish failed, event parked in outbox",
			zap.String("order_id", evt.OrderID), zap.Error(err))
	}
	return err
}
