// Package events publishes order domain events to Kafka, with a
// Postgres outbox as the re-publication path when the broker is down.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"ordersvc/pkg/order"
	"ordersvc/pkg/otel"
)

// Topic carries every order domain event.
const Topic = "orders"

// TypeOrderCreated is the envelope type for order.OrderCreatedEvent.
const TypeOrderCreated = "order.created"

// Envelope is the wire format shared by all order events. Messages are
// keyed by order id so events for one order stay in one partition.
type Envelope struct {
	EventID       string          `json:"event_id"`
	CorrelationID string          `json:"correlation_id"`
	OrderID       string          `json:"order_id"`
	Type          string          `json:"type"`
	CreatedAt     time.Time       `json:"created_at"`
	Payload       json.RawMessage `json:"payload"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher implements order.EventPublisher on a Kafka topic.
type KafkaPublisher struct {
	writer messageWriter
}

// NewWriter builds a Kafka writer for the order events topic.
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

// NewKafkaPublisher creates a publisher writing through w.
func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

// Publish wraps the event in an envelope carrying the correlation
// token and writes it to the topic.
func (p *KafkaPublisher) Publish(ctx context.Context, evt order.OrderCreatedEvent, correlationID string) error {
	ctx, span := otel.AddSpan(ctx, "events.publish", "order_id", evt.OrderID)
	defer span.End()

	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	env := Envelope{
		EventID:       uuid.NewString(),
		CorrelationID: correlationID,
		OrderID:       evt.OrderID,
		Type:          TypeOrderCreated,
		CreatedAt:     time.Now().UTC(),
		Payload:       payload,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	msg := kafka.Message{Key: []byte(evt.OrderID), Value: data, Time: env.CreatedAt}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s: %w", Topic, err)
	}
	return nil
}
