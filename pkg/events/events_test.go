package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"ordersvc/pkg/order"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	err := p.Publish(context.Background(), order.OrderCreatedEvent{OrderID: "O1"}, "corr-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	if string(w.msgs[0].Key) != "O1" {
		t.Fatalf("message key %q, want O1", w.msgs[0].Key)
	}

	var env Envelope
	if err := json.Unmarshal(w.msgs[0].Value, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.Type != TypeOrderCreated {
		t.Fatalf("envelope type %q, want %q", env.Type, TypeOrderCreated)
	}
	if env.OrderID != "O1" || env.CorrelationID != "corr-1" {
		t.Fatalf("envelope %+v", env)
	}
	if env.EventID == "" || env.CreatedAt.IsZero() {
		t.Fatalf("envelope missing id or timestamp: %+v", env)
	}
	var evt order.OrderCreatedEvent
	if err := json.Unmarshal(env.Payload, &evt); err != nil || evt.OrderID != "O1" {
		t.Fatalf("payload %s: %v", env.Payload, err)
	}
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unreachable")}
	p := &KafkaPublisher{writer: w}

	if err := p.Publish(context.Background(), order.OrderCreatedEvent{OrderID: "O1"}, "corr-1"); err == nil {
		t.Fatal("expected error")
	}
}

type fakeRecorder struct {
	orderIDs     []string
	correlations []string
	err          error
}

func (f *fakeRecorder) Add(_ context.Context, orderID, correlationID string) error {
	if f.err != nil {
		return f.err
	}
	f.orderIDs = append(f.orderIDs, orderID)
	f.correlations = append(f.correlations, correlationID)
	return nil
}

func TestFallbackPublisher(t *testing.T) {
	t.Parallel()

	t.Run("success skips outbox", func(t *testing.T) {
		w := &fakeWriter{}
		rec := &fakeRecorder{}
		p := NewFallbackPublisher(&KafkaPublisher{writer: w}, rec, zap.NewNop())

		if err := p.Publish(context.Background(), order.OrderCreatedEvent{OrderID: "O1"}, "corr-1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(rec.orderIDs) != 0 {
			t.Fatalf("outbox written on success: %v", rec.orderIDs)
		}
	})

	t.Run("failure parks event and returns error", func(t *testing.T) {
		w := &fakeWriter{err: errors.New("broker unreachable")}
		rec := &fakeRecorder{}
		p := NewFallbackPublisher(&KafkaPublisher{writer: w}, rec, zap.NewNop())

		err := p.Publish(context.Background(), order.OrderCreatedEvent{OrderID: "O1"}, "corr-1")
		if err == nil {
			t.Fatal("expected publish error to surface")
		}
		if len(rec.orderIDs) != 1 || rec.orderIDs[0] != "O1" || rec.correlations[0] != "corr-1" {
			t.Fatalf("outbox record %v %v", rec.orderIDs, rec.correlations)
		}
	})

	t.Run("outbox failure still surfaces publish error", func(t *testing.T) {
		w := &fakeWriter{err: errors.New("broker unreachable")}
		rec := &fakeRecorder{err: errors.New("db down")}
		p := NewFallbackPublisher(&KafkaPublisher{writer: w}, rec, zap.NewNop())

		if err := p.Publish(context.Background(), order.OrderCreatedEvent{OrderID: "O1"}, "corr-1"); err == nil {
			t.Fatal("expected publish error to surface")
		}
	})
}
