package memory

import (
	"context"
	"errors"
	"testing"

	"ordersvc/pkg/order"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := New()
	o := order.Order{ID: "1", CustomerID: "C1", TotalAmount: 9.99}

	exists, err := s.Exists(ctx, "1")
	if err != nil || exists {
		t.Fatalf("exists before insert: %v %v", exists, err)
	}
	if err := s.Insert(ctx, o); err != nil {
		t.Fatalf("insert: %v", err)
	}
	exists, err = s.Exists(ctx, "1")
	if err != nil || !exists {
		t.Fatalf("exists after insert: %v %v", exists, err)
	}

	if err := s.Insert(ctx, o); !errors.Is(err, order.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	got, err := s.Get(ctx, "1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != o {
		t.Fatalf("got %+v, want %+v", got, o)
	}
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, order.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, err := s.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v len=%d", err, len(list))
	}
}
