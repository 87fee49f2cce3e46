// Package memory implements an in-memory order store.
package memory

import (
	"context"
	"sync"

	"ordersvc/pkg/order"
)

// Store provides an in-memory implementation of order.Store. Insert
// enforces identifier uniqueness under the lock, so it serves as the
// authoritative guard the same way the Postgres primary key does.
type Store struct {
	mu     sync.RWMutex
	orders map[string]order.Order
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{orders: make(map[string]order.Order)}
}

// Exists reports whether an order with the given id is stored.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.orders[id]
	return ok, nil
}

// Insert stores the order, failing with ErrDuplicateKey if the id is
// already taken.
func (s *Store) Insert(ctx context.Context, o order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.ID]; ok {
		return order.ErrDuplicateKey
	}
	s.orders[o.ID] = o
	return nil
}

// Get retrieves an order by id.
func (s *Store) Get(ctx context.Context, id string) (order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}
	return o, nil
}

// List returns all stored orders.
func (s *Store) List(ctx context.Context) ([]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]order.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	return out, nil
}
