// Package postgres implements the order store on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"ordersvc/pkg/order"
)

// Store persists orders in PostgreSQL. The caller must ensure the
// database has an orders table:
// CREATE TABLE IF NOT EXISTS orders (id TEXT PRIMARY KEY, customer_id TEXT NOT NULL, total_amount NUMERIC(12,2) NOT NULL);
// The primary key on id is the authoritative uniqueness guard for
// concurrent creations.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Exists reports whether an order with the given id is stored.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM orders WHERE id=$1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("order exists: %w", err)
	}
	return exists, nil
}

// Insert stores a new order, failing with order.ErrDuplicateKey when
// the id is already taken.
func (s *Store) Insert(ctx context.Context, o order.Order) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO orders (id, customer_id, total_amount) VALUES ($1,$2,$3)",
		o.ID, o.CustomerID, o.TotalAmount)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %q", order.ErrDuplicateKey, o.ID)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// Get retrieves an order by id.
func (s *Store) Get(ctx context.Context, id string) (order.Order, error) {
	var o order.Order
	err := s.db.QueryRowContext(ctx,
		"SELECT id, customer_id, total_amount FROM orders WHERE id=$1", id).
		Scan(&o.ID, &o.CustomerID, &o.TotalAmount)
	if err == sql.ErrNoRows {
		return order.Order{}, order.ErrNotFound
	}
	if err != nil {
		return order.Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// List fetches all orders.
func (s *Store) List(ctx context.Context) ([]order.Order, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, customer_id, total_amount FROM orders")
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var orders []order.Order
	for rows.Next() {
		var o order.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.TotalAmount); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// unique_violation, https://www.postgresql.org/docs/current/errcodes-appendix.html
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
