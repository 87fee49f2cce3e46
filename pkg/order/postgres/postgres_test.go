package postgres

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pq.Error{Code: "23505", Constraint: "orders_pkey"}
	if !isUniqueViolation(dup) {
		t.Fatal("expected 23505 to be a unique violation")
	}
	if !isUniqueViolation(fmt.Errorf("insert order: %w", dup)) {
		t.Fatal("expected wrapped 23505 to be a unique violation")
	}
	if isUniqueViolation(&pq.Error{Code: "57P01"}) {
		t.Fatal("admin shutdown is not a unique violation")
	}
	if isUniqueViolation(fmt.Errorf("dial tcp: connection refused")) {
		t.Fatal("transport errors are not unique violations")
	}
}
