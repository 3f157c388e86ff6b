// Package store defines the persistence port for orders.
//
// The engine depends on this abstraction, not on SQLite directly, so the
// implementation can be swapped for the in-memory store in tests.
package store

import (
	"context"

	"github.com/swiftcart/checkout/internal/order"
)

// Repository is the order persistence port.
//
// All operations are atomic with respect to a single caller. Create rejects
// an already-present id with order.ErrDuplicateID; Get and Update report a
// missing id with order.ErrNotFound.
type Repository interface {
	Create(ctx context.Context, o order.Order) error
	Get(ctx context.Context, id string) (order.Order, error)

	// List returns all orders in insertion order, newest first.
	List(ctx context.Context) ([]order.Order, error)

	// Update applies fn to the stored order under the store's write lock
	// and persists the result. If fn returns an error the order is left
	// exactly as it was.
	Update(ctx context.Context, id string, fn func(*order.Order) error) (order.Order, error)
}
