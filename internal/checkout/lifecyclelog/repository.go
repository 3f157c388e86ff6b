package lifecyclelog

import "context"

// Repository is the port for persisting lifecycle log entries.
// The engine depends on this abstraction, not on SQLite directly, so the
// implementation can be swapped for in-memory in tests.
type Repository interface {
	// Save appends a row; the log is append-only, never an upsert.
	Save(ctx context.Context, entry *Entry) error

	// ListByOrder returns all entries for an order, oldest first.
	ListByOrder(ctx context.Context, orderID string) ([]Entry, error)
}
