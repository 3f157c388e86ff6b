// Package sqlite provides a SQLite-backed implementation of
// lifecyclelog.Repository.
//
// WAL mode is enabled on Open so the engine can append while a support
// query reads the same order's history.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/swiftcart/checkout/internal/checkout/lifecyclelog"

	// Register the pure-Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on Open. The table is append-only: each
// row is an immutable event on the checkout path of one order.
const schema = `
CREATE TABLE IF NOT EXISTS lifecycle_log (
    entry_id    TEXT NOT NULL PRIMARY KEY,
    order_id    TEXT NOT NULL,
    stage       TEXT NOT NULL,
    detail      TEXT NOT NULL DEFAULT '',
    trace_id    TEXT NOT NULL DEFAULT '',
    span_id     TEXT NOT NULL DEFAULT '',
    recorded_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lifecycle_log_order ON lifecycle_log(order_id, recorded_at);
CREATE INDEX IF NOT EXISTS idx_lifecycle_log_trace ON lifecycle_log(trace_id);
`

var _ lifecyclelog.Repository = (*Repository)(nil)

// Repository is the SQLite implementation of lifecyclelog.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and applies the schema.
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("lifecyclelog sqlite: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("lifecyclelog sqlite: apply schema: %w", err)
	}
	return &Repository{db: db}, nil
}

// Close releases the underlying database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Save(ctx context.Context, entry *lifecyclelog.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lifecycle_log
			(entry_id, order_id, stage, detail, trace_id, span_id, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.EntryID, entry.OrderID, string(entry.Stage), entry.Detail,
		entry.TraceID, entry.SpanID,
		entry.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("lifecyclelog sqlite: save entry for %s: %w", entry.OrderID, err)
	}
	return nil
}

func (r *Repository) ListByOrder(ctx context.Context, orderID string) ([]lifecyclelog.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT entry_id, order_id, stage, detail, trace_id, span_id, recorded_at
		FROM lifecycle_log
		WHERE order_id = ?
		ORDER BY recorded_at ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("lifecyclelog sqlite: list for %s: %w", orderID, err)
	}
	defer rows.Close()

	var out []lifecyclelog.Entry
	for rows.Next() {
		var (
			e     lifecyclelog.Entry
			stage string
			at    string
		)
		if err := rows.Scan(&e.EntryID, &e.OrderID, &stage, &e.Detail, &e.TraceID, &e.SpanID, &at); err != nil {
			return nil, fmt.Errorf("lifecyclelog sqlite: scan entry: %w", err)
		}
		e.Stage = lifecyclelog.Stage(stage)
		if e.RecordedAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("lifecyclelog sqlite: parse time %q: %w", at, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lifecyclelog sqlite: list for %s: %w", orderID, err)
	}
	return out, nil
}
