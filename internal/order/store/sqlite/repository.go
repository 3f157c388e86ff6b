// Package sqlite provides a SQLite-backed implementation of store.Repository.
//
// WAL mode is enabled on Open so that reads (order listing, tracking views)
// never block the single writer connection used for checkout and
// confirmation writes.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/swiftcart/checkout/internal/order"
	"github.com/swiftcart/checkout/internal/order/store"

	// Register the pure-Go SQLite driver. modernc.org/sqlite avoids CGO,
	// which keeps the Docker build on Alpine trivial.
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on Open.
// seq preserves insertion order so List can return newest-first without
// parsing timestamps. items, address and tracking_history are JSON TEXT;
// timestamps are RFC3339 TEXT (the SQLite idiom).
const schema = `
CREATE TABLE IF NOT EXISTS orders (
    seq                INTEGER PRIMARY KEY AUTOINCREMENT,
    id                 TEXT    NOT NULL UNIQUE,
    status             TEXT    NOT NULL,
    items              TEXT    NOT NULL DEFAULT '[]',
    total              REAL    NOT NULL,
    order_date         TEXT    NOT NULL,
    address            TEXT    NOT NULL DEFAULT '{}',
    customer           TEXT    NOT NULL DEFAULT '{}',
    payment_method     TEXT    NOT NULL DEFAULT '',
    estimated_delivery TEXT    NOT NULL DEFAULT '',
    tracking_history   TEXT    NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
`

// Ensure Repository implements the port at compile time.
var _ store.Repository = (*Repository)(nil)

// Repository is the SQLite implementation of store.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at the given path and applies
// the schema.
//
//	repo, err := sqlite.Open("./data/orders.db")
func Open(path string) (*Repository, error) {
	// _pragma query parameters configure per-connection state for the
	// modernc driver. busy_timeout waits for locks instead of failing.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close releases the underlying database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Create(ctx context.Context, o order.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin create: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM orders WHERE id = ?`, o.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("sqlite: check id %s: %w", o.ID, err)
	}
	if exists > 0 {
		return order.ErrDuplicateID
	}

	cols, err := encodeOrder(o)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders
			(id, status, items, total, order_date, address, customer,
			 payment_method, estimated_delivery, tracking_history)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, string(o.Status), cols.items, o.Total, cols.orderDate,
		cols.address, cols.customer, o.PaymentMethod, cols.estimatedDelivery,
		cols.trackingHistory,
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert order %s: %w", o.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit create: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (order.Order, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return order.Order{}, order.ErrNotFound
	}
	if err != nil {
		return order.Order{}, fmt.Errorf("sqlite: get order %s: %w", id, err)
	}
	return o, nil
}

func (r *Repository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list orders: %w", err)
	}
	defer rows.Close()

	var out []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan order: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list orders: %w", err)
	}
	return out, nil
}

func (r *Repository) Update(ctx context.Context, id string, fn func(*order.Order) error) (order.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return order.Order{}, fmt.Errorf("sqlite: begin update: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return order.Order{}, order.ErrNotFound
	}
	if err != nil {
		return order.Order{}, fmt.Errorf("sqlite: read order %s: %w", id, err)
	}

	if err := fn(&o); err != nil {
		return order.Order{}, err
	}
	o.ID = id // the id is immutable once assigned

	cols, err := encodeOrder(o)
	if err != nil {
		return order.Order{}, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders SET
			status = ?, items = ?, total = ?, order_date = ?, address = ?,
			customer = ?, payment_method = ?, estimated_delivery = ?,
			tracking_history = ?
		WHERE id = ?`,
		string(o.Status), cols.items, o.Total, cols.orderDate, cols.address,
		cols.customer, o.PaymentMethod, cols.estimatedDelivery,
		cols.trackingHistory, id,
	)
	if err != nil {
		return order.Order{}, fmt.Errorf("sqlite: update order %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return order.Order{}, fmt.Errorf("sqlite: commit update: %w", err)
	}
	return o, nil
}

const selectColumns = `
	SELECT id, status, items, total, order_date, address, customer,
	       payment_method, estimated_delivery, tracking_history
	FROM orders`

// encodedOrder holds the TEXT column values for one order row.
type encodedOrder struct {
	items             string
	address           string
	customer          string
	orderDate         string
	estimatedDelivery string
	trackingHistory   string
}

func encodeOrder(o order.Order) (encodedOrder, error) {
	items, err := json.Marshal(orNonNilItems(o.Items))
	if err != nil {
		return encodedOrder{}, fmt.Errorf("sqlite: encode items: %w", err)
	}
	addr, err := json.Marshal(o.Address)
	if err != nil {
		return encodedOrder{}, fmt.Errorf("sqlite: encode address: %w", err)
	}
	cust, err := json.Marshal(o.Customer)
	if err != nil {
		return encodedOrder{}, fmt.Errorf("sqlite: encode customer: %w", err)
	}
	hist, err := json.Marshal(orNonNilEvents(o.TrackingHistory))
	if err != nil {
		return encodedOrder{}, fmt.Errorf("sqlite: encode tracking history: %w", err)
	}

	eta := ""
	if !o.EstimatedDelivery.IsZero() {
		eta = o.EstimatedDelivery.UTC().Format(time.RFC3339Nano)
	}

	return encodedOrder{
		items:             string(items),
		address:           string(addr),
		customer:          string(cust),
		orderDate:         o.Date.UTC().Format(time.RFC3339Nano),
		estimatedDelivery: eta,
		trackingHistory:   string(hist),
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (order.Order, error) {
	var (
		o      order.Order
		status string
		cols   encodedOrder
	)
	err := row.Scan(&o.ID, &status, &cols.items, &o.Total, &cols.orderDate,
		&cols.address, &cols.customer, &o.PaymentMethod,
		&cols.estimatedDelivery, &cols.trackingHistory)
	if err != nil {
		return order.Order{}, err
	}
	o.Status = order.Status(status)

	if err := json.Unmarshal([]byte(cols.items), &o.Items); err != nil {
		return order.Order{}, fmt.Errorf("decode items: %w", err)
	}
	if err := json.Unmarshal([]byte(cols.address), &o.Address); err != nil {
		return order.Order{}, fmt.Errorf("decode address: %w", err)
	}
	if err := json.Unmarshal([]byte(cols.customer), &o.Customer); err != nil {
		return order.Order{}, fmt.Errorf("decode customer: %w", err)
	}
	if err := json.Unmarshal([]byte(cols.trackingHistory), &o.TrackingHistory); err != nil {
		return order.Order{}, fmt.Errorf("decode tracking history: %w", err)
	}
	if len(o.TrackingHistory) == 0 {
		o.TrackingHistory = nil
	}

	if o.Date, err = parseRFC3339(cols.orderDate); err != nil {
		return order.Order{}, err
	}
	if cols.estimatedDelivery != "" {
		if o.EstimatedDelivery, err = parseRFC3339(cols.estimatedDelivery); err != nil {
			return order.Order{}, err
		}
	}
	return o, nil
}

// parseRFC3339 parses the timestamp strings stored in SQLite.
// SQLite has no native datetime type; we store RFC3339 TEXT.
func parseRFC3339(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", s, err)
	}
	return t, nil
}

func orNonNilItems(items []order.LineItem) []order.LineItem {
	if items == nil {
		return []order.LineItem{}
	}
	return items
}

func orNonNilEvents(evs []order.TrackingEvent) []order.TrackingEvent {
	if evs == nil {
		return []order.TrackingEvent{}
	}
	return evs
}
