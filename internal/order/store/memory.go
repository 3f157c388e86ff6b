package store

import (
	"context"
	"sync"

	"github.com/swiftcart/checkout/internal/order"
)

// Ensure Memory implements the port at compile time.
var _ Repository = (*Memory)(nil)

// Memory is an in-memory Repository used in tests and local dev mode.
type Memory struct {
	mu     sync.RWMutex
	byID   map[string]order.Order
	newest []string // ids, newest first
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{byID: make(map[string]order.Order)}
}

func (m *Memory) Create(_ context.Context, o order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[o.ID]; ok {
		return order.ErrDuplicateID
	}
	m.byID[o.ID] = cloneOrder(o)
	m.newest = append([]string{o.ID}, m.newest...)
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.byID[id]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (m *Memory) List(_ context.Context) ([]order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]order.Order, 0, len(m.newest))
	for _, id := range m.newest {
		out = append(out, cloneOrder(m.byID[id]))
	}
	return out, nil
}

func (m *Memory) Update(_ context.Context, id string, fn func(*order.Order) error) (order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.byID[id]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}

	next := cloneOrder(o)
	if err := fn(&next); err != nil {
		return order.Order{}, err
	}
	next.ID = id // the id is immutable once assigned
	m.byID[id] = next
	return cloneOrder(next), nil
}

// cloneOrder deep-copies the slices so callers cannot mutate stored state.
func cloneOrder(o order.Order) order.Order {
	c := o
	if o.Items != nil {
		c.Items = append([]order.LineItem(nil), o.Items...)
	}
	if o.TrackingHistory != nil {
		c.TrackingHistory = append([]order.TrackingEvent(nil), o.TrackingHistory...)
	}
	return c
}
