// Package order holds the central domain types of the checkout service.
//
// An order is created once (at checkout), mutated at most twice
// (Pending -> Ordered on settlement, possibly -> Cancelled by an admin
// action later) and never deleted by the normal flow. Display-level
// shipment phases (Packed, Shipped, ...) are derived views computed by the
// tracking package; only Pending, Ordered and Cancelled are ever persisted.
package order

import (
	"errors"
	"time"
)

// Status is an order lifecycle status.
type Status string

const (
	// Persisted statuses.
	StatusPending   Status = "Pending"
	StatusOrdered   Status = "Ordered"
	StatusCancelled Status = "Cancelled"

	// Derived display statuses, produced only by the tracking simulator.
	StatusPacked         Status = "Packed"
	StatusShipped        Status = "Shipped"
	StatusOutForDelivery Status = "Out for Delivery"
	StatusDelivered      Status = "Delivered"
)

var (
	// ErrNotFound is returned when an order id has no stored record.
	ErrNotFound = errors.New("order not found")

	// ErrDuplicateID is returned when creating an order whose id is already
	// taken. It indicates a broken id-generation scheme, never user input.
	ErrDuplicateID = errors.New("duplicate order id")
)

// LineItem is a cart line snapshotted at order-creation time. Later catalog
// price changes must not retroactively alter a placed order.
type LineItem struct {
	ProductID     string  `json:"product_id"`
	Quantity      int     `json:"quantity"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"original_price"`
}

// Subtotal is the line contribution to the order total.
func (i LineItem) Subtotal() float64 {
	return float64(i.Quantity) * i.Price
}

// Address is the shipping destination snapshot.
type Address struct {
	Name    string `json:"name"`
	Line1   string `json:"line1"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
}

// Customer identifies the buyer to the payment gateway and keys the
// checkout working state.
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// TrackingEvent is a single shipment milestone.
type TrackingEvent struct {
	Status      Status    `json:"status"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
}

// Order is the central entity.
//
// Date is the provisional creation instant while Pending and is overwritten
// with the confirmation instant on the Pending -> Ordered transition.
// EstimatedDelivery is zero and TrackingHistory nil until confirmation.
type Order struct {
	ID                string          `json:"id"`
	Status            Status          `json:"status"`
	Items             []LineItem      `json:"items"`
	Total             float64         `json:"total"`
	Date              time.Time       `json:"date"`
	Address           Address         `json:"address"`
	Customer          Customer        `json:"customer"`
	PaymentMethod     string          `json:"payment_method,omitempty"`
	EstimatedDelivery time.Time       `json:"estimated_delivery,omitzero"`
	TrackingHistory   []TrackingEvent `json:"tracking_history,omitempty"`
}

// Subtotal sums the line items without the shipping surcharge.
func (o Order) Subtotal() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.Subtotal()
	}
	return sum
}
