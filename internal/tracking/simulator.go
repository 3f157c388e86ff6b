// Package tracking derives a shipment-status timeline from an order's
// confirmation timestamp and the current time.
//
// Simulate is a pure function: the timeline is a view computed on every
// read, never a stored mutation, so display status progresses purely with
// elapsed time and no background job is needed.
package tracking

import (
	"time"

	"github.com/swiftcart/checkout/internal/order"
)

// milestone is one fixed-threshold step of the simulated timeline.
type milestone struct {
	after       time.Duration
	status      order.Status
	location    func(order.Address) string
	description string
}

var milestones = []milestone{
	{
		after:       4 * time.Hour,
		status:      order.StatusPacked,
		location:    func(order.Address) string { return "Seller Warehouse" },
		description: "Order has been packed and is ready for pickup.",
	},
	{
		after:       8 * time.Hour,
		status:      order.StatusShipped,
		location:    func(order.Address) string { return "Warehouse Dispatch Center" },
		description: "Dispatched from warehouse.",
	},
	{
		after:  12 * time.Hour,
		status: order.StatusOutForDelivery,
		location: func(a order.Address) string {
			if a.City != "" {
				return a.City
			}
			return "City Hub"
		},
		description: "Your order is out for delivery.",
	},
	{
		after:  16 * time.Hour,
		status: order.StatusDelivered,
		location: func(a order.Address) string {
			if a.Line1 != "" {
				return a.Line1
			}
			return "Delivery Location"
		},
		description: "Order has been delivered.",
	},
}

// Simulate returns a copy of o with display status and tracking history
// derived from the time elapsed between o.Date and now.
//
// Pending and Cancelled orders are returned unchanged: no timeline is
// fabricated for unconfirmed orders and cancelled orders are excluded from
// simulation. An order with a zero Date is returned unchanged as well
// (fail-soft rather than fail-fatal).
func Simulate(o order.Order, now time.Time) order.Order {
	if o.Status != order.StatusOrdered {
		return o
	}
	if o.Date.IsZero() {
		return o
	}

	history := []order.TrackingEvent{{
		Status:      order.StatusOrdered,
		Date:        o.Date,
		Location:    "Online",
		Description: "Your order has been placed successfully.",
	}}

	elapsed := now.Sub(o.Date)
	for _, m := range milestones {
		if elapsed < m.after {
			break
		}
		history = append(history, order.TrackingEvent{
			Status:      m.status,
			Date:        o.Date.Add(m.after),
			Location:    m.location(o.Address),
			Description: m.description,
		})
	}

	o.Status = history[len(history)-1].Status

	// Newest first for display.
	reversed := make([]order.TrackingEvent, len(history))
	for i, ev := range history {
		reversed[len(history)-1-i] = ev
	}
	o.TrackingHistory = reversed
	return o
}

// SimulateAll applies Simulate to every order in the slice.
func SimulateAll(orders []order.Order, now time.Time) []order.Order {
	out := make([]order.Order, len(orders))
	for i, o := range orders {
		out[i] = Simulate(o, now)
	}
	return out
}
