// Package checkout implements the order lifecycle engine: session creation,
// gateway handoff, post-redirect reconciliation, idempotent confirmation and
// notification.
//
// Stages on the happy path: SESSION_REQUESTED -> AWAITING_GATEWAY ->
// VERIFYING -> CONFIRMED. Verification failures land in FAILED and leave the
// order exactly as it was; no half-confirmed state is ever persisted.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/swiftcart/checkout/internal/checkout/lifecyclelog"
	"github.com/swiftcart/checkout/internal/order"
	"github.com/swiftcart/checkout/internal/order/store"
	"github.com/swiftcart/checkout/internal/payment"
	"github.com/swiftcart/checkout/internal/pkg/cache"
)

var (
	// ErrEmptyCart means checkout was initiated with no line items. A
	// guard, not a failure: the caller redirects to the cart-editing flow.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrMissingAddress means checkout was initiated without a shipping
	// address. Same guard semantics as ErrEmptyCart.
	ErrMissingAddress = errors.New("shipping address is missing")

	// ErrAlreadyConfirmed means Confirm was called for an order that is no
	// longer Pending. The Pending -> Ordered transition happens at most
	// once per order id.
	ErrAlreadyConfirmed = errors.New("order already confirmed")
)

// Outcome classifies the result of a reconcile pass.
type Outcome string

const (
	OutcomeConfirmed        Outcome = "confirmed"
	OutcomeAlreadyConfirmed Outcome = "already_confirmed"
	OutcomeFailed           Outcome = "failed"
	OutcomeInFlight         Outcome = "in_flight"
)

// Session is the handle returned by InitiateCheckout; the caller hands the
// payment session id to the gateway's hosted checkout.
type Session struct {
	OrderID          string
	PaymentSessionID string
}

// Result is the terminal state of one reconcile pass.
type Result struct {
	Outcome Outcome
	Order   order.Order

	// RawStatus is the gateway's own status label on a failed pass.
	RawStatus string
}

// Config carries the engine's business knobs.
type Config struct {
	// FreeShippingThreshold is the subtotal above which shipping is free.
	FreeShippingThreshold float64

	// ShippingFlatFee is charged when the subtotal is at or below the
	// threshold.
	ShippingFlatFee float64

	// VerifyTimeout bounds the settlement-verification call; a gateway
	// timeout maps to a failed outcome instead of hanging the return view.
	VerifyTimeout time.Duration

	// PaymentMethodLabel is recorded on the order at confirmation.
	PaymentMethodLabel string
}

func (c Config) withDefaults() Config {
	if c.FreeShippingThreshold == 0 {
		c.FreeShippingThreshold = 500
	}
	if c.ShippingFlatFee == 0 {
		c.ShippingFlatFee = 50
	}
	if c.VerifyTimeout == 0 {
		c.VerifyTimeout = 15 * time.Second
	}
	if c.PaymentMethodLabel == "" {
		c.PaymentMethodLabel = "Cashfree"
	}
	return c
}

// Engine orchestrates the order lifecycle over its ports.
type Engine struct {
	store       store.Repository
	gateway     payment.Gateway
	notifier    Notifier
	sessions    cache.Cache
	journal     lifecyclelog.Repository // nil-safe: logging skipped if nil
	ids         *order.IDGenerator
	activations *ActivationSet
	now         func() time.Time
	cfg         Config
}

// NewEngine wires the engine. journal may be nil; lifecycle audit rows are
// then not persisted.
func NewEngine(st store.Repository, gw payment.Gateway, n Notifier, sessions cache.Cache, journal lifecyclelog.Repository, cfg Config) *Engine {
	return &Engine{
		store:       st,
		gateway:     gw,
		notifier:    n,
		sessions:    sessions,
		journal:     journal,
		ids:         order.NewIDGenerator(),
		activations: NewActivationSet(),
		now:         time.Now,
		cfg:         cfg.withDefaults(),
	}
}

// workingState is the cached checkout snapshot, cleared on confirmation.
type workingState struct {
	OrderID string  `json:"order_id"`
	Total   float64 `json:"total"`
}

// InitiateCheckout validates the cart, computes the total, allocates an
// order id and requests a payment session from the gateway.
//
// The gateway call happens before any store write: a session failure
// persists nothing. On success a Pending order is written as an audit trail
// and the checkout working state is cached until confirmation.
func (e *Engine) InitiateCheckout(ctx context.Context, cart []order.LineItem, addr order.Address, cust order.Customer) (*Session, error) {
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}
	if addr == (order.Address{}) {
		return nil, ErrMissingAddress
	}

	var subtotal float64
	for _, it := range cart {
		subtotal += it.Subtotal()
	}
	total := subtotal + e.shippingFor(subtotal)

	orderID := e.ids.Next()
	e.record(ctx, orderID, lifecyclelog.StageSessionRequested,
		fmt.Sprintf("amount=%.2f", total))

	sessionID, err := e.gateway.CreateSession(ctx, total, orderID, cust.Email, cust.Phone)
	if err != nil {
		e.record(ctx, orderID, lifecyclelog.StageFailed, err.Error())
		return nil, fmt.Errorf("initiate checkout %s: %w", orderID, err)
	}

	pending := order.Order{
		ID:       orderID,
		Status:   order.StatusPending,
		Items:    cart,
		Total:    total,
		Date:     e.now().UTC(),
		Address:  addr,
		Customer: cust,
	}
	if err := e.store.Create(ctx, pending); err != nil {
		// Checkout is aborted before the gateway handoff; the unused
		// session expires on the provider side.
		e.record(ctx, orderID, lifecyclelog.StageFailed, err.Error())
		return nil, fmt.Errorf("persist pending order %s: %w", orderID, err)
	}

	e.cacheWorkingState(ctx, cust, workingState{OrderID: orderID, Total: total})
	e.record(ctx, orderID, lifecyclelog.StageAwaitingGateway, "session="+sessionID)

	slog.InfoContext(ctx, "checkout initiated",
		"order_id", orderID, "total", total, "session_id", sessionID)

	return &Session{OrderID: orderID, PaymentSessionID: sessionID}, nil
}

// ReconcileOnReturn is invoked when the gateway redirects the browser back.
// The activation latch guarantees the body below runs at most once per
// activation no matter how often the return view re-fires.
func (e *Engine) ReconcileOnReturn(ctx context.Context, orderID string) (Result, error) {
	act := e.activations.Begin(orderID)
	if !act.TryEnter() {
		slog.InfoContext(ctx, "reconcile suppressed, activation already entered",
			"order_id", orderID, "activation", act.Token)
		return Result{Outcome: OutcomeInFlight}, nil
	}
	defer e.activations.End(orderID)

	o, err := e.store.Get(ctx, orderID)
	switch {
	case err == nil && o.Status == order.StatusOrdered:
		// The user re-visited the return URL: success outcome without
		// re-verifying or re-notifying.
		return Result{Outcome: OutcomeAlreadyConfirmed, Order: o}, nil
	case err != nil && !errors.Is(err, order.ErrNotFound):
		return Result{}, fmt.Errorf("reconcile %s: %w", orderID, err)
	}

	e.record(ctx, orderID, lifecyclelog.StageVerifying, "")

	vctx, cancel := context.WithTimeout(ctx, e.cfg.VerifyTimeout)
	settlement, err := e.gateway.VerifySettlement(vctx, orderID)
	cancel()
	if err != nil {
		e.record(ctx, orderID, lifecyclelog.StageFailed, err.Error())
		return Result{Outcome: OutcomeFailed}, fmt.Errorf("verify settlement %s: %w", orderID, err)
	}

	if !settlement.Settled {
		// Funds disposition is the gateway's responsibility; the order
		// stays exactly as it was and the user is directed back to cart.
		e.record(ctx, orderID, lifecyclelog.StageFailed, "gateway status "+settlement.RawStatus)
		slog.InfoContext(ctx, "settlement not confirmed",
			"order_id", orderID, "gateway_status", settlement.RawStatus)
		return Result{Outcome: OutcomeFailed, Order: o, RawStatus: settlement.RawStatus}, nil
	}

	confirmed, err := e.Confirm(ctx, orderID, e.cfg.PaymentMethodLabel)
	if errors.Is(err, ErrAlreadyConfirmed) {
		// Lost the race to another browser context; its pass owns the
		// notification.
		existing, getErr := e.store.Get(ctx, orderID)
		if getErr != nil {
			return Result{}, fmt.Errorf("reconcile %s: %w", orderID, getErr)
		}
		return Result{Outcome: OutcomeAlreadyConfirmed, Order: existing}, nil
	}
	if err != nil {
		e.record(ctx, orderID, lifecyclelog.StageFailed, err.Error())
		return Result{Outcome: OutcomeFailed}, fmt.Errorf("confirm %s: %w", orderID, err)
	}

	// Side effects strictly after verified settlement and confirmation.
	e.notifier.Notify(ctx, Notification{
		Title:   "Order Placed Successfully!",
		Message: fmt.Sprintf("Your order #%s is confirmed.", orderID),
		Link:    "/track-order/" + orderID,
	})
	e.clearWorkingState(ctx, confirmed.Customer)
	e.record(ctx, orderID, lifecyclelog.StageConfirmed, "method="+confirmed.PaymentMethod)

	slog.InfoContext(ctx, "order confirmed",
		"order_id", orderID, "total", confirmed.Total)

	return Result{Outcome: OutcomeConfirmed, Order: confirmed}, nil
}

// Confirm is the single authoritative Pending -> Ordered mutation. The
// confirmation instant overwrites the provisional creation instant, the
// delivery estimate is set to three days out and the tracking history is
// seeded with exactly one Ordered event.
func (e *Engine) Confirm(ctx context.Context, orderID, paymentMethod string) (order.Order, error) {
	now := e.now().UTC()
	return e.store.Update(ctx, orderID, func(o *order.Order) error {
		if o.Status != order.StatusPending {
			return ErrAlreadyConfirmed
		}
		o.Status = order.StatusOrdered
		o.PaymentMethod = paymentMethod
		o.Date = now
		o.EstimatedDelivery = now.Add(72 * time.Hour)
		o.TrackingHistory = []order.TrackingEvent{{
			Status:      order.StatusOrdered,
			Date:        now,
			Location:    "Online",
			Description: "Your order has been placed successfully.",
		}}
		return nil
	})
}

// Cancel marks an order Cancelled. Invoked by the admin surface; cancelled
// orders are excluded from tracking simulation.
func (e *Engine) Cancel(ctx context.Context, orderID string) (order.Order, error) {
	return e.store.Update(ctx, orderID, func(o *order.Order) error {
		o.Status = order.StatusCancelled
		return nil
	})
}

func (e *Engine) shippingFor(subtotal float64) float64 {
	if subtotal > e.cfg.FreeShippingThreshold {
		return 0
	}
	return e.cfg.ShippingFlatFee
}

func (e *Engine) cacheWorkingState(ctx context.Context, cust order.Customer, ws workingState) {
	if e.sessions == nil {
		return
	}
	val, err := json.Marshal(ws)
	if err != nil {
		return
	}
	key := e.sessions.GenerateKey("session", customerKey(cust))
	if err := e.sessions.Set(ctx, key, string(val), time.Hour); err != nil {
		slog.WarnContext(ctx, "failed to cache checkout state", "order_id", ws.OrderID, "error", err)
	}
}

func (e *Engine) clearWorkingState(ctx context.Context, cust order.Customer) {
	if e.sessions == nil {
		return
	}
	key := e.sessions.GenerateKey("session", customerKey(cust))
	if err := e.sessions.Delete(ctx, key); err != nil {
		slog.WarnContext(ctx, "failed to clear checkout state", "customer", cust.ID, "error", err)
	}
}

func customerKey(cust order.Customer) string {
	if cust.ID != "" {
		return cust.ID
	}
	return cust.Email
}

// record appends a lifecycle audit row. Nil-safe and best-effort: audit
// failures never alter the engine's outcome.
func (e *Engine) record(ctx context.Context, orderID string, stage lifecyclelog.Stage, detail string) {
	if e.journal == nil {
		return
	}
	entry := lifecyclelog.NewEntry(ctx, orderID, stage, detail)
	if err := e.journal.Save(ctx, entry); err != nil {
		slog.WarnContext(ctx, "failed to append lifecycle log",
			"order_id", orderID, "stage", string(stage), "error", err)
	}
}
