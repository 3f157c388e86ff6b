// Package payment defines the port to the external payment gateway.
//
// The gateway is authoritative for fund movement; this service only creates
// payment sessions and asks for the settlement truth afterwards.
package payment

import (
	"context"
	"errors"
)

var (
	// ErrSessionCreationFailed means the remote provider errored or
	// returned no session identifier. The user retries checkout; no state
	// is persisted.
	ErrSessionCreationFailed = errors.New("payment session creation failed")

	// ErrVerificationFailed means the gateway could not be asked for the
	// settlement status (network error, timeout). The order is left
	// exactly as it was.
	ErrVerificationFailed = errors.New("payment verification failed")
)

// Settlement is the gateway's current truth for an order.
type Settlement struct {
	// Settled is true once the provider reports funds captured.
	Settled bool

	// RawStatus is the provider's own status label ("PAID", "ACTIVE",
	// "EXPIRED", ...), kept for logging and support.
	RawStatus string
}

// Gateway is consumed by the lifecycle engine.
//
// VerifySettlement is idempotent and side-effect-free: it may be called any
// number of times for the same order id and always returns the provider's
// current truth.
type Gateway interface {
	CreateSession(ctx context.Context, amount float64, orderID, customerEmail, customerPhone string) (sessionID string, err error)
	VerifySettlement(ctx context.Context, orderID string) (Settlement, error)
}
