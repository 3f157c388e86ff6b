// Package lifecyclelog defines the append-only audit trail of the order
// lifecycle engine.
//
// Every stage an order moves through on the checkout path (session
// requested, gateway handoff, verification, confirmation or failure) is
// recorded as an immutable row correlated with the active distributed
// trace. The log exists for observability and support ("was this order ever
// verified?"), never for control flow: the engine works identically when no
// repository is wired.
package lifecyclelog

import "time"

// Stage is a lifecycle engine state recorded in the log.
type Stage string

const (
	StageSessionRequested Stage = "SESSION_REQUESTED"
	StageAwaitingGateway  Stage = "AWAITING_GATEWAY"
	StageVerifying        Stage = "VERIFYING"
	StageConfirmed        Stage = "CONFIRMED"
	StageFailed           Stage = "FAILED"
)

// Entry is a single row in the lifecycle log.
type Entry struct {
	// EntryID uniquely identifies this row.
	EntryID string

	// OrderID joins the row with business data.
	OrderID string

	// Stage is the engine state at the time this row was written.
	Stage Stage

	// Detail carries free-form context: the payment session id, the
	// gateway's raw status, or an error message on failure.
	Detail string

	// TraceID is the W3C trace id of the span active when the row was
	// written, so a support engineer can jump from the row to the trace.
	TraceID string

	// SpanID pinpoints the exact operation within the trace.
	SpanID string

	// RecordedAt is the wall-clock time of the event.
	RecordedAt time.Time
}
