package lifecyclelog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// NewEntry builds an Entry for the given order and stage, stamping the
// trace and span ids of the span active in ctx. When ctx carries no active
// span (unit tests, background work) both ids are left empty; callers and
// repositories must tolerate that.
func NewEntry(ctx context.Context, orderID string, stage Stage, detail string) *Entry {
	e := &Entry{
		EntryID:    uuid.NewString(),
		OrderID:    orderID,
		Stage:      stage,
		Detail:     detail,
		RecordedAt: time.Now().UTC(),
	}

	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		e.TraceID = sc.TraceID().String()
		e.SpanID = sc.SpanID().String()
	}
	return e
}
