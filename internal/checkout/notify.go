package checkout

import (
	"context"
	"log/slog"
)

// Notification is a user-facing message emitted by the engine.
type Notification struct {
	Title   string
	Message string
	Link    string
}

// Notifier delivers notifications. The engine emits exactly one success
// notification per confirmed order, strictly after settlement is verified.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

var _ Notifier = (*LogNotifier)(nil)

// LogNotifier writes notifications to the structured log. It stands in for
// the push/e-mail channel, which is an external collaborator.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, n Notification) {
	slog.InfoContext(ctx, "notification",
		"title", n.Title,
		"message", n.Message,
		"link", n.Link,
	)
}
