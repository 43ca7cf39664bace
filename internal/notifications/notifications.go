// Package notifications defines the fire-and-forget event contract used
// to decouple email dispatch from request handling. Delivery is
// at-least-once; consumers must tolerate duplicates.
package notifications

import (
	"context"
	"log/slog"
)

// Kind names the notification templates the worker knows how to render.
type Kind string

const (
	KindWelcome        Kind = "user.welcome"
	KindReengagement   Kind = "user.reengagement"
	KindOrderPlaced    Kind = "order.placed"
	KindOrderCancelled Kind = "order.cancelled"
)

// Event describes an occurrence worth emailing a user about.
type Event struct {
	Kind     Kind
	UserID   int64
	Username string
	Email    string
	OrderID  int64
	Detail   string
}

// Notifier enqueues events for asynchronous delivery. Implementations
// must not block on downstream delivery; enqueue failures are reported
// so callers can log them, but never retried here.
type Notifier interface {
	Enqueue(ctx context.Context, event Event) error
}

// NoopNotifier is a safe default when no delivery backend is wired.
var NoopNotifier Notifier = noopNotifier{}

type noopNotifier struct{}

func (noopNotifier) Enqueue(_ context.Context, _ Event) error { return nil }

// LogNotifier records events to the logger instead of delivering them.
// Used as the fallback when the Temporal backend is unavailable.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Enqueue(ctx context.Context, event Event) error {
	if n.logger != nil {
		n.logger.LogAttrs(ctx, slog.LevelInfo, "notification recorded (no delivery backend)",
			slog.String("kind", string(event.Kind)),
			slog.Int64("user.id", event.UserID),
			slog.String("email", event.Email),
			slog.Int64("order.id", event.OrderID),
		)
	}
	return nil
}

var _ Notifier = (*LogNotifier)(nil)
