package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/activity"

	"github.com/Apurer/go-shop-api-server/internal/notifications"
)

// Mailer delivers a rendered email to a recipient address.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Activities groups activities that deliver notification emails.
type Activities struct {
	mailer Mailer
}

// NewActivities wires the mail transport into the Temporal activities bundle.
func NewActivities(mailer Mailer) *Activities {
	return &Activities{mailer: mailer}
}

// SendEmail renders the template for the event kind and hands it to the
// mailer. A heartbeat marker guards redelivery after a retried attempt
// that already sent.
func (a *Activities) SendEmail(ctx context.Context, event notifications.Event) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.mailer == nil {
		logger.Error("send email activity not initialized", "kind", string(event.Kind))
		return errors.New("send email activity not initialized")
	}
	if event.Email == "" {
		logger.Info("event has no email address; skipping", "kind", string(event.Kind), "userId", event.UserID)
		return nil
	}

	var hb sendHeartbeat
	if activity.HasHeartbeatDetails(ctx) {
		_ = activity.GetHeartbeatDetails(ctx, &hb)
	}
	if hb.Completed {
		logger.Info("SendEmail already completed in prior attempt; skipping",
			"kind", string(event.Kind), "userId", event.UserID)
		return nil
	}

	subject, body := render(event)
	logger.Info("SendEmail activity started", "kind", string(event.Kind), "userId", event.UserID)
	if err := a.mailer.Send(ctx, event.Email, subject, body); err != nil {
		logger.Error("SendEmail activity failed", "kind", string(event.Kind), "userId", event.UserID, "error", err)
		return err
	}
	activity.RecordHeartbeat(ctx, sendHeartbeat{Completed: true})
	logger.Info("SendEmail activity completed", "kind", string(event.Kind), "userId", event.UserID)
	return nil
}

type sendHeartbeat struct {
	Completed bool
}

func render(event notifications.Event) (subject, body string) {
	name := event.Username
	if name == "" {
		name = "there"
	}
	switch event.Kind {
	case notifications.KindWelcome:
		return "Welcome back to the shop",
			fmt.Sprintf("Hi %s, good to see you again. Browse the catalog for what's new.", name)
	case notifications.KindReengagement:
		return "We miss you",
			fmt.Sprintf("Hi %s, it has been a while. Come back and see what's new in the shop.", name)
	case notifications.KindOrderPlaced:
		return fmt.Sprintf("Order #%d confirmed", event.OrderID),
			fmt.Sprintf("Hi %s, we received your order #%d. %s", name, event.OrderID, event.Detail)
	case notifications.KindOrderCancelled:
		return fmt.Sprintf("Order #%d cancelled", event.OrderID),
			fmt.Sprintf("Hi %s, your order #%d was cancelled. %s", name, event.OrderID, event.Detail)
	default:
		return "Shop notification", fmt.Sprintf("Hi %s, you have a new notification.", name)
	}
}

// LogMailer records outgoing mail on the logger instead of delivering
// it. Used in development when no SMTP relay is configured.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, _ string) error {
	if m.logger != nil {
		m.logger.LogAttrs(ctx, slog.LevelInfo, "email delivered to log",
			slog.String("to", to), slog.String("subject", subject))
	}
	return nil
}

var _ Mailer = (*LogMailer)(nil)
