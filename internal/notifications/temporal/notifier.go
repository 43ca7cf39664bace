package temporal

import (
	"context"
	"errors"
	"fmt"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-shop-api-server/internal/durable/temporal/workflows/notifications"
	events "github.com/Apurer/go-shop-api-server/internal/notifications"
)

var _ events.Notifier = (*Notifier)(nil)

// Notifier starts email workflows on a Temporal cluster. Enqueue is
// fire-and-forget: it returns once the workflow is accepted and never
// waits for delivery.
type Notifier struct {
	client    client.Client
	taskQueue string
}

// NewNotifier wires a Temporal client into the notifier.
func NewNotifier(c client.Client) *Notifier {
	return &Notifier{client: c, taskQueue: notifications.EmailTaskQueue}
}

func (n *Notifier) Enqueue(ctx context.Context, event events.Event) error {
	if n == nil || n.client == nil {
		return errors.New("temporal notifier not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	options := client.StartWorkflowOptions{
		ID:        buildEmailWorkflowID(event, traceComponent),
		TaskQueue: n.taskQueue,
	}
	_, err := n.client.ExecuteWorkflow(
		ctx,
		options,
		notifications.EmailWorkflow,
		notifications.EmailWorkflowInput{Event: event, TraceID: traceComponent},
	)
	return err
}

func buildEmailWorkflowID(event events.Event, traceComponent string) string {
	if event.OrderID != 0 {
		return fmt.Sprintf("notify-%s-order-%d-%s", event.Kind, event.OrderID, traceComponent)
	}
	return fmt.Sprintf("notify-%s-user-%d-%s", event.Kind, event.UserID, traceComponent)
}

func workflowTraceComponent(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span != nil {
		spanCtx := span.SpanContext()
		if spanCtx.IsValid() && spanCtx.TraceID().IsValid() {
			return spanCtx.TraceID().String()
		}
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}
