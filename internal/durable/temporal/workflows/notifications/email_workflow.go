package notifications

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-shop-api-server/internal/notifications"
)

const (
	// EmailWorkflowName is the public identifier for registering the workflow.
	EmailWorkflowName = "notifications.workflows.Email"
	// EmailTaskQueue is the queue consumed by the worker delivering emails.
	EmailTaskQueue = "NOTIFICATIONS"
	// SendEmailActivityName renders and delivers a single notification email.
	SendEmailActivityName = "notifications.activities.SendEmail"
)

// EmailWorkflowInput captures the payload required to deliver one email.
type EmailWorkflowInput struct {
	Event   notifications.Event
	TraceID string
}

// EmailWorkflow delivers a notification email with retries. Delivery is
// at-least-once; the send activity deduplicates via heartbeat details.
func EmailWorkflow(ctx workflow.Context, input EmailWorkflowInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("EmailWorkflow started", withTraceID(input.TraceID,
		"kind", string(input.Event.Kind), "userId", input.Event.UserID)...)

	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		HeartbeatTimeout:    10 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	if err := workflow.ExecuteActivity(ctx, SendEmailActivityName, input.Event).Get(ctx, nil); err != nil {
		logger.Error("EmailWorkflow failed", withTraceID(input.TraceID,
			"kind", string(input.Event.Kind), "userId", input.Event.UserID, "error", err)...)
		return err
	}
	logger.Info("EmailWorkflow completed", withTraceID(input.TraceID,
		"kind", string(input.Event.Kind), "userId", input.Event.UserID)...)
	return nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
