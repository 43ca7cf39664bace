package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	userpostgres "github.com/Apurer/go-shop-api-server/internal/domains/users/adapters/persistence/postgres"
	"github.com/Apurer/go-shop-api-server/internal/notifications"
	temporalnotifier "github.com/Apurer/go-shop-api-server/internal/notifications/temporal"
	platformpostgres "github.com/Apurer/go-shop-api-server/internal/platform/postgres"
)

// Enqueues a re-engagement email for every account idle longer than
// REENGAGEMENT_IDLE_HOURS. Run from cron; delivery happens on the
// notification worker.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot find inactive users")
	}

	temporalClient, err := client.Dial(client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
	})
	if err != nil {
		log.Fatalf("failed to create Temporal client: %v", err)
	}
	defer temporalClient.Close()
	notifier := temporalnotifier.NewNotifier(temporalClient)

	cutoff := time.Now().Add(-idleWindowFromEnv())
	users, err := userpostgres.NewRepository(db).ListInactiveSince(ctx, cutoff)
	if err != nil {
		log.Fatalf("failed to list inactive users: %v", err)
	}

	var enqueued int
	for _, user := range users {
		if user.Email == "" {
			continue
		}
		err := notifier.Enqueue(ctx, notifications.Event{
			Kind:     notifications.KindReengagement,
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
		})
		if err != nil {
			logger.Warn("failed to enqueue re-engagement email",
				slog.Int64("user.id", user.ID), slog.String("error", err.Error()))
			continue
		}
		enqueued++
	}
	logger.Info("re-engagement run completed",
		slog.Time("cutoff", cutoff), slog.Int("candidates", len(users)), slog.Int("enqueued", enqueued))
}

func idleWindowFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv("REENGAGEMENT_IDLE_HOURS"))
	if raw == "" {
		return 30 * 24 * time.Hour
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return 30 * 24 * time.Hour
	}
	return time.Duration(hours) * time.Hour
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
