package ports

import (
	"context"
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore abstracts session/token persistence. Tokens are opaque
// and expire server-side.
type SessionStore interface {
	Save(ctx context.Context, username, token string, expiresAt time.Time) error
	// Lookup resolves a live token to its username.
	Lookup(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, username string) error
	// PurgeExpired drops expired sessions and returns how many were removed.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// NoopSessionStore is a safe default when callers do not need session persistence.
var NoopSessionStore SessionStore = noopSessionStore{}

type noopSessionStore struct{}

func (noopSessionStore) Save(_ context.Context, _, _ string, _ time.Time) error { return nil }
func (noopSessionStore) Lookup(_ context.Context, _ string) (string, error) {
	return "", ErrSessionNotFound
}
func (noopSessionStore) Delete(_ context.Context, _ string) error { return nil }
func (noopSessionStore) PurgeExpired(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}
