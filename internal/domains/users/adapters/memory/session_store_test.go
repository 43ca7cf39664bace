package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-shop-api-server/internal/domains/users/ports"
)

func TestSessionStore_SaveLookupDelete(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	expiry := time.Now().Add(time.Hour)

	require.NoError(t, store.Save(ctx, "alice", "token-1", expiry))

	username, err := store.Lookup(ctx, "token-1")
	require.NoError(t, err)
	require.Equal(t, "alice", username)

	require.NoError(t, store.Delete(ctx, "alice"))
	_, err = store.Lookup(ctx, "token-1")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_SingleSessionPerUser(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	expiry := time.Now().Add(time.Hour)

	require.NoError(t, store.Save(ctx, "alice", "token-1", expiry))
	require.NoError(t, store.Save(ctx, "alice", "token-2", expiry))

	_, err := store.Lookup(ctx, "token-1")
	require.ErrorIs(t, err, ports.ErrSessionNotFound, "a new login evicts the previous token")

	username, err := store.Lookup(ctx, "token-2")
	require.NoError(t, err)
	require.Equal(t, "alice", username)
}

func TestSessionStore_ExpiredTokensRejected(t *testing.T) {
	store := NewSessionStore()
	clock := time.Now()
	store.now = func() time.Time { return clock }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alice", "token-1", clock.Add(time.Minute)))

	clock = clock.Add(2 * time.Minute)
	_, err := store.Lookup(ctx, "token-1")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_PurgeExpired(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Save(ctx, "alice", "token-1", now.Add(-time.Minute)))
	require.NoError(t, store.Save(ctx, "bob", "token-2", now.Add(time.Hour)))

	purged, err := store.PurgeExpired(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), purged)

	username, err := store.Lookup(ctx, "token-2")
	require.NoError(t, err)
	require.Equal(t, "bob", username)
}
