package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCache_RoundTrip(t *testing.T) {
	cache := NewCache()
	ctx := context.Background()

	cache.Set(ctx, "user_orders_1", []byte(`[{"id":1}]`), time.Minute)

	value, ok := cache.Get(ctx, "user_orders_1")
	require.True(t, ok)
	require.Equal(t, []byte(`[{"id":1}]`), value)

	_, ok = cache.Get(ctx, "user_orders_2")
	require.False(t, ok)
}

func TestCache_EntriesExpire(t *testing.T) {
	cache := NewCache()
	clock := time.Now()
	cache.now = func() time.Time { return clock }
	ctx := context.Background()

	cache.Set(ctx, "admin_orders", []byte("cached"), time.Hour)

	_, ok := cache.Get(ctx, "admin_orders")
	require.True(t, ok)

	clock = clock.Add(time.Hour + time.Second)
	_, ok = cache.Get(ctx, "admin_orders")
	require.False(t, ok)

	// The expired entry is gone, not just hidden.
	cache.mu.RLock()
	_, stored := cache.entries["admin_orders"]
	cache.mu.RUnlock()
	require.False(t, stored)
}

func TestCache_NonPositiveTTLIgnored(t *testing.T) {
	cache := NewCache()
	ctx := context.Background()

	cache.Set(ctx, "key", []byte("value"), 0)
	_, ok := cache.Get(ctx, "key")
	require.False(t, ok)
}

func TestCache_Delete(t *testing.T) {
	cache := NewCache()
	ctx := context.Background()

	cache.Set(ctx, "key", []byte("value"), time.Minute)
	cache.Delete(ctx, "key")

	_, ok := cache.Get(ctx, "key")
	require.False(t, ok)
}

func TestCache_ReadsAreIsolatedCopies(t *testing.T) {
	cache := NewCache()
	ctx := context.Background()

	cache.Set(ctx, "key", []byte("value"), time.Minute)
	first, ok := cache.Get(ctx, "key")
	require.True(t, ok)
	first[0] = 'X'

	second, ok := cache.Get(ctx, "key")
	require.True(t, ok)
	require.Equal(t, []byte("value"), second)
}

func TestCache_WritesSweepExpiredEntries(t *testing.T) {
	cache := NewCache()
	clock := time.Now()
	cache.now = func() time.Time { return clock }
	ctx := context.Background()

	cache.Set(ctx, "stale", []byte("old"), time.Minute)
	clock = clock.Add(2 * time.Minute)
	cache.Set(ctx, "fresh", []byte("new"), time.Minute)

	cache.mu.RLock()
	_, staleKept := cache.entries["stale"]
	cache.mu.RUnlock()
	require.False(t, staleKept)
}
