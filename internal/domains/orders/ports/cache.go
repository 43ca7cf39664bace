package ports

import (
	"context"
	"time"
)

// Cache is a best-effort key/value store with TTL expiry. It offers no
// consistency guarantee beyond eventual expiry; callers must tolerate
// stale reads and failed invalidations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// NoopCache is a safe default when callers do not need caching.
var NoopCache Cache = noopCache{}

type noopCache struct{}

func (noopCache) Get(_ context.Context, _ string) ([]byte, bool)             { return nil, false }
func (noopCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) {}
func (noopCache) Delete(_ context.Context, _ string)                         {}
