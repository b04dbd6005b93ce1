package cache

import (
	"context"
	"time"
)

// NoopRemoteCache is a no-op remote tier: every read misses and every
// write succeeds without storing anything. It lets single-instance
// deployments run with just the memory tier when no remote store is
// configured.
type NoopRemoteCache struct{}

// NewNoopRemoteCache creates the no-op remote tier.
func NewNoopRemoteCache() *NoopRemoteCache {
	return &NoopRemoteCache{}
}

func (n *NoopRemoteCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (n *NoopRemoteCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (n *NoopRemoteCache) Delete(ctx context.Context, keys ...string) error {
	return nil
}

func (n *NoopRemoteCache) Keys(ctx context.Context, pattern string) ([]string, error) {
	return nil, nil
}

func (n *NoopRemoteCache) DeleteByPattern(ctx context.Context, prefix string) (int, error) {
	return 0, nil
}

func (n *NoopRemoteCache) Incr(ctx context.Context, key string) (int64, error) {
	return 0, nil
}

func (n *NoopRemoteCache) Count(ctx context.Context, key string) (int64, error) {
	return 0, nil
}
