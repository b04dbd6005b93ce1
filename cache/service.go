package cache

import (
	"context"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

// RemoteCache is the shared key-value tier: per-key TTLs, prefix-pattern
// scans, possibly slow and possibly unavailable. Implementations must keep
// failures cheap to detect (short timeouts, circuit breaking) because the
// read path treats every failure as a miss.
type RemoteCache interface {
	// Get returns the stored bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the given keys.
	Delete(ctx context.Context, keys ...string) error
	// Keys returns every key matching the glob pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)
	// DeleteByPattern removes every key starting with prefix, returning
	// the number deleted.
	DeleteByPattern(ctx context.Context, prefix string) (int, error)
}

// RemoteStore combines the value-cache and counter capabilities a remote
// tier implementation provides.
type RemoteStore interface {
	RemoteCache
	Counter
}

// ComputeFn fetches a value from the origin store on a full cache miss.
type ComputeFn[T any] func(ctx context.Context) (T, error)

// ReadThrough orchestrates lookups across the memory tier, the remote
// tier, and the origin fetch. Caching is strictly an optimization here:
// remote-tier failures are logged and treated as misses, never surfaced,
// while origin errors propagate unchanged and are never cached.
type ReadThrough struct {
	memory *MemoryTier
	remote RemoteCache
	policy TTLPolicy
	log    *zap.Logger
}

// NewReadThrough wires the two tiers together under the given TTL policy.
// A nil logger defaults to a no-op logger.
func NewReadThrough(memory *MemoryTier, remote RemoteCache, policy TTLPolicy, log *zap.Logger) *ReadThrough {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReadThrough{
		memory: memory,
		remote: remote,
		policy: policy,
		log:    log,
	}
}

// Memory exposes the in-process tier, mainly for invalidation wiring.
func (r *ReadThrough) Memory() *MemoryTier { return r.memory }

// Remote exposes the shared tier, mainly for admin tooling.
func (r *ReadThrough) Remote() RemoteCache { return r.remote }

// GetOrCompute resolves key through the tiers:
//
//  1. Memory hit: returned immediately, no I/O.
//  2. Remote hit: decoded, promoted into the memory tier, returned.
//  3. Full miss: compute is invoked and its result stored in both tiers
//     (best effort) with the TTLs of the given priority.
//
// The second return value reports whether any tier served the value.
// Concurrent cold calls for the same key may each invoke compute; both
// race to populate the cache with equivalent results and the last write
// wins.
func GetOrCompute[T any](ctx context.Context, r *ReadThrough, key string, priority Priority, compute ComputeFn[T]) (T, bool, error) {
	if v, ok := r.memory.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, true, nil
		}
		// A different payload type landed under this key; treat as a miss
		// and let the fill below repair it.
		r.memory.Delete(key)
	}

	ttls := r.policy.TTLs(priority)

	if data, ok, err := r.remote.Get(ctx, key); err != nil {
		r.log.Warn("remote cache get failed, treating as miss",
			zap.String("key", key), zap.Error(err))
	} else if ok {
		var out T
		decodeErr := msgpack.Unmarshal(data, &out)
		if decodeErr == nil {
			r.memory.Set(key, out, ttls.Memory)
			return out, true, nil
		}
		r.log.Warn("remote cache entry undecodable, dropping",
			zap.String("key", key), zap.Error(decodeErr))
		if err := r.remote.Delete(ctx, key); err != nil {
			r.log.Debug("failed to drop undecodable entry",
				zap.String("key", key), zap.Error(err))
		}
	}

	out, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}

	if data, err := msgpack.Marshal(out); err != nil {
		r.log.Warn("cache value not encodable, skipping remote fill",
			zap.String("key", key), zap.Error(err))
	} else if err := r.remote.Set(ctx, key, data, ttls.Remote); err != nil {
		r.log.Warn("remote cache set failed",
			zap.String("key", key), zap.Error(err))
	}
	r.memory.Set(key, out, ttls.Memory)

	return out, false, nil
}
