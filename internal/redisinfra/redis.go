// Package redisinfra adapts a Redis client to the remote-tier contract of
// the cache package: byte values with per-key TTLs, SCAN-based pattern
// operations, and integer counters for stats. Every call is bounded by a
// short timeout and routed through a circuit breaker, so a degraded Redis
// degrades to cache misses instead of stalling the request path.
package redisinfra

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// client is the subset of *redis.Client the store uses. Narrow so tests
// can substitute a fake returning canned command results.
type client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// Store implements the cache.RemoteCache and cache.Counter contracts on
// top of Redis.
type Store struct {
	client  client
	cfg     Config
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

// New dials Redis with the given configuration. An unreachable server is
// logged, not fatal: the breaker keeps failing calls cheap until Redis
// comes back.
func New(cfg Config, log *zap.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	s := NewWithClient(rdb, cfg, log)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		s.log.Warn("redis unreachable at startup, remote tier degraded",
			zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		s.log.Info("redis remote tier connected", zap.String("addr", cfg.Addr))
	}

	return s, nil
}

// NewWithClient wraps an existing client. Used by tests and by callers
// managing their own connection lifecycle.
func NewWithClient(c client, cfg Config, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-remote-cache",
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.Breaker.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.Breaker.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("remote cache breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Store{client: c, cfg: cfg, breaker: breaker, log: log}
}

// execute runs op through the breaker with the per-call timeout applied.
func (s *Store) execute(ctx context.Context, op func(ctx context.Context) (any, error)) (any, error) {
	return s.breaker.Execute(func() (any, error) {
		opCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
		defer cancel()
		return op(opCtx)
	})
}

// Get returns the bytes stored at key. A missing key is a miss, not an
// error; only transport and server failures surface as errors.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := s.execute(ctx, func(ctx context.Context) (any, error) {
		data, err := s.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return data, nil
	})
	if err != nil {
		return nil, false, errors.Wrap(err, "remote cache get")
	}
	if res == nil {
		return nil, false, nil
	}
	return res.([]byte), true, nil
}

// Set stores value under key for ttl.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.execute(ctx, func(ctx context.Context) (any, error) {
		return nil, s.client.Set(ctx, key, value, ttl).Err()
	})
	return errors.Wrap(err, "remote cache set")
}

// Delete removes the given keys.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.execute(ctx, func(ctx context.Context) (any, error) {
		return nil, s.client.Del(ctx, keys...).Err()
	})
	return errors.Wrap(err, "remote cache delete")
}

// Keys returns every key matching the glob pattern using SCAN, never KEYS,
// so large keyspaces do not block the server.
func (s *Store) Keys(ctx context.Context, pattern string) ([]string, error) {
	res, err := s.execute(ctx, func(ctx context.Context) (any, error) {
		var keys []string
		var cursor uint64
		for {
			batch, next, err := s.client.Scan(ctx, cursor, pattern, s.cfg.ScanCount).Result()
			if err != nil {
				return nil, err
			}
			keys = append(keys, batch...)
			if next == 0 {
				return keys, nil
			}
			cursor = next
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "remote cache scan")
	}
	return res.([]string), nil
}

// DeleteByPattern removes every key starting with prefix and returns the
// number removed.
func (s *Store) DeleteByPattern(ctx context.Context, prefix string) (int, error) {
	keys, err := s.Keys(ctx, globEscape(prefix)+"*")
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := s.Delete(ctx, keys...); err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Incr increments the counter at key, stamping a TTL on first increment so
// stale day buckets age out.
func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	res, err := s.execute(ctx, func(ctx context.Context) (any, error) {
		n, err := s.client.Incr(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		if n == 1 {
			if err := s.client.Expire(ctx, key, s.cfg.CounterTTL).Err(); err != nil {
				s.log.Debug("counter expire failed", zap.String("key", key), zap.Error(err))
			}
		}
		return n, nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "remote cache incr")
	}
	return res.(int64), nil
}

// Count reads the counter at key, zero when absent.
func (s *Store) Count(ctx context.Context, key string) (int64, error) {
	res, err := s.execute(ctx, func(ctx context.Context) (any, error) {
		n, err := s.client.Get(ctx, key).Int64()
		if errors.Is(err, redis.Nil) {
			return int64(0), nil
		}
		if err != nil {
			return nil, err
		}
		return n, nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "remote cache count")
	}
	return res.(int64), nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

// globEscape escapes glob metacharacters in a literal prefix before it is
// embedded in a SCAN MATCH pattern. Normalized key segments never contain
// these, but admin-supplied patterns can.
func globEscape(s string) string {
	r := strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`, `\`, `\\`)
	return r.Replace(s)
}
