package cache

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"github.com/smccd/siteindex-cache/internal/redisinfra"
)

// Config exposes the caching-core options for consumers of the cache
// package.
type Config struct {
	// Namespace roots every cache key, e.g. "siteindex".
	Namespace string

	// MemoryCapacity bounds the in-process tier. Sized to the
	// (campus x letter) cardinality plus headroom for search terms.
	MemoryCapacity int

	// SweepInterval enables the optional background expiry sweep of the
	// memory tier when greater than zero.
	SweepInterval time.Duration

	// StatsPrefix roots the hit/miss counters. Must not collide with the
	// listing-key namespace.
	StatsPrefix string

	TTL TTLPolicy
}

// DefaultConfig returns a Config populated with production defaults.
func DefaultConfig() Config {
	return Config{
		Namespace:      "siteindex",
		MemoryCapacity: 500,
		StatsPrefix:    "siteindex_stats",
		TTL:            DefaultTTLPolicy(),
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Namespace, validation.Required),
		validation.Field(&c.MemoryCapacity, validation.Required, validation.Min(1)),
		validation.Field(&c.StatsPrefix, validation.Required),
		validation.Field(&c.TTL, validation.By(validateTTLPolicy)),
	)
}

func validateTTLPolicy(value any) error {
	p, _ := value.(TTLPolicy)
	return validation.Errors{
		"MinSearchLength": validation.Validate(p.MinSearchLength, validation.Required, validation.Min(1)),
		"Hot":             validateTTLPair(p.Hot),
		"Warm":            validateTTLPair(p.Warm),
		"Cold":            validateTTLPair(p.Cold),
	}.Filter()
}

func validateTTLPair(p TTLPair) error {
	if p.Memory <= 0 || p.Remote <= 0 {
		return validation.NewError("validation_ttl_pair", "memory and remote TTLs must be greater than 0")
	}
	return nil
}

// RemoteConfig mirrors the internal Redis adapter configuration so
// consumers never import internal packages.
type RemoteConfig struct {
	Addr     string
	Password string
	DB       int

	PoolSize     int
	MinIdleConns int

	CallTimeout time.Duration
	ScanCount   int64
	CounterTTL  time.Duration

	Breaker RemoteBreakerConfig
}

// RemoteBreakerConfig mirrors the circuit-breaker settings guarding
// remote-tier calls.
type RemoteBreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	MinRequests      uint32
	FailureThreshold float64
}

// DefaultRemoteConfig returns Redis settings suitable for a same-region
// server.
func DefaultRemoteConfig() RemoteConfig {
	return convertFromInternal(redisinfra.DefaultConfig())
}

// RemoteConfigFromEnv loads Redis settings from SITEINDEX_REDIS_*
// environment variables. Addr stays empty when unset, which selects the
// no-op remote tier.
func RemoteConfigFromEnv() RemoteConfig {
	return convertFromInternal(redisinfra.FromEnv())
}

// Validate checks the remote-tier configuration values.
func (c RemoteConfig) Validate() error {
	return c.toInternal().Validate()
}

// NewRemoteCache constructs the Redis-backed remote tier, or the no-op
// tier when no address is configured. The returned store also implements
// Counter for stats tracking.
func NewRemoteCache(cfg RemoteConfig, log *zap.Logger) (RemoteStore, error) {
	if cfg.Addr == "" {
		return NewNoopRemoteCache(), nil
	}
	store, err := redisinfra.New(cfg.toInternal(), log)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func (c RemoteConfig) toInternal() redisinfra.Config {
	return redisinfra.Config{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
		CallTimeout:  c.CallTimeout,
		ScanCount:    c.ScanCount,
		CounterTTL:   c.CounterTTL,
		Breaker: redisinfra.BreakerConfig{
			MaxRequests:      c.Breaker.MaxRequests,
			Interval:         c.Breaker.Interval,
			Timeout:          c.Breaker.Timeout,
			MinRequests:      c.Breaker.MinRequests,
			FailureThreshold: c.Breaker.FailureThreshold,
		},
	}
}

func convertFromInternal(cfg redisinfra.Config) RemoteConfig {
	return RemoteConfig{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		CallTimeout:  cfg.CallTimeout,
		ScanCount:    cfg.ScanCount,
		CounterTTL:   cfg.CounterTTL,
		Breaker: RemoteBreakerConfig{
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         cfg.Breaker.Interval,
			Timeout:          cfg.Breaker.Timeout,
			MinRequests:      cfg.Breaker.MinRequests,
			FailureThreshold: cfg.Breaker.FailureThreshold,
		},
	}
}
