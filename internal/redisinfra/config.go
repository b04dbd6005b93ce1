package redisinfra

import (
	"os"
	"strconv"
	"time"
)

// Config holds the settings for the Redis remote-tier adapter.
type Config struct {
	// Addr is the Redis host:port. Empty means no remote tier is
	// configured; callers should fall back to a no-op remote cache.
	Addr     string
	Password string
	DB       int

	PoolSize     int
	MinIdleConns int

	// CallTimeout bounds every individual Redis operation so a degraded
	// remote tier cannot stall the request path.
	CallTimeout time.Duration

	// ScanCount is the COUNT hint used for SCAN-based pattern operations.
	ScanCount int64

	// CounterTTL bounds the lifetime of stats counters so per-day buckets
	// age out on their own.
	CounterTTL time.Duration

	Breaker BreakerConfig
}

// BreakerConfig tunes the circuit breaker guarding Redis calls. After the
// failure threshold is crossed the breaker opens and calls fail fast for
// the cool-down, letting reads fall through to the origin immediately.
type BreakerConfig struct {
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval before the closed-state counters reset.
	Interval time.Duration
	// Timeout is the cool-down before an open breaker goes half-open.
	Timeout time.Duration
	// MinRequests before the failure ratio is evaluated at all.
	MinRequests uint32
	// FailureThreshold is the failure ratio that trips the breaker.
	FailureThreshold float64
}

// DefaultConfig returns settings suitable for a same-region Redis.
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		CallTimeout:  250 * time.Millisecond,
		ScanCount:    200,
		CounterTTL:   48 * time.Hour,
		Breaker: BreakerConfig{
			MaxRequests:      3,
			Interval:         30 * time.Second,
			Timeout:          15 * time.Second,
			MinRequests:      5,
			FailureThreshold: 0.6,
		},
	}
}

// FromEnv loads config from SITEINDEX_REDIS_* environment variables,
// starting from the defaults.
func FromEnv() Config {
	cfg := DefaultConfig()

	cfg.Addr = os.Getenv("SITEINDEX_REDIS_ADDR")
	if password := os.Getenv("SITEINDEX_REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if db := os.Getenv("SITEINDEX_REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			cfg.DB = n
		}
	}

	return cfg
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.CallTimeout <= 0 {
		return &ConfigError{Field: "CallTimeout", Message: "must be greater than 0"}
	}
	if c.ScanCount <= 0 {
		return &ConfigError{Field: "ScanCount", Message: "must be greater than 0"}
	}
	if c.CounterTTL <= 0 {
		return &ConfigError{Field: "CounterTTL", Message: "must be greater than 0"}
	}
	if c.Breaker.FailureThreshold <= 0 || c.Breaker.FailureThreshold > 1 {
		return &ConfigError{Field: "Breaker.FailureThreshold", Message: "must be in (0, 1]"}
	}
	if c.Breaker.MinRequests == 0 {
		return &ConfigError{Field: "Breaker.MinRequests", Message: "must be greater than 0"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
