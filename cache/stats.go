package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Counter is the slice of the remote store the stats tracker needs:
// atomic increments and counter reads.
type Counter interface {
	// Incr increments the integer counter at key, returning the new value.
	Incr(ctx context.Context, key string) (int64, error)
	// Count reads the counter at key, zero when absent.
	Count(ctx context.Context, key string) (int64, error)
}

// Stats summarizes cache effectiveness for the admin dashboard.
type Stats struct {
	HitRate        float64 `json:"hitRate"`
	TotalRequests  int64   `json:"totalRequests"`
	CachedRequests int64   `json:"cachedRequests"`
}

// StatsTracker keeps per-day hit/miss counters in the remote store so
// every instance contributes to the same numbers. It is purely
// observational: recording failures are swallowed and logged, and never
// affect request correctness.
type StatsTracker struct {
	counter Counter
	prefix  string
	log     *zap.Logger

	// now is swappable so tests can pin the day bucket.
	now func() time.Time
}

// NewStatsTracker creates a tracker writing counters under prefix, which
// must live outside the listing-key namespace so pattern invalidation and
// key counts never touch it.
func NewStatsTracker(counter Counter, prefix string, log *zap.Logger) *StatsTracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &StatsTracker{
		counter: counter,
		prefix:  prefix,
		log:     log,
		now:     time.Now,
	}
}

// RecordHit increments today's hit counter.
func (t *StatsTracker) RecordHit(ctx context.Context) {
	t.record(ctx, t.hitKey())
}

// RecordMiss increments today's miss counter.
func (t *StatsTracker) RecordMiss(ctx context.Context) {
	t.record(ctx, t.missKey())
}

func (t *StatsTracker) record(ctx context.Context, key string) {
	if _, err := t.counter.Incr(ctx, key); err != nil {
		t.log.Debug("cache stats increment failed", zap.String("key", key), zap.Error(err))
	}
}

// Stats reads today's counters and computes the hit rate, zero when no
// requests have been recorded yet.
func (t *StatsTracker) Stats(ctx context.Context) (Stats, error) {
	hits, err := t.counter.Count(ctx, t.hitKey())
	if err != nil {
		return Stats{}, err
	}
	misses, err := t.counter.Count(ctx, t.missKey())
	if err != nil {
		return Stats{}, err
	}

	total := hits + misses
	var rate float64
	if total > 0 {
		rate = float64(hits) / float64(total)
	}
	return Stats{
		HitRate:        rate,
		TotalRequests:  total,
		CachedRequests: hits,
	}, nil
}

func (t *StatsTracker) hitKey() string {
	return t.prefix + ":hit:" + t.day()
}

func (t *StatsTracker) missKey() string {
	return t.prefix + ":miss:" + t.day()
}

func (t *StatsTracker) day() string {
	return t.now().UTC().Format("2006-01-02")
}
