package directory

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/smccd/siteindex-cache/cache"
)

// listPayload wraps the tuple result of a listing query for caching.
type listPayload struct {
	Rows  []SiteLink `msgpack:"rows"`
	Total int        `msgpack:"total"`
}

// CacheStatsReport is the admin dashboard's view of the cache.
type CacheStatsReport struct {
	TotalKeys      int     `json:"totalKeys"`
	HitRate        float64 `json:"hitRate"`
	TotalRequests  int64   `json:"totalRequests"`
	CachedRequests int64   `json:"cachedRequests"`
}

// Service is the cached directory surface exposed to the HTTP layer:
// the read-through listing path, write hooks that fan out invalidation,
// and the admin cache-management operations.
type Service struct {
	repo        Repository
	readThrough *cache.ReadThrough
	keys        *cache.KeyBuilder
	policy      cache.TTLPolicy
	fanout      *cache.FanOut
	stats       *cache.StatsTracker
	remote      cache.RemoteCache
	log         *zap.Logger

	// inflight counts invalidation fan-outs still running.
	inflight sync.WaitGroup
}

// NewService wires the caching core around a repository. A nil logger
// defaults to a no-op logger.
func NewService(
	repo Repository,
	readThrough *cache.ReadThrough,
	keys *cache.KeyBuilder,
	policy cache.TTLPolicy,
	fanout *cache.FanOut,
	stats *cache.StatsTracker,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:        repo,
		readThrough: readThrough,
		keys:        keys,
		policy:      policy,
		fanout:      fanout,
		stats:       stats,
		remote:      readThrough.Remote(),
		log:         log,
	}
}

// ListItems serves a listing query through the cache tiers. Search terms
// below the policy minimum bypass the cache entirely so incidental
// keystrokes never pollute the key space. Repository errors propagate
// unchanged; cache-tier trouble only shows up as CacheHit=false.
func (s *Service) ListItems(ctx context.Context, filter ListFilter) (*ListResult, error) {
	start := time.Now()
	f := cache.Filter{Campus: filter.Campus, Letter: filter.Letter, Search: filter.Search}

	if cacheBypassFromContext(ctx) || !s.policy.Cacheable(f) {
		payload, err := s.fetchOrigin(ctx, filter)
		if err != nil {
			return nil, err
		}
		// Origin-served traffic still counts toward the dashboard's
		// request totals.
		s.stats.RecordMiss(ctx)
		return &ListResult{
			Rows:     payload.Rows,
			Total:    payload.Total,
			CacheHit: false,
			TimingMs: time.Since(start).Milliseconds(),
		}, nil
	}

	key := s.keys.BuildKey(f)
	priority := s.policy.Classify(f)

	payload, hit, err := cache.GetOrCompute(ctx, s.readThrough, key, priority,
		func(ctx context.Context) (listPayload, error) {
			return s.fetchOrigin(ctx, filter)
		})
	if err != nil {
		return nil, err
	}

	if hit {
		s.stats.RecordHit(ctx)
	} else {
		s.stats.RecordMiss(ctx)
	}

	return &ListResult{
		Rows:     payload.Rows,
		Total:    payload.Total,
		CacheHit: hit,
		TimingMs: time.Since(start).Milliseconds(),
	}, nil
}

func (s *Service) fetchOrigin(ctx context.Context, filter ListFilter) (listPayload, error) {
	rows, err := s.repo.FindMany(ctx, filter)
	if err != nil {
		return listPayload{}, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return listPayload{}, err
	}
	return listPayload{Rows: rows, Total: total}, nil
}

// OnItemWritten fans out cache invalidation after a committed write.
// oldRow is nil for creates, newRow is nil for deletes; for updates that
// moved a row, both the old and the new (campus, letter) families are
// invalidated. The fan-out runs off the caller's response path; the
// returned channel closes when it finishes, for observability and tests.
func (s *Service) OnItemWritten(ctx context.Context, oldRow, newRow *SiteLink) <-chan struct{} {
	done := make(chan struct{})

	var old cache.Scope
	var updated *cache.Scope
	switch {
	case oldRow != nil:
		old = cache.Scope{Campus: oldRow.Campus, Letter: oldRow.Letter}
		if newRow != nil {
			updated = &cache.Scope{Campus: newRow.Campus, Letter: newRow.Letter}
		}
	case newRow != nil:
		old = cache.Scope{Campus: newRow.Campus, Letter: newRow.Letter}
	default:
		close(done)
		return done
	}

	// Detach from the request context: invalidation must outlive the
	// response it was triggered by.
	invCtx := context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer close(done)
		s.fanout.Invalidate(invCtx, old, updated)
	}()
	return done
}

// CreateItem inserts a row and invalidates the affected key families.
func (s *Service) CreateItem(ctx context.Context, link *SiteLink) (*SiteLink, error) {
	created, err := s.repo.Create(ctx, link)
	if err != nil {
		return nil, err
	}
	s.OnItemWritten(ctx, nil, created)
	return created, nil
}

// UpdateItem applies a partial update and invalidates both the old and,
// when the row moved, the new key families.
func (s *Service) UpdateItem(ctx context.Context, id string, fields UpdateFields) (*SiteLink, error) {
	old, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	s.OnItemWritten(ctx, old, updated)
	return updated, nil
}

// DeleteItem removes a row and invalidates its key families.
func (s *Service) DeleteItem(ctx context.Context, id string) (*SiteLink, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.OnItemWritten(ctx, deleted, nil)
	return deleted, nil
}

// CacheStats reports the remote keyspace size and today's hit/miss
// counters for the admin dashboard.
func (s *Service) CacheStats(ctx context.Context) (*CacheStatsReport, error) {
	keys, err := s.remote.Keys(ctx, s.keys.Namespace()+cache.KeySeparator+"*")
	if err != nil {
		return nil, err
	}
	stats, err := s.stats.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &CacheStatsReport{
		TotalKeys:      len(keys),
		HitRate:        stats.HitRate,
		TotalRequests:  stats.TotalRequests,
		CachedRequests: stats.CachedRequests,
	}, nil
}

// InvalidateByPattern deletes a key-prefix family on behalf of the admin
// cache-management UI and returns how many remote keys were removed. The
// pattern must stay inside the listing namespace.
func (s *Service) InvalidateByPattern(ctx context.Context, pattern string) (int, error) {
	ns := s.keys.Namespace() + cache.KeySeparator
	if !strings.HasPrefix(pattern, ns) {
		return 0, errInvalidPattern(pattern, ns)
	}

	prefix := strings.TrimSuffix(pattern, "*")
	s.readThrough.Memory().DeleteByPrefix(prefix)
	n, err := s.remote.DeleteByPattern(ctx, prefix)
	if err != nil {
		return 0, err
	}
	s.log.Info("cache pattern invalidated",
		zap.String("pattern", pattern), zap.Int("removed", n))
	return n, nil
}
