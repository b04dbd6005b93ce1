// Package cache implements the multi-level read-through cache behind the
// Site Index directory-listing API.
//
// # Overview
//
// The package composes a handful of small pieces:
//
//   - KeyBuilder: deterministic, namespaced cache keys and invalidation
//     prefix patterns built from listing filters
//   - TTLPolicy: hot/warm/cold TTL tiering by query popularity, plus the
//     short-search exclusion rule
//   - MemoryTier: bounded in-process tier with least-hit eviction
//   - RemoteCache: the shared key-value tier contract (Redis in
//     production, see internal/redisinfra)
//   - ReadThrough + GetOrCompute: memory -> remote -> origin lookup,
//     populating both tiers on miss
//   - FanOut: prefix-pattern invalidation issued after writes
//   - StatsTracker: per-day hit/miss counters for the admin dashboard
//
// # Basic Usage
//
//	memory := cache.NewMemoryTier(cfg.MemoryCapacity)
//	remote, err := cache.NewRemoteCache(cache.RemoteConfigFromEnv(), logger)
//	rt := cache.NewReadThrough(memory, remote, cfg.TTL, logger)
//
//	keys := cache.NewKeyBuilder(cfg.Namespace)
//	key := keys.BuildKey(cache.Filter{Campus: "CSM", Letter: "A"})
//
//	rows, hit, err := cache.GetOrCompute(ctx, rt, key, cache.PriorityWarm,
//		func(ctx context.Context) ([]Row, error) {
//			return repo.FindMany(ctx, filter)
//		})
//
// # Key Layout
//
// Keys always carry four colon-delimited segments:
//
//	<namespace>:<campus-or-empty>:<letter-or-empty>:<search-or-empty>
//
// Absent components are kept as explicit empty segments so that an
// invalidation prefix such as "siteindex:csm::" unambiguously addresses
// the campus-only family. This layout is a compatibility contract with
// the admin tooling that lists and deletes keys by pattern.
//
// # Error Handling
//
// The cache is an optimization, never a dependency. Remote-tier failures
// are logged and treated as misses; only origin errors propagate, and an
// origin error is never cached. See the ReadThrough and FanOut docs for
// the per-path behavior.
//
// # Consistency
//
// Invalidation is fire-and-forget and fills are not de-duplicated: two
// concurrent cold reads may both hit the origin and race to populate the
// cache with equivalent results. Staleness is accepted and bounded by the
// TTL tiers. If stronger guarantees are ever needed, a single-flight
// layer keyed by cache key would collapse concurrent fills without
// changing any contract here.
package cache
