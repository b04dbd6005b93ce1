// Package directory exposes the cached Site Index surface consumed by the
// HTTP layer: read-through listings, write hooks that fan out cache
// invalidation, and the admin cache-management operations.
//
// # Overview
//
// Service wraps a Repository (the system-of-record) with the caching core
// from the cache package:
//
//   - ListItems: memory -> remote -> repository, with TTL tiering by
//     query popularity and the short-search exclusion rule
//   - CreateItem / UpdateItem / DeleteItem: delegate to the repository,
//     then invalidate every key family the row could appear in
//   - OnItemWritten: the invalidation hook itself, usable directly by
//     callers that perform their own mutations
//   - CacheStats / InvalidateByPattern: the admin dashboard surface
//
// # Read vs Write Path
//
// Reads are cached; writes pass through to the repository and trigger
// fire-and-forget invalidation after the mutation commits. A cache entry
// may briefly remain stale between commit and invalidation completing;
// this window is accepted and bounded by the TTL tiers.
//
// For a repository implementation backed by bun/SQLite, see the bunstore
// subpackage.
package directory
