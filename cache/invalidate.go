package cache

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Scope identifies the key families a row belongs to.
type Scope struct {
	Campus string
	Letter string
}

func (s Scope) normalized() Scope {
	return Scope{Campus: NormalizeSegment(s.Campus), Letter: NormalizeSegment(s.Letter)}
}

// FanOut deletes every cache-key family that could contain an affected
// row after a write. Deletes run in parallel against the remote tier and
// synchronously against the local memory tier; an individual failure is
// logged and does not abort the remaining patterns. Callers invoke it
// only after the origin mutation has committed, and keep it off the
// response's critical path.
type FanOut struct {
	keys   *KeyBuilder
	memory *MemoryTier
	remote RemoteCache
	log    *zap.Logger
}

// NewFanOut builds a FanOut over the given tiers. A nil logger defaults
// to a no-op logger.
func NewFanOut(keys *KeyBuilder, memory *MemoryTier, remote RemoteCache, log *zap.Logger) *FanOut {
	if log == nil {
		log = zap.NewNop()
	}
	return &FanOut{keys: keys, memory: memory, remote: remote, log: log}
}

// Invalidate removes the key families for old and, when it differs, for
// updated (the update case where a row moved campus or letter). The
// combined pattern set is deduplicated before issuing deletes.
func (f *FanOut) Invalidate(ctx context.Context, old Scope, updated *Scope) {
	patterns := f.keys.InvalidationPatterns(old.Campus, old.Letter)
	if updated != nil && updated.normalized() != old.normalized() {
		patterns = append(patterns, f.keys.InvalidationPatterns(updated.Campus, updated.Letter)...)
	}
	patterns = dedupeStrings(patterns)

	var wg sync.WaitGroup
	for _, pattern := range patterns {
		f.memory.DeleteByPrefix(pattern)

		wg.Add(1)
		go func(pattern string) {
			defer wg.Done()
			if _, err := f.remote.DeleteByPattern(ctx, pattern); err != nil {
				f.log.Warn("cache invalidation pattern failed",
					zap.String("pattern", pattern), zap.Error(err))
			}
		}(pattern)
	}
	wg.Wait()
}
