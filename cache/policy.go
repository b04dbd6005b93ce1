package cache

import (
	"strings"
	"time"
)

// Priority classifies a query by expected popularity and reuse. It selects
// which TTL tier a cached result gets.
type Priority string

const (
	// PriorityHot covers the unfiltered listing and per-campus listings:
	// few distinct keys, requested constantly.
	PriorityHot Priority = "hot"
	// PriorityWarm is the default tier for letter-filtered listings.
	PriorityWarm Priority = "warm"
	// PriorityCold covers search-term queries: numerous and rarely reused.
	PriorityCold Priority = "cold"
)

// TTLPair holds the time-to-live for each tier of the cache.
type TTLPair struct {
	Memory time.Duration
	Remote time.Duration
}

// TTLPolicy decides whether a query is cacheable at all, which priority
// tier it belongs to, and which TTLs that tier carries.
type TTLPolicy struct {
	// MinSearchLength is the shortest search term that may be cached.
	// Shorter terms are served straight from the origin so that incidental
	// keystrokes cannot grow the key space without bound.
	MinSearchLength int

	Hot  TTLPair
	Warm TTLPair
	Cold TTLPair
}

// DefaultTTLPolicy returns the policy used in production: long TTLs for
// the handful of hot listing keys, short ones for search terms.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		MinSearchLength: 3,
		Hot:             TTLPair{Memory: 10 * time.Minute, Remote: time.Hour},
		Warm:            TTLPair{Memory: 5 * time.Minute, Remote: 10 * time.Minute},
		Cold:            TTLPair{Memory: time.Minute, Remote: 2 * time.Minute},
	}
}

// Classify maps a filter to its priority tier.
func (p TTLPolicy) Classify(f Filter) Priority {
	n := f.Normalize()
	switch {
	case n.Search != "":
		return PriorityCold
	case n.Letter == "":
		// Unfiltered or campus-only listing.
		return PriorityHot
	default:
		return PriorityWarm
	}
}

// Cacheable reports whether results for the filter may be stored in any
// tier. Search terms below MinSearchLength are never cached. The length
// check runs on the raw trimmed term, before any key encoding, so a
// short punctuation-only search can never slip through as an empty
// segment and overwrite the unfiltered listing's key.
func (p TTLPolicy) Cacheable(f Filter) bool {
	search := strings.TrimSpace(f.Search)
	if search == "" {
		return true
	}
	return len([]rune(search)) >= p.MinSearchLength
}

// TTLs returns the TTL pair for the given priority. Unknown priorities
// fall back to the warm tier.
func (p TTLPolicy) TTLs(priority Priority) TTLPair {
	switch priority {
	case PriorityHot:
		return p.Hot
	case PriorityCold:
		return p.Cold
	default:
		return p.Warm
	}
}
