package cache

import (
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     any
	expiresAt time.Time
	hitCount  uint64
}

// MemoryTier is the process-local tier of the cache: a bounded map from
// cache key to value with lazy expiry. When full, Set evicts the single
// entry with the lowest hit count, so frequently read entries survive
// memory pressure. Lost on restart, never shared across instances.
//
// All operations are in-process map manipulation under a mutex; none of
// them perform I/O or return errors.
type MemoryTier struct {
	mu       sync.Mutex
	entries  map[string]*memoryEntry
	capacity int

	// now is swappable for expiry tests.
	now func() time.Time
}

// NewMemoryTier creates a tier bounded to capacity entries. The capacity
// should be sized to the (campus x letter) key cardinality plus headroom
// for cacheable search terms.
func NewMemoryTier(capacity int) *MemoryTier {
	if capacity < 1 {
		capacity = 1
	}
	return &MemoryTier{
		entries:  make(map[string]*memoryEntry, capacity),
		capacity: capacity,
		now:      time.Now,
	}
}

// Get returns the value for key if present and unexpired, incrementing its
// hit count. Expired entries are removed on the spot.
func (m *MemoryTier) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	e.hitCount++
	return e.value, true
}

// Set stores value under key with the given TTL. Overwriting an existing
// key resets its hit count. At capacity, the entry with the lowest hit
// count is evicted first (ties broken arbitrarily).
func (m *MemoryTier) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.capacity {
		m.evictLeastHit()
	}
	m.entries[key] = &memoryEntry{
		value:     value,
		expiresAt: m.now().Add(ttl),
	}
}

// evictLeastHit removes the entry with the lowest hit count. Callers must
// hold the mutex.
func (m *MemoryTier) evictLeastHit() {
	var victim string
	var victimHits uint64
	first := true
	for key, e := range m.entries {
		if first || e.hitCount < victimHits {
			victim = key
			victimHits = e.hitCount
			first = false
		}
	}
	if !first {
		delete(m.entries, victim)
	}
}

// Delete removes key if present.
func (m *MemoryTier) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// DeleteByPrefix removes every entry whose key starts with prefix and
// returns the number removed.
func (m *MemoryTier) DeleteByPrefix(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
			n++
		}
	}
	return n
}

// Clear drops every entry.
func (m *MemoryTier) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*memoryEntry, m.capacity)
}

// Len returns the current number of entries, expired or not.
func (m *MemoryTier) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// StartSweep launches a background goroutine that periodically removes
// expired entries, bounding growth from entries that are set but never
// read again. Expiry is otherwise lazy, so the sweep is optional. The
// returned function stops the sweep.
func (m *MemoryTier) StartSweep(interval time.Duration) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sweep()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

func (m *MemoryTier) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for key, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, key)
		}
	}
}
