package di

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/smccd/siteindex-cache/cache"
	"github.com/smccd/siteindex-cache/directory"
)

// memRemote is an in-memory cache.RemoteStore for container tests.
type memRemote struct {
	mu       sync.Mutex
	data     map[string][]byte
	counters map[string]int64
}

func newMemRemote() *memRemote {
	return &memRemote{data: make(map[string][]byte), counters: make(map[string]int64)}
}

func (m *memRemote) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	return data, ok, nil
}

func (m *memRemote) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memRemote) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memRemote) Keys(ctx context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (m *memRemote) DeleteByPattern(ctx context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			delete(m.data, key)
			n++
		}
	}
	return n, nil
}

func (m *memRemote) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key]++
	return m.counters[key], nil
}

func (m *memRemote) Count(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[key], nil
}

// staticRepo serves a fixed row set; writes are unsupported.
type staticRepo struct {
	rows []directory.SiteLink
}

func (r *staticRepo) FindMany(ctx context.Context, filter directory.ListFilter) ([]directory.SiteLink, error) {
	return r.rows, nil
}

func (r *staticRepo) Count(ctx context.Context, filter directory.ListFilter) (int, error) {
	return len(r.rows), nil
}

func (r *staticRepo) FindByID(ctx context.Context, id string) (*directory.SiteLink, error) {
	return nil, directory.ErrNotFound
}

func (r *staticRepo) Create(ctx context.Context, link *directory.SiteLink) (*directory.SiteLink, error) {
	return link, nil
}

func (r *staticRepo) Update(ctx context.Context, id string, fields directory.UpdateFields) (*directory.SiteLink, error) {
	return nil, directory.ErrNotFound
}

func (r *staticRepo) Delete(ctx context.Context, id string) (*directory.SiteLink, error) {
	return nil, directory.ErrNotFound
}

func TestNewContainerWithRemote(t *testing.T) {
	c, err := NewContainerWithRemote(cache.DefaultConfig(), newMemRemote(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	if c.ReadThrough() == nil || c.MemoryTier() == nil || c.KeyBuilder() == nil ||
		c.FanOut() == nil || c.StatsTracker() == nil || c.RemoteCache() == nil {
		t.Fatal("container left components unwired")
	}
	if c.Config().Namespace != "siteindex" {
		t.Errorf("Namespace = %q, want siteindex", c.Config().Namespace)
	}
}

func TestNewContainer_RejectsInvalidConfig(t *testing.T) {
	cfg := cache.DefaultConfig()
	cfg.MemoryCapacity = 0
	if _, err := NewContainerWithRemote(cfg, newMemRemote(), nil); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestNewContainer_EmptyAddrRunsMemoryOnly(t *testing.T) {
	c, err := NewContainer(cache.DefaultConfig(), cache.RemoteConfig{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	if _, ok := c.RemoteCache().(*cache.NoopRemoteCache); !ok {
		t.Errorf("remote = %T, want NoopRemoteCache", c.RemoteCache())
	}
}

func TestContainer_DirectoryServiceEndToEnd(t *testing.T) {
	c, err := NewContainerWithRemote(cache.DefaultConfig(), newMemRemote(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	svc := c.DirectoryService(&staticRepo{rows: []directory.SiteLink{
		{ID: "1", Title: "Library", Campus: "CSM", Letter: "L"},
	}})
	ctx := context.Background()

	first, err := svc.ListItems(ctx, directory.ListFilter{Campus: "CSM"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.ListItems(ctx, directory.ListFilter{Campus: "CSM"})
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit || !second.CacheHit {
		t.Errorf("hits = %v then %v, want miss then hit", first.CacheHit, second.CacheHit)
	}
}

func TestContainer_SweepLifecycle(t *testing.T) {
	cfg := cache.DefaultConfig()
	cfg.SweepInterval = 10 * time.Millisecond
	c, err := NewContainerWithRemote(cfg, newMemRemote(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	// Closing twice must be safe.
	if err := c.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
