package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

var errRemoteDown = errors.New("remote tier down")

// fakeRemote is an in-memory RemoteStore for tests, with switches to
// simulate a failing tier and recording of the calls it saw.
type fakeRemote struct {
	mu       sync.Mutex
	data     map[string][]byte
	counters map[string]int64

	failAll      bool
	failPatterns map[string]bool

	getCalls        int
	setCalls        int
	deletedPatterns []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		data:         make(map[string][]byte),
		counters:     make(map[string]int64),
		failPatterns: make(map[string]bool),
	}
}

func (f *fakeRemote) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.failAll {
		return nil, false, errRemoteDown
	}
	data, ok := f.data[key]
	return data, ok, nil
}

func (f *fakeRemote) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls++
	if f.failAll {
		return errRemoteDown
	}
	f.data[key] = value
	return nil
}

func (f *fakeRemote) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errRemoteDown
	}
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeRemote) Keys(ctx context.Context, pattern string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errRemoteDown
	}
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for key := range f.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (f *fakeRemote) DeleteByPattern(ctx context.Context, prefix string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedPatterns = append(f.deletedPatterns, prefix)
	if f.failAll || f.failPatterns[prefix] {
		return 0, errRemoteDown
	}
	n := 0
	for key := range f.data {
		if strings.HasPrefix(key, prefix) {
			delete(f.data, key)
			n++
		}
	}
	return n, nil
}

func (f *fakeRemote) Incr(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return 0, errRemoteDown
	}
	f.counters[key]++
	return f.counters[key], nil
}

func (f *fakeRemote) Count(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return 0, errRemoteDown
	}
	return f.counters[key], nil
}

func (f *fakeRemote) patterns() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletedPatterns...)
}
