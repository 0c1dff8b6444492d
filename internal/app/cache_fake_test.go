package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// fakeCache is an in-memory StatsCache that round-trips values through JSON
// like the Redis implementation does.
type fakeCache struct {
	mu      sync.Mutex
	gen     int64
	entries map[string][]byte
	hits    int
	misses  int
	fail    bool
	// failInvalidate makes only Invalidate fail.
	failInvalidate bool
}

var errCacheDown = errors.New("cache down")

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) key(gen int64, key string) string {
	b, _ := json.Marshal([]any{gen, key})
	return string(b)
}

func (c *fakeCache) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return 0, errCacheDown
	}
	return c.gen, nil
}

func (c *fakeCache) Get(_ context.Context, gen int64, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return false, errCacheDown
	}
	data, ok := c.entries[c.key(gen, key)]
	if !ok {
		c.misses++
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(data, dst)
}

func (c *fakeCache) Set(_ context.Context, gen int64, key string, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errCacheDown
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.entries[c.key(gen, key)] = data
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail || c.failInvalidate {
		return errCacheDown
	}
	c.gen++
	return nil
}

func (c *fakeCache) Close() error { return nil }
