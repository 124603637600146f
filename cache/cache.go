// Package cache is the in-process read cache shared by the catalog and
// category repositories.
package cache

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto"
)

const (
	defaultNumCounters = 1e5
	defaultMaxCost     = 1 << 14
	defaultBufferItems = 64
)

type Config struct {
	// MaxItems bounds the number of cached values. Every value costs 1.
	MaxItems int64
	TTL      time.Duration
}

// Cache wraps ristretto with a default TTL and a generation counter. Keys
// built with Versioned go stale together when Bump is called, which is how
// list results are dropped without tracking every key. A nil *Cache caches
// nothing.
type Cache struct {
	store      *ristretto.Cache
	ttl        time.Duration
	generation atomic.Uint64
}

func New(cfg Config) (*Cache, error) {
	maxCost := cfg.MaxItems
	if maxCost <= 0 {
		maxCost = defaultMaxCost
	}

	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: defaultNumCounters,
		MaxCost:     maxCost,
		BufferItems: defaultBufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	return &Cache{store: store, ttl: cfg.TTL}, nil
}

func (c *Cache) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	return c.store.Get(key)
}

// Set stores value with the default TTL. Writes are applied asynchronously
// and may be dropped under contention.
func (c *Cache) Set(key string, value any) bool {
	if c == nil {
		return false
	}
	return c.store.SetWithTTL(key, value, 1, c.ttl)
}

func (c *Cache) Delete(keys ...string) {
	if c == nil {
		return
	}
	for _, key := range keys {
		c.store.Del(key)
	}
}

// Versioned prefixes key with the current generation.
func (c *Cache) Versioned(key string) string {
	if c == nil {
		return key
	}
	return fmt.Sprintf("v%d:%s", c.generation.Load(), key)
}

// Bump invalidates every Versioned key.
func (c *Cache) Bump() {
	if c == nil {
		return
	}
	c.generation.Add(1)
}

// Wait blocks until pending writes are visible.
func (c *Cache) Wait() {
	if c == nil {
		return
	}
	c.store.Wait()
}

func (c *Cache) Close() {
	if c == nil {
		return
	}
	c.store.Close()
}

// Get is a typed lookup; a value of another type counts as a miss.
func Get[T any](c *Cache, key string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}

	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	out, ok := v.(T)
	return out, ok
}
