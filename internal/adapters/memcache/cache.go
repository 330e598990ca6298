// Package memcache provides a bounded in-memory LRU cache.
package memcache

import (
	"slices"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.trai.ch/phi/internal/core/ports"
)

var _ ports.Cache[string, int] = (*Cache[string, int])(nil)

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache is a bounded LRU cache guarded by a single mutex.
// When an insert grows it past its bound, the oldest entries are evicted
// until a quarter of the capacity is free again.
type Cache[K comparable, V any] struct {
	mu    sync.Mutex
	max   int
	lru   *simplelru.LRU[K, V]
	stats Stats
}

// New creates a cache holding at most maxSize entries. Sizes below one are raised to one.
func New[K comparable, V any](maxSize int) *Cache[K, V] {
	if maxSize < 1 {
		maxSize = 1
	}
	// One spare slot: the overflow entry is trimmed in a batch by Put, never
	// evicted one at a time by the list itself. NewLRU only fails for sizes below one.
	lru, _ := simplelru.NewLRU[K, V](maxSize+1, nil)
	return &Cache[K, V]{max: maxSize, lru: lru}
}

// Get returns the value for key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.lru.Get(key)
	if !ok {
		c.stats.Misses++
		return v, false
	}
	c.stats.Hits++
	return v, true
}

// Put inserts or replaces the value for key.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Add(key, value)
	if c.lru.Len() > c.max {
		c.evict(c.max - c.max/4)
	}
}

// Remove deletes key if present.
func (c *Cache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(key)
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Keys returns the keys from most to least recently used.
func (c *Cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := c.lru.Keys()
	slices.Reverse(keys)
	return keys
}

// Stats returns a snapshot of the counters.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Cache[K, V]) evict(target int) {
	for c.lru.Len() > target {
		if _, _, ok := c.lru.RemoveOldest(); !ok {
			return
		}
		c.stats.Evictions++
	}
}
