// Package cache provides the TTL plus capacity bounded in-memory store
// backing search results and scraped documents.
package cache

import (
	"sync"
	"time"
)

// Cache is safe for concurrent use. Expiry is checked on read; capacity
// eviction removes the least-recently-admitted entries first.
type Cache[T any] struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	entries  map[string]*entry[T]
	order    []string // admission order, oldest first
}

type entry[T any] struct {
	value   T
	addedAt time.Time
}

// New returns a cache holding at most capacity entries, each live for
// ttl after admission. A non-positive capacity or ttl disables that
// bound.
func New[T any](capacity int, ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		ttl:      ttl,
		capacity: capacity,
		entries:  make(map[string]*entry[T]),
	}
}

// Get returns the value cached under key, or false on a miss or after
// TTL expiry. Expired entries are dropped as a side effect.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.ttl > 0 && time.Since(e.addedAt) > c.ttl {
		c.remove(key)
		return zero, false
	}
	return e.value, true
}

// Put stores value under key, evicting the oldest-admitted entries once
// the capacity is reached. Re-putting an existing key re-admits it.
func (c *Cache[T]) Put(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		c.remove(key)
	}
	for c.capacity > 0 && len(c.entries) >= c.capacity {
		c.remove(c.order[0])
	}
	c.entries[key] = &entry[T]{value: value, addedAt: time.Now()}
	c.order = append(c.order, key)
}

// Invalidate drops key if present.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(key)
}

// Len reports the number of entries currently admitted, expired or not.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// remove must be called with mu held.
func (c *Cache[T]) remove(key string) {
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
