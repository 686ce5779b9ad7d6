// Package cache keeps short-lived results in memory.
package cache

import (
	"sync"
	"time"

	"github.com/JakeFAU/regwatch/internal/clock/system"
	"github.com/JakeFAU/regwatch/internal/crawler"
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// TTL is a keyed in-memory cache whose entries expire after a fixed age.
// Expired entries are dropped lazily on read.
type TTL[V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	clock   crawler.Clock
	entries map[string]entry[V]
}

// New creates a TTL cache. A nil clock uses the wall clock.
func New[V any](ttl time.Duration, clock crawler.Clock) *TTL[V] {
	if clock == nil {
		clock = system.New()
	}
	return &TTL[V]{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]entry[V]),
	}
}

// Get returns the value for key and when it was stored. ok is false when the
// key is missing or older than the TTL.
func (c *TTL[V]) Get(key string) (value V, storedAt time.Time, ok bool) {
	c.mu.RLock()
	e, found := c.entries[key]
	c.mu.RUnlock()
	if !found {
		return value, time.Time{}, false
	}
	if c.clock.Now().Sub(e.storedAt) >= c.ttl {
		c.mu.Lock()
		if cur, still := c.entries[key]; still && cur.storedAt.Equal(e.storedAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return value, time.Time{}, false
	}
	return e.value, e.storedAt, true
}

// Set stores value under key, stamped with the current time.
func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, storedAt: c.clock.Now()}
}

// Delete removes key.
func (c *TTL[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len reports the number of stored entries, expired or not.
func (c *TTL[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
