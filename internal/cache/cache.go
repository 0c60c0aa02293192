// Package cache provides the process-wide session cache holding transient
// pipeline artifacts (chunk sets, index handles) keyed per user.
//
// The cache is advisory: entries expire, and callers must treat a miss the
// same as "never computed" and recover from persisted state. It is
// constructed once at startup and passed to each component as an explicit
// dependency, never accessed as a hidden global.
package cache

import (
	"strings"
	"sync"
	"time"
)

// Cache key prefixes; full keys are namespaced "{purpose}_{userId}".
const (
	SplitsPrefix    = "splits_"
	RetrieverPrefix = "retriever_"
)

// SplitsKey returns the chunk-set cache key for a user.
func SplitsKey(userID string) string { return SplitsPrefix + userID }

// RetrieverKey returns the index-handle cache key for a user.
func RetrieverKey(userID string) string { return RetrieverPrefix + userID }

type entry struct {
	value     any
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Cache is a concurrency-safe key-value store with per-entry expiry.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Set stores value under key for ttl. A non-positive ttl stores the entry
// without expiry.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	var expires time.Time
	if ttl > 0 {
		expires = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: expires}
	c.mu.Unlock()
}

// Get returns the value for key, or false if absent or expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if e.expired(c.now()) {
		// Re-check under the write lock: a concurrent Set may have
		// installed a fresh entry that must not be evicted.
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur.expired(c.now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Delete removes key. Deleting an absent key is a no-op.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// DeleteUser removes every entry namespaced to the given user.
func (c *Cache) DeleteUser(userID string) {
	suffix := "_" + userID
	c.mu.Lock()
	for k := range c.entries {
		if strings.HasSuffix(k, suffix) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// Len reports the number of live (unexpired) entries.
func (c *Cache) Len() int {
	now := c.now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.entries {
		if !e.expired(now) {
			n++
		}
	}
	return n
}
