// Package interpret implements the interpretation pipeline: a
// content-addressed cache, the chat-completions client, the generation
// service that glues them together, and the async job manager consumed by
// the loading step.
package interpret

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
)

const (
	// DefaultCacheTTL is the shared expiry applied to every cache entry.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultCacheCapacity bounds the number of cached interpretations.
	// When full, the oldest entry is evicted.
	DefaultCacheCapacity = 500
)

// CacheKey returns the content address for a prompt: the hex SHA-256 of its
// exact text. Two sessions producing byte-identical prompts share an entry.
func CacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// cacheEntry pairs a cached interpretation with its insertion time.
type cacheEntry struct {
	value      string
	insertedAt time.Time
}

// Cache is a bounded in-memory memoization table keyed by prompt digest.
// All entries share one TTL; Set resets the expiry for its key. Safe for
// concurrent use. Writes for the same key are idempotent (same prompt, same
// interpretation), so last-writer-wins is fine.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry

	ttl      time.Duration
	capacity int
}

// NewCache creates a Cache with the given TTL and capacity. Zero values
// fall back to the defaults.
func NewCache(ttl time.Duration, capacity int) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}

	return &Cache{
		entries:  make(map[string]cacheEntry),
		ttl:      ttl,
		capacity: capacity,
	}
}

// Get returns the cached interpretation for the given key, or None when the
// key is absent or its entry has expired.
func (c *Cache) Get(key string) fn.Option[string] {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return fn.None[string]()
	}
	if time.Since(entry.insertedAt) > c.ttl {
		delete(c.entries, key)
		return fn.None[string]()
	}

	return fn.Some(entry.value)
}

// Set stores an interpretation under the given key, resetting its expiry.
// When the cache is full, the oldest entry is evicted first.
func (c *Cache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}

	c.entries[key] = cacheEntry{
		value:      value,
		insertedAt: time.Now(),
	}
}

// Len returns the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// evictOldestLocked removes the entry with the earliest insertion time. The
// caller must hold c.mu.
func (c *Cache) evictOldestLocked() {
	var (
		oldestKey string
		oldestAt  time.Time
	)
	for key, entry := range c.entries {
		if oldestKey == "" || entry.insertedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.insertedAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
