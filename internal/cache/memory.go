package cache

import (
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	value     string
	timestamp time.Time
}

// InMemoryCache is a thread-safe in-memory cache with TTL support.
type InMemoryCache struct {
	mu    sync.RWMutex
	cache map[string]cacheEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewInMemoryCache creates a cache whose entries expire after ttlSeconds.
// If ttlSeconds is 0 or negative, entries never expire.
func NewInMemoryCache(ttlSeconds int) *InMemoryCache {
	var ttl time.Duration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	return &InMemoryCache{
		cache: make(map[string]cacheEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *InMemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}

	if c.ttl > 0 && c.now().Sub(entry.timestamp) > c.ttl {
		c.mu.Lock()
		delete(c.cache, key)
		c.mu.Unlock()
		return "", false
	}
	return entry.value, true
}

func (c *InMemoryCache) Set(_ context.Context, key string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[key] = cacheEntry{
		value:     value,
		timestamp: c.now(),
	}
	return nil
}

// Len returns the number of entries, including expired ones not read since they expired.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

var _ TranslationCache = (*InMemoryCache)(nil)
