// Package cache provides caches for fallback translations.
package cache

import (
	"context"
	"fmt"

	"github.com/at-ishikawa/wordsync/internal/config"
)

// DefaultKeyPrefix prefixes every key written to Redis.
const DefaultKeyPrefix = "wordsync:fallback:"

// TranslationCache stores translated texts by key.
type TranslationCache interface {
	// Get returns the cached value. A missing, expired or unreadable entry is a miss.
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string) error
}

// New returns a Redis cache when a Redis URL is configured, an in-memory cache otherwise.
func New(ctx context.Context, cfg config.FallbackCacheConfig) (TranslationCache, error) {
	if cfg.RedisURL == "" {
		return NewInMemoryCache(cfg.TTLSeconds), nil
	}
	c, err := NewRedisCache(ctx, cfg.RedisURL, cfg.TTLSeconds, DefaultKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("create redis cache: %w", err)
	}
	return c, nil
}
