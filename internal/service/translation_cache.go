package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/medcase-assist-server/internal/domain"
)

// TranslationCache is the two-tier cache in front of the translation
// fallback chain. Tier 1 is a bounded in-memory LRU keyed by the exact
// (text, language) pair; tier 2 is an optional Redis cache shared
// across instances. A nil Redis client disables tier 2.
type TranslationCache struct {
	memory *lru.Cache[string, string]
	redis  *redis.Client

	redisTTL time.Duration

	logger *logrus.Logger

	statsMu sync.RWMutex
	stats   TranslationCacheStats
}

// TranslationCacheStats reports cache size and hit/miss counters since
// the last clear.
type TranslationCacheStats struct {
	Size         int       `json:"size"`
	MemoryHits   int64     `json:"memory_hits"`
	MemoryMisses int64     `json:"memory_misses"`
	RedisHits    int64     `json:"redis_hits"`
	RedisMisses  int64     `json:"redis_misses"`
	LastReset    time.Time `json:"last_reset"`
}

// NewTranslationCache creates a translation cache. memorySize bounds
// the tier-1 entry count; non-positive values use a default of 1000.
func NewTranslationCache(memorySize int, redisClient *redis.Client, redisTTL time.Duration, logger *logrus.Logger) (*TranslationCache, error) {
	if memorySize <= 0 {
		memorySize = 1000
	}
	if redisTTL == 0 {
		redisTTL = 24 * time.Hour
	}

	memory, err := lru.New[string, string](memorySize)
	if err != nil {
		return nil, fmt.Errorf("creating translation memory cache: %w", err)
	}

	return &TranslationCache{
		memory:   memory,
		redis:    redisClient,
		redisTTL: redisTTL,
		logger:   logger,
		stats:    TranslationCacheStats{LastReset: time.Now()},
	}, nil
}

// cacheKey builds the exact-match key for a (text, language) pair.
// Identical text requested in different languages never collides.
func cacheKey(text string, language domain.Language) string {
	return fmt.Sprintf("translation:%s::%s", language, text)
}

// Get looks up a cached translation, memory tier first. A Redis hit
// repopulates the memory tier.
func (c *TranslationCache) Get(ctx context.Context, text string, language domain.Language) (string, bool) {
	key := cacheKey(text, language)

	if translated, ok := c.memory.Get(key); ok {
		c.bump(func(s *TranslationCacheStats) { s.MemoryHits++ })
		return translated, true
	}
	c.bump(func(s *TranslationCacheStats) { s.MemoryMisses++ })

	if c.redis == nil {
		return "", false
	}

	translated, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).WithField("language", language).Warn("Redis translation cache lookup failed")
		}
		c.bump(func(s *TranslationCacheStats) { s.RedisMisses++ })
		return "", false
	}

	c.bump(func(s *TranslationCacheStats) { s.RedisHits++ })
	c.memory.Add(key, translated)
	return translated, true
}

// Set stores a translation in both tiers. Redis failures are logged
// and otherwise ignored; the memory tier is authoritative for this
// process.
func (c *TranslationCache) Set(ctx context.Context, text string, language domain.Language, translated string) {
	key := cacheKey(text, language)
	c.memory.Add(key, translated)

	if c.redis == nil {
		return
	}
	if err := c.redis.Set(ctx, key, translated, c.redisTTL).Err(); err != nil {
		c.logger.WithError(err).WithField("language", language).Warn("Redis translation cache write failed")
	}
}

// Clear empties the memory tier and returns the number of entries
// evicted. Redis entries are left to expire on their TTL.
func (c *TranslationCache) Clear() int {
	evicted := c.memory.Len()
	c.memory.Purge()

	c.statsMu.Lock()
	c.stats = TranslationCacheStats{LastReset: time.Now()}
	c.statsMu.Unlock()

	c.logger.WithField("evicted", evicted).Info("Translation cache cleared")
	return evicted
}

// Stats returns a snapshot of the cache counters.
func (c *TranslationCache) Stats() TranslationCacheStats {
	c.statsMu.RLock()
	defer c.statsMu.RUnlock()

	stats := c.stats
	stats.Size = c.memory.Len()
	return stats
}

func (c *TranslationCache) bump(f func(*TranslationCacheStats)) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	f(&c.stats)
}
