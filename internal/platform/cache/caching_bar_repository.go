// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stock_pipeline/internal/feature/bars/domain/entity"
	"stock_pipeline/internal/feature/bars/usecase"
)

// CachingBarRepository decorates a BarRepository with Redis caching on the
// read path. Writes pass through to the inner repository and invalidate the
// affected symbols' cache entries, so the query API never serves bars older
// than the last committed upsert.
type CachingBarRepository struct {
	inner     usecase.BarRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.BarRepository = (*CachingBarRepository)(nil)

// NewCachingBarRepository decorates a BarRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "bars".
func NewCachingBarRepository(rdb *redis.Client, ttl time.Duration, inner usecase.BarRepository, namespace string) *CachingBarRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "bars"
	}
	return &CachingBarRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// UpsertBatch writes bars through to the inner repository and invalidates
// cache entries for every symbol in the batch.
func (c *CachingBarRepository) UpsertBatch(ctx context.Context, bars []entity.Bar) (int64, error) {
	rows, err := c.inner.UpsertBatch(ctx, bars)
	if err != nil {
		return rows, err
	}
	// Exit early if Redis is not configured or there are no bars
	if c.rdb == nil || len(bars) == 0 {
		return rows, nil
	}

	// Invalidate affected cache entries (keys per symbol)
	seen := map[string]struct{}{}
	for _, b := range bars {
		prefix := c.cacheKeyPrefix(b.Symbol)
		if _, ok := seen[prefix]; ok {
			continue
		}
		seen[prefix] = struct{}{}
		_ = c.deleteByPattern(ctx, prefix+"*") // Best effort: don't fail the write on cache errors
	}
	return rows, nil
}

// Find retrieves bars, checking cache first then falling back to the database.
func (c *CachingBarRepository) Find(ctx context.Context, symbol string, limit int) ([]entity.Bar, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.Find(ctx, symbol, limit)
	}

	key := c.cacheKey(symbol, limit)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Bar
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.Find(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// cacheKey generates a cache key for a specific query.
func (c *CachingBarRepository) cacheKey(symbol string, limit int) string {
	return fmt.Sprintf("%s:%s:%d", c.namespace, safe(symbol), limit)
}

// cacheKeyPrefix generates a prefix for invalidating related cache entries.
func (c *CachingBarRepository) cacheKeyPrefix(symbol string) string {
	return fmt.Sprintf("%s:%s:", c.namespace, safe(symbol))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingBarRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
