// Package cache provides caching decorators for fetch adapters.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stock_ingest/internal/feature/prices/domain/entity"
	"stock_ingest/internal/feature/prices/usecase"
)

// CachingFetcher decorates a PriceFetcher with a Redis read-through cache.
// Re-running the pipeline over the same window is served from Redis
// instead of the upstream API.
type CachingFetcher struct {
	inner     usecase.PriceFetcher
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.PriceFetcher = (*CachingFetcher)(nil)

// NewCachingFetcher decorates a PriceFetcher with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "bars".
// A nil rdb disables caching.
func NewCachingFetcher(rdb *redis.Client, ttl time.Duration, inner usecase.PriceFetcher, namespace string) *CachingFetcher {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "bars"
	}
	return &CachingFetcher{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// FetchDaily returns cached bars when present, otherwise fetches and stores them.
// Fetch errors are never cached.
func (c *CachingFetcher) FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]entity.PriceBar, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.FetchDaily(ctx, symbol, start, end)
	}

	key := c.cacheKey(symbol, start, end)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.PriceBar
		if err := json.Unmarshal(b, &out); err == nil {
			slog.Debug("bars served from cache", "key", key, "bars", len(out))
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the upstream API
	out, err := c.inner.FetchDaily(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			slog.Warn("failed to cache bars", "key", key, "error", err)
		}
	}

	return out, nil
}

// cacheKey generates a cache key for one symbol and window.
func (c *CachingFetcher) cacheKey(symbol string, start, end time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s",
		c.namespace,
		safe(symbol),
		start.UTC().Format("20060102"),
		end.UTC().Format("20060102"),
	)
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
