// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"stock_ingest/internal/config"
	"stock_ingest/internal/feature/prices/usecase"
	"stock_ingest/internal/platform/cache"
	"stock_ingest/internal/platform/externalapi/twelvedata"
	"stock_ingest/internal/platform/externalapi/yahoo"
	infrahttp "stock_ingest/internal/platform/http"
	infraredis "stock_ingest/internal/platform/redis"
)

// NewMarket creates the configured fetch adapter with its HTTP client.
func NewMarket(cfg config.FetcherConfig) (usecase.PriceFetcher, error) {
	switch cfg.Provider {
	case "", config.ProviderYahoo:
		ycfg := yahoo.Config{BaseURL: cfg.BaseURL, Timeout: cfg.Timeout}
		client, err := infrahttp.NewHTTPClient(timeoutOr(cfg.Timeout, yahoo.DefaultTimeout), cfg.Proxy)
		if err != nil {
			return nil, err
		}
		return yahoo.NewYahooMarket(ycfg, client), nil
	case config.ProviderTwelveData:
		tcfg := twelvedata.Config{TwelveDataAPIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Timeout: cfg.Timeout}
		client, err := infrahttp.NewHTTPClient(timeoutOr(cfg.Timeout, twelvedata.DefaultTimeout), cfg.Proxy)
		if err != nil {
			return nil, err
		}
		return twelvedata.NewTwelveDataMarket(tcfg, client), nil
	}
	return nil, fmt.Errorf("unknown fetcher provider %q", cfg.Provider)
}

// NewFetcher wraps the market adapter in the Redis cache when enabled.
// If Redis is unreachable it logs a warning and runs without cache.
// The returned release func closes the Redis client and is never nil.
func NewFetcher(ctx context.Context, cfg *config.Config) (usecase.PriceFetcher, func(), error) {
	market, err := NewMarket(cfg.Fetcher)
	if err != nil {
		return nil, func() {}, err
	}
	if !cfg.Cache.Enabled {
		return market, func() {}, nil
	}

	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, infraredis.Options{
		Addr:     cfg.Cache.Addr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	}); err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
	} else {
		rdb = tmp
	}

	release := func() {
		if rdb == nil {
			return
		}
		if err := rdb.Close(); err != nil {
			slog.Error("Failed to close Redis client", "error", err)
		}
	}

	// 終値確定までキャッシュ
	ttl := cfg.Cache.TTL
	if ttl <= 0 {
		ttl = cache.TimeUntilNextClose(time.Now())
	}
	return cache.NewCachingFetcher(rdb, ttl, market, cfg.Cache.Namespace), release, nil
}

func timeoutOr(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}
