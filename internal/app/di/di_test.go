package di

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stock_ingest/internal/config"
	"stock_ingest/internal/platform/cache"
	"stock_ingest/internal/platform/externalapi/twelvedata"
	"stock_ingest/internal/platform/externalapi/yahoo"
)

func TestNewMarket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      config.FetcherConfig
		wantType any
		wantErr  bool
	}{
		{name: "default is yahoo", cfg: config.FetcherConfig{}, wantType: &yahoo.YahooMarket{}},
		{name: "yahoo", cfg: config.FetcherConfig{Provider: "yahoo"}, wantType: &yahoo.YahooMarket{}},
		{name: "twelvedata", cfg: config.FetcherConfig{Provider: "twelvedata", APIKey: "k"}, wantType: &twelvedata.TwelveDataMarket{}},
		{name: "unknown provider", cfg: config.FetcherConfig{Provider: "stooq"}, wantErr: true},
		{name: "bad proxy", cfg: config.FetcherConfig{Proxy: "::"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewMarket(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, got)
		})
	}
}

func TestNewFetcher_CacheDisabled(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Fetcher: config.FetcherConfig{Provider: "yahoo"}}
	f, release, err := NewFetcher(context.Background(), cfg)
	require.NoError(t, err)
	defer release()

	assert.IsType(t, &yahoo.YahooMarket{}, f)
}

func TestNewFetcher_RedisUnavailable(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Fetcher: config.FetcherConfig{Provider: "yahoo"},
		Cache:   config.CacheConfig{Enabled: true, Addr: "127.0.0.1:1", TTL: time.Minute},
	}
	f, release, err := NewFetcher(context.Background(), cfg)
	require.NoError(t, err)
	defer release()

	// 接続できなくてもキャッシュなしのデコレーターで動作する
	assert.IsType(t, &cache.CachingFetcher{}, f)
}

func TestNewPriceStore(t *testing.T) {
	t.Parallel()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	store, err := NewPriceStore(gdb, "skip_existing")
	require.NoError(t, err)
	assert.NoError(t, store.EnsureSchema(context.Background()))

	_, err = NewPriceStore(gdb, "upsert")
	assert.Error(t, err)
}

func TestDBConfig(t *testing.T) {
	t.Parallel()

	got := DBConfig(config.DatabaseConfig{Driver: "postgres", Host: "h", Port: "6543", Name: "n", ConnectTimeout: time.Second})
	assert.Equal(t, "postgres", got.Driver)
	assert.Equal(t, "6543", got.Port)
	assert.Equal(t, time.Second, got.ConnectTimeout)
}
