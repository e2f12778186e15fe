package usecase

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"stock_ingest/internal/feature/prices/domain/entity"
)

var (
	ErrMarketAPI = errors.New("market API error")
	ErrDB        = errors.New("database error")
)

// mockPriceFetcher is a mock implementation of the PriceFetcher interface.
type mockPriceFetcher struct {
	FetchDailyFunc  func(ctx context.Context, symbol string, start, end time.Time) ([]entity.PriceBar, error)
	FetchDailyCalls []string
}

func (m *mockPriceFetcher) FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]entity.PriceBar, error) {
	m.FetchDailyCalls = append(m.FetchDailyCalls, symbol)
	if m.FetchDailyFunc != nil {
		return m.FetchDailyFunc(ctx, symbol, start, end)
	}
	return nil, errors.New("FetchDailyFunc is not implemented")
}

// mockPriceStore is a mock implementation of the PriceStore interface.
type mockPriceStore struct {
	EnsureSchemaFunc  func(ctx context.Context) error
	InsertBatchFunc   func(ctx context.Context, records []entity.StockPriceRecord) (int64, error)
	EnsureSchemaCalls int
	InsertBatchCalls  int
}

func (m *mockPriceStore) EnsureSchema(ctx context.Context) error {
	m.EnsureSchemaCalls++
	if m.EnsureSchemaFunc != nil {
		return m.EnsureSchemaFunc(ctx)
	}
	return nil
}

func (m *mockPriceStore) InsertBatch(ctx context.Context, records []entity.StockPriceRecord) (int64, error) {
	m.InsertBatchCalls++
	if m.InsertBatchFunc != nil {
		return m.InsertBatchFunc(ctx, records)
	}
	return int64(len(records)), nil
}

// mockPriceReader is a mock implementation of the PriceReader interface.
type mockPriceReader struct {
	FindFunc func(ctx context.Context, symbol string, from, to time.Time) ([]entity.StockPriceRecord, error)
}

func (m *mockPriceReader) Find(ctx context.Context, symbol string, from, to time.Time) ([]entity.StockPriceRecord, error) {
	return m.FindFunc(ctx, symbol, from, to)
}

// newTestLogger returns a logger writing text records into the returned buffer.
func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}
