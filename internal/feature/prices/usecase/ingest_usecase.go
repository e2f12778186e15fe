// Package usecase implements the price ingest pipeline: validation,
// row mapping, the transactional bulk write and the summary reporter.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stock_ingest/internal/feature/prices/domain/entity"
)

// PriceFetcher は外部 API から日足データを取得するインターフェイスです。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type PriceFetcher interface {
	// FetchDaily returns bars for [start, end) ordered by date ascending.
	FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]entity.PriceBar, error)
}

// PriceStore は stock_prices テーブルへの書き込みレイヤーを抽象化します。
type PriceStore interface {
	// EnsureSchema creates the target table if it does not exist yet.
	EnsureSchema(ctx context.Context) error
	// InsertBatch writes all records in one transaction and returns the number of inserted rows.
	InsertBatch(ctx context.Context, records []entity.StockPriceRecord) (int64, error)
}

// Request describes one pipeline run.
type Request struct {
	Symbols []string
	Start   time.Time
	End     time.Time
}

// Result is what a run produced. Series is populated even when the write fails
// so that the caller can still report summaries.
type Result struct {
	Series       []entity.Series
	RowsStaged   int
	RowsInserted int64
}

// IngestUsecase は外部APIからデータを取得し、検証してデータベースに一括で永続化します。
type IngestUsecase struct {
	fetcher PriceFetcher
	store   PriceStore
	logger  *slog.Logger
}

// NewIngestUsecase は新しい IngestUsecase を作成します。logger が nil の場合は slog.Default を使います。
func NewIngestUsecase(fetcher PriceFetcher, store PriceStore, logger *slog.Logger) *IngestUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestUsecase{fetcher: fetcher, store: store, logger: logger}
}

// Run fetches every symbol in order, validates each series, and writes all
// rows in a single batch. A fetch error aborts the run. A write error is
// logged, rolled back by the store, and returned wrapped in ErrBatchWrite
// together with the fetched series.
func (iu *IngestUsecase) Run(ctx context.Context, req Request) (*Result, error) {
	if len(req.Symbols) == 0 {
		return nil, ErrNoSymbols
	}

	if err := iu.store.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	res := &Result{Series: make([]entity.Series, 0, len(req.Symbols))}
	for _, symbol := range req.Symbols {
		bars, err := iu.fetcher.FetchDaily(ctx, symbol, req.Start, req.End)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", symbol, err)
		}
		s := entity.Series{Symbol: symbol, Bars: bars}
		ValidateSeries(iu.logger, s)
		res.Series = append(res.Series, s)
	}

	records := ToRecords(res.Series)
	res.RowsStaged = len(records)

	n, err := iu.store.InsertBatch(ctx, records)
	if err != nil {
		iu.logger.Error("Database commit failed while inserting stock data",
			"error", err, "staged", len(records))
		return res, fmt.Errorf("%w: %w", ErrBatchWrite, err)
	}
	res.RowsInserted = n

	iu.logger.Info("Stock data successfully written to the database.")
	iu.logger.Info(fmt.Sprintf("Total rows inserted: %d", n), "rows", n)
	return res, nil
}

// ToRecords maps every bar of every series to a row, keeping series order
// and then bar order.
func ToRecords(series []entity.Series) []entity.StockPriceRecord {
	total := 0
	for _, s := range series {
		total += len(s.Bars)
	}
	out := make([]entity.StockPriceRecord, 0, total)
	for _, s := range series {
		for _, b := range s.Bars {
			out = append(out, entity.StockPriceRecord{
				Symbol:      s.Symbol,
				Date:        b.Date,
				Open:        b.Open,
				High:        b.High,
				Low:         b.Low,
				Close:       b.Close,
				Volume:      b.Volume,
				Dividends:   b.Dividends,
				StockSplits: b.StockSplits,
			})
		}
	}
	return out
}
