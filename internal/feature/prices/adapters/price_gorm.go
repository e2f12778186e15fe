package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/guregu/null/v6"
	"gorm.io/gorm"

	"stock_ingest/internal/feature/prices/domain/entity"
	"stock_ingest/internal/feature/prices/usecase"
)

// WriteMode controls how InsertBatch treats rows that already exist for the same (symbol, date).
type WriteMode string

const (
	// WriteAppend inserts every staged row; overlapping runs duplicate history.
	WriteAppend WriteMode = "append"
	// WriteSkipExisting drops staged rows whose (symbol, date) is already stored.
	WriteSkipExisting WriteMode = "skip_existing"

	defaultBatchSize = 500
)

// ParseWriteMode converts a config value into a WriteMode. Empty means append.
func ParseWriteMode(s string) (WriteMode, error) {
	switch WriteMode(s) {
	case "", WriteAppend:
		return WriteAppend, nil
	case WriteSkipExisting:
		return WriteSkipExisting, nil
	default:
		return "", fmt.Errorf("unknown write mode %q", s)
	}
}

type priceGorm struct {
	db        *gorm.DB
	mode      WriteMode
	batchSize int
}

var (
	_ usecase.PriceStore  = (*priceGorm)(nil)
	_ usecase.PriceReader = (*priceGorm)(nil)
)

func NewPriceRepository(db *gorm.DB, mode WriteMode) *priceGorm {
	if mode == "" {
		mode = WriteAppend
	}
	return &priceGorm{db: db, mode: mode, batchSize: defaultBatchSize}
}

// StockPriceModel is the gorm mapping of table stock_prices.
// Value columns are pointers so that a missing cell is written as NULL and
// rejected by the NOT NULL constraint.
type StockPriceModel struct {
	ID     uint      `gorm:"primaryKey"`
	Symbol string    `gorm:"not null"`
	Date   time.Time `gorm:"not null"`

	Open        *float64 `gorm:"not null"`
	High        *float64 `gorm:"not null"`
	Low         *float64 `gorm:"not null"`
	Close       *float64 `gorm:"not null"`
	Volume      *int64   `gorm:"not null"`
	Dividends   *float64 `gorm:"not null"`
	StockSplits *float64 `gorm:"column:stock_splits;not null"`
}

func (StockPriceModel) TableName() string {
	return "stock_prices"
}

func toModel(e entity.StockPriceRecord) StockPriceModel {
	return StockPriceModel{
		Symbol:      e.Symbol,
		Date:        e.Date.UTC(),
		Open:        e.Open.Ptr(),
		High:        e.High.Ptr(),
		Low:         e.Low.Ptr(),
		Close:       e.Close.Ptr(),
		Volume:      e.Volume.Ptr(),
		Dividends:   e.Dividends.Ptr(),
		StockSplits: e.StockSplits.Ptr(),
	}
}

func toEntity(m StockPriceModel) entity.StockPriceRecord {
	return entity.StockPriceRecord{
		ID:          m.ID,
		Symbol:      m.Symbol,
		Date:        m.Date,
		Open:        null.FloatFromPtr(m.Open),
		High:        null.FloatFromPtr(m.High),
		Low:         null.FloatFromPtr(m.Low),
		Close:       null.FloatFromPtr(m.Close),
		Volume:      null.IntFromPtr(m.Volume),
		Dividends:   null.FloatFromPtr(m.Dividends),
		StockSplits: null.FloatFromPtr(m.StockSplits),
	}
}

// EnsureSchema creates stock_prices when it is missing. Safe to call repeatedly.
func (r *priceGorm) EnsureSchema(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&StockPriceModel{}); err != nil {
		return fmt.Errorf("migrate stock_prices: %w", err)
	}
	return nil
}

// InsertBatch writes all records inside one transaction. Any failing row
// rolls back the whole batch and nothing is stored.
func (r *priceGorm) InsertBatch(ctx context.Context, records []entity.StockPriceRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	ms := make([]StockPriceModel, 0, len(records))
	for _, e := range records {
		ms = append(ms, toModel(e))
	}

	var inserted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.mode == WriteSkipExisting {
			var err error
			if ms, err = dropExisting(tx, ms); err != nil {
				return err
			}
			if len(ms) == 0 {
				return nil
			}
		}
		res := tx.CreateInBatches(&ms, r.batchSize)
		if res.Error != nil {
			return res.Error
		}
		inserted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// dropExisting removes rows already stored for the same (symbol, date), as
// well as repeats inside the batch itself.
func dropExisting(tx *gorm.DB, ms []StockPriceModel) ([]StockPriceModel, error) {
	symbols := make([]string, 0)
	seenSymbol := map[string]struct{}{}
	minDate, maxDate := ms[0].Date, ms[0].Date
	for _, m := range ms {
		if _, ok := seenSymbol[m.Symbol]; !ok {
			seenSymbol[m.Symbol] = struct{}{}
			symbols = append(symbols, m.Symbol)
		}
		if m.Date.Before(minDate) {
			minDate = m.Date
		}
		if m.Date.After(maxDate) {
			maxDate = m.Date
		}
	}

	var stored []StockPriceModel
	if err := tx.Select("symbol", "date").
		Where("symbol IN ? AND date >= ? AND date <= ?", symbols, minDate, maxDate).
		Find(&stored).Error; err != nil {
		return nil, fmt.Errorf("load existing rows: %w", err)
	}

	seen := make(map[string]struct{}, len(stored)+len(ms))
	for _, m := range stored {
		seen[rowKey(m)] = struct{}{}
	}
	out := ms[:0]
	for _, m := range ms {
		k := rowKey(m)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, m)
	}
	return out, nil
}

func rowKey(m StockPriceModel) string {
	return fmt.Sprintf("%s|%d", m.Symbol, m.Date.UTC().Unix())
}

// Find returns rows for symbol within [from, to] ordered by date ascending.
func (r *priceGorm) Find(ctx context.Context, symbol string, from, to time.Time) ([]entity.StockPriceRecord, error) {
	var rows []StockPriceModel
	q := r.db.WithContext(ctx).Where("symbol = ?", symbol)
	if !from.IsZero() {
		q = q.Where("date >= ?", from.UTC())
	}
	if !to.IsZero() {
		q = q.Where("date <= ?", to.UTC())
	}
	if err := q.Order("date ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.StockPriceRecord, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

// Count returns the number of stored rows.
func (r *priceGorm) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&StockPriceModel{}).Count(&n).Error
	return n, err
}
