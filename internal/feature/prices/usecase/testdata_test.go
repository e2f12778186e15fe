package usecase

import (
	"time"

	"github.com/guregu/null/v6"

	"stock_ingest/internal/feature/prices/domain/entity"
)

var testStart = time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)

// fullBar returns a bar with every cell present.
func fullBar(day time.Time, close float64) entity.PriceBar {
	return entity.PriceBar{
		Date:        day,
		Open:        null.FloatFrom(close - 1),
		High:        null.FloatFrom(close + 1),
		Low:         null.FloatFrom(close - 2),
		Close:       null.FloatFrom(close),
		Volume:      null.IntFrom(1000),
		Dividends:   null.FloatFrom(0),
		StockSplits: null.FloatFrom(1),
	}
}

// tradingDays returns n complete bars on consecutive weekdays starting at start.
func tradingDays(start time.Time, n int) []entity.PriceBar {
	bars := make([]entity.PriceBar, 0, n)
	day := start
	for len(bars) < n {
		if day.Weekday() != time.Saturday && day.Weekday() != time.Sunday {
			bars = append(bars, fullBar(day, 100+float64(len(bars))))
		}
		day = day.AddDate(0, 0, 1)
	}
	return bars
}
