// Package entity defines the domain models for the prices feature.
package entity

import (
	"time"

	"github.com/guregu/null/v6"
)

// PriceBar is one daily OHLCV observation for a single symbol as returned
// by a fetch adapter. Any value cell may be missing (not Valid).
type PriceBar struct {
	Date        time.Time  // Trading day (market timezone implied)
	Open        null.Float // Opening price
	High        null.Float // Highest price of the day
	Low         null.Float // Lowest price of the day
	Close       null.Float // Closing price
	Volume      null.Int   // Shares traded
	Dividends   null.Float // Cash distribution, 0 on non-distribution days
	StockSplits null.Float // Split factor on split days, otherwise 1.0
}

// MissingCells returns how many value cells of the bar are missing.
func (b PriceBar) MissingCells() int {
	n := 0
	for _, f := range []null.Float{b.Open, b.High, b.Low, b.Close, b.Dividends, b.StockSplits} {
		if !f.Valid {
			n++
		}
	}
	if !b.Volume.Valid {
		n++
	}
	return n
}

// Series is the ordered list of bars fetched for one symbol.
type Series struct {
	Symbol string
	Bars   []PriceBar
}

// StockPriceRecord is a persisted row of table stock_prices.
// Fields stay nullable so that missing cells reach the store as NULL.
type StockPriceRecord struct {
	ID          uint
	Symbol      string
	Date        time.Time
	Open        null.Float
	High        null.Float
	Low         null.Float
	Close       null.Float
	Volume      null.Int
	Dividends   null.Float
	StockSplits null.Float
}
