package usecase

import (
	"errors"
	"math"
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_ingest/internal/feature/prices/domain/entity"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	bars := tradingDays(testStart, 4)
	closes := []float64{10, 12, 11, 15}
	for i, c := range closes {
		bars[i].Close = null.FloatFrom(c)
		bars[i].High = null.FloatFrom(c + 1)
		bars[i].Low = null.FloatFrom(c - 1)
		bars[i].Volume = null.IntFrom(int64(100 * (i + 1)))
	}

	got, err := Summarize(entity.Series{Symbol: "AMZN", Bars: bars})
	require.NoError(t, err)

	assert.Equal(t, "AMZN", got.Symbol)
	assert.Equal(t, 4, got.Bars)
	assert.Equal(t, 15.0, got.LastClose)
	assert.Equal(t, 4.0, got.DailyChange)
	assert.Equal(t, 12.0, got.MeanClose)
	assert.Equal(t, 16.0, got.High)
	assert.Equal(t, 9.0, got.Low)
	assert.Equal(t, int64(1000), got.TotalVolume)
	// sample variance: (4 + 0 + 1 + 9) / 3
	assert.InDelta(t, math.Sqrt(14.0/3.0), got.Volatility, 1e-12)
}

func TestSummarize_SkipsMissingCells(t *testing.T) {
	t.Parallel()

	bars := tradingDays(testStart, 3)
	bars[0].Close = null.FloatFrom(10)
	bars[1].Close = null.Float{}
	bars[2].Close = null.FloatFrom(20)
	bars[1].High = null.Float{}
	bars[2].Volume = null.Int{}

	got, err := Summarize(entity.Series{Symbol: "AAPL", Bars: bars})
	require.NoError(t, err)

	assert.Equal(t, 15.0, got.MeanClose)
	assert.Equal(t, int64(2000), got.TotalVolume)
	assert.True(t, math.IsNaN(got.DailyChange), "change against a missing previous close is NaN")
	assert.InDelta(t, math.Sqrt(50), got.Volatility, 1e-12)
}

func TestSummarize_InsufficientBars(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		bars []entity.PriceBar
	}{
		{name: "empty series", bars: nil},
		{name: "single bar", bars: tradingDays(testStart, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Summarize(entity.Series{Symbol: "TSLA", Bars: tt.bars})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInsufficientBars))
			assert.Contains(t, err.Error(), "out of range")
		})
	}
}

func TestReportSummaries(t *testing.T) {
	t.Parallel()

	logger, buf := newTestLogger()

	series := []entity.Series{
		{Symbol: "AMZN", Bars: tradingDays(testStart, 12)},
		{Symbol: "TSLA", Bars: tradingDays(testStart, 1)},
		{Symbol: "AAPL", Bars: tradingDays(testStart, 12)},
	}

	got, err := ReportSummaries(logger, series)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientBars))
	require.Len(t, got, 2)
	assert.Equal(t, "AMZN", got[0].Symbol)
	assert.Equal(t, "AAPL", got[1].Symbol)

	out := buf.String()
	assert.Contains(t, out, "AMZN Summary")
	assert.Contains(t, out, "AAPL Summary")
	assert.NotContains(t, out, "TSLA Summary")
	assert.Contains(t, out, "failed to summarize series")
	assert.Contains(t, out, "symbol=TSLA")
}

func TestReportSummaries_AllValid(t *testing.T) {
	t.Parallel()

	logger, _ := newTestLogger()

	got, err := ReportSummaries(logger, []entity.Series{{Symbol: "AMZN", Bars: tradingDays(testStart, 2)}})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1.0, got[0].DailyChange)
}
