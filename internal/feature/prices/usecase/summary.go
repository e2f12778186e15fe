package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/guregu/null/v6"

	"stock_ingest/internal/feature/prices/domain/entity"
)

// Summary holds descriptive statistics of one fetched series.
type Summary struct {
	Symbol      string
	Bars        int
	LastClose   float64
	DailyChange float64 // last close minus the previous close
	MeanClose   float64
	High        float64 // highest high of the window
	Low         float64 // lowest low of the window
	TotalVolume int64
	Volatility  float64 // sample standard deviation of close
}

// Summarize computes the statistics from the in-memory series.
// Missing cells are skipped by the aggregates; a missing last or previous
// close yields NaN for the values that depend on it.
func Summarize(s entity.Series) (Summary, error) {
	n := len(s.Bars)
	if n < 2 {
		return Summary{}, fmt.Errorf("%w: %s has %d bar(s)", ErrInsufficientBars, s.Symbol, n)
	}

	last := floatOrNaN(s.Bars[n-1].Close)
	prev := floatOrNaN(s.Bars[n-2].Close)

	out := Summary{
		Symbol:      s.Symbol,
		Bars:        n,
		LastClose:   last,
		DailyChange: last - prev,
		High:        math.Inf(-1),
		Low:         math.Inf(1),
	}

	closes := make([]float64, 0, n)
	for _, b := range s.Bars {
		if b.Close.Valid {
			closes = append(closes, b.Close.Float64)
		}
		if b.High.Valid {
			out.High = math.Max(out.High, b.High.Float64)
		}
		if b.Low.Valid {
			out.Low = math.Min(out.Low, b.Low.Float64)
		}
		if b.Volume.Valid {
			out.TotalVolume += b.Volume.Int64
		}
	}
	if math.IsInf(out.High, -1) {
		out.High = math.NaN()
	}
	if math.IsInf(out.Low, 1) {
		out.Low = math.NaN()
	}

	out.MeanClose = mean(closes)
	out.Volatility = sampleStdDev(closes, out.MeanClose)
	return out, nil
}

// LogSummary writes one info line for the summary.
func LogSummary(logger *slog.Logger, s Summary) {
	logger.Info(fmt.Sprintf("%s Summary", s.Symbol),
		"last_close", s.LastClose,
		"daily_change", s.DailyChange,
		"mean_close", s.MeanClose,
		"high", s.High,
		"low", s.Low,
		"total_volume", s.TotalVolume,
		"volatility", s.Volatility,
	)
}

// ReportSummaries summarizes and logs every series. Series that cannot be
// summarized are logged as errors and returned joined.
func ReportSummaries(logger *slog.Logger, series []entity.Series) ([]Summary, error) {
	out := make([]Summary, 0, len(series))
	var errs []error
	for _, s := range series {
		sum, err := Summarize(s)
		if err != nil {
			logger.Error("failed to summarize series", "symbol", s.Symbol, "error", err)
			errs = append(errs, err)
			continue
		}
		LogSummary(logger, sum)
		out = append(out, sum)
	}
	return out, errors.Join(errs...)
}

func floatOrNaN(f null.Float) float64 {
	if !f.Valid {
		return math.NaN()
	}
	return f.Float64
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func sampleStdDev(xs []float64, m float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
