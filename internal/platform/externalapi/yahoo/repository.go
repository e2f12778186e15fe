package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"
	_ "time/tzdata" // exchange timezones on hosts without zoneinfo

	"github.com/guregu/null/v6"

	"stock_ingest/internal/feature/prices/domain/entity"
	"stock_ingest/internal/feature/prices/usecase"
	"stock_ingest/internal/platform/externalapi/yahoo/dto"
)

// YahooMarket fetches daily bars, dividends and splits from the Yahoo chart API.
type YahooMarket struct {
	cfg    Config
	client *http.Client
}

var _ usecase.PriceFetcher = (*YahooMarket)(nil)

// NewYahooMarket creates a YahooMarket. Empty config fields fall back to defaults.
func NewYahooMarket(cfg Config, client *http.Client) *YahooMarket {
	return &YahooMarket{cfg: cfg.withDefaults(), client: client}
}

// FetchDaily returns the bars of [start, end) ordered by date ascending.
// Days without a dividend get 0 and days without a split get a ratio of 1.
func (y *YahooMarket) FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]entity.PriceBar, error) {
	q := url.Values{}
	q.Set("period1", strconv.FormatInt(start.Unix(), 10))
	q.Set("period2", strconv.FormatInt(end.Unix(), 10))
	q.Set("interval", "1d")
	q.Set("events", "div|split")
	q.Set("includeAdjustedClose", "false")

	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", y.cfg.BaseURL, url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", y.cfg.UserAgent)

	res, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	var body dto.ChartResponse
	decodeErr := json.NewDecoder(res.Body).Decode(&body)
	if body.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo: %s", body.Chart.Error.Description)
	}
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("yahoo http %d", res.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("yahoo decode: %w", decodeErr)
	}
	if len(body.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned for %s", symbol)
	}

	return toBars(body.Chart.Result[0])
}

func toBars(r dto.ChartResult) ([]entity.PriceBar, error) {
	if len(r.Timestamp) == 0 {
		return []entity.PriceBar{}, nil
	}
	if len(r.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: quote block missing")
	}
	quote := r.Indicators.Quote[0]

	loc := time.UTC
	if r.Meta.ExchangeTimezoneName != "" {
		if l, err := time.LoadLocation(r.Meta.ExchangeTimezoneName); err == nil {
			loc = l
		}
	}
	day := func(ts int64) time.Time {
		t := time.Unix(ts, 0).In(loc)
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}

	dividends := make(map[time.Time]float64, len(r.Events.Dividends))
	for _, d := range r.Events.Dividends {
		dividends[day(d.Date)] += d.Amount
	}
	splits := make(map[time.Time]float64, len(r.Events.Splits))
	for _, s := range r.Events.Splits {
		if s.Denominator == 0 {
			continue
		}
		splits[day(s.Date)] = s.Numerator / s.Denominator
	}

	bars := make([]entity.PriceBar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		o, h, l, c := cell(quote.Open, i), cell(quote.High, i), cell(quote.Low, i), cell(quote.Close, i)
		v := cell(quote.Volume, i)
		if o == nil && h == nil && l == nil && c == nil && v == nil {
			// placeholder rows for non-trading days
			continue
		}

		d := day(ts)
		split, ok := splits[d]
		if !ok {
			split = 1
		}
		bars = append(bars, entity.PriceBar{
			Date:        d,
			Open:        null.FloatFromPtr(o),
			High:        null.FloatFromPtr(h),
			Low:         null.FloatFromPtr(l),
			Close:       null.FloatFromPtr(c),
			Volume:      volume(v),
			Dividends:   null.FloatFrom(dividends[d]),
			StockSplits: null.FloatFrom(split),
		})
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

func cell(col []*float64, i int) *float64 {
	if i >= len(col) {
		return nil
	}
	return col[i]
}

func volume(v *float64) null.Int {
	if v == nil {
		return null.Int{}
	}
	return null.IntFrom(int64(*v))
}
