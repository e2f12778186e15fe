package twelvedata

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

	"github.com/guregu/null/v6"

	"stock_ingest/internal/feature/prices/domain/entity"
	"stock_ingest/internal/feature/prices/usecase"
	"stock_ingest/internal/platform/externalapi/twelvedata/dto"
)

const dateLayout = "2006-01-02"

// TwelveDataMarket はTwelve Data外部APIから日足データを取得するPriceFetcher実装です。
// time_series は配当・分割を返さないため、配当は0、分割比率は1として埋めます。
type TwelveDataMarket struct {
	cfg    Config
	client *http.Client
}

// TwelveDataMarketがPriceFetcherを実装していることをコンパイル時に検証します。
var _ usecase.PriceFetcher = (*TwelveDataMarket)(nil)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
func NewTwelveDataMarket(cfg Config, client *http.Client) *TwelveDataMarket {
	return &TwelveDataMarket{cfg: cfg.withDefaults(), client: client}
}

// FetchDaily はTwelve Data APIから [start, end) の日足を取得し、日付の昇順で返します。
func (t *TwelveDataMarket) FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]entity.PriceBar, error) {
	q := url.Values{}
	// クエリパラメータを追加。end_date は排他的に扱う
	q.Set("symbol", symbol)
	q.Set("interval", "1day")
	q.Set("start_date", start.Format(dateLayout))
	q.Set("end_date", end.AddDate(0, 0, -1).Format(dateLayout))
	q.Set("order", "ASC")
	q.Set("apikey", t.cfg.TwelveDataAPIKey)

	u := fmt.Sprintf("%s/time_series?%s", t.cfg.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	res, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	// JSONレスポンスをDTOにデコード
	var body dto.TimeSeriesResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		return nil, fmt.Errorf("twelvedata: %s", body.Message)
	}

	bars := make([]entity.PriceBar, 0, len(body.Values))
	for _, v := range body.Values {
		// タイムスタンプをパース
		tm, err := time.Parse("2006-01-02 15:04:05", v.Datetime)
		if err != nil {
			tm, err = time.Parse(dateLayout, v.Datetime)
			if err != nil {
				return nil, fmt.Errorf("parse time %q: %w", v.Datetime, err)
			}
		}
		o, err := parseFloat(v.Open)
		if err != nil {
			return nil, fmt.Errorf("parse open %q: %w", v.Open, err)
		}
		h, err := parseFloat(v.High)
		if err != nil {
			return nil, fmt.Errorf("parse high %q: %w", v.High, err)
		}
		l, err := parseFloat(v.Low)
		if err != nil {
			return nil, fmt.Errorf("parse low %q: %w", v.Low, err)
		}
		c, err := parseFloat(v.Close)
		if err != nil {
			return nil, fmt.Errorf("parse close %q: %w", v.Close, err)
		}
		vol, err := parseInt(v.Volume)
		if err != nil {
			return nil, fmt.Errorf("parse volume %q: %w", v.Volume, err)
		}

		// ドメインエンティティに変換
		bars = append(bars, entity.PriceBar{
			Date:        time.Date(tm.Year(), tm.Month(), tm.Day(), 0, 0, 0, 0, time.UTC),
			Open:        o,
			High:        h,
			Low:         l,
			Close:       c,
			Volume:      vol,
			Dividends:   null.FloatFrom(0),
			StockSplits: null.FloatFrom(1),
		})
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// parseFloat は空文字列を欠損値として扱います。
func parseFloat(s string) (null.Float, error) {
	if s == "" {
		return null.Float{}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return null.Float{}, err
	}
	return null.FloatFrom(f), nil
}

func parseInt(s string) (null.Int, error) {
	if s == "" {
		return null.Int{}, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return null.Int{}, err
	}
	return null.IntFrom(n), nil
}
