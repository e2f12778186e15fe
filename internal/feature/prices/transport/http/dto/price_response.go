package dto

// PriceResponse は永続化済み株価1行のレスポンスDTOです。
// 欠損値は null として返します。
type PriceResponse struct {
	Symbol      string   `json:"symbol"`       // 銘柄コード
	Date        string   `json:"date"`         // 日付 (YYYY-MM-DD)
	Open        *float64 `json:"open"`         // 始値
	High        *float64 `json:"high"`         // 高値
	Low         *float64 `json:"low"`          // 安値
	Close       *float64 `json:"close"`        // 終値
	Volume      *int64   `json:"volume"`       // 出来高
	Dividends   *float64 `json:"dividends"`    // 配当
	StockSplits *float64 `json:"stock_splits"` // 株式分割比率
}

// ErrorResponse はエラー時のレスポンスDTOです。
type ErrorResponse struct {
	Error string `json:"error"`
}
