// Package handler はpricesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stock_ingest/internal/feature/prices/domain/entity"
	"stock_ingest/internal/feature/prices/transport/http/dto"
)

const dateLayout = "2006-01-02"

// PricesUsecase は株価参照のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type PricesUsecase interface {
	GetPrices(ctx context.Context, symbol string, from, to time.Time) ([]entity.StockPriceRecord, error)
}

// PricesHandler は株価データのHTTPリクエストを処理します。
type PricesHandler struct {
	uc PricesUsecase
}

// NewPricesHandler は指定されたusecaseでPricesHandlerの新しいインスタンスを生成します。
func NewPricesHandler(uc PricesUsecase) *PricesHandler {
	return &PricesHandler{uc: uc}
}

// GetPrices は銘柄コードと期間を受け取り、保存済みの株価行をJSONで返します。
//
// エンドポイント例:
// GET /prices/:symbol?from=2025-12-15&to=2025-12-31
func (h *PricesHandler) GetPrices(c *gin.Context) {
	symbol := c.Param("symbol")

	from, err := parseDate(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid from: " + err.Error()})
		return
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid to: " + err.Error()})
		return
	}

	rows, err := h.uc.GetPrices(c.Request.Context(), symbol, from, to)
	if err != nil {
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
		return
	}

	out := make([]dto.PriceResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.PriceResponse{
			Symbol:      r.Symbol,
			Date:        r.Date.UTC().Format(dateLayout),
			Open:        r.Open.Ptr(),
			High:        r.High.Ptr(),
			Low:         r.Low.Ptr(),
			Close:       r.Close.Ptr(),
			Volume:      r.Volume.Ptr(),
			Dividends:   r.Dividends.Ptr(),
			StockSplits: r.StockSplits.Ptr(),
		})
	}

	c.JSON(http.StatusOK, out)
}

// parseDate は空文字をゼロ値（期間指定なし）として扱います。
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}
