package usecase

import (
	"context"
	"strings"
	"time"

	"stock_ingest/internal/feature/prices/domain/entity"
)

// PriceReader は永続化済みの株価行の読み取りレイヤーを抽象化します。
type PriceReader interface {
	// Find returns rows of one symbol within [from, to], ordered by date ascending.
	// A zero from or to leaves that side unbounded.
	Find(ctx context.Context, symbol string, from, to time.Time) ([]entity.StockPriceRecord, error)
}

// pricesUsecase は永続化済み株価の参照ユースケースです。
type pricesUsecase struct {
	reader PriceReader
}

// NewPricesUsecase は pricesUsecase の新しいインスタンスを生成します。
func NewPricesUsecase(reader PriceReader) *pricesUsecase {
	return &pricesUsecase{reader: reader}
}

// GetPrices は指定銘柄・期間の株価行を返します。銘柄コードは大文字に正規化します。
func (pu *pricesUsecase) GetPrices(ctx context.Context, symbol string, from, to time.Time) ([]entity.StockPriceRecord, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		from, to = to, from
	}
	return pu.reader.Find(ctx, symbol, from, to)
}
