package usecase

import (
	"fmt"
	"log/slog"

	"stock_ingest/internal/feature/prices/domain/entity"
)

// CountMissing は系列内の欠損セル数（全カラム合計）を返します。
func CountMissing(bars []entity.PriceBar) int {
	n := 0
	for _, b := range bars {
		n += b.MissingCells()
	}
	return n
}

// ValidateSeries は欠損セルがあれば件数付きの警告を出力します。
// 永続化はブロックしません。欠損値はそのまま NULL として書き込みに渡されます。
func ValidateSeries(logger *slog.Logger, s entity.Series) int {
	missing := CountMissing(s.Bars)
	if missing > 0 {
		logger.Warn(fmt.Sprintf("There are %d empty cells in the series", missing),
			"symbol", s.Symbol, "missing", missing)
	}
	return missing
}
