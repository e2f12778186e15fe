// Package router wires the HTTP routes of cmd/server.
package router

import (
	"github.com/gin-gonic/gin"

	priceshandler "stock_ingest/internal/feature/prices/transport/handler"
	"stock_ingest/internal/platform/http/handler"
)

func NewRouter(health *handler.HealthHandler, prices *priceshandler.PricesHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// 導通確認用（DB疎通も確認）
	r.GET("/healthz", health.Health)
	r.HEAD("/healthz", health.Health)
	r.OPTIONS("/healthz", health.Health)

	// 保存済み株価の参照
	r.GET("/prices/:symbol", prices.GetPrices)

	return r
}
