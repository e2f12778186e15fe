// Command server serves persisted stock prices over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock_ingest/internal/app/di"
	"stock_ingest/internal/app/router"
	"stock_ingest/internal/config"
	priceshandler "stock_ingest/internal/feature/prices/transport/handler"
	"stock_ingest/internal/feature/prices/usecase"
	"stock_ingest/internal/platform/db"
	"stock_ingest/internal/platform/http/handler"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "configs/ingest.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		return 1
	}

	logger := cfg.Log.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	// db
	gdb, err := db.Open(di.DBConfig(cfg.Database))
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return 1
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()
	sqlDB, err := gdb.DB()
	if err != nil {
		logger.Error("failed to get sql.DB", "error", err)
		return 1
	}

	// Repository
	store, err := di.NewPriceStore(gdb, cfg.WriteMode)
	if err != nil {
		logger.Error("failed to create store", "error", err)
		return 1
	}
	if err := store.EnsureSchema(context.Background()); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		return 1
	}

	// Usecase / Handler
	pricesUC := usecase.NewPricesUsecase(store)
	pricesH := priceshandler.NewPricesHandler(pricesUC)
	healthH := handler.NewHealthHandler(sqlDB)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router.NewRouter(healthH, pricesH),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			return 1
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
			return 1
		}
	}
	return 0
}
