// Command ingest fetches daily bars for the configured symbols, stores them
// in one batch and logs a summary per symbol.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"stock_ingest/internal/app/di"
	"stock_ingest/internal/config"
	"stock_ingest/internal/feature/prices/usecase"
	"stock_ingest/internal/platform/db"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred releases always execute.
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

	start, end, _ := cfg.Window()
	logger.Info("starting ingest",
		"symbols", cfg.Symbols,
		"start", cfg.StartDate,
		"end", cfg.EndDate,
		"provider", cfg.Fetcher.Provider,
		"write_mode", cfg.WriteMode,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

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

	store, err := di.NewPriceStore(gdb, cfg.WriteMode)
	if err != nil {
		logger.Error("failed to create store", "error", err)
		return 1
	}

	fetcher, release, err := di.NewFetcher(ctx, cfg)
	if err != nil {
		logger.Error("failed to create fetcher", "error", err)
		return 1
	}
	defer release()

	uc := usecase.NewIngestUsecase(fetcher, store, logger)
	res, err := uc.Run(ctx, usecase.Request{Symbols: cfg.Symbols, Start: start, End: end})

	exit := 0
	if err != nil {
		if !errors.Is(err, usecase.ErrBatchWrite) {
			logger.Error("ingest failed", "error", err)
			return 1
		}
		// 書き込み失敗時もサマリーは出力する
		exit = 1
	}

	if _, err := usecase.ReportSummaries(logger, res.Series); err != nil {
		logger.Error("summary failed", "error", err)
		exit = 1
	}
	return exit
}
