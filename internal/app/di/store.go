package di

import (
	"gorm.io/gorm"

	"stock_ingest/internal/config"
	"stock_ingest/internal/feature/prices/adapters"
	"stock_ingest/internal/feature/prices/usecase"
	"stock_ingest/internal/platform/db"
)

// DBConfig converts the database section into connection settings.
func DBConfig(cfg config.DatabaseConfig) db.Config {
	return db.Config{
		Driver:         cfg.Driver,
		Path:           cfg.Path,
		Host:           cfg.Host,
		Port:           cfg.Port,
		User:           cfg.User,
		Password:       cfg.Password,
		Name:           cfg.Name,
		SSLMode:        cfg.SSLMode,
		ConnectTimeout: cfg.ConnectTimeout,
	}
}

// PriceRepository is the store used by both the pipeline and the price query.
type PriceRepository interface {
	usecase.PriceStore
	usecase.PriceReader
}

// NewPriceStore creates the gorm-backed store in the configured write mode.
func NewPriceStore(gdb *gorm.DB, writeMode string) (PriceRepository, error) {
	mode, err := adapters.ParseWriteMode(writeMode)
	if err != nil {
		return nil, err
	}
	return adapters.NewPriceRepository(gdb, mode), nil
}
