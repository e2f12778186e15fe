// Package db opens the relational store behind table stock_prices.
package db

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	retryInterval = 3 * time.Second
)

// Config holds connection settings for either supported driver.
type Config struct {
	Driver         string        // "sqlite" or "postgres"
	Path           string        // SQLite file path
	Host           string        // Postgres host
	Port           string        // Postgres port
	User           string        // Postgres user
	Password       string        // Postgres password
	Name           string        // Postgres database name
	SSLMode        string        // Postgres sslmode
	ConnectTimeout time.Duration // how long ConnectWithRetry keeps trying
}

// BuildDSN は設定から接続文字列を生成します。
func BuildDSN(cfg Config) string {
	if cfg.Driver == DriverPostgres {
		sslMode := cfg.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		port := cfg.Port
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			url.QueryEscape(cfg.User), url.QueryEscape(cfg.Password), cfg.Host, port, cfg.Name, sslMode)
	}
	path := cfg.Path
	if path == "" {
		path = "financial_data.db"
	}
	return path
}

// Opener opens a gorm handle for a DSN. Swapped out in tests.
type Opener func(dsn string) (*gorm.DB, error)

// OpenerFor returns the Opener of the configured driver.
func OpenerFor(driver string) (Opener, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	switch driver {
	case "", DriverSQLite:
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(sqlite.Open(dsn), gcfg)
		}, nil
	case DriverPostgres:
		return func(dsn string) (*gorm.DB, error) {
			connCfg, err := pgx.ParseConfig(dsn)
			if err != nil {
				return nil, fmt.Errorf("parse postgres dsn: %w", err)
			}
			sqlDB := stdlib.OpenDB(*connCfg)
			if err := sqlDB.Ping(); err != nil {
				_ = sqlDB.Close()
				return nil, err
			}
			return gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gcfg)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// ConnectWithRetry calls open until it succeeds or timeout has elapsed.
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	attempt := 0
	for {
		attempt++
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %d attempt(s): %w", attempt, err)
		}
		slog.Warn("DB connect failed, retrying", "attempt", attempt, "error", err)
		time.Sleep(retryInterval)
	}
}

// Open connects with the configured driver. The caller owns the handle and
// must release it with Close.
func Open(cfg Config) (*gorm.DB, error) {
	open, err := OpenerFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	db, err := ConnectWithRetry(BuildDSN(cfg), timeout, open)
	if err != nil {
		return nil, err
	}
	slog.Info("database opened", "driver", driverName(cfg.Driver), "target", redact(cfg))
	return db, nil
}

// Close releases the connection pool behind db.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func driverName(d string) string {
	if d == "" {
		return DriverSQLite
	}
	return d
}

func redact(cfg Config) string {
	if cfg.Driver == DriverPostgres {
		return cfg.Host + ":" + cfg.Port + "/" + cfg.Name
	}
	return BuildDSN(cfg)
}
