// Package config loads pipeline and server settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the calendar-date format used by start_date and end_date.
const DateLayout = "2006-01-02"

const (
	ProviderYahoo      = "yahoo"
	ProviderTwelveData = "twelvedata"
)

// Config holds all application configuration.
type Config struct {
	Symbols    []string      `yaml:"symbols"`
	StartDate  string        `yaml:"start_date"`
	EndDate    string        `yaml:"end_date"`
	RunTimeout time.Duration `yaml:"run_timeout"`
	WriteMode  string        `yaml:"write_mode"`

	Database DatabaseConfig `yaml:"database"`
	Fetcher  FetcherConfig  `yaml:"fetcher"`
	Cache    CacheConfig    `yaml:"cache"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

type DatabaseConfig struct {
	Driver         string        `yaml:"driver"`
	Path           string        `yaml:"path"`
	Host           string        `yaml:"host"`
	Port           string        `yaml:"port"`
	User           string        `yaml:"user"`
	Password       string        `yaml:"password"`
	Name           string        `yaml:"name"`
	SSLMode        string        `yaml:"sslmode"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

type FetcherConfig struct {
	Provider string        `yaml:"provider"`
	BaseURL  string        `yaml:"base_url"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
	Proxy    string        `yaml:"proxy"`
}

// CacheConfig controls the optional Redis read-through cache in front of the fetcher.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	TTL       time.Duration `yaml:"ttl"`
	Namespace string        `yaml:"namespace"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error; ${VAR} references
// in the file are expanded before parsing.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("STOCK_SYMBOLS"); v != "" {
		cfg.Symbols = splitSymbols(v)
	}
	setString(&cfg.StartDate, "START_DATE")
	setString(&cfg.EndDate, "END_DATE")
	setString(&cfg.WriteMode, "WRITE_MODE")

	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.Path, "SQLITE_PATH")
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Database.SSLMode, "DB_SSLMODE")

	setString(&cfg.Fetcher.Provider, "FETCHER_PROVIDER")
	setString(&cfg.Fetcher.BaseURL, "FETCHER_BASE_URL")
	setString(&cfg.Fetcher.APIKey, "TWELVE_DATA_API_KEY")
	setString(&cfg.Fetcher.Proxy, "HTTPS_PROXY")

	setString(&cfg.Cache.Addr, "REDIS_ADDR")
	setString(&cfg.Cache.Password, "REDIS_PASSWORD")
	if v := os.Getenv("CACHE_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CACHE_ENABLED: %w", err)
		}
		cfg.Cache.Enabled = b
	}

	setString(&cfg.Server.Addr, "SERVER_ADDR")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")

	for name, dst := range map[string]*time.Duration{
		"RUN_TIMEOUT":        &cfg.RunTimeout,
		"DB_CONNECT_TIMEOUT": &cfg.Database.ConnectTimeout,
		"FETCHER_TIMEOUT":    &cfg.Fetcher.Timeout,
		"CACHE_TTL":          &cfg.Cache.TTL,
	} {
		if v := os.Getenv(name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = d
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = []string{"AMZN", "AAPL", "TSLA"}
	}
	if cfg.StartDate == "" {
		cfg.StartDate = "2025-12-15"
	}
	if cfg.EndDate == "" {
		cfg.EndDate = "2025-12-31"
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 5 * time.Minute
	}
	if cfg.WriteMode == "" {
		cfg.WriteMode = "append"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "financial_data.db"
	}
	if cfg.Database.ConnectTimeout <= 0 {
		cfg.Database.ConnectTimeout = 60 * time.Second
	}
	if cfg.Fetcher.Provider == "" {
		cfg.Fetcher.Provider = ProviderYahoo
	}
	if cfg.Cache.Addr == "" {
		cfg.Cache.Addr = "localhost:6379"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// Validate checks that the configuration describes a runnable pipeline.
func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return errors.New("symbols must not be empty")
	}
	start, end, err := c.Window()
	if err != nil {
		return err
	}
	if !end.After(start) {
		return fmt.Errorf("end_date %s must be after start_date %s", c.EndDate, c.StartDate)
	}
	switch c.WriteMode {
	case "append", "skip_existing":
	default:
		return fmt.Errorf("write_mode must be append or skip_existing, got %q", c.WriteMode)
	}
	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.Host == "" || c.Database.Name == "" {
			return errors.New("database.host and database.name are required for postgres")
		}
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	switch c.Fetcher.Provider {
	case ProviderYahoo:
	case ProviderTwelveData:
		if c.Fetcher.APIKey == "" {
			return errors.New("fetcher.api_key is required for twelvedata")
		}
	default:
		return fmt.Errorf("fetcher.provider must be yahoo or twelvedata, got %q", c.Fetcher.Provider)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// Window returns the fetch window. The end date is exclusive.
func (c *Config) Window() (start, end time.Time, err error) {
	start, err = time.Parse(DateLayout, c.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date: %w", err)
	}
	end, err = time.Parse(DateLayout, c.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date: %w", err)
	}
	return start, end, nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func splitSymbols(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
