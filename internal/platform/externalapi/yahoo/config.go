// Package yahoo provides a daily-bar fetch adapter for the Yahoo Finance chart API.
package yahoo

import "time"

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0"
)

// Config holds configuration for the Yahoo chart client.
type Config struct {
	BaseURL   string        // e.g. "https://query1.finance.yahoo.com"
	Timeout   time.Duration // HTTP request timeout
	UserAgent string        // the endpoint rejects requests without a browser-like agent
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}
