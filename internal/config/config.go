// Package config defines the marketfocus configuration, its defaults, and
// validation.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by MARKETFOCUS_* environment variables.
type Config struct {
	Polymarket PolymarketConfig `toml:"polymarket"`
	Fetch      FetchConfig      `toml:"fetch"`
	Scan       ScanConfig       `toml:"scan"`
	Redis      RedisConfig      `toml:"redis"`
	Server     ServerConfig     `toml:"server"`
	Notify     NotifyConfig     `toml:"notify"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// PolymarketConfig holds the public API roots.
type PolymarketConfig struct {
	GammaHost string `toml:"gamma_host"`
	ClobHost  string `toml:"clob_host"`
}

// FetchConfig controls the listing fetch.
type FetchConfig struct {
	PageLimit int      `toml:"page_limit"`
	MaxPages  int      `toml:"max_pages"`
	Timeout   duration `toml:"timeout"`
	// CacheTTL is how long a fetched listing is reused. "0s" disables it.
	CacheTTL duration `toml:"cache_ttl"`
}

// ScanConfig controls scan cycles and the terminal report.
type ScanConfig struct {
	Interval        duration `toml:"interval"`
	ValidPricesOnly bool     `toml:"valid_prices_only"`
	ShowInvalid     bool     `toml:"show_invalid"`
}

// RedisConfig holds Redis connection parameters. Redis is optional; without
// it the listing cache is in-process and rate limiting is off.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// duration wraps time.Duration so TOML strings like "5m" decode.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	// RateLimit is requests per RateWindow per client IP. It needs Redis.
	RateLimit  int      `toml:"rate_limit"`
	RateWindow duration `toml:"rate_window"`
	// PriceConcurrency bounds parallel CLOB lookups for /prices.
	PriceConcurrency int `toml:"price_concurrency"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config populated with sensible defaults.
func Defaults() Config {
	return Config{
		Polymarket: PolymarketConfig{
			GammaHost: "https://gamma-api.polymarket.com",
			ClobHost:  "https://clob.polymarket.com",
		},
		Fetch: FetchConfig{
			PageLimit: 100,
			MaxPages:  5,
			Timeout:   duration{10 * time.Second},
			CacheTTL:  duration{30 * time.Second},
		},
		Scan: ScanConfig{
			Interval: duration{time.Minute},
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			PoolSize:   10,
			MaxRetries: 3,
		},
		Server: ServerConfig{
			Port:             8000,
			CORSOrigins:      []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:        120,
			RateWindow:       duration{time.Minute},
			PriceConcurrency: 8,
		},
		Notify: NotifyConfig{
			Events: []string{"focus_changed"},
		},
		Mode:     "scan",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"scan":   true,
	"watch":  true,
	"server": true,
	"full":   true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for invalid or missing values and returns one
// error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: scan, watch, server, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}
	if c.Polymarket.ClobHost == "" {
		errs = append(errs, "polymarket: clob_host must not be empty")
	}

	if c.Fetch.PageLimit < 1 {
		errs = append(errs, "fetch: page_limit must be >= 1")
	}
	if c.Fetch.MaxPages < 1 {
		errs = append(errs, "fetch: max_pages must be >= 1")
	}
	if c.Fetch.Timeout.Duration <= 0 {
		errs = append(errs, "fetch: timeout must be > 0")
	}
	if c.Fetch.CacheTTL.Duration < 0 {
		errs = append(errs, "fetch: cache_ttl must be >= 0")
	}

	mode := strings.ToLower(c.Mode)
	if (mode == "watch" || mode == "full") && c.Scan.Interval.Duration <= 0 {
		errs = append(errs, "scan: interval must be > 0 for mode "+c.Mode)
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	if mode == "server" || mode == "full" {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server: rate_limit must be >= 0")
		}
		if c.Server.RateLimit > 0 && c.Server.RateWindow.Duration <= 0 {
			errs = append(errs, "server: rate_window must be > 0 when rate_limit is set")
		}
	}

	if (c.Notify.TelegramToken == "") != (c.Notify.TelegramChatID == "") {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
