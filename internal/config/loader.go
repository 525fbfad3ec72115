package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load merges the TOML file at path over Defaults and then applies
// MARKETFOCUS_* environment overrides. A missing file is not an error. The
// result is not validated; call Config.Validate.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	// A .env file is optional.
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides overwrites fields whose MARKETFOCUS_* variable is set and
// non-empty, so secrets can be injected at deploy time.
func applyEnvOverrides(cfg *Config) {
	// ── Polymarket ──
	setStr(&cfg.Polymarket.GammaHost, "MARKETFOCUS_POLYMARKET_GAMMA_HOST")
	setStr(&cfg.Polymarket.ClobHost, "MARKETFOCUS_POLYMARKET_CLOB_HOST")

	// ── Fetch ──
	setInt(&cfg.Fetch.PageLimit, "MARKETFOCUS_FETCH_PAGE_LIMIT")
	setInt(&cfg.Fetch.MaxPages, "MARKETFOCUS_FETCH_MAX_PAGES")
	setDuration(&cfg.Fetch.Timeout, "MARKETFOCUS_FETCH_TIMEOUT")
	setDuration(&cfg.Fetch.CacheTTL, "MARKETFOCUS_FETCH_CACHE_TTL")

	// ── Scan ──
	setDuration(&cfg.Scan.Interval, "MARKETFOCUS_SCAN_INTERVAL")
	setBool(&cfg.Scan.ValidPricesOnly, "MARKETFOCUS_SCAN_VALID_PRICES_ONLY")
	setBool(&cfg.Scan.ShowInvalid, "MARKETFOCUS_SCAN_SHOW_INVALID")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "MARKETFOCUS_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "MARKETFOCUS_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "MARKETFOCUS_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "MARKETFOCUS_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "MARKETFOCUS_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "MARKETFOCUS_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "MARKETFOCUS_REDIS_TLS_ENABLED")

	// ── Server ──
	setInt(&cfg.Server.Port, "MARKETFOCUS_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "MARKETFOCUS_SERVER_CORS_ORIGINS")
	setInt(&cfg.Server.RateLimit, "MARKETFOCUS_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "MARKETFOCUS_SERVER_RATE_WINDOW")
	setInt(&cfg.Server.PriceConcurrency, "MARKETFOCUS_SERVER_PRICE_CONCURRENCY")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "MARKETFOCUS_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "MARKETFOCUS_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "MARKETFOCUS_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "MARKETFOCUS_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "MARKETFOCUS_MODE")
	setStr(&cfg.LogLevel, "MARKETFOCUS_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and parses.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var cleaned []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) > 0 {
		*dst = cleaned
	}
}
