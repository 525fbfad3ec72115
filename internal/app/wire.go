package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/marketfocus/internal/cache/memory"
	"github.com/alanyoungcy/marketfocus/internal/cache/redis"
	"github.com/alanyoungcy/marketfocus/internal/config"
	"github.com/alanyoungcy/marketfocus/internal/domain"
	"github.com/alanyoungcy/marketfocus/internal/notify"
	"github.com/alanyoungcy/marketfocus/internal/platform/polymarket"
	"github.com/alanyoungcy/marketfocus/internal/service"
)

// Dependencies bundles what the modes need. It is built by Wire and torn
// down by the returned cleanup function.
type Dependencies struct {
	Gamma *polymarket.GammaClient
	Clob  *polymarket.ClobClient

	ListingCache domain.ListingCache
	// RateLimiter is nil when Redis is disabled.
	RateLimiter domain.RateLimiter

	Notifier *notify.Notifier

	Markets *service.MarketService
	Books   *service.BookService
}

// Wire builds Dependencies from cfg. Redis is only dialled when enabled.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Gamma: polymarket.NewGammaClient(cfg.Polymarket.GammaHost, cfg.Fetch.Timeout.Duration),
		Clob:  polymarket.NewClobClient(cfg.Polymarket.ClobHost, cfg.Fetch.Timeout.Duration),
	}

	// ── Caches ──
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.ListingCache = redis.NewListingCache(redisClient)
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
		logger.InfoContext(ctx, "wire: redis connected", slog.String("addr", cfg.Redis.Addr))
	} else {
		deps.ListingCache = memory.NewListingCache()
	}

	// ── Notifications ──
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// ── Services ──
	var focusNotifier service.FocusNotifier
	if deps.Notifier.Enabled() {
		focusNotifier = deps.Notifier
	}
	deps.Markets = service.NewMarketService(deps.Gamma, deps.ListingCache, focusNotifier, service.ScanConfig{
		PageLimit: cfg.Fetch.PageLimit,
		MaxPages:  cfg.Fetch.MaxPages,
		CacheTTL:  cfg.Fetch.CacheTTL.Duration,
		MaxAge:    cfg.Scan.Interval.Duration,
	}, logger)
	deps.Books = service.NewBookService(deps.Clob, cfg.Server.PriceConcurrency, logger)

	return deps, cleanup, nil
}
