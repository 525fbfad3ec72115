package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/alanyoungcy/marketfocus/internal/domain"
	"github.com/alanyoungcy/marketfocus/internal/market"
)

// EventFocusChanged is the notification event emitted when the focus picks
// differ from the previous cycle.
const EventFocusChanged = "focus_changed"

// ListingFetcher pages through the Gamma market listing.
type ListingFetcher interface {
	FetchAll(ctx context.Context, limit, maxPages int) ([]domain.RawMarket, error)
}

// FocusNotifier is notified when the focus picks change.
type FocusNotifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// ScanConfig controls a scan cycle.
type ScanConfig struct {
	PageLimit int
	MaxPages  int
	// CacheTTL is how long a fetched listing is reused. Zero disables the
	// listing cache.
	CacheTTL time.Duration
	// MaxAge is how old the latest result may get before Current rescans.
	// Zero means defaultMaxAge.
	MaxAge time.Duration
}

// defaultMaxAge bounds how long Current serves one cycle.
const defaultMaxAge = time.Minute

// currentKey is the singleflight key shared by concurrent lazy scans.
const currentKey = "current"

// ScanResult is the output of one scan cycle.
type ScanResult struct {
	CycleID    string                `json:"cycle_id"`
	ScannedAt  time.Time             `json:"scanned_at"`
	Records    []domain.MarketRecord `json:"-"`
	Candidates []domain.MarketRecord `json:"candidates"`
	Focus      []domain.MarketRecord `json:"focus"`
}

// Invalid counts records that did not parse as a binary YES/NO market.
func (r ScanResult) Invalid() int {
	n := 0
	for _, rec := range r.Records {
		if !rec.Valid() {
			n++
		}
	}
	return n
}

// MarketService runs the fetch, normalize, filter and focus cycle and keeps
// the latest result for readers.
type MarketService struct {
	fetcher  ListingFetcher
	cache    domain.ListingCache
	notifier FocusNotifier
	cfg      ScanConfig
	logger   *slog.Logger
	now      func() time.Time

	mu     sync.RWMutex
	latest *ScanResult

	scans singleflight.Group
}

// NewMarketService creates a MarketService. cache and notifier may be nil.
func NewMarketService(
	fetcher ListingFetcher,
	cache domain.ListingCache,
	notifier FocusNotifier,
	cfg ScanConfig,
	logger *slog.Logger,
) *MarketService {
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = defaultMaxAge
	}
	return &MarketService{
		fetcher:  fetcher,
		cache:    cache,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "market_service")),
		now:      time.Now,
	}
}

// Scan runs one cycle. A listing fetch failure aborts the cycle and leaves
// the previous result in place; malformed listings never do.
func (s *MarketService) Scan(ctx context.Context) (ScanResult, error) {
	cycleID := uuid.NewString()
	logger := s.logger.With(slog.String("cycle_id", cycleID))
	start := s.now()

	raws, err := s.listing(ctx, logger)
	if err != nil {
		return ScanResult{}, fmt.Errorf("market_service: scan: %w", err)
	}

	now := s.now()
	records := market.NewRecords(raws, now)
	candidates := market.Candidates(records)
	focus := market.PickFocus(candidates)

	res := ScanResult{
		CycleID:    cycleID,
		ScannedAt:  now,
		Records:    records,
		Candidates: candidates,
		Focus:      focus,
	}

	s.mu.Lock()
	prev := s.latest
	s.latest = &res
	s.mu.Unlock()

	logger.InfoContext(ctx, "scan complete",
		slog.Int("fetched", len(records)),
		slog.Int("invalid", res.Invalid()),
		slog.Int("candidates", len(candidates)),
		slog.Int("focus", len(focus)),
		slog.Duration("elapsed", s.now().Sub(start)),
	)

	if prev != nil && !sameFocus(prev.Focus, focus) {
		s.notifyFocus(ctx, logger, focus)
	}

	return res, nil
}

// Latest returns the most recent successful scan, if any.
func (s *MarketService) Latest() (ScanResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return ScanResult{}, false
	}
	return *s.latest, true
}

// Current returns the latest scan while it is younger than MaxAge and scans
// otherwise. Concurrent callers share one scan.
func (s *MarketService) Current(ctx context.Context) (ScanResult, error) {
	if res, ok := s.fresh(); ok {
		return res, nil
	}

	// The shared scan must outlive any single caller's request.
	scanCtx := context.WithoutCancel(ctx)
	v, err, _ := s.scans.Do(currentKey, func() (any, error) {
		if res, ok := s.fresh(); ok {
			return res, nil
		}
		return s.Scan(scanCtx)
	})
	if err != nil {
		return ScanResult{}, err
	}
	return v.(ScanResult), nil
}

func (s *MarketService) fresh() (ScanResult, bool) {
	res, ok := s.Latest()
	if !ok || s.now().Sub(res.ScannedAt) >= s.cfg.MaxAge {
		return ScanResult{}, false
	}
	return res, true
}

// RunLoop scans on a repeating interval until the context is cancelled.
// Failed cycles are logged and retried on the next tick. onScan, when set,
// receives every successful result.
func (s *MarketService) RunLoop(ctx context.Context, interval time.Duration, onScan func(ScanResult)) error {
	scan := func() {
		res, err := s.Scan(ctx)
		if err != nil {
			s.logger.Error("scan failed", slog.String("error", err.Error()))
			return
		}
		if onScan != nil {
			onScan(res)
		}
	}

	scan()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scan loop stopped")
			return ctx.Err()
		case <-ticker.C:
			scan()
		}
	}
}

func (s *MarketService) listing(ctx context.Context, logger *slog.Logger) ([]domain.RawMarket, error) {
	useCache := s.cache != nil && s.cfg.CacheTTL > 0

	if useCache {
		raws, err := s.cache.GetListing(ctx)
		switch {
		case err == nil:
			logger.DebugContext(ctx, "listing served from cache", slog.Int("count", len(raws)))
			return raws, nil
		case !errors.Is(err, domain.ErrNotFound):
			// A broken cache must not stop the scan. Drop the unreadable
			// entry so a failed write below cannot leave it in place.
			logger.WarnContext(ctx, "listing cache read failed", slog.String("error", err.Error()))
			if err := s.cache.Invalidate(ctx); err != nil {
				logger.WarnContext(ctx, "listing cache invalidate failed", slog.String("error", err.Error()))
			}
		}
	}

	raws, err := s.fetcher.FetchAll(ctx, s.cfg.PageLimit, s.cfg.MaxPages)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}

	if useCache {
		if err := s.cache.SetListing(ctx, raws, s.cfg.CacheTTL); err != nil {
			logger.WarnContext(ctx, "listing cache write failed", slog.String("error", err.Error()))
		}
	}
	return raws, nil
}

func (s *MarketService) notifyFocus(ctx context.Context, logger *slog.Logger, focus []domain.MarketRecord) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, EventFocusChanged, "Focus markets changed", FocusSummary(focus)); err != nil {
		logger.WarnContext(ctx, "focus notification failed", slog.String("error", err.Error()))
	}
}

// FocusSummary renders focus picks one per line for notifications.
func FocusSummary(focus []domain.MarketRecord) string {
	if len(focus) == 0 {
		return "no focus markets"
	}
	lines := make([]string, 0, len(focus))
	for _, r := range focus {
		line := r.DisplayID()
		if r.Question != "" {
			line += ": " + r.Question
		}
		if r.HasPrices() {
			line += fmt.Sprintf(" (YES %.3f / NO %.3f)", *r.YesPrice, *r.NoPrice)
		}
		if r.HoursToClose != nil {
			line += fmt.Sprintf(", closes in %.2fh", *r.HoursToClose)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func sameFocus(a, b []domain.MarketRecord) bool {
	return slices.EqualFunc(a, b, func(x, y domain.MarketRecord) bool {
		return x.ID == y.ID
	})
}
