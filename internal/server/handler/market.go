package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/marketfocus/internal/domain"
	"github.com/alanyoungcy/marketfocus/internal/market"
	"github.com/alanyoungcy/marketfocus/internal/service"
)

// MarketService is what the market handler needs from the service layer.
type MarketService interface {
	Current(ctx context.Context) (service.ScanResult, error)
}

// MarketHandler exposes the latest scan cycle.
type MarketHandler struct {
	markets MarketService
	logger  *slog.Logger
}

func NewMarketHandler(markets MarketService, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{markets: markets, logger: logHandler(logger, "market")}
}

type marketsResponse struct {
	CycleID   string                `json:"cycle_id"`
	ScannedAt time.Time             `json:"scanned_at"`
	Count     int                   `json:"count"`
	Markets   []domain.MarketRecord `json:"markets"`
}

// ListCandidates returns the candidate markets of the latest cycle. Pass
// valid_prices=true to drop candidates without both prices.
// GET /markets/candidates
func (h *MarketHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	res, ok := h.current(w, r)
	if !ok {
		return
	}
	records := res.Candidates
	if r.URL.Query().Get("valid_prices") == "true" {
		records = market.WithPrices(records)
	}
	writeJSON(w, http.StatusOK, newMarketsResponse(res, records))
}

// ListFocus returns the focus picks of the latest cycle.
// GET /markets/focus
func (h *MarketHandler) ListFocus(w http.ResponseWriter, r *http.Request) {
	res, ok := h.current(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newMarketsResponse(res, res.Focus))
}

func (h *MarketHandler) current(w http.ResponseWriter, r *http.Request) (service.ScanResult, bool) {
	res, err := h.markets.Current(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "scan unavailable", slog.String("error", err.Error()))
		writeError(w, statusFor(err), "market listing unavailable")
		return service.ScanResult{}, false
	}
	return res, true
}

func newMarketsResponse(res service.ScanResult, records []domain.MarketRecord) marketsResponse {
	if records == nil {
		records = []domain.MarketRecord{}
	}
	return marketsResponse{
		CycleID:   res.CycleID,
		ScannedAt: res.ScannedAt,
		Count:     len(records),
		Markets:   records,
	}
}
