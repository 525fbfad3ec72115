package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alanyoungcy/marketfocus/internal/domain"
)

// maxBatch bounds /books and /prices requests.
const maxBatch = 500

// BookService is what the book handler needs from the service layer.
type BookService interface {
	GetOrderBook(ctx context.Context, tokenID string) (domain.OrderBook, error)
	GetOrderBooks(ctx context.Context, tokenIDs []string) ([]domain.OrderBook, error)
	GetMidpoint(ctx context.Context, tokenID string) *float64
	GetBestBidAsk(ctx context.Context, tokenID string) domain.BidAsk
	GetPrices(ctx context.Context, reqs []domain.PriceRequest) []domain.PriceResult
}

// BookHandler proxies order-book queries to the CLOB.
type BookHandler struct {
	books  BookService
	logger *slog.Logger
}

func NewBookHandler(books BookService, logger *slog.Logger) *BookHandler {
	return &BookHandler{books: books, logger: logHandler(logger, "book")}
}

type pricesRequest struct {
	Requests []domain.PriceRequest `json:"requests"`
}

type pricesResponse struct {
	Results []domain.PriceResult `json:"results"`
}

type booksRequest struct {
	TokenIDs []string `json:"token_ids"`
}

type midpointResponse struct {
	TokenID  string   `json:"token_id"`
	Midpoint *float64 `json:"midpoint"`
}

type bidAskResponse struct {
	TokenID string `json:"token_id"`
	domain.BidAsk
}

// GetOrderBook returns the book for one token.
// GET /book?token_id=...
func (h *BookHandler) GetOrderBook(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := requireTokenID(w, r)
	if !ok {
		return
	}

	book, err := h.books.GetOrderBook(r.Context(), tokenID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "get order book failed",
			slog.String("token_id", tokenID),
			slog.String("error", err.Error()),
		)
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// GetOrderBooks returns books for several tokens.
// POST /books {"token_ids": [...]}
func (h *BookHandler) GetOrderBooks(w http.ResponseWriter, r *http.Request) {
	var req booksRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.TokenIDs) == 0 {
		writeError(w, http.StatusBadRequest, "token_ids is required")
		return
	}
	if len(req.TokenIDs) > maxBatch {
		writeError(w, http.StatusBadRequest, "too many token_ids")
		return
	}

	books, err := h.books.GetOrderBooks(r.Context(), req.TokenIDs)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "get order books failed",
			slog.Int("count", len(req.TokenIDs)),
			slog.String("error", err.Error()),
		)
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// GetPrices resolves a batch of token/side prices. Failed lookups come back
// with a null price rather than failing the batch.
// POST /prices {"requests": [{"token_id": "...", "side": "BUY"}]}
func (h *BookHandler) GetPrices(w http.ResponseWriter, r *http.Request) {
	var req pricesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Requests) == 0 {
		writeError(w, http.StatusBadRequest, "requests is required")
		return
	}
	if len(req.Requests) > maxBatch {
		writeError(w, http.StatusBadRequest, "too many requests")
		return
	}

	writeJSON(w, http.StatusOK, pricesResponse{Results: h.books.GetPrices(r.Context(), req.Requests)})
}

// GetMidpoint returns the midpoint, null when unavailable.
// GET /midpoint?token_id=...
func (h *BookHandler) GetMidpoint(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := requireTokenID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, midpointResponse{
		TokenID:  tokenID,
		Midpoint: h.books.GetMidpoint(r.Context(), tokenID),
	})
}

// GetBidAsk returns the best bid and ask, each null when unavailable.
// GET /bid-ask?token_id=...
func (h *BookHandler) GetBidAsk(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := requireTokenID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, bidAskResponse{
		TokenID: tokenID,
		BidAsk:  h.books.GetBestBidAsk(r.Context(), tokenID),
	})
}

func requireTokenID(w http.ResponseWriter, r *http.Request) (string, bool) {
	tokenID := strings.TrimSpace(r.URL.Query().Get("token_id"))
	if tokenID == "" {
		writeError(w, http.StatusBadRequest, "token_id is required")
		return "", false
	}
	return tokenID, true
}
