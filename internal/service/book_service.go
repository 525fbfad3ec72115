package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/marketfocus/internal/domain"
)

// defaultPriceConcurrency bounds parallel CLOB lookups in GetPrices.
const defaultPriceConcurrency = 8

// OrderBookClient is the subset of the CLOB client BookService needs.
type OrderBookClient interface {
	GetOrderBook(ctx context.Context, tokenID string) (domain.OrderBook, error)
	GetOrderBooks(ctx context.Context, tokenIDs []string) ([]domain.OrderBook, error)
	GetMidpoint(ctx context.Context, tokenID string) (float64, error)
	GetPrice(ctx context.Context, tokenID string, side domain.Side) (float64, error)
}

// BookService answers order-book queries keyed by token id. Book lookups
// return errors; price lookups degrade to nil and log the failure.
type BookService struct {
	clob        OrderBookClient
	concurrency int
	logger      *slog.Logger
}

// NewBookService creates a BookService. concurrency <= 0 uses the default.
func NewBookService(clob OrderBookClient, concurrency int, logger *slog.Logger) *BookService {
	if concurrency <= 0 {
		concurrency = defaultPriceConcurrency
	}
	return &BookService{
		clob:        clob,
		concurrency: concurrency,
		logger:      logger.With(slog.String("component", "book_service")),
	}
}

// GetOrderBook returns the order book for tokenID.
func (s *BookService) GetOrderBook(ctx context.Context, tokenID string) (domain.OrderBook, error) {
	if tokenID == "" {
		return domain.OrderBook{}, fmt.Errorf("book_service: get order book: %w: empty token id", domain.ErrInvalidRequest)
	}
	book, err := s.clob.GetOrderBook(ctx, tokenID)
	if err != nil {
		return domain.OrderBook{}, fmt.Errorf("book_service: get order book: %w", err)
	}
	return book, nil
}

// GetOrderBooks returns the order books for tokenIDs in one upstream call.
func (s *BookService) GetOrderBooks(ctx context.Context, tokenIDs []string) ([]domain.OrderBook, error) {
	if len(tokenIDs) == 0 {
		return []domain.OrderBook{}, nil
	}
	books, err := s.clob.GetOrderBooks(ctx, tokenIDs)
	if err != nil {
		return nil, fmt.Errorf("book_service: get order books: %w", err)
	}
	return books, nil
}

// GetMidpoint returns the midpoint price, or nil when the lookup fails.
func (s *BookService) GetMidpoint(ctx context.Context, tokenID string) *float64 {
	mid, err := s.clob.GetMidpoint(ctx, tokenID)
	if err != nil {
		s.logger.WarnContext(ctx, "midpoint lookup failed",
			slog.String("token_id", tokenID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return &mid
}

// GetPrice returns the price on side, or nil when the lookup fails.
func (s *BookService) GetPrice(ctx context.Context, tokenID string, side domain.Side) *float64 {
	price, err := s.clob.GetPrice(ctx, tokenID, side)
	if err != nil {
		s.logger.WarnContext(ctx, "price lookup failed",
			slog.String("token_id", tokenID),
			slog.String("side", string(side)),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return &price
}

// GetBestBidAsk returns the BUY-side price as bid and the SELL-side price as
// ask. Each side degrades to nil independently.
func (s *BookService) GetBestBidAsk(ctx context.Context, tokenID string) domain.BidAsk {
	var out domain.BidAsk
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.Bid = s.GetPrice(gctx, tokenID, domain.SideBuy)
		return nil
	})
	g.Go(func() error {
		out.Ask = s.GetPrice(gctx, tokenID, domain.SideSell)
		return nil
	})
	_ = g.Wait()
	return out
}

// GetPrices resolves every request independently and in parallel. Results
// keep request order; a failed lookup or an unknown side yields a nil price.
func (s *BookService) GetPrices(ctx context.Context, reqs []domain.PriceRequest) []domain.PriceResult {
	results := make([]domain.PriceResult, len(reqs))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, req := range reqs {
		results[i] = domain.PriceResult{TokenID: req.TokenID, Side: req.Side}

		side, ok := domain.ParseSide(req.Side)
		if !ok || req.TokenID == "" {
			s.logger.WarnContext(ctx, "skipping malformed price request",
				slog.String("token_id", req.TokenID),
				slog.String("side", req.Side),
			)
			continue
		}

		g.Go(func() error {
			results[i].Price = s.GetPrice(ctx, req.TokenID, side)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
