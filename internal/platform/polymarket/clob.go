package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/marketfocus/internal/domain"
)

// DefaultClobHost is the public CLOB API root.
const DefaultClobHost = "https://clob.polymarket.com"

// ClobClient is the REST client for the public, unauthenticated part of the
// Polymarket CLOB (Central Limit Order Book) API.
type ClobClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewClobClient creates a new CLOB REST client.
//
// baseURL is the CLOB API root, e.g. "https://clob.polymarket.com".
func NewClobClient(baseURL string, timeout time.Duration) *ClobClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ClobClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetOrderBook returns the order book summary for one token.
func (c *ClobClient) GetOrderBook(ctx context.Context, tokenID string) (domain.OrderBook, error) {
	body, err := c.doGet(ctx, "/book", url.Values{"token_id": {tokenID}})
	if err != nil {
		return domain.OrderBook{}, fmt.Errorf("polymarket/clob: get book %s: %w", tokenID, err)
	}

	var book APIOrderBook
	if err := json.Unmarshal(body, &book); err != nil {
		return domain.OrderBook{}, fmt.Errorf("polymarket/clob: decode book: %w", err)
	}
	return book.ToDomain(), nil
}

// GetOrderBooks returns the order books for several tokens in one call.
func (c *ClobClient) GetOrderBooks(ctx context.Context, tokenIDs []string) ([]domain.OrderBook, error) {
	params := make([]BookParam, 0, len(tokenIDs))
	for _, id := range tokenIDs {
		params = append(params, BookParam{TokenID: id})
	}

	body, err := doRequest(ctx, c.httpClient, http.MethodPost, c.baseURL+"/books", params)
	if err != nil {
		return nil, fmt.Errorf("polymarket/clob: get books: %w", err)
	}

	var books []APIOrderBook
	if err := json.Unmarshal(body, &books); err != nil {
		return nil, fmt.Errorf("polymarket/clob: decode books: %w", err)
	}

	out := make([]domain.OrderBook, 0, len(books))
	for i := range books {
		out = append(out, books[i].ToDomain())
	}
	return out, nil
}

// GetMidpoint returns the midpoint between best bid and best ask.
func (c *ClobClient) GetMidpoint(ctx context.Context, tokenID string) (float64, error) {
	body, err := c.doGet(ctx, "/midpoint", url.Values{"token_id": {tokenID}})
	if err != nil {
		return 0, fmt.Errorf("polymarket/clob: get midpoint %s: %w", tokenID, err)
	}

	var resp APIMidpoint
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("polymarket/clob: decode midpoint: %w", err)
	}
	mid, err := parseDecimal(resp.Mid)
	if err != nil {
		return 0, fmt.Errorf("polymarket/clob: parse midpoint: %w", err)
	}
	return mid, nil
}

// GetPrice returns the best price available to a taker on the given side.
func (c *ClobClient) GetPrice(ctx context.Context, tokenID string, side domain.Side) (float64, error) {
	q := url.Values{"token_id": {tokenID}, "side": {string(side)}}
	body, err := c.doGet(ctx, "/price", q)
	if err != nil {
		return 0, fmt.Errorf("polymarket/clob: get price %s %s: %w", tokenID, side, err)
	}

	var resp APIPrice
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("polymarket/clob: decode price: %w", err)
	}
	price, err := parseDecimal(resp.Price)
	if err != nil {
		return 0, fmt.Errorf("polymarket/clob: parse price: %w", err)
	}
	return price, nil
}

func (c *ClobClient) doGet(ctx context.Context, path string, q url.Values) ([]byte, error) {
	return doRequest(ctx, c.httpClient, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
}

// parseDecimal accepts the CLOB's string-or-number price encoding.
func parseDecimal(n flexNumber) (float64, error) {
	if n == "" {
		return 0, fmt.Errorf("%w: empty value", domain.ErrUpstream)
	}
	d, err := decimal.NewFromString(string(n))
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}
