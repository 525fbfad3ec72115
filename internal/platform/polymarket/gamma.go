package polymarket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alanyoungcy/marketfocus/internal/domain"
)

// DefaultGammaHost is the public Gamma API root.
const DefaultGammaHost = "https://gamma-api.polymarket.com"

// GammaClient is the REST client for the Polymarket Gamma API, which
// provides market discovery and metadata.
type GammaClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGammaClient creates a new Gamma API client.
//
// baseURL is the Gamma API root, e.g. "https://gamma-api.polymarket.com".
// timeout bounds each request; zero falls back to 10 seconds.
func NewGammaClient(baseURL string, timeout time.Duration) *GammaClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GammaClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// PageOptions controls a single /markets call. Zero values are omitted from
// the query so the upstream defaults apply.
type PageOptions struct {
	Limit  int
	Offset int
}

func (o PageOptions) query() string {
	params := url.Values{}
	if o.Limit > 0 {
		params.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		params.Set("offset", strconv.Itoa(o.Offset))
	}
	if len(params) == 0 {
		return ""
	}
	return "?" + params.Encode()
}

// FetchMarkets returns one page of raw listings. A JSON body that is not an
// array is treated as an empty page.
func (g *GammaClient) FetchMarkets(ctx context.Context, opts PageOptions) ([]domain.RawMarket, error) {
	body, err := g.doGet(ctx, "/markets"+opts.query())
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: fetch markets: %w", err)
	}

	markets, err := decodeListing(body)
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: decode markets: %w", err)
	}
	return markets, nil
}

// FetchAll pages through /markets with the given page size until an empty
// page or maxPages pages have been read. maxPages <= 0 means a single page.
func (g *GammaClient) FetchAll(ctx context.Context, limit, maxPages int) ([]domain.RawMarket, error) {
	if maxPages <= 0 {
		maxPages = 1
	}

	var all []domain.RawMarket
	offset := 0
	for page := 0; page < maxPages; page++ {
		batch, err := g.FetchMarkets(ctx, PageOptions{Limit: limit, Offset: offset})
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
		// Without a page size there is no way to advance.
		if limit <= 0 {
			break
		}
		offset += limit
	}
	return all, nil
}

// decodeListing keeps numbers as json.Number so long token ids survive.
func decodeListing(body []byte) ([]domain.RawMarket, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	items, ok := v.([]any)
	if !ok {
		return nil, nil
	}

	out := make([]domain.RawMarket, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, domain.RawMarket(m))
		}
	}
	return out, nil
}

// doGet sends an unauthenticated GET request to the Gamma API.
func (g *GammaClient) doGet(ctx context.Context, path string) ([]byte, error) {
	return doRequest(ctx, g.httpClient, http.MethodGet, g.baseURL+path, nil)
}

// doRequest sends a request and returns the body of a 2xx response.
func doRequest(ctx context.Context, client *http.Client, method, rawURL string, payload any) ([]byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}

// checkHTTPStatus maps non-2xx status codes to domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("%w: HTTP %d: %s", domain.ErrUpstream, statusCode, bodyStr)
	}
}
