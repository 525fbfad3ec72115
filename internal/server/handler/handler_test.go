package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alanyoungcy/marketfocus/internal/domain"
	"github.com/alanyoungcy/marketfocus/internal/market"
	"github.com/alanyoungcy/marketfocus/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeBooks struct {
	bookErr error
	prices  map[string]float64
}

func (f *fakeBooks) GetOrderBook(_ context.Context, tokenID string) (domain.OrderBook, error) {
	if f.bookErr != nil {
		return domain.OrderBook{}, f.bookErr
	}
	return domain.OrderBook{AssetID: tokenID, Bids: []domain.PriceLevel{{Price: "0.4", Size: "10"}}}, nil
}

func (f *fakeBooks) GetOrderBooks(_ context.Context, tokenIDs []string) ([]domain.OrderBook, error) {
	out := make([]domain.OrderBook, len(tokenIDs))
	for i, id := range tokenIDs {
		out[i] = domain.OrderBook{AssetID: id}
	}
	return out, f.bookErr
}

func (f *fakeBooks) GetMidpoint(_ context.Context, tokenID string) *float64 {
	if p, ok := f.prices[tokenID+"/MID"]; ok {
		return &p
	}
	return nil
}

func (f *fakeBooks) GetBestBidAsk(ctx context.Context, tokenID string) domain.BidAsk {
	return domain.BidAsk{Bid: f.lookup(tokenID, "BUY"), Ask: f.lookup(tokenID, "SELL")}
}

func (f *fakeBooks) GetPrices(_ context.Context, reqs []domain.PriceRequest) []domain.PriceResult {
	out := make([]domain.PriceResult, len(reqs))
	for i, r := range reqs {
		out[i] = domain.PriceResult{TokenID: r.TokenID, Side: r.Side, Price: f.lookup(r.TokenID, r.Side)}
	}
	return out
}

func (f *fakeBooks) lookup(tokenID, side string) *float64 {
	if p, ok := f.prices[tokenID+"/"+side]; ok {
		return &p
	}
	return nil
}

func serve(h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	rec := serve(NewHealthHandler().HealthCheck, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"status":"healthy"}` {
		t.Errorf("body = %s", got)
	}
}

func TestGetOrderBook(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		bookErr  error
		want     int
		wantBody string
	}{
		{name: "ok", target: "/book?token_id=T1", want: http.StatusOK, wantBody: `"asset_id":"T1"`},
		{name: "missing token", target: "/book", want: http.StatusBadRequest, wantBody: `{"error":"token_id is required"}`},
		{name: "blank token", target: "/book?token_id=%20", want: http.StatusBadRequest, wantBody: "token_id is required"},
		{name: "upstream failure", target: "/book?token_id=T1", bookErr: fmt.Errorf("clob: %w", domain.ErrUpstream), want: http.StatusBadGateway, wantBody: `"error"`},
		{name: "unknown token", target: "/book?token_id=T1", bookErr: domain.ErrNotFound, want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewBookHandler(&fakeBooks{bookErr: tt.bookErr}, discardLogger())
			rec := serve(h.GetOrderBook, http.MethodGet, tt.target, "")
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want substring %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestGetOrderBooks(t *testing.T) {
	h := NewBookHandler(&fakeBooks{}, discardLogger())

	rec := serve(h.GetOrderBooks, http.MethodPost, "/books", `{"token_ids":["A","B"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var books []domain.OrderBook
	if err := json.Unmarshal(rec.Body.Bytes(), &books); err != nil || len(books) != 2 {
		t.Errorf("books = %v, %v", books, err)
	}

	rec = serve(h.GetOrderBooks, http.MethodPost, "/books", `{"token_ids":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty batch status = %d", rec.Code)
	}
}

func TestGetPrices(t *testing.T) {
	h := NewBookHandler(&fakeBooks{prices: map[string]float64{"A/BUY": 0.4}}, discardLogger())

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "empty body", body: "", want: http.StatusBadRequest},
		{name: "invalid json", body: "{", want: http.StatusBadRequest},
		{name: "no requests", body: `{"requests":[]}`, want: http.StatusBadRequest},
		{name: "ok", body: `{"requests":[{"token_id":"A","side":"BUY"},{"token_id":"B","side":"SELL"}]}`, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h.GetPrices, http.MethodPost, "/prices", tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
			if tt.want != http.StatusOK {
				return
			}
			want := `{"results":[{"token_id":"A","side":"BUY","price":0.4},{"token_id":"B","side":"SELL","price":null}]}`
			if got := strings.TrimSpace(rec.Body.String()); got != want {
				t.Errorf("body = %s, want %s", got, want)
			}
		})
	}
}

func TestGetMidpointAndBidAsk(t *testing.T) {
	h := NewBookHandler(&fakeBooks{prices: map[string]float64{
		"A/MID":  0.5,
		"A/BUY":  0.48,
		"A/SELL": 0.52,
	}}, discardLogger())

	rec := serve(h.GetMidpoint, http.MethodGet, "/midpoint?token_id=A", "")
	if got := strings.TrimSpace(rec.Body.String()); got != `{"token_id":"A","midpoint":0.5}` {
		t.Errorf("midpoint body = %s", got)
	}
	rec = serve(h.GetMidpoint, http.MethodGet, "/midpoint?token_id=Z", "")
	if got := strings.TrimSpace(rec.Body.String()); got != `{"token_id":"Z","midpoint":null}` {
		t.Errorf("missing midpoint body = %s", got)
	}

	rec = serve(h.GetBidAsk, http.MethodGet, "/bid-ask?token_id=A", "")
	if got := strings.TrimSpace(rec.Body.String()); got != `{"token_id":"A","bid":0.48,"ask":0.52}` {
		t.Errorf("bid-ask body = %s", got)
	}
	rec = serve(h.GetBidAsk, http.MethodGet, "/bid-ask", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing token status = %d", rec.Code)
	}
}

type fakeMarkets struct {
	res service.ScanResult
	err error
}

func (f *fakeMarkets) Current(context.Context) (service.ScanResult, error) {
	return f.res, f.err
}

func TestMarketHandler(t *testing.T) {
	p := 0.5
	res := service.ScanResult{
		CycleID:   "cycle-1",
		ScannedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Candidates: []domain.MarketRecord{
			{ID: "priced", YesPrice: &p, NoPrice: &p},
			{ID: "unpriced"},
		},
		Focus: []domain.MarketRecord{{ID: "priced", YesPrice: &p, NoPrice: &p}},
	}
	h := NewMarketHandler(&fakeMarkets{res: res}, discardLogger())

	decode := func(rec *httptest.ResponseRecorder) marketsResponse {
		t.Helper()
		var out marketsResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return out
	}

	got := decode(serve(h.ListCandidates, http.MethodGet, "/markets/candidates", ""))
	if got.Count != 2 || got.CycleID != "cycle-1" {
		t.Errorf("candidates = %+v", got)
	}
	got = decode(serve(h.ListCandidates, http.MethodGet, "/markets/candidates?valid_prices=true", ""))
	if got.Count != 1 || got.Markets[0].ID != "priced" {
		t.Errorf("priced candidates = %+v", got)
	}
	got = decode(serve(h.ListFocus, http.MethodGet, "/markets/focus", ""))
	if got.Count != 1 {
		t.Errorf("focus = %+v", got)
	}

	failing := NewMarketHandler(&fakeMarkets{err: fmt.Errorf("scan: %w", domain.ErrUpstream)}, discardLogger())
	if rec := serve(failing.ListFocus, http.MethodGet, "/markets/focus", ""); rec.Code != http.StatusBadGateway {
		t.Errorf("failing scan status = %d", rec.Code)
	}
}

func TestMarketHandler_NonFinitePriceListing(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	raw := func(id, prices string) domain.RawMarket {
		return domain.RawMarket{
			"id":              id,
			"question":        "Will Bitcoin close higher?",
			"category":        "Crypto",
			"endDate":         "2025-03-01T06:00:00Z",
			"enableOrderBook": true,
			"active":          true,
			"closed":          false,
			"outcomes":        `["Yes","No"]`,
			"outcomePrices":   prices,
			"clobTokenIds":    `["T1","T2"]`,
		}
	}
	records := market.NewRecords([]domain.RawMarket{
		raw("good", `["0.6","0.4"]`),
		raw("nan", `["NaN","0.4"]`),
	}, now)
	candidates := market.Candidates(records)

	h := NewMarketHandler(&fakeMarkets{res: service.ScanResult{
		CycleID:    "cycle-nan",
		ScannedAt:  now,
		Records:    records,
		Candidates: candidates,
		Focus:      market.PickFocus(candidates),
	}}, discardLogger())

	for _, target := range []string{"/markets/candidates", "/markets/focus"} {
		handle := h.ListCandidates
		if target == "/markets/focus" {
			handle = h.ListFocus
		}
		rec := serve(handle, http.MethodGet, target, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d, body = %s", target, rec.Code, rec.Body.String())
		}
		var out marketsResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s decode: %v", target, err)
		}
		if out.Count != 1 || out.Markets[0].ID != "good" {
			t.Errorf("%s markets = %+v, want only the good record", target, out.Markets)
		}
		for _, m := range out.Markets {
			if m.ID == "nan" {
				t.Errorf("%s includes the non-finite record", target)
			}
		}
	}
}

func TestWriteJSON_MarshalFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"price": math.NaN()})

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Body.String() != internalErrorBody {
		t.Errorf("body = %q", rec.Body.String())
	}
}
