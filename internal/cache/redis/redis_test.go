package redis

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/alanyoungcy/marketfocus/internal/domain"
)

func TestListingEncoding_KeepsLargeNumbers(t *testing.T) {
	in := []domain.RawMarket{{
		"id":           json.Number("83955612885151370769947492812886282601680164705864046042194488203730621200472"),
		"clobTokenIds": `["1","2"]`,
		"active":       true,
	}}

	data, err := encodeListing(in)
	if err != nil {
		t.Fatalf("encodeListing() error = %v", err)
	}
	out, err := decodeListing(data)
	if err != nil {
		t.Fatalf("decodeListing() error = %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("len = %d, want 1", len(out))
	}
	if got := out[0]["id"]; got != in[0]["id"] {
		t.Errorf("id = %v (%T), want %v", got, got, in[0]["id"])
	}
}

func TestEncodeListing_NilIsEmptyArray(t *testing.T) {
	data, err := encodeListing(nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Errorf("encodeListing(nil) = %s, want []", data)
	}
}

func TestKeys(t *testing.T) {
	if got := listingKey(); got != "marketfocus:listing" {
		t.Errorf("listingKey() = %s", got)
	}
	if got := rateLimitKey("1.2.3.4"); got != "marketfocus:ratelimit:1.2.3.4" {
		t.Errorf("rateLimitKey() = %s", got)
	}
}

// newLiveClient connects to MARKETFOCUS_TEST_REDIS_ADDR or skips.
func newLiveClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("MARKETFOCUS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MARKETFOCUS_TEST_REDIS_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := New(ctx, ClientConfig{Addr: addr, DB: 15})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestListingCache_Integration(t *testing.T) {
	c := newLiveClient(t)
	ctx := context.Background()
	cache := NewListingCache(c)

	_ = cache.Invalidate(ctx)
	if _, err := cache.GetListing(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("empty GetListing() error = %v, want ErrNotFound", err)
	}

	in := []domain.RawMarket{{"id": "1"}, {"id": "2"}}
	if err := cache.SetListing(ctx, in, time.Minute); err != nil {
		t.Fatalf("SetListing() error = %v", err)
	}
	out, err := cache.GetListing(ctx)
	if err != nil || len(out) != 2 {
		t.Fatalf("GetListing() = %v, %v", out, err)
	}

	if err := cache.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.GetListing(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetListing() after invalidate error = %v", err)
	}
}

func TestRateLimiter_Integration(t *testing.T) {
	c := newLiveClient(t)
	ctx := context.Background()
	rl := NewRateLimiter(c)
	key := "test-" + time.Now().Format(time.RFC3339Nano)

	for i := range 3 {
		ok, err := rl.Allow(ctx, key, 3, time.Minute)
		if err != nil || !ok {
			t.Fatalf("request %d: Allow() = %v, %v", i, ok, err)
		}
	}
	ok, err := rl.Allow(ctx, key, 3, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("fourth request allowed, want rejected")
	}
}
