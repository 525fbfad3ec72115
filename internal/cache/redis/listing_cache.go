package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/marketfocus/internal/domain"
)

// ListingCache implements domain.ListingCache with a single JSON string key.
//
// Key schema:
//
//	marketfocus:listing - JSON array of raw Gamma listings
type ListingCache struct {
	rdb *redis.Client
}

// NewListingCache creates a ListingCache backed by the given Client.
func NewListingCache(c *Client) *ListingCache {
	return &ListingCache{rdb: c.Underlying()}
}

func listingKey() string { return keyPrefix + "listing" }

// SetListing stores the listing with the given TTL. A zero TTL keeps the
// entry until it is invalidated.
func (lc *ListingCache) SetListing(ctx context.Context, markets []domain.RawMarket, ttl time.Duration) error {
	data, err := encodeListing(markets)
	if err != nil {
		return fmt.Errorf("redis: set listing: %w", err)
	}
	if err := lc.rdb.Set(ctx, listingKey(), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set listing: %w", err)
	}
	return nil
}

// GetListing returns domain.ErrNotFound when the key is absent or expired.
func (lc *ListingCache) GetListing(ctx context.Context) ([]domain.RawMarket, error) {
	data, err := lc.rdb.Get(ctx, listingKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis: get listing: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get listing: %w", err)
	}

	markets, err := decodeListing(data)
	if err != nil {
		return nil, fmt.Errorf("redis: decode listing: %w", err)
	}
	return markets, nil
}

// Invalidate drops the cached listing.
func (lc *ListingCache) Invalidate(ctx context.Context) error {
	if err := lc.rdb.Del(ctx, listingKey()).Err(); err != nil {
		return fmt.Errorf("redis: invalidate listing: %w", err)
	}
	return nil
}

func encodeListing(markets []domain.RawMarket) ([]byte, error) {
	if markets == nil {
		markets = []domain.RawMarket{}
	}
	return json.Marshal(markets)
}

// decodeListing keeps numbers as json.Number, matching how the Gamma client
// decodes the same payload.
func decodeListing(data []byte) ([]domain.RawMarket, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var markets []domain.RawMarket
	if err := dec.Decode(&markets); err != nil {
		return nil, err
	}
	return markets, nil
}

// Compile-time interface check.
var _ domain.ListingCache = (*ListingCache)(nil)
