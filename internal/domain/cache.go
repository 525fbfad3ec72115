package domain

import (
	"context"
	"time"
)

// ListingCache holds the most recently fetched listing set so repeated reads
// within one cycle do not hit the Gamma API again.
type ListingCache interface {
	SetListing(ctx context.Context, markets []RawMarket, ttl time.Duration) error
	// GetListing returns ErrNotFound when nothing is cached or the entry expired.
	GetListing(ctx context.Context) ([]RawMarket, error)
	Invalidate(ctx context.Context) error
}

// RateLimiter provides distributed rate limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
