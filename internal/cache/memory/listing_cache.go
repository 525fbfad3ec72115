// Package memory provides an in-process domain.ListingCache used when Redis
// is not configured.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alanyoungcy/marketfocus/internal/domain"
)

// ListingCache keeps one listing in memory until its TTL passes.
type ListingCache struct {
	mu        sync.RWMutex
	markets   []domain.RawMarket
	expiresAt time.Time // zero means no expiry
	present   bool
	now       func() time.Time
}

// NewListingCache returns an empty cache.
func NewListingCache() *ListingCache {
	return &ListingCache{now: time.Now}
}

func (c *ListingCache) SetListing(_ context.Context, markets []domain.RawMarket, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.markets = markets
	c.present = true
	c.expiresAt = time.Time{}
	if ttl > 0 {
		c.expiresAt = c.now().Add(ttl)
	}
	return nil
}

func (c *ListingCache) GetListing(_ context.Context) ([]domain.RawMarket, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.present || (!c.expiresAt.IsZero() && !c.now().Before(c.expiresAt)) {
		return nil, fmt.Errorf("memory: get listing: %w", domain.ErrNotFound)
	}
	return c.markets, nil
}

func (c *ListingCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.markets = nil
	c.present = false
	return nil
}

var _ domain.ListingCache = (*ListingCache)(nil)
