package offer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	discoveryCacheKey = "offers:discovery"
	discoveryCacheTTL = 30 * time.Second
)

// Cache is a short-TTL Redis cache for the unfiltered discovery listing,
// the hottest read path. A nil *Cache is a no-op.
type Cache struct {
	rdb *redis.Client
}

func NewCache(rdb *redis.Client) *Cache {
	if rdb == nil {
		return nil
	}
	return &Cache{rdb: rdb}
}

func (c *Cache) Get(ctx context.Context) ([]Offer, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, discoveryCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var offers []Offer
	if err := json.Unmarshal(raw, &offers); err != nil {
		return nil, false
	}
	return offers, true
}

func (c *Cache) Set(ctx context.Context, offers []Offer) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(offers)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, discoveryCacheKey, raw, discoveryCacheTTL).Err()
}

// Invalidate drops the cached listing after an offer changes.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	_ = c.rdb.Del(ctx, discoveryCacheKey).Err()
}
