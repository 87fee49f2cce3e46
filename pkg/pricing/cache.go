package pricing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"ordersvc/pkg/order"
)

// CachedClient decorates a pricing client with a Redis quote cache.
// Quotes are immutable for a pending order, so a short TTL only bounds
// memory, not staleness. Cache failures are ignored: a missing or
// broken cache degrades to an upstream call.
type CachedClient struct {
	next  order.PricingClient
	redis *redis.Client
	ttl   time.Duration
}

// NewCachedClient wraps next with a quote cache.
func NewCachedClient(next order.PricingClient, rc *redis.Client, ttl time.Duration) *CachedClient {
	return &CachedClient{next: next, redis: rc, ttl: ttl}
}

// Quote returns the cached quote when present, otherwise asks the
// wrapped client and caches its answer.
func (c *CachedClient) Quote(ctx context.Context, orderID string) (order.PriceQuote, error) {
	key := "quote:" + orderID
	if data, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var q order.PriceQuote
		if err := json.Unmarshal(data, &q); err == nil {
			return q, nil
		}
	}

	q, err := c.next.Quote(ctx, orderID)
	if err != nil {
		return order.PriceQuote{}, err
	}
	if data, err := json.Marshal(q); err == nil {
		c.redis.Set(ctx, key, data, c.ttl)
	}
	return q, nil
}
