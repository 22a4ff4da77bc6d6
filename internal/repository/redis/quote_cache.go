package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"minerva/internal/domain/market_data"
	"minerva/pkg/errors"
)

// DefaultQuoteTTL bounds how stale a cached quote may get before
// tools fall back to the market data provider.
const DefaultQuoteTTL = 30 * time.Second

// QuoteCache keeps the freshest quote per symbol in Redis so agent tools
// avoid hammering the upstream provider during fan-out runs.
type QuoteCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewQuoteCache creates a quote cache with the default TTL
func NewQuoteCache(client *redis.Client) *QuoteCache {
	return &QuoteCache{
		client: client,
		ttl:    DefaultQuoteTTL,
	}
}

// WithTTL overrides the cache TTL
func (c *QuoteCache) WithTTL(ttl time.Duration) *QuoteCache {
	c.ttl = ttl
	return c
}

// Get retrieves a cached quote by symbol
func (c *QuoteCache) Get(ctx context.Context, symbol string) (*market_data.Quote, error) {
	key := c.key(symbol)

	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "quote not cached for symbol=%s", symbol)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get quote from redis: symbol=%s", symbol)
	}

	var quote market_data.Quote
	if err := json.Unmarshal([]byte(data), &quote); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal cached quote: symbol=%s", symbol)
	}

	return &quote, nil
}

// Set stores a quote with the cache TTL
func (c *QuoteCache) Set(ctx context.Context, quote *market_data.Quote) error {
	key := c.key(quote.Symbol)

	data, err := json.Marshal(quote)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal quote: symbol=%s", quote.Symbol)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return errors.Wrapf(err, "failed to cache quote: symbol=%s", quote.Symbol)
	}

	return nil
}

// SetMany stores a batch of quotes
func (c *QuoteCache) SetMany(ctx context.Context, quotes []market_data.Quote) error {
	for i := range quotes {
		if err := c.Set(ctx, &quotes[i]); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a cached quote
func (c *QuoteCache) Delete(ctx context.Context, symbol string) error {
	if err := c.client.Del(ctx, c.key(symbol)).Err(); err != nil {
		return errors.Wrapf(err, "failed to delete cached quote: symbol=%s", symbol)
	}
	return nil
}

func (c *QuoteCache) key(symbol string) string {
	return fmt.Sprintf("quote:%s", symbol)
}
