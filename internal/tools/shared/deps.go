package shared

import (
	"context"
	"time"

	"minerva/internal/domain/market_data"
	"minerva/internal/domain/stats"
	"minerva/pkg/logger"
)

// RedisClient interface to avoid circular dependency
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Deps bundles dependencies required by concrete tool implementations
type Deps struct {
	MarketDataRepo market_data.Repository
	MarketProvider market_data.Provider
	StatsRepo      stats.Repository
	Redis          RedisClient
	Log            *logger.Logger
}

// HasMarketData reports whether the market data repository is available
func (d Deps) HasMarketData() bool {
	return d.MarketDataRepo != nil
}

// HasProvider reports whether the upstream market data provider is wired
func (d Deps) HasProvider() bool {
	return d.MarketProvider != nil
}
