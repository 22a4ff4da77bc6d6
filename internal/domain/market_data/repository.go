package market_data

import (
	"context"
)

// Repository defines the interface for market data access (ClickHouse)
type Repository interface {
	// Quote operations
	InsertQuotes(ctx context.Context, quotes []Quote) error
	GetLatestQuote(ctx context.Context, symbol string) (*Quote, error)

	// Kline operations
	InsertKlines(ctx context.Context, klines []Kline) error
	GetKlines(ctx context.Context, query KlineQuery) ([]Kline, error)
	GetLatestKlines(ctx context.Context, symbol, timeframe string, limit int) ([]Kline, error)

	// Index operations
	InsertIndexSnapshots(ctx context.Context, snapshots []IndexSnapshot) error
	GetLatestIndexSnapshots(ctx context.Context) ([]IndexSnapshot, error)
}

// Provider fetches market data from an upstream source
type Provider interface {
	FetchQuote(ctx context.Context, symbol string) (*Quote, error)
	FetchKlines(ctx context.Context, symbol, timeframe string, limit int) ([]Kline, error)
	FetchIndexSnapshots(ctx context.Context) ([]IndexSnapshot, error)
}
