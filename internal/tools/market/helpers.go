package market

import (
	"context"

	"minerva/internal/domain/market_data"
	"minerva/internal/tools/shared"
	"minerva/pkg/errors"
)

// loadQuote reads the latest quote from storage, falling back to the
// upstream provider when storage has no data for the symbol.
func loadQuote(ctx context.Context, deps shared.Deps, symbol string) (*market_data.Quote, error) {
	if deps.HasMarketData() {
		quote, err := deps.MarketDataRepo.GetLatestQuote(ctx, symbol)
		if err == nil && quote != nil {
			return quote, nil
		}
		if err != nil && !errors.Is(err, errors.ErrNotFound) {
			return nil, errors.Wrap(err, "get quote")
		}
	}

	if deps.HasProvider() {
		quote, err := deps.MarketProvider.FetchQuote(ctx, symbol)
		if err != nil {
			return nil, errors.Wrap(err, "fetch quote from provider")
		}
		return quote, nil
	}

	return nil, errors.Wrapf(errors.ErrNotFound, "no quote available for %s", symbol)
}

// loadKlines reads candles from storage with provider fallback.
func loadKlines(ctx context.Context, deps shared.Deps, symbol, timeframe string, limit int) ([]market_data.Kline, error) {
	if deps.HasMarketData() {
		klines, err := deps.MarketDataRepo.GetLatestKlines(ctx, symbol, timeframe, limit)
		if err == nil && len(klines) > 0 {
			return klines, nil
		}
		if err != nil && !errors.Is(err, errors.ErrNotFound) {
			return nil, errors.Wrap(err, "get klines")
		}
	}

	if deps.HasProvider() {
		klines, err := deps.MarketProvider.FetchKlines(ctx, symbol, timeframe, limit)
		if err != nil {
			return nil, errors.Wrap(err, "fetch klines from provider")
		}
		return klines, nil
	}

	return nil, errors.Wrapf(errors.ErrNotFound, "no klines available for %s", symbol)
}
