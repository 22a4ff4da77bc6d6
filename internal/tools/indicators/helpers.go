package indicators

import (
	"context"

	"minerva/internal/domain/market_data"
	"minerva/internal/tools/shared"
	"minerva/pkg/errors"
)

func loadKlines(ctx context.Context, deps shared.Deps, args map[string]interface{}, defaultLimit int) ([]market_data.Kline, error) {
	if !deps.HasMarketData() {
		return nil, errors.Wrapf(errors.ErrInternal, "indicator: market data repository not configured")
	}
	symbol, _ := args["symbol"].(string)
	timeframe, _ := args["timeframe"].(string)
	if timeframe == "" {
		timeframe = "1d"
	}
	limit := parseLimit(args["limit"], defaultLimit)
	if symbol == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "indicator: symbol is required")
	}
	klines, err := deps.MarketDataRepo.GetLatestKlines(ctx, symbol, timeframe, limit)
	if err != nil {
		return nil, errors.Wrap(err, "indicator: fetch klines")
	}
	if len(klines) == 0 {
		return nil, errors.Wrapf(errors.ErrInternal, "indicator: no klines available for %s", symbol)
	}
	return klines, nil
}

func parseLimit(raw interface{}, fallback int) int {
	switch v := raw.(type) {
	case int:
		if v > 0 {
			return v
		}
	case float64:
		if int(v) > 0 {
			return int(v)
		}
	}
	return fallback
}
