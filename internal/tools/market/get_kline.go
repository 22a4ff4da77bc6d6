package market

import (
	"context"
	"time"

	"minerva/internal/tools"
	"minerva/internal/tools/shared"
	"minerva/pkg/errors"
)

// NewGetKlineTool returns a tool that retrieves historical candles.
func NewGetKlineTool(deps shared.Deps) tools.Tool {
	meta := tools.Metadata{
		Name:        "get_kline",
		Description: "Retrieve historical candlestick data for a stock",
		Category:    tools.CategoryMarketData,
		Version:     "1.0",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"symbol":    map[string]interface{}{"type": "string", "description": "Stock symbol, e.g. 600519"},
				"timeframe": map[string]interface{}{"type": "string", "description": "Candle timeframe (1m, 5m, 15m, 1h, 1d), default 1d"},
				"limit":     map[string]interface{}{"type": "integer", "description": "Number of candles, default 30"},
			},
			"required": []string{"symbol"},
		},
	}

	return shared.NewToolBuilder(meta,
		func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
			symbol, _ := args["symbol"].(string)
			if symbol == "" {
				return nil, errors.Wrap(errors.ErrInvalidInput, "get_kline: symbol is required")
			}
			timeframe, _ := args["timeframe"].(string)
			if timeframe == "" {
				timeframe = "1d"
			}
			limit := 30
			if v, ok := args["limit"].(float64); ok && int(v) > 0 {
				limit = int(v)
			}

			deps.Log.Debug("Tool: get_kline called", "symbol", symbol, "timeframe", timeframe, "limit", limit)

			klines, err := loadKlines(ctx, deps, symbol, timeframe, limit)
			if err != nil {
				deps.Log.Error("Tool: get_kline failed", "symbol", symbol, "error", err)
				return nil, err
			}

			items := make([]map[string]interface{}, 0, len(klines))
			for _, k := range klines {
				items = append(items, map[string]interface{}{
					"open_time": k.OpenTime.Format(time.RFC3339),
					"open":      k.Open,
					"high":      k.High,
					"low":       k.Low,
					"close":     k.Close,
					"volume":    k.Volume,
					"turnover":  k.Turnover,
				})
			}

			return map[string]interface{}{
				"symbol":    symbol,
				"timeframe": timeframe,
				"count":     len(items),
				"klines":    items,
			}, nil
		},
		deps,
	).
		WithTimeout(10*time.Second).
		WithRetry(3, 500*time.Millisecond).
		WithStats().
		Build()
}
