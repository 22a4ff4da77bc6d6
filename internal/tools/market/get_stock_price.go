package market

import (
	"context"
	"time"

	"minerva/internal/tools"
	"minerva/internal/tools/shared"
	"minerva/pkg/errors"
)

// NewGetStockPriceTool returns a tool that fetches the latest quote snapshot.
func NewGetStockPriceTool(deps shared.Deps) tools.Tool {
	meta := tools.Metadata{
		Name:        "get_stock_price",
		Description: "Fetch the current stock quote with day range and turnover",
		Category:    tools.CategoryMarketData,
		Version:     "1.0",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"symbol": map[string]interface{}{"type": "string", "description": "Stock symbol, e.g. 600519"},
			},
			"required": []string{"symbol"},
		},
	}

	return shared.NewToolBuilder(meta,
		func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
			symbol, _ := args["symbol"].(string)
			if symbol == "" {
				deps.Log.Warn("Tool: get_stock_price called without symbol")
				return nil, errors.Wrap(errors.ErrInvalidInput, "get_stock_price: symbol is required")
			}

			deps.Log.Debug("Tool: get_stock_price called", "symbol", symbol)

			quote, err := loadQuote(ctx, deps, symbol)
			if err != nil {
				deps.Log.Error("Tool: get_stock_price failed", "symbol", symbol, "error", err)
				return nil, err
			}

			result := map[string]interface{}{
				"symbol":         quote.Symbol,
				"name":           quote.Name,
				"price":          quote.Price,
				"open":           quote.Open,
				"high":           quote.High,
				"low":            quote.Low,
				"prev_close":     quote.PrevClose,
				"volume":         quote.Volume,
				"turnover":       quote.Turnover,
				"change_percent": quote.ChangePercent,
				"timestamp":      quote.Timestamp.Format(time.RFC3339),
			}

			deps.Log.Info("Tool: get_stock_price success", "symbol", symbol, "price", quote.Price)
			return result, nil
		},
		deps,
	).
		WithTimeout(10*time.Second).
		WithRetry(3, 500*time.Millisecond).
		WithStats().
		Build()
}
