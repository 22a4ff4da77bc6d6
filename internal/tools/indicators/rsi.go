package indicators

import (
	"context"
	"time"

	"github.com/markcheno/go-talib"

	"minerva/internal/tools"
	"minerva/internal/tools/shared"
	"minerva/pkg/errors"
)

// NewRSITool computes Relative Strength Index using closing prices.
// Readings above 70 are flagged overbought, below 30 oversold.
func NewRSITool(deps shared.Deps) tools.Tool {
	meta := tools.Metadata{
		Name:        "rsi",
		Description: "Relative Strength Index with overbought/oversold signal",
		Category:    tools.CategoryTechnical,
		Version:     "1.0",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"symbol":    map[string]interface{}{"type": "string", "description": "Stock symbol, e.g. 600519"},
				"timeframe": map[string]interface{}{"type": "string", "description": "Candle timeframe, default 1d"},
				"period":    map[string]interface{}{"type": "integer", "description": "Lookback period, default 14"},
			},
			"required": []string{"symbol"},
		},
	}

	return shared.NewToolBuilder(meta,
		func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
			klines, err := loadKlines(ctx, deps, args, 100)
			if err != nil {
				return nil, err
			}
			period := parseLimit(args["period"], 14)
			if err := ValidateMinLength(klines, period+1, "RSI"); err != nil {
				return nil, err
			}
			closes, err := PrepareCloses(klines)
			if err != nil {
				return nil, err
			}
			rsi := talib.Rsi(closes, period)
			value, err := GetLastValue(rsi)
			if err != nil {
				return nil, errors.Wrap(err, "failed to get RSI value")
			}

			signal := "neutral"
			switch {
			case value > 70:
				signal = "overbought"
			case value < 30:
				signal = "oversold"
			}

			return map[string]interface{}{
				"value":  value,
				"period": period,
				"signal": signal,
			}, nil
		},
		deps,
	).
		WithTimeout(15*time.Second).
		WithRetry(3, 500*time.Millisecond).
		WithStats().
		Build()
}
