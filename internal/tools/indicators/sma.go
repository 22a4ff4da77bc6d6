package indicators

import (
	"context"
	"time"

	"github.com/markcheno/go-talib"

	"minerva/internal/tools"
	"minerva/internal/tools/shared"
	"minerva/pkg/errors"
)

// NewSMATool computes Simple Moving Average using ta-lib
func NewSMATool(deps shared.Deps) tools.Tool {
	meta := tools.Metadata{
		Name:        "sma",
		Description: "Simple Moving Average over closing prices",
		Category:    tools.CategoryTechnical,
		Version:     "1.0",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"symbol":    map[string]interface{}{"type": "string", "description": "Stock symbol, e.g. 600519"},
				"timeframe": map[string]interface{}{"type": "string", "description": "Candle timeframe, default 1d"},
				"period":    map[string]interface{}{"type": "integer", "description": "Lookback period, default 20"},
			},
			"required": []string{"symbol"},
		},
	}

	return shared.NewToolBuilder(meta,
		func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
			klines, err := loadKlines(ctx, deps, args, 200)
			if err != nil {
				return nil, err
			}
			period := parseLimit(args["period"], 20)
			if err := ValidateMinLength(klines, period, "SMA"); err != nil {
				return nil, err
			}
			closes, err := PrepareCloses(klines)
			if err != nil {
				return nil, err
			}
			sma := talib.Sma(closes, period)
			value, err := GetLastValue(sma)
			if err != nil {
				return nil, errors.Wrap(err, "failed to get SMA value")
			}
			price := closes[len(closes)-1]
			trend := "bearish"
			if price >= value {
				trend = "bullish"
			}
			return map[string]interface{}{
				"value":  value,
				"period": period,
				"price":  price,
				"trend":  trend,
			}, nil
		},
		deps,
	).
		WithTimeout(15*time.Second).
		WithRetry(3, 500*time.Millisecond).
		WithStats().
		Build()
}
