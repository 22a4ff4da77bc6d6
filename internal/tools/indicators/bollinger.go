package indicators

import (
	"context"
	"time"

	"github.com/markcheno/go-talib"

	"minerva/internal/tools"
	"minerva/internal/tools/shared"
	"minerva/pkg/errors"
)

// NewBollingerTool computes Bollinger Bands using ta-lib
func NewBollingerTool(deps shared.Deps) tools.Tool {
	meta := tools.Metadata{
		Name:        "bollinger",
		Description: "Bollinger Bands with price position",
		Category:    tools.CategoryTechnical,
		Version:     "1.0",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"symbol":       map[string]interface{}{"type": "string", "description": "Stock symbol, e.g. 600519"},
				"timeframe":    map[string]interface{}{"type": "string", "description": "Candle timeframe, default 1d"},
				"period":       map[string]interface{}{"type": "integer", "description": "Lookback period, default 20"},
				"std_dev_up":   map[string]interface{}{"type": "number", "description": "Upper band deviations, default 2"},
				"std_dev_down": map[string]interface{}{"type": "number", "description": "Lower band deviations, default 2"},
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
			stdDevUp := parseFloat(args["std_dev_up"], 2.0)
			stdDevDown := parseFloat(args["std_dev_down"], 2.0)

			if err := ValidateMinLength(klines, period, "Bollinger Bands"); err != nil {
				return nil, err
			}

			closes, err := PrepareCloses(klines)
			if err != nil {
				return nil, err
			}

			upperBand, middleBand, lowerBand := talib.BBands(closes, period, stdDevUp, stdDevDown, talib.SMA)

			upper, err := GetLastValue(upperBand)
			if err != nil {
				return nil, errors.Wrap(err, "failed to get upper band")
			}
			middle, err := GetLastValue(middleBand)
			if err != nil {
				return nil, errors.Wrap(err, "failed to get middle band")
			}
			lower, err := GetLastValue(lowerBand)
			if err != nil {
				return nil, errors.Wrap(err, "failed to get lower band")
			}

			// Bandwidth is useful for volatility assessment
			bandwidth := ((upper - lower) / middle) * 100

			currentPrice := klines[0].Close

			position := "middle"
			if currentPrice >= upper {
				position = "above_upper"
			} else if currentPrice <= lower {
				position = "below_lower"
			} else if currentPrice > middle {
				position = "upper_half"
			} else if currentPrice < middle {
				position = "lower_half"
			}

			return map[string]interface{}{
				"upper":         upper,
				"middle":        middle,
				"lower":         lower,
				"bandwidth":     bandwidth,
				"current_price": currentPrice,
				"position":      position,
				"period":        period,
			}, nil
		},
		deps,
	).
		WithTimeout(15*time.Second).
		WithRetry(3, 500*time.Millisecond).
		WithStats().
		Build()
}

// parseFloat parses float64 from interface{} with default
func parseFloat(val interface{}, defaultVal float64) float64 {
	if val == nil {
		return defaultVal
	}

	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return defaultVal
	}
}
