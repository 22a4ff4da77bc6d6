package indicators

import (
	"context"
	"time"

	"github.com/markcheno/go-talib"

	"minerva/internal/tools"
	"minerva/internal/tools/shared"
	"minerva/pkg/errors"
)

// NewMACDTool computes MACD (12,26,9 by default) using ta-lib.
// A histogram sign flip on the latest candle is reported as a
// golden cross (bullish) or death cross (bearish).
func NewMACDTool(deps shared.Deps) tools.Tool {
	meta := tools.Metadata{
		Name:        "macd",
		Description: "Moving Average Convergence Divergence with crossover signal",
		Category:    tools.CategoryTechnical,
		Version:     "1.0",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"symbol":    map[string]interface{}{"type": "string", "description": "Stock symbol, e.g. 600519"},
				"timeframe": map[string]interface{}{"type": "string", "description": "Candle timeframe, default 1d"},
				"fast":      map[string]interface{}{"type": "integer", "description": "Fast EMA period, default 12"},
				"slow":      map[string]interface{}{"type": "integer", "description": "Slow EMA period, default 26"},
				"signal":    map[string]interface{}{"type": "integer", "description": "Signal EMA period, default 9"},
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
			fast := parseLimit(args["fast"], 12)
			slow := parseLimit(args["slow"], 26)
			signalPeriod := parseLimit(args["signal"], 9)
			if err := ValidateMinLength(klines, slow+signalPeriod, "MACD"); err != nil {
				return nil, err
			}
			closes, err := PrepareCloses(klines)
			if err != nil {
				return nil, err
			}

			macdLine, signalLine, histogram := talib.Macd(closes, fast, slow, signalPeriod)

			macdVal, err := GetLastValue(macdLine)
			if err != nil {
				return nil, errors.Wrap(err, "failed to get MACD value")
			}
			signalVal, _ := GetLastValue(signalLine)
			histVal, _ := GetLastValue(histogram)

			cross := "none"
			if len(histogram) >= 2 {
				prev := histogram[len(histogram)-2]
				switch {
				case prev <= 0 && histVal > 0:
					cross = "golden_cross"
				case prev >= 0 && histVal < 0:
					cross = "death_cross"
				}
			}

			return map[string]interface{}{
				"macd":      macdVal,
				"signal":    signalVal,
				"histogram": histVal,
				"cross":     cross,
			}, nil
		},
		deps,
	).
		WithTimeout(15*time.Second).
		WithRetry(3, 500*time.Millisecond).
		WithStats().
		Build()
}
