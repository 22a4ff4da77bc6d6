package market

import (
	"context"
	"time"

	"minerva/internal/domain/market_data"
	"minerva/internal/tools"
	"minerva/internal/tools/shared"
	"minerva/pkg/errors"
)

// NewGetMarketOverviewTool returns a tool that summarizes major indexes.
func NewGetMarketOverviewTool(deps shared.Deps) tools.Tool {
	meta := tools.Metadata{
		Name:        "get_market_overview",
		Description: "Summarize major market indexes and overall sentiment",
		Category:    tools.CategoryMarketData,
		Version:     "1.0",
		Parameters: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
	}

	return shared.NewToolBuilder(meta,
		func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
			var snapshots []interface{}

			indexes, err := loadIndexes(ctx, deps)
			if err != nil {
				deps.Log.Error("Tool: get_market_overview failed", "error", err)
				return nil, err
			}

			advancing := 0
			for _, idx := range indexes {
				if idx.ChangePercent > 0 {
					advancing++
				}
				snapshots = append(snapshots, map[string]interface{}{
					"code":           idx.Code,
					"name":           idx.Name,
					"value":          idx.Value,
					"change_percent": idx.ChangePercent,
					"turnover":       idx.Turnover,
					"timestamp":      idx.Timestamp.Format(time.RFC3339),
				})
			}

			sentiment := "neutral"
			if len(indexes) > 0 {
				switch {
				case advancing*2 > len(indexes):
					sentiment = "bullish"
				case advancing*2 < len(indexes):
					sentiment = "bearish"
				}
			}

			return map[string]interface{}{
				"indexes":   snapshots,
				"sentiment": sentiment,
			}, nil
		},
		deps,
	).
		WithTimeout(10*time.Second).
		WithRetry(3, 500*time.Millisecond).
		WithStats().
		Build()
}

func loadIndexes(ctx context.Context, deps shared.Deps) ([]market_data.IndexSnapshot, error) {
	if deps.HasMarketData() {
		snapshots, err := deps.MarketDataRepo.GetLatestIndexSnapshots(ctx)
		if err == nil && len(snapshots) > 0 {
			return snapshots, nil
		}
		if err != nil && !errors.Is(err, errors.ErrNotFound) {
			return nil, errors.Wrap(err, "get index snapshots")
		}
	}

	if deps.HasProvider() {
		snapshots, err := deps.MarketProvider.FetchIndexSnapshots(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "fetch index snapshots from provider")
		}
		return snapshots, nil
	}

	return nil, errors.Wrap(errors.ErrNotFound, "no index data available")
}
