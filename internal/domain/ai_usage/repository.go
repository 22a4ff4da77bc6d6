package ai_usage

import (
	"context"
	"time"
)

// Repository defines operations for LLM usage tracking
type Repository interface {
	// Store saves a usage log entry
	Store(ctx context.Context, log *UsageLog) error

	// GetStrategyDailyCost returns total cost for a strategy on a specific day
	GetStrategyDailyCost(ctx context.Context, strategyID string, date time.Time) (float64, error)

	// GetProviderCosts returns costs grouped by provider for a time range
	GetProviderCosts(ctx context.Context, from, to time.Time) (map[string]float64, error)

	// GetAgentCosts returns costs grouped by agent type for a time range
	GetAgentCosts(ctx context.Context, from, to time.Time) (map[string]float64, error)

	// GetModelCosts returns costs grouped by model for a time range
	GetModelCosts(ctx context.Context, provider string, from, to time.Time) (map[string]float64, error)
}
