package dev

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"minerva/internal/domain/strategy"
	"minerva/internal/testsupport/seeds"
)

// Fixed IDs so later seeds can reference strategies and reruns stay idempotent
var (
	MomentumStrategyID = uuid.MustParse("a1e8f5c0-0001-4000-8000-000000000001")
	TrendStrategyID    = uuid.MustParse("a1e8f5c0-0001-4000-8000-000000000002")
	ResearchStrategyID = uuid.MustParse("a1e8f5c0-0001-4000-8000-000000000003")
)

// SeedStrategies creates strategy seeds for development (idempotent)
func SeedStrategies(ctx context.Context, s *seeds.Seeder) error {
	log := s.Log()

	strategies := []struct {
		id         uuid.UUID
		name       string
		desc       string
		symbols    []string
		workflow   strategy.WorkflowKind
		interval   int
		parameters string
	}{
		{
			id:         MomentumStrategyID,
			name:       "momentum_breakout",
			desc:       "Buy signals on breakouts above recent resistance with volume confirmation",
			symbols:    []string{"600519", "000858", "601318"},
			workflow:   strategy.WorkflowStrategyDecision,
			interval:   300,
			parameters: `{"lookback_days": 20, "volume_multiplier": 1.5}`,
		},
		{
			id:         TrendStrategyID,
			name:       "trend_follow",
			desc:       "Technical trend following on moving average crossovers",
			symbols:    []string{"600036", "600519"},
			workflow:   strategy.WorkflowTechnicalAnalysis,
			interval:   900,
			parameters: `{"fast_period": 12, "slow_period": 26}`,
		},
		{
			id:         ResearchStrategyID,
			name:       "deep_research",
			desc:       "Multi-step research workflow for long-horizon positions",
			symbols:    []string{"300750"},
			workflow:   strategy.WorkflowResearch,
			interval:   3600,
			parameters: `{}`,
		},
	}

	for _, spec := range strategies {
		_, err := s.Strategy().
			WithID(spec.id).
			WithName(spec.name).
			WithDescription(spec.desc).
			WithSymbols(spec.symbols...).
			WithWorkflow(spec.workflow).
			WithInterval(spec.interval).
			WithParameters(json.RawMessage(spec.parameters)).
			Insert()
		if err != nil {
			if strings.Contains(err.Error(), "duplicate key") {
				log.Infow("Strategy already exists, skipping", "name", spec.name)
				continue
			}
			return err
		}

		log.Infow("Created strategy", "name", spec.name, "workflow", spec.workflow)
	}

	return nil
}
