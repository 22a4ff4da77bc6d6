package test

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"minerva/internal/domain/strategy"
	"minerva/internal/testsupport/seeds"
)

var TestStrategyID = uuid.MustParse("b2f9a6d1-0002-4000-8000-000000000001")

// SeedStrategies creates a single deterministic strategy for integration tests (idempotent)
func SeedStrategies(ctx context.Context, s *seeds.Seeder) error {
	_, err := s.Strategy().
		WithID(TestStrategyID).
		WithName("test_momentum").
		WithSymbols("600519").
		WithWorkflow(strategy.WorkflowStrategyDecision).
		WithInterval(60).
		Insert()
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			s.Log().Infow("Strategy already exists, skipping", "name", "test_momentum")
			return nil
		}
		return err
	}

	s.Log().Infow("Created strategy", "name", "test_momentum")
	return nil
}
