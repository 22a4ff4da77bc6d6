package staging

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"minerva/internal/domain/strategy"
	"minerva/internal/testsupport/seeds"
)

var momentumStrategyID = uuid.MustParse("c3a0b7e2-0003-4000-8000-000000000001")

// SeedStrategies creates the baseline strategy set for staging (idempotent).
// Strategies start paused so operators enable them deliberately.
func SeedStrategies(ctx context.Context, s *seeds.Seeder) error {
	_, err := s.Strategy().
		WithID(momentumStrategyID).
		WithName("momentum_breakout").
		WithDescription("Buy signals on breakouts above recent resistance").
		WithSymbols("600519", "000858").
		WithWorkflow(strategy.WorkflowStrategyDecision).
		WithInterval(300).
		WithPaused().
		Insert()
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			s.Log().Infow("Strategy already exists, skipping", "name", "momentum_breakout")
			return nil
		}
		return err
	}

	s.Log().Infow("Created strategy", "name", "momentum_breakout", "status", strategy.StatusPaused)
	return nil
}
