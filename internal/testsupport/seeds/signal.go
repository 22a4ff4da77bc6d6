package seeds

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"minerva/internal/domain/signal"
	"minerva/internal/testsupport"
)

// SignalBuilder provides a fluent API for creating Signal entities
type SignalBuilder struct {
	db     DBTX
	ctx    context.Context
	entity *signal.Signal
}

// NewSignalBuilder creates a new SignalBuilder with sensible defaults
func NewSignalBuilder(db DBTX, ctx context.Context) *SignalBuilder {
	return &SignalBuilder{
		db:  db,
		ctx: ctx,
		entity: &signal.Signal{
			ID:           uuid.New(),
			RunID:        testsupport.UniqueRunID(),
			Symbol:       "600519",
			Kind:         signal.KindBuy,
			Confidence:   0.8,
			Tier:         "high",
			Price:        decimal.NewFromFloat(1708.0),
			Reasoning:    signal.StringList{"test reasoning"},
			RiskFactors:  signal.StringList{},
			AgentSummary: json.RawMessage("{}"),
			CreatedAt:    time.Now(),
		},
	}
}

// WithID sets a specific ID
func (b *SignalBuilder) WithID(id uuid.UUID) *SignalBuilder {
	b.entity.ID = id
	return b
}

// WithStrategy sets the originating strategy (required)
func (b *SignalBuilder) WithStrategy(strategyID uuid.UUID) *SignalBuilder {
	b.entity.StrategyID = strategyID
	return b
}

// WithRunID sets the workflow run identifier
func (b *SignalBuilder) WithRunID(runID string) *SignalBuilder {
	b.entity.RunID = runID
	return b
}

// WithSymbol sets the symbol
func (b *SignalBuilder) WithSymbol(symbol string) *SignalBuilder {
	b.entity.Symbol = symbol
	return b
}

// WithKind sets the signal kind
func (b *SignalBuilder) WithKind(kind signal.Kind) *SignalBuilder {
	b.entity.Kind = kind
	return b
}

// WithConfidence sets confidence and recomputes the tier
func (b *SignalBuilder) WithConfidence(confidence float64) *SignalBuilder {
	b.entity.Confidence = confidence
	return b
}

// WithTier sets the confidence tier
func (b *SignalBuilder) WithTier(tier string) *SignalBuilder {
	b.entity.Tier = tier
	return b
}

// WithPrice sets the reference price
func (b *SignalBuilder) WithPrice(price decimal.Decimal) *SignalBuilder {
	b.entity.Price = price
	return b
}

// WithTargets sets target price and stop loss
func (b *SignalBuilder) WithTargets(target, stopLoss decimal.Decimal) *SignalBuilder {
	b.entity.TargetPrice = decimal.NewNullDecimal(target)
	b.entity.StopLoss = decimal.NewNullDecimal(stopLoss)
	return b
}

// WithReasoning sets the reasoning lines
func (b *SignalBuilder) WithReasoning(lines ...string) *SignalBuilder {
	b.entity.Reasoning = lines
	return b
}

// WithCreatedAt sets the creation time
func (b *SignalBuilder) WithCreatedAt(t time.Time) *SignalBuilder {
	b.entity.CreatedAt = t
	return b
}

// Build returns the built entity without inserting to DB
func (b *SignalBuilder) Build() *signal.Signal {
	return b.entity
}

// Insert inserts the signal into the database and returns the entity
func (b *SignalBuilder) Insert() (*signal.Signal, error) {
	if b.entity.StrategyID == uuid.Nil {
		return nil, fmt.Errorf("strategy_id is required")
	}

	reasoning, err := json.Marshal(b.entity.Reasoning)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reasoning: %w", err)
	}

	riskFactors, err := json.Marshal(b.entity.RiskFactors)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal risk factors: %w", err)
	}

	summary := []byte(b.entity.AgentSummary)
	if summary == nil {
		summary = []byte("{}")
	}

	query := `
		INSERT INTO signals (
			id, strategy_id, run_id, symbol, kind, confidence, tier,
			price, target_price, stop_loss, reasoning, risk_factors, agent_summary, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err = b.db.ExecContext(
		b.ctx,
		query,
		b.entity.ID,
		b.entity.StrategyID,
		b.entity.RunID,
		b.entity.Symbol,
		b.entity.Kind,
		b.entity.Confidence,
		b.entity.Tier,
		b.entity.Price,
		b.entity.TargetPrice,
		b.entity.StopLoss,
		reasoning,
		riskFactors,
		summary,
		b.entity.CreatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to insert signal: %w", err)
	}

	return b.entity, nil
}

// MustInsert inserts the signal and panics on error (useful for tests)
func (b *SignalBuilder) MustInsert() *signal.Signal {
	entity, err := b.Insert()
	if err != nil {
		panic(err)
	}
	return entity
}
