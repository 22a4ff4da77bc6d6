package seeds

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"minerva/internal/domain/strategy"
	"minerva/internal/testsupport"
)

// StrategyBuilder provides a fluent API for creating Strategy entities
type StrategyBuilder struct {
	db     DBTX
	ctx    context.Context
	entity *strategy.Strategy
}

// NewStrategyBuilder creates a new StrategyBuilder with sensible defaults
func NewStrategyBuilder(db DBTX, ctx context.Context) *StrategyBuilder {
	now := time.Now()
	return &StrategyBuilder{
		db:  db,
		ctx: ctx,
		entity: &strategy.Strategy{
			ID:              uuid.New(),
			Name:            testsupport.UniqueName("test_strategy"),
			Description:     "Test strategy",
			Status:          strategy.StatusActive,
			Symbols:         strategy.Symbols{"600519"},
			Workflow:        strategy.WorkflowStrategyDecision,
			Parameters:      json.RawMessage("{}"),
			IntervalSeconds: 3600,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
	}
}

// WithID sets a specific ID
func (b *StrategyBuilder) WithID(id uuid.UUID) *StrategyBuilder {
	b.entity.ID = id
	return b
}

// WithName sets the strategy name
func (b *StrategyBuilder) WithName(name string) *StrategyBuilder {
	b.entity.Name = name
	return b
}

// WithDescription sets the strategy description
func (b *StrategyBuilder) WithDescription(desc string) *StrategyBuilder {
	b.entity.Description = desc
	return b
}

// WithStatus sets the strategy status
func (b *StrategyBuilder) WithStatus(status strategy.Status) *StrategyBuilder {
	b.entity.Status = status
	return b
}

// WithPaused sets the strategy to paused
func (b *StrategyBuilder) WithPaused() *StrategyBuilder {
	b.entity.Status = strategy.StatusPaused
	return b
}

// WithSymbols sets the watched symbols
func (b *StrategyBuilder) WithSymbols(symbols ...string) *StrategyBuilder {
	b.entity.Symbols = symbols
	return b
}

// WithWorkflow sets the workflow kind
func (b *StrategyBuilder) WithWorkflow(workflow strategy.WorkflowKind) *StrategyBuilder {
	b.entity.Workflow = workflow
	return b
}

// WithInterval sets the evaluation interval in seconds
func (b *StrategyBuilder) WithInterval(seconds int) *StrategyBuilder {
	b.entity.IntervalSeconds = seconds
	return b
}

// WithLastRunAt sets the last evaluation time
func (b *StrategyBuilder) WithLastRunAt(t time.Time) *StrategyBuilder {
	b.entity.LastRunAt = &t
	return b
}

// WithCreatedBy sets the creating user
func (b *StrategyBuilder) WithCreatedBy(userID uuid.UUID) *StrategyBuilder {
	b.entity.CreatedBy = userID
	return b
}

// WithParameters sets the workflow parameters
func (b *StrategyBuilder) WithParameters(params json.RawMessage) *StrategyBuilder {
	b.entity.Parameters = params
	return b
}

// Build returns the built entity without inserting to DB
func (b *StrategyBuilder) Build() *strategy.Strategy {
	return b.entity
}

// Insert inserts the strategy into the database and returns the entity
func (b *StrategyBuilder) Insert() (*strategy.Strategy, error) {
	symbols, err := json.Marshal(b.entity.Symbols)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal symbols: %w", err)
	}

	query := `
		INSERT INTO strategies (
			id, name, description, status, symbols, workflow, parameters,
			interval_seconds, created_by, last_run_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = b.db.ExecContext(
		b.ctx,
		query,
		b.entity.ID,
		b.entity.Name,
		b.entity.Description,
		b.entity.Status,
		symbols,
		b.entity.Workflow,
		[]byte(b.entity.Parameters),
		b.entity.IntervalSeconds,
		b.entity.CreatedBy,
		b.entity.LastRunAt,
		b.entity.CreatedAt,
		b.entity.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to insert strategy: %w", err)
	}

	return b.entity, nil
}

// MustInsert inserts the strategy and panics on error (useful for tests)
func (b *StrategyBuilder) MustInsert() *strategy.Strategy {
	entity, err := b.Insert()
	if err != nil {
		panic(err)
	}
	return entity
}
