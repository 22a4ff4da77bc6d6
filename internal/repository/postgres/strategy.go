package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"minerva/internal/domain/strategy"
	"minerva/pkg/errors"
)

// Compile-time check that we implement the interface
var _ strategy.Repository = (*StrategyRepository)(nil)

// StrategyRepository implements strategy.Repository using sqlx
type StrategyRepository struct {
	db DBTX
}

// NewStrategyRepository creates a new strategy repository
func NewStrategyRepository(db DBTX) *StrategyRepository {
	return &StrategyRepository{db: db}
}

const strategyColumns = `id, name, description, status, symbols, workflow, parameters,
	interval_seconds, created_by, last_run_at, created_at, updated_at`

// Create inserts a new strategy
func (r *StrategyRepository) Create(ctx context.Context, st *strategy.Strategy) error {
	symbolsJSON, err := json.Marshal(st.Symbols)
	if err != nil {
		return errors.Wrap(err, "failed to marshal symbols")
	}

	query := `
		INSERT INTO strategies (
			id, name, description, status, symbols, workflow, parameters,
			interval_seconds, created_by, last_run_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)`

	_, err = r.db.ExecContext(ctx, query,
		st.ID, st.Name, st.Description, st.Status, symbolsJSON, st.Workflow,
		[]byte(st.Parameters), st.IntervalSeconds, st.CreatedBy, st.LastRunAt,
		st.CreatedAt, st.UpdatedAt,
	)
	return err
}

func scanStrategy(scan func(dest ...interface{}) error) (*strategy.Strategy, error) {
	var st strategy.Strategy
	var symbolsJSON, paramsJSON []byte

	err := scan(
		&st.ID, &st.Name, &st.Description, &st.Status, &symbolsJSON, &st.Workflow,
		&paramsJSON, &st.IntervalSeconds, &st.CreatedBy, &st.LastRunAt,
		&st.CreatedAt, &st.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(errors.ErrNotFound, "strategy not found")
	}
	if err != nil {
		return nil, err
	}

	if len(symbolsJSON) > 0 {
		if err := json.Unmarshal(symbolsJSON, &st.Symbols); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal symbols")
		}
	}
	st.Parameters = json.RawMessage(paramsJSON)
	return &st, nil
}

// GetByID retrieves a strategy by ID
func (r *StrategyRepository) GetByID(ctx context.Context, id uuid.UUID) (*strategy.Strategy, error) {
	query := `SELECT ` + strategyColumns + ` FROM strategies WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	return scanStrategy(row.Scan)
}

// GetByName retrieves a strategy by its unique name
func (r *StrategyRepository) GetByName(ctx context.Context, name string) (*strategy.Strategy, error) {
	query := `SELECT ` + strategyColumns + ` FROM strategies WHERE name = $1`
	row := r.db.QueryRowContext(ctx, query, name)
	return scanStrategy(row.Scan)
}

func (r *StrategyRepository) list(ctx context.Context, query string, args ...interface{}) ([]*strategy.Strategy, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*strategy.Strategy
	for rows.Next() {
		st, err := scanStrategy(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// List retrieves strategies with pagination
func (r *StrategyRepository) List(ctx context.Context, limit, offset int) ([]*strategy.Strategy, error) {
	query := `SELECT ` + strategyColumns + ` FROM strategies
		WHERE status != 'archived'
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.list(ctx, query, limit, offset)
}

// ListActive retrieves all active strategies
func (r *StrategyRepository) ListActive(ctx context.Context) ([]*strategy.Strategy, error) {
	query := `SELECT ` + strategyColumns + ` FROM strategies WHERE status = 'active' ORDER BY created_at`
	return r.list(ctx, query)
}

// ListDue retrieves active strategies whose interval has elapsed
func (r *StrategyRepository) ListDue(ctx context.Context, now time.Time) ([]*strategy.Strategy, error) {
	query := `SELECT ` + strategyColumns + ` FROM strategies
		WHERE status = 'active'
		  AND interval_seconds > 0
		  AND (last_run_at IS NULL OR last_run_at + (interval_seconds * interval '1 second') <= $1)
		ORDER BY last_run_at NULLS FIRST`
	return r.list(ctx, query, now)
}

// Update updates an existing strategy
func (r *StrategyRepository) Update(ctx context.Context, st *strategy.Strategy) error {
	symbolsJSON, err := json.Marshal(st.Symbols)
	if err != nil {
		return errors.Wrap(err, "failed to marshal symbols")
	}

	query := `
		UPDATE strategies SET
			name = $2,
			description = $3,
			status = $4,
			symbols = $5,
			workflow = $6,
			parameters = $7,
			interval_seconds = $8,
			updated_at = NOW()
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		st.ID, st.Name, st.Description, st.Status, symbolsJSON, st.Workflow,
		[]byte(st.Parameters), st.IntervalSeconds,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrap(errors.ErrNotFound, "strategy not found")
	}
	return nil
}

// MarkRun records the last evaluation time
func (r *StrategyRepository) MarkRun(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE strategies SET last_run_at = $2, updated_at = NOW() WHERE id = $1`, id, at)
	return err
}

// Archive soft-deletes a strategy
func (r *StrategyRepository) Archive(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE strategies SET status = 'archived', updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrap(errors.ErrNotFound, "strategy not found")
	}
	return nil
}
