package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"minerva/internal/domain/signal"
	"minerva/pkg/errors"
)

// Compile-time check that we implement the interface
var _ signal.Repository = (*SignalRepository)(nil)

// SignalRepository implements signal.Repository using sqlx
type SignalRepository struct {
	db DBTX
}

// NewSignalRepository creates a new signal repository
func NewSignalRepository(db DBTX) *SignalRepository {
	return &SignalRepository{db: db}
}

const signalColumns = `id, strategy_id, run_id, symbol, kind, confidence, tier,
	price, target_price, stop_loss, reasoning, risk_factors, agent_summary, created_at`

// Create inserts a new signal
func (r *SignalRepository) Create(ctx context.Context, sig *signal.Signal) error {
	reasoningJSON, err := json.Marshal(sig.Reasoning)
	if err != nil {
		return errors.Wrap(err, "failed to marshal reasoning")
	}
	riskJSON, err := json.Marshal(sig.RiskFactors)
	if err != nil {
		return errors.Wrap(err, "failed to marshal risk factors")
	}

	var summary []byte
	if sig.AgentSummary != nil {
		summary = []byte(sig.AgentSummary)
	} else {
		summary = []byte("{}")
	}

	query := `
		INSERT INTO signals (
			id, strategy_id, run_id, symbol, kind, confidence, tier,
			price, target_price, stop_loss, reasoning, risk_factors, agent_summary, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = r.db.ExecContext(ctx, query,
		sig.ID, sig.StrategyID, sig.RunID, sig.Symbol, sig.Kind, sig.Confidence, sig.Tier,
		sig.Price, sig.TargetPrice, sig.StopLoss, reasoningJSON, riskJSON, summary, sig.CreatedAt,
	)
	return err
}

func scanSignal(scan func(dest ...interface{}) error) (*signal.Signal, error) {
	var sig signal.Signal
	var reasoningJSON, riskJSON, summary []byte

	err := scan(
		&sig.ID, &sig.StrategyID, &sig.RunID, &sig.Symbol, &sig.Kind, &sig.Confidence, &sig.Tier,
		&sig.Price, &sig.TargetPrice, &sig.StopLoss, &reasoningJSON, &riskJSON, &summary, &sig.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(errors.ErrNotFound, "signal not found")
	}
	if err != nil {
		return nil, err
	}

	if len(reasoningJSON) > 0 {
		if err := json.Unmarshal(reasoningJSON, &sig.Reasoning); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal reasoning")
		}
	}
	if len(riskJSON) > 0 {
		if err := json.Unmarshal(riskJSON, &sig.RiskFactors); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal risk factors")
		}
	}
	sig.AgentSummary = json.RawMessage(summary)
	return &sig, nil
}

// GetByID retrieves a signal by ID
func (r *SignalRepository) GetByID(ctx context.Context, id uuid.UUID) (*signal.Signal, error) {
	query := `SELECT ` + signalColumns + ` FROM signals WHERE id = $1`
	return scanSignal(r.db.QueryRowContext(ctx, query, id).Scan)
}

// List retrieves signals matching the query filters
func (r *SignalRepository) List(ctx context.Context, q signal.Query) ([]*signal.Signal, error) {
	query := `SELECT ` + signalColumns + ` FROM signals WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if q.StrategyID != nil {
		query += fmt.Sprintf(" AND strategy_id = $%d", idx)
		args = append(args, *q.StrategyID)
		idx++
	}
	if q.Symbol != "" {
		query += fmt.Sprintf(" AND symbol = $%d", idx)
		args = append(args, q.Symbol)
		idx++
	}
	if q.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", idx)
		args = append(args, q.Kind)
		idx++
	}
	if !q.Since.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", idx)
		args = append(args, q.Since)
		idx++
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", idx)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*signal.Signal
	for rows.Next() {
		sig, err := scanSignal(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, sig)
	}
	return out, rows.Err()
}

// GetLatestBySymbol returns the newest signal for the strategy/symbol pair
func (r *SignalRepository) GetLatestBySymbol(ctx context.Context, strategyID uuid.UUID, symbol string) (*signal.Signal, error) {
	query := `SELECT ` + signalColumns + ` FROM signals
		WHERE strategy_id = $1 AND symbol = $2
		ORDER BY created_at DESC LIMIT 1`
	return scanSignal(r.db.QueryRowContext(ctx, query, strategyID, symbol).Scan)
}
