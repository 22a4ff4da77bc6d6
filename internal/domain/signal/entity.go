package signal

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind mirrors the decision vocabulary of the agent layer
type Kind string

const (
	KindBuy     Kind = "buy"
	KindSell    Kind = "sell"
	KindHold    Kind = "hold"
	KindObserve Kind = "observe"
	KindAlert   Kind = "alert"
)

// Valid checks if kind is valid
func (k Kind) Valid() bool {
	switch k {
	case KindBuy, KindSell, KindHold, KindObserve, KindAlert:
		return true
	}
	return false
}

// Signal is a persisted strategy verdict for one symbol, produced by a
// workflow run and fanned out to subscribers.
type Signal struct {
	ID         uuid.UUID `db:"id"`
	StrategyID uuid.UUID `db:"strategy_id"`

	// RunID ties the signal back to the workflow run that produced it
	RunID string `db:"run_id"`

	Symbol     string  `db:"symbol"`
	Kind       Kind    `db:"kind"`
	Confidence float64 `db:"confidence"`
	Tier       string  `db:"tier"`

	// Price context at generation time
	Price       decimal.Decimal     `db:"price"`
	TargetPrice decimal.NullDecimal `db:"target_price"`
	StopLoss    decimal.NullDecimal `db:"stop_loss"`

	// Reasoning and risk factors, stored as JSONB
	Reasoning   StringList `db:"reasoning"`
	RiskFactors StringList `db:"risk_factors"`

	// AgentSummary carries the per-agent output digest for the run
	AgentSummary json.RawMessage `db:"agent_summary"`

	CreatedAt time.Time `db:"created_at"`
}

// StringList is a JSONB-backed string slice
type StringList []string

// Query filters signal listings
type Query struct {
	StrategyID *uuid.UUID
	Symbol     string
	Kind       Kind
	Since      time.Time
	Limit      int
}
