package strategy

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Strategy is a published analysis recipe users subscribe to. The
// scheduler evaluates it on its interval by driving the matching
// workflow over its symbols.
type Strategy struct {
	ID uuid.UUID `db:"id"`

	Name        string `db:"name"`
	Description string `db:"description"`
	Status      Status `db:"status"`

	// Symbols the strategy watches, stored as JSONB
	Symbols Symbols `db:"symbols"`

	// Workflow selects which agent graph evaluates the strategy
	Workflow WorkflowKind `db:"workflow"`

	// Parameters carries per-agent overrides (temperature, prompts,
	// tool selection) as an opaque JSON document
	Parameters json.RawMessage `db:"parameters"`

	// IntervalSeconds is the evaluation cadence
	IntervalSeconds int `db:"interval_seconds"`

	CreatedBy uuid.UUID  `db:"created_by"`
	LastRunAt *time.Time `db:"last_run_at"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// Symbols is a JSONB-backed string list
type Symbols []string

// Status represents strategy lifecycle state
type Status string

const (
	StatusActive   Status = "active"
	StatusPaused   Status = "paused"
	StatusArchived Status = "archived"
)

// Valid checks if status is valid
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusPaused || s == StatusArchived
}

// WorkflowKind selects the agent graph used for evaluation
type WorkflowKind string

const (
	WorkflowStrategyDecision  WorkflowKind = "strategy_decision"
	WorkflowTechnicalAnalysis WorkflowKind = "technical_analysis"
	WorkflowResearch          WorkflowKind = "research"
)

// Valid checks if workflow kind is valid
func (w WorkflowKind) Valid() bool {
	return w == WorkflowStrategyDecision || w == WorkflowTechnicalAnalysis || w == WorkflowResearch
}

// Due reports whether the strategy should be evaluated at the given time.
func (s *Strategy) Due(now time.Time) bool {
	if s.Status != StatusActive || s.IntervalSeconds <= 0 {
		return false
	}
	if s.LastRunAt == nil {
		return true
	}
	return now.Sub(*s.LastRunAt) >= time.Duration(s.IntervalSeconds)*time.Second
}
