package events

import (
	"time"

	"github.com/google/uuid"
)

// Envelope is the common header carried by every event on the bus.
type Envelope struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// NewEnvelope creates an event header with defaults
func NewEnvelope(eventType, source string) Envelope {
	return Envelope{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Version:   "1.0",
	}
}

// EvaluationRequested asks a worker to evaluate a strategy now.
type EvaluationRequested struct {
	Envelope
	StrategyID uuid.UUID `json:"strategy_id"`
	Symbols    []string  `json:"symbols,omitempty"` // empty means all strategy symbols
	Reason     string    `json:"reason"`            // scheduled, manual, backfill
}

// AgentDecision reports one agent decision inside a workflow run.
type AgentDecision struct {
	Envelope
	RunID      string    `json:"run_id"`
	StrategyID uuid.UUID `json:"strategy_id"`
	AgentID    string    `json:"agent_id"`
	Symbol     string    `json:"symbol"`
	Kind       string    `json:"kind"`
	Confidence float64   `json:"confidence"`
	Tier       string    `json:"tier"`
}

// SignalGenerated announces a persisted signal ready for fan-out.
type SignalGenerated struct {
	Envelope
	SignalID   uuid.UUID `json:"signal_id"`
	StrategyID uuid.UUID `json:"strategy_id"`
	RunID      string    `json:"run_id"`
	Symbol     string    `json:"symbol"`
	Kind       string    `json:"kind"`
	Confidence float64   `json:"confidence"`
	Tier       string    `json:"tier"`
}

// NotificationDispatch requests delivery of a signal to subscribers.
type NotificationDispatch struct {
	Envelope
	SignalID uuid.UUID `json:"signal_id"`
}
