package agents

import (
	"time"

	"github.com/google/uuid"
)

// DecisionKind enumerates the closed set of decision outcomes.
type DecisionKind string

const (
	DecisionBuy     DecisionKind = "buy"
	DecisionSell    DecisionKind = "sell"
	DecisionHold    DecisionKind = "hold"
	DecisionObserve DecisionKind = "observe"
	DecisionAlert   DecisionKind = "alert"
)

// ConfidenceTier buckets a confidence value into a discrete level.
type ConfidenceTier string

const (
	TierVeryLow  ConfidenceTier = "very_low"
	TierLow      ConfidenceTier = "low"
	TierMedium   ConfidenceTier = "medium"
	TierHigh     ConfidenceTier = "high"
	TierVeryHigh ConfidenceTier = "very_high"
)

// TierFor maps a confidence value to its tier. Boundaries are inclusive
// on the lower bound of each tier.
func TierFor(confidence float64) ConfidenceTier {
	switch {
	case confidence >= 0.9:
		return TierVeryHigh
	case confidence >= 0.75:
		return TierHigh
	case confidence >= 0.5:
		return TierMedium
	case confidence >= 0.25:
		return TierLow
	default:
		return TierVeryLow
	}
}

// Decision is the immutable output of an agent's reasoning.
type Decision struct {
	ID                string                 `json:"id"`
	Kind              DecisionKind           `json:"kind"`
	Symbol            string                 `json:"symbol"`
	Confidence        float64                `json:"confidence"`
	Reasoning         []string               `json:"reasoning"`
	RiskFactors       []string               `json:"risk_factors"`
	SupportingData    map[string]interface{} `json:"supporting_data,omitempty"`
	RecommendedAction string                 `json:"recommended_action,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
}

// NewDecision creates a decision with a fresh identifier and timestamp.
// Confidence is clamped into [0,1].
func NewDecision(kind DecisionKind, symbol string, confidence float64) Decision {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return Decision{
		ID:         uuid.NewString(),
		Kind:       kind,
		Symbol:     symbol,
		Confidence: confidence,
		CreatedAt:  time.Now().UTC(),
	}
}

// Tier returns the discrete confidence tier for the decision.
func (d Decision) Tier() ConfidenceTier {
	return TierFor(d.Confidence)
}
