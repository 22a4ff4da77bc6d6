package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierFor(t *testing.T) {
	cases := []struct {
		confidence float64
		want       ConfidenceTier
	}{
		{0.95, TierVeryHigh},
		{0.8, TierHigh},
		{0.6, TierMedium},
		{0.3, TierLow},
		{0.1, TierVeryLow},
		// Boundaries are inclusive on the lower bound: land in the higher tier
		{0.9, TierVeryHigh},
		{0.75, TierHigh},
		{0.5, TierMedium},
		{0.25, TierLow},
		{0.0, TierVeryLow},
		{1.0, TierVeryHigh},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, TierFor(tc.confidence), "confidence %v", tc.confidence)
	}
}

func TestNewDecision_ClampsConfidence(t *testing.T) {
	d := NewDecision(DecisionBuy, "600519", 1.5)
	assert.Equal(t, 1.0, d.Confidence)

	d = NewDecision(DecisionSell, "600519", -0.2)
	assert.Equal(t, 0.0, d.Confidence)

	assert.NotEmpty(t, d.ID)
	assert.False(t, d.CreatedAt.IsZero())
}

func TestDecision_Tier(t *testing.T) {
	d := NewDecision(DecisionBuy, "600519", 0.82)
	assert.Equal(t, TierHigh, d.Tier())
}
