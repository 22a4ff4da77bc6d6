package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONBlock(t *testing.T) {
	t.Run("json fence preferred", func(t *testing.T) {
		text := "Here is my analysis:\n```json\n{\"decision\": \"buy\"}\n```\nDone."
		assert.Equal(t, `{"decision": "buy"}`, ExtractJSONBlock(text))
	})

	t.Run("plain fence fallback", func(t *testing.T) {
		text := "```\n{\"decision\": \"sell\"}\n```"
		assert.Equal(t, `{"decision": "sell"}`, ExtractJSONBlock(text))
	})

	t.Run("full text fallback", func(t *testing.T) {
		text := `  {"decision": "hold"}  `
		assert.Equal(t, `{"decision": "hold"}`, ExtractJSONBlock(text))
	})
}

func TestParseResult_DegradedPath(t *testing.T) {
	payload, ok := ParseResult("the market looks strong, I would buy")
	assert.False(t, ok)
	assert.Equal(t, "the market looks strong, I would buy", payload["raw_response"])
}

func TestParseResult_Idempotence(t *testing.T) {
	// Identical fenced payload with different surrounding prose yields
	// the same fields.
	variants := []string{
		"```json\n{\"decision\":\"buy\",\"confidence\":0.82}\n```",
		"Sure, here you go:\n\n```json\n{\"decision\":\"buy\",\"confidence\":0.82}\n```\n\nLet me know.",
		"   ```json\n{\"decision\":\"buy\",\"confidence\":0.82}\n```   ",
	}

	for _, text := range variants {
		payload, ok := ParseResult(text)
		require.True(t, ok, "variant: %q", text)
		assert.Equal(t, "buy", payload["decision"])
		assert.Equal(t, 0.82, payload["confidence"])
	}
}

func TestDecisionFromPayload(t *testing.T) {
	payload := map[string]interface{}{
		"decision":           "buy",
		"confidence":         0.82,
		"reasoning":          []interface{}{"strong momentum"},
		"risk_factors":       []interface{}{"sector rotation"},
		"recommended_action": "open a small position",
	}

	d := DecisionFromPayload(payload, DecisionHold, "600519")
	assert.Equal(t, DecisionBuy, d.Kind)
	assert.Equal(t, "600519", d.Symbol)
	assert.Equal(t, 0.82, d.Confidence)
	assert.Equal(t, TierHigh, d.Tier())
	assert.Equal(t, []string{"strong momentum"}, d.Reasoning)
	assert.Equal(t, []string{"sector rotation"}, d.RiskFactors)
	assert.Equal(t, "open a small position", d.RecommendedAction)
}

func TestDecisionFromPayload_Defaults(t *testing.T) {
	d := DecisionFromPayload(map[string]interface{}{}, DecisionObserve, "")
	assert.Equal(t, DecisionObserve, d.Kind)
	assert.Equal(t, 0.5, d.Confidence)
	assert.Equal(t, "UNKNOWN", d.Symbol)
}

func TestDecisionFromPayload_UnknownKindFallsBack(t *testing.T) {
	payload := map[string]interface{}{"decision": "yolo"}
	d := DecisionFromPayload(payload, DecisionHold, "600519")
	assert.Equal(t, DecisionHold, d.Kind)
}
