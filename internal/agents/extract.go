package agents

import (
	"encoding/json"
	"strings"
)

// ExtractJSONBlock pulls the JSON candidate out of a model response.
// Preference order: a ```json fenced block, then any fenced block, then
// the full text.
func ExtractJSONBlock(text string) string {
	if block, ok := fencedBlock(text, "```json"); ok {
		return block
	}
	if block, ok := fencedBlock(text, "```"); ok {
		return block
	}
	return strings.TrimSpace(text)
}

func fencedBlock(text, fence string) (string, bool) {
	start := strings.Index(text, fence)
	if start < 0 {
		return "", false
	}
	rest := text[start+len(fence):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// ParseResult attempts a strict JSON object parse of the extracted
// block. A parse failure is the documented degraded path, not an error:
// the returned map is {"raw_response": text} and ok is false.
func ParseResult(text string) (map[string]interface{}, bool) {
	block := ExtractJSONBlock(text)

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(block), &payload); err != nil {
		return map[string]interface{}{"raw_response": text}, false
	}
	return payload, true
}

// DecisionFromPayload maps known fields of a parsed payload into a
// Decision. Missing fields take defaults: kind falls back to
// defaultKind, confidence to 0.5, symbol to fallbackSymbol.
func DecisionFromPayload(payload map[string]interface{}, defaultKind DecisionKind, fallbackSymbol string) Decision {
	kind := defaultKind
	if raw, ok := firstString(payload, "decision", "signal", "kind"); ok {
		switch DecisionKind(strings.ToLower(raw)) {
		case DecisionBuy, DecisionSell, DecisionHold, DecisionObserve, DecisionAlert:
			kind = DecisionKind(strings.ToLower(raw))
		}
	}

	confidence := 0.5
	if v, ok := payload["confidence"].(float64); ok {
		confidence = v
	}

	symbol := fallbackSymbol
	if raw, ok := firstString(payload, "symbol"); ok {
		symbol = raw
	}
	if symbol == "" {
		symbol = "UNKNOWN"
	}

	d := NewDecision(kind, symbol, confidence)
	d.Reasoning = stringList(payload["reasoning"])
	d.RiskFactors = stringList(payload["risk_factors"])
	if action, ok := payload["recommended_action"].(string); ok {
		d.RecommendedAction = action
	}
	if data, ok := payload["supporting_data"].(map[string]interface{}); ok {
		d.SupportingData = data
	}
	return d
}

func firstString(payload map[string]interface{}, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := payload[key].(string); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func stringList(raw interface{}) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}
