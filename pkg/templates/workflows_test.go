package templates

import (
	"strings"
	"testing"
	"time"
)

func TestWorkflowTemplate_StrategyInput(t *testing.T) {
	registry := Get()

	data := map[string]interface{}{
		"Strategy":  "momentum_breakout",
		"Symbol":    "600519",
		"Timestamp": time.Now().Format(time.RFC3339),
	}

	output, err := registry.Render("workflows/strategy_input", data)
	if err != nil {
		t.Fatalf("Failed to render workflow template: %v", err)
	}

	if output == "" {
		t.Fatal("Rendered output is empty")
	}

	requiredSections := []string{
		"STRATEGY EVALUATION REQUEST",
		"600519",
		"momentum_breakout",
		"MISSION",
		"ANALYSIS DIMENSIONS",
		"OUTPUT REQUIREMENT",
	}

	for _, section := range requiredSections {
		if !strings.Contains(output, section) {
			t.Errorf("Missing required section: %s", section)
		}
	}

	// Parameters block should be omitted when no parameters are set
	if strings.Contains(output, "STRATEGY PARAMETERS") {
		t.Error("Parameters section rendered without parameters")
	}
}

func TestWorkflowTemplate_ParametersInjection(t *testing.T) {
	registry := Get()

	data := map[string]interface{}{
		"Strategy":   "value_screen",
		"Symbol":     "000001",
		"Timestamp":  "2026-08-30T10:00:00Z",
		"Parameters": `{"max_pe": 15, "min_dividend_yield": 0.03}`,
	}

	output, err := registry.Render("workflows/strategy_input", data)
	if err != nil {
		t.Fatalf("Failed to render template: %v", err)
	}

	if !strings.Contains(output, "STRATEGY PARAMETERS") {
		t.Error("Missing parameters section")
	}
	if !strings.Contains(output, `"max_pe": 15`) {
		t.Error("Parameters not injected into output")
	}
	if !strings.Contains(output, "2026-08-30T10:00:00Z") {
		t.Error("Timestamp not injected into output")
	}
}

func TestWorkflowTemplate_PastCasesInjection(t *testing.T) {
	registry := Get()

	data := map[string]interface{}{
		"Strategy":  "momentum_breakout",
		"Symbol":    "600519",
		"Timestamp": "2026-08-30T10:00:00Z",
		"PastCases": "- [2026-08-01] buy 600519 with confidence 0.82: breakout above resistance",
	}

	output, err := registry.Render("workflows/strategy_input", data)
	if err != nil {
		t.Fatalf("Failed to render template: %v", err)
	}

	if !strings.Contains(output, "SIMILAR PAST CASES") {
		t.Error("Missing past cases section")
	}
	if !strings.Contains(output, "breakout above resistance") {
		t.Error("Past cases not injected into output")
	}
}

func TestNotificationTemplate_Signal(t *testing.T) {
	registry := Get()

	data := map[string]interface{}{
		"KindEmoji":   "🟢",
		"KindLabel":   "BUY",
		"Symbol":      "600519",
		"Strategy":    "momentum_breakout",
		"Confidence":  "82%",
		"Tier":        "high",
		"Price":       "1708.00",
		"TargetPrice": "1790.00",
		"StopLoss":    "",
		"Reasoning":   []string{"MACD golden cross on the daily", "volume expansion above 20d average"},
		"RiskFactors": []string{"earnings report due next week"},
		"CreatedAt":   "2026-08-30 14:05 CST",
	}

	output, err := registry.Render("notifications/signal", data)
	if err != nil {
		t.Fatalf("Failed to render signal template: %v", err)
	}

	for _, want := range []string{"BUY", "600519", "82%", "1790.00", "MACD golden cross", "earnings report"} {
		if !strings.Contains(output, want) {
			t.Errorf("Missing %q in rendered signal", want)
		}
	}
	if strings.Contains(output, "Stop loss") {
		t.Error("Stop loss line rendered without a value")
	}
}

func TestWorkflowTemplate_FallbackOnError(t *testing.T) {
	registry := Get()

	_, err := registry.Render("workflows/nonexistent_template", nil)
	if err == nil {
		t.Error("Expected error for nonexistent template")
	}
}
