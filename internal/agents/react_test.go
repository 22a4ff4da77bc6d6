package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerva/internal/tools"
)

// stubChat replays scripted model responses in order.
type stubChat struct {
	responses []*ModelResponse
	errs      []error
	calls     int
}

func (s *stubChat) Invoke(ctx context.Context, messages []Message, toolsEnabled bool) (*ModelResponse, error) {
	idx := s.calls
	s.calls++
	if idx < len(s.errs) && s.errs[idx] != nil {
		return nil, s.errs[idx]
	}
	if idx >= len(s.responses) {
		return &ModelResponse{Content: "{}"}, nil
	}
	return s.responses[idx], nil
}

func testConfig(agentType AgentType) Config {
	return Config{
		ID:            "test-" + string(agentType),
		Type:          agentType,
		MaxRetries:    1,
		MaxIterations: 3,
	}
}

func testToolRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	registry := tools.NewRegistry()
	require.NoError(t, registry.Register(tools.New(tools.Metadata{
		Name:        "get_stock_price",
		Description: "test quote tool",
		Category:    tools.CategoryMarketData,
	}, func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		return map[string]interface{}{"price": 1688.0}, nil
	})))
	require.NoError(t, registry.Register(tools.New(tools.Metadata{
		Name:        "broken_tool",
		Description: "always fails",
		Category:    tools.CategoryUtility,
	}, func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		return nil, errors.New("boom")
	})))
	return registry
}

func TestReActAgent_SingleIterationDecision(t *testing.T) {
	chat := &stubChat{responses: []*ModelResponse{
		{Content: `{"decision":"buy","confidence":0.82,"reasoning":["strong momentum"]}`},
	}}

	agent := NewReActAgent(testConfig(AgentTechnicalAnalyst), chat, testToolRegistry(t), nil, DecisionHold)

	out := agent.Run(context.Background(), Input{
		TaskID:   "task-1",
		TaskType: "analysis",
		Content:  map[string]interface{}{"symbol": "600519"},
	})

	require.Equal(t, StatusCompleted, out.Status)
	require.Len(t, out.Decisions, 1)

	d := out.Decisions[0]
	assert.Equal(t, DecisionBuy, d.Kind)
	assert.Equal(t, "600519", d.Symbol)
	assert.Equal(t, 0.82, d.Confidence)
	assert.Equal(t, TierHigh, d.Tier())
	assert.Equal(t, []string{"strong momentum"}, d.Reasoning)

	assert.Equal(t, 0, out.Result["iteration_count"])
}

func TestReActAgent_ToolRound(t *testing.T) {
	chat := &stubChat{responses: []*ModelResponse{
		{ToolCalls: []ModelToolCall{{ID: "c1", Name: "get_stock_price", Arguments: map[string]interface{}{"symbol": "600519"}}}},
		{Content: `{"decision":"hold","confidence":0.6}`},
	}}

	agent := NewReActAgent(testConfig(AgentTechnicalAnalyst), chat, testToolRegistry(t), nil, DecisionHold)

	out := agent.Run(context.Background(), Input{
		TaskID:  "task-2",
		Content: map[string]interface{}{"symbol": "600519"},
	})

	require.Equal(t, StatusCompleted, out.Status)
	assert.Equal(t, 1, out.Result["iteration_count"])

	toolResults, ok := out.Result["tool_results"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, toolResults, "get_stock_price")
}

func TestReActAgent_PanickingToolBecomesFailedOutput(t *testing.T) {
	// A panic in an injected tool handler must not escape Run; the
	// caller still receives a structured Failed output.
	registry := tools.NewRegistry()
	require.NoError(t, registry.Register(tools.New(tools.Metadata{
		Name:        "unstable_tool",
		Description: "writes to a nil map",
		Category:    tools.CategoryUtility,
	}, func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		var m map[string]int
		m["x"] = 1
		return nil, nil
	})))

	chat := &stubChat{responses: []*ModelResponse{
		{ToolCalls: []ModelToolCall{{ID: "c1", Name: "unstable_tool", Arguments: map[string]interface{}{}}}},
		{Content: `{"decision":"hold","confidence":0.5}`},
	}}

	agent := NewReActAgent(testConfig(AgentTechnicalAnalyst), chat, registry, nil, DecisionHold)

	var out Output
	require.NotPanics(t, func() {
		out = agent.Run(context.Background(), Input{
			TaskID:  "task-panic",
			Content: map[string]interface{}{"symbol": "600519"},
		})
	})

	require.Equal(t, StatusFailed, out.Status)
	assert.Contains(t, out.Error, "panic")
	assert.NotNil(t, out.Result)
	assert.NotNil(t, out.Decisions)
}

func TestReActAgent_ToolFailureInline(t *testing.T) {
	// A failing tool is substituted with an inline error string; the
	// round continues and the run completes.
	chat := &stubChat{responses: []*ModelResponse{
		{ToolCalls: []ModelToolCall{
			{ID: "c1", Name: "broken_tool", Arguments: map[string]interface{}{}},
			{ID: "c2", Name: "get_stock_price", Arguments: map[string]interface{}{"symbol": "600519"}},
		}},
		{Content: `{"decision":"observe","confidence":0.4}`},
	}}

	agent := NewReActAgent(testConfig(AgentTechnicalAnalyst), chat, testToolRegistry(t), nil, DecisionHold)

	out := agent.Run(context.Background(), Input{
		TaskID:  "task-3",
		Content: map[string]interface{}{"symbol": "600519"},
	})

	require.Equal(t, StatusCompleted, out.Status)
	toolResults := out.Result["tool_results"].(map[string]interface{})
	assert.Contains(t, toolResults["broken_tool"], "Error:")
	assert.Contains(t, toolResults, "get_stock_price")
}

func TestReActAgent_MaxIterationsExceeded(t *testing.T) {
	// The model keeps requesting tools and never answers.
	toolCall := &ModelResponse{ToolCalls: []ModelToolCall{
		{ID: "c", Name: "get_stock_price", Arguments: map[string]interface{}{"symbol": "600519"}},
	}}
	chat := &stubChat{responses: []*ModelResponse{toolCall, toolCall, toolCall, toolCall}}

	cfg := testConfig(AgentTechnicalAnalyst)
	cfg.MaxIterations = 2

	agent := NewReActAgent(cfg, chat, testToolRegistry(t), nil, DecisionHold)

	out := agent.Run(context.Background(), Input{
		TaskID:  "task-4",
		Content: map[string]interface{}{"symbol": "600519"},
	})

	require.Equal(t, StatusFailed, out.Status)
	assert.Contains(t, out.Error, string(CodeMaxIterationsExceeded))
	assert.NotNil(t, out.Result)
	assert.NotNil(t, out.Decisions)
}

func TestReActAgent_ParseFailureIsNotError(t *testing.T) {
	chat := &stubChat{responses: []*ModelResponse{
		{Content: "the market looks fine, nothing to do"},
	}}

	agent := NewReActAgent(testConfig(AgentSentimentAnalyst), chat, testToolRegistry(t), nil, DecisionObserve)

	out := agent.Run(context.Background(), Input{
		TaskID:  "task-5",
		Content: map[string]interface{}{"symbol": "600519"},
	})

	require.Equal(t, StatusCompleted, out.Status)
	assert.Empty(t, out.Decisions)
	assert.Equal(t, "the market looks fine, nothing to do", out.Result["raw_response"])
}

func TestAgent_EmptyTaskID(t *testing.T) {
	agent := NewReActAgent(testConfig(AgentTechnicalAnalyst), &stubChat{}, nil, nil, DecisionHold)

	out := agent.Run(context.Background(), Input{TaskID: ""})
	require.Equal(t, StatusFailed, out.Status)
	assert.Contains(t, out.Error, string(CodeInvalidInput))
}

func TestAgent_LLMRetryExhaustion(t *testing.T) {
	chat := &stubChat{errs: []error{errors.New("e1"), errors.New("e2"), errors.New("e3")}}

	cfg := testConfig(AgentTechnicalAnalyst)
	cfg.MaxRetries = 3

	agent := NewReActAgent(cfg, chat, testToolRegistry(t), nil, DecisionHold)

	out := agent.Run(context.Background(), Input{
		TaskID:  "task-6",
		Content: map[string]interface{}{"symbol": "600519"},
	})

	require.Equal(t, StatusFailed, out.Status)
	assert.Contains(t, out.Error, string(CodeLLMError))
	assert.Equal(t, 3, chat.calls)
}

func TestAgent_NeverPanicsPastBoundary(t *testing.T) {
	// Unknown tool requested by the model: substituted inline, not fatal.
	chat := &stubChat{responses: []*ModelResponse{
		{ToolCalls: []ModelToolCall{{ID: "c1", Name: "no_such_tool"}}},
		{Content: `{"decision":"hold","confidence":0.5}`},
	}}

	agent := NewReActAgent(testConfig(AgentTechnicalAnalyst), chat, testToolRegistry(t), nil, DecisionHold)

	out := agent.Run(context.Background(), Input{
		TaskID:  "task-7",
		Content: map[string]interface{}{"symbol": "600519"},
	})

	require.Equal(t, StatusCompleted, out.Status)
	toolResults := out.Result["tool_results"].(map[string]interface{})
	assert.Contains(t, toolResults["no_such_tool"], "Error:")
}
