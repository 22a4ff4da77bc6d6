package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanExecuteAgent_FollowsPlan(t *testing.T) {
	chat := &stubChat{responses: []*ModelResponse{
		{Content: `{"steps": ["inspect price", "check risk"]}`},
		{Content: "price inspected"},
		{Content: "risk checked"},
	}}

	agent := NewPlanExecuteAgent(testConfig(AgentOrchestrator), chat, nil, nil)

	out := agent.Run(context.Background(), Input{
		TaskID:   "task-1",
		TaskType: "orchestration",
		Content:  map[string]interface{}{"symbol": "600519"},
	})

	require.Equal(t, StatusCompleted, out.Status)
	assert.Equal(t, 2, out.Result["steps_completed"])
	assert.Equal(t, []string{"price inspected", "risk checked"}, out.Result["results"])
}

func TestPlanExecuteAgent_PlanParseFailureDegrades(t *testing.T) {
	// A malformed plan degrades to a single verbatim step; planning
	// never hard-fails.
	chat := &stubChat{responses: []*ModelResponse{
		{Content: "I cannot produce JSON right now"},
		{Content: "done anyway"},
	}}

	agent := NewPlanExecuteAgent(testConfig(AgentOrchestrator), chat, nil, nil)

	out := agent.Run(context.Background(), Input{
		TaskID:  "task-2",
		Content: map[string]interface{}{"symbol": "600519"},
	})

	require.Equal(t, StatusCompleted, out.Status)
	assert.Equal(t, 1, out.Result["steps_completed"])
}

func TestAgentRegistry_FailFastOnDuplicate(t *testing.T) {
	registry := NewRegistry()

	ctor := func(deps Deps, cfg Config) (Agent, error) {
		return NewReActAgent(cfg, &stubChat{}, nil, nil, DecisionHold), nil
	}

	require.NoError(t, registry.Register(AgentTechnicalAnalyst, ctor))

	err := registry.Register(AgentTechnicalAnalyst, ctor)
	require.Error(t, err)
	assert.Equal(t, CodeInitializationFailed, CodeOf(err))

	_, err = registry.Get(AgentRiskAssessor)
	require.Error(t, err)
	assert.Equal(t, CodeAgentNotFound, CodeOf(err))
}

func TestSharedState_Clone(t *testing.T) {
	state := NewSharedState("task-1", "analysis", map[string]interface{}{"symbol": "600519"})
	state.AppendMessage(RoleUser, "hello")
	state.RecordOutput("a", map[string]interface{}{"x": 1})
	state.AddDecisions(NewDecision(DecisionBuy, "600519", 0.8))

	clone := state.Clone()
	clone.AppendMessage(RoleAssistant, "world")
	clone.RecordOutput("b", map[string]interface{}{"y": 2})
	clone.RecordError("a", "late failure")

	assert.Len(t, state.Messages, 1)
	assert.Len(t, clone.Messages, 2)
	assert.NotContains(t, state.AgentOutputs, "b")
	assert.Empty(t, state.AgentErrors)
	assert.Equal(t, "600519", clone.Symbol())
}

func TestSharedState_SymbolFallback(t *testing.T) {
	state := NewSharedState("task-1", "analysis", map[string]interface{}{})
	assert.Equal(t, "UNKNOWN", state.Symbol())
}
