package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerva/internal/adapters/ai"
	"minerva/internal/domain/ai_usage"
)

type stubChatProvider struct {
	resp *ai.ChatResponse
}

func (s *stubChatProvider) Name() string        { return "alibaba" }
func (s *stubChatProvider) SupportsTools() bool { return true }

func (s *stubChatProvider) GetModel(ctx context.Context, model string) (ai.ModelInfo, error) {
	return ai.ModelInfo{Name: model}, nil
}

func (s *stubChatProvider) ListModels(ctx context.Context) ([]ai.ModelInfo, error) {
	return nil, nil
}

func (s *stubChatProvider) Chat(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	return s.resp, nil
}

type capturingRecorder struct {
	records []*ai_usage.UsageLog
}

func (c *capturingRecorder) Store(ctx context.Context, log *ai_usage.UsageLog) error {
	c.records = append(c.records, log)
	return nil
}

func TestChatClient_RecordsUsage(t *testing.T) {
	provider := &stubChatProvider{resp: &ai.ChatResponse{
		Content: "done",
		Model:   "qwen3-max",
		Usage:   ai.Usage{PromptTokens: 120, CompletionTokens: 40, TotalTokens: 160},
	}}
	recorder := &capturingRecorder{}

	client, err := NewChatClient(provider, Config{
		ID:    "technical_analyst",
		Type:  AgentTechnicalAnalyst,
		Model: "qwen3-max",
	}, nil, recorder)
	require.NoError(t, err)

	ctx := WithRunInfo(context.Background(), RunInfo{
		RunID:      "run_abc",
		StrategyID: "strat-1",
		Workflow:   "strategy_decision",
	})

	_, err = client.Invoke(ctx, []Message{{Role: "user", Content: "analyze 600519"}}, false)
	require.NoError(t, err)

	require.Len(t, recorder.records, 1)
	rec := recorder.records[0]
	assert.Equal(t, "run_abc", rec.RunID)
	assert.Equal(t, "strat-1", rec.StrategyID)
	assert.Equal(t, "strategy_decision", rec.Workflow)
	assert.Equal(t, "technical_analyst", rec.AgentID)
	assert.Equal(t, "alibaba", rec.Provider)
	assert.Equal(t, "qwen3-max", rec.ModelID)
	assert.Equal(t, uint32(120), rec.PromptTokens)
	assert.Equal(t, uint32(160), rec.TotalTokens)
	assert.Greater(t, rec.TotalCostUSD, 0.0)
	assert.NotEmpty(t, rec.EventID)
}

func TestChatClient_NilRecorderSkipsUsage(t *testing.T) {
	provider := &stubChatProvider{resp: &ai.ChatResponse{Content: "ok"}}

	client, err := NewChatClient(provider, Config{ID: "sentiment_analyst"}, nil, nil)
	require.NoError(t, err)

	out, err := client.Invoke(context.Background(), []Message{{Role: "user", Content: "hi"}}, false)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Content)
}

func TestRunInfoFrom_Absent(t *testing.T) {
	info := RunInfoFrom(context.Background())
	assert.Empty(t, info.RunID)
	assert.Empty(t, info.StrategyID)
}
