package ai_usage

import "time"

// UsageLog represents a single LLM call made by an agent during a workflow run
type UsageLog struct {
	Timestamp time.Time `ch:"timestamp"`
	EventID   string    `ch:"event_id"`

	RunID      string `ch:"run_id"`
	StrategyID string `ch:"strategy_id"`

	AgentID   string `ch:"agent_id"`
	AgentType string `ch:"agent_type"`
	Workflow  string `ch:"workflow"`

	Provider    string `ch:"provider"`
	ModelID     string `ch:"model_id"`
	ModelFamily string `ch:"model_family"`

	PromptTokens     uint32 `ch:"prompt_tokens"`
	CompletionTokens uint32 `ch:"completion_tokens"`
	TotalTokens      uint32 `ch:"total_tokens"`

	InputCostUSD  float64 `ch:"input_cost_usd"`
	OutputCostUSD float64 `ch:"output_cost_usd"`
	TotalCostUSD  float64 `ch:"total_cost_usd"`

	ToolCallsCount uint16 `ch:"tool_calls_count"`
	ReasoningStep  uint16 `ch:"reasoning_step"`

	LatencyMs uint32 `ch:"latency_ms"`

	CreatedAt time.Time `ch:"created_at"`
}
