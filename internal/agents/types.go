package agents

import (
	"context"
	"time"
)

// AgentType enumerates supported agent specializations.
type AgentType string

const (
	AgentTechnicalAnalyst   AgentType = "technical_analyst"
	AgentFundamentalAnalyst AgentType = "fundamental_analyst"
	AgentSentimentAnalyst   AgentType = "sentiment_analyst"
	AgentStrategyAnalyzer   AgentType = "strategy_analyzer"
	AgentRiskAssessor       AgentType = "risk_assessor"
	AgentSignalGenerator    AgentType = "signal_generator"
	AgentOrchestrator       AgentType = "orchestrator"
	AgentSupervisor         AgentType = "supervisor"
)

// Status reports how an agent run ended.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Input is the task descriptor that triggers an agent run.
type Input struct {
	TaskID   string
	TaskType string
	Content  map[string]interface{}
	Context  map[string]interface{}
	Metadata map[string]interface{}
}

// Output is the structured result of an agent run. Failed outputs carry a
// non-empty error string and zero-value result/decisions so downstream
// aggregation treats both statuses uniformly.
type Output struct {
	AgentID   string
	Status    Status
	Result    map[string]interface{}
	Decisions []Decision
	Error     string
	Elapsed   time.Duration
}

// Agent is a unit that turns a task plus state into decisions via model
// and tool calls.
type Agent interface {
	ID() string
	Type() AgentType
	Run(ctx context.Context, input Input) Output
}
