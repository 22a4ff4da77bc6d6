package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"minerva/internal/tools"
	"minerva/pkg/logger"
)

// PlanExecuteAgent plans a step list first, then executes the steps
// sequentially and summarizes. Used by orchestration-style agents.
type PlanExecuteAgent struct {
	*BaseAgent
}

// NewPlanExecuteAgent builds a plan-and-execute agent around the shared base.
func NewPlanExecuteAgent(cfg Config, chat ChatClient, toolReg *tools.Registry, log *logger.Logger) *PlanExecuteAgent {
	agent := &PlanExecuteAgent{BaseAgent: NewBaseAgent(cfg, chat, toolReg, log)}
	agent.execute = agent.planExecuteLoop
	return agent
}

type plan struct {
	Steps []string `json:"steps"`
}

// planExecuteLoop drives Planning -> Executing(1..n) -> Summarizing.
func (a *PlanExecuteAgent) planExecuteLoop(ctx context.Context, state *SharedState) (map[string]interface{}, []Decision, error) {
	task := fmt.Sprintf("Task type: %s\nTask content: %v", state.TaskType, state.TaskInput)

	steps := a.buildPlan(ctx, state, task)

	results := make([]string, 0, len(steps))
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, nil, NewAgentError(CodeLLMError, a.ID(), "run cancelled").WithCause(err)
		}

		state.AppendMessage(RoleUser, fmt.Sprintf("Execute step %d: %s", i+1, step))
		resp, err := a.invokeLLM(ctx, state.Messages, false)
		if err != nil {
			return nil, nil, err
		}
		state.AppendMessage(RoleAssistant, resp.Content)
		results = append(results, resp.Content)
		state.Iteration++
	}

	state.ShouldEnd = true

	return map[string]interface{}{
		"steps_completed": len(results),
		"results":         results,
	}, nil, nil
}

// buildPlan asks the model for a step list in a fixed schema. A parse
// failure degrades to a single-step plan executing the task verbatim;
// planning never hard-fails.
func (a *PlanExecuteAgent) buildPlan(ctx context.Context, state *SharedState, task string) []string {
	prompt := fmt.Sprintf(
		"Break the following task into an ordered list of steps. "+
			"Respond with JSON only: {\"steps\": [\"step 1\", \"step 2\", ...]}\n\n%s", task)

	messages := append(append([]Message(nil), state.Messages...), Message{Role: RoleUser, Content: prompt})

	resp, err := a.invokeLLM(ctx, messages, false)
	if err != nil {
		a.log.Warnw("planning failed, degrading to single-step plan", "error", err)
		return []string{task}
	}

	var p plan
	if err := json.Unmarshal([]byte(ExtractJSONBlock(resp.Content)), &p); err != nil || len(p.Steps) == 0 {
		a.log.Debugw("plan parse failed, degrading to single-step plan")
		return []string{task}
	}
	return p.Steps
}
