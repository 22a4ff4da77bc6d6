package agents

import (
	"context"
	"fmt"

	"minerva/internal/tools"
	"minerva/pkg/logger"
)

// ReActAgent runs the reasoning/acting loop: the model reasons over the
// history, optionally requests tool calls, observes their results, and
// repeats until it answers without tools, at which point a decision is
// extracted from the response.
type ReActAgent struct {
	*BaseAgent
}

// NewReActAgent builds an analyst-style agent around the shared base.
// defaultKind is the decision kind used when the model's payload omits
// one.
func NewReActAgent(cfg Config, chat ChatClient, toolReg *tools.Registry, log *logger.Logger, defaultKind DecisionKind) *ReActAgent {
	agent := &ReActAgent{BaseAgent: NewBaseAgent(cfg, chat, toolReg, log)}
	if defaultKind != "" {
		agent.decideAs = defaultKind
	}
	agent.execute = agent.reactLoop
	return agent
}

// reactLoop drives Reasoning -> (ToolCall* -> Reasoning)* -> Extracting.
func (a *ReActAgent) reactLoop(ctx context.Context, state *SharedState) (map[string]interface{}, []Decision, error) {
	for {
		if state.Iteration >= state.MaxIterations {
			return nil, nil, NewAgentError(CodeMaxIterationsExceeded, a.ID(),
				fmt.Sprintf("no terminal answer after %d iterations", state.MaxIterations))
		}

		if err := ctx.Err(); err != nil {
			return nil, nil, NewAgentError(CodeLLMError, a.ID(), "run cancelled").WithCause(err)
		}

		resp, err := a.invokeLLM(ctx, state.Messages, true)
		if err != nil {
			return nil, nil, err
		}

		if len(resp.ToolCalls) > 0 {
			state.AppendMessage(RoleAssistant, resp.Content)

			// All requested calls in one round complete; a per-call
			// failure is substituted as an inline error string.
			for _, call := range resp.ToolCalls {
				result, err := a.executeTool(ctx, call.Name, call.Arguments)
				if err != nil {
					errText := fmt.Sprintf("Error: %v", err)
					state.ToolResults[call.Name] = errText
					state.Messages = append(state.Messages, Message{
						Role:       RoleTool,
						Content:    errText,
						ToolCallID: call.ID,
					})
					continue
				}
				state.ToolResults[call.Name] = result
				state.Messages = append(state.Messages, Message{
					Role:       RoleTool,
					Content:    fmt.Sprintf("%v", result),
					ToolCallID: call.ID,
				})
			}

			state.Iteration++
			continue
		}

		// Extracting: no tool calls means the model has answered.
		state.AppendMessage(RoleAssistant, resp.Content)

		var decisions []Decision
		payload, ok := ParseResult(resp.Content)
		if ok {
			decisions = append(decisions, DecisionFromPayload(payload, a.decideAs, state.Symbol()))
		}
		state.AddDecisions(decisions...)
		state.ShouldEnd = true

		result := map[string]interface{}{
			"response":        resp.Content,
			"tool_results":    state.ToolResults,
			"iteration_count": state.Iteration,
		}
		if !ok {
			result["raw_response"] = payload["raw_response"]
		}
		return result, decisions, nil
	}
}
