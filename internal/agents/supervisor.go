package agents

import (
	"context"
	"encoding/json"
	"fmt"
)

// SupervisorAgent reviews accumulated agent outputs and decides whether
// the run is complete, needs a retry, or needs a supplementary agent.
type SupervisorAgent struct {
	*BaseAgent
}

// Review is the supervisor's verdict for one routing round.
type Review struct {
	QualityScore float64 `json:"quality_score"`
	Action       string  `json:"action"` // approve, retry, supplement
	NextAgent    string  `json:"next_agent"`
}

func newSupervisorAgent(deps Deps, cfg Config) (Agent, error) {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = PromptFor(AgentSupervisor)
	}
	chat, err := chatClientFor(deps, cfg)
	if err != nil {
		return nil, err
	}

	agent := &SupervisorAgent{BaseAgent: NewBaseAgent(cfg, chat, deps.Tools, deps.Log)}
	agent.execute = agent.review
	return agent, nil
}

func (a *SupervisorAgent) review(ctx context.Context, state *SharedState) (map[string]interface{}, []Decision, error) {
	verdict, err := a.ReviewState(ctx, state)
	if err != nil {
		return nil, nil, err
	}

	state.ShouldEnd = verdict.Action == "approve"

	return map[string]interface{}{
		"quality_score": verdict.QualityScore,
		"action":        verdict.Action,
		"next_agent":    verdict.NextAgent,
	}, nil, nil
}

// ReviewState runs one supervision round over the state's agent
// outputs. A malformed model response degrades to approval so a broken
// supervisor cannot wedge a run.
func (a *SupervisorAgent) ReviewState(ctx context.Context, state *SharedState) (Review, error) {
	prompt := fmt.Sprintf(
		"Review these agent outputs for completeness and quality.\nOutputs: %v\nErrors: %v",
		state.AgentOutputs, state.AgentErrors)

	messages := append(append([]Message(nil), state.Messages...), Message{Role: RoleUser, Content: prompt})
	resp, err := a.invokeLLM(ctx, messages, false)
	if err != nil {
		return Review{}, err
	}

	var verdict Review
	if err := json.Unmarshal([]byte(ExtractJSONBlock(resp.Content)), &verdict); err != nil {
		a.log.Debugw("supervisor verdict parse failed, approving")
		return Review{QualityScore: 0.5, Action: "approve"}, nil
	}
	if verdict.Action == "" {
		verdict.Action = "approve"
	}
	return verdict, nil
}
