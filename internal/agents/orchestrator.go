package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// OrchestratorAgent asks the model for an analysis plan, runs the
// chosen sub-agents sequentially or in parallel, and summarizes their
// outputs.
type OrchestratorAgent struct {
	*BaseAgent
	factory *Factory
}

type orchestrationPlan struct {
	AgentsToCall   []string `json:"agents_to_call"`
	ExecutionOrder string   `json:"execution_order"` // sequential or parallel
}

func newOrchestratorAgent(deps Deps, cfg Config) (Agent, error) {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = PromptFor(AgentOrchestrator)
	}
	chat, err := chatClientFor(deps, cfg)
	if err != nil {
		return nil, err
	}

	agent := &OrchestratorAgent{BaseAgent: NewBaseAgent(cfg, chat, deps.Tools, deps.Log)}
	agent.execute = agent.orchestrate
	return agent, nil
}

// bindFactory gives the orchestrator access to sub-agent construction.
// Called by the factory after the agent is built.
func (a *OrchestratorAgent) bindFactory(f *Factory) {
	a.factory = f
}

func (a *OrchestratorAgent) orchestrate(ctx context.Context, state *SharedState) (map[string]interface{}, []Decision, error) {
	if a.factory == nil {
		return nil, nil, NewAgentError(CodeInitializationFailed, a.ID(), "orchestrator has no agent factory")
	}

	plan := a.buildPlan(ctx, state)

	subInput := Input{
		TaskID:   state.TaskID,
		TaskType: state.TaskType,
		Content:  state.TaskInput,
	}

	var outputs []Output
	if plan.ExecutionOrder == "parallel" {
		outputs = a.runParallel(ctx, plan.AgentsToCall, subInput)
	} else {
		outputs = a.runSequential(ctx, plan.AgentsToCall, subInput)
	}

	var decisions []Decision
	for _, out := range outputs {
		if out.Status == StatusCompleted {
			state.RecordOutput(out.AgentID, out.Result)
			decisions = append(decisions, out.Decisions...)
		} else {
			state.RecordError(out.AgentID, out.Error)
		}
	}
	state.AddDecisions(decisions...)

	summary, err := a.summarize(ctx, state, outputs)
	if err != nil {
		// A summary failure does not discard the collected outputs.
		summary = "summary unavailable: " + err.Error()
	}

	state.ShouldEnd = true

	return map[string]interface{}{
		"plan":          plan.AgentsToCall,
		"execution":     plan.ExecutionOrder,
		"summary":       summary,
		"agent_outputs": state.AgentOutputs,
		"agent_errors":  state.AgentErrors,
	}, decisions, nil
}

// buildPlan asks the model which agents to involve. Any failure falls
// back to the default sequential plan.
func (a *OrchestratorAgent) buildPlan(ctx context.Context, state *SharedState) orchestrationPlan {
	fallback := orchestrationPlan{
		AgentsToCall:   []string{string(AgentTechnicalAnalyst), string(AgentRiskAssessor)},
		ExecutionOrder: "sequential",
	}

	prompt := fmt.Sprintf(
		"Available agents: %s.\nGiven the task below, respond with JSON only: "+
			"{\"agents_to_call\": [...], \"execution_order\": \"sequential\"|\"parallel\"}\n\nTask: %v",
		strings.Join(agentTypeNames(a.factory.registry.List()), ", "), state.TaskInput)

	messages := append(append([]Message(nil), state.Messages...), Message{Role: RoleUser, Content: prompt})
	resp, err := a.invokeLLM(ctx, messages, false)
	if err != nil {
		a.log.Warnw("orchestration planning failed, using fallback plan", "error", err)
		return fallback
	}

	var plan orchestrationPlan
	if err := json.Unmarshal([]byte(ExtractJSONBlock(resp.Content)), &plan); err != nil || len(plan.AgentsToCall) == 0 {
		a.log.Debugw("orchestration plan parse failed, using fallback plan")
		return fallback
	}
	if plan.ExecutionOrder != "parallel" {
		plan.ExecutionOrder = "sequential"
	}
	return plan
}

func (a *OrchestratorAgent) runSequential(ctx context.Context, agentTypes []string, input Input) []Output {
	outputs := make([]Output, 0, len(agentTypes))
	for _, name := range agentTypes {
		outputs = append(outputs, a.runSubAgent(ctx, name, input))
	}
	return outputs
}

func (a *OrchestratorAgent) runParallel(ctx context.Context, agentTypes []string, input Input) []Output {
	outputs := make([]Output, len(agentTypes))
	var wg sync.WaitGroup
	for i, name := range agentTypes {
		wg.Add(1)
		go func(idx int, agentName string) {
			defer wg.Done()
			outputs[idx] = a.runSubAgent(ctx, agentName, input)
		}(i, name)
	}
	wg.Wait()
	return outputs
}

// runSubAgent never propagates a failure; a missing or failing agent is
// folded into a Failed output keyed by the requested name.
func (a *OrchestratorAgent) runSubAgent(ctx context.Context, name string, input Input) Output {
	sub, err := a.factory.CreateByType(AgentType(name))
	if err != nil {
		return Output{
			AgentID:   name,
			Status:    StatusFailed,
			Result:    map[string]interface{}{},
			Decisions: []Decision{},
			Error:     err.Error(),
		}
	}
	return sub.Run(ctx, input)
}

func (a *OrchestratorAgent) summarize(ctx context.Context, state *SharedState, outputs []Output) (string, error) {
	var sb strings.Builder
	sb.WriteString("Summarize the following agent outputs into a short assessment:\n")
	for _, out := range outputs {
		if out.Status == StatusCompleted {
			fmt.Fprintf(&sb, "- %s: %v\n", out.AgentID, out.Result)
		} else {
			fmt.Fprintf(&sb, "- %s failed: %s\n", out.AgentID, out.Error)
		}
	}

	messages := append(append([]Message(nil), state.Messages...), Message{Role: RoleUser, Content: sb.String()})
	resp, err := a.invokeLLM(ctx, messages, false)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func agentTypeNames(types []AgentType) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, string(t))
	}
	return out
}
