package workflow

import (
	"context"

	"minerva/internal/agents"
	"minerva/pkg/logger"
)

// Runner binds a compiled graph to the engine for repeated execution.
// A single Runner serves concurrent callers; every run owns its state.
type Runner struct {
	graph  *Graph
	engine *Engine
	cfg    RunConfig
}

// NewRunner wraps a compiled graph for execution.
func NewRunner(graph *Graph, engine *Engine, cfg RunConfig) *Runner {
	return &Runner{graph: graph, engine: engine, cfg: cfg}
}

// Execute drives one run for the given task descriptor and returns the
// final state.
func (r *Runner) Execute(ctx context.Context, input agents.Input) (*agents.SharedState, error) {
	state := agents.NewSharedState(input.TaskID, input.TaskType, input.Content)
	for k, v := range input.Metadata {
		state.Metadata[k] = v
	}

	strategyID, _ := input.Metadata["strategy_id"].(string)
	ctx = agents.WithRunInfo(ctx, agents.RunInfo{
		RunID:      input.TaskID,
		StrategyID: strategyID,
		Workflow:   input.TaskType,
	})

	return r.engine.Run(ctx, r.graph, state, r.cfg)
}

// Graph exposes the compiled graph, mainly for visualization.
func (r *Runner) Graph() *Graph { return r.graph }

// StrategyDecision builds the main decision workflow: three analysts
// fan out in parallel, a risk assessor reviews their merged outputs,
// and a signal generator produces the final decision.
func StrategyDecision(factory *agents.Factory, log *logger.Logger) (*Runner, error) {
	technical, err := factory.CreateByType(agents.AgentTechnicalAnalyst)
	if err != nil {
		return nil, err
	}
	fundamental, err := factory.CreateByType(agents.AgentFundamentalAnalyst)
	if err != nil {
		return nil, err
	}
	sentiment, err := factory.CreateByType(agents.AgentSentimentAnalyst)
	if err != nil {
		return nil, err
	}
	risk, err := factory.CreateByType(agents.AgentRiskAssessor)
	if err != nil {
		return nil, err
	}
	signal, err := factory.CreateByType(agents.AgentSignalGenerator)
	if err != nil {
		return nil, err
	}

	graph, err := NewBuilder().
		AddNode("analyze", FanOut(map[string]SubTransition{
			technical.ID():   AgentBranch(technical),
			fundamental.ID(): AgentBranch(fundamental),
			sentiment.ID():   AgentBranch(sentiment),
		})).
		AddNode("assess_risk", AgentNode(risk)).
		AddNode("decide", decideNode(signal)).
		AddEdge("analyze", "assess_risk").
		AddEdge("assess_risk", "decide").
		SetEntry("analyze").
		SetTerminal("decide").
		Compile()
	if err != nil {
		return nil, err
	}

	return NewRunner(graph, NewEngine(log), RunConfig{}), nil
}

// TechnicalAnalysis builds the single-analyst pipeline: technical
// analysis followed by signal generation.
func TechnicalAnalysis(factory *agents.Factory, log *logger.Logger) (*Runner, error) {
	technical, err := factory.CreateByType(agents.AgentTechnicalAnalyst)
	if err != nil {
		return nil, err
	}
	signal, err := factory.CreateByType(agents.AgentSignalGenerator)
	if err != nil {
		return nil, err
	}

	graph, err := NewBuilder().
		AddNode("technical", AgentNode(technical)).
		AddNode("decide", decideNode(signal)).
		AddEdge("technical", "decide").
		SetEntry("technical").
		SetTerminal("decide").
		Compile()
	if err != nil {
		return nil, err
	}

	return NewRunner(graph, NewEngine(log), RunConfig{}), nil
}

// Research builds the supervisor-routed loop: the supervisor reviews
// accumulated outputs and either routes to another analyst round or
// terminates. The engine's step cap bounds the cycle.
func Research(factory *agents.Factory, log *logger.Logger, maxSteps int) (*Runner, error) {
	supervisor, err := factory.CreateByType(agents.AgentSupervisor)
	if err != nil {
		return nil, err
	}
	technical, err := factory.CreateByType(agents.AgentTechnicalAnalyst)
	if err != nil {
		return nil, err
	}
	fundamental, err := factory.CreateByType(agents.AgentFundamentalAnalyst)
	if err != nil {
		return nil, err
	}

	workers := map[string]TransitionFunc{
		technical.ID():   AgentNode(technical),
		fundamental.ID(): AgentNode(fundamental),
	}

	graph, err := SupervisorLoop(AgentNode(supervisor), supervisorRoute(supervisor.ID(), workers), workers)
	if err != nil {
		return nil, err
	}

	return NewRunner(graph, NewEngine(log), RunConfig{MaxSteps: maxSteps}), nil
}

// supervisorRoute reads the supervisor's latest verdict. An approve
// action terminates the loop; otherwise the named worker runs next.
// A missing verdict or an unknown worker also terminates.
func supervisorRoute(supervisorID string, workers map[string]TransitionFunc) func(*agents.SharedState) string {
	return func(state *agents.SharedState) string {
		verdict, ok := state.AgentOutputs[supervisorID]
		if !ok {
			return Terminate
		}
		if action, _ := verdict["action"].(string); action == "approve" {
			return Terminate
		}
		next, _ := verdict["next_agent"].(string)
		if _, known := workers[next]; known {
			return next
		}
		return Terminate
	}
}

// decideNode runs the signal generator and promotes its strongest
// decision to the run's final decision.
func decideNode(signal agents.Agent) TransitionFunc {
	node := AgentNode(signal)
	return func(ctx context.Context, state *agents.SharedState) (*agents.SharedState, error) {
		state, err := node(ctx, state)
		if err != nil {
			return state, err
		}

		if len(state.Decisions) > 0 {
			best := state.Decisions[0]
			for _, d := range state.Decisions[1:] {
				if d.Confidence > best.Confidence {
					best = d
				}
			}
			state.FinalDecision = &best
		}
		state.ShouldEnd = true
		return state, nil
	}
}
