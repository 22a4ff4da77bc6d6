package workflow

import (
	"context"

	"minerva/internal/agents"
	"minerva/pkg/logger"
)

// DefaultMaxSteps bounds a run when the caller does not override it.
// Cyclic topologies (supervisor loops) rely on this cap to guarantee
// termination even when routing never yields the terminate label.
const DefaultMaxSteps = 50

// RunConfig carries per-run engine settings.
type RunConfig struct {
	// MaxSteps caps node transitions for the run; zero means
	// DefaultMaxSteps.
	MaxSteps int
}

// Engine walks a compiled graph, applying node transitions to a shared
// state until a terminal condition or the step cap is hit.
type Engine struct {
	log *logger.Logger
}

// NewEngine constructs an engine.
func NewEngine(log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Get()
	}
	return &Engine{log: log.With("component", "workflow_engine")}
}

// Run executes the graph from its entry node. Cancellation takes
// effect at the next node boundary; in-flight node work is allowed to
// complete.
func (e *Engine) Run(ctx context.Context, g *Graph, initial *agents.SharedState, cfg RunConfig) (*agents.SharedState, error) {
	if g == nil {
		return nil, workflowError("graph is nil")
	}
	if initial == nil {
		return nil, workflowError("initial state is nil")
	}

	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	state := initial.Clone()
	current := g.entry

	for step := 0; ; step++ {
		if step >= maxSteps {
			return state, workflowError("run exceeded %d steps at node %q", maxSteps, current)
		}
		if err := ctx.Err(); err != nil {
			return state, workflowError("run cancelled at node %q: %v", current, err)
		}

		fn := g.nodes[current]
		e.log.Debugw("executing node", "node", current, "step", step, "task_id", state.TaskID)

		next, err := fn(ctx, state.Clone())
		if err != nil {
			return state, workflowError("node %q failed: %v", current, err)
		}
		if next == nil {
			return state, workflowError("node %q returned nil state", current)
		}
		state = next

		if edge, ok := g.conditional[current]; ok {
			label := edge.predicate(state)
			target, known := edge.routes[label]
			if !known {
				return state, workflowError("node %q predicate returned unknown label %q", current, label)
			}
			if target == Terminate {
				e.log.Debugw("run terminated by routing label", "node", current, "step", step)
				return state, nil
			}
			current = target
			continue
		}

		if to, ok := g.edges[current]; ok {
			current = to
			continue
		}

		// Declared terminal with no outgoing edge ends the run.
		e.log.Debugw("run reached terminal node", "node", current, "step", step)
		return state, nil
	}
}
