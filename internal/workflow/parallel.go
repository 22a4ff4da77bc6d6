package workflow

import (
	"context"
	"fmt"
	"sync"

	"minerva/internal/agents"
)

// SubTransition is one branch of a fan-out: it reads the pre-fan-out
// snapshot and returns its own output and decisions.
type SubTransition func(ctx context.Context, snapshot *agents.SharedState) (map[string]interface{}, []agents.Decision, error)

// FanOut builds a transition that runs the given branches concurrently
// against a shared read snapshot, waits for all of them, and folds
// their outputs and errors into the outgoing state. Partial failure of
// one branch never cancels its siblings.
func FanOut(branches map[string]SubTransition) TransitionFunc {
	return func(ctx context.Context, state *agents.SharedState) (*agents.SharedState, error) {
		type branchResult struct {
			name      string
			output    map[string]interface{}
			decisions []agents.Decision
			err       error
		}

		snapshot := state.Clone()
		results := make([]branchResult, 0, len(branches))

		var mu sync.Mutex
		var wg sync.WaitGroup
		for name, branch := range branches {
			wg.Add(1)
			go func(name string, branch SubTransition) {
				defer wg.Done()
				// a panicking branch becomes that branch's error; its
				// siblings keep running
				defer func() {
					if r := recover(); r != nil {
						mu.Lock()
						results = append(results, branchResult{name: name, err: fmt.Errorf("panic: %v", r)})
						mu.Unlock()
					}
				}()
				output, decisions, err := branch(ctx, snapshot)
				mu.Lock()
				results = append(results, branchResult{name: name, output: output, decisions: decisions, err: err})
				mu.Unlock()
			}(name, branch)
		}
		wg.Wait()

		for _, res := range results {
			if res.err != nil {
				state.RecordError(res.name, res.err.Error())
				continue
			}
			state.RecordOutput(res.name, res.output)
			state.AddDecisions(res.decisions...)
		}
		return state, nil
	}
}

// AgentBranch adapts an agent into a fan-out branch. A Failed output
// surfaces as the branch's error so the merge records it per node.
func AgentBranch(agent agents.Agent) SubTransition {
	return func(ctx context.Context, snapshot *agents.SharedState) (map[string]interface{}, []agents.Decision, error) {
		out := agent.Run(ctx, inputFromState(snapshot))
		if out.Status == agents.StatusFailed {
			return nil, nil, agents.NewAgentError(agents.CodeWorkflowError, agent.ID(), out.Error)
		}
		return out.Result, out.Decisions, nil
	}
}

// AgentNode adapts an agent into a graph node: the agent runs against
// the task carried by the state, and its output or error is recorded
// under the agent's identifier. A Failed agent output does not abort
// the run; downstream nodes observe the per-node error entry.
func AgentNode(agent agents.Agent) TransitionFunc {
	return func(ctx context.Context, state *agents.SharedState) (*agents.SharedState, error) {
		out := agent.Run(ctx, inputFromState(state))
		if out.Status == agents.StatusFailed {
			state.RecordError(agent.ID(), out.Error)
			return state, nil
		}
		state.RecordOutput(agent.ID(), out.Result)
		state.AddDecisions(out.Decisions...)
		return state, nil
	}
}

func inputFromState(state *agents.SharedState) agents.Input {
	return agents.Input{
		TaskID:   state.TaskID,
		TaskType: state.TaskType,
		Content:  state.TaskInput,
		Metadata: state.Metadata,
	}
}
