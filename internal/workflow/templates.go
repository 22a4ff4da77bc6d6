package workflow

import (
	"fmt"

	"minerva/internal/agents"
)

// Sequential wires an ordered agent list into a strict pipeline: each
// node feeds the next, the last is terminal.
func Sequential(agentList []agents.Agent) (*Graph, error) {
	if len(agentList) == 0 {
		return nil, workflowError("sequential workflow needs at least one agent")
	}

	b := NewBuilder()
	for _, ag := range agentList {
		b.AddNode(ag.ID(), AgentNode(ag))
	}
	for i := 0; i < len(agentList)-1; i++ {
		b.AddEdge(agentList[i].ID(), agentList[i+1].ID())
	}
	b.SetEntry(agentList[0].ID())
	b.SetTerminal(agentList[len(agentList)-1].ID())
	return b.Compile()
}

// ParallelThenAggregate wires a single fan-out node over the given
// branches feeding one terminal aggregator node.
func ParallelThenAggregate(branches map[string]SubTransition, aggregate TransitionFunc) (*Graph, error) {
	if len(branches) == 0 {
		return nil, workflowError("parallel workflow needs at least one branch")
	}
	if aggregate == nil {
		return nil, workflowError("parallel workflow needs an aggregator")
	}

	return NewBuilder().
		AddNode("fan_out", FanOut(branches)).
		AddNode("aggregate", aggregate).
		AddEdge("fan_out", "aggregate").
		SetEntry("fan_out").
		SetTerminal("aggregate").
		Compile()
}

// SupervisorLoop wires the supervisor/worker cycle: the supervisor's
// predicate routes to one of the workers or to the terminate sentinel,
// and every worker feeds back into the supervisor. The cycle is
// bounded by the engine's step cap.
func SupervisorLoop(supervisor TransitionFunc, route PredicateFunc, workers map[string]TransitionFunc) (*Graph, error) {
	if supervisor == nil || route == nil {
		return nil, workflowError("supervisor workflow needs a supervisor and a routing predicate")
	}
	if len(workers) == 0 {
		return nil, workflowError("supervisor workflow needs at least one worker")
	}

	b := NewBuilder().AddNode("supervisor", supervisor)

	routes := map[string]string{Terminate: Terminate}
	for name, fn := range workers {
		if name == "supervisor" || name == Terminate {
			return nil, workflowError("worker name %q is reserved", name)
		}
		b.AddNode(name, fn)
		b.AddEdge(name, "supervisor")
		routes[name] = name
	}

	b.AddConditionalEdge("supervisor", route, routes)
	b.SetEntry("supervisor")
	return b.Compile()
}

// Visualize renders a human-readable edge list for a compiled graph.
func Visualize(g *Graph) string {
	if g == nil {
		return ""
	}

	out := fmt.Sprintf("entry: %s\n", g.entry)
	for _, name := range g.order {
		if to, ok := g.edges[name]; ok {
			out += fmt.Sprintf("%s -> %s\n", name, to)
		}
		if edge, ok := g.conditional[name]; ok {
			for label, to := range edge.routes {
				out += fmt.Sprintf("%s -[%s]-> %s\n", name, label, to)
			}
		}
		if g.terminals[name] {
			out += fmt.Sprintf("%s (terminal)\n", name)
		}
	}
	return out
}
