package workflow

import (
	"context"
	"fmt"

	"minerva/internal/agents"
)

// Terminate is the reserved routing label that ends a run.
const Terminate = "terminate"

// TransitionFunc turns one state into the next. Implementations must
// treat the input as theirs to mutate; the engine hands each transition
// its own copy.
type TransitionFunc func(ctx context.Context, state *agents.SharedState) (*agents.SharedState, error)

// PredicateFunc routes a conditional edge. It must be a pure function
// of the state and return one of the labels declared for the edge.
type PredicateFunc func(state *agents.SharedState) string

type conditionalEdge struct {
	predicate PredicateFunc
	routes    map[string]string // label -> node name, or Terminate
}

// Builder accumulates nodes and edges and compiles them into an
// immutable executable graph.
type Builder struct {
	nodes       map[string]TransitionFunc
	order       []string
	edges       map[string]string
	conditional map[string]conditionalEdge
	entry       string
	terminals   map[string]bool
	errs        []error
}

// NewBuilder constructs an empty graph builder.
func NewBuilder() *Builder {
	return &Builder{
		nodes:       make(map[string]TransitionFunc),
		edges:       make(map[string]string),
		conditional: make(map[string]conditionalEdge),
		terminals:   make(map[string]bool),
	}
}

// AddNode registers a named transition. Nodes are write-once.
func (b *Builder) AddNode(name string, fn TransitionFunc) *Builder {
	if name == "" || name == Terminate {
		b.errs = append(b.errs, fmt.Errorf("invalid node name %q", name))
		return b
	}
	if _, exists := b.nodes[name]; exists {
		b.errs = append(b.errs, fmt.Errorf("node %q already defined", name))
		return b
	}
	if fn == nil {
		b.errs = append(b.errs, fmt.Errorf("node %q has no transition function", name))
		return b
	}
	b.nodes[name] = fn
	b.order = append(b.order, name)
	return b
}

// AddEdge wires an unconditional edge from one node to another.
func (b *Builder) AddEdge(from, to string) *Builder {
	if _, exists := b.edges[from]; exists {
		b.errs = append(b.errs, fmt.Errorf("node %q already has an outgoing edge", from))
		return b
	}
	if _, exists := b.conditional[from]; exists {
		b.errs = append(b.errs, fmt.Errorf("node %q already has a conditional edge", from))
		return b
	}
	b.edges[from] = to
	return b
}

// AddConditionalEdge wires a predicate-routed edge. Labels map to node
// names; a label may map to the Terminate sentinel.
func (b *Builder) AddConditionalEdge(from string, predicate PredicateFunc, routes map[string]string) *Builder {
	if predicate == nil || len(routes) == 0 {
		b.errs = append(b.errs, fmt.Errorf("conditional edge from %q needs a predicate and routes", from))
		return b
	}
	if _, exists := b.edges[from]; exists {
		b.errs = append(b.errs, fmt.Errorf("node %q already has an outgoing edge", from))
		return b
	}
	if _, exists := b.conditional[from]; exists {
		b.errs = append(b.errs, fmt.Errorf("node %q already has a conditional edge", from))
		return b
	}
	copied := make(map[string]string, len(routes))
	for label, node := range routes {
		copied[label] = node
	}
	b.conditional[from] = conditionalEdge{predicate: predicate, routes: copied}
	return b
}

// SetEntry declares the run's starting node.
func (b *Builder) SetEntry(name string) *Builder {
	b.entry = name
	return b
}

// SetTerminal declares a node at which the run may end.
func (b *Builder) SetTerminal(name string) *Builder {
	b.terminals[name] = true
	return b
}

// Compile validates the accumulated definition and produces an
// immutable graph safe for concurrent use by independent runs.
func (b *Builder) Compile() (*Graph, error) {
	if len(b.errs) > 0 {
		return nil, workflowError("graph definition invalid: %v", b.errs[0])
	}
	if b.entry == "" {
		return nil, workflowError("entry node is not set")
	}
	if _, ok := b.nodes[b.entry]; !ok {
		return nil, workflowError("entry node %q is not defined", b.entry)
	}

	for from, to := range b.edges {
		if _, ok := b.nodes[from]; !ok {
			return nil, workflowError("edge references unknown node %q", from)
		}
		if _, ok := b.nodes[to]; !ok {
			return nil, workflowError("edge from %q references unknown node %q", from, to)
		}
	}
	for from, edge := range b.conditional {
		if _, ok := b.nodes[from]; !ok {
			return nil, workflowError("conditional edge references unknown node %q", from)
		}
		for label, to := range edge.routes {
			if to == Terminate {
				continue
			}
			if _, ok := b.nodes[to]; !ok {
				return nil, workflowError("label %q routes to unknown node %q", label, to)
			}
		}
	}

	for name := range b.terminals {
		if _, ok := b.nodes[name]; !ok {
			return nil, workflowError("terminal node %q is not defined", name)
		}
	}

	// Every non-terminal node needs a way out.
	for name := range b.nodes {
		if b.terminals[name] {
			continue
		}
		_, hasEdge := b.edges[name]
		_, hasCond := b.conditional[name]
		if !hasEdge && !hasCond {
			return nil, workflowError("node %q has no outgoing edge and is not terminal", name)
		}
	}

	if unreachable := b.findUnreachable(); unreachable != "" {
		return nil, workflowError("node %q is unreachable from entry", unreachable)
	}

	g := &Graph{
		nodes:       make(map[string]TransitionFunc, len(b.nodes)),
		order:       append([]string(nil), b.order...),
		edges:       make(map[string]string, len(b.edges)),
		conditional: make(map[string]conditionalEdge, len(b.conditional)),
		entry:       b.entry,
		terminals:   make(map[string]bool, len(b.terminals)),
	}
	for k, v := range b.nodes {
		g.nodes[k] = v
	}
	for k, v := range b.edges {
		g.edges[k] = v
	}
	for k, v := range b.conditional {
		g.conditional[k] = v
	}
	for k := range b.terminals {
		g.terminals[k] = true
	}
	return g, nil
}

func (b *Builder) findUnreachable() string {
	visited := make(map[string]bool, len(b.nodes))
	queue := []string{b.entry}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		if to, ok := b.edges[current]; ok {
			queue = append(queue, to)
		}
		if edge, ok := b.conditional[current]; ok {
			for _, to := range edge.routes {
				if to != Terminate {
					queue = append(queue, to)
				}
			}
		}
	}
	for _, name := range b.order {
		if !visited[name] {
			return name
		}
	}
	return ""
}

// Graph is the compiled, immutable form. State is run-scoped, so one
// graph value serves any number of concurrent runs.
type Graph struct {
	nodes       map[string]TransitionFunc
	order       []string
	edges       map[string]string
	conditional map[string]conditionalEdge
	entry       string
	terminals   map[string]bool
}

// Entry returns the starting node name.
func (g *Graph) Entry() string { return g.entry }

// Nodes returns the node names in definition order.
func (g *Graph) Nodes() []string { return append([]string(nil), g.order...) }

func workflowError(format string, args ...interface{}) error {
	return agents.NewAgentError(agents.CodeWorkflowError, "", fmt.Sprintf(format, args...))
}
