package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerva/internal/agents"
)

func passThrough(ctx context.Context, state *agents.SharedState) (*agents.SharedState, error) {
	return state, nil
}

func TestBuilder_CompileLinear(t *testing.T) {
	g, err := NewBuilder().
		AddNode("a", passThrough).
		AddNode("b", passThrough).
		AddEdge("a", "b").
		SetEntry("a").
		SetTerminal("b").
		Compile()

	require.NoError(t, err)
	assert.Equal(t, "a", g.Entry())
	assert.Equal(t, []string{"a", "b"}, g.Nodes())
}

func TestBuilder_MissingEntry(t *testing.T) {
	_, err := NewBuilder().
		AddNode("a", passThrough).
		SetTerminal("a").
		Compile()

	require.Error(t, err)
	assert.Equal(t, agents.CodeWorkflowError, agents.CodeOf(err))
}

func TestBuilder_UnknownEdgeTarget(t *testing.T) {
	_, err := NewBuilder().
		AddNode("a", passThrough).
		AddEdge("a", "ghost").
		SetEntry("a").
		Compile()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestBuilder_UnreachableNode(t *testing.T) {
	_, err := NewBuilder().
		AddNode("a", passThrough).
		AddNode("island", passThrough).
		SetEntry("a").
		SetTerminal("a").
		SetTerminal("island").
		Compile()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "island")
}

func TestBuilder_DuplicateNode(t *testing.T) {
	_, err := NewBuilder().
		AddNode("a", passThrough).
		AddNode("a", passThrough).
		SetEntry("a").
		SetTerminal("a").
		Compile()

	require.Error(t, err)
}

func TestBuilder_ReservedNodeName(t *testing.T) {
	_, err := NewBuilder().
		AddNode(Terminate, passThrough).
		SetEntry(Terminate).
		Compile()

	require.Error(t, err)
}

func TestBuilder_NonTerminalWithoutEdge(t *testing.T) {
	_, err := NewBuilder().
		AddNode("a", passThrough).
		AddNode("b", passThrough).
		AddEdge("a", "b").
		SetEntry("a").
		Compile()

	require.Error(t, err)
	assert.Contains(t, err.Error(), `node "b" has no outgoing edge`)
}

func TestBuilder_ConditionalEdgeUnknownTarget(t *testing.T) {
	_, err := NewBuilder().
		AddNode("a", passThrough).
		AddConditionalEdge("a", func(*agents.SharedState) string { return "go" }, map[string]string{
			"go": "ghost",
		}).
		SetEntry("a").
		Compile()

	require.Error(t, err)
}

func TestBuilder_ConditionalEdgeTerminateRoute(t *testing.T) {
	g, err := NewBuilder().
		AddNode("a", passThrough).
		AddConditionalEdge("a", func(*agents.SharedState) string { return "done" }, map[string]string{
			"done": Terminate,
		}).
		SetEntry("a").
		Compile()

	require.NoError(t, err)
	require.NotNil(t, g)
}

func TestVisualize(t *testing.T) {
	g, err := NewBuilder().
		AddNode("a", passThrough).
		AddNode("b", passThrough).
		AddEdge("a", "b").
		SetEntry("a").
		SetTerminal("b").
		Compile()
	require.NoError(t, err)

	out := Visualize(g)
	assert.Contains(t, out, "a")
	assert.Contains(t, out, "b")
}
