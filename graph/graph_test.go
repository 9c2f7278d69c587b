package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderCompile(t *testing.T) {
	g, err := NewBuilder().
		AddNode(passThrough("a")).
		AddNode(passThrough("b")).
		AddEdge("a", "b").
		SetEntryPoint("a").
		Compile()
	require.NoError(t, err)

	assert.Equal(t, "a", g.EntryPoint())
	_, ok := g.Node("b")
	assert.True(t, ok)
	require.Len(t, g.Edges("a"), 1)
	assert.Equal(t, "b", g.Edges("a")[0].To)
}

func TestBuilderRejectsMissingEntryPoint(t *testing.T) {
	_, err := NewBuilder().AddNode(passThrough("a")).Compile()
	assert.ErrorIs(t, err, ErrNoEntryPoint)
}

func TestBuilderRejectsUnknownEntryPoint(t *testing.T) {
	_, err := NewBuilder().
		AddNode(passThrough("a")).
		SetEntryPoint("missing").
		Compile()
	assert.ErrorContains(t, err, "entry point node missing does not exist")
}

func TestBuilderRejectsDanglingEdge(t *testing.T) {
	_, err := NewBuilder().
		AddNode(passThrough("a")).
		AddEdge("a", "missing").
		SetEntryPoint("a").
		Compile()
	assert.ErrorContains(t, err, "edge target node missing does not exist")
}

func TestBuilderRejectsDuplicateNode(t *testing.T) {
	_, err := NewBuilder().
		AddNode(passThrough("a")).
		AddNode(passThrough("a")).
		SetEntryPoint("a").
		Compile()
	assert.ErrorContains(t, err, "node a already registered")
}

func TestEdgesKeepRegistrationOrder(t *testing.T) {
	g, err := NewBuilder().
		AddNode(passThrough("a")).
		AddNode(passThrough("b")).
		AddNode(passThrough("c")).
		AddConditionalEdge("a", "b", func([]*NodeResult) bool { return false }).
		AddConditionalEdge("a", "c", func([]*NodeResult) bool { return true }).
		SetEntryPoint("a").
		Compile()
	require.NoError(t, err)

	edges := g.Edges("a")
	require.Len(t, edges, 2)
	assert.Equal(t, "b", edges[0].To)
	assert.Equal(t, "c", edges[1].To)
}

func TestNilPredicateIsUnconditional(t *testing.T) {
	edge := &Edge{From: "a", To: "b"}
	assert.True(t, edge.matches(nil))
}
