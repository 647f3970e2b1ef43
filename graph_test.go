package vrp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphEdgesAndNeighbors(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "b", 1, 1)
	g.AddEdge("a", "c", 2, 2)
	g.AddEdge("b", "c", 3, 3)

	assert.Equal(t, 3, g.NumNodes())
	assert.Equal(t, 3, g.NumEdges())

	succ := g.Successors("a")
	require.Len(t, succ, 2)
	assert.Equal(t, "b", succ[0].Head)
	assert.Equal(t, "c", succ[1].Head)

	pred := g.Predecessors("c")
	require.Len(t, pred, 2)
	assert.Equal(t, "a", pred[0].Tail)
	assert.Equal(t, "b", pred[1].Tail)

	e, ok := g.Edge("a", "b")
	require.True(t, ok)
	assert.InDelta(t, 1.0, e.CostFor(0), 1e-9)
	_, ok = g.Edge("b", "a")
	assert.False(t, ok)
}

func TestGraphAddNodeOverwritesAttributes(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "b", 1, 1)
	g.AddNode(Node{ID: "b", Demand: 7})
	assert.InDelta(t, 7.0, g.Node("b").Demand, 1e-9)
	// The edge still points at the updated node.
	assert.Equal(t, 2, g.NumNodes())
}

func TestGraphRemoveNode(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "b", 1, 1)
	g.AddEdge("b", "c", 1, 1)
	g.AddEdge("a", "c", 1, 1)

	g.RemoveNode("b")
	assert.False(t, g.HasNode("b"))
	assert.Equal(t, 1, g.NumEdges())
	assert.Len(t, g.Predecessors("c"), 1)
	_, ok := g.Edge("a", "c")
	assert.True(t, ok)
}

func TestGraphCopyIsDeep(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: "a", Demand: 5})
	g.AddEdge("a", "b", 10, 10)

	cp := g.Copy()
	cp.Node("a").Demand = 99
	e, _ := cp.Edge("a", "b")
	e.Cost[0] = 0
	cp.RemoveNode("b")

	assert.InDelta(t, 5.0, g.Node("a").Demand, 1e-9)
	orig, _ := g.Edge("a", "b")
	assert.InDelta(t, 10.0, orig.CostFor(0), 1e-9)
	assert.True(t, g.HasNode("b"))
}

func TestGraphPathCost(t *testing.T) {
	g := NewGraph()
	g.AddEdgeCosts("a", "b", []float64{1, 2}, 1)
	g.AddEdgeCosts("b", "c", []float64{3, 4}, 1)

	cost, err := g.PathCost([]string{"a", "b", "c"}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, cost, 1e-9)
	cost, err = g.PathCost([]string{"a", "b", "c"}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, cost, 1e-9)

	_, err = g.PathCost([]string{"a", "c"}, 0)
	require.Error(t, err)
}

func TestGraphIterationOrderIsStable(t *testing.T) {
	build := func() *Graph {
		g := NewGraph()
		g.AddEdge(SourceID, "x", 1, 1)
		g.AddEdge(SourceID, "y", 1, 1)
		g.AddEdge(SourceID, "z", 1, 1)
		return g
	}
	a, b := build(), build()
	for i, e := range a.Edges() {
		assert.Equal(t, e.Head, b.Edges()[i].Head)
	}
	for i, n := range a.Nodes() {
		assert.Equal(t, n.ID, b.Nodes()[i].ID)
	}
}
