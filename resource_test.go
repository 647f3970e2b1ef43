package vrp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toyProblem() *Problem {
	p := NewProblem(toyGraph())
	p.g = p.G.Copy()
	return p
}

func TestResourceStops(t *testing.T) {
	p := toyProblem()
	p.NumStops = 2
	m := p.newResourceModel(p.g, 0, 0)

	_, ok := m.feasibleRoute([]string{SourceID, "1", "2", SinkID})
	assert.True(t, ok)
	_, ok = m.feasibleRoute([]string{SourceID, "1", "2", "3", SinkID})
	assert.False(t, ok)
}

func TestResourceLoad(t *testing.T) {
	p := toyProblem()
	p.LoadCapacity = []int{10}
	m := p.newResourceModel(p.g, 0, 0)

	load, ok := m.feasibleRoute([]string{SourceID, "1", "2", SinkID})
	require.True(t, ok)
	assert.InDelta(t, 10.0, load, 1e-9)
	_, ok = m.feasibleRoute([]string{SourceID, "1", "2", "3", SinkID})
	assert.False(t, ok)
}

func TestResourceDuration(t *testing.T) {
	p := toyProblem()
	p.Duration = 60
	m := p.newResourceModel(p.g, 0, 0)

	// The return leg to the Sink counts against the duration.
	_, ok := m.feasibleRoute([]string{SourceID, "1", "2", SinkID})
	assert.True(t, ok)
	_, ok = m.feasibleRoute([]string{SourceID, "4", "5", SinkID})
	assert.False(t, ok)
}

func TestResourceTimeWindows(t *testing.T) {
	p := NewProblem(toyGraph())
	p.TimeWindows = true
	require.NoError(t, p.preSolve(&SolveOptions{}))
	m := p.newResourceModel(p.g, 0, 0)

	// Node 2 closes at 20, reachable directly but not through node 1.
	_, ok := m.feasibleRoute([]string{SourceID, "2", "3", SinkID})
	assert.True(t, ok)
	_, ok = m.feasibleRoute([]string{SourceID, "1", "2", SinkID})
	assert.False(t, ok)
}

func TestResourceWaitsForWindow(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: SourceID})
	g.AddNode(Node{ID: SinkID, TWUpper: 100})
	g.AddNode(Node{ID: "a", TWLower: 30, TWUpper: 40})
	g.AddNode(Node{ID: "b", TWLower: 0, TWUpper: 45})
	g.AddEdge(SourceID, "a", 1, 10)
	g.AddEdge("a", "b", 1, 10)
	g.AddEdge("b", SinkID, 1, 10)

	p := NewProblem(g)
	p.TimeWindows = true
	p.g = g
	m := p.newResourceModel(g, 0, 0)

	res := m.Init()
	res, ok := m.Extend(res, SourceID, "a")
	require.True(t, ok)
	// Arrival 10 waits for the window to open at 30.
	assert.InDelta(t, 30.0, res[resArrival], 1e-9)
	res, ok = m.Extend(res, "a", "b")
	require.True(t, ok)
	assert.InDelta(t, 40.0, res[resArrival], 1e-9)
}

func TestResourceDistributionCollection(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: SourceID})
	g.AddNode(Node{ID: SinkID})
	g.AddNode(Node{ID: "a", Demand: 5})
	g.AddNode(Node{ID: "b", Collect: 5})
	g.AddEdge(SourceID, "a", 1, 1)
	g.AddEdge(SourceID, "b", 1, 1)
	g.AddEdge("a", "b", 1, 1)
	g.AddEdge("b", "a", 1, 1)
	g.AddEdge("a", SinkID, 1, 1)
	g.AddEdge("b", SinkID, 1, 1)

	p := NewProblem(g)
	p.LoadCapacity = []int{5}
	p.DistributionCollection = true
	p.g = g
	m := p.newResourceModel(g, 0, 0)

	// Delivering first frees the space the collection needs.
	_, ok := m.feasibleRoute([]string{SourceID, "a", "b", SinkID})
	assert.True(t, ok)
	// Collecting first puts ten units on board at node b.
	_, ok = m.feasibleRoute([]string{SourceID, "b", "a", SinkID})
	assert.False(t, ok)
}

func TestResourcePickupDeliveryLoad(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: SourceID})
	g.AddNode(Node{ID: SinkID})
	g.AddNode(Node{ID: "p", Demand: 4})
	g.AddNode(Node{ID: "d", Demand: -4})
	g.AddEdge(SourceID, "p", 1, 1)
	g.AddEdge("p", "d", 1, 1)
	g.AddEdge("d", SinkID, 1, 1)

	p := NewProblem(g)
	p.LoadCapacity = []int{4}
	p.g = g
	m := p.newResourceModel(g, 0, 0)

	load, ok := m.feasibleRoute([]string{SourceID, "p", "d", SinkID})
	require.True(t, ok)
	assert.InDelta(t, 0.0, load, 1e-9)
}

func TestStabilizationSmoothing(t *testing.T) {
	s := newDualStabilization()
	first := &DualPrices{Node: map[string]float64{"1": 10}, Fleet: []float64{0}}
	out := s.smooth(first)
	assert.InDelta(t, 10.0, out.Node["1"], 1e-9)

	second := &DualPrices{Node: map[string]float64{"1": 20}, Fleet: []float64{-5}}
	out = s.smooth(second)
	// 0.8 of the previous value plus 0.2 of the new one.
	assert.InDelta(t, 12.0, out.Node["1"], 1e-9)
	assert.InDelta(t, -1.0, out.Fleet[0], 1e-9)

	s.disable()
	assert.False(t, s.enabled())
	out = s.smooth(second)
	assert.InDelta(t, 20.0, out.Node["1"], 1e-9)
}
