package vrp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProblem(t *testing.T, mutate func(*Problem)) *Problem {
	t.Helper()
	p := NewProblem(toyGraph())
	if mutate != nil {
		mutate(p)
	}
	require.NoError(t, p.preSolve(&SolveOptions{}))
	return p
}

func coveredCustomers(routes []*Route) map[string]bool {
	covered := map[string]bool{}
	for _, r := range routes {
		for _, n := range r.Customers() {
			covered[n] = true
		}
	}
	return covered
}

func TestInitialRoutesCoverAllCustomers(t *testing.T) {
	p := seedProblem(t, func(p *Problem) { p.LoadCapacity = []int{10} })
	opts := &SolveOptions{}
	opts.normalize()
	routes, err := p.initialRoutes(opts)
	require.NoError(t, err)
	require.NotEmpty(t, routes)

	covered := coveredCustomers(routes)
	for _, c := range p.g.Customers() {
		assert.True(t, covered[c.ID], "customer %s has no seed route", c.ID)
	}
	for _, r := range routes {
		assert.Equal(t, SourceID, r.Nodes[0])
		assert.Equal(t, SinkID, r.Nodes[len(r.Nodes)-1])
		assert.True(t, p.feasibleAny(r.Nodes), "seed route %v is infeasible", r.Nodes)
	}
}

func TestClarkeWrightMergesChain(t *testing.T) {
	p := seedProblem(t, func(p *Problem) { p.NumStops = 3 })
	merged := p.clarkeWright()
	require.NotEmpty(t, merged)
	longest := 0
	for _, nodes := range merged {
		if len(nodes) > longest {
			longest = len(nodes)
		}
	}
	// The savings pass joins three consecutive chain customers.
	assert.Equal(t, 5, longest)
}

func TestRouteForNodesPicksCheapestType(t *testing.T) {
	p := seedProblem(t, func(p *Problem) {
		p.LoadCapacity = []int{10, 15}
		p.FixedCost = []int{10, 0}
	})
	// Three customers only fit into the larger vehicle.
	r, err := p.routeForNodes([]string{SourceID, "1", "2", "3", SinkID}, "test")
	require.NoError(t, err)
	assert.Equal(t, 1, r.VehicleType)
	assert.InDelta(t, 40.0, r.Cost, 1e-9)
	assert.InDelta(t, 15.0, r.Load, 1e-9)

	// A pair fits both; the type without fixed cost is cheaper.
	r, err = p.routeForNodes([]string{SourceID, "1", "2", SinkID}, "test")
	require.NoError(t, err)
	assert.Equal(t, 1, r.VehicleType)
}

func TestRouteForNodesRejectsInfeasible(t *testing.T) {
	p := seedProblem(t, func(p *Problem) { p.NumStops = 1 })
	_, err := p.routeForNodes([]string{SourceID, "1", "2", SinkID}, "test")
	require.Error(t, err)
}

func TestInitialRoutesPickupDeliverySeeds(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: SourceID})
	g.AddNode(Node{ID: SinkID})
	g.AddNode(Node{ID: "p", Demand: 4, Request: "d"})
	g.AddNode(Node{ID: "d", Demand: -4})
	g.AddEdge(SourceID, "p", 1, 1)
	g.AddEdge("p", "d", 1, 1)
	g.AddEdge("d", SinkID, 1, 1)

	p := NewProblem(g)
	p.PickupDelivery = true
	p.LoadCapacity = []int{4}
	require.NoError(t, p.preSolve(&SolveOptions{}))

	opts := &SolveOptions{}
	opts.normalize()
	routes, err := p.initialRoutes(opts)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, []string{SourceID, "p", "d", SinkID}, routes[0].Nodes)
	assert.InDelta(t, 3.0, routes[0].Cost, 1e-9)
}

func TestInitialRoutesUserSupplied(t *testing.T) {
	p := seedProblem(t, nil)
	opts := &SolveOptions{InitialRoutes: [][]string{
		{SourceID, "1", "2", SinkID},
		{SourceID, "3", "4", SinkID},
		{SourceID, "5", SinkID},
	}}
	opts.normalize()
	routes, err := p.initialRoutes(opts)
	require.NoError(t, err)
	require.Len(t, routes, 3)
	assert.Equal(t, "initial", routes[0].PricedBy)
}
