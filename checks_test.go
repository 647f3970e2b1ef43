package vrp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveRejectsNegativeParameters(t *testing.T) {
	p := NewProblem(toyGraph())
	p.DropPenalty = -1
	_, err := p.Solve(SolveOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "drop_penalty")

	p = NewProblem(toyGraph())
	p.LoadCapacity = []int{0}
	_, err = p.Solve(SolveOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load_capacity")
}

func TestSolveRejectsUnevenFleetLists(t *testing.T) {
	p := NewProblem(toyGraph())
	p.LoadCapacity = []int{10, 15, 20}
	p.FixedCost = []int{1, 2}
	_, err := p.Solve(SolveOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "equal length")
}

func TestSolveRejectsUnknownStrategy(t *testing.T) {
	p := NewProblem(toyGraph())
	_, err := p.Solve(SolveOptions{PricingStrategy: "FastestEver"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pricing strategy")
}

func TestSolveRejectsMissingDepot(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: SourceID})
	g.AddEdge(SourceID, "1", 1, 1)
	p := NewProblem(g)
	_, err := p.Solve(SolveOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), SinkID)
}

func TestSolveRejectsEdgesIntoSource(t *testing.T) {
	g := toyGraph()
	g.AddEdge("1", SourceID, 1, 1)
	p := NewProblem(g)
	_, err := p.Solve(SolveOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incoming")
}

func TestSolveRejectsOversizedDemand(t *testing.T) {
	p := NewProblem(toyGraph())
	p.LoadCapacity = []int{4}
	_, err := p.Solve(SolveOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capacity")
}

func TestSolveRejectsUnreachableRoundTrip(t *testing.T) {
	p := NewProblem(toyGraph())
	p.Duration = 30
	_, err := p.Solve(SolveOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duration")
}

func TestSolveRejectsPickupDeliveryWithoutLPPricer(t *testing.T) {
	g := toyGraph()
	g.Node("1").Request = "2"
	p := NewProblem(g)
	p.PickupDelivery = true
	_, err := p.Solve(SolveOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LP pricer")

	_, err = p.Solve(SolveOptions{LPPricing: true, PricingStrategy: STRAT_BEST_EDGES1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Exact")
}

func TestSolveRejectsPeriodicTimeWindows(t *testing.T) {
	p := NewProblem(toyGraph())
	p.Periodic = 2
	p.TimeWindows = true
	_, err := p.Solve(SolveOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "time windows")
}

func TestSolveRejectsFrequencyOverHorizon(t *testing.T) {
	g := toyGraph()
	g.Node("2").Frequency = 3
	p := NewProblem(g)
	p.Periodic = 2
	_, err := p.Solve(SolveOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frequency")
}

func TestSolveRejectsBadInitialRoutes(t *testing.T) {
	p := NewProblem(toyGraph())
	_, err := p.Solve(SolveOptions{InitialRoutes: [][]string{{"1", SinkID}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start at")

	// A missing edge inside a route is rejected as well.
	_, err = p.Solve(SolveOptions{InitialRoutes: [][]string{{SourceID, "1", "3", SinkID}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing edge")

	// Partial coverage is rejected.
	_, err = p.Solve(SolveOptions{InitialRoutes: [][]string{{SourceID, "1", SinkID}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not covered")
}

func TestSolveRejectsBadPreassignments(t *testing.T) {
	p := NewProblem(toyGraph())
	_, err := p.Solve(SolveOptions{Preassignments: [][]string{{"1", "4"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing edge")
}
