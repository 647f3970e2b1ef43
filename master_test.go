package vrp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func masterFor(t *testing.T, p *Problem) *masterProblem {
	t.Helper()
	opts := &SolveOptions{}
	opts.normalize()
	initial, err := p.initialRoutes(opts)
	require.NoError(t, err)
	mp, err := p.newMasterProblem(initial)
	require.NoError(t, err)
	return mp
}

func TestMasterRelaxPricesEveryCustomer(t *testing.T) {
	p := seedProblem(t, func(p *Problem) { p.NumStops = 3 })
	mp := masterFor(t, p)

	rel, err := mp.relax()
	require.NoError(t, err)
	assert.Greater(t, rel.objective, 0.0)
	for _, c := range p.g.Customers() {
		_, ok := rel.duals.Node[c.ID]
		assert.True(t, ok, "no dual price for customer %s", c.ID)
	}
	assert.Equal(t, 1, rel.duals.Version)

	rel, err = mp.relax()
	require.NoError(t, err)
	assert.Equal(t, 2, rel.duals.Version)
}

func TestMasterDeduplicatesRoutes(t *testing.T) {
	p := seedProblem(t, func(p *Problem) { p.NumStops = 3 })
	mp := masterFor(t, p)

	r, err := p.routeForNodes([]string{SourceID, "1", "2", SinkID}, "test")
	require.NoError(t, err)
	before := mp.numRoutes()
	added := mp.addRoute(r)
	if added {
		assert.Equal(t, before+1, mp.numRoutes())
	}
	// A second copy is always absorbed.
	assert.False(t, mp.addRoute(r))
}

func TestMasterIntegerCoversAllCustomers(t *testing.T) {
	p := seedProblem(t, func(p *Problem) { p.NumStops = 3 })
	mp := masterFor(t, p)

	sol, err := mp.solveInteger(noDeadline())
	require.NoError(t, err)
	covered := coveredCustomers(sol.routes)
	for _, c := range p.g.Customers() {
		assert.True(t, covered[c.ID])
	}
	assert.Empty(t, sol.dropped)
}

func TestMasterDropColumns(t *testing.T) {
	p := seedProblem(t, func(p *Problem) {
		p.NumStops = 3
		p.NumVehicles = []int{1}
		p.DropPenalty = 100
	})
	mp := masterFor(t, p)

	sol, err := mp.solveInteger(noDeadline())
	require.NoError(t, err)
	// One vehicle with three stops cannot serve five customers.
	assert.Len(t, sol.routes, 1)
	assert.Len(t, sol.dropped, 2)
}

func TestMasterRejectsOverbookedFleet(t *testing.T) {
	p := NewProblem(toyGraph())
	p.NumVehicles = []int{1}
	opts := &SolveOptions{Preassignments: [][]string{
		{SourceID, "1", SinkID},
		{SourceID, "2", SinkID},
	}}
	require.NoError(t, p.preSolve(opts))
	opts.normalize()
	initial, err := p.initialRoutes(opts)
	require.NoError(t, err)
	_, err = p.newMasterProblem(initial)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fleet")
}

func TestMasterDivingCandidate(t *testing.T) {
	p := seedProblem(t, func(p *Problem) { p.NumStops = 3 })
	mp := masterFor(t, p)

	values := make([]float64, mp.model.NumCols())
	routeCols := make([]int, 0, 2)
	for col, r := range mp.routes {
		if r != nil {
			routeCols = append(routeCols, col)
		}
		if len(routeCols) == 2 {
			break
		}
	}
	require.Len(t, routeCols, 2)
	values[routeCols[0]] = 0.4
	values[routeCols[1]] = 0.7

	col := mp.bestDivingCandidate(values, map[int]bool{})
	assert.Equal(t, routeCols[1], col)
	// Tabu columns are skipped.
	col = mp.bestDivingCandidate(values, map[int]bool{routeCols[1]: true})
	assert.Equal(t, routeCols[0], col)
	// Integral vectors have no candidate.
	col = mp.bestDivingCandidate(make([]float64, mp.model.NumCols()), map[int]bool{})
	assert.Equal(t, -1, col)
}

func TestMasterArtificialsCoverUnseededCustomers(t *testing.T) {
	p := seedProblem(t, func(p *Problem) { p.NumVehicles = []int{1} })

	// Seed only one customer. The artificial columns keep the cover
	// rows of the other four feasible until pricing fills the pool.
	r, err := p.routeForNodes([]string{SourceID, "1", SinkID}, "test")
	require.NoError(t, err)
	mp, err := p.newMasterProblem([]*Route{r})
	require.NoError(t, err)

	rel, err := mp.relax()
	require.NoError(t, err)
	assert.Greater(t, rel.objective, artificialCost)
	for _, id := range []string{"2", "3", "4", "5"} {
		assert.Greater(t, rel.duals.Node[id], 1.0, "customer %s should carry an artificial price", id)
	}
}
