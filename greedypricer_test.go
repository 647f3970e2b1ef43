package vrp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGreedyPricerFindsNegativeRoutes(t *testing.T) {
	p := seedProblem(t, func(p *Problem) { p.NumStops = 3 })
	duals := &DualPrices{
		Node:  map[string]float64{"1": 100, "2": 100, "3": 100, "4": 100, "5": 100},
		Fleet: []float64{0},
	}
	routes := p.priceGreedy(duals, 0, 42)
	require.NotEmpty(t, routes)

	seen := map[string]bool{}
	for _, r := range routes {
		assert.Equal(t, SourceID, r.Nodes[0])
		assert.Equal(t, SinkID, r.Nodes[len(r.Nodes)-1])
		assert.LessOrEqual(t, len(r.Customers()), 3)
		assert.False(t, seen[r.Key()], "duplicate route %s", r.Key())
		seen[r.Key()] = true

		weight := 0.0
		for i := 0; i+1 < len(r.Nodes); i++ {
			e, ok := p.g.Edge(r.Nodes[i], r.Nodes[i+1])
			require.True(t, ok)
			weight += reducedCost(e, 0, duals)
		}
		assert.Negative(t, weight)
	}
}

func TestGreedyPricerRejectsPositiveColumns(t *testing.T) {
	p := seedProblem(t, func(p *Problem) { p.NumStops = 3 })
	duals := &DualPrices{
		Node:  map[string]float64{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0},
		Fleet: []float64{0},
	}
	routes := p.priceGreedy(duals, 0, 42)
	assert.Empty(t, routes)
}

func TestGreedyPricerIsSeedStable(t *testing.T) {
	p := seedProblem(t, func(p *Problem) { p.NumStops = 3 })
	duals := &DualPrices{
		Node:  map[string]float64{"1": 100, "2": 100, "3": 100, "4": 100, "5": 100},
		Fleet: []float64{0},
	}
	first := p.priceGreedy(duals, 0, 7)
	second := p.priceGreedy(duals, 0, 7)

	keys := func(routes []*Route) map[string]bool {
		m := map[string]bool{}
		for _, r := range routes {
			m[r.Key()] = true
		}
		return m
	}
	assert.Equal(t, keys(first), keys(second))
}
