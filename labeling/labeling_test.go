package labeling

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stopModel counts visited customers and caps them at maxStops.
type stopModel struct {
	maxStops float64
}

func (m stopModel) Init() []float64 { return []float64{0} }

func (m stopModel) Extend(res []float64, tail, head string) ([]float64, bool) {
	next := []float64{res[0]}
	if head != "Sink" {
		next[0]++
	}
	return next, next[0] <= m.maxStops
}

func (m stopModel) Finalize(res []float64) bool { return true }

// loadModel additionally accumulates a per-node demand and rejects paths
// whose final load exceeds the capacity only at the sink.
type loadModel struct {
	demand   map[string]float64
	capacity float64
}

func (m loadModel) Init() []float64 { return []float64{0} }

func (m loadModel) Extend(res []float64, tail, head string) ([]float64, bool) {
	return []float64{res[0] + m.demand[head]}, true
}

func (m loadModel) Finalize(res []float64) bool { return res[0] <= m.capacity }

func TestSolvePicksNegativePath(t *testing.T) {
	inst := &Instance{
		Source: "Source",
		Sink:   "Sink",
		Arcs: []Arc{
			{Tail: "Source", Head: "a", Weight: 1},
			{Tail: "Source", Head: "b", Weight: 2},
			{Tail: "a", Head: "Sink", Weight: 1},
			{Tail: "b", Head: "a", Weight: -5},
		},
	}
	p, err := Solve(inst, stopModel{maxStops: 10}, Options{Exact: true})
	require.NoError(t, err)
	require.NotNil(t, p)
	// The detour through b is cheaper despite its longer prefix.
	assert.Equal(t, []string{"Source", "b", "a", "Sink"}, p.Nodes)
	assert.InDelta(t, -2.0, p.Weight, 1e-9)
}

func TestSolveRespectsResourceLimit(t *testing.T) {
	inst := &Instance{
		Source: "Source",
		Sink:   "Sink",
		Arcs: []Arc{
			{Tail: "Source", Head: "a", Weight: 1},
			{Tail: "a", Head: "b", Weight: -10},
			{Tail: "b", Head: "Sink", Weight: 1},
			{Tail: "a", Head: "Sink", Weight: 1},
		},
	}
	p, err := Solve(inst, stopModel{maxStops: 1}, Options{Exact: true})
	require.NoError(t, err)
	require.NotNil(t, p)
	// Two stops are forbidden, so the cheap a->b arc is unusable.
	assert.Equal(t, []string{"Source", "a", "Sink"}, p.Nodes)
	assert.InDelta(t, 2.0, p.Weight, 1e-9)
}

func TestSolveElementary(t *testing.T) {
	// A negative cycle between a and b must not be traversed twice.
	inst := &Instance{
		Source: "Source",
		Sink:   "Sink",
		Arcs: []Arc{
			{Tail: "Source", Head: "a", Weight: 1},
			{Tail: "a", Head: "b", Weight: -3},
			{Tail: "b", Head: "a", Weight: -3},
			{Tail: "b", Head: "Sink", Weight: 1},
			{Tail: "a", Head: "Sink", Weight: 1},
		},
	}
	p, err := Solve(inst, stopModel{maxStops: 10}, Options{Exact: true})
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, []string{"Source", "a", "b", "Sink"}, p.Nodes)
	assert.InDelta(t, -1.0, p.Weight, 1e-9)
}

func TestSolveFinalizeRejects(t *testing.T) {
	demand := map[string]float64{"a": 2, "b": 3}
	inst := &Instance{
		Source: "Source",
		Sink:   "Sink",
		Arcs: []Arc{
			{Tail: "Source", Head: "a", Weight: 1},
			{Tail: "a", Head: "b", Weight: -4},
			{Tail: "b", Head: "Sink", Weight: 1},
			{Tail: "a", Head: "Sink", Weight: 1},
		},
	}
	p, err := Solve(inst, loadModel{demand: demand, capacity: 4}, Options{Exact: true})
	require.NoError(t, err)
	require.NotNil(t, p)
	// The combined load 5 is rejected at the sink, leaving the single visit.
	assert.Equal(t, []string{"Source", "a", "Sink"}, p.Nodes)

	p, err = Solve(inst, loadModel{demand: demand, capacity: 5}, Options{Exact: true})
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, []string{"Source", "a", "b", "Sink"}, p.Nodes)
}

func TestSolveNoFeasiblePath(t *testing.T) {
	inst := &Instance{
		Source: "Source",
		Sink:   "Sink",
		Arcs:   []Arc{{Tail: "Source", Head: "a", Weight: 1}},
	}
	p, err := Solve(inst, stopModel{maxStops: 10}, Options{Exact: true})
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSolveDeadline(t *testing.T) {
	inst := &Instance{
		Source: "Source",
		Sink:   "Sink",
		Arcs: []Arc{
			{Tail: "Source", Head: "a", Weight: 1},
			{Tail: "a", Head: "Sink", Weight: 1},
		},
	}
	// An already expired deadline still lets a tiny search finish before
	// the first periodic check.
	p, err := Solve(inst, stopModel{maxStops: 10}, Options{
		Exact:    true,
		Deadline: time.Now().Add(-time.Second),
	})
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.InDelta(t, 2.0, p.Weight, 1e-9)
}

func TestMinWeight(t *testing.T) {
	assert.True(t, math.IsInf(MinWeight(nil), 1))
	assert.InDelta(t, -2.5, MinWeight(&Path{Weight: -2.5}), 1e-12)
}
