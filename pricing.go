package vrp

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dijkstra"
)

// negativeTol decides when a reduced cost counts as negative.
const negativeTol = -1e-5

var (
	alphaLadder = []float64{0.3, 0.5, 0.7, 0.9}
	betaLadder  = []float64{0.3, 0.2, 0.1}
	pathLadder  = []int{3, 5, 7, 9}
	stopLadder  = []int{2, 4, 8}
)

// reducedCost is the arc weight seen by the pricing subproblem: the
// plain cost minus the dual of the tail customer, or minus the fleet
// dual on arcs leaving the Source.
func reducedCost(e *Edge, vehicleType int, duals *DualPrices) float64 {
	w := e.CostFor(vehicleType)
	if e.Tail == SourceID {
		return w - duals.Fleet[vehicleType]
	}
	return w - duals.Node[e.Tail]
}

// price runs one pricing strategy for one vehicle type, escalating
// through the strategy's parameter ladder and falling back to the exact
// subproblem on the full network.
func (p *Problem) price(strategy string, duals *DualPrices, vehicleType int, opts *SolveOptions, deadline time.Time) (*Route, error) {
	switch strategy {
	case STRAT_EXACT:
		return p.priceOnce(p.g, duals, vehicleType, 0, opts, true, deadline)
	case STRAT_BEST_EDGES1:
		for _, alpha := range alphaLadder {
			sub := p.bestEdges1(vehicleType, duals, alpha)
			if r, err := p.priceOnce(sub, duals, vehicleType, 0, opts, false, deadline); err != nil {
				return nil, err
			} else if r != nil {
				return r, nil
			}
		}
	case STRAT_BEST_EDGES2:
		for _, beta := range betaLadder {
			sub := p.bestEdges2(vehicleType, duals, beta)
			if r, err := p.priceOnce(sub, duals, vehicleType, 0, opts, false, deadline); err != nil {
				return nil, err
			} else if r != nil {
				return r, nil
			}
		}
	case STRAT_BEST_PATHS:
		for _, k := range pathLadder {
			sub, err := p.bestPaths(vehicleType, k)
			if err != nil {
				return nil, err
			}
			if r, err := p.priceOnce(sub, duals, vehicleType, 0, opts, false, deadline); err != nil {
				return nil, err
			} else if r != nil {
				return r, nil
			}
		}
	case STRAT_BOUND_STOPS:
		for _, cap := range stopLadder {
			if r, err := p.priceOnce(p.g, duals, vehicleType, cap, opts, false, deadline); err != nil {
				return nil, err
			} else if r != nil {
				return r, nil
			}
		}
	default:
		return nil, fmt.Errorf("unknown pricing strategy %q", strategy)
	}
	Log(4, "Strategy %s found no column for type %d, falling back to exact\n", strategy, vehicleType)
	return p.priceOnce(p.g, duals, vehicleType, 0, opts, true, deadline)
}

// priceOnce solves a single subproblem on the given network and returns
// a route with negative reduced cost, or nil.
func (p *Problem) priceOnce(sub *Graph, duals *DualPrices, vehicleType, stopCap int, opts *SolveOptions, exact bool, deadline time.Time) (*Route, error) {
	if opts.LPPricing {
		return p.priceLP(sub, duals, vehicleType, stopCap, deadline)
	}
	if opts.HeuristicLabeling && exact {
		r, err := p.priceLabeling(sub, duals, vehicleType, stopCap, false, deadline)
		if err != nil || r != nil {
			return r, err
		}
	}
	return p.priceLabeling(sub, duals, vehicleType, stopCap, exact, deadline)
}

// bestEdges1 keeps only edges whose cost stays below a fraction of the
// largest dual price, shrinking the subproblem aggressively.
func (p *Problem) bestEdges1(vehicleType int, duals *DualPrices, alpha float64) *Graph {
	maxDual := 0.0
	for _, d := range duals.Node {
		if d > maxDual {
			maxDual = d
		}
	}
	sub := p.g.Copy()
	for _, e := range sub.Edges() {
		if e.Tail == SourceID && e.Head == SinkID {
			continue
		}
		if e.CostFor(vehicleType) > alpha*maxDual {
			sub.RemoveEdge(e.Tail, e.Head)
		}
	}
	return sub
}

// bestEdges2 drops the given fraction of edges with the highest reduced
// cost, the ones least likely to appear in an improving column.
func (p *Problem) bestEdges2(vehicleType int, duals *DualPrices, beta float64) *Graph {
	edges := p.g.Edges()
	sort.SliceStable(edges, func(i, j int) bool {
		return reducedCost(edges[i], vehicleType, duals) > reducedCost(edges[j], vehicleType, duals)
	})
	drop := int(math.Ceil(beta * float64(len(edges))))
	sub := p.g.Copy()
	for i := 0; i < drop && i < len(edges); i++ {
		e := edges[i]
		if e.Tail == SourceID && e.Head == SinkID {
			continue
		}
		sub.RemoveEdge(e.Tail, e.Head)
	}
	return sub
}

// bestPaths restricts pricing to the union of the k cheapest
// Source-Sink paths by plain cost.
func (p *Problem) bestPaths(vehicleType, k int) (*Graph, error) {
	paths, err := p.kShortestPaths(vehicleType, k)
	if err != nil {
		return nil, err
	}
	keep := map[string]bool{}
	for _, path := range paths {
		for i := 0; i+1 < len(path); i++ {
			keep[path[i]+"|"+path[i+1]] = true
		}
	}
	sub := p.g.Copy()
	for _, e := range sub.Edges() {
		if e.Tail == SourceID && e.Head == SinkID {
			continue
		}
		if !keep[e.Tail+"|"+e.Head] {
			sub.RemoveEdge(e.Tail, e.Head)
		}
	}
	return sub, nil
}

// kShortestPaths runs Yen's algorithm on top of Dijkstra. Costs are
// scaled to integers for the weighted graph backend.
func (p *Problem) kShortestPaths(vehicleType, k int) ([][]string, error) {
	const scale = 1000

	shortest := func(banned map[string]bool, skip map[string]bool, from string) ([]string, int64, error) {
		g := core.NewGraph(core.WithDirected(true), core.WithWeighted())
		for _, e := range p.g.Edges() {
			if skip[e.Tail] || skip[e.Head] {
				continue
			}
			if banned[e.Tail+"|"+e.Head] {
				continue
			}
			if _, err := g.AddEdge(e.Tail, e.Head, int64(math.Round(e.CostFor(vehicleType)*scale))); err != nil {
				return nil, 0, err
			}
		}
		if !g.HasVertex(from) || !g.HasVertex(SinkID) {
			return nil, 0, nil
		}
		dist, prev, err := dijkstra.Dijkstra(g, dijkstra.Source(from), dijkstra.WithReturnPath())
		if err != nil {
			return nil, 0, err
		}
		d, ok := dist[SinkID]
		if !ok || d == math.MaxInt64 {
			return nil, 0, nil
		}
		var rev []string
		for at := SinkID; at != ""; at = prev[at] {
			rev = append(rev, at)
			if at == from {
				break
			}
		}
		if rev[len(rev)-1] != from {
			return nil, 0, nil
		}
		path := make([]string, len(rev))
		for i := range rev {
			path[i] = rev[len(rev)-1-i]
		}
		return path, d, nil
	}

	first, _, err := shortest(nil, nil, SourceID)
	if err != nil || first == nil {
		return nil, err
	}
	paths := [][]string{first}

	type candidate struct {
		path []string
		cost int64
	}
	var candidates []candidate

	for len(paths) < k {
		last := paths[len(paths)-1]
		for i := 0; i+1 < len(last); i++ {
			root := last[:i+1]
			banned := map[string]bool{}
			for _, known := range paths {
				if len(known) > i && samePath(known[:i+1], root) {
					banned[known[i]+"|"+known[i+1]] = true
				}
			}
			skip := map[string]bool{}
			for _, n := range root[:len(root)-1] {
				skip[n] = true
			}
			spur, spurCost, err := shortest(banned, skip, root[len(root)-1])
			if err != nil {
				return nil, err
			}
			if spur == nil {
				continue
			}
			full := append(append([]string{}, root[:len(root)-1]...), spur...)
			rootCost := int64(0)
			for j := 0; j+1 < len(root); j++ {
				e, _ := p.g.Edge(root[j], root[j+1])
				rootCost += int64(math.Round(e.CostFor(vehicleType) * scale))
			}
			dup := false
			for _, c := range candidates {
				if samePath(c.path, full) {
					dup = true
					break
				}
			}
			for _, known := range paths {
				if samePath(known, full) {
					dup = true
					break
				}
			}
			if !dup {
				candidates = append(candidates, candidate{path: full, cost: rootCost + spurCost})
			}
		}
		if len(candidates) == 0 {
			break
		}
		best := 0
		for i := range candidates {
			if candidates[i].cost < candidates[best].cost {
				best = i
			}
		}
		paths = append(paths, candidates[best].path)
		candidates = append(candidates[:best], candidates[best+1:]...)
	}
	return paths, nil
}

func samePath(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
