package vrp

import (
	"math/rand"
	"sort"
	"sync"
)

const (
	greedyRuns      = 20
	greedyShortlist = 5
)

// priceGreedy generates columns by randomized extension: runs walk
// forward from the Source and backward from the Sink, each step picking
// uniformly among the few cheapest feasible continuations. All runs
// execute concurrently and negative reduced cost paths are collected.
// The pricer is only consulted for plain capacity/stop/duration
// resources; richer models go straight to the main pricer.
func (p *Problem) priceGreedy(duals *DualPrices, vehicleType int, seed int64) []*Route {
	var mu sync.Mutex
	var found []*Route
	seen := map[string]bool{}

	var wg sync.WaitGroup
	for run := 0; run < 2*greedyRuns; run++ {
		wg.Add(1)
		go func(run int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed + int64(run)))
			var nodes []string
			if run < greedyRuns {
				nodes = p.greedyWalk(rng, vehicleType, duals, false)
			} else {
				nodes = p.greedyWalk(rng, vehicleType, duals, true)
			}
			if nodes == nil {
				return
			}
			r := p.routeFromNodes(nodes, vehicleType, duals)
			if r == nil {
				return
			}
			mu.Lock()
			if !seen[r.Key()] {
				seen[r.Key()] = true
				found = append(found, r)
			}
			mu.Unlock()
		}(run)
	}
	wg.Wait()
	return found
}

// greedyWalk builds one Source..Sink sequence. Backward walks extend
// from the Sink over predecessor edges; their feasibility is verified
// by routeFromNodes once the sequence is complete.
func (p *Problem) greedyWalk(rng *rand.Rand, vehicleType int, duals *DualPrices, backward bool) []string {
	model := p.newResourceModel(p.g, vehicleType, 0)
	visited := map[string]bool{}

	if backward {
		nodes := []string{SinkID}
		visited[SinkID] = true
		cur := SinkID
		for cur != SourceID {
			type cand struct {
				tail string
				w    float64
			}
			var cands []cand
			for _, e := range p.g.Predecessors(cur) {
				if visited[e.Tail] {
					continue
				}
				cands = append(cands, cand{tail: e.Tail, w: reducedCost(e, vehicleType, duals)})
			}
			if len(cands) == 0 {
				return nil
			}
			sort.Slice(cands, func(i, j int) bool { return cands[i].w < cands[j].w })
			pick := cands[rng.Intn(min(len(cands), greedyShortlist))]
			cur = pick.tail
			visited[cur] = true
			nodes = append([]string{cur}, nodes...)
		}
		return nodes
	}

	nodes := []string{SourceID}
	visited[SourceID] = true
	res := model.Init()
	cur := SourceID
	for cur != SinkID {
		type cand struct {
			head string
			w    float64
			res  []float64
		}
		var cands []cand
		for _, e := range p.g.Successors(cur) {
			if visited[e.Head] {
				continue
			}
			next, ok := model.Extend(res, cur, e.Head)
			if !ok {
				continue
			}
			cands = append(cands, cand{head: e.Head, w: reducedCost(e, vehicleType, duals), res: next})
		}
		if len(cands) == 0 {
			return nil
		}
		sort.Slice(cands, func(i, j int) bool { return cands[i].w < cands[j].w })
		pick := cands[rng.Intn(min(len(cands), greedyShortlist))]
		cur = pick.head
		visited[cur] = true
		res = pick.res
		nodes = append(nodes, cur)
	}
	return nodes
}

// routeFromNodes validates a sequence and keeps it only when its total
// reduced cost is negative.
func (p *Problem) routeFromNodes(nodes []string, vehicleType int, duals *DualPrices) *Route {
	if len(nodes) <= 2 {
		return nil
	}
	model := p.newResourceModel(p.g, vehicleType, 0)
	load, ok := model.feasibleRoute(nodes)
	if !ok {
		return nil
	}
	weight := 0.0
	for i := 0; i+1 < len(nodes); i++ {
		e, found := p.g.Edge(nodes[i], nodes[i+1])
		if !found {
			return nil
		}
		weight += reducedCost(e, vehicleType, duals)
	}
	if weight > negativeTol {
		return nil
	}
	cost, err := p.g.PathCost(nodes, vehicleType)
	if err != nil {
		return nil
	}
	return &Route{Nodes: nodes, Cost: cost, Load: load, VehicleType: vehicleType, PricedBy: "greedy"}
}
