package vrp

import (
	"fmt"
	"math"
	"sort"
)

// routeForNodes turns a Source..Sink sequence into a route on the
// cheapest vehicle type that can serve it.
func (p *Problem) routeForNodes(nodes []string, pricedBy string) (*Route, error) {
	bestType := -1
	bestCost := math.Inf(1)
	bestLoad := 0.0
	for k := 0; k < p.numVehicleTypes(); k++ {
		m := p.newResourceModel(p.g, k, 0)
		load, ok := m.feasibleRoute(nodes)
		if !ok {
			continue
		}
		cost, err := p.g.PathCost(nodes, k)
		if err != nil {
			return nil, err
		}
		if cost < bestCost {
			bestType, bestCost, bestLoad = k, cost, load
		}
	}
	if bestType < 0 {
		return nil, fmt.Errorf("route %v is infeasible for every vehicle type", nodes)
	}
	return &Route{
		Nodes:       append([]string{}, nodes...),
		Cost:        bestCost,
		Load:        bestLoad,
		VehicleType: bestType,
		PricedBy:    pricedBy,
	}, nil
}

func (p *Problem) feasibleAny(nodes []string) bool {
	for k := 0; k < p.numVehicleTypes(); k++ {
		if _, ok := p.newResourceModel(p.g, k, 0).feasibleRoute(nodes); ok {
			return true
		}
	}
	return false
}

// initialRoutes builds the seed column pool: user routes when given,
// pickup/delivery pairs for request instances, otherwise Clarke-Wright
// merges plus a greedy construction, with plain round trips as the
// safety net. Duplicates are filtered when the master absorbs them.
func (p *Problem) initialRoutes(opts *SolveOptions) ([]*Route, error) {
	if len(opts.InitialRoutes) > 0 {
		var routes []*Route
		for _, nodes := range opts.InitialRoutes {
			if !p.coveredByLock(nodes) {
				continue
			}
			r, err := p.routeForNodes(nodes, "initial")
			if err != nil {
				return nil, err
			}
			routes = append(routes, r)
		}
		return routes, nil
	}

	if p.PickupDelivery {
		var routes []*Route
		for _, c := range p.g.Customers() {
			if c.Request == "" {
				continue
			}
			nodes := []string{SourceID, c.ID, c.Request, SinkID}
			r, err := p.routeForNodes(nodes, "initial")
			if err != nil {
				return nil, fmt.Errorf("no feasible seed for request (%s,%s): %w", c.ID, c.Request, err)
			}
			routes = append(routes, r)
		}
		return routes, nil
	}

	var routes []*Route
	for _, nodes := range p.clarkeWright() {
		if r, err := p.routeForNodes(nodes, "clarke_wright"); err == nil {
			routes = append(routes, r)
		}
	}
	for _, nodes := range p.greedyConstruct() {
		if r, err := p.routeForNodes(nodes, "greedy_initial"); err == nil {
			routes = append(routes, r)
		}
	}
	for _, c := range p.g.Customers() {
		if r, err := p.routeForNodes([]string{SourceID, c.ID, SinkID}, "round_trip"); err == nil {
			routes = append(routes, r)
		}
	}
	if len(routes) == 0 && len(p.g.Customers()) > 0 {
		return nil, fmt.Errorf("could not build any feasible initial route")
	}
	return routes, nil
}

// coveredByLock filters user routes whose customers were all removed by
// a preassignment.
func (p *Problem) coveredByLock(nodes []string) bool {
	for _, n := range nodes {
		if n == SourceID || n == SinkID {
			continue
		}
		if !p.g.HasNode(n) {
			return false
		}
	}
	return true
}

// clarkeWright runs the savings heuristic over a sweep of shape
// parameters and keeps the cheapest merge result.
func (p *Problem) clarkeWright() [][]string {
	var best [][]string
	bestCost := math.Inf(1)
	for x := 1; x < 20; x++ {
		alpha := float64(x) / 10
		merged := p.cwMerge(alpha)
		cost := 0.0
		ok := true
		for _, nodes := range merged {
			r, err := p.routeForNodes(nodes, "clarke_wright")
			if err != nil {
				ok = false
				break
			}
			cost += r.Cost
		}
		if ok && cost < bestCost {
			bestCost = cost
			best = merged
		}
	}
	return best
}

// cwMerge performs one savings pass: all customers start on round trips
// and route ends are joined in order of decreasing savings as long as
// the merge stays feasible for some vehicle type.
func (p *Problem) cwMerge(alpha float64) [][]string {
	var routes [][]string
	routeOf := map[string]int{}
	for _, c := range p.g.Customers() {
		if _, ok := p.g.Edge(SourceID, c.ID); !ok {
			continue
		}
		if _, ok := p.g.Edge(c.ID, SinkID); !ok {
			continue
		}
		routeOf[c.ID] = len(routes)
		routes = append(routes, []string{SourceID, c.ID, SinkID})
	}

	type saving struct {
		i, j string
		s    float64
	}
	var savings []saving
	for _, e := range p.g.Edges() {
		if e.Tail == SourceID || e.Head == SinkID {
			continue
		}
		toSink, ok1 := p.g.Edge(e.Tail, SinkID)
		fromSource, ok2 := p.g.Edge(SourceID, e.Head)
		if !ok1 || !ok2 {
			continue
		}
		s := toSink.CostFor(0) + fromSource.CostFor(0) - alpha*e.CostFor(0)
		savings = append(savings, saving{i: e.Tail, j: e.Head, s: s})
	}
	sort.SliceStable(savings, func(a, b int) bool { return savings[a].s > savings[b].s })

	for _, sv := range savings {
		ri, ok1 := routeOf[sv.i]
		rj, ok2 := routeOf[sv.j]
		if !ok1 || !ok2 || ri == rj {
			continue
		}
		a, b := routes[ri], routes[rj]
		if a[len(a)-2] != sv.i || b[1] != sv.j {
			continue
		}
		merged := append(append([]string{}, a[:len(a)-1]...), b[1:]...)
		if !p.feasibleAny(merged) {
			continue
		}
		routes[ri] = merged
		routes[rj] = nil
		for _, n := range merged[1 : len(merged)-1] {
			routeOf[n] = ri
		}
	}

	var out [][]string
	for _, r := range routes {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// greedyConstruct grows routes forward from the Source, always taking
// the cheapest edge whose target still closes feasibly to the Sink.
func (p *Problem) greedyConstruct() [][]string {
	unvisited := map[string]bool{}
	for _, c := range p.g.Customers() {
		unvisited[c.ID] = true
	}
	var out [][]string
	for len(unvisited) > 0 {
		path := []string{SourceID}
		for {
			cur := path[len(path)-1]
			bestHead := ""
			bestCost := math.Inf(1)
			for _, e := range p.g.Successors(cur) {
				if e.Head == SinkID || !unvisited[e.Head] {
					continue
				}
				candidate := append(append([]string{}, path...), e.Head, SinkID)
				if !p.feasibleAny(candidate) {
					continue
				}
				if c := e.CostFor(0); c < bestCost {
					bestCost = c
					bestHead = e.Head
				}
			}
			if bestHead == "" {
				break
			}
			path = append(path, bestHead)
			delete(unvisited, bestHead)
		}
		if len(path) == 1 {
			// No remaining customer is reachable from the Source.
			break
		}
		out = append(out, append(path, SinkID))
	}
	return out
}
