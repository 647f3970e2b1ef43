package vrp

import (
	"fmt"
	"math"
	"sort"
)

// unreachableCost is put on depot connections that are added only to
// keep every customer reachable. Any real column beats such an edge, so
// they surface only in degenerate networks.
const unreachableCost = 1e10

const noUpperBound = 1e10

// preSolve copies the input network and derives the working graph the
// engine prices on: normalized attributes, per-type edge costs, fixed
// costs folded into the Source edges, locked preassignments and pruned
// arcs. The input graph itself is never mutated, so repeated solves of
// the same Problem start from identical state.
func (p *Problem) preSolve(opts *SolveOptions) error {
	p.g = p.G.Copy()
	p.locked = nil
	p.dropped = nil
	p.stopBound = 0

	p.setDefaults(p.g)
	p.normalizeEdgeCosts(p.g)
	p.connectDepots()
	p.addFixedCosts()
	if err := p.lockPreassignments(opts.Preassignments); err != nil {
		return err
	}
	p.pruneCapacityArcs()
	if p.TimeWindows {
		p.tightenTimeWindows()
		p.pruneTimeWindowArcs()
	}
	p.boundStopsByCapacity()
	Log(3, "Preprocessing done: %d nodes, %d edges, stop bound %d\n", p.g.NumNodes(), p.g.NumEdges(), p.stopBound)
	return nil
}

func (p *Problem) setDefaults(g *Graph) {
	for _, n := range g.Nodes() {
		if n.Frequency <= 0 {
			n.Frequency = 1
		}
		if n.ID == SourceID || n.ID == SinkID {
			n.Demand = 0
			n.Collect = 0
			n.ServiceTime = 0
		}
		if p.TimeWindows && n.TWUpper <= 0 {
			n.TWUpper = noUpperBound
		}
	}
}

// normalizeEdgeCosts expands scalar edge costs to one entry per vehicle
// type so that mixed fleet lookups never fall out of range.
func (p *Problem) normalizeEdgeCosts(g *Graph) {
	n := p.numVehicleTypes()
	for _, e := range g.Edges() {
		for len(e.Cost) < n {
			e.Cost = append(e.Cost, e.Cost[0])
		}
	}
}

// connectDepots guarantees a Source->Sink edge and a depot connection
// for every customer. Added edges carry a prohibitive cost.
func (p *Problem) connectDepots() {
	n := p.numVehicleTypes()
	expensive := make([]float64, n)
	for i := range expensive {
		expensive[i] = unreachableCost
	}
	if _, ok := p.g.Edge(SourceID, SinkID); !ok {
		p.g.AddEdgeCosts(SourceID, SinkID, make([]float64, n), 0)
	}
	for _, c := range p.g.Customers() {
		if _, ok := p.g.Edge(SourceID, c.ID); !ok {
			Log(3, "Connecting %s to %s\n", SourceID, c.ID)
			p.g.AddEdgeCosts(SourceID, c.ID, expensive, 0)
		}
		if _, ok := p.g.Edge(c.ID, SinkID); !ok {
			Log(3, "Connecting %s to %s\n", c.ID, SinkID)
			p.g.AddEdgeCosts(c.ID, SinkID, expensive, 0)
		}
	}
}

// addFixedCosts folds the per-type fixed vehicle cost into the edges
// leaving the Source, where every route pays it exactly once.
func (p *Problem) addFixedCosts() {
	if len(p.FixedCost) == 0 {
		return
	}
	for _, e := range p.g.Successors(SourceID) {
		for k := range e.Cost {
			e.Cost[k] += float64(p.fixedCostFor(k))
		}
	}
}

// lockPreassignments handles user supplied route fragments. A complete
// Source..Sink sequence becomes a fixed route and its customers leave
// the pricing network; a fragment has its edge costs zeroed and its
// competing arcs removed, so any route visiting its nodes has to follow
// the anchored sequence.
func (p *Problem) lockPreassignments(paths [][]string) error {
	for _, path := range paths {
		if len(path) >= 2 && path[0] == SourceID && path[len(path)-1] == SinkID {
			bestType := -1
			bestCost := math.Inf(1)
			bestLoad := 0.0
			for k := 0; k < p.numVehicleTypes(); k++ {
				m := p.newResourceModel(p.g, k, 0)
				load, ok := m.feasibleRoute(path)
				if !ok {
					continue
				}
				cost, err := p.g.PathCost(path, k)
				if err != nil {
					return err
				}
				if cost < bestCost {
					bestType, bestCost, bestLoad = k, cost, load
				}
			}
			if bestType < 0 {
				return fmt.Errorf("preassigned route %v is infeasible for every vehicle type", path)
			}
			r := &Route{
				Nodes:       append([]string{}, path...),
				Cost:        bestCost,
				Load:        bestLoad,
				VehicleType: bestType,
				PricedBy:    "preassigned",
			}
			p.locked = append(p.locked, r)
			for _, n := range r.Customers() {
				p.g.RemoveNode(n)
			}
			Log(2, "Locked route %v with cost %.1f on vehicle type %d\n", path, bestCost, bestType)
			continue
		}
		for i := 0; i+1 < len(path); i++ {
			e, ok := p.g.Edge(path[i], path[i+1])
			if !ok {
				return fmt.Errorf("preassigned path %v uses missing edge (%s,%s)", path, path[i], path[i+1])
			}
			for k := range e.Cost {
				e.Cost[k] = 0
			}
			if path[i] != SourceID {
				for _, out := range p.g.Successors(path[i]) {
					if out.Head != path[i+1] {
						p.g.RemoveEdge(out.Tail, out.Head)
					}
				}
			}
			if path[i+1] != SinkID {
				for _, in := range p.g.Predecessors(path[i+1]) {
					if in.Tail != path[i] {
						p.g.RemoveEdge(in.Tail, in.Head)
					}
				}
			}
			Log(2, "Anchored edge (%s,%s) from preassignment %v\n", path[i], path[i+1], path)
		}
	}
	return nil
}

// pruneCapacityArcs removes customer arcs no vehicle can traverse with
// both endpoint demands on board.
func (p *Problem) pruneCapacityArcs() {
	maxCap := p.maxCapacity()
	if maxCap == 0 || p.PickupDelivery {
		return
	}
	for _, e := range p.g.Edges() {
		if e.Tail == SourceID || e.Head == SinkID {
			continue
		}
		tn, hn := p.g.Node(e.Tail), p.g.Node(e.Head)
		if tn.Demand+hn.Demand > float64(maxCap) {
			Log(3, "Pruning edge (%s,%s): demand %v exceeds capacity\n", e.Tail, e.Head, tn.Demand+hn.Demand)
			p.g.RemoveEdge(e.Tail, e.Head)
		}
	}
}

// pruneTimeWindowArcs removes arcs whose earliest possible arrival
// already violates the head's window.
func (p *Problem) pruneTimeWindowArcs() {
	for _, e := range p.g.Edges() {
		if e.Tail == SourceID && e.Head == SinkID {
			continue
		}
		tn, hn := p.g.Node(e.Tail), p.g.Node(e.Head)
		if tn.TWLower+tn.ServiceTime+e.Time > hn.TWUpper {
			Log(3, "Pruning edge (%s,%s): time window unreachable\n", e.Tail, e.Head)
			p.g.RemoveEdge(e.Tail, e.Head)
		}
	}
}

// tightenTimeWindows raises lower bounds to the earliest reachable
// arrival and relaxes the Sink upper bound to the latest return.
func (p *Problem) tightenTimeWindows() {
	for _, c := range p.g.Customers() {
		earliest := math.Inf(1)
		for _, e := range p.g.Predecessors(c.ID) {
			tn := p.g.Node(e.Tail)
			if arr := tn.TWLower + tn.ServiceTime + e.Time; arr < earliest {
				earliest = arr
			}
		}
		if !math.IsInf(earliest, 1) && earliest > c.TWLower {
			c.TWLower = earliest
		}
	}
	sink := p.g.Node(SinkID)
	latest := sink.TWUpper
	for _, e := range p.g.Predecessors(SinkID) {
		tn := p.g.Node(e.Tail)
		if arr := tn.TWUpper + tn.ServiceTime + e.Time; arr > latest {
			latest = arr
		}
	}
	sink.TWUpper = latest
}

// boundStopsByCapacity derives a stop limit from the capacity: sorting
// demands ascending, no route can serve more customers than fit into
// the largest vehicle.
func (p *Problem) boundStopsByCapacity() {
	maxCap := p.maxCapacity()
	if maxCap == 0 || p.PickupDelivery {
		return
	}
	var demands []float64
	for _, c := range p.g.Customers() {
		demands = append(demands, c.Demand)
	}
	sort.Float64s(demands)
	sum := 0.0
	count := 0
	for _, d := range demands {
		sum += d
		if sum > float64(maxCap) {
			break
		}
		count++
	}
	if count > 0 {
		p.stopBound = count
		Log(3, "Capacity bounds the number of stops at %d\n", count)
	}
}
