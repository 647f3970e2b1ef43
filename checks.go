package vrp

import "fmt"

// checkArguments validates the problem parameters before any
// preprocessing touches the network.
func (p *Problem) checkArguments() error {
	if p.NumStops < 0 {
		return fmt.Errorf("num_stops must be a positive integer, got %d", p.NumStops)
	}
	if p.Duration < 0 {
		return fmt.Errorf("duration must be a positive integer, got %d", p.Duration)
	}
	if p.DropPenalty < 0 {
		return fmt.Errorf("drop_penalty must be a positive integer, got %d", p.DropPenalty)
	}
	if p.Periodic < 0 {
		return fmt.Errorf("periodic must be a positive integer, got %d", p.Periodic)
	}
	for _, c := range p.LoadCapacity {
		if c <= 0 {
			return fmt.Errorf("load_capacity must be positive, got %d", c)
		}
	}
	for _, c := range p.FixedCost {
		if c < 0 {
			return fmt.Errorf("fixed_cost must be positive, got %d", c)
		}
	}
	for _, c := range p.NumVehicles {
		if c <= 0 {
			return fmt.Errorf("num_vehicles must be positive, got %d", c)
		}
	}
	// Per-type lists must agree in length once more than one is given.
	n := p.numVehicleTypes()
	for _, l := range [][]int{p.LoadCapacity, p.FixedCost, p.NumVehicles} {
		if len(l) > 1 && len(l) != n {
			return fmt.Errorf("fleet attribute lists must have equal length, got %d and %d", len(l), n)
		}
	}
	return nil
}

func checkStrategy(opts *SolveOptions) error {
	for _, s := range PricingStrategies {
		if opts.PricingStrategy == s {
			return nil
		}
	}
	return fmt.Errorf("unknown pricing strategy %q, possible values are %v", opts.PricingStrategy, PricingStrategies)
}

// checkGraph verifies the depot structure of the input network.
func (p *Problem) checkGraph() error {
	if !p.G.HasNode(SourceID) || !p.G.HasNode(SinkID) {
		return fmt.Errorf("input graph requires %s and %s nodes", SourceID, SinkID)
	}
	if len(p.G.Predecessors(SourceID)) > 0 {
		return fmt.Errorf("%s must have no incoming edges", SourceID)
	}
	if len(p.G.Successors(SinkID)) > 0 {
		return fmt.Errorf("%s must have no outgoing edges", SinkID)
	}
	for _, e := range p.G.Edges() {
		if len(e.Cost) == 0 {
			return fmt.Errorf("edge (%s,%s) has no cost", e.Tail, e.Head)
		}
	}
	return nil
}

// checkConsistency rejects option combinations the engine cannot price.
func (p *Problem) checkConsistency(opts *SolveOptions) error {
	if p.PickupDelivery {
		if !opts.LPPricing {
			return fmt.Errorf("pickup and delivery requires the LP pricer (set LPPricing)")
		}
		if opts.PricingStrategy != STRAT_EXACT {
			return fmt.Errorf("pickup and delivery requires the Exact pricing strategy")
		}
		requests := 0
		for _, n := range p.G.Customers() {
			if n.Request != "" {
				requests++
			}
		}
		if requests == 0 {
			return fmt.Errorf("pickup and delivery requires at least one request")
		}
	}
	if p.Periodic > 0 && p.TimeWindows {
		return fmt.Errorf("periodic scheduling cannot be combined with time windows")
	}
	return nil
}

// checkFeasibility catches customers that no vehicle can ever serve.
func (p *Problem) checkFeasibility() error {
	maxCap := p.maxCapacity()
	for _, n := range p.G.Customers() {
		if maxCap > 0 && n.Demand > float64(maxCap) {
			return fmt.Errorf("demand %.0f at node %s exceeds the maximal capacity %d", n.Demand, n.ID, maxCap)
		}
		if p.Duration > 0 {
			out, okOut := p.G.Edge(SourceID, n.ID)
			back, okBack := p.G.Edge(n.ID, SinkID)
			if okOut && okBack && out.Time+n.ServiceTime+back.Time > float64(p.Duration) {
				return fmt.Errorf("round trip duration to node %s exceeds the maximal duration %d", n.ID, p.Duration)
			}
		}
	}
	return nil
}

// checkInitialRoutes validates user supplied routes: every customer must
// be covered and every consecutive pair must be an edge of the network.
func (p *Problem) checkInitialRoutes(routes [][]string) error {
	covered := map[string]bool{}
	for _, r := range routes {
		if len(r) < 2 || r[0] != SourceID || r[len(r)-1] != SinkID {
			return fmt.Errorf("initial route %v must start at %s and end at %s", r, SourceID, SinkID)
		}
		for i := 0; i+1 < len(r); i++ {
			if _, ok := p.G.Edge(r[i], r[i+1]); !ok {
				return fmt.Errorf("initial route %v uses missing edge (%s,%s)", r, r[i], r[i+1])
			}
			covered[r[i]] = true
		}
	}
	for _, n := range p.G.Customers() {
		if !covered[n.ID] {
			return fmt.Errorf("node %s is not covered by the initial routes", n.ID)
		}
	}
	return nil
}

// checkPreassignments validates locked edges and full locked routes.
func (p *Problem) checkPreassignments(paths [][]string) error {
	for _, path := range paths {
		for i := 0; i+1 < len(path); i++ {
			if _, ok := p.G.Edge(path[i], path[i+1]); !ok {
				return fmt.Errorf("preassigned path %v uses missing edge (%s,%s)", path, path[i], path[i+1])
			}
		}
	}
	return nil
}
