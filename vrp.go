package vrp

import "time"

// Problem describes a vehicle routing instance on a Graph with Source
// and Sink depot nodes. Fleet attributes are given per vehicle type; a
// single entry (or none) describes a homogeneous fleet. Zero limits are
// unconstrained.
type Problem struct {
	G *Graph

	NumStops               int
	LoadCapacity           []int
	Duration               int
	TimeWindows            bool
	PickupDelivery         bool
	DistributionCollection bool
	DropPenalty            int
	FixedCost              []int
	NumVehicles            []int
	UseAllVehicles         bool
	Periodic               int

	g         *Graph   // preprocessed working copy
	locked    []*Route // preassigned full routes, merged into the result
	dropped   []string // customers the integer solution left unserved
	stopBound int      // stop limit implied by the capacity, 0 when none
}

func NewProblem(g *Graph) *Problem {
	return &Problem{G: g}
}

// SolveOptions controls one run of the column generation engine. The
// zero value asks for exact labeling pricing with the BestEdges1
// escalation ladder and no time limit.
type SolveOptions struct {
	InitialRoutes  [][]string
	Preassignments [][]string

	PricingStrategy   string
	LPPricing         bool // solve the subproblem as a MIP instead of labeling
	HeuristicLabeling bool // try a bounded label frontier before the exact run
	Greedy            bool // randomized path generator before the main pricer
	Stabilize         bool // dual smoothing, switched off before convergence

	TimeLimit time.Duration
	MaxIter   int
	RunExact  int // force exact pricing every n stalled iterations

	Dive bool // diving primal heuristic instead of the final MIP

	Seed int64

	HyperMeasure    string
	HyperAcceptance string
	HyperHistory    string // yaml file the strategy scores persist in
}

func (o *SolveOptions) normalize() {
	if o.PricingStrategy == "" {
		o.PricingStrategy = STRAT_BEST_EDGES1
	}
	if o.RunExact <= 0 {
		o.RunExact = 1
	}
	if o.HyperMeasure == "" {
		o.HyperMeasure = MEASURE_WEIGHTED_AVG
	}
	if o.HyperAcceptance == "" {
		o.HyperAcceptance = ACCEPT_ALL
	}
}

// numVehicleTypes is the length of the longest per-type attribute list.
func (p *Problem) numVehicleTypes() int {
	n := 1
	if len(p.LoadCapacity) > n {
		n = len(p.LoadCapacity)
	}
	if len(p.FixedCost) > n {
		n = len(p.FixedCost)
	}
	if len(p.NumVehicles) > n {
		n = len(p.NumVehicles)
	}
	return n
}

func (p *Problem) mixedFleet() bool {
	return p.numVehicleTypes() > 1
}

func (p *Problem) capacityFor(vehicleType int) int {
	return perType(p.LoadCapacity, vehicleType)
}

func (p *Problem) fixedCostFor(vehicleType int) int {
	return perType(p.FixedCost, vehicleType)
}

// vehiclesFor returns the fleet bound for a type, 0 when unbounded.
func (p *Problem) vehiclesFor(vehicleType int) int {
	return perType(p.NumVehicles, vehicleType)
}

func perType(vals []int, k int) int {
	if len(vals) == 0 {
		return 0
	}
	if k < len(vals) {
		return vals[k]
	}
	return vals[0]
}

// maxCapacity is the largest capacity over all vehicle types, 0 when no
// capacity constraint is set.
func (p *Problem) maxCapacity() int {
	best := 0
	for k := 0; k < p.numVehicleTypes(); k++ {
		if c := p.capacityFor(k); c > best {
			best = c
		}
	}
	return best
}
