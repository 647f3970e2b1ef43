package vrp

import (
	"fmt"
	"time"

	"git.solver4all.com/azaryc2s/vrp/lpsolve"
)

// artificialCost keeps the restricted master feasible while the column
// pool cannot yet cover every customer. The integer solve forces these
// columns back to zero.
const artificialCost = 1e10

// DualPrices carries the dual information one master relaxation hands
// to the pricing subproblems.
type DualPrices struct {
	Node    map[string]float64
	Fleet   []float64
	Version int
}

// masterProblem is the restricted set covering program over the column
// pool. Customer rows demand each node be visited (frequency times when
// periodic), fleet rows bound the routes per vehicle type.
type masterProblem struct {
	p     *Problem
	model *lpsolve.Model

	coverRow map[string]int
	fleetRow []int // -1 when the type is unbounded

	routes  []*Route // column index -> route, nil for drop/artificial
	colOf   map[string]int
	dropCol map[string]int
	artCols []int

	version int
}

func (p *Problem) newMasterProblem(initial []*Route) (*masterProblem, error) {
	mp := &masterProblem{
		p:        p,
		model:    lpsolve.NewModel("master"),
		coverRow: map[string]int{},
		colOf:    map[string]int{},
		dropCol:  map[string]int{},
	}

	for _, c := range p.g.Customers() {
		rhs := 1.0
		if p.Periodic > 0 {
			rhs = float64(c.Frequency)
		}
		row := mp.model.AddRow(fmt.Sprintf("visit_%s", c.ID), lpsolve.GE, rhs)
		mp.coverRow[c.ID] = row

		if p.DropPenalty > 0 {
			col := mp.model.AddColumn(fmt.Sprintf("drop_%s", c.ID), float64(p.DropPenalty), true, map[int]float64{row: rhs})
			mp.routes = append(mp.routes, nil)
			mp.dropCol[c.ID] = col
		}
		// An artificial per cover row keeps the first relaxations
		// feasible whatever the seed columns look like.
		col := mp.model.AddColumn(fmt.Sprintf("artificial_%s", c.ID), artificialCost, false, map[int]float64{row: 1})
		mp.model.MarkArtificial(col)
		mp.routes = append(mp.routes, nil)
		mp.artCols = append(mp.artCols, col)
	}

	mp.fleetRow = make([]int, p.numVehicleTypes())
	for k := range mp.fleetRow {
		mp.fleetRow[k] = -1
		bound := p.vehiclesFor(k)
		if bound == 0 {
			continue
		}
		for _, r := range p.locked {
			if r.VehicleType == k {
				bound--
			}
		}
		if bound < 0 {
			return nil, fmt.Errorf("preassigned routes exceed the fleet of vehicle type %d", k)
		}
		// Demanding that the whole fleet moves turns the cap into a
		// lower bound on the routes of the type.
		sense := lpsolve.LE
		if p.UseAllVehicles {
			sense = lpsolve.GE
		}
		mp.fleetRow[k] = mp.model.AddRow(fmt.Sprintf("fleet_%d", k), sense, float64(bound))
	}

	for _, r := range initial {
		mp.addRoute(r)
	}
	if mp.model.NumCols() == 0 {
		return nil, fmt.Errorf("master problem has no columns")
	}
	return mp, nil
}

// addRoute appends a column for the route, skipping duplicates.
func (mp *masterProblem) addRoute(r *Route) bool {
	key := r.Key()
	if _, ok := mp.colOf[key]; ok {
		return false
	}
	entries := map[int]float64{}
	for _, n := range r.Customers() {
		row, ok := mp.coverRow[n]
		if !ok {
			continue
		}
		entries[row]++
	}
	if row := mp.fleetRow[r.VehicleType]; row >= 0 {
		entries[row] = 1
	}
	col := mp.model.AddColumn(fmt.Sprintf("route_%d", len(mp.colOf)), r.Cost, true, entries)
	mp.routes = append(mp.routes, nil)
	mp.routes[col] = r
	mp.colOf[key] = col
	return true
}

func (mp *masterProblem) numRoutes() int { return len(mp.colOf) }

type relaxation struct {
	objective float64
	duals     *DualPrices
	values    []float64
}

// relax solves the linear relaxation and extracts the dual prices the
// pricing subproblems need.
func (mp *masterProblem) relax() (*relaxation, error) {
	res, err := mp.model.Relax()
	if err != nil {
		return nil, fmt.Errorf("master relaxation: %w", err)
	}
	mp.version++
	duals := &DualPrices{
		Node:    map[string]float64{},
		Fleet:   make([]float64, len(mp.fleetRow)),
		Version: mp.version,
	}
	for n, row := range mp.coverRow {
		duals.Node[n] = res.Duals[row]
	}
	for k, row := range mp.fleetRow {
		if row >= 0 {
			duals.Fleet[k] = res.Duals[row]
		}
	}
	return &relaxation{objective: res.Objective, duals: duals, values: res.X}, nil
}

type integerSolution struct {
	objective float64
	routes    []*Route
	dropped   []string
	timeLimit bool
	optimal   bool
}

// solveInteger solves the restricted master as a MIP over the current
// column pool.
func (mp *masterProblem) solveInteger(deadline time.Time) (*integerSolution, error) {
	res, err := mp.model.Solve(deadline)
	if err != nil {
		return nil, fmt.Errorf("master integer solve: %w", err)
	}
	sol := mp.solutionFromValues(res.X, res.Objective)
	sol.timeLimit = res.TimeLimit
	sol.optimal = res.Optimal
	return sol, nil
}

// solutionFromValues reads an integral assignment of the column pool.
func (mp *masterProblem) solutionFromValues(values []float64, objective float64) *integerSolution {
	sol := &integerSolution{objective: objective}
	for col, r := range mp.routes {
		if r == nil {
			continue
		}
		if values[col] > 0.9 {
			sol.routes = append(sol.routes, r)
		}
	}
	for _, c := range mp.p.g.Customers() {
		if col, ok := mp.dropCol[c.ID]; ok && values[col] > 0.5 {
			sol.dropped = append(sol.dropped, c.ID)
		}
	}
	return sol
}

// bestDivingCandidate finds the fractional route column with the
// largest value, the one the diving heuristic rounds up first.
// Returns -1 when no fractional candidate is left.
func (mp *masterProblem) bestDivingCandidate(values []float64, tabu map[int]bool) int {
	best := -1
	bestVal := 0.0
	for col, r := range mp.routes {
		if r == nil || tabu[col] {
			continue
		}
		v := values[col]
		if v < 1e-6 || v > 1-1e-6 {
			continue
		}
		if v > bestVal {
			bestVal = v
			best = col
		}
	}
	return best
}

func (mp *masterProblem) integral(values []float64) bool {
	for _, col := range mp.artCols {
		// A live artificial means some customer is not really covered.
		if values[col] > 1e-6 {
			return false
		}
	}
	for col, r := range mp.routes {
		if r == nil {
			continue
		}
		if v := values[col]; v > 1e-6 && v < 1-1e-6 {
			return false
		}
	}
	return true
}
