package vrp

import (
	"fmt"
	"time"
)

const (
	// stalledIterLimit aborts column generation when the relaxation
	// value refuses to move for this many iterations.
	stalledIterLimit = 1000
	// minMIPBudget is granted to the final integer solve even when the
	// column generation phase consumed the whole time limit.
	minMIPBudget = 5 * time.Second
)

// Solve runs column generation: the master relaxation prices its duals
// into new route columns until no negative reduced cost column exists,
// then the column pool is solved to integrality (price-and-branch, so
// the integer value is an upper bound certified against the relaxation
// lower bound). The input graph is never modified and repeated calls
// with the same options reproduce the same result.
func (p *Problem) Solve(opts SolveOptions) (*Solution, error) {
	start := time.Now()
	opts.normalize()

	if err := checkStrategy(&opts); err != nil {
		return nil, err
	}
	if err := p.checkArguments(); err != nil {
		return nil, err
	}
	if err := p.checkGraph(); err != nil {
		return nil, err
	}
	if err := p.checkConsistency(&opts); err != nil {
		return nil, err
	}
	if err := p.checkFeasibility(); err != nil {
		return nil, err
	}
	if len(opts.InitialRoutes) > 0 {
		if err := p.checkInitialRoutes(opts.InitialRoutes); err != nil {
			return nil, err
		}
	}
	if err := p.checkPreassignments(opts.Preassignments); err != nil {
		return nil, err
	}
	if p.Periodic > 0 {
		for _, c := range p.G.Customers() {
			if c.Frequency > p.Periodic {
				return nil, fmt.Errorf("node %s has frequency %d over a horizon of %d days", c.ID, c.Frequency, p.Periodic)
			}
		}
	}

	if err := p.preSolve(&opts); err != nil {
		return nil, err
	}

	var deadline time.Time
	if opts.TimeLimit > 0 {
		deadline = start.Add(opts.TimeLimit)
	}

	if len(p.g.Customers()) == 0 {
		// Everything was preassigned; nothing to price.
		return p.assembleSolution(&opts, &integerSolution{optimal: true}, 0, 0, 0, true, false, start, deadline)
	}

	initial, err := p.initialRoutes(&opts)
	if err != nil {
		return nil, err
	}
	mp, err := p.newMasterProblem(initial)
	if err != nil {
		return nil, err
	}
	Log(2, "Starting column generation with %d initial columns\n", mp.numRoutes())

	var hh *hyperHeuristic
	if opts.PricingStrategy == STRAT_HYPER {
		hh = newHyperHeuristic(opts.HyperMeasure, opts.HyperAcceptance, opts.Seed)
		if opts.HyperHistory != "" {
			if err := hh.loadHistory(opts.HyperHistory); err != nil {
				return nil, err
			}
		}
	}
	var stab *dualStabilization
	if opts.Stabilize {
		stab = newDualStabilization()
	}

	iters := 0
	colsGenerated := 0
	noImprovement := 0
	lastObj := 0.0
	lowerBound := 0.0
	pricingExhausted := false
	timeLimitReached := false

	for {
		if opts.MaxIter > 0 && iters >= opts.MaxIter {
			Log(2, "Iteration limit %d reached\n", opts.MaxIter)
			break
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			Log(2, "Time limit reached after %d iterations\n", iters)
			timeLimitReached = true
			break
		}
		iters++

		rel, err := mp.relax()
		if err != nil {
			return nil, err
		}
		Log(3, "Iteration %d: relaxation %.4f with %d columns\n", iters, rel.objective, mp.numRoutes())
		if iters == 1 {
			lastObj = rel.objective
			if hh != nil {
				hh.setInitial(rel.objective)
			}
		} else if rel.objective < lastObj-1e-9 {
			noImprovement = 0
		} else {
			noImprovement++
		}
		lastObj = rel.objective
		if noImprovement > stalledIterLimit {
			Log(1, "Relaxation stalled for %d iterations, stopping column generation\n", noImprovement)
			break
		}

		strategy := opts.PricingStrategy
		if hh != nil {
			strategy = hh.current
		}
		if noImprovement > 0 && noImprovement%opts.RunExact == 0 {
			strategy = STRAT_EXACT
		}

		pricingDuals := rel.duals
		if stab != nil {
			pricingDuals = stab.smooth(rel.duals)
		}

		pricingStart := time.Now()
		added := false
		if opts.Greedy && !p.TimeWindows && !p.PickupDelivery && !p.DistributionCollection {
			for k := 0; k < p.numVehicleTypes(); k++ {
				for _, r := range p.priceGreedy(pricingDuals, k, opts.Seed+int64(iters)*1000) {
					if mp.addRoute(r) {
						added = true
						colsGenerated++
					}
				}
			}
		}
		if !added {
			for k := 0; k < p.numVehicleTypes(); k++ {
				r, err := p.price(strategy, pricingDuals, k, &opts, deadline)
				if err != nil {
					return nil, err
				}
				if r == nil {
					continue
				}
				r.PricedBy = strategy
				if mp.addRoute(r) {
					added = true
					colsGenerated++
				}
			}
		}

		if hh != nil {
			hh.report(strategy, time.Since(pricingStart), added, rel.objective)
		}

		if !added {
			if stab != nil && stab.enabled() {
				// The smoothed duals may have hidden an improving
				// column, so re-price once with the true prices.
				stab.disable()
				continue
			}
			Log(2, "No improving column after %d iterations, relaxation value %.4f\n", iters, rel.objective)
			pricingExhausted = true
			lowerBound = rel.objective
			break
		}
	}

	var mipDeadline time.Time
	if !deadline.IsZero() {
		remaining := time.Until(deadline)
		if remaining < minMIPBudget {
			remaining = minMIPBudget
		}
		mipDeadline = time.Now().Add(remaining)
	}

	var intSol *integerSolution
	if opts.Dive {
		intSol, err = p.dive(mp, mipDeadline)
	} else {
		intSol, err = mp.solveInteger(mipDeadline)
	}
	if err != nil {
		return nil, err
	}
	if intSol.timeLimit {
		timeLimitReached = true
	}

	if hh != nil && opts.HyperHistory != "" {
		if err := hh.saveHistory(opts.HyperHistory); err != nil {
			Log(1, "%s\n", err.Error())
		}
	}

	return p.assembleSolution(&opts, intSol, iters, colsGenerated, lowerBound, pricingExhausted, timeLimitReached, start, mipDeadline)
}

func (p *Problem) assembleSolution(opts *SolveOptions, intSol *integerSolution, iters, cols int, lowerBound float64, pricingExhausted, timeLimitReached bool, start time.Time, deadline time.Time) (*Solution, error) {
	sol := &Solution{
		Value:            intSol.objective,
		Dropped:          intSol.dropped,
		Iterations:       iters,
		ColumnsGenerated: cols,
		PricingExhausted: pricingExhausted,
		PriceAndBranch:   true,
		TimeLimitReached: timeLimitReached,
	}
	sol.Routes = append(sol.Routes, intSol.routes...)
	for _, r := range p.locked {
		sol.Routes = append(sol.Routes, r)
		sol.Value += r.Cost
	}
	if pricingExhausted {
		sol.LowerBound = lowerBound
		for _, r := range p.locked {
			sol.LowerBound += r.Cost
		}
	}
	if timeLimitReached {
		sol.Status = STATUS_TIME_LIMIT
	} else {
		sol.Status = STATUS_OPTIMAL
	}

	if p.Periodic > 0 {
		schedule, err := p.computeSchedule(sol.Routes, deadline)
		if err != nil {
			return nil, err
		}
		sol.Schedule = schedule
	}
	sol.Runtime = time.Since(start)
	Log(2, "Solved with value %.2f (%d routes, %d dropped) in %s\n", sol.Value, len(sol.Routes), len(sol.Dropped), sol.Runtime.String())
	return sol, nil
}
