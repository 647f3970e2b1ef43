package vrp

import (
	"errors"
	"time"

	"git.solver4all.com/azaryc2s/vrp/lpsolve"
)

// Diving search limits, following the limited discrepancy scheme of
// Sadykov et al.
const (
	maxDiveDepth       = 3
	maxDiveDiscrepancy = 1
)

// dive rounds the relaxation to an integer solution by repeatedly
// fixing the largest fractional route to one and resolving. When a fix
// makes the master infeasible it is undone, the column goes on the tabu
// list and the search spends one discrepancy. If the dive cannot reach
// an integral point the column pool MIP finishes the job.
func (p *Problem) dive(mp *masterProblem, deadline time.Time) (*integerSolution, error) {
	baseFixes := mp.model.NumFixes()
	defer func() {
		for mp.model.NumFixes() > baseFixes {
			mp.model.PopFix()
		}
	}()

	tabu := map[int]bool{}
	discrepancy := 0
	for {
		rel, err := mp.relax()
		if err != nil {
			if errors.Is(err, lpsolve.ErrInfeasible) && mp.model.NumFixes() > baseFixes && discrepancy < maxDiveDiscrepancy {
				mp.model.PopFix()
				discrepancy++
				Log(3, "Diving backtracks, discrepancy %d\n", discrepancy)
				continue
			}
			if errors.Is(err, lpsolve.ErrInfeasible) {
				Log(3, "Diving exhausted, solving the pool MIP\n")
				return mp.solveInteger(deadline)
			}
			return nil, err
		}
		if mp.integral(rel.values) {
			sol := mp.solutionFromValues(rel.values, rel.objective)
			sol.optimal = false
			Log(2, "Diving reached an integral solution with value %.2f\n", rel.objective)
			return sol, nil
		}
		if mp.model.NumFixes()-baseFixes >= maxDiveDepth {
			return mp.solveInteger(deadline)
		}
		col := mp.bestDivingCandidate(rel.values, tabu)
		if col < 0 {
			return mp.solveInteger(deadline)
		}
		Log(4, "Diving fixes column %s to 1\n", mp.model.ColName(col))
		mp.model.PushFix(col, 1)
		tabu[col] = true
	}
}
