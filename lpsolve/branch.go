package lpsolve

import (
	"errors"
	"math"
	"time"
)

const (
	intTol       = 1e-6
	maxNodes     = 200000
	pruneEpsilon = 1e-9
)

type bbNode struct {
	bounds []bound
}

// branchAndBound performs a depth-first search branching on the most
// fractional binary column, in the spirit of textbook LP-based MILP.
func (m *Model) branchAndBound(deadline time.Time) (*Result, error) {
	root := m.fixBounds()
	for j := 0; j < m.NumCols(); j++ {
		if m.artificial[j] {
			root = append(root, bound{col: j, sense: EQ, rhs: 0})
		} else if m.binary[j] {
			root = append(root, bound{col: j, sense: LE, rhs: 1})
		}
	}

	var incumbent *Result
	stack := []bbNode{{bounds: root}}
	nodes := 0
	timeLimit := false
	truncated := false

	for len(stack) > 0 {
		if !deadline.IsZero() && time.Now().After(deadline) {
			timeLimit = true
			break
		}
		nodes++
		if nodes > maxNodes {
			truncated = true
			break
		}
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		res, err := m.solveLP(node.bounds, false)
		if err != nil {
			if errors.Is(err, ErrInfeasible) {
				continue
			}
			return nil, err
		}
		if incumbent != nil && res.Objective >= incumbent.Objective-pruneEpsilon {
			continue
		}

		branchCol := -1
		worst := intTol
		for j := 0; j < m.NumCols(); j++ {
			if !m.binary[j] {
				continue
			}
			frac := math.Abs(res.X[j] - math.Round(res.X[j]))
			if frac > worst {
				worst = frac
				branchCol = j
			}
		}
		if branchCol < 0 {
			incumbent = &Result{Objective: res.Objective, X: res.X, Optimal: true}
			continue
		}

		floor := math.Floor(res.X[branchCol])
		down := append(append([]bound{}, node.bounds...), bound{col: branchCol, sense: LE, rhs: floor})
		up := append(append([]bound{}, node.bounds...), bound{col: branchCol, sense: GE, rhs: floor + 1})
		stack = append(stack, bbNode{bounds: down}, bbNode{bounds: up})
	}

	if incumbent == nil {
		return nil, ErrInfeasible
	}
	incumbent.TimeLimit = timeLimit
	incumbent.Optimal = !timeLimit && !truncated
	return incumbent, nil
}
