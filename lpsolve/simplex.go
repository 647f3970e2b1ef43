package lpsolve

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const simplexTol = 1e-9

// bound is a single-column side constraint appended after the model rows.
type bound struct {
	col   int
	sense Sense
	rhs   float64
}

// solveLP solves min c'x over the model rows plus the given bounds with
// continuous x >= 0. Duals of the model rows are computed on demand by
// solving the explicit dual program.
func (m *Model) solveLP(bounds []bound, wantDuals bool) (*Result, error) {
	n := m.NumCols()
	mRows := m.NumRows()
	total := mRows + len(bounds)

	sense := make([]Sense, total)
	rhs := make([]float64, total)
	copy(sense, m.rowSense)
	copy(rhs, m.rhs)
	for i, b := range bounds {
		sense[mRows+i] = b.sense
		rhs[mRows+i] = b.rhs
	}

	rowVec := func(r int) []float64 {
		v := make([]float64, n)
		if r < mRows {
			for j := 0; j < n; j++ {
				if val, ok := m.entries[j][r]; ok {
					v[j] = val
				}
			}
		} else {
			v[bounds[r-mRows].col] = 1
		}
		return v
	}
	keep, err := dropDependentEqualities(sense, rhs, rowVec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.name, err)
	}

	// Standard form over the kept rows: one slack per inequality row.
	slacks := 0
	for _, r := range keep {
		if sense[r] != EQ {
			slacks++
		}
	}
	cols := n + slacks
	a := mat.NewDense(len(keep), cols, nil)
	c := make([]float64, cols)
	copy(c, m.cost)
	b := make([]float64, len(keep))

	rowPos := make(map[int]int, len(keep))
	for i, r := range keep {
		rowPos[r] = i
		b[i] = rhs[r]
	}
	for j := 0; j < n; j++ {
		for r, v := range m.entries[j] {
			if i, ok := rowPos[r]; ok {
				a.Set(i, j, v)
			}
		}
	}
	for i, bd := range bounds {
		if pos, ok := rowPos[mRows+i]; ok {
			a.Set(pos, bd.col, 1)
		}
	}
	sj := n
	for i, r := range keep {
		switch sense[r] {
		case LE:
			a.Set(i, sj, 1)
			sj++
		case GE:
			a.Set(i, sj, -1)
			sj++
		}
	}

	obj, x, err := lp.Simplex(c, a, b, simplexTol, nil)
	if err != nil {
		return nil, mapLPError(m.name, err)
	}
	res := &Result{Objective: obj, X: x[:n]}
	if wantDuals {
		duals, err := m.solveDual(bounds)
		if err != nil {
			return nil, fmt.Errorf("dual prices for %s: %w", m.name, err)
		}
		res.Duals = duals
	}
	return res, nil
}

// dropDependentEqualities returns the indices of the rows to keep.
// Inequality rows always stay: their slacks make them independent.
// Equality rows carry no slack, so a linearly dependent one makes the
// standard form matrix singular and gonum's simplex rejects it outright.
// Gaussian elimination spots such rows: one that reduces to zero is
// redundant and dropped, unless its right hand side survives the
// reduction, in which case the system is contradictory.
func dropDependentEqualities(sense []Sense, rhs []float64, rowVec func(int) []float64) ([]int, error) {
	type eqRow struct {
		vec []float64
		rhs float64
		piv int
	}
	var reduced []eqRow
	keep := make([]int, 0, len(sense))
	for r := range sense {
		if sense[r] != EQ {
			keep = append(keep, r)
			continue
		}
		vec := rowVec(r)
		b := rhs[r]
		for _, p := range reduced {
			f := vec[p.piv] / p.vec[p.piv]
			if f == 0 {
				continue
			}
			for j := range vec {
				vec[j] -= f * p.vec[j]
			}
			b -= f * p.rhs
		}
		piv := -1
		for j := range vec {
			if math.Abs(vec[j]) > 1e-9 && (piv < 0 || math.Abs(vec[j]) > math.Abs(vec[piv])) {
				piv = j
			}
		}
		if piv < 0 {
			if math.Abs(b) > 1e-7 {
				return nil, ErrInfeasible
			}
			continue
		}
		reduced = append(reduced, eqRow{vec: vec, rhs: b, piv: piv})
		keep = append(keep, r)
	}
	return keep, nil
}

// solveDual solves max b'y s.t. A'y <= c with y sign-restricted per row
// sense (y <= 0 for LE, y >= 0 for GE, free for EQ) and returns y for the
// model rows. Free variables are split into positive and negative parts.
func (m *Model) solveDual(bounds []bound) ([]float64, error) {
	n := m.NumCols()
	mRows := m.NumRows()
	total := mRows + len(bounds)

	sense := make([]Sense, total)
	rhs := make([]float64, total)
	copy(sense, m.rowSense)
	copy(rhs, m.rhs)
	for i, b := range bounds {
		sense[mRows+i] = b.sense
		rhs[mRows+i] = b.rhs
	}

	// Dual variable layout: one nonnegative var per inequality row, a
	// split pair per equality row, then one slack per primal column.
	idx := make([]int, total)
	dn := 0
	for r, s := range sense {
		idx[r] = dn
		if s == EQ {
			dn += 2
		} else {
			dn++
		}
	}
	cols := dn + n
	a := mat.NewDense(n, cols, nil)
	c := make([]float64, cols)

	coef := func(r, j int) float64 {
		if r < mRows {
			return m.entries[j][r]
		}
		if bounds[r-mRows].col == j {
			return 1
		}
		return 0
	}

	for r, s := range sense {
		for j := 0; j < n; j++ {
			v := coef(r, j)
			if v == 0 {
				continue
			}
			switch s {
			case GE:
				a.Set(j, idx[r], v)
			case LE:
				a.Set(j, idx[r], -v)
			case EQ:
				a.Set(j, idx[r], v)
				a.Set(j, idx[r]+1, -v)
			}
		}
		// Objective max b'y expressed as min of the negated form.
		switch s {
		case GE:
			c[idx[r]] = -rhs[r]
		case LE:
			c[idx[r]] = rhs[r]
		case EQ:
			c[idx[r]] = -rhs[r]
			c[idx[r]+1] = rhs[r]
		}
	}
	b := make([]float64, n)
	copy(b, m.cost)
	for j := 0; j < n; j++ {
		a.Set(j, dn+j, 1)
	}

	_, y, err := lp.Simplex(c, a, b, simplexTol, nil)
	if err != nil {
		return nil, mapLPError(m.name, err)
	}

	duals := make([]float64, mRows)
	for r := 0; r < mRows; r++ {
		switch sense[r] {
		case GE:
			duals[r] = y[idx[r]]
		case LE:
			duals[r] = -y[idx[r]]
		case EQ:
			duals[r] = y[idx[r]] - y[idx[r]+1]
		}
	}
	return duals, nil
}

func mapLPError(name string, err error) error {
	if errors.Is(err, lp.ErrInfeasible) {
		return fmt.Errorf("%s: %w", name, ErrInfeasible)
	}
	if errors.Is(err, lp.ErrUnbounded) {
		return fmt.Errorf("%s: %w", name, ErrUnbounded)
	}
	return fmt.Errorf("lpsolve: %s: %w", name, err)
}
