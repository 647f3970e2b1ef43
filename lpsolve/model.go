// Package lpsolve wraps gonum's simplex solver with a row/column model
// that supports general-sense constraints, dual prices for the relaxation
// and a branch-and-bound search for binary variables.
package lpsolve

import (
	"errors"
	"fmt"
	"time"
)

type Sense int8

const (
	LE Sense = iota
	GE
	EQ
)

var (
	ErrInfeasible = errors.New("lpsolve: model is infeasible")
	ErrUnbounded  = errors.New("lpsolve: model is unbounded")
)

// Model holds a linear program in general form: min c'x s.t. Ax {<=,>=,=} b, x >= 0.
// Columns flagged as binary are restricted to {0,1} by Solve.
type Model struct {
	name string

	rowName  []string
	rowSense []Sense
	rhs      []float64

	colName    []string
	cost       []float64
	binary     []bool
	artificial []bool
	entries    []map[int]float64 // per column: row index -> coefficient

	fixes []fix
}

type fix struct {
	col int
	val float64
}

type Result struct {
	Objective float64
	X         []float64
	Duals     []float64 // per row, only set by Relax
	Optimal   bool
	TimeLimit bool
}

func NewModel(name string) *Model {
	return &Model{name: name}
}

func (m *Model) Name() string { return m.name }

func (m *Model) NumRows() int { return len(m.rhs) }

func (m *Model) NumCols() int { return len(m.cost) }

func (m *Model) AddRow(name string, sense Sense, rhs float64) int {
	m.rowName = append(m.rowName, name)
	m.rowSense = append(m.rowSense, sense)
	m.rhs = append(m.rhs, rhs)
	return len(m.rhs) - 1
}

func (m *Model) AddColumn(name string, cost float64, binary bool, entries map[int]float64) int {
	cp := make(map[int]float64, len(entries))
	for r, v := range entries {
		cp[r] = v
	}
	m.colName = append(m.colName, name)
	m.cost = append(m.cost, cost)
	m.binary = append(m.binary, binary)
	m.artificial = append(m.artificial, false)
	m.entries = append(m.entries, cp)
	return len(m.cost) - 1
}

// SetCoefficient sets A[row][col]. Rows and columns may be created in any order.
func (m *Model) SetCoefficient(row, col int, v float64) {
	m.entries[col][row] = v
}

func (m *Model) SetRHS(row int, rhs float64) {
	m.rhs[row] = rhs
}

// MarkArtificial tags a column that exists only to keep the relaxation
// feasible. Solve forces such columns to zero.
func (m *Model) MarkArtificial(col int) {
	m.artificial[col] = true
}

func (m *Model) ColName(col int) string { return m.colName[col] }

// PushFix pins a column to a value for subsequent solves. Fixes form a
// stack so that a diving search can backtrack with PopFix.
func (m *Model) PushFix(col int, val float64) {
	m.fixes = append(m.fixes, fix{col: col, val: val})
}

func (m *Model) PopFix() {
	if len(m.fixes) > 0 {
		m.fixes = m.fixes[:len(m.fixes)-1]
	}
}

func (m *Model) NumFixes() int { return len(m.fixes) }

func (m *Model) checkReady() error {
	if len(m.cost) == 0 {
		return fmt.Errorf("lpsolve: model %s has no columns", m.name)
	}
	return nil
}

// Relax solves the linear relaxation (all fixes applied) and reports the
// dual prices of the model rows. Binary columns keep their upper bound
// of one, so the relaxation lives in [0,1] per route column.
func (m *Model) Relax() (*Result, error) {
	if err := m.checkReady(); err != nil {
		return nil, err
	}
	bs := m.fixBounds()
	for j, bin := range m.binary {
		if bin {
			bs = append(bs, bound{col: j, sense: LE, rhs: 1})
		}
	}
	res, err := m.solveLP(bs, true)
	if err != nil {
		return nil, err
	}
	res.Optimal = true
	return res, nil
}

// Solve runs a depth-first branch-and-bound over the binary columns.
// When the deadline is hit the incumbent is returned with TimeLimit set.
func (m *Model) Solve(deadline time.Time) (*Result, error) {
	if err := m.checkReady(); err != nil {
		return nil, err
	}
	return m.branchAndBound(deadline)
}

func (m *Model) fixBounds() []bound {
	var bs []bound
	for _, f := range m.fixes {
		bs = append(bs, bound{col: f.col, sense: EQ, rhs: f.val})
	}
	return bs
}
