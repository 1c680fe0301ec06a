package lp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// The standardizer turns the user model into equality form with a
// non-negative right-hand side, an identity-columned initial basis, and a
// Big-M-penalized cost vector. Sign normalization and auxiliary injection
// happen as each constraint is registered; the dense arrays are materialized
// once per solve by prepareMatrices.

// injectAuxiliaries adds the slack/surplus/artificial variables carrying the
// (already sign-normalized) sense of constraint row.
func (m *Model) injectAuxiliaries(sense Sense, row int) {
	switch sense {
	case LE:
		m.addSlack(row)
	case GE:
		m.addSurplus(row)
		m.addArtificial(row)
	case EQ:
		m.addArtificial(row)
	}
}

// addSlack adds a slack variable with column +e_row, cost 0, in the initial
// basis.
func (m *Model) addSlack(row int) {
	s := m.addVar(fmt.Sprintf("s%d", m.nSlack), Slack)
	s.column[row] = 1
	s.inBasis = true
	m.initialBasis = append(m.initialBasis, s.index)
	m.nSlack++
}

// addSurplus adds a surplus variable with column -e_row, cost 0, outside the
// basis.
func (m *Model) addSurplus(row int) {
	e := m.addVar(fmt.Sprintf("e%d", m.nSurplus), Surplus)
	e.column[row] = -1
	m.nSurplus++
}

// addArtificial adds an artificial variable with column +e_row, cost Big-M,
// in the initial basis.
func (m *Model) addArtificial(row int) {
	a := m.addVar(fmt.Sprintf("a%d", m.nArtificial), Artificial)
	a.column[row] = 1
	a.costC = bigM
	a.inBasis = true
	m.initialBasis = append(m.initialBasis, a.index)
	m.nArtificial++
}

// lowerVariableBounds materializes finite upper bounds and positive lower
// bounds of primal variables as constraint rows. Runs once per model; clones
// inherit the rows and do not lower again.
func (m *Model) lowerVariableBounds() error {
	primals := make([]*Variable, 0, len(m.vars))
	for _, v := range m.vars {
		if v.role == Primal {
			primals = append(primals, v)
		}
	}
	for _, v := range primals {
		if !math.IsInf(v.upper, 1) {
			if _, err := m.AddConstraintVar(v, LE, v.upper); err != nil {
				return err
			}
		}
		if v.lower > 0 {
			if _, err := m.AddConstraintVar(v, GE, v.lower); err != nil {
				return err
			}
		}
	}
	return nil
}

// tableau is the dense numerical state of one simplex run.
type tableau struct {
	nRows int

	// column j of A for variable j, materialized dense
	cols []*mat.VecDense

	b *mat.VecDense

	// ordered basic variable indices; position i corresponds to row i
	basis []int

	// explicitly maintained basis inverse
	bInv *mat.Dense

	pivots int
}

// standardize finalizes the model for a simplex run: bound rows are lowered
// on first use and the dense arrays, the initial basis, and B^-1 = I are
// rebuilt from the incremental standardization state.
func (m *Model) standardize() error {
	if !m.lowered {
		if err := m.lowerVariableBounds(); err != nil {
			return err
		}
		m.lowered = true
	}
	return m.prepareMatrices()
}

// prepareMatrices materializes A, b, the initial basis and B^-1, and resets
// every variable to its standardized starting value.
func (m *Model) prepareMatrices() error {
	rows := m.nRows
	if rows == 0 {
		return fmt.Errorf("model has no constraints: %w", ErrUnknownModel)
	}
	if len(m.initialBasis) != rows {
		return fmt.Errorf("initial basis has %d of %d rows: %w", len(m.initialBasis), rows, ErrUnknownModel)
	}

	t := &tableau{nRows: rows}

	t.b = mat.NewVecDense(rows, append([]float64(nil), m.rhs...))
	t.cols = make([]*mat.VecDense, len(m.vars))
	for j, v := range m.vars {
		col := mat.NewVecDense(rows, nil)
		for r, coef := range v.column {
			col.SetVec(r, coef)
		}
		t.cols[j] = col
	}

	t.basis = append([]int(nil), m.initialBasis...)
	t.bInv = identity(rows)

	for _, v := range m.vars {
		v.value = 0
		v.inBasis = false
	}
	for pos, j := range t.basis {
		m.vars[j].inBasis = true
		m.vars[j].value = t.b.AtVec(pos)
	}

	m.tab = t
	m.updateObjValue()
	return nil
}

// updateObjValue recomputes the internal minimization objective as the full
// cost-weighted sum over all variables.
func (m *Model) updateObjValue() {
	total := 0.0
	for _, v := range m.vars {
		total += v.costC * v.value
	}
	m.objValue = total
}

func identity(n int) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, 1)
	}
	return d
}
