package lp

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

const (
	// reduced costs below this are not improving
	pivotTol = 1e-9

	// residue above which an artificial variable marks infeasibility
	artificialTol = 1e-7

	// distance from the nearest integer tolerated by the integrality check
	intTol = 1e-6

	// pivots between explicit re-inversions of the accumulated basis inverse
	refactorInterval = 50
)

// solveLP standardizes the model and runs the revised simplex to a terminal
// LP classification. The basis inverse is maintained explicitly: product-form
// eta updates per pivot, with a full re-inversion every refactorInterval
// pivots to shed accumulated rounding error.
func (m *Model) solveLP() (Status, error) {
	if err := m.standardize(); err != nil {
		return StatusNone, err
	}
	t := m.tab

	// Initial basic solution: x_B = B^-1 b = b. RHS normalization guarantees
	// b >= 0, so a negative component is an internal consistency failure.
	for i := 0; i < t.nRows; i++ {
		if t.b.AtVec(i) < 0 {
			return StatusNone, fmt.Errorf("negative rhs %g in row %d after standardization: %w",
				t.b.AtVec(i), i, ErrUnknownModel)
		}
	}

	status, err := m.iterate()
	if err != nil {
		return StatusNone, err
	}

	logRes := m.newResult(status)
	m.logger.Info("simplex finished",
		zap.Int64("node", m.nodeID),
		zap.String("status", status.String()),
		zap.Float64("obj_val", logRes.ObjVal),
		zap.Any("solution", logRes.Solution),
	)
	return status, nil
}

// iterate runs pivots until no improving non-basic variable remains, the
// problem proves unbounded, or the iteration cap trips.
func (m *Model) iterate() (Status, error) {
	t := m.tab
	maxIter := 50 * (t.nRows + len(m.vars))

	for iter := 0; ; iter++ {
		if iter >= maxIter {
			return StatusNone, fmt.Errorf("iteration limit %d reached: %w", maxIter, ErrNumerical)
		}

		entering, improving := m.priceEntering()
		if !improving {
			return m.classifyTerminal(), nil
		}

		// pivot column y = B^-1 A_j
		y := mat.NewVecDense(t.nRows, nil)
		y.MulVec(t.bInv, t.cols[entering])

		row, ratio, bounded := ratioTest(m, y)
		if !bounded {
			return StatusUnbounded, nil
		}

		leaving := t.basis[row]
		m.applyPivot(entering, row, ratio)
		if err := m.refreshBasisInverse(row, y); err != nil {
			return StatusNone, err
		}
		m.recomputeBasicValues()
		m.updateObjValue()

		m.observer.Pivot(m.nodeID, iter, m.objValue)
		m.logger.Info("pivot",
			zap.Int64("node", m.nodeID),
			zap.Int("iteration", iter),
			zap.String("entering", m.vars[entering].name),
			zap.String("leaving", m.vars[leaving].name),
			zap.Float64("obj_val", round3(m.reportedObjective())),
		)
	}
}

// priceEntering computes the dual multipliers w = c_B B^-1 and returns the
// non-basic variable maximizing z_j - c_j (Dantzig's rule). Ties fall to the
// lower variable index because only a strictly greater reduced cost replaces
// the candidate.
func (m *Model) priceEntering() (int, bool) {
	t := m.tab

	cb := mat.NewVecDense(t.nRows, nil)
	for pos, j := range t.basis {
		cb.SetVec(pos, m.vars[j].costC)
	}
	w := mat.NewVecDense(t.nRows, nil)
	w.MulVec(t.bInv.T(), cb)

	best := pivotTol
	bestIdx := -1
	for j, v := range m.vars {
		if v.inBasis {
			continue
		}
		zc := mat.Dot(w, t.cols[j]) - v.costC
		if zc > best {
			best = zc
			bestIdx = j
		}
	}
	return bestIdx, bestIdx >= 0
}

// ratioTest picks the leaving row: among y_i > 0, the minimum x_B[i]/y_i.
// Ties keep the smallest basis position, a Bland-like guard against cycling
// through degenerate pivots.
func ratioTest(m *Model, y *mat.VecDense) (row int, ratio float64, bounded bool) {
	t := m.tab
	row = -1
	for i := 0; i < t.nRows; i++ {
		yi := y.AtVec(i)
		if yi <= pivotTol {
			continue
		}
		r := m.vars[t.basis[i]].value / yi
		if row < 0 || r < ratio {
			row = i
			ratio = r
		}
	}
	if row < 0 {
		return 0, 0, false
	}
	return row, ratio, true
}

// applyPivot swaps the entering variable into basis position row.
func (m *Model) applyPivot(entering, row int, ratio float64) {
	t := m.tab
	leaving := t.basis[row]
	m.vars[leaving].inBasis = false
	m.vars[leaving].value = 0
	m.vars[entering].inBasis = true
	m.vars[entering].value = ratio
	t.basis[row] = entering
	t.pivots++
}

// refreshBasisInverse applies the product-form update B^-1 <- E B^-1, where E
// is the identity with column row replaced by (-y/y_row, ..., 1/y_row, ...).
// Every refactorInterval pivots the inverse is rebuilt from scratch instead.
func (m *Model) refreshBasisInverse(row int, y *mat.VecDense) error {
	t := m.tab
	if t.pivots%refactorInterval == 0 {
		return m.reinvert()
	}

	yr := y.AtVec(row)
	for j := 0; j < t.nRows; j++ {
		t.bInv.Set(row, j, t.bInv.At(row, j)/yr)
	}
	for i := 0; i < t.nRows; i++ {
		if i == row {
			continue
		}
		f := y.AtVec(i)
		if f == 0 {
			continue
		}
		for j := 0; j < t.nRows; j++ {
			t.bInv.Set(i, j, t.bInv.At(i, j)-f*t.bInv.At(row, j))
		}
	}
	return nil
}

// reinvert rebuilds B from the current basis columns of A and inverts it.
// Rank deficiency is fatal; mere ill-conditioning is logged and tolerated.
func (m *Model) reinvert() error {
	t := m.tab
	B := mat.NewDense(t.nRows, t.nRows, nil)
	for pos, j := range t.basis {
		for r := 0; r < t.nRows; r++ {
			B.Set(r, pos, t.cols[j].AtVec(r))
		}
	}

	var inv mat.Dense
	if err := inv.Inverse(B); err != nil {
		var cond mat.Condition
		// a singular B is reported as an infinite condition number
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return fmt.Errorf("basis re-inversion: %w", ErrNumerical)
		}
		m.logger.Info("ill-conditioned basis",
			zap.Int64("node", m.nodeID),
			zap.Float64("condition", float64(cond)),
		)
	}
	t.bInv = &inv
	return nil
}

// recomputeBasicValues refreshes x_B = B^-1 b into the basic variables.
func (m *Model) recomputeBasicValues() {
	t := m.tab
	xb := mat.NewVecDense(t.nRows, nil)
	xb.MulVec(t.bInv, t.b)
	for pos, j := range t.basis {
		m.vars[j].value = xb.AtVec(pos)
	}
}

// classifyTerminal decides OPTIMAL vs INFEASIBLE once no improving column
// remains: any artificial variable still carrying value marks the original
// feasible region empty.
func (m *Model) classifyTerminal() Status {
	for _, v := range m.vars {
		if v.role == Artificial && v.value > artificialTol {
			return StatusInfeasible
		}
	}
	return StatusOptimal
}
