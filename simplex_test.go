package lp

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testTol = 1e-3

func TestTwoVariableLP(t *testing.T) {
	m := NewModel("two-variable")
	m.SetLogger(zaptest.NewLogger(t))
	x := m.AddVariable("x")
	y := m.AddVariable("y")

	_, err := m.AddConstraint(NewExpression().Add(2, x).Add(1, y), LE, 1)
	require.NoError(t, err)
	_, err = m.AddConstraint(NewExpression().Add(1, y), GE, 0.5)
	require.NoError(t, err)
	_, err = m.AddConstraint(NewExpression().Add(1, x).Add(1, y), EQ, 0.75)
	require.NoError(t, err)
	require.NoError(t, m.SetObjective(NewExpression().Add(1, x).Add(1, y), Maximize))

	res, err := m.Solve()
	require.NoError(t, err)

	assert.Equal(t, StatusOptimal, res.Status)
	assert.InDelta(t, 0.75, res.ObjVal, testTol)
	assert.InDelta(t, 0.25, res.Solution["x"], testTol)
	assert.InDelta(t, 0.5, res.Solution["y"], testTol)
}

func investmentLP(t *testing.T) (*Model, *Variable, *Variable) {
	t.Helper()
	m := NewModel("investment")
	x := m.AddVariable("x")
	y := m.AddVariable("y")

	_, err := m.AddConstraint(NewExpression().Add(8000, x).Add(4000, y), LE, 40000)
	require.NoError(t, err)
	_, err = m.AddConstraint(NewExpression().Add(15, x).Add(30, y), LE, 200)
	require.NoError(t, err)
	require.NoError(t, m.SetObjective(NewExpression().Add(100, x).Add(150, y), Maximize))
	return m, x, y
}

func TestInvestmentLPRelaxation(t *testing.T) {
	m, x, y := investmentLP(t)

	res, err := m.Solve()
	require.NoError(t, err)

	// optimum at the intersection of both budget constraints:
	// x = 20/9, y = 50/9, objective 9500/9
	assert.Equal(t, StatusOptimal, res.Status)
	assert.InDelta(t, 1055.556, res.ObjVal, testTol)
	assert.InDelta(t, 2.222, res.Solution["x"], testTol)
	assert.InDelta(t, 5.556, res.Solution["y"], testTol)

	xv, err := m.Value(x)
	require.NoError(t, err)
	yv, err := m.Value(y)
	require.NoError(t, err)
	assert.InDelta(t, 2.222, xv, testTol)
	assert.InDelta(t, 5.556, yv, testTol)
}

func TestInfeasibleDetection(t *testing.T) {
	m := NewModel("infeasible")
	x := m.AddVariable("x")

	_, err := m.AddConstraintVar(x, LE, 1)
	require.NoError(t, err)
	_, err = m.AddConstraintVar(x, GE, 2)
	require.NoError(t, err)
	require.NoError(t, m.SetObjective(NewExpression().Add(1, x), Minimize))

	res, err := m.Solve()
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, res.Status)
	assert.Nil(t, res.Solution)
}

func TestUnboundedDetection(t *testing.T) {
	m := NewModel("unbounded")
	x := m.AddVariable("x")

	_, err := m.AddConstraintVar(x, GE, 0)
	require.NoError(t, err)
	require.NoError(t, m.SetObjective(NewExpression().Add(-1, x), Minimize))

	res, err := m.Solve()
	require.NoError(t, err)
	assert.Equal(t, StatusUnbounded, res.Status)
}

// A constraint posed as LE must solve identically to the same constraint
// posed as EQ with an explicit slack variable.
func TestStandardizeDesugarEquivalence(t *testing.T) {
	sugared := NewModel("le-form")
	x1 := sugared.AddVariable("x")
	y1 := sugared.AddVariable("y")
	_, err := sugared.AddConstraint(NewExpression().Add(2, x1).Add(1, y1), LE, 1)
	require.NoError(t, err)
	_, err = sugared.AddConstraint(NewExpression().Add(1, y1), GE, 0.5)
	require.NoError(t, err)
	_, err = sugared.AddConstraint(NewExpression().Add(1, x1).Add(1, y1), EQ, 0.75)
	require.NoError(t, err)
	require.NoError(t, sugared.SetObjective(NewExpression().Add(1, x1).Add(1, y1), Maximize))

	desugared := NewModel("eq-form")
	x2 := desugared.AddVariable("x")
	y2 := desugared.AddVariable("y")
	s2 := desugared.AddVariable("s")
	_, err = desugared.AddConstraint(NewExpression().Add(2, x2).Add(1, y2).Add(1, s2), EQ, 1)
	require.NoError(t, err)
	_, err = desugared.AddConstraint(NewExpression().Add(1, y2), GE, 0.5)
	require.NoError(t, err)
	_, err = desugared.AddConstraint(NewExpression().Add(1, x2).Add(1, y2), EQ, 0.75)
	require.NoError(t, err)
	require.NoError(t, desugared.SetObjective(NewExpression().Add(1, x2).Add(1, y2), Maximize))

	resA, err := sugared.Solve()
	require.NoError(t, err)
	resB, err := desugared.Solve()
	require.NoError(t, err)

	assert.Equal(t, StatusOptimal, resA.Status)
	assert.Equal(t, StatusOptimal, resB.Status)
	assert.InDelta(t, resA.ObjVal, resB.ObjVal, testTol)
	assert.InDelta(t, resA.Solution["x"], resB.Solution["x"], testTol)
	assert.InDelta(t, resA.Solution["y"], resB.Solution["y"], testTol)
}

// Flipping the objective direction negates the reported objective and keeps
// the primal solution of an LP with a unique optimum.
func TestMaxMinSymmetry(t *testing.T) {
	maxModel, _, _ := investmentLP(t)
	resMax, err := maxModel.Solve()
	require.NoError(t, err)

	minModel := NewModel("negated")
	x := minModel.AddVariable("x")
	y := minModel.AddVariable("y")
	_, err = minModel.AddConstraint(NewExpression().Add(8000, x).Add(4000, y), LE, 40000)
	require.NoError(t, err)
	_, err = minModel.AddConstraint(NewExpression().Add(15, x).Add(30, y), LE, 200)
	require.NoError(t, err)
	require.NoError(t, minModel.SetObjective(NewExpression().Add(-100, x).Add(-150, y), Minimize))

	resMin, err := minModel.Solve()
	require.NoError(t, err)

	assert.Equal(t, StatusOptimal, resMin.Status)
	assert.InDelta(t, -resMax.ObjVal, resMin.ObjVal, testTol)
	assert.InDelta(t, resMax.Solution["x"], resMin.Solution["x"], testTol)
	assert.InDelta(t, resMax.Solution["y"], resMin.Solution["y"], testTol)
}

// objectiveRecorder captures the running objective at every pivot.
type objectiveRecorder struct {
	nopObserver
	objs []float64
}

func (r *objectiveRecorder) Pivot(nodeID int64, iteration int, objValue float64) {
	r.objs = append(r.objs, objValue)
}

func TestObjectiveMonotoneAcrossPivots(t *testing.T) {
	m, _, _ := investmentLP(t)
	rec := &objectiveRecorder{}
	m.SetObserver(rec)

	_, err := m.Solve()
	require.NoError(t, err)
	require.NotEmpty(t, rec.objs)

	for i := 1; i < len(rec.objs); i++ {
		assert.LessOrEqual(t, rec.objs[i], rec.objs[i-1]+1e-6,
			"objective must not increase across pivots")
	}
}

func TestSimplexInvariantsAtTermination(t *testing.T) {
	m, _, _ := investmentLP(t)
	_, err := m.Solve()
	require.NoError(t, err)

	// exactly m variables in basis
	inBasis := 0
	for _, v := range m.vars {
		if v.inBasis {
			inBasis++
		}
	}
	assert.Equal(t, m.nRows, inBasis)

	// basic values match B^-1 b positionally
	xb := make([]float64, m.nRows)
	for pos := range xb {
		total := 0.0
		for j := 0; j < m.nRows; j++ {
			total += m.tab.bInv.At(pos, j) * m.tab.b.AtVec(j)
		}
		xb[pos] = total
	}
	for pos, j := range m.tab.basis {
		assert.InDelta(t, xb[pos], m.vars[j].value, 1e-6)
	}

	// objective equals the cost-weighted sum over all variables
	total := 0.0
	for _, v := range m.vars {
		total += v.costC * v.value
	}
	assert.InDelta(t, total, m.objValue, 1e-6)
}

// Max-flow on a six-node network, modeled as flow-balance equalities plus
// per-arc capacity rows, maximizing the return arc t->s.
func TestMaxFlowNetwork(t *testing.T) {
	const (
		n      = 6
		source = 0
		sink   = 5
		bigCap = 100.0
	)
	capacities := [n][n]float64{
		{0, 4, 2, 0, 0, 0},
		{0, 0, 0, 3, 0, 0},
		{0, 0, 0, 2, 3, 0},
		{0, 0, 1, 0, 0, 2},
		{0, 0, 0, 0, 0, 4},
		{bigCap, 0, 0, 0, 0, 0},
	}

	m := NewModel("max-flow")
	arcs := [n][n]*Variable{}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			arcs[i][j] = m.AddVariable(arcName(i, j))
		}
	}

	for i := 0; i < n; i++ {
		balance := NewExpression()
		for j := 0; j < n; j++ {
			balance.Add(1, arcs[i][j])
			balance.Add(-1, arcs[j][i])
		}
		_, err := m.AddConstraint(balance, EQ, 0)
		require.NoError(t, err)
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			_, err := m.AddConstraintVar(arcs[i][j], LE, capacities[i][j])
			require.NoError(t, err)
		}
	}

	require.NoError(t, m.SetObjective(NewExpression().Add(1, arcs[sink][source]), Maximize))

	res, err := m.Solve()
	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, res.Status)
	assert.InDelta(t, 5.0, res.ObjVal, testTol)
}

func arcName(i, j int) string {
	return fmt.Sprintf("x[%d,%d]", i, j)
}
