package lp

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// bigM penalizes artificial variables in the standardized objective so that
// any feasible basis naturally expels them.
const bigM = 1e6

// Sense is the relation of a constraint's left-hand side to its right-hand
// side.
type Sense int

const (
	LE Sense = iota
	EQ
	GE
)

// Direction states whether the objective is minimized or maximized. The
// solver always minimizes internally; maximization is stored with negated
// cost coefficients and re-negated on reporting.
type Direction int

const (
	Minimize Direction = iota
	Maximize
)

type term struct {
	coef float64
	v    *Variable
}

// Expression is a linear combination of model variables, built term by term.
type Expression struct {
	terms []term
}

// NewExpression returns an empty linear expression.
func NewExpression() *Expression {
	return &Expression{}
}

// Add appends coef*v to the expression and returns it for chaining. Repeated
// terms for the same variable accumulate.
func (e *Expression) Add(coef float64, v *Variable) *Expression {
	e.terms = append(e.terms, term{coef: coef, v: v})
	return e
}

// Constraint is a registered model constraint. The stored terms and rhs are
// sign-normalized so that rhs >= 0.
type Constraint struct {
	terms []term
	sense Sense
	rhs   float64
	row   int
}

// Objective is the registered model objective.
type Objective struct {
	terms     []term
	direction Direction
}

// Model aggregates variables, constraints, and the objective of one problem,
// together with the standardized arrays the solver works on. A Model is owned
// by a single solve invocation at a time; branch-and-bound operates on
// independent clones.
type Model struct {
	name string

	vars   []*Variable
	consts []*Constraint
	obj    *Objective

	params   Params
	logger   *zap.Logger
	observer SearchObserver

	isMIP   bool
	lowered bool

	// standardization state, built incrementally as constraints arrive
	rhs          []float64
	initialBasis []int
	nRows        int
	nSlack       int
	nSurplus     int
	nArtificial  int

	// per-solve simplex state, rebuilt by prepareMatrices
	tab *tableau

	objValue  float64
	startTime time.Time
	result    Result

	// identifier of the branch-and-bound node this model belongs to
	nodeID int64
}

// NewModel creates an empty model.
func NewModel(name string) *Model {
	return &Model{
		name:     name,
		params:   DefaultParams(),
		logger:   zap.NewNop(),
		observer: nopObserver{},
	}
}

// Name returns the model's display name.
func (m *Model) Name() string { return m.name }

// SetParams replaces the solver-parameter block.
func (m *Model) SetParams(p Params) { m.params = p }

// SetLogger installs a logger for the structured per-transition result lines.
// The default is a no-op logger.
func (m *Model) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	m.logger = l
}

// SetObserver installs a search observer receiving pivot and tree decisions.
func (m *Model) SetObserver(o SearchObserver) {
	if o == nil {
		o = nopObserver{}
	}
	m.observer = o
}

// AddVariable registers a continuous variable with bounds [0, +inf) and
// returns its handle.
func (m *Model) AddVariable(name string) *Variable {
	return m.addVar(name, Primal)
}

// AddDefinedVariable registers a variable with kind and bounds in one call.
// For Binary the given bounds are replaced by [0, 1].
func (m *Model) AddDefinedVariable(name string, kind VarKind, lower, upper float64) *Variable {
	v := m.addVar(name, Primal)
	v.Bounds(lower, upper)
	switch kind {
	case Integer:
		v.AsInteger()
	case Binary:
		v.AsBinary()
	}
	return v
}

// AddConstraint registers sum(expr) sense rhs. A negative rhs is normalized
// by negating the row and flipping the sense, after which the auxiliary
// variables carrying the inequality are injected.
func (m *Model) AddConstraint(expr *Expression, sense Sense, rhs float64) (*Constraint, error) {
	if expr == nil || len(expr.terms) == 0 {
		return nil, fmt.Errorf("empty constraint expression: %w", ErrUnknownModel)
	}
	for _, t := range expr.terms {
		if t.v == nil || t.v.model != m {
			return nil, ErrUnknownVariable
		}
	}

	row := m.nRows
	c := &Constraint{sense: sense, rhs: rhs, row: row}
	c.terms = make([]term, len(expr.terms))
	copy(c.terms, expr.terms)

	if c.rhs < 0 {
		c.rhs = -c.rhs
		for i := range c.terms {
			c.terms[i].coef = -c.terms[i].coef
		}
		c.sense = reverseSense(c.sense)
	}

	m.rhs = append(m.rhs, c.rhs)
	for _, t := range c.terms {
		t.v.column[row] += t.coef
	}
	m.injectAuxiliaries(c.sense, row)

	m.consts = append(m.consts, c)
	m.nRows++
	return c, nil
}

// AddConstraintVar registers the single-variable constraint v sense rhs.
func (m *Model) AddConstraintVar(v *Variable, sense Sense, rhs float64) (*Constraint, error) {
	return m.AddConstraint(NewExpression().Add(1, v), sense, rhs)
}

// SetObjective registers the objective. For Maximize the cost coefficients
// are stored negated; the reported objective is re-negated on output.
func (m *Model) SetObjective(expr *Expression, direction Direction) error {
	if expr == nil || len(expr.terms) == 0 {
		return fmt.Errorf("empty objective expression: %w", ErrUnknownModel)
	}
	for _, t := range expr.terms {
		if t.v == nil || t.v.model != m {
			return ErrUnknownVariable
		}
	}
	for _, v := range m.vars {
		if v.role == Primal {
			v.costC = 0
		}
	}
	sign := 1.0
	if direction == Maximize {
		sign = -1.0
	}
	for _, t := range expr.terms {
		t.v.costC += sign * t.coef
	}
	o := &Objective{direction: direction}
	o.terms = make([]term, len(expr.terms))
	copy(o.terms, expr.terms)
	m.obj = o
	return nil
}

// Solve runs the solver to a final status. It blocks until the model is
// solved or a termination criterion from the parameter block fires.
func (m *Model) Solve() (Result, error) {
	return m.SolveContext(context.Background())
}

// SolveContext is Solve with caller-supplied cancellation. Cancellation is
// polled between branch-and-bound node evaluations; the best-known result is
// returned alongside the context error.
func (m *Model) SolveContext(ctx context.Context) (Result, error) {
	if m.obj == nil {
		return Result{}, fmt.Errorf("no objective set: %w", ErrUnknownModel)
	}
	m.startTime = time.Now()

	var res Result
	var err error
	if m.isMIP {
		res, err = m.solveMIP(ctx)
	} else {
		var status Status
		status, err = m.solveLP()
		if err == nil {
			res = m.newResult(status)
		}
	}
	if err != nil && res.Status == StatusNone {
		return Result{}, err
	}

	m.result = res
	m.logger.Info("solve finished",
		zap.String("status", res.Status.String()),
		zap.Float64("obj_val", res.ObjVal),
		zap.Any("solution", res.Solution),
		zap.Duration("elapsed", time.Since(m.startTime)),
	)
	return res, err
}

// Value returns the solved value of v. The handle must have been created by
// this model.
func (m *Model) Value(v *Variable) (float64, error) {
	if v == nil || v.model != m {
		return 0, ErrUnknownVariable
	}
	return v.value, nil
}

// Result returns the result of the last Solve.
func (m *Model) Result() Result { return m.result }

// Clone returns an independent deep copy of the model: variables,
// constraints, and objective are re-resolved through the clone's variable
// table, so no mutable state is shared with the receiver. Solver-derived
// matrices are not copied; they are rebuilt when the clone is solved.
func (m *Model) Clone() *Model {
	nm := &Model{
		name:         m.name,
		params:       m.params,
		logger:       m.logger,
		observer:     m.observer,
		isMIP:        m.isMIP,
		lowered:      m.lowered,
		rhs:          append([]float64(nil), m.rhs...),
		initialBasis: append([]int(nil), m.initialBasis...),
		nRows:        m.nRows,
		nSlack:       m.nSlack,
		nSurplus:     m.nSurplus,
		nArtificial:  m.nArtificial,
		objValue:     m.objValue,
		startTime:    m.startTime,
	}

	nm.vars = make([]*Variable, len(m.vars))
	for i, v := range m.vars {
		cv := &Variable{
			model:   nm,
			index:   v.index,
			name:    v.name,
			lower:   v.lower,
			upper:   v.upper,
			kind:    v.kind,
			role:    v.role,
			costC:   v.costC,
			value:   v.value,
			inBasis: v.inBasis,
			column:  make(map[int]float64, len(v.column)),
		}
		for r, coef := range v.column {
			cv.column[r] = coef
		}
		nm.vars[i] = cv
	}

	nm.consts = make([]*Constraint, len(m.consts))
	for i, c := range m.consts {
		nc := &Constraint{sense: c.sense, rhs: c.rhs, row: c.row}
		nc.terms = make([]term, len(c.terms))
		for j, t := range c.terms {
			nc.terms[j] = term{coef: t.coef, v: nm.vars[t.v.index]}
		}
		nm.consts[i] = nc
	}

	if m.obj != nil {
		no := &Objective{direction: m.obj.direction}
		no.terms = make([]term, len(m.obj.terms))
		for j, t := range m.obj.terms {
			no.terms[j] = term{coef: t.coef, v: nm.vars[t.v.index]}
		}
		nm.obj = no
	}

	return nm
}

func (m *Model) addVar(name string, role VarRole) *Variable {
	v := &Variable{
		model:  m,
		index:  len(m.vars),
		name:   name,
		lower:  0,
		upper:  infinity(),
		kind:   Continuous,
		role:   role,
		column: make(map[int]float64),
	}
	m.vars = append(m.vars, v)
	return v
}

func reverseSense(s Sense) Sense {
	switch s {
	case LE:
		return GE
	case GE:
		return LE
	default:
		return EQ
	}
}
