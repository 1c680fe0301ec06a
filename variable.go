package lp

import "math"

// VarKind is the user-declared domain of a variable.
type VarKind int

const (
	Continuous VarKind = iota
	Integer
	Binary
)

// VarRole distinguishes user variables from the auxiliaries injected during
// standardization.
type VarRole int

const (
	Primal VarRole = iota
	Slack
	Surplus
	Artificial
)

// A Variable of the model. Handles are created by Model.AddVariable and stay
// valid for the lifetime of the model that created them.
type Variable struct {
	model *Model
	index int
	name  string

	lower float64
	upper float64
	kind  VarKind
	role  VarRole

	// coefficient in the standardized (minimization) objective
	costC float64

	// sparse column of A: constraint row -> coefficient
	column map[int]float64

	value   float64
	inBasis bool
}

// Name returns the display identifier of the variable.
func (v *Variable) Name() string { return v.name }

// Kind returns the declared domain of the variable.
func (v *Variable) Kind() VarKind { return v.kind }

// AsInteger constrains the variable to integer values.
func (v *Variable) AsInteger() *Variable {
	v.kind = Integer
	v.model.isMIP = true
	return v
}

// AsBinary constrains the variable to {0,1}.
func (v *Variable) AsBinary() *Variable {
	v.kind = Binary
	v.lower = 0
	v.upper = 1
	v.model.isMIP = true
	return v
}

// Bounds sets the inclusive lower and upper bound of the variable. A finite
// upper bound and a positive lower bound are materialized as constraint rows
// on the model's first solve; bounds changed after that are not lowered, and
// a negative lower bound has no effect since every variable is non-negative.
func (v *Variable) Bounds(lower, upper float64) *Variable {
	v.lower = lower
	v.upper = upper
	return v
}

// LowerBound sets the inclusive lower bound.
func (v *Variable) LowerBound(bound float64) *Variable {
	v.lower = bound
	return v
}

// UpperBound sets the inclusive upper bound.
func (v *Variable) UpperBound(bound float64) *Variable {
	v.upper = bound
	return v
}

func infinity() float64 { return math.Inf(1) }

func (v *Variable) isIntegral() bool {
	return v.kind == Integer || v.kind == Binary
}

// fractional reports the distance of the current value from the nearest
// integer and whether that distance violates the integrality tolerance.
func (v *Variable) fractional() (float64, bool) {
	_, frac := math.Modf(v.value)
	if frac < 0 {
		frac += 1
	}
	dist := math.Min(frac, 1-frac)
	return dist, dist > intTol
}
