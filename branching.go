package lp

// BranchHeuristic selects which fractional integer variable a node branches
// on. Either rule visits every fractional variable eventually, so the search
// converges regardless of the choice.
type BranchHeuristic int

const (
	// BranchMostFractional picks the variable whose value is farthest from
	// the nearest integer (closest to one half).
	BranchMostFractional BranchHeuristic = iota

	// BranchFirstFractional picks the lowest-index fractional variable.
	BranchFirstFractional
)

// selectBranchVariable returns the integer-kind variable to branch on, or nil
// when every integer-kind variable is integral within tolerance.
func selectBranchVariable(m *Model, h BranchHeuristic) *Variable {
	var candidate *Variable
	var candidateDist float64

	for _, v := range m.vars {
		if v.role != Primal || !v.isIntegral() {
			continue
		}
		dist, frac := v.fractional()
		if !frac {
			continue
		}
		if h == BranchFirstFractional {
			return v
		}
		// strictly greater keeps the lowest index on ties
		if candidate == nil || dist > candidateDist {
			candidate = v
			candidateDist = dist
		}
	}
	return candidate
}
