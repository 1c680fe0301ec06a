package lp

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// NodeOrder selects how the branch-and-bound controller walks the tree.
type NodeOrder int

const (
	DFS NodeOrder = iota
	BFS
)

// Params is the solver-parameter block of a model.
type Params struct {
	// MIPGap is the relative gap between incumbent and bound at which the
	// branch-and-bound search stops early. Zero means solve to proven
	// optimality.
	MIPGap float64

	// TimeLimit bounds the wall-clock duration of a solve. Zero means no
	// limit. Expiry is polled between node evaluations only.
	TimeLimit time.Duration

	// Branching selects DFS or BFS node selection.
	Branching NodeOrder

	// Heuristic selects the fractional variable to branch on.
	Heuristic BranchHeuristic
}

// DefaultParams returns the parameter defaults: exact gap, no time limit,
// depth-first search, most-fractional branching.
func DefaultParams() Params {
	return Params{
		MIPGap:    0,
		TimeLimit: 0,
		Branching: DFS,
		Heuristic: BranchMostFractional,
	}
}

// ParamsFromViper reads solver parameters from a viper instance, so they can
// come from a config file or the environment. Recognized keys: mip_gap
// (float), time_limit (seconds, float), branching ("dfs" or "bfs"),
// branch_heuristic ("most_fractional" or "first_fractional"). Missing keys
// fall back to DefaultParams.
func ParamsFromViper(v *viper.Viper) Params {
	p := DefaultParams()

	v.SetDefault("mip_gap", p.MIPGap)
	v.SetDefault("time_limit", 0.0)
	v.SetDefault("branching", "dfs")
	v.SetDefault("branch_heuristic", "most_fractional")

	p.MIPGap = v.GetFloat64("mip_gap")
	if secs := v.GetFloat64("time_limit"); secs > 0 {
		p.TimeLimit = time.Duration(secs * float64(time.Second))
	}
	if strings.EqualFold(v.GetString("branching"), "bfs") {
		p.Branching = BFS
	}
	if strings.EqualFold(v.GetString("branch_heuristic"), "first_fractional") {
		p.Heuristic = BranchFirstFractional
	}
	return p
}
