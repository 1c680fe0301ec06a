package lp

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
)

const gapEps = 1e-10

// node is one subproblem of the branch-and-bound tree. Each node owns an
// independent model clone; no mutable state is shared across nodes.
type node struct {
	id     int64
	parent int64
	model  *Model

	// LP objective of the parent relaxation, a bound on this subtree
	// (minimization space). The root carries -inf.
	bound float64

	pruned bool
}

// stopReason records why the search loop ended.
type stopReason int

const (
	stopExhausted stopReason = iota
	stopGapReached
	stopTimeLimit
	stopCanceled
)

// solveMIP drives branch-and-bound over LP relaxations. Nodes are popped in
// DFS or BFS order per the parameter block; the time limit and caller context
// are polled between node evaluations only.
func (m *Model) solveMIP(ctx context.Context) (Result, error) {
	root := &node{id: 0, parent: 0, model: m, bound: math.Inf(-1)}
	m.observer.NewNode(root.id, root.parent)
	open := []*node{root}
	nextID := int64(1)

	incumbentObj := math.Inf(1)
	var incumbentVals []float64
	haveIncumbent := false

	reason := stopExhausted
	var ctxErr error
	var lastGap float64

	for len(open) > 0 {
		if err := ctx.Err(); err != nil {
			reason = stopCanceled
			ctxErr = err
			break
		}
		if m.params.TimeLimit > 0 && time.Since(m.startTime) >= m.params.TimeLimit {
			reason = stopTimeLimit
			break
		}
		if haveIncumbent {
			lastGap = mipGap(incumbentObj, open)
			if lastGap <= m.params.MIPGap {
				reason = stopGapReached
				break
			}
		}

		var nd *node
		if m.params.Branching == BFS {
			nd = open[0]
			open = open[1:]
		} else {
			nd = open[len(open)-1]
			open = open[:len(open)-1]
		}

		nd.model.nodeID = nd.id
		status, err := nd.model.solveLP()
		if err != nil {
			return Result{}, err
		}

		switch {
		case status == StatusUnbounded:
			if nd.id == 0 {
				// an unbounded root relaxation leaves nothing to branch on
				m.decide(nd, DecisionRelaxationUnbounded)
				return m.newResult(StatusUnbounded), nil
			}
			nd.pruned = true
			m.decide(nd, DecisionRelaxationUnbounded)

		case status == StatusInfeasible:
			nd.pruned = true
			m.decide(nd, DecisionRelaxationInfeasible)

		case haveIncumbent && nd.model.objValue >= incumbentObj:
			nd.pruned = true
			m.decide(nd, DecisionWorseThanIncumbent)

		default:
			branchVar := selectBranchVariable(nd.model, m.params.Heuristic)
			if branchVar == nil {
				// all integer-kind variables integral: candidate incumbent
				incumbentObj = nd.model.objValue
				incumbentVals = snapshotValues(nd.model)
				haveIncumbent = true
				nd.pruned = true
				m.decide(nd, DecisionNewIncumbent)
				break
			}

			down, up := branch(nd, branchVar)
			down.id = nextID
			up.id = nextID + 1
			nextID += 2
			m.observer.NewNode(down.id, nd.id)
			m.observer.NewNode(up.id, nd.id)
			open = append(open, down, up)
			nd.pruned = true
			m.decide(nd, DecisionBranched)
		}
	}

	status := m.finishStatus(reason, haveIncumbent, lastGap)
	if haveIncumbent {
		for i, val := range incumbentVals {
			if i < len(m.vars) {
				m.vars[i].value = val
			}
		}
		m.objValue = incumbentObj
	}
	return m.newResult(status), ctxErr
}

// branch derives the two children of nd by deep-cloning its model and
// tightening the chosen variable's bounds: x <= floor(v) and x >= ceil(v).
// The branched variable is re-resolved through each clone's variable table.
func branch(nd *node, branchVar *Variable) (down, up *node) {
	v := branchVar.value

	downModel := nd.model.Clone()
	if _, err := downModel.AddConstraintVar(downModel.vars[branchVar.index], LE, math.Floor(v)); err != nil {
		panic(err)
	}

	upModel := nd.model.Clone()
	if _, err := upModel.AddConstraintVar(upModel.vars[branchVar.index], GE, math.Ceil(v)); err != nil {
		panic(err)
	}

	down = &node{parent: nd.id, model: downModel, bound: nd.model.objValue}
	up = &node{parent: nd.id, model: upModel, bound: nd.model.objValue}
	return down, up
}

// mipGap is |incumbent - bound| / max(|incumbent|, eps), with the bound taken
// as the best (lowest) inherited relaxation objective among open nodes.
func mipGap(incumbentObj float64, open []*node) float64 {
	bound := math.Inf(1)
	for _, nd := range open {
		if nd.bound < bound {
			bound = nd.bound
		}
	}
	if math.IsInf(bound, 1) {
		return 0
	}
	if math.IsInf(bound, -1) {
		return math.Inf(1)
	}
	return math.Abs(incumbentObj-bound) / math.Max(math.Abs(incumbentObj), gapEps)
}

func (m *Model) finishStatus(reason stopReason, haveIncumbent bool, gap float64) Status {
	if !haveIncumbent {
		return StatusInfeasible
	}
	switch reason {
	case stopExhausted:
		return StatusOptimal
	case stopGapReached:
		if gap <= gapEps {
			// the bound met the incumbent exactly; the stop is a proof
			return StatusOptimal
		}
		return StatusFeasible
	default:
		return StatusFeasible
	}
}

// decide reports a node decision to the observer and the structured log.
func (m *Model) decide(nd *node, d SearchDecision) {
	m.observer.Decision(nd.id, d, nd.model.objValue)
	m.logger.Info("node decided",
		zap.Int64("node", nd.id),
		zap.Int64("parent", nd.parent),
		zap.String("decision", string(d)),
		zap.Float64("obj_val", round3(nd.model.reportedObjective())),
	)
}

func snapshotValues(m *Model) []float64 {
	vals := make([]float64, len(m.vars))
	for i, v := range m.vars {
		vals[i] = v.value
	}
	return vals
}
