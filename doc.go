/*
Package lp models and solves linear programming (LP) and mixed-integer linear
programming (MILP) problems of the form

	optimize   c^T x
	subject to A x { <= | = | >= } b,  x >= 0

Continuous relaxations are solved with a Big-M revised simplex method that
maintains an explicit basis inverse; integrality is enforced by a
branch-and-bound search over deep-cloned subproblems.

A problem is built incrementally and solved in place:

	model := lp.NewModel("investment")
	x := model.AddVariable("x").AsInteger()
	y := model.AddVariable("y").AsInteger()

	model.AddConstraint(lp.NewExpression().Add(8000, x).Add(4000, y), lp.LE, 40000)
	model.AddConstraint(lp.NewExpression().Add(15, x).Add(30, y), lp.LE, 200)
	model.SetObjective(lp.NewExpression().Add(100, x).Add(150, y), lp.Maximize)

	res, err := model.Solve()

Infeasibility and unboundedness are reported as statuses on the Result, not
as errors.
*/
package lp
