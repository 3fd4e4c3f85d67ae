package analysis

import (
	"github.com/edp1096/sym-spice/pkg/symbolic"
)

// noSolutionsWarning is recorded when the reduced system is singular.
const noSolutionsWarning = "No solutions. Check the netlist."

// Solution maps every circuit unknown to its closed form. Names keeps the
// formulation order: node voltages first, branch currents after.
type Solution struct {
	Names    []string
	Values   map[string]symbolic.Expr
	Warnings []string
}

// Empty reports whether the solve produced no solution.
func (s *Solution) Empty() bool { return len(s.Values) == 0 }

// BuildEquations turns the reduced system rows into residual expressions
// A*x + N, one per row.
func BuildEquations(a [][]symbolic.Expr, n []symbolic.Expr, vars []*symbolic.Sym) []symbolic.Expr {
	eqs := make([]symbolic.Expr, len(a))
	for i := range a {
		terms := []symbolic.Expr{n[i]}
		for j := range a[i] {
			if symbolic.IsZero(a[i][j]) {
				continue
			}
			terms = append(terms, symbolic.MulOf(a[i][j], vars[j]))
		}
		eqs[i] = symbolic.AddOf(terms...)
	}
	return eqs
}

// Solve runs the linear solve over the reduced system and back-substitutes
// the internal conductance symbols, so results are expressed in resistances.
// A singular system yields an empty solution with a warning rather than an
// error.
func Solve(a [][]symbolic.Expr, n []symbolic.Expr, vars []*symbolic.Sym, subsG map[string]symbolic.Expr) *Solution {
	sol := &Solution{Values: make(map[string]symbolic.Expr, len(vars))}
	for _, u := range vars {
		sol.Names = append(sol.Names, u.Name())
	}

	raw := symbolic.SolveLinear(BuildEquations(a, n, vars), vars)
	if raw == nil {
		sol.Values = map[string]symbolic.Expr{}
		sol.Warnings = append(sol.Warnings, noSolutionsWarning)
		return sol
	}
	for name, v := range raw {
		if len(subsG) > 0 {
			v = v.Sub(subsG)
		}
		sol.Values[name] = symbolic.Together(v)
	}
	return sol
}
