package analysis

import (
	"fmt"
	"strings"

	"github.com/edp1096/sym-spice/pkg/symbolic"
)

// ParseSubstitutions turns raw name=name pairs into a substitution map.
// Names are upper-cased; a leading R maps to the corresponding internal
// conductance symbol, since that is what symbolic resistors are stamped
// with. Passive-class names (G, L, C, M) get the passive assumptions.
func ParseSubstitutions(pairs []string) (map[string]symbolic.Expr, error) {
	subs := make(map[string]symbolic.Expr, len(pairs))
	for _, p := range pairs {
		lhs, rhs, found := strings.Cut(p, "=")
		lhs = strings.TrimSpace(lhs)
		rhs = strings.TrimSpace(rhs)
		if !found || lhs == "" || rhs == "" {
			return nil, fmt.Errorf("malformed substitution %q: want name=name", p)
		}
		s1 := substitutionSymbol(lhs)
		s2 := substitutionSymbol(rhs)
		subs[s1.Name()] = s2
	}
	return subs, nil
}

func substitutionSymbol(name string) *symbolic.Sym {
	name = strings.ToUpper(name)
	if name[0] == 'R' {
		name = "G" + name[1:]
	}
	switch name[0] {
	case 'G', 'L', 'C', 'M':
		return symbolFor(name, assumePositive)
	}
	return symbolFor(name, assumeReal)
}

// ApplySubstitutions rewrites every entry of the reduced system with the
// given substitution map. The substitution is simultaneous: replacements are
// not rescanned, so applying the same map twice is a no-op whenever domain
// and replacement names are disjoint.
func ApplySubstitutions(a [][]symbolic.Expr, n []symbolic.Expr, subs map[string]symbolic.Expr) ([][]symbolic.Expr, []symbolic.Expr) {
	if len(subs) == 0 {
		return a, n
	}
	outA := make([][]symbolic.Expr, len(a))
	for i := range a {
		outA[i] = make([]symbolic.Expr, len(a[i]))
		for j := range a[i] {
			outA[i][j] = a[i][j].Sub(subs)
		}
	}
	outN := make([]symbolic.Expr, len(n))
	for i := range n {
		outN[i] = n[i].Sub(subs)
	}
	return outA, outN
}
