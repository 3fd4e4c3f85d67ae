package analysis

import (
	"fmt"
	"math"

	"github.com/edp1096/sym-spice/pkg/circuit"
	"github.com/edp1096/sym-spice/pkg/matrix"
	"github.com/edp1096/sym-spice/pkg/symbolic"
)

// Verify cross-checks the symbolic solution against a numeric LU solve of
// the same system at one operating point. The bindings must give a value to
// every symbolic element (and to S when the formulation is an AC one; it
// defaults to zero). Internal conductance symbols are derived from the
// resistor bindings automatically. When the solve ran with substitutions,
// the bindings must respect them, or the two sides describe different
// circuits.
func Verify(sys *System, ckt *circuit.Circuit, sol *Solution, opts Options, bindings map[string]float64, tol float64) error {
	if sol.Empty() {
		return fmt.Errorf("nothing to verify: the solve produced no solution")
	}

	b := make(map[string]float64, len(bindings)+len(sys.SubsG)+1)
	for k, v := range bindings {
		b[k] = v
	}
	if _, ok := b[freqS().Name()]; !ok {
		b[freqS().Name()] = 0
	}
	for gname, expr := range sys.SubsG {
		v, err := symbolic.EvalWith(expr, b)
		if err != nil {
			return fmt.Errorf("binding %s: %w", gname, err)
		}
		b[gname] = v
	}

	a, n := sys.Reduced()
	m, err := matrix.NewMatrix(len(a))
	if err != nil {
		return err
	}
	defer m.Destroy()

	for i := range a {
		for j := range a[i] {
			if symbolic.IsZero(a[i][j]) {
				continue
			}
			v, err := symbolic.EvalWith(a[i][j], b)
			if err != nil {
				return fmt.Errorf("entry (%d,%d): %w", i, j, err)
			}
			if err := m.AddElement(i+1, j+1, v); err != nil {
				return err
			}
		}
	}
	for i := range n {
		v, err := symbolic.EvalWith(n[i], b)
		if err != nil {
			return fmt.Errorf("rhs %d: %w", i, err)
		}
		if err := m.AddRHS(i+1, -v); err != nil {
			return err
		}
	}

	if err := m.Solve(); err != nil {
		return err
	}
	numeric := m.Solution()

	for i, u := range ckt.Variables(opts.AC) {
		expr, ok := sol.Values[u.Name()]
		if !ok {
			continue
		}
		got, err := symbolic.EvalWith(expr, b)
		if err != nil {
			return fmt.Errorf("%s: %w", u.Name(), err)
		}
		want := numeric[i+1]
		if math.Abs(got-want) > tol*math.Max(1, math.Abs(want)) {
			return fmt.Errorf("%s: symbolic %.6g vs numeric %.6g", u.Name(), got, want)
		}
	}
	return nil
}
