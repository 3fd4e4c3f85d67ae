// Package analysis implements the symbolic small-signal analysis: modified
// nodal assembly over exact symbolic entries, parameter substitution, the
// linear solve, and transfer-function derivation.
package analysis

import (
	"fmt"

	"github.com/edp1096/sym-spice/pkg/circuit"
	"github.com/edp1096/sym-spice/pkg/device"
	"github.com/edp1096/sym-spice/pkg/symbolic"
)

// Options selects the formulation and the post-processing steps.
type Options struct {
	// Source names the independent source transfer functions are derived
	// against. Empty disables transfer-function derivation.
	Source string
	// AC includes reactive elements through the complex frequency variable.
	// When false the formulation is the DC one: capacitors are open and
	// inductors are absent entirely, with no stamp and no branch current.
	AC bool
	// R0s includes MOS output resistances in the formulation.
	R0s bool
	// Subs maps symbol names to their replacements, applied to the system
	// before solving.
	Subs map[string]symbolic.Expr
	// Verbose raises the amount of progress output, 0..6.
	Verbose int
}

// System is the symbolic formulation A*x + N = 0 before reduction. Row and
// column 0 belong to the reference node and are dropped by Reduced. Rows at
// and above PreVDE are the KVL rows of the voltage-defined elements.
type System struct {
	A        [][]symbolic.Expr
	N        []symbolic.Expr
	SubsG    map[string]symbolic.Expr
	PreVDE   int
	Warnings []string
}

func newSystem(size, preVDE int) *System {
	a := make([][]symbolic.Expr, size)
	for i := range a {
		a[i] = make([]symbolic.Expr, size)
		for j := range a[i] {
			a[i][j] = symbolic.N(0)
		}
	}
	n := make([]symbolic.Expr, size)
	for i := range n {
		n[i] = symbolic.N(0)
	}
	return &System{A: a, N: n, SubsG: make(map[string]symbolic.Expr), PreVDE: preVDE}
}

func (s *System) addA(i, j int, e symbolic.Expr) {
	s.A[i][j] = symbolic.AddOf(s.A[i][j], e)
}

func (s *System) addN(i int, e symbolic.Expr) {
	s.N[i] = symbolic.AddOf(s.N[i], e)
}

func (s *System) warnf(format string, args ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

// Reduced returns the system with the reference node row and column removed.
func (s *System) Reduced() ([][]symbolic.Expr, []symbolic.Expr) {
	size := len(s.A) - 1
	a := make([][]symbolic.Expr, size)
	for i := 0; i < size; i++ {
		a[i] = make([]symbolic.Expr, size)
		copy(a[i], s.A[i+1][1:])
	}
	n := make([]symbolic.Expr, size)
	copy(n, s.N[1:])
	return a, n
}

// Assemble builds the symbolic formulation in three passes. Pass one stamps
// the current-defined elements into the node equations; pass two adds one
// branch current column and one KVL row per voltage-defined element; pass
// three stamps the elements that reference branch currents of other
// elements. The matrix is sized up front from the voltage-defined element
// count, so no rows move once stamped.
func Assemble(ckt *circuit.Circuit, opts Options) (*System, error) {
	ckt.AssignAuxIndices(opts.AC)
	nNodes := ckt.NodeCount()
	sys := newSystem(nNodes+ckt.AuxCount(), nNodes)

	for _, d := range ckt.Devices() {
		if d.IsVoltageDefined(opts.AC) {
			continue
		}
		stamp, ok := stampTable[d.Kind]
		if !ok {
			sys.warnf("skipped element %s: not implemented", d.ID)
			continue
		}
		stamp(sys, d, opts)
	}

	for _, d := range ckt.Devices() {
		if !d.IsVoltageDefined(opts.AC) {
			continue
		}
		aux, err := ckt.FindAuxIndex(d.ID)
		if err != nil {
			return nil, err
		}
		row := nNodes + aux
		n1, n2 := d.Nodes[0], d.Nodes[1]
		sys.addA(n1, row, symbolic.N(1))
		sys.addA(n2, row, symbolic.N(-1))
		sys.addA(row, n1, symbolic.N(1))
		sys.addA(row, n2, symbolic.N(-1))

		switch d.Kind {
		case device.VSource:
			sys.addN(row, symbolic.MulOf(symbolic.N(-1), elemValue(d, assumeNone)))
		case device.VCVS:
			alpha := elemValue(d, assumeReal)
			sys.addA(row, d.Ctrl[0], symbolic.MulOf(symbolic.N(-1), alpha))
			sys.addA(row, d.Ctrl[1], alpha)
		case device.CCVS:
			srcAux, err := ckt.FindAuxIndex(d.Source)
			if err != nil {
				return nil, fmt.Errorf("%s: controlling source: %w", d.ID, err)
			}
			sys.addA(row, nNodes+srcAux, elemValue(d, assumeReal))
		case device.Inductor:
			l := elemValue(d, assumePositive)
			sys.addA(row, row, symbolic.MulOf(symbolic.N(-1), freqS(), l))
		default:
			return nil, fmt.Errorf("unsupported voltage-defined element %s (%s)", d.ID, d.Kind)
		}
	}

	for _, d := range ckt.Devices() {
		switch d.Kind {
		case device.Coupling:
			if !opts.AC {
				continue
			}
			i1, err := ckt.FindAuxIndex(d.Pair[0])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", d.ID, err)
			}
			i2, err := ckt.FindAuxIndex(d.Pair[1])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", d.ID, err)
			}
			m := symbolic.MulOf(symbolic.N(-1), freqS(), mutualValue(d))
			sys.addA(nNodes+i1, nNodes+i2, m)
			sys.addA(nNodes+i2, nNodes+i1, m)
		case device.CCCS:
			srcAux, err := ckt.FindAuxIndex(d.Source)
			if err != nil {
				return nil, fmt.Errorf("%s: controlling source: %w", d.ID, err)
			}
			alpha := elemValue(d, assumeReal)
			sys.addA(d.Nodes[0], nNodes+srcAux, alpha)
			sys.addA(d.Nodes[1], nNodes+srcAux, symbolic.MulOf(symbolic.N(-1), alpha))
		}
	}

	return sys, nil
}
