package analysis

import (
	"github.com/edp1096/sym-spice/pkg/device"
	"github.com/edp1096/sym-spice/pkg/symbolic"
)

type assumeClass int

const (
	assumeNone assumeClass = iota
	assumeReal
	assumePositive // real and positive, the passive element class
)

func symbolFor(name string, class assumeClass) *symbolic.Sym {
	switch class {
	case assumeReal:
		return symbolic.NewSymbol(name, symbolic.Assumptions{Real: true})
	case assumePositive:
		return symbolic.NewSymbol(name, symbolic.Assumptions{Real: true, Positive: true})
	}
	return symbolic.NewSymbol(name, symbolic.Assumptions{})
}

// elemValue returns the element's value as an expression: its own symbol
// when no numeric value was given, the exact rational of the value
// otherwise.
func elemValue(d *device.Device, class assumeClass) symbolic.Expr {
	if d.Symbolic {
		return symbolFor(d.ID, class)
	}
	return symbolic.NFloat(d.Value)
}

func freqS() *symbolic.Sym { return symbolic.FreqSym() }

// mutualValue returns the mutual inductance of a coupling element. Symbolic
// couplings named K<x> get the inductance symbol M<x>, matching the name
// substitutions expect for the M class.
func mutualValue(d *device.Device) symbolic.Expr {
	if d.Symbolic {
		return symbolFor("M"+d.ID[1:], assumePositive)
	}
	return symbolic.NFloat(d.Value)
}

type stampFunc func(sys *System, d *device.Device, opts Options)

// stampTable dispatches pass one of the assembly. Voltage-defined elements
// are absent here on purpose; kinds missing from the table are reported as
// skipped.
var stampTable = map[device.Kind]stampFunc{
	device.Resistor:  stampResistor,
	device.Capacitor: stampCapacitor,
	device.Inductor:  stampNothing, // KVL row added in pass two when AC
	device.ISource:   stampISource,
	device.VCCS:      stampVCCS,
	device.CCCS:      stampNothing, // needs the controlling branch, pass three
	device.Coupling:  stampNothing, // needs both branches, pass three
	device.Diode:     stampDiode,
	device.MOS:       stampMOS,
}

func stampNothing(sys *System, d *device.Device, opts Options) {}

// stampConductance adds the two-terminal conductance pattern between n1 and
// n2.
func stampConductance(sys *System, n1, n2 int, g symbolic.Expr) {
	sys.addA(n1, n1, g)
	sys.addA(n1, n2, symbolic.MulOf(symbolic.N(-1), g))
	sys.addA(n2, n1, symbolic.MulOf(symbolic.N(-1), g))
	sys.addA(n2, n2, g)
}

// stampResistor stamps a conductance. Symbolic resistors are stamped through
// an internal conductance symbol, recorded in SubsG for back-substitution to
// 1/R once the solve is done; working in conductances keeps the matrix
// entries polynomial.
func stampResistor(sys *System, d *device.Device, opts Options) {
	var g symbolic.Expr
	if d.Symbolic {
		r := symbolFor(d.ID, assumePositive)
		gs := symbolFor("G"+d.ID[1:], assumePositive)
		sys.SubsG[gs.Name()] = symbolic.PowOf(r, symbolic.N(-1))
		g = gs
	} else {
		g = symbolic.NFloat(1 / d.Value)
	}
	stampConductance(sys, d.Nodes[0], d.Nodes[1], g)
}

// stampCapacitor stamps s*C in the AC formulation; at DC a capacitor is an
// open circuit and contributes nothing.
func stampCapacitor(sys *System, d *device.Device, opts Options) {
	if !opts.AC {
		return
	}
	g := symbolic.MulOf(freqS(), elemValue(d, assumePositive))
	stampConductance(sys, d.Nodes[0], d.Nodes[1], g)
}

func stampISource(sys *System, d *device.Device, opts Options) {
	v := elemValue(d, assumeNone)
	sys.addN(d.Nodes[0], v)
	sys.addN(d.Nodes[1], symbolic.MulOf(symbolic.N(-1), v))
}

func stampVCCS(sys *System, d *device.Device, opts Options) {
	alpha := elemValue(d, assumeReal)
	nAlpha := symbolic.MulOf(symbolic.N(-1), alpha)
	sys.addA(d.Nodes[0], d.Ctrl[0], alpha)
	sys.addA(d.Nodes[0], d.Ctrl[1], nAlpha)
	sys.addA(d.Nodes[1], d.Ctrl[0], nAlpha)
	sys.addA(d.Nodes[1], d.Ctrl[1], alpha)
}

// stampDiode stamps the small-signal conductance of the diode at its
// operating point.
func stampDiode(sys *System, d *device.Device, opts Options) {
	g := symbolic.NewSymbol("g"+d.ID, symbolic.Assumptions{Positive: true})
	stampConductance(sys, d.Nodes[0], d.Nodes[1], g)
}

// stampMOS stamps the transconductance gm from gate to drain-source, plus
// the output conductance 1/r0 when requested.
func stampMOS(sys *System, d *device.Device, opts Options) {
	nd, ng, ns := d.Nodes[0], d.Nodes[1], d.Nodes[2]
	gm := symbolFor("gm_"+d.ID, assumePositive)
	nGm := symbolic.MulOf(symbolic.N(-1), gm)
	sys.addA(nd, ng, gm)
	sys.addA(nd, ns, nGm)
	sys.addA(ns, ng, nGm)
	sys.addA(ns, ns, gm)

	if opts.R0s {
		r0 := symbolFor("r0_"+d.ID, assumePositive)
		stampConductance(sys, nd, ns, symbolic.PowOf(r0, symbolic.N(-1)))
	}
}
