package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/sym-spice/pkg/circuit"
	"github.com/edp1096/sym-spice/pkg/netlist"
	"github.com/edp1096/sym-spice/pkg/symbolic"
)

func buildCircuit(t *testing.T, deck string) *circuit.Circuit {
	t.Helper()
	nl, err := netlist.Parse(deck)
	require.NoError(t, err)
	ckt, err := circuit.FromNetlist(nl)
	require.NoError(t, err)
	return ckt
}

const dividerDeck = `divider
V1 in 0
R1 in out
R2 out 0
.end
`

func TestVoltageDivider(t *testing.T) {
	ckt := buildCircuit(t, dividerDeck)
	sol, _, err := Run(ckt, Options{})
	require.NoError(t, err)
	require.False(t, sol.Empty())

	v1, r1, r2 := symbolic.S("V1"), symbolic.S("R1"), symbolic.S("R2")
	rSum := symbolic.AddOf(r1, r2)

	wantOut := symbolic.MulOf(r2, v1, symbolic.PowOf(rSum, symbolic.N(-1)))
	assert.True(t, symbolic.Equiv(sol.Values["VOUT"], wantOut), "VOUT = %s", sol.Values["VOUT"])

	assert.True(t, symbolic.Equiv(sol.Values["VIN"], v1), "VIN = %s", sol.Values["VIN"])

	wantI := symbolic.MulOf(symbolic.N(-1), v1, symbolic.PowOf(rSum, symbolic.N(-1)))
	assert.True(t, symbolic.Equiv(sol.Values["I[V1]"], wantI), "I[V1] = %s", sol.Values["I[V1]"])
}

func TestSolutionUsesResistanceSymbols(t *testing.T) {
	ckt := buildCircuit(t, dividerDeck)
	sol, _, err := Run(ckt, Options{})
	require.NoError(t, err)

	free := symbolic.FreeSymbols(sol.Values["VOUT"])
	assert.Contains(t, free, "R1")
	assert.Contains(t, free, "R2")
	assert.NotContains(t, free, "G1")
	assert.NotContains(t, free, "G2")
}

func TestRCLowPassTransferFunction(t *testing.T) {
	ckt := buildCircuit(t, `rc low-pass
V1 in 0
R1 in out
C1 out 0
.end
`)
	sol, tfs, err := Run(ckt, Options{Source: "V1", AC: true})
	require.NoError(t, err)
	require.False(t, sol.Empty())
	require.NotNil(t, tfs)

	tf, ok := tfs.Funcs["VOUT/V1"]
	require.True(t, ok, "keys: %v", tfs.Keys)

	r1, c1, s := symbolic.S("R1"), symbolic.S("C1"), symbolic.FreqSym()
	wantGain := symbolic.PowOf(symbolic.AddOf(symbolic.N(1), symbolic.MulOf(s, r1, c1)), symbolic.N(-1))
	assert.True(t, symbolic.Equiv(tf.Gain, wantGain), "gain = %s", tf.Gain)
	assert.True(t, symbolic.IsOne(tf.Gain0), "gain0 = %s", tf.Gain0)

	require.Len(t, tf.Poles, 1)
	wantPole := symbolic.MulOf(symbolic.N(-1), symbolic.PowOf(symbolic.MulOf(r1, c1), symbolic.N(-1)))
	assert.True(t, symbolic.Equiv(tf.Poles[0], wantPole), "pole = %s", tf.Poles[0])
	assert.Empty(t, tf.Zeros)
}

func TestDCFormulationLeavesCapacitorOpen(t *testing.T) {
	ckt := buildCircuit(t, `rc at dc
V1 in 0
R1 in out
C1 out 0
.end
`)
	sol, _, err := Run(ckt, Options{AC: false})
	require.NoError(t, err)
	require.False(t, sol.Empty())

	v1 := symbolic.S("V1")
	assert.True(t, symbolic.Equiv(sol.Values["VOUT"], v1), "VOUT = %s", sol.Values["VOUT"])
	assert.NotContains(t, symbolic.FreeSymbols(sol.Values["VOUT"]), "S")
}

func TestDCFormulationDropsInductorBranch(t *testing.T) {
	ckt := buildCircuit(t, `rl at dc
V1 in 0
L1 in out
R1 out 0
.end
`)
	ckt.AssignAuxIndices(false)
	assert.Equal(t, 1, ckt.AuxCount()) // only V1

	sol, _, err := Run(ckt, Options{AC: false})
	require.NoError(t, err)
	_, hasL := sol.Values["I[L1]"]
	assert.False(t, hasL)
}

func TestSubstitution(t *testing.T) {
	subs, err := ParseSubstitutions([]string{"R2=R1"})
	require.NoError(t, err)
	require.Contains(t, subs, "G2")

	ckt := buildCircuit(t, dividerDeck)
	sol, _, err := Run(ckt, Options{Subs: subs})
	require.NoError(t, err)

	want := symbolic.MulOf(symbolic.F(1, 2), symbolic.S("V1"))
	assert.True(t, symbolic.Equiv(sol.Values["VOUT"], want), "VOUT = %s", sol.Values["VOUT"])
	assert.NotContains(t, symbolic.FreeSymbols(sol.Values["VOUT"]), "R2")
}

func TestSubstitutionIdempotent(t *testing.T) {
	subs, err := ParseSubstitutions([]string{"R2=R1"})
	require.NoError(t, err)

	ckt := buildCircuit(t, dividerDeck)
	sys, err := Assemble(ckt, Options{})
	require.NoError(t, err)

	a, n := sys.Reduced()
	a1, n1 := ApplySubstitutions(a, n, subs)
	a2, n2 := ApplySubstitutions(a1, n1, subs)
	for i := range a1 {
		for j := range a1[i] {
			assert.True(t, a1[i][j].Equal(a2[i][j]))
		}
		assert.True(t, n1[i].Equal(n2[i]))
	}
}

func TestEmptySubstitutionIsNoOp(t *testing.T) {
	ckt := buildCircuit(t, dividerDeck)
	sys, err := Assemble(ckt, Options{})
	require.NoError(t, err)

	a, n := sys.Reduced()
	a2, n2 := ApplySubstitutions(a, n, map[string]symbolic.Expr{})
	for i := range a {
		for j := range a[i] {
			assert.True(t, a[i][j].Equal(a2[i][j]))
		}
		assert.True(t, n[i].Equal(n2[i]))
	}
}

func TestMalformedSubstitution(t *testing.T) {
	for _, bad := range []string{"R1", "R1=", "=R1", " =R1", "R1=  ", " = "} {
		_, err := ParseSubstitutions([]string{bad})
		assert.Error(t, err, "pair %q", bad)
	}
}

func TestUnsupportedElementSkippedWithWarning(t *testing.T) {
	ckt := buildCircuit(t, `divider with a bjt
V1 in 0
R1 in out
R2 out 0
Q1 out in 0
.end
`)
	sol, _, err := Run(ckt, Options{})
	require.NoError(t, err)
	require.False(t, sol.Empty())
	require.NotEmpty(t, sol.Warnings)
	assert.Contains(t, sol.Warnings[0], "skipped element Q1")

	// The skipped element must not disturb the rest of the circuit.
	v1, r1, r2 := symbolic.S("V1"), symbolic.S("R1"), symbolic.S("R2")
	want := symbolic.MulOf(r2, v1, symbolic.PowOf(symbolic.AddOf(r1, r2), symbolic.N(-1)))
	assert.True(t, symbolic.Equiv(sol.Values["VOUT"], want))
}

func TestSingularSystemYieldsEmptySolution(t *testing.T) {
	ckt := buildCircuit(t, `conflicting sources
V1 in 0
V2 in 0
.end
`)
	sol, _, err := Run(ckt, Options{})
	require.NoError(t, err)
	assert.True(t, sol.Empty())
	assert.Contains(t, sol.Warnings, "No solutions. Check the netlist.")
}

func TestCCVSWithBadControllingSource(t *testing.T) {
	ckt := buildCircuit(t, `broken ccvs
V1 in 0
R1 in 0
H1 out 0 R1
R2 out 0
.end
`)
	_, _, err := Run(ckt, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "controlling source")
}

func TestCurrentControlledVoltageSource(t *testing.T) {
	ckt := buildCircuit(t, `ccvs
V1 in 0
R1 in 0
H1 out 0 V1
R2 out 0
.end
`)
	sol, _, err := Run(ckt, Options{})
	require.NoError(t, err)
	require.False(t, sol.Empty())

	v1, h1, r1 := symbolic.S("V1"), symbolic.S("H1"), symbolic.S("R1")
	want := symbolic.MulOf(h1, v1, symbolic.PowOf(r1, symbolic.N(-1)))
	assert.True(t, symbolic.Equiv(sol.Values["VOUT"], want), "VOUT = %s", sol.Values["VOUT"])
}

func TestMOSAmplifierGain(t *testing.T) {
	ckt := buildCircuit(t, `common source
V1 g 0
M1 d g 0
R1 d 0
.end
`)
	sol, tfs, err := Run(ckt, Options{Source: "V1", R0s: true})
	require.NoError(t, err)
	require.False(t, sol.Empty())
	require.NotNil(t, tfs)

	tf, ok := tfs.Funcs["VD/V1"]
	require.True(t, ok, "keys: %v", tfs.Keys)

	gm, r0, r1 := symbolic.S("GM_M1"), symbolic.S("R0_M1"), symbolic.S("R1")
	want := symbolic.MulOf(symbolic.N(-1), gm, r1, r0,
		symbolic.PowOf(symbolic.AddOf(r1, r0), symbolic.N(-1)))
	assert.True(t, symbolic.Equiv(tf.Gain, want), "gain = %s", tf.Gain)
}

func TestMOSWithoutR0s(t *testing.T) {
	ckt := buildCircuit(t, `common source
V1 g 0
M1 d g 0
R1 d 0
.end
`)
	sol, _, err := Run(ckt, Options{})
	require.NoError(t, err)
	assert.NotContains(t, symbolic.FreeSymbols(sol.Values["VD"]), "R0_M1")
}

func TestDiodeSmallSignal(t *testing.T) {
	ckt := buildCircuit(t, `diode divider
V1 in 0
R1 in out
D1 out 0
.end
`)
	sol, _, err := Run(ckt, Options{})
	require.NoError(t, err)
	require.False(t, sol.Empty())

	gd, v1, r1 := symbolic.S("GD1"), symbolic.S("V1"), symbolic.S("R1")
	want := symbolic.MulOf(v1, symbolic.PowOf(symbolic.AddOf(symbolic.N(1), symbolic.MulOf(gd, r1)), symbolic.N(-1)))
	assert.True(t, symbolic.Equiv(sol.Values["VOUT"], want), "VOUT = %s", sol.Values["VOUT"])
}

func TestCurrentControlledCurrentSource(t *testing.T) {
	ckt := buildCircuit(t, `cccs
V1 in 0
R1 in 0
F1 out 0 V1 2.0
R2 out 0
.end
`)
	sol, _, err := Run(ckt, Options{})
	require.NoError(t, err)
	require.False(t, sol.Empty())

	v1, r1, r2 := symbolic.S("V1"), symbolic.S("R1"), symbolic.S("R2")
	want := symbolic.MulOf(symbolic.N(2), v1, r2, symbolic.PowOf(r1, symbolic.N(-1)))
	assert.True(t, symbolic.Equiv(sol.Values["VOUT"], want), "VOUT = %s", sol.Values["VOUT"])
}

func TestVCVS(t *testing.T) {
	ckt := buildCircuit(t, `vcvs
V1 in 0
R1 in 0
E1 out 0 in 0
R2 out 0
.end
`)
	sol, _, err := Run(ckt, Options{})
	require.NoError(t, err)
	require.False(t, sol.Empty())

	want := symbolic.MulOf(symbolic.S("E1"), symbolic.S("V1"))
	assert.True(t, symbolic.Equiv(sol.Values["VOUT"], want), "VOUT = %s", sol.Values["VOUT"])
}

func TestCoupledInductors(t *testing.T) {
	ckt := buildCircuit(t, `transformer
V1 in 0
L1 in 0
L2 out 0
K1 L1 L2
R1 out 0
.end
`)
	sol, tfs, err := Run(ckt, Options{Source: "V1", AC: true})
	require.NoError(t, err)
	require.False(t, sol.Empty())
	require.NotNil(t, tfs)

	tf, ok := tfs.Funcs["VOUT/V1"]
	require.True(t, ok, "keys: %v", tfs.Keys)

	l1, l2, m1, r1, s := symbolic.S("L1"), symbolic.S("L2"), symbolic.S("M1"), symbolic.S("R1"), symbolic.FreqSym()
	den := symbolic.AddOf(
		symbolic.MulOf(l1, r1),
		symbolic.MulOf(s, symbolic.AddOf(symbolic.MulOf(l1, l2), symbolic.MulOf(symbolic.N(-1), symbolic.PowOf(m1, symbolic.N(2))))),
	)
	wantGain := symbolic.MulOf(m1, r1, symbolic.PowOf(den, symbolic.N(-1)))
	assert.True(t, symbolic.Equiv(tf.Gain, wantGain), "gain = %s", tf.Gain)

	wantGain0 := symbolic.MulOf(m1, symbolic.PowOf(l1, symbolic.N(-1)))
	assert.True(t, symbolic.Equiv(tf.Gain0, wantGain0), "gain0 = %s", tf.Gain0)

	require.Len(t, tf.Poles, 1)
	assert.Empty(t, tf.Zeros)
}

func TestGainZeroForUnreachedUnknowns(t *testing.T) {
	ckt := buildCircuit(t, `islands
V1 in 0
R1 in 0
I1 a 0
R2 a 0
.end
`)
	_, tfs, err := Run(ckt, Options{Source: "V1"})
	require.NoError(t, err)
	require.NotNil(t, tfs)

	// VA lives on an island V1 cannot reach, but it still gets an entry.
	assert.Contains(t, tfs.Keys, "VA/V1")
	tf := tfs.Funcs["VA/V1"]
	assert.True(t, symbolic.IsZero(tf.Gain))
	assert.True(t, symbolic.IsZero(tf.Gain0))
	assert.Empty(t, tf.Poles)
	assert.Empty(t, tf.Zeros)
}

func TestNumericCrossCheck(t *testing.T) {
	ckt := buildCircuit(t, dividerDeck)
	opts := Options{}
	sol, _, err := Run(ckt, opts)
	require.NoError(t, err)

	sys, err := Assemble(ckt, opts)
	require.NoError(t, err)

	bindings := map[string]float64{"R1": 1e3, "R2": 2e3, "V1": 1}
	require.NoError(t, Verify(sys, ckt, sol, opts, bindings, 1e-9))
}

func TestNumericCrossCheckAC(t *testing.T) {
	ckt := buildCircuit(t, `rc low-pass
V1 in 0
R1 in out
C1 out 0
.end
`)
	opts := Options{AC: true}
	sol, _, err := Run(ckt, opts)
	require.NoError(t, err)

	sys, err := Assemble(ckt, opts)
	require.NoError(t, err)

	// Evaluate on the real axis: s is just another number to the check.
	bindings := map[string]float64{"R1": 1e3, "C1": 1e-6, "V1": 1, "S": 500}
	require.NoError(t, Verify(sys, ckt, sol, opts, bindings, 1e-9))
}
