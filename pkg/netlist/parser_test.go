package netlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeck(t *testing.T) {
	nl, err := Parse(`RC low-pass filter
* input stage
V1 in 0
R1 in out 1k
C1 out 0 100n
.symbolic tf=V1 ac=1
.subs R2=R1
.end
`)
	require.NoError(t, err)
	assert.Equal(t, "RC low-pass filter", nl.Title)
	require.Len(t, nl.Elements, 3)

	v := nl.Elements[0]
	assert.Equal(t, "V", v.Type)
	assert.Equal(t, "V1", v.Name)
	assert.Equal(t, []string{"IN", "0"}, v.Nodes)
	assert.False(t, v.HasValue)

	r := nl.Elements[1]
	assert.True(t, r.HasValue)
	assert.InDelta(t, 1e3, r.Value, 1e-9)

	c := nl.Elements[2]
	assert.True(t, c.HasValue)
	assert.InDelta(t, 100e-9, c.Value, 1e-18)

	assert.True(t, nl.Symbolic.Enabled)
	assert.Equal(t, "V1", nl.Symbolic.Source)
	assert.True(t, nl.Symbolic.AC)
	assert.False(t, nl.Symbolic.R0s)
	assert.Equal(t, []string{"R2=R1"}, nl.Subs)
}

func TestSymbolicDirectiveDefaults(t *testing.T) {
	nl, err := Parse(`defaults
R1 a 0
.end
`)
	require.NoError(t, err)
	assert.False(t, nl.Symbolic.Enabled)
	assert.True(t, nl.Symbolic.AC)

	nl, err = Parse(`dc requested
R1 a 0
.symbolic ac=0
.end
`)
	require.NoError(t, err)
	assert.True(t, nl.Symbolic.Enabled)
	assert.False(t, nl.Symbolic.AC)
}

func TestParseControlledSources(t *testing.T) {
	nl, err := Parse(`controlled
E1 out 0 in 0 2.0
H1 out 0 V1
F1 out 0 V1 1.5
G1 out 0 in 0
K1 L1 L2
.end
`)
	require.NoError(t, err)
	require.Len(t, nl.Elements, 5)

	e := nl.Elements[0]
	assert.Equal(t, []string{"IN", "0"}, e.Ctrl)
	assert.True(t, e.HasValue)

	h := nl.Elements[1]
	assert.Equal(t, "V1", h.Source)
	assert.False(t, h.HasValue)

	f := nl.Elements[2]
	assert.InDelta(t, 1.5, f.Value, 1e-12)

	k := nl.Elements[4]
	assert.Equal(t, []string{"L1", "L2"}, k.Pair)
}

func TestParseSourceDCKeyword(t *testing.T) {
	nl, err := Parse(`dc keyword
V1 in 0 DC 1
I1 in 0 dc 2m
.end
`)
	require.NoError(t, err)
	require.Len(t, nl.Elements, 2)
	assert.True(t, nl.Elements[0].HasValue)
	assert.InDelta(t, 1.0, nl.Elements[0].Value, 1e-12)
	assert.True(t, nl.Elements[1].HasValue)
	assert.InDelta(t, 2e-3, nl.Elements[1].Value, 1e-12)
}

func TestParseContinuation(t *testing.T) {
	nl, err := Parse(`continued
E1 out 0
+ in 0 2.0
.end
`)
	require.NoError(t, err)
	require.Len(t, nl.Elements, 1)
	assert.Equal(t, []string{"IN", "0"}, nl.Elements[0].Ctrl)
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"t\nX1 1 2\n",            // unknown element type
		"t\nR1 1\n",              // missing node
		"t\nR1 1 2 abc\n",        // bad value
		"t\n.symbolic tf\n",      // malformed option
		"t\n.symbolic foo=1\n",   // unknown option
		"t\n.plot V(1)\n",        // unknown dot card
		"t\n+ R1 1 2\nR2 1 2\n",  // dangling continuation
		"t\nE1 out 0 in\n",       // missing controlling node
		"t\nM1 d g\n",            // missing MOS node
	}
	for _, deck := range cases {
		_, err := Parse(deck)
		assert.Error(t, err, "deck: %q", deck)
	}
}

func TestParseValue(t *testing.T) {
	cases := map[string]float64{
		"1":     1,
		"1.5":   1.5,
		"-2":    -2,
		"1k":    1e3,
		"2.2K":  2.2e3,
		"1MEG":  1e6,
		"1m":    1e-3,
		"10u":   1e-5,
		"10uF":  1e-5,
		"100n":  1e-7,
		"5p":    5e-12,
		"3f":    3e-15,
		"1G":    1e9,
		"1T":    1e12,
		"1e-3":  1e-3,
		"2.5e6": 2.5e6,
	}
	for in, want := range cases {
		got, err := ParseValue(in)
		require.NoError(t, err, "input %q", in)
		assert.InEpsilon(t, want, got, 1e-12, "input %q", in)
	}

	for _, bad := range []string{"", "abc", "k1", "1..2"} {
		_, err := ParseValue(bad)
		assert.Error(t, err, "input %q", bad)
	}
}
