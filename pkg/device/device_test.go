package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsVoltageDefined(t *testing.T) {
	ac := []*Device{
		NewVSource("V1", 1, 0, 0, true),
		NewVCVS("E1", 1, 0, 2, 0, 0, true),
		NewCCVS("H1", 1, 0, "V1", 0, true),
	}
	for _, d := range ac {
		assert.True(t, d.IsVoltageDefined(true), d.ID)
		assert.True(t, d.IsVoltageDefined(false), d.ID)
	}

	l := NewInductor("L1", 1, 0, 0, true)
	assert.True(t, l.IsVoltageDefined(true))
	assert.False(t, l.IsVoltageDefined(false))

	r := NewResistor("R1", 1, 0, 1e3, false)
	assert.False(t, r.IsVoltageDefined(true))
}

func TestOtherInductor(t *testing.T) {
	k := NewCoupling("K1", "L1", "L2", 0, true)

	other, err := k.OtherInductor("L1")
	require.NoError(t, err)
	assert.Equal(t, "L2", other)

	other, err = k.OtherInductor("L2")
	require.NoError(t, err)
	assert.Equal(t, "L1", other)

	_, err = k.OtherInductor("L3")
	assert.Error(t, err)

	r := NewResistor("R1", 1, 0, 0, true)
	_, err = r.OtherInductor("L1")
	assert.Error(t, err)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "resistor", Resistor.String())
	assert.Equal(t, "coupling", Coupling.String())
	assert.Equal(t, "kind(99)", Kind(99).String())
}
