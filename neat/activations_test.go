package neat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActivation(t *testing.T) {
	for _, name := range []string{"sigmoid", "tanh", "relu", "identity"} {
		a, err := ParseActivation(name)
		require.NoError(t, err)
		assert.Equal(t, name, a.String())
	}

	a, err := ParseActivation("  TANH ")
	require.NoError(t, err)
	assert.Equal(t, Tanh, a)

	_, err = ParseActivation("gauss")
	assert.Error(t, err)
}

func TestActivationApply(t *testing.T) {
	assert.Equal(t, 0.5, Sigmoid.Apply(0))
	assert.InDelta(t, 1/(1+math.Exp(-2)), Sigmoid.Apply(2), 1e-15)
	assert.Equal(t, math.Tanh(0.3), Tanh.Apply(0.3))
	assert.Equal(t, 0.0, ReLU.Apply(-4))
	assert.Equal(t, 4.0, ReLU.Apply(4))
	assert.Equal(t, -1.5, Identity.Apply(-1.5))
	assert.Panics(t, func() { Activation(99).Apply(0) })
}
