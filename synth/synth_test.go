package synth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/hagstedt/gpregress/synth"
)

// TestGenerate_Shape verifies dimensions and domain bounds.
func TestGenerate_Shape(t *testing.T) {
	cfg := synth.DefaultConfig()
	x, y, err := synth.Generate(cfg)
	require.NoError(t, err)

	n, d := x.Dims()
	assert.Equal(t, cfg.NumPoints, n)
	assert.Equal(t, 1, d)
	assert.Len(t, y, cfg.NumPoints)

	for i := 0; i < n; i++ {
		xi := x.At(i, 0)
		assert.GreaterOrEqual(t, xi, cfg.Low)
		assert.Less(t, xi, cfg.High)
	}
}

// TestGenerate_Deterministic verifies that the seed fully determines the
// observation set.
func TestGenerate_Deterministic(t *testing.T) {
	cfg := synth.DefaultConfig()
	xa, ya, err := synth.Generate(cfg)
	require.NoError(t, err)
	xb, yb, err := synth.Generate(cfg)
	require.NoError(t, err)

	assert.True(t, mat.Equal(xa, xb))
	assert.Equal(t, ya, yb)

	cfg.Seed++
	xc, yc, err := synth.Generate(cfg)
	require.NoError(t, err)
	assert.False(t, mat.Equal(xa, xc))
	assert.NotEqual(t, ya, yc)
}

// TestConfig_Validate covers the rejected configurations.
func TestConfig_Validate(t *testing.T) {
	cfg := synth.DefaultConfig()
	cfg.NumPoints = 0
	assert.ErrorIs(t, cfg.Validate(), synth.ErrInvalidConfig)

	cfg = synth.DefaultConfig()
	cfg.NoiseVariance = 0
	assert.ErrorIs(t, cfg.Validate(), synth.ErrInvalidConfig)

	cfg = synth.DefaultConfig()
	cfg.NoiseVariance = -0.1
	assert.ErrorIs(t, cfg.Validate(), synth.ErrInvalidConfig)

	cfg = synth.DefaultConfig()
	cfg.Low, cfg.High = 1, 1
	assert.ErrorIs(t, cfg.Validate(), synth.ErrInvalidConfig)

	_, _, err := synth.Generate(synth.Config{NumPoints: -1, NoiseVariance: 1, Low: 0, High: 1})
	assert.ErrorIs(t, err, synth.ErrInvalidConfig)
}

// TestGrid verifies endpoints and spacing.
func TestGrid(t *testing.T) {
	g := synth.Grid(-1, 1, 5)
	n, d := g.Dims()
	require.Equal(t, 5, n)
	require.Equal(t, 1, d)
	assert.InDelta(t, -1, g.At(0, 0), 1e-15)
	assert.InDelta(t, -0.5, g.At(1, 0), 1e-15)
	assert.InDelta(t, 1, g.At(4, 0), 1e-15)
}
