package mcmc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/hagstedt/gpregress/gonumExtensions"
	"github.com/hagstedt/gpregress/gp"
	"github.com/hagstedt/gpregress/kernel"
	"github.com/hagstedt/gpregress/mcmc"
)

func tinyTarget(t *testing.T) *gp.MarginalLikelihood {
	t.Helper()
	x := mat.NewDense(5, 1, []float64{-1, -0.5, 0, 0.5, 1})
	y := []float64{-0.9, -0.4, 0.1, 0.6, 0.8}
	ml, err := gp.NewMarginalLikelihood(kernel.NewRBF(), x, y)
	require.NoError(t, err)
	ml.Prior = gp.DefaultPrior()
	return ml
}

// TestHMC_ChainShape runs a short chain and verifies its shape, that all
// draws are finite and that every draw maps to valid hyperparameters.
func TestHMC_ChainShape(t *testing.T) {
	ml := tinyTarget(t)

	cfg := mcmc.Config{Samples: 25, BurnIn: 5, LeapfrogSteps: 5, StepSize: 0.05}
	res, err := mcmc.HMC(ml, []float64{0, 0, -1}, cfg)
	require.NoError(t, err)

	r, c := res.Chain.Dims()
	assert.Equal(t, cfg.Samples, r)
	assert.Equal(t, kernel.NUnconstrained, c)
	assert.False(t, gonumExtensions.NANORINF(res.Chain), "chain contains NaN or Inf")

	for i := 0; i < r; i++ {
		h := mcmc.Hyperparameters(res.Chain, i)
		assert.Greater(t, h.Amplitude, 0.0)
		assert.Greater(t, h.LengthScale, 0.0)
		assert.Greater(t, h.NoiseVariance, 0.0)
	}

	assert.GreaterOrEqual(t, res.AcceptanceRate, 0.0)
	assert.LessOrEqual(t, res.AcceptanceRate, 1.0)
}

// TestHMC_ConfigValidation covers rejected configurations.
func TestHMC_ConfigValidation(t *testing.T) {
	ml := tinyTarget(t)
	init := []float64{0, 0, 0}

	for _, cfg := range []mcmc.Config{
		{Samples: 0, BurnIn: 0, LeapfrogSteps: 5, StepSize: 0.1},
		{Samples: 10, BurnIn: -1, LeapfrogSteps: 5, StepSize: 0.1},
		{Samples: 10, BurnIn: 0, LeapfrogSteps: 0, StepSize: 0.1},
		{Samples: 10, BurnIn: 0, LeapfrogSteps: 5, StepSize: 0},
	} {
		_, err := mcmc.HMC(ml, init, cfg)
		assert.ErrorIs(t, err, mcmc.ErrInvalidConfig)
	}

	_, err := mcmc.HMC(ml, nil, mcmc.DefaultConfig())
	assert.ErrorIs(t, err, mcmc.ErrInvalidConfig)
}
