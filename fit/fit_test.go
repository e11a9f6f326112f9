package fit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/hagstedt/gpregress/fit"
	"github.com/hagstedt/gpregress/gp"
	"github.com/hagstedt/gpregress/kernel"
	"github.com/hagstedt/gpregress/synth"
)

func smallTarget(t *testing.T) *gp.MarginalLikelihood {
	t.Helper()
	cfg := synth.DefaultConfig()
	cfg.NumPoints = 12
	x, y, err := synth.Generate(cfg)
	require.NoError(t, err)
	ml, err := gp.NewMarginalLikelihood(kernel.NewRBF(), x, y)
	require.NoError(t, err)
	return ml
}

// TestMaximumLikelihood_Improves verifies the loop increases the log
// marginal likelihood from a deliberately poor starting point.
func TestMaximumLikelihood_Improves(t *testing.T) {
	ml := smallTarget(t)

	init := kernel.Hyperparameters{Amplitude: 0.3, LengthScale: 3, NoiseVariance: 1}.Unconstrained()
	cfg := fit.DefaultConfig()
	cfg.Iterations = 200

	res, err := fit.MaximumLikelihood(ml, init, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, res.History)

	assert.Greater(t, res.History[len(res.History)-1], res.History[0])
	assert.Greater(t, res.Hyperparameters.Amplitude, 0.0)
	assert.Greater(t, res.Hyperparameters.LengthScale, 0.0)
	assert.Greater(t, res.Hyperparameters.NoiseVariance, 0.0)
	assert.Equal(t, len(res.History), res.Iterations)
}

// TestMaximumLikelihood_Stops verifies the convergence rule fires on a
// target with no room to improve.
func TestMaximumLikelihood_Stops(t *testing.T) {
	x := mat.NewDense(3, 1, []float64{-1, 0, 1})
	y := []float64{-0.5, 0, 0.5}
	ml, err := gp.NewMarginalLikelihood(kernel.NewRBF(), x, y)
	require.NoError(t, err)

	cfg := fit.DefaultConfig()
	cfg.Iterations = 5000
	cfg.Rate = 1e-12 // effectively frozen, so the likelihood stalls at once
	cfg.Patience = 3

	res, err := fit.MaximumLikelihood(ml, []float64{0, 0, 0}, cfg)
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Less(t, res.Iterations, cfg.Iterations)
}

// TestMaximumLikelihood_ConfigValidation covers rejected configurations.
func TestMaximumLikelihood_ConfigValidation(t *testing.T) {
	ml := smallTarget(t)
	init := []float64{0, 0, 0}

	cfg := fit.DefaultConfig()
	cfg.Iterations = 0
	_, err := fit.MaximumLikelihood(ml, init, cfg)
	assert.ErrorIs(t, err, fit.ErrInvalidConfig)

	cfg = fit.DefaultConfig()
	cfg.Rate = -1
	_, err = fit.MaximumLikelihood(ml, init, cfg)
	assert.ErrorIs(t, err, fit.ErrInvalidConfig)

	_, err = fit.MaximumLikelihood(ml, []float64{0, 0}, fit.DefaultConfig())
	assert.ErrorIs(t, err, fit.ErrInvalidConfig)
}
