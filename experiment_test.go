package gpregress_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gpregress "github.com/hagstedt/gpregress"
	"github.com/hagstedt/gpregress/kernel"
)

// shortConfig trims the canonical experiment so the full pipeline runs in
// test time.
func shortConfig() gpregress.Config {
	cfg := gpregress.DefaultConfig()
	cfg.Data.NumPoints = 20
	cfg.Fit.Iterations = 100
	cfg.MCMC.Samples = 20
	cfg.MCMC.BurnIn = 5
	cfg.MCMC.LeapfrogSteps = 5
	cfg.MCMC.StepSize = 0.05
	cfg.GridPoints = 40
	cfg.PredictiveSamples = 4
	return cfg
}

// TestExperiment_Run exercises the whole pipeline end to end.
func TestExperiment_Run(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	e := gpregress.NewExperiment(shortConfig(), logger)
	require.NoError(t, e.Run())

	x, y := e.Data()
	n, _ := x.Dims()
	assert.Equal(t, 20, n)
	assert.Len(t, y, 20)

	fitted := e.Fitted()
	assert.Greater(t, fitted.Hyperparameters.Amplitude, 0.0)
	assert.Greater(t, fitted.Hyperparameters.LengthScale, 0.0)
	assert.Greater(t, fitted.Hyperparameters.NoiseVariance, 0.0)

	mean := e.PosteriorMean()
	require.NotNil(t, mean)
	assert.Equal(t, 40, mean.Len())

	sd := e.PosteriorStdDev()
	require.Len(t, sd, 40)
	for _, s := range sd {
		assert.GreaterOrEqual(t, s, 0.0)
	}

	rows, cols := e.Chain().Chain.Dims()
	assert.Equal(t, 20, rows)
	assert.Equal(t, kernel.NUnconstrained, cols)

	mh, err := e.MeanHyperparameters()
	require.NoError(t, err)
	assert.Greater(t, mh.LengthScale, 0.0)
}

// TestExperiment_SavePlot renders the pipeline output to a file.
func TestExperiment_SavePlot(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	e := gpregress.NewExperiment(shortConfig(), logger)
	require.NoError(t, e.Run())

	path := filepath.Join(t.TempDir(), "posterior.png")
	require.NoError(t, e.SavePlot(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

// TestExperiment_StageOrder verifies stages refuse to run out of order.
func TestExperiment_StageOrder(t *testing.T) {
	e := gpregress.NewExperiment(shortConfig(), nil)
	require.NoError(t, e.GenerateData())
	assert.Error(t, e.Predict())
	assert.Error(t, e.Sample())
	assert.Error(t, e.SavePlot(filepath.Join(t.TempDir(), "unused.png")))
}
