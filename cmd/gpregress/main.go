// Command gpregress runs the synthetic sinusoid regression experiment end
// to end and writes the posterior predictive plot to a PNG file.
//
// Usage:
//
//	go run ./cmd/gpregress -points 100 -noise 0.1 -out posterior.png
package main

import (
	"flag"
	"log/slog"
	"os"

	gpregress "github.com/hagstedt/gpregress"
)

func main() {
	var (
		points     = flag.Int("points", 100, "number of synthetic observations")
		noise      = flag.Float64("noise", 0.1, "observation noise variance")
		seed       = flag.Uint64("seed", 42, "random seed for data generation")
		iterations = flag.Int("iterations", 1000, "Adam iteration budget")
		rate       = flag.Float64("rate", 0.01, "Adam learning rate")
		samples    = flag.Int("samples", 200, "HMC samples kept after burn-in")
		burnIn     = flag.Int("burnin", 100, "HMC samples discarded as burn-in")
		out        = flag.String("out", "posterior.png", "output plot path")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := gpregress.DefaultConfig()
	cfg.Data.NumPoints = *points
	cfg.Data.NoiseVariance = *noise
	cfg.Data.Seed = *seed
	cfg.Fit.Iterations = *iterations
	cfg.Fit.Rate = *rate
	cfg.MCMC.Samples = *samples
	cfg.MCMC.BurnIn = *burnIn

	e := gpregress.NewExperiment(cfg, logger)
	if err := e.Run(); err != nil {
		logger.Error("experiment failed", "err", err)
		os.Exit(1)
	}
	if err := e.SavePlot(*out); err != nil {
		logger.Error("plotting failed", "err", err)
		os.Exit(1)
	}
	logger.Info("wrote plot", "path", *out)
}
