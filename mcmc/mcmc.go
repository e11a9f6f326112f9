// Package mcmc draws posterior samples over kernel hyperparameters with
// Hamiltonian Monte Carlo. The transition kernel, leapfrog integration and
// acceptance bookkeeping are delegated to infergo's HMC; sampling happens
// in unconstrained space and rows of the returned chain map back to the
// positive domain through the softplus transform, which plays the bijector
// role together with the priors on the scored model.
package mcmc

import (
	"errors"
	"fmt"

	"bitbucket.org/dtolpin/infergo/infer"
	"bitbucket.org/dtolpin/infergo/model"
	"gonum.org/v1/gonum/mat"

	"github.com/hagstedt/gpregress/kernel"
)

// ErrInvalidConfig is returned for configurations that cannot drive the
// sampler.
var ErrInvalidConfig = errors.New("mcmc: invalid config")

// Config controls the HMC run.
type Config struct {
	// Samples is the number of draws kept after burn-in.
	Samples int
	// BurnIn is the number of initial draws discarded.
	BurnIn int
	// LeapfrogSteps is the number of leapfrog integration steps per
	// proposal.
	LeapfrogSteps int
	// StepSize is the leapfrog integrator step size.
	StepSize float64
}

// DefaultConfig returns the sampler parameters used by the canonical
// experiment.
func DefaultConfig() Config {
	return Config{
		Samples:       200,
		BurnIn:        100,
		LeapfrogSteps: 10,
		StepSize:      0.1,
	}
}

func (c Config) validate() error {
	if c.Samples < 1 {
		return fmt.Errorf("%w: Samples must be at least 1, got %d", ErrInvalidConfig, c.Samples)
	}
	if c.BurnIn < 0 {
		return fmt.Errorf("%w: BurnIn must be non-negative, got %d", ErrInvalidConfig, c.BurnIn)
	}
	if c.LeapfrogSteps < 1 {
		return fmt.Errorf("%w: LeapfrogSteps must be at least 1, got %d", ErrInvalidConfig, c.LeapfrogSteps)
	}
	if c.StepSize <= 0 {
		return fmt.Errorf("%w: StepSize must be positive, got %g", ErrInvalidConfig, c.StepSize)
	}
	return nil
}

// Result is the outcome of a sampling run.
type Result struct {
	// Chain holds one unconstrained draw per row.
	Chain *mat.Dense
	// AcceptanceRate is the fraction of accepted proposals over the
	// whole run, burn-in included.
	AcceptanceRate float64
}

// HMC runs the sampler from the unconstrained starting point init,
// discards cfg.BurnIn draws and keeps cfg.Samples rows. Starting the chain
// at a maximum-likelihood point shortens the burn-in considerably.
func HMC(target model.Model, init []float64, cfg Config) (Result, error) {
	if err := cfg.validate(); err != nil {
		return Result{}, err
	}
	if len(init) == 0 {
		return Result{}, fmt.Errorf("%w: empty starting point", ErrInvalidConfig)
	}

	z := append([]float64(nil), init...)
	hmc := &infer.HMC{
		L:   cfg.LeapfrogSteps,
		Eps: cfg.StepSize,
	}
	samples := make(chan []float64)
	hmc.Sample(target, z, samples)

	chain := mat.NewDense(cfg.Samples, len(init), nil)
	for i := 0; i < cfg.BurnIn; i++ {
		<-samples
	}
	for i := 0; i < cfg.Samples; i++ {
		chain.SetRow(i, <-samples)
	}
	hmc.Stop()

	rate := 0.
	if total := hmc.NAcc + hmc.NRej; total > 0 {
		rate = float64(hmc.NAcc) / float64(total)
	}
	return Result{Chain: chain, AcceptanceRate: rate}, nil
}

// Hyperparameters maps row i of a chain back to the positive domain.
func Hyperparameters(chain mat.Matrix, i int) kernel.Hyperparameters {
	return kernel.FromUnconstrained(mat.Row(nil, i, chain))
}
