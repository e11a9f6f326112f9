// Package fit estimates kernel hyperparameters by gradient-based
// maximization of the log marginal likelihood. The update rule is
// delegated to infergo's Adam optimizer; this package owns the iteration
// loop and its stopping rule.
package fit

import (
	"errors"
	"fmt"
	"math"

	"bitbucket.org/dtolpin/infergo/infer"
	"bitbucket.org/dtolpin/infergo/model"

	"github.com/hagstedt/gpregress/kernel"
)

// ErrInvalidConfig is returned for configurations that cannot drive the
// optimizer.
var ErrInvalidConfig = errors.New("fit: invalid config")

// Config controls the optimization loop.
type Config struct {
	// Iterations caps the optimizer budget.
	Iterations int
	// Rate is the Adam learning rate.
	Rate float64
	// Tolerance is the relative log-likelihood change under which an
	// iteration counts towards convergence.
	Tolerance float64
	// Patience is the number of consecutive converged iterations after
	// which the loop stops before exhausting the budget.
	Patience int
}

// DefaultConfig returns the loop parameters used by the canonical
// experiment.
func DefaultConfig() Config {
	return Config{
		Iterations: 1000,
		Rate:       0.01,
		Tolerance:  1e-8,
		Patience:   10,
	}
}

func (c Config) validate() error {
	if c.Iterations < 1 {
		return fmt.Errorf("%w: Iterations must be at least 1, got %d", ErrInvalidConfig, c.Iterations)
	}
	if c.Rate <= 0 {
		return fmt.Errorf("%w: Rate must be positive, got %g", ErrInvalidConfig, c.Rate)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("%w: Tolerance must be non-negative, got %g", ErrInvalidConfig, c.Tolerance)
	}
	if c.Patience < 1 {
		return fmt.Errorf("%w: Patience must be at least 1, got %d", ErrInvalidConfig, c.Patience)
	}
	return nil
}

// Result is the outcome of an optimization run.
type Result struct {
	// Z is the final unconstrained parameter vector.
	Z []float64
	// Hyperparameters is Z mapped through the softplus transform.
	Hyperparameters kernel.Hyperparameters
	// History records the log marginal likelihood at each iteration.
	History []float64
	// Iterations is the number of iterations actually run.
	Iterations int
	// Converged reports whether the stopping rule fired before the
	// budget was exhausted.
	Converged bool
}

// MaximumLikelihood runs Adam from the unconstrained starting point init
// until the log likelihood stalls or the iteration budget is exhausted.
// The target must score vectors in the kernel.Hyperparameters
// unconstrained layout.
func MaximumLikelihood(target model.Model, init []float64, cfg Config) (Result, error) {
	if err := cfg.validate(); err != nil {
		return Result{}, err
	}
	if len(init) != kernel.NUnconstrained {
		return Result{}, fmt.Errorf("%w: starting point must have length %d, got %d",
			ErrInvalidConfig, kernel.NUnconstrained, len(init))
	}

	z := append([]float64(nil), init...)
	opt := &infer.Adam{Rate: cfg.Rate}

	res := Result{History: make([]float64, 0, cfg.Iterations)}
	prev := math.Inf(-1)
	streak := 0
	for iter := 0; iter < cfg.Iterations; iter++ {
		ll, _ := opt.Step(target, z)
		res.History = append(res.History, ll)
		res.Iterations = iter + 1

		if relChange(prev, ll) < cfg.Tolerance {
			streak++
			if streak >= cfg.Patience {
				res.Converged = true
				break
			}
		} else {
			streak = 0
		}
		prev = ll
	}

	res.Z = z
	res.Hyperparameters = kernel.FromUnconstrained(z)
	return res, nil
}

// relChange measures the relative log-likelihood movement between
// consecutive iterations.
func relChange(prev, cur float64) float64 {
	return math.Abs(cur-prev) / math.Max(1, math.Abs(prev))
}
