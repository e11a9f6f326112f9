// Package gpregress wires the full regression pipeline: synthetic data
// generation, gradient-based maximum likelihood fitting of the kernel
// hyperparameters, exact posterior prediction on a query grid, and HMC
// marginalization over the hyperparameters.
package gpregress

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/hagstedt/gpregress/fit"
	"github.com/hagstedt/gpregress/gp"
	"github.com/hagstedt/gpregress/kernel"
	"github.com/hagstedt/gpregress/mcmc"
	"github.com/hagstedt/gpregress/synth"
)

// Config collects the parameters of every pipeline stage.
type Config struct {
	Data synth.Config
	Fit  fit.Config
	MCMC mcmc.Config

	// GridPoints is the query grid resolution over the data interval.
	GridPoints int
	// Jitter stabilizes the training covariance factorization.
	Jitter float64
	// PredictiveSamples is the number of chain draws turned into
	// predictive mean curves.
	PredictiveSamples int
}

// DefaultConfig returns the canonical experiment configuration.
func DefaultConfig() Config {
	return Config{
		Data:              synth.DefaultConfig(),
		Fit:               fit.DefaultConfig(),
		MCMC:              mcmc.DefaultConfig(),
		GridPoints:        200,
		Jitter:            gp.DefaultJitter,
		PredictiveSamples: 20,
	}
}

// Experiment runs the pipeline and holds the state each stage produces.
type Experiment struct {
	cfg Config
	log *slog.Logger

	kern kernel.Kernel

	x *mat.Dense
	y []float64

	fitted fit.Result

	grid *mat.Dense
	mean *mat.VecDense
	cov  *mat.SymDense

	chain       mcmc.Result
	sampleMeans []*mat.VecDense
}

// NewExperiment returns an RBF-kernel experiment. A nil logger falls back
// to slog.Default.
func NewExperiment(cfg Config, logger *slog.Logger) *Experiment {
	if logger == nil {
		logger = slog.Default()
	}
	return &Experiment{
		cfg:  cfg,
		log:  logger,
		kern: kernel.NewRBF(),
	}
}

// Run executes the pipeline stages in order.
func (e *Experiment) Run() error {
	if err := e.GenerateData(); err != nil {
		return err
	}
	if err := e.Fit(); err != nil {
		return err
	}
	if err := e.Predict(); err != nil {
		return err
	}
	return e.Sample()
}

// GenerateData draws the synthetic observation set. The set is fixed for
// the rest of the run.
func (e *Experiment) GenerateData() error {
	x, y, err := synth.Generate(e.cfg.Data)
	if err != nil {
		return err
	}
	e.x, e.y = x, y
	e.log.Info("generated observations",
		"points", e.cfg.Data.NumPoints,
		"noiseVariance", e.cfg.Data.NoiseVariance,
		"seed", e.cfg.Data.Seed)
	return nil
}

// Fit maximizes the log marginal likelihood over the kernel
// hyperparameters with Adam.
func (e *Experiment) Fit() error {
	ml, err := gp.NewMarginalLikelihood(e.kern, e.x, e.y)
	if err != nil {
		return err
	}
	ml.Jitter = e.cfg.Jitter

	init := kernel.Hyperparameters{Amplitude: 1, LengthScale: 1, NoiseVariance: 1}.Unconstrained()
	res, err := fit.MaximumLikelihood(ml, init, e.cfg.Fit)
	if err != nil {
		return err
	}
	e.fitted = res
	e.log.Info("fitted hyperparameters",
		"amplitude", res.Hyperparameters.Amplitude,
		"lengthScale", res.Hyperparameters.LengthScale,
		"noiseVariance", res.Hyperparameters.NoiseVariance,
		"logLikelihood", res.History[len(res.History)-1],
		"iterations", res.Iterations,
		"converged", res.Converged)
	return nil
}

// Predict computes the exact posterior predictive on an evenly spaced
// query grid under the fitted hyperparameters.
func (e *Experiment) Predict() error {
	if e.fitted.Z == nil {
		return errors.New("gpregress: Fit must run before Predict")
	}
	e.grid = synth.Grid(e.cfg.Data.Low, e.cfg.Data.High, e.cfg.GridPoints)
	reg, err := gp.NewWithJitter(e.kern, e.fitted.Hyperparameters, e.x, e.y, e.cfg.Jitter)
	if err != nil {
		return err
	}
	mean, cov, err := reg.Predict(e.grid, false)
	if err != nil {
		return err
	}
	e.mean, e.cov = mean, cov
	return nil
}

// Sample marginalizes over the hyperparameters: an HMC chain over the
// posterior (marginal likelihood times prior), started at the fitted
// point, and a predictive mean curve per thinned draw.
func (e *Experiment) Sample() error {
	if e.fitted.Z == nil {
		return errors.New("gpregress: Fit must run before Sample")
	}
	ml, err := gp.NewMarginalLikelihood(e.kern, e.x, e.y)
	if err != nil {
		return err
	}
	ml.Jitter = e.cfg.Jitter
	ml.Prior = gp.DefaultPrior()

	res, err := mcmc.HMC(ml, e.fitted.Z, e.cfg.MCMC)
	if err != nil {
		return err
	}
	e.chain = res
	e.log.Info("sampled hyperparameters",
		"samples", e.cfg.MCMC.Samples,
		"burnIn", e.cfg.MCMC.BurnIn,
		"acceptanceRate", res.AcceptanceRate)

	return e.samplePredictives()
}

// samplePredictives thins the chain evenly and computes the posterior
// predictive mean under each kept draw.
func (e *Experiment) samplePredictives() error {
	rows, _ := e.chain.Chain.Dims()
	keep := e.cfg.PredictiveSamples
	if keep > rows {
		keep = rows
	}
	if keep < 1 {
		return nil
	}
	if e.grid == nil {
		e.grid = synth.Grid(e.cfg.Data.Low, e.cfg.Data.High, e.cfg.GridPoints)
	}

	e.sampleMeans = make([]*mat.VecDense, 0, keep)
	stride := rows / keep
	for s := 0; s < keep; s++ {
		h := mcmc.Hyperparameters(e.chain.Chain, s*stride)
		reg, err := gp.NewWithJitter(e.kern, h, e.x, e.y, e.cfg.Jitter)
		if err != nil {
			// A draw from a poorly conditioned corner of the
			// posterior; skip it rather than abort the run.
			e.log.Warn("skipping ill-conditioned draw", "draw", s*stride, "err", err)
			continue
		}
		mean, _, err := reg.Predict(e.grid, false)
		if err != nil {
			return err
		}
		e.sampleMeans = append(e.sampleMeans, mean)
	}
	return nil
}

// Data returns the training inputs and targets.
func (e *Experiment) Data() (*mat.Dense, []float64) {
	return e.x, e.y
}

// Fitted returns the optimization result.
func (e *Experiment) Fitted() fit.Result {
	return e.fitted
}

// Chain returns the HMC result.
func (e *Experiment) Chain() mcmc.Result {
	return e.chain
}

// PosteriorMean returns the predictive mean over the query grid.
func (e *Experiment) PosteriorMean() *mat.VecDense {
	return e.mean
}

// PosteriorStdDev returns the predictive standard deviation per grid
// point.
func (e *Experiment) PosteriorStdDev() []float64 {
	if e.cov == nil {
		return nil
	}
	n := e.cov.SymmetricDim()
	sd := make([]float64, n)
	for i := 0; i < n; i++ {
		sd[i] = math.Sqrt(e.cov.At(i, i))
	}
	return sd
}

// MeanHyperparameters averages the sampled hyperparameters in the positive
// domain.
func (e *Experiment) MeanHyperparameters() (kernel.Hyperparameters, error) {
	if e.chain.Chain == nil {
		return kernel.Hyperparameters{}, fmt.Errorf("gpregress: Sample must run before MeanHyperparameters")
	}
	rows, _ := e.chain.Chain.Dims()
	var sum kernel.Hyperparameters
	for i := 0; i < rows; i++ {
		h := mcmc.Hyperparameters(e.chain.Chain, i)
		sum.Amplitude += h.Amplitude
		sum.LengthScale += h.LengthScale
		sum.NoiseVariance += h.NoiseVariance
	}
	n := float64(rows)
	return kernel.Hyperparameters{
		Amplitude:     sum.Amplitude / n,
		LengthScale:   sum.LengthScale / n,
		NoiseVariance: sum.NoiseVariance / n,
	}, nil
}
