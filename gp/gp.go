// Package gp implements exact Gaussian process regression under a zero-mean
// prior: the posterior predictive distribution at query points and the log
// marginal likelihood of the training targets, both computed through a
// single Cholesky factorization of the training covariance.
package gp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/hagstedt/gpregress/gonumExtensions"
	"github.com/hagstedt/gpregress/kernel"
)

// DefaultJitter is added to the diagonal of the training covariance on top
// of the noise variance. It guards the Cholesky factorization against
// nearly duplicate training points and underflowing noise variances.
// Callers with better-conditioned problems can pass a smaller value to
// NewWithJitter, down to zero.
const DefaultJitter = 1e-9

// Regression is a Gaussian process conditioned on a fixed training set.
// The training covariance is factorized once at construction; Predict and
// LogMarginalLikelihood reuse the factor.
type Regression struct {
	kern   kernel.Kernel
	hyper  kernel.Hyperparameters
	jitter float64

	x    *mat.Dense    // n by d training inputs
	rows [][]float64   // row views into x
	y    *mat.VecDense // n training targets

	chol  *mat.Cholesky // factor of k(X, X) + (noise + jitter) I
	alpha *mat.VecDense // K^{-1} y
}

// New conditions a Gaussian process with the given kernel and
// hyperparameters on the training inputs x (n by d) and targets y, using
// DefaultJitter.
func New(kern kernel.Kernel, h kernel.Hyperparameters, x mat.Matrix, y []float64) (*Regression, error) {
	return NewWithJitter(kern, h, x, y, DefaultJitter)
}

// NewWithJitter is New with an explicit diagonal jitter.
func NewWithJitter(kern kernel.Kernel, h kernel.Hyperparameters, x mat.Matrix, y []float64, jitter float64) (*Regression, error) {
	if err := validate(x, y); err != nil {
		return nil, err
	}
	xd := mat.DenseCopyOf(x)
	rows := rowViews(xd)

	chol, alpha, err := factorize(kern, h, rows, y, jitter)
	if err != nil {
		return nil, err
	}
	n := len(y)
	yv := mat.NewVecDense(n, append([]float64(nil), y...))
	return &Regression{
		kern:   kern,
		hyper:  h,
		jitter: jitter,
		x:      xd,
		rows:   rows,
		y:      yv,
		chol:   chol,
		alpha:  alpha,
	}, nil
}

// Predict returns the posterior predictive mean and covariance at the query
// points xstar (m by d). When withNoise is true the observation noise
// variance is added to the covariance diagonal, modelling noise on future
// draws rather than on the latent function.
func (r *Regression) Predict(xstar mat.Matrix, withNoise bool) (*mat.VecDense, *mat.SymDense, error) {
	m, d := xstar.Dims()
	_, dt := r.x.Dims()
	if m < 1 {
		return nil, nil, fmt.Errorf("%w: no query points", ErrInvalidInput)
	}
	if d != dt {
		return nil, nil, fmt.Errorf("%w: query dimension %d does not match training dimension %d", ErrInvalidInput, d, dt)
	}
	if gonumExtensions.NANORINF(xstar) {
		return nil, nil, fmt.Errorf("%w: query points contain NaN or Inf", ErrInvalidInput)
	}

	xs := mat.DenseCopyOf(xstar)
	qrows := rowViews(xs)
	kh := r.hyper.Kernel()
	n := r.y.Len()

	// Cross covariance k(X*, X), m by n.
	ks := mat.NewDense(m, n, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			ks.Set(i, j, r.kern.Cov(kh, qrows[i], r.rows[j]))
		}
	}

	// Posterior mean k(X*, X) K^{-1} y through the stored factor.
	mean := mat.NewVecDense(m, nil)
	mean.MulVec(ks, r.alpha)

	// v = K^{-1} k(X, X*), one triangular solve for all query points.
	v := mat.NewDense(n, m, nil)
	if err := r.chol.SolveTo(v, ks.T()); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNumericalInstability, err)
	}
	var prod mat.Dense
	prod.Mul(ks, v)

	// Posterior covariance k(X*, X*) - k(X*, X) K^{-1} k(X, X*).
	cov := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		for j := i + 1; j < m; j++ {
			kss := r.kern.Cov(kh, qrows[i], qrows[j])
			// Average the two solve results so round-off cannot break
			// symmetry.
			cov.SetSym(i, j, kss-0.5*(prod.At(i, j)+prod.At(j, i)))
		}
		vii := r.kern.Cov(kh, qrows[i], qrows[i]) - prod.At(i, i)
		if vii < 0 {
			// Round-off pushes exact-interpolation variances slightly
			// below zero.
			vii = 0
		}
		if withNoise {
			vii += r.hyper.NoiseVariance
		}
		cov.SetSym(i, i, vii)
	}
	return mean, cov, nil
}

// LogMarginalLikelihood returns the log probability of the training targets
// under the GP prior,
//
//	-1/2 y' K^{-1} y - 1/2 log|K| - n/2 log(2 pi),
//
// with log|K| taken from the Cholesky factor. Deterministic in its inputs.
func (r *Regression) LogMarginalLikelihood() float64 {
	n := r.y.Len()
	return -0.5*mat.Dot(r.y, r.alpha) - 0.5*r.chol.LogDet() - 0.5*float64(n)*math.Log(2*math.Pi)
}

// Hyperparameters returns the hyperparameters the process was conditioned
// with.
func (r *Regression) Hyperparameters() kernel.Hyperparameters {
	return r.hyper
}

// factorize builds K = k(X, X) + (noise + jitter) I, factorizes it and
// solves for alpha = K^{-1} y.
func factorize(kern kernel.Kernel, h kernel.Hyperparameters, rows [][]float64, y []float64, jitter float64) (*mat.Cholesky, *mat.VecDense, error) {
	n := len(rows)
	kh := h.Kernel()
	k := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			k.SetSym(i, j, kern.Cov(kh, rows[i], rows[j]))
		}
	}
	gonumExtensions.AddToDiag(k, h.NoiseVariance+jitter)

	var chol mat.Cholesky
	if ok := chol.Factorize(k); !ok {
		return nil, nil, fmt.Errorf("%w: Cholesky factorization failed (n=%d, noise=%g, jitter=%g)",
			ErrNumericalInstability, n, h.NoiseVariance, jitter)
	}
	alpha := mat.NewVecDense(n, nil)
	if err := chol.SolveVecTo(alpha, mat.NewVecDense(n, append([]float64(nil), y...))); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNumericalInstability, err)
	}
	return &chol, alpha, nil
}

func validate(x mat.Matrix, y []float64) error {
	n, d := x.Dims()
	if n < 1 || d < 1 {
		return fmt.Errorf("%w: training set must contain at least one point", ErrInvalidInput)
	}
	if len(y) != n {
		return fmt.Errorf("%w: %d training points but %d targets", ErrInvalidInput, n, len(y))
	}
	if gonumExtensions.NANORINF(x) {
		return fmt.Errorf("%w: training inputs contain NaN or Inf", ErrInvalidInput)
	}
	if gonumExtensions.NANORINFSlice(y) {
		return fmt.Errorf("%w: training targets contain NaN or Inf", ErrInvalidInput)
	}
	return nil
}

func rowViews(x *mat.Dense) [][]float64 {
	n, _ := x.Dims()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = x.RawRowView(i)
	}
	return rows
}
