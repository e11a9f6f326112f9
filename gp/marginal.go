package gp

import (
	"math"

	"bitbucket.org/dtolpin/infergo/dist"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/hagstedt/gpregress/kernel"
)

// MarginalLikelihood scores unconstrained hyperparameter vectors
// z = [amplitude, length scale, noise variance] against a fixed training
// set. It satisfies the infergo model contract: Observe returns the log
// marginal likelihood (plus the log prior when Prior is set) at
// softplus(z), and Gradient returns the analytic gradient of the last
// Observe call, so infer.Adam and infer.HMC can drive it without automatic
// differentiation.
//
// When the training covariance at z is not positive definite to working
// precision, Observe returns -Inf with a zero gradient; HMC rejects such
// proposals. Callers that need the distinguishable error should construct
// a Regression at the same hyperparameters instead.
type MarginalLikelihood struct {
	// Prior optionally adds independent Normal log densities over the
	// unconstrained parameters. Required for HMC to target a proper
	// posterior; leave nil for pure maximum likelihood.
	Prior *Prior

	// Jitter is the diagonal stabilizer, DefaultJitter unless changed.
	Jitter float64

	kern kernel.Kernel
	x    *mat.Dense
	rows [][]float64
	y    []float64

	grad []float64
}

// NewMarginalLikelihood validates the training set once and returns a
// model scoring hyperparameters against it.
func NewMarginalLikelihood(kern kernel.Kernel, x mat.Matrix, y []float64) (*MarginalLikelihood, error) {
	if err := validate(x, y); err != nil {
		return nil, err
	}
	xd := mat.DenseCopyOf(x)
	return &MarginalLikelihood{
		Jitter: DefaultJitter,
		kern:   kern,
		x:      xd,
		rows:   rowViews(xd),
		y:      append([]float64(nil), y...),
	}, nil
}

// Observe returns the log marginal likelihood of the training targets at
// the hyperparameters softplus(z), plus the log prior when Prior is set.
func (m *MarginalLikelihood) Observe(z []float64) float64 {
	h := kernel.FromUnconstrained(z)
	ll, grad, ok := m.logLikelihoodAndGrad(h)
	if !ok {
		m.grad = make([]float64, len(z))
		return math.Inf(-1)
	}

	// Chain rule through the softplus reparameterization.
	for i := range grad {
		grad[i] *= kernel.SoftplusPrime(z[i])
	}
	if m.Prior != nil {
		lp, pg := m.Prior.logpAndGrad(z)
		ll += lp
		floats.Add(grad, pg)
	}
	m.grad = grad
	return ll
}

// Gradient returns the gradient of the last Observe call with respect to
// the unconstrained parameters.
func (m *MarginalLikelihood) Gradient() []float64 {
	return m.grad
}

// logLikelihoodAndGrad computes the log marginal likelihood and its
// gradient with respect to the positive-domain parameters
// [amplitude, length scale, noise variance]:
//
//	d ll / d theta = 1/2 tr((alpha alpha' - K^{-1}) dK/dtheta).
func (m *MarginalLikelihood) logLikelihoodAndGrad(h kernel.Hyperparameters) (float64, []float64, bool) {
	n := len(m.y)
	chol, alpha, err := factorize(m.kern, h, m.rows, m.y, m.Jitter)
	if err != nil {
		return 0, nil, false
	}

	yv := mat.NewVecDense(n, m.y)
	ll := -0.5*mat.Dot(yv, alpha) - 0.5*chol.LogDet() - 0.5*float64(n)*math.Log(2*math.Pi)

	var kinv mat.SymDense
	if err := chol.InverseTo(&kinv); err != nil {
		return 0, nil, false
	}

	nk := m.kern.NumHyper()
	grad := make([]float64, nk+1)
	kh := h.Kernel()
	deriv := make([]float64, nk)
	for i := 0; i < n; i++ {
		ai := alpha.AtVec(i)
		for j := i; j < n; j++ {
			m.kern.CovDHyper(kh, m.rows[i], m.rows[j], deriv)
			w := ai*alpha.AtVec(j) - kinv.At(i, j)
			if i != j {
				// Off-diagonal entries appear twice in the trace.
				w *= 2
			}
			for l := 0; l < nk; l++ {
				grad[l] += 0.5 * w * deriv[l]
			}
		}
		// dK/d(noise variance) is the identity.
		grad[nk] += 0.5 * (ai*ai - kinv.At(i, i))
	}
	return ll, grad, true
}

// Prior places independent Normal densities on the unconstrained
// hyperparameters, in the spirit of weakly informative priors over
// log-scale parameters. Index order matches the unconstrained vector:
// amplitude, length scale, noise variance.
type Prior struct {
	Mu    [kernel.NUnconstrained]float64
	Sigma [kernel.NUnconstrained]float64
}

// DefaultPrior keeps amplitude and length scale around softplus(0) and
// pulls the noise variance towards small values.
func DefaultPrior() *Prior {
	return &Prior{
		Mu:    [kernel.NUnconstrained]float64{0, 0, -2},
		Sigma: [kernel.NUnconstrained]float64{2, 2, 2},
	}
}

func (p *Prior) logpAndGrad(z []float64) (float64, []float64) {
	lp := 0.
	grad := make([]float64, len(z))
	for i, zi := range z {
		lp += dist.Normal.Logp(p.Mu[i], p.Sigma[i], zi)
		grad[i] = (p.Mu[i] - zi) / (p.Sigma[i] * p.Sigma[i])
	}
	return lp, grad
}
