// Package kernel provides stationary covariance functions for Gaussian
// process regression, together with the positivity transform that maps
// unconstrained optimization variables onto valid hyperparameters.
package kernel

// Kernel is a stationary covariance function over inputs in R^d.
//
// The positive-domain hyperparameters h are passed explicitly on every call
// so that an optimization or sampling loop can reparameterize between steps
// without rebuilding the kernel.
type Kernel interface {
	// NumHyper returns the number of kernel hyperparameters. The
	// observation noise variance is not a kernel hyperparameter; it is
	// handled by the gp package as a diagonal term.
	NumHyper() int

	// Cov returns k(xa, xb) under the hyperparameters h.
	Cov(h, xa, xb []float64) float64

	// CovDHyper returns k(xa, xb) and writes the partial derivative with
	// respect to each entry of h into deriv, which must have length
	// NumHyper().
	CovDHyper(h, xa, xb, deriv []float64) float64
}

// sqDist returns the squared Euclidean distance between xa and xb.
func sqDist(xa, xb []float64) float64 {
	if len(xa) != len(xb) {
		panic("kernel: input vectors must have the same length")
	}
	var sum float64
	for i := range xa {
		diff := xa[i] - xb[i]
		sum += diff * diff
	}
	return sum
}
