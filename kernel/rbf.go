package kernel

import "math"

var (
	rbf *RBF
	_   Kernel = rbf // Check that RBF respects the Kernel interface.
)

// RBF is the squared exponential (radial basis function) covariance
//
//	k(xa, xb) = s^2 * exp(-|xa - xb|^2 / (2 * l^2))
//
// with hyperparameters h = [amplitude s, length scale l].
type RBF struct{}

func NewRBF() *RBF {
	return &RBF{}
}

func (*RBF) NumHyper() int {
	return 2
}

func (*RBF) Cov(h, xa, xb []float64) float64 {
	s, l := h[0], h[1]
	return s * s * math.Exp(-sqDist(xa, xb)/(2*l*l))
}

func (*RBF) CovDHyper(h, xa, xb, deriv []float64) float64 {
	s, l := h[0], h[1]
	r2 := sqDist(xa, xb)
	e := math.Exp(-r2 / (2 * l * l))
	k := s * s * e
	deriv[0] = 2 * s * e
	deriv[1] = k * r2 / (l * l * l)
	return k
}
