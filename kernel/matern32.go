package kernel

import "math"

var (
	matern32 *Matern32
	_        Kernel = matern32 // Check that Matern32 respects the Kernel interface.
)

// Matern32 is the Matern covariance with smoothness 3/2,
//
//	k(xa, xb) = s^2 * (1 + sqrt(3)*r/l) * exp(-sqrt(3)*r/l),  r = |xa - xb|
//
// with hyperparameters h = [amplitude s, length scale l]. Compared to RBF it
// produces rougher, once-differentiable sample paths.
type Matern32 struct{}

func NewMatern32() *Matern32 {
	return &Matern32{}
}

func (*Matern32) NumHyper() int {
	return 2
}

func (*Matern32) Cov(h, xa, xb []float64) float64 {
	s, l := h[0], h[1]
	a := math.Sqrt(3) * math.Sqrt(sqDist(xa, xb)) / l
	return s * s * (1 + a) * math.Exp(-a)
}

func (*Matern32) CovDHyper(h, xa, xb, deriv []float64) float64 {
	s, l := h[0], h[1]
	a := math.Sqrt(3) * math.Sqrt(sqDist(xa, xb)) / l
	e := math.Exp(-a)
	deriv[0] = 2 * s * (1 + a) * e
	deriv[1] = s * s * a * a * e / l
	return s * s * (1 + a) * e
}
