package kernel

import "math"

// PositiveFloor is added to the softplus output so that transformed
// hyperparameters stay strictly positive even when the unconstrained
// variable is so negative that exp underflows.
const PositiveFloor = 1e-6

// softplusLinear is the threshold above which softplus is computed as the
// identity; log1p(exp(x)) is indistinguishable from x in float64 there.
const softplusLinear = 30

// Softplus maps any finite real to a strictly positive value,
//
//	softplus(x) = log(1 + exp(x)) + PositiveFloor.
//
// It is smooth and monotonically increasing.
func Softplus(x float64) float64 {
	if x > softplusLinear {
		return x + PositiveFloor
	}
	return math.Log1p(math.Exp(x)) + PositiveFloor
}

// SoftplusPrime is the derivative of Softplus, the logistic sigmoid.
func SoftplusPrime(x float64) float64 {
	if x > 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// SoftplusInv inverts Softplus, log(exp(y) - 1) after removing the floor.
// It is only defined for y > PositiveFloor.
func SoftplusInv(y float64) float64 {
	y -= PositiveFloor
	if y > softplusLinear {
		return y
	}
	return math.Log(math.Expm1(y))
}

// NUnconstrained is the dimension of the unconstrained hyperparameter
// vector scored by optimization and sampling: amplitude, length scale and
// noise variance.
const NUnconstrained = 3

// Hyperparameters holds the positive-domain parameters of a GP regression.
// Positivity is maintained by construction through the softplus transform,
// not by validation.
type Hyperparameters struct {
	// Amplitude is the kernel output scale s.
	Amplitude float64
	// LengthScale is the kernel input scale l.
	LengthScale float64
	// NoiseVariance is the variance of the Gaussian observation noise
	// added to the diagonal of the training covariance.
	NoiseVariance float64
}

// FromUnconstrained maps an unconstrained vector z = [za, zl, zn] through
// the softplus transform.
func FromUnconstrained(z []float64) Hyperparameters {
	if len(z) != NUnconstrained {
		panic("kernel: unconstrained vector must have length NUnconstrained")
	}
	return Hyperparameters{
		Amplitude:     Softplus(z[0]),
		LengthScale:   Softplus(z[1]),
		NoiseVariance: Softplus(z[2]),
	}
}

// Unconstrained returns the vector z with FromUnconstrained(z) == h.
func (h Hyperparameters) Unconstrained() []float64 {
	return []float64{
		SoftplusInv(h.Amplitude),
		SoftplusInv(h.LengthScale),
		SoftplusInv(h.NoiseVariance),
	}
}

// Kernel returns the kernel hyperparameter slice [amplitude, length scale]
// in the layout the Kernel interface expects.
func (h Hyperparameters) Kernel() []float64 {
	return []float64{h.Amplitude, h.LengthScale}
}
