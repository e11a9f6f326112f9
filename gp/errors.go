package gp

import "errors"

var (
	// ErrInvalidInput reports inputs rejected at the API boundary before
	// any matrix work: mismatched dimensions, empty training sets or
	// non-finite values.
	ErrInvalidInput = errors.New("gp: invalid input")

	// ErrNumericalInstability reports a training covariance that is not
	// positive definite to working precision, so that its Cholesky
	// factorization fails. Typical causes are duplicate training points
	// and an underflowing noise variance; increasing the jitter is the
	// usual mitigation.
	ErrNumericalInstability = errors.New("gp: covariance matrix not positive definite")
)
