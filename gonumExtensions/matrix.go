// Package gonumExtensions collects small matrix helpers missing from
// gonum/mat.
package gonumExtensions

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Eye returns the (n by n) identity matrix.
func Eye(n int) mat.Matrix {
	data := make([]float64, n)
	for entry := range data {
		data[entry] = 1
	}
	return mat.NewDiagDense(n, data)
}

// AddToDiag adds value to every diagonal entry of s in place.
func AddToDiag(s *mat.SymDense, value float64) {
	n := s.SymmetricDim()
	for i := 0; i < n; i++ {
		s.SetSym(i, i, s.At(i, i)+value)
	}
}

// NANORINF checks if there are any NaN or Inf in matrix.
func NANORINF(matrix mat.Matrix) bool {
	m, n := matrix.Dims()
	for row := 0; row < m; row++ {
		for col := 0; col < n; col++ {
			if math.IsNaN(matrix.At(row, col)) || math.IsInf(matrix.At(row, col), 0) {
				return true
			}
		}
	}
	return false
}

// NANORINFSlice checks if there are any NaN or Inf in data.
func NANORINFSlice(data []float64) bool {
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}
