package nn

import (
	"math"

	"github.com/born-ml/densenet/internal/matrix"
)

// SigmoidScalar computes the logistic function σ(x) = 1 / (1 + exp(-x)).
//
// The exponential is only ever taken of a non-positive argument, so the
// result is never NaN and stays in [0, 1] for every finite x (strictly
// inside (0, 1) until float64 rounding saturates for |x| > ~36).
func SigmoidScalar(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// SigmoidPrimeScalar computes σ'(x) = σ(x)·(1 - σ(x)).
func SigmoidPrimeScalar(x float64) float64 {
	s := SigmoidScalar(x)
	return s * (1 - s)
}

// Sigmoid is the elementwise logistic nonlinearity.
//
// Example:
//
//	a := matrix.ApplyFunction(nn.Sigmoid, z)
var Sigmoid matrix.Func = matrix.Scalar(SigmoidScalar)

// SigmoidPrime is the elementwise derivative of Sigmoid.
var SigmoidPrime matrix.Func = matrix.Scalar(SigmoidPrimeScalar)
