// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package matrix

import "github.com/born-ml/densenet/internal/matrix"

// Matrix is a dense row-major matrix of float64.
type Matrix = matrix.Matrix

// Shape is a (rows, cols) pair.
type Shape = matrix.Shape

// Func computes a new entry from its position, the matrix shape, and the
// current value.
type Func = matrix.Func

// Error reports a shape or index failure.
type Error = matrix.Error

// Error kinds.
var (
	ErrDimensionMismatch = matrix.ErrDimensionMismatch
	ErrIndexOutOfRange   = matrix.ErrIndexOutOfRange
)

// Construction

// Zero returns a rows×cols matrix of zeros. Negative dimensions panic.
func Zero(rows, cols int) *Matrix { return matrix.Zero(rows, cols) }

// FromArray builds a matrix from rows of values. Short rows are zero padded
// to the longest row.
func FromArray(values [][]float64) *Matrix { return matrix.FromArray(values) }

// FromVector builds a column (asColumn) or row vector.
func FromVector(values []float64, asColumn bool) *Matrix {
	return matrix.FromVector(values, asColumn)
}

// Identity returns the n×n identity matrix.
func Identity(n int) *Matrix { return matrix.Identity(n) }

// Operations

// Multiply returns the matrix product a·b.
func Multiply(a, b *Matrix) (*Matrix, error) { return matrix.Multiply(a, b) }

// Add returns a + b.
func Add(a, b *Matrix) (*Matrix, error) { return matrix.Add(a, b) }

// Subtract returns a - b.
func Subtract(a, b *Matrix) (*Matrix, error) { return matrix.Subtract(a, b) }

// Hadamard returns the elementwise product of a and b.
func Hadamard(a, b *Matrix) (*Matrix, error) { return matrix.Hadamard(a, b) }

// ScalarMultiply returns c·m.
func ScalarMultiply(c float64, m *Matrix) *Matrix { return matrix.ScalarMultiply(c, m) }

// ApplyFunction returns a matrix whose entries are f applied to m's entries.
func ApplyFunction(f Func, m *Matrix) *Matrix { return matrix.ApplyFunction(f, m) }

// Scalar lifts a value-only function into a Func.
func Scalar(f func(float64) float64) Func { return matrix.Scalar(f) }

// Compose returns a Func computing f(g(x)).
func Compose(f, g Func) Func { return matrix.Compose(f, g) }

// Equal reports whether a and b have the same shape and entries.
func Equal(a, b *Matrix) bool { return matrix.Equal(a, b) }

// EqualApprox is Equal with an absolute tolerance per entry.
func EqualApprox(a, b *Matrix, tol float64) bool { return matrix.EqualApprox(a, b, tol) }
