// Package matrix implements a small dense, real-valued 2-D matrix type with
// shape-checked arithmetic.
//
// All operations have value semantics: they never mutate their operands and
// always return a freshly allocated result. Set is the only in-place
// operation.
//
// Entries are stored row-major in a single flat slice:
//
//	entry (r, c) lives at data[r*cols + c]
package matrix

import (
	"fmt"
	"math"
	"strings"
)

// Matrix is a rows×cols matrix of float64.
//
// The zero value is a valid 0×0 matrix.
type Matrix struct {
	rows int
	cols int
	data []float64
}

// Zero creates a rows×cols matrix filled with zeros.
//
// Panics if either dimension is negative.
func Zero(rows, cols int) *Matrix {
	if err := (Shape{rows, cols}).Validate(); err != nil {
		panic(fmt.Sprintf("matrix.Zero: %v", err))
	}
	return &Matrix{
		rows: rows,
		cols: cols,
		data: make([]float64, rows*cols),
	}
}

// FromArray builds a matrix from a 2-D slice.
//
// The column count is the length of the longest row; shorter rows are
// zero-padded. The input is copied.
//
// Example:
//
//	m := matrix.FromArray([][]float64{{1, 2, 3}, {4}})
//	// m = [[1 2 3] [4 0 0]]
func FromArray(values [][]float64) *Matrix {
	cols := 0
	for _, row := range values {
		cols = max(cols, len(row))
	}

	m := Zero(len(values), cols)
	for r, row := range values {
		copy(m.data[r*cols:], row)
	}
	return m
}

// FromVector builds an (n×1) column vector when asColumn is true, otherwise a
// (1×n) row vector. The input is copied.
func FromVector(values []float64, asColumn bool) *Matrix {
	var m *Matrix
	if asColumn {
		m = Zero(len(values), 1)
	} else {
		m = Zero(1, len(values))
	}
	copy(m.data, values)
	return m
}

// Identity creates the n×n identity matrix.
func Identity(n int) *Matrix {
	m := Zero(n, n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// Shape returns the (rows, cols) pair.
func (m *Matrix) Shape() Shape {
	return Shape{Rows: m.rows, Cols: m.cols}
}

// At returns the entry at (row, col).
func (m *Matrix) At(row, col int) (float64, error) {
	if !m.inBounds(row, col) {
		return 0, outOfRange("At", m.Shape(), row, col)
	}
	return m.data[row*m.cols+col], nil
}

// Set writes value at (row, col) in place.
func (m *Matrix) Set(row, col int, value float64) error {
	if !m.inBounds(row, col) {
		return outOfRange("Set", m.Shape(), row, col)
	}
	m.data[row*m.cols+col] = value
	return nil
}

func (m *Matrix) inBounds(row, col int) bool {
	return row >= 0 && row < m.rows && col >= 0 && col < m.cols
}

// Clone returns a deep copy of m.
func (m *Matrix) Clone() *Matrix {
	c := Zero(m.rows, m.cols)
	copy(c.data, m.data)
	return c
}

// ToArray returns the entries as a freshly allocated 2-D slice.
func (m *Matrix) ToArray() [][]float64 {
	out := make([][]float64, m.rows)
	for r := range out {
		out[r] = make([]float64, m.cols)
		copy(out[r], m.data[r*m.cols:(r+1)*m.cols])
	}
	return out
}

// Column returns a copy of column c.
func (m *Matrix) Column(c int) ([]float64, error) {
	if c < 0 || c >= m.cols {
		return nil, outOfRange("Column", m.Shape(), 0, c)
	}
	out := make([]float64, m.rows)
	for r := range out {
		out[r] = m.data[r*m.cols+c]
	}
	return out, nil
}

// Data returns a copy of the row-major entries.
func (m *Matrix) Data() []float64 {
	out := make([]float64, len(m.data))
	copy(out, m.data)
	return out
}

// Transpose returns mᵗ.
func (m *Matrix) Transpose() *Matrix {
	t := Zero(m.cols, m.rows)
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			t.data[c*m.rows+r] = m.data[r*m.cols+c]
		}
	}
	return t
}

// Equal reports whether a and b have the same shape and identical entries.
func Equal(a, b *Matrix) bool {
	return EqualApprox(a, b, 0)
}

// EqualApprox reports whether a and b have the same shape and every pair of
// entries differs by at most tol.
func EqualApprox(a, b *Matrix, tol float64) bool {
	if !a.Shape().Equal(b.Shape()) {
		return false
	}
	for i := range a.data {
		if math.Abs(a.data[i]-b.data[i]) > tol {
			return false
		}
	}
	return true
}

// String renders the matrix one row per line.
func (m *Matrix) String() string {
	var sb strings.Builder
	for r := 0; r < m.rows; r++ {
		sb.WriteString("[")
		for c := 0; c < m.cols; c++ {
			if c > 0 {
				sb.WriteString(" ")
			}
			fmt.Fprintf(&sb, "%g", m.data[r*m.cols+c])
		}
		sb.WriteString("]\n")
	}
	return sb.String()
}
