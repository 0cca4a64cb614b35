package matrix

// Func is a pure per-entry transform.
//
// It receives the entry's position, the matrix dimensions, and the entry's
// current value, and returns the new value. Nonlinearities and random
// initializers share this signature.
type Func func(row, col, rows, cols int, value float64) float64

// Scalar lifts a plain f(x) into a Func that ignores position.
func Scalar(f func(float64) float64) Func {
	return func(_, _, _, _ int, v float64) float64 {
		return f(v)
	}
}

// Compose returns the Func x -> f(g(x)), both evaluated at the same position.
func Compose(f, g Func) Func {
	return func(row, col, rows, cols int, v float64) float64 {
		return f(row, col, rows, cols, g(row, col, rows, cols, v))
	}
}

// ApplyFunction returns a new matrix whose entry (r, c) is
// f(r, c, m.Rows(), m.Cols(), m(r, c)). Entries are visited in row-major order.
func ApplyFunction(f Func, m *Matrix) *Matrix {
	result := Zero(m.rows, m.cols)
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			i := r*m.cols + c
			result.data[i] = f(r, c, m.rows, m.cols, m.data[i])
		}
	}
	return result
}
