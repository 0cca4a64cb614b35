package matrix

// Multiply computes the matrix product a·b.
//
// Requires a.Cols() == b.Rows(); otherwise returns a DimensionMismatch error
// naming both shapes. The result has shape (a.Rows() × b.Cols()).
//
// Runs in O(a.rows·a.cols·b.cols).
func Multiply(a, b *Matrix) (*Matrix, error) {
	if a.cols != b.rows {
		return nil, mismatch("Multiply", a.Shape(), b.Shape())
	}

	result := Zero(a.rows, b.cols)
	for i := 0; i < a.rows; i++ {
		aRow := a.data[i*a.cols : (i+1)*a.cols]
		out := result.data[i*b.cols : (i+1)*b.cols]
		// i-k-j order keeps the inner loop on contiguous memory.
		for k, aik := range aRow {
			if aik == 0 {
				continue
			}
			bRow := b.data[k*b.cols : (k+1)*b.cols]
			for j, bkj := range bRow {
				out[j] += aik * bkj
			}
		}
	}
	return result, nil
}

// Add returns a + b. Shapes must be identical.
func Add(a, b *Matrix) (*Matrix, error) {
	return zipWith("Add", a, b, func(x, y float64) float64 { return x + y })
}

// Subtract returns a - b. Shapes must be identical.
func Subtract(a, b *Matrix) (*Matrix, error) {
	return zipWith("Subtract", a, b, func(x, y float64) float64 { return x - y })
}

// Hadamard returns the elementwise product a ⊙ b. Shapes must be identical.
func Hadamard(a, b *Matrix) (*Matrix, error) {
	return zipWith("Hadamard", a, b, func(x, y float64) float64 { return x * y })
}

// ScalarMultiply returns c·m.
func ScalarMultiply(c float64, m *Matrix) *Matrix {
	result := Zero(m.rows, m.cols)
	for i, v := range m.data {
		result.data[i] = c * v
	}
	return result
}

func zipWith(op string, a, b *Matrix, f func(x, y float64) float64) (*Matrix, error) {
	if !a.Shape().Equal(b.Shape()) {
		return nil, mismatch(op, a.Shape(), b.Shape())
	}
	result := Zero(a.rows, a.cols)
	for i := range a.data {
		result.data[i] = f(a.data[i], b.data[i])
	}
	return result, nil
}
