package matrix

import "fmt"

// Shape is the (rows, cols) pair of a matrix.
type Shape struct {
	Rows int
	Cols int
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	return s.Rows == other.Rows && s.Cols == other.Cols
}

// NumElements returns rows*cols.
func (s Shape) NumElements() int {
	return s.Rows * s.Cols
}

// Validate checks that neither dimension is negative.
func (s Shape) Validate() error {
	if s.Rows < 0 || s.Cols < 0 {
		return fmt.Errorf("invalid shape %v (dimensions must be >= 0)", s)
	}
	return nil
}

// String formats the shape as (rows×cols).
func (s Shape) String() string {
	return fmt.Sprintf("(%d×%d)", s.Rows, s.Cols)
}
