package matrix

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrIndexOutOfRange   = errors.New("index out of range")
)

// Error is the single error type returned by matrix operations.
//
// It carries the operation name and the shapes involved so callers can
// report exactly which operands disagreed. Kind is one of the sentinel
// errors above and is exposed through Unwrap.
type Error struct {
	Op   string // Operation name (e.g., "Multiply", "Add", "At")
	Kind error  // ErrDimensionMismatch or ErrIndexOutOfRange
	A    Shape  // Left operand (or the indexed matrix)
	B    Shape  // Right operand, zero for unary operations
	Row  int    // Offending row for index errors
	Col  int    // Offending column for index errors
}

// Error implements the error interface.
func (e *Error) Error() string {
	if errors.Is(e.Kind, ErrIndexOutOfRange) {
		return fmt.Sprintf("matrix.%s: %v: index (%d, %d) for shape %v", e.Op, e.Kind, e.Row, e.Col, e.A)
	}
	return fmt.Sprintf("matrix.%s: %v: %v vs %v", e.Op, e.Kind, e.A, e.B)
}

// Unwrap returns the error kind.
func (e *Error) Unwrap() error {
	return e.Kind
}

func mismatch(op string, a, b Shape) error {
	return &Error{Op: op, Kind: ErrDimensionMismatch, A: a, B: b}
}

func outOfRange(op string, s Shape, row, col int) error {
	return &Error{Op: op, Kind: ErrIndexOutOfRange, A: s, Row: row, Col: col}
}
