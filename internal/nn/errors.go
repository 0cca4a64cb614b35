package nn

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrInvalidSizes    = errors.New("invalid layer sizes")
	ErrInputSize       = errors.New("input size mismatch")
	ErrExpectationSize = errors.New("expectation size mismatch")
	ErrParameterShape  = errors.New("parameter shape mismatch")
)

// SizeError reports an example vector whose length disagrees with the
// network's configured layer width.
//
// Kind is ErrInputSize or ErrExpectationSize and is exposed through Unwrap,
// so callers can use errors.Is(err, nn.ErrInputSize).
type SizeError struct {
	Kind error // ErrInputSize or ErrExpectationSize
	Want int   // Configured layer width
	Got  int   // Length of the offending vector
}

// Error implements the error interface.
func (e *SizeError) Error() string {
	return fmt.Sprintf("%v: want %d values, got %d", e.Kind, e.Want, e.Got)
}

// Unwrap returns the error kind.
func (e *SizeError) Unwrap() error {
	return e.Kind
}
