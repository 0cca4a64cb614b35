package serialization

import (
	"fmt"
	"math"
)

// validateTensors checks the tensor table against the layer sizes and
// returns the total payload size in bytes.
func validateTensors(h *Header) (int64, error) {
	if len(h.Sizes) < 2 {
		return 0, fmt.Errorf("%w: sizes %v", ErrInvalidTensor, h.Sizes)
	}
	layers := len(h.Sizes) - 1
	if len(h.Tensors) != 2*layers {
		return 0, fmt.Errorf("%w: want %d tensors for %d layers, got %d", ErrInvalidTensor, 2*layers, layers, len(h.Tensors))
	}

	var offset int64
	for i, meta := range h.Tensors {
		layer := i / 2
		name, rows, cols := weightName(layer), h.Sizes[layer+1], h.Sizes[layer]
		if i%2 == 1 {
			name, cols = biasName(layer), 1
		}
		if rows <= 0 || cols <= 0 {
			return 0, fmt.Errorf("%w: sizes %v", ErrInvalidTensor, h.Sizes)
		}
		if meta.Name != name {
			return 0, fmt.Errorf("%w: tensor %d is %q, want %q", ErrInvalidTensor, i, meta.Name, name)
		}
		if len(meta.Shape) != 2 || meta.Shape[0] != rows || meta.Shape[1] != cols {
			return 0, fmt.Errorf("%w: %s has shape %v, want [%d %d]", ErrInvalidTensor, name, meta.Shape, rows, cols)
		}
		want := int64(rows) * int64(cols) * bytesPerValue
		if meta.Offset != offset || meta.Size != want {
			return 0, fmt.Errorf("%w: %s at offset %d size %d, want offset %d size %d",
				ErrInvalidTensor, name, meta.Offset, meta.Size, offset, want)
		}
		offset += want
		if offset > math.MaxInt32*int64(bytesPerValue) {
			return 0, fmt.Errorf("%w: payload too large", ErrInvalidTensor)
		}
	}
	return offset, nil
}
