// Package render draws grayscale images as ASCII art for the console.
package render

import (
	"fmt"
	"strings"
)

// Intensity thresholds, in thirds of 256.
const (
	lowThreshold  = 256 / 3
	highThreshold = 2 * (256 / 3)
)

// glyph maps a pixel intensity to a character:
//
//	0          ' '
//	1..84      '.'
//	85..169    'x'
//	170..255   'X'
func glyph(p byte) byte {
	switch {
	case p == 0:
		return ' '
	case int(p) < lowThreshold:
		return '.'
	case int(p) < highThreshold:
		return 'x'
	default:
		return 'X'
	}
}

// Image renders a row-major image of the given width, framing every row
// with '|'.
//
// Example output for a 3-pixel-wide image:
//
//	| .X|
//	|xX |
func Image(pixels []byte, width int) (string, error) {
	if width <= 0 || len(pixels)%width != 0 {
		return "", fmt.Errorf("render: %d pixels do not form rows of width %d", len(pixels), width)
	}

	var sb strings.Builder
	sb.Grow(len(pixels) + 3*len(pixels)/width)
	for start := 0; start < len(pixels); start += width {
		sb.WriteByte('|')
		for _, p := range pixels[start : start+width] {
			sb.WriteByte(glyph(p))
		}
		sb.WriteString("|\n")
	}
	return sb.String(), nil
}

// Normalized renders an image whose pixels are already scaled to [0, 1].
func Normalized(pixels []float64, width int) (string, error) {
	raw := make([]byte, len(pixels))
	for i, v := range pixels {
		raw[i] = byte(min(max(v, 0), 1)*255 + 0.5)
	}
	return Image(raw, width)
}

// Labeled prefixes Normalized's output with a banner naming the label.
// pixels is a network input vector in [0, 1].
func Labeled(label int, pixels []float64, width int) (string, error) {
	body, err := Normalized(pixels, width)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("================= LABEL %d\n%s", label, body), nil
}
