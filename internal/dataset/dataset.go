// Package dataset loads labelled image data in the IDX format used by MNIST
// and converts it into training examples for the network.
//
// Pixel intensities are normalized to [0, 1] and labels are one-hot encoded;
// the network itself never sees raw bytes.
package dataset

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/densenet/internal/nn"
)

// DigitClasses is the number of MNIST label classes.
const DigitClasses = 10

// Common errors.
var (
	ErrInvalidMagic   = errors.New("invalid IDX magic number")
	ErrHeaderTooLarge = errors.New("IDX header counts too large")
	ErrCountMismatch  = errors.New("image and label counts differ")
	ErrLabelRange     = errors.New("label out of range")
)

// Set is a decoded image/label dataset.
type Set struct {
	Rows   int      // Image height in pixels
	Cols   int      // Image width in pixels
	Images [][]byte // One flat Rows*Cols slice per image
	Labels []byte   // One label per image
}

// Load reads an IDX image file and its label file.
//
// Parameters:
//   - imagesPath: e.g. train-images-idx3-ubyte (".gz" is decompressed)
//   - labelsPath: e.g. train-labels-idx1-ubyte
//   - maxSamples: Maximum number of samples to keep (0 = all)
//
// Download MNIST from: http://yann.lecun.com/exdb/mnist/
func Load(imagesPath, labelsPath string, maxSamples int) (*Set, error) {
	imgFile, err := openIDX(imagesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open images: %w", err)
	}
	defer imgFile.Close()

	images, rows, cols, err := ReadImages(imgFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", imagesPath, err)
	}

	lblFile, err := openIDX(labelsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open labels: %w", err)
	}
	defer lblFile.Close()

	labels, err := ReadLabels(lblFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", labelsPath, err)
	}

	if len(images) != len(labels) {
		return nil, fmt.Errorf("%w: %d images, %d labels", ErrCountMismatch, len(images), len(labels))
	}

	if maxSamples > 0 && len(images) > maxSamples {
		images, labels = images[:maxSamples], labels[:maxSamples]
	}

	return &Set{Rows: rows, Cols: cols, Images: images, Labels: labels}, nil
}

// Len returns the number of samples.
func (s *Set) Len() int {
	return len(s.Images)
}

// Examples converts every sample into an nn.Example with normalized pixels
// and a one-hot expected vector over classes.
func (s *Set) Examples(classes int) ([]nn.Example, error) {
	if len(s.Images) != len(s.Labels) {
		return nil, fmt.Errorf("%w: %d images, %d labels", ErrCountMismatch, len(s.Images), len(s.Labels))
	}
	examples := make([]nn.Example, len(s.Images))
	for i, img := range s.Images {
		expected, err := OneHot(int(s.Labels[i]), classes)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		examples[i] = nn.Example{Input: Normalize(img), Expected: expected}
	}
	return examples, nil
}

// LoadMNIST loads an IDX image/label pair and converts it to one-hot
// examples over DigitClasses.
func LoadMNIST(imagesPath, labelsPath string, maxSamples int) ([]nn.Example, error) {
	set, err := Load(imagesPath, labelsPath, maxSamples)
	if err != nil {
		return nil, err
	}
	return set.Examples(DigitClasses)
}

// Normalize maps pixel bytes 0-255 to 0.0-1.0.
func Normalize(pixels []byte) []float64 {
	out := make([]float64, len(pixels))
	for i, p := range pixels {
		out[i] = float64(p) / 255.0
	}
	return out
}

// OneHot returns a vector of length classes with a 1 at label and 0 elsewhere.
func OneHot(label, classes int) ([]float64, error) {
	if label < 0 || label >= classes {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrLabelRange, label, classes)
	}
	v := make([]float64, classes)
	v[label] = 1
	return v, nil
}

// Shuffle permutes examples in place using r.
func Shuffle(examples []nn.Example, r *rand.Rand) {
	r.Shuffle(len(examples), func(i, j int) {
		examples[i], examples[j] = examples[j], examples[i]
	})
}

// Split returns the first (1-fraction) of examples and the remaining
// fraction. The slices share the input's backing array.
func Split(examples []nn.Example, fraction float64) (train, held []nn.Example) {
	fraction = min(max(fraction, 0), 1)
	cut := len(examples) - int(float64(len(examples))*fraction)
	return examples[:cut], examples[cut:]
}
