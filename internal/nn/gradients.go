package nn

import (
	"fmt"

	"github.com/born-ml/densenet/internal/matrix"
)

// Gradients holds ∂C/∂W and ∂C/∂b for every layer.
//
// Weights[i] and Biases[i] have exactly the shapes of the network's
// weights[i] and biases[i].
type Gradients struct {
	Weights []*matrix.Matrix // ∇W, one per layer transition
	Biases  []*matrix.Matrix // ∇b, one per layer transition
}

// zeroGradients allocates zero gradients shaped like weights and biases.
func zeroGradients(weights, biases []*matrix.Matrix) *Gradients {
	g := &Gradients{
		Weights: make([]*matrix.Matrix, len(weights)),
		Biases:  make([]*matrix.Matrix, len(biases)),
	}
	for i, w := range weights {
		g.Weights[i] = matrix.Zero(w.Rows(), w.Cols())
	}
	for i, b := range biases {
		g.Biases[i] = matrix.Zero(b.Rows(), b.Cols())
	}
	return g
}

// add accumulates other into g.
func (g *Gradients) add(other *Gradients) error {
	var err error
	for i := range g.Weights {
		if g.Weights[i], err = matrix.Add(g.Weights[i], other.Weights[i]); err != nil {
			return fmt.Errorf("accumulate weights[%d]: %w", i, err)
		}
		if g.Biases[i], err = matrix.Add(g.Biases[i], other.Biases[i]); err != nil {
			return fmt.Errorf("accumulate biases[%d]: %w", i, err)
		}
	}
	return nil
}
