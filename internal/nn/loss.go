package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/densenet/internal/parallel"
)

// Cost computes the quadratic cost ½·Σ(a - y)² of one output against its
// expected vector.
//
// The ½ makes ∂C/∂a = a - y, which is the error term used by Backpropagate.
//
// Returns an ExpectationSizeError if the lengths differ.
func Cost(output, expected []float64) (float64, error) {
	if len(output) != len(expected) {
		return 0, &SizeError{Kind: ErrExpectationSize, Want: len(output), Got: len(expected)}
	}
	var sum float64
	for i := range output {
		d := output[i] - expected[i]
		sum += d * d
	}
	return 0.5 * sum, nil
}

// Argmax returns the index of the largest value, or -1 for an empty slice.
// Ties resolve to the lowest index.
func Argmax(values []float64) int {
	best := -1
	bestVal := math.Inf(-1)
	for i, v := range values {
		if v > bestVal {
			best, bestVal = i, v
		}
	}
	return best
}

// Evaluation summarizes a network's performance over a set of examples.
type Evaluation struct {
	Examples int     // Number of examples evaluated
	Correct  int     // Examples whose output argmax matches the expected argmax
	MeanCost float64 // Mean quadratic cost
}

// Accuracy returns Correct/Examples, or 0 when nothing was evaluated.
func (e Evaluation) Accuracy() float64 {
	if e.Examples == 0 {
		return 0
	}
	return float64(e.Correct) / float64(e.Examples)
}

// Evaluate runs Predict over every example and aggregates cost and
// argmax accuracy. It does not modify the network.
//
// Predictions fan out per the network's parallel config; aggregation runs in
// example order, so the result does not depend on scheduling.
func (n *Network) Evaluate(examples []Example) (Evaluation, error) {
	for i, ex := range examples {
		if err := n.CheckExample(ex); err != nil {
			return Evaluation{}, fmt.Errorf("example %d: %w", i, err)
		}
	}

	outputs := make([][]float64, len(examples))
	errs := make([]error, len(examples))
	parallel.For(len(examples), func(i int) {
		outputs[i], errs[i] = n.Predict(examples[i].Input)
	}, n.parallel)

	var ev Evaluation
	var total float64
	for i, ex := range examples {
		if errs[i] != nil {
			return Evaluation{}, fmt.Errorf("example %d: %w", i, errs[i])
		}
		c, err := Cost(outputs[i], ex.Expected)
		if err != nil {
			return Evaluation{}, fmt.Errorf("example %d: %w", i, err)
		}
		total += c
		ev.Examples++
		if Argmax(outputs[i]) == Argmax(ex.Expected) {
			ev.Correct++
		}
	}
	if ev.Examples > 0 {
		ev.MeanCost = total / float64(ev.Examples)
	}
	return ev, nil
}
