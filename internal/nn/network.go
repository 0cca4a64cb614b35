package nn

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/born-ml/densenet/internal/matrix"
	"github.com/born-ml/densenet/internal/parallel"
)

// Example is one (input, expected output) training pair.
//
// Input must have sizes[0] entries and Expected sizes[last] entries.
// Normalization and encoding are the dataset loader's job.
type Example struct {
	Input    []float64
	Expected []float64
}

// Network is a fully connected feedforward network with sigmoid units.
//
// For layer widths sizes = [n0, n1, ..., nL]:
//   - weights[i] has shape (n(i+1) × n(i)) and maps activations[i] into zValues[i+1]
//   - biases[i] has shape (n(i+1) × 1)
//   - activations[i] and zValues[i] are (n(i) × 1) column vectors
//
// Weights and biases are initialized once by New and afterwards mutated only
// by UpdateMiniBatch (and SetParameters when restoring a saved model).
// Activations and zValues hold the trace of the most recent FeedForward or
// Backpropagate call; accessors return copies.
//
// Predict and Evaluate may be called concurrently. Calls that record a trace
// or update parameters serialize on an internal lock.
type Network struct {
	mu sync.RWMutex

	sizes       []int
	activations []*matrix.Matrix
	zValues     []*matrix.Matrix
	weights     []*matrix.Matrix
	biases      []*matrix.Matrix

	parallel parallel.Config
}

// trace holds the per-layer state of one forward pass.
type trace struct {
	activations []*matrix.Matrix
	zValues     []*matrix.Matrix
}

type options struct {
	init     Initializer
	parallel parallel.Config
}

// Option configures New.
type Option func(*options)

// WithSeed initializes parameters from a standard normal over a PCG source
// seeded with seed.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.init = NewNormalInitializer(newSeededSource(seed))
	}
}

// WithSource initializes parameters from a standard normal over src.
func WithSource(src rand.Source) Option {
	return func(o *options) {
		o.init = NewNormalInitializer(src)
	}
}

// WithInitializer replaces the parameter initializer.
func WithInitializer(init Initializer) Option {
	return func(o *options) {
		o.init = init
	}
}

// WithParallel sets how mini-batch examples are fanned out.
func WithParallel(cfg parallel.Config) Option {
	return func(o *options) {
		o.parallel = cfg
	}
}

// New creates a network with the given layer widths.
//
// Parameters:
//   - sizes: Layer widths, input first. At least two layers, every width > 0.
//   - opts: WithSeed, WithSource, WithInitializer, WithParallel
//
// Every weight and bias entry is sampled from N(0, 1) unless another
// Initializer is supplied. Without WithSeed or WithSource the source is
// seeded randomly.
//
// Example:
//
//	net, err := nn.New([]int{784, 30, 10}, nn.WithSeed(42))
func New(sizes []int, opts ...Option) (*Network, error) {
	if len(sizes) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 layers, got %d", ErrInvalidSizes, len(sizes))
	}
	for i, s := range sizes {
		if s <= 0 {
			return nil, fmt.Errorf("%w: layer %d has width %d (must be > 0)", ErrInvalidSizes, i, s)
		}
	}

	o := options{parallel: parallel.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.init == nil {
		//nolint:gosec // Weight initialization is not security-critical.
		o.init = NewNormalInitializer(newSeededSource(rand.Uint64()))
	}

	n := &Network{
		sizes:    append([]int(nil), sizes...),
		parallel: o.parallel,
	}

	numLayers := len(sizes)
	n.activations = make([]*matrix.Matrix, numLayers)
	n.zValues = make([]*matrix.Matrix, numLayers)
	for i, s := range sizes {
		n.activations[i] = matrix.Zero(s, 1)
		n.zValues[i] = matrix.Zero(s, 1)
	}

	n.weights = make([]*matrix.Matrix, numLayers-1)
	n.biases = make([]*matrix.Matrix, numLayers-1)
	for i := 0; i < numLayers-1; i++ {
		n.weights[i] = matrix.ApplyFunction(o.init.Sampler(), matrix.Zero(sizes[i+1], sizes[i]))
		n.biases[i] = matrix.ApplyFunction(o.init.Sampler(), matrix.Zero(sizes[i+1], 1))
	}

	return n, nil
}

// Sizes returns a copy of the layer widths.
func (n *Network) Sizes() []int {
	return append([]int(nil), n.sizes...)
}

// NumLayers returns len(Sizes()).
func (n *Network) NumLayers() int {
	return len(n.sizes)
}

// FeedForward runs a forward pass with input as activations[0] and returns
// the output layer's activations.
//
// For every layer: z = W·a + b, a' = σ(z). The full trace is recorded in the
// network. On error the recorded trace is left unchanged; an input whose
// length disagrees with sizes[0] surfaces as a matrix.ErrDimensionMismatch.
func (n *Network) FeedForward(input []float64) ([]float64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	tr, err := n.forward(matrix.FromVector(input, true))
	if err != nil {
		return nil, err
	}
	n.record(tr)
	return tr.output(), nil
}

// Predict is FeedForward without recording the trace. Safe for concurrent use.
func (n *Network) Predict(input []float64) ([]float64, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	tr, err := n.forward(matrix.FromVector(input, true))
	if err != nil {
		return nil, err
	}
	return tr.output(), nil
}

// Backpropagate computes the cost gradient for a single example.
//
// It validates the example against the layer widths (ErrInputSize,
// ErrExpectationSize), runs and records a forward pass, and propagates the
// error signal backwards:
//
//	δ[L] = (a[L] - y) ⊙ σ'(z[L])
//	δ[i] = (W[i]ᵗ · δ[i+1]) ⊙ σ'(z[i])      for i = L-1 .. 1
//	∇b[i] = δ[i+1]
//	∇W[i] = δ[i+1] · a[i]ᵗ
//
// The weights and biases are not modified.
func (n *Network) Backpropagate(input, expected []float64) (*Gradients, error) {
	ex := Example{Input: input, Expected: expected}
	if err := n.CheckExample(ex); err != nil {
		return nil, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	g, tr, err := n.backprop(ex)
	if err != nil {
		return nil, err
	}
	n.record(tr)
	return g, nil
}

// UpdateMiniBatch applies one step of gradient descent using the summed
// gradients of every example in batch:
//
//	W[i] -= (η / |batch|) · Σ ∇W[i]
//	b[i] -= (η / |batch|) · Σ ∇b[i]
//
// All gradients are computed against the same parameter snapshot, possibly
// in parallel, and the update is applied in one step afterwards. If any
// example is malformed nothing is updated and the error names its index.
// An empty batch is a no-op.
func (n *Network) UpdateMiniBatch(batch []Example, learningRate float64) error {
	if len(batch) == 0 {
		return nil
	}
	for i, ex := range batch {
		if err := n.CheckExample(ex); err != nil {
			return fmt.Errorf("example %d: %w", i, err)
		}
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	grads := make([]*Gradients, len(batch))
	traces := make([]*trace, len(batch))
	err := parallel.ForErr(len(batch), func(k int) error {
		g, tr, err := n.backprop(batch[k])
		if err != nil {
			return fmt.Errorf("example %d: %w", k, err)
		}
		grads[k], traces[k] = g, tr
		return nil
	}, n.parallel)
	if err != nil {
		return err
	}

	// Summation runs in batch order so the result does not depend on how the
	// work was split across goroutines.
	sum := zeroGradients(n.weights, n.biases)
	for _, g := range grads {
		if err := sum.add(g); err != nil {
			return err
		}
	}

	scale := learningRate / float64(len(batch))
	weights := make([]*matrix.Matrix, len(n.weights))
	biases := make([]*matrix.Matrix, len(n.biases))
	for i := range n.weights {
		if weights[i], err = matrix.Subtract(n.weights[i], matrix.ScalarMultiply(scale, sum.Weights[i])); err != nil {
			return fmt.Errorf("update weights[%d]: %w", i, err)
		}
		if biases[i], err = matrix.Subtract(n.biases[i], matrix.ScalarMultiply(scale, sum.Biases[i])); err != nil {
			return fmt.Errorf("update biases[%d]: %w", i, err)
		}
	}

	n.weights, n.biases = weights, biases
	n.record(traces[len(traces)-1])
	return nil
}

// TrainOnBatch wraps UpdateMiniBatch.
func (n *Network) TrainOnBatch(batch []Example, learningRate float64) error {
	return n.UpdateMiniBatch(batch, learningRate)
}

// Weights returns deep copies of the weight matrices.
func (n *Network) Weights() []*matrix.Matrix {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return cloneAll(n.weights)
}

// Biases returns deep copies of the bias vectors.
func (n *Network) Biases() []*matrix.Matrix {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return cloneAll(n.biases)
}

// Activations returns deep copies of the activations recorded by the last
// FeedForward, Backpropagate or UpdateMiniBatch call.
func (n *Network) Activations() []*matrix.Matrix {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return cloneAll(n.activations)
}

// ZValues returns deep copies of the recorded pre-activations.
// ZValues()[0] is always zero.
func (n *Network) ZValues() []*matrix.Matrix {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return cloneAll(n.zValues)
}

// SetParameters replaces every weight and bias matrix with a copy of the
// given ones. Shapes must match the network's layer widths exactly.
//
// This is the restore path for persisted models.
func (n *Network) SetParameters(weights, biases []*matrix.Matrix) error {
	if len(weights) != len(n.sizes)-1 || len(biases) != len(n.sizes)-1 {
		return fmt.Errorf("%w: want %d weight and bias matrices, got %d and %d",
			ErrParameterShape, len(n.sizes)-1, len(weights), len(biases))
	}
	for i := range weights {
		wantW := matrix.Shape{Rows: n.sizes[i+1], Cols: n.sizes[i]}
		if !weights[i].Shape().Equal(wantW) {
			return fmt.Errorf("%w: weights[%d] is %v, want %v", ErrParameterShape, i, weights[i].Shape(), wantW)
		}
		wantB := matrix.Shape{Rows: n.sizes[i+1], Cols: 1}
		if !biases[i].Shape().Equal(wantB) {
			return fmt.Errorf("%w: biases[%d] is %v, want %v", ErrParameterShape, i, biases[i].Shape(), wantB)
		}
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.weights = cloneAll(weights)
	n.biases = cloneAll(biases)
	return nil
}

// CheckExample reports a *SizeError if ex does not fit the layer widths.
func (n *Network) CheckExample(ex Example) error {
	if len(ex.Input) != n.sizes[0] {
		return &SizeError{Kind: ErrInputSize, Want: n.sizes[0], Got: len(ex.Input)}
	}
	if last := n.sizes[len(n.sizes)-1]; len(ex.Expected) != last {
		return &SizeError{Kind: ErrExpectationSize, Want: last, Got: len(ex.Expected)}
	}
	return nil
}

// forward runs a forward pass without touching recorded state.
// Callers must hold n.mu.
func (n *Network) forward(input *matrix.Matrix) (*trace, error) {
	numLayers := len(n.sizes)
	tr := &trace{
		activations: make([]*matrix.Matrix, numLayers),
		zValues:     make([]*matrix.Matrix, numLayers),
	}
	tr.activations[0] = input
	tr.zValues[0] = matrix.Zero(n.sizes[0], 1)

	for i := 0; i < numLayers-1; i++ {
		wa, err := matrix.Multiply(n.weights[i], tr.activations[i])
		if err != nil {
			return nil, fmt.Errorf("feed forward layer %d: %w", i+1, err)
		}
		z, err := matrix.Add(wa, n.biases[i])
		if err != nil {
			return nil, fmt.Errorf("feed forward layer %d: %w", i+1, err)
		}
		tr.zValues[i+1] = z
		tr.activations[i+1] = matrix.ApplyFunction(Sigmoid, z)
	}
	return tr, nil
}

// backprop computes the gradients for one validated example.
// Callers must hold n.mu (read or write).
func (n *Network) backprop(ex Example) (*Gradients, *trace, error) {
	tr, err := n.forward(matrix.FromVector(ex.Input, true))
	if err != nil {
		return nil, nil, err
	}

	last := len(n.sizes) - 1
	g := &Gradients{
		Weights: make([]*matrix.Matrix, last),
		Biases:  make([]*matrix.Matrix, last),
	}

	costDerivative, err := matrix.Subtract(tr.activations[last], matrix.FromVector(ex.Expected, true))
	if err != nil {
		return nil, nil, fmt.Errorf("cost derivative: %w", err)
	}
	delta, err := matrix.Hadamard(costDerivative, matrix.ApplyFunction(SigmoidPrime, tr.zValues[last]))
	if err != nil {
		return nil, nil, fmt.Errorf("output delta: %w", err)
	}

	// delta holds δ[i+1] at the top of each iteration.
	for i := last - 1; i >= 0; i-- {
		g.Biases[i] = delta
		if g.Weights[i], err = matrix.Multiply(delta, tr.activations[i].Transpose()); err != nil {
			return nil, nil, fmt.Errorf("weight gradient %d: %w", i, err)
		}
		if i == 0 {
			break
		}
		back, err := matrix.Multiply(n.weights[i].Transpose(), delta)
		if err != nil {
			return nil, nil, fmt.Errorf("delta %d: %w", i, err)
		}
		if delta, err = matrix.Hadamard(back, matrix.ApplyFunction(SigmoidPrime, tr.zValues[i])); err != nil {
			return nil, nil, fmt.Errorf("delta %d: %w", i, err)
		}
	}

	return g, tr, nil
}

// record stores tr as the current activations/zValues. Callers hold n.mu.
func (n *Network) record(tr *trace) {
	n.activations = tr.activations
	n.zValues = tr.zValues
}

func (tr *trace) output() []float64 {
	return tr.activations[len(tr.activations)-1].Data()
}

func cloneAll(ms []*matrix.Matrix) []*matrix.Matrix {
	out := make([]*matrix.Matrix, len(ms))
	for i, m := range ms {
		out[i] = m.Clone()
	}
	return out
}
