// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand/v2"

	"github.com/born-ml/densenet/internal/nn"
	"github.com/born-ml/densenet/internal/parallel"
)

// Network is a fully connected feedforward network with sigmoid units.
type Network = nn.Network

// Example is one (input, expected output) training pair.
type Example = nn.Example

// Gradients holds per-layer cost gradients for weights and biases.
type Gradients = nn.Gradients

// Evaluation summarizes cost and accuracy over a set of examples.
type Evaluation = nn.Evaluation

// SizeError reports an example vector of the wrong length.
type SizeError = nn.SizeError

// Option configures New.
type Option = nn.Option

// ParallelConfig controls how mini-batch examples are fanned out.
type ParallelConfig = parallel.Config

// Errors
var (
	ErrInvalidSizes    = nn.ErrInvalidSizes
	ErrInputSize       = nn.ErrInputSize
	ErrExpectationSize = nn.ErrExpectationSize
	ErrParameterShape  = nn.ErrParameterShape
)

// New creates a network with the given layer widths, input first.
//
// Example:
//
//	net, err := nn.New([]int{2, 3, 1}, nn.WithSeed(7))
func New(sizes []int, opts ...Option) (*Network, error) {
	return nn.New(sizes, opts...)
}

// WithSeed samples initial parameters from N(0, 1) over a PCG source seeded
// with seed.
func WithSeed(seed uint64) Option { return nn.WithSeed(seed) }

// WithSource samples initial parameters from N(0, 1) over src.
func WithSource(src rand.Source) Option { return nn.WithSource(src) }

// WithInitializer replaces the parameter initializer.
func WithInitializer(init Initializer) Option { return nn.WithInitializer(init) }

// WithParallel sets the mini-batch fan-out.
func WithParallel(cfg ParallelConfig) Option { return nn.WithParallel(cfg) }

// DefaultParallel uses one worker per physical core.
func DefaultParallel() ParallelConfig { return parallel.DefaultConfig() }

// Sequential backpropagates mini-batch examples one at a time.
func Sequential() ParallelConfig { return parallel.Sequential() }

// Initialization

// Initializer produces the sampler used to fill new parameter matrices.
type Initializer = nn.Initializer

// NormalInitializer draws entries from N(Mu, Sigma²).
type NormalInitializer = nn.NormalInitializer

// ConstantInitializer fills every entry with Value.
type ConstantInitializer = nn.ConstantInitializer

// NewNormalInitializer returns a standard normal initializer over src.
func NewNormalInitializer(src rand.Source) *NormalInitializer {
	return nn.NewNormalInitializer(src)
}

// Activations and cost

// Sigmoid is the elementwise logistic function.
var Sigmoid = nn.Sigmoid

// SigmoidPrime is the elementwise derivative of Sigmoid.
var SigmoidPrime = nn.SigmoidPrime

// Cost returns ½·Σ(output - expected)².
func Cost(output, expected []float64) (float64, error) { return nn.Cost(output, expected) }

// Argmax returns the index of the largest value, or -1 for an empty slice.
func Argmax(values []float64) int { return nn.Argmax(values) }
