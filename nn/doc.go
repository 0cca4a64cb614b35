// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides fully connected sigmoid networks trained with
// mini-batch stochastic gradient descent.
//
// # Overview
//
// This package contains:
//   - Network: construction, FeedForward, Predict, Backpropagate, UpdateMiniBatch
//   - Activations: Sigmoid, SigmoidPrime (as matrix.Func)
//   - Cost: quadratic cost and argmax evaluation
//   - Initialization: NormalInitializer, ConstantInitializer
//
// # Basic Usage
//
//	import "github.com/born-ml/densenet/nn"
//
//	func main() {
//	    net, err := nn.New([]int{784, 30, 10}, nn.WithSeed(42))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // One SGD step over a mini-batch
//	    err = net.UpdateMiniBatch(batch, 3.0)
//
//	    // Inference
//	    output, err := net.Predict(image)
//	}
//
// # Concurrency
//
// Predict and Evaluate may run concurrently with each other. FeedForward,
// Backpropagate and UpdateMiniBatch serialize on the network's lock.
// Examples inside one mini-batch are backpropagated in parallel according
// to the ParallelConfig passed with WithParallel.
package nn
