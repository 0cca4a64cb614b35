// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package matrix provides dense row-major float64 matrices.
//
// # Overview
//
// Matrices are values: every operation except Set returns a freshly
// allocated result and leaves its operands untouched. Shape errors are
// reported as *Error, matchable with errors.Is against ErrDimensionMismatch
// or ErrIndexOutOfRange.
//
// # Basic Usage
//
//	import "github.com/born-ml/densenet/matrix"
//
//	func main() {
//	    a := matrix.FromArray([][]float64{{1, 2}, {3, 4}})
//	    b := matrix.Identity(2)
//
//	    c, err := matrix.Multiply(a, b)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // Elementwise functions see position and value.
//	    double := matrix.Scalar(func(v float64) float64 { return 2 * v })
//	    fmt.Println(matrix.ApplyFunction(double, c))
//	}
package matrix
