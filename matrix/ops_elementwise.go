// SPDX-License-Identifier: MIT
// Package matrix: elementwise kernels.
// Every kernel validates its operands, allocates one result and walks the flat
// buffers in a single deterministic loop. Operands are never mutated.

package matrix

import (
	"fmt"
	"math"
)

// Operation name constants for unified error wrapping.
const (
	opAdd       = "Add"
	opSub       = "Sub"
	opHadamard  = "Hadamard"
	opDivide    = "Divide"
	opScale     = "Scale"
	opMap       = "Map"
	opPow       = "Pow"
	opSqrt      = "Sqrt"
	opTranspose = "Transpose"
	opEigen     = "Eigen"
	opSolve     = "Solve"
)

// matrixErrorf wraps err with an operation tag, preserving the sentinel via %w.
// Call only with a non-nil err.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ewBinary applies f pairwise over two same-shaped matrices.
func ewBinary(a, b *Dense, tag string, f func(x, y float64) float64) (*Dense, error) {
	if err := ValidateBinarySameShape(a, b); err != nil {
		return nil, matrixErrorf(tag, err)
	}
	out := &Dense{r: a.r, c: a.c, data: make([]float64, len(a.data))}
	for k := range a.data {
		out.data[k] = f(a.data[k], b.data[k])
	}

	return out, nil
}

// ewUnary applies f to every element of a.
func ewUnary(a *Dense, tag string, f func(x float64) float64) (*Dense, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(tag, err)
	}
	out := &Dense{r: a.r, c: a.c, data: make([]float64, len(a.data))}
	for k := range a.data {
		out.data[k] = f(a.data[k])
	}

	return out, nil
}

// Add returns a + b.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch (wrapped with "Add").
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func Add(a, b *Dense) (*Dense, error) {
	return ewBinary(a, b, opAdd, func(x, y float64) float64 { return x + y })
}

// Sub returns a - b.
func Sub(a, b *Dense) (*Dense, error) {
	return ewBinary(a, b, opSub, func(x, y float64) float64 { return x - y })
}

// Hadamard returns the elementwise product a ⊙ b.
func Hadamard(a, b *Dense) (*Dense, error) {
	return ewBinary(a, b, opHadamard, func(x, y float64) float64 { return x * y })
}

// Divide returns the elementwise quotient a / b.
// Division by zero follows IEEE-754 (±Inf or NaN); it is not an error.
func Divide(a, b *Dense) (*Dense, error) {
	return ewBinary(a, b, opDivide, func(x, y float64) float64 { return x / y })
}

// Scale returns alpha * a.
func Scale(a *Dense, alpha float64) (*Dense, error) {
	return ewUnary(a, opScale, func(x float64) float64 { return alpha * x })
}

// Map returns f applied to every element of a.
func Map(a *Dense, f func(float64) float64) (*Dense, error) {
	return ewUnary(a, opMap, f)
}

// Pow returns a raised elementwise to the power e.
func Pow(a *Dense, e float64) (*Dense, error) {
	return ewUnary(a, opPow, func(x float64) float64 { return math.Pow(x, e) })
}

// Sqrt returns the elementwise square root of a. Negative elements give NaN.
func Sqrt(a *Dense) (*Dense, error) {
	return ewUnary(a, opSqrt, math.Sqrt)
}
