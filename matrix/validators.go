// SPDX-License-Identifier: MIT
// Package matrix: central validators.
// Kernels call these before touching data and wrap the returned sentinel with
// their operation tag.

package matrix

import "math"

// ValidateNotNil returns ErrNilMatrix when m is nil.
func ValidateNotNil(m *Dense) error {
	if m == nil {
		return ErrNilMatrix
	}

	return nil
}

// ValidateSameShape returns ErrDimensionMismatch unless a and b share a shape.
func ValidateSameShape(a, b *Dense) error {
	if a.r != b.r || a.c != b.c {
		return ErrDimensionMismatch
	}

	return nil
}

// ValidateBinarySameShape combines the nil and shape checks for binary kernels.
func ValidateBinarySameShape(a, b *Dense) error {
	if err := ValidateNotNil(a); err != nil {
		return err
	}
	if err := ValidateNotNil(b); err != nil {
		return err
	}

	return ValidateSameShape(a, b)
}

// ValidateSquare returns ErrNonSquare unless m is n×n.
func ValidateSquare(m *Dense) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	if m.r != m.c {
		return ErrNonSquare
	}

	return nil
}

// ValidateVecLen returns ErrDimensionMismatch unless len(x) == n.
func ValidateVecLen(x []float64, n int) error {
	if len(x) != n {
		return ErrDimensionMismatch
	}

	return nil
}

// ValidateSymmetric checks squareness and |a(i,j) - a(j,i)| <= eps for all i<j.
func ValidateSymmetric(m *Dense, eps float64) error {
	if err := ValidateSquare(m); err != nil {
		return err
	}
	n := m.r
	var i, j int
	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ {
			if math.Abs(m.data[i*n+j]-m.data[j*n+i]) > eps {
				return ErrAsymmetry
			}
		}
	}

	return nil
}
