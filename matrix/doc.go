// SPDX-License-Identifier: MIT

// Package matrix provides the dense numerical storage and small linear-algebra
// kernels used throughout fluxgrid.
//
// What:
//
//   - Dense is a row-major float64 matrix with error-returning accessors.
//     Mesh fields (R, Z, metric coefficients, ...) are stored as Dense values,
//     one per grid location.
//   - Elementwise kernels (Add, Sub, Hadamard, Divide, Scale, Map,
//     Pow, Sqrt)
//     allocate a fresh result and never mutate their operands.
//   - Eigen diagonalises small symmetric matrices by Jacobi rotations; it is
//     used on the 2×2 Hessian of psi at X-points.
//   - Solve factorises a square system by LU with partial pivoting; it backs the
//     Newton iterations that locate critical points of psi.
//
// Complexity:
//
//   - NewDense, Clone, elementwise kernels: O(r*c).
//   - Eigen: O(maxIter * n) per sweep on n×n input.
//   - Solve: O(n³).
//
// Errors:
//
//   - ErrInvalidDimensions: non-positive shape requested.
//   - ErrOutOfRange: At/Set index outside bounds.
//   - ErrDimensionMismatch: operand shapes disagree.
//   - ErrNonSquare, ErrAsymmetry: structural preconditions violated.
//   - ErrSingular: zero pivot during elimination.
//   - ErrMatrixEigenFailed: Jacobi sweeps did not converge.
package matrix
