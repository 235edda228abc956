// SPDX-License-Identifier: MIT
// Package matrix: linear-algebra kernels.
//
// Purpose:
//   - Small, dependency-free solvers used by the numerics layer: Jacobi
//     eigen-decomposition, pivoted LU solve and the tridiagonal Thomas solve.
//
// Notes:
//   - All kernels copy their input; callers' matrices are never mutated.

package matrix

import (
	"fmt"
	"math"
)

// ZeroPivot is the sentinel for detecting a zero pivot in elimination.
const ZeroPivot = 0.0

// Transpose returns mᵀ.
// Complexity: O(r*c).
func Transpose(m *Dense) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	out := &Dense{r: m.c, c: m.r, data: make([]float64, len(m.data))}
	var i, j int
	for i = 0; i < m.r; i++ {
		for j = 0; j < m.c; j++ {
			out.data[j*m.r+i] = m.data[i*m.c+j]
		}
	}

	return out, nil
}

// Eigen computes eigenvalues and eigenvectors of a symmetric matrix via Jacobi sweeps.
//
// Implementation:
//   - Stage 1: validate symmetry within tol; copy A and start Q = I.
//   - Stage 2: repeatedly annihilate the largest off-diagonal |A[p,q]| with a
//     plane rotation, accumulating the rotation into Q.
//   - Stage 3: stop when max|A[p,q]| < tol; eigenvalues are diag(A), the
//     eigenvector for eigs[k] is column k of Q.
//
// Errors:
//   - ErrNonSquare, ErrAsymmetry, ErrMatrixEigenFailed (wrapped with "Eigen").
//
// Complexity:
//   - Time O(maxIter * n²) worst case, Space O(n²).
func Eigen(m *Dense, tol float64, maxIter int) ([]float64, *Dense, error) {
	if err := ValidateSymmetric(m, tol); err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	n := m.r
	a := m.Clone()
	q, err := NewDense(n, n)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	var i, j int
	for i = 0; i < n; i++ {
		q.data[i*n+i] = 1.0
	}

	var (
		iter               int
		p, r               int
		maxOff, off        float64
		app, arr, apr      float64
		aip, air, qip, qir float64
		theta, t, c, s     float64
	)
	for iter = 0; iter < maxIter; iter++ {
		// J.1: pivot (p,r) maximising |A[p,r]|
		maxOff = 0
		for i = 0; i < n; i++ {
			for j = i + 1; j < n; j++ {
				off = math.Abs(a.data[i*n+j])
				if off > maxOff {
					maxOff, p, r = off, i, j
				}
			}
		}
		// J.2: converged
		if maxOff < tol || maxOff == 0 {
			break
		}

		// J.3: rotation parameters
		app = a.data[p*n+p]
		arr = a.data[r*n+r]
		apr = a.data[p*n+r]
		theta = (arr - app) / (2 * apr)
		t = math.Copysign(1.0/(math.Abs(theta)+math.Hypot(theta, 1)), theta)
		c = 1.0 / math.Sqrt(t*t+1)
		s = t * c

		// J.4: rotate A
		for i = 0; i < n; i++ {
			if i == p || i == r {
				continue
			}
			aip = a.data[i*n+p]
			air = a.data[i*n+r]
			a.data[i*n+p], a.data[p*n+i] = c*aip-s*air, c*aip-s*air
			a.data[i*n+r], a.data[r*n+i] = s*aip+c*air, s*aip+c*air
		}
		a.data[p*n+p] = c*c*app - 2*c*s*apr + s*s*arr
		a.data[r*n+r] = s*s*app + 2*c*s*apr + c*c*arr
		a.data[p*n+r], a.data[r*n+p] = 0, 0

		// J.5: accumulate into Q
		for i = 0; i < n; i++ {
			qip = q.data[i*n+p]
			qir = q.data[i*n+r]
			q.data[i*n+p] = c*qip - s*qir
			q.data[i*n+r] = s*qip + c*qir
		}
	}

	maxOff = 0
	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ {
			maxOff = math.Max(maxOff, math.Abs(a.data[i*n+j]))
		}
	}
	if maxOff > 0 && maxOff >= tol {
		return nil, nil, matrixErrorf(opEigen, ErrMatrixEigenFailed)
	}

	eigs := make([]float64, n)
	for i = 0; i < n; i++ {
		eigs[i] = a.data[i*n+i]
	}

	return eigs, q, nil
}

// Solve returns x with A·x = b using LU factorisation with partial pivoting.
//
// Implementation:
//   - Stage 1: copy A and b.
//   - Stage 2: for each column pick the row with the largest |pivot| and swap.
//   - Stage 3: eliminate below the pivot, then back-substitute.
//
// Errors:
//   - ErrNonSquare, ErrDimensionMismatch, ErrSingular (wrapped with "Solve").
//
// Complexity:
//   - Time O(n³), Space O(n²).
func Solve(a *Dense, b []float64) ([]float64, error) {
	if err := ValidateSquare(a); err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	n := a.r
	if err := ValidateVecLen(b, n); err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	lu := a.Clone()
	x := append([]float64(nil), b...)

	var i, j, k, piv int
	var f, best float64
	for k = 0; k < n; k++ {
		piv, best = k, math.Abs(lu.data[k*n+k])
		for i = k + 1; i < n; i++ {
			if v := math.Abs(lu.data[i*n+k]); v > best {
				piv, best = i, v
			}
		}
		if best == ZeroPivot {
			return nil, matrixErrorf(opSolve, fmt.Errorf("column %d: %w", k, ErrSingular))
		}
		if piv != k {
			for j = 0; j < n; j++ {
				lu.data[k*n+j], lu.data[piv*n+j] = lu.data[piv*n+j], lu.data[k*n+j]
			}
			x[k], x[piv] = x[piv], x[k]
		}
		for i = k + 1; i < n; i++ {
			f = lu.data[i*n+k] / lu.data[k*n+k]
			lu.data[i*n+k] = f
			for j = k + 1; j < n; j++ {
				lu.data[i*n+j] -= f * lu.data[k*n+j]
			}
			x[i] -= f * x[k]
		}
	}
	for i = n - 1; i >= 0; i-- {
		for j = i + 1; j < n; j++ {
			x[i] -= lu.data[i*n+j] * x[j]
		}
		x[i] /= lu.data[i*n+i]
	}

	return x, nil
}
