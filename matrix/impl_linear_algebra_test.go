package matrix_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/fluxgrid/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEigen_Symmetric2x2(t *testing.T) {
	// Hessian of a saddle: eigenvalues 3 and -1.
	m := MustFrom(t, [][]float64{{1, 2}, {2, 1}})
	eigs, q, err := matrix.Eigen(m, 1e-12, 50)
	require.NoError(t, err)
	require.Len(t, eigs, 2)

	lo, hi := math.Min(eigs[0], eigs[1]), math.Max(eigs[0], eigs[1])
	assert.InDelta(t, -1.0, lo, 1e-12)
	assert.InDelta(t, 3.0, hi, 1e-12)

	// A·v = λ·v for each column of Q.
	for k := 0; k < 2; k++ {
		v := []float64{MustAt(t, q, 0, k), MustAt(t, q, 1, k)}
		assert.InDelta(t, eigs[k]*v[0], v[0]+2*v[1], 1e-12)
		assert.InDelta(t, eigs[k]*v[1], 2*v[0]+v[1], 1e-12)
		assert.InDelta(t, 1.0, math.Hypot(v[0], v[1]), 1e-12)
	}
}

func TestEigen_Diagonal(t *testing.T) {
	m := MustFrom(t, [][]float64{{2, 0}, {0, -5}})
	eigs, _, err := matrix.Eigen(m, 1e-12, 10)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, -5}, eigs)
}

func TestEigen_Errors(t *testing.T) {
	_, _, err := matrix.Eigen(MustFrom(t, [][]float64{{1, 2}, {0, 1}}), 1e-12, 10)
	assert.ErrorIs(t, err, matrix.ErrAsymmetry)
	_, _, err = matrix.Eigen(MustDense(t, 2, 3), 1e-12, 10)
	assert.ErrorIs(t, err, matrix.ErrNonSquare)
}

func TestSolve(t *testing.T) {
	cases := []struct {
		name string
		a    [][]float64
		b    []float64
		want []float64
	}{
		{"identity", [][]float64{{1, 0}, {0, 1}}, []float64{3, 4}, []float64{3, 4}},
		{"needs pivot", [][]float64{{0, 1}, {1, 0}}, []float64{2, 5}, []float64{5, 2}},
		{"3x3", [][]float64{{2, 1, -1}, {-3, -1, 2}, {-2, 1, 2}}, []float64{8, -11, -3}, []float64{2, 3, -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			x, err := matrix.Solve(MustFrom(t, tc.a), tc.b)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tc.want, x, 1e-12)
		})
	}
}

func TestSolve_Singular(t *testing.T) {
	_, err := matrix.Solve(MustFrom(t, [][]float64{{1, 2}, {2, 4}}), []float64{1, 2})
	assert.ErrorIs(t, err, matrix.ErrSingular)
	_, err = matrix.Solve(MustDense(t, 2, 2), []float64{1})
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestTranspose(t *testing.T) {
	m := MustFrom(t, [][]float64{{1, 2, 3}})
	tr, err := matrix.Transpose(m)
	require.NoError(t, err)
	assert.Equal(t, 3, tr.Rows())
	assert.Equal(t, 3.0, MustAt(t, tr, 2, 0))
}
