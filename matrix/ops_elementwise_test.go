package matrix_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/fluxgrid/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementwise_Table(t *testing.T) {
	a := MustFrom(t, [][]float64{{1, 2}, {3, 4}})
	b := MustFrom(t, [][]float64{{2, 2}, {2, 8}})

	cases := []struct {
		name string
		op   func(a, b *matrix.Dense) (*matrix.Dense, error)
		want [][]float64
	}{
		{"Add", matrix.Add, [][]float64{{3, 4}, {5, 12}}},
		{"Sub", matrix.Sub, [][]float64{{-1, 0}, {1, -4}}},
		{"Hadamard", matrix.Hadamard, [][]float64{{2, 4}, {6, 32}}},
		{"Divide", matrix.Divide, [][]float64{{0.5, 1}, {1.5, 0.5}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.op(a, b)
			require.NoError(t, err)
			assert.InDeltaSlice(t, MustFrom(t, tc.want).Data(), got.Data(), 1e-15)
			assert.Equal(t, 1.0, MustAt(t, a, 0, 0), "operand must not be mutated")
		})
	}
}

func TestElementwise_ShapeMismatch(t *testing.T) {
	a := MustDense(t, 2, 2)
	b := MustDense(t, 2, 3)
	_, err := matrix.Add(a, b)
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.Hadamard(a, nil)
	assert.ErrorIs(t, err, matrix.ErrNilMatrix)
	_, err = matrix.Divide(b, a)
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestUnaryKernels(t *testing.T) {
	a := MustFrom(t, [][]float64{{1, 4}, {9, 16}})

	s, err := matrix.Scale(a, -2)
	require.NoError(t, err)
	assert.Equal(t, -8.0, MustAt(t, s, 0, 1))

	r, err := matrix.Map(a, math.Sqrt)
	require.NoError(t, err)
	assert.Equal(t, 4.0, MustAt(t, r, 1, 1))

	q, err := matrix.Sqrt(a)
	require.NoError(t, err)
	assert.Equal(t, 3.0, MustAt(t, q, 1, 0))

	w, err := matrix.Pow(a, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 8.0, MustAt(t, w, 0, 1))
}
