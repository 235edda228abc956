package matrix_test

import (
	"testing"

	"github.com/katalvlaran/fluxgrid/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDense_InvalidDimensions(t *testing.T) {
	cases := []struct {
		name string
		r, c int
	}{
		{"zero rows", 0, 3},
		{"zero cols", 3, 0},
		{"negative", -1, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := matrix.NewDense(tc.r, tc.c)
			assert.ErrorIs(t, err, matrix.ErrInvalidDimensions)
		})
	}
}

func TestDense_AtSetBounds(t *testing.T) {
	m := MustDense(t, 2, 3)
	require.NoError(t, m.Set(1, 2, 4.5))
	assert.Equal(t, 4.5, MustAt(t, m, 1, 2))

	_, err := m.At(2, 0)
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)
	assert.ErrorIs(t, m.Set(0, -1, 1), matrix.ErrOutOfRange)
}

func TestNewDenseFrom_Ragged(t *testing.T) {
	_, err := matrix.NewDenseFrom([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, matrix.ErrRagged)

	_, err = matrix.NewDenseFrom(nil)
	assert.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

func TestDense_CloneIsIndependent(t *testing.T) {
	m := MustFrom(t, [][]float64{{1, 2}, {3, 4}})
	cp := m.Clone()
	require.NoError(t, cp.Set(0, 0, 9))
	assert.Equal(t, 1.0, MustAt(t, m, 0, 0))
	assert.Equal(t, 9.0, MustAt(t, cp, 0, 0))
}

func TestDense_RowSharesStorage(t *testing.T) {
	m := MustFrom(t, [][]float64{{1, 2}, {3, 4}})
	row := m.Row(1)
	row[0] = 7
	assert.Equal(t, 7.0, MustAt(t, m, 1, 0))
	assert.Len(t, row, 2)
}

func TestDense_ApplyAndDo(t *testing.T) {
	m := MustDense(t, 2, 2)
	m.Apply(func(i, j int, _ float64) float64 { return float64(10*i + j) })

	var sum float64
	m.Do(func(_, _ int, v float64) { sum += v })
	assert.Equal(t, 0.0+1+10+11, sum)
	assert.Equal(t, "[0, 1]\n[10, 11]\n", m.String())
}

func TestFull(t *testing.T) {
	m, err := matrix.Full(2, 3, 1.5)
	require.NoError(t, err)
	r, c := m.Shape()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	for _, v := range m.Data() {
		assert.Equal(t, 1.5, v)
	}
}
