package mesh_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/fluxgrid/matrix"
	"github.com/katalvlaran/fluxgrid/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiLocationArray_Shape(t *testing.T) {
	a := mesh.NewMultiLocationArray(2, 3)
	cases := []struct {
		loc        mesh.Location
		rows, cols int
	}{
		{mesh.Centre, 2, 3},
		{mesh.XLow, 3, 3},
		{mesh.YLow, 2, 4},
		{mesh.Corners, 3, 4},
	}
	for _, tc := range cases {
		t.Run(tc.loc.String(), func(t *testing.T) {
			r, c := a.Shape(tc.loc)
			assert.Equal(t, tc.rows, r)
			assert.Equal(t, tc.cols, c)
			assert.Nil(t, a.At(tc.loc))
		})
	}

	wrong, err := matrix.NewDense(2, 3)
	require.NoError(t, err)
	assert.ErrorIs(t, a.Set(mesh.Corners, wrong), mesh.ErrShape)
	require.NoError(t, a.Set(mesh.Centre, wrong))
	assert.Same(t, wrong, a.At(mesh.Centre))
}

func TestMultiLocationArray_Arithmetic(t *testing.T) {
	a := mesh.NewMultiLocationArray(2, 2).Fill(3)
	b := mesh.NewMultiLocationArray(2, 2).Fill(2)

	sum, err := mesh.Add(a, b)
	require.NoError(t, err)
	diff, err := mesh.Sub(a, b)
	require.NoError(t, err)
	prod, err := mesh.Mul(a, b)
	require.NoError(t, err)
	quot, err := mesh.Div(a, b)
	require.NoError(t, err)

	for _, l := range mesh.Locations {
		v, err := sum.At(l).At(1, 1)
		require.NoError(t, err)
		assert.Equal(t, 5.0, v, l.String())
		v, _ = diff.At(l).At(0, 1)
		assert.Equal(t, 1.0, v, l.String())
		v, _ = prod.At(l).At(1, 0)
		assert.Equal(t, 6.0, v, l.String())
		v, _ = quot.At(l).At(0, 0)
		assert.Equal(t, 1.5, v, l.String())
	}

	v, _ := a.Scale(2).At(mesh.Corners).At(2, 2)
	assert.Equal(t, 6.0, v)
	v, _ = b.Pow(3).At(mesh.XLow).At(2, 1)
	assert.Equal(t, 8.0, v)
	v, _ = b.Sqrt().At(mesh.YLow).At(1, 2)
	assert.InDelta(t, math.Sqrt2, v, 1e-15)
	v, _ = a.Neg().At(mesh.Centre).At(0, 0)
	assert.Equal(t, -3.0, v)

	// operands are untouched
	v, _ = a.At(mesh.Centre).At(0, 0)
	assert.Equal(t, 3.0, v)
}

func TestApply(t *testing.T) {
	t.Run("unset location stays unset", func(t *testing.T) {
		a := mesh.NewMultiLocationArray(1, 1).Fill(1)
		b := mesh.NewMultiLocationArray(1, 1)
		c, err := matrix.NewDense(1, 1)
		require.NoError(t, err)
		require.NoError(t, b.Set(mesh.Centre, c))

		out, err := mesh.Add(a, b)
		require.NoError(t, err)
		assert.NotNil(t, out.At(mesh.Centre))
		assert.Nil(t, out.At(mesh.XLow))
		assert.Nil(t, out.At(mesh.YLow))
		assert.Nil(t, out.At(mesh.Corners))
	})
	t.Run("shape mismatch", func(t *testing.T) {
		_, err := mesh.Add(mesh.NewMultiLocationArray(1, 2), mesh.NewMultiLocationArray(2, 1))
		assert.ErrorIs(t, err, mesh.ErrShape)
	})
	t.Run("no operands", func(t *testing.T) {
		_, err := mesh.Apply(func([]float64) float64 { return 0 })
		assert.ErrorIs(t, err, mesh.ErrShape)
	})
	t.Run("argument order", func(t *testing.T) {
		a := mesh.NewMultiLocationArray(1, 1).Fill(1)
		b := mesh.NewMultiLocationArray(1, 1).Fill(2)
		c := mesh.NewMultiLocationArray(1, 1).Fill(3)
		out, err := mesh.Apply(func(v []float64) float64 { return 100*v[0] + 10*v[1] + v[2] }, a, b, c)
		require.NoError(t, err)
		v, _ := out.At(mesh.Corners).At(1, 1)
		assert.Equal(t, 123.0, v)
	})
	t.Run("clone is deep", func(t *testing.T) {
		a := mesh.NewMultiLocationArray(1, 1).Fill(1)
		c := a.Clone()
		a.Fill(2)
		v, _ := c.At(mesh.Centre).At(0, 0)
		assert.Equal(t, 1.0, v)
	})
}
