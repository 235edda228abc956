package equilibrium_test

import (
	"testing"

	"github.com/katalvlaran/fluxgrid/equilibrium"
	"github.com/katalvlaran/fluxgrid/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saddleEq() *equilibrium.Equilibrium {
	eq := equilibrium.New(saddleField{}, testOptions(), nil)
	eq.RMin, eq.RMax, eq.ZMin, eq.ZMax = 0, 2, -1, 1

	return eq
}

func TestFindSaddlePoint(t *testing.T) {
	eq := saddleEq()
	x, err := eq.FindSaddlePoint(geometry.Point{R: 0.8, Z: -0.2}, geometry.Point{R: 0.8, Z: 0.2}, 1e-6)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, x.R, 1e-5)
	assert.InDelta(t, 0.0, x.Z, 1e-5)

	t.Run("no saddle", func(t *testing.T) {
		ceq := circleEq(t)
		_, err := ceq.FindSaddlePoint(geometry.Point{R: 1.8, Z: -0.2}, geometry.Point{R: 1.8, Z: 0.2}, 1e-6)
		assert.ErrorIs(t, err, equilibrium.ErrNoSaddle)
	})
}

func TestXPointLegs(t *testing.T) {
	eq := saddleEq()
	x := geometry.Point{R: 1, Z: 0}
	legs, err := eq.XPointLegs(x)
	require.NoError(t, err)

	for i, d := range legs.Directions {
		assert.InDelta(t, 1.0, d.Norm(), 1e-12, "leg %d", i)
		assert.InDelta(t, 0.0, eq.Psi(x.Add(d.Scale(0.1))), 1e-12, "leg %d", i)
	}
	assert.Greater(t, eq.Psi(x.Add(legs.Positive.Scale(0.1))), 0.0)
	assert.Less(t, eq.Psi(x.Add(legs.Negative.Scale(0.1))), 0.0)

	t.Run("not a saddle", func(t *testing.T) {
		_, err := circleEq(t).XPointLegs(geometry.Point{R: 2, Z: 0})
		assert.ErrorIs(t, err, equilibrium.ErrTopology)
	})
}

func TestFindCriticalPoints(t *testing.T) {
	t.Run("circle", func(t *testing.T) {
		o, x, err := circleEq(t).FindCriticalPoints(31, 31)
		require.NoError(t, err)
		require.Len(t, o, 1)
		assert.Empty(t, x)
		assert.InDelta(t, 2.0, o[0].R, 1e-9)
		assert.InDelta(t, 0.0, o[0].Z, 1e-9)
	})

	t.Run("saddle", func(t *testing.T) {
		o, x, err := saddleEq().FindCriticalPoints(20, 20)
		require.NoError(t, err)
		assert.Empty(t, o)
		require.Len(t, x, 1)
		assert.InDelta(t, 1.0, x[0].R, 1e-9)
		assert.InDelta(t, 0.0, x[0].Z, 1e-9)
	})

	t.Run("lattice too small", func(t *testing.T) {
		_, _, err := saddleEq().FindCriticalPoints(1, 5)
		assert.ErrorIs(t, err, equilibrium.ErrTooFewPoints)
	})
}

func TestFindExtremum1D(t *testing.T) {
	eq := circleEq(t)
	p, isMin, err := eq.FindExtremum1D(geometry.Point{R: 1.5, Z: 0.3}, geometry.Point{R: 2.5, Z: 0.3})
	require.NoError(t, err)
	assert.True(t, isMin)
	assert.InDelta(t, 2.0, p.R, 1e-6)

	_, _, err = eq.FindExtremum1D(geometry.Point{R: 2.2, Z: 0}, geometry.Point{R: 3, Z: 0})
	assert.ErrorIs(t, err, equilibrium.ErrSolution)
}
