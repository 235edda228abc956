package geometry_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/fluxgrid/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitSquare(t *testing.T) *geometry.Wall {
	t.Helper()
	w, err := geometry.NewWall([]geometry.Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	require.NoError(t, err)

	return w
}

func TestPoint_Arithmetic(t *testing.T) {
	p := geometry.Point{R: 3, Z: 4}
	assert.Equal(t, 5.0, p.Norm())
	assert.Equal(t, geometry.Point{R: 4, Z: -3}, p.Perp())
	assert.InDelta(t, 1.0, p.Unit().Norm(), 1e-15)
	assert.Equal(t, 0.0, p.Dot(p.Perp()))
	assert.Equal(t, geometry.Point{R: 1.5, Z: 2}, geometry.Lerp(geometry.Point{}, p, 0.5))
	assert.Equal(t, 5.0, geometry.Distance(geometry.Point{}, p))
	assert.Equal(t, geometry.Point{}, geometry.Point{}.Unit())
}

func TestFindIntersections(t *testing.T) {
	line := []geometry.Point{{0, 0}, {2, 0}, {2, 2}}
	cases := []struct {
		name       string
		start, end geometry.Point
		want       []geometry.Point
	}{
		{"steep crossing", geometry.Point{R: 1, Z: -1}, geometry.Point{R: 1.1, Z: 1}, []geometry.Point{{R: 1.05, Z: 0}}},
		{"shallow crossing of vertical", geometry.Point{R: 1, Z: 1}, geometry.Point{R: 3, Z: 1.5}, []geometry.Point{{R: 2, Z: 1.25}}},
		{"miss", geometry.Point{R: 0.5, Z: 0.5}, geometry.Point{R: 1.5, Z: 1}, nil},
		{"parallel", geometry.Point{R: 0, Z: 1}, geometry.Point{R: 1.5, Z: 1}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := geometry.FindIntersections(line, tc.start, tc.end)
			require.Len(t, got, len(tc.want))
			for i := range got {
				assert.InDelta(t, tc.want[i].R, got[i].R, 1e-14)
				assert.InDelta(t, tc.want[i].Z, got[i].Z, 1e-14)
			}
		})
	}
}

func TestWall_New(t *testing.T) {
	_, err := geometry.NewWall([]geometry.Point{{0, 0}, {1, 0}})
	assert.ErrorIs(t, err, geometry.ErrTooFewVertices)

	w, err := geometry.NewWall([]geometry.Point{{0, 0}, {1, 0}, {1, 1}, {0, 0}})
	require.NoError(t, err)
	assert.Equal(t, 3, w.Len(), "closing vertex is dropped")
}

func TestWall_PositionAndVector(t *testing.T) {
	w := unitSquare(t)

	cases := []struct {
		s   float64
		pos geometry.Point
		vec geometry.Point
	}{
		{0, geometry.Point{R: 0, Z: 0}, geometry.Point{R: 1, Z: 0}},
		{0.125, geometry.Point{R: 0.5, Z: 0}, geometry.Point{R: 1, Z: 0}},
		{0.5, geometry.Point{R: 1, Z: 1}, geometry.Point{R: -1, Z: 0}},
		{0.875, geometry.Point{R: 0, Z: 0.5}, geometry.Point{R: 0, Z: -1}},
		{1, geometry.Point{R: 0, Z: 0}, geometry.Point{R: 1, Z: 0}},
	}
	for _, tc := range cases {
		p, err := w.Position(tc.s)
		require.NoError(t, err)
		assert.InDelta(t, tc.pos.R, p.R, 1e-15, "s=%g", tc.s)
		assert.InDelta(t, tc.pos.Z, p.Z, 1e-15, "s=%g", tc.s)
		v, err := w.Vector(tc.s)
		require.NoError(t, err)
		assert.Equal(t, tc.vec, v, "s=%g", tc.s)
	}

	_, err := w.Position(1.5)
	assert.ErrorIs(t, err, geometry.ErrParameterRange)
	_, err = w.Vector(-0.1)
	assert.ErrorIs(t, err, geometry.ErrParameterRange)
}

func TestWall_Locate(t *testing.T) {
	w := unitSquare(t)

	cases := []struct {
		name string
		p    geometry.Point
		want float64
		dist float64
	}{
		{"vertex", geometry.Point{R: 0, Z: 0}, 0, 0},
		{"on bottom", geometry.Point{R: 0.5, Z: 0}, 0.125, 0},
		{"below bottom", geometry.Point{R: 0.5, Z: -0.2}, 0.125, 0.2},
		{"inside near top", geometry.Point{R: 0.25, Z: 0.9}, 0.5 + 0.75/4, 0.1},
		{"outside left", geometry.Point{R: -1, Z: 0.5}, 0.875, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := w.Locate(tc.p)
			assert.InDelta(t, tc.want, s, 1e-15)
			p, err := w.Position(s)
			require.NoError(t, err)
			assert.InDelta(t, tc.dist, geometry.Distance(p, tc.p), 1e-15)
		})
	}
}

func TestWall_Intersection(t *testing.T) {
	w := unitSquare(t)

	p, ok, err := w.Intersection(geometry.Point{R: 0.5, Z: 0.5}, geometry.Point{R: 0.5, Z: 2})
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 1.0, p.Z, 1e-14)

	_, ok, err = w.Intersection(geometry.Point{R: 0.2, Z: 0.2}, geometry.Point{R: 0.8, Z: 0.8})
	require.NoError(t, err)
	assert.False(t, ok)

	// Through a vertex: two coincident hits count once.
	p, ok, err = w.Intersection(geometry.Point{R: 0.5, Z: 0.5}, geometry.Point{R: 1.5, Z: 1.5})
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 1.0, p.R, 1e-14)

	_, _, err = w.Intersection(geometry.Point{R: -1, Z: 0.5}, geometry.Point{R: 2, Z: 0.5})
	assert.ErrorIs(t, err, geometry.ErrMultipleIntersections)
}

func TestWall_ContainsAreaBounds(t *testing.T) {
	w := unitSquare(t)
	assert.True(t, w.Contains(geometry.Point{R: 0.5, Z: 0.5}))
	assert.False(t, w.Contains(geometry.Point{R: 1.5, Z: 0.5}))
	assert.Equal(t, 1.0, w.SignedArea())

	cw, err := geometry.NewWall([]geometry.Point{{0, 1}, {1, 1}, {1, 0}, {0, 0}, {0, 1}})
	require.NoError(t, err)
	assert.Equal(t, 1.0, cw.SignedArea())
	assert.Equal(t, []geometry.Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}, cw.Vertices())

	c, err := geometry.Circle(geometry.Point{R: 1}, 0.2, 64)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi*0.04, c.SignedArea(), 1e-3)
	rmin, rmax, zmin, zmax := c.Bounds()
	assert.InDelta(t, 0.8, rmin, 1e-12)
	assert.InDelta(t, 1.2, rmax, 1e-12)
	assert.InDelta(t, -0.2, zmin, 1e-3)
	assert.InDelta(t, 0.2, zmax, 1e-3)
}
