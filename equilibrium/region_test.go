package equilibrium_test

import (
	"context"
	"math"
	"testing"

	"github.com/katalvlaran/fluxgrid/config"
	"github.com/katalvlaran/fluxgrid/equilibrium"
	"github.com/katalvlaran/fluxgrid/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegion(t *testing.T) {
	eq := circleEq(t)
	c := eq.NewContour(arc(11, 1, 0, math.Pi/2), 1)

	cases := []struct {
		name    string
		kind    string
		nx      []int
		ny      int
		wantErr error
	}{
		{"wall to X", "wall.X", []int{2, 3}, 4, nil},
		{"X to X", "X.X", []int{2}, 4, nil},
		{"bad end", "wall.target", []int{2}, 4, equilibrium.ErrInvalidKind},
		{"no separator", "wall", []int{2}, 4, equilibrium.ErrInvalidKind},
		{"no segments", "X.wall", nil, 4, config.ErrInvalidOption},
		{"no cells", "X.wall", []int{2}, 0, config.ErrInvalidOption},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := equilibrium.NewRegion(eq, "r", tc.kind, tc.nx, tc.ny, c)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tc.nx), r.NSegments)
			assert.Len(t, r.XPointsAtStart, len(tc.nx)+1)
			assert.Nil(t, r.Connections[0].Inner)
			assert.Nil(t, r.Connections[len(tc.nx)-1].Outer)
		})
	}

	t.Run("spacing parameters", func(t *testing.T) {
		r, err := equilibrium.NewRegion(eq, "r", "wall.X", []int{2}, 4, c)
		require.NoError(t, err)
		assert.Nil(t, r.SqrtALower)
		assert.Nil(t, r.SqrtBLower)
		require.NotNil(t, r.SqrtAUpper)
		assert.Equal(t, eq.Options.XPointPoloidalSpacingLength, *r.SqrtAUpper)
		assert.Equal(t, 0.0, *r.SqrtBUpper)
		assert.Equal(t, 4.0, r.NNorm)
		assert.Equal(t, "wall", r.LowerKind())
		assert.Equal(t, "X", r.UpperKind())
	})
}

func TestRegion_Separatrix(t *testing.T) {
	eq := circleEq(t)
	r, err := equilibrium.NewRegion(eq, "r", "X.X", []int{2, 3}, 4, eq.NewContour(arc(5, 1, 0, 1), 1))
	require.NoError(t, err)
	r.SeparatrixRadialIndex = 1
	assert.Equal(t, 5, r.NxInsideSeparatrix())
	assert.Equal(t, 7, r.NxOutsideSeparatrix())
}

func TestMakeConnection(t *testing.T) {
	eq := circleEq(t)
	eq.Options.YBoundaryGuards = 2
	add := func(name string, nx ...int) {
		r, err := equilibrium.NewRegion(eq, name, "wall.wall", nx, 4, eq.NewContour(arc(5, 1, 0, 1), 1))
		require.NoError(t, err)
		require.NoError(t, eq.AddRegion(r))
	}
	add("a", 2, 3)
	add("b", 2, 3)
	add("c", 4)

	r, err := eq.Region("a")
	require.NoError(t, err)
	assert.Equal(t, 8, r.Ny(0))

	require.NoError(t, eq.MakeConnection("a", 1, "b", 1))
	assert.Equal(t, "b", r.Connections[1].Upper.Region)
	assert.Equal(t, 6, r.Ny(1))

	cases := []struct {
		name         string
		lower, upper string
		ls, us       int
		wantErr      error
	}{
		{"already connected", "a", "b", 1, 1, equilibrium.ErrConnection},
		{"segment range", "a", "b", 2, 0, equilibrium.ErrConnection},
		{"nx mismatch", "a", "c", 0, 0, equilibrium.ErrConnection},
		{"unknown", "a", "zz", 0, 0, equilibrium.ErrUnknownRegion},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := eq.MakeConnection(tc.lower, tc.ls, tc.upper, tc.us)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	t.Run("duplicate", func(t *testing.T) {
		r, err := equilibrium.NewRegion(eq, "a", "wall.wall", []int{1}, 4, eq.NewContour(nil, 1))
		require.NoError(t, err)
		assert.ErrorIs(t, eq.AddRegion(r), equilibrium.ErrDuplicateRegion)
	})
}

func TestRegion_SfuncFixedSpacing(t *testing.T) {
	eq := circleEq(t)
	c := eq.NewContour(arc(11, 1, 0, math.Pi/2), 1)
	r, err := equilibrium.NewRegion(eq, "r", "X.X", []int{2}, 8, c)
	require.NoError(t, err)

	for _, method := range []string{config.SpacingSqrt, config.SpacingMonotonic, config.SpacingUniform} {
		t.Run(method, func(t *testing.T) {
			eq.Options.PoloidalSpacingMethod = method
			f, err := r.SfuncFixedSpacing(17, 1)
			require.NoError(t, err)
			assert.InDelta(t, 0.0, f(0), 1e-9)
			assert.InDelta(t, 1.0, f(16), 1e-8)
		})
	}

	t.Run("unknown method", func(t *testing.T) {
		eq.Options.PoloidalSpacingMethod = "cosine"
		_, err := r.SfuncFixedSpacing(17, 1)
		assert.ErrorIs(t, err, config.ErrInvalidOption)
	})

	t.Run("too steep", func(t *testing.T) {
		eq.Options.PoloidalSpacingMethod = config.SpacingSqrt
		big := 5.0
		r.SqrtBLower = &big
		r.SqrtALower = nil
		_, err := r.SfuncFixedSpacing(17, 1)
		assert.ErrorIs(t, err, equilibrium.ErrSpacingNotMonotonic)
		assert.Contains(t, err.Error(), "xpoint_poloidal_spacing_length")
	})
}

func TestTrace(t *testing.T) {
	ctx := context.Background()

	t.Run("closed", func(t *testing.T) {
		eq := circleEq(t)
		c, stop, err := equilibrium.Trace(ctx, eq, 1, geometry.Point{R: 3, Z: 0}, geometry.Point{R: 0, Z: -1},
			equilibrium.TraceOptions{Step: 0.02, Closed: true})
		require.NoError(t, err)
		assert.Equal(t, equilibrium.StopClosed, stop)
		assert.Equal(t, c.First(), c.Last())
		assert.Less(t, c.At(1).Z, 0.0)
		for i := 0; i < c.Len(); i++ {
			assert.InDelta(t, 1.0, radius(c.At(i)), 1e-6)
		}
		assert.Equal(t, c.Len()-1, c.EndInd())
	})

	t.Run("wall", func(t *testing.T) {
		eq := circleEq(t)
		w, err := geometry.NewWall([]geometry.Point{{R: 2.5, Z: 0.5}, {R: 3.5, Z: 0.5}, {R: 3.5, Z: 1.5}, {R: 2.5, Z: 1.5}})
		require.NoError(t, err)
		eq.Wall = w
		c, stop, err := equilibrium.Trace(ctx, eq, 1, geometry.Point{R: 3, Z: 0}, geometry.Point{R: 0, Z: 1},
			equilibrium.TraceOptions{Step: 0.02})
		require.NoError(t, err)
		assert.Equal(t, equilibrium.StopWall, stop)
		assert.InDelta(t, 0.5, c.Last().Z, 1e-9)
	})

	t.Run("X-point", func(t *testing.T) {
		eq := circleEq(t)
		eq.XPoints = []geometry.Point{{R: 2, Z: 1}}
		c, stop, err := equilibrium.Trace(ctx, eq, 1, geometry.Point{R: 3, Z: 0}, geometry.Point{R: 0, Z: 1},
			equilibrium.TraceOptions{Step: 0.02, XPointRadius: 0.1})
		require.NoError(t, err)
		assert.Equal(t, equilibrium.StopXPoint, stop)
		assert.InDelta(t, 0.1, geometry.Distance(c.Last(), eq.XPoints[0]), 1e-3)
	})

	t.Run("left domain", func(t *testing.T) {
		eq := circleEq(t)
		eq.RMax = 2.9
		_, _, err := equilibrium.Trace(ctx, eq, 1, geometry.Point{R: 2, Z: 1}, geometry.Point{R: 1, Z: 0},
			equilibrium.TraceOptions{Step: 0.02})
		assert.ErrorIs(t, err, equilibrium.ErrLeftDomain)
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, _, err := equilibrium.Trace(cctx, circleEq(t), 1, geometry.Point{R: 3, Z: 0}, geometry.Point{R: 0, Z: 1},
			equilibrium.TraceOptions{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBuildCoreOnly(t *testing.T) {
	eq := circleEq(t)
	err := equilibrium.BuildCoreOnly(context.Background(), eq, 1, geometry.Point{R: 3, Z: 0},
		equilibrium.CoreOnlyParams{Ny: 8, Psi: []float64{0.25, 0.5, 1}})
	require.NoError(t, err)

	r, err := eq.Region("core")
	require.NoError(t, err)
	assert.Equal(t, "core", r.Connections[0].Upper.Region)
	assert.Equal(t, "core", r.Connections[0].Lower.Region)
	assert.Equal(t, 1, r.Nx[0])

	g, err := r.Regridded(0)
	require.NoError(t, err)
	require.Equal(t, 17, g.Len())
	for i := 0; i < g.Len(); i++ {
		assert.InDelta(t, 1.0, radius(g.At(i)), 1e-6)
	}
	// clockwise from the outboard midplane
	assert.InDelta(t, -math.Pi/4, math.Atan2(g.At(2).Z, g.At(2).R-2), 1e-2)
	assert.InDelta(t, 0.0, geometry.Distance(g.First(), g.Last()), 1e-6)

	t.Run("bad psi", func(t *testing.T) {
		err := equilibrium.BuildCoreOnly(context.Background(), circleEq(t), 1, geometry.Point{R: 3, Z: 0},
			equilibrium.CoreOnlyParams{Ny: 8, Psi: []float64{0.5, 1}})
		assert.ErrorIs(t, err, equilibrium.ErrTopology)
	})
}
