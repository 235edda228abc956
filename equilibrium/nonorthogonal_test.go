package equilibrium_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/fluxgrid/equilibrium"
	"github.com/katalvlaran/fluxgrid/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nonorthogonalRegion(t *testing.T) (*equilibrium.Region, *equilibrium.Contour) {
	t.Helper()
	eq := circleEq(t)
	eq.Options.Orthogonal = false
	c := eq.NewContour(arc(11, 1, 0, math.Pi/2), 1)
	r, err := equilibrium.NewRegion(eq, "r", "X.X", []int{2}, 8, c)
	require.NoError(t, err)

	return r, c
}

func TestRegion_NonorthogonalSpacing(t *testing.T) {
	r, c := nonorthogonalRegion(t)
	total, err := c.TotalDistance()
	require.NoError(t, err)
	radial := geometry.Point{R: 1}

	cases := []struct {
		name  string
		sfunc func() (func(float64) float64, error)
	}{
		{"fixed poloidal", func() (func(float64) float64, error) { return r.SfuncFixedPerpSpacing(17, c, nil) }},
		{"fixed perpendicular", func() (func(float64) float64, error) { return r.SfuncFixedPerpSpacing(17, c, &radial) }},
		{"combined lower", func() (func(float64) float64, error) { return r.CombineSfuncs(c, 0, nil, &radial, nil) }},
		{"combined poloidal", func() (func(float64) float64, error) { return r.CombineSfuncs(c, 0, nil, nil, nil) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := tc.sfunc()
			require.NoError(t, err)
			assert.InDelta(t, 0, f(0), 1e-8)
			assert.InDelta(t, total, f(16), 1e-6)
			prev := f(0)
			for i := 0.25; i <= 16; i += 0.25 {
				v := f(i)
				assert.Greater(t, v, prev, "s(%g)", i)
				prev = v
			}
		})
	}
}

func TestRegion_FixedPerpSpacingFollowsSurface(t *testing.T) {
	r, c := nonorthogonalRegion(t)
	radial := geometry.Point{R: 1}
	perp, err := r.SfuncFixedPerpSpacing(17, c, &radial)
	require.NoError(t, err)
	poloidal, err := r.SfuncFixedPerpSpacing(17, c, nil)
	require.NoError(t, err)

	// Z = sin(s) on this arc, so the spacing normal to R near the upper end
	// is larger along the contour than the poloidal spacing there.
	assert.InDelta(t, math.Sin(perp(16)), math.Sin(math.Pi/2), 1e-6)
	assert.Greater(t, perp(16)-perp(15), poloidal(16)-poloidal(15))
}
