package plot_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/fluxgrid/plot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContours_Circle(t *testing.T) {
	f := func(R, Z float64) float64 { return R*R + Z*Z }
	box := plot.Box{RMin: -1, RMax: 1, ZMin: -1, ZMax: 1}
	lines, err := plot.Contours(f, box, 41, 41, []float64{0.25, 4})
	require.NoError(t, err)
	require.Len(t, lines, 2)

	require.Len(t, lines[0], 1)
	circle := lines[0][0]
	assert.Greater(t, len(circle), 20)
	assert.Equal(t, circle[0], circle[len(circle)-1])
	for _, p := range circle {
		assert.InDelta(t, 0.5, math.Hypot(p.R, p.Z), 2e-3)
	}

	assert.Empty(t, lines[1])
}

func TestContours_OpenBranches(t *testing.T) {
	f := func(R, Z float64) float64 { return R * Z }
	box := plot.Box{RMin: -1, RMax: 1, ZMin: -1, ZMax: 1}
	lines, err := plot.Contours(f, box, 21, 21, []float64{0.13})
	require.NoError(t, err)
	require.Len(t, lines[0], 2)
	for _, l := range lines[0] {
		assert.NotEqual(t, l[0], l[len(l)-1])
		for _, p := range l {
			assert.Greater(t, p.R*p.Z, 0.0)
		}
	}
}

func TestContours_Errors(t *testing.T) {
	f := func(R, Z float64) float64 { return R }
	_, err := plot.Contours(f, plot.Box{}, 10, 10, []float64{0})
	assert.ErrorIs(t, err, plot.ErrBox)
	_, err = plot.Contours(f, plot.Box{RMax: 1, ZMax: 1}, 1, 10, []float64{0})
	assert.ErrorIs(t, err, plot.ErrSize)
}
