package interp_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/fluxgrid/interp"
	"github.com/katalvlaran/fluxgrid/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cubic(x float64) float64  { return 2*x*x*x - x*x + 3*x - 1 }
func dcubic(x float64) float64 { return 6*x*x - 2*x + 3 }

func TestSpline_ReproducesCubic(t *testing.T) {
	x := []float64{0, 0.3, 0.5, 1.1, 1.4, 2}
	y := make([]float64, len(x))
	for i := range x {
		y[i] = cubic(x[i])
	}
	s, err := interp.NewSpline(x, y)
	require.NoError(t, err)

	for _, xv := range []float64{-0.5, 0, 0.1, 0.77, 1.9, 2, 2.5} {
		assert.InDelta(t, cubic(xv), s.Eval(xv), 1e-10, "x=%g", xv)
		assert.InDelta(t, dcubic(xv), s.Deriv(xv), 1e-9, "x=%g", xv)
	}
}

func TestSpline_FourPointsIsSingleCubic(t *testing.T) {
	x := []float64{-1, 0, 0.5, 2}
	y := make([]float64, len(x))
	for i := range x {
		y[i] = cubic(x[i])
	}
	s, err := interp.NewSpline(x, y)
	require.NoError(t, err)
	assert.InDelta(t, cubic(1.3), s.Eval(1.3), 1e-12)
}

func TestSpline_LowOrder(t *testing.T) {
	cases := []struct {
		name string
		x, y []float64
		at   float64
		want float64
	}{
		{"linear", []float64{0, 2}, []float64{1, 5}, 3, 7},
		{"parabola", []float64{0, 1, 3}, []float64{0, 1, 9}, 2, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := interp.NewSpline(tc.x, tc.y)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, s.Eval(tc.at), 1e-12)
		})
	}
}

func TestSpline_Errors(t *testing.T) {
	_, err := interp.NewSpline([]float64{0, 1, 1}, []float64{0, 1, 2})
	assert.ErrorIs(t, err, interp.ErrNotIncreasing)
	_, err = interp.NewSpline([]float64{0}, []float64{0})
	assert.ErrorIs(t, err, interp.ErrTooFewPoints)
	_, err = interp.NewSpline([]float64{0, 1}, []float64{0})
	assert.ErrorIs(t, err, interp.ErrLengthMismatch)
}

func TestPrevious(t *testing.T) {
	p, err := interp.NewPrevious([]float64{0, 1, 3}, []float64{10, 20, 30})
	require.NoError(t, err)
	for _, tc := range []struct{ x, want float64 }{{0, 10}, {0.99, 10}, {1, 20}, {math.Nextafter(1, 0), 10}, {2.5, 20}, {3, 30}} {
		v, err := p.Eval(tc.x)
		require.NoError(t, err)
		assert.Equal(t, tc.want, v, "x=%g", tc.x)
	}
	for _, x := range []float64{-0.1, 3.5, math.NaN()} {
		_, err = p.Eval(x)
		assert.ErrorIs(t, err, interp.ErrOutOfRange, "x=%g", x)
	}
}

func TestBicubic_ReproducesPolynomial(t *testing.T) {
	f := func(x, y float64) float64 { return x*x*x + x*x*y - 2*x*y + y*y*y }
	fx := func(x, y float64) float64 { return 3*x*x + 2*x*y - 2*y }
	fy := func(x, y float64) float64 { return x*x - 2*x + 3*y*y }

	xs := []float64{0, 0.2, 0.5, 0.7, 1.0, 1.3}
	ys := []float64{-1, -0.4, 0, 0.5, 1}
	vals, err := matrix.NewDense(len(xs), len(ys))
	require.NoError(t, err)
	for i, x := range xs {
		for j, y := range ys {
			require.NoError(t, vals.Set(i, j, f(x, y)))
		}
	}
	b, err := interp.NewBicubic(xs, ys, vals)
	require.NoError(t, err)

	pts := [][2]float64{{0.1, -0.9}, {0.66, 0.12}, {1.25, 0.8}, {1.4, 1.1}}
	for _, p := range pts {
		x, y := p[0], p[1]
		assert.InDelta(t, f(x, y), b.Value(x, y), 1e-10)
		assert.InDelta(t, fx(x, y), b.DX(x, y), 1e-9)
		assert.InDelta(t, fy(x, y), b.DY(x, y), 1e-9)
		assert.InDelta(t, 6*x+2*y, b.DXX(x, y), 1e-8)
		assert.InDelta(t, 6*y, b.DYY(x, y), 1e-8)
		assert.InDelta(t, 2*x-2, b.DXY(x, y), 1e-8)
	}
	xmin, xmax, ymin, ymax := b.Bounds()
	assert.Equal(t, []float64{0, 1.3, -1, 1}, []float64{xmin, xmax, ymin, ymax})
}

func TestBicubic_ShapeMismatch(t *testing.T) {
	vals, err := matrix.NewDense(2, 2)
	require.NoError(t, err)
	_, err = interp.NewBicubic([]float64{0, 1, 2}, []float64{0, 1}, vals)
	assert.ErrorIs(t, err, interp.ErrLengthMismatch)
}
