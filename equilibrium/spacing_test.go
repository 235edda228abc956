package equilibrium_test

import (
	"testing"

	"github.com/katalvlaran/fluxgrid/equilibrium"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func deriv(f func(float64) float64, x float64) float64 {
	const h = 1e-6
	return (f(x+h) - f(x-h)) / (2 * h)
}

func TestMake1DGrid(t *testing.T) {
	got := equilibrium.Make1DGrid(2, func(i float64) float64 { return i * i })
	assert.Equal(t, []float64{0, 0.5, 1, 2.5, 4}, got)
}

func TestPolynomialGridFunc(t *testing.T) {
	cases := []struct {
		name       string
		gl, gu     *float64
		wantGL     float64
		wantGU     float64
		checkGrads bool
	}{
		{name: "linear", wantGL: 0.2, wantGU: 0.2, checkGrads: true},
		{name: "lower", gl: f64(0.05), wantGL: 0.05},
		{name: "upper", gu: f64(0.05), wantGU: 0.05},
		{name: "both", gl: f64(0.05), gu: f64(0.1), wantGL: 0.05, wantGU: 0.1, checkGrads: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := equilibrium.PolynomialGridFunc(5, 1, 2, tc.gl, tc.gu)
			assert.InDelta(t, 1.0, f(0), 1e-12)
			assert.InDelta(t, 2.0, f(5), 1e-12)
			if tc.gl != nil || tc.checkGrads {
				assert.InDelta(t, tc.wantGL, deriv(f, 0), 1e-6)
			}
			if tc.gu != nil || tc.checkGrads {
				assert.InDelta(t, tc.wantGU, deriv(f, 5), 1e-6)
			}
		})
	}
}

func assertMonotonic(t *testing.T, f func(float64) float64, from, to float64) {
	t.Helper()
	prev := f(from)
	for x := from + 0.1; x <= to; x += 0.1 {
		v := f(x)
		require.GreaterOrEqual(t, v, prev, "at %g", x)
		prev = v
	}
}

func TestSqrtPoloidalDistanceFunc(t *testing.T) {
	cases := []struct {
		name       string
		al, bl     *float64
		au, bu     *float64
		wantGrad0  float64
		checkGrad0 bool
	}{
		{name: "uniform", wantGrad0: 0.1, checkGrad0: true},
		{name: "lower sqrt", al: f64(0.05), bl: f64(0.2)},
		{name: "upper sqrt", au: f64(0.05), bu: f64(0.2)},
		{name: "both", al: f64(0.05), bl: f64(0.5), au: f64(0.05), bu: f64(0.5)},
		{name: "fixed lower gradient", bl: f64(0.5), wantGrad0: 0.05, checkGrad0: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := equilibrium.SqrtPoloidalDistanceFunc(1, 10, 10, tc.al, tc.bl, tc.au, tc.bu, 1e-13)
			require.NoError(t, err)
			assert.InDelta(t, 0.0, f(0), 1e-12)
			assert.InDelta(t, 1.0, f(10), 1e-12)
			assertMonotonic(t, f, -2, 12)
			assert.Less(t, f(-1), 0.0)
			assert.Greater(t, f(11), 1.0)
			if tc.checkGrad0 {
				assert.InDelta(t, tc.wantGrad0, deriv(f, 0), 1e-6)
			}
		})
	}

	t.Run("errors", func(t *testing.T) {
		_, err := equilibrium.SqrtPoloidalDistanceFunc(1, 10, 10, f64(0.1), nil, nil, nil, 1e-13)
		assert.ErrorIs(t, err, equilibrium.ErrSpacingNotMonotonic)

		_, err = equilibrium.SqrtPoloidalDistanceFunc(1, 10, 10, nil, f64(-1), nil, nil, 1e-13)
		assert.ErrorIs(t, err, equilibrium.ErrSpacingNotMonotonic)
	})
}

func TestMonotonicPoloidalDistanceFunc(t *testing.T) {
	cases := []struct {
		name   string
		dl, du float64
	}{
		{"polynomial", 0.5, 0.5},
		{"asymmetric polynomial", 0.2, 1.5},
		{"hyperbolic", 5, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := equilibrium.MonotonicPoloidalDistanceFunc(1, 10, 10, tc.dl, tc.du)
			require.NoError(t, err)
			assert.InDelta(t, 0.0, f(0), 1e-9)
			assert.InDelta(t, 1.0, f(10), 1e-8)
			assertMonotonic(t, f, -2, 12)
			assert.InDelta(t, -tc.dl/10, f(-1), 1e-12)
			assert.InDelta(t, 1+tc.du/10, f(11), 1e-12)
		})
	}
}
