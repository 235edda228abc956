package interp

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// derivativePredictor is the part of the gonum cubic interpolators used here.
type derivativePredictor interface {
	Predict(x float64) float64
	PredictDerivative(x float64) float64
}

// endPiece is one end interval of a spline, kept as the cubic Hermite data
// that reproduces it so the end polynomial can be continued past the knots.
type endPiece struct {
	x0, x1, y0, y1, d0, d1 float64
}

func newEndPiece(f derivativePredictor, x0, x1 float64) endPiece {
	return endPiece{
		x0: x0, x1: x1,
		y0: f.Predict(x0), y1: f.Predict(x1),
		d0: f.PredictDerivative(x0), d1: f.PredictDerivative(x1),
	}
}

func (e endPiece) eval(xv float64, order int) float64 {
	h := e.x1 - e.x0
	b := hermite((xv-e.x0)/h, order)
	v := b[0]*e.y0 + b[1]*h*e.d0 + b[2]*e.y1 + b[3]*h*e.d1
	for k := 0; k < order; k++ {
		v /= h
	}

	return v
}

// Spline is a C2 cubic interpolant with not-a-knot end conditions. Three
// knots give the interpolating parabola and two give a straight line.
// Outside the knots the end polynomials are continued.
type Spline struct {
	lo, hi      float64
	fit         derivativePredictor
	left, right endPiece
}

func checkKnots(x, y []float64) error {
	if len(x) != len(y) {
		return ErrLengthMismatch
	}
	if len(x) < 2 {
		return ErrTooFewPoints
	}
	for i := 1; i < len(x); i++ {
		if !(x[i] > x[i-1]) {
			return fmt.Errorf("x[%d]=%g after %g: %w", i, x[i], x[i-1], ErrNotIncreasing)
		}
	}

	return nil
}

// NewSpline builds the not-a-knot cubic spline through (x[i], y[i]).
func NewSpline(x, y []float64) (*Spline, error) {
	if err := checkKnots(x, y); err != nil {
		return nil, fmt.Errorf("NewSpline: %w", err)
	}
	n := len(x)
	var fit derivativePredictor
	switch n {
	case 2, 3:
		// the line or parabola through the points, given exactly by its slopes
		d := make([]float64, n)
		if n == 2 {
			d[0] = (y[1] - y[0]) / (x[1] - x[0])
			d[1] = d[0]
		} else {
			h0, h1 := x[1]-x[0], x[2]-x[1]
			s0, s1 := (y[1]-y[0])/h0, (y[2]-y[1])/h1
			c := (s1 - s0) / (h0 + h1)
			d[0] = s0 - c*h0
			d[1] = s0 + c*h0
			d[2] = s1 + c*h1
		}
		var pc interp.PiecewiseCubic
		pc.FitWithDerivatives(x, y, d)
		fit = &pc
	default:
		var nak interp.NotAKnotCubic
		if err := nak.Fit(x, y); err != nil {
			return nil, fmt.Errorf("NewSpline: %w", err)
		}
		fit = &nak
	}

	return &Spline{
		lo:    x[0],
		hi:    x[n-1],
		fit:   fit,
		left:  newEndPiece(fit, x[0], x[1]),
		right: newEndPiece(fit, x[n-2], x[n-1]),
	}, nil
}

// Eval returns the spline value at xv.
func (s *Spline) Eval(xv float64) float64 {
	switch {
	case xv < s.lo:
		return s.left.eval(xv, 0)
	case xv > s.hi:
		return s.right.eval(xv, 0)
	}

	return s.fit.Predict(xv)
}

// Deriv returns the first derivative at xv.
func (s *Spline) Deriv(xv float64) float64 {
	switch {
	case xv < s.lo:
		return s.left.eval(xv, 1)
	case xv > s.hi:
		return s.right.eval(xv, 1)
	}

	return s.fit.PredictDerivative(xv)
}
