package interp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

// Previous returns, for each query, the value at the last knot at or below
// it.
type Previous struct {
	lo, hi float64
	last   float64
	// step takes each value from the knot at the upper end of its interval,
	// so the values are shifted up one knot and queried just above xv.
	step interp.PiecewiseConstant
}

// NewPrevious fits the step function through (x[i], y[i]).
func NewPrevious(x, y []float64) (*Previous, error) {
	if err := checkKnots(x, y); err != nil {
		return nil, fmt.Errorf("NewPrevious: %w", err)
	}
	n := len(x)
	shifted := make([]float64, n)
	shifted[0] = y[0]
	copy(shifted[1:], y[:n-1])
	p := &Previous{lo: x[0], hi: x[n-1], last: y[n-1]}
	if err := p.step.Fit(x, shifted); err != nil {
		return nil, fmt.Errorf("NewPrevious: %w", err)
	}

	return p, nil
}

// Eval returns y[i] for the largest i with x[i] <= xv.
func (p *Previous) Eval(xv float64) (float64, error) {
	if !(xv >= p.lo && xv <= p.hi) {
		return 0, fmt.Errorf("Previous.Eval(%g) outside [%g, %g]: %w", xv, p.lo, p.hi, ErrOutOfRange)
	}
	if xv == p.hi {
		return p.last, nil
	}

	return p.step.Predict(math.Nextafter(xv, math.Inf(1))), nil
}
