package equilibrium

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/fluxgrid/geometry"
	"github.com/katalvlaran/fluxgrid/ode"
	"github.com/katalvlaran/fluxgrid/optimize"
)

// Refinement method names accepted in refine_methods.
const (
	RefineNewton          = "newton"
	RefineLine            = "line"
	RefineIntegrate       = "integrate"
	RefineIntegrateNewton = "integrate+newton"
	RefineNone            = "none"
)

const (
	fdEps           = 1e-10
	refineNewtonMax = 10
)

// RefinePoint moves p onto the surface psi = PsiVal, trying each method in
// turn until one succeeds. tangent is the local direction of the contour.
// If every method fails the result wraps ErrSolution.
func (c *Contour) RefinePoint(p, tangent geometry.Point, width, atol float64, methods []string) (geometry.Point, error) {
	if len(methods) == 0 {
		methods = []string{RefineLine}
	}
	var last error
	for _, m := range methods {
		var (
			q   geometry.Point
			err error
		)
		switch m {
		case RefineNewton:
			q, err = c.refineNewton(p, tangent, atol)
		case RefineLine:
			q, err = c.refineLine(p, tangent, width, atol)
		case RefineIntegrate:
			q, err = c.refineIntegrate(p)
		case RefineIntegrateNewton:
			q, err = c.refineIntegrate(p)
			if err == nil {
				q, err = c.refineNewton(q, tangent, atol)
			}
		case RefineNone:
			return p, nil
		default:
			err = fmt.Errorf("unknown refine method %q: %w", m, ErrSolution)
		}
		if err == nil {
			return q, nil
		}
		last = err
	}

	return geometry.Point{}, fmt.Errorf("RefinePoint at %v, psi=%g: %w", p, c.PsiVal, last)
}

func (c *Contour) residual(p geometry.Point) float64 {
	return c.psi(p.R, p.Z) - c.PsiVal
}

func (c *Contour) refineNewton(p, tangent geometry.Point, atol float64) (geometry.Point, error) {
	f := func(s float64) float64 { return c.residual(p.Add(tangent.Scale(s))) }

	fprev := f(0)
	if math.Abs(fprev) <= atol*math.Abs(c.PsiVal) {
		return p, nil
	}
	s := 0.0
	for count := 0; ; count++ {
		dfds := (f(s+fdEps) - f(s)) / fdEps
		s -= fprev / dfds
		fnext := f(s)
		if math.Abs(fnext) < atol {
			return p.Add(tangent.Scale(s)), nil
		}
		if math.Abs(fnext) > math.Abs(fprev) || count > refineNewtonMax || math.IsNaN(fnext) {
			return geometry.Point{}, fmt.Errorf("newton diverging: %w", ErrSolution)
		}
		fprev = fnext
	}
}

func (c *Contour) refineLine(p, tangent geometry.Point, width, atol float64) (geometry.Point, error) {
	if math.Abs(c.residual(p)) <= atol*math.Abs(c.PsiVal) {
		return p, nil
	}
	perp := tangent.Perp().Unit()
	line := func(w, s float64) geometry.Point { return p.Add(perp.Scale(2 * (s - 0.5) * w)) }

	for w := width; w >= atol; w /= 2 {
		s, err := optimize.Brentq(func(s float64) float64 { return c.residual(line(w, s)) },
			0, 1, atol, optimize.DefaultRTol, optimize.DefaultMaxIter)
		if err == nil {
			return line(w, s), nil
		}
	}

	return geometry.Point{}, fmt.Errorf("line search found no crossing within %g: %w", width, ErrSolution)
}

// refineIntegrate follows grad(psi)/|grad(psi)|^2 from psi(p) to PsiVal.
func (c *Contour) refineIntegrate(p geometry.Point) (geometry.Point, error) {
	rhs := func(_ float64, y []float64) []float64 {
		R, Z := y[0], y[1]
		psi0 := c.psi(R, Z)
		dR := (c.psi(R+fdEps, Z) - psi0) / fdEps
		dZ := (c.psi(R, Z+fdEps) - psi0) / fdEps
		norm := 1 / (dR*dR + dZ*dZ)

		return []float64{dR * norm, dZ * norm}
	}
	psi0 := c.psi(p.R, p.Z)
	ys, err := ode.Solve(context.Background(), rhs, psi0, c.PsiVal,
		[]float64{p.R, p.Z}, []float64{c.PsiVal}, ode.DefaultOptions())
	if err != nil {
		return geometry.Point{}, fmt.Errorf("integrate: %w: %w", ErrSolution, err)
	}

	return geometry.Point{R: ys[0][0], Z: ys[0][1]}, nil
}
