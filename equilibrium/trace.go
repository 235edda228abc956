package equilibrium

import (
	"context"
	"fmt"

	"github.com/katalvlaran/fluxgrid/geometry"
)

// StopReason says why Trace finished.
type StopReason int

const (
	StopWall StopReason = iota + 1
	StopXPoint
	StopClosed
)

func (s StopReason) String() string {
	switch s {
	case StopWall:
		return "wall"
	case StopXPoint:
		return "X-point"
	case StopClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// TraceOptions controls Trace. Zero Step or XPointRadius select trace_step
// and xpoint_offset, both scaled by the box size; zero MaxSteps allows
// 100000 steps.
type TraceOptions struct {
	Step         float64
	XPointRadius float64
	// Closed stops the trace when it returns to its start.
	Closed   bool
	MaxSteps int
}

const (
	defaultTraceSteps = 100000
	bisectIters       = 60
)

// Trace follows the surface psi = psival from start, initially in the
// direction closest to direction, until it hits the wall, runs into an
// X-point, or (with Closed) returns to start. The returned contour starts
// at start and ends at the stopping point.
func Trace(ctx context.Context, eq *Equilibrium, psival float64, start, direction geometry.Point, to TraceOptions) (*Contour, StopReason, error) {
	if to.Step <= 0 {
		to.Step = eq.Options.TraceStep * eq.BoxSize()
	}
	if to.XPointRadius <= 0 {
		to.XPointRadius = eq.xpointOffset()
	}
	if to.MaxSteps <= 0 {
		to.MaxSteps = defaultTraceSteps
	}
	ds := to.Step

	c := eq.NewContour([]geometry.Point{start}, psival)
	methods := eq.Options.RefineMethodList()
	atol := eq.Options.RefineAtol

	tangent := func(p, prev geometry.Point) geometry.Point {
		g := eq.GradPsi(p)
		t := geometry.Point{R: -g.Z, Z: g.R}.Unit()
		if t.Dot(prev) < 0 {
			t = t.Scale(-1)
		}

		return t
	}

	// X-points whose disc contains the start are ignored until left
	inside := make([]bool, len(eq.XPoints))
	for i, x := range eq.XPoints {
		inside[i] = geometry.Distance(start, x) < to.XPointRadius
	}

	p := start
	t := tangent(p, direction)
	travelled := 0.0
	for step := 0; ; step++ {
		if step >= to.MaxSteps {
			return nil, 0, fmt.Errorf("Trace from %v: %w", start, ErrTraceSteps)
		}
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		mid := p.Add(t.Scale(0.5 * ds))
		tm := tangent(mid, t)
		guess := p.Add(tm.Scale(ds))
		next, err := c.RefinePoint(guess, tm, ds/2, atol, methods)
		if err != nil {
			return nil, 0, fmt.Errorf("Trace: %w", err)
		}

		if hit, ok, err := eq.WallIntersection(p, next); err != nil {
			return nil, 0, fmt.Errorf("Trace: %w", err)
		} else if ok {
			c.Append(hit)
			c.spanAll()
			return c, StopWall, nil
		}

		if !eq.InBox(next) {
			return nil, 0, fmt.Errorf("Trace from %v: at %v: %w", start, next, ErrLeftDomain)
		}

		for i, x := range eq.XPoints {
			in := geometry.Distance(next, x) < to.XPointRadius
			if in && !inside[i] {
				q, err := c.circleCrossing(p, next, x, to.XPointRadius, tm, ds, atol, methods)
				if err != nil {
					return nil, 0, fmt.Errorf("Trace: %w", err)
				}
				c.Append(q)
				c.spanAll()
				return c, StopXPoint, nil
			}
			inside[i] = in
		}

		travelled += geometry.Distance(p, next)
		if to.Closed && travelled >= 4*ds && geometry.Distance(next, start) < ds {
			c.Append(start)
			c.spanAll()
			return c, StopClosed, nil
		}

		c.Append(next)
		t = tangent(next, tm)
		p = next
	}
}

// circleCrossing finds where the contour between a (outside the circle)
// and b (inside) crosses the circle of radius rad around x.
func (c *Contour) circleCrossing(a, b, x geometry.Point, rad float64, t geometry.Point, ds, atol float64, methods []string) (geometry.Point, error) {
	lo, hi := a, b
	for i := 0; i < bisectIters && geometry.Distance(lo, hi) > atol; i++ {
		mid := geometry.Lerp(lo, hi, 0.5)
		if geometry.Distance(mid, x) < rad {
			hi = mid
		} else {
			lo = mid
		}
	}
	q, err := c.RefinePoint(geometry.Lerp(lo, hi, 0.5), t, ds/2, atol, methods)
	if err != nil {
		return geometry.Point{}, err
	}

	return q, nil
}
