package equilibrium

import (
	"context"
	"fmt"

	"github.com/katalvlaran/fluxgrid/geometry"
)

// CoreOnlyParams sizes a grid of closed flux surfaces. Psi holds 2*nx+1
// values from the innermost surface out to the reference surface.
type CoreOnlyParams struct {
	Ny  int
	Psi []float64
}

// SingleNullParams sizes a single-null grid. Each psi slice holds 2*nx+1
// values. PsiCore and PsiPF run from the inner boundary to the separatrix,
// PsiSOL from the separatrix outward. PsiCore and PsiPF must have the same
// length.
type SingleNullParams struct {
	NyInner, NyCore, NyOuter int
	PsiCore, PsiPF, PsiSOL   []float64
}

// FourLegParams sizes a grid around one X-point whose four legs all reach
// the wall. The PF slices run from the private flux boundary to the
// separatrix and the SOL slices outward from it.
type FourLegParams struct {
	NyInnerLower, NyOuterLower int
	NyInnerUpper, NyOuterUpper int
	PsiLowerPF, PsiUpperPF     []float64
	PsiInnerSOL, PsiOuterSOL   []float64
}

func nxOf(psi []float64) (int, error) {
	if len(psi) < 3 || len(psi)%2 == 0 {
		return 0, fmt.Errorf("%d psi values, want 2*nx+1: %w", len(psi), ErrTopology)
	}

	return (len(psi) - 1) / 2, nil
}

// BuildCoreOnly adds a single periodic region "core" built on the closed
// surface through start, traced clockwise around the magnetic axis.
func BuildCoreOnly(ctx context.Context, eq *Equilibrium, psiRef float64, start geometry.Point, p CoreOnlyParams) error {
	nx, err := nxOf(p.Psi)
	if err != nil {
		return fmt.Errorf("BuildCoreOnly: %w", err)
	}
	u := eq.Axis.Sub(start)
	// clockwise: the axis is on the right
	dir := geometry.Point{R: -u.Z, Z: u.R}
	c, stop, err := Trace(ctx, eq, psiRef, start, dir, TraceOptions{Closed: true})
	if err != nil {
		return fmt.Errorf("BuildCoreOnly: %w", err)
	}
	if stop != StopClosed {
		return fmt.Errorf("BuildCoreOnly: surface psi=%g stopped at %s: %w", psiRef, stop, ErrTopology)
	}

	r, err := NewRegion(eq, "core", KindXPoint+"."+KindXPoint, []int{nx}, p.Ny, c)
	if err != nil {
		return fmt.Errorf("BuildCoreOnly: %w", err)
	}
	// no X-point: space uniformly
	r.SqrtALower, r.SqrtBLower, r.SqrtAUpper, r.SqrtBUpper = nil, nil, nil, nil
	r.MonotonicDLower, r.MonotonicDUpper = nil, nil
	r.PsiVals[0] = append([]float64(nil), p.Psi...)
	r.SeparatrixRadialIndex = 1
	if err := eq.AddRegion(r); err != nil {
		return fmt.Errorf("BuildCoreOnly: %w", err)
	}
	if err := eq.MakeConnection("core", 0, "core", 0); err != nil {
		return fmt.Errorf("BuildCoreOnly: %w", err)
	}

	return nil
}

// quadrantAxis returns the one of +-Positive, +-Negative closest to v.
func quadrantAxis(l Legs, v geometry.Point) geometry.Point {
	cands := []geometry.Point{l.Positive, l.Positive.Scale(-1), l.Negative, l.Negative.Scale(-1)}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.Dot(v) > best.Dot(v) {
			best = c
		}
	}

	return best
}

// pickLeg returns the leg d with sign(d.a) == along and sign(d.Perp().a) ==
// right.
func pickLeg(l Legs, a geometry.Point, along, right bool) (geometry.Point, error) {
	for _, d := range l.Directions {
		if (d.Dot(a) > 0) == along && (d.Perp().Dot(a) > 0) == right {
			return d, nil
		}
	}

	return geometry.Point{}, fmt.Errorf("no separatrix leg along %v: %w", a, ErrTopology)
}

// traceLeg follows the separatrix from just off x along d.
func traceLeg(ctx context.Context, eq *Equilibrium, x geometry.Point, psiX float64, d geometry.Point, want StopReason) (*Contour, error) {
	off := eq.xpointOffset()
	c := eq.NewContour(nil, psiX)
	start, err := c.RefinePoint(x.Add(d.Scale(off)), d, off/2, eq.Options.RefineAtol, eq.Options.RefineMethodList())
	if err != nil {
		return nil, err
	}
	leg, stop, err := Trace(ctx, eq, psiX, start, d, TraceOptions{})
	if err != nil {
		return nil, err
	}
	if stop != want {
		return nil, fmt.Errorf("leg %v from X-point %v stopped at %s, want %s: %w", d, x, stop, want, ErrTopology)
	}
	if want == StopXPoint && geometry.Distance(leg.Last(), x) > 2*off {
		return nil, fmt.Errorf("leg %v from X-point %v reached a different X-point: %w", d, x, ErrTopology)
	}

	return leg, nil
}

// toX reverses a leg traced from x so it runs from the wall into x.
func toX(leg *Contour, x geometry.Point) *Contour {
	leg.Reverse()
	leg.Append(x)
	leg.spanAll()

	return leg
}

// fromX makes a leg traced from x start at x.
func fromX(leg *Contour, x geometry.Point) *Contour {
	leg.Prepend(x)
	leg.spanAll()

	return leg
}

func legName(d geometry.Point, upper bool) string {
	io := "outer"
	if d.R < 0 {
		io = "inner"
	}
	lu := "lower"
	if upper {
		lu = "upper"
	}

	return io + "_" + lu + "_divertor"
}

func addRegion(eq *Equilibrium, name, kind string, c *Contour, ny int, inside, outside []float64, x geometry.Point) (*Region, error) {
	nxIn, err := nxOf(inside)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	nxOut, err := nxOf(outside)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	r, err := NewRegion(eq, name, kind, []int{nxIn, nxOut}, ny, c)
	if err != nil {
		return nil, err
	}
	r.PsiVals[0] = append([]float64(nil), inside...)
	r.PsiVals[1] = append([]float64(nil), outside...)
	r.SeparatrixRadialIndex = 1
	if r.LowerKind() == KindXPoint {
		r.XPointsAtStart[1] = clonePoint(&x)
	} else if r.WallSurfaceAtStart, err = eq.wallSurface(c.First()); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if r.UpperKind() == KindXPoint {
		r.XPointsAtEnd[1] = clonePoint(&x)
	} else if r.WallSurfaceAtEnd, err = eq.wallSurface(c.Last()); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := eq.AddRegion(r); err != nil {
		return nil, err
	}

	return r, nil
}

type link struct {
	lower    string
	lowerSeg int
	upper    string
	upperSeg int
}

func connect(eq *Equilibrium, links []link) error {
	for _, l := range links {
		if err := eq.MakeConnection(l.lower, l.lowerSeg, l.upper, l.upperSeg); err != nil {
			return err
		}
	}

	return nil
}

// BuildSingleNull adds the three regions of a single-null grid around the
// X-point x: a divertor leg running from the wall into x, the core running
// clockwise from x back to x, and a divertor leg from x to the wall. In
// every region the inside of the separatrix (core or private flux) lies to
// the right of increasing y.
func BuildSingleNull(ctx context.Context, eq *Equilibrium, x geometry.Point, p SingleNullParams) error {
	if len(p.PsiCore) != len(p.PsiPF) {
		return fmt.Errorf("BuildSingleNull: core and private flux nx differ: %w", ErrTopology)
	}
	legs, err := eq.XPointLegs(x)
	if err != nil {
		return fmt.Errorf("BuildSingleNull: %w", err)
	}
	psiX := eq.Psi(x)
	a := quadrantAxis(legs, eq.Axis.Sub(x))
	upper := x.Z > eq.Axis.Z

	c1, err := pickLeg(legs, a, true, true)
	if err != nil {
		return fmt.Errorf("BuildSingleNull: %w", err)
	}
	d1, err := pickLeg(legs, a, false, true)
	if err != nil {
		return fmt.Errorf("BuildSingleNull: %w", err)
	}
	d3, err := pickLeg(legs, a, false, false)
	if err != nil {
		return fmt.Errorf("BuildSingleNull: %w", err)
	}

	leg1, err := traceLeg(ctx, eq, x, psiX, d1, StopWall)
	if err != nil {
		return fmt.Errorf("BuildSingleNull: %w", err)
	}
	core, err := traceLeg(ctx, eq, x, psiX, c1, StopXPoint)
	if err != nil {
		return fmt.Errorf("BuildSingleNull: %w", err)
	}
	leg3, err := traceLeg(ctx, eq, x, psiX, d3, StopWall)
	if err != nil {
		return fmt.Errorf("BuildSingleNull: %w", err)
	}
	core.Prepend(x)
	core.Append(x)
	core.spanAll()

	n1, n3 := legName(d1, upper), legName(d3, upper)
	ny1, ny3 := p.NyOuter, p.NyInner
	if d1.R < 0 {
		ny1, ny3 = p.NyInner, p.NyOuter
	}
	if _, err := addRegion(eq, n1, KindWall+"."+KindXPoint, toX(leg1, x), ny1, p.PsiPF, p.PsiSOL, x); err != nil {
		return fmt.Errorf("BuildSingleNull: %w", err)
	}
	if _, err := addRegion(eq, "core", KindXPoint+"."+KindXPoint, core, p.NyCore, p.PsiCore, p.PsiSOL, x); err != nil {
		return fmt.Errorf("BuildSingleNull: %w", err)
	}
	if _, err := addRegion(eq, n3, KindXPoint+"."+KindWall, fromX(leg3, x), ny3, p.PsiPF, p.PsiSOL, x); err != nil {
		return fmt.Errorf("BuildSingleNull: %w", err)
	}

	err = connect(eq, []link{
		{n1, 0, n3, 0},
		{"core", 0, "core", 0},
		{n1, 1, "core", 1},
		{"core", 1, n3, 1},
	})
	if err != nil {
		return fmt.Errorf("BuildSingleNull: %w", err)
	}

	return nil
}

// BuildFourLeg adds four divertor regions around an X-point whose legs all
// reach the wall, as for two coincident X-points. The lower private flux
// region is the quadrant facing most nearly downward. Regions are added in
// global y order: inner lower, inner upper, outer upper, outer lower.
func BuildFourLeg(ctx context.Context, eq *Equilibrium, x geometry.Point, p FourLegParams) error {
	if len(p.PsiLowerPF) != len(p.PsiUpperPF) || len(p.PsiInnerSOL) != len(p.PsiOuterSOL) {
		return fmt.Errorf("BuildFourLeg: nx differs between quadrants: %w", ErrTopology)
	}
	legs, err := eq.XPointLegs(x)
	if err != nil {
		return fmt.Errorf("BuildFourLeg: %w", err)
	}
	psiX := eq.Psi(x)
	al := quadrantAxis(legs, geometry.Point{R: 0, Z: -1})
	au := al.Scale(-1)

	type legSpec struct {
		name    string
		a       geometry.Point
		right   bool
		kind    string
		ny      int
		pf, sol []float64
		toX     bool
	}
	divertors := []legSpec{
		{"inner_lower_divertor", al, false, KindWall + "." + KindXPoint, p.NyInnerLower, p.PsiLowerPF, p.PsiInnerSOL, true},
		{"inner_upper_divertor", au, true, KindXPoint + "." + KindWall, p.NyInnerUpper, p.PsiUpperPF, p.PsiInnerSOL, false},
		{"outer_upper_divertor", au, false, KindWall + "." + KindXPoint, p.NyOuterUpper, p.PsiUpperPF, p.PsiOuterSOL, true},
		{"outer_lower_divertor", al, true, KindXPoint + "." + KindWall, p.NyOuterLower, p.PsiLowerPF, p.PsiOuterSOL, false},
	}
	for _, s := range divertors {
		d, err := pickLeg(legs, s.a, true, s.right)
		if err != nil {
			return fmt.Errorf("BuildFourLeg %s: %w", s.name, err)
		}
		leg, err := traceLeg(ctx, eq, x, psiX, d, StopWall)
		if err != nil {
			return fmt.Errorf("BuildFourLeg %s: %w", s.name, err)
		}
		if s.toX {
			leg = toX(leg, x)
		} else {
			leg = fromX(leg, x)
		}
		if _, err := addRegion(eq, s.name, s.kind, leg, s.ny, s.pf, s.sol, x); err != nil {
			return fmt.Errorf("BuildFourLeg: %w", err)
		}
	}

	err = connect(eq, []link{
		{"inner_lower_divertor", 0, "outer_lower_divertor", 0},
		{"outer_upper_divertor", 0, "inner_upper_divertor", 0},
		{"inner_lower_divertor", 1, "inner_upper_divertor", 1},
		{"outer_upper_divertor", 1, "outer_lower_divertor", 1},
	})
	if err != nil {
		return fmt.Errorf("BuildFourLeg: %w", err)
	}

	return nil
}
