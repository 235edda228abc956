package equilibrium

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/fluxgrid/config"
	"github.com/katalvlaran/fluxgrid/geometry"
)

// End kinds of a Region.
const (
	KindWall   = "wall"
	KindXPoint = "X"
)

// Connection names a segment of a region.
type Connection struct {
	Region  string
	Segment int
}

// Connections holds the neighbours of one segment; nil means no neighbour
// (a boundary).
type Connections struct {
	Inner, Outer, Lower, Upper *Connection
}

// Region is a poloidal section of the grid built around a reference
// contour, normally part of a separatrix. It is split radially into
// segments, each with its own nx and psi values.
type Region struct {
	*Contour

	Name string
	// Kind is "<lower>.<upper>" with each end KindWall or KindXPoint.
	Kind      string
	NSegments int

	Nx         []int
	NyNoGuards int

	Connections []Connections

	// PsiVals holds 2*Nx[i]+1 values for each segment.
	PsiVals               [][]float64
	SeparatrixRadialIndex int

	XPointsAtStart []*geometry.Point
	XPointsAtEnd   []*geometry.Point

	// WallSurfaceAtStart and WallSurfaceAtEnd are the direction of the wall
	// at wall ends.
	WallSurfaceAtStart *geometry.Point
	WallSurfaceAtEnd   *geometry.Point

	SqrtALower, SqrtBLower *float64
	SqrtAUpper, SqrtBUpper *float64
	MonotonicDLower        *float64
	MonotonicDUpper        *float64
	NNorm                  float64

	// Nonorthogonal ranges at the separatrix and at the inner and outer
	// radial boundaries.
	NonorthRangeLower, NonorthRangeLowerInner, NonorthRangeLowerOuter *float64
	NonorthRangeUpper, NonorthRangeUpperInner, NonorthRangeUpperOuter *float64

	eq *Equilibrium
}

func ptr(v float64) *float64 { return &v }

// NewRegion builds a Region on contour c. nx has one entry per segment.
// Spacing parameters are set from the end kinds and eq's options.
func NewRegion(eq *Equilibrium, name, kind string, nx []int, ny int, c *Contour) (*Region, error) {
	lower, upper, ok := strings.Cut(kind, ".")
	if !ok || !validEnd(lower) || !validEnd(upper) {
		return nil, fmt.Errorf("NewRegion %q: kind %q: %w", name, kind, ErrInvalidKind)
	}
	if len(nx) == 0 || ny < 1 {
		return nil, fmt.Errorf("NewRegion %q: nx=%v ny=%d: %w", name, nx, ny, config.ErrInvalidOption)
	}
	n := len(nx)
	r := &Region{
		Contour:        c,
		Name:           name,
		Kind:           kind,
		NSegments:      n,
		Nx:             append([]int(nil), nx...),
		NyNoGuards:     ny,
		Connections:    make([]Connections, n),
		PsiVals:        make([][]float64, n),
		XPointsAtStart: make([]*geometry.Point, n+1),
		XPointsAtEnd:   make([]*geometry.Point, n+1),
		eq:             eq,
	}
	for i := range r.Connections {
		if i > 0 {
			r.Connections[i].Inner = &Connection{Region: name, Segment: i - 1}
		}
		if i < n-1 {
			r.Connections[i].Outer = &Connection{Region: name, Segment: i + 1}
		}
	}
	r.setupSpacing(lower, upper)

	return r, nil
}

func validEnd(s string) bool { return s == KindWall || s == KindXPoint }

func (r *Region) setupSpacing(lower, upper string) {
	o := r.eq.Options
	if lower == KindWall {
		r.SqrtBLower = o.TargetPoloidalSpacingLength
		r.MonotonicDLower = o.TargetPoloidalSpacingLength
	} else {
		r.SqrtALower = ptr(o.XPointPoloidalSpacingLength)
		r.SqrtBLower = ptr(0)
		r.MonotonicDLower = ptr(o.XPointPoloidalSpacingLength)
	}
	if upper == KindWall {
		r.SqrtBUpper = o.TargetPoloidalSpacingLength
		r.MonotonicDUpper = o.TargetPoloidalSpacingLength
	} else {
		r.SqrtAUpper = ptr(o.XPointPoloidalSpacingLength)
		r.SqrtBUpper = ptr(0)
		r.MonotonicDUpper = ptr(o.XPointPoloidalSpacingLength)
	}
	if o.NNorm != nil {
		r.NNorm = *o.NNorm
	} else {
		r.NNorm = float64(r.NyNoGuards)
	}
	if o.Orthogonal {
		return
	}
	if lower == KindWall {
		r.MonotonicDLower = ptr(o.NonorthTargetSpacingLength)
		r.NonorthRangeLower, r.NonorthRangeLowerInner, r.NonorthRangeLowerOuter = o.NonorthTargetRanges()
	} else {
		r.MonotonicDLower = ptr(o.NonorthXPointSpacingLength)
		r.NonorthRangeLower, r.NonorthRangeLowerInner, r.NonorthRangeLowerOuter = o.NonorthXPointRanges()
	}
	if upper == KindWall {
		r.MonotonicDUpper = ptr(o.NonorthTargetSpacingLength)
		r.NonorthRangeUpper, r.NonorthRangeUpperInner, r.NonorthRangeUpperOuter = o.NonorthTargetRanges()
	} else {
		r.MonotonicDUpper = ptr(o.NonorthXPointSpacingLength)
		r.NonorthRangeUpper, r.NonorthRangeUpperInner, r.NonorthRangeUpperOuter = o.NonorthXPointRanges()
	}
}

// LowerKind returns the kind of the start of the region.
func (r *Region) LowerKind() string {
	k, _, _ := strings.Cut(r.Kind, ".")

	return k
}

// UpperKind returns the kind of the end of the region.
func (r *Region) UpperKind() string {
	_, k, _ := strings.Cut(r.Kind, ".")

	return k
}

// Ny returns the number of poloidal cells of segment seg, including guard
// cells at unconnected ends.
func (r *Region) Ny(seg int) int {
	n := r.NyNoGuards
	if r.Connections[seg].Lower == nil {
		n += r.eq.Options.YBoundaryGuards
	}
	if r.Connections[seg].Upper == nil {
		n += r.eq.Options.YBoundaryGuards
	}

	return n
}

// NxInsideSeparatrix is the number of radial grid points (faces and centres)
// in the segments inside the separatrix.
func (r *Region) NxInsideSeparatrix() int {
	n := 1
	for _, v := range r.Nx[:r.SeparatrixRadialIndex] {
		n += 2 * v
	}

	return n
}

// NxOutsideSeparatrix is the same count for the segments outside.
func (r *Region) NxOutsideSeparatrix() int {
	n := 1
	for _, v := range r.Nx[r.SeparatrixRadialIndex:] {
		n += 2 * v
	}

	return n
}

// Copy returns a deep copy of r.
func (r *Region) Copy() *Region {
	return r.withContour(r.Contour.Clone())
}

// withContour returns a copy of r's metadata around c.
func (r *Region) withContour(c *Contour) *Region {
	n := *r
	n.Contour = c
	n.Nx = append([]int(nil), r.Nx...)
	n.Connections = make([]Connections, len(r.Connections))
	for i, cn := range r.Connections {
		n.Connections[i] = Connections{
			Inner: cloneConn(cn.Inner),
			Outer: cloneConn(cn.Outer),
			Lower: cloneConn(cn.Lower),
			Upper: cloneConn(cn.Upper),
		}
	}
	n.PsiVals = make([][]float64, len(r.PsiVals))
	for i, v := range r.PsiVals {
		n.PsiVals[i] = append([]float64(nil), v...)
	}
	n.XPointsAtStart = clonePoints(r.XPointsAtStart)
	n.XPointsAtEnd = clonePoints(r.XPointsAtEnd)
	n.WallSurfaceAtStart = clonePoint(r.WallSurfaceAtStart)
	n.WallSurfaceAtEnd = clonePoint(r.WallSurfaceAtEnd)

	return &n
}

func cloneConn(c *Connection) *Connection {
	if c == nil {
		return nil
	}
	v := *c

	return &v
}

func clonePoint(p *geometry.Point) *geometry.Point {
	if p == nil {
		return nil
	}
	v := *p

	return &v
}

func clonePoints(ps []*geometry.Point) []*geometry.Point {
	out := make([]*geometry.Point, len(ps))
	for i, p := range ps {
		out[i] = clonePoint(p)
	}

	return out
}

// Regridded returns a copy of r with 2*NyNoGuards+1 points spaced by the
// configured poloidal spacing, plus 2*y_boundary_guards guard points at
// each end of segment seg that has no connection.
func (r *Region) Regridded(seg int) (*Region, error) {
	if seg < 0 || seg >= r.NSegments {
		return nil, fmt.Errorf("Regridded %s: segment %d: %w", r.Name, seg, ErrConnection)
	}
	var el, eu int
	if r.Connections[seg].Lower == nil {
		el = 2 * r.eq.Options.YBoundaryGuards
	}
	if r.Connections[seg].Upper == nil {
		eu = 2 * r.eq.Options.YBoundaryGuards
	}
	total, err := r.TotalDistance()
	if err != nil {
		return nil, fmt.Errorf("Regridded %s: %w", r.Name, err)
	}
	npoints := 2*r.NyNoGuards + 1
	sfunc, err := r.sfuncFixedSpacing(npoints, total, el, eu)
	if err != nil {
		return nil, fmt.Errorf("Regridded %s: %w", r.Name, err)
	}
	c, err := r.Contour.Regridded(npoints, RegridOptions{
		Sfunc:       sfunc,
		ExtendLower: &el,
		ExtendUpper: &eu,
	})
	if err != nil {
		return nil, fmt.Errorf("Regridded %s: %w", r.Name, err)
	}

	return r.withContour(c), nil
}

// SfuncFixedSpacing returns s(i) for npoints points spread over distance
// using the configured poloidal_spacing_method.
func (r *Region) SfuncFixedSpacing(npoints int, distance float64) (func(float64) float64, error) {
	return r.sfuncFixedSpacing(npoints, distance, r.ExtendLower(), r.ExtendUpper())
}

func (r *Region) sfuncFixedSpacing(npoints int, distance float64, el, eu int) (func(float64) float64, error) {
	o := r.eq.Options
	N := float64(npoints - 1)
	var (
		sfunc func(float64) float64
		err   error
	)
	method := o.PoloidalSpacingMethod
	if !o.Orthogonal {
		switch o.NonorthSpacingMethod {
		case config.NonorthOrthogonal:
		case config.NonorthPerpOrthogonalCombined:
			sfunc, err = r.CombineSfuncs(r.Contour, 0, nil, r.WallSurfaceAtStart, r.WallSurfaceAtEnd)
			if err != nil {
				return nil, err
			}
			return sfunc, nil
		default:
			// the same fixed spacing at both ends of the separatrix, so regions
			// sharing an X-point agree however their other contours are placed
			method = config.SpacingMonotonic
		}
	}
	switch method {
	case config.SpacingSqrt:
		sfunc, err = SqrtPoloidalDistanceFunc(distance, N, r.NNorm,
			r.SqrtALower, r.SqrtBLower, r.SqrtAUpper, r.SqrtBUpper, o.SfuncChecktol)
	case config.SpacingMonotonic:
		dl := distance * r.NNorm / N
		du := dl
		if r.MonotonicDLower != nil {
			dl = *r.MonotonicDLower
		}
		if r.MonotonicDUpper != nil {
			du = *r.MonotonicDUpper
		}
		sfunc, err = MonotonicPoloidalDistanceFunc(distance, N, r.NNorm, dl, du)
	case config.SpacingUniform:
		sfunc = func(i float64) float64 { return i * distance / N }
	default:
		return nil, fmt.Errorf("SfuncFixedSpacing: poloidal_spacing_method %q: %w",
			method, config.ErrInvalidOption)
	}
	if err != nil {
		return nil, r.spacingHint(err)
	}
	if err := r.checkMonotonic(sfunc, el, eu); err != nil {
		return nil, err
	}

	return sfunc, nil
}

func (r *Region) checkMonotonic(sfunc func(float64) float64, el, eu int) error {
	prev := sfunc(float64(-el))
	var bad []int
	for i := -el + 1; i <= 2*r.NyNoGuards+eu; i++ {
		s := sfunc(float64(i))
		if s < prev {
			bad = append(bad, i)
		}
		prev = s
	}
	if len(bad) > 0 {
		return r.spacingHint(fmt.Errorf("spacing function decreasing at indices %v: %w", bad, ErrSpacingNotMonotonic))
	}

	return nil
}

func (r *Region) spacingHint(err error) error {
	if !r.eq.Options.Orthogonal {
		return fmt.Errorf("region %s: %w; try adjusting the nonorthogonal_*_poloidal_spacing options", r.Name, err)
	}

	return fmt.Errorf("region %s: %w; try adjusting target_poloidal_spacing_length or xpoint_poloidal_spacing_length",
		r.Name, err)
}
