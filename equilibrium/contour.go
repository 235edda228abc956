package equilibrium

import (
	"fmt"
	"math"

	"github.com/katalvlaran/fluxgrid/config"
	"github.com/katalvlaran/fluxgrid/geometry"
	"github.com/katalvlaran/fluxgrid/interp"
	"go.uber.org/zap"
)

const maxFineExtend = 100

// curve is a parametric cubic through points against a distance coordinate.
type curve struct {
	r, z *interp.Spline
}

func newCurve(s []float64, pts []geometry.Point) (curve, error) {
	R := make([]float64, len(pts))
	Z := make([]float64, len(pts))
	for i, p := range pts {
		R[i], Z[i] = p.R, p.Z
	}
	r, err := interp.NewSpline(s, R)
	if err != nil {
		return curve{}, err
	}
	z, err := interp.NewSpline(s, Z)
	if err != nil {
		return curve{}, err
	}

	return curve{r: r, z: z}, nil
}

func (c curve) at(s float64) geometry.Point {
	return geometry.Point{R: c.r.Eval(s), Z: c.z.Eval(s)}
}

// Contour is an ordered list of points on the flux surface psi = PsiVal.
//
// StartInd and EndInd bound the part of the contour that belongs to the
// grid; points outside them are guard points added by extension. Poloidal
// distances are measured along a lazily built FineContour and cached until
// the points or the start/end settings change. A Contour is not safe for
// concurrent use.
type Contour struct {
	PsiVal float64

	points []geometry.Point
	psi    func(R, Z float64) float64
	opts   *config.Options
	log    *zap.Logger

	startInd, endInd         int
	extendLower, extendUpper int

	fine     *FineContour
	distance []float64
}

// NewContour returns a contour through points on psi = psival. The points
// are used as given; call Refine to move them onto the surface.
func NewContour(points []geometry.Point, psi func(R, Z float64) float64, psival float64, opts *config.Options, logger *zap.Logger) *Contour {
	if opts == nil {
		opts = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Contour{
		PsiVal:   psival,
		points:   append([]geometry.Point(nil), points...),
		psi:      psi,
		opts:     opts,
		log:      logger,
		startInd: 0,
		endInd:   len(points) - 1,
	}
}

// Len returns the number of points including guard points.
func (c *Contour) Len() int { return len(c.points) }

// At returns point i.
func (c *Contour) At(i int) geometry.Point { return c.points[i] }

// Points returns a copy of the points.
func (c *Contour) Points() []geometry.Point { return append([]geometry.Point(nil), c.points...) }

// First returns the first point.
func (c *Contour) First() geometry.Point { return c.points[0] }

// Last returns the last point.
func (c *Contour) Last() geometry.Point { return c.points[len(c.points)-1] }

// StartInd is the index of the first non-guard point.
func (c *Contour) StartInd() int { return c.startInd }

// EndInd is the index of the last non-guard point.
func (c *Contour) EndInd() int { return c.endInd }

// ExtendLower is the number of guard points to add below StartInd.
func (c *Contour) ExtendLower() int { return c.extendLower }

// ExtendUpper is the number of guard points to add above EndInd.
func (c *Contour) ExtendUpper() int { return c.extendUpper }

func (c *Contour) invalidate() {
	c.fine = nil
	c.distance = nil
}

// SetStartInd moves the start index, dropping cached distances if it changes.
func (c *Contour) SetStartInd(i int) {
	if c.startInd != i {
		c.invalidate()
		c.startInd = i
	}
}

// SetEndInd moves the end index, dropping cached distances if it changes.
func (c *Contour) SetEndInd(i int) {
	if c.endInd != i {
		c.invalidate()
		c.endInd = i
	}
}

// SetExtendLower sets the number of lower guard points.
func (c *Contour) SetExtendLower(n int) {
	if c.extendLower != n {
		c.fine = nil
		c.extendLower = n
	}
}

// SetExtendUpper sets the number of upper guard points.
func (c *Contour) SetExtendUpper(n int) {
	if c.extendUpper != n {
		c.fine = nil
		c.extendUpper = n
	}
}

// Clone returns a deep copy without cached distances.
func (c *Contour) Clone() *Contour {
	return c.derive(append([]geometry.Point(nil), c.points...))
}

// derive returns a contour on the same surface with new points and the same
// start, end and extension settings.
func (c *Contour) derive(points []geometry.Point) *Contour {
	return &Contour{
		PsiVal:      c.PsiVal,
		points:      points,
		psi:         c.psi,
		opts:        c.opts,
		log:         c.log,
		startInd:    c.startInd,
		endInd:      c.endInd,
		extendLower: c.extendLower,
		extendUpper: c.extendUpper,
	}
}

// WithPsi returns a copy of c moved to the surface psival. The points are
// not refined.
func (c *Contour) WithPsi(points []geometry.Point, psival float64) *Contour {
	n := c.derive(append([]geometry.Point(nil), points...))
	n.PsiVal = psival

	return n
}

// perturb replaces every point p by move(p).
func (c *Contour) perturb(move func(geometry.Point) geometry.Point) {
	c.invalidate()
	for i, p := range c.points {
		c.points[i] = move(p)
	}
}

// Append adds p after the last point.
func (c *Contour) Append(p geometry.Point) {
	c.invalidate()
	c.points = append(c.points, p)
}

// Prepend adds p before the first point. StartInd and EndInd shift so they
// keep referring to the same points.
func (c *Contour) Prepend(p geometry.Point) {
	c.invalidate()
	c.points = append([]geometry.Point{p}, c.points...)
	c.startInd++
	c.endInd++
}

// Insert adds p before index, with list-insert semantics: a negative index
// counts from the end and an index past the end appends. StartInd and EndInd
// shift when the insertion is at or before them.
func (c *Contour) Insert(index int, p geometry.Point) {
	c.distance = nil
	n := len(c.points)
	if index < 0 {
		index += n
		if index < 0 {
			index = 0
		}
	}
	if index > n {
		index = n
	}
	c.points = append(c.points, geometry.Point{})
	copy(c.points[index+1:], c.points[index:])
	c.points[index] = p

	if index <= c.startInd {
		c.SetStartInd(c.startInd + 1)
	}
	if index <= c.endInd {
		c.SetEndInd(c.endInd + 1)
	}
}

// InsertFindPosition inserts p, which must already lie on the surface,
// between its nearest neighbours and returns its index. A point within
// refine_atol of an existing point is not inserted; that point's index is
// returned instead.
func (c *Contour) InsertFindPosition(p geometry.Point) (int, error) {
	n := len(c.points)
	if n < 2 {
		return 0, fmt.Errorf("InsertFindPosition: %d points: %w", n, ErrTooFewPoints)
	}
	d := make([]float64, n)
	minInd := 0
	for i, q := range c.points {
		d[i] = geometry.Distance(p, q)
		if d[i] < d[minInd] {
			minInd = i
		}
	}
	if d[minInd] < c.opts.RefineAtol {
		return minInd, nil
	}

	switch {
	case minInd == 0 && d[1] > geometry.Distance(c.points[0], c.points[1]):
		c.Insert(0, p)
		return 0, nil
	case minInd == 0:
		c.Insert(1, p)
		return 1, nil
	case minInd == n-1 && d[n-2] > geometry.Distance(c.points[n-1], c.points[n-2]):
		c.Append(p)
		return n, nil
	case minInd == n-1:
		c.Insert(n-1, p)
		return n - 1, nil
	case d[minInd-1] > d[minInd+1]:
		c.Insert(minInd+1, p)
		return minInd + 1, nil
	default:
		c.Insert(minInd, p)
		return minInd, nil
	}
}

// Fine returns the FineContour, building it on first use.
func (c *Contour) Fine() (*FineContour, error) {
	if c.fine == nil {
		f, err := newFineContour(c)
		if err != nil {
			return nil, fmt.Errorf("Fine: %w", err)
		}
		c.fine = f
	}

	return c.fine, nil
}

// Distance returns the poloidal distance of every point, measured along the
// FineContour from its first point.
func (c *Contour) Distance() ([]float64, error) {
	if c.distance == nil {
		f, err := c.Fine()
		if err != nil {
			return nil, fmt.Errorf("Distance: %w", err)
		}
		d := make([]float64, len(c.points))
		// both ends of a closed contour lie at the start of the fine contour,
		// which may also overlap itself past the seam, so points are matched
		// by walking forward from the previous match
		closed := len(d) > 2 && c.Closed()
		j := f.nearest(c.points[0])
		if closed {
			j = f.startInd
		}
		for i, p := range c.points {
			j = f.walk(p, j)
			d[i] = f.distanceNear(p, j)
		}
		if closed {
			d[0] = f.distance[f.startInd]
			d[len(d)-1] = d[0] + f.TotalDistance()
		}
		c.distance = d
	}

	return c.distance, nil
}

// TotalDistance returns the poloidal distance from StartInd to EndInd.
func (c *Contour) TotalDistance() (float64, error) {
	d, err := c.Distance()
	if err != nil {
		return 0, fmt.Errorf("TotalDistance: %w", err)
	}

	return d[c.endInd] - d[c.startInd], nil
}

// Reverse reverses the point order, keeping the same grid points between
// StartInd and EndInd.
func (c *Contour) Reverse() {
	n := len(c.points)
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		c.points[i], c.points[j] = c.points[j], c.points[i]
	}
	c.startInd, c.endInd = n-1-c.endInd, n-1-c.startInd
	c.distance = nil
	if c.fine != nil {
		c.fine.reverse()
	}
}

func (c *Contour) tangentAt(i int, closed bool) geometry.Point {
	n := len(c.points)
	if closed && (i == 0 || i == n-1) {
		return c.points[1].Sub(c.points[n-2])
	}
	switch i {
	case 0:
		return c.points[1].Sub(c.points[0])
	case n - 1:
		return c.points[n-1].Sub(c.points[n-2])
	default:
		return c.points[i+1].Sub(c.points[i-1])
	}
}

func (c *Contour) refinedPoints(width, atol float64) ([]geometry.Point, error) {
	if len(c.points) < 2 {
		return nil, fmt.Errorf("%d points: %w", len(c.points), ErrTooFewPoints)
	}
	methods := c.opts.RefineMethodList()
	closed := c.Closed()
	out := make([]geometry.Point, len(c.points))
	for i, p := range c.points {
		if closed && i == len(c.points)-1 {
			out[i] = out[0]
			break
		}
		q, err := c.RefinePoint(p, c.tangentAt(i, closed), width, atol, methods)
		if err != nil {
			return nil, err
		}
		out[i] = q
	}

	return out, nil
}

// Refine moves every point onto the surface using its central-difference
// tangent (one-sided at the ends of an open contour). A closed contour stays
// closed. Zero width or atol select the configured
// defaults. The FineContour is kept.
func (c *Contour) Refine(width, atol float64) error {
	width, atol = c.refineDefaults(width, atol)
	pts, err := c.refinedPoints(width, atol)
	if err != nil {
		return fmt.Errorf("Refine: %w", err)
	}
	c.points = pts
	c.distance = nil

	return nil
}

// Refined returns a refined copy of c.
func (c *Contour) Refined(width, atol float64) (*Contour, error) {
	width, atol = c.refineDefaults(width, atol)
	pts, err := c.refinedPoints(width, atol)
	if err != nil {
		return nil, fmt.Errorf("Refined: %w", err)
	}

	return c.derive(pts), nil
}

func (c *Contour) refineDefaults(width, atol float64) (float64, float64) {
	if width <= 0 {
		width = c.opts.RefineWidth
	}
	if atol <= 0 {
		atol = c.opts.RefineAtol
	}

	return width, atol
}

func cumulativeDistance(pts []geometry.Point) []float64 {
	d := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		d[i] = d[i-1] + geometry.Distance(pts[i-1], pts[i])
	}

	return d
}

// coarseInterp interpolates the points against chord distance measured from
// StartInd.
func (c *Contour) coarseInterp() (curve, []float64, error) {
	d := cumulativeDistance(c.points)
	d0 := d[c.startInd]
	for i := range d {
		d[i] -= d0
	}
	crv, err := newCurve(d, c.points)
	if err != nil {
		return curve{}, nil, fmt.Errorf("coarseInterp: %w", err)
	}

	return crv, d, nil
}

// coarseExtrapLower interpolates the first points, with distance measured
// from point ref.
func (c *Contour) coarseExtrapLower(ref int) (curve, error) {
	n := min(ref+4, len(c.points))
	pts := c.points[:n]
	d := cumulativeDistance(pts)
	d0 := d[ref]
	for i := range d {
		d[i] -= d0
	}
	crv, err := newCurve(d, pts)
	if err != nil {
		return curve{}, fmt.Errorf("coarseExtrapLower: %w", err)
	}

	return crv, nil
}

// coarseExtrapUpper interpolates the last points, with distance measured
// from point ref.
func (c *Contour) coarseExtrapUpper(ref int) (curve, error) {
	lo := max(ref-3, 0)
	pts := c.points[lo:]
	d := cumulativeDistance(pts)
	d0 := d[ref-lo]
	for i := range d {
		d[i] -= d0
	}
	crv, err := newCurve(d, pts)
	if err != nil {
		return curve{}, fmt.Errorf("coarseExtrapUpper: %w", err)
	}

	return crv, nil
}

// Sfunc returns the poloidal distance from StartInd as a function of
// (fractional) index relative to StartInd. It is 0 below the start and the
// total distance beyond the end.
func (c *Contour) Sfunc() (func(i float64) float64, error) {
	d, err := c.Distance()
	if err != nil {
		return nil, fmt.Errorf("Sfunc: %w", err)
	}
	idx := make([]float64, len(d))
	for i := range idx {
		idx[i] = float64(i)
	}
	spl, err := interp.NewSpline(idx, d)
	if err != nil {
		return nil, fmt.Errorf("Sfunc: %w", err)
	}
	start, end := c.startInd, c.endInd
	s0, s1 := d[start], d[end]

	return func(i float64) float64 {
		switch {
		case i <= 0:
			return 0
		case i >= float64(end-start):
			return s1 - s0
		default:
			return spl.Eval(i+float64(start)) - s0
		}
	}, nil
}

// TemporaryExtend adds guard points beyond each end by extrapolating the
// coarse points with spacing dsLower/dsUpper and refining them. A
// non-positive spacing uses the current spacing at that end.
func (c *Contour) TemporaryExtend(lower, upper int, dsLower, dsUpper float64) error {
	if (lower > 0 || upper > 0) && len(c.points) < 2 {
		return fmt.Errorf("TemporaryExtend: %w", ErrTooFewPoints)
	}
	methods := c.opts.RefineMethodList()
	width, atol := c.refineDefaults(0, 0)

	if lower > 0 {
		ds := dsLower
		if ds <= 0 {
			d, err := c.Distance()
			if err != nil {
				return fmt.Errorf("TemporaryExtend: %w", err)
			}
			ds = d[1] - d[0]
		}
		for i := 0; i < lower; i++ {
			crv, err := c.coarseExtrapLower(0)
			if err != nil {
				return fmt.Errorf("TemporaryExtend: %w", err)
			}
			guess := crv.at(-ds)
			p, err := c.RefinePoint(guess, guess.Sub(c.points[0]), width, atol, methods)
			if err != nil {
				return fmt.Errorf("TemporaryExtend: %w", err)
			}
			c.Prepend(p)
		}
	}
	if upper > 0 {
		ds := dsUpper
		if ds <= 0 {
			d, err := c.Distance()
			if err != nil {
				return fmt.Errorf("TemporaryExtend: %w", err)
			}
			ds = d[len(d)-1] - d[len(d)-2]
		}
		for i := 0; i < upper; i++ {
			crv, err := c.coarseExtrapUpper(len(c.points) - 1)
			if err != nil {
				return fmt.Errorf("TemporaryExtend: %w", err)
			}
			guess := crv.at(ds)
			p, err := c.RefinePoint(guess, guess.Sub(c.Last()), width, atol, methods)
			if err != nil {
				return fmt.Errorf("TemporaryExtend: %w", err)
			}
			c.Append(p)
		}
	}

	return nil
}

// CheckFineContourExtend extends the FineContour until it reaches past the
// first and last points of c.
func (c *Contour) CheckFineContourExtend() error {
	for iter := 0; iter < maxFineExtend; iter++ {
		f, err := c.Fine()
		if err != nil {
			return fmt.Errorf("CheckFineContourExtend: %w", err)
		}
		nLower := f.extensionNeeded(c.First(), true)
		nUpper := f.extensionNeeded(c.Last(), false)
		if nLower == 0 && nUpper == 0 {
			return nil
		}
		if err := f.Extend(nLower, nUpper); err != nil {
			return fmt.Errorf("CheckFineContourExtend: %w", err)
		}
		c.distance = nil
	}

	return fmt.Errorf("CheckFineContourExtend: %d extensions: %w", maxFineExtend, ErrSolution)
}

// RegridOptions controls Contour.Regridded. Zero Width or Atol select the
// configured refinement defaults; a nil Sfunc spaces points uniformly; nil
// extension counts keep the contour's own.
type RegridOptions struct {
	Width, Atol float64
	Sfunc       func(i float64) float64
	ExtendLower *int
	ExtendUpper *int
}

// Regridded returns a new contour of npoints grid points (plus guard
// points) placed at poloidal distances Sfunc(index) along c and refined onto
// the surface. c itself is not modified.
func (c *Contour) Regridded(npoints int, ro RegridOptions) (*Contour, error) {
	if npoints < 2 {
		return nil, fmt.Errorf("Regridded: npoints=%d: %w", npoints, ErrTooFewPoints)
	}
	width, atol := c.refineDefaults(ro.Width, ro.Atol)

	w := c.Clone()
	if ro.ExtendLower != nil {
		w.SetExtendLower(*ro.ExtendLower)
	}
	if ro.ExtendUpper != nil {
		w.SetExtendUpper(*ro.ExtendUpper)
	}
	n := len(w.points)
	if n < 2 {
		return nil, fmt.Errorf("Regridded: %w", ErrTooFewPoints)
	}
	el, eu := w.extendLower, w.extendUpper
	err := w.TemporaryExtend(el, eu,
		geometry.Distance(w.points[1], w.points[0]),
		geometry.Distance(w.points[n-2], w.points[n-1]))
	if err != nil {
		return nil, fmt.Errorf("Regridded: %w", err)
	}

	total := npoints + el + eu
	s := make([]float64, total)
	var sbegin float64
	if ro.Sfunc != nil {
		for k := range s {
			s[k] = ro.Sfunc(float64(k - el))
		}
		sbegin = ro.Sfunc(0)
	} else {
		length, err := w.TotalDistance()
		if err != nil {
			return nil, fmt.Errorf("Regridded: %w", err)
		}
		for k := range s {
			s[k] = length / float64(npoints-1) * float64(k-el)
		}
	}

	f, err := w.Fine()
	if err != nil {
		return nil, fmt.Errorf("Regridded: %w", err)
	}
	origLower, origUpper := f.extendLowerFine, f.extendUpperFine
	tolLower := 0.25 * (f.distance[1] - f.distance[0])
	for iter := 0; s[0] < -f.distance[f.startInd]-tolLower; iter++ {
		if iter >= maxFineExtend {
			return nil, fmt.Errorf("Regridded: lower fine contour extension: %w", ErrSolution)
		}
		if err := f.Extend(max(origLower, 1), 0); err != nil {
			return nil, fmt.Errorf("Regridded: %w", err)
		}
	}
	last := len(f.distance) - 1
	tolUpper := 0.25 * (f.distance[last] - f.distance[last-1])
	for iter := 0; ; iter++ {
		last = len(f.distance) - 1
		if s[total-1] <= f.distance[last]-f.distance[f.startInd]+tolUpper {
			break
		}
		if iter >= maxFineExtend {
			return nil, fmt.Errorf("Regridded: upper fine contour extension: %w", ErrSolution)
		}
		if err := f.Extend(0, max(origUpper, 1)); err != nil {
			return nil, fmt.Errorf("Regridded: %w", err)
		}
	}

	crv, err := f.interpFunction()
	if err != nil {
		return nil, fmt.Errorf("Regridded: %w", err)
	}
	pts := make([]geometry.Point, total)
	for k := range s {
		pts[k] = crv.at(s[k] - sbegin)
	}

	nc := w.derive(pts)
	nc.startInd = el
	nc.endInd = total - 1 - eu
	nc.fine = f
	// interpolated from the fine contour, so a narrow search suffices
	if err := nc.Refine(width/100, atol); err != nil {
		return nil, fmt.Errorf("Regridded: %w", err)
	}

	return nc, nil
}

// Closed reports whether the last point coincides with the first.
func (c *Contour) Closed() bool {
	if len(c.points) < 3 {
		return false
	}
	scale := 0.0
	for _, p := range c.points {
		scale = math.Max(scale, math.Max(math.Abs(p.R), math.Abs(p.Z)))
	}

	return closeTo(c.First(), c.Last(), scale)
}

// spanAll makes every point part of the grid.
func (c *Contour) spanAll() {
	c.SetStartInd(0)
	c.SetEndInd(len(c.points) - 1)
}

// closeTo reports whether p and q coincide to within a relative tolerance
// of scale.
func closeTo(p, q geometry.Point, scale float64) bool {
	return geometry.Distance(p, q) <= 1e-12*math.Max(scale, 1)
}
