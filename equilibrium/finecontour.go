package equilibrium

import (
	"fmt"
	"math"

	"github.com/katalvlaran/fluxgrid/geometry"
	"go.uber.org/zap"
)

// FineContour is a high-resolution copy of a Contour with points equally
// spaced in poloidal distance. It is the reference for measuring distance
// along its parent.
type FineContour struct {
	parent *Contour

	positions []geometry.Point
	distance  []float64

	startInd, endInd                 int
	extendLowerFine, extendUpperFine int
	indicesFine                      []float64
}

func newFineContour(parent *Contour) (*FineContour, error) {
	nfine := parent.opts.FinecontourNfine
	nInput := parent.endInd - parent.startInd + 1
	if nInput < 2 || len(parent.points) < 2 {
		return nil, fmt.Errorf("newFineContour: %d points: %w", nInput, ErrTooFewPoints)
	}

	f := &FineContour{
		parent:          parent,
		extendLowerFine: 2 * (parent.extendLower * nfine) / nInput,
		extendUpperFine: 2 * (parent.extendUpper * nfine) / nInput,
	}
	f.setIndices()

	// extrapolating past the ends of the fine contour is poor, so work from a
	// copy extended by as much again as the parent
	cp := parent.Clone()
	n := len(cp.points)
	err := cp.TemporaryExtend(parent.extendLower, parent.extendUpper,
		geometry.Distance(cp.points[0], cp.points[1]),
		geometry.Distance(cp.points[n-1], cp.points[n-2]))
	if err != nil {
		return nil, fmt.Errorf("newFineContour: %w", err)
	}
	crv, est, err := cp.coarseInterp()
	if err != nil {
		return nil, fmt.Errorf("newFineContour: %w", err)
	}
	scale := est[cp.endInd] / float64(nfine-1)
	f.positions = make([]geometry.Point, len(f.indicesFine))
	for i, idx := range f.indicesFine {
		f.positions[i] = crv.at(scale * idx)
	}

	if err := f.equaliseSpacing(); err != nil {
		return nil, fmt.Errorf("newFineContour: %w", err)
	}

	return f, nil
}

func (f *FineContour) setIndices() {
	nfine := f.parent.opts.FinecontourNfine
	total := nfine + f.extendLowerFine + f.extendUpperFine
	f.indicesFine = make([]float64, total)
	for i := range f.indicesFine {
		f.indicesFine[i] = float64(i - f.extendLowerFine)
	}
	f.startInd = f.extendLowerFine
	f.endInd = nfine - 1 + f.extendLowerFine
}

// Len returns the number of fine points.
func (f *FineContour) Len() int { return len(f.positions) }

// Positions returns a copy of the fine points.
func (f *FineContour) Positions() []geometry.Point {
	return append([]geometry.Point(nil), f.positions...)
}

// TotalDistance is the poloidal length between the start and end points.
func (f *FineContour) TotalDistance() float64 {
	return f.distance[f.endInd] - f.distance[f.startInd]
}

func (f *FineContour) calcDistance() {
	f.distance = cumulativeDistance(f.positions)
}

func (f *FineContour) spacingError() float64 {
	n := len(f.distance) - 1
	mean := (f.distance[n] - f.distance[0]) / float64(n)
	worst := 0.0
	for i := 0; i < n; i++ {
		worst = math.Max(worst, math.Abs(f.distance[i+1]-f.distance[i]-mean))
	}

	return worst
}

// equaliseSpacing refines the points onto the surface and redistributes
// them until the spacing varies by at most finecontour_atol.
func (f *FineContour) equaliseSpacing() error {
	if err := f.refine(); err != nil {
		return err
	}
	f.calcDistance()
	dsErr := f.spacingError()

	nfine := f.parent.opts.FinecontourNfine
	maxits := f.parent.opts.FinecontourMaxits
	for count := 1; dsErr > f.parent.opts.FinecontourAtol; count++ {
		if maxits > 0 && count > maxits {
			f.parent.log.Warn("fine contour spacing did not converge",
				zap.Int("maxits", maxits),
				zap.Float64("ds_error", dsErr),
				zap.Float64("psi", f.parent.PsiVal))
			break
		}
		crv, err := f.interpFunction()
		if err != nil {
			return err
		}
		scale := f.TotalDistance() / float64(nfine-1)
		for i, idx := range f.indicesFine {
			f.positions[i] = crv.at(scale * idx)
		}
		if err := f.refine(); err != nil {
			return err
		}
		f.calcDistance()
		dsErr = f.spacingError()
	}

	return nil
}

// Extend adds lower points before the first and upper points after the last
// fine point, keeping the spacing equal.
func (f *FineContour) Extend(lower, upper int) error {
	if lower == 0 && upper == 0 {
		return nil
	}
	cp := f.parent.Clone()
	if len(cp.points) < 2 {
		return fmt.Errorf("Extend: %w", ErrTooFewPoints)
	}

	newPos := make([]geometry.Point, len(f.positions)+lower+upper)
	copy(newPos[lower:], f.positions)

	if lower > 0 {
		f.extendLowerFine += lower
		ds := f.distance[1] - f.distance[0]
		dsCoarse := geometry.Distance(cp.points[0], cp.points[1])
		coarse := int(float64(lower) * ds / dsCoarse)
		if err := cp.TemporaryExtend(coarse, 0, dsCoarse, 0); err != nil {
			return fmt.Errorf("Extend: %w", err)
		}
		ref, err := cp.InsertFindPosition(f.positions[0])
		if err != nil {
			return fmt.Errorf("Extend: %w", err)
		}
		crv, err := cp.coarseExtrapLower(ref)
		if err != nil {
			return fmt.Errorf("Extend: %w", err)
		}
		for k := 0; k < lower; k++ {
			newPos[k] = crv.at(float64(k-lower) * ds)
		}
	}

	if upper > 0 {
		f.extendUpperFine += upper
		n := len(f.distance)
		ds := f.distance[n-1] - f.distance[n-2]
		m := len(cp.points)
		dsCoarse := geometry.Distance(cp.points[m-2], cp.points[m-1])
		coarse := int(float64(upper) * ds / dsCoarse)
		if err := cp.TemporaryExtend(0, coarse, 0, dsCoarse); err != nil {
			return fmt.Errorf("Extend: %w", err)
		}
		ref, err := cp.InsertFindPosition(f.positions[len(f.positions)-1])
		if err != nil {
			return fmt.Errorf("Extend: %w", err)
		}
		crv, err := cp.coarseExtrapUpper(ref)
		if err != nil {
			return fmt.Errorf("Extend: %w", err)
		}
		base := len(newPos) - upper
		for k := 0; k < upper; k++ {
			newPos[base+k] = crv.at(float64(k+1) * ds)
		}
	}

	f.positions = newPos
	f.setIndices()
	if err := f.equaliseSpacing(); err != nil {
		return fmt.Errorf("Extend: %w", err)
	}

	return nil
}

// extensionNeeded returns how many fine points must be added at one end so
// the fine contour reaches past p, or 0 if it already does.
func (f *FineContour) extensionNeeded(p geometry.Point, lower bool) int {
	n := len(f.positions)
	minInd := f.nearest(p)
	if lower {
		if minInd == 0 && geometry.Distance(p, f.positions[1]) > geometry.Distance(f.positions[1], f.positions[0]) {
			ds := f.distance[1] - f.distance[0]
			return max(int(math.Ceil(geometry.Distance(p, f.positions[0])/ds)), 1)
		}

		return 0
	}
	if minInd == n-1 && geometry.Distance(p, f.positions[n-2]) > geometry.Distance(f.positions[n-1], f.positions[n-2]) {
		ds := f.distance[n-1] - f.distance[n-2]
		return max(int(math.Ceil(geometry.Distance(p, f.positions[n-1])/ds)), 1)
	}

	return 0
}

// interpFunction interpolates the fine points against distance from
// startInd, extrapolating beyond the ends.
func (f *FineContour) interpFunction() (curve, error) {
	d := make([]float64, len(f.distance))
	d0 := f.distance[f.startInd]
	for i := range d {
		d[i] = f.distance[i] - d0
	}

	return newCurve(d, f.positions)
}

func (f *FineContour) refine() error {
	n := len(f.positions)
	if n < 2 {
		return fmt.Errorf("refine: %w", ErrTooFewPoints)
	}
	methods := f.parent.opts.RefineMethodList()
	width, atol := f.parent.refineDefaults(0, 0)
	out := make([]geometry.Point, n)
	for i, p := range f.positions {
		var t geometry.Point
		switch i {
		case 0:
			t = f.positions[1].Sub(f.positions[0])
		case n - 1:
			t = f.positions[n-1].Sub(f.positions[n-2])
		default:
			t = f.positions[i+1].Sub(f.positions[i-1])
		}
		q, err := f.parent.RefinePoint(p, t, width, atol, methods)
		if err != nil {
			return fmt.Errorf("refine: %w", err)
		}
		out[i] = q
	}
	f.positions = out

	return nil
}

func (f *FineContour) reverse() {
	n := len(f.positions)
	if f.distance != nil {
		total := f.distance[n-1]
		d := make([]float64, n)
		for i := range d {
			d[i] = total - f.distance[n-1-i]
		}
		f.distance = d
	}
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		f.positions[i], f.positions[j] = f.positions[j], f.positions[i]
	}
	f.extendLowerFine, f.extendUpperFine = f.extendUpperFine, f.extendLowerFine
	f.setIndices()
}

// DistanceOf returns the distance along the fine contour of p, which is
// assumed to lie on the surface, blending the two nearest fine points.
func (f *FineContour) DistanceOf(p geometry.Point) float64 {
	return f.distanceNear(p, f.nearest(p))
}

// nearest returns the index of the fine point closest to p.
func (f *FineContour) nearest(p geometry.Point) int {
	best, bestD := 0, math.Inf(1)
	for i, q := range f.positions {
		if d := geometry.Distance(p, q); d < bestD {
			best, bestD = i, d
		}
	}

	return best
}

// walk moves forward from fine index from while the fine points get closer
// to p and returns where it stops.
func (f *FineContour) walk(p geometry.Point, from int) int {
	i := from
	d := geometry.Distance(p, f.positions[i])
	for i+1 < len(f.positions) {
		next := geometry.Distance(p, f.positions[i+1])
		if next > d {
			break
		}
		i, d = i+1, next
	}

	return i
}

// distanceNear returns the distance along the fine contour of p, which is
// assumed to lie on the surface next to fine point i1. It blends the
// distances of i1 and its closer neighbour in proportion to their
// separation from p.
func (f *FineContour) distanceNear(p geometry.Point, i1 int) float64 {
	n := len(f.positions)
	var i2 int
	switch {
	case i1+1 >= n:
		i2 = i1 - 1
	case i1-1 < 0:
		i2 = 1
	case geometry.Distance(p, f.positions[i1+1]) < geometry.Distance(p, f.positions[i1-1]):
		i2 = i1 + 1
	default:
		i2 = i1 - 1
	}
	d1, d2 := geometry.Distance(p, f.positions[i1]), geometry.Distance(p, f.positions[i2])
	if d1+d2 == 0 {
		return f.distance[i1]
	}
	r := d2 / (d1 + d2)

	return r*f.distance[i1] + (1-r)*f.distance[i2]
}
