package equilibrium

import (
	"fmt"
	"math"

	"github.com/katalvlaran/fluxgrid/geometry"
	"github.com/katalvlaran/fluxgrid/interp"
)

// interpSSperp returns the poloidal distance from the start point as a
// function of s_perp, the distance along the normal to vec, and the total
// s_perp between the start and end points. Where s_perp would decrease
// along the contour the remainder is reflected, so the function is only
// meaningful near the ends.
func (f *FineContour) interpSSperp(vec geometry.Point) (func(float64) float64, float64, error) {
	u := geometry.Point{R: -vec.Z, Z: vec.R}.Unit()
	if u == (geometry.Point{}) {
		return nil, 0, fmt.Errorf("interpSSperp: zero surface vector: %w", ErrSolution)
	}
	start := f.positions[f.startInd]
	sperp := make([]float64, len(f.positions))
	for i, p := range f.positions {
		sperp[i] = p.Sub(start).Dot(u)
	}
	for i := f.startInd + 1; i < len(sperp); i++ {
		if sperp[i] < sperp[i-1] {
			pivot := sperp[i-1]
			for k := i; k < len(sperp); k++ {
				sperp[k] = 2*pivot - sperp[k]
			}
		}
	}
	for i := f.startInd - 1; i >= 0; i-- {
		if sperp[i+1] < sperp[i] {
			pivot := sperp[i+1]
			for k := 0; k <= i; k++ {
				sperp[k] = 2*pivot - sperp[k]
			}
		}
	}
	s := make([]float64, len(f.distance))
	for i, d := range f.distance {
		s[i] = d - f.distance[f.startInd]
	}
	spl, err := interp.NewSpline(sperp, s)
	if err != nil {
		return nil, 0, fmt.Errorf("interpSSperp: %w", err)
	}

	return spl.Eval, sperp[f.endInd] - sperp[f.startInd], nil
}

// monotonicD returns the end spacings of the monotonic spacing function for
// npoints points over distance.
func (r *Region) monotonicD(npoints int, distance float64) (float64, float64) {
	dl := distance * r.NNorm / float64(npoints-1)
	du := dl
	if r.MonotonicDLower != nil {
		dl = *r.MonotonicDLower
	}
	if r.MonotonicDUpper != nil {
		du = *r.MonotonicDUpper
	}

	return dl, du
}

// SfuncFixedPerpSpacing returns s(i) for npoints points on c whose spacing
// at the ends is fixed when measured normal to vec. A nil vec fixes the
// poloidal spacing instead.
func (r *Region) SfuncFixedPerpSpacing(npoints int, c *Contour, vec *geometry.Point) (func(float64) float64, error) {
	total, err := c.TotalDistance()
	if err != nil {
		return nil, fmt.Errorf("SfuncFixedPerpSpacing: %w", err)
	}
	N := float64(npoints - 1)
	if vec == nil {
		dl, du := r.monotonicD(npoints, total)
		sfunc, err := MonotonicPoloidalDistanceFunc(total, N, r.NNorm, dl, du)
		if err != nil {
			return nil, r.spacingHint(err)
		}

		return sfunc, nil
	}

	f, err := c.Fine()
	if err != nil {
		return nil, fmt.Errorf("SfuncFixedPerpSpacing: %w", err)
	}
	sOfSperp, perpTotal, err := f.interpSSperp(*vec)
	if err != nil {
		return nil, fmt.Errorf("SfuncFixedPerpSpacing: %w", err)
	}
	dl, du := r.monotonicD(npoints, perpTotal)
	sperp, err := MonotonicPoloidalDistanceFunc(perpTotal, N, r.NNorm, dl, du)
	if err != nil {
		return nil, r.spacingHint(err)
	}

	return func(i float64) float64 { return sOfSperp(sperp(i)) }, nil
}

// rangeAt interpolates an end range between its separatrix value and its
// value at the inner or outer radial boundary, with zero radial gradient
// at the separatrix. xind is the global half-index of the contour.
func (r *Region) rangeAt(sep, inner, outer *float64, xind int) *float64 {
	if sep == nil {
		return nil
	}
	power := r.eq.Options.NonorthRadialRangePower
	ix := float64(xind)
	edge, n := *outer, float64(r.NxOutsideSeparatrix()-1)
	if ix < 0 {
		ix, edge, n = -ix, *inner, float64(r.NxInsideSeparatrix()-1)
	}
	w := 0.0
	if n > 0 {
		w = math.Pow(ix/n, power)
	}

	return ptr((1-w)*(*sep) + w*edge)
}

// CombineSfuncs returns s(i) for the contour c at global half-index xind.
// Near each end the spacing is fixed, normal to lower or upper when given
// and poloidally otherwise; away from the ends it tends to orthogonal,
// following the points placed by orthogonal spacing. A nil orthogonal
// blends the two fixed spacings, so that calling again with the contour's
// own Sfunc reproduces the same points.
func (r *Region) CombineSfuncs(c *Contour, xind int, orthogonal func(float64) float64, lower, upper *geometry.Point) (func(float64) float64, error) {
	npoints := 2*r.NyNoGuards + 1
	fixedLower, err := r.SfuncFixedPerpSpacing(npoints, c, lower)
	if err != nil {
		return nil, fmt.Errorf("CombineSfuncs lower: %w", err)
	}
	fixedUpper, err := r.SfuncFixedPerpSpacing(npoints, c, upper)
	if err != nil {
		return nil, fmt.Errorf("CombineSfuncs upper: %w", err)
	}

	rl, rli, rlo := r.NonorthRangeLower, r.NonorthRangeLowerInner, r.NonorthRangeLowerOuter
	if rl == nil {
		rl, rli, rlo = r.MonotonicDLower, r.MonotonicDLower, r.MonotonicDLower
	}
	ru, rui, ruo := r.NonorthRangeUpper, r.NonorthRangeUpperInner, r.NonorthRangeUpperOuter
	if ru == nil {
		ru, rui, ruo = r.MonotonicDUpper, r.MonotonicDUpper, r.MonotonicDUpper
	}
	rangeLower := r.rangeAt(rl, rli, rlo, xind)
	rangeUpper := r.rangeAt(ru, rui, ruo, xind)
	if rangeLower == nil && rangeUpper == nil && orthogonal == nil {
		return nil, fmt.Errorf("CombineSfuncs %s: no range and no orthogonal spacing: %w", r.Name, ErrSpacingNotMonotonic)
	}

	length := 2 * float64(r.NyNoGuards)
	nNorm := r.NNorm
	weight := func(x float64, rng *float64) float64 {
		switch {
		case rng == nil:
			return 0
		case x < 0:
			return 1
		case x > length:
			return 0
		default:
			return math.Exp(-math.Pow(x/nNorm/(*rng), 2))
		}
	}

	sfunc := func(i float64) float64 {
		wl, wu := weight(i, rangeLower), weight(length-i, rangeUpper)
		if sum := wl + wu; sum > 1 {
			wl, wu = wl/sum, wu/sum
		}
		sl, su := fixedLower(i), fixedUpper(i)
		var so float64
		switch {
		case orthogonal != nil:
			so = orthogonal(i)
		case rangeUpper == nil || wl+wu == 0 && rangeLower != nil:
			so = sl
		case rangeLower == nil:
			so = su
		default:
			so = (wl*sl + wu*su) / (wl + wu)
		}

		return wl*sl + wu*su + (1-wl-wu)*so
	}

	el, eu := c.ExtendLower(), c.ExtendUpper()
	if err := r.checkMonotonic(sfunc, el, eu); err != nil {
		return nil, fmt.Errorf("CombineSfuncs at x index %d: %w", xind, err)
	}

	return sfunc, nil
}
