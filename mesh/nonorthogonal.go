package mesh

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/fluxgrid/config"
	"github.com/katalvlaran/fluxgrid/equilibrium"
	"github.com/katalvlaran/fluxgrid/geometry"
	"go.uber.org/zap"
)

// maxWallExtend bounds how far a contour is extended looking for the wall.
const maxWallExtend = 100

// addPointsAtWall ends each contour of a region with a wall boundary at its
// crossing with the wall. It returns, per contour, the distance function of
// the orthogonal points measured from the new end.
func (r *Region) addPointsAtWall(ctx context.Context) ([]func(float64) float64, error) {
	eq := r.mesh.Equilibrium
	o := r.mesh.Options
	lowerWall := r.neighbours[Lower] == noNeighbour
	upperWall := r.neighbours[Upper] == noNeighbour

	orthogonal := make([]func(float64) float64, len(r.Contours))
	for ic, c := range r.Contours {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fail := func(err error) error {
			return fmt.Errorf("region %s contour %d: %w", r.Name, ic, err)
		}

		var (
			orth     func(float64) float64
			inserted bool
			err      error
		)
		if lowerWall {
			from := c.Len() - 1
			if upperWall {
				from = c.Len() / 2
			}
			seg, hit, err := findWallCrossing(eq, c, from, true)
			if err != nil {
				return nil, fail(err)
			}
			orig, err := c.Sfunc()
			if err != nil {
				return nil, fail(err)
			}
			var idx int
			idx, inserted = insertWallPoint(c, seg, hit, o.RefineAtol)
			d, err := c.Distance()
			if err != nil {
				return nil, fail(err)
			}
			shift := d[c.StartInd()] - d[idx]
			orth = func(i float64) float64 { return orig(i) + shift }
			c.SetStartInd(idx)
		}
		if upperWall {
			from := 0
			if lowerWall {
				from = c.Len() / 2
			}
			seg, hit, err := findWallCrossing(eq, c, from, false)
			if err != nil {
				return nil, fail(err)
			}
			if orth, err = c.Sfunc(); err != nil {
				return nil, fail(err)
			}
			idx, _ := insertWallPoint(c, seg, hit, o.RefineAtol)
			c.SetEndInd(idx)
		}
		if orth == nil {
			if orth, err = c.Sfunc(); err != nil {
				return nil, fail(err)
			}
		}
		if err := c.Refine(o.RefineWidth, 0); err != nil {
			return nil, fail(err)
		}
		r.mesh.logger.Debug("contour ends at wall", zap.String("region", r.Name), zap.Int("contour", ic),
			zap.Int("start", c.StartInd()), zap.Int("end", c.EndInd()), zap.Bool("lowerInserted", inserted))
		orthogonal[ic] = orth
	}

	return orthogonal, nil
}

// findWallCrossing searches the segments of c from index from towards the
// lower (or upper) end for a wall crossing, extending the contour past that
// end when it stops short. It returns the index of the first point of the
// crossing segment and the crossing.
func findWallCrossing(eq *equilibrium.Equilibrium, c *equilibrium.Contour, from int, lower bool) (int, geometry.Point, error) {
	if lower {
		for i := from; i > 0; i-- {
			hit, ok, err := eq.WallIntersection(c.At(i), c.At(i-1))
			if err != nil {
				return 0, geometry.Point{}, err
			}
			if ok {
				return i - 1, hit, nil
			}
		}
	} else {
		for i := from; i < c.Len()-1; i++ {
			hit, ok, err := eq.WallIntersection(c.At(i), c.At(i+1))
			if err != nil {
				return 0, geometry.Point{}, err
			}
			if ok {
				return i, hit, nil
			}
		}
	}

	for n := 0; n < maxWallExtend; n++ {
		if lower {
			if err := c.TemporaryExtend(1, 0, 0, 0); err != nil {
				return 0, geometry.Point{}, err
			}
			hit, ok, err := eq.WallIntersection(c.At(1), c.At(0))
			if err != nil {
				return 0, geometry.Point{}, err
			}
			if ok {
				return 0, hit, nil
			}
			continue
		}
		if err := c.TemporaryExtend(0, 1, 0, 0); err != nil {
			return 0, geometry.Point{}, err
		}
		last := c.Len() - 1
		hit, ok, err := eq.WallIntersection(c.At(last-1), c.At(last))
		if err != nil {
			return 0, geometry.Point{}, err
		}
		if ok {
			return last - 1, hit, nil
		}
	}
	end := "upper"
	if lower {
		end = "lower"
	}

	return 0, geometry.Point{}, fmt.Errorf("%s end after %d extensions: %w", end, maxWallExtend, ErrNoWallIntersection)
}

// insertWallPoint puts p, which lies on the segment from point seg to seg+1,
// into c and returns its index. An existing point within atol is reused.
func insertWallPoint(c *equilibrium.Contour, seg int, p geometry.Point, atol float64) (int, bool) {
	switch {
	case geometry.Distance(c.At(seg), p) < atol:
		return seg, false
	case geometry.Distance(c.At(seg+1), p) < atol:
		return seg + 1, false
	}
	c.Insert(seg+1, p)

	return seg + 1, true
}

// distributePointsNonorthogonal regrids every contour with the configured
// nonorthogonal spacing method. orthogonal comes from addPointsAtWall.
func (r *Region) distributePointsNonorthogonal(ctx context.Context, orthogonal []func(float64) float64) error {
	eqr := r.eqRegion
	o := r.mesh.Options
	npoints := 2*r.NYNoGuards + 1
	el, eu := eqr.Contour.ExtendLower(), eqr.Contour.ExtendUpper()

	sep := math.NaN()
	if ps := r.mesh.Equilibrium.PsiSep; len(ps) > 0 {
		sep = ps[0]
	}
	scale := math.Max(math.Abs(sep), math.Abs(r.PsiVals[len(r.PsiVals)-1]-r.PsiVals[0]))
	last := len(r.Contours) - 1
	if o.NonorthSpacingMethod == config.NonorthOrthogonal && (el > 0 || eu > 0) {
		r.mesh.logger.Warn("orthogonal nonorthogonal spacing does not place guard points past the targets",
			zap.String("region", r.Name))
	}

	for ic, c := range r.Contours {
		if err := ctx.Err(); err != nil {
			return err
		}
		separatrix := math.Abs(c.PsiVal-sep) <= 1e-9*scale
		// surface returns the direction the grid lines should follow at one
		// end: the wall on the separatrix, else the neighbouring contours.
		surface := func(lower bool) *geometry.Point {
			if separatrix {
				if lower {
					return eqr.WallSurfaceAtStart
				}
				return eqr.WallSurfaceAtEnd
			}
			in, out := r.Contours[max(ic-1, 0)], r.Contours[min(ic+1, last)]
			var v geometry.Point
			if lower {
				v = out.At(out.StartInd()).Sub(in.At(in.StartInd()))
			} else {
				v = out.At(out.EndInd()).Sub(in.At(in.EndInd()))
			}

			return &v
		}

		xind := r.GlobalXInd(ic)
		var (
			sfunc func(float64) float64
			err   error
		)
		switch o.NonorthSpacingMethod {
		case config.NonorthOrthogonal:
			sfunc = orthogonal[ic]
		case config.NonorthFixedPoloidal:
			sfunc, err = eqr.SfuncFixedPerpSpacing(npoints, c, nil)
		case config.NonorthPoloidalOrthogonalCombined:
			sfunc, err = eqr.CombineSfuncs(c, xind, orthogonal[ic], nil, nil)
		case config.NonorthFixedPerpLower:
			sfunc, err = eqr.SfuncFixedPerpSpacing(npoints, c, surface(true))
		case config.NonorthFixedPerpUpper:
			sfunc, err = eqr.SfuncFixedPerpSpacing(npoints, c, surface(false))
		case config.NonorthPerpOrthogonalCombined:
			sfunc, err = eqr.CombineSfuncs(c, xind, orthogonal[ic], surface(true), surface(false))
		default:
			var lower, upper *geometry.Point
			if eqr.WallSurfaceAtStart == nil {
				lower = surface(true)
			}
			if eqr.WallSurfaceAtEnd == nil {
				upper = surface(false)
			}
			sfunc, err = eqr.CombineSfuncs(c, xind, orthogonal[ic], lower, upper)
		}
		if err != nil {
			return fmt.Errorf("region %s contour %d: %w", r.Name, ic, err)
		}

		nc, err := c.Regridded(npoints, equilibrium.RegridOptions{
			Width:       o.RefineWidth,
			Sfunc:       sfunc,
			ExtendLower: &el,
			ExtendUpper: &eu,
		})
		if err != nil {
			return fmt.Errorf("region %s contour %d: %w", r.Name, ic, err)
		}
		r.Contours[ic] = nc
	}

	return nil
}

// calcBeta measures the angle of the radial grid lines from the normal to
// the flux surfaces. Rxy and Zxy must be filled.
func (r *Region) calcBeta() {
	r.Beta = NewMultiLocationArray(r.NX, r.NY).Zero()
	r.Eta = NewMultiLocationArray(r.NX, r.NY).Zero()
	if r.mesh.Options.Orthogonal {
		return
	}
	eq := r.mesh.Equilibrium
	R, Z := r.Rxy, r.Zxy
	for _, l := range Locations {
		beta, eta := r.Beta.At(l), r.Eta.At(l)
		rows, cols := r.Beta.Shape(l)
		at := func(i, j int) geometry.Point {
			return geometry.Point{R: R.At(l).Row(i)[j], Z: Z.At(l).Row(i)[j]}
		}
		for i := 0; i < rows; i++ {
			brow, erow := beta.Row(i), eta.Row(i)
			for j := 0; j < cols; j++ {
				p := at(i, j)
				radial := at(min(i+1, rows-1), j).Sub(at(max(i-1, 0), j)).Unit()
				along := at(i, min(j+1, cols-1)).Sub(at(i, max(j-1, 0)))
				grad := geometry.Point{R: eq.Field.DPsiDR(p.R, p.Z), Z: eq.Field.DPsiDZ(p.R, p.Z)}
				n := grad.Scale(r.BpSign).Unit()
				t := geometry.Point{R: -grad.Z, Z: grad.R}.Unit()
				if t.Dot(along) < 0 {
					t = t.Scale(-1)
				}
				b := math.Atan2(radial.Dot(t), radial.Dot(n))
				brow[j], erow[j] = b, math.Sin(b)
			}
		}
	}
}
