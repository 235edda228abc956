package equilibrium

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/fluxgrid/geometry"
	"github.com/katalvlaran/fluxgrid/matrix"
	"github.com/katalvlaran/fluxgrid/optimize"
)

const (
	extremumRtol = 1e-5
	extremumAtol = 1e-14

	saddleMaxIter = 100
	newtonMaxIter = 50
)

func (e *Equilibrium) minimizeAlong(p1, p2 geometry.Point, atol float64, sign float64) (geometry.Point, error) {
	d := p2.Sub(p1)
	s, err := optimize.MinimizeBounded(func(s float64) float64 {
		return sign * e.Psi(p1.Add(d.Scale(s)))
	}, 0, 1, atol)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("%w: %w", ErrSolution, err)
	}

	return p1.Add(d.Scale(s)), nil
}

// FindMinimum1D returns the minimum of psi on the segment p1->p2.
func (e *Equilibrium) FindMinimum1D(p1, p2 geometry.Point, atol float64) (geometry.Point, error) {
	p, err := e.minimizeAlong(p1, p2, atol, 1)
	if err != nil {
		return p, fmt.Errorf("FindMinimum1D: %w", err)
	}

	return p, nil
}

// FindMaximum1D returns the maximum of psi on the segment p1->p2.
func (e *Equilibrium) FindMaximum1D(p1, p2 geometry.Point, atol float64) (geometry.Point, error) {
	p, err := e.minimizeAlong(p1, p2, atol, -1)
	if err != nil {
		return p, fmt.Errorf("FindMaximum1D: %w", err)
	}

	return p, nil
}

// FindExtremum1D returns an interior extremum of psi on p1->p2 and whether
// it is a minimum. Extrema within 10*1e-5 of the segment length from either
// end do not count.
func (e *Equilibrium) FindExtremum1D(p1, p2 geometry.Point) (geometry.Point, bool, error) {
	small := 10 * extremumRtol * geometry.Distance(p1, p2)
	interior := func(p geometry.Point) bool {
		return geometry.Distance(p1, p) > small && geometry.Distance(p2, p) > small
	}

	minPos, err := e.FindMinimum1D(p1, p2, extremumAtol)
	if err != nil {
		return geometry.Point{}, false, fmt.Errorf("FindExtremum1D: %w", err)
	}
	if interior(minPos) {
		return minPos, true, nil
	}
	maxPos, err := e.FindMaximum1D(p1, p2, extremumAtol)
	if err != nil {
		return geometry.Point{}, false, fmt.Errorf("FindExtremum1D: %w", err)
	}
	if interior(maxPos) {
		return maxPos, false, nil
	}

	return geometry.Point{}, false, fmt.Errorf("FindExtremum1D %v->%v: neither minimum nor maximum inside: %w", p1, p2, ErrSolution)
}

// FindSaddlePoint locates a saddle of psi inside the square with side p1->p2
// whose other two corners lie to the right of p1->p2. It alternates 1D
// extremum searches across the box until they agree to within atol.
func (e *Equilibrium) FindSaddlePoint(p1, p2 geometry.Point, atol float64) (geometry.Point, error) {
	a := geometry.Distance(p1, p2)
	e1 := p2.Sub(p1).Div(a)
	e2 := e1.Perp()
	p3 := p2.Add(e2.Scale(a))
	p4 := p1.Add(e2.Scale(a))

	// p1 bottom left, p2 top left, p3 top right, p4 bottom right.
	_, minLeft, err := e.FindExtremum1D(p1, p2)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("FindSaddlePoint: %w", err)
	}
	posTop, minTop, err := e.FindExtremum1D(p2, p3)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("FindSaddlePoint: %w", err)
	}
	_, minRight, err := e.FindExtremum1D(p3, p4)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("FindSaddlePoint: %w", err)
	}
	posBottom, minBottom, err := e.FindExtremum1D(p4, p1)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("FindSaddlePoint: %w", err)
	}
	if minTop != minBottom || minLeft != minRight || minTop == minLeft {
		return geometry.Point{}, fmt.Errorf("FindSaddlePoint: %w", ErrNoSaddle)
	}

	vertSearch, horizSearch := e.FindMinimum1D, e.FindMinimum1D
	if minTop {
		vertSearch = e.FindMaximum1D
	}
	if minLeft {
		horizSearch = e.FindMaximum1D
	}

	extremumVert, extremumHoriz := p3, p1
	for count := 0; geometry.Distance(extremumVert, extremumHoriz) > atol; count++ {
		if count >= saddleMaxIter {
			return geometry.Point{}, fmt.Errorf("FindSaddlePoint: %d iterations: %w", count, ErrSolution)
		}
		extremumVert, err = vertSearch(posBottom, posTop, 0.5*atol)
		if err != nil {
			return geometry.Point{}, fmt.Errorf("FindSaddlePoint: %w", err)
		}
		dz := extremumVert.Sub(p1).Dot(e1)
		posLeft := p1.Add(e1.Scale(dz))
		posRight := p4.Add(e1.Scale(dz))

		extremumHoriz, err = horizSearch(posLeft, posRight, 0.5*atol)
		if err != nil {
			return geometry.Point{}, fmt.Errorf("FindSaddlePoint: %w", err)
		}
		dr := extremumHoriz.Sub(p1).Dot(e2)
		posBottom = p1.Add(e2.Scale(dr))
		posTop = p2.Add(e2.Scale(dr))
	}

	return extremumVert.Add(extremumHoriz).Scale(0.5), nil
}

// NewtonCriticalPoint runs Newton iterations on grad(psi) = 0 from guess.
func (e *Equilibrium) NewtonCriticalPoint(guess geometry.Point) (geometry.Point, error) {
	p := guess
	scale := e.BoxSize()
	if scale == 0 {
		scale = 1
	}
	for i := 0; i < newtonMaxIter; i++ {
		g := e.GradPsi(p)
		step, err := matrix.Solve(e.Hessian(p), []float64{-g.R, -g.Z})
		if err != nil {
			return p, fmt.Errorf("NewtonCriticalPoint: %w: %w", ErrSolution, err)
		}
		p = p.Add(geometry.Point{R: step[0], Z: step[1]})
		if !p.IsFinite() {
			return p, fmt.Errorf("NewtonCriticalPoint: diverged: %w", ErrSolution)
		}
		if math.Hypot(step[0], step[1]) < 1e-11*scale {
			return p, nil
		}
	}

	return p, fmt.Errorf("NewtonCriticalPoint from %v: %w", guess, ErrSolution)
}

// FindCriticalPoints scans the bounding box on an nR x nZ lattice for cells
// where both components of grad(psi) change sign, polishes each candidate
// with Newton iterations and classifies it by the Hessian determinant.
// X-points are sorted by distance from the box centre.
func (e *Equilibrium) FindCriticalPoints(nR, nZ int) (oPoints, xPoints []geometry.Point, err error) {
	if nR < 2 || nZ < 2 {
		return nil, nil, fmt.Errorf("FindCriticalPoints: %dx%d lattice: %w", nR, nZ, ErrTooFewPoints)
	}
	dR := (e.RMax - e.RMin) / float64(nR-1)
	dZ := (e.ZMax - e.ZMin) / float64(nZ-1)
	gR := make([][]float64, nR)
	gZ := make([][]float64, nR)
	for i := 0; i < nR; i++ {
		gR[i] = make([]float64, nZ)
		gZ[i] = make([]float64, nZ)
		for j := 0; j < nZ; j++ {
			R, Z := e.RMin+float64(i)*dR, e.ZMin+float64(j)*dZ
			gR[i][j] = e.Field.DPsiDR(R, Z)
			gZ[i][j] = e.Field.DPsiDZ(R, Z)
		}
	}
	changes := func(g [][]float64, i, j int) bool {
		v := [4]float64{g[i][j], g[i+1][j], g[i][j+1], g[i+1][j+1]}
		lo, hi := v[0], v[0]
		for _, x := range v[1:] {
			lo, hi = min(lo, x), max(hi, x)
		}

		return lo <= 0 && hi >= 0
	}

	tol := 1e-6 * e.BoxSize()
	var found []geometry.Point
	for i := 0; i < nR-1; i++ {
		for j := 0; j < nZ-1; j++ {
			if !changes(gR, i, j) || !changes(gZ, i, j) {
				continue
			}
			guess := geometry.Point{R: e.RMin + (float64(i)+0.5)*dR, Z: e.ZMin + (float64(j)+0.5)*dZ}
			p, nerr := e.NewtonCriticalPoint(guess)
			if nerr != nil || !e.InBox(p) {
				continue
			}
			dup := false
			for _, q := range found {
				if geometry.Distance(p, q) < tol {
					dup = true
					break
				}
			}
			if dup {
				continue
			}
			found = append(found, p)

			h := e.Hessian(p)
			a, _ := h.At(0, 0)
			b, _ := h.At(0, 1)
			d, _ := h.At(1, 1)
			if a*d-b*b > 0 {
				oPoints = append(oPoints, p)
			} else {
				xPoints = append(xPoints, p)
			}
		}
	}

	centre := geometry.Point{R: 0.5 * (e.RMin + e.RMax), Z: 0.5 * (e.ZMin + e.ZMax)}
	byCentre := func(ps []geometry.Point) {
		sort.SliceStable(ps, func(i, j int) bool {
			return geometry.Distance(ps[i], centre) < geometry.Distance(ps[j], centre)
		})
	}
	byCentre(oPoints)
	byCentre(xPoints)

	return oPoints, xPoints, nil
}

// Legs describes the separatrix structure at an X-point.
type Legs struct {
	// Directions are unit vectors along the four separatrix asymptotes.
	Directions [4]geometry.Point
	// Positive is the axis along which psi increases away from the X-point;
	// Negative the axis along which it decreases.
	Positive, Negative geometry.Point
}

// XPointLegs returns the separatrix asymptotes at x from the eigen
// decomposition of the Hessian of psi.
func (e *Equilibrium) XPointLegs(x geometry.Point) (Legs, error) {
	vals, vecs, err := matrix.Eigen(e.Hessian(x), 1e-14, 100)
	if err != nil {
		return Legs{}, fmt.Errorf("XPointLegs: %w", err)
	}
	neg, pos := 0, 1
	if vals[0] > vals[1] {
		neg, pos = 1, 0
	}
	if !(vals[neg] < 0 && vals[pos] > 0) {
		return Legs{}, fmt.Errorf("XPointLegs at %v: eigenvalues %v are not a saddle: %w", x, vals, ErrTopology)
	}
	col := func(k int) geometry.Point {
		r, _ := vecs.At(0, k)
		z, _ := vecs.At(1, k)

		return geometry.Point{R: r, Z: z}.Unit()
	}
	vn, vp := col(neg), col(pos)

	// psi - psiX ~ (lambda_n a^2 + lambda_p b^2)/2 vanishes along
	// a*vn + b*vp with b/a = +-sqrt(-lambda_n/lambda_p).
	a, b := math.Sqrt(vals[pos]), math.Sqrt(-vals[neg])
	legs := Legs{Positive: vp, Negative: vn}
	legs.Directions[0] = vn.Scale(a).Add(vp.Scale(b)).Unit()
	legs.Directions[1] = vn.Scale(a).Sub(vp.Scale(b)).Unit()
	legs.Directions[2] = legs.Directions[0].Scale(-1)
	legs.Directions[3] = legs.Directions[1].Scale(-1)

	return legs, nil
}

// FindRoots1D returns n roots of f in [xmin, xmax].
func (e *Equilibrium) FindRoots1D(f func(float64) float64, n int, xmin, xmax, atol float64) ([]float64, error) {
	roots, err := optimize.FindRoots(f, n, xmin, xmax, atol, optimize.DefaultMaxIntervals)
	if err != nil {
		return nil, fmt.Errorf("FindRoots1D: %w: %w", ErrSolution, err)
	}
	if len(roots) > n {
		e.Logger.Warn("found more roots than expected")
	}

	return roots, nil
}
