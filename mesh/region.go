package mesh

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/katalvlaran/fluxgrid/config"
	"github.com/katalvlaran/fluxgrid/equilibrium"
	"github.com/katalvlaran/fluxgrid/geometry"
	"github.com/katalvlaran/fluxgrid/ode"
	"go.uber.org/zap"
)

// Face names an edge of a region.
type Face int

const (
	Inner Face = iota
	Outer
	Lower
	Upper
)

var faceNames = [...]string{"inner", "outer", "lower", "upper"}

func (f Face) String() string { return faceNames[f] }

// noNeighbour marks a boundary in Region connections.
const noNeighbour = -1

// Region is one radial segment of an equilibrium region. It holds
// (2*NX+1) contours of constant psi, each with 2*NY+1 points; even indices
// are cell faces and odd indices cell centres.
//
// The geometry fields are nil until Mesh.Geometry has run.
type Region struct {
	ID      int
	Name    string
	Segment int

	// NY includes y boundary guard cells, NYNoGuards does not.
	NX, NY, NYNoGuards int

	PsiVals  []float64
	Contours []*equilibrium.Contour

	Rxy, Zxy, Psixy  *MultiLocationArray
	Dx, Dy           *MultiLocationArray
	Brxy, Bzxy, Bpxy *MultiLocationArray
	Btxy, Bxy        *MultiLocationArray
	Hy, Dphidy       *MultiLocationArray
	// Beta is the angle of the radial grid lines from the normal to the flux
	// surfaces, positive towards increasing y; Eta is sin(Beta). Both are
	// zero on orthogonal grids.
	Beta, Eta    *MultiLocationArray
	ZShift       *MultiLocationArray
	ShiftTorsion *MultiLocationArray
	I            *MultiLocationArray

	G11, G22, G33, G12, G13, G23       *MultiLocationArray
	J                                  *MultiLocationArray
	G_11, G_22, G_33, G_12, G_13, G_23 *MultiLocationArray

	CurlBOverBX, CurlBOverBY, CurlBOverBZ *MultiLocationArray
	Bxcvx, Bxcvy, Bxcvz                   *MultiLocationArray

	// BpSign is -1 when psi decreases with x, so that x = BpSign*psi
	// increases outward.
	BpSign float64

	mesh        *Mesh
	eqRegion    *equilibrium.Region
	neighbours  [4]int
	yGroupIndex int
	distances   [][]float64
}

// newRegion builds segment seg of eqr, which must already be regridded.
// Every point of eqr is followed perpendicular to the flux surfaces through
// the segment's psi values.
func newRegion(ctx context.Context, m *Mesh, id int, eqr *equilibrium.Region, seg int, neighbours [4]int) (*Region, error) {
	r := &Region{
		ID:          id,
		Name:        eqr.Name + "(" + strconv.Itoa(seg) + ")",
		Segment:     seg,
		NX:          eqr.Nx[seg],
		NY:          eqr.Ny(seg),
		NYNoGuards:  eqr.NyNoGuards,
		PsiVals:     slices.Clone(eqr.PsiVals[seg]),
		mesh:        m,
		eqRegion:    eqr,
		neighbours:  neighbours,
		yGroupIndex: -1,
	}
	if len(r.PsiVals) != 2*r.NX+1 {
		return nil, fmt.Errorf("region %s: %d psi values for nx=%d: %w", r.Name, len(r.PsiVals), r.NX, ErrShape)
	}
	points := eqr.Points()
	if len(points) != 2*r.NY+1 {
		return nil, fmt.Errorf("region %s: %d points for ny=%d: %w", r.Name, len(points), r.NY, ErrShape)
	}
	m.logger.Debug("creating region", zap.Int("id", id), zap.String("region", r.Name),
		zap.Int("nx", r.NX), zap.Int("ny", r.NY))

	r.moveOffXPoints(points)
	if r.neighbours[Upper] == r.ID {
		points[len(points)-1] = points[0]
	}

	psi := slices.Clone(r.PsiVals)
	inside := seg < eqr.SeparatrixRadialIndex
	if inside {
		slices.Reverse(psi)
	}
	columns := make([][]geometry.Point, len(points))
	for j, p := range points {
		col, err := followPerpendicular(ctx, m.Equilibrium, p, eqr.PsiVal, psi, m.Options)
		if err != nil {
			return nil, fmt.Errorf("region %s point %d: %w", r.Name, j, err)
		}
		if inside {
			slices.Reverse(col)
		}
		columns[j] = col
	}

	r.Contours = make([]*equilibrium.Contour, len(psi))
	row := make([]geometry.Point, len(points))
	for i := range r.Contours {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := range columns {
			row[j] = columns[j][i]
		}
		c := eqr.Contour.WithPsi(row, r.PsiVals[i])
		if err := c.Refine(m.Options.RefineWidth, 0); err != nil {
			return nil, fmt.Errorf("region %s contour %d: %w", r.Name, i, err)
		}
		r.Contours[i] = c
	}

	if !m.Options.Orthogonal {
		orthogonal, err := r.addPointsAtWall(ctx)
		if err != nil {
			return nil, err
		}
		if err := r.distributePointsNonorthogonal(ctx, orthogonal); err != nil {
			return nil, err
		}
	}

	r.distances = make([][]float64, len(r.Contours))
	for i, c := range r.Contours {
		d, err := c.Distance()
		if err != nil {
			return nil, fmt.Errorf("region %s contour %d: %w", r.Name, i, err)
		}
		r.distances[i] = slices.Clone(d)
	}

	return r, nil
}

// moveOffXPoints shifts end points that sit on an X-point a short way
// along the contour, where grad(psi) is non-zero.
func (r *Region) moveOffXPoints(points []geometry.Point) {
	eq := r.mesh.Equilibrium
	off := eq.Options.XPointOffset * eq.BoxSize()
	shift := func(i, toward int, xs ...*geometry.Point) {
		for _, x := range xs {
			if x == nil || geometry.Distance(*x, points[i]) > 0.5*off {
				continue
			}
			d := points[toward].Sub(points[i])
			points[i] = points[i].Add(d.Unit().Scale(math.Min(off, 0.25*d.Norm())))

			return
		}
	}
	n := len(points)
	s := r.Segment
	shift(0, 1, r.eqRegion.XPointsAtStart[s], r.eqRegion.XPointsAtStart[s+1])
	shift(n-1, n-2, r.eqRegion.XPointsAtEnd[s], r.eqRegion.XPointsAtEnd[s+1])
}

// followPerpendicular integrates dR/dpsi = grad(psi)/|grad(psi)|^2 from p0
// on the surface psi0, returning the points at each of psivals.
func followPerpendicular(ctx context.Context, eq *equilibrium.Equilibrium, p0 geometry.Point, psi0 float64, psivals []float64, o *config.Options) ([]geometry.Point, error) {
	tEval := slices.Clone(psivals)
	last := tEval[len(tEval)-1]
	if math.Abs(tEval[0]-psi0) <= 1e-10*math.Abs(last-tEval[0]) {
		tEval[0] = psi0
	}
	rhs := func(_ float64, y []float64) []float64 {
		return []float64{eq.FR(y[0], y[1]), eq.FZ(y[0], y[1])}
	}
	sol, err := ode.Solve(ctx, rhs, psi0, last, []float64{p0.R, p0.Z}, tEval, ode.Options{
		RTol: o.FollowPerpendicularRtol,
		ATol: o.FollowPerpendicularAtol,
	})
	if err != nil {
		return nil, fmt.Errorf("followPerpendicular from %v: %w: %w", p0, equilibrium.ErrSolution, err)
	}
	out := make([]geometry.Point, len(sol))
	for i, y := range sol {
		out[i] = geometry.Point{R: y[0], Z: y[1]}
	}

	return out, nil
}

// Neighbour returns the region across face f, or nil at a boundary.
func (r *Region) Neighbour(f Face) *Region {
	id := r.neighbours[f]
	if id == noNeighbour {
		return nil
	}

	return r.mesh.Regions[id]
}

// YGroupIndex is the position of r in its y-group.
func (r *Region) YGroupIndex() int { return r.yGroupIndex }

// GlobalXInd returns the x index of local contour i counted from the
// primary separatrix, negative inside it.
func (r *Region) GlobalXInd(i int) int {
	sep := r.eqRegion.SeparatrixRadialIndex
	n := 0
	if r.Segment >= sep {
		for _, nx := range r.eqRegion.Nx[sep:r.Segment] {
			n += 2 * nx
		}

		return i + n
	}
	for _, nx := range r.eqRegion.Nx[r.Segment+1 : sep] {
		n += 2 * nx
	}

	return i - n - 2*r.NX
}

type xPointCorner struct {
	i, j int
	x    geometry.Point
}

// xPointCorners lists the corner indices that coincide with an X-point.
func (r *Region) xPointCorners() []xPointCorner {
	var out []xPointCorner
	add := func(i, j int, x *geometry.Point) {
		if x != nil {
			out = append(out, xPointCorner{i, j, *x})
		}
	}
	s := r.Segment
	add(0, 0, r.eqRegion.XPointsAtStart[s])
	add(r.NX, 0, r.eqRegion.XPointsAtStart[s+1])
	add(0, r.NY, r.eqRegion.XPointsAtEnd[s])
	add(r.NX, r.NY, r.eqRegion.XPointsAtEnd[s+1])

	return out
}

// fillRZ fills Rxy and Zxy from the contours. Centres are the odd points
// of odd contours, ylow the even points of odd contours, xlow the odd points
// of even contours and corners the even points of even contours.
func (r *Region) fillRZ() {
	r.Rxy = NewMultiLocationArray(r.NX, r.NY)
	r.Zxy = NewMultiLocationArray(r.NX, r.NY)
	for _, l := range Locations {
		R, Z := r.Rxy.alloc(l), r.Zxy.alloc(l)
		ci, pj := 1, 1
		if l == XLow || l == Corners {
			ci = 0
		}
		if l == YLow || l == Corners {
			pj = 0
		}
		for i := 0; i < R.Rows(); i++ {
			c := r.Contours[2*i+ci]
			rr, zr := R.Row(i), Z.Row(i)
			for j := range rr {
				p := c.At(2*j + pj)
				rr[j], zr[j] = p.R, p.Z
			}
		}
	}
	// the contours start slightly off the X-point
	for _, c := range r.xPointCorners() {
		r.Rxy.At(Corners).Row(c.i)[c.j] = c.x.R
		r.Zxy.At(Corners).Row(c.i)[c.j] = c.x.Z
	}
}

// getRZBoundary takes the last ylow and corner columns from the upper
// neighbour, so the shared face is identical in both regions.
func (r *Region) getRZBoundary() {
	up := r.Neighbour(Upper)
	if up == nil {
		return
	}
	for _, l := range []Location{YLow, Corners} {
		for _, pair := range [][2]*MultiLocationArray{{r.Rxy, up.Rxy}, {r.Zxy, up.Zxy}} {
			dst, src := pair[0].At(l), pair[1].At(l)
			for i := 0; i < dst.Rows(); i++ {
				dst.Row(i)[r.NY] = src.Row(i)[0]
			}
		}
	}
}
