package geometry

import (
	"fmt"
	"math"
	"slices"

	"github.com/katalvlaran/fluxgrid/interp"
	gonuminterp "gonum.org/v1/gonum/interp"
)

// Wall is a closed polygon in the poloidal plane. The last vertex joins the
// first implicitly; vertices must not repeat the first point at the end.
type Wall struct {
	vertices []Point
	// posR and posZ interpolate the closed vertex list at equal fractions.
	posR, posZ gonuminterp.PiecewiseLinear
	// vecR and vecZ hold the segment vectors against their start fractions.
	vecR, vecZ *interp.Previous
}

// NewWall builds a wall from its vertices. A trailing vertex equal to the
// first is dropped so callers may pass either open or closed lists. The
// vertices are reversed if needed so that they run anticlockwise.
func NewWall(vertices []Point) (*Wall, error) {
	vs := append([]Point(nil), vertices...)
	if len(vs) > 1 && vs[0] == vs[len(vs)-1] {
		vs = vs[:len(vs)-1]
	}
	if len(vs) < 3 {
		return nil, fmt.Errorf("NewWall: %d vertices: %w", len(vs), ErrTooFewVertices)
	}
	w := &Wall{vertices: vs}
	if w.SignedArea() < 0 {
		slices.Reverse(vs)
	}

	n := len(vs)
	s := make([]float64, n+1)
	pr := make([]float64, n+1)
	pz := make([]float64, n+1)
	vr := make([]float64, n+1)
	vz := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		s[i] = float64(i) / float64(n)
		pr[i], pz[i] = vs[i%n].R, vs[i%n].Z
		v := vs[(i+1)%n].Sub(vs[i%n])
		vr[i], vz[i] = v.R, v.Z
	}
	if err := w.posR.Fit(s, pr); err != nil {
		return nil, fmt.Errorf("NewWall: %w", err)
	}
	if err := w.posZ.Fit(s, pz); err != nil {
		return nil, fmt.Errorf("NewWall: %w", err)
	}
	var err error
	if w.vecR, err = interp.NewPrevious(s, vr); err != nil {
		return nil, fmt.Errorf("NewWall: %w", err)
	}
	if w.vecZ, err = interp.NewPrevious(s, vz); err != nil {
		return nil, fmt.Errorf("NewWall: %w", err)
	}

	return w, nil
}

// Circle returns an n-vertex polygon approximating a circle, ordered
// anticlockwise starting from the outboard point.
func Circle(centre Point, radius float64, n int) (*Wall, error) {
	vs := make([]Point, n)
	for i := range vs {
		theta := 2 * math.Pi * float64(i) / float64(n)
		vs[i] = Point{centre.R + radius*math.Cos(theta), centre.Z + radius*math.Sin(theta)}
	}

	return NewWall(vs)
}

// Vertices returns a copy of the open vertex list.
func (w *Wall) Vertices() []Point { return append([]Point(nil), w.vertices...) }

// Closed returns the vertex list with the first vertex repeated at the end.
func (w *Wall) Closed() []Point {
	return append(w.Vertices(), w.vertices[0])
}

// Len returns the number of vertices.
func (w *Wall) Len() int { return len(w.vertices) }

// Position returns the point at fraction s of the closed wall, linearly
// interpolated between vertices placed at equal fractions.
func (w *Wall) Position(s float64) (Point, error) {
	if !(s >= 0 && s <= 1) {
		return Point{}, fmt.Errorf("Wall.Position: s=%g: %w", s, ErrParameterRange)
	}

	return Point{R: w.posR.Predict(s), Z: w.posZ.Predict(s)}, nil
}

// Vector returns the vector along the wall segment that starts at or before
// fraction s. At s == 1 this is the first segment again.
func (w *Wall) Vector(s float64) (Point, error) {
	if math.IsNaN(s) {
		return Point{}, fmt.Errorf("Wall.Vector: s=%g: %w", s, ErrParameterRange)
	}
	r, err := w.vecR.Eval(s)
	if err != nil {
		return Point{}, fmt.Errorf("Wall.Vector: %w: %w", ErrParameterRange, err)
	}
	z, _ := w.vecZ.Eval(s)

	return Point{R: r, Z: z}, nil
}

// Locate returns the fraction of the closed wall, as used by Position and
// Vector, of the wall point nearest to p.
func (w *Wall) Locate(p Point) float64 {
	n := len(w.vertices)
	best, s := math.Inf(1), 0.0
	for i := 0; i < n; i++ {
		a, b := w.vertices[i], w.vertices[(i+1)%n]
		ab := b.Sub(a)
		t := 0.0
		if l2 := ab.Dot(ab); l2 > 0 {
			t = math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/l2))
		}
		if d := Distance(p, a.Add(ab.Scale(t))); d < best {
			best, s = d, (float64(i)+t)/float64(n)
		}
	}

	return math.Min(s, 1)
}

// Intersection returns the crossing between the wall and the segment p1-p2.
// ok is false when there is none. Duplicates within IntersectTolerance
// (a crossing at a vertex) count once.
func (w *Wall) Intersection(p1, p2 Point) (Point, bool, error) {
	hits := FindIntersections(w.Closed(), p1, p2)
	if len(hits) == 0 {
		return Point{}, false, nil
	}
	if len(hits) > 2 {
		return Point{}, false, fmt.Errorf("Wall.Intersection: %d crossings: %w", len(hits), ErrMultipleIntersections)
	}
	if len(hits) == 2 {
		d := hits[1].Sub(hits[0])
		if math.Abs(d.R) >= IntersectTolerance || math.Abs(d.Z) >= IntersectTolerance {
			return Point{}, false, fmt.Errorf("Wall.Intersection: %v and %v: %w", hits[0], hits[1], ErrMultipleIntersections)
		}
	}

	return hits[0], true, nil
}

// Contains reports whether p lies inside the wall (even-odd rule).
func (w *Wall) Contains(p Point) bool {
	inside := false
	n := len(w.vertices)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := w.vertices[i], w.vertices[j]
		if (a.Z > p.Z) != (b.Z > p.Z) {
			rCross := a.R + (p.Z-a.Z)*(b.R-a.R)/(b.Z-a.Z)
			if p.R < rCross {
				inside = !inside
			}
		}
	}

	return inside
}

// SignedArea returns the polygon area, positive when vertices run
// anticlockwise in the (R, Z) plane.
func (w *Wall) SignedArea() float64 {
	var a float64
	n := len(w.vertices)
	for i := 0; i < n; i++ {
		a += w.vertices[i].Cross(w.vertices[(i+1)%n])
	}

	return a / 2
}

// Bounds returns the bounding box of the wall.
func (w *Wall) Bounds() (rmin, rmax, zmin, zmax float64) {
	rmin, zmin = math.Inf(1), math.Inf(1)
	rmax, zmax = math.Inf(-1), math.Inf(-1)
	for _, v := range w.vertices {
		rmin, rmax = math.Min(rmin, v.R), math.Max(rmax, v.R)
		zmin, zmax = math.Min(zmin, v.Z), math.Max(zmax, v.Z)
	}

	return rmin, rmax, zmin, zmax
}
