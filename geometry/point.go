package geometry

import (
	"fmt"
	"math"
)

// Point is a position (or displacement) in the poloidal (R, Z) plane.
type Point struct {
	R, Z float64
}

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.R + q.R, p.Z + q.Z} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.R - q.R, p.Z - q.Z} }

// Scale returns a*p.
func (p Point) Scale(a float64) Point { return Point{a * p.R, a * p.Z} }

// Div returns p/a.
func (p Point) Div(a float64) Point { return Point{p.R / a, p.Z / a} }

// Dot returns the scalar product p·q.
func (p Point) Dot(q Point) float64 { return p.R*q.R + p.Z*q.Z }

// Cross returns the z-component of p×q.
func (p Point) Cross(q Point) float64 { return p.R*q.Z - p.Z*q.R }

// Norm returns |p|.
func (p Point) Norm() float64 { return math.Hypot(p.R, p.Z) }

// Unit returns p/|p|. The zero vector is returned unchanged.
func (p Point) Unit() Point {
	n := p.Norm()
	if n == 0 {
		return p
	}

	return p.Div(n)
}

// Perp returns p rotated by -90 degrees, i.e. the normal on the right of p.
func (p Point) Perp() Point { return Point{p.Z, -p.R} }

// IsFinite reports whether both components are finite.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.R) && !math.IsNaN(p.Z) && !math.IsInf(p.R, 0) && !math.IsInf(p.Z, 0)
}

// String implements fmt.Stringer.
func (p Point) String() string { return fmt.Sprintf("(%g, %g)", p.R, p.Z) }

// Distance returns |p2 - p1|.
func Distance(p1, p2 Point) float64 { return p2.Sub(p1).Norm() }

// Lerp returns p1 + t*(p2 - p1).
func Lerp(p1, p2 Point, t float64) Point { return p1.Add(p2.Sub(p1).Scale(t)) }
