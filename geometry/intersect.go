package geometry

import "math"

// IntersectTolerance is the slack allowed when testing whether a crossing lies
// within both segments.
const IntersectTolerance = 1e-14

// parallelTolerance is the smallest slope difference treated as non-parallel.
const parallelTolerance = 1e-15

// segment is a line segment described along its major axis. For an R-major
// segment Z = b0 + slope*(R - a0) over a in [lo, hi]; for a Z-major segment
// R = b0 + slope*(Z - a0) over Z.
type segment struct {
	rMajor bool
	a0, b0 float64
	slope  float64
	lo, hi float64
}

func newSegment(p, q Point) segment {
	dR, dZ := q.R-p.R, q.Z-p.Z
	if math.Abs(dR) > math.Abs(dZ) {
		if p.R > q.R {
			p, q = q, p
		}
		return segment{rMajor: true, a0: p.R, b0: p.Z, slope: (q.Z - p.Z) / (q.R - p.R), lo: p.R, hi: q.R}
	}
	if p.Z > q.Z {
		p, q = q, p
	}

	return segment{rMajor: false, a0: p.Z, b0: p.R, slope: (q.R - p.R) / (q.Z - p.Z), lo: p.Z, hi: q.Z}
}

func (s segment) contains(v float64) bool {
	return v >= s.lo-IntersectTolerance && v <= s.hi+IntersectTolerance
}

// crossing returns the intersection of two segments, if any.
func crossing(s1, s2 segment) (Point, bool) {
	var R, Z float64
	switch {
	case s1.rMajor && s2.rMajor:
		if math.Abs(s1.slope-s2.slope) < parallelTolerance {
			return Point{}, false
		}
		R = (s2.b0 - s1.b0 + s1.slope*s1.a0 - s2.slope*s2.a0) / (s1.slope - s2.slope)
		Z = s1.b0 + s1.slope*(R-s1.a0)
		if !s1.contains(R) || !s2.contains(R) {
			return Point{}, false
		}
	case !s1.rMajor && !s2.rMajor:
		if math.Abs(s2.slope-s1.slope) < parallelTolerance {
			return Point{}, false
		}
		Z = (s1.b0 - s2.b0 + s2.slope*s2.a0 - s1.slope*s1.a0) / (s2.slope - s1.slope)
		R = s2.b0 + s2.slope*(Z-s2.a0)
		if !s1.contains(Z) || !s2.contains(Z) {
			return Point{}, false
		}
	case !s1.rMajor && s2.rMajor:
		// R = R1 + k1*(Z - Z1), Z = Z2 + m2*(R - R2); |k1*m2| < 1 so never singular.
		R = (s1.b0 + s1.slope*(s2.b0-s2.slope*s2.a0-s1.a0)) / (1 - s1.slope*s2.slope)
		Z = s2.b0 + s2.slope*(R-s2.a0)
		if !s1.contains(Z) || !s2.contains(R) {
			return Point{}, false
		}
	default:
		Z = (s1.b0 + s1.slope*(s2.b0-s2.slope*s2.a0-s1.a0)) / (1 - s1.slope*s2.slope)
		R = s2.b0 + s2.slope*(Z-s2.a0)
		if !s1.contains(R) || !s2.contains(Z) {
			return Point{}, false
		}
	}
	p := Point{R, Z}
	if !p.IsFinite() {
		return Point{}, false
	}

	return p, true
}

// FindIntersections returns every point where the polyline crosses the
// segment start-end, in polyline order. Crossings at a shared vertex may be
// reported once per adjacent polyline segment.
func FindIntersections(line []Point, start, end Point) []Point {
	if len(line) < 2 {
		return nil
	}
	s2 := newSegment(start, end)
	var out []Point
	for i := 0; i+1 < len(line); i++ {
		if p, ok := crossing(newSegment(line[i], line[i+1]), s2); ok {
			out = append(out, p)
		}
	}

	return out
}
