package mesh

import (
	"fmt"

	"github.com/katalvlaran/fluxgrid/matrix"
)

// FieldOf selects a field of a region, so derivatives can read the same
// field from neighbouring regions.
type FieldOf func(*Region) *MultiLocationArray

func (r *Region) fieldWithAllLocations(get FieldOf, op string) (*MultiLocationArray, error) {
	f := get(r)
	if f == nil {
		return nil, fmt.Errorf("%s %s: field not set: %w", op, r.Name, ErrNoGeometry)
	}
	for _, l := range Locations {
		if f.At(l) == nil {
			return nil, fmt.Errorf("%s %s: %s not set: %w", op, r.Name, l, ErrNoGeometry)
		}
	}

	return f, nil
}

// DDX returns the x derivative of a field by second-order central
// differences between staggered locations. At an x boundary the value from
// the neighbouring region is used when connected; otherwise the difference
// is taken across the half cell to the boundary face.
func (r *Region) DDX(get FieldOf) (*MultiLocationArray, error) {
	f, err := r.fieldWithAllLocations(get, "DDX")
	if err != nil {
		return nil, err
	}
	dx := r.Dx
	out := NewMultiLocationArray(r.NX, r.NY)
	inner, outer := r.Neighbour(Inner), r.Neighbour(Outer)

	// staggered locations: centre from xlow, ylow from corners
	for _, p := range [][2]Location{{Centre, XLow}, {YLow, Corners}} {
		res, src, h := out.alloc(p[0]), f.At(p[1]), dx.At(p[0])
		for i := 0; i < res.Rows(); i++ {
			lo, hi, d, row := src.Row(i), src.Row(i+1), h.Row(i), res.Row(i)
			for j := range row {
				row[j] = (hi[j] - lo[j]) / d[j]
			}
		}
	}

	// face locations: xlow from centre, corners from ylow
	for _, p := range [][2]Location{{XLow, Centre}, {Corners, YLow}} {
		res, src, own, h := out.alloc(p[0]), f.At(p[1]), f.At(p[0]), dx.At(p[0])
		for i := 1; i < r.NX; i++ {
			lo, hi, d, row := src.Row(i-1), src.Row(i), h.Row(i), res.Row(i)
			for j := range row {
				row[j] = (hi[j] - lo[j]) / d[j]
			}
		}
		first, d, row := src.Row(0), h.Row(0), res.Row(0)
		if inner != nil {
			nb := get(inner).At(p[1])
			last := nb.Row(nb.Rows() - 1)
			for j := range row {
				row[j] = (first[j] - last[j]) / d[j]
			}
		} else {
			face := own.Row(0)
			for j := range row {
				row[j] = (first[j] - face[j]) / (d[j] / 2)
			}
		}
		last, d, row := src.Row(r.NX-1), h.Row(r.NX), res.Row(r.NX)
		if outer != nil {
			next := get(outer).At(p[1]).Row(0)
			for j := range row {
				row[j] = (next[j] - last[j]) / d[j]
			}
		} else {
			face := own.Row(r.NX)
			for j := range row {
				row[j] = (face[j] - last[j]) / (d[j] / 2)
			}
		}
	}

	return out, nil
}

// DDY returns the y derivative of a field, treating y boundaries as DDX
// treats x boundaries.
func (r *Region) DDY(get FieldOf) (*MultiLocationArray, error) {
	f, err := r.fieldWithAllLocations(get, "DDY")
	if err != nil {
		return nil, err
	}
	dy := r.Dy
	out := NewMultiLocationArray(r.NX, r.NY)
	below, above := r.Neighbour(Lower), r.Neighbour(Upper)

	// staggered locations: centre from ylow, xlow from corners
	for _, p := range [][2]Location{{Centre, YLow}, {XLow, Corners}} {
		res, src, h := out.alloc(p[0]), f.At(p[1]), dy.At(p[0])
		for i := 0; i < res.Rows(); i++ {
			s, d, row := src.Row(i), h.Row(i), res.Row(i)
			for j := range row {
				row[j] = (s[j+1] - s[j]) / d[j]
			}
		}
	}

	// face locations: ylow from centre, corners from xlow
	for _, p := range [][2]Location{{YLow, Centre}, {Corners, XLow}} {
		res, src, own, h := out.alloc(p[0]), f.At(p[1]), f.At(p[0]), dy.At(p[0])
		var lowerNb, upperNb *matrix.Dense
		if below != nil {
			lowerNb = get(below).At(p[1])
		}
		if above != nil {
			upperNb = get(above).At(p[1])
		}
		for i := 0; i < res.Rows(); i++ {
			s, face, d, row := src.Row(i), own.Row(i), h.Row(i), res.Row(i)
			for j := 1; j < r.NY; j++ {
				row[j] = (s[j] - s[j-1]) / d[j]
			}
			if lowerNb != nil {
				nb := lowerNb.Row(i)
				row[0] = (s[0] - nb[len(nb)-1]) / d[0]
			} else {
				row[0] = (s[0] - face[0]) / (d[0] / 2)
			}
			n := r.NY
			if upperNb != nil {
				row[n] = (upperNb.Row(i)[0] - s[n-1]) / d[n]
			} else {
				row[n] = (face[n] - s[n-1]) / (d[n] / 2)
			}
		}
	}

	return out, nil
}
