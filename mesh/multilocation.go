package mesh

import (
	"fmt"

	"github.com/katalvlaran/fluxgrid/matrix"
)

// Location is one of the staggered positions of a region's points.
type Location int

const (
	Centre Location = iota
	XLow
	YLow
	Corners
)

// Locations lists every Location in storage order.
var Locations = [...]Location{Centre, XLow, YLow, Corners}

func (l Location) String() string {
	switch l {
	case Centre:
		return "centre"
	case XLow:
		return "xlow"
	case YLow:
		return "ylow"
	case Corners:
		return "corners"
	}

	return fmt.Sprintf("Location(%d)", int(l))
}

// MultiLocationArray holds one field of an nx*ny region at every Location.
// Centre is [nx,ny], XLow [nx+1,ny], YLow [nx,ny+1] and Corners
// [nx+1,ny+1]; rows are the x index. A location that was never set is nil.
type MultiLocationArray struct {
	NX, NY int

	loc [4]*matrix.Dense
}

// NewMultiLocationArray returns an array with no locations set.
func NewMultiLocationArray(nx, ny int) *MultiLocationArray {
	return &MultiLocationArray{NX: nx, NY: ny}
}

// Shape returns the dimensions of location l.
func (a *MultiLocationArray) Shape(l Location) (rows, cols int) {
	rows, cols = a.NX, a.NY
	if l == XLow || l == Corners {
		rows++
	}
	if l == YLow || l == Corners {
		cols++
	}

	return rows, cols
}

// At returns location l, or nil if it is unset.
func (a *MultiLocationArray) At(l Location) *matrix.Dense { return a.loc[l] }

// Set stores m at location l.
func (a *MultiLocationArray) Set(l Location, m *matrix.Dense) error {
	if m != nil {
		r, c := a.Shape(l)
		if m.Rows() != r || m.Cols() != c {
			return fmt.Errorf("Set %s: got %dx%d, want %dx%d: %w", l, m.Rows(), m.Cols(), r, c, ErrShape)
		}
	}
	a.loc[l] = m

	return nil
}

// alloc returns location l, creating it filled with zeros if unset.
func (a *MultiLocationArray) alloc(l Location) *matrix.Dense {
	if a.loc[l] == nil {
		r, c := a.Shape(l)
		a.loc[l], _ = matrix.NewDense(r, c)
	}

	return a.loc[l]
}

// Zero sets every location to zero and returns a.
func (a *MultiLocationArray) Zero() *MultiLocationArray {
	return a.Fill(0)
}

// Fill sets every location to v and returns a.
func (a *MultiLocationArray) Fill(v float64) *MultiLocationArray {
	for _, l := range Locations {
		r, c := a.Shape(l)
		a.loc[l], _ = matrix.Full(r, c, v)
	}

	return a
}

// Clone returns a deep copy.
func (a *MultiLocationArray) Clone() *MultiLocationArray {
	out := NewMultiLocationArray(a.NX, a.NY)
	for _, l := range Locations {
		if m := a.loc[l]; m != nil {
			out.loc[l] = m.Clone()
		}
	}

	return out
}

// Apply evaluates f point by point over args, which must all have the same
// nx and ny. The values passed to f are in argument order. A location unset
// in any argument is unset in the result.
func Apply(f func(v []float64) float64, args ...*MultiLocationArray) (*MultiLocationArray, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("Apply: no operands: %w", ErrShape)
	}
	nx, ny := args[0].NX, args[0].NY
	for i, a := range args[1:] {
		if a.NX != nx || a.NY != ny {
			return nil, fmt.Errorf("Apply: operand %d is %dx%d, want %dx%d: %w", i+1, a.NX, a.NY, nx, ny, ErrShape)
		}
	}
	out := NewMultiLocationArray(nx, ny)
	v := make([]float64, len(args))
	data := make([][]float64, len(args))
	for _, l := range Locations {
		present := true
		for i, a := range args {
			if a.loc[l] == nil {
				present = false
				break
			}
			data[i] = a.loc[l].Data()
		}
		if !present {
			continue
		}
		res := out.alloc(l).Data()
		for k := range res {
			for i := range data {
				v[i] = data[i][k]
			}
			res[k] = f(v)
		}
	}

	return out, nil
}

// combine applies op to every location set in both a and b.
func combine(tag string, a, b *MultiLocationArray, op func(x, y *matrix.Dense) (*matrix.Dense, error)) (*MultiLocationArray, error) {
	if a.NX != b.NX || a.NY != b.NY {
		return nil, fmt.Errorf("%s: %dx%d and %dx%d: %w", tag, a.NX, a.NY, b.NX, b.NY, ErrShape)
	}
	out := NewMultiLocationArray(a.NX, a.NY)
	for _, l := range Locations {
		if a.loc[l] == nil || b.loc[l] == nil {
			continue
		}
		m, err := op(a.loc[l], b.loc[l])
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", tag, l, err)
		}
		out.loc[l] = m
	}

	return out, nil
}

// transform applies op to every location set in a. The operations used
// cannot fail on a non-nil matrix.
func (a *MultiLocationArray) transform(op func(*matrix.Dense) (*matrix.Dense, error)) *MultiLocationArray {
	out := NewMultiLocationArray(a.NX, a.NY)
	for _, l := range Locations {
		if m := a.loc[l]; m != nil {
			out.loc[l], _ = op(m)
		}
	}

	return out
}

// Add returns a + b.
func Add(a, b *MultiLocationArray) (*MultiLocationArray, error) {
	return combine("Add", a, b, matrix.Add)
}

// Sub returns a - b.
func Sub(a, b *MultiLocationArray) (*MultiLocationArray, error) {
	return combine("Sub", a, b, matrix.Sub)
}

// Mul returns a * b elementwise.
func Mul(a, b *MultiLocationArray) (*MultiLocationArray, error) {
	return combine("Mul", a, b, matrix.Hadamard)
}

// Div returns a / b elementwise.
func Div(a, b *MultiLocationArray) (*MultiLocationArray, error) {
	return combine("Div", a, b, matrix.Divide)
}

// Map returns f applied to every value of a.
func (a *MultiLocationArray) Map(f func(float64) float64) *MultiLocationArray {
	return a.transform(func(m *matrix.Dense) (*matrix.Dense, error) { return matrix.Map(m, f) })
}

// Scale returns s*a.
func (a *MultiLocationArray) Scale(s float64) *MultiLocationArray {
	return a.transform(func(m *matrix.Dense) (*matrix.Dense, error) { return matrix.Scale(m, s) })
}

// Pow returns a**e.
func (a *MultiLocationArray) Pow(e float64) *MultiLocationArray {
	return a.transform(func(m *matrix.Dense) (*matrix.Dense, error) { return matrix.Pow(m, e) })
}

// Sqrt returns the elementwise square root.
func (a *MultiLocationArray) Sqrt() *MultiLocationArray {
	return a.transform(matrix.Sqrt)
}

// Neg returns -a.
func (a *MultiLocationArray) Neg() *MultiLocationArray {
	return a.Scale(-1)
}

// pointwise fills every location of a with f(R, Z) from the matching
// locations of R and Z.
func pointwise(R, Z *MultiLocationArray, f func(R, Z float64) float64) *MultiLocationArray {
	out, _ := Apply(func(v []float64) float64 { return f(v[0], v[1]) }, R, Z)

	return out
}
