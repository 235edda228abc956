package interp

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/fluxgrid/matrix"
)

// Bicubic is the tensor-product cubic spline through values on a regular
// (x, y) grid. Node values and the derivatives f_x, f_y, f_xy of the
// tensor-product spline are precomputed; each cell is then the bicubic
// Hermite patch through its four corners, which reproduces the spline
// exactly.
type Bicubic struct {
	x, y           []float64
	f, fx, fy, fxy *matrix.Dense // indexed [ix, iy]
}

// NewBicubic builds the interpolant for f[i][j] = F(x[i], y[j]).
func NewBicubic(x, y []float64, f *matrix.Dense) (*Bicubic, error) {
	nx, ny := len(x), len(y)
	if f == nil || f.Rows() != nx || f.Cols() != ny {
		return nil, fmt.Errorf("NewBicubic: values must be %dx%d: %w", nx, ny, ErrLengthMismatch)
	}
	if err := checkKnots(x, make([]float64, nx)); err != nil {
		return nil, fmt.Errorf("NewBicubic: x: %w", err)
	}
	if err := checkKnots(y, make([]float64, ny)); err != nil {
		return nil, fmt.Errorf("NewBicubic: y: %w", err)
	}
	b := &Bicubic{
		x: append([]float64(nil), x...),
		y: append([]float64(nil), y...),
		f: f.Clone(),
	}
	var err error
	if b.fx, err = matrix.NewDense(nx, ny); err != nil {
		return nil, err
	}
	if b.fy, err = matrix.NewDense(nx, ny); err != nil {
		return nil, err
	}
	if b.fxy, err = matrix.NewDense(nx, ny); err != nil {
		return nil, err
	}

	col := make([]float64, nx)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			col[i] = b.f.Row(i)[j]
		}
		s, err := NewSpline(x, col)
		if err != nil {
			return nil, fmt.Errorf("NewBicubic: column %d: %w", j, err)
		}
		for i := 0; i < nx; i++ {
			b.fx.Row(i)[j] = s.Deriv(x[i])
		}
	}
	for i := 0; i < nx; i++ {
		s, err := NewSpline(y, b.f.Row(i))
		if err != nil {
			return nil, fmt.Errorf("NewBicubic: row %d: %w", i, err)
		}
		sx, err := NewSpline(y, b.fx.Row(i))
		if err != nil {
			return nil, fmt.Errorf("NewBicubic: row %d: %w", i, err)
		}
		for j := 0; j < ny; j++ {
			b.fy.Row(i)[j] = s.Deriv(y[j])
			b.fxy.Row(i)[j] = sx.Deriv(y[j])
		}
	}

	return b, nil
}

func cell(knots []float64, v float64) int {
	i := sort.SearchFloat64s(knots, v) - 1
	if i < 0 {
		return 0
	}
	if i > len(knots)-2 {
		return len(knots) - 2
	}

	return i
}

// hermite returns the cubic Hermite basis functions (order 0..2 derivative
// in t) for value-at-0, slope-at-0, value-at-1, slope-at-1.
func hermite(t float64, order int) [4]float64 {
	switch order {
	case 0:
		t2, t3 := t*t, t*t*t
		return [4]float64{2*t3 - 3*t2 + 1, t3 - 2*t2 + t, -2*t3 + 3*t2, t3 - t2}
	case 1:
		t2 := t * t
		return [4]float64{6*t2 - 6*t, 3*t2 - 4*t + 1, -6*t2 + 6*t, 3*t2 - 2*t}
	default:
		return [4]float64{12*t - 6, 6*t - 4, -12*t + 6, 6*t - 2}
	}
}

// eval evaluates the (dx, dy)-th partial derivative at (xv, yv).
func (b *Bicubic) eval(xv, yv float64, dx, dy int) float64 {
	i := cell(b.x, xv)
	j := cell(b.y, yv)
	hx := b.x[i+1] - b.x[i]
	hy := b.y[j+1] - b.y[j]
	bx := hermite((xv-b.x[i])/hx, dx)
	by := hermite((yv-b.y[j])/hy, dy)

	var sum float64
	for a := 0; a < 2; a++ {
		for c := 0; c < 2; c++ {
			ii, jj := i+a, j+c
			f := b.f.Row(ii)[jj]
			fx := b.fx.Row(ii)[jj] * hx
			fy := b.fy.Row(ii)[jj] * hy
			fxy := b.fxy.Row(ii)[jj] * hx * hy
			sum += f*bx[2*a]*by[2*c] + fx*bx[2*a+1]*by[2*c] +
				fy*bx[2*a]*by[2*c+1] + fxy*bx[2*a+1]*by[2*c+1]
		}
	}
	for k := 0; k < dx; k++ {
		sum /= hx
	}
	for k := 0; k < dy; k++ {
		sum /= hy
	}

	return sum
}

// Value returns the interpolated value.
func (b *Bicubic) Value(x, y float64) float64 { return b.eval(x, y, 0, 0) }

// DX returns ∂f/∂x.
func (b *Bicubic) DX(x, y float64) float64 { return b.eval(x, y, 1, 0) }

// DY returns ∂f/∂y.
func (b *Bicubic) DY(x, y float64) float64 { return b.eval(x, y, 0, 1) }

// DXX returns ∂²f/∂x².
func (b *Bicubic) DXX(x, y float64) float64 { return b.eval(x, y, 2, 0) }

// DYY returns ∂²f/∂y².
func (b *Bicubic) DYY(x, y float64) float64 { return b.eval(x, y, 0, 2) }

// DXY returns ∂²f/∂x∂y.
func (b *Bicubic) DXY(x, y float64) float64 { return b.eval(x, y, 1, 1) }

// Bounds returns the extent of the underlying grid.
func (b *Bicubic) Bounds() (xmin, xmax, ymin, ymax float64) {
	return b.x[0], b.x[len(b.x)-1], b.y[0], b.y[len(b.y)-1]
}
