package geqdsk

import (
	"bufio"
	"fmt"
	"io"

	"github.com/katalvlaran/fluxgrid/matrix"
)

// record writes values five to a line in 5e16.9 format.
type record struct {
	w   *bufio.Writer
	col int
}

func (r *record) put(v float64) {
	fmt.Fprintf(r.w, "%16.9E", v)
	r.col++
	if r.col == 5 {
		r.w.WriteByte('\n')
		r.col = 0
	}
}

// end finishes a partly filled line.
func (r *record) end() {
	if r.col != 0 {
		r.w.WriteByte('\n')
		r.col = 0
	}
}

func (r *record) all(vs []float64) {
	for _, v := range vs {
		r.put(v)
	}
	r.end()
}

func (f *File) validate() error {
	for _, p := range []struct {
		name string
		v    []float64
	}{
		{"fpol", f.Fpol}, {"pres", f.Pres}, {"ffprime", f.FFPrime},
		{"pprime", f.PPrime}, {"qpsi", f.QPsi},
	} {
		if len(p.v) != f.NW {
			return fmt.Errorf("%s has %d values, nw=%d: %w", p.name, len(p.v), f.NW, ErrShape)
		}
	}
	if f.Psi == nil || f.Psi.Rows() != f.NW || f.Psi.Cols() != f.NH {
		return fmt.Errorf("psirz must be %dx%d: %w", f.NW, f.NH, ErrShape)
	}
	if len(f.RBoundary) != len(f.ZBoundary) || len(f.RLimiter) != len(f.ZLimiter) {
		return fmt.Errorf("boundary or limiter R and Z lengths differ: %w", ErrShape)
	}

	return nil
}

// Write emits f in G-EQDSK format.
func Write(w io.Writer, f *File) error {
	if err := f.validate(); err != nil {
		return fmt.Errorf("Write: %w", err)
	}
	bw := bufio.NewWriter(w)
	desc := f.Description
	if len(desc) > descLen {
		desc = desc[:descLen]
	}
	fmt.Fprintf(bw, "%-48s%4d%4d%4d\n", desc, f.IDum, f.NW, f.NH)

	r := &record{w: bw}
	r.all([]float64{
		f.RDim, f.ZDim, f.RCentr, f.RLeft, f.ZMid,
		f.RMagx, f.ZMagx, f.SiMagx, f.SiBdry, f.BCentr,
		f.Current, f.SiMagx, 0, f.RMagx, 0,
		f.ZMagx, 0, f.SiBdry, 0, 0,
	})
	r.all(f.Fpol)
	r.all(f.Pres)
	r.all(f.FFPrime)
	r.all(f.PPrime)
	// psirz is stored R-fastest
	zr, err := matrix.Transpose(f.Psi)
	if err != nil {
		return fmt.Errorf("Write: %w", err)
	}
	r.all(zr.Data())
	r.all(f.QPsi)

	fmt.Fprintf(bw, "%5d%5d\n", len(f.RBoundary), len(f.RLimiter))
	for i := range f.RBoundary {
		r.put(f.RBoundary[i])
		r.put(f.ZBoundary[i])
	}
	r.end()
	for i := range f.RLimiter {
		r.put(f.RLimiter[i])
		r.put(f.ZLimiter[i])
	}
	r.end()

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("Write: %w", err)
	}

	return nil
}
