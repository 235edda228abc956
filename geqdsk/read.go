package geqdsk

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/katalvlaran/fluxgrid/matrix"
)

const descLen = 48

var (
	intRe = regexp.MustCompile(`[+-]?\d+`)
	// Fortran E records can abut: "1.000000000E+00-2.000000000E+00".
	floatRe = regexp.MustCompile(`[+-]?(?:\d+\.?\d*|\.\d+)(?:[eEdD][+-]?\d+)?`)
)

// tokens walks the numbers of the file body.
type tokens struct {
	vals []string
	pos  int
}

func (t *tokens) float(what string) (float64, error) {
	if t.pos >= len(t.vals) {
		return 0, fmt.Errorf("reading %s: %w", what, ErrTruncated)
	}
	s := strings.NewReplacer("d", "e", "D", "e").Replace(t.vals[t.pos])
	t.pos++
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", what, err)
	}

	return v, nil
}

func (t *tokens) floats(n int, what string) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		v, err := t.float(what)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	return out, nil
}

func (t *tokens) int(what string) (int, error) {
	v, err := t.float(what)
	if err != nil {
		return 0, err
	}

	return int(v), nil
}

// Read parses a G-EQDSK file.
func Read(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)
	header, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("Read: %w", err)
	}
	header = strings.TrimRight(header, "\r\n")
	f := &File{}
	if err := f.parseHeader(header); err != nil {
		return nil, fmt.Errorf("Read: %w", err)
	}

	body, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("Read: %w", err)
	}
	t := &tokens{vals: floatRe.FindAllString(string(body), -1)}
	if err := f.parseBody(t); err != nil {
		return nil, fmt.Errorf("Read: %w", err)
	}

	return f, nil
}

func (f *File) parseHeader(line string) error {
	rest := line
	if len(line) > descLen {
		f.Description = strings.TrimSpace(line[:descLen])
		rest = line[descLen:]
	}
	ints := intRe.FindAllString(rest, -1)
	if len(ints) < 2 {
		// short description: the sizes are the last integers on the line
		fields := strings.Fields(line)
		ints = ints[:0]
		for len(fields) > 0 && intRe.MatchString(fields[len(fields)-1]) && len(ints) < 3 {
			ints = append([]string{fields[len(fields)-1]}, ints...)
			fields = fields[:len(fields)-1]
		}
		f.Description = strings.Join(fields, " ")
	}
	if len(ints) < 2 {
		return fmt.Errorf("%q: %w", line, ErrHeader)
	}
	n := len(ints)
	var err error
	if f.NW, err = strconv.Atoi(ints[n-2]); err != nil {
		return fmt.Errorf("nw: %w: %w", ErrHeader, err)
	}
	if f.NH, err = strconv.Atoi(ints[n-1]); err != nil {
		return fmt.Errorf("nh: %w: %w", ErrHeader, err)
	}
	if n >= 3 {
		f.IDum, _ = strconv.Atoi(ints[n-3])
	}
	if f.NW < 2 || f.NH < 2 {
		return fmt.Errorf("nw=%d nh=%d: %w", f.NW, f.NH, ErrHeader)
	}

	return nil
}

func (f *File) parseBody(t *tokens) error {
	scalars, err := t.floats(20, "scalars")
	if err != nil {
		return err
	}
	f.RDim, f.ZDim, f.RCentr, f.RLeft, f.ZMid = scalars[0], scalars[1], scalars[2], scalars[3], scalars[4]
	f.RMagx, f.ZMagx, f.SiMagx, f.SiBdry, f.BCentr = scalars[5], scalars[6], scalars[7], scalars[8], scalars[9]
	f.Current = scalars[10]
	// the remaining ten repeat the axis and boundary values or are unused

	profiles := []struct {
		dst  *[]float64
		name string
	}{
		{&f.Fpol, "fpol"},
		{&f.Pres, "pres"},
		{&f.FFPrime, "ffprime"},
		{&f.PPrime, "pprime"},
	}
	for _, p := range profiles {
		if *p.dst, err = t.floats(f.NW, p.name); err != nil {
			return err
		}
	}

	// psirz is stored R-fastest
	zr, err := matrix.NewDense(f.NH, f.NW)
	if err != nil {
		return err
	}
	data := zr.Data()
	for k := range data {
		if data[k], err = t.float("psirz"); err != nil {
			return err
		}
	}
	if f.Psi, err = matrix.Transpose(zr); err != nil {
		return err
	}

	if f.QPsi, err = t.floats(f.NW, "qpsi"); err != nil {
		return err
	}

	nbbbs, err := t.int("nbbbs")
	if err != nil {
		return err
	}
	limitr, err := t.int("limitr")
	if err != nil {
		return err
	}
	if nbbbs < 0 || limitr < 0 {
		return fmt.Errorf("nbbbs=%d limitr=%d: %w", nbbbs, limitr, ErrShape)
	}
	if f.RBoundary, f.ZBoundary, err = t.pairs(nbbbs, "boundary"); err != nil {
		return err
	}
	if f.RLimiter, f.ZLimiter, err = t.pairs(limitr, "limiter"); err != nil {
		return err
	}

	return nil
}

func (t *tokens) pairs(n int, what string) (rs, zs []float64, err error) {
	rs = make([]float64, n)
	zs = make([]float64, n)
	for i := 0; i < n; i++ {
		if rs[i], err = t.float(what); err != nil {
			return nil, nil, err
		}
		if zs[i], err = t.float(what); err != nil {
			return nil, nil, err
		}
	}

	return rs, zs, nil
}
