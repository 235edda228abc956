package geqdsk_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/katalvlaran/fluxgrid/geqdsk"
	"github.com/katalvlaran/fluxgrid/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoByTwo is a minimal file with abutting negative numbers.
const twoByTwo = `  TEST 01/01/2000 #000001 0000ms                   3   2   2
 1.000000000E+00 2.000000000E+00 1.500000000E+00 1.000000000E+00 0.000000000E+00
 1.500000000E+00 0.000000000E+00-1.000000000E+00 0.000000000E+00 2.000000000E+00
 1.000000000E+06-1.000000000E+00 0.000000000E+00 1.500000000E+00 0.000000000E+00
 0.000000000E+00 0.000000000E+00 0.000000000E+00 0.000000000E+00 0.000000000E+00
 3.000000000E+00 3.000000000E+00
 1.000000000E+04 0.000000000E+00
-1.000000000E+00-2.000000000E+00
 5.000000000E-01 5.000000000E-01
 1.000000000E+00 2.000000000E+00 3.000000000E+00-4.000000000E+00
 1.000000000E+00 3.000000000E+00
    1    2
 1.500000000E+00 0.000000000E+00
 1.000000000E+00-1.000000000E+00 2.000000000E+00 1.000000000E+00
`

func TestRead(t *testing.T) {
	f, err := geqdsk.Read(strings.NewReader(twoByTwo))
	require.NoError(t, err)

	assert.Equal(t, "TEST 01/01/2000 #000001 0000ms", f.Description)
	assert.Equal(t, 3, f.IDum)
	assert.Equal(t, 2, f.NW)
	assert.Equal(t, 2, f.NH)
	assert.Equal(t, -1.0, f.SiMagx)
	assert.Equal(t, 1e6, f.Current)
	assert.Equal(t, []float64{-1, -2}, f.FFPrime)
	assert.Equal(t, []float64{1, 3}, f.QPsi)

	// psirz is stored R-fastest
	v, err := f.Psi.At(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)
	v, err = f.Psi.At(1, 1)
	require.NoError(t, err)
	assert.Equal(t, -4.0, v)

	assert.Equal(t, []float64{1.5}, f.RBoundary)
	assert.Equal(t, []float64{1, 2}, f.RLimiter)
	assert.Equal(t, []float64{-1, 1}, f.ZLimiter)

	assert.Equal(t, []float64{1, 2}, f.RGrid())
	assert.Equal(t, []float64{-1, 1}, f.ZGrid())
	assert.Equal(t, []float64{-1, 0}, f.PsiGrid())
}

func TestRead_Errors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want error
	}{
		{"empty", "", geqdsk.ErrHeader},
		{"no sizes", "just a description\n1.0 2.0\n", geqdsk.ErrHeader},
		{"truncated", twoByTwo[:len(twoByTwo)/2], geqdsk.ErrTruncated},
		{"no limiter", strings.TrimSuffix(twoByTwo, " 1.000000000E+00-1.000000000E+00 2.000000000E+00 1.000000000E+00\n"), geqdsk.ErrTruncated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := geqdsk.Read(strings.NewReader(tc.src))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func sample(t *testing.T) *geqdsk.File {
	t.Helper()
	nw, nh := 5, 4
	psi, err := matrix.NewDense(nw, nh)
	require.NoError(t, err)
	for i := 0; i < nw; i++ {
		for j := 0; j < nh; j++ {
			require.NoError(t, psi.Set(i, j, float64(i*i)-0.37*float64(j)))
		}
	}
	prof := func(a float64) []float64 {
		out := make([]float64, nw)
		for i := range out {
			out[i] = a * float64(i+1) / 3
		}
		return out
	}

	return &geqdsk.File{
		Description: "sample", NW: nw, NH: nh,
		RDim: 1.2, ZDim: 2.4, RCentr: 1.7, RLeft: 1.1, ZMid: 0.01,
		RMagx: 1.72, ZMagx: 0.02, SiMagx: -0.5, SiBdry: 0.1, BCentr: -2.1, Current: 1.1e6,
		Fpol: prof(3.5), Pres: prof(1e4), FFPrime: prof(-0.2), PPrime: prof(-1e3), QPsi: prof(1.1),
		Psi:       psi,
		RBoundary: []float64{1.3, 2.0, 1.3}, ZBoundary: []float64{-0.9, 0, 0.9},
		RLimiter: []float64{1.1, 2.3, 2.3, 1.1}, ZLimiter: []float64{-1.2, -1.2, 1.2, 1.2},
	}
}

func TestWriteRead(t *testing.T) {
	want := sample(t)
	var buf bytes.Buffer
	require.NoError(t, geqdsk.Write(&buf, want))

	got, err := geqdsk.Read(&buf)
	require.NoError(t, err)

	opts := cmp.Options{
		cmpopts.IgnoreFields(geqdsk.File{}, "Psi"),
		cmpopts.EquateApprox(1e-9, 0),
	}
	assert.Empty(t, cmp.Diff(want, got, opts...))
	assert.InDeltaSlice(t, want.Psi.Data(), got.Psi.Data(), 1e-12)
}

func TestWrite_Shape(t *testing.T) {
	f := sample(t)
	f.QPsi = f.QPsi[:2]
	assert.ErrorIs(t, geqdsk.Write(&bytes.Buffer{}, f), geqdsk.ErrShape)

	f = sample(t)
	f.ZLimiter = nil
	assert.ErrorIs(t, geqdsk.Write(&bytes.Buffer{}, f), geqdsk.ErrShape)
}
