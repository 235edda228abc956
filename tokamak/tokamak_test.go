package tokamak_test

import (
	"context"
	"math"
	"testing"

	"github.com/katalvlaran/fluxgrid/config"
	"github.com/katalvlaran/fluxgrid/equilibrium"
	"github.com/katalvlaran/fluxgrid/geometry"
	"github.com/katalvlaran/fluxgrid/geqdsk"
	"github.com/katalvlaran/fluxgrid/matrix"
	"github.com/katalvlaran/fluxgrid/tokamak"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	r0 = 2.0
	// cubic term placing the X-point at (r0, -0.6) with psi = 0.12
	b = 1 / 0.9
)

func psiOf(R, Z float64) float64 { return (R-r0)*(R-r0) + Z*Z + b*Z*Z*Z }

// lowerNull samples psiOf on a 49x45 grid over [0.8,3.2]x[-1.2,1.0] with a
// rectangular limiter.
func lowerNull(t *testing.T) *geqdsk.File {
	t.Helper()
	f := &geqdsk.File{
		Description: "lower null", NW: 49, NH: 45,
		RDim: 2.4, ZDim: 2.2, RCentr: r0, RLeft: r0 - 1.2, ZMid: -0.1,
		RMagx: r0, ZMagx: 0, SiMagx: 0, SiBdry: 0.12, BCentr: 1,
		RLimiter: []float64{r0 - 1, r0 + 1, r0 + 1, r0 - 1},
		ZLimiter: []float64{-1, -1, 0.8, 0.8},
	}
	f.Fpol = make([]float64, f.NW)
	for i := range f.Fpol {
		f.Fpol[i] = 2 + 0.01*float64(i)
	}
	psi, err := matrix.NewDense(f.NW, f.NH)
	require.NoError(t, err)
	R, Z := f.RGrid(), f.ZGrid()
	for i := range R {
		for j := range Z {
			require.NoError(t, psi.Set(i, j, psiOf(R[i], Z[j])))
		}
	}
	f.Psi = psi

	return f
}

func testOptions() *config.Options {
	o := config.Default()
	o.RefineWidth = 1e-3
	o.NxCore, o.NxSOL = 2, 2
	o.NyInnerDivertor, o.NyCore, o.NyOuterDivertor = 2, 8, 2

	return o
}

func TestFromGeqdsk_SingleNull(t *testing.T) {
	f := lowerNull(t)
	eq, err := tokamak.FromGeqdsk(context.Background(), f, []byte("raw"), testOptions(), nil)
	require.NoError(t, err)

	assert.InDelta(t, r0, eq.Axis.R, 1e-6)
	assert.InDelta(t, 0, eq.Axis.Z, 1e-6)
	require.Len(t, eq.XPoints, 1)
	assert.InDelta(t, r0, eq.XPoints[0].R, 1e-3)
	assert.InDelta(t, -0.6, eq.XPoints[0].Z, 1e-3)
	assert.InDelta(t, 0.12, eq.PsiSep[0], 1e-4)
	assert.InDelta(t, 1.0, eq.BtAxis, 1e-6)
	require.NotNil(t, eq.Wall)
	assert.Equal(t, 4, eq.Wall.Len())
	assert.Equal(t, []equilibrium.Input{{Name: tokamak.InputName, Content: []byte("raw")}}, eq.Inputs)

	var names []string
	for _, r := range eq.Regions() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"inner_lower_divertor", "core", "outer_lower_divertor"}, names)

	core, err := eq.Region("core")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, core.Nx)
	require.Len(t, core.PsiVals[0], 5)
	assert.InDelta(t, 0.9*eq.PsiSep[0], core.PsiVals[0][0], 1e-5)
	assert.InDelta(t, eq.PsiSep[0], core.PsiVals[0][4], 1e-12)
	assert.InDelta(t, eq.PsiSep[0], core.PsiVals[1][0], 1e-12)
	assert.InDelta(t, 1.1*eq.PsiSep[0], core.PsiVals[1][4], 1e-5)
}

func TestFromGeqdsk_Fpol(t *testing.T) {
	eq, err := tokamak.FromGeqdsk(context.Background(), lowerNull(t), nil, testOptions(), nil)
	require.NoError(t, err)

	// profile knots are 0.12/48 apart with fpol rising 0.01 per knot
	assert.InDelta(t, 2.24, eq.Fpol(0.06), 1e-9)
	assert.InDelta(t, 4.0, eq.FpolPrime(0.06), 1e-6)
	assert.InDelta(t, 2.48, eq.Fpol(1), 1e-12)
	assert.InDelta(t, 2.0, eq.Fpol(-1), 1e-12)
	assert.Equal(t, 0.0, eq.FpolPrime(1))
	assert.Empty(t, eq.Inputs)
}

func TestFromGeqdsk_CoreOnly(t *testing.T) {
	o := testOptions()
	o.PsinormSOL = 0.95
	eq, err := tokamak.FromGeqdsk(context.Background(), lowerNull(t), nil, o, nil)
	require.NoError(t, err)

	regions := eq.Regions()
	require.Len(t, regions, 1)
	core := regions[0]
	assert.Equal(t, "core", core.Name)
	assert.Equal(t, []int{2}, core.Nx)
	assert.InDelta(t, r0+math.Sqrt(0.95*0.12), core.Contour.First().R, 1e-4)
	assert.InDelta(t, 0, core.Contour.First().Z, 1e-6)
}

func TestFromGeqdsk_WallOption(t *testing.T) {
	o := testOptions()
	o.PsinormSOL = 0.95
	o.Wall = [][]float64{{1.2, -0.9}, {2.8, -0.9}, {2.8, 0.7}, {1.2, 0.7}, {1.0, 0}}
	eq, err := tokamak.FromGeqdsk(context.Background(), lowerNull(t), nil, o, nil)
	require.NoError(t, err)
	require.NotNil(t, eq.Wall)
	assert.Equal(t, geometry.Point{R: 1.0, Z: 0}, eq.Wall.Vertices()[4])
}

func TestFromGeqdsk_Errors(t *testing.T) {
	t.Run("no wall", func(t *testing.T) {
		f := lowerNull(t)
		f.RLimiter, f.ZLimiter = nil, nil
		_, err := tokamak.FromGeqdsk(context.Background(), f, nil, testOptions(), nil)
		assert.ErrorIs(t, err, tokamak.ErrNoWall)
	})
	t.Run("bad wall point", func(t *testing.T) {
		o := testOptions()
		o.Wall = [][]float64{{1, 2, 3}}
		_, err := tokamak.FromGeqdsk(context.Background(), lowerNull(t), nil, o, nil)
		assert.ErrorIs(t, err, config.ErrInvalidOption)
	})
	t.Run("surface outside grid", func(t *testing.T) {
		o := testOptions()
		o.PsinormSOL = 0.99
		o.PsinormCore = 0.5
		f := lowerNull(t)
		// no X-point inside this wall, so psi_sep falls back to sibdry
		f.RLimiter = []float64{r0 - 0.5, r0 + 0.5, r0 + 0.5, r0 - 0.5}
		f.ZLimiter = []float64{-0.5, -0.5, 0.5, 0.5}
		f.SiBdry = 100
		_, err := tokamak.FromGeqdsk(context.Background(), f, nil, o, nil)
		assert.ErrorIs(t, err, tokamak.ErrNoSurface)
	})
}
