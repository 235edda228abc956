package mesh_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/katalvlaran/fluxgrid/circular"
	"github.com/katalvlaran/fluxgrid/config"
	"github.com/katalvlaran/fluxgrid/equilibrium"
	"github.com/katalvlaran/fluxgrid/gridfile"
	"github.com/katalvlaran/fluxgrid/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func circularOptions() *config.Options {
	o := config.Default()
	o.Nx = 2
	o.Ny = 8
	o.RefineWidth = 1e-3
	o.FinecontourAtol = 1e-9
	o.FinecontourMaxits = 50
	o.NumWorkers = 2

	return o
}

func circularEquilibrium(t *testing.T, o *config.Options) *equilibrium.Equilibrium {
	t.Helper()
	eq, err := circular.New(context.Background(), o, zaptest.NewLogger(t))
	require.NoError(t, err)

	return eq
}

func circularBoutMesh(t *testing.T) (*mesh.BoutMesh, *config.Options) {
	t.Helper()
	o := circularOptions()
	b, err := mesh.NewBoutMesh(context.Background(), circularEquilibrium(t, o), nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, b.Geometry(context.Background()))

	return b, o
}

// each calls f for every value of location l.
func each(t *testing.T, a *mesh.MultiLocationArray, l mesh.Location, f func(i, j int, v float64)) {
	t.Helper()
	m := a.At(l)
	require.NotNil(t, m, l.String())
	m.Do(f)
}

func TestNew_Circular(t *testing.T) {
	o := circularOptions()
	m, err := mesh.New(context.Background(), circularEquilibrium(t, o), nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.Len(t, m.Regions, 1)
	r := m.Regions[0]
	assert.Equal(t, "core(0)", r.Name)
	assert.Equal(t, 2, r.NX)
	assert.Equal(t, 8, r.NY)
	assert.InDelta(t, 2*math.Pi/8, m.Dy(), 1e-15)

	assert.Same(t, r, r.Neighbour(mesh.Upper))
	assert.Same(t, r, r.Neighbour(mesh.Lower))
	assert.Nil(t, r.Neighbour(mesh.Inner))
	assert.Nil(t, r.Neighbour(mesh.Outer))
	require.Len(t, m.XGroups, 1)
	require.Len(t, m.YGroups, 1)
	assert.Equal(t, []*mesh.Region{r}, m.YGroups[0])
	assert.Equal(t, 0, r.YGroupIndex())

	// the core lies inside the separatrix
	assert.Equal(t, -4, r.GlobalXInd(0))
	assert.Equal(t, 0, r.GlobalXInd(4))

	require.Len(t, r.Contours, 5)
	for i, c := range r.Contours {
		rad := math.Sqrt(2 * o.Q * r.PsiVals[i] / o.B0)
		for _, p := range c.Points() {
			assert.InDelta(t, rad, math.Hypot(p.R-o.R0, p.Z), 1e-6, "contour %d", i)
		}
	}
}

func TestNew_Errors(t *testing.T) {
	t.Run("cancelled", func(t *testing.T) {
		eq := circularEquilibrium(t, circularOptions())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := mesh.New(ctx, eq, nil, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
	t.Run("invalid options", func(t *testing.T) {
		eq := circularEquilibrium(t, circularOptions())
		o := circularOptions()
		o.NumWorkers = 0
		_, err := mesh.New(context.Background(), eq, o, nil)
		assert.ErrorIs(t, err, config.ErrInvalidOption)
	})
}

func TestGeometry_Circular(t *testing.T) {
	b, o := circularBoutMesh(t)
	r := b.Regions[0]
	minor := func(R, Z float64) float64 { return math.Hypot(R-o.R0, Z) }

	t.Run("corners", func(t *testing.T) {
		each(t, r.Rxy, mesh.Corners, func(i, j int, R float64) {
			Z, _ := r.Zxy.At(mesh.Corners).At(i, j)
			switch i {
			case 0:
				assert.InDelta(t, o.RInner, minor(R, Z), 1e-6, "corner %d,%d", i, j)
			case r.NX:
				assert.InDelta(t, o.ROuter, minor(R, Z), 1e-6, "corner %d,%d", i, j)
			}
		})
	})
	t.Run("field", func(t *testing.T) {
		assert.Equal(t, 1.0, r.BpSign)
		for _, l := range mesh.Locations {
			each(t, r.Bpxy, l, func(i, j int, bp float64) {
				R, _ := r.Rxy.At(l).At(i, j)
				Z, _ := r.Zxy.At(l).At(i, j)
				bt, _ := r.Btxy.At(l).At(i, j)
				assert.InEpsilon(t, o.B0*minor(R, Z)/(o.Q*R), bp, 1e-9)
				assert.InEpsilon(t, o.B0*o.R0/R, bt, 1e-12)
			})
		}
	})
	t.Run("metric", func(t *testing.T) {
		for _, l := range mesh.Locations {
			each(t, r.Hy, l, func(i, j int, hy float64) {
				R, _ := r.Rxy.At(l).At(i, j)
				Z, _ := r.Zxy.At(l).At(i, j)
				rad := minor(R, Z)
				J, _ := r.J.At(l).At(i, j)
				nu, _ := r.Dphidy.At(l).At(i, j)
				g11, _ := r.G11.At(l).At(i, j)
				g_33, _ := r.G_33.At(l).At(i, j)

				assert.InEpsilon(t, rad, hy, 1e-3, "%s %d,%d", l, i, j)
				assert.InEpsilon(t, o.Q*R/o.B0, J, 1e-3)
				assert.InEpsilon(t, o.Q*o.R0/R, nu, 1e-3)
				assert.InEpsilon(t, math.Pow(o.B0*rad/o.Q, 2), g11, 1e-9)
				assert.InEpsilon(t, R*R, g_33, 1e-12)
			})
		}
	})
	t.Run("zShift over one turn", func(t *testing.T) {
		zs := r.ZShift.At(mesh.YLow)
		require.NotNil(t, zs)
		for i := 0; i < r.NX; i++ {
			R, _ := r.Rxy.At(mesh.Centre).At(i, 0)
			Z, _ := r.Zxy.At(mesh.Centre).At(i, 0)
			rad := minor(R, Z)
			want := 2 * math.Pi * o.Q * o.R0 / math.Sqrt(o.R0*o.R0-rad*rad)
			first, _ := zs.At(i, 0)
			last, _ := zs.At(i, r.NY)
			assert.Equal(t, 0.0, first)
			assert.InEpsilon(t, want, last, 1e-3)
		}
	})
	t.Run("derivatives of psi", func(t *testing.T) {
		psi := func(q *mesh.Region) *mesh.MultiLocationArray { return q.Psixy }
		ddx, err := r.DDX(psi)
		require.NoError(t, err)
		ddy, err := r.DDY(psi)
		require.NoError(t, err)
		for _, l := range mesh.Locations {
			each(t, ddx, l, func(i, j int, v float64) {
				assert.InDelta(t, 1, v, 1e-4, "DDX %s %d,%d", l, i, j)
			})
			each(t, ddy, l, func(i, j int, v float64) {
				assert.InDelta(t, 0, v, 1e-6, "DDY %s %d,%d", l, i, j)
			})
		}
	})
	t.Run("curvature", func(t *testing.T) {
		for _, f := range []*mesh.MultiLocationArray{r.CurlBOverBX, r.CurlBOverBY, r.CurlBOverBZ, r.Bxcvx, r.Bxcvy, r.Bxcvz} {
			require.NotNil(t, f)
			for _, l := range mesh.Locations {
				each(t, f, l, func(i, j int, v float64) {
					assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
				})
			}
		}
	})
}

func TestGeometry_Options(t *testing.T) {
	cases := []struct {
		name   string
		modify func(o *config.Options)
		want   error
	}{
		{"shifted metric off", func(o *config.Options) { o.ShiftedMetric = false }, mesh.ErrShiftedMetric},
		{"bxkappa curvature", func(o *config.Options) { o.CurvatureType = config.CurvatureBxKappa }, mesh.ErrCurvatureType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eq := circularEquilibrium(t, circularOptions())
			o := circularOptions()
			tc.modify(o)
			m, err := mesh.New(context.Background(), eq, o, nil)
			require.NoError(t, err)
			assert.ErrorIs(t, m.Geometry(context.Background()), tc.want)
		})
	}
}

func TestDDX_NoGeometry(t *testing.T) {
	o := circularOptions()
	m, err := mesh.New(context.Background(), circularEquilibrium(t, o), nil, nil)
	require.NoError(t, err)
	_, err = m.Regions[0].DDX(func(q *mesh.Region) *mesh.MultiLocationArray { return q.Psixy })
	assert.ErrorIs(t, err, mesh.ErrNoGeometry)
}

func TestBoutMesh(t *testing.T) {
	t.Run("fields before geometry", func(t *testing.T) {
		o := circularOptions()
		b, err := mesh.NewBoutMesh(context.Background(), circularEquilibrium(t, o), nil, nil)
		require.NoError(t, err)
		_, err = b.Field("Rxy")
		assert.ErrorIs(t, err, mesh.ErrNoGeometry)
		err = b.WriteGridfile(context.Background(), filepath.Join(t.TempDir(), "grid.db"))
		assert.ErrorIs(t, err, mesh.ErrNoGeometry)
	})

	b, _ := circularBoutMesh(t)
	assert.Equal(t, 2, b.NX)
	assert.Equal(t, 8, b.NY)
	assert.Equal(t, 8, b.NYNoGuards)

	_, err := b.Field("nope")
	assert.ErrorIs(t, err, mesh.ErrUnknownField)
	rxy, err := b.Field("Rxy")
	require.NoError(t, err)
	assert.Equal(t, b.Regions[0].Rxy.At(mesh.Centre).Data(), rxy.At(mesh.Centre).Data())
	assert.Contains(t, b.FieldNames(), "zShift")
	assert.Contains(t, b.FieldNames(), "bxcvz")

	topo, err := b.Topology()
	require.NoError(t, err)
	assert.Equal(t, mesh.Topology{IXSeps1: 2, IXSeps2: 2, JYSeps11: -1, JYSeps21: 4, NyInner: 4, JYSeps12: 4, JYSeps22: 7}, topo)
}

func TestBoutMesh_WriteGridfile(t *testing.T) {
	ctx := context.Background()
	b, o := circularBoutMesh(t)
	path := filepath.Join(t.TempDir(), "grid.db")
	require.NoError(t, b.WriteGridfile(ctx, path))
	assert.ErrorIs(t, b.WriteGridfile(ctx, path), gridfile.ErrExists)

	rd, err := gridfile.Open(ctx, path)
	require.NoError(t, err)
	defer rd.Close()

	ints := map[string]int{"nx": 2, "ny": 8, "y_boundary_guards": 0, "ixseps1": 2, "jyseps2_2": 7}
	for name, want := range ints {
		got, err := rd.Int(ctx, name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	bt, err := rd.Real(ctx, "Bt_axis")
	require.NoError(t, err)
	assert.Equal(t, o.B0, bt)
	ct, err := rd.String(ctx, "curvature_type")
	require.NoError(t, err)
	assert.Equal(t, config.CurvatureCurlBOverB, ct)
	pt, err := rd.String(ctx, "parallel_transform")
	require.NoError(t, err)
	assert.Equal(t, "shiftedmetric", pt)
	v, err := rd.String(ctx, mesh.VersionName)
	require.NoError(t, err)
	assert.Equal(t, gridfile.Version, v)
	in, err := rd.String(ctx, mesh.InputsName)
	require.NoError(t, err)
	assert.Contains(t, in, "shiftedmetric: true")

	names, err := rd.FieldNames(ctx)
	require.NoError(t, err)
	for _, n := range []string{"Rxy", "Rxy_ylow", "J", "g_23_ylow", "Zxy_corners", "Rxy_upper_right_corners"} {
		assert.Contains(t, names, n)
	}

	rxy, err := rd.Field(ctx, "Rxy")
	require.NoError(t, err)
	assert.Equal(t, 2, rxy.Rows())
	assert.Equal(t, 8, rxy.Cols())
	assert.Equal(t, b.Regions[0].Rxy.At(mesh.Centre).Data(), rxy.Data())

	corners := b.Regions[0].Rxy.At(mesh.Corners)
	ur, err := rd.Field(ctx, "Rxy_upper_right_corners")
	require.NoError(t, err)
	want, _ := corners.At(2, 8)
	got, _ := ur.At(1, 7)
	assert.Equal(t, want, got)
}
