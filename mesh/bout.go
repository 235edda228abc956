package mesh

import (
	"context"
	"fmt"
	"slices"

	"github.com/katalvlaran/fluxgrid/config"
	"github.com/katalvlaran/fluxgrid/equilibrium"
	"github.com/katalvlaran/fluxgrid/gridfile"
	"github.com/katalvlaran/fluxgrid/matrix"
	"go.uber.org/zap"
)

// outputFields are assembled into global arrays and written to the grid
// file, in this order.
var outputFields = []struct {
	name string
	get  FieldOf
}{
	{"Rxy", func(r *Region) *MultiLocationArray { return r.Rxy }},
	{"Zxy", func(r *Region) *MultiLocationArray { return r.Zxy }},
	{"psixy", func(r *Region) *MultiLocationArray { return r.Psixy }},
	{"dx", func(r *Region) *MultiLocationArray { return r.Dx }},
	{"dy", func(r *Region) *MultiLocationArray { return r.Dy }},
	{"Brxy", func(r *Region) *MultiLocationArray { return r.Brxy }},
	{"Bzxy", func(r *Region) *MultiLocationArray { return r.Bzxy }},
	{"Bpxy", func(r *Region) *MultiLocationArray { return r.Bpxy }},
	{"Btxy", func(r *Region) *MultiLocationArray { return r.Btxy }},
	{"Bxy", func(r *Region) *MultiLocationArray { return r.Bxy }},
	{"hy", func(r *Region) *MultiLocationArray { return r.Hy }},
	{"dphidy", func(r *Region) *MultiLocationArray { return r.Dphidy }},
	{"beta", func(r *Region) *MultiLocationArray { return r.Beta }},
	{"eta", func(r *Region) *MultiLocationArray { return r.Eta }},
	{"ShiftTorsion", func(r *Region) *MultiLocationArray { return r.ShiftTorsion }},
	{"zShift", func(r *Region) *MultiLocationArray { return r.ZShift }},
	{"g11", func(r *Region) *MultiLocationArray { return r.G11 }},
	{"g22", func(r *Region) *MultiLocationArray { return r.G22 }},
	{"g33", func(r *Region) *MultiLocationArray { return r.G33 }},
	{"g12", func(r *Region) *MultiLocationArray { return r.G12 }},
	{"g13", func(r *Region) *MultiLocationArray { return r.G13 }},
	{"g23", func(r *Region) *MultiLocationArray { return r.G23 }},
	{"J", func(r *Region) *MultiLocationArray { return r.J }},
	{"g_11", func(r *Region) *MultiLocationArray { return r.G_11 }},
	{"g_22", func(r *Region) *MultiLocationArray { return r.G_22 }},
	{"g_33", func(r *Region) *MultiLocationArray { return r.G_33 }},
	{"g_12", func(r *Region) *MultiLocationArray { return r.G_12 }},
	{"g_13", func(r *Region) *MultiLocationArray { return r.G_13 }},
	{"g_23", func(r *Region) *MultiLocationArray { return r.G_23 }},
	{"curl_bOverB_x", func(r *Region) *MultiLocationArray { return r.CurlBOverBX }},
	{"curl_bOverB_y", func(r *Region) *MultiLocationArray { return r.CurlBOverBY }},
	{"curl_bOverB_z", func(r *Region) *MultiLocationArray { return r.CurlBOverBZ }},
	{"bxcvx", func(r *Region) *MultiLocationArray { return r.Bxcvx }},
	{"bxcvy", func(r *Region) *MultiLocationArray { return r.Bxcvy }},
	{"bxcvz", func(r *Region) *MultiLocationArray { return r.Bxcvz }},
}

// Topology holds the BOUT++ indices that describe where separatrices and
// X-points sit in the global grid.
type Topology struct {
	IXSeps1, IXSeps2   int
	JYSeps11, JYSeps21 int
	NyInner            int
	JYSeps12, JYSeps22 int
}

// BoutMesh is a Mesh whose regions fit together into one global
// logically rectangular grid in the BOUT++ layout. The equilibrium regions
// must be ordered as they appear in global y.
type BoutMesh struct {
	*Mesh

	// NY includes y boundary guard cells, NYNoGuards does not.
	NX, NY, NYNoGuards int

	xStart    []int
	yStart    []int
	yNoGuards []int
	sepIndex  int

	fields map[string]*MultiLocationArray
}

// NewBoutMesh checks that the regions of eq fit the global layout and
// builds the Mesh.
func NewBoutMesh(ctx context.Context, eq *equilibrium.Equilibrium, opts *config.Options, logger *zap.Logger) (*BoutMesh, error) {
	eqRegions := eq.Regions()
	if len(eqRegions) == 0 {
		return nil, fmt.Errorf("NewBoutMesh: equilibrium has no regions: %w", ErrTopology)
	}
	first := eqRegions[0]
	b := &BoutMesh{xStart: []int{0}, sepIndex: first.SeparatrixRadialIndex}
	for _, nx := range first.Nx {
		b.NX += nx
		b.xStart = append(b.xStart, b.NX)
	}
	for _, r := range eqRegions {
		if !slices.Equal(r.Nx, first.Nx) {
			return nil, fmt.Errorf("NewBoutMesh: region %s has nx %v, %s has %v: %w",
				r.Name, r.Nx, first.Name, first.Nx, ErrIncompatible)
		}
		ny := r.Ny(0)
		for s := 1; s < r.NSegments; s++ {
			if r.Ny(s) != ny {
				return nil, fmt.Errorf("NewBoutMesh: region %s: segments differ in ny: %w", r.Name, ErrIncompatible)
			}
		}
		b.yStart = append(b.yStart, b.NY)
		b.yNoGuards = append(b.yNoGuards, r.NyNoGuards)
		b.NY += ny
		b.NYNoGuards += r.NyNoGuards
	}

	m, err := New(ctx, eq, opts, logger)
	if err != nil {
		return nil, fmt.Errorf("NewBoutMesh: %w", err)
	}
	b.Mesh = m

	return b, nil
}

// origin returns the global indices of the first cell of region r.
func (b *BoutMesh) origin(r *Region) (int, int) {
	return b.xStart[r.Segment], b.yStart[b.eqIndex[r.ID]]
}

// assemble copies every region's location, starting at local index
// (di, dj), into a global rows*cols array, clipped to the array. Shared
// faces are written by both regions with the same values.
func (b *BoutMesh) assemble(get FieldOf, l Location, rows, cols, di, dj int) *matrix.Dense {
	out, _ := matrix.NewDense(rows, cols)
	for _, r := range b.Regions {
		f := get(r)
		if f == nil || f.At(l) == nil {
			continue
		}
		src := f.At(l)
		x0, y0 := b.origin(r)
		n := min(src.Cols()-dj, cols-y0)
		for i := 0; di+i < src.Rows() && x0+i < rows; i++ {
			copy(out.Row(x0 + i)[y0:y0+n], src.Row(di + i)[dj:dj+n])
		}
	}

	return out
}

// Geometry computes the region geometry and assembles the global arrays.
func (b *BoutMesh) Geometry(ctx context.Context) error {
	if err := b.Mesh.Geometry(ctx); err != nil {
		return fmt.Errorf("BoutMesh.%w", err)
	}
	b.fields = make(map[string]*MultiLocationArray, len(outputFields))
	for _, f := range outputFields {
		g := NewMultiLocationArray(b.NX, b.NY)
		for _, l := range Locations {
			rows, cols := g.Shape(l)
			_ = g.Set(l, b.assemble(f.get, l, rows, cols, 0, 0))
		}
		b.fields[f.name] = g
	}

	return nil
}

// FieldNames lists the output fields in write order.
func (b *BoutMesh) FieldNames() []string {
	names := make([]string, len(outputFields))
	for i, f := range outputFields {
		names[i] = f.name
	}

	return names
}

// Field returns the global array of an output field.
func (b *BoutMesh) Field(name string) (*MultiLocationArray, error) {
	if b.fields == nil {
		return nil, fmt.Errorf("Field %s: %w", name, ErrNoGeometry)
	}
	f, ok := b.fields[name]
	if !ok {
		return nil, fmt.Errorf("Field %s: %w", name, ErrUnknownField)
	}

	return f, nil
}

// Topology returns the BOUT++ topology indices of the mesh.
func (b *BoutMesh) Topology() (Topology, error) {
	return ComputeTopology(b.xStart[1:], b.yNoGuards, b.sepIndex)
}

// ComputeTopology derives the BOUT++ topology indices from the x-sizes of
// the radial segments, the poloidal sizes (without guards) of the regions
// in global y order, and the separatrix radial index. y indices count cells
// without guards.
//
// xEnds holds the cumulative x index at the outer edge of each segment.
func ComputeTopology(xEnds, ny []int, separatrixRadialIndex int) (Topology, error) {
	var t Topology
	if len(xEnds) == 0 || len(ny) == 0 {
		return t, fmt.Errorf("ComputeTopology: empty grid: %w", ErrTopology)
	}
	nx := xEnds[len(xEnds)-1]
	switch len(xEnds) {
	case 1:
		if separatrixRadialIndex == 0 {
			// scrape-off layer only
			t.IXSeps1, t.IXSeps2 = -1, -1
		} else {
			t.IXSeps1, t.IXSeps2 = nx, nx
		}
	case 2:
		t.IXSeps1, t.IXSeps2 = xEnds[0], nx
	case 3:
		t.IXSeps1, t.IXSeps2 = xEnds[0], xEnds[1]
	default:
		return t, fmt.Errorf("ComputeTopology: %d radial segments: %w", len(xEnds), ErrTopology)
	}

	total := 0
	cum := make([]int, len(ny))
	for i, n := range ny {
		total += n
		cum[i] = total
	}
	switch len(ny) {
	case 1:
		t.JYSeps11 = -1
		t.JYSeps21, t.NyInner, t.JYSeps12 = total/2, total/2, total/2
		t.JYSeps22 = total - 1
	case 3:
		// single null
		t.JYSeps11 = cum[0] - 1
		t.JYSeps21, t.NyInner, t.JYSeps12 = total/2, total/2, total/2
		t.JYSeps22 = cum[1] - 1
	case 4:
		// one X-point with four legs, as two coincident X-points
		t.JYSeps11 = cum[0] - 1
		t.JYSeps21 = t.JYSeps11
		t.NyInner = cum[1]
		t.JYSeps22 = cum[2] - 1
		t.JYSeps12 = t.JYSeps22
		t.IXSeps2 = t.IXSeps1
	case 6:
		// double null
		t.JYSeps11 = cum[0] - 1
		t.JYSeps21 = cum[1] - 1
		t.NyInner = cum[2]
		t.JYSeps12 = cum[3] - 1
		t.JYSeps22 = cum[4] - 1
		if t.IXSeps2 == nx {
			// connected double null
			t.IXSeps2 = t.IXSeps1
		}
	default:
		return t, fmt.Errorf("ComputeTopology: %d y regions: %w", len(ny), ErrTopology)
	}

	return t, nil
}

// Names of the grid file entries that are not fields.
const (
	InputsName  = "fluxgrid_inputs"
	VersionName = "fluxgrid_version"
)

// WriteGridfile writes the grid to a new grid file at path. Geometry must
// have been called. The file is removed if writing fails.
func (b *BoutMesh) WriteGridfile(ctx context.Context, path string, opts ...gridfile.Option) (err error) {
	if b.fields == nil {
		return fmt.Errorf("WriteGridfile: %w", ErrNoGeometry)
	}
	topo, err := b.Topology()
	if err != nil {
		return fmt.Errorf("WriteGridfile: %w", err)
	}
	inputs, err := b.Options.YAML()
	if err != nil {
		return fmt.Errorf("WriteGridfile: %w", err)
	}

	w, err := gridfile.Create(ctx, path, opts...)
	if err != nil {
		return fmt.Errorf("WriteGridfile: %w", err)
	}
	defer func() {
		if err != nil {
			w.Abort()
		}
	}()

	ints := []struct {
		name string
		v    int
	}{
		{"nx", b.NX},
		{"ny", b.NYNoGuards},
		{"y_boundary_guards", b.Options.YBoundaryGuards},
		{"ixseps1", topo.IXSeps1},
		{"ixseps2", topo.IXSeps2},
		{"jyseps1_1", topo.JYSeps11},
		{"jyseps2_1", topo.JYSeps21},
		{"ny_inner", topo.NyInner},
		{"jyseps1_2", topo.JYSeps12},
		{"jyseps2_2", topo.JYSeps22},
	}
	for _, s := range ints {
		if err = w.WriteInt(ctx, s.name, s.v); err != nil {
			return fmt.Errorf("WriteGridfile: %w", err)
		}
	}
	strs := []struct{ name, v string }{
		{"curvature_type", b.Options.CurvatureType},
		{"parallel_transform", "shiftedmetric"},
		{InputsName, string(inputs)},
		{VersionName, gridfile.Version},
	}
	for _, s := range strs {
		if err = w.WriteString(ctx, s.name, s.v); err != nil {
			return fmt.Errorf("WriteGridfile: %w", err)
		}
	}
	if err = w.WriteReal(ctx, "Bt_axis", b.Equilibrium.BtAxis); err != nil {
		return fmt.Errorf("WriteGridfile: %w", err)
	}

	for _, f := range outputFields {
		if err = w.WriteField(ctx, f.name, b.assemble(f.get, Centre, b.NX, b.NY, 0, 0)); err != nil {
			return fmt.Errorf("WriteGridfile: %w", err)
		}
		if err = w.WriteField(ctx, f.name+"_ylow", b.assemble(f.get, YLow, b.NX, b.NY, 0, 0)); err != nil {
			return fmt.Errorf("WriteGridfile: %w", err)
		}
	}

	corners := []struct {
		suffix string
		di, dj int
	}{
		{"_corners", 0, 0},
		{"_lower_right_corners", 1, 0},
		{"_upper_left_corners", 0, 1},
		{"_upper_right_corners", 1, 1},
	}
	for _, f := range outputFields[:2] {
		for _, c := range corners {
			m := b.assemble(f.get, Corners, b.NX, b.NY, c.di, c.dj)
			if err = w.WriteField(ctx, f.name+c.suffix, m); err != nil {
				return fmt.Errorf("WriteGridfile: %w", err)
			}
		}
	}

	for _, in := range b.Equilibrium.Inputs {
		if err = w.EmbedInput(ctx, in.Name, in.Content); err != nil {
			return fmt.Errorf("WriteGridfile: %w", err)
		}
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("WriteGridfile: %w", err)
	}
	b.logger.Info("grid file written", zap.String("path", path), zap.String("grid_id", w.ID()),
		zap.Int("nx", b.NX), zap.Int("ny", b.NYNoGuards))

	return nil
}
