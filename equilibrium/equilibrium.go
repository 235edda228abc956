package equilibrium

import (
	"fmt"

	"github.com/katalvlaran/fluxgrid/config"
	"github.com/katalvlaran/fluxgrid/geometry"
	"github.com/katalvlaran/fluxgrid/matrix"
	"go.uber.org/zap"
)

// Input is an input file recorded for embedding in the grid output.
type Input struct {
	Name    string
	Content []byte
}

// Equilibrium is a flux function with the derived quantities needed to
// build a grid: critical points, the poloidal current function, the wall and
// the ordered Regions.
type Equilibrium struct {
	Field Field

	// Fpol is the poloidal current function, B_toroidal = Fpol(psi)/R.
	Fpol      func(psi float64) float64
	FpolPrime func(psi float64) float64

	// XPoints are ordered from the primary X-point outward; PsiSep holds the
	// separatrix psi for each.
	XPoints []geometry.Point
	PsiSep  []float64

	PsiAxis float64
	Axis    geometry.Point

	RMin, RMax, ZMin, ZMax float64

	// Wall is nil when the equilibrium has no wall.
	Wall *geometry.Wall

	BtAxis float64

	Options *config.Options
	Inputs  []Input
	Logger  *zap.Logger

	regions []*Region
	index   map[string]int
}

// New returns an Equilibrium over field with no regions. A nil logger is
// replaced by a no-op logger; nil options by config.Default().
func New(field Field, opts *config.Options, logger *zap.Logger) *Equilibrium {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts == nil {
		opts = config.Default()
	}

	return &Equilibrium{
		Field:     field,
		Fpol:      func(float64) float64 { return 0 },
		FpolPrime: func(float64) float64 { return 0 },
		Options:   opts,
		Logger:    logger,
		index:     make(map[string]int),
	}
}

// Psi evaluates the flux function at p.
func (e *Equilibrium) Psi(p geometry.Point) float64 { return e.Field.Psi(p.R, p.Z) }

// GradPsi returns (dpsi/dR, dpsi/dZ) at p.
func (e *Equilibrium) GradPsi(p geometry.Point) geometry.Point {
	return geometry.Point{R: e.Field.DPsiDR(p.R, p.Z), Z: e.Field.DPsiDZ(p.R, p.Z)}
}

// FR is the R component of grad(psi)/|grad(psi)|^2, i.e. dR/dpsi along a
// line perpendicular to flux surfaces.
func (e *Equilibrium) FR(R, Z float64) float64 {
	dR, dZ := e.Field.DPsiDR(R, Z), e.Field.DPsiDZ(R, Z)

	return dR / (dR*dR + dZ*dZ)
}

// FZ is the Z component of grad(psi)/|grad(psi)|^2.
func (e *Equilibrium) FZ(R, Z float64) float64 {
	dR, dZ := e.Field.DPsiDR(R, Z), e.Field.DPsiDZ(R, Z)

	return dZ / (dR*dR + dZ*dZ)
}

// BpR is the R component of the poloidal magnetic field.
func (e *Equilibrium) BpR(R, Z float64) float64 { return e.Field.DPsiDZ(R, Z) / R }

// BpZ is the Z component of the poloidal magnetic field.
func (e *Equilibrium) BpZ(R, Z float64) float64 { return -e.Field.DPsiDR(R, Z) / R }

// Hessian returns the 2x2 matrix of second derivatives of psi at p.
func (e *Equilibrium) Hessian(p geometry.Point) *matrix.Dense {
	rz := e.Field.D2PsiDRDZ(p.R, p.Z)
	h, _ := matrix.NewDenseFrom([][]float64{
		{e.Field.D2PsiDR2(p.R, p.Z), rz},
		{rz, e.Field.D2PsiDZ2(p.R, p.Z)},
	})

	return h
}

// InBox reports whether p lies inside the bounding box.
func (e *Equilibrium) InBox(p geometry.Point) bool {
	return p.R >= e.RMin && p.R <= e.RMax && p.Z >= e.ZMin && p.Z <= e.ZMax
}

// BoxSize returns the larger side of the bounding box.
func (e *Equilibrium) BoxSize() float64 {
	return max(e.RMax-e.RMin, e.ZMax-e.ZMin)
}

func (e *Equilibrium) xpointOffset() float64 {
	return e.Options.XPointOffset * e.BoxSize()
}

// NewContour returns a contour at psival through points. The points are
// not refined.
func (e *Equilibrium) NewContour(points []geometry.Point, psival float64) *Contour {
	return NewContour(points, e.Field.Psi, psival, e.Options, e.Logger)
}

// Regions returns the regions in insertion order.
func (e *Equilibrium) Regions() []*Region { return append([]*Region(nil), e.regions...) }

// Region returns the named region.
func (e *Equilibrium) Region(name string) (*Region, error) {
	i, ok := e.index[name]
	if !ok {
		return nil, fmt.Errorf("Region %q: %w", name, ErrUnknownRegion)
	}

	return e.regions[i], nil
}

// AddRegion appends r to the ordered region set.
func (e *Equilibrium) AddRegion(r *Region) error {
	if _, ok := e.index[r.Name]; ok {
		return fmt.Errorf("AddRegion %q: %w", r.Name, ErrDuplicateRegion)
	}
	e.index[r.Name] = len(e.regions)
	e.regions = append(e.regions, r)

	return nil
}

// MakeConnection links the upper edge of segment lowerSeg of lowerRegion to
// the lower edge of segment upperSeg of upperRegion.
func (e *Equilibrium) MakeConnection(lowerRegion string, lowerSeg int, upperRegion string, upperSeg int) error {
	l, err := e.Region(lowerRegion)
	if err != nil {
		return fmt.Errorf("MakeConnection: %w", err)
	}
	u, err := e.Region(upperRegion)
	if err != nil {
		return fmt.Errorf("MakeConnection: %w", err)
	}
	if lowerSeg < 0 || lowerSeg >= l.NSegments || upperSeg < 0 || upperSeg >= u.NSegments {
		return fmt.Errorf("MakeConnection %s(%d)->%s(%d): segment out of range: %w",
			lowerRegion, lowerSeg, upperRegion, upperSeg, ErrConnection)
	}
	if l.Connections[lowerSeg].Upper != nil {
		return fmt.Errorf("MakeConnection: upper edge of %s(%d) already connected: %w", lowerRegion, lowerSeg, ErrConnection)
	}
	if u.Connections[upperSeg].Lower != nil {
		return fmt.Errorf("MakeConnection: lower edge of %s(%d) already connected: %w", upperRegion, upperSeg, ErrConnection)
	}
	if l.Nx[lowerSeg] != u.Nx[upperSeg] {
		return fmt.Errorf("MakeConnection: nx %d != %d: %w", l.Nx[lowerSeg], u.Nx[upperSeg], ErrConnection)
	}

	l.Connections[lowerSeg].Upper = &Connection{Region: upperRegion, Segment: upperSeg}
	u.Connections[upperSeg].Lower = &Connection{Region: lowerRegion, Segment: lowerSeg}

	return nil
}

// WallVector returns the vector along the wall segment containing s.
func (e *Equilibrium) WallVector(s float64) (geometry.Point, error) {
	if e.Wall == nil {
		return geometry.Point{}, fmt.Errorf("WallVector: %w", ErrTopology)
	}

	return e.Wall.Vector(s)
}

// wallSurface returns the direction of the wall where a contour ends at p,
// or nil without a wall.
func (e *Equilibrium) wallSurface(p geometry.Point) (*geometry.Point, error) {
	if e.Wall == nil {
		return nil, nil
	}
	v, err := e.WallVector(e.Wall.Locate(p))
	if err != nil {
		return nil, err
	}

	return &v, nil
}

// WallIntersection returns where p1->p2 crosses the wall, if it does.
func (e *Equilibrium) WallIntersection(p1, p2 geometry.Point) (geometry.Point, bool, error) {
	if e.Wall == nil {
		return geometry.Point{}, false, nil
	}

	return e.Wall.Intersection(p1, p2)
}

// SaveOptions writes the options, including values derived for this
// equilibrium, to w and closes it.
func (e *Equilibrium) SaveOptions(w *config.OptionsFile) error {
	if err := w.Write(e.Options); err != nil {
		return fmt.Errorf("SaveOptions: %w", err)
	}

	return nil
}
