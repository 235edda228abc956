package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Curvature and spacing choices.
const (
	CurvatureCurlBOverB = "curl(b/B)"
	CurvatureBxKappa    = "bxkappa"

	SpacingSqrt      = "sqrt"
	SpacingMonotonic = "monotonic"
	SpacingUniform   = "uniform"
)

// Nonorthogonal spacing choices. Each names how points are placed along a
// contour once its ends have been fixed on the wall or the X-point lines.
const (
	NonorthOrthogonal                 = "orthogonal"
	NonorthFixedPoloidal              = "fixed_poloidal"
	NonorthPoloidalOrthogonalCombined = "poloidal_orthogonal_combined"
	NonorthFixedPerpLower             = "fixed_perp_lower"
	NonorthFixedPerpUpper             = "fixed_perp_upper"
	NonorthPerpOrthogonalCombined     = "perp_orthogonal_combined"
	NonorthCombined                   = "combined"
)

var nonorthMethodNames = map[string]bool{
	NonorthOrthogonal:                 true,
	NonorthFixedPoloidal:              true,
	NonorthPoloidalOrthogonalCombined: true,
	NonorthFixedPerpLower:             true,
	NonorthFixedPerpUpper:             true,
	NonorthPerpOrthogonalCombined:     true,
	NonorthCombined:                   true,
}

// DefaultOptionsFile is the name written by Save when no path is given.
const DefaultOptionsFile = "fluxgrid_options.yaml"

var refineMethodNames = map[string]bool{
	"newton":           true,
	"line":             true,
	"integrate":        true,
	"integrate+newton": true,
	"none":             true,
}

// Coil is a circular current loop centred on the axis of symmetry.
type Coil struct {
	R float64 `yaml:"R"`
	Z float64 `yaml:"Z"`
	I float64 `yaml:"I"`
}

// Options is the full set of user settings.
//
// Pointer fields are optional: nil means "unset" and the consumer derives a
// value (for example N_norm defaults to the total poloidal cell count).
type Options struct {
	// General.
	Orthogonal      bool    `yaml:"orthogonal"`
	YBoundaryGuards int     `yaml:"y_boundary_guards"`
	ShiftedMetric   bool    `yaml:"shiftedmetric"`
	CurvatureType   string  `yaml:"curvature_type"`
	GeometryRtol    float64 `yaml:"geometry_rtol"`
	GridFile        string  `yaml:"grid_file"`
	NumWorkers      int     `yaml:"num_workers"`

	// Refinement and fine contours.
	RefineWidth       float64 `yaml:"refine_width"`
	RefineAtol        float64 `yaml:"refine_atol"`
	RefineMethods     string  `yaml:"refine_methods"`
	FinecontourNfine  int     `yaml:"finecontour_Nfine"`
	FinecontourAtol   float64 `yaml:"finecontour_atol"`
	FinecontourMaxits int     `yaml:"finecontour_maxits"`

	// Perpendicular following.
	FollowPerpendicularRtol float64 `yaml:"follow_perpendicular_rtol"`
	FollowPerpendicularAtol float64 `yaml:"follow_perpendicular_atol"`

	// Poloidal spacing.
	PoloidalSpacingMethod       string   `yaml:"poloidal_spacing_method"`
	XPointPoloidalSpacingLength float64  `yaml:"xpoint_poloidal_spacing_length"`
	TargetPoloidalSpacingLength *float64 `yaml:"target_poloidal_spacing_length,omitempty"`
	NNorm                       *float64 `yaml:"N_norm,omitempty"`
	SfuncChecktol               float64  `yaml:"sfunc_checktol"`

	// Nonorthogonal grids. The ranges set how far from each end, in
	// normalised index, the fixed spacing gives way to the orthogonal one;
	// nil ranges use the matching spacing length.
	NonorthSpacingMethod           string   `yaml:"nonorthogonal_spacing_method"`
	NonorthXPointSpacingLength     float64  `yaml:"nonorthogonal_xpoint_poloidal_spacing_length"`
	NonorthXPointSpacingRange      *float64 `yaml:"nonorthogonal_xpoint_poloidal_spacing_range,omitempty"`
	NonorthXPointSpacingRangeInner *float64 `yaml:"nonorthogonal_xpoint_poloidal_spacing_range_inner,omitempty"`
	NonorthXPointSpacingRangeOuter *float64 `yaml:"nonorthogonal_xpoint_poloidal_spacing_range_outer,omitempty"`
	NonorthTargetSpacingLength     float64  `yaml:"nonorthogonal_target_poloidal_spacing_length"`
	NonorthTargetSpacingRange      *float64 `yaml:"nonorthogonal_target_poloidal_spacing_range,omitempty"`
	NonorthTargetSpacingRangeInner *float64 `yaml:"nonorthogonal_target_poloidal_spacing_range_inner,omitempty"`
	NonorthTargetSpacingRangeOuter *float64 `yaml:"nonorthogonal_target_poloidal_spacing_range_outer,omitempty"`
	NonorthRadialRangePower        float64  `yaml:"nonorthogonal_radial_range_power"`

	// Tracing.
	XPointOffset float64 `yaml:"xpoint_offset"`
	TraceStep    float64 `yaml:"trace_step"`

	// Tokamak.
	NxCore          int         `yaml:"nx_core"`
	NxSOL           int         `yaml:"nx_sol"`
	NyInnerDivertor int         `yaml:"ny_inner_divertor"`
	NyCore          int         `yaml:"ny_core"`
	NyOuterDivertor int         `yaml:"ny_outer_divertor"`
	PsinormCore     float64     `yaml:"psinorm_core"`
	PsinormSOL      float64     `yaml:"psinorm_sol"`
	PsinormPF       *float64    `yaml:"psinorm_pf,omitempty"`
	Wall            [][]float64 `yaml:"wall,omitempty"`

	// Circular.
	R0     float64 `yaml:"R0"`
	B0     float64 `yaml:"B0"`
	Q      float64 `yaml:"q"`
	RInner float64 `yaml:"r_inner"`
	ROuter float64 `yaml:"r_outer"`
	RWall  float64 `yaml:"r_wall"`
	Nx     int     `yaml:"nx"`
	Ny     int     `yaml:"ny"`

	// TORPEX.
	Coils          []Coil  `yaml:"coils,omitempty"`
	Bz0            float64 `yaml:"Bz0"`
	BtAxis         float64 `yaml:"Bt_axis"`
	TorpexR0       float64 `yaml:"torpex_R0"`
	VesselRadius   float64 `yaml:"vessel_radius"`
	PsiPFFraction  float64 `yaml:"psi_pf_fraction"`
	PsiSOLFraction float64 `yaml:"psi_sol_fraction"`
	GridNR         int     `yaml:"grid_nR"`
	GridNZ         int     `yaml:"grid_nZ"`
}

// Default returns the options used when nothing is configured.
func Default() *Options {
	return &Options{
		Orthogonal:      true,
		YBoundaryGuards: 0,
		ShiftedMetric:   true,
		CurvatureType:   CurvatureCurlBOverB,
		GeometryRtol:    1e-10,
		GridFile:        "bout.grd.db",
		NumWorkers:      runtime.NumCPU(),

		RefineWidth:       1e-5,
		RefineAtol:        2e-8,
		RefineMethods:     "line",
		FinecontourNfine:  100,
		FinecontourAtol:   1e-12,
		FinecontourMaxits: 200,

		FollowPerpendicularRtol: 2e-8,
		FollowPerpendicularAtol: 1e-8,

		PoloidalSpacingMethod:       SpacingSqrt,
		XPointPoloidalSpacingLength: 5e-2,
		SfuncChecktol:               1e-13,

		NonorthSpacingMethod:       NonorthCombined,
		NonorthXPointSpacingLength: 5e-2,
		NonorthTargetSpacingLength: 5e-2,
		NonorthRadialRangePower:    1,

		XPointOffset: 0.01,
		TraceStep:    0.005,

		NxCore:          5,
		NxSOL:           5,
		NyInnerDivertor: 4,
		NyCore:          16,
		NyOuterDivertor: 4,
		PsinormCore:     0.9,
		PsinormSOL:      1.1,

		R0:     1.0,
		B0:     1.0,
		Q:      3.0,
		RInner: 0.1,
		ROuter: 0.3,
		Nx:     8,
		Ny:     16,

		Coils: []Coil{
			{R: 1.0, Z: 0.3, I: 1000},
			{R: 1.0, Z: -0.3, I: 1000},
		},
		Bz0:            -4.5e-4,
		BtAxis:         0.1,
		TorpexR0:       1.0,
		VesselRadius:   0.2,
		PsiPFFraction:  0.2,
		PsiSOLFraction: 0.2,
		GridNR:         129,
		GridNZ:         129,
	}
}

// Clone returns a deep copy of o.
func (o *Options) Clone() *Options {
	c := *o
	for _, p := range []**float64{
		&c.TargetPoloidalSpacingLength, &c.NNorm, &c.PsinormPF,
		&c.NonorthXPointSpacingRange, &c.NonorthXPointSpacingRangeInner, &c.NonorthXPointSpacingRangeOuter,
		&c.NonorthTargetSpacingRange, &c.NonorthTargetSpacingRangeInner, &c.NonorthTargetSpacingRangeOuter,
	} {
		if *p != nil {
			v := **p
			*p = &v
		}
	}
	if o.Wall != nil {
		c.Wall = make([][]float64, len(o.Wall))
		for i, p := range o.Wall {
			c.Wall[i] = append([]float64(nil), p...)
		}
	}
	c.Coils = append([]Coil(nil), o.Coils...)

	return &c
}

// PsinormPFValue returns psinorm_pf, falling back to psinorm_core.
func (o *Options) PsinormPFValue() float64 {
	if o.PsinormPF != nil {
		return *o.PsinormPF
	}

	return o.PsinormCore
}

// NonorthXPointRanges returns the X-point spacing range at the separatrix
// and at the inner and outer radial boundaries. Unset boundary values take
// the separatrix value; all three are nil when no range is set.
func (o *Options) NonorthXPointRanges() (sep, inner, outer *float64) {
	return ranges(o.NonorthXPointSpacingRange, o.NonorthXPointSpacingRangeInner, o.NonorthXPointSpacingRangeOuter)
}

// NonorthTargetRanges is NonorthXPointRanges for wall ends.
func (o *Options) NonorthTargetRanges() (sep, inner, outer *float64) {
	return ranges(o.NonorthTargetSpacingRange, o.NonorthTargetSpacingRangeInner, o.NonorthTargetSpacingRangeOuter)
}

func ranges(sep, inner, outer *float64) (*float64, *float64, *float64) {
	if sep == nil {
		return nil, nil, nil
	}
	if inner == nil {
		inner = sep
	}
	if outer == nil {
		outer = sep
	}

	return sep, inner, outer
}

// RefineMethodList splits RefineMethods into trimmed method names.
func (o *Options) RefineMethodList() []string {
	parts := strings.Split(o.RefineMethods, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

func invalid(name string, format string, args ...any) error {
	return fmt.Errorf("%s: %s: %w", name, fmt.Sprintf(format, args...), ErrInvalidOption)
}

// Validate checks ranges, enumerations and consistency.
func (o *Options) Validate() error {
	if o.YBoundaryGuards < 0 {
		return invalid("y_boundary_guards", "must be >= 0, got %d", o.YBoundaryGuards)
	}
	if o.CurvatureType != CurvatureCurlBOverB && o.CurvatureType != CurvatureBxKappa {
		return invalid("curvature_type", "unrecognised %q", o.CurvatureType)
	}
	if o.NumWorkers < 1 {
		return invalid("num_workers", "must be >= 1, got %d", o.NumWorkers)
	}
	if o.GridFile == "" {
		return invalid("grid_file", "must not be empty")
	}

	positive := []struct {
		name string
		v    float64
	}{
		{"geometry_rtol", o.GeometryRtol},
		{"refine_width", o.RefineWidth},
		{"refine_atol", o.RefineAtol},
		{"finecontour_atol", o.FinecontourAtol},
		{"follow_perpendicular_rtol", o.FollowPerpendicularRtol},
		{"follow_perpendicular_atol", o.FollowPerpendicularAtol},
		{"xpoint_poloidal_spacing_length", o.XPointPoloidalSpacingLength},
		{"sfunc_checktol", o.SfuncChecktol},
		{"xpoint_offset", o.XPointOffset},
		{"trace_step", o.TraceStep},
		{"nonorthogonal_xpoint_poloidal_spacing_length", o.NonorthXPointSpacingLength},
		{"nonorthogonal_target_poloidal_spacing_length", o.NonorthTargetSpacingLength},
		{"nonorthogonal_radial_range_power", o.NonorthRadialRangePower},
	}
	for _, p := range positive {
		if !(p.v > 0) {
			return invalid(p.name, "must be > 0, got %g", p.v)
		}
	}
	if o.TargetPoloidalSpacingLength != nil && !(*o.TargetPoloidalSpacingLength > 0) {
		return invalid("target_poloidal_spacing_length", "must be > 0, got %g", *o.TargetPoloidalSpacingLength)
	}
	if o.NNorm != nil && !(*o.NNorm > 0) {
		return invalid("N_norm", "must be > 0, got %g", *o.NNorm)
	}
	optional := []struct {
		name string
		v    *float64
	}{
		{"nonorthogonal_xpoint_poloidal_spacing_range", o.NonorthXPointSpacingRange},
		{"nonorthogonal_xpoint_poloidal_spacing_range_inner", o.NonorthXPointSpacingRangeInner},
		{"nonorthogonal_xpoint_poloidal_spacing_range_outer", o.NonorthXPointSpacingRangeOuter},
		{"nonorthogonal_target_poloidal_spacing_range", o.NonorthTargetSpacingRange},
		{"nonorthogonal_target_poloidal_spacing_range_inner", o.NonorthTargetSpacingRangeInner},
		{"nonorthogonal_target_poloidal_spacing_range_outer", o.NonorthTargetSpacingRangeOuter},
	}
	for _, p := range optional {
		if p.v != nil && !(*p.v > 0) {
			return invalid(p.name, "must be > 0, got %g", *p.v)
		}
	}
	if !nonorthMethodNames[o.NonorthSpacingMethod] {
		return invalid("nonorthogonal_spacing_method", "unrecognised %q", o.NonorthSpacingMethod)
	}

	methods := o.RefineMethodList()
	if len(methods) == 0 {
		return invalid("refine_methods", "no methods given")
	}
	for _, m := range methods {
		if !refineMethodNames[m] {
			return invalid("refine_methods", "unrecognised method %q", m)
		}
	}
	if o.FinecontourNfine < 4 {
		return invalid("finecontour_Nfine", "must be >= 4, got %d", o.FinecontourNfine)
	}
	if o.FinecontourMaxits < 0 {
		return invalid("finecontour_maxits", "must be >= 0, got %d", o.FinecontourMaxits)
	}

	switch o.PoloidalSpacingMethod {
	case SpacingSqrt, SpacingMonotonic, SpacingUniform:
	default:
		return invalid("poloidal_spacing_method", "unrecognised %q", o.PoloidalSpacingMethod)
	}

	counts := []struct {
		name string
		v    int
	}{
		{"nx_core", o.NxCore},
		{"nx_sol", o.NxSOL},
		{"ny_inner_divertor", o.NyInnerDivertor},
		{"ny_core", o.NyCore},
		{"ny_outer_divertor", o.NyOuterDivertor},
		{"nx", o.Nx},
		{"ny", o.Ny},
		{"grid_nR", o.GridNR},
		{"grid_nZ", o.GridNZ},
	}
	for _, c := range counts {
		if c.v < 1 {
			return invalid(c.name, "must be >= 1, got %d", c.v)
		}
	}
	if o.GridNR < 4 || o.GridNZ < 4 {
		return invalid("grid_nR/grid_nZ", "need at least 4 points, got %dx%d", o.GridNR, o.GridNZ)
	}

	if o.PsinormCore >= 1 {
		return invalid("psinorm_core", "must be < 1, got %g", o.PsinormCore)
	}
	if o.PsinormPFValue() >= 1 {
		return invalid("psinorm_pf", "must be < 1, got %g", o.PsinormPFValue())
	}

	if len(o.Wall) > 0 {
		if len(o.Wall) < 3 {
			return invalid("wall", "need at least 3 vertices, got %d", len(o.Wall))
		}
		for i, p := range o.Wall {
			if len(p) != 2 {
				return invalid("wall", "vertex %d has %d components, want 2", i, len(p))
			}
		}
	}

	if !(o.R0 > 0) || o.B0 == 0 || o.Q == 0 {
		return invalid("R0/B0/q", "R0 must be > 0 and B0, q non-zero")
	}
	if !(o.RInner > 0) || !(o.ROuter > o.RInner) || !(o.ROuter < o.R0) {
		return invalid("r_inner/r_outer", "need 0 < r_inner < r_outer < R0, got %g, %g", o.RInner, o.ROuter)
	}
	if o.RWall != 0 && o.RWall <= o.ROuter {
		return invalid("r_wall", "must exceed r_outer, got %g", o.RWall)
	}

	for i, c := range o.Coils {
		if !(c.R > 0) {
			return invalid("coils", "coil %d has R=%g, must be > 0", i, c.R)
		}
	}
	if !(o.TorpexR0 > 0) || !(o.VesselRadius > 0) || o.VesselRadius >= o.TorpexR0 {
		return invalid("torpex_R0/vessel_radius", "need 0 < vessel_radius < torpex_R0")
	}
	if !(o.PsiPFFraction > 0) || !(o.PsiSOLFraction > 0) {
		return invalid("psi_pf_fraction/psi_sol_fraction", "must be > 0")
	}

	return nil
}
