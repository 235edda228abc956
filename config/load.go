package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"
)

// Load reads options from path. The format follows the extension: .yaml or
// .yml for YAML, .hcl for HCL. Unset options keep their defaults and the
// result is validated.
func Load(path string) (*Options, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}

	var opts *Options
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		opts, err = ParseYAML(src)
	case ".hcl":
		opts, err = ParseHCL(src, path)
	default:
		return nil, fmt.Errorf("Load %s: %w", path, ErrUnknownFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("Load %s: %w", path, err)
	}

	return opts, nil
}

// ParseYAML decodes YAML options over the defaults. Unknown keys are an
// error. An empty document yields the defaults.
func ParseYAML(src []byte) (*Options, error) {
	opts := Default()
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)
	if err := dec.Decode(opts); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("ParseYAML: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("ParseYAML: %w", err)
	}

	return opts, nil
}

type hclCoil struct {
	R float64 `hcl:"R"`
	Z float64 `hcl:"Z"`
	I float64 `hcl:"I"`
}

// hclOptions mirrors Options with optional attributes so that absent
// settings leave the defaults untouched.
type hclOptions struct {
	Orthogonal      *bool    `hcl:"orthogonal,optional"`
	YBoundaryGuards *int     `hcl:"y_boundary_guards,optional"`
	ShiftedMetric   *bool    `hcl:"shiftedmetric,optional"`
	CurvatureType   *string  `hcl:"curvature_type,optional"`
	GeometryRtol    *float64 `hcl:"geometry_rtol,optional"`
	GridFile        *string  `hcl:"grid_file,optional"`
	NumWorkers      *int     `hcl:"num_workers,optional"`

	RefineWidth       *float64 `hcl:"refine_width,optional"`
	RefineAtol        *float64 `hcl:"refine_atol,optional"`
	RefineMethods     *string  `hcl:"refine_methods,optional"`
	FinecontourNfine  *int     `hcl:"finecontour_Nfine,optional"`
	FinecontourAtol   *float64 `hcl:"finecontour_atol,optional"`
	FinecontourMaxits *int     `hcl:"finecontour_maxits,optional"`

	FollowPerpendicularRtol *float64 `hcl:"follow_perpendicular_rtol,optional"`
	FollowPerpendicularAtol *float64 `hcl:"follow_perpendicular_atol,optional"`

	PoloidalSpacingMethod       *string  `hcl:"poloidal_spacing_method,optional"`
	XPointPoloidalSpacingLength *float64 `hcl:"xpoint_poloidal_spacing_length,optional"`
	TargetPoloidalSpacingLength *float64 `hcl:"target_poloidal_spacing_length,optional"`
	NNorm                       *float64 `hcl:"N_norm,optional"`
	SfuncChecktol               *float64 `hcl:"sfunc_checktol,optional"`

	NonorthSpacingMethod           *string  `hcl:"nonorthogonal_spacing_method,optional"`
	NonorthXPointSpacingLength     *float64 `hcl:"nonorthogonal_xpoint_poloidal_spacing_length,optional"`
	NonorthXPointSpacingRange      *float64 `hcl:"nonorthogonal_xpoint_poloidal_spacing_range,optional"`
	NonorthXPointSpacingRangeInner *float64 `hcl:"nonorthogonal_xpoint_poloidal_spacing_range_inner,optional"`
	NonorthXPointSpacingRangeOuter *float64 `hcl:"nonorthogonal_xpoint_poloidal_spacing_range_outer,optional"`
	NonorthTargetSpacingLength     *float64 `hcl:"nonorthogonal_target_poloidal_spacing_length,optional"`
	NonorthTargetSpacingRange      *float64 `hcl:"nonorthogonal_target_poloidal_spacing_range,optional"`
	NonorthTargetSpacingRangeInner *float64 `hcl:"nonorthogonal_target_poloidal_spacing_range_inner,optional"`
	NonorthTargetSpacingRangeOuter *float64 `hcl:"nonorthogonal_target_poloidal_spacing_range_outer,optional"`
	NonorthRadialRangePower        *float64 `hcl:"nonorthogonal_radial_range_power,optional"`

	XPointOffset *float64 `hcl:"xpoint_offset,optional"`
	TraceStep    *float64 `hcl:"trace_step,optional"`

	NxCore          *int         `hcl:"nx_core,optional"`
	NxSOL           *int         `hcl:"nx_sol,optional"`
	NyInnerDivertor *int         `hcl:"ny_inner_divertor,optional"`
	NyCore          *int         `hcl:"ny_core,optional"`
	NyOuterDivertor *int         `hcl:"ny_outer_divertor,optional"`
	PsinormCore     *float64     `hcl:"psinorm_core,optional"`
	PsinormSOL      *float64     `hcl:"psinorm_sol,optional"`
	PsinormPF       *float64     `hcl:"psinorm_pf,optional"`
	Wall            *[][]float64 `hcl:"wall,optional"`

	R0     *float64 `hcl:"R0,optional"`
	B0     *float64 `hcl:"B0,optional"`
	Q      *float64 `hcl:"q,optional"`
	RInner *float64 `hcl:"r_inner,optional"`
	ROuter *float64 `hcl:"r_outer,optional"`
	RWall  *float64 `hcl:"r_wall,optional"`
	Nx     *int     `hcl:"nx,optional"`
	Ny     *int     `hcl:"ny,optional"`

	Coils          []hclCoil `hcl:"coil,block"`
	Bz0            *float64  `hcl:"Bz0,optional"`
	BtAxis         *float64  `hcl:"Bt_axis,optional"`
	TorpexR0       *float64  `hcl:"torpex_R0,optional"`
	VesselRadius   *float64  `hcl:"vessel_radius,optional"`
	PsiPFFraction  *float64  `hcl:"psi_pf_fraction,optional"`
	PsiSOLFraction *float64  `hcl:"psi_sol_fraction,optional"`
	GridNR         *int      `hcl:"grid_nR,optional"`
	GridNZ         *int      `hcl:"grid_nZ,optional"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (h *hclOptions) apply(o *Options) {
	set(&o.Orthogonal, h.Orthogonal)
	set(&o.YBoundaryGuards, h.YBoundaryGuards)
	set(&o.ShiftedMetric, h.ShiftedMetric)
	set(&o.CurvatureType, h.CurvatureType)
	set(&o.GeometryRtol, h.GeometryRtol)
	set(&o.GridFile, h.GridFile)
	set(&o.NumWorkers, h.NumWorkers)

	set(&o.RefineWidth, h.RefineWidth)
	set(&o.RefineAtol, h.RefineAtol)
	set(&o.RefineMethods, h.RefineMethods)
	set(&o.FinecontourNfine, h.FinecontourNfine)
	set(&o.FinecontourAtol, h.FinecontourAtol)
	set(&o.FinecontourMaxits, h.FinecontourMaxits)

	set(&o.FollowPerpendicularRtol, h.FollowPerpendicularRtol)
	set(&o.FollowPerpendicularAtol, h.FollowPerpendicularAtol)

	set(&o.PoloidalSpacingMethod, h.PoloidalSpacingMethod)
	set(&o.XPointPoloidalSpacingLength, h.XPointPoloidalSpacingLength)
	if h.TargetPoloidalSpacingLength != nil {
		o.TargetPoloidalSpacingLength = h.TargetPoloidalSpacingLength
	}
	if h.NNorm != nil {
		o.NNorm = h.NNorm
	}
	set(&o.SfuncChecktol, h.SfuncChecktol)

	set(&o.NonorthSpacingMethod, h.NonorthSpacingMethod)
	set(&o.NonorthXPointSpacingLength, h.NonorthXPointSpacingLength)
	set(&o.NonorthTargetSpacingLength, h.NonorthTargetSpacingLength)
	set(&o.NonorthRadialRangePower, h.NonorthRadialRangePower)
	for _, p := range []struct{ dst, src **float64 }{
		{&o.NonorthXPointSpacingRange, &h.NonorthXPointSpacingRange},
		{&o.NonorthXPointSpacingRangeInner, &h.NonorthXPointSpacingRangeInner},
		{&o.NonorthXPointSpacingRangeOuter, &h.NonorthXPointSpacingRangeOuter},
		{&o.NonorthTargetSpacingRange, &h.NonorthTargetSpacingRange},
		{&o.NonorthTargetSpacingRangeInner, &h.NonorthTargetSpacingRangeInner},
		{&o.NonorthTargetSpacingRangeOuter, &h.NonorthTargetSpacingRangeOuter},
	} {
		if *p.src != nil {
			*p.dst = *p.src
		}
	}

	set(&o.XPointOffset, h.XPointOffset)
	set(&o.TraceStep, h.TraceStep)

	set(&o.NxCore, h.NxCore)
	set(&o.NxSOL, h.NxSOL)
	set(&o.NyInnerDivertor, h.NyInnerDivertor)
	set(&o.NyCore, h.NyCore)
	set(&o.NyOuterDivertor, h.NyOuterDivertor)
	set(&o.PsinormCore, h.PsinormCore)
	set(&o.PsinormSOL, h.PsinormSOL)
	if h.PsinormPF != nil {
		o.PsinormPF = h.PsinormPF
	}
	set(&o.Wall, h.Wall)

	set(&o.R0, h.R0)
	set(&o.B0, h.B0)
	set(&o.Q, h.Q)
	set(&o.RInner, h.RInner)
	set(&o.ROuter, h.ROuter)
	set(&o.RWall, h.RWall)
	set(&o.Nx, h.Nx)
	set(&o.Ny, h.Ny)

	if len(h.Coils) > 0 {
		o.Coils = make([]Coil, len(h.Coils))
		for i, c := range h.Coils {
			o.Coils[i] = Coil(c)
		}
	}
	set(&o.Bz0, h.Bz0)
	set(&o.BtAxis, h.BtAxis)
	set(&o.TorpexR0, h.TorpexR0)
	set(&o.VesselRadius, h.VesselRadius)
	set(&o.PsiPFFraction, h.PsiPFFraction)
	set(&o.PsiSOLFraction, h.PsiSOLFraction)
	set(&o.GridNR, h.GridNR)
	set(&o.GridNZ, h.GridNZ)
}

// ParseHCL decodes HCL options over the defaults. filename is used in
// diagnostics only. Coils are given as repeated coil blocks.
func ParseHCL(src []byte, filename string) (*Options, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("ParseHCL: failed to parse %s: %w", filename, diags)
	}

	var h hclOptions
	diags = gohcl.DecodeBody(file.Body, nil, &h)
	if diags.HasErrors() {
		return nil, fmt.Errorf("ParseHCL: failed to decode %s: %w", filename, diags)
	}

	opts := Default()
	h.apply(opts)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("ParseHCL: %w", err)
	}

	return opts, nil
}
