package torpex

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/fluxgrid/config"
	"github.com/katalvlaran/fluxgrid/equilibrium"
	"github.com/katalvlaran/fluxgrid/geometry"
	"github.com/katalvlaran/fluxgrid/matrix"
	"go.uber.org/zap"
)

const (
	wallVertices = 128
	// the sampled box extends this far past the vessel, as a multiple of
	// its radius
	boxFactor = 1.25
)

// Psi returns the total flux of the coils and the vertical field Bz0.
func Psi(opts *config.Options, R, Z float64) float64 {
	psi := -0.5 * opts.Bz0 * R * R
	for _, c := range opts.Coils {
		psi += CoilPsi(R, Z, c.R, c.Z, c.I)
	}

	return psi
}

// Sample evaluates Psi on the GridNR x GridNZ grid covering the vessel and
// returns it as an interpolated Field.
func Sample(opts *config.Options) (*equilibrium.GridField, error) {
	h := boxFactor * opts.VesselRadius
	rmin, rmax := opts.TorpexR0-h, opts.TorpexR0+h
	if !(rmin > 0) {
		return nil, fmt.Errorf("Sample: box reaches R=%g: %w", rmin, config.ErrInvalidOption)
	}
	for _, c := range opts.Coils {
		if !(c.R > 0) || (c.R >= rmin && c.R <= rmax && math.Abs(c.Z) <= h) {
			return nil, fmt.Errorf("Sample: coil at (%g, %g): %w", c.R, c.Z, ErrCoil)
		}
	}

	R := linspace(rmin, rmax, opts.GridNR)
	Z := linspace(-h, h, opts.GridNZ)
	psi, err := matrix.NewDense(len(R), len(Z))
	if err != nil {
		return nil, fmt.Errorf("Sample: %w", err)
	}
	for i, r := range R {
		row := psi.Row(i)
		for j, z := range Z {
			row[j] = Psi(opts, r, z)
		}
	}
	f, err := equilibrium.NewGridField(R, Z, psi)
	if err != nil {
		return nil, fmt.Errorf("Sample: %w", err)
	}

	return f, nil
}

func linspace(a, b float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = a + (b-a)*float64(i)/float64(n-1)
	}

	return out
}

// New builds the TORPEX equilibrium and adds its four regions.
func New(ctx context.Context, opts *config.Options, logger *zap.Logger) (*equilibrium.Equilibrium, error) {
	if opts == nil {
		opts = config.Default()
	}
	if opts.GridNR < 4 || opts.GridNZ < 4 || !(opts.VesselRadius > 0) {
		return nil, fmt.Errorf("New: grid %dx%d, vessel radius %g: %w",
			opts.GridNR, opts.GridNZ, opts.VesselRadius, config.ErrInvalidOption)
	}
	field, err := Sample(opts)
	if err != nil {
		return nil, fmt.Errorf("New: %w", err)
	}
	eq := equilibrium.New(field, opts, logger)
	eq.RMin, eq.RMax, eq.ZMin, eq.ZMax = field.Bounds()

	centre := geometry.Point{R: opts.TorpexR0, Z: 0}
	eq.Axis = centre
	eq.PsiAxis = eq.Psi(centre)
	fpol := opts.BtAxis * opts.TorpexR0
	eq.Fpol = func(float64) float64 { return fpol }
	eq.FpolPrime = func(float64) float64 { return 0 }
	eq.BtAxis = opts.BtAxis
	if eq.Wall, err = geometry.Circle(centre, opts.VesselRadius, wallVertices); err != nil {
		return nil, fmt.Errorf("New: %w", err)
	}

	x, err := findXPoint(eq, opts.GridNR, opts.GridNZ)
	if err != nil {
		return nil, fmt.Errorf("New: %w", err)
	}
	eq.XPoints = []geometry.Point{x}
	psiX := eq.Psi(x)
	eq.PsiSep = []float64{psiX}
	eq.Logger.Info("X-point", zap.Stringer("position", x), zap.Float64("psi", psiX))

	p, err := fourLegParams(eq, x, psiX)
	if err != nil {
		return nil, fmt.Errorf("New: %w", err)
	}
	if err := equilibrium.BuildFourLeg(ctx, eq, x, p); err != nil {
		return nil, fmt.Errorf("New: %w", err)
	}

	return eq, nil
}

// findXPoint returns the saddle nearest the vessel centre.
func findXPoint(eq *equilibrium.Equilibrium, nR, nZ int) (geometry.Point, error) {
	_, xs, err := eq.FindCriticalPoints(nR, nZ)
	if err != nil {
		return geometry.Point{}, err
	}
	for _, x := range xs {
		if eq.Wall.Contains(x) {
			return x, nil
		}
	}

	return geometry.Point{}, ErrNoXPoint
}

// fourLegParams sets each private flux boundary at psi_pf_fraction, and
// each outer boundary at psi_sol_fraction, of the largest departure of psi
// from psi_X on the wall in that quadrant.
func fourLegParams(eq *equilibrium.Equilibrium, x geometry.Point, psiX float64) (equilibrium.FourLegParams, error) {
	legs, err := eq.XPointLegs(x)
	if err != nil {
		return equilibrium.FourLegParams{}, err
	}
	// sign of psi - psi_X in the private flux quadrants
	sign := -1.0
	if math.Abs(legs.Positive.Z) > math.Abs(legs.Negative.Z) {
		sign = 1
	}
	var lowerPF, upperPF, innerSOL, outerSOL float64
	for _, w := range eq.Wall.Vertices() {
		d := sign * (eq.Psi(w) - psiX)
		switch {
		case d > 0 && w.Z < x.Z:
			lowerPF = max(lowerPF, d)
		case d > 0:
			upperPF = max(upperPF, d)
		case w.R < x.R:
			innerSOL = max(innerSOL, -d)
		default:
			outerSOL = max(outerSOL, -d)
		}
	}
	if lowerPF == 0 || upperPF == 0 || innerSOL == 0 || outerSOL == 0 {
		return equilibrium.FourLegParams{}, fmt.Errorf("psi on the wall does not change sign in every quadrant: %w", equilibrium.ErrTopology)
	}
	o := eq.Options
	pf := func(m float64) []float64 {
		return equilibrium.Make1DGrid(o.NxCore,
			equilibrium.PolynomialGridFunc(o.NxCore, psiX+sign*o.PsiPFFraction*m, psiX, nil, nil))
	}
	sol := func(m float64) []float64 {
		return equilibrium.Make1DGrid(o.NxSOL,
			equilibrium.PolynomialGridFunc(o.NxSOL, psiX, psiX-sign*o.PsiSOLFraction*m, nil, nil))
	}

	return equilibrium.FourLegParams{
		NyInnerLower: o.NyInnerDivertor,
		NyOuterLower: o.NyOuterDivertor,
		NyInnerUpper: o.NyInnerDivertor,
		NyOuterUpper: o.NyOuterDivertor,
		PsiLowerPF:   pf(lowerPF),
		PsiUpperPF:   pf(upperPF),
		PsiInnerSOL:  sol(innerSOL),
		PsiOuterSOL:  sol(outerSOL),
	}, nil
}
