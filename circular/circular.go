package circular

import (
	"context"
	"fmt"

	"github.com/katalvlaran/fluxgrid/config"
	"github.com/katalvlaran/fluxgrid/equilibrium"
	"github.com/katalvlaran/fluxgrid/geometry"
	"go.uber.org/zap"
)

const wallVertices = 128

// Field is psi = B0 r^2/(2q) about (R0, 0).
type Field struct {
	R0, B0, Q float64
}

// Psi returns the flux at (R, Z).
func (f Field) Psi(R, Z float64) float64 {
	dR := R - f.R0

	return f.B0 * (dR*dR + Z*Z) / (2 * f.Q)
}

func (f Field) DPsiDR(R, Z float64) float64    { return f.B0 * (R - f.R0) / f.Q }
func (f Field) DPsiDZ(R, Z float64) float64    { return f.B0 * Z / f.Q }
func (f Field) D2PsiDR2(R, Z float64) float64  { return f.B0 / f.Q }
func (f Field) D2PsiDZ2(R, Z float64) float64  { return f.B0 / f.Q }
func (f Field) D2PsiDRDZ(R, Z float64) float64 { return 0 }

// PsiAt returns psi on the surface of minor radius r.
func (f Field) PsiAt(r float64) float64 { return f.B0 * r * r / (2 * f.Q) }

func wallRadius(o *config.Options) float64 {
	if o.RWall > 0 {
		return o.RWall
	}

	return 1.2 * o.ROuter
}

func checkRadii(o *config.Options) error {
	rw := wallRadius(o)
	switch {
	case !(o.RInner > 0) || !(o.ROuter > o.RInner):
		return fmt.Errorf("r_inner=%g r_outer=%g: %w", o.RInner, o.ROuter, ErrRadius)
	case !(rw > o.ROuter):
		return fmt.Errorf("r_wall=%g must exceed r_outer=%g: %w", rw, o.ROuter, ErrRadius)
	case !(o.R0 > 1.1*rw):
		return fmt.Errorf("R0=%g must exceed the box half-width %g: %w", o.R0, 1.1*rw, ErrRadius)
	case o.Q == 0:
		return fmt.Errorf("q must be non-zero: %w", config.ErrInvalidOption)
	}

	return nil
}

// New returns the circular equilibrium with its core region added.
func New(ctx context.Context, opts *config.Options, logger *zap.Logger) (*equilibrium.Equilibrium, error) {
	if opts == nil {
		opts = config.Default()
	}
	if err := checkRadii(opts); err != nil {
		return nil, fmt.Errorf("New: %w", err)
	}
	exact := Field{R0: opts.R0, B0: opts.B0, Q: opts.Q}
	eq := equilibrium.New(exact, opts, logger)
	rw := wallRadius(opts)
	half := 1.1 * rw
	eq.RMin, eq.RMax = opts.R0-half, opts.R0+half
	eq.ZMin, eq.ZMax = -half, half

	eq.Axis = geometry.Point{R: opts.R0, Z: 0}
	eq.PsiAxis = eq.Psi(eq.Axis)
	fpol := opts.B0 * opts.R0
	eq.Fpol = func(float64) float64 { return fpol }
	eq.FpolPrime = func(float64) float64 { return 0 }
	eq.BtAxis = fpol / opts.R0

	wall, err := geometry.Circle(eq.Axis, rw, wallVertices)
	if err != nil {
		return nil, fmt.Errorf("New: %w", err)
	}
	eq.Wall = wall

	psiRef := exact.PsiAt(opts.ROuter)
	psi := equilibrium.Make1DGrid(opts.Nx,
		equilibrium.PolynomialGridFunc(opts.Nx, exact.PsiAt(opts.RInner), psiRef, nil, nil))
	start := geometry.Point{R: opts.R0 + opts.ROuter, Z: 0}
	eq.Logger.Info("building circular grid",
		zap.Float64("r_inner", opts.RInner), zap.Float64("r_outer", opts.ROuter),
		zap.Int("nx", opts.Nx), zap.Int("ny", opts.Ny))
	err = equilibrium.BuildCoreOnly(ctx, eq, psiRef, start, equilibrium.CoreOnlyParams{Ny: opts.Ny, Psi: psi})
	if err != nil {
		return nil, fmt.Errorf("New: %w", err)
	}

	return eq, nil
}
