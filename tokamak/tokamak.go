package tokamak

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/fluxgrid/config"
	"github.com/katalvlaran/fluxgrid/equilibrium"
	"github.com/katalvlaran/fluxgrid/geometry"
	"github.com/katalvlaran/fluxgrid/geqdsk"
	"github.com/katalvlaran/fluxgrid/interp"
	"go.uber.org/zap"
)

// InputName is the name under which the G-EQDSK text is embedded.
const InputName = "geqdsk"

// FromGeqdsk builds the equilibrium described by f and adds its regions.
// raw is the file text, recorded for embedding in the grid file.
func FromGeqdsk(ctx context.Context, f *geqdsk.File, raw []byte, opts *config.Options, logger *zap.Logger) (*equilibrium.Equilibrium, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts == nil {
		opts = config.Default()
	}
	R, Z := f.RGrid(), f.ZGrid()
	field, err := equilibrium.NewGridField(R, Z, f.Psi)
	if err != nil {
		return nil, fmt.Errorf("FromGeqdsk: %w", err)
	}
	eq := equilibrium.New(field, opts, logger)
	eq.RMin, eq.RMax = R[0], R[len(R)-1]
	eq.ZMin, eq.ZMax = Z[0], Z[len(Z)-1]
	if raw != nil {
		eq.Inputs = append(eq.Inputs, equilibrium.Input{Name: InputName, Content: raw})
	}

	if eq.Fpol, eq.FpolPrime, err = fpolFunctions(f); err != nil {
		return nil, fmt.Errorf("FromGeqdsk: %w", err)
	}
	if eq.Wall, err = wallFrom(f, opts); err != nil {
		return nil, fmt.Errorf("FromGeqdsk: %w", err)
	}

	eq.Axis, err = eq.NewtonCriticalPoint(geometry.Point{R: f.RMagx, Z: f.ZMagx})
	if err != nil {
		return nil, fmt.Errorf("FromGeqdsk: magnetic axis: %w", err)
	}
	eq.PsiAxis = eq.Psi(eq.Axis)
	eq.BtAxis = eq.Fpol(eq.PsiAxis) / eq.Axis.R
	logger.Info("magnetic axis",
		zap.Float64("R", eq.Axis.R), zap.Float64("Z", eq.Axis.Z), zap.Float64("psi", eq.PsiAxis))

	if err := findXPoints(eq, len(R), len(Z)); err != nil {
		return nil, fmt.Errorf("FromGeqdsk: %w", err)
	}
	psiSep := f.SiBdry
	if len(eq.PsiSep) > 0 {
		psiSep = eq.PsiSep[0]
	}
	psiN := func(pn float64) float64 { return eq.PsiAxis + pn*(psiSep-eq.PsiAxis) }

	if len(eq.XPoints) == 0 || opts.PsinormSOL <= 1 {
		if err := coreOnly(ctx, eq, psiN); err != nil {
			return nil, fmt.Errorf("FromGeqdsk: %w", err)
		}
		return eq, nil
	}

	if len(eq.XPoints) > 1 {
		pn := (eq.PsiSep[1] - eq.PsiAxis) / (psiSep - eq.PsiAxis)
		if pn > opts.PsinormCore && pn < opts.PsinormSOL {
			logger.Warn("second X-point inside the grid is ignored",
				zap.Stringer("xpoint", eq.XPoints[1]), zap.Float64("psinorm", pn))
		}
	}
	if eq.Wall == nil {
		return nil, fmt.Errorf("FromGeqdsk: %w", ErrNoWall)
	}
	if err := singleNull(ctx, eq, psiN); err != nil {
		return nil, fmt.Errorf("FromGeqdsk: %w", err)
	}

	return eq, nil
}

// fpolFunctions returns fpol(psi) and its derivative. Outside the profile
// fpol keeps its boundary value.
func fpolFunctions(f *geqdsk.File) (func(float64) float64, func(float64) float64, error) {
	psi := f.PsiGrid()
	fpol := append([]float64(nil), f.Fpol...)
	if psi[0] > psi[len(psi)-1] {
		for i, j := 0, len(psi)-1; i < j; i, j = i+1, j-1 {
			psi[i], psi[j] = psi[j], psi[i]
			fpol[i], fpol[j] = fpol[j], fpol[i]
		}
	}
	s, err := interp.NewSpline(psi, fpol)
	if err != nil {
		return nil, nil, fmt.Errorf("fpol: %w", err)
	}
	lo, hi := psi[0], psi[len(psi)-1]
	value := func(p float64) float64 { return s.Eval(math.Min(math.Max(p, lo), hi)) }
	deriv := func(p float64) float64 {
		if p < lo || p > hi {
			return 0
		}
		return s.Deriv(p)
	}

	return value, deriv, nil
}

func wallFrom(f *geqdsk.File, opts *config.Options) (*geometry.Wall, error) {
	var pts []geometry.Point
	if len(opts.Wall) > 0 {
		for _, p := range opts.Wall {
			if len(p) != 2 {
				return nil, fmt.Errorf("wall point %v: %w", p, config.ErrInvalidOption)
			}
			pts = append(pts, geometry.Point{R: p[0], Z: p[1]})
		}
	} else {
		for i := range f.RLimiter {
			pts = append(pts, geometry.Point{R: f.RLimiter[i], Z: f.ZLimiter[i]})
		}
	}
	if len(pts) == 0 {
		return nil, nil
	}
	w, err := geometry.NewWall(pts)
	if err != nil {
		return nil, fmt.Errorf("wall: %w", err)
	}

	return w, nil
}

// findXPoints sets eq.XPoints and eq.PsiSep from the saddles of psi inside
// the wall, ordered by |psi - psi_axis|.
func findXPoints(eq *equilibrium.Equilibrium, nR, nZ int) error {
	_, xs, err := eq.FindCriticalPoints(nR, nZ)
	if err != nil {
		return err
	}
	h := 2 * (eq.RMax - eq.RMin) / float64(nR-1)
	var kept []geometry.Point
	for _, x := range xs {
		if eq.Wall != nil && !eq.Wall.Contains(x) {
			continue
		}
		p1 := geometry.Point{R: x.R - h, Z: x.Z - h}
		p2 := geometry.Point{R: x.R - h, Z: x.Z + h}
		if polished, err := eq.FindSaddlePoint(p1, p2, 1e-6*eq.BoxSize()); err == nil {
			if newton, err := eq.NewtonCriticalPoint(polished); err == nil {
				polished = newton
			}
			x = polished
		} else {
			eq.Logger.Debug("saddle search failed, keeping Newton estimate",
				zap.Stringer("xpoint", x), zap.Error(err))
		}
		kept = append(kept, x)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return math.Abs(eq.Psi(kept[i])-eq.PsiAxis) < math.Abs(eq.Psi(kept[j])-eq.PsiAxis)
	})
	eq.XPoints = kept
	eq.PsiSep = make([]float64, len(kept))
	for i, x := range kept {
		eq.PsiSep[i] = eq.Psi(x)
		eq.Logger.Info("X-point", zap.Int("index", i), zap.Stringer("position", x), zap.Float64("psi", eq.PsiSep[i]))
	}

	return nil
}

// outboardPoint finds where psi = psival on the ray from the axis towards
// larger R.
func outboardPoint(eq *equilibrium.Equilibrium, psival float64) (geometry.Point, error) {
	length := eq.RMax - eq.Axis.R
	f := func(r float64) float64 { return eq.Psi(geometry.Point{R: eq.Axis.R + r, Z: eq.Axis.Z}) - psival }
	roots, err := eq.FindRoots1D(f, 1, 1e-3*length, (1-1e-3)*length, eq.Options.RefineAtol*length)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("psi=%g: %w: %w", psival, ErrNoSurface, err)
	}

	return geometry.Point{R: eq.Axis.R + roots[0], Z: eq.Axis.Z}, nil
}

func coreOnly(ctx context.Context, eq *equilibrium.Equilibrium, psiN func(float64) float64) error {
	o := eq.Options
	psiRef := psiN(o.PsinormSOL)
	start, err := outboardPoint(eq, psiRef)
	if err != nil {
		return err
	}
	psi := equilibrium.Make1DGrid(o.NxCore,
		equilibrium.PolynomialGridFunc(o.NxCore, psiN(o.PsinormCore), psiRef, nil, nil))
	eq.Logger.Info("building core-only grid", zap.Float64("psi_ref", psiRef), zap.Int("nx", o.NxCore))

	return equilibrium.BuildCoreOnly(ctx, eq, psiRef, start, equilibrium.CoreOnlyParams{Ny: o.NyCore, Psi: psi})
}

func singleNull(ctx context.Context, eq *equilibrium.Equilibrium, psiN func(float64) float64) error {
	o := eq.Options
	psiSep := eq.PsiSep[0]
	psiCore, psiSOL, psiPF := psiN(o.PsinormCore), psiN(o.PsinormSOL), psiN(o.PsinormPFValue())
	grad := (psiSep - psiCore) / float64(o.NxCore)

	p := equilibrium.SingleNullParams{
		NyInner: o.NyInnerDivertor,
		NyCore:  o.NyCore,
		NyOuter: o.NyOuterDivertor,
		PsiCore: equilibrium.Make1DGrid(o.NxCore,
			equilibrium.PolynomialGridFunc(o.NxCore, psiCore, psiSep, nil, nil)),
		PsiSOL: equilibrium.Make1DGrid(o.NxSOL,
			equilibrium.PolynomialGridFunc(o.NxSOL, psiSep, psiSOL, &grad, nil)),
		PsiPF: equilibrium.Make1DGrid(o.NxCore,
			equilibrium.PolynomialGridFunc(o.NxCore, psiPF, psiSep, nil, &grad)),
	}
	eq.Logger.Info("building single-null grid",
		zap.Stringer("xpoint", eq.XPoints[0]), zap.Float64("psi_sep", psiSep))

	return equilibrium.BuildSingleNull(ctx, eq, eq.XPoints[0], p)
}
