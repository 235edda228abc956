package equilibrium

import (
	"fmt"

	"github.com/katalvlaran/fluxgrid/interp"
	"github.com/katalvlaran/fluxgrid/matrix"
)

// Field is the poloidal flux function psi(R,Z) with its derivatives.
// Implementations must be safe for concurrent use after construction.
type Field interface {
	Psi(R, Z float64) float64
	DPsiDR(R, Z float64) float64
	DPsiDZ(R, Z float64) float64
	D2PsiDR2(R, Z float64) float64
	D2PsiDZ2(R, Z float64) float64
	D2PsiDRDZ(R, Z float64) float64
}

// GridField is a Field interpolated from psi sampled on a regular grid.
type GridField struct {
	spline *interp.Bicubic
}

// NewGridField builds a bicubic Field from psi[i][j] = psi(R[i], Z[j]).
func NewGridField(R, Z []float64, psi *matrix.Dense) (*GridField, error) {
	b, err := interp.NewBicubic(R, Z, psi)
	if err != nil {
		return nil, fmt.Errorf("NewGridField: %w", err)
	}

	return &GridField{spline: b}, nil
}

func (g *GridField) Psi(R, Z float64) float64       { return g.spline.Value(R, Z) }
func (g *GridField) DPsiDR(R, Z float64) float64    { return g.spline.DX(R, Z) }
func (g *GridField) DPsiDZ(R, Z float64) float64    { return g.spline.DY(R, Z) }
func (g *GridField) D2PsiDR2(R, Z float64) float64  { return g.spline.DXX(R, Z) }
func (g *GridField) D2PsiDZ2(R, Z float64) float64  { return g.spline.DYY(R, Z) }
func (g *GridField) D2PsiDRDZ(R, Z float64) float64 { return g.spline.DXY(R, Z) }

// Bounds returns the sampled (R,Z) box.
func (g *GridField) Bounds() (rmin, rmax, zmin, zmax float64) { return g.spline.Bounds() }
