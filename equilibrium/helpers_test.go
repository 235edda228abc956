package equilibrium_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/fluxgrid/config"
	"github.com/katalvlaran/fluxgrid/equilibrium"
	"github.com/katalvlaran/fluxgrid/geometry"
)

// circleField has circular flux surfaces about (R0, 0): psi = r^2.
type circleField struct{ R0 float64 }

func (c circleField) Psi(R, Z float64) float64       { return (R-c.R0)*(R-c.R0) + Z*Z }
func (c circleField) DPsiDR(R, Z float64) float64    { return 2 * (R - c.R0) }
func (c circleField) DPsiDZ(R, Z float64) float64    { return 2 * Z }
func (c circleField) D2PsiDR2(R, Z float64) float64  { return 2 }
func (c circleField) D2PsiDZ2(R, Z float64) float64  { return 2 }
func (c circleField) D2PsiDRDZ(R, Z float64) float64 { return 0 }

// saddleField has an X-point at (1, 0): psi = (R-1)^2 - Z^2.
type saddleField struct{}

func (saddleField) Psi(R, Z float64) float64       { return (R-1)*(R-1) - Z*Z }
func (saddleField) DPsiDR(R, Z float64) float64    { return 2 * (R - 1) }
func (saddleField) DPsiDZ(R, Z float64) float64    { return -2 * Z }
func (saddleField) D2PsiDR2(R, Z float64) float64  { return 2 }
func (saddleField) D2PsiDZ2(R, Z float64) float64  { return -2 }
func (saddleField) D2PsiDRDZ(R, Z float64) float64 { return 0 }

func testOptions() *config.Options {
	o := config.Default()
	// the test contours are coarse, so extrapolated points need a wide search
	o.RefineWidth = 1e-3
	o.FinecontourAtol = 1e-9
	o.FinecontourMaxits = 50

	return o
}

// circleEq is an equilibrium with circular surfaces about (2, 0).
func circleEq(t *testing.T) *equilibrium.Equilibrium {
	t.Helper()
	eq := equilibrium.New(circleField{R0: 2}, testOptions(), nil)
	eq.RMin, eq.RMax, eq.ZMin, eq.ZMax = 0.5, 3.5, -1.5, 1.5
	eq.Axis = geometry.Point{R: 2, Z: 0}

	return eq
}

// arc returns n points on the circle of radius r about (2, 0) from angle
// th0 to th1.
func arc(n int, r, th0, th1 float64) []geometry.Point {
	pts := make([]geometry.Point, n)
	for i := range pts {
		th := th0 + (th1-th0)*float64(i)/float64(n-1)
		pts[i] = geometry.Point{R: 2 + r*math.Cos(th), Z: r * math.Sin(th)}
	}

	return pts
}

func radius(p geometry.Point) float64 { return math.Hypot(p.R-2, p.Z) }
