package plot

import (
	"fmt"
	"math"

	"github.com/katalvlaran/fluxgrid/geometry"
)

// Box is a rectangle in the (R, Z) plane.
type Box struct {
	RMin, RMax, ZMin, ZMax float64
}

// Validate checks that b has positive width and height.
func (b Box) Validate() error {
	if !(b.RMax > b.RMin) || !(b.ZMax > b.ZMin) {
		return fmt.Errorf("box R [%g, %g] Z [%g, %g]: %w", b.RMin, b.RMax, b.ZMin, b.ZMax, ErrBox)
	}

	return nil
}

// Width is the R extent.
func (b Box) Width() float64 { return b.RMax - b.RMin }

// Height is the Z extent.
func (b Box) Height() float64 { return b.ZMax - b.ZMin }

// Pad returns b grown by frac of its size on every side.
func (b Box) Pad(frac float64) Box {
	dR, dZ := frac*b.Width(), frac*b.Height()

	return Box{b.RMin - dR, b.RMax + dR, b.ZMin - dZ, b.ZMax + dZ}
}

// BoundingBox returns the smallest box holding every point, ignoring
// points that are not finite.
func BoundingBox(points []geometry.Point) Box {
	b := Box{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for _, p := range points {
		if !p.IsFinite() {
			continue
		}
		b.RMin, b.RMax = math.Min(b.RMin, p.R), math.Max(b.RMax, p.R)
		b.ZMin, b.ZMax = math.Min(b.ZMin, p.Z), math.Max(b.ZMax, p.Z)
	}

	return b
}
