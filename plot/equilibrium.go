package plot

import (
	"fmt"
	"strconv"

	"github.com/katalvlaran/fluxgrid/equilibrium"
	"github.com/katalvlaran/fluxgrid/geometry"
)

// EquilibriumOptions control Equilibrium.
type EquilibriumOptions struct {
	// NR and NZ are the psi sampling sizes.
	NR, NZ int
	// Levels is the number of evenly spaced psi contours.
	Levels int
	// Regions also draws the regions of the equilibrium.
	Regions bool
}

// DefaultEquilibriumOptions samples 100x100 points and draws 20 levels.
func DefaultEquilibriumOptions() EquilibriumOptions {
	return EquilibriumOptions{NR: 100, NZ: 100, Levels: 20}
}

// EquilibriumBox is the box of eq, grown to hold its wall.
func EquilibriumBox(eq *equilibrium.Equilibrium) Box {
	b := Box{eq.RMin, eq.RMax, eq.ZMin, eq.ZMax}
	if eq.Wall != nil {
		w := BoundingBox(eq.Wall.Vertices())
		b = Box{min(b.RMin, w.RMin), max(b.RMax, w.RMax), min(b.ZMin, w.ZMin), max(b.ZMax, w.ZMax)}
	}

	return b
}

// Equilibrium draws psi contours of eq between the smallest and largest
// sampled values, the separatrix surfaces, the wall, the magnetic axis and
// the X-points.
func Equilibrium(d Drawer, eq *equilibrium.Equilibrium, o EquilibriumOptions) error {
	box := EquilibriumBox(eq)
	if o.Levels < 1 {
		return fmt.Errorf("Equilibrium: %d levels: %w", o.Levels, ErrSize)
	}
	lo, hi, err := sampledRange(eq, box, o.NR, o.NZ)
	if err != nil {
		return fmt.Errorf("Equilibrium: %w", err)
	}
	levels := make([]float64, o.Levels)
	for k := range levels {
		levels[k] = lo + (hi-lo)*float64(k+1)/float64(o.Levels+1)
	}
	levels = append(levels, eq.PsiSep...)
	lines, err := Contours(eq.Field.Psi, box, o.NR, o.NZ, levels)
	if err != nil {
		return fmt.Errorf("Equilibrium: %w", err)
	}
	for k, ls := range lines {
		layer := LayerContour
		if k >= o.Levels {
			layer = LayerSeparatrix
		}
		for _, l := range ls {
			d.Polyline(l, layer)
		}
	}

	if o.Regions {
		for _, r := range eq.Regions() {
			d.Polyline(r.Points(), LayerSeparatrix)
			d.Marker(r.First(), r.Name, LayerMarker)
		}
	}
	if eq.Wall != nil {
		d.Polyline(eq.Wall.Closed(), LayerWall)
	}
	d.Marker(eq.Axis, "O", LayerMarker)
	for i, x := range eq.XPoints {
		d.Marker(x, "X"+strconv.Itoa(i), LayerMarker)
	}

	return nil
}

func sampledRange(eq *equilibrium.Equilibrium, box Box, nR, nZ int) (lo, hi float64, err error) {
	if nR < MinSamples || nZ < MinSamples {
		return 0, 0, fmt.Errorf("%dx%d samples: %w", nR, nZ, ErrSize)
	}
	Rs, Zs := linspace(box.RMin, box.RMax, nR), linspace(box.ZMin, box.ZMax, nZ)
	first := true
	for _, R := range Rs {
		for _, Z := range Zs {
			v := eq.Psi(geometry.Point{R: R, Z: Z})
			if first {
				lo, hi, first = v, v, false
				continue
			}
			lo, hi = min(lo, v), max(hi, v)
		}
	}

	return lo, hi, nil
}
