package equilibrium

import (
	"math/rand/v2"

	"github.com/katalvlaran/fluxgrid/geometry"
	"go.uber.org/zap"
)

// Standard deviations of the AddNoise offsets.
const (
	noiseR = 1.0e-16
	noiseZ = 5.0e-17
)

// AddNoise moves every region point by a normally distributed offset of
// round-off size, drawn from a generator seeded with seed. Regions are
// visited in order, so a seed always gives the same perturbation.
func (e *Equilibrium) AddNoise(seed uint64) {
	rng := rand.New(rand.NewPCG(seed, seed))
	for _, r := range e.regions {
		r.perturb(func(p geometry.Point) geometry.Point {
			return geometry.Point{R: p.R + noiseR*rng.NormFloat64(), Z: p.Z + noiseZ*rng.NormFloat64()}
		})
	}
	e.Logger.Debug("region points perturbed", zap.Uint64("seed", seed))
}
