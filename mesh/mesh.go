package mesh

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/fluxgrid/config"
	"github.com/katalvlaran/fluxgrid/equilibrium"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type segmentKey struct {
	region  string
	segment int
}

// Mesh is the set of Regions built from every segment of every region of
// an equilibrium. Region IDs number the segments in equilibrium region
// order, inner segment first.
type Mesh struct {
	Equilibrium *equilibrium.Equilibrium
	Options     *config.Options
	Regions     []*Region

	// XGroups are chains of regions connected inner to outer; YGroups
	// chains connected lower to upper. A periodic chain appears once.
	XGroups [][]*Region
	YGroups [][]*Region

	keys     []segmentKey
	eqIndex  []int
	dy       float64
	logger   *zap.Logger
	geometry bool
}

// New builds a Mesh over the regions of eq. Regions are regridded one at a
// time, since regridding updates the equilibrium regions' distance caches;
// the perpendicular following then runs on up to num_workers goroutines.
// Nil opts fall back to eq.Options and a nil logger to a no-op logger.
func New(ctx context.Context, eq *equilibrium.Equilibrium, opts *config.Options, logger *zap.Logger) (*Mesh, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts == nil {
		opts = eq.Options
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("New: %w", err)
	}
	eqRegions := eq.Regions()
	if len(eqRegions) == 0 {
		return nil, fmt.Errorf("New: equilibrium has no regions: %w", ErrTopology)
	}
	m := &Mesh{Equilibrium: eq, Options: opts, logger: logger}

	lookup := make(map[segmentKey]int)
	nyTotal := 0
	for k, r := range eqRegions {
		for s := 0; s < r.NSegments; s++ {
			key := segmentKey{r.Name, s}
			lookup[key] = len(m.keys)
			m.keys = append(m.keys, key)
			m.eqIndex = append(m.eqIndex, k)
		}
		nyTotal += r.NyNoGuards
	}
	m.dy = 2 * math.Pi / float64(nyTotal)

	neighbours := make([][4]int, len(m.keys))
	regridded := make([]*equilibrium.Region, len(m.keys))
	for id, key := range m.keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r := eqRegions[m.eqIndex[id]]
		c := r.Connections[key.segment]
		for f, conn := range [4]*equilibrium.Connection{c.Inner, c.Outer, c.Lower, c.Upper} {
			neighbours[id][f] = noNeighbour
			if conn == nil {
				continue
			}
			n, ok := lookup[segmentKey{conn.Region, conn.Segment}]
			if !ok {
				return nil, fmt.Errorf("New: %s(%d) %s connection to %s(%d): %w",
					key.region, key.segment, Face(f), conn.Region, conn.Segment, equilibrium.ErrUnknownRegion)
			}
			neighbours[id][f] = n
		}
		g, err := r.Regridded(key.segment)
		if err != nil {
			return nil, fmt.Errorf("New: %w", err)
		}
		regridded[id] = g
	}

	m.Regions = make([]*Region, len(m.keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.NumWorkers)
	for id, key := range m.keys {
		g.Go(func() error {
			r, err := newRegion(gctx, m, id, regridded[id], key.segment, neighbours[id])
			if err != nil {
				return err
			}
			m.Regions[id] = r

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("New: %w", err)
	}
	m.makeGroups()
	logger.Info("mesh regions built", zap.Int("regions", len(m.Regions)),
		zap.Int("x_groups", len(m.XGroups)), zap.Int("y_groups", len(m.YGroups)))

	return m, nil
}

// makeGroups chains regions radially and poloidally. Each chain starts at a
// region with no neighbour on its lower (inner) side if one remains, else
// at the lowest remaining ID, which must then be part of a periodic chain.
func (m *Mesh) makeGroups() {
	m.XGroups = m.chains(Inner, Outer, nil)
	m.YGroups = m.chains(Lower, Upper, func(r *Region, i int) { r.yGroupIndex = i })
}

func (m *Mesh) chains(from, to Face, mark func(*Region, int)) [][]*Region {
	used := make([]bool, len(m.Regions))
	var groups [][]*Region
	for remaining := len(m.Regions); remaining > 0; {
		start := -1
		for id, r := range m.Regions {
			if used[id] {
				continue
			}
			if start < 0 {
				start = id
			}
			if r.neighbours[from] == noNeighbour {
				start = id
				break
			}
		}
		var group []*Region
		for r := m.Regions[start]; r != nil && !used[r.ID]; r = r.Neighbour(to) {
			if mark != nil {
				mark(r, len(group))
			}
			used[r.ID] = true
			group = append(group, r)
			remaining--
		}
		groups = append(groups, group)
	}

	return groups
}

// Dy is the uniform poloidal grid spacing, 2*pi over the total number of
// poloidal cells without guards.
func (m *Mesh) Dy() float64 { return m.dy }

// Geometry computes the geometric quantities of every region. The stages
// run in order with all regions finishing one stage before the next starts:
// R and Z, the shared upper faces, the field and spacing quantities, zShift
// and the metric with curvature.
func (m *Mesh) Geometry(ctx context.Context) error {
	stages := []struct {
		name string
		run  func(*Region) error
	}{
		{"fill R,Z", func(r *Region) error { r.fillRZ(); return nil }},
		{"boundary R,Z", func(r *Region) error { r.getRZBoundary(); return nil }},
		{"geometry", (*Region).geometry},
		{"zShift", func(r *Region) error { r.calcZShift(); return nil }},
		{"metric", (*Region).calcMetric},
	}
	for _, s := range stages {
		m.logger.Info("calculating", zap.String("stage", s.name))
		if err := m.forEach(ctx, s.run); err != nil {
			return fmt.Errorf("Geometry %s: %w", s.name, err)
		}
	}
	m.geometry = true

	return nil
}

func (m *Mesh) forEach(ctx context.Context, f func(*Region) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.Options.NumWorkers)
	for _, r := range m.Regions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			return f(r)
		})
	}

	return g.Wait()
}
