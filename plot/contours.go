package plot

import (
	"fmt"
	"slices"

	"github.com/katalvlaran/fluxgrid/geometry"
)

// MinSamples is the smallest number of samples per direction for Contours.
const MinSamples = 2

// edge indices within a cell: bottom, right, top, left
const (
	bottom = iota
	right
	top
	left
)

// Contours samples f on an nR*nZ grid over box and returns, for each level,
// the polylines where f equals the level. Closed curves repeat their first
// point at the end. Saddle cells are resolved with the cell-centre average.
func Contours(f func(R, Z float64) float64, box Box, nR, nZ int, levels []float64) ([][][]geometry.Point, error) {
	if err := box.Validate(); err != nil {
		return nil, fmt.Errorf("Contours: %w", err)
	}
	if nR < MinSamples || nZ < MinSamples {
		return nil, fmt.Errorf("Contours: %dx%d samples: %w", nR, nZ, ErrSize)
	}
	Rs, Zs := linspace(box.RMin, box.RMax, nR), linspace(box.ZMin, box.ZMax, nZ)
	v := make([][]float64, nR)
	for i, R := range Rs {
		v[i] = make([]float64, nZ)
		for j, Z := range Zs {
			v[i][j] = f(R, Z)
		}
	}

	out := make([][][]geometry.Point, len(levels))
	for k, lvl := range levels {
		var segs [][2]geometry.Point
		for i := 0; i < nR-1; i++ {
			for j := 0; j < nZ-1; j++ {
				segs = cellSegments(segs, Rs, Zs, v, i, j, lvl)
			}
		}
		out[k] = join(segs)
	}

	return out, nil
}

func linspace(a, b float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = a + (b-a)*float64(i)/float64(n-1)
	}
	out[n-1] = b

	return out
}

// cellSegments appends the level crossings of cell (i, j).
func cellSegments(segs [][2]geometry.Point, Rs, Zs []float64, v [][]float64, i, j int, lvl float64) [][2]geometry.Point {
	above := func(a, b int) bool { return v[a][b] >= lvl }
	// edge endpoints in grid order, so shared edges give identical points
	ends := [4][2][2]int{
		bottom: {{i, j}, {i + 1, j}},
		right:  {{i + 1, j}, {i + 1, j + 1}},
		top:    {{i, j + 1}, {i + 1, j + 1}},
		left:   {{i, j}, {i, j + 1}},
	}
	var cut [4]bool
	var pts [4]geometry.Point
	n := 0
	for e, ab := range ends {
		a, b := ab[0], ab[1]
		if above(a[0], a[1]) == above(b[0], b[1]) {
			continue
		}
		va, vb := v[a[0]][a[1]], v[b[0]][b[1]]
		t := (lvl - va) / (vb - va)
		pa := geometry.Point{R: Rs[a[0]], Z: Zs[a[1]]}
		pb := geometry.Point{R: Rs[b[0]], Z: Zs[b[1]]}
		pts[e] = geometry.Lerp(pa, pb, t)
		cut[e] = true
		n++
	}
	switch n {
	case 2:
		var seg [2]geometry.Point
		k := 0
		for e := range cut {
			if cut[e] {
				seg[k] = pts[e]
				k++
			}
		}
		segs = append(segs, seg)
	case 4:
		centre := (v[i][j] + v[i+1][j] + v[i+1][j+1] + v[i][j+1]) / 4
		if (centre >= lvl) == above(i, j) {
			segs = append(segs, [2]geometry.Point{pts[bottom], pts[right]}, [2]geometry.Point{pts[top], pts[left]})
		} else {
			segs = append(segs, [2]geometry.Point{pts[bottom], pts[left]}, [2]geometry.Point{pts[right], pts[top]})
		}
	}

	return segs
}

// join links segments sharing end points into polylines.
func join(segs [][2]geometry.Point) [][]geometry.Point {
	ends := make(map[geometry.Point][]int, 2*len(segs))
	for k, s := range segs {
		ends[s[0]] = append(ends[s[0]], k)
		ends[s[1]] = append(ends[s[1]], k)
	}
	used := make([]bool, len(segs))
	next := func(p geometry.Point) (geometry.Point, bool) {
		for _, k := range ends[p] {
			if used[k] {
				continue
			}
			used[k] = true
			if segs[k][0] == p {
				return segs[k][1], true
			}

			return segs[k][0], true
		}

		return geometry.Point{}, false
	}

	var lines [][]geometry.Point
	for k, s := range segs {
		if used[k] {
			continue
		}
		used[k] = true
		fwd := []geometry.Point{s[0], s[1]}
		for p, ok := next(s[1]); ok; p, ok = next(p) {
			fwd = append(fwd, p)
		}
		var back []geometry.Point
		for p, ok := next(s[0]); ok; p, ok = next(p) {
			back = append(back, p)
		}
		slices.Reverse(back)
		lines = append(lines, append(back, fwd...))
	}

	return lines
}
