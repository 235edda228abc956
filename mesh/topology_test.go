package mesh_test

import (
	"testing"

	"github.com/katalvlaran/fluxgrid/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTopology(t *testing.T) {
	cases := []struct {
		name  string
		xEnds []int
		ny    []int
		sep   int
		want  mesh.Topology
	}{
		{
			name: "core only", xEnds: []int{8}, ny: []int{16}, sep: 1,
			want: mesh.Topology{IXSeps1: 8, IXSeps2: 8, JYSeps11: -1, JYSeps21: 8, NyInner: 8, JYSeps12: 8, JYSeps22: 15},
		},
		{
			name: "open field lines only", xEnds: []int{4}, ny: []int{10}, sep: 0,
			want: mesh.Topology{IXSeps1: -1, IXSeps2: -1, JYSeps11: -1, JYSeps21: 5, NyInner: 5, JYSeps12: 5, JYSeps22: 9},
		},
		{
			name: "single null", xEnds: []int{4, 8}, ny: []int{2, 8, 2}, sep: 1,
			want: mesh.Topology{IXSeps1: 4, IXSeps2: 8, JYSeps11: 1, JYSeps21: 6, NyInner: 6, JYSeps12: 6, JYSeps22: 9},
		},
		{
			name: "four legs", xEnds: []int{4, 8}, ny: []int{2, 3, 4, 5}, sep: 1,
			want: mesh.Topology{IXSeps1: 4, IXSeps2: 4, JYSeps11: 1, JYSeps21: 1, NyInner: 5, JYSeps12: 8, JYSeps22: 8},
		},
		{
			name: "disconnected double null", xEnds: []int{4, 6, 8}, ny: []int{1, 2, 3, 4, 5, 6}, sep: 1,
			want: mesh.Topology{IXSeps1: 4, IXSeps2: 6, JYSeps11: 0, JYSeps21: 2, NyInner: 6, JYSeps12: 9, JYSeps22: 14},
		},
		{
			name: "connected double null", xEnds: []int{4, 8}, ny: []int{1, 2, 3, 4, 5, 6}, sep: 1,
			want: mesh.Topology{IXSeps1: 4, IXSeps2: 4, JYSeps11: 0, JYSeps21: 2, NyInner: 6, JYSeps12: 9, JYSeps22: 14},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := mesh.ComputeTopology(tc.xEnds, tc.ny, tc.sep)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestComputeTopology_Errors(t *testing.T) {
	cases := []struct {
		name  string
		xEnds []int
		ny    []int
	}{
		{"empty x", nil, []int{4}},
		{"empty y", []int{4}, nil},
		{"two y regions", []int{4}, []int{2, 2}},
		{"four radial segments", []int{1, 2, 3, 4}, []int{4}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := mesh.ComputeTopology(tc.xEnds, tc.ny, 1)
			assert.ErrorIs(t, err, mesh.ErrTopology)
		})
	}
}
