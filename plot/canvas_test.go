package plot_test

import (
	"strings"
	"testing"

	"github.com/katalvlaran/fluxgrid/geometry"
	"github.com/katalvlaran/fluxgrid/plot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCanvas_Errors(t *testing.T) {
	cases := []struct {
		name  string
		box   plot.Box
		width int
		want  error
	}{
		{"empty box", plot.Box{RMin: 1, RMax: 1, ZMin: 0, ZMax: 1}, 20, plot.ErrBox},
		{"inverted box", plot.Box{RMin: 0, RMax: 1, ZMin: 1, ZMax: 0}, 20, plot.ErrBox},
		{"narrow", plot.Box{RMin: 0, RMax: 1, ZMin: 0, ZMax: 1}, plot.MinWidth - 1, plot.ErrSize},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := plot.NewCanvas(tc.box, tc.width)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCanvas(t *testing.T) {
	c, err := plot.NewCanvas(plot.Box{RMin: 0, RMax: 10, ZMin: 0, ZMax: 10}, 10)
	require.NoError(t, err)
	cols, rows := c.Size()
	assert.Equal(t, 10, cols)
	assert.Equal(t, 5, rows)

	c.Line(geometry.Point{R: 0.5, Z: 9.5}, geometry.Point{R: 9.5, Z: 9.5}, plot.LayerWall)
	// a lower layer does not overwrite
	c.Line(geometry.Point{R: 0.5, Z: 9.5}, geometry.Point{R: 2.5, Z: 9.5}, plot.LayerContour)
	c.Marker(geometry.Point{R: 5.5, Z: 0.5}, "ab", plot.LayerMarker)
	// points outside the box are dropped
	c.Line(geometry.Point{R: -5, Z: -5}, geometry.Point{R: -1, Z: -1}, plot.LayerGrid)

	lines := strings.Split(c.Plain(), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "##########", lines[0])
	assert.Equal(t, "     Xab  ", lines[4])
	for _, l := range lines[1:4] {
		assert.Equal(t, strings.Repeat(" ", 10), l)
	}

	r := c.Render()
	assert.Contains(t, r, "Xab")
	assert.Contains(t, r, "#")
}

func TestCanvas_Diagonal(t *testing.T) {
	c, err := plot.NewCanvas(plot.Box{RMin: 0, RMax: 8, ZMin: 0, ZMax: 16}, 8)
	require.NoError(t, err)
	c.Polyline([]geometry.Point{{R: 0.5, Z: 15}, {R: 7.5, Z: 1}}, plot.LayerGrid)

	lines := strings.Split(c.Plain(), "\n")
	require.Len(t, lines, 8)
	for i, l := range lines {
		assert.Equal(t, strings.Repeat(" ", i)+"+"+strings.Repeat(" ", 7-i), l, "row %d", i)
	}
}
