package plot_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/katalvlaran/fluxgrid/geometry"
	"github.com/katalvlaran/fluxgrid/matrix"
	"github.com/katalvlaran/fluxgrid/plot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMissing = errors.New("missing")

type fields map[string]*matrix.Dense

func (f fields) Field(_ context.Context, name string) (*matrix.Dense, error) {
	m, ok := f[name]
	if !ok {
		return nil, errMissing
	}

	return m, nil
}

func full(t *testing.T, rows, cols int, v float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDense(rows, cols)
	require.NoError(t, err)
	m.Fill(v)

	return m
}

// unitSquare is a 1x1 grid whose only cell spans [0,1]x[0,1].
func unitSquare(t *testing.T) fields {
	f := fields{}
	corners := map[string]geometry.Point{
		"corners":             {R: 0, Z: 0},
		"lower_right_corners": {R: 1, Z: 0},
		"upper_right_corners": {R: 1, Z: 1},
		"upper_left_corners":  {R: 0, Z: 1},
	}
	for n, p := range corners {
		f["Rxy_"+n] = full(t, 1, 1, p.R)
		f["Zxy_"+n] = full(t, 1, 1, p.Z)
	}

	return f
}

func TestCells(t *testing.T) {
	cells, err := plot.Cells(context.Background(), unitSquare(t))
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, []geometry.Point{{R: 0, Z: 0}, {R: 1, Z: 0}, {R: 1, Z: 1}, {R: 0, Z: 1}, {R: 0, Z: 0}}, cells[0])

	box := plot.CellsBox(cells)
	assert.InDelta(t, -0.05, box.RMin, 1e-15)
	assert.InDelta(t, 1.05, box.ZMax, 1e-15)
}

func TestCells_Errors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		f := unitSquare(t)
		delete(f, "Zxy_upper_left_corners")
		_, err := plot.Cells(context.Background(), f)
		assert.ErrorIs(t, err, errMissing)
	})
	t.Run("shape", func(t *testing.T) {
		f := unitSquare(t)
		f["Rxy_upper_left_corners"] = full(t, 2, 1, 0)
		_, err := plot.Cells(context.Background(), f)
		assert.ErrorIs(t, err, plot.ErrShape)
	})
}

func TestGridCells(t *testing.T) {
	c, err := plot.GridCells(context.Background(), unitSquare(t), func(b plot.Box) (*plot.Canvas, error) {
		return plot.NewCanvas(b, 11)
	})
	require.NoError(t, err)
	lines := strings.Split(c.Plain(), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, strings.Repeat("+", 11), lines[0])
	assert.Equal(t, "+         +", lines[2])
	assert.Equal(t, strings.Repeat("+", 11), lines[5])
}
