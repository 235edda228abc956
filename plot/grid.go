package plot

import (
	"context"
	"fmt"

	"github.com/katalvlaran/fluxgrid/geometry"
	"github.com/katalvlaran/fluxgrid/matrix"
)

// FieldReader reads named 2D fields, as gridfile.Reader does.
type FieldReader interface {
	Field(ctx context.Context, name string) (*matrix.Dense, error)
}

var cornerNames = [4]string{"corners", "lower_right_corners", "upper_right_corners", "upper_left_corners"}

// Cells reads the four corners of every grid cell from the Rxy and Zxy
// corner arrays. Each cell is a closed polygon of five points.
func Cells(ctx context.Context, rd FieldReader) ([][]geometry.Point, error) {
	var R, Z [4]*matrix.Dense
	for k, n := range cornerNames {
		var err error
		if R[k], err = rd.Field(ctx, "Rxy_"+n); err != nil {
			return nil, fmt.Errorf("Cells: %w", err)
		}
		if Z[k], err = rd.Field(ctx, "Zxy_"+n); err != nil {
			return nil, fmt.Errorf("Cells: %w", err)
		}
	}
	rows, cols := R[0].Rows(), R[0].Cols()
	for k := range R {
		if R[k].Rows() != rows || R[k].Cols() != cols || Z[k].Rows() != rows || Z[k].Cols() != cols {
			return nil, fmt.Errorf("Cells: %s: %w", cornerNames[k], ErrShape)
		}
	}

	cells := make([][]geometry.Point, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			poly := make([]geometry.Point, 5)
			for k := range R {
				poly[k] = geometry.Point{R: R[k].Row(i)[j], Z: Z[k].Row(i)[j]}
			}
			poly[4] = poly[0]
			cells = append(cells, poly)
		}
	}

	return cells, nil
}

// CellsBox returns the box holding every cell, padded by 5%.
func CellsBox(cells [][]geometry.Point) Box {
	var all []geometry.Point
	for _, c := range cells {
		all = append(all, c...)
	}

	return BoundingBox(all).Pad(0.05)
}

// GridCells reads the cells of a grid file, creates a drawer over their
// box with newDrawer and draws the cell edges on it.
func GridCells[D Drawer](ctx context.Context, rd FieldReader, newDrawer func(Box) (D, error)) (D, error) {
	var zero D
	cells, err := Cells(ctx, rd)
	if err != nil {
		return zero, fmt.Errorf("GridCells: %w", err)
	}
	d, err := newDrawer(CellsBox(cells))
	if err != nil {
		return zero, fmt.Errorf("GridCells: %w", err)
	}
	for _, c := range cells {
		d.Polyline(c, LayerGrid)
	}

	return d, nil
}
