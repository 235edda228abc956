package plot

import "errors"

var (
	// ErrBox indicates a plotting box with zero or negative extent.
	ErrBox = errors.New("plot: empty box")
	// ErrSize indicates a width or sample count that is too small.
	ErrSize = errors.New("plot: size too small")
	// ErrShape indicates corner arrays of different shapes.
	ErrShape = errors.New("plot: corner arrays differ in shape")
)
