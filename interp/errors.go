package interp

import "errors"

var (
	// ErrTooFewPoints indicates fewer than two knots.
	ErrTooFewPoints = errors.New("interp: at least two points are required")
	// ErrLengthMismatch indicates knot and value slices of different length.
	ErrLengthMismatch = errors.New("interp: x and y lengths differ")
	// ErrNotIncreasing indicates knots that are not strictly increasing.
	ErrNotIncreasing = errors.New("interp: knots must be strictly increasing")
	// ErrOutOfRange indicates evaluation outside the knots of a non-extrapolating interpolant.
	ErrOutOfRange = errors.New("interp: value outside interpolation range")
)
