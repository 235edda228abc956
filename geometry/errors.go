package geometry

import "errors"

var (
	// ErrTooFewVertices indicates a wall polygon with fewer than three vertices.
	ErrTooFewVertices = errors.New("geometry: wall needs at least three vertices")
	// ErrMultipleIntersections indicates a segment crossing the wall at two distinct points.
	ErrMultipleIntersections = errors.New("geometry: multiple intersections with wall")
	// ErrParameterRange indicates a wall parameter outside [0, 1].
	ErrParameterRange = errors.New("geometry: wall parameter outside [0, 1]")
)
