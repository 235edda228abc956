// Package geometry holds the 2D poloidal-plane primitives of fluxgrid.
//
// What:
//
//   - Point is an (R, Z) position or vector in the poloidal plane.
//   - FindIntersections locates crossings between a polyline and a segment,
//     treating each segment along its major axis so near-vertical and
//     near-horizontal lines are both well conditioned.
//   - Wall is a closed polygon (the vessel or limiter) with a fractional
//     arc parameterisation, segment intersection and containment tests.
//
// Complexity:
//
//   - FindIntersections: O(n) in polyline vertices.
//   - Wall.Position, Wall.Vector: O(log n).
//   - Wall.Contains: O(n).
//
// Errors:
//
//   - ErrTooFewVertices: a wall needs at least three vertices.
//   - ErrMultipleIntersections: a segment crosses the wall more than once.
//   - ErrParameterRange: wall parameter outside [0, 1].
package geometry
