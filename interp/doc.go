// Package interp provides the interpolants used to represent equilibrium
// data and contours.
//
// What:
//
//   - Spline: 1D cubic spline with not-a-knot end conditions on gonum's
//     interp.NotAKnotCubic, evaluated and differentiated anywhere (outside
//     the knots the end polynomials extrapolate).
//   - Previous: step interpolation holding the value of the last knot at or
//     below the query, on gonum's interp.PiecewiseConstant.
//   - Bicubic: tensor-product cubic spline on a regular 2D grid, evaluated
//     per cell as a bicubic Hermite patch from precomputed node derivatives.
//
// Complexity:
//
//   - NewSpline: O(n). Spline.Eval, Previous.Eval: O(log n).
//   - NewBicubic: O(nx*ny). Bicubic evaluation: O(log nx + log ny).
//
// All interpolants are immutable after construction and safe for concurrent use.
//
// Errors:
//
//   - ErrTooFewPoints, ErrLengthMismatch, ErrNotIncreasing, ErrOutOfRange.
package interp
