// Package optimize provides the scalar root finders and minimisers used to
// locate flux surfaces and critical points.
//
// What:
//
//   - Brentq: Brent's bracketing root finder (inverse quadratic
//     interpolation with bisection fallback).
//   - MinimizeBounded: Brent's bounded scalar minimiser (golden section with
//     parabolic steps).
//   - FindRoots: locate n roots in an interval by successively doubling the
//     number of sampling intervals until n sign changes appear.
//
// Errors:
//
//   - ErrNoBracket: f(a) and f(b) have the same sign.
//   - ErrNotConverged: iteration budget exhausted.
//   - ErrRootOnSample: a sampling point landed exactly on a root.
//   - ErrTooFewRoots: fewer than n sign changes at the maximum resolution.
package optimize
