// Package ode integrates initial-value problems with the adaptive
// Dormand–Prince 5(4) method.
//
// Step-size control, the initial step estimate and the quartic dense-output
// interpolant follow the usual RK45 formulation: a step is accepted when the
// RMS of the embedded error estimate, scaled by atol + rtol*|y|, is below 1.
// Results are reported only at the requested evaluation points.
//
// Errors:
//
//   - ErrEvalOrder: evaluation points not monotonic in the integration direction.
//   - ErrEvalRange: an evaluation point outside [t0, t1].
//   - ErrStepSize: the step size underflowed.
//   - ErrMaxSteps: the step budget was exhausted.
//   - ErrNonFinite: the right-hand side produced NaN or Inf.
package ode
