package ode

import "errors"

var (
	// ErrEvalOrder indicates evaluation points out of order.
	ErrEvalOrder = errors.New("ode: evaluation points must be monotonic in the integration direction")
	// ErrEvalRange indicates an evaluation point outside the integration span.
	ErrEvalRange = errors.New("ode: evaluation point outside integration span")
	// ErrStepSize indicates the step size fell below the floating-point resolution of t.
	ErrStepSize = errors.New("ode: required step size is less than spacing between numbers")
	// ErrMaxSteps indicates the step budget was exhausted.
	ErrMaxSteps = errors.New("ode: maximum number of steps exceeded")
	// ErrNonFinite indicates NaN or Inf in the derivative.
	ErrNonFinite = errors.New("ode: non-finite derivative")
)
