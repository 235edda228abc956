package equilibrium

import "errors"

var (
	// ErrSolution indicates a numerical solve failed to converge.
	ErrSolution = errors.New("equilibrium: solution failed")
	// ErrNoSaddle indicates the saddle-point search box has inconsistent extrema.
	ErrNoSaddle = errors.New("equilibrium: no saddle point in search box")
	// ErrConnection indicates an invalid region connection.
	ErrConnection = errors.New("equilibrium: invalid connection")
	// ErrUnknownRegion indicates a region name that is not defined.
	ErrUnknownRegion = errors.New("equilibrium: unknown region")
	// ErrDuplicateRegion indicates a region name that is already defined.
	ErrDuplicateRegion = errors.New("equilibrium: duplicate region")
	// ErrInvalidKind indicates a region kind other than <wall|X>.<wall|X>.
	ErrInvalidKind = errors.New("equilibrium: invalid region kind")
	// ErrSpacingNotMonotonic indicates a poloidal spacing function decreases.
	ErrSpacingNotMonotonic = errors.New("equilibrium: poloidal spacing function is not monotonic")
	// ErrLeftDomain indicates contour tracing left the equilibrium box.
	ErrLeftDomain = errors.New("equilibrium: contour left the domain")
	// ErrTraceSteps indicates contour tracing exceeded its step budget.
	ErrTraceSteps = errors.New("equilibrium: too many tracing steps")
	// ErrTooFewPoints indicates a contour too short for the operation.
	ErrTooFewPoints = errors.New("equilibrium: too few points")
	// ErrTopology indicates the equilibrium cannot support the requested topology.
	ErrTopology = errors.New("equilibrium: unsupported topology")
)
