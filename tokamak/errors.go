package tokamak

import "errors"

var (
	// ErrNoWall indicates a diverted equilibrium without a wall or limiter.
	ErrNoWall = errors.New("tokamak: diverted equilibrium needs a wall")
	// ErrNoSurface indicates no flux surface at the requested psi on the
	// outboard midplane.
	ErrNoSurface = errors.New("tokamak: flux surface not found")
)
