package mesh

import "errors"

var (
	// ErrBpSign indicates Bp is directed against the sign implied by psi.
	ErrBpSign = errors.New("mesh: sign of Bp inconsistent with psi ordering")
	// ErrNonPositiveHy indicates a non-positive poloidal scale factor.
	ErrNonPositiveHy = errors.New("mesh: hy must be positive")
	// ErrJacobian indicates J is inconsistent with the metric tensor.
	ErrJacobian = errors.New("mesh: Jacobian inconsistent with 1/sqrt(det g)")
	// ErrCurvatureType indicates an unsupported curvature_type.
	ErrCurvatureType = errors.New("mesh: unsupported curvature type")
	// ErrShiftedMetric indicates shiftedmetric=false, which is not supported.
	ErrShiftedMetric = errors.New("mesh: only shiftedmetric grids are supported")
	// ErrTopology indicates a region layout with no BOUT++ topology.
	ErrTopology = errors.New("mesh: unsupported topology")
	// ErrIncompatible indicates regions that cannot form one rectangular grid.
	ErrIncompatible = errors.New("mesh: regions incompatible with a global rectangular grid")
	// ErrShape indicates operands of different shapes.
	ErrShape = errors.New("mesh: shape mismatch")
	// ErrNoGeometry indicates geometry has not been calculated.
	ErrNoGeometry = errors.New("mesh: geometry not calculated")
	// ErrNoWallIntersection indicates a contour that never reaches the wall.
	ErrNoWallIntersection = errors.New("mesh: contour does not reach the wall")
	// ErrUnknownField indicates an output field name that does not exist.
	ErrUnknownField = errors.New("mesh: unknown field")
)
