// Package mesh turns the Regions of an equilibrium.Equilibrium into a
// logically rectangular grid and computes the geometric quantities a
// BOUT++ simulation needs.
//
// What:
//
//   - MultiLocationArray stores a field at the four staggered locations of a
//     region: cell centres, x faces (xlow), y faces (ylow) and corners.
//   - Region is one radial segment of an equilibrium region. Its grid lines
//     are found by following the perpendicular to the flux surfaces from
//     every point of the regridded separatrix.
//   - Mesh numbers the regions, resolves their connections, groups them
//     radially and poloidally and runs the geometry pipeline.
//   - BoutMesh adds the global index layout of BOUT++, the topology indices
//     and the grid file output.
//
// Pipeline:
//
//  1. New regrids every equilibrium region, then builds the mesh regions
//     concurrently (bounded by num_workers).
//  2. Geometry runs fillRZ, the upper boundary exchange, the geometry stage,
//     zShift per y-group and the metric stage. Each stage completes for all
//     regions before the next starts.
//
// Errors:
//
//   - ErrBpSign: the poloidal field direction contradicts the psi ordering.
//   - ErrNonPositiveHy: a poloidal spacing is zero or negative.
//   - ErrJacobian: J disagrees with 1/sqrt(det g) beyond geometry_rtol.
//   - ErrCurvatureType, ErrShiftedMetric: unsupported output options.
//   - ErrTopology, ErrIncompatible: the regions do not fit the BOUT++ layout.
//   - ErrShape: MultiLocationArray operands differ in shape.
//   - ErrNoGeometry: output requested before Geometry ran.
package mesh
