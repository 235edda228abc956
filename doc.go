// Package fluxgrid generates logically rectangular, flux-surface aligned
// grids for BOUT++ plasma simulations from magnetic equilibria.
//
// What is fluxgrid?
//
//	A pipeline that takes a poloidal flux function psi(R, Z) and produces a
//	grid file holding every coordinate, field and metric quantity the
//	simulation needs:
//		• Equilibrium sources: G-EQDSK files, concentric circles, TORPEX coils
//		• Contour tracing: flux surfaces followed from X-points to the wall
//		• Orthogonal integration: grid lines along grad(psi)
//		• Mesh assembly: staggered locations, metric tensor, curvature
//		• Output: a SQLite grid file with the inputs embedded
//
// Packages:
//
//	matrix/       dense row-major storage used by every 2D quantity
//	geometry/     points, segment intersections and wall polygons
//	interp/       1D and 2D splines
//	ode/          adaptive Runge-Kutta integration with dense output
//	optimize/     root finding and minimisation
//	config/       validated options, loaded from YAML or HCL
//	equilibrium/  Field capability, contours, regions and topology builders
//	geqdsk/       G-EQDSK reader and writer
//	tokamak/      equilibria from G-EQDSK files
//	circular/     analytic concentric circular equilibria
//	torpex/       TORPEX coil equilibria
//	mesh/         regions, geometry pipeline and BOUT++ layout
//	gridfile/     grid file writer and reader
//	plot/         terminal and SVG plots of equilibria and grids
//
// The fluxgrid command (cmd/fluxgrid) wires these together:
//
//	fluxgrid geqdsk g012345.00200 options.yaml
//	fluxgrid circular options.yaml --save-options
//	fluxgrid plot-grid bout.grd.db
//	fluxgrid recreate-inputs bout.grd.db --dir inputs
package fluxgrid
