// Package torpex builds the equilibrium of a simple magnetised torus in
// the TORPEX configuration: a set of circular coaxial coils plus a uniform
// vertical field inside a circular vacuum vessel.
//
// The coil flux is psi = -R A_phi, with A_phi from the complete elliptic
// integrals K and E evaluated by the arithmetic-geometric mean. The field
// is sampled on a regular grid and interpolated with interp.Bicubic. The
// saddle nearest the vessel centre is the X-point; all four of its legs end
// on the vessel wall, so the grid has four divertor-like regions.
package torpex
