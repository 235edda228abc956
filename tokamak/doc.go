// Package tokamak builds an equilibrium.Equilibrium from a G-EQDSK file.
//
// FromGeqdsk interpolates psi with a bicubic spline, builds fpol(psi) from
// the profile, takes the wall from the limiter (or the wall option),
// locates the magnetic axis and the X-points inside the wall, and adds the
// regions for either a core-only or a single-null grid.
package tokamak
