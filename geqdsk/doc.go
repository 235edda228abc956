// Package geqdsk reads and writes G-EQDSK equilibrium files.
//
// A G-EQDSK file holds a free-boundary equilibrium on a regular (R, Z)
// grid: a 48-character description and the grid sizes on the first line,
// twenty scalars, the 1D profiles fpol, pres, ffprime and pprime on a
// uniform psi grid, the 2D poloidal flux psirz, the safety factor qpsi and
// finally the plasma boundary and limiter polygons.
//
// Numbers are written in fixed-width Fortran records (5e16.9) and may run
// together without whitespace, so Read tokenises the body with a regular
// expression rather than splitting on spaces.
//
// Errors:
//
//   - ErrHeader: the first line has no grid sizes.
//   - ErrTruncated: the file ends before all declared values are read.
//   - ErrShape: a File passed to Write has inconsistent array lengths.
package geqdsk
