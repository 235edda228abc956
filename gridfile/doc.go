// Package gridfile stores generated grids in a single SQLite file.
//
// A grid file has four tables:
//
//   - metadata: grid_id (a random UUID), created, generator and version.
//   - scalars: named integers, reals and strings (nx, ny, topology
//     indices, curvature_type, the options YAML, ...).
//   - fields: named 2D arrays stored row-major as little-endian float64.
//   - inputs: the input files the grid was generated from, embedded
//     verbatim so they can be recovered later.
//
// A Writer collects everything in one transaction; nothing is visible in
// the file until Close commits it. A Reader gives typed access to the same
// entries.
//
// Errors:
//
//   - ErrExists: Create would overwrite a file without Overwrite.
//   - ErrNotFound: the file or a named entry does not exist.
//   - ErrDuplicate: an entry is written twice.
//   - ErrKind: a scalar is read as the wrong type.
//   - ErrCorrupt: a stored field does not match its recorded shape.
package gridfile
