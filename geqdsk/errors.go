package geqdsk

import "errors"

var (
	// ErrHeader indicates a first line without nw and nh.
	ErrHeader = errors.New("geqdsk: malformed header")
	// ErrTruncated indicates the file ended before all declared values.
	ErrTruncated = errors.New("geqdsk: unexpected end of data")
	// ErrShape indicates array lengths inconsistent with nw, nh or the
	// boundary counts.
	ErrShape = errors.New("geqdsk: inconsistent array shape")
)
