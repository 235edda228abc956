package gridfile

import "errors"

var (
	// ErrExists indicates Create was asked to replace an existing file.
	ErrExists = errors.New("gridfile: file already exists")
	// ErrNotFound indicates a missing file or entry.
	ErrNotFound = errors.New("gridfile: not found")
	// ErrDuplicate indicates an entry name written twice.
	ErrDuplicate = errors.New("gridfile: duplicate entry")
	// ErrKind indicates a scalar read as a different type than stored.
	ErrKind = errors.New("gridfile: wrong scalar kind")
	// ErrCorrupt indicates field data inconsistent with its shape.
	ErrCorrupt = errors.New("gridfile: corrupt field data")
	// ErrClosed indicates use of a closed Writer.
	ErrClosed = errors.New("gridfile: writer closed")
)
