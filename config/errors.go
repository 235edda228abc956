package config

import "errors"

var (
	// ErrInvalidOption indicates a value out of range or an unknown choice.
	ErrInvalidOption = errors.New("config: invalid option")
	// ErrUnknownFormat indicates an unsupported options file extension.
	ErrUnknownFormat = errors.New("config: unknown options file format")
	// ErrExists indicates Save would overwrite an existing file.
	ErrExists = errors.New("config: file already exists")
)
