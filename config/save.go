package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// YAML renders the options as a YAML document.
func (o *Options) YAML() ([]byte, error) {
	out, err := yaml.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("YAML: %w", err)
	}

	return out, nil
}

// OptionsFile is an options file created by Create and filled by Write.
type OptionsFile struct {
	f *os.File
}

// Create makes the options file at path, or DefaultOptionsFile when path is
// empty, so it can be filled after the grid is generated. An existing file is
// never overwritten.
func Create(path string) (*OptionsFile, error) {
	if path == "" {
		path = DefaultOptionsFile
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil, fmt.Errorf("Create %s: %w", path, ErrExists)
	}
	if err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	return &OptionsFile{f: f}, nil
}

// Name returns the path of the file.
func (w *OptionsFile) Name() string { return w.f.Name() }

// Write stores o as YAML and closes the file.
func (w *OptionsFile) Write(o *Options) error {
	out, err := o.YAML()
	if err != nil {
		_ = w.f.Close()
		return fmt.Errorf("Write: %w", err)
	}
	if _, err = w.f.Write(out); err != nil {
		_ = w.f.Close()
		return fmt.Errorf("Write: %w", err)
	}

	return w.f.Close()
}

// Discard closes and removes a file that will not be written.
func (w *OptionsFile) Discard() error {
	_ = w.f.Close()

	return os.Remove(w.f.Name())
}

// Save writes the options to path, or DefaultOptionsFile when path is
// empty. An existing file is never overwritten.
func Save(path string, o *Options) error {
	w, err := Create(path)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}

	return w.Write(o)
}
