// Package config holds the user options that drive grid generation.
//
// What:
//
//   - Options: one validated struct with every user setting and explicit
//     defaults (Default).
//   - Load: read options from YAML (gopkg.in/yaml.v3, unknown keys rejected)
//     or HCL (github.com/hashicorp/hcl/v2, unsupported attributes rejected),
//     chosen by file extension.
//   - YAML / Save: render options for embedding in grid files and write
//     fluxgrid_options.yaml without overwriting an existing file.
//
// Errors:
//
//   - ErrInvalidOption: a value is out of range or not a recognised choice.
//   - ErrUnknownFormat: the file extension is neither YAML nor HCL.
//   - ErrExists: Save target already exists.
package config
