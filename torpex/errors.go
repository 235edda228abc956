package torpex

import "errors"

var (
	// ErrNoXPoint indicates no saddle of psi inside the vessel.
	ErrNoXPoint = errors.New("torpex: no X-point inside the vessel")
	// ErrCoil indicates a coil inside the sampled domain or with R <= 0.
	ErrCoil = errors.New("torpex: invalid coil")
)
