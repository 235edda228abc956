package optimize

import "errors"

var (
	// ErrNoBracket indicates f(a) and f(b) do not have opposite signs.
	ErrNoBracket = errors.New("optimize: f(a) and f(b) must have different signs")
	// ErrNotConverged indicates the iteration budget ran out.
	ErrNotConverged = errors.New("optimize: failed to converge")
	// ErrRootOnSample indicates a sampling point coincides with a root.
	ErrRootOnSample = errors.New("optimize: sample point lies exactly on a root")
	// ErrTooFewRoots indicates fewer sign changes than requested roots.
	ErrTooFewRoots = errors.New("optimize: could not find requested number of roots")
)
