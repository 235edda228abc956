package circular

import "errors"

// ErrRadius indicates inconsistent r_inner, r_outer, r_wall or R0.
var ErrRadius = errors.New("circular: invalid radii")
