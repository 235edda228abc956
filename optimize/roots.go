package optimize

import "fmt"

// DefaultMaxIntervals bounds the sampling resolution of FindRoots.
const DefaultMaxIntervals = 1024

// FindRoots returns the roots of f in [xmin, xmax], expecting at least n.
// The interval is sampled at n, 2n, 4n, ... points until n sign changes are
// seen; each bracketing interval is then solved with Brentq to xtol atol.
func FindRoots(f func(float64) float64, n int, xmin, xmax, atol float64, maxIntervals int) ([]float64, error) {
	if maxIntervals <= 0 {
		maxIntervals = DefaultMaxIntervals
	}
	nIntervals := n
	var xs, fs []float64
	var brackets []int
	for {
		xs = make([]float64, nIntervals+1)
		fs = make([]float64, nIntervals+1)
		for i := range xs {
			xs[i] = xmin + (xmax-xmin)*float64(i)/float64(nIntervals)
			fs[i] = f(xs[i])
			if fs[i] == 0 {
				return nil, fmt.Errorf("FindRoots: x=%g: %w", xs[i], ErrRootOnSample)
			}
		}
		brackets = brackets[:0]
		for i := 0; i < nIntervals; i++ {
			if (fs[i] < 0) != (fs[i+1] < 0) {
				brackets = append(brackets, i)
			}
		}
		if len(brackets) >= n {
			break
		}
		nIntervals *= 2
		if nIntervals > maxIntervals {
			return nil, fmt.Errorf("FindRoots: %d roots in %d intervals: %w", n, maxIntervals, ErrTooFewRoots)
		}
	}

	roots := make([]float64, 0, len(brackets))
	for _, i := range brackets {
		r, err := Brentq(f, xs[i], xs[i+1], atol, DefaultRTol, DefaultMaxIter)
		if err != nil {
			return nil, fmt.Errorf("FindRoots: %w", err)
		}
		roots = append(roots, r)
	}

	return roots, nil
}
