package equilibrium

import (
	"fmt"
	"math"

	"github.com/katalvlaran/fluxgrid/optimize"
)

// SqrtPoloidalDistanceFunc returns s(i), the poloidal distance at index i
// for a contour of length split into N intervals. The function is built in
// the normalised index iN = i/nNorm so its shape does not change with
// resolution:
//
//	s(0) = 0, s(N) = length
//	ds/diN ~ aLower/sqrt(iN) + bLower near i = 0
//	ds/diN ~ aUpper/sqrt(N/nNorm - iN) + bUpper near i = N
//
// With neither b set the spacing is uniform. A nil a is treated as zero; a
// cannot be set without the matching b. Outside [0, N] the result is
// extended linearly with the gradient of its non-singular part. Parameters
// that would make s decrease give ErrSpacingNotMonotonic; gradients with a
// sqrt term may be negative by up to checktol.
func SqrtPoloidalDistanceFunc(length, N, nNorm float64, aLower, bLower, aUpper, bUpper *float64, checktol float64) (func(float64) float64, error) {
	fail := func(msg string) (func(float64) float64, error) {
		return nil, fmt.Errorf("SqrtPoloidalDistanceFunc: %s: %w", msg, ErrSpacingNotMonotonic)
	}
	val := func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	}
	nn := N / nNorm
	sq := math.Sqrt(nn)

	var inner func(i float64) float64
	var g0, gN float64

	switch {
	case bLower == nil && bUpper == nil:
		if aLower != nil || aUpper != nil {
			return fail("a set without b")
		}
		return func(i float64) float64 { return i * length / N }, nil

	case bLower == nil:
		if aLower != nil {
			return fail("a_lower set without b_lower")
		}
		bu := *bUpper
		b := 2 * val(aUpper)
		c := b * sq
		e := (c + bu*nn - length) / (nn * nn)
		d := bu - 2*e*nn
		g0 = b/(2*sq) + d
		gN = d + 2*e*nn
		if !(g0 > 0) {
			return fail("gradient at start should be positive")
		}
		if b < 0 {
			return fail("sqrt part should be positive at end")
		}
		if gN < 0 {
			return fail("gradient of polynomial part should be positive at end")
		}
		inner = func(i float64) float64 {
			x := i / nNorm
			return -b*math.Sqrt((N-i)/nNorm) + c + d*x + e*x*x
		}

	case bUpper == nil:
		if aUpper != nil {
			return fail("a_upper set without b_upper")
		}
		a := 2 * val(aLower)
		d := *bLower
		e := (length - a*sq - d*nn) / (nn * nn)
		g0 = d
		gN = a/(2*sq) + d + 2*e*nn
		if a < 0 {
			return fail("sqrt part should be positive at start")
		}
		if d < 0 {
			return fail("gradient of polynomial part should be positive at start")
		}
		if !(gN > 0) {
			return fail("gradient at end should be positive")
		}
		inner = func(i float64) float64 {
			x := i / nNorm
			return a*math.Sqrt(x) + d*x + e*x*x
		}

	default:
		al, au := val(aLower), val(aUpper)
		a := 2 * al
		b := 2 * au
		c := b * sq
		d := *bLower - b/2/sq
		f := 2 * (a*sq + c + d*nn/2 + *bUpper*nn/2 - a*sq/4 - length) / (nn * nn * nn)
		e := (*bUpper-a/2/sq-d)/(2*nn) - 1.5*f*nn
		g0 = b/(2*sq) + d
		gN = a/(2*sq) + d + 2*e*nn + 3*f*nn*nn
		if a < 0 {
			return fail("sqrt part should be positive at start")
		}
		if b < 0 {
			return fail("sqrt part should be positive at end")
		}
		if (al == 0 && !(g0 > 0)) || (al != 0 && !(g0 > -checktol)) {
			return fail("gradient of non-singular part should be positive at start")
		}
		if (au == 0 && !(gN > 0)) || (au != 0 && !(gN > -checktol)) {
			return fail("gradient of non-singular part should be positive at end")
		}
		inner = func(i float64) float64 {
			x := i / nNorm
			return a*math.Sqrt(x) - b*math.Sqrt((N-i)/nNorm) + c + d*x + e*x*x + f*x*x*x
		}
	}

	s0, sN := inner(0), inner(N)

	return func(i float64) float64 {
		switch {
		case i < 0:
			return s0 + g0*i/nNorm
		case i > N:
			return sN + gN*(i-N)/nNorm
		default:
			return inner(i)
		}
	}, nil
}

// MonotonicPoloidalDistanceFunc returns s(i) with s(0) = 0, s(N) = length
// and gradients dLower, dUpper (per normalised index i/nNorm) at the ends,
// with ds/di positive throughout. When the ends are too steep for the
// length, ds/diN is the sum of two hyperbolae, with their shared parameter
// found by root finding; otherwise it is a quadratic. Outside [0, N], s is
// linear with the end gradients.
func MonotonicPoloidalDistanceFunc(length, N, nNorm, dLower, dUpper float64) (func(float64) float64, error) {
	nn := N / nNorm
	outside := func(inner func(float64) float64) func(float64) float64 {
		return func(i float64) float64 {
			switch {
			case i < 0:
				return dLower * i / nNorm
			case i > N:
				return length + dUpper*(i-N)/nNorm
			default:
				return inner(i)
			}
		}
	}

	if length >= 0.5*(dUpper+dLower)*nn-1e-8*length {
		a := 3*(dUpper+dLower)/(nn*nn) - 6*length/(nn*nn*nn)
		b := (dUpper-dLower)/nn - a*nn
		c := dLower

		return outside(func(i float64) float64 {
			x := i / nNorm
			return a*x*x*x/3 + 0.5*b*x*x + c*x
		}), nil
	}

	l2 := func(l1 float64) float64 {
		return (-dLower*nn + math.Sqrt(dLower*dLower*nn*nn+4*dLower*l1*nn)) / (2 * dLower)
	}
	l3 := func(l1 float64) float64 { return l1/l2(l1) - dLower }
	r2 := func(l1 float64) float64 {
		return (-dUpper*nn + math.Sqrt(dUpper*dUpper*nn*nn+4*dUpper*l1*nn)) / (2 * dUpper)
	}
	r3 := func(l1 float64) float64 { return l1/r2(l1) - dUpper }
	constraint := func(l1 float64) float64 {
		return l1*math.Log(nn/l2(l1)+1) - l3(l1)*nn +
			l1*math.Log(nn/r2(l1)+1) - r3(l1)*nn - length
	}

	L1, err := optimize.Brentq(constraint, 1e-15, 1e10, 1e-15, 1e-10, optimize.DefaultMaxIter)
	if err != nil {
		return nil, fmt.Errorf("MonotonicPoloidalDistanceFunc: %w: %w", ErrSpacingNotMonotonic, err)
	}
	L2, L3, R2, R3 := l2(L1), l3(L1), r2(L1), r3(L1)
	if !(L1 > 0 && L2 > 0 && L3 > 0 && R2 > 0 && R3 > 0) {
		return nil, fmt.Errorf("MonotonicPoloidalDistanceFunc: non-positive coefficient: %w", ErrSpacingNotMonotonic)
	}

	return outside(func(i float64) float64 {
		x := i / nNorm
		return L1*math.Log(x/L2+1) - L3*x - L1*math.Log(1-x/(R2+nn)) - R3*x
	}), nil
}
