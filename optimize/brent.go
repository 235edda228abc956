package optimize

import (
	"fmt"
	"math"
)

// Default tolerances for Brentq.
const (
	DefaultXTol    = 2e-12
	DefaultRTol    = 4 * 2.220446049250313e-16
	DefaultMaxIter = 100
)

// Brentq finds a root of f in [a, b]. f(a) and f(b) must differ in sign.
// The root is located to within xtol + rtol*|x|.
func Brentq(f func(float64) float64, a, b, xtol, rtol float64, maxIter int) (float64, error) {
	xpre, xcur := a, b
	fpre, fcur := f(xpre), f(xcur)
	var xblk, fblk, spre, scur float64

	if fpre*fcur > 0 {
		return 0, fmt.Errorf("Brentq on [%g, %g]: %w", a, b, ErrNoBracket)
	}
	if fpre == 0 {
		return xpre, nil
	}
	if fcur == 0 {
		return xcur, nil
	}

	for i := 0; i < maxIter; i++ {
		if fpre != 0 && fcur != 0 && math.Signbit(fpre) != math.Signbit(fcur) {
			xblk, fblk = xpre, fpre
			spre = xcur - xpre
			scur = spre
		}
		if math.Abs(fblk) < math.Abs(fcur) {
			xpre, xcur, xblk = xcur, xblk, xcur
			fpre, fcur, fblk = fcur, fblk, fcur
		}

		delta := (xtol + rtol*math.Abs(xcur)) / 2
		sbis := (xblk - xcur) / 2
		if fcur == 0 || math.Abs(sbis) < delta {
			return xcur, nil
		}

		if math.Abs(spre) > delta && math.Abs(fcur) < math.Abs(fpre) {
			var stry float64
			if xpre == xblk {
				// secant
				stry = -fcur * (xcur - xpre) / (fcur - fpre)
			} else {
				// inverse quadratic
				dpre := (fpre - fcur) / (xpre - xcur)
				dblk := (fblk - fcur) / (xblk - xcur)
				stry = -fcur * (fblk*dblk - fpre*dpre) / (dblk * dpre * (fblk - fpre))
			}
			if 2*math.Abs(stry) < math.Min(math.Abs(spre), 3*math.Abs(sbis)-delta) {
				spre, scur = scur, stry
			} else {
				spre, scur = sbis, sbis
			}
		} else {
			spre, scur = sbis, sbis
		}

		xpre, fpre = xcur, fcur
		if math.Abs(scur) > delta {
			xcur += scur
		} else if sbis > 0 {
			xcur += delta
		} else {
			xcur -= delta
		}
		fcur = f(xcur)
	}

	return xcur, fmt.Errorf("Brentq on [%g, %g] after %d iterations: %w", a, b, maxIter, ErrNotConverged)
}

// MinimizeBounded returns the minimiser of f on [a, b] to absolute
// tolerance xatol using Brent's method with golden-section fallback.
func MinimizeBounded(f func(float64) float64, a, b, xatol float64) (float64, error) {
	const maxFun = 500
	sqrtEps := math.Sqrt(2.2e-16)
	goldenMean := 0.5 * (3 - math.Sqrt(5))

	fulc := a + goldenMean*(b-a)
	nfc, xf := fulc, fulc
	var rat, e float64
	fx := f(xf)
	num := 1
	ffulc, fnfc := fx, fx
	xm := 0.5 * (a + b)
	tol1 := sqrtEps*math.Abs(xf) + xatol/3
	tol2 := 2 * tol1

	sign := func(v float64) float64 {
		if v < 0 {
			return -1
		}
		return 1
	}

	for math.Abs(xf-xm) > tol2-0.5*(b-a) {
		golden := true
		if math.Abs(e) > tol1 {
			golden = false
			r := (xf - nfc) * (fx - ffulc)
			q := (xf - fulc) * (fx - fnfc)
			p := (xf-fulc)*q - (xf-nfc)*r
			q = 2 * (q - r)
			if q > 0 {
				p = -p
			}
			q = math.Abs(q)
			r = e
			e = rat

			if math.Abs(p) < math.Abs(0.5*q*r) && p > q*(a-xf) && p < q*(b-xf) {
				rat = p / q
				x := xf + rat
				if x-a < tol2 || b-x < tol2 {
					rat = tol1 * sign(xm-xf)
				}
			} else {
				golden = true
			}
		}
		if golden {
			if xf >= xm {
				e = a - xf
			} else {
				e = b - xf
			}
			rat = goldenMean * e
		}

		x := xf + sign(rat)*math.Max(math.Abs(rat), tol1)
		fu := f(x)
		num++

		if fu <= fx {
			if x >= xf {
				a = xf
			} else {
				b = xf
			}
			fulc, ffulc = nfc, fnfc
			nfc, fnfc = xf, fx
			xf, fx = x, fu
		} else {
			if x < xf {
				a = x
			} else {
				b = x
			}
			if fu <= fnfc || nfc == xf {
				fulc, ffulc = nfc, fnfc
				nfc, fnfc = x, fu
			} else if fu <= ffulc || fulc == xf || fulc == nfc {
				fulc, ffulc = x, fu
			}
		}

		xm = 0.5 * (a + b)
		tol1 = sqrtEps*math.Abs(xf) + xatol/3
		tol2 = 2 * tol1

		if num >= maxFun {
			return xf, fmt.Errorf("MinimizeBounded: %d evaluations: %w", num, ErrNotConverged)
		}
	}

	return xf, nil
}
