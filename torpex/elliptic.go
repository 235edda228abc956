package torpex

import "math"

const agmTol = 1e-15

// EllipticKE returns the complete elliptic integrals of the first and
// second kind, K(m) and E(m), for parameter m = k^2 in [0, 1).
func EllipticKE(m float64) (K, E float64) {
	a, b := 1.0, math.Sqrt(1-m)
	c := math.Sqrt(m)
	sum := 0.5 * c * c
	pow := 0.5
	for math.Abs(c) > agmTol {
		a, b, c = 0.5*(a+b), math.Sqrt(a*b), 0.5*(a-b)
		pow *= 2
		sum += pow * c * c
	}
	K = math.Pi / (2 * a)

	return K, K * (1 - sum)
}

// mu0 is the vacuum permeability.
const mu0 = 4e-7 * math.Pi

// CoilPsi returns -R A_phi at (R, Z) for a circular loop of radius cR at
// height cZ carrying current I.
func CoilPsi(R, Z, cR, cZ, I float64) float64 {
	dz := Z - cZ
	m := 4 * cR * R / ((cR+R)*(cR+R) + dz*dz)
	K, E := EllipticKE(m)
	k := math.Sqrt(m)
	aphi := mu0 * I / (math.Pi * k) * math.Sqrt(cR/R) * ((1-0.5*m)*K - E)

	return -R * aphi
}
