package equilibrium

// Make1DGrid returns 2n+1 values: f(0), ..., f(n) at even indices (cell
// faces) and the midpoints between them at odd indices (cell centres).
func Make1DGrid(n int, f func(i float64) float64) []float64 {
	out := make([]float64, 2*n+1)
	for i := 0; i <= n; i++ {
		out[2*i] = f(float64(i))
	}
	for i := 1; i < len(out); i += 2 {
		out[i] = 0.5 * (out[i-1] + out[i+1])
	}

	return out
}

// PolynomialGridFunc returns a polynomial with value lower at 0 and upper
// at n. A non-nil gradLower/gradUpper fixes the gradient at that end and sets
// the second derivative there to zero, so grid spacing stays smooth across
// region boundaries. The result is linear with no gradients, cubic with one
// and quintic with both.
func PolynomialGridFunc(n int, lower, upper float64, gradLower, gradUpper *float64) func(float64) float64 {
	N := float64(n)
	switch {
	case gradLower == nil && gradUpper == nil:
		return func(i float64) float64 { return lower + (upper-lower)*i/N }

	case gradLower == nil:
		gu := *gradUpper
		d := lower
		c := 3 * (upper - d - 2*gu*N/3) / N
		b := (gu - c) / N
		a := -b / (3 * N)

		return func(i float64) float64 { return ((a*i+b)*i+c)*i + d }

	case gradUpper == nil:
		d := lower
		c := *gradLower
		a := (upper - c*N - d) / (N * N * N)

		return func(i float64) float64 { return (a*i*i+c)*i + d }

	default:
		gu := *gradUpper
		f := lower
		e := *gradLower
		c := 4 * (5*upper/2 - N*gu - 3*e*N/2 - 5*f/2) / (N * N * N)
		b := (gu - 3*c*N*N/2 - e) / (N * N * N)
		a := -(6*b*N + 3*c) / (10 * N * N)

		return func(i float64) float64 { return ((((a*i+b)*i+c)*i)*i+e)*i + f }
	}
}
