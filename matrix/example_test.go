package matrix_test

import (
	"fmt"

	"github.com/katalvlaran/fluxgrid/matrix"
)

// ExampleSolve solves a 2×2 Newton step of the kind used to polish critical points.
func ExampleSolve() {
	jac, _ := matrix.NewDenseFrom([][]float64{{4, 1}, {1, 3}})
	x, _ := matrix.Solve(jac, []float64{1, 2})
	fmt.Printf("%.4f %.4f\n", x[0], x[1])
	// Output: 0.0909 0.6364
}
