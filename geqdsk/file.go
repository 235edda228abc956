package geqdsk

import "github.com/katalvlaran/fluxgrid/matrix"

// File is the content of a G-EQDSK file. Profiles are sampled on NW points
// uniformly spaced in psi from SiMagx to SiBdry.
type File struct {
	Description string
	IDum        int
	NW, NH      int

	RDim, ZDim   float64
	RCentr       float64
	RLeft, ZMid  float64
	RMagx, ZMagx float64
	// SiMagx and SiBdry are psi at the magnetic axis and the boundary.
	SiMagx, SiBdry float64
	BCentr         float64
	Current        float64

	Fpol, Pres, FFPrime, PPrime []float64

	// Psi is NW x NH with Psi[i][j] = psi(RGrid()[i], ZGrid()[j]).
	Psi *matrix.Dense

	QPsi []float64

	RBoundary, ZBoundary []float64
	RLimiter, ZLimiter   []float64
}

func linspace(a, b float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = a
		return out
	}
	for i := range out {
		out[i] = a + (b-a)*float64(i)/float64(n-1)
	}

	return out
}

// RGrid returns the NW major-radius grid points.
func (f *File) RGrid() []float64 { return linspace(f.RLeft, f.RLeft+f.RDim, f.NW) }

// ZGrid returns the NH vertical grid points.
func (f *File) ZGrid() []float64 {
	return linspace(f.ZMid-0.5*f.ZDim, f.ZMid+0.5*f.ZDim, f.NH)
}

// PsiGrid returns the NW psi values the profiles are sampled on.
func (f *File) PsiGrid() []float64 { return linspace(f.SiMagx, f.SiBdry, f.NW) }

// PsiNGrid returns PsiGrid normalised to 0 on axis and 1 at the boundary.
func (f *File) PsiNGrid() []float64 { return linspace(0, 1, f.NW) }
