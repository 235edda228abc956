package mesh

import (
	"fmt"
	"math"

	"github.com/katalvlaran/fluxgrid/config"
	"github.com/katalvlaran/fluxgrid/equilibrium"
	"go.uber.org/zap"
)

// geometry computes psi, the grid spacings, the magnetic field and the
// poloidal scale factor hy. Rxy and Zxy must be filled.
func (r *Region) geometry() error {
	eq := r.mesh.Equilibrium
	r.Psixy = pointwise(r.Rxy, r.Zxy, eq.Field.Psi)

	r.BpSign = 1
	if r.PsiVals[0] > r.PsiVals[len(r.PsiVals)-1] {
		r.BpSign = -1
	}
	r.Dx = r.calcDx()
	r.Dy = NewMultiLocationArray(r.NX, r.NY).Fill(r.mesh.dy)

	r.Brxy = pointwise(r.Rxy, r.Zxy, eq.BpR)
	r.Bzxy = pointwise(r.Rxy, r.Zxy, eq.BpZ)
	r.Bpxy = quadrature(r.Brxy, r.Bzxy)
	if err := r.checkBpSign(); err != nil {
		return err
	}

	r.Btxy, _ = Div(r.Psixy.Map(eq.Fpol), r.Rxy)
	r.Bxy = quadrature(r.Bpxy, r.Btxy)

	hy, err := r.calcHy()
	if err != nil {
		return err
	}
	r.Hy = hy
	r.calcBeta()
	// toroidal angle advanced per unit y along a field line
	hyBt, _ := Mul(r.Hy, r.Btxy)
	bpR, _ := Mul(r.Bpxy, r.Rxy)
	r.Dphidy, _ = Div(hyBt, bpR)

	return nil
}

// calcDx returns dx = BpSign*dpsi, so that x increases across the grid. Face
// spacings at an x boundary use the neighbouring region when connected.
func (r *Region) calcDx() *MultiLocationArray {
	p := r.PsiVals
	cell := func(i int) float64 { return p[2*i+2] - p[2*i] }
	face := func(i int) float64 {
		switch {
		case i > 0 && i < r.NX:
			return p[2*i+1] - p[2*i-1]
		case i == 0:
			h := p[1] - p[0]
			if in := r.Neighbour(Inner); in != nil {
				q := in.PsiVals
				return h + q[len(q)-1] - q[len(q)-2]
			}
			return 2 * h
		default:
			h := p[2*r.NX] - p[2*r.NX-1]
			if out := r.Neighbour(Outer); out != nil {
				return h + out.PsiVals[1] - out.PsiVals[0]
			}
			return 2 * h
		}
	}

	dx := NewMultiLocationArray(r.NX, r.NY)
	for _, l := range Locations {
		m := dx.alloc(l)
		for i := 0; i < m.Rows(); i++ {
			v := cell
			if l == XLow || l == Corners {
				v = face
			}
			row := m.Row(i)
			d := r.BpSign * v(i)
			for j := range row {
				row[j] = d
			}
		}
	}

	return dx
}

// checkBpSign compares Bp with the direction of increasing y on the outer
// row at mid-region. Bp is negated when they are opposed, which must agree
// with BpSign.
func (r *Region) checkBpSign() error {
	i, j := r.NX-1, r.NY/2
	R, Z := r.Rxy.At(YLow).Row(i), r.Zxy.At(YLow).Row(i)
	dot := r.Brxy.At(Centre).Row(i)[j]*(R[j+1]-R[j]) + r.Bzxy.At(Centre).Row(i)[j]*(Z[j+1]-Z[j])
	if dot < 0 {
		r.mesh.logger.Debug("poloidal field opposes grad y, Bp negative", zap.String("region", r.Name))
		r.Bpxy = r.Bpxy.Neg()
		if r.BpSign > 0 {
			return fmt.Errorf("region %s: Bp against grad y but psi increases with x: %w", r.Name, ErrBpSign)
		}

		return nil
	}
	if r.BpSign < 0 {
		return fmt.Errorf("region %s: Bp along grad y but psi decreases with x: %w", r.Name, ErrBpSign)
	}

	return nil
}

// calcHy returns hy = dl/dy, the poloidal distance per unit y, from the
// contour distances. Faces at a y boundary use the neighbouring region when
// connected and otherwise assume the spacing continues unchanged.
func (r *Region) calcHy() (*MultiLocationArray, error) {
	below, above := r.Neighbour(Lower), r.Neighbour(Upper)
	hy := NewMultiLocationArray(r.NX, r.NY)
	for _, l := range Locations {
		m := hy.alloc(l)
		off := 1
		if l == XLow || l == Corners {
			off = 0
		}
		for i := 0; i < m.Rows(); i++ {
			ci := 2*i + off
			d := r.distances[ci]
			row := m.Row(i)
			if l == Centre || l == XLow {
				for j := range row {
					row[j] = d[2*j+2] - d[2*j]
				}
				continue
			}
			for j := 1; j < r.NY; j++ {
				row[j] = d[2*j+1] - d[2*j-1]
			}
			if below != nil {
				db := below.distances[ci]
				row[0] = d[1] - d[0] + db[len(db)-1] - db[len(db)-2]
			} else {
				row[0] = 2 * (d[1] - d[0])
			}
			n := len(d)
			if above != nil {
				da := above.distances[ci]
				row[r.NY] = d[n-1] - d[n-2] + da[1] - da[0]
			} else {
				row[r.NY] = 2 * (d[n-1] - d[n-2])
			}
		}
		m.Apply(func(_, _ int, v float64) float64 { return v / r.mesh.dy })
		var bad error
		m.Do(func(i, j int, v float64) {
			if bad == nil && !(v > 0) {
				bad = fmt.Errorf("region %s: hy.%s[%d,%d]=%g: %w", r.Name, l, i, j, v, ErrNonPositiveHy)
			}
		})
		if bad != nil {
			return nil, bad
		}
	}

	return hy, nil
}

// calcZShift integrates dphidy along y with the trapezoid rule over centre
// and ylow points (xlow and corner points for the staggered field lines).
// It runs from the first region of each y-group and carries the result
// through the group. A periodic group stops when it returns to its start.
func (r *Region) calcZShift() {
	if r.yGroupIndex != 0 {
		return
	}
	region := r
	region.ZShift = NewMultiLocationArray(r.NX, r.NY).Zero()
	for {
		region.integrateZShift(Centre, YLow)
		region.integrateZShift(XLow, Corners)
		next := region.Neighbour(Upper)
		if next == nil || next.yGroupIndex == 0 {
			return
		}
		next.ZShift = NewMultiLocationArray(next.NX, next.NY).Zero()
		for _, l := range []Location{YLow, Corners} {
			src, dst := region.ZShift.At(l), next.ZShift.At(l)
			for i := 0; i < dst.Rows(); i++ {
				dst.Row(i)[0] = src.Row(i)[region.NY]
			}
		}
		region = next
	}
}

// integrateZShift fills zShift at cell and face from its value at the first
// face.
func (r *Region) integrateZShift(cell, face Location) {
	f, dy := r.Dphidy, r.Dy.At(cell)
	zc, zf := r.ZShift.At(cell), r.ZShift.At(face)
	for i := 0; i < zc.Rows(); i++ {
		fc, ff, h := f.At(cell).Row(i), f.At(face).Row(i), dy.Row(i)
		c, fa := zc.Row(i), zf.Row(i)
		for j := range c {
			c[j] = fa[j] + 0.25*(ff[j]+fc[j])*h[j]
			fa[j+1] = c[j] + 0.25*(fc[j]+ff[j+1])*h[j]
		}
	}
}

// calcMetric computes the metric tensor, the Jacobian and the curvature.
// zShift=0 is chosen independently at each y, so the integrated shear I
// vanishes.
func (r *Region) calcMetric() error {
	o := r.mesh.Options
	if !o.ShiftedMetric {
		return fmt.Errorf("region %s: %w", r.Name, ErrShiftedMetric)
	}
	zero := func() *MultiLocationArray { return NewMultiLocationArray(r.NX, r.NY).Zero() }
	r.I = zero()
	st, err := r.DDX(func(q *Region) *MultiLocationArray { return q.Dphidy })
	if err != nil {
		return fmt.Errorf("region %s: ShiftTorsion: %w", r.Name, err)
	}
	r.ShiftTorsion = st

	R, hy, nu := r.Rxy, r.Hy, r.Dphidy
	R2 := R.Pow(2)
	RBp, _ := Mul(R, r.Bpxy)
	absRBp := RBp.Map(math.Abs)
	cosB, tanB := r.Beta.Map(math.Cos), r.Beta.Map(math.Tan)
	hyCos, _ := Mul(hy, cosB)
	nuOverHyCos, _ := Div(nu, hyCos)
	Rnu, _ := Mul(R, nu)
	tanOverHy, _ := Div(tanB, hy)
	cross, _ := Mul(absRBp, tanOverHy)

	// x = BpSign*psi, y along the contours with grid lines at angle Beta
	// from grad(psi), z = phi - zShift.
	r.G11 = RBp.Pow(2)
	r.G22 = hyCos.Pow(-2)
	r.G33, _ = Add(nuOverHyCos.Pow(2), R.Pow(-2))
	r.G12 = cross.Neg()
	r.G13, _ = Mul(nu, cross)
	r.G23, _ = Div(nu, hyCos.Pow(2))
	r.G23 = r.G23.Neg()

	r.J, _ = Div(hy, r.Bpxy)

	rbpCos, _ := Mul(absRBp, cosB)
	hyTan, _ := Mul(hy, tanB)
	r.G_11 = rbpCos.Pow(-2)
	r.G_22, _ = Add(hy.Pow(2), Rnu.Pow(2))
	r.G_33 = R2
	r.G_12, _ = Div(hyTan, absRBp)
	r.G_13 = zero()
	r.G_23, _ = Mul(nu, R2)

	if err := r.checkJacobian(); err != nil {
		return err
	}

	return r.calcCurvature()
}

// checkJacobian compares J with 1/sqrt(det g^ij). X-point corners, where
// Bp vanishes, are skipped.
func (r *Region) checkJacobian() error {
	jcheck, _ := Apply(func(v []float64) float64 {
		g11, g22, g33, g12, g13, g23 := v[0], v[1], v[2], v[3], v[4], v[5]
		det := g11*g22*g33 + 2*g12*g13*g23 - g11*g23*g23 - g22*g13*g13 - g33*g12*g12

		return r.BpSign / math.Sqrt(det)
	}, r.G11, r.G22, r.G33, r.G12, r.G13, r.G23)
	skip := make(map[[2]int]bool)
	for _, c := range r.xPointCorners() {
		skip[[2]int{c.i, c.j}] = true
	}
	rtol := r.mesh.Options.GeometryRtol
	for _, l := range Locations {
		J, Jc := r.J.At(l), jcheck.At(l)
		var bad error
		J.Do(func(i, j int, v float64) {
			if bad != nil || (l == Corners && skip[[2]int{i, j}]) {
				return
			}
			c := Jc.Row(i)[j]
			if !(math.Abs(v-c) < rtol*math.Abs(v)) {
				bad = fmt.Errorf("region %s: J.%s[%d,%d]=%g, 1/sqrt(g)=%g: %w", r.Name, l, i, j, v, c, ErrJacobian)
			}
		})
		if bad != nil {
			return bad
		}
	}

	return nil
}

// calcCurvature evaluates curl(b/B) from the analytic field derivatives in
// (R, Z, phi) and projects it onto the contravariant x, y, z directions.
func (r *Region) calcCurvature() error {
	o := r.mesh.Options
	if o.CurvatureType != config.CurvatureCurlBOverB {
		return fmt.Errorf("region %s: curvature_type %q: %w", r.Name, o.CurvatureType, ErrCurvatureType)
	}
	eq := r.mesh.Equilibrium
	r.CurlBOverBX = NewMultiLocationArray(r.NX, r.NY)
	r.CurlBOverBY = NewMultiLocationArray(r.NX, r.NY)
	r.CurlBOverBZ = NewMultiLocationArray(r.NX, r.NY)
	for _, l := range Locations {
		R, Z := r.Rxy.At(l).Data(), r.Zxy.At(l).Data()
		bp, hy, nu := r.Bpxy.At(l).Data(), r.Hy.At(l).Data(), r.Dphidy.At(l).Data()
		beta := r.Beta.At(l).Data()
		cx, cy, cz := r.CurlBOverBX.alloc(l).Data(), r.CurlBOverBY.alloc(l).Data(), r.CurlBOverBZ.alloc(l).Data()
		for k := range R {
			cR, cZ, cphi := curlBOverB(eq, R[k], Z[k])
			dR, dZ := eq.Field.DPsiDR(R[k], Z[k]), eq.Field.DPsiDZ(R[k], Z[k])
			BR, BZ := eq.BpR(R[k], Z[k]), eq.BpZ(R[k], Z[k])
			cx[k] = r.BpSign * (cR*dR + cZ*dZ)
			cy[k] = ((cR*BR+cZ*BZ)/bp[k] - math.Tan(beta[k])*cx[k]/math.Abs(R[k]*bp[k])) / hy[k]
			cz[k] = cphi/R[k] - nu[k]*cy[k]
		}
	}
	half := func(c *MultiLocationArray) *MultiLocationArray {
		out, _ := Mul(r.Bxy, c)
		return out.Scale(0.5)
	}
	r.Bxcvx = half(r.CurlBOverBX)
	r.Bxcvy = half(r.CurlBOverBY)
	r.Bxcvz = half(r.CurlBOverBZ)

	return nil
}

// quadrature returns sqrt(a^2 + b^2).
func quadrature(a, b *MultiLocationArray) *MultiLocationArray {
	sum, _ := Add(a.Pow(2), b.Pow(2))

	return sum.Sqrt()
}

// curlBOverB returns the (R, Z, phi) components of curl(b/B) at (R, Z).
func curlBOverB(eq *equilibrium.Equilibrium, R, Z float64) (cR, cZ, cphi float64) {
	psi := eq.Field.Psi(R, Z)
	f, fp := eq.Fpol(psi), eq.FpolPrime(psi)
	BR, BZ := eq.BpR(R, Z), eq.BpZ(R, Z)
	psiRR, psiZZ, psiRZ := eq.Field.D2PsiDR2(R, Z), eq.Field.D2PsiDZ2(R, Z), eq.Field.D2PsiDRDZ(R, Z)

	Bphi := f / R
	B2 := BR*BR + BZ*BZ + Bphi*Bphi
	dB2dR := -2/R*B2 + 2/R*(-BZ*psiRR+BR*psiRZ-f*fp*BZ)
	dB2dZ := 2 / R * (-BZ*psiRZ + BR*psiZZ + f*fp*BR)
	dBphidR := -fp*BZ - f/(R*R)
	dBphidZ := fp * BR
	dBZdR := -psiRR/R - BZ/R
	dBRdZ := psiZZ / R

	cR = dBphidZ/B2 - Bphi/(B2*B2)*dB2dZ
	cZ = -dBphidR/B2 + Bphi/(B2*B2)*dB2dR
	cphi = dBZdR/B2 - BZ/(B2*B2)*dB2dR - dBRdZ/B2 + BR/(B2*B2)*dB2dZ

	return cR, cZ, cphi
}
