package discretize

import (
	"math/cmplx"

	"github.com/katalvlaran/lvlath-s4/matrix"
	"github.com/katalvlaran/lvlath-s4/spectral"
	"github.com/katalvlaran/lvlath-s4/ssmerr"
)

// DPLR discretizes A = diag(Λ) − p·q* with the bilinear transform, using the
// diagonal structure of Λ and one Woodbury correction instead of a general
// inverse:
//
//	A0 = (2/Δ)·I + A
//	D  = diag(1 / ((2/Δ) − Λ))
//	A1 = D − D·p·(1 + q*·D·p)⁻¹·q*·D          = ((2/Δ)·I − A)⁻¹
//	Ā = A1·A0
//	B̄ = 2·A1·B
//	C̄ = conj(C)·(I − Ā^L)⁻¹
//
// C is the truncation-corrected readout C̃ used by the kernel generator, so the
// first L samples of the impulse response of (Ā, B̄, C̄) match the generated
// kernel.
//
// Errors:
//   - ssmerr.Shape when the vectors disagree in length, are empty, step ≤ 0
//     or L < 1.
//   - ssmerr.Singular when the Woodbury scalar vanishes or I − Ā^L is singular.
//
// Complexity: O(N²) for A1, O(N³·log L) for Ā^L and its inverse.
func DPLR(lambda, p, q, b, c []complex128, step float64, L int) (SSM, error) {
	n := len(lambda)
	if n == 0 {
		return SSM{}, ssmerr.New(ssmerr.Shape, opDPLR, "empty state")
	}
	if len(p) != n || len(q) != n || len(b) != n || len(c) != n {
		return SSM{}, ssmerr.Errorf(ssmerr.Shape, opDPLR,
			"lengths Λ=%d p=%d q=%d B=%d C=%d", n, len(p), len(q), len(b), len(c))
	}
	if !(step > 0) {
		return SSM{}, ssmerr.Errorf(ssmerr.Shape, opDPLR, "step %g must be positive", step)
	}
	if L < 1 {
		return SSM{}, ssmerr.Errorf(ssmerr.Shape, opDPLR, "length %d must be >= 1", L)
	}

	two := complex(2/step, 0)
	d := make([]complex128, n)
	for i, l := range lambda {
		d[i] = 1 / (two - l)
	}
	s := complex(1, 0)
	for i := range d {
		s += cmplx.Conj(q[i]) * d[i] * p[i]
	}
	if s == 0 {
		return SSM{}, ssmerr.New(ssmerr.Singular, opDPLR, "Woodbury denominator is zero")
	}

	a0, _ := matrix.NewDense(n, n)
	a1, _ := matrix.NewDense(n, n)
	var v complex128
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v = -p[i] * cmplx.Conj(q[j])
			if i == j {
				v += two + lambda[i]
			}
			_ = a0.Set(i, j, v)

			v = -d[i] * p[i] * cmplx.Conj(q[j]) * d[j] / s
			if i == j {
				v += d[i]
			}
			_ = a1.Set(i, j, v)
		}
	}

	ab, err := matrix.Mul(a1, a0)
	if err != nil {
		return SSM{}, ssmerr.Classify(opDPLR, err)
	}
	bv, err := matrix.MatVec(a1, b)
	if err != nil {
		return SSM{}, ssmerr.Classify(opDPLR, err)
	}
	for i := range bv {
		bv[i] *= 2
	}
	bb, err := matrix.ColVector(bv)
	if err != nil {
		return SSM{}, ssmerr.Classify(opDPLR, err)
	}

	abL, err := matrix.MatPow(ab, L)
	if err != nil {
		return SSM{}, ssmerr.Classify(opDPLR, err)
	}
	id, _ := matrix.Identity(n)
	x, err := matrix.Sub(id, abL)
	if err != nil {
		return SSM{}, ssmerr.Classify(opDPLR, err)
	}
	xinv, err := matrix.Inverse(x)
	if err != nil {
		return SSM{}, ssmerr.Classify(opDPLR, err)
	}
	crow, err := matrix.RowVector(spectral.Conj(c))
	if err != nil {
		return SSM{}, ssmerr.Classify(opDPLR, err)
	}
	cb, err := matrix.Mul(crow, xinv)
	if err != nil {
		return SSM{}, ssmerr.Classify(opDPLR, err)
	}

	return SSM{A: ab, B: bb, C: cb}, nil
}
