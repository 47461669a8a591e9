package kernel

import (
	"math"
	"math/cmplx"

	"github.com/katalvlaran/lvlath-s4/discretize"
	"github.com/katalvlaran/lvlath-s4/matrix"
	"github.com/katalvlaran/lvlath-s4/spectral"
	"github.com/katalvlaran/lvlath-s4/ssmerr"
)

const (
	opGenerate = "Generate"
	opUnrolled = "Unrolled"
)

// Params is a DPLR system diag(Λ) − P·Q* with input B and readout C.
// For HiPPO Q equals P, but the two are kept independent.
type Params struct {
	Lambda []complex128
	P      []complex128
	Q      []complex128
	B      []complex128
	C      []complex128
}

// N returns the state size.
func (p Params) N() int { return len(p.Lambda) }

// Validate reports ssmerr.Shape unless every vector has the same non-zero length.
func (p Params) Validate() error {
	n := len(p.Lambda)
	if n == 0 {
		return ssmerr.New(ssmerr.Shape, "Params.Validate", "empty state")
	}
	if len(p.P) != n || len(p.Q) != n || len(p.B) != n || len(p.C) != n {
		return ssmerr.Errorf(ssmerr.Shape, "Params.Validate",
			"lengths Λ=%d P=%d Q=%d B=%d C=%d", n, len(p.P), len(p.Q), len(p.B), len(p.C))
	}

	return nil
}

// Generate returns K̄ ∈ ℝ^L, the first L samples of the impulse response of
// the bilinear discretization of p with step Δ.
//
// Implementation (MethodDPLR):
//   - Stage 1: Ω_ℓ = exp(−2πi·ℓ/L); g_ℓ = (2/Δ)·(1 − Ω_ℓ)/(1 + Ω_ℓ); c_ℓ = 2/(1 + Ω_ℓ).
//   - Stage 2: k00, k01, k10, k11 = Cauchy sums of conj(C)⊙B, conj(C)⊙P,
//     conj(Q)⊙B and conj(Q)⊙P over g with nodes Λ.
//   - Stage 3: atRoots_ℓ = c_ℓ·(k00_ℓ − k01_ℓ·k10_ℓ/(1 + k11_ℓ)).
//   - Stage 4: K̃ = IFFT(atRoots); K̄ = Re(K̃).
//
// The negative exponent makes IFFT return the samples in causal order.
// A denominator 1 + Ω_ℓ smaller than 1e−12 in magnitude is moved off −1 by
// ε_machine·i.
//
// Errors:
//   - ssmerr.Shape for invalid Params, step ≤ 0 or L < 1.
//   - ssmerr.NonReal when max|Im K̃| exceeds opts.ImagTolerance.
//
// A nil opts selects DefaultOptions.
func Generate(p Params, step float64, L int, opts *Options) ([]float64, error) {
	o := opts.normalized()
	if err := p.Validate(); err != nil {
		return nil, ssmerr.Classify(opGenerate, err)
	}
	if !(step > 0) {
		return nil, ssmerr.Errorf(ssmerr.Shape, opGenerate, "step %g must be positive", step)
	}
	if L < 1 {
		return nil, ssmerr.Errorf(ssmerr.Shape, opGenerate, "length %d must be >= 1", L)
	}

	var (
		samples []complex128
		err     error
	)
	switch o.Method {
	case MethodUnrolled:
		var ssm discretize.SSM
		if ssm, err = discretize.DPLR(p.Lambda, p.P, p.Q, p.B, p.C, step, L); err != nil {
			return nil, ssmerr.Classify(opGenerate, err)
		}
		samples, err = Unrolled(ssm, L)
	default:
		samples, err = atRoots(p, step, L)
		if err == nil {
			samples, err = spectral.IFFT(samples)
		}
	}
	if err != nil {
		return nil, ssmerr.Classify(opGenerate, err)
	}

	if residue := spectral.MaxAbsImag(samples); residue > o.ImagTolerance {
		return nil, ssmerr.Errorf(ssmerr.NonReal, opGenerate,
			"imaginary residue %.3g exceeds %.3g", residue, o.ImagTolerance)
	}

	return spectral.Real(samples), nil
}

// atRoots evaluates the truncated generating function on the L-th roots of unity.
func atRoots(p Params, step float64, L int) ([]complex128, error) {
	g := make([]complex128, L)
	c := make([]complex128, L)
	var omega, den complex128
	for l := 0; l < L; l++ {
		sin, cos := math.Sincos(-2 * math.Pi * float64(l) / float64(L))
		omega = complex(cos, sin)
		den = 1 + omega
		if cmplx.Abs(den) < unitCircleGuard {
			den += complex(0, machineEpsilon)
		}
		g[l] = complex(2/step, 0) * (1 - omega) / den
		c[l] = 2 / den
	}

	cc := spectral.Conj(p.C)
	qc := spectral.Conj(p.Q)
	cB, _ := spectral.Mul(cc, p.B)
	cP, _ := spectral.Mul(cc, p.P)
	qB, _ := spectral.Mul(qc, p.B)
	qP, _ := spectral.Mul(qc, p.P)

	k00, err := spectral.Cauchy(cB, g, p.Lambda)
	if err != nil {
		return nil, err
	}
	k01, err := spectral.Cauchy(cP, g, p.Lambda)
	if err != nil {
		return nil, err
	}
	k10, err := spectral.Cauchy(qB, g, p.Lambda)
	if err != nil {
		return nil, err
	}
	k11, err := spectral.Cauchy(qP, g, p.Lambda)
	if err != nil {
		return nil, err
	}

	out := make([]complex128, L)
	for l := range out {
		out[l] = c[l] * (k00[l] - k01[l]*k10[l]/(1+k11[l]))
	}

	return out, nil
}

// Unrolled returns the complex impulse response K_l = C̄·Ā^l·B̄ for l in [0, L)
// by iterating the recurrence. Errors: ssmerr.Shape for a malformed SSM or L < 1.
func Unrolled(ssm discretize.SSM, L int) ([]complex128, error) {
	if err := ssm.Validate(); err != nil {
		return nil, ssmerr.Classify(opUnrolled, err)
	}
	if L < 1 {
		return nil, ssmerr.Errorf(ssmerr.Shape, opUnrolled, "length %d must be >= 1", L)
	}
	x := ssm.B.Col(0)
	cRow := ssm.C.Row(0)
	out := make([]complex128, L)
	var err error
	for l := 0; l < L; l++ {
		var acc complex128
		for i, ci := range cRow {
			acc += ci * x[i]
		}
		out[l] = acc
		if l+1 < L {
			if x, err = matrix.MatVec(ssm.A, x); err != nil {
				return nil, ssmerr.Classify(opUnrolled, err)
			}
		}
	}

	return out, nil
}
