package hippo

import (
	"math/cmplx"

	"github.com/katalvlaran/lvlath-s4/matrix"
	"github.com/katalvlaran/lvlath-s4/ssmerr"
)

// DPLRTuple is the Diagonal-Plus-Low-Rank form of HiPPO-LegS in the
// eigenbasis of its normal part:
//
//	A = V·(diag(Λ) − P·P*)·V*
//
// Lambda holds the eigenvalues of S = A + P₀·P₀ᵀ (shared real part, spread
// imaginary parts), P and B are the NPLR vectors rotated by V*, and V is
// unitary. The tuple is immutable after construction; share it by value.
type DPLRTuple struct {
	Lambda []complex128
	P      []complex128
	B      []complex128
	V      *matrix.Dense
}

// N returns the state size.
func (d DPLRTuple) N() int { return len(d.Lambda) }

// DPLR reduces HiPPO-LegS of size n to DPLR form.
//
// Implementation:
//   - Stage 1: (A, P, B) = NPLR(n); S = A + P·Pᵀ.
//   - Stage 2: Λ_re = mean(diag S), shared by every eigenvalue.
//   - Stage 3: (e, V) = Eigh(−i·S) (lower triangle; ascending; first non-zero
//     entry of each eigenvector real-positive).
//   - Stage 4: Λ = Λ_re + i·e; P' = V*·P; B' = V*·B.
//
// Errors:
//   - ssmerr.Shape for n < 1.
//   - ssmerr.Decomposition when Eigh fails. There is no fallback that could
//     silently change the spectrum.
//
// Complexity: O(N³) per Jacobi sweep.
func DPLR(n int) (DPLRTuple, error) {
	nplr, err := NPLR(n)
	if err != nil {
		return DPLRTuple{}, ssmerr.Classify(opDPLR, err)
	}
	s, err := nplr.Normal()
	if err != nil {
		return DPLRTuple{}, ssmerr.Classify(opDPLR, err)
	}

	var mean float64
	for _, v := range s.Diagonal() {
		mean += real(v)
	}
	mean /= float64(n)

	h, err := matrix.Scale(s, complex(0, -1))
	if err != nil {
		return DPLRTuple{}, ssmerr.Classify(opDPLR, err)
	}
	e, v, err := matrix.Eigh(h, matrix.DefaultEighTolerance, matrix.DefaultEighMaxSweeps)
	if err != nil {
		return DPLRTuple{}, ssmerr.Wrap(ssmerr.Decomposition, opDPLR, err)
	}

	lambda := make([]complex128, n)
	for i, im := range e {
		lambda[i] = complex(mean, im)
	}
	vh, err := matrix.ConjTranspose(v)
	if err != nil {
		return DPLRTuple{}, ssmerr.Classify(opDPLR, err)
	}
	p, err := matrix.MatVec(vh, toComplex(nplr.P))
	if err != nil {
		return DPLRTuple{}, ssmerr.Classify(opDPLR, err)
	}
	b, err := matrix.MatVec(vh, toComplex(nplr.B))
	if err != nil {
		return DPLRTuple{}, ssmerr.Classify(opDPLR, err)
	}

	return DPLRTuple{Lambda: lambda, P: p, B: b, V: v}, nil
}

// Reconstruct returns V·(diag(Λ) − P·P*)·V*, which equals HiPPO(N) up to
// rounding for a tuple produced by DPLR.
func (d DPLRTuple) Reconstruct() (*matrix.Dense, error) {
	n := d.N()
	core, err := matrix.Diag(d.Lambda)
	if err != nil {
		return nil, ssmerr.Classify("Reconstruct", err)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v, _ := core.At(i, j)
			_ = core.Set(i, j, v-d.P[i]*cmplx.Conj(d.P[j]))
		}
	}
	left, err := matrix.Mul(d.V, core)
	if err != nil {
		return nil, ssmerr.Classify("Reconstruct", err)
	}
	vh, err := matrix.ConjTranspose(d.V)
	if err != nil {
		return nil, ssmerr.Classify("Reconstruct", err)
	}
	out, err := matrix.Mul(left, vh)
	if err != nil {
		return nil, ssmerr.Classify("Reconstruct", err)
	}

	return out, nil
}

func toComplex(x []float64) []complex128 {
	out := make([]complex128, len(x))
	for i, v := range x {
		out[i] = complex(v, 0)
	}

	return out
}
