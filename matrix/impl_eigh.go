// SPDX-License-Identifier: MIT

package matrix

import (
	"math"
	"math/cmplx"
	"slices"
)

// Eigh computes all eigenvalues and eigenvectors of a Hermitian matrix with
// cyclic complex Jacobi rotations.
//
// Only the lower triangle of m is read: the strict upper triangle is taken as
// the conjugate of the lower one and the imaginary parts of the diagonal are
// ignored. This matches the LAPACK "L" convention, so callers may pass a
// matrix that is Hermitian only up to its diagonal (e.g. −i·S with a real
// diagonal in S).
//
// Implementation:
//   - Stage 1: Validate (non-nil, square); build the Hermitian work copy H and
//     reject non-finite entries.
//   - Stage 2: Sweep all pivots (p,q), p<q. For each, rotate column q by the
//     phase that makes H[p,q] real-positive, then apply the real Jacobi
//     rotation that annihilates it. Accumulate V ← V·D·R.
//   - Stage 3: Stop when the off-diagonal Frobenius norm is ≤ tol·‖H‖_F.
//   - Stage 4: Sort eigenvalues ascending (stable), permute V's columns, and fix
//     each column's phase so its first entry with |v| > 1e-12 is real-positive.
//
// Returns:
//   - eigenvalues ascending, and V (columns are orthonormal eigenvectors) such
//     that H·V = V·diag(e).
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare,
//   - ErrMatrixEigenFailed (non-finite input or no convergence within maxSweeps).
//
// Complexity:
//   - Time O(n³) per sweep, Space O(n²).
func Eigh(m Matrix, tol float64, maxSweeps int) ([]float64, *Dense, error) {
	// Stage 1: Validate input and build H from the lower triangle.
	if err := ValidateNotNil(m); err != nil {
		return nil, nil, matrixErrorf(opEigh, err)
	}
	if err := ValidateSquare(m); err != nil {
		return nil, nil, matrixErrorf(opEigh, err)
	}
	src, err := asDense(m)
	if err != nil {
		return nil, nil, matrixErrorf(opEigh, err)
	}
	n := src.r
	h := make([]complex128, n*n)
	var (
		i, j, k int
		v       complex128
	)
	for i = 0; i < n; i++ {
		for j = 0; j <= i; j++ {
			v = src.data[i*n+j]
			if !isFinite(v) {
				return nil, nil, matrixErrorf(opEigh, ErrMatrixEigenFailed)
			}
			if i == j {
				h[i*n+i] = complex(real(v), 0)
				continue
			}
			h[i*n+j] = v
			h[j*n+i] = cmplx.Conj(v)
		}
	}

	vecs, _ := Identity(n)
	vd := vecs.data
	scale := frobenius(h)
	if scale == 0 {
		scale = 1
	}

	// Stage 2–3: cyclic sweeps.
	var (
		p, q, sweep    int
		hpq, d, dc     complex128
		abs, app, aqq  float64
		theta, t, c, s float64
		hkp, hkq       complex128
		converged      bool
	)
	for sweep = 0; sweep <= maxSweeps; sweep++ {
		if offDiagonal(h, n) <= tol*scale {
			converged = true
			break
		}
		if sweep == maxSweeps {
			break
		}
		for p = 0; p < n-1; p++ {
			for q = p + 1; q < n; q++ {
				hpq = h[p*n+q]
				abs = cmplx.Abs(hpq)
				if abs == 0 {
					continue
				}
				// Phase: column q *= d, row q *= conj(d), making H[p,q] = |H[p,q]|.
				d = cmplx.Conj(hpq) / complex(abs, 0)
				dc = cmplx.Conj(d)
				for k = 0; k < n; k++ {
					h[k*n+q] *= d
					vd[k*n+q] *= d
				}
				for k = 0; k < n; k++ {
					h[q*n+k] *= dc
				}
				h[q*n+q] = complex(real(h[q*n+q]), 0)

				// Real Jacobi rotation on (p,q).
				app, aqq = real(h[p*n+p]), real(h[q*n+q])
				theta = (aqq - app) / (2 * abs)
				if math.Abs(theta) > 1e150 {
					t = 1 / (2 * theta)
				} else {
					t = math.Copysign(1.0/(math.Abs(theta)+math.Sqrt(theta*theta+1)), theta)
				}
				c = 1.0 / math.Sqrt(t*t+1)
				s = t * c
				cc, sc := complex(c, 0), complex(s, 0)

				for k = 0; k < n; k++ { // columns p,q
					hkp, hkq = h[k*n+p], h[k*n+q]
					h[k*n+p] = cc*hkp - sc*hkq
					h[k*n+q] = sc*hkp + cc*hkq
					hkp, hkq = vd[k*n+p], vd[k*n+q]
					vd[k*n+p] = cc*hkp - sc*hkq
					vd[k*n+q] = sc*hkp + cc*hkq
				}
				for k = 0; k < n; k++ { // rows p,q
					hkp, hkq = h[p*n+k], h[q*n+k]
					h[p*n+k] = cc*hkp - sc*hkq
					h[q*n+k] = sc*hkp + cc*hkq
				}
				h[p*n+q], h[q*n+p] = 0, 0
				h[p*n+p] = complex(real(h[p*n+p]), 0)
				h[q*n+q] = complex(real(h[q*n+q]), 0)
			}
		}
	}
	if !converged {
		return nil, nil, matrixErrorf(opEigh, ErrMatrixEigenFailed)
	}

	// Stage 4: sort ascending and normalize phases.
	order := make([]int, n)
	for i = range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		ea, eb := real(h[a*n+a]), real(h[b*n+b])
		switch {
		case ea < eb:
			return -1
		case ea > eb:
			return 1
		default:
			return 0
		}
	})

	eigs := make([]float64, n)
	out, _ := NewDense(n, n)
	var (
		src0  int
		phase complex128
	)
	for j = 0; j < n; j++ {
		src0 = order[j]
		eigs[j] = real(h[src0*n+src0])
		phase = 1
		for i = 0; i < n; i++ {
			if abs = cmplx.Abs(vd[i*n+src0]); abs > phaseTolerance {
				phase = cmplx.Conj(vd[i*n+src0]) / complex(abs, 0)
				break
			}
		}
		for i = 0; i < n; i++ {
			out.data[i*n+j] = vd[i*n+src0] * phase
		}
		// The anchor entry is real-positive by construction; drop rounding residue.
		for i = 0; i < n; i++ {
			if abs = cmplx.Abs(out.data[i*n+j]); abs > phaseTolerance {
				out.data[i*n+j] = complex(abs, 0)
				break
			}
		}
	}

	return eigs, out, nil
}

// frobenius returns ‖h‖_F over a flat buffer.
func frobenius(h []complex128) float64 {
	var sum float64
	for _, v := range h {
		sum += real(v)*real(v) + imag(v)*imag(v)
	}

	return math.Sqrt(sum)
}

// offDiagonal returns the Frobenius norm of the strictly off-diagonal part.
func offDiagonal(h []complex128, n int) float64 {
	var sum float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				v := h[i*n+j]
				sum += real(v)*real(v) + imag(v)*imag(v)
			}
		}
	}

	return math.Sqrt(sum)
}
