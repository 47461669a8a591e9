package spectral

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

var (
	// ErrEmpty indicates a zero-length input sequence.
	ErrEmpty = errors.New("spectral: sequence must be non-empty")

	// ErrLengthMismatch indicates operands whose lengths must agree but do not.
	ErrLengthMismatch = errors.New("spectral: length mismatch")
)

// CauchyFloor is the denominator magnitude below which Cauchy treats ω−λ as
// the smallest representable non-zero value.
const CauchyFloor = 1e-30

// Conj returns the elementwise complex conjugate of v in a new slice.
func Conj(v []complex128) []complex128 {
	out := make([]complex128, len(v))
	for i, x := range v {
		out[i] = cmplx.Conj(x)
	}

	return out
}

// Mul returns the elementwise product a ⊙ b.
func Mul(a, b []complex128) ([]complex128, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("Mul: %d vs %d: %w", len(a), len(b), ErrLengthMismatch)
	}
	out := make([]complex128, len(a))
	for i := range a {
		out[i] = a[i] * b[i]
	}

	return out, nil
}

// Lift returns u as a complex sequence with zero imaginary parts.
func Lift(u []float64) []complex128 {
	out := make([]complex128, len(u))
	for i, x := range u {
		out[i] = complex(x, 0)
	}

	return out
}

// Real returns the real parts of v.
func Real(v []complex128) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = real(x)
	}

	return out
}

// MaxAbsImag returns max_i |Im v_i| (0 for an empty slice).
func MaxAbsImag(v []complex128) float64 {
	if len(v) == 0 {
		return 0
	}
	im := make([]float64, len(v))
	for i, x := range v {
		im[i] = imag(x)
	}

	return floats.Norm(im, math.Inf(1))
}

// Cauchy evaluates c_ℓ = Σ_n v_n / (ω_ℓ − λ_n) for every ω_ℓ.
//
// Denominators with |ω_ℓ − λ_n| < CauchyFloor are replaced by CauchyFloor;
// callers keep ω on (or mapped from) the unit circle and λ
// in the open left half-plane, so this only guards exact collisions.
//
// Errors: ErrEmpty when v or omega is empty, ErrLengthMismatch when
// len(v) != len(lambda).
//
// Complexity: O(N·L) time, O(L) space. No N×L matrix is formed.
func Cauchy(v, omega, lambda []complex128) ([]complex128, error) {
	if len(v) == 0 || len(omega) == 0 {
		return nil, fmt.Errorf("Cauchy: %w", ErrEmpty)
	}
	if len(v) != len(lambda) {
		return nil, fmt.Errorf("Cauchy: len(v)=%d len(lambda)=%d: %w", len(v), len(lambda), ErrLengthMismatch)
	}
	out := make([]complex128, len(omega))
	var (
		acc, den complex128
		floor    = complex(CauchyFloor, 0)
	)
	for l, w := range omega {
		acc = 0
		for n, vn := range v {
			den = w - lambda[n]
			if cmplx.Abs(den) < CauchyFloor {
				den = floor
			}
			acc += vn / den
		}
		out[l] = acc
	}

	return out, nil
}

// Plan is a reusable transform of one fixed length. A Plan owns scratch
// buffers and is not safe for concurrent use; give each goroutine its own.
type Plan struct {
	n   int
	fft *fourier.CmplxFFT
}

// NewPlan prepares transforms of length n (any positive integer).
func NewPlan(n int) (*Plan, error) {
	if n <= 0 {
		return nil, fmt.Errorf("NewPlan(%d): %w", n, ErrEmpty)
	}

	return &Plan{n: n, fft: fourier.NewCmplxFFT(n)}, nil
}

// Len returns the transform length.
func (p *Plan) Len() int { return p.n }

// Forward computes X_k = Σ_n x_n·exp(−2πi·kn/N).
func (p *Plan) Forward(x []complex128) ([]complex128, error) {
	if len(x) != p.n {
		return nil, fmt.Errorf("Forward: len %d, plan %d: %w", len(x), p.n, ErrLengthMismatch)
	}

	return p.fft.Coefficients(nil, x), nil
}

// Inverse computes x_n = (1/N)·Σ_k X_k·exp(+2πi·kn/N), so that
// Inverse(Forward(x)) == x up to rounding.
func (p *Plan) Inverse(x []complex128) ([]complex128, error) {
	if len(x) != p.n {
		return nil, fmt.Errorf("Inverse: len %d, plan %d: %w", len(x), p.n, ErrLengthMismatch)
	}
	out := p.fft.Sequence(nil, x)
	scale := complex(1/float64(p.n), 0)
	for i := range out {
		out[i] *= scale
	}

	return out, nil
}

// FFT is the one-shot forward transform of x.
func FFT(x []complex128) ([]complex128, error) {
	p, err := NewPlan(len(x))
	if err != nil {
		return nil, fmt.Errorf("FFT: %w", err)
	}

	return p.Forward(x)
}

// IFFT is the one-shot, 1/N-normalized inverse transform of x.
func IFFT(x []complex128) ([]complex128, error) {
	p, err := NewPlan(len(x))
	if err != nil {
		return nil, fmt.Errorf("IFFT: %w", err)
	}

	return p.Inverse(x)
}
