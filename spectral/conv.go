package spectral

import "fmt"

// Conv is a causal convolution with a fixed real kernel K of length L.
// The zero-padded spectrum of K is computed once; Apply then costs one
// forward and one inverse transform of length 2L.
//
// A Conv is owned by one caller: its Plan carries scratch space.
type Conv struct {
	length   int
	kernel   []float64
	spectrum []complex128
	plan     *Plan
}

// NewConv precomputes the spectrum of kernel zero-padded to 2·len(kernel).
func NewConv(kernel []float64) (*Conv, error) {
	L := len(kernel)
	if L == 0 {
		return nil, fmt.Errorf("NewConv: %w", ErrEmpty)
	}
	plan, err := NewPlan(2 * L)
	if err != nil {
		return nil, fmt.Errorf("NewConv: %w", err)
	}
	padded := make([]complex128, 2*L)
	for i, k := range kernel {
		padded[i] = complex(k, 0)
	}
	spec, err := plan.Forward(padded)
	if err != nil {
		return nil, fmt.Errorf("NewConv: %w", err)
	}
	kcopy := make([]float64, L)
	copy(kcopy, kernel)

	return &Conv{length: L, kernel: kcopy, spectrum: spec, plan: plan}, nil
}

// Len returns L.
func (c *Conv) Len() int { return c.length }

// Kernel returns a copy of K.
func (c *Conv) Kernel() []float64 {
	out := make([]float64, c.length)
	copy(out, c.kernel)

	return out
}

// Apply returns y_t = Σ_{s≤t} K_{t−s}·u_s for t in [0, L).
//
// Implementation:
//   - Stage 1: zero-pad u to 2L so the circular product has no wrap-around.
//   - Stage 2: multiply spectra, inverse-transform, keep the first L real parts.
//
// Errors: ErrLengthMismatch when len(u) != L.
func (c *Conv) Apply(u []float64) ([]float64, error) {
	if len(u) != c.length {
		return nil, fmt.Errorf("Conv.Apply: len(u)=%d, L=%d: %w", len(u), c.length, ErrLengthMismatch)
	}
	padded := make([]complex128, 2*c.length)
	for i, x := range u {
		padded[i] = complex(x, 0)
	}
	uf, err := c.plan.Forward(padded)
	if err != nil {
		return nil, fmt.Errorf("Conv.Apply: %w", err)
	}
	for i := range uf {
		uf[i] *= c.spectrum[i]
	}
	y, err := c.plan.Inverse(uf)
	if err != nil {
		return nil, fmt.Errorf("Conv.Apply: %w", err)
	}

	return Real(y[:c.length]), nil
}

// CausalConv1D is the one-shot form of NewConv(k).Apply(u); u and k must
// have the same length L.
func CausalConv1D(u, k []float64) ([]float64, error) {
	if len(u) != len(k) {
		return nil, fmt.Errorf("CausalConv1D: len(u)=%d len(k)=%d: %w", len(u), len(k), ErrLengthMismatch)
	}
	c, err := NewConv(k)
	if err != nil {
		return nil, fmt.Errorf("CausalConv1D: %w", err)
	}

	return c.Apply(u)
}
