package kernel

// Method selects how Generate obtains the kernel samples.
//
//   - MethodDPLR    : generating function on the roots of unity, four Cauchy
//     sums and one inverse FFT. O(N·L + L log L).
//   - MethodUnrolled: discretize, then read K_l = C̄·Ā^l·B̄ off the recurrence.
//     O(N³ log L + N²·L). Used as a reference.
type Method int

const (
	// MethodDPLR is the default fast path.
	MethodDPLR Method = iota

	// MethodUnrolled powers the discrete system explicitly.
	MethodUnrolled
)

// String returns the flag spelling of m.
func (m Method) String() string {
	switch m {
	case MethodDPLR:
		return "dplr"
	case MethodUnrolled:
		return "unrolled"
	default:
		return "unknown"
	}
}

// ParseMethod is the inverse of Method.String.
func ParseMethod(s string) (Method, bool) {
	switch s {
	case "dplr":
		return MethodDPLR, true
	case "unrolled":
		return MethodUnrolled, true
	default:
		return 0, false
	}
}

// DefaultImagTolerance bounds max|Im K̃_l| before a kernel is rejected as non-real.
const DefaultImagTolerance = 1e-6

// unitCircleGuard is the |1 + Ω| below which the denominator is nudged off −1.
const unitCircleGuard = 1e-12

// machineEpsilon is the float64 unit roundoff used for the nudge.
const machineEpsilon = 2.220446049250313e-16

// Options configures Generate.
//
// Fields:
//   - Method       : MethodDPLR (default) or MethodUnrolled.
//   - ImagTolerance: largest accepted imaginary residue; values ≤ 0 select
//     DefaultImagTolerance.
//
// Example:
//
//	opts := kernel.DefaultOptions()
//	opts.Method = kernel.MethodUnrolled
//	k, err := kernel.Generate(params, 0.1, 16, &opts)
type Options struct {
	Method        Method
	ImagTolerance float64
}

// DefaultOptions returns the options used when Generate receives nil.
func DefaultOptions() Options {
	return Options{Method: MethodDPLR, ImagTolerance: DefaultImagTolerance}
}

func (o *Options) normalized() Options {
	if o == nil {
		return DefaultOptions()
	}
	out := *o
	if !(out.ImagTolerance > 0) {
		out.ImagTolerance = DefaultImagTolerance
	}

	return out
}
