// Package spectral holds the sequence-level helpers of the S4 kernel path:
// conjugation, Cauchy sums, forward/inverse FFT of arbitrary length, and
// FFT-based causal convolution.
//
// Transforms are backed by gonum's dsp/fourier CmplxFFT. Conventions:
//
//	FFT:  X_k = Σ_n x_n·exp(−2πi·kn/N)
//	IFFT: x_n = (1/N)·Σ_k X_k·exp(+2πi·kn/N)
//
// so IFFT(FFT(x)) == x up to rounding.
//
// Performance:
//
//   - Cauchy:       O(N·L)
//   - FFT / IFFT:   O(L log L) for smooth L, degrading gracefully for prime factors
//   - CausalConv1D: two transforms of length 2L plus the kernel transform
//     (amortized away by reusing a Conv)
package spectral
