// Package kernel builds the S4 convolution kernel K̄ from a DPLR system.
//
// The fast path never forms Ā^l: it evaluates the truncated generating
// function Σ_{l<L} K_l·z^l at the L-th roots of unity with four Cauchy sums
// and a Woodbury correction, then inverse-FFTs back to the time domain.
// Cost is O(N·L) for the Cauchy sums plus O(L log L) for the transform.
//
// The readout passed in Params.C is the truncation-corrected C̃; the
// matching recurrence is discretize.DPLR with the same arguments, and
// Unrolled reads its impulse response directly.
//
// Kernels are expected to be real. An imaginary residue above tolerance is
// reported as ssmerr.NonReal instead of being dropped.
package kernel
