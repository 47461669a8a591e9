// Package lvlath is an in-memory toolkit for the structured state-space
// (S4) sequence layer: HiPPO initialization, its low-rank reductions, the
// Cauchy-kernel convolution generator and the recurrent scan.
//
// What is inside?
//
//	• HiPPO-LegS and its NPLR / DPLR factorizations
//	• Complex dense linear algebra with a Hermitian eigensolver
//	• Bilinear discretization (dense and DPLR) and the recurrent scan
//	• FFT-based causal convolution kernels in O(N·L + L log L)
//	• An S4 layer with convolutional (train) and recurrent (decode) modes
//
// Packages, from the bottom up:
//
//	matrix/     complex dense matrices, LU, inverse, powers, Jacobi Eigh
//	ssmerr/     error kinds shared by every package
//	spectral/   Cauchy sums, FFT/IFFT, causal convolution
//	hippo/      HiPPO(N), NPLR(N), DPLR(N)
//	discretize/ bilinear transform, dense and DPLR
//	kernel/     K̄ from a DPLR system
//	scan/       x_{t+1} = Ā·x_t + B̄·u_t, y_t = C̄·x_{t+1}
//	s4/         the layer, snapshots, parallel forward
//	cmd/s4kernel  command-line inspection tool
//
// Data flow:
//
//	HiPPO ─▶ NPLR ─▶ DPLR ─┬─▶ kernel ─▶ causal conv   (train)
//	                       └─▶ discretize ─▶ scan      (decode)
//
//	go get github.com/katalvlaran/lvlath-s4
package lvlath
