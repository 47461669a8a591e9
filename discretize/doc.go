// Package discretize turns continuous-time state-space models into discrete
// recurrences with the bilinear (Tustin) transform.
//
// Two entry points are provided:
//
//   - Bilinear works on arbitrary dense real (A, B, C) held in gonum matrices
//     and inverts I − (Δ/2)·A through an LU factorization.
//   - DPLR works on the diagonal-plus-low-rank form diag(Λ) − p·q* and needs
//     only a diagonal inverse and one scalar Woodbury correction. It also folds
//     the (I − Ā^L)⁻¹ truncation correction into the readout.
//
// Both return values that are never mutated afterwards; the resulting SSM can
// be scanned from several goroutines at once.
package discretize
