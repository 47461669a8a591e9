// Package matrix provides the complex dense linear algebra used by the S4
// state-space kernels.
//
// The matrix package provides:
//
//   - Dense: a row-major complex128 matrix with error-returning accessors.
//   - Arithmetic: Add, Sub, Scale, Mul, MatVec, Conj, ConjTranspose, MatPow.
//   - Factorizations: pivoted LU and Inverse; Eigh for Hermitian matrices
//     (cyclic complex Jacobi, lower-triangle convention).
//   - Predicates: MaxAbs, MaxAbsDiff, AllClose, IsUnitary, IsHermitian.
//
// Real-valued operators are stored with zero imaginary parts; conjugation is
// then the identity. All kernels are deterministic: fixed loop orders, no
// map iteration, no goroutines.
//
// Errors are package sentinels (errors.go) matched with errors.Is.
package matrix
