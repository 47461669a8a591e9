// Package hippo constructs the HiPPO-LegS state matrix and its two structured
// reductions used by S4.
//
//	HiPPO(N) → A                      lower-triangular LegS operator
//	NPLR(N)  → (A, P, B)              A + P·Pᵀ is normal
//	DPLR(N)  → (Λ, P', B', V)         A = V·(diag Λ − P'·P'*)·V*
//
// All constructors are pure functions of N and return immutable values.
// Failures are *ssmerr.Error values (Shape for N < 1, Decomposition when the
// Hermitian eigensolver fails).
package hippo
