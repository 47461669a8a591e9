// SPDX-License-Identifier: MIT

// Package matrix: numeric defaults (single source of truth).
//
// Design goals:
//   - Deterministic behavior: no global state, no implicit randomness.
//   - Non-finite values are NOT rejected on Set; they propagate through every
//     kernel so upstream code can observe them.
package matrix

// Numeric policy.
const (
	// DefaultEpsilon is the tolerance used by structural checks (IsUnitary,
	// IsHermitian) when callers have no better bound.
	DefaultEpsilon = 1e-9

	// DefaultEighTolerance is the convergence threshold of Eigh: iteration stops
	// once the off-diagonal Frobenius norm drops below tol·‖H‖_F.
	DefaultEighTolerance = 1e-13

	// DefaultEighMaxSweeps caps the number of cyclic Jacobi sweeps.
	// Cyclic Jacobi converges quadratically; 64 sweeps is far beyond what any
	// well-formed Hermitian input of practical size needs.
	DefaultEighMaxSweeps = 64

	// phaseTolerance is the magnitude below which an eigenvector entry is treated
	// as zero when normalizing the column phase.
	phaseTolerance = 1e-12
)
