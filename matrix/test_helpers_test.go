// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers
//
// Purpose:
//   - Provide small, deterministic fixtures for the complex kernels.
//   - Force the non-*Dense code paths through the hide wrapper.

package matrix_test

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlath-s4/matrix"
)

// hide wraps any Matrix to hide its concrete type, so kernels take the
// asDense materialization path.
type hide struct{ matrix.Matrix }

// MustDense allocates an r×c *Dense or fails the test.
func MustDense(t *testing.T, r, c int) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDense(r, c)
	require.NoError(t, err)

	return m
}

// MustRows builds a *Dense from row literals or fails the test.
func MustRows(t *testing.T, rows [][]complex128) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewFromRows(rows)
	require.NoError(t, err)

	return m
}

// MustReal builds a real-valued *Dense from row-major data or fails the test.
func MustReal(t *testing.T, r, c int, data []float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewFromReal(r, c, data)
	require.NoError(t, err)

	return m
}

// requireClose asserts ‖a − b‖_max ≤ eps.
func requireClose(t *testing.T, want, got matrix.Matrix, eps float64) {
	t.Helper()
	d, err := matrix.MaxAbsDiff(want, got)
	require.NoError(t, err)
	require.LessOrEqualf(t, d, eps, "max abs diff %g > %g\nwant:\n%v\ngot:\n%v", d, eps, want, got)
}

// requireVecClose asserts max_i |a_i − b_i| ≤ eps.
func requireVecClose(t *testing.T, want, got []complex128, eps float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.LessOrEqualf(t, cmplx.Abs(want[i]-got[i]), eps, "index %d: want %v got %v", i, want[i], got[i])
	}
}

// hermitianFixture returns a well-conditioned 4×4 Hermitian matrix with
// non-trivial complex off-diagonal entries.
func hermitianFixture(t *testing.T) *matrix.Dense {
	t.Helper()

	return MustRows(t, [][]complex128{
		{4, 1 - 2i, 0.5i, 0},
		{1 + 2i, 3, 1, -1i},
		{-0.5i, 1, -2, 2 + 1i},
		{0, 1i, 2 - 1i, 1},
	})
}
