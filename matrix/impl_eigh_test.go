// Package matrix_test contains unit tests for the Hermitian eigensolver.
package matrix_test

import (
	"math"
	"math/cmplx"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlath-s4/matrix"
)

func eigh(t *testing.T, m matrix.Matrix) ([]float64, *matrix.Dense) {
	t.Helper()
	vals, vecs, err := matrix.Eigh(m, matrix.DefaultEighTolerance, matrix.DefaultEighMaxSweeps)
	require.NoError(t, err)

	return vals, vecs
}

// propEigenEquation asserts H·V = V·diag(e).
func propEigenEquation(t *testing.T, h matrix.Matrix, vals []float64, v *matrix.Dense, eps float64) {
	t.Helper()
	hv, err := matrix.Mul(h, v)
	require.NoError(t, err)
	d := make([]complex128, len(vals))
	for i, e := range vals {
		d[i] = complex(e, 0)
	}
	dm, err := matrix.Diag(d)
	require.NoError(t, err)
	vd, err := matrix.Mul(v, dm)
	require.NoError(t, err)
	requireClose(t, vd, hv, eps)
}

// propPhase asserts each column's first non-negligible entry is real-positive.
func propPhase(t *testing.T, v *matrix.Dense) {
	t.Helper()
	for j := 0; j < v.Cols(); j++ {
		for _, x := range v.Col(j) {
			if cmplx.Abs(x) > 1e-12 {
				require.Greater(t, real(x), 0.0, "column %d", j)
				require.InDelta(t, 0, imag(x), 1e-12, "column %d", j)
				break
			}
		}
	}
}

// TestEigh_2x2_Analytic: [[2, −i], [i, 2]] has eigenvalues 1 and 3.
func TestEigh_2x2_Analytic(t *testing.T) {
	h := MustRows(t, [][]complex128{{2, -1i}, {1i, 2}})
	vals, v := eigh(t, h)

	require.InDelta(t, 1, vals[0], 1e-12)
	require.InDelta(t, 3, vals[1], 1e-12)
	require.True(t, matrix.IsUnitary(v, 1e-12))
	propEigenEquation(t, h, vals, v, 1e-12)
	propPhase(t, v)
}

// TestEigh_Diagonal_NoRotation keeps the basis and sorts ascending.
func TestEigh_Diagonal_NoRotation(t *testing.T) {
	h, err := matrix.Diag([]complex128{3, -1, 2})
	require.NoError(t, err)
	vals, v := eigh(t, h)

	require.Equal(t, []float64{-1, 2, 3}, vals)
	require.True(t, matrix.IsUnitary(v, 0))
	propPhase(t, v)
}

// TestEigh_Complex4x4 checks the decomposition properties on a dense fixture.
func TestEigh_Complex4x4(t *testing.T) {
	h := hermitianFixture(t)
	vals, v := eigh(t, hide{h})

	require.True(t, sort.Float64sAreSorted(vals))
	require.True(t, matrix.IsUnitary(v, 1e-10))
	propEigenEquation(t, h, vals, v, 1e-10)
	propPhase(t, v)

	var trace float64
	for _, x := range h.Diagonal() {
		trace += real(x)
	}
	var sum float64
	for _, e := range vals {
		sum += e
	}
	require.InDelta(t, trace, sum, 1e-10)
}

// TestEigh_LowerTriangleOnly ignores the strict upper triangle and the
// imaginary part of the diagonal.
func TestEigh_LowerTriangleOnly(t *testing.T) {
	full := hermitianFixture(t)
	lower := full.Clone().(*matrix.Dense)
	for i := 0; i < 4; i++ {
		_ = lower.Set(i, i, complex(real(full.Diagonal()[i]), 7))
		for j := i + 1; j < 4; j++ {
			_ = lower.Set(i, j, 42)
		}
	}

	v1, _ := eigh(t, full)
	v2, _ := eigh(t, lower)
	require.InDeltaSlice(t, v1, v2, 1e-12)
}

// TestEigh_SkewSymmetricTimesMinusI covers the −i·S use: a real
// skew-symmetric S yields eigenvalues in ± pairs.
func TestEigh_SkewSymmetricTimesMinusI(t *testing.T) {
	s := MustReal(t, 3, 3, []float64{
		0, -1, -2,
		1, 0, -3,
		2, 3, 0,
	})
	h, err := matrix.Scale(s, -1i)
	require.NoError(t, err)
	vals, v := eigh(t, h)

	require.InDelta(t, 0, vals[1], 1e-12)
	require.InDelta(t, -vals[0], vals[2], 1e-12)
	require.InDelta(t, math.Sqrt(14), vals[2], 1e-12)
	require.True(t, matrix.IsUnitary(v, 1e-12))
	propEigenEquation(t, h, vals, v, 1e-12)
}

// TestEigh_Errors covers nil, non-square and non-finite input.
func TestEigh_Errors(t *testing.T) {
	_, _, err := matrix.Eigh(nil, 1e-12, 10)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)

	_, _, err = matrix.Eigh(MustDense(t, 2, 3), 1e-12, 10)
	require.ErrorIs(t, err, matrix.ErrNonSquare)

	bad := MustRows(t, [][]complex128{{1, 0}, {complex(math.Inf(1), 0), 1}})
	_, _, err = matrix.Eigh(bad, 1e-12, 10)
	require.ErrorIs(t, err, matrix.ErrMatrixEigenFailed)
}
