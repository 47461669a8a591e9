// SPDX-License-Identifier: MIT
// Package matrix provides universal complex operations on any Matrix
// implementation: element-wise addition and subtraction, scaling, matrix
// multiplication, conjugation, integer powers, LU factorization and inversion.
// All functions perform strict fail-fast validation and return clear errors on
// dimension mismatches. Operands are never mutated; every result is a fresh Dense.
//
// Notes:
//   - Non-*Dense operands are materialized once through asDense; the kernels
//     themselves always run on flat row-major slices.

package matrix

import (
	"fmt"
	"math/cmplx"
)

// ZeroSum is the initial sum value for forward/backward substitution and similar.
const ZeroSum = complex(0, 0)

// ZeroPivot is the sentinel for detecting a zero pivot in LU/Inverse routines.
const ZeroPivot = 0.0

// Operation name constants for unified error wrapping and reducing magic strings.
const (
	opAdd           = "Add"
	opSub           = "Sub"
	opMul           = "Mul"
	opScale         = "Scale"
	opConj          = "Conj"
	opConjTranspose = "ConjTranspose"
	opMatVec        = "MatVec"
	opMatPow        = "MatPow"
	opLU            = "LU"
	opInverse       = "Inverse"
	opEigh          = "Eigh"
	opMaxAbsDiff    = "MaxAbsDiff"
	opAllClose      = "AllClose"
)

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// Use only when err != nil.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// addSub computes a + sign*b. Shared by Add/Sub for validation and allocation.
func addSub(a, b Matrix, sign complex128, opTag string) (*Dense, error) {
	if err := ValidateBinarySameShape(a, b); err != nil {
		return nil, matrixErrorf(opTag, err)
	}
	da, err := asDense(a)
	if err != nil {
		return nil, matrixErrorf(opTag, err)
	}
	db, err := asDense(b)
	if err != nil {
		return nil, matrixErrorf(opTag, err)
	}
	res, err := NewDense(da.r, da.c)
	if err != nil {
		return nil, matrixErrorf(opTag, err)
	}
	for idx := range res.data {
		res.data[idx] = da.data[idx] + sign*db.data[idx]
	}

	return res, nil
}

// Add computes the element-wise sum C = A + B and returns a fresh Dense result.
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: Time O(r*c), Space O(r*c).
func Add(a, b Matrix) (*Dense, error) { return addSub(a, b, 1, opAdd) }

// Sub computes the element-wise difference C = A - B and returns a fresh Dense result.
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: Time O(r*c), Space O(r*c).
func Sub(a, b Matrix) (*Dense, error) { return addSub(a, b, -1, opSub) }

// Scale returns a new matrix whose elements are alpha * m[i,j].
func Scale(m Matrix, alpha complex128) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	dm, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	res := dm.clone()
	for idx := range res.data {
		res.data[idx] *= alpha
	}

	return res, nil
}

// Mul performs standard matrix multiplication C = A × B (no aliasing).
//
// Implementation:
//   - Stage 1: ValidateMulCompatible(a, b); materialize both operands.
//   - Stage 2: i-k-j loop over flat slices, accumulating into res.data.
//
// Behavior highlights:
//   - No zero-skipping: NaN/Inf in either operand propagate per IEEE rules.
//   - Fixed loop order; results are bit-identical across runs.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch.
//
// Complexity:
//   - Time O(r*k*c), Space O(r*c).
func Mul(a, b Matrix) (*Dense, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	da, err := asDense(a)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	db, err := asDense(b)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	res, err := NewDense(da.r, db.c)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}

	var (
		i, j, k                            int
		av                                 complex128
		rowOffsetA, rowOffsetB, rowOffsetR int
	)
	for i = 0; i < da.r; i++ {
		rowOffsetA = i * da.c
		rowOffsetR = i * db.c
		for k = 0; k < da.c; k++ {
			av = da.data[rowOffsetA+k]
			rowOffsetB = k * db.c
			for j = 0; j < db.c; j++ {
				res.data[rowOffsetR+j] += av * db.data[rowOffsetB+j]
			}
		}
	}

	return res, nil
}

// MatVec computes y = m * x for a column vector x.
//
// Contract: m non-nil; x non-nil; len(x) == m.Cols().
// Determinism: fixed i→j loop order.
// Complexity: Time O(r*c), Space O(r) for y.
func MatVec(m Matrix, x []complex128) ([]complex128, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if err := ValidateVecLen(x, m.Cols()); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	d, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	y := make([]complex128, d.r)
	var (
		i, j, base int
		acc        complex128
	)
	for i = 0; i < d.r; i++ {
		acc = ZeroSum
		base = i * d.c
		for j = 0; j < d.c; j++ {
			acc += d.data[base+j] * x[j]
		}
		y[i] = acc
	}

	return y, nil
}

// Conj returns the elementwise complex conjugate of m.
// On a real-valued matrix it is the identity (a copy).
func Conj(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opConj, err)
	}
	dm, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opConj, err)
	}
	res := dm.clone()
	for idx, v := range res.data {
		res.data[idx] = cmplx.Conj(v)
	}

	return res, nil
}

// ConjTranspose returns m* (the Hermitian adjoint): rows and columns swapped
// and every entry conjugated.
func ConjTranspose(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opConjTranspose, err)
	}
	dm, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opConjTranspose, err)
	}
	res, err := NewDense(dm.c, dm.r)
	if err != nil {
		return nil, matrixErrorf(opConjTranspose, err)
	}
	var i, j, baseSrc int
	for i = 0; i < dm.r; i++ {
		baseSrc = i * dm.c
		for j = 0; j < dm.c; j++ {
			res.data[j*dm.r+i] = cmplx.Conj(dm.data[baseSrc+j])
		}
	}

	return res, nil
}

// MatPow returns M^k for square M: M^0 = I and M^k = M·M^{k-1}.
//
// Implementation:
//   - Stage 1: validate non-nil, square, k >= 0.
//   - Stage 2: binary exponentiation (square-and-multiply), which yields the
//     same product as k-1 successive multiplications in O(log k) Mul calls.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrNegativePower.
//
// Complexity:
//   - Time O(n³·log k), Space O(n²).
func MatPow(m Matrix, k int) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatPow, err)
	}
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opMatPow, err)
	}
	if k < 0 {
		return nil, matrixErrorf(opMatPow, ErrNegativePower)
	}
	result, err := Identity(m.Rows())
	if err != nil {
		return nil, matrixErrorf(opMatPow, err)
	}
	base, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opMatPow, err)
	}
	base = base.clone()
	for k > 0 {
		if k&1 == 1 {
			if result, err = Mul(result, base); err != nil {
				return nil, matrixErrorf(opMatPow, err)
			}
		}
		k >>= 1
		if k > 0 {
			if base, err = Mul(base, base); err != nil {
				return nil, matrixErrorf(opMatPow, err)
			}
		}
	}

	return result, nil
}

// LU computes the factorization P·A = L·U with partial (row) pivoting.
//
// Implementation:
//   - Stage 1: Validate m (not nil, square); copy into a work buffer.
//   - Stage 2: For k=0..n-1 pick the row with the largest |a[i,k]|, swap,
//     then eliminate below the pivot (Doolittle ordering).
//
// Returns:
//   - L: unit lower triangular.
//   - U: upper triangular.
//   - perm: row permutation; row i of P·A is row perm[i] of A.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrSingular (no non-zero pivot in a column).
//
// Determinism:
//   - Ties in pivot magnitude keep the earliest row.
//
// Complexity:
//   - Time O(n^3), Space O(n^2).
func LU(m Matrix) (L, U *Dense, perm []int, err error) {
	if err = ValidateNotNil(m); err != nil {
		return nil, nil, nil, matrixErrorf(opLU, err)
	}
	if err = ValidateSquare(m); err != nil {
		return nil, nil, nil, matrixErrorf(opLU, err)
	}
	src, err := asDense(m)
	if err != nil {
		return nil, nil, nil, matrixErrorf(opLU, err)
	}
	n := src.r
	a := src.clone().data
	perm = make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	var (
		i, j, k, piv int
		best, mag    float64
		pivot, l     complex128
	)
	for k = 0; k < n; k++ {
		// Partial pivoting: largest magnitude in column k at or below the diagonal.
		piv, best = k, cmplx.Abs(a[k*n+k])
		for i = k + 1; i < n; i++ {
			if mag = cmplx.Abs(a[i*n+k]); mag > best {
				piv, best = i, mag
			}
		}
		if best == ZeroPivot {
			return nil, nil, nil, matrixErrorf(opLU, ErrSingular)
		}
		if piv != k {
			for j = 0; j < n; j++ {
				a[k*n+j], a[piv*n+j] = a[piv*n+j], a[k*n+j]
			}
			perm[k], perm[piv] = perm[piv], perm[k]
		}
		pivot = a[k*n+k]
		for i = k + 1; i < n; i++ {
			l = a[i*n+k] / pivot
			a[i*n+k] = l
			for j = k + 1; j < n; j++ {
				a[i*n+j] -= l * a[k*n+j]
			}
		}
	}

	// Split the packed factors.
	L, _ = Identity(n)
	U, _ = NewDense(n, n)
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			if j < i {
				L.data[i*n+j] = a[i*n+j]
			} else {
				U.data[i*n+j] = a[i*n+j]
			}
		}
	}

	return L, U, perm, nil
}

// Inverse computes A^{-1} from the pivoted LU factorization.
// The input must be non-nil and square. Returns ErrSingular if no usable pivot exists.
//
// Implementation:
//   - Stage 1: LU(m) → P·A = L·U.
//   - Stage 2: for each unit column e_col solve L·y = P·e_col, then U·x = y.
//
// Complexity:
//   - Time O(n^3), Space O(n^2).
func Inverse(m Matrix) (*Dense, error) {
	L, U, perm, err := LU(m)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	n := L.r
	inv, err := NewDense(n, n)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}

	var (
		col, i, k int
		sum       complex128
		y         = make([]complex128, n) // forward substitution workspace
		x         = make([]complex128, n) // backward substitution workspace
		baseI     int
	)
	for col = 0; col < n; col++ {
		// Forward substitution: L*y = P*e_col (unit diagonal).
		for i = 0; i < n; i++ {
			sum = ZeroSum
			baseI = i * n
			for k = 0; k < i; k++ {
				sum += L.data[baseI+k] * y[k]
			}
			if perm[i] == col {
				y[i] = 1 - sum
			} else {
				y[i] = -sum
			}
		}
		// Backward substitution: U*x = y.
		for i = n - 1; i >= 0; i-- {
			sum = ZeroSum
			baseI = i * n
			for k = i + 1; k < n; k++ {
				sum += U.data[baseI+k] * x[k]
			}
			x[i] = (y[i] - sum) / U.data[baseI+i]
		}
		for i = 0; i < n; i++ {
			inv.data[i*n+col] = x[i]
		}
	}

	return inv, nil
}
