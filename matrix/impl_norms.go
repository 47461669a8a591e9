// SPDX-License-Identifier: MIT

// Package matrix - norms and structural predicates used by round-trip checks.
package matrix

import (
	"math"
	"math/cmplx"
)

// MaxAbs returns the max-norm ‖m‖_max = max |m[i,j]|.
// NaN entries make the result NaN.
func MaxAbs(m *Dense) float64 {
	var best float64
	for _, v := range m.data {
		a := cmplx.Abs(v)
		if a > best || a != a {
			best = a
		}
	}

	return best
}

// MaxAbsDiff returns ‖a − b‖_max for same-shaped matrices.
// Errors: ErrNilMatrix, ErrDimensionMismatch.
func MaxAbsDiff(a, b Matrix) (float64, error) {
	diff, err := Sub(a, b)
	if err != nil {
		return 0, matrixErrorf(opMaxAbsDiff, err)
	}

	return MaxAbs(diff), nil
}

// IsUnitary reports whether ‖V*·V − I‖_max ≤ eps.
func IsUnitary(v *Dense, eps float64) bool {
	if v == nil || v.r != v.c {
		return false
	}
	vh, err := ConjTranspose(v)
	if err != nil {
		return false
	}
	prod, err := Mul(vh, v)
	if err != nil {
		return false
	}
	eye, _ := Identity(v.r)
	d, err := MaxAbsDiff(prod, eye)

	return err == nil && d <= eps
}

// IsHermitian reports whether ‖m − m*‖_max ≤ eps.
func IsHermitian(m *Dense, eps float64) bool {
	if m == nil || m.r != m.c {
		return false
	}
	mh, err := ConjTranspose(m)
	if err != nil {
		return false
	}
	d, err := MaxAbsDiff(m, mh)

	return err == nil && d <= eps
}

// AllClose reports whether |a−b| ≤ atol + rtol·|b| holds element-wise for
// same-shaped matrices. Negative tolerances are taken by absolute value.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: Time O(r*c), Space O(1) for *Dense operands.
func AllClose(a, b Matrix, rtol, atol float64) (bool, error) {
	if err := ValidateBinarySameShape(a, b); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	da, err := asDense(a)
	if err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	db, err := asDense(b)
	if err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	rtol, atol = math.Abs(rtol), math.Abs(atol)
	for idx, bv := range db.data {
		if !(cmplx.Abs(da.data[idx]-bv) <= atol+rtol*cmplx.Abs(bv)) {
			return false, nil
		}
	}

	return true, nil
}
