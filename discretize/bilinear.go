package discretize

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/lvlath-s4/ssmerr"
)

const (
	opBilinear = "Bilinear"
	opDPLR     = "DiscretizeDPLR"
	opFromReal = "FromReal"
)

// CondWarn is the condition number of I − (Δ/2)·A above which callers should
// treat a Bilinear result as numerically fragile.
const CondWarn = 1e12

// Real is a discretized real-valued SSM together with the 1-norm condition
// number of the bilinear denominator.
type Real struct {
	A, B, C *mat.Dense
	Cond    float64
}

// Bilinear applies the Tustin transform to a dense real SSM:
//
//	M  = I − (Δ/2)·A
//	Ā = M⁻¹·(I + (Δ/2)·A)
//	B̄ = Δ·M⁻¹·B
//	C̄ = C
//
// Shapes: A is N×N, B is N×1, C is 1×N. Operands are never mutated.
//
// Errors:
//   - ssmerr.Shape on nil operands, non-conformable shapes or a non-positive step.
//   - ssmerr.Singular when M is exactly singular. An ill-conditioned but
//     invertible M yields a result; inspect Real.Cond.
func Bilinear(a, b, c mat.Matrix, step float64) (Real, error) {
	if a == nil || b == nil || c == nil {
		return Real{}, ssmerr.New(ssmerr.Shape, opBilinear, "nil operand")
	}
	n, nc := a.Dims()
	if n != nc {
		return Real{}, ssmerr.Errorf(ssmerr.Shape, opBilinear, "A is %dx%d, want square", n, nc)
	}
	if br, bc := b.Dims(); br != n || bc != 1 {
		return Real{}, ssmerr.Errorf(ssmerr.Shape, opBilinear, "B is %dx%d, want %dx1", br, bc, n)
	}
	if cr, cc := c.Dims(); cr != 1 || cc != n {
		return Real{}, ssmerr.Errorf(ssmerr.Shape, opBilinear, "C is %dx%d, want 1x%d", cr, cc, n)
	}
	if !(step > 0) {
		return Real{}, ssmerr.Errorf(ssmerr.Shape, opBilinear, "step %g must be positive", step)
	}

	half := step / 2
	m := mat.NewDense(n, n, nil)
	m.Scale(-half, a)
	p := mat.NewDense(n, n, nil)
	p.Scale(half, a)
	for i := 0; i < n; i++ {
		m.Set(i, i, m.At(i, i)+1)
		p.Set(i, i, p.At(i, i)+1)
	}

	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return Real{}, ssmerr.Wrap(ssmerr.Singular, opBilinear, err)
		}
	}

	ab := mat.NewDense(n, n, nil)
	ab.Mul(&inv, p)
	bb := mat.NewDense(n, 1, nil)
	bb.Mul(&inv, b)
	bb.Scale(step, bb)

	return Real{A: ab, B: bb, C: mat.DenseCopyOf(c), Cond: mat.Cond(m, 1)}, nil
}
