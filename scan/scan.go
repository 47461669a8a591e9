package scan

import (
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/lvlath-s4/discretize"
	"github.com/katalvlaran/lvlath-s4/ssmerr"
)

const (
	opRun     = "Run"
	opStep    = "Step"
	opRunReal = "RunReal"
)

// Run iterates the recurrence over u starting from x0:
//
//	for t = 0 .. L−1:
//	    x_{t+1} = Ā·x_t + B̄·u_t
//	    y_t     = C̄·x_{t+1}
//
// It returns y (len(u) samples) and the final state x_L. x0 is not modified.
// The loop is strictly sequential in t and uses no goroutines, so repeated
// runs on the same inputs are bit-identical.
//
// Errors: ssmerr.Shape for a malformed SSM or len(x0) != N.
//
// Complexity: O(L·N²) time, O(N) extra space.
func Run(ssm discretize.SSM, u, x0 []complex128) (y, xL []complex128, err error) {
	if err = ssm.Validate(); err != nil {
		return nil, nil, ssmerr.Classify(opRun, err)
	}
	n := ssm.N()
	if len(x0) != n {
		return nil, nil, ssmerr.Errorf(ssmerr.Shape, opRun, "len(x0)=%d, want %d", len(x0), n)
	}
	a, b, c := ssm.A.Data(), ssm.B.Data(), ssm.C.Data()

	x := make([]complex128, n)
	copy(x, x0)
	next := make([]complex128, n)
	y = make([]complex128, len(u))

	var (
		i, j, row int
		acc       complex128
	)
	for t, ut := range u {
		for i = 0; i < n; i++ {
			acc = b[i] * ut
			row = i * n
			for j = 0; j < n; j++ {
				acc += a[row+j] * x[j]
			}
			next[i] = acc
		}
		x, next = next, x
		acc = 0
		for i = 0; i < n; i++ {
			acc += c[i] * x[i]
		}
		y[t] = acc
	}

	return y, x, nil
}

// Step performs one iteration of Run and returns (y_t, x_{t+1}).
func Step(ssm discretize.SSM, x []complex128, u complex128) (complex128, []complex128, error) {
	y, next, err := Run(ssm, []complex128{u}, x)
	if err != nil {
		return 0, nil, ssmerr.Classify(opStep, err)
	}

	return y[0], next, nil
}

// RunReal is Run for a real SSM held in gonum matrices: A is N×N, B is N×1,
// C is 1×N.
func RunReal(a, b, c mat.Matrix, u, x0 []float64) (y, xL []float64, err error) {
	if a == nil || b == nil || c == nil {
		return nil, nil, ssmerr.New(ssmerr.Shape, opRunReal, "nil matrix")
	}
	n, nc := a.Dims()
	if n != nc {
		return nil, nil, ssmerr.Errorf(ssmerr.Shape, opRunReal, "A is %dx%d, want square", n, nc)
	}
	if br, bc := b.Dims(); br != n || bc != 1 {
		return nil, nil, ssmerr.Errorf(ssmerr.Shape, opRunReal, "B is %dx%d, want %dx1", br, bc, n)
	}
	if cr, cc := c.Dims(); cr != 1 || cc != n {
		return nil, nil, ssmerr.Errorf(ssmerr.Shape, opRunReal, "C is %dx%d, want 1x%d", cr, cc, n)
	}
	if len(x0) != n {
		return nil, nil, ssmerr.Errorf(ssmerr.Shape, opRunReal, "len(x0)=%d, want %d", len(x0), n)
	}

	bv := mat.DenseCopyOf(b).ColView(0)
	cv := mat.DenseCopyOf(c).RowView(0)
	x := mat.NewVecDense(n, append([]float64(nil), x0...))
	next := mat.NewVecDense(n, nil)
	y = make([]float64, len(u))
	for t, ut := range u {
		next.MulVec(a, x)
		next.AddScaledVec(next, ut, bv)
		x, next = next, x
		y[t] = mat.Dot(cv, x)
	}

	return y, x.RawVector().Data, nil
}
