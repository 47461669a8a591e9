package discretize

import (
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/lvlath-s4/matrix"
	"github.com/katalvlaran/lvlath-s4/ssmerr"
)

// SSM is a discrete complex state-space model:
//
//	x_{t+1} = A·x_t + B·u_t
//	y_t     = C·x_{t+1}
//
// A is N×N, B is N×1 and C is 1×N. An SSM is read-only once built and may be
// shared between goroutines.
type SSM struct {
	A, B, C *matrix.Dense
}

// N returns the state size, or 0 for an empty SSM.
func (s SSM) N() int {
	if s.A == nil {
		return 0
	}

	return s.A.Rows()
}

// Validate reports ssmerr.Shape unless A is N×N, B is N×1 and C is 1×N.
func (s SSM) Validate() error {
	if s.A == nil || s.B == nil || s.C == nil {
		return ssmerr.New(ssmerr.Shape, "SSM.Validate", "nil matrix")
	}
	n := s.A.Rows()
	switch {
	case s.A.Cols() != n:
		return ssmerr.Errorf(ssmerr.Shape, "SSM.Validate", "A is %dx%d", n, s.A.Cols())
	case s.B.Rows() != n || s.B.Cols() != 1:
		return ssmerr.Errorf(ssmerr.Shape, "SSM.Validate", "B is %dx%d, want %dx1", s.B.Rows(), s.B.Cols(), n)
	case s.C.Rows() != 1 || s.C.Cols() != n:
		return ssmerr.Errorf(ssmerr.Shape, "SSM.Validate", "C is %dx%d, want 1x%d", s.C.Rows(), s.C.Cols(), n)
	}

	return nil
}

// FromReal lifts a real Bilinear result into a complex SSM.
func FromReal(r Real) (SSM, error) {
	if r.A == nil || r.B == nil || r.C == nil {
		return SSM{}, ssmerr.New(ssmerr.Shape, opFromReal, "nil matrix")
	}
	a, err := lift(r.A)
	if err != nil {
		return SSM{}, ssmerr.Classify(opFromReal, err)
	}
	b, err := lift(r.B)
	if err != nil {
		return SSM{}, ssmerr.Classify(opFromReal, err)
	}
	c, err := lift(r.C)
	if err != nil {
		return SSM{}, ssmerr.Classify(opFromReal, err)
	}
	s := SSM{A: a, B: b, C: c}

	return s, s.Validate()
}

func lift(m mat.Matrix) (*matrix.Dense, error) {
	r, c := m.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data = append(data, m.At(i, j))
		}
	}

	return matrix.NewFromReal(r, c, data)
}
