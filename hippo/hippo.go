package hippo

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/lvlath-s4/matrix"
	"github.com/katalvlaran/lvlath-s4/ssmerr"
)

const (
	opHiPPO = "HiPPO"
	opNPLR  = "NPLR"
	opDPLR  = "DPLR"
)

// HiPPO builds the N×N LegS transition matrix:
//
//	P_i     = sqrt(2i + 1)
//	A_{i,j} = −P_i·P_j   for i > j
//	A_{i,i} = −(i + 1)
//	A_{i,j} = 0          for i < j
//
// The result is lower triangular, negative definite and depends only on N.
// Errors: ssmerr.Shape when n < 1.
// Complexity: O(N²).
func HiPPO(n int) (*matrix.Dense, error) {
	if n < 1 {
		return nil, ssmerr.Errorf(ssmerr.Shape, opHiPPO, "state size %d must be >= 1", n)
	}
	a, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, ssmerr.Classify(opHiPPO, err)
	}
	p := legsScale(n)
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			_ = a.Set(i, j, complex(-p[i]*p[j], 0))
		}
		_ = a.Set(i, i, complex(-float64(i+1), 0))
	}

	return a, nil
}

// HiPPOReal returns HiPPO(n) as a real gonum matrix.
func HiPPOReal(n int) (*mat.Dense, error) {
	if n < 1 {
		return nil, ssmerr.Errorf(ssmerr.Shape, opHiPPO, "state size %d must be >= 1", n)
	}
	a := mat.NewDense(n, n, nil)
	p := legsScale(n)
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			a.Set(i, j, -p[i]*p[j])
		}
		a.Set(i, i, -float64(i+1))
	}

	return a, nil
}

// legsScale returns P_i = sqrt(2i + 1).
func legsScale(n int) []float64 {
	p := make([]float64, n)
	for i := range p {
		p[i] = math.Sqrt(2*float64(i) + 1)
	}

	return p
}

// NPLRTriple is the Normal-Plus-Low-Rank form of HiPPO-LegS:
// A + P·Pᵀ is a normal matrix (−½·I plus a skew-symmetric part).
type NPLRTriple struct {
	A *matrix.Dense
	P []float64
	B []float64
}

// N returns the state size.
func (t NPLRTriple) N() int { return len(t.P) }

// NPLR returns (A, P, B) with A = HiPPO(n), P_i = sqrt(i + ½), B_i = sqrt(2i + 1).
func NPLR(n int) (NPLRTriple, error) {
	a, err := HiPPO(n)
	if err != nil {
		return NPLRTriple{}, ssmerr.Classify(opNPLR, err)
	}
	p := make([]float64, n)
	for i := range p {
		p[i] = math.Sqrt(float64(i) + 0.5)
	}

	return NPLRTriple{A: a, P: p, B: legsScale(n)}, nil
}

// Normal returns S = A + P·Pᵀ.
func (t NPLRTriple) Normal() (*matrix.Dense, error) {
	n := t.N()
	s := t.A.Clone().(*matrix.Dense)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v, err := s.At(i, j)
			if err != nil {
				return nil, ssmerr.Classify(opNPLR, err)
			}
			_ = s.Set(i, j, v+complex(t.P[i]*t.P[j], 0))
		}
	}

	return s, nil
}
