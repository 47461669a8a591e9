// Package matrix_test contains unit tests for the Dense implementation
// of the Matrix interface in the matrix package.
package matrix_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlath-s4/matrix"
)

// TestNewDenseInvalidDimensions ensures that NewDense rejects non-positive dimensions.
func TestNewDenseInvalidDimensions(t *testing.T) {
	_, err := matrix.NewDense(0, 5)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)

	_, err = matrix.NewDense(5, 0)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)

	_, err = matrix.NewFromRows(nil)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

// TestRowsCols verifies that Rows() and Cols() return correct dimension values.
func TestRowsCols(t *testing.T) {
	m := MustDense(t, 3, 4)
	require.Equal(t, 3, m.Rows())
	require.Equal(t, 4, m.Cols())

	r, c := m.Shape()
	require.Equal(t, [2]int{3, 4}, [2]int{r, c})
}

// TestAtSetOutOfRange ensures At() and Set() return ErrOutOfRange on invalid access.
func TestAtSetOutOfRange(t *testing.T) {
	m := MustDense(t, 2, 2)

	_, err := m.At(-1, 0)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)

	_, err = m.At(0, 2)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)

	require.ErrorIs(t, m.Set(2, 0, 1.23), matrix.ErrOutOfRange)
	require.ErrorIs(t, m.Set(0, -1, 4.56i), matrix.ErrOutOfRange)
}

// TestSetGet validates Set() followed by At() on valid indices.
func TestSetGet(t *testing.T) {
	m := MustDense(t, 2, 3)
	require.NoError(t, m.Set(1, 2, 7.89-1i))

	val, err := m.At(1, 2)
	require.NoError(t, err)
	require.Equal(t, 7.89-1i, val)
}

// TestCloneIndependence ensures Clone() returns a deep copy that does not share storage.
func TestCloneIndependence(t *testing.T) {
	m := MustDense(t, 2, 2)
	_ = m.Set(0, 0, 1)
	_ = m.Set(1, 1, 2i)

	clone := m.Clone()
	_ = clone.Set(0, 0, 3)

	orig, err := m.At(0, 0)
	require.NoError(t, err)
	require.Equal(t, complex(1, 0), orig)

	cv, err := clone.At(0, 0)
	require.NoError(t, err)
	require.Equal(t, complex(3, 0), cv)
}

// TestNewFromRowsRagged checks rejection of uneven row literals.
func TestNewFromRowsRagged(t *testing.T) {
	_, err := matrix.NewFromRows([][]complex128{{1, 2}, {3}})
	require.ErrorIs(t, err, matrix.ErrRaggedRows)
}

// TestNewFromReal checks lifting and the length contract.
func TestNewFromReal(t *testing.T) {
	m := MustReal(t, 2, 2, []float64{1, 2, 3, 4})
	require.Equal(t, []float64{1, 2, 3, 4}, m.Real())
	require.Equal(t, []complex128{1, 4}, m.Diagonal())

	_, err := matrix.NewFromReal(2, 2, []float64{1, 2, 3})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

// TestRowColCopies checks that Row, Col and Data do not alias storage.
func TestRowColCopies(t *testing.T) {
	m := MustRows(t, [][]complex128{{1, 2}, {3, 4}})

	row := m.Row(1)
	col := m.Col(0)
	data := m.Data()
	require.Equal(t, []complex128{3, 4}, row)
	require.Equal(t, []complex128{1, 3}, col)
	require.Equal(t, []complex128{1, 2, 3, 4}, data)

	row[0], col[0], data[0] = 99, 99, 99
	v, _ := m.At(0, 0)
	require.Equal(t, complex(1, 0), v)
	v, _ = m.At(1, 0)
	require.Equal(t, complex(3, 0), v)

	require.Nil(t, m.Row(2))
	require.Nil(t, m.Col(-1))
}

// TestStringOutput checks that String() formats the matrix as expected.
func TestStringOutput(t *testing.T) {
	m := MustRows(t, [][]complex128{{1, 2}, {3, 4}})
	require.Equal(t, "[1, 2]\n[3, 4]\n", m.String())
}

// TestConstructors covers Identity, Diag and the vector shapes.
func TestConstructors(t *testing.T) {
	id, err := matrix.Identity(3)
	require.NoError(t, err)
	require.Equal(t, []complex128{1, 1, 1}, id.Diagonal())

	d, err := matrix.Diag([]complex128{1i, 2})
	require.NoError(t, err)
	require.Equal(t, []complex128{1i, 0, 0, 2}, d.Data())

	cv, err := matrix.ColVector([]complex128{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 3, cv.Rows())
	require.Equal(t, 1, cv.Cols())

	rv, err := matrix.RowVector([]complex128{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 1, rv.Rows())
	require.Equal(t, 3, rv.Cols())

	_, err = matrix.Diag(nil)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}
