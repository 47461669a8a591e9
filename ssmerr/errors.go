// Package ssmerr defines the single error enum shared by the S4 packages.
//
// Every failure that crosses a package boundary (hippo, kernel, discretize,
// scan, s4) is an *Error carrying a Kind. Callers match kinds with errors.Is
// against the sentinels below, or extract the kind with KindOf:
//
//	if errors.Is(err, ssmerr.ErrShape) { ... }
//
// Lower-level causes (matrix sentinels, gonum conditions) stay reachable
// through Unwrap, so errors.Is(err, matrix.ErrSingular) keeps working too.
package ssmerr

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/lvlath-s4/matrix"
)

// Kind enumerates failure classes.
type Kind int

const (
	// Unknown wraps a nested cause that fits no other kind. Never swallowed.
	Unknown Kind = iota
	// Shape: inputs with the wrong length or non-conformable dimensions.
	Shape
	// Singular: a matrix that had to be inverted is singular.
	Singular
	// Decomposition: the Hermitian eigendecomposition failed.
	Decomposition
	// NonReal: the inverse transform left an imaginary residue above tolerance.
	NonReal
	// Init: layer construction failed.
	Init
)

var kindNames = [...]string{
	Unknown:       "unknown",
	Shape:         "shape mismatch",
	Singular:      "singular matrix",
	Decomposition: "decomposition failed",
	NonReal:       "non-real kernel",
	Init:          "init failed",
}

// String returns the human-readable kind name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindNames[k]
}

// Error is a classified failure. Op names the operation that raised it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Sentinels for errors.Is matching. They carry no Op and no cause.
var (
	ErrUnknown       = &Error{Kind: Unknown}
	ErrShape         = &Error{Kind: Shape}
	ErrSingular      = &Error{Kind: Singular}
	ErrDecomposition = &Error{Kind: Decomposition}
	ErrNonReal       = &Error{Kind: NonReal}
	ErrInit          = &Error{Kind: Init}
)

func (e *Error) Error() string {
	msg := "s4"
	if e.Op != "" {
		msg += ": " + e.Op
	}
	msg += ": " + e.Kind.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap exposes the nested cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches a bare sentinel of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Op != "" || t.Err != nil {
		return false
	}

	return t.Kind == e.Kind
}

// New builds an *Error from a message.
func New(kind Kind, op, msg string) error {
	return &Error{Kind: kind, Op: op, Err: errors.New(msg)}
}

// Errorf builds an *Error with a formatted cause; %w verbs are honoured.
func Errorf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies err as kind under op. A nil err yields nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}

	return &Error{Kind: kind, Op: op, Err: err}
}

// Classify wraps err under op, picking the Kind from known lower-level causes:
// already classified errors keep their kind, matrix sentinels map onto
// Shape/Singular/Decomposition, anything else becomes Unknown.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return &Error{Kind: se.Kind, Op: op, Err: err}
	}

	return &Error{Kind: kindFor(err), Op: op, Err: err}
}

func kindFor(err error) Kind {
	switch {
	case errors.Is(err, matrix.ErrSingular):
		return Singular
	case errors.Is(err, matrix.ErrMatrixEigenFailed):
		return Decomposition
	case errors.Is(err, matrix.ErrDimensionMismatch),
		errors.Is(err, matrix.ErrNonSquare),
		errors.Is(err, matrix.ErrInvalidDimensions),
		errors.Is(err, matrix.ErrOutOfRange),
		errors.Is(err, matrix.ErrRaggedRows),
		errors.Is(err, matrix.ErrNegativePower):
		return Shape
	default:
		return Unknown
	}
}

// KindOf returns the Kind of the outermost *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}

	return Unknown
}
