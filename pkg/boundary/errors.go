package boundary

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by handle constructors and accessors.
var (
	ErrInvalidEncoding = errors.New("boundary: string is not valid UTF-8")
	ErrNotTerminated   = errors.New("boundary: string source has no NUL terminator")
	ErrSlotFilled      = errors.New("boundary: tuple slot already filled")
	ErrSlotEmpty       = errors.New("boundary: tuple slot not filled")
	ErrUnhashableKey   = errors.New("boundary: map key kind must be a scalar or string")
	ErrArity           = errors.New("boundary: tuple arity mismatch")
)

// TypeMismatchError reports a value whose kind differs from the requested one.
type TypeMismatchError struct {
	Op   string
	Want string
	Got  string
}

func (e *TypeMismatchError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("boundary: type mismatch: want %s, got %s", e.Want, e.Got)
	}
	return fmt.Sprintf("boundary: %s: type mismatch: want %s, got %s", e.Op, e.Want, e.Got)
}

// IndexError reports a positional access outside [0, Len).
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("boundary: index %d out of range [0:%d]", e.Index, e.Len)
}

// ContractViolation is the panic value raised when a handle is misused:
// nil handles, use after release, double release, or adopting an unknown
// raw handle. It is a caller bug and is never returned as an error.
type ContractViolation struct {
	Op     string
	Reason string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("boundary: contract violation in %s: %s", e.Op, e.Reason)
}

func violation(op, reason string) *ContractViolation {
	return &ContractViolation{Op: op, Reason: reason}
}

// Mismatch builds a TypeMismatchError for a host value that does not fit the
// expected description. Generated glue uses it in type-variable dispatch.
func Mismatch(want string, got any) *TypeMismatchError {
	return &TypeMismatchError{Want: want, Got: describe(got)}
}

// IsTypeMismatch reports whether err is or wraps a *TypeMismatchError.
func IsTypeMismatch(err error) bool {
	var tm *TypeMismatchError
	return errors.As(err, &tm)
}

func describe(x any) string {
	switch v := x.(type) {
	case nil:
		return "nil"
	case Value:
		return v.Kind().String()
	default:
		return fmt.Sprintf("%T", x)
	}
}
