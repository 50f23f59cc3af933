package resolver

import (
	"errors"
	"fmt"
)

// MaxDepth bounds the nesting of a single annotation, counting alias and
// forward-reference indirections.
const MaxDepth = 16

// Causes of a resolution failure. Test with errors.Is.
var (
	ErrUnsupported       = errors.New("unsupported annotation")
	ErrMissingAnnotation = errors.New("missing type annotation")
	ErrMissingParams     = errors.New("container requires type parameters")
	ErrCustomClass       = errors.New("user-defined class cannot cross the boundary")
	ErrUnhashableKey     = errors.New("mapping key must be a scalar or string")
	ErrNestingTooDeep    = errors.New("annotation nesting exceeds limit")
	ErrNestedChoice      = errors.New("type variable cannot appear inside a container")
)

// Error describes why an annotation did not resolve.
type Error struct {
	Annotation string // annotation text as written
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("cannot resolve %q: %v", e.Annotation, e.Err)
	}
	return fmt.Sprintf("cannot resolve %q: %v: %s", e.Annotation, e.Err, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func fail(annotation string, cause error, format string, args ...any) *Error {
	return &Error{Annotation: annotation, Err: cause, Message: fmt.Sprintf(format, args...)}
}

// IsStructural reports whether err is a structural failure (nesting limit)
// rather than an unsupported type.
func IsStructural(err error) bool {
	return errors.Is(err, ErrNestingTooDeep)
}
