package scanner

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPackageRoot means no package marker file was found at or above
	// the scan target.
	ErrNoPackageRoot = errors.New("no package root found")
	// ErrInvalidName means a logical name is empty or not an identifier
	// once the marker prefix is removed.
	ErrInvalidName = errors.New("invalid binding name")
	// ErrNotModuleScope means a marked function is declared inside another
	// function or class.
	ErrNotModuleScope = errors.New("marked function is not at module scope")
	// ErrVariadic means a function takes *args, **kwargs or ...T.
	ErrVariadic = errors.New("variadic parameters are not supported")
	// ErrKeywordOnly means a parameter follows a bare * or *args and can
	// only be passed by keyword.
	ErrKeywordOnly = errors.New("keyword-only parameters are not supported")
	// ErrDefaultValue means a parameter has a default value.
	ErrDefaultValue = errors.New("parameter defaults are not supported")
	// ErrMethod means a marked Go function has a receiver.
	ErrMethod = errors.New("methods cannot be bound")
)

// StructuralError aborts a scan: the tree could not be found, read or parsed.
type StructuralError struct {
	Path string
	Err  error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}

// ResolutionError records one marked function that could not be bound. The
// scan continues past it.
type ResolutionError struct {
	Function string // declared name
	File     string // relative to the scan root
	Line     int
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s:%d: %s: %v", e.File, e.Line, e.Function, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
