package cli

import (
	"errors"
	"os"

	"github.com/roach88/pybridge/internal/config"
	"github.com/roach88/pybridge/internal/generate"
	"github.com/roach88/pybridge/internal/pkgmodel"
	"github.com/roach88/pybridge/internal/resolver"
	"github.com/roach88/pybridge/internal/scanner"
	"github.com/roach88/pybridge/internal/store"
)

// Error codes for CLI output.
const (
	// Run-level errors (E0xx)
	ErrCodeGeneric        = "E001" // Generic/unknown error
	ErrCodeNotFound       = "E002" // Path or package root not found
	ErrCodeStructural     = "E003" // Source tree could not be read or parsed
	ErrCodeCollision      = "E004" // Two members share a namespace name
	ErrCodeNoBindings     = "E005" // Nothing could be bound
	ErrCodeWriteFailed    = "E006" // Artifact write error
	ErrCodeStale          = "E007" // Existing glue is out of date
	ErrCodeConfig         = "E008" // Config file rejected
	ErrCodeJournal        = "E009" // Run journal unavailable
	ErrCodeScenarioFailed = "E010" // One or more scenarios failed

	// Binding-level errors (E2xx)
	ErrCodeUnresolvable = "E201" // Annotation or type has no boundary form
	ErrCodeCustomClass  = "E202" // User-defined class in a signature
	ErrCodeShape        = "E203" // Variadic, default, method or nested declaration
	ErrCodeName         = "E204" // Invalid logical name
)

// errorCode maps a run error to its stable code and exit code.
func errorCode(err error) (string, int) {
	var (
		structural *scanner.StructuralError
		collision  *pkgmodel.CollisionError
	)
	switch {
	case errors.Is(err, scanner.ErrNoPackageRoot), errors.Is(err, os.ErrNotExist):
		return ErrCodeNotFound, ExitCommandError
	case errors.As(err, &collision):
		return ErrCodeCollision, ExitFailure
	case errors.Is(err, generate.ErrNoBindings):
		return ErrCodeNoBindings, ExitFailure
	case errors.As(err, &structural):
		return ErrCodeStructural, ExitFailure
	case errors.Is(err, config.ErrUnknownFormat):
		return ErrCodeConfig, ExitCommandError
	case errors.Is(err, store.ErrRunNotFound):
		return ErrCodeNotFound, ExitCommandError
	}
	return ErrCodeGeneric, ExitFailure
}

// failureCode maps a per-function resolution failure to its code.
func failureCode(err error) string {
	switch {
	case errors.Is(err, resolver.ErrCustomClass):
		return ErrCodeCustomClass
	case errors.Is(err, scanner.ErrVariadic),
		errors.Is(err, scanner.ErrKeywordOnly),
		errors.Is(err, scanner.ErrDefaultValue),
		errors.Is(err, scanner.ErrMethod),
		errors.Is(err, scanner.ErrNotModuleScope):
		return ErrCodeShape
	case errors.Is(err, scanner.ErrInvalidName):
		return ErrCodeName
	}
	return ErrCodeUnresolvable
}
