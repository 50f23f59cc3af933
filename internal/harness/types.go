package harness

import (
	"context"
	"errors"
	"os"

	"github.com/roach88/pybridge/internal/generate"
	"github.com/roach88/pybridge/internal/pkgmodel"
	"github.com/roach88/pybridge/internal/resolver"
	"github.com/roach88/pybridge/internal/scanner"
)

// FailureRecord is one skipped function as seen by a scenario.
type FailureRecord struct {
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Kind     string `json:"kind"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: Expect and every assertion matched.
	Pass bool `json:"pass"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Status is the run status reported by the generator.
	Status string `json:"status"`

	// ErrorKind classifies the run error; empty for successful runs.
	ErrorKind string `json:"error,omitempty"`

	// Bindings are the produced signatures in compact form.
	Bindings []string `json:"bindings"`

	// Paths are the dotted namespace paths of the bindings.
	Paths []string `json:"paths"`

	// Failures are the skipped functions in scan order.
	Failures []FailureRecord `json:"failures"`

	// Artifact is the rendered glue or stub; empty for failed runs.
	Artifact string `json:"-"`

	// Journaled is the status the journal recorded for the run.
	Journaled string `json:"journaled,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Errors:   []string{},
		Bindings: []string{},
		Paths:    []string{},
		Failures: []FailureRecord{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Error kinds of a failed run.
const (
	KindNoBindings    = "no_bindings"
	KindCollision     = "collision"
	KindNoPackageRoot = "no_package_root"
	KindStructural    = "structural"
	KindCanceled      = "canceled"
	KindOther         = "other"
)

// ErrorKind classifies a run error.
func ErrorKind(err error) string {
	var (
		structural *scanner.StructuralError
		collision  *pkgmodel.CollisionError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, generate.ErrNoBindings):
		return KindNoBindings
	case errors.As(err, &collision):
		return KindCollision
	case errors.Is(err, scanner.ErrNoPackageRoot), errors.Is(err, os.ErrNotExist):
		return KindNoPackageRoot
	case errors.As(err, &structural):
		return KindStructural
	case errors.Is(err, context.Canceled):
		return KindCanceled
	}
	return KindOther
}

// failureKinds maps per-function causes to their scenario names.
var failureKinds = []struct {
	err  error
	kind string
}{
	{resolver.ErrCustomClass, "custom_class"},
	{resolver.ErrMissingAnnotation, "missing_annotation"},
	{resolver.ErrMissingParams, "missing_params"},
	{resolver.ErrUnhashableKey, "unhashable_key"},
	{resolver.ErrNestingTooDeep, "nesting_too_deep"},
	{resolver.ErrNestedChoice, "nested_choice"},
	{resolver.ErrUnsupported, "unsupported"},
	{scanner.ErrVariadic, "variadic"},
	{scanner.ErrKeywordOnly, "keyword_only"},
	{scanner.ErrDefaultValue, "default_value"},
	{scanner.ErrMethod, "method"},
	{scanner.ErrNotModuleScope, "not_module_scope"},
	{scanner.ErrInvalidName, "invalid_name"},
}

// FailureKind classifies the cause of a per-function failure.
func FailureKind(err error) string {
	for _, fk := range failureKinds {
		if errors.Is(err, fk.err) {
			return fk.kind
		}
	}
	return KindOther
}
