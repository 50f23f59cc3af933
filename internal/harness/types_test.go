package harness

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/pybridge/internal/generate"
	"github.com/roach88/pybridge/internal/pkgmodel"
	"github.com/roach88/pybridge/internal/resolver"
	"github.com/roach88/pybridge/internal/scanner"
)

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "", ErrorKind(nil))
	assert.Equal(t, KindNoBindings, ErrorKind(fmt.Errorf("x: %w", generate.ErrNoBindings)))
	assert.Equal(t, KindCollision, ErrorKind(&pkgmodel.CollisionError{Name: "util"}))
	assert.Equal(t, KindNoPackageRoot, ErrorKind(&scanner.StructuralError{Path: "p", Err: scanner.ErrNoPackageRoot}))
	assert.Equal(t, KindStructural, ErrorKind(&scanner.StructuralError{Path: "p", Err: errors.New("bad")}))
	assert.Equal(t, KindCanceled, ErrorKind(context.Canceled))
	assert.Equal(t, KindOther, ErrorKind(errors.New("boom")))
}

func TestFailureKind(t *testing.T) {
	assert.Equal(t, "custom_class", FailureKind(&resolver.Error{Annotation: "W", Err: resolver.ErrCustomClass}))
	assert.Equal(t, "variadic", FailureKind(scanner.ErrVariadic))
	assert.Equal(t, "keyword_only", FailureKind(fmt.Errorf("parameter x: %w", scanner.ErrKeywordOnly)))
	assert.Equal(t, "nesting_too_deep", FailureKind(fmt.Errorf("deep: %w", resolver.ErrNestingTooDeep)))
	assert.Equal(t, KindOther, FailureKind(errors.New("boom")))
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)

	r.AddError("first")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"first"}, r.Errors)
}
