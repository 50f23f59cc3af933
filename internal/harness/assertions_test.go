package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *Result {
	r := NewResult()
	r.Status = "dry-run"
	r.Bindings = []string{"add(a: i64, b: i64) -> i64"}
	r.Paths = []string{"pkg.add"}
	r.Artifact = "package pkg\n\nfunc (m *PyModules) Add(a int64, b int64) (result int64, err error) {\n}\n"
	r.Journaled = "dry-run"
	return r
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertArtifactContains, Text: "func (m *PyModules) Add("},
		{Type: AssertArtifactLacks, Text: "Sub("},
		{Type: AssertNamespaceHas, Path: "pkg.add"},
		{Type: AssertBindingCount, Count: 1},
		{Type: AssertJournaled, Status: "dry-run"},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{"contains", Assertion{Type: AssertArtifactContains, Text: "Sub("}, `artifact containing "Sub("`},
		{"lacks", Assertion{Type: AssertArtifactLacks, Text: "Add("}, `artifact without "Add("`},
		{"namespace", Assertion{Type: AssertNamespaceHas, Path: "pkg.sub"}, "binding at pkg.sub"},
		{"count", Assertion{Type: AssertBindingCount, Count: 2}, "2 binding(s)"},
		{"journaled", Assertion{Type: AssertJournaled, Status: "written"}, `journaled with status "written"`},
		{"unknown", Assertion{Type: "trace_order"}, `unknown assertion type "trace_order"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleResult(), []Assertion{tt.assertion})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.want)
		})
	}
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{
		Type:     AssertBindingCount,
		Expected: "2 binding(s)",
		Actual:   "1 binding(s)",
		Bindings: []string{"add(a: i64, b: i64) -> i64"},
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: binding_count")
	assert.Contains(t, msg, "Expected: 2 binding(s)")
	assert.Contains(t, msg, "Actual: 1 binding(s)")
	assert.Contains(t, msg, "[1] add(a: i64, b: i64) -> i64")
}

func TestAssertJournaled_NotRecorded(t *testing.T) {
	r := sampleResult()
	r.Journaled = ""

	errs := EvaluateAssertions(r, []Assertion{{Type: AssertJournaled, Status: "dry-run"}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "run not journaled")
}
