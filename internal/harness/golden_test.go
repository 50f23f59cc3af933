package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden(t *testing.T) {
	for _, name := range []string{"add_one", "partial_failures", "nothing_bound", "go_add"} {
		t.Run(name, func(t *testing.T) {
			result, err := RunWithGolden(t, loadTestScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestSnapshot_Canonical(t *testing.T) {
	s := &Scenario{Name: "snap", Direction: "py2go"}
	r := NewResult()
	r.Status = "failed"
	r.ErrorKind = KindCollision
	r.Bindings = []string{"b() -> unit", "a() -> unit"}
	r.Failures = []FailureRecord{{Function: "go_bind_x", File: "m.py", Line: 3, Kind: "variadic"}}

	data, err := Snapshot(s, r)
	require.NoError(t, err)
	assert.Equal(t,
		`{"bindings":["b() -> unit","a() -> unit"],"direction":"py2go","error":"collision",`+
			`"failures":[{"file":"m.py","function":"go_bind_x","kind":"variadic","line":3}],`+
			`"scenario_name":"snap","status":"failed"}`,
		string(data))
}

func TestSnapshot_Deterministic(t *testing.T) {
	s := loadTestScenario(t, "add_one")

	first, err := RunWithGolden(t, s)
	require.NoError(t, err)
	second, err := RunWithGolden(t, s)
	require.NoError(t, err)

	a, err := Snapshot(s, first)
	require.NoError(t, err)
	b, err := Snapshot(s, second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
