package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalScenario = `
name: test_scenario
description: "Test scenario for validation"
direction: py2go
target: pkg
files:
  pkg/__init__.py: |
    def go_bind_f(x: int) -> int:
        return x
expect:
  status: dry-run
  bindings:
    - "f(x: i64) -> i64"
assertions:
  - type: binding_count
    count: 1
`

func TestLoadScenario_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalScenario), 0644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "py2go", scenario.Direction)
	assert.Equal(t, "pkg", scenario.Target)
	assert.Contains(t, scenario.Files["pkg/__init__.py"], "def go_bind_f")
	assert.Equal(t, "dry-run", scenario.Expect.Status)
	assert.Equal(t, []string{"f(x: i64) -> i64"}, scenario.Expect.Bindings)
	require.Len(t, scenario.Assertions, 1)
	assert.Equal(t, AssertBindingCount, scenario.Assertions[0].Type)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(minimalScenario + "assertion: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "description: d\ndirection: py2go\ntarget: p\nfiles: {p/__init__.py: ''}\nexpect: {status: dry-run}\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: n\ndirection: py2go\ntarget: p\nfiles: {p/__init__.py: ''}\nexpect: {status: dry-run}\n",
			wantErr: "description is required",
		},
		{
			name:    "unknown direction",
			yaml:    "name: n\ndescription: d\ndirection: sideways\ntarget: p\nfiles: {p/__init__.py: ''}\nexpect: {status: dry-run}\n",
			wantErr: `unknown direction "sideways"`,
		},
		{
			name:    "no files",
			yaml:    "name: n\ndescription: d\ndirection: py2go\ntarget: p\nexpect: {status: dry-run}\n",
			wantErr: "files map is required",
		},
		{
			name:    "escaping file",
			yaml:    "name: n\ndescription: d\ndirection: py2go\ntarget: p\nfiles: {../x.py: ''}\nexpect: {status: dry-run}\n",
			wantErr: "escapes the scenario directory",
		},
		{
			name:    "absolute target",
			yaml:    "name: n\ndescription: d\ndirection: py2go\ntarget: /p\nfiles: {p/__init__.py: ''}\nexpect: {status: dry-run}\n",
			wantErr: "path must be relative",
		},
		{
			name:    "missing status",
			yaml:    "name: n\ndescription: d\ndirection: py2go\ntarget: p\nfiles: {p/__init__.py: ''}\n",
			wantErr: "expect.status is required",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: n\ndescription: d\ndirection: py2go\ntarget: p\nfiles: {p/__init__.py: ''}\nexpect: {status: dry-run}\nassertions: [{type: trace_contains}]\n",
			wantErr: `unknown assertion type "trace_contains"`,
		},
		{
			name:    "contains without text",
			yaml:    "name: n\ndescription: d\ndirection: py2go\ntarget: p\nfiles: {p/__init__.py: ''}\nexpect: {status: dry-run}\nassertions: [{type: artifact_contains}]\n",
			wantErr: "text is required for artifact_contains",
		},
		{
			name:    "journaled without status",
			yaml:    "name: n\ndescription: d\ndirection: py2go\ntarget: p\nfiles: {p/__init__.py: ''}\nexpect: {status: dry-run}\nassertions: [{type: journaled}]\n",
			wantErr: "status is required for journaled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFindScenarios(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"add_one.yaml", "add_two.yml", "collision.yaml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	all, err := FindScenarios(dir, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	some, err := FindScenarios(dir, "add_*")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "add_one.yaml"), filepath.Join(dir, "add_two.yml")}, some)

	_, err = FindScenarios(dir, "[")
	assert.Error(t, err)
}

func TestLoadScenario_Testdata(t *testing.T) {
	files, err := FindScenarios("testdata/scenarios", "")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		_, err := LoadScenario(f)
		assert.NoError(t, err, f)
	}
}
