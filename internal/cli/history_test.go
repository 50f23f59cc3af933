package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pybridge/internal/store"
	"github.com/roach88/pybridge/internal/testutil"
)

func TestHistoryNoJournal(t *testing.T) {
	out, _, err := runCLI(t, "history")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "no journal configured")
}

func TestHistoryEmpty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	out, _, err := runCLI(t, "--journal", db, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs found")
}

func TestHistoryRecordsRuns(t *testing.T) {
	dir := testutil.WriteTree(t, map[string]string{
		"pkg/__init__.py": addOneSource + `

def go_bind_spread(*xs: int) -> int:
    return 0
`,
	})
	db := filepath.Join(t.TempDir(), "runs.db")

	_, _, err := runCLI(t, "--journal", db, "generate", filepath.Join(dir, "pkg"))
	require.NoError(t, err)
	_, _, err = runCLI(t, "--journal", db, "generate", "--dry-run", filepath.Join(dir, "pkg"))
	require.NoError(t, err)

	out, _, err := runCLI(t, "--journal", db, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "RUN")
	assert.Contains(t, out, "written")
	assert.Contains(t, out, "dry-run")

	out, _, err = runCLI(t, "--journal", db, "--format", "json", "history", "--limit", "1")
	require.NoError(t, err)
	var resp struct {
		Status string      `json:"status"`
		Data   []store.Run `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "py2go", resp.Data[0].Direction)
	assert.Equal(t, 1, resp.Data[0].FailureCount)

	out, _, err = runCLI(t, "--journal", db, "history", "--run", resp.Data[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "addOne(x: i64) -> i64")
	assert.Contains(t, out, "go_bind_spread")
}

func TestHistoryUnknownRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	out, _, err := runCLI(t, "--journal", db, "history", "--run", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")
}

func TestHistoryFilters(t *testing.T) {
	dir := testutil.WriteTree(t, map[string]string{"pkg/__init__.py": addOneSource})
	db := filepath.Join(t.TempDir(), "runs.db")

	_, _, err := runCLI(t, "--journal", db, "generate", filepath.Join(dir, "pkg"))
	require.NoError(t, err)
	_, _, err = runCLI(t, "--journal", db, "generate", "--dry-run", filepath.Join(dir, "pkg"))
	require.NoError(t, err)

	count := func(args ...string) int {
		t.Helper()
		out, _, err := runCLI(t, append([]string{"--journal", db, "--format", "json", "history"}, args...)...)
		require.NoError(t, err)
		var resp struct {
			Data []store.Run `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		return len(resp.Data)
	}

	assert.Equal(t, 2, count())
	assert.Equal(t, 1, count("--status", "dry-run"))
	assert.Equal(t, 2, count("--direction", "py2go"))
	assert.Equal(t, 0, count("--direction", "go2py"))
	assert.Equal(t, 2, count("--target", dir))
	assert.Equal(t, 0, count("--failed-function", "go_bind_addOne"))
}
