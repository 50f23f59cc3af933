package generate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pybridge/internal/emitter"
	"github.com/roach88/pybridge/internal/ir"
	"github.com/roach88/pybridge/internal/pkgmodel"
	"github.com/roach88/pybridge/internal/resolver"
	"github.com/roach88/pybridge/internal/scanner"
	"github.com/roach88/pybridge/internal/testutil"
)

const addOneSource = `def go_bind_addOne(x: int) -> int:
    return x + 1
`

type memJournal struct {
	runs []*Report
}

func (j *memJournal) RecordRun(_ context.Context, r *Report) error {
	j.runs = append(j.runs, r)
	return nil
}

func testOptions(target string) Options {
	return Options{
		Target: target,
		RunIDs: testutil.NewFixedRunIDGenerator("run-1"),
		Clock:  testutil.NewDeterministicClock(),
	}
}

func TestGenerateGlue_AddOne(t *testing.T) {
	dir := testutil.WriteTree(t, map[string]string{"pkg/__init__.py": addOneSource})
	pkg := filepath.Join(dir, "pkg")

	r, err := GenerateGlue(context.Background(), testOptions(pkg))
	require.NoError(t, err)

	assert.Equal(t, StatusWritten, r.Status)
	assert.Equal(t, scanner.Py2Go, r.Direction)
	assert.Equal(t, "run-1", r.RunID)
	assert.Equal(t, testutil.Epoch, r.StartedAt)
	assert.Equal(t, testutil.Epoch.Add(time.Second), r.FinishedAt)
	assert.Empty(t, r.Failures)

	require.Len(t, r.Signatures, 1)
	sig := r.Signatures[0]
	assert.Equal(t, "addOne", sig.Name)
	assert.Equal(t, "go_bind_addOne", sig.Symbol)
	require.Len(t, sig.Params, 1)
	assert.Equal(t, ir.Scalar{Kind: ir.I64}, sig.Params[0].Type)
	assert.Equal(t, ir.Scalar{Kind: ir.I64}, sig.Return)

	assert.Equal(t, filepath.Join(pkg, emitter.GlueFilename), r.Output)
	content, err := os.ReadFile(r.Output)
	require.NoError(t, err)
	assert.Contains(t, string(content), "package pkg\n")
	assert.Contains(t, string(content), "func (m *PyModules) AddOne(x int64) (result int64, err error) {")
	assert.Contains(t, string(content), emitter.DigestPrefix+r.Digest)
}

func TestGenerateGlue_Subpackage(t *testing.T) {
	dir := testutil.WriteTree(t, map[string]string{
		"pkg/__init__.py": "",
		"pkg/subdir/__init__.py": `def go_bind_area(w: float, h: float) -> float:
    return w * h
`,
	})
	pkg := filepath.Join(dir, "pkg")

	res, err := scanner.ScanPython(pkg, scanner.DefaultMarkers(scanner.Py2Go), testLogger())
	require.NoError(t, err)
	model, err := BuildModel(res)
	require.NoError(t, err)

	assert.Empty(t, model.Root().Funcs())
	sub, ok := model.Lookup([]string{"subdir"})
	require.True(t, ok)
	require.NotNil(t, sub.Func("area"))

	opts := testOptions(pkg)
	opts.DryRun = true
	r, err := GenerateGlue(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, StatusDryRun, r.Status)
	assert.Empty(t, r.Output)

	src := string(r.Content)
	assert.Contains(t, src, "Subdir *Subdir")
	assert.Contains(t, src, "func (m *Subdir) Area(w float64, h float64) (result float64, err error) {")
	assert.Contains(t, src, `rt.Import("pkg.subdir")`)

	_, err = os.Stat(filepath.Join(pkg, emitter.GlueFilename))
	assert.True(t, errors.Is(err, os.ErrNotExist), "dry run must not write")
}

func TestGenerateGlue_OnlyFunctionUnresolvable(t *testing.T) {
	dir := testutil.WriteTree(t, map[string]string{
		"pkg/__init__.py": `class Widget:
    pass


def go_bind_paint(w: Widget) -> int:
    return 0
`,
	})
	pkg := filepath.Join(dir, "pkg")
	journal := &memJournal{}
	opts := testOptions(pkg)
	opts.Journal = journal

	r, err := GenerateGlue(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoBindings))

	assert.Equal(t, StatusFailed, r.Status)
	assert.Empty(t, r.Signatures)
	require.Len(t, r.Failures, 1)
	assert.Equal(t, "go_bind_paint", r.Failures[0].Function)
	assert.True(t, errors.Is(r.Failures[0], resolver.ErrCustomClass))

	_, statErr := os.Stat(filepath.Join(pkg, emitter.GlueFilename))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))

	require.Len(t, journal.runs, 1)
	assert.Equal(t, StatusFailed, journal.runs[0].Status)
	assert.NotEmpty(t, journal.runs[0].Error)
}

func TestGenerateGlue_PartialFailures(t *testing.T) {
	dir := testutil.WriteTree(t, map[string]string{
		"pkg/__init__.py": addOneSource + `

def go_bind_spread(*xs: int) -> int:
    return 0
`,
	})
	r, err := GenerateGlue(context.Background(), testOptions(filepath.Join(dir, "pkg")))
	require.NoError(t, err)
	assert.Equal(t, StatusWritten, r.Status)
	assert.Len(t, r.Signatures, 1)
	require.Len(t, r.Failures, 1)
	assert.True(t, errors.Is(r.Failures[0], scanner.ErrVariadic))
}

func TestGenerateGlue_Collision(t *testing.T) {
	dir := testutil.WriteTree(t, map[string]string{
		"pkg/__init__.py": `def go_bind_util(x: int) -> int:
    return x
`,
		"pkg/util.py": `def go_bind_twice(x: int) -> int:
    return 2 * x
`,
	})
	pkg := filepath.Join(dir, "pkg")

	r, err := GenerateGlue(context.Background(), testOptions(pkg))
	var collision *pkgmodel.CollisionError
	require.True(t, errors.As(err, &collision), "got %v", err)
	assert.Equal(t, "util", collision.Name)
	assert.Equal(t, StatusFailed, r.Status)

	_, statErr := os.Stat(filepath.Join(pkg, emitter.GlueFilename))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestGenerateGlue_NoPackageRoot(t *testing.T) {
	dir := testutil.WriteTree(t, map[string]string{"loose/mod.py": addOneSource})

	_, err := GenerateGlue(context.Background(), testOptions(filepath.Join(dir, "loose")))
	var structural *scanner.StructuralError
	require.True(t, errors.As(err, &structural), "got %v", err)
	assert.True(t, errors.Is(err, scanner.ErrNoPackageRoot))
}

func TestGenerateGlue_Check(t *testing.T) {
	dir := testutil.WriteTree(t, map[string]string{"pkg/__init__.py": addOneSource})
	pkg := filepath.Join(dir, "pkg")
	ctx := context.Background()

	check := testOptions(pkg)
	check.Check = true

	r, err := GenerateGlue(ctx, check)
	require.NoError(t, err)
	assert.Equal(t, StatusStale, r.Status, "missing glue is stale")

	_, err = GenerateGlue(ctx, testOptions(pkg))
	require.NoError(t, err)

	r, err = GenerateGlue(ctx, check)
	require.NoError(t, err)
	assert.Equal(t, StatusCurrent, r.Status)
	assert.Empty(t, r.Output)

	more := addOneSource + `

def go_bind_neg(x: int) -> int:
    return -x
`
	require.NoError(t, os.WriteFile(filepath.Join(pkg, "__init__.py"), []byte(more), 0o644))
	r, err = GenerateGlue(ctx, check)
	require.NoError(t, err)
	assert.Equal(t, StatusStale, r.Status)
}

func TestGenerateGlue_CustomPrefix(t *testing.T) {
	dir := testutil.WriteTree(t, map[string]string{
		"pkg/__init__.py": `def export_sq(x: int) -> int:
    return x * x


def go_bind_ignored(x: int) -> int:
    return x
`,
	})
	opts := testOptions(filepath.Join(dir, "pkg"))
	opts.Prefixes = []string{"export_"}
	opts.GoPackage = "sq"
	opts.DryRun = true

	r, err := GenerateGlue(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, r.Signatures, 1)
	assert.Equal(t, "sq", r.Signatures[0].Name)
	assert.Contains(t, string(r.Content), "package sq\n")
}

func TestGenerateGlue_Canceled(t *testing.T) {
	dir := testutil.WriteTree(t, map[string]string{"pkg/__init__.py": addOneSource})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := GenerateGlue(ctx, testOptions(filepath.Join(dir, "pkg")))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, StatusFailed, r.Status)
}
