package scanner

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pybridge/internal/ir"
	"github.com/roach88/pybridge/internal/resolver"
	"github.com/roach88/pybridge/internal/testutil"
)

const initSource = `from typing import List
from pybridge import go_bind


def go_bind_add(a: int, b: int) -> int:
    return a + b


@go_bind
def scale(xs: List[float], k: float) -> List[float]:
    return [x * k for x in xs]


def helper(x):
    pass
`

const shapesSource = `from typing import Dict, Tuple


class Point:
    def go_bind_norm(self) -> float:
        return 0.0


Pair = Tuple[int, str]


def go_bind_pair() -> Pair:
    return (1, "a")


def go_bind_move(p: Point) -> None:
    pass


def go_bind_spread(*args: int) -> int:
    return 0


def go_bind_default(x: int = 1) -> int:
    return x


def go_bind_untyped(x) -> int:
    return x


def go_bind_(x: int) -> int:
    return x


def go_bind_log(msg: str):
    print(msg)


def outer():
    def go_bind_inner(x: int) -> int:
        return x
    return go_bind_inner
`

func pyTree(t *testing.T) string {
	t.Helper()
	return testutil.WriteTree(t, map[string]string{
		"mathpkg/__init__.py":                 initSource,
		"mathpkg/geometry/__init__.py":        "",
		"mathpkg/geometry/shapes.py":          shapesSource,
		"mathpkg/__pycache__/stale.py":        "def go_bind_stale(:\n",
		"mathpkg/.hidden/broken.py":           "def go_bind_hidden(:\n",
		"mathpkg/geometry/nested/__init__.py": "def go_bind_deep() -> bool:\n    return True\n",
	})
}

func bindingNames(res *Result) []string {
	var names []string
	for _, b := range res.Bindings {
		names = append(names, b.Sig.Name)
	}
	return names
}

func failureFor(t *testing.T, res *Result, function string) *ResolutionError {
	t.Helper()
	for _, f := range res.Failures {
		if f.Function == function {
			return f
		}
	}
	t.Fatalf("no failure recorded for %s", function)
	return nil
}

func TestScanPython_Bindings(t *testing.T) {
	dir := pyTree(t)
	res, err := ScanPython(filepath.Join(dir, "mathpkg"), DefaultMarkers(Py2Go), zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "mathpkg", res.RootName)
	assert.Equal(t, Py2Go, res.Direction)
	assert.Equal(t, []string{"add", "scale", "deep", "pair", "log"}, bindingNames(res))

	add := res.Bindings[0]
	assert.Empty(t, add.Path)
	assert.Equal(t, "add(a: i64, b: i64) -> i64", add.Sig.String())
	assert.Equal(t, "go_bind_add", add.Sig.Symbol)
	assert.Equal(t, "go_bind_", add.Sig.Prefix)
	assert.Equal(t, []string{"mathpkg"}, add.Sig.Origin.Module)
	assert.Equal(t, "__init__.py", add.Sig.Origin.File)
	assert.Equal(t, 5, add.Sig.Origin.Line)

	scale := res.Bindings[1]
	assert.Equal(t, "scale", scale.Sig.Symbol)
	assert.Equal(t, "go_bind", scale.Sig.Marker)
	assert.Equal(t, "scale(xs: list[f64], k: f64) -> list[f64]", scale.Sig.String())

	deep := res.Bindings[2]
	assert.Equal(t, []string{"geometry", "nested"}, deep.Path)

	pair := res.Bindings[3]
	assert.Equal(t, []string{"geometry", "shapes"}, pair.Path)
	assert.Equal(t, []string{"mathpkg", "geometry", "shapes"}, pair.Sig.Origin.Module)
	assert.Equal(t, ir.Tuple{Elems: []ir.Descriptor{ir.Scalar{Kind: ir.I64}, ir.Scalar{Kind: ir.String}}}, pair.Sig.Return)

	log := res.Bindings[4]
	assert.Equal(t, ir.Unit{}, log.Sig.Return, "absent return annotation is unit")
}

func TestScanPython_Failures(t *testing.T) {
	dir := pyTree(t)
	res, err := ScanPython(filepath.Join(dir, "mathpkg", "geometry", "shapes.py"), DefaultMarkers(Py2Go), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "geometry", res.RootName, "root is the nearest package")

	assert.ErrorIs(t, failureFor(t, res, "go_bind_norm"), ErrNotModuleScope)
	assert.ErrorIs(t, failureFor(t, res, "go_bind_inner"), ErrNotModuleScope)
	assert.ErrorIs(t, failureFor(t, res, "go_bind_move"), resolver.ErrCustomClass)
	assert.ErrorIs(t, failureFor(t, res, "go_bind_spread"), ErrVariadic)
	assert.ErrorIs(t, failureFor(t, res, "go_bind_default"), ErrDefaultValue)
	assert.ErrorIs(t, failureFor(t, res, "go_bind_untyped"), resolver.ErrMissingAnnotation)
	assert.ErrorIs(t, failureFor(t, res, "go_bind_"), ErrInvalidName)

	move := failureFor(t, res, "go_bind_move")
	assert.Equal(t, "shapes.py", move.File)
	assert.Greater(t, move.Line, 0)

	var rerr *resolver.Error
	assert.True(t, errors.As(move, &rerr))
	assert.Equal(t, "Point", rerr.Annotation)
}

func TestScanPython_CustomPrefix(t *testing.T) {
	dir := testutil.WriteTree(t, map[string]string{
		"pkg/__init__.py": "def export_inc(x: I32) -> I32:\n    return x + 1\n\ndef go_bind_old(x: int) -> int:\n    return x\n",
	})
	res, err := ScanPython(filepath.Join(dir, "pkg"), DefaultMarkers(Py2Go).WithPrefixes("export_"), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"inc"}, bindingNames(res))
	assert.Equal(t, ir.Scalar{Kind: ir.I32}, res.Bindings[0].Sig.Return)
}

func TestScanPython_ClassDeclaredInAnotherFile(t *testing.T) {
	dir := testutil.WriteTree(t, map[string]string{
		"pkg/__init__.py": "def go_bind_use(m: 'Model') -> int:\n    return 0\n",
		"pkg/models.py":   "class Model:\n    pass\n",
	})
	res, err := ScanPython(filepath.Join(dir, "pkg"), DefaultMarkers(Py2Go), zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, res.Bindings)
	require.Len(t, res.Failures, 1)
	assert.ErrorIs(t, res.Failures[0], resolver.ErrCustomClass)
}

func TestScanPython_NoPackageRoot(t *testing.T) {
	dir := testutil.WriteTree(t, map[string]string{"loose.py": "def go_bind_x() -> int:\n    return 1\n"})
	_, err := ScanPython(dir, DefaultMarkers(Py2Go), zerolog.Nop())

	var serr *StructuralError
	require.True(t, errors.As(err, &serr))
	assert.ErrorIs(t, err, ErrNoPackageRoot)
}

func TestScanPython_SyntaxErrorIsStructural(t *testing.T) {
	dir := testutil.WriteTree(t, map[string]string{
		"pkg/__init__.py": "",
		"pkg/bad.py":      "def go_bind_x(:\n",
	})
	_, err := ScanPython(filepath.Join(dir, "pkg"), DefaultMarkers(Py2Go), zerolog.Nop())

	var serr *StructuralError
	require.True(t, errors.As(err, &serr))
	assert.Contains(t, serr.Path, "bad.py")
}

func TestScanPython_AliasOrder(t *testing.T) {
	src := `from typing import List

Num = int


def go_bind_first(x: Num) -> Num:
    return x


Num = List[float]


def go_bind_second(x: Num) -> Num:
    return x
`
	dir := testutil.WriteTree(t, map[string]string{"pkg/__init__.py": src})
	res, err := ScanPython(filepath.Join(dir, "pkg"), DefaultMarkers(Py2Go), zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, res.Bindings, 2)
	assert.Equal(t, ir.Scalar{Kind: ir.I64}, res.Bindings[0].Sig.Return)
	assert.Equal(t, ir.List{Elem: ir.Scalar{Kind: ir.F64}}, res.Bindings[1].Sig.Return)
}

func TestScanPython_ImportAliases(t *testing.T) {
	src := `import typing as t
from typing import List as L, Dict
from .models import Model as M


def go_bind_pairs(x: t.List[int]) -> t.Tuple[int, str]:
    return (x[0], "a")


def go_bind_index(xs: L[str]) -> Dict[str, int]:
    return {}


def go_bind_model(m: M) -> int:
    return 0
`
	dir := testutil.WriteTree(t, map[string]string{
		"pkg/__init__.py": src,
		"pkg/models.py":   "class Model:\n    pass\n",
	})
	res, err := ScanPython(filepath.Join(dir, "pkg"), DefaultMarkers(Py2Go), zerolog.Nop())
	require.NoError(t, err)

	require.Equal(t, []string{"pairs", "index"}, bindingNames(res))
	assert.Equal(t, "pairs(x: list[i64]) -> tuple[i64, str]", res.Bindings[0].Sig.String())
	assert.Equal(t, "index(xs: list[str]) -> map[str, i64]", res.Bindings[1].Sig.String())
	assert.ErrorIs(t, failureFor(t, res, "go_bind_model"), resolver.ErrCustomClass)
}

func TestScanPython_KeywordOnly(t *testing.T) {
	src := `def go_bind_kw(*, x: int) -> int:
    return x


def go_bind_after_args(*args: int, y: int) -> int:
    return y


def go_bind_positional(a: int, /, b: int) -> int:
    return a + b
`
	dir := testutil.WriteTree(t, map[string]string{"pkg/__init__.py": src})
	res, err := ScanPython(filepath.Join(dir, "pkg"), DefaultMarkers(Py2Go), zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []string{"positional"}, bindingNames(res))
	assert.ErrorIs(t, failureFor(t, res, "go_bind_kw"), ErrKeywordOnly)
	assert.ErrorIs(t, failureFor(t, res, "go_bind_after_args"), ErrVariadic)
}

func TestScanPython_NFKCNames(t *testing.T) {
	// U+FB01 (the fi ligature) normalizes to "fi"
	dir := testutil.WriteTree(t, map[string]string{
		"pkg/__init__.py": "def go_bind_ﬁnd(x: int) -> int:\n    return x\n",
	})
	res, err := ScanPython(filepath.Join(dir, "pkg"), DefaultMarkers(Py2Go), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"find"}, bindingNames(res))
}
