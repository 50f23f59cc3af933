package emitter

import (
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/pybridge/internal/ir"
	"github.com/roach88/pybridge/internal/pkgmodel"
)

// typeCheckGlue runs the Go type checker over emitted glue, resolving
// pkg/boundary from source.
func typeCheckGlue(t *testing.T, file *GeneratedFile) {
	t.Helper()
	// the importer resolves module paths relative to the file's directory
	dir, err := os.Getwd()
	require.NoError(t, err)

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filepath.Join(dir, file.Filename), file.Content, 0)
	require.NoError(t, err)

	conf := types.Config{Importer: importer.ForCompiler(fset, "source", nil)}
	_, err = conf.Check("example.com/glue/"+f.Name.Name, fset, []*ast.File{f}, nil)
	require.NoError(t, err, "generated glue must type-check:\n%s", file.Content)
}

// everyKindModel binds every scalar kind and every descriptor form, nested
// where nesting is allowed.
func everyKindModel(t *testing.T) *pkgmodel.Model {
	t.Helper()
	m := pkgmodel.New("kinds")

	var scalars []ir.Param
	for i, k := range ir.ScalarKinds {
		scalars = append(scalars, param(fmt.Sprintf("p%d", i), ir.Scalar{Kind: k}))
	}
	require.NoError(t, m.Insert(nil, bindSig("go_bind_", "scalars", ir.Unit{}, scalars...)))
	for _, k := range ir.ScalarKinds {
		s := ir.Scalar{Kind: k}
		require.NoError(t, m.Insert([]string{"echo"}, bindSig("go_bind_", "echo_"+k.String(), s, param("x", s))))
	}

	flag := ir.Scalar{Kind: ir.Bool}
	f32 := ir.Scalar{Kind: ir.F32}
	inner := ir.Tuple{Elems: []ir.Descriptor{str(), flag}}
	nested := ir.Tuple{Elems: []ir.Descriptor{i64(), inner, ir.List{Elem: inner}}}
	mapping := ir.Mapping{Key: flag, Value: ir.List{Elem: str()}}
	deep := ir.Mapping{Key: ir.Scalar{Kind: ir.U16}, Value: ir.Mapping{Key: str(), Value: ir.List{Elem: ir.List{Elem: f32}}}}
	choice := ir.Choice{Var: "T", Alts: []ir.Scalar{i64(), str(), f32}}

	require.NoError(t, m.Insert([]string{"shapes"}, bindSig("go_bind_", "nested", nested, param("n", nested))))
	require.NoError(t, m.Insert([]string{"shapes"}, bindSig("go_bind_", "index", mapping, param("m", mapping))))
	require.NoError(t, m.Insert([]string{"shapes"}, bindSig("go_bind_", "deep", deep, param("d", deep))))
	require.NoError(t, m.Insert([]string{"shapes"}, bindSig("go_bind_", "tuples", ir.List{Elem: nested})))
	require.NoError(t, m.Insert([]string{"shapes", "inner"}, bindSig("go_bind_", "choose", choice, param("x", choice), param("y", i64()))))
	require.NoError(t, m.Insert([]string{"shapes", "inner"}, bindSig("go_bind_", "only_returns", choice)))
	require.NoError(t, m.Insert([]string{"shapes", "inner"}, bindSig("go_bind_", "opaque", ir.Opaque{}, param("h", ir.Opaque{}), param("k", ir.Opaque{}))))
	require.NoError(t, m.Insert([]string{"shapes", "inner"}, bindSig("go_bind_", "nothing", ir.Unit{})))
	return m
}

func TestGoGlue_TypeChecks(t *testing.T) {
	if testing.Short() {
		t.Skip("type-checks pkg/boundary and its imports from source")
	}

	models := map[string]func(*testing.T) *pkgmodel.Model{
		"math":       mathModel,
		"every kind": everyKindModel,
	}
	for name, build := range models {
		t.Run(name, func(t *testing.T) {
			file, err := GoGlue(build(t), GoOptions{})
			require.NoError(t, err)
			typeCheckGlue(t, file)
		})
	}

	t.Run("package override", func(t *testing.T) {
		file, err := GoGlue(mathModel(t), GoOptions{Package: "bindings"})
		require.NoError(t, err)
		typeCheckGlue(t, file)
	})
}
