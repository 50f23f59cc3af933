package resolver

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pybridge/internal/ir"
)

const goFixture = `package geo

import "unsafe"

type Point struct{ X, Y float64 }

type Celsius float64

type Number interface{ ~int64 | ~float64 }

type Shape interface{ Area() float64 }

type Box[T any] struct{ V T }

func PyBindAdd(a, b int64) int64 { return a + b }

func PyBindNothing() {}

func PyBindPair() (int32, string) { return 0, "" }

func PyBindNamed() (x, y uint8) { return }

func PyBindAnon(int, string) {}

func PyBindPick[T int64 | string](v T) T { return v }

func PyBindSum[N Number](xs []N) N { var z N; return z }

func PyBindAny[T any](v T) T { return v }

func PyBindPtr(p unsafe.Pointer, u uintptr) {}

func PyBindTemp(c Celsius) Celsius { return c }

func PyBindPoint(p Point) {}

func PyBindVariadic(xs ...int) {}

func PyBindBoth[T int64 | string]() (T, bool) { var z T; return z, false }
`

func parseGoFixture(t *testing.T) (*ast.File, *GoEnv) {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), "geo.go", goFixture, 0)
	require.NoError(t, err)
	return f, NewGoEnv(f)
}

func funcDecl(t *testing.T, f *ast.File, name string) *ast.FuncDecl {
	t.Helper()
	for _, decl := range f.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok && fn.Name.Name == name {
			return fn
		}
	}
	t.Fatalf("no func %s", name)
	return nil
}

func resolveGoSrc(t *testing.T, env *GoEnv, src string) (ir.Descriptor, error) {
	t.Helper()
	expr, err := parser.ParseExpr(src)
	require.NoError(t, err, "parse %q", src)
	return ResolveGo(expr, env)
}

func TestResolveGoScalars(t *testing.T) {
	_, env := parseGoFixture(t)
	tests := []struct {
		src  string
		want ir.ScalarKind
	}{
		{"int8", ir.I8},
		{"int16", ir.I16},
		{"int32", ir.I32},
		{"rune", ir.I32},
		{"int64", ir.I64},
		{"int", ir.I64},
		{"uint8", ir.U8},
		{"byte", ir.U8},
		{"uint16", ir.U16},
		{"uint32", ir.U32},
		{"uint64", ir.U64},
		{"uint", ir.U64},
		{"float32", ir.F32},
		{"float64", ir.F64},
		{"bool", ir.Bool},
		{"string", ir.String},
		{"Celsius", ir.F64},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			d, err := resolveGoSrc(t, env, tt.src)
			require.NoError(t, err)
			assert.Equal(t, scalar(tt.want), d)
		})
	}
}

func TestResolveGoComposite(t *testing.T) {
	_, env := parseGoFixture(t)
	tests := []struct {
		src  string
		want ir.Descriptor
	}{
		{"[]int64", ir.List{Elem: scalar(ir.I64)}},
		{"map[string][]float32", ir.Mapping{Key: scalar(ir.String), Value: ir.List{Elem: scalar(ir.F32)}}},
		{"struct{ A int32; B, C string }", ir.Tuple{Elems: []ir.Descriptor{scalar(ir.I32), scalar(ir.String), scalar(ir.String)}}},
		{"[]struct{ K string; V bool }", ir.List{Elem: ir.Tuple{Elems: []ir.Descriptor{scalar(ir.String), scalar(ir.Bool)}}}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			d, err := resolveGoSrc(t, env, tt.src)
			require.NoError(t, err)
			assert.True(t, ir.Equal(tt.want, d), "got %s, want %s", d, tt.want)
		})
	}
}

func TestResolveGoOpaque(t *testing.T) {
	_, env := parseGoFixture(t)
	for _, src := range []string{"unsafe.Pointer", "uintptr", "any", "interface{}", "error", "*time.Time", "*Shape", "**any", "time.Time", "Shape"} {
		t.Run(src, func(t *testing.T) {
			d, err := resolveGoSrc(t, env, src)
			require.NoError(t, err)
			assert.IsType(t, ir.Opaque{}, d)
		})
	}
}

func TestResolveGoFailures(t *testing.T) {
	_, env := parseGoFixture(t)
	tests := []struct {
		src   string
		cause error
	}{
		{"[4]int", ErrUnsupported},
		{"*int", ErrUnsupported},
		{"*[]string", ErrUnsupported},
		{"*map[string]int", ErrUnsupported},
		{"*Point", ErrCustomClass},
		{"chan int", ErrUnsupported},
		{"func(int) int", ErrUnsupported},
		{"struct{}", ErrUnsupported},
		{"map[[]int]string", ErrUnhashableKey},
		{"Point", ErrCustomClass},
		{"[]Point", ErrCustomClass},
		{"Box[int]", ErrCustomClass},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := resolveGoSrc(t, env, tt.src)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.cause)
		})
	}
}

func TestResolveGoFunc(t *testing.T) {
	f, env := parseGoFixture(t)

	params, ret, err := ResolveGoFunc(funcDecl(t, f, "PyBindAdd"), env)
	require.NoError(t, err)
	assert.Equal(t, []ir.Param{{Name: "a", Type: scalar(ir.I64)}, {Name: "b", Type: scalar(ir.I64)}}, params)
	assert.Equal(t, scalar(ir.I64), ret)

	params, ret, err = ResolveGoFunc(funcDecl(t, f, "PyBindNothing"), env)
	require.NoError(t, err)
	assert.Empty(t, params)
	assert.Equal(t, ir.Unit{}, ret)

	_, ret, err = ResolveGoFunc(funcDecl(t, f, "PyBindPair"), env)
	require.NoError(t, err)
	assert.Equal(t, ir.Tuple{Elems: []ir.Descriptor{scalar(ir.I32), scalar(ir.String)}}, ret)

	_, ret, err = ResolveGoFunc(funcDecl(t, f, "PyBindNamed"), env)
	require.NoError(t, err)
	assert.Equal(t, ir.Tuple{Elems: []ir.Descriptor{scalar(ir.U8), scalar(ir.U8)}}, ret)

	params, _, err = ResolveGoFunc(funcDecl(t, f, "PyBindAnon"), env)
	require.NoError(t, err)
	require.Len(t, params, 2)
	assert.Equal(t, "arg0", params[0].Name)
	assert.Equal(t, "arg1", params[1].Name)

	params, _, err = ResolveGoFunc(funcDecl(t, f, "PyBindPtr"), env)
	require.NoError(t, err)
	assert.IsType(t, ir.Opaque{}, params[0].Type)
	assert.IsType(t, ir.Opaque{}, params[1].Type)

	_, ret, err = ResolveGoFunc(funcDecl(t, f, "PyBindTemp"), env)
	require.NoError(t, err)
	assert.Equal(t, scalar(ir.F64), ret)
}

func TestResolveGoFuncTypeParams(t *testing.T) {
	f, env := parseGoFixture(t)
	choice := ir.Choice{Var: "T", Alts: []ir.Scalar{scalar(ir.I64), scalar(ir.String)}}

	params, ret, err := ResolveGoFunc(funcDecl(t, f, "PyBindPick"), env)
	require.NoError(t, err)
	assert.Equal(t, choice, params[0].Type)
	assert.Equal(t, choice, ret)

	_, ret, err = ResolveGoFunc(funcDecl(t, f, "PyBindAny"), env)
	require.NoError(t, err)
	assert.IsType(t, ir.Opaque{}, ret)

	_, _, err = ResolveGoFunc(funcDecl(t, f, "PyBindSum"), env)
	assert.ErrorIs(t, err, ErrNestedChoice, "a named union constraint is a choice, and a choice cannot sit in a list")

	_, _, err = ResolveGoFunc(funcDecl(t, f, "PyBindBoth"), env)
	assert.ErrorIs(t, err, ErrNestedChoice)

	// type parameters do not leak into the shared environment
	d, err := resolveGoSrc(t, env, "T")
	require.NoError(t, err)
	assert.IsType(t, ir.Opaque{}, d)
}

func TestResolveGoFuncFailures(t *testing.T) {
	f, env := parseGoFixture(t)

	_, _, err := ResolveGoFunc(funcDecl(t, f, "PyBindPoint"), env)
	assert.ErrorIs(t, err, ErrCustomClass)
	assert.Contains(t, err.Error(), "parameter p")

	_, _, err = ResolveGoFunc(funcDecl(t, f, "PyBindVariadic"), env)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestResolveGoDepthLimit(t *testing.T) {
	src := "int"
	for range MaxDepth {
		src = "[]" + src
	}
	_, err := resolveGoSrc(t, NewGoEnv(), src)
	assert.ErrorIs(t, err, ErrNestingTooDeep)
}
