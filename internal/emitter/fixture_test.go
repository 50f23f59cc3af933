package emitter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/pybridge/internal/ir"
	"github.com/roach88/pybridge/internal/pkgmodel"
)

func i64() ir.Scalar { return ir.Scalar{Kind: ir.I64} }

func str() ir.Scalar { return ir.Scalar{Kind: ir.String} }

func param(name string, d ir.Descriptor) ir.Param {
	return ir.Param{Name: name, Type: d}
}

func bindSig(prefix, name string, ret ir.Descriptor, params ...ir.Param) *ir.Signature {
	return &ir.Signature{Name: name, Symbol: prefix + name, Prefix: prefix, Params: params, Return: ret}
}

// mathModel is a py2go model covering every descriptor form.
func mathModel(t *testing.T) *pkgmodel.Model {
	t.Helper()
	pair := ir.Tuple{Elems: []ir.Descriptor{i64(), ir.Scalar{Kind: ir.F64}}}
	choice := ir.Choice{Alts: []ir.Scalar{i64(), str()}}

	m := pkgmodel.New("mathpkg")
	require.NoError(t, m.Insert(nil, bindSig("go_bind_", "add", i64(), param("a", i64()), param("b", i64()))))
	require.NoError(t, m.Insert(nil, bindSig("go_bind_", "log", ir.Unit{}, param("msg", str()))))
	require.NoError(t, m.Insert(nil, bindSig("go_bind_", "pick", choice, param("x", choice))))
	require.NoError(t, m.Insert([]string{"geometry"}, bindSig("go_bind_", "pair_sum", pair, param("p", pair))))
	require.NoError(t, m.Insert([]string{"geometry"}, bindSig("go_bind_", "tags", ir.List{Elem: str()},
		param("m", ir.Mapping{Key: str(), Value: ir.List{Elem: ir.Scalar{Kind: ir.I32}}}))))
	require.NoError(t, m.Insert([]string{"geometry"}, bindSig("go_bind_", "handle", ir.Opaque{}, param("h", ir.Opaque{}))))
	return m
}

// shapesModel is a go2py model with width helpers and type variables.
func shapesModel(t *testing.T) *pkgmodel.Model {
	t.Helper()
	anyT := ir.Choice{Var: "T", Alts: []ir.Scalar{i64(), str()}}
	numT := ir.Choice{Var: "T", Alts: []ir.Scalar{{Kind: ir.F64}, i64()}}
	f32 := ir.Scalar{Kind: ir.F32}

	m := pkgmodel.New("shapes")
	require.NoError(t, m.Insert(nil, bindSig("PyBind", "Add", i64(), param("a", i64()), param("b", i64()))))
	require.NoError(t, m.Insert(nil, bindSig("PyBind", "Pick", anyT, param("x", anyT))))
	require.NoError(t, m.Insert([]string{"geo"}, bindSig("PyBind", "Area", ir.Scalar{Kind: ir.F64}, param("w", f32), param("h", f32))))
	require.NoError(t, m.Insert([]string{"geo"}, bindSig("PyBind", "Corners",
		ir.List{Elem: ir.Tuple{Elems: []ir.Descriptor{i64(), i64()}}}, param("n", ir.Scalar{Kind: ir.U8}))))
	require.NoError(t, m.Insert([]string{"geo"}, bindSig("PyBind", "Scale", ir.Unit{}, param("from", numT))))
	require.NoError(t, m.Insert([]string{"text", "util"}, bindSig("PyBind", "Words",
		ir.Mapping{Key: str(), Value: ir.Scalar{Kind: ir.I32}}, param("s", str()))))
	return m
}
