package resolver

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"

	"github.com/roach88/pybridge/internal/ir"
)

var goScalars = map[string]ir.ScalarKind{
	"int8":    ir.I8,
	"int16":   ir.I16,
	"int32":   ir.I32,
	"rune":    ir.I32,
	"int64":   ir.I64,
	"int":     ir.I64,
	"uint8":   ir.U8,
	"byte":    ir.U8,
	"uint16":  ir.U16,
	"uint32":  ir.U32,
	"uint64":  ir.U64,
	"uint":    ir.U64,
	"float32": ir.F32,
	"float64": ir.F64,
	"bool":    ir.Bool,
	"string":  ir.String,
}

// GoEnv holds the package-level type declarations visible to a signature
// and, while a generic function is being resolved, its type parameters.
type GoEnv struct {
	types  map[string]*ast.TypeSpec
	params map[string]ast.Expr
	active map[string]bool
}

// NewGoEnv collects the type declarations of every file in one package.
func NewGoEnv(files ...*ast.File) *GoEnv {
	env := &GoEnv{
		types:  map[string]*ast.TypeSpec{},
		params: map[string]ast.Expr{},
		active: map[string]bool{},
	}
	for _, f := range files {
		for _, decl := range f.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				ts := spec.(*ast.TypeSpec)
				env.types[ts.Name.Name] = ts
			}
		}
	}
	return env
}

// WithTypeParams returns a copy of env that also knows the type parameters
// in list.
func (e *GoEnv) WithTypeParams(list *ast.FieldList) *GoEnv {
	if list == nil || len(list.List) == 0 {
		return e
	}
	out := &GoEnv{types: e.types, params: map[string]ast.Expr{}, active: e.active}
	for k, v := range e.params {
		out.params[k] = v
	}
	for _, field := range list.List {
		for _, name := range field.Names {
			out.params[name.Name] = field.Type
		}
	}
	return out
}

// ResolveGo resolves a Go type expression.
func ResolveGo(expr ast.Expr, env *GoEnv) (ir.Descriptor, error) {
	if expr == nil {
		return nil, fail("", ErrMissingAnnotation, "")
	}
	r := goResolver{env: env, root: types.ExprString(expr)}
	return r.resolve(expr, 1, false)
}

// ResolveGoFunc resolves the parameters and results of a function
// declaration. Unnamed parameters are named argN by position. Several
// results resolve to a tuple; none resolves to ir.Unit.
func ResolveGoFunc(fn *ast.FuncDecl, env *GoEnv) ([]ir.Param, ir.Descriptor, error) {
	env = env.WithTypeParams(fn.Type.TypeParams)

	var params []ir.Param
	if fn.Type.Params != nil {
		for _, field := range fn.Type.Params.List {
			d, err := ResolveGo(field.Type, env)
			if err != nil {
				return nil, nil, fmt.Errorf("parameter %s: %w", fieldLabel(field, len(params)), err)
			}
			if len(field.Names) == 0 {
				params = append(params, ir.Param{Name: fmt.Sprintf("arg%d", len(params)), Type: d})
				continue
			}
			for _, name := range field.Names {
				pname := name.Name
				if pname == "_" {
					pname = fmt.Sprintf("arg%d", len(params))
				}
				params = append(params, ir.Param{Name: pname, Type: d})
			}
		}
	}

	var results []ir.Descriptor
	if fn.Type.Results != nil {
		for _, field := range fn.Type.Results.List {
			d, err := ResolveGo(field.Type, env)
			if err != nil {
				return nil, nil, fmt.Errorf("result: %w", err)
			}
			n := max(len(field.Names), 1)
			for range n {
				results = append(results, d)
			}
		}
	}

	switch len(results) {
	case 0:
		return params, ir.Unit{}, nil
	case 1:
		return params, results[0], nil
	}
	for _, d := range results {
		if _, ok := d.(ir.Choice); ok {
			return nil, nil, fmt.Errorf("result: %w", fail(types.ExprString(fn.Type.Results.List[0].Type), ErrNestedChoice, ""))
		}
	}
	return params, ir.Tuple{Elems: results}, nil
}

func fieldLabel(field *ast.Field, index int) string {
	if len(field.Names) > 0 {
		return field.Names[0].Name
	}
	return fmt.Sprintf("arg%d", index)
}

type goResolver struct {
	env  *GoEnv
	root string
}

func (r goResolver) fail(cause error, format string, args ...any) *Error {
	return fail(r.root, cause, format, args...)
}

func (r goResolver) resolve(e ast.Expr, depth int, nested bool) (ir.Descriptor, error) {
	if depth > MaxDepth {
		return nil, r.fail(ErrNestingTooDeep, "more than %d levels", MaxDepth)
	}
	switch x := e.(type) {
	case *ast.ParenExpr:
		return r.resolve(x.X, depth, nested)
	case *ast.Ident:
		return r.ident(x.Name, depth, nested)
	case *ast.SelectorExpr:
		return ir.Opaque{Hint: types.ExprString(e)}, nil
	case *ast.StarExpr:
		// a pointer passes through only when its target already does
		elem, err := r.resolve(x.X, depth+1, true)
		if err != nil {
			return nil, err
		}
		if _, ok := elem.(ir.Opaque); !ok {
			return nil, r.fail(ErrUnsupported, "pointer to %s cannot cross the boundary", elem)
		}
		return ir.Opaque{Hint: types.ExprString(e)}, nil
	case *ast.ArrayType:
		if x.Len != nil {
			return nil, r.fail(ErrUnsupported, "fixed-size arrays cannot cross the boundary")
		}
		elem, err := r.resolve(x.Elt, depth+1, true)
		if err != nil {
			return nil, err
		}
		return ir.List{Elem: elem}, nil
	case *ast.MapType:
		key, err := r.resolve(x.Key, depth+1, true)
		if err != nil {
			return nil, err
		}
		ks, ok := key.(ir.Scalar)
		if !ok {
			return nil, r.fail(ErrUnhashableKey, "key %s", key)
		}
		val, err := r.resolve(x.Value, depth+1, true)
		if err != nil {
			return nil, err
		}
		return ir.Mapping{Key: ks, Value: val}, nil
	case *ast.StructType:
		return r.structTuple(x, depth, nested)
	case *ast.InterfaceType:
		return ir.Opaque{Hint: types.ExprString(e)}, nil
	case *ast.IndexExpr, *ast.IndexListExpr:
		base := x
		if ix, ok := x.(*ast.IndexExpr); ok {
			base = ix.X
		} else {
			base = x.(*ast.IndexListExpr).X
		}
		if id, ok := base.(*ast.Ident); ok && r.isLocalStruct(id.Name) {
			return nil, r.fail(ErrCustomClass, "generic struct %s", id.Name)
		}
		return ir.Opaque{Hint: types.ExprString(e)}, nil
	case *ast.ChanType:
		return nil, r.fail(ErrUnsupported, "channels cannot cross the boundary")
	case *ast.FuncType:
		return nil, r.fail(ErrUnsupported, "functions cannot cross the boundary")
	case *ast.Ellipsis:
		return nil, r.fail(ErrUnsupported, "variadic parameters are not supported")
	}
	return nil, r.fail(ErrUnsupported, "%s is not a type", types.ExprString(e))
}

func (r goResolver) ident(name string, depth int, nested bool) (ir.Descriptor, error) {
	if constraint, ok := r.env.params[name]; ok {
		return r.typeParam(name, constraint, depth, nested)
	}
	if k, ok := goScalars[name]; ok {
		return ir.Scalar{Kind: k}, nil
	}
	if ts, ok := r.env.types[name]; ok && !r.env.active[name] {
		if ts.TypeParams != nil {
			if _, isStruct := ts.Type.(*ast.StructType); isStruct {
				return nil, r.fail(ErrCustomClass, "generic struct %s", name)
			}
			return ir.Opaque{Hint: name}, nil
		}
		switch ts.Type.(type) {
		case *ast.StructType:
			return nil, r.fail(ErrCustomClass, "struct %s", name)
		case *ast.InterfaceType:
			return ir.Opaque{Hint: name}, nil
		}
		r.env.active[name] = true
		defer delete(r.env.active, name)
		return r.resolve(ts.Type, depth+1, nested)
	}
	// any, error, uintptr and names this package cannot see
	return ir.Opaque{Hint: name}, nil
}

func (r goResolver) isLocalStruct(name string) bool {
	ts, ok := r.env.types[name]
	if !ok {
		return false
	}
	_, isStruct := ts.Type.(*ast.StructType)
	return isStruct
}

func (r goResolver) structTuple(st *ast.StructType, depth int, nested bool) (ir.Descriptor, error) {
	var elems []ir.Descriptor
	for _, field := range st.Fields.List {
		d, err := r.resolve(field.Type, depth+1, true)
		if err != nil {
			return nil, err
		}
		for range max(len(field.Names), 1) {
			elems = append(elems, d)
		}
	}
	if len(elems) == 0 {
		return nil, r.fail(ErrUnsupported, "empty struct")
	}
	return ir.Tuple{Elems: elems}, nil
}

// typeParam resolves a type parameter. A constraint that is a closed union
// of scalars becomes a Choice; anything else passes through as Opaque.
func (r goResolver) typeParam(name string, constraint ast.Expr, depth int, nested bool) (ir.Descriptor, error) {
	terms, ok := r.unionTerms(constraint, depth)
	if !ok {
		return ir.Opaque{Hint: name}, nil
	}
	var alts []ir.Scalar
	seen := map[ir.ScalarKind]bool{}
	for _, term := range terms {
		d, err := r.resolve(term, depth+1, true)
		if err != nil {
			return nil, err
		}
		s, ok := d.(ir.Scalar)
		if !ok {
			return nil, r.fail(ErrUnsupported, "type alternative %s is not a scalar or string", d)
		}
		if !seen[s.Kind] {
			seen[s.Kind] = true
			alts = append(alts, s)
		}
	}
	if len(alts) == 1 {
		return alts[0], nil
	}
	if nested {
		return nil, r.fail(ErrNestedChoice, "%s", name)
	}
	return ir.Choice{Var: name, Alts: alts}, nil
}

// unionTerms flattens a constraint into its type terms. It reports false for
// constraints that are not a union of concrete types, such as any or
// comparable.
func (r goResolver) unionTerms(e ast.Expr, depth int) ([]ast.Expr, bool) {
	if depth > MaxDepth {
		return nil, false
	}
	switch x := e.(type) {
	case *ast.ParenExpr:
		return r.unionTerms(x.X, depth)
	case *ast.BinaryExpr:
		if x.Op != token.OR {
			return nil, false
		}
		left, ok := r.unionTerms(x.X, depth)
		if !ok {
			return nil, false
		}
		right, ok := r.unionTerms(x.Y, depth)
		if !ok {
			return nil, false
		}
		return append(left, right...), true
	case *ast.UnaryExpr:
		if x.Op != token.TILDE {
			return nil, false
		}
		return []ast.Expr{x.X}, true
	case *ast.InterfaceType:
		if x.Methods == nil || len(x.Methods.List) != 1 || len(x.Methods.List[0].Names) != 0 {
			return nil, false
		}
		return r.unionTerms(x.Methods.List[0].Type, depth)
	case *ast.Ident:
		if ts, ok := r.env.types[x.Name]; ok {
			if iface, ok := ts.Type.(*ast.InterfaceType); ok {
				return r.unionTerms(iface, depth+1)
			}
			return []ast.Expr{x}, true
		}
		if _, ok := goScalars[x.Name]; ok {
			return []ast.Expr{x}, true
		}
		return nil, false
	}
	return nil, false
}
