package resolver

import (
	"strings"

	"github.com/roach88/pybridge/internal/ir"
	"github.com/roach88/pybridge/internal/pysrc"
)

var pyScalars = map[string]ir.ScalarKind{
	"int":   ir.I64,
	"float": ir.F64,
	"str":   ir.String,
	"bool":  ir.Bool,

	// width-exact helper names exported by the pybridge Python package
	"I8":  ir.I8,
	"I16": ir.I16,
	"I32": ir.I32,
	"I64": ir.I64,
	"U8":  ir.U8,
	"U16": ir.U16,
	"U32": ir.U32,
	"U64": ir.U64,
	"F32": ir.F32,
	"F64": ir.F64,

	"Float":            ir.F32,
	"Double":           ir.F64,
	"UnsignedLongLong": ir.U64,

	"c_byte":      ir.I8,
	"c_int8":      ir.I8,
	"c_short":     ir.I16,
	"c_int16":     ir.I16,
	"c_int":       ir.I32,
	"c_int32":     ir.I32,
	"c_long":      ir.I64,
	"c_longlong":  ir.I64,
	"c_int64":     ir.I64,
	"c_ubyte":     ir.U8,
	"c_uint8":     ir.U8,
	"c_ushort":    ir.U16,
	"c_uint16":    ir.U16,
	"c_uint":      ir.U32,
	"c_uint32":    ir.U32,
	"c_ulong":     ir.U64,
	"c_ulonglong": ir.U64,
	"c_uint64":    ir.U64,
	"c_float":     ir.F32,
	"c_double":    ir.F64,
	"c_bool":      ir.Bool,
}

type pyContainer int

const (
	pyNone pyContainer = iota
	pyTuple
	pyList
	pyMapping
	pySet
	pyUnion
	pyOptional
	pyGeneric
	pyAnnotated
)

var pyContainers = map[string]pyContainer{
	"Tuple":           pyTuple,
	"tuple":           pyTuple,
	"List":            pyList,
	"list":            pyList,
	"Sequence":        pyList,
	"MutableSequence": pyList,
	"Dict":            pyMapping,
	"dict":            pyMapping,
	"Mapping":         pyMapping,
	"MutableMapping":  pyMapping,
	"Set":             pySet,
	"set":             pySet,
	"FrozenSet":       pySet,
	"frozenset":       pySet,
	"AbstractSet":     pySet,
	"MutableSet":      pySet,
	"Union":           pyUnion,
	"Optional":        pyOptional,
	"Generic":         pyGeneric,
	"Annotated":       pyAnnotated,
}

// qualifiers stripped from dotted names before lookup.
var pyQualifiers = []string{
	"typing_extensions.",
	"typing.",
	"collections.abc.",
	"ctypes.",
	"pybridge.",
	"builtins.",
}

func normalizePyName(dotted string) string {
	for _, q := range pyQualifiers {
		if strings.HasPrefix(dotted, q) {
			return strings.TrimPrefix(dotted, q)
		}
	}
	return dotted
}

// PyEnv carries the names visible to annotations in one module: classes
// declared anywhere in the scanned sources, and the module-level imports
// and assignments seen so far.
type PyEnv struct {
	classes map[string]bool
	imports map[string]string
	aliases map[string]pysrc.Expr
	active  map[string]bool
}

// NewPyEnv creates an environment that knows the given class names.
func NewPyEnv(classes map[string]bool) *PyEnv {
	if classes == nil {
		classes = map[string]bool{}
	}
	return &PyEnv{
		classes: classes,
		imports: map[string]string{},
		aliases: map[string]pysrc.Expr{},
		active:  map[string]bool{},
	}
}

// Assign records a module-level assignment. A later assignment to the same
// name replaces the earlier one for every annotation resolved afterwards.
func (e *PyEnv) Assign(name string, value pysrc.Expr) {
	delete(e.imports, name)
	e.aliases[name] = value
}

// Import records that local names the dotted path, as bound by
// "import typing as t" or "from typing import List as L".
func (e *PyEnv) Import(local, path string) {
	delete(e.aliases, local)
	if local == path {
		return
	}
	e.imports[local] = path
}

// expand rewrites the leading segment of dotted through the recorded
// imports: with "import typing as t", t.List becomes typing.List.
func (e *PyEnv) expand(dotted string) string {
	head, rest, qualified := strings.Cut(dotted, ".")
	path, ok := e.imports[head]
	if !ok {
		return dotted
	}
	if !qualified {
		return path
	}
	return path + "." + rest
}

// isImportedClass reports whether a relative import names a class declared
// in the scanned sources.
func (e *PyEnv) isImportedClass(expanded string) bool {
	if !strings.HasPrefix(expanded, ".") {
		return false
	}
	return e.classes[expanded[strings.LastIndex(expanded, ".")+1:]]
}

// ResolvePython resolves a parameter annotation.
func ResolvePython(ann pysrc.Expr, env *PyEnv) (ir.Descriptor, error) {
	if ann == nil {
		return nil, fail("", ErrMissingAnnotation, "")
	}
	r := pyResolver{env: env, root: pysrc.Format(ann)}
	return r.resolve(ann, 1, false)
}

// ResolvePythonReturn resolves a return annotation. An absent annotation and
// None both resolve to ir.Unit.
func ResolvePythonReturn(ann pysrc.Expr, env *PyEnv) (ir.Descriptor, error) {
	switch ann.(type) {
	case nil, pysrc.NoneLit:
		return ir.Unit{}, nil
	}
	if s, ok := ann.(pysrc.Str); ok && strings.TrimSpace(s.Value) == "None" {
		return ir.Unit{}, nil
	}
	return ResolvePython(ann, env)
}

type pyResolver struct {
	env  *PyEnv
	root string
}

func (r pyResolver) fail(cause error, format string, args ...any) *Error {
	return fail(r.root, cause, format, args...)
}

func (r pyResolver) resolve(e pysrc.Expr, depth int, nested bool) (ir.Descriptor, error) {
	if depth > MaxDepth {
		return nil, r.fail(ErrNestingTooDeep, "more than %d levels", MaxDepth)
	}
	switch x := e.(type) {
	case pysrc.Name, pysrc.Attribute:
		dotted, _ := pysrc.Dotted(x)
		return r.name(dotted, depth, nested)
	case pysrc.Subscript:
		return r.subscript(x, depth, nested)
	case pysrc.BinOr:
		return r.union(flattenOr(x), "", depth, nested)
	case pysrc.Str:
		inner, err := pysrc.ParseExpr(x.Value)
		if err != nil {
			return nil, r.fail(ErrUnsupported, "forward reference %q: %v", x.Value, err)
		}
		return r.resolve(inner, depth+1, nested)
	case pysrc.Call:
		return r.call(x, "", depth, nested)
	case pysrc.NoneLit:
		return nil, r.fail(ErrUnsupported, "None is only valid as a return annotation")
	}
	return nil, r.fail(ErrUnsupported, "%s is not a type", pysrc.Format(e))
}

func (r pyResolver) name(dotted string, depth int, nested bool) (ir.Descriptor, error) {
	if alias, ok := r.env.aliases[dotted]; ok && !r.env.active[dotted] {
		r.env.active[dotted] = true
		defer delete(r.env.active, dotted)
		if call, ok := alias.(pysrc.Call); ok {
			return r.call(call, dotted, depth+1, nested)
		}
		return r.resolve(alias, depth+1, nested)
	}
	expanded := r.env.expand(dotted)
	if r.env.classes[dotted] || r.env.isImportedClass(expanded) {
		return nil, r.fail(ErrCustomClass, "class %s", dotted)
	}
	name := normalizePyName(expanded)
	if k, ok := pyScalars[name]; ok {
		return ir.Scalar{Kind: k}, nil
	}
	if c, ok := pyContainers[name]; ok {
		if c == pySet {
			return nil, r.fail(ErrUnsupported, "sets cannot cross the boundary")
		}
		return nil, r.fail(ErrMissingParams, "%s", name)
	}
	switch name {
	case "Any", "object":
		return ir.Opaque{Hint: name}, nil
	case "None":
		return nil, r.fail(ErrUnsupported, "None is only valid as a return annotation")
	}
	return ir.Opaque{Hint: dotted}, nil
}

func (r pyResolver) subscript(s pysrc.Subscript, depth int, nested bool) (ir.Descriptor, error) {
	dotted, ok := pysrc.Dotted(s.Value)
	if !ok {
		return nil, r.fail(ErrUnsupported, "cannot subscript %s", pysrc.Format(s.Value))
	}
	expanded := r.env.expand(dotted)
	if r.env.classes[dotted] || r.env.isImportedClass(expanded) {
		return nil, r.fail(ErrCustomClass, "generic class %s", dotted)
	}
	name := normalizePyName(expanded)
	kind, ok := pyContainers[name]
	if !ok {
		return ir.Opaque{Hint: pysrc.Format(s)}, nil
	}

	switch kind {
	case pyTuple:
		if len(s.Index) == 0 || (len(s.Index) == 1 && isEmptyTuple(s.Index[0])) {
			return nil, r.fail(ErrUnsupported, "empty tuple")
		}
		elems := make([]ir.Descriptor, len(s.Index))
		for i, a := range s.Index {
			if _, ok := a.(pysrc.EllipsisLit); ok {
				return nil, r.fail(ErrUnsupported, "variable-length tuple")
			}
			d, err := r.resolve(a, depth+1, true)
			if err != nil {
				return nil, err
			}
			elems[i] = d
		}
		return ir.Tuple{Elems: elems}, nil
	case pyList:
		if len(s.Index) != 1 {
			return nil, r.fail(ErrUnsupported, "%s takes exactly one type parameter", name)
		}
		elem, err := r.resolve(s.Index[0], depth+1, true)
		if err != nil {
			return nil, err
		}
		return ir.List{Elem: elem}, nil
	case pyMapping:
		if len(s.Index) != 2 {
			return nil, r.fail(ErrUnsupported, "%s takes exactly two type parameters", name)
		}
		key, err := r.resolve(s.Index[0], depth+1, true)
		if err != nil {
			return nil, err
		}
		ks, ok := key.(ir.Scalar)
		if !ok {
			return nil, r.fail(ErrUnhashableKey, "key %s", key)
		}
		val, err := r.resolve(s.Index[1], depth+1, true)
		if err != nil {
			return nil, err
		}
		return ir.Mapping{Key: ks, Value: val}, nil
	case pySet:
		return nil, r.fail(ErrUnsupported, "sets cannot cross the boundary")
	case pyUnion:
		return r.union(s.Index, "", depth, nested)
	case pyOptional:
		return nil, r.fail(ErrUnsupported, "Optional: None cannot cross the boundary")
	case pyGeneric:
		if len(s.Index) != 1 {
			return nil, r.fail(ErrUnsupported, "Generic takes exactly one type variable")
		}
		return r.resolve(s.Index[0], depth+1, nested)
	case pyAnnotated:
		if len(s.Index) == 0 {
			return nil, r.fail(ErrMissingParams, "Annotated")
		}
		return r.resolve(s.Index[0], depth+1, nested)
	}
	return nil, r.fail(ErrUnsupported, "%s", pysrc.Format(s))
}

// call resolves TypeVar(...) and NewType(...) declarations. name is the
// alias the call was assigned to, if any.
func (r pyResolver) call(c pysrc.Call, alias string, depth int, nested bool) (ir.Descriptor, error) {
	fn, _ := pysrc.Dotted(c.Func)
	switch normalizePyName(r.env.expand(fn)) {
	case "TypeVar":
		if len(c.Args) == 0 {
			return nil, r.fail(ErrUnsupported, "TypeVar without a name")
		}
		varName := alias
		if s, ok := c.Args[0].(pysrc.Str); ok {
			varName = s.Value
		}
		if len(c.Args) == 1 {
			// unconstrained or bound= only: passes through unexamined
			return ir.Opaque{Hint: "TypeVar " + varName}, nil
		}
		return r.union(c.Args[1:], varName, depth, nested)
	case "NewType":
		if len(c.Args) != 2 {
			return nil, r.fail(ErrUnsupported, "NewType takes a name and a type")
		}
		return r.resolve(c.Args[1], depth+1, nested)
	}
	return nil, r.fail(ErrUnsupported, "call %s is not a type", pysrc.Format(c))
}

// union resolves a closed list of scalar alternatives into a Choice.
// Duplicate kinds are collapsed; a single remaining alternative is returned
// as a plain scalar.
func (r pyResolver) union(alts []pysrc.Expr, varName string, depth int, nested bool) (ir.Descriptor, error) {
	var scalars []ir.Scalar
	seen := map[ir.ScalarKind]bool{}
	for _, a := range alts {
		if _, ok := a.(pysrc.NoneLit); ok {
			return nil, r.fail(ErrUnsupported, "None cannot be a type alternative")
		}
		d, err := r.resolve(a, depth+1, true)
		if err != nil {
			return nil, err
		}
		s, ok := d.(ir.Scalar)
		if !ok {
			return nil, r.fail(ErrUnsupported, "type alternative %s is not a scalar or string", d)
		}
		if !seen[s.Kind] {
			seen[s.Kind] = true
			scalars = append(scalars, s)
		}
	}
	if len(scalars) == 1 {
		return scalars[0], nil
	}
	if nested {
		return nil, r.fail(ErrNestedChoice, "")
	}
	return ir.Choice{Var: varName, Alts: scalars}, nil
}

func flattenOr(b pysrc.BinOr) []pysrc.Expr {
	var out []pysrc.Expr
	for _, side := range []pysrc.Expr{b.Left, b.Right} {
		if inner, ok := side.(pysrc.BinOr); ok {
			out = append(out, flattenOr(inner)...)
		} else {
			out = append(out, side)
		}
	}
	return out
}

func isEmptyTuple(e pysrc.Expr) bool {
	t, ok := e.(pysrc.TupleExpr)
	return ok && len(t.Elts) == 0
}
