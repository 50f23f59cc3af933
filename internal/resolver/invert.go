package resolver

import (
	"fmt"
	"strings"

	"github.com/roach88/pybridge/internal/ir"
)

var goNames = map[ir.ScalarKind]string{
	ir.I8:     "int8",
	ir.I16:    "int16",
	ir.I32:    "int32",
	ir.I64:    "int64",
	ir.U8:     "uint8",
	ir.U16:    "uint16",
	ir.U32:    "uint32",
	ir.U64:    "uint64",
	ir.F32:    "float32",
	ir.F64:    "float64",
	ir.Bool:   "bool",
	ir.String: "string",
}

var pyNames = map[ir.ScalarKind]string{
	ir.I8:     "I8",
	ir.I16:    "I16",
	ir.I32:    "I32",
	ir.I64:    "int",
	ir.U8:     "U8",
	ir.U16:    "U16",
	ir.U32:    "U32",
	ir.U64:    "U64",
	ir.F32:    "F32",
	ir.F64:    "float",
	ir.Bool:   "bool",
	ir.String: "str",
}

// GoScalar returns the Go type name for a scalar kind.
func GoScalar(k ir.ScalarKind) string {
	return goNames[k]
}

// GoDecl renders d as a Go type expression. Tuples render as anonymous
// structs with fields V0, V1, ...; Unit renders as the empty string.
func GoDecl(d ir.Descriptor) string {
	return GoDeclNamed(d, nil)
}

// GoDeclNamed is GoDecl with tuples rendered by name. A nil namer, or one
// returning "", falls back to the anonymous struct form.
func GoDeclNamed(d ir.Descriptor, namer func(ir.Tuple) string) string {
	switch x := d.(type) {
	case ir.Scalar:
		return goNames[x.Kind]
	case ir.List:
		return "[]" + GoDeclNamed(x.Elem, namer)
	case ir.Mapping:
		return "map[" + goNames[x.Key.Kind] + "]" + GoDeclNamed(x.Value, namer)
	case ir.Tuple:
		if namer != nil {
			if name := namer(x); name != "" {
				return name
			}
		}
		fields := make([]string, len(x.Elems))
		for i, e := range x.Elems {
			fields[i] = fmt.Sprintf("V%d %s", i, GoDeclNamed(e, namer))
		}
		return "struct{ " + strings.Join(fields, "; ") + " }"
	case ir.Choice:
		return "any"
	case ir.Opaque:
		return "uintptr"
	case ir.Unit:
		return ""
	}
	return ""
}

// PythonDecl renders d as a Python annotation. Widths without a builtin
// spelling use the pybridge helper names (I8, U32, F32, ...).
func PythonDecl(d ir.Descriptor) string {
	switch x := d.(type) {
	case ir.Scalar:
		return pyNames[x.Kind]
	case ir.List:
		return "List[" + PythonDecl(x.Elem) + "]"
	case ir.Mapping:
		return "Dict[" + pyNames[x.Key.Kind] + ", " + PythonDecl(x.Value) + "]"
	case ir.Tuple:
		parts := make([]string, len(x.Elems))
		for i, e := range x.Elems {
			parts[i] = PythonDecl(e)
		}
		return "Tuple[" + strings.Join(parts, ", ") + "]"
	case ir.Choice:
		if x.Var != "" {
			return x.Var
		}
		parts := make([]string, len(x.Alts))
		for i, a := range x.Alts {
			parts[i] = pyNames[a.Kind]
		}
		return "Union[" + strings.Join(parts, ", ") + "]"
	case ir.Opaque:
		return "Any"
	case ir.Unit:
		return "None"
	}
	return "Any"
}

// PythonTypeVar renders the TypeVar declaration for a named choice, e.g.
// A = TypeVar('A', int, str).
func PythonTypeVar(c ir.Choice) string {
	parts := []string{"'" + c.Var + "'"}
	for _, a := range c.Alts {
		parts = append(parts, pyNames[a.Kind])
	}
	return c.Var + " = TypeVar(" + strings.Join(parts, ", ") + ")"
}
