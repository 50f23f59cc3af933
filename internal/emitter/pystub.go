package emitter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/pybridge/internal/ir"
	"github.com/roach88/pybridge/internal/pkgmodel"
	"github.com/roach88/pybridge/internal/resolver"
)

// StubFilename is the conventional name of the stub for a go2py package.
const StubFilename = "__init__.pyi"

var pyKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// helperBase is the builtin each width helper narrows.
var helperBase = map[ir.ScalarKind]string{
	ir.I8:  "int",
	ir.I16: "int",
	ir.I32: "int",
	ir.U8:  "int",
	ir.U16: "int",
	ir.U32: "int",
	ir.U64: "int",
	ir.F32: "float",
}

// PythonStub renders the .pyi view of a go2py model: one class per
// namespace with a static method per function.
func PythonStub(model *pkgmodel.Model) (*GeneratedFile, error) {
	sigs := Signatures(model)
	digest, err := ir.Digest(sigs)
	if err != nil {
		return nil, err
	}

	s := &stubWriter{vars: map[string]string{}, varDecl: map[string]ir.Choice{}}
	for _, sig := range sigs {
		for _, p := range sig.Params {
			s.collect(p.Type)
		}
		s.collect(sig.Return)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Code generated by pybridge; DO NOT EDIT.\n")
	fmt.Fprintf(&b, "# pybridge version: %s\n", ir.Version)
	fmt.Fprintf(&b, "# source package: %s\n", model.Root().Name)
	fmt.Fprintf(&b, "# bindings digest: %s\n\n", digest)
	b.WriteString("from typing import Any, Dict, List, NewType, Tuple, TypeVar, Union\n")

	if len(s.helpers) > 0 {
		b.WriteString("\n")
		slices.Sort(s.helpers)
		for _, k := range s.helpers {
			name := resolver.PythonDecl(ir.Scalar{Kind: k})
			fmt.Fprintf(&b, "%s = NewType('%s', %s)\n", name, name, helperBase[k])
		}
	}
	if len(s.varOrder) > 0 {
		b.WriteString("\n")
		for _, name := range s.varOrder {
			b.WriteString(resolver.PythonTypeVar(s.varDecl[name]) + "\n")
		}
	}
	b.WriteString("\n\n")
	s.class(&b, model.Root(), "")

	return &GeneratedFile{Filename: StubFilename, Content: []byte(b.String()), Digest: digest}, nil
}

type stubWriter struct {
	helpers []ir.ScalarKind
	// vars maps a choice's identity to its stub name; varDecl holds the
	// renamed choice under that name.
	vars     map[string]string
	varDecl  map[string]ir.Choice
	varOrder []string
}

func (s *stubWriter) collect(d ir.Descriptor) {
	switch x := d.(type) {
	case ir.Scalar:
		if _, ok := helperBase[x.Kind]; ok && !slices.Contains(s.helpers, x.Kind) {
			s.helpers = append(s.helpers, x.Kind)
		}
	case ir.List:
		s.collect(x.Elem)
	case ir.Mapping:
		s.collect(x.Key)
		s.collect(x.Value)
	case ir.Tuple:
		for _, e := range x.Elems {
			s.collect(e)
		}
	case ir.Choice:
		for _, a := range x.Alts {
			s.collect(a)
		}
		if x.Var == "" {
			return
		}
		id := x.String()
		if _, ok := s.vars[id]; ok {
			return
		}
		name := x.Var
		for n := 2; s.varDecl[name].Var != ""; n++ {
			name = fmt.Sprintf("%s%d", x.Var, n)
		}
		renamed := x
		renamed.Var = name
		s.vars[id] = name
		s.varDecl[name] = renamed
		s.varOrder = append(s.varOrder, name)
	}
}

func (s *stubWriter) decl(d ir.Descriptor) string {
	if c, ok := d.(ir.Choice); ok && c.Var != "" {
		return s.vars[c.String()]
	}
	return resolver.PythonDecl(d)
}

func (s *stubWriter) class(b *strings.Builder, n *pkgmodel.Node, indent string) {
	fmt.Fprintf(b, "%sclass %s:\n", indent, pyIdent(n.Name))
	inner := indent + "    "
	funcs, children := n.Funcs(), n.Children()
	if len(funcs) == 0 && len(children) == 0 {
		fmt.Fprintf(b, "%spass\n", inner)
		return
	}
	first := true
	sep := func() {
		if !first {
			b.WriteString("\n")
		}
		first = false
	}
	for _, sig := range funcs {
		sep()
		params := make([]string, len(sig.Params))
		for i, p := range sig.Params {
			params[i] = pyIdent(p.Name) + ": " + s.decl(p.Type)
		}
		fmt.Fprintf(b, "%s@staticmethod\n", inner)
		fmt.Fprintf(b, "%sdef %s(%s) -> %s: ...\n", inner, pyIdent(sig.Name), strings.Join(params, ", "), s.decl(sig.Return))
	}
	for _, child := range children {
		sep()
		s.class(b, child, inner)
	}
}

// pyIdent makes name usable as a Python identifier.
func pyIdent(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z'):
			b.WriteRune(r)
		case '0' <= r && r <= '9':
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if pyKeywords[out] {
		out += "_"
	}
	return out
}
