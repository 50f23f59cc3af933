package emitter

import (
	"fmt"
	"go/format"
	"strings"
	"text/template"

	"github.com/roach88/pybridge/internal/ir"
	"github.com/roach88/pybridge/internal/pkgmodel"
	"github.com/roach88/pybridge/internal/resolver"
)

// GlueFilename is the name of the glue file written at the package root.
const GlueFilename = "pybridge_bind.go"

// DigestPrefix starts the header line that carries the bindings digest.
const DigestPrefix = "// bindings digest: "

// GoOptions configures Go glue emission.
type GoOptions struct {
	// Package is the package clause of the generated file. Defaults to the
	// root namespace name.
	Package string
}

// GeneratedFile is one emitted source file.
type GeneratedFile struct {
	Filename string
	Content  []byte
	// Digest fingerprints the signatures the file was generated from.
	Digest string
}

// Signatures returns every signature of the model in traversal order: nodes
// depth first, functions by name within a node.
func Signatures(model *pkgmodel.Model) []*ir.Signature {
	var sigs []*ir.Signature
	for _, node := range model.Walk() {
		sigs = append(sigs, node.Funcs()...)
	}
	return sigs
}

type glueNode struct {
	Path     []string
	Node     *pkgmodel.Node
	Type     string
	Children []glueChild
	Funcs    []glueFunc
}

type glueChild struct {
	Field string
	Type  string
}

type glueFunc struct {
	Method string
	Sig    *ir.Signature
}

// GoGlue renders the Go glue for a py2go model: one struct per namespace
// node and one method per signature. The output is gofmt-formatted.
func GoGlue(model *pkgmodel.Model, opts GoOptions) (*GeneratedFile, error) {
	digest, err := ir.Digest(Signatures(model))
	if err != nil {
		return nil, err
	}
	nodes, err := layout(model)
	if err != nil {
		return nil, err
	}

	taken := map[string]bool{}
	for _, n := range nodes {
		taken[n.Type] = true
	}
	tuples := newTupleRegistry(taken)
	for _, n := range nodes {
		prefix := n.Type
		if prefix == rootType {
			prefix = ""
		}
		for _, fn := range n.Funcs {
			for _, p := range fn.Sig.Params {
				tuples.register(p.Type, prefix+fn.Method+CamelCase(p.Name))
			}
			tuples.register(fn.Sig.Return, prefix+fn.Method+"Result")
		}
	}

	pkg := opts.Package
	if pkg == "" {
		pkg = packageName(model.Root().Name)
	}

	g := &glueWriter{tuples: tuples}
	if err := headerTemplate.Execute(&g.b, map[string]string{
		"Version": ir.Version,
		"Source":  model.Root().Name,
		"Digest":  digest,
		"Package": pkg,
	}); err != nil {
		return nil, fmt.Errorf("render header: %w", err)
	}
	for _, n := range nodes {
		g.node(n)
	}
	for _, t := range tuples.order {
		g.tuple(t)
	}

	src, err := format.Source([]byte(g.b.String()))
	if err != nil {
		return nil, fmt.Errorf("format glue: %w", err)
	}
	return &GeneratedFile{Filename: GlueFilename, Content: src, Digest: digest}, nil
}

// layout assigns Go names to every node and member and rejects names that
// collide once converted.
func layout(model *pkgmodel.Model) ([]glueNode, error) {
	var nodes []glueNode
	types := map[string][]string{}
	for path, node := range model.Walk() {
		n := glueNode{Path: path, Node: node, Type: typeName(path)}
		if n.Type == "New"+rootType {
			return nil, &pkgmodel.CollisionError{
				Path:     path[:len(path)-1],
				Name:     n.Type,
				Existing: "constructor " + n.Type,
				Incoming: "namespace " + strings.Join(path, "."),
			}
		}
		if prev, ok := types[n.Type]; ok {
			return nil, &pkgmodel.CollisionError{
				Path:     path[:len(path)-1],
				Name:     n.Type,
				Existing: "namespace " + strings.Join(prev, "."),
				Incoming: "namespace " + strings.Join(path, "."),
			}
		}
		types[n.Type] = path

		members := map[string]string{}
		claim := func(goName, what string) error {
			if prev, ok := members[goName]; ok {
				return &pkgmodel.CollisionError{Path: path, Name: goName, Existing: prev, Incoming: what}
			}
			members[goName] = what
			return nil
		}
		for _, child := range node.Children() {
			childPath := append(append([]string(nil), path...), child.Name)
			field := CamelCase(child.Name)
			if err := claim(field, "namespace "+child.Name); err != nil {
				return nil, err
			}
			n.Children = append(n.Children, glueChild{Field: field, Type: typeName(childPath)})
		}
		for _, sig := range node.Funcs() {
			method := CamelCase(sig.Name)
			if err := claim(method, "function "+sig.Name); err != nil {
				return nil, err
			}
			n.Funcs = append(n.Funcs, glueFunc{Method: method, Sig: sig})
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// packageName turns a Python package name into a Go package name.
func packageName(name string) string {
	name = strings.ToLower(strings.ReplaceAll(name, "-", "_"))
	if name == "" || !isGoIdent(name) {
		return "pybind"
	}
	return name
}

func isGoIdent(s string) bool {
	for i, r := range s {
		if r == '_' || ('a' <= r && r <= 'z') || (i > 0 && '0' <= r && r <= '9') {
			continue
		}
		return false
	}
	return true
}

var headerTemplate = template.Must(template.New("header").Parse(`// Code generated by pybridge; DO NOT EDIT.
// pybridge version: {{.Version}}
// source package: {{.Source}}
` + DigestPrefix + `{{.Digest}}

package {{.Package}}

import (
	"github.com/roach88/pybridge/pkg/boundary"
)
`))

type glueWriter struct {
	b      strings.Builder
	tuples *tupleRegistry
}

func (g *glueWriter) printf(format string, args ...any) {
	fmt.Fprintf(&g.b, format, args...)
}

func (g *glueWriter) node(n glueNode) {
	dotted := strings.Join(n.Path, ".")
	hasFuncs := len(n.Funcs) > 0

	g.printf("\n// %s is the Python namespace %s.\n", n.Type, dotted)
	g.printf("type %s struct {\n", n.Type)
	if hasFuncs {
		g.printf("\trt  boundary.Interpreter\n")
		g.printf("\tmod boundary.Module\n")
	}
	if hasFuncs && len(n.Children) > 0 {
		g.printf("\n")
	}
	width := 0
	for _, c := range n.Children {
		width = max(width, len(c.Field))
	}
	for _, c := range n.Children {
		g.printf("\t%-*s *%s\n", width, c.Field, c.Type)
	}
	g.printf("}\n")

	ctor := "new" + n.Type
	if len(n.Path) == 1 {
		g.printf("\n// New%s imports %s and every namespace below it.\n", n.Type, dotted)
		g.printf("func New%s(rt boundary.Interpreter) (*%s, error) {\n", n.Type, n.Type)
		g.printf("\tlock := rt.Acquire()\n")
		g.printf("\tdefer lock.Release()\n\n")
		g.printf("\treturn %s(rt)\n", ctor)
		g.printf("}\n")
	}

	g.printf("\nfunc %s(rt boundary.Interpreter) (*%s, error) {\n", ctor, n.Type)
	if hasFuncs {
		g.printf("\tmod, err := rt.Import(%q)\n", dotted)
		g.printf("\tif err != nil {\n\t\treturn nil, err\n\t}\n")
		g.printf("\tm := &%s{rt: rt, mod: mod}\n", n.Type)
	} else {
		if len(n.Children) > 0 {
			g.printf("\tvar err error\n")
		}
		g.printf("\tm := &%s{}\n", n.Type)
	}
	for _, c := range n.Children {
		g.printf("\tif m.%s, err = new%s(rt); err != nil {\n\t\treturn nil, err\n\t}\n", c.Field, c.Type)
	}
	g.printf("\treturn m, nil\n")
	g.printf("}\n")

	for _, fn := range n.Funcs {
		g.wrapper(n, fn)
	}
}

func (g *glueWriter) goType(d ir.Descriptor) string {
	return resolver.GoDeclNamed(d, g.tuples.name)
}

func (g *glueWriter) wrapper(n glueNode, fn glueFunc) {
	sig := fn.Sig
	names := wrapperParamNames(sig.Params)

	params := make([]string, len(sig.Params))
	for i, p := range sig.Params {
		params[i] = names[i] + " " + g.goType(p.Type)
	}
	results := "(err error)"
	if _, unit := sig.Return.(ir.Unit); !unit {
		results = "(result " + g.goType(sig.Return) + ", err error)"
	}

	g.printf("\n// %s calls %s.%s.\n", fn.Method, strings.Join(n.Path, "."), sig.Symbol)
	g.printf("func (m *%s) %s(%s) %s {\n", n.Type, fn.Method, strings.Join(params, ", "), results)
	g.printf("\tlock := m.rt.Acquire()\n")
	g.printf("\tdefer lock.Release()\n\n")

	zero := "result, err"
	if _, unit := sig.Return.(ir.Unit); unit {
		zero = "err"
	}
	if len(sig.Params) == 0 {
		g.printf("\targs, err := boundary.NewTupleFrom()\n")
	} else {
		g.printf("\targs, err := boundary.NewTupleFrom(\n")
		for i, p := range sig.Params {
			g.printf("\t\tfunc() (boundary.Value, error) {\n")
			g.encodeBody(p.Type, names[i], "\t\t\t")
			g.printf("\t\t},\n")
		}
		g.printf("\t)\n")
	}
	g.printf("\tif err != nil {\n\t\treturn %s\n\t}\n", zero)
	g.printf("\tdefer args.Release()\n\n")

	g.printf("\tout, err := m.mod.Call(%q, args)\n", sig.Symbol)
	g.printf("\tif err != nil {\n\t\treturn %s\n\t}\n", zero)
	g.printf("\tdefer boundary.Release(out)\n\n")

	switch ret := sig.Return.(type) {
	case ir.Unit:
		g.printf("\treturn boundary.ExpectUnit(out)\n")
	case ir.Choice:
		g.printf("\tswitch boundary.KindOf(out) {\n")
		for _, alt := range ret.Alts {
			g.printf("\tcase %s:\n", kindExpr(alt))
			g.printf("\t\treturn %s(out)\n", g.decExpr(alt))
		}
		g.printf("\tdefault:\n")
		g.printf("\t\treturn result, boundary.Mismatch(%q, out)\n", choiceWant(ret))
		g.printf("\t}\n")
	default:
		g.printf("\treturn %s(out)\n", g.decExpr(ret))
	}
	g.printf("}\n")
}

// encodeBody writes the statements of an argument producer for the value
// held in name.
func (g *glueWriter) encodeBody(d ir.Descriptor, name, indent string) {
	c, ok := d.(ir.Choice)
	if !ok {
		g.printf("%sreturn %s(%s)\n", indent, g.encExpr(d), name)
		return
	}
	g.printf("%sswitch v := %s.(type) {\n", indent, name)
	for _, alt := range c.Alts {
		g.printf("%scase %s:\n", indent, resolver.GoScalar(alt.Kind))
		g.printf("%s\treturn %s(v)\n", indent, g.encExpr(alt))
	}
	g.printf("%sdefault:\n", indent)
	g.printf("%s\treturn nil, boundary.Mismatch(%q, %s)\n", indent, choiceWant(c), name)
	g.printf("%s}\n", indent)
}

func (g *glueWriter) tuple(t namedTuple) {
	width := len(fmt.Sprintf("V%d", len(t.Tuple.Elems)-1))
	g.printf("\n// %s is a tuple crossing the boundary.\n", t.Name)
	g.printf("type %s struct {\n", t.Name)
	for i, e := range t.Tuple.Elems {
		g.printf("\t%-*s %s\n", width, fmt.Sprintf("V%d", i), g.goType(e))
	}
	g.printf("}\n")

	g.printf("\nfunc encode%s(x %s) (boundary.Value, error) {\n", t.Name, t.Name)
	g.printf("\treturn boundary.EncodeTuple(\n")
	for i, e := range t.Tuple.Elems {
		g.printf("\t\tfunc() (boundary.Value, error) {\n")
		g.printf("\t\t\treturn %s(x.V%d)\n", g.encExpr(e), i)
		g.printf("\t\t},\n")
	}
	g.printf("\t)\n")
	g.printf("}\n")

	g.printf("\nfunc decode%s(v boundary.Value) (x %s, err error) {\n", t.Name, t.Name)
	g.printf("\tt, err := boundary.AsTuple(v, %d)\n", len(t.Tuple.Elems))
	g.printf("\tif err != nil {\n\t\treturn x, err\n\t}\n")
	for i, e := range t.Tuple.Elems {
		g.printf("\tif x.V%d, err = boundary.Field(t, %d, %s); err != nil {\n\t\treturn x, err\n\t}\n", i, i, g.decExpr(e))
	}
	g.printf("\treturn x, nil\n")
	g.printf("}\n")
}

var codecSuffix = map[ir.ScalarKind]string{
	ir.I8:     "Int8",
	ir.I16:    "Int16",
	ir.I32:    "Int32",
	ir.I64:    "Int64",
	ir.U8:     "Uint8",
	ir.U16:    "Uint16",
	ir.U32:    "Uint32",
	ir.U64:    "Uint64",
	ir.F32:    "Float32",
	ir.F64:    "Float64",
	ir.Bool:   "Bool",
	ir.String: "String",
}

var kindSuffix = map[ir.ScalarKind]string{
	ir.I8:     "I8",
	ir.I16:    "I16",
	ir.I32:    "I32",
	ir.I64:    "I64",
	ir.U8:     "U8",
	ir.U16:    "U16",
	ir.U32:    "U32",
	ir.U64:    "U64",
	ir.F32:    "F32",
	ir.F64:    "F64",
	ir.Bool:   "Bool",
	ir.String: "String",
}

func kindExpr(d ir.Descriptor) string {
	switch x := d.(type) {
	case ir.Scalar:
		return "boundary.Kind" + kindSuffix[x.Kind]
	case ir.Tuple:
		return "boundary.KindTuple"
	case ir.List:
		return "boundary.KindList"
	case ir.Mapping:
		return "boundary.KindMap"
	}
	return "boundary.KindOpaque"
}

func (g *glueWriter) encExpr(d ir.Descriptor) string {
	switch x := d.(type) {
	case ir.Scalar:
		return "boundary.From" + codecSuffix[x.Kind]
	case ir.List:
		return fmt.Sprintf("boundary.EncodeList(%s, %s)", kindExpr(x.Elem), g.encExpr(x.Elem))
	case ir.Mapping:
		return fmt.Sprintf("boundary.EncodeMap(%s, %s, %s, %s)", kindExpr(x.Key), kindExpr(x.Value), g.encExpr(x.Key), g.encExpr(x.Value))
	case ir.Tuple:
		return "encode" + g.tuples.name(x)
	}
	return "boundary.FromOpaque"
}

func (g *glueWriter) decExpr(d ir.Descriptor) string {
	switch x := d.(type) {
	case ir.Scalar:
		return "boundary.To" + codecSuffix[x.Kind]
	case ir.List:
		return fmt.Sprintf("boundary.DecodeList(%s)", g.decExpr(x.Elem))
	case ir.Mapping:
		return fmt.Sprintf("boundary.DecodeMap(%s, %s)", g.decExpr(x.Key), g.decExpr(x.Value))
	case ir.Tuple:
		return "decode" + g.tuples.name(x)
	}
	return "boundary.ToOpaque"
}

func choiceWant(c ir.Choice) string {
	names := make([]string, len(c.Alts))
	for i, a := range c.Alts {
		names[i] = resolver.GoScalar(a.Kind)
	}
	return strings.Join(names, " or ")
}

// wrapperParamNames spells parameters so that they neither shadow the
// wrapper's locals nor collide with each other.
func wrapperParamNames(params []ir.Param) []string {
	used := map[string]bool{}
	names := make([]string, len(params))
	for i, p := range params {
		name := paramName(p.Name)
		for used[name] {
			name += "_"
		}
		used[name] = true
		names[i] = name
	}
	return names
}
