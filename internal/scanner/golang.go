package scanner

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/roach88/pybridge/internal/ir"
	"github.com/roach88/pybridge/internal/resolver"
)

// ModuleMarker identifies the root of a Go module.
const ModuleMarker = "go.mod"

// ScanGo scans the Go module containing target. Each directory is a node;
// files do not add path segments. Test files, testdata, vendor and nested
// modules are skipped.
func ScanGo(target string, markers Markers, log zerolog.Logger) (*Result, error) {
	root, err := findRoot(target, ModuleMarker)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Root:      root,
		RootName:  filepath.Base(root),
		Direction: Go2Py,
	}
	log = log.With().Str("root", root).Logger()

	paths, err := sourceFiles(root, ".go", func(dir, name string) bool {
		if name == "testdata" || name == "vendor" || strings.HasPrefix(name, "_") {
			return true
		}
		_, err := os.Stat(filepath.Join(dir, ModuleMarker))
		return err == nil
	})
	if err != nil {
		return nil, err
	}

	fset := token.NewFileSet()
	var dirs []string
	byDir := map[string][]*ast.File{}
	rels := map[*ast.File]string{}
	for _, p := range paths {
		if strings.HasSuffix(p, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, p, nil, parser.ParseComments|parser.SkipObjectResolution)
		if err != nil {
			return nil, &StructuralError{Path: p, Err: err}
		}
		dir := filepath.Dir(p)
		if _, seen := byDir[dir]; !seen {
			dirs = append(dirs, dir)
		}
		byDir[dir] = append(byDir[dir], f)
		rels[f] = relPath(root, p)
	}

	for _, dir := range dirs {
		files := byDir[dir]
		env := resolver.NewGoEnv(files...)
		path := segments(relPath(root, dir))
		for _, f := range files {
			scanGoFile(res, fset, f, rels[f], path, env, markers, log)
		}
	}
	log.Debug().
		Int("files", len(rels)).
		Int("bindings", len(res.Bindings)).
		Int("failures", len(res.Failures)).
		Msg("go scan complete")
	return res, nil
}

func scanGoFile(res *Result, fset *token.FileSet, f *ast.File, rel string, path []string, env *resolver.GoEnv, markers Markers, log zerolog.Logger) {
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		name := fn.Name.Name
		match, ok := markers.Match(name, directives(fn.Doc))
		if !ok {
			continue
		}
		line := fset.Position(fn.Pos()).Line
		sig, err := goSignature(fn, match, env)
		if err != nil {
			res.Failures = append(res.Failures, &ResolutionError{Function: name, File: rel, Line: line, Err: err})
			log.Warn().Err(err).Str("file", rel).Int("line", line).Str("function", name).Msg("cannot bind function")
			continue
		}
		sig.Origin = ir.Origin{File: rel, Module: withRoot(res.RootName, path), Line: line}
		res.Bindings = append(res.Bindings, Binding{Path: path, Sig: sig})
		log.Debug().Str("file", rel).Str("signature", sig.String()).Msg("bound function")
	}
}

// directives returns the text of //name:arg style comments in a doc group.
func directives(doc *ast.CommentGroup) []string {
	if doc == nil {
		return nil
	}
	var out []string
	for _, c := range doc.List {
		text, ok := strings.CutPrefix(c.Text, "//")
		if !ok || strings.HasPrefix(text, " ") || !strings.Contains(text, ":") {
			continue
		}
		if fields := strings.Fields(text); len(fields) > 0 {
			out = append(out, fields[0])
		}
	}
	return out
}

func goSignature(fn *ast.FuncDecl, match Match, env *resolver.GoEnv) (*ir.Signature, error) {
	if fn.Recv != nil {
		return nil, ErrMethod
	}
	if !isIdentifier(match.Name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, match.Name)
	}
	if params := fn.Type.Params; params != nil && len(params.List) > 0 {
		if _, ok := params.List[len(params.List)-1].Type.(*ast.Ellipsis); ok {
			return nil, ErrVariadic
		}
	}
	params, ret, err := resolver.ResolveGoFunc(fn, env)
	if err != nil {
		return nil, err
	}
	return &ir.Signature{
		Name:   match.Name,
		Symbol: fn.Name.Name,
		Prefix: match.Prefix,
		Marker: match.Token,
		Params: params,
		Return: ret,
	}, nil
}
