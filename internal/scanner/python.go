package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/roach88/pybridge/internal/ir"
	"github.com/roach88/pybridge/internal/pysrc"
	"github.com/roach88/pybridge/internal/resolver"
)

// PackageMarker identifies a directory as a Python package.
const PackageMarker = "__init__.py"

type pyFile struct {
	rel  string
	path []string
	mod  *pysrc.Module
}

// ScanPython scans the Python package containing target. The package root
// is the first directory at or above target that holds an __init__.py.
// Functions in __init__.py belong to their directory's node; functions in
// x.py belong to a child node x.
func ScanPython(target string, markers Markers, log zerolog.Logger) (*Result, error) {
	root, err := findRoot(target, PackageMarker)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Root:      root,
		RootName:  normalizeIdent(filepath.Base(root)),
		Direction: Py2Go,
	}
	log = log.With().Str("root", root).Logger()

	paths, err := sourceFiles(root, ".py", func(_, name string) bool {
		return name == "__pycache__"
	})
	if err != nil {
		return nil, err
	}

	files := make([]pyFile, 0, len(paths))
	for _, p := range paths {
		src, err := os.ReadFile(p)
		if err != nil {
			return nil, &StructuralError{Path: p, Err: err}
		}
		mod, err := pysrc.Parse(string(src))
		if err != nil {
			return nil, &StructuralError{Path: p, Err: err}
		}
		rel := relPath(root, p)
		files = append(files, pyFile{rel: rel, path: modulePath(rel), mod: mod})
	}

	classes := map[string]bool{}
	for _, f := range files {
		for _, stmt := range f.mod.Stmts {
			if c, ok := stmt.(*pysrc.ClassDef); ok {
				classes[normalizeIdent(c.Name)] = true
			}
		}
	}

	for _, f := range files {
		scanPyFile(res, f, markers, classes, log)
	}
	log.Debug().
		Int("files", len(files)).
		Int("bindings", len(res.Bindings)).
		Int("failures", len(res.Failures)).
		Msg("python scan complete")
	return res, nil
}

// modulePath maps a file relative to the root to its node path.
func modulePath(rel string) []string {
	dir, base := filepath.Split(rel)
	path := segments(filepath.Clean(dir))
	if base == PackageMarker {
		return path
	}
	return append(path, normalizeIdent(strings.TrimSuffix(base, ".py")))
}

func scanPyFile(res *Result, f pyFile, markers Markers, classes map[string]bool, log zerolog.Logger) {
	env := resolver.NewPyEnv(classes)
	for _, stmt := range f.mod.Stmts {
		switch s := stmt.(type) {
		case *pysrc.Import:
			if len(s.Enclosing) == 0 {
				for _, n := range s.Names {
					env.Import(normalizeIdent(n.Local), n.Path)
				}
			}
		case *pysrc.Assign:
			if len(s.Enclosing) == 0 {
				env.Assign(normalizeIdent(s.Target), s.Value)
			}
		case *pysrc.FuncDef:
			name := normalizeIdent(s.Name)
			match, ok := markers.Match(name, decoratorNames(s.Decorators))
			if !ok {
				continue
			}
			sig, err := pySignature(s, match, env)
			if err != nil {
				failure := &ResolutionError{Function: name, File: f.rel, Line: s.Pos.Line, Err: err}
				res.Failures = append(res.Failures, failure)
				log.Warn().Err(err).Str("file", f.rel).Int("line", s.Pos.Line).Str("function", name).Msg("cannot bind function")
				continue
			}
			sig.Origin = ir.Origin{File: f.rel, Module: withRoot(res.RootName, f.path), Line: s.Pos.Line}
			res.Bindings = append(res.Bindings, Binding{Path: f.path, Sig: sig})
			log.Debug().Str("file", f.rel).Str("signature", sig.String()).Msg("bound function")
		}
	}
}

func decoratorNames(decorators []pysrc.Expr) []string {
	names := make([]string, 0, len(decorators))
	for _, d := range decorators {
		if call, ok := d.(pysrc.Call); ok {
			d = call.Func
		}
		if name, ok := pysrc.Dotted(d); ok {
			names = append(names, name)
		}
	}
	return names
}

func pySignature(fn *pysrc.FuncDef, match Match, env *resolver.PyEnv) (*ir.Signature, error) {
	if !fn.ModuleScope() {
		return nil, fmt.Errorf("%w: inside %s", ErrNotModuleScope, strings.Join(fn.Enclosing, "."))
	}
	if !isIdentifier(match.Name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, match.Name)
	}

	sig := &ir.Signature{
		Name:   match.Name,
		Symbol: normalizeIdent(fn.Name),
		Prefix: match.Prefix,
		Marker: match.Token,
	}
	for _, p := range fn.Params {
		switch {
		case p.Kind == pysrc.ParamKwOnly:
			return nil, fmt.Errorf("parameter %s: %w", p.Name, ErrKeywordOnly)
		case p.Kind != pysrc.ParamPlain:
			return nil, fmt.Errorf("parameter %s: %w", p.Name, ErrVariadic)
		case p.HasDefault:
			return nil, fmt.Errorf("parameter %s: %w", p.Name, ErrDefaultValue)
		}
		d, err := resolver.ResolvePython(p.Annotation, env)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		sig.Params = append(sig.Params, ir.Param{Name: normalizeIdent(p.Name), Type: d})
	}
	ret, err := resolver.ResolvePythonReturn(fn.Returns, env)
	if err != nil {
		return nil, fmt.Errorf("return: %w", err)
	}
	sig.Return = ret
	return sig, nil
}
