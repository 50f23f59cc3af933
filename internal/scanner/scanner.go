package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/pybridge/internal/ir"
	"github.com/roach88/pybridge/internal/pysrc"
)

// Binding is a resolved signature and the namespace path it belongs under,
// relative to the root node.
type Binding struct {
	Path []string
	Sig  *ir.Signature
}

// Result is the outcome of one scan.
type Result struct {
	// Root is the absolute package root directory.
	Root string
	// RootName is the name of the root namespace node.
	RootName  string
	Direction Direction
	Bindings  []Binding
	Failures  []*ResolutionError
}

// Signatures returns the signatures of every binding in scan order.
func (r *Result) Signatures() []*ir.Signature {
	sigs := make([]*ir.Signature, len(r.Bindings))
	for i, b := range r.Bindings {
		sigs[i] = b.Sig
	}
	return sigs
}

// findRoot walks upward from target to the first directory containing
// marker.
func findRoot(target, marker string) (string, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", &StructuralError{Path: target, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", &StructuralError{Path: target, Err: err}
	}
	dir := abs
	if !info.IsDir() {
		dir = filepath.Dir(abs)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &StructuralError{Path: target, Err: ErrNoPackageRoot}
		}
		dir = parent
	}
}

// sourceFiles lists files under root with the given extension in lexical
// order. Hidden directories and any directory for which skip reports true
// are not entered.
func sourceFiles(root, ext string, skip func(dir, name string) bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, ".") || (skip != nil && skip(path, name)) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &StructuralError{Path: root, Err: err}
	}
	return files, nil
}

// segments splits the directory of rel into namespace segments.
func segments(relDir string) []string {
	if relDir == "." || relDir == "" {
		return nil
	}
	parts := strings.Split(filepath.ToSlash(relDir), "/")
	for i, p := range parts {
		parts[i] = normalizeIdent(p)
	}
	return parts
}

// normalizeIdent applies NFKC, the normalization Python applies to
// identifiers when parsing.
func normalizeIdent(s string) string {
	return norm.NFKC.String(s)
}

// isIdentifier reports whether s is a valid identifier in both Go and
// Python and is not a Python keyword.
func isIdentifier(s string) bool {
	if s == "" || pysrc.IsKeyword(s) {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func withRoot(rootName string, path []string) []string {
	return append([]string{rootName}, path...)
}
