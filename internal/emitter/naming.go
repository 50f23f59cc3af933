package emitter

import (
	"go/token"
	"strings"
	"unicode"
)

// CamelCase converts a Python or Go identifier into an exported Go name:
// "shape_area" becomes "ShapeArea". A name whose first letter has no upper
// case form is prefixed with X.
func CamelCase(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if out == "" {
		return "X"
	}
	first := []rune(out)[0]
	if !unicode.IsUpper(first) {
		return "X" + out
	}
	return out
}

// typeName is the Go type of the namespace at path. The root is always
// PyModules.
func typeName(path []string) string {
	if len(path) <= 1 {
		return rootType
	}
	var b strings.Builder
	for _, seg := range path[1:] {
		b.WriteString(CamelCase(seg))
	}
	return b.String()
}

const rootType = "PyModules"

// reserved are names a parameter may not take in a generated wrapper: Go
// keywords, the predeclared types the glue refers to, and the wrapper's own
// locals.
var reserved = map[string]bool{
	"any": true, "bool": true, "error": true, "string": true, "uintptr": true,
	"int8": true, "int16": true, "int32": true, "int64": true,
	"uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"float32": true, "float64": true, "nil": true, "true": true, "false": true,

	"m": true, "lock": true, "args": true, "out": true, "err": true,
	"result": true, "boundary": true, "v": true,
}

// paramName returns a Go-safe spelling of a parameter name.
func paramName(name string) string {
	if token.IsKeyword(name) || reserved[name] {
		return name + "_"
	}
	return name
}
