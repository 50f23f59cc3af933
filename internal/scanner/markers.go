package scanner

import (
	"strings"
)

// Direction names which runtime exposes functions to which.
type Direction string

const (
	// Py2Go exposes Python functions to Go through generated glue.
	Py2Go Direction = "py2go"
	// Go2Py exposes Go functions to Python callers.
	Go2Py Direction = "go2py"
)

// Default markers per direction.
const (
	DefaultPyPrefix = "go_bind_"
	DefaultPyToken  = "go_bind"
	DefaultGoPrefix = "PyBind"
	DefaultGoToken  = "pybridge:bind"
)

// Markers selects the declarations to bind: those whose name starts with
// one of Prefixes, and those carrying one of Tokens as a decorator (Python)
// or directive comment (Go).
type Markers struct {
	Prefixes []string
	Tokens   []string
}

// DefaultMarkers returns the markers used when none are configured.
func DefaultMarkers(dir Direction) Markers {
	if dir == Go2Py {
		return Markers{Prefixes: []string{DefaultGoPrefix}, Tokens: []string{DefaultGoToken}}
	}
	return Markers{Prefixes: []string{DefaultPyPrefix}, Tokens: []string{DefaultPyToken}}
}

// WithPrefixes returns m with its prefixes replaced. An empty list keeps
// the current prefixes.
func (m Markers) WithPrefixes(prefixes ...string) Markers {
	if len(prefixes) == 0 {
		return m
	}
	return Markers{Prefixes: prefixes, Tokens: m.Tokens}
}

// Match is a declaration selected by Markers.
type Match struct {
	// Name is the logical name: the declared name with the matched prefix
	// removed.
	Name   string
	Prefix string
	Token  string
}

// Match reports whether a declaration is marked for binding. tokens are the
// declaration's decorator names or directive texts. When several prefixes
// match, the longest wins.
func (m Markers) Match(name string, tokens []string) (Match, bool) {
	var match Match
	found := false
	for _, p := range m.Prefixes {
		if p != "" && strings.HasPrefix(name, p) && len(p) > len(match.Prefix) {
			match.Prefix = p
			found = true
		}
	}
	for _, tok := range tokens {
		if t, ok := m.token(tok); ok {
			match.Token = t
			found = true
			break
		}
	}
	if !found {
		return Match{}, false
	}
	match.Name = strings.TrimPrefix(name, match.Prefix)
	return match, true
}

// token matches a decorator such as "pybridge.go_bind" or a directive such
// as "pybridge:bind" against the configured tokens.
func (m Markers) token(tok string) (string, bool) {
	for _, want := range m.Tokens {
		if tok == want || strings.HasSuffix(tok, "."+want) {
			return want, true
		}
	}
	return "", false
}
