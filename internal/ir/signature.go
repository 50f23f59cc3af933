package ir

import "strings"

// Param is a named, typed parameter.
type Param struct {
	Name string     `json:"name"`
	Type Descriptor `json:"-"`
}

// Origin locates a declaration in the scanned tree.
type Origin struct {
	File   string   `json:"file"`
	Module []string `json:"module"`
	Line   int      `json:"line"`
}

// Signature is one function to be exposed across the boundary. Scanners
// create signatures; nothing modifies them afterwards.
type Signature struct {
	// Name is the logical name with the bind prefix stripped.
	Name string `json:"name"`
	// Symbol is the name as declared, used to call the function.
	Symbol string `json:"symbol"`
	Prefix string `json:"prefix,omitempty"`
	Marker string `json:"marker,omitempty"`
	Params []Param
	Return Descriptor
	Origin Origin
}

// String renders the signature in a compact canonical form, e.g.
// "add(a: i64, b: i64) -> i64".
func (s *Signature) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteByte('(')
	for i, p := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		b.WriteString(": ")
		b.WriteString(p.Type.String())
	}
	b.WriteString(") -> ")
	b.WriteString(s.Return.String())
	return b.String()
}

// Describe returns the JSON-ready canonical form of the signature.
func (s *Signature) Describe() map[string]any {
	params := make([]any, len(s.Params))
	for i, p := range s.Params {
		params[i] = map[string]any{"name": p.Name, "type": Describe(p.Type)}
	}
	return map[string]any{
		"name":   s.Name,
		"symbol": s.Symbol,
		"module": strings.Join(s.Origin.Module, "."),
		"params": params,
		"return": Describe(s.Return),
	}
}
