package ir

import (
	"fmt"
	"strings"
)

// ScalarKind enumerates the scalar descriptor kinds.
type ScalarKind uint8

const (
	I8 ScalarKind = iota + 1
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
	Bool
	String
)

var scalarNames = map[ScalarKind]string{
	I8: "i8", I16: "i16", I32: "i32", I64: "i64",
	U8: "u8", U16: "u16", U32: "u32", U64: "u64",
	F32: "f32", F64: "f64",
	Bool: "bool", String: "str",
}

// ScalarKinds lists every scalar kind in declaration order.
var ScalarKinds = []ScalarKind{I8, I16, I32, I64, U8, U16, U32, U64, F32, F64, Bool, String}

func (k ScalarKind) String() string {
	if n, ok := scalarNames[k]; ok {
		return n
	}
	return fmt.Sprintf("scalar(%d)", uint8(k))
}

// Descriptor is a boundary-safe type description. Sealed: only the types in
// this file implement it.
type Descriptor interface {
	descriptor()
	String() string
}

// Scalar is a fixed-width number, a boolean or a UTF-8 string.
type Scalar struct {
	Kind ScalarKind
}

// Tuple is a fixed-arity heterogeneous sequence.
type Tuple struct {
	Elems []Descriptor
}

// List is a homogeneous variable-length sequence.
type List struct {
	Elem Descriptor
}

// Mapping is a key/value container. Key is always a Scalar.
type Mapping struct {
	Key   Scalar
	Value Descriptor
}

// Choice is a type variable restricted to a closed set of scalar
// alternatives. Glue dispatches on the runtime kind.
type Choice struct {
	Var  string
	Alts []Scalar
}

// Opaque passes an untyped handle through without interpretation.
type Opaque struct {
	// Hint names the source type that resolved to Opaque, for diagnostics.
	Hint string
}

// Unit is the return descriptor of a function that returns nothing.
type Unit struct{}

func (Scalar) descriptor()  {}
func (Tuple) descriptor()   {}
func (List) descriptor()    {}
func (Mapping) descriptor() {}
func (Choice) descriptor()  {}
func (Opaque) descriptor()  {}
func (Unit) descriptor()    {}

func (s Scalar) String() string { return s.Kind.String() }

func (t Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "tuple[" + strings.Join(parts, ", ") + "]"
}

func (l List) String() string { return "list[" + l.Elem.String() + "]" }

func (m Mapping) String() string {
	return "map[" + m.Key.String() + ", " + m.Value.String() + "]"
}

func (c Choice) String() string {
	alts := make([]string, len(c.Alts))
	for i, a := range c.Alts {
		alts[i] = a.String()
	}
	return "choice " + c.Var + "[" + strings.Join(alts, " | ") + "]"
}

func (Opaque) String() string { return "opaque" }

func (Unit) String() string { return "unit" }

// Depth returns the nesting depth of d; scalars and other leaves are 1.
func Depth(d Descriptor) int {
	switch t := d.(type) {
	case Tuple:
		max := 0
		for _, e := range t.Elems {
			max = maxInt(max, Depth(e))
		}
		return max + 1
	case List:
		return Depth(t.Elem) + 1
	case Mapping:
		return maxInt(Depth(t.Key), Depth(t.Value)) + 1
	default:
		return 1
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Equal reports whether two descriptors describe the same type. Opaque
// hints are ignored.
func Equal(a, b Descriptor) bool {
	switch x := a.(type) {
	case Scalar:
		y, ok := b.(Scalar)
		return ok && x.Kind == y.Kind
	case Tuple:
		y, ok := b.(Tuple)
		if !ok || len(x.Elems) != len(y.Elems) {
			return false
		}
		for i := range x.Elems {
			if !Equal(x.Elems[i], y.Elems[i]) {
				return false
			}
		}
		return true
	case List:
		y, ok := b.(List)
		return ok && Equal(x.Elem, y.Elem)
	case Mapping:
		y, ok := b.(Mapping)
		return ok && x.Key.Kind == y.Key.Kind && Equal(x.Value, y.Value)
	case Choice:
		y, ok := b.(Choice)
		if !ok || x.Var != y.Var || len(x.Alts) != len(y.Alts) {
			return false
		}
		for i := range x.Alts {
			if x.Alts[i].Kind != y.Alts[i].Kind {
				return false
			}
		}
		return true
	case Opaque:
		_, ok := b.(Opaque)
		return ok
	case Unit:
		_, ok := b.(Unit)
		return ok
	}
	return false
}

// Describe returns a JSON-ready structural form of d.
func Describe(d Descriptor) map[string]any {
	switch t := d.(type) {
	case Scalar:
		return map[string]any{"kind": t.Kind.String()}
	case Tuple:
		elems := make([]any, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = Describe(e)
		}
		return map[string]any{"kind": "tuple", "elems": elems}
	case List:
		return map[string]any{"kind": "list", "elem": Describe(t.Elem)}
	case Mapping:
		return map[string]any{"kind": "map", "key": Describe(t.Key), "value": Describe(t.Value)}
	case Choice:
		alts := make([]any, len(t.Alts))
		for i, a := range t.Alts {
			alts[i] = a.Kind.String()
		}
		return map[string]any{"kind": "choice", "var": t.Var, "alts": alts}
	case Opaque:
		return map[string]any{"kind": "opaque"}
	case Unit:
		return map[string]any{"kind": "unit"}
	}
	return map[string]any{"kind": "invalid"}
}
