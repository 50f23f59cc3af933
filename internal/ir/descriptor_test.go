package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescriptorString(t *testing.T) {
	tests := []struct {
		name string
		d    Descriptor
		want string
	}{
		{"scalar", Scalar{Kind: U16}, "u16"},
		{"string", Scalar{Kind: String}, "str"},
		{"list of tuples", List{Elem: Tuple{Elems: []Descriptor{Scalar{Kind: I64}, Scalar{Kind: String}}}}, "list[tuple[i64, str]]"},
		{"mapping", Mapping{Key: Scalar{Kind: String}, Value: Scalar{Kind: F64}}, "map[str, f64]"},
		{"choice", Choice{Var: "A", Alts: []Scalar{{Kind: I64}, {Kind: String}}}, "choice A[i64 | str]"},
		{"opaque", Opaque{Hint: "Foo"}, "opaque"},
		{"unit", Unit{}, "unit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.String())
		})
	}
}

func TestDepth(t *testing.T) {
	assert.Equal(t, 1, Depth(Scalar{Kind: I8}))
	assert.Equal(t, 2, Depth(List{Elem: Scalar{Kind: I8}}))
	nested := Mapping{Key: Scalar{Kind: String}, Value: List{Elem: Tuple{Elems: []Descriptor{Scalar{Kind: Bool}}}}}
	assert.Equal(t, 4, Depth(nested))
}

func TestEqual(t *testing.T) {
	a := List{Elem: Tuple{Elems: []Descriptor{Scalar{Kind: I64}, Opaque{Hint: "x"}}}}
	b := List{Elem: Tuple{Elems: []Descriptor{Scalar{Kind: I64}, Opaque{Hint: "y"}}}}
	c := List{Elem: Tuple{Elems: []Descriptor{Scalar{Kind: I32}, Opaque{}}}}

	assert.True(t, Equal(a, b), "opaque hints are not part of identity")
	assert.False(t, Equal(a, c))
	assert.False(t, Equal(Unit{}, Opaque{}))
	assert.False(t, Equal(
		Choice{Var: "A", Alts: []Scalar{{Kind: I64}}},
		Choice{Var: "B", Alts: []Scalar{{Kind: I64}}},
	))
}

func TestSignatureString(t *testing.T) {
	sig := &Signature{
		Name:   "add",
		Params: []Param{{Name: "a", Type: Scalar{Kind: I64}}, {Name: "b", Type: Scalar{Kind: I64}}},
		Return: Scalar{Kind: I64},
	}
	assert.Equal(t, "add(a: i64, b: i64) -> i64", sig.String())
}
