package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSig(name string, ret Descriptor) *Signature {
	return &Signature{
		Name:   name,
		Symbol: "go_bind_" + name,
		Params: []Param{{Name: "x", Type: Scalar{Kind: I64}}},
		Return: ret,
		Origin: Origin{File: "pkg/__init__.py", Module: []string{"pkg"}, Line: 3},
	}
}

func TestSignatureIDDeterminism(t *testing.T) {
	id1, err := SignatureID(sampleSig("addOne", Scalar{Kind: I64}))
	require.NoError(t, err)
	id2, err := SignatureID(sampleSig("addOne", Scalar{Kind: I64}))
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 64, "SHA-256 hex is 64 characters")
}

func TestSignatureIDIgnoresLocation(t *testing.T) {
	a := sampleSig("addOne", Scalar{Kind: I64})
	b := sampleSig("addOne", Scalar{Kind: I64})
	b.Origin.Line = 99
	b.Origin.File = "elsewhere.py"

	idA, err := SignatureID(a)
	require.NoError(t, err)
	idB, err := SignatureID(b)
	require.NoError(t, err)
	assert.Equal(t, idA, idB)
}

func TestDigestChangesWithTypes(t *testing.T) {
	d1 := MustDigest([]*Signature{sampleSig("f", Scalar{Kind: I64})})
	d2 := MustDigest([]*Signature{sampleSig("f", Scalar{Kind: I32})})
	d3 := MustDigest([]*Signature{sampleSig("f", List{Elem: Scalar{Kind: I64}})})

	assert.True(t, strings.HasPrefix(d1, "sha256:"))
	assert.NotEqual(t, d1, d2)
	assert.NotEqual(t, d1, d3)
}

func TestDomainSeparation(t *testing.T) {
	data := []byte(`{"a":1}`)
	assert.NotEqual(t, hashWithDomain(DomainSignature, data), hashWithDomain(DomainBindings, data))
}
