package boundary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarCodecs_RoundTrip(t *testing.T) {
	v, _ := FromInt8(-8)
	i8, err := ToInt8(v)
	require.NoError(t, err)
	assert.Equal(t, int8(-8), i8)

	v, _ = FromUint64(1 << 63)
	u64, err := ToUint64(v)
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<63), u64)

	v, _ = FromFloat32(0.25)
	f32, err := ToFloat32(v)
	require.NoError(t, err)
	assert.Equal(t, float32(0.25), f32)

	v, _ = FromOpaque(0xdead)
	p, err := ToOpaque(v)
	require.NoError(t, err)
	assert.Equal(t, uintptr(0xdead), p)
}

func TestDecoders_RejectWrongKind(t *testing.T) {
	_, err := ToInt64(I32(1))
	assert.True(t, IsTypeMismatch(err))

	_, err = ToString(I64(1))
	assert.True(t, IsTypeMismatch(err))

	_, err = DecodeList(ToInt64)(I64(1))
	assert.True(t, IsTypeMismatch(err))

	_, err = AsTuple(Unit{}, 1)
	assert.True(t, IsTypeMismatch(err))
}

func TestAsTuple_Arity(t *testing.T) {
	tup := NewTuple(2)
	defer tup.Release()
	_, err := AsTuple(tup, 3)
	assert.ErrorIs(t, err, ErrArity)
}

func TestNestedMapOfLists(t *testing.T) {
	in := map[string][]float64{"a": {1, 2}, "b": {}}
	enc := EncodeMap(KindString, KindList, FromString, EncodeList(KindF64, FromFloat64))
	dec := DecodeMap(ToString, DecodeList(ToFloat64))

	before := Live()
	v, err := enc(in)
	require.NoError(t, err)
	out, err := dec(v)
	require.NoError(t, err)
	Release(v)

	assert.Equal(t, in, out)
	assert.Equal(t, before, Live())
}

func TestExpectUnit(t *testing.T) {
	assert.NoError(t, ExpectUnit(Unit{}))
	assert.NoError(t, ExpectUnit(nil))
	assert.True(t, IsTypeMismatch(ExpectUnit(I64(0))))
}

func TestMismatch(t *testing.T) {
	err := Mismatch("int64 | string", 1.5)
	assert.Equal(t, "boundary: type mismatch: want int64 | string, got float64", err.Error())
}

func TestField(t *testing.T) {
	before := Live()
	tup, err := NewTupleFrom(
		func() (Value, error) { return FromInt64(7) },
		func() (Value, error) { return FromString("seven") },
	)
	require.NoError(t, err)

	n, err := Field(tup, 0, ToInt64)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	s, err := Field(tup, 1, ToString)
	require.NoError(t, err)
	assert.Equal(t, "seven", s)

	_, err = Field(tup, 0, ToString)
	assert.True(t, IsTypeMismatch(err))

	_, err = Field(tup, 2, ToInt64)
	var ierr *IndexError
	assert.ErrorAs(t, err, &ierr)

	tup.Release()
	assert.Equal(t, before, Live())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnit, KindOf(nil))
	assert.Equal(t, KindI32, KindOf(I32(1)))
}
