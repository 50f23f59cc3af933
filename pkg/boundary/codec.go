package boundary

import "fmt"

// Encoders turn Go values into boundary values. Their shape,
// func(T) (Value, error), lets generated glue compose them for nested types.

func FromInt8(x int8) (Value, error)       { return I8(x), nil }
func FromInt16(x int16) (Value, error)     { return I16(x), nil }
func FromInt32(x int32) (Value, error)     { return I32(x), nil }
func FromInt64(x int64) (Value, error)     { return I64(x), nil }
func FromUint8(x uint8) (Value, error)     { return U8(x), nil }
func FromUint16(x uint16) (Value, error)   { return U16(x), nil }
func FromUint32(x uint32) (Value, error)   { return U32(x), nil }
func FromUint64(x uint64) (Value, error)   { return U64(x), nil }
func FromFloat32(x float32) (Value, error) { return F32(x), nil }
func FromFloat64(x float64) (Value, error) { return F64(x), nil }
func FromBool(x bool) (Value, error)       { return BoolOf(x), nil }
func FromOpaque(x uintptr) (Value, error)  { return Opaque(x), nil }

// FromString allocates a String.
func FromString(x string) (Value, error) {
	s, err := NewString(x)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func mismatch(op string, want Kind, v Value) error {
	return &TypeMismatchError{Op: op, Want: want.String(), Got: describe(v)}
}

// ToInt8 decodes an I8.
func ToInt8(v Value) (int8, error) {
	x, ok := v.(I8)
	if !ok {
		return 0, mismatch("ToInt8", KindI8, v)
	}
	return int8(x), nil
}

// ToInt16 decodes an I16.
func ToInt16(v Value) (int16, error) {
	x, ok := v.(I16)
	if !ok {
		return 0, mismatch("ToInt16", KindI16, v)
	}
	return int16(x), nil
}

// ToInt32 decodes an I32.
func ToInt32(v Value) (int32, error) {
	x, ok := v.(I32)
	if !ok {
		return 0, mismatch("ToInt32", KindI32, v)
	}
	return int32(x), nil
}

// ToInt64 decodes an I64.
func ToInt64(v Value) (int64, error) {
	x, ok := v.(I64)
	if !ok {
		return 0, mismatch("ToInt64", KindI64, v)
	}
	return int64(x), nil
}

// ToUint8 decodes a U8.
func ToUint8(v Value) (uint8, error) {
	x, ok := v.(U8)
	if !ok {
		return 0, mismatch("ToUint8", KindU8, v)
	}
	return uint8(x), nil
}

// ToUint16 decodes a U16.
func ToUint16(v Value) (uint16, error) {
	x, ok := v.(U16)
	if !ok {
		return 0, mismatch("ToUint16", KindU16, v)
	}
	return uint16(x), nil
}

// ToUint32 decodes a U32.
func ToUint32(v Value) (uint32, error) {
	x, ok := v.(U32)
	if !ok {
		return 0, mismatch("ToUint32", KindU32, v)
	}
	return uint32(x), nil
}

// ToUint64 decodes a U64.
func ToUint64(v Value) (uint64, error) {
	x, ok := v.(U64)
	if !ok {
		return 0, mismatch("ToUint64", KindU64, v)
	}
	return uint64(x), nil
}

// ToFloat32 decodes an F32.
func ToFloat32(v Value) (float32, error) {
	x, ok := v.(F32)
	if !ok {
		return 0, mismatch("ToFloat32", KindF32, v)
	}
	return float32(x), nil
}

// ToFloat64 decodes an F64.
func ToFloat64(v Value) (float64, error) {
	x, ok := v.(F64)
	if !ok {
		return 0, mismatch("ToFloat64", KindF64, v)
	}
	return float64(x), nil
}

// ToBool decodes a Bool handle. The handle is borrowed.
func ToBool(v Value) (bool, error) {
	b, ok := v.(*Bool)
	if !ok {
		return false, mismatch("ToBool", KindBool, v)
	}
	return b.Get(), nil
}

// ToString copies the text out of a String handle. The handle is borrowed.
func ToString(v Value) (string, error) {
	s, ok := v.(*String)
	if !ok {
		return "", mismatch("ToString", KindString, v)
	}
	return s.View().String(), nil
}

// ToOpaque decodes an Opaque handle.
func ToOpaque(v Value) (uintptr, error) {
	x, ok := v.(Opaque)
	if !ok {
		return 0, mismatch("ToOpaque", KindOpaque, v)
	}
	return uintptr(x), nil
}

// EncodeList returns an encoder for []T with elements encoded by enc.
func EncodeList[T any](elem Kind, enc func(T) (Value, error)) func([]T) (Value, error) {
	return func(xs []T) (Value, error) {
		l, err := ListFrom(xs, elem, enc)
		if err != nil {
			return nil, err
		}
		return l, nil
	}
}

// DecodeList returns a decoder for a List into []T.
func DecodeList[T any](dec func(Value) (T, error)) func(Value) ([]T, error) {
	return func(v Value) ([]T, error) {
		l, ok := v.(*List)
		if !ok {
			return nil, mismatch("DecodeList", KindList, v)
		}
		return ListTo(l, dec)
	}
}

// EncodeMap returns an encoder for map[K]V.
func EncodeMap[K comparable, V any](key, val Kind, kenc func(K) (Value, error), venc func(V) (Value, error)) func(map[K]V) (Value, error) {
	return func(src map[K]V) (Value, error) {
		m, err := MapFrom(src, key, val, kenc, venc)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

// DecodeMap returns a decoder for a Map into map[K]V.
func DecodeMap[K comparable, V any](kdec func(Value) (K, error), vdec func(Value) (V, error)) func(Value) (map[K]V, error) {
	return func(v Value) (map[K]V, error) {
		m, ok := v.(*Map)
		if !ok {
			return nil, mismatch("DecodeMap", KindMap, v)
		}
		return MapTo(m, kdec, vdec)
	}
}

// EncodeTuple builds a tuple value from element producers, all or nothing.
func EncodeTuple(parts ...func() (Value, error)) (Value, error) {
	t, err := NewTupleFrom(parts...)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// AsTuple checks that v is a tuple of the given arity and returns it
// borrowed.
func AsTuple(v Value, arity int) (*Tuple, error) {
	t, ok := v.(*Tuple)
	if !ok {
		return nil, mismatch("AsTuple", KindTuple, v)
	}
	if t.Len() != arity {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrArity, arity, t.Len())
	}
	return t, nil
}

// ExpectUnit checks that a call produced no value.
func ExpectUnit(v Value) error {
	if v == nil {
		return nil
	}
	if _, ok := v.(Unit); !ok {
		return mismatch("ExpectUnit", KindUnit, v)
	}
	return nil
}

// Field decodes element i of a tuple. The element stays owned by the tuple.
func Field[T any](t *Tuple, i int, dec func(Value) (T, error)) (T, error) {
	v, err := t.At(i)
	if err != nil {
		var zero T
		return zero, err
	}
	return dec(v)
}

// KindOf returns the kind of v, treating a nil Value as Unit.
func KindOf(v Value) Kind {
	if v == nil {
		return KindUnit
	}
	return v.Kind()
}
