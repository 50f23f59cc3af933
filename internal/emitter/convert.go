package emitter

import (
	"fmt"
	"math"
	"reflect"

	"github.com/roach88/pybridge/internal/ir"
	"github.com/roach88/pybridge/pkg/boundary"
)

var anySliceType = reflect.TypeOf([]any(nil))

var scalarHostTypes = map[ir.ScalarKind]reflect.Type{
	ir.I8:     reflect.TypeOf(int8(0)),
	ir.I16:    reflect.TypeOf(int16(0)),
	ir.I32:    reflect.TypeOf(int32(0)),
	ir.I64:    reflect.TypeOf(int64(0)),
	ir.U8:     reflect.TypeOf(uint8(0)),
	ir.U16:    reflect.TypeOf(uint16(0)),
	ir.U32:    reflect.TypeOf(uint32(0)),
	ir.U64:    reflect.TypeOf(uint64(0)),
	ir.F32:    reflect.TypeOf(float32(0)),
	ir.F64:    reflect.TypeOf(float64(0)),
	ir.Bool:   reflect.TypeOf(false),
	ir.String: reflect.TypeOf(""),
}

// HostType returns the Go type a value of descriptor d decodes to. Tuples
// decode to []any and choices to any.
func HostType(d ir.Descriptor) reflect.Type {
	switch x := d.(type) {
	case ir.Scalar:
		return scalarHostTypes[x.Kind]
	case ir.List:
		return reflect.SliceOf(HostType(x.Elem))
	case ir.Mapping:
		return reflect.MapOf(HostType(x.Key), HostType(x.Value))
	case ir.Tuple:
		return anySliceType
	case ir.Opaque:
		return reflect.TypeOf(uintptr(0))
	}
	return reflect.TypeOf((*any)(nil)).Elem()
}

func boundaryKind(d ir.Descriptor) boundary.Kind {
	switch x := d.(type) {
	case ir.Scalar:
		return scalarBoundaryKinds[x.Kind]
	case ir.Tuple:
		return boundary.KindTuple
	case ir.List:
		return boundary.KindList
	case ir.Mapping:
		return boundary.KindMap
	case ir.Unit:
		return boundary.KindUnit
	}
	return boundary.KindOpaque
}

var scalarBoundaryKinds = map[ir.ScalarKind]boundary.Kind{
	ir.I8:     boundary.KindI8,
	ir.I16:    boundary.KindI16,
	ir.I32:    boundary.KindI32,
	ir.I64:    boundary.KindI64,
	ir.U8:     boundary.KindU8,
	ir.U16:    boundary.KindU16,
	ir.U32:    boundary.KindU32,
	ir.U64:    boundary.KindU64,
	ir.F32:    boundary.KindF32,
	ir.F64:    boundary.KindF64,
	ir.Bool:   boundary.KindBool,
	ir.String: boundary.KindString,
}

// ToBoundary converts a host value into a boundary value described by d.
// On error nothing is left allocated.
func ToBoundary(d ir.Descriptor, x any) (boundary.Value, error) {
	if c, ok := d.(ir.Choice); ok {
		alt, ok := chooseAlt(c, x)
		if !ok {
			return nil, boundary.Mismatch(choiceWant(c), x)
		}
		d = alt
	}
	if x == nil {
		return nil, boundary.Mismatch(d.String(), x)
	}
	return toBoundary(d, reflect.ValueOf(x))
}

// chooseAlt picks the alternative whose host type is exactly x's type. Go
// int and uint also select the 64-bit alternatives.
func chooseAlt(c ir.Choice, x any) (ir.Scalar, bool) {
	t := reflect.TypeOf(x)
	for _, alt := range c.Alts {
		if scalarHostTypes[alt.Kind] == t {
			return alt, true
		}
	}
	for _, alt := range c.Alts {
		if (t == reflect.TypeOf(0) && alt.Kind == ir.I64) || (t == reflect.TypeOf(uint(0)) && alt.Kind == ir.U64) {
			return alt, true
		}
	}
	return ir.Scalar{}, false
}

func toBoundary(d ir.Descriptor, rv reflect.Value) (boundary.Value, error) {
	switch x := d.(type) {
	case ir.Scalar:
		return scalarToBoundary(x.Kind, rv)
	case ir.Opaque:
		if rv.Kind() != reflect.Uintptr {
			return nil, boundary.Mismatch("uintptr", rv.Interface())
		}
		return boundary.Opaque(rv.Uint()), nil
	case ir.List:
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, boundary.Mismatch(d.String(), rv.Interface())
		}
		l := boundary.NewList(boundaryKind(x.Elem))
		for i := range rv.Len() {
			v, err := toBoundary(x.Elem, elem(rv.Index(i)))
			if err != nil {
				l.Release()
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			if err := l.Append(v); err != nil {
				l.Release()
				return nil, err
			}
		}
		return l, nil
	case ir.Mapping:
		if rv.Kind() != reflect.Map {
			return nil, boundary.Mismatch(d.String(), rv.Interface())
		}
		m, err := boundary.NewMap(boundaryKind(x.Key), boundaryKind(x.Value))
		if err != nil {
			return nil, err
		}
		iter := rv.MapRange()
		for iter.Next() {
			k, err := toBoundary(x.Key, elem(iter.Key()))
			if err != nil {
				m.Release()
				return nil, fmt.Errorf("key: %w", err)
			}
			v, err := toBoundary(x.Value, elem(iter.Value()))
			if err != nil {
				boundary.Release(k)
				m.Release()
				return nil, fmt.Errorf("value for %v: %w", iter.Key().Interface(), err)
			}
			if err := m.Insert(k, v); err != nil {
				m.Release()
				return nil, err
			}
		}
		return m, nil
	case ir.Tuple:
		if (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) || rv.Len() != len(x.Elems) {
			return nil, boundary.Mismatch(d.String(), rv.Interface())
		}
		parts := make([]func() (boundary.Value, error), len(x.Elems))
		for i, e := range x.Elems {
			parts[i] = func() (boundary.Value, error) {
				return toBoundary(e, elem(rv.Index(i)))
			}
		}
		return boundary.EncodeTuple(parts...)
	}
	return nil, fmt.Errorf("cannot convert to %s", d)
}

// elem unwraps interface values so that []any elements convert like their
// dynamic types.
func elem(rv reflect.Value) reflect.Value {
	for rv.Kind() == reflect.Interface && !rv.IsNil() {
		rv = rv.Elem()
	}
	return rv
}

func scalarToBoundary(k ir.ScalarKind, rv reflect.Value) (boundary.Value, error) {
	if !rv.IsValid() || rv.Kind() == reflect.Interface {
		return nil, boundary.Mismatch(k.String(), nil)
	}
	mismatch := func() error { return boundary.Mismatch(hostName(k), rv.Interface()) }
	switch k {
	case ir.I8, ir.I16, ir.I32, ir.I64:
		var n int64
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n = rv.Int()
		default:
			return nil, mismatch()
		}
		if !fitsSigned(k, n) {
			return nil, fmt.Errorf("%w: %d overflows %s", mismatch(), n, k)
		}
		switch k {
		case ir.I8:
			return boundary.I8(n), nil
		case ir.I16:
			return boundary.I16(n), nil
		case ir.I32:
			return boundary.I32(n), nil
		}
		return boundary.I64(n), nil
	case ir.U8, ir.U16, ir.U32, ir.U64:
		var n uint64
		switch rv.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			n = rv.Uint()
		default:
			return nil, mismatch()
		}
		if !fitsUnsigned(k, n) {
			return nil, fmt.Errorf("%w: %d overflows %s", mismatch(), n, k)
		}
		switch k {
		case ir.U8:
			return boundary.U8(n), nil
		case ir.U16:
			return boundary.U16(n), nil
		case ir.U32:
			return boundary.U32(n), nil
		}
		return boundary.U64(n), nil
	case ir.F32, ir.F64:
		if rv.Kind() != reflect.Float32 && rv.Kind() != reflect.Float64 {
			return nil, mismatch()
		}
		if k == ir.F32 {
			return boundary.F32(rv.Float()), nil
		}
		return boundary.F64(rv.Float()), nil
	case ir.Bool:
		if rv.Kind() != reflect.Bool {
			return nil, mismatch()
		}
		return boundary.BoolOf(rv.Bool()), nil
	case ir.String:
		if rv.Kind() != reflect.String {
			return nil, mismatch()
		}
		return boundary.FromString(rv.String())
	}
	return nil, mismatch()
}

func hostName(k ir.ScalarKind) string {
	return scalarHostTypes[k].String()
}

func fitsSigned(k ir.ScalarKind, n int64) bool {
	switch k {
	case ir.I8:
		return n >= math.MinInt8 && n <= math.MaxInt8
	case ir.I16:
		return n >= math.MinInt16 && n <= math.MaxInt16
	case ir.I32:
		return n >= math.MinInt32 && n <= math.MaxInt32
	}
	return true
}

func fitsUnsigned(k ir.ScalarKind, n uint64) bool {
	switch k {
	case ir.U8:
		return n <= math.MaxUint8
	case ir.U16:
		return n <= math.MaxUint16
	case ir.U32:
		return n <= math.MaxUint32
	}
	return true
}

// FromBoundary converts a boundary value described by d into a host value
// of HostType(d). v stays owned by the caller.
func FromBoundary(d ir.Descriptor, v boundary.Value) (any, error) {
	switch x := d.(type) {
	case ir.Unit:
		return nil, boundary.ExpectUnit(v)
	case ir.Choice:
		for _, alt := range x.Alts {
			if boundary.KindOf(v) == scalarBoundaryKinds[alt.Kind] {
				return FromBoundary(alt, v)
			}
		}
		return nil, boundary.Mismatch(choiceWant(x), v)
	}
	rv, err := fromBoundary(d, v)
	if err != nil {
		return nil, err
	}
	return rv.Interface(), nil
}

func fromBoundary(d ir.Descriptor, v boundary.Value) (reflect.Value, error) {
	switch x := d.(type) {
	case ir.Scalar:
		return scalarFromBoundary(x.Kind, v)
	case ir.Opaque:
		p, err := boundary.ToOpaque(v)
		return reflect.ValueOf(p), err
	case ir.List:
		l, ok := v.(*boundary.List)
		if !ok {
			return reflect.Value{}, boundary.Mismatch(d.String(), v)
		}
		out := reflect.MakeSlice(HostType(d), l.Len(), l.Len())
		for i := range l.Len() {
			item, err := l.At(i)
			if err != nil {
				return reflect.Value{}, err
			}
			ev, err := fromBoundary(x.Elem, item)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			out.Index(i).Set(ev)
		}
		return out, nil
	case ir.Mapping:
		m, ok := v.(*boundary.Map)
		if !ok {
			return reflect.Value{}, boundary.Mismatch(d.String(), v)
		}
		out := reflect.MakeMapWithSize(HostType(d), m.Len())
		var rangeErr error
		m.Range(func(k, val boundary.Value) bool {
			kv, err := fromBoundary(x.Key, k)
			if err != nil {
				rangeErr = fmt.Errorf("key: %w", err)
				return false
			}
			vv, err := fromBoundary(x.Value, val)
			if err != nil {
				rangeErr = fmt.Errorf("value: %w", err)
				return false
			}
			out.SetMapIndex(kv, vv)
			return true
		})
		if rangeErr != nil {
			return reflect.Value{}, rangeErr
		}
		return out, nil
	case ir.Tuple:
		t, err := boundary.AsTuple(v, len(x.Elems))
		if err != nil {
			return reflect.Value{}, err
		}
		out := make([]any, len(x.Elems))
		for i, e := range x.Elems {
			item, err := t.At(i)
			if err != nil {
				return reflect.Value{}, err
			}
			ev, err := fromBoundary(e, item)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = ev.Interface()
		}
		return reflect.ValueOf(out), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot convert from %s", d)
}

func scalarFromBoundary(k ir.ScalarKind, v boundary.Value) (reflect.Value, error) {
	var (
		x   any
		err error
	)
	switch k {
	case ir.I8:
		x, err = boundary.ToInt8(v)
	case ir.I16:
		x, err = boundary.ToInt16(v)
	case ir.I32:
		x, err = boundary.ToInt32(v)
	case ir.I64:
		x, err = boundary.ToInt64(v)
	case ir.U8:
		x, err = boundary.ToUint8(v)
	case ir.U16:
		x, err = boundary.ToUint16(v)
	case ir.U32:
		x, err = boundary.ToUint32(v)
	case ir.U64:
		x, err = boundary.ToUint64(v)
	case ir.F32:
		x, err = boundary.ToFloat32(v)
	case ir.F64:
		x, err = boundary.ToFloat64(v)
	case ir.Bool:
		x, err = boundary.ToBool(v)
	case ir.String:
		x, err = boundary.ToString(v)
	}
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(x), nil
}
