package boundary

import "sync/atomic"

// Value is a sealed interface implemented only by the types in this package.
type Value interface {
	Kind() Kind
	boundaryValue()
}

// I8 is a signed 8-bit boundary scalar.
type I8 int8

// I16 is a signed 16-bit boundary scalar.
type I16 int16

// I32 is a signed 32-bit boundary scalar.
type I32 int32

// I64 is a signed 64-bit boundary scalar.
type I64 int64

// U8 is an unsigned 8-bit boundary scalar.
type U8 uint8

// U16 is an unsigned 16-bit boundary scalar.
type U16 uint16

// U32 is an unsigned 32-bit boundary scalar.
type U32 uint32

// U64 is an unsigned 64-bit boundary scalar.
type U64 uint64

// F32 is a 32-bit float boundary scalar.
type F32 float32

// F64 is a 64-bit float boundary scalar.
type F64 float64

// Opaque is an untyped handle passed through without interpretation.
type Opaque uintptr

// Unit is the value of a function that returns nothing.
type Unit struct{}

func (I8) Kind() Kind     { return KindI8 }
func (I16) Kind() Kind    { return KindI16 }
func (I32) Kind() Kind    { return KindI32 }
func (I64) Kind() Kind    { return KindI64 }
func (U8) Kind() Kind     { return KindU8 }
func (U16) Kind() Kind    { return KindU16 }
func (U32) Kind() Kind    { return KindU32 }
func (U64) Kind() Kind    { return KindU64 }
func (F32) Kind() Kind    { return KindF32 }
func (F64) Kind() Kind    { return KindF64 }
func (Opaque) Kind() Kind { return KindOpaque }
func (Unit) Kind() Kind   { return KindUnit }

func (I8) boundaryValue()     {}
func (I16) boundaryValue()    {}
func (I32) boundaryValue()    {}
func (I64) boundaryValue()    {}
func (U8) boundaryValue()     {}
func (U16) boundaryValue()    {}
func (U32) boundaryValue()    {}
func (U64) boundaryValue()    {}
func (F32) boundaryValue()    {}
func (F64) boundaryValue()    {}
func (Opaque) boundaryValue() {}
func (Unit) boundaryValue()   {}

// owned is implemented by every handle type.
type owned interface {
	Value
	Release()
	// transfer moves the handle's contents into a fresh handle and leaves
	// the receiver empty.
	transfer() Value
}

// Release releases v if it is an owned handle. Scalars, Opaque, Unit and a
// nil Value are ignored.
func Release(v Value) {
	if o, ok := v.(owned); ok {
		o.Release()
	}
}

// live counts allocated handles that have not been released or
// consumed. A handle parked with IntoRaw still counts until it is adopted
// and released.
var live atomic.Int64

// Live returns the number of outstanding owned handles in the process.
// Tests use it to check that conversions neither leak nor double-release.
func Live() int64 {
	return live.Load()
}

func track()   { live.Add(1) }
func untrack() { live.Add(-1) }

// handle holds the release state shared by all owned types.
type handle struct {
	released bool
}

func (h *handle) check(op, typ string) {
	if h.released {
		panic(violation(op, typ+" handle used after release"))
	}
}

func (h *handle) release(op, typ string) {
	if h.released {
		panic(violation(op, typ+" handle released twice"))
	}
	h.released = true
	untrack()
}
