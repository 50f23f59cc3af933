package boundary

import "sync"

// Raw is an opaque token for a handle whose ownership is in transit across
// the boundary.
type Raw uintptr

var rawHandles = struct {
	sync.Mutex
	next   Raw
	parked map[Raw]Value
}{parked: make(map[Raw]Value)}

// IntoRaw transfers ownership of v out of the caller. v is left empty and
// must not be used or released again; the receiving side adopts the contents
// with FromRaw exactly once. Scalars are carried by value.
func IntoRaw(v Value) Raw {
	if v == nil {
		panic(violation("IntoRaw", "nil value"))
	}
	if o, ok := v.(owned); ok {
		v = o.transfer()
	}
	rawHandles.Lock()
	defer rawHandles.Unlock()
	rawHandles.next++
	r := rawHandles.next
	rawHandles.parked[r] = v
	return r
}

// FromRaw adopts a handle produced by IntoRaw. The caller now owns the
// returned value. Adopting an unknown or already adopted token panics.
func FromRaw(r Raw) Value {
	rawHandles.Lock()
	defer rawHandles.Unlock()
	v, ok := rawHandles.parked[r]
	if !ok {
		panic(violation("FromRaw", "unknown or already adopted raw handle"))
	}
	delete(rawHandles.parked, r)
	return v
}
