package boundary

import (
	"cmp"
	"math"
	"slices"
)

// Key is the comparable identity of a hashable boundary value.
type Key struct {
	kind Kind
	i    int64
	u    uint64
	f    float64
	s    string
}

// KeyOf returns the key identity of v. Only numeric scalars, *Bool and
// *String are hashable. NaN never equals itself, so a NaN float is not.
func KeyOf(v Value) (Key, error) {
	switch x := v.(type) {
	case I8:
		return Key{kind: KindI8, i: int64(x)}, nil
	case I16:
		return Key{kind: KindI16, i: int64(x)}, nil
	case I32:
		return Key{kind: KindI32, i: int64(x)}, nil
	case I64:
		return Key{kind: KindI64, i: int64(x)}, nil
	case U8:
		return Key{kind: KindU8, u: uint64(x)}, nil
	case U16:
		return Key{kind: KindU16, u: uint64(x)}, nil
	case U32:
		return Key{kind: KindU32, u: uint64(x)}, nil
	case U64:
		return Key{kind: KindU64, u: uint64(x)}, nil
	case F32:
		return floatKey(KindF32, float64(x))
	case F64:
		return floatKey(KindF64, float64(x))
	case *Bool:
		k := Key{kind: KindBool}
		if x.Get() {
			k.i = 1
		}
		return k, nil
	case *String:
		return Key{kind: KindString, s: x.View().String()}, nil
	case nil:
		return Key{}, ErrUnhashableKey
	}
	return Key{}, ErrUnhashableKey
}

func floatKey(kind Kind, f float64) (Key, error) {
	if math.IsNaN(f) {
		return Key{}, ErrUnhashableKey
	}
	return Key{kind: kind, f: f}, nil
}

func compareKeys(a, b Key) int {
	if c := cmp.Compare(a.kind, b.kind); c != 0 {
		return c
	}
	switch {
	case a.kind.IsSigned(), a.kind == KindBool:
		return cmp.Compare(a.i, b.i)
	case a.kind.IsUnsigned():
		return cmp.Compare(a.u, b.u)
	case a.kind.IsFloat():
		return cmp.Compare(a.f, b.f)
	default:
		return cmp.Compare(a.s, b.s)
	}
}

type entry struct {
	k Value
	v Value
}

// Map is an owned key/value container. Keys are scalars or strings of a
// single kind; values share a single kind.
type Map struct {
	handle
	key     Kind
	val     Kind
	entries map[Key]entry
}

// Pair is a key/value pair handed to MapFromPairs.
type Pair struct {
	Key   Value
	Value Value
}

// NewMap allocates an empty map.
func NewMap(key, val Kind) (*Map, error) {
	if !key.IsHashable() {
		return nil, ErrUnhashableKey
	}
	if val == KindInvalid || val == KindUnit {
		panic(violation("NewMap", "invalid value kind "+val.String()))
	}
	track()
	return &Map{key: key, val: val, entries: make(map[Key]entry)}, nil
}

func (m *Map) Kind() Kind { return KindMap }

func (m *Map) boundaryValue() {}

func (m *Map) check(op string) {
	if m == nil {
		panic(violation(op, "nil Map handle"))
	}
	m.handle.check(op, "Map")
}

// KeyKind returns the key kind.
func (m *Map) KeyKind() Kind {
	m.check("Map.KeyKind")
	return m.key
}

// ValueKind returns the value kind.
func (m *Map) ValueKind() Kind {
	m.check("Map.ValueKind")
	return m.val
}

// Len returns the number of entries.
func (m *Map) Len() int {
	m.check("Map.Len")
	return len(m.entries)
}

// Insert stores k → v and takes ownership of both. Inserting an existing key
// replaces the entry and releases the displaced key and value. On error both
// k and v are released.
func (m *Map) Insert(k, v Value) error {
	m.check("Map.Insert")
	if k == nil || v == nil {
		panic(violation("Map.Insert", "nil key or value"))
	}
	if k.Kind() != m.key {
		Release(k)
		Release(v)
		return &TypeMismatchError{Op: "Map.Insert", Want: m.key.String(), Got: k.Kind().String()}
	}
	if v.Kind() != m.val {
		Release(k)
		Release(v)
		return &TypeMismatchError{Op: "Map.Insert", Want: m.val.String(), Got: v.Kind().String()}
	}
	id, err := KeyOf(k)
	if err != nil {
		Release(k)
		Release(v)
		return err
	}
	if old, ok := m.entries[id]; ok {
		Release(old.k)
		Release(old.v)
	}
	m.entries[id] = entry{k: k, v: v}
	return nil
}

// Get returns a borrowed view of the value stored under k. k is borrowed.
func (m *Map) Get(k Value) (Value, bool) {
	m.check("Map.Get")
	id, err := KeyOf(k)
	if err != nil {
		return nil, false
	}
	e, ok := m.entries[id]
	return e.v, ok
}

func (m *Map) sortedIDs() []Key {
	ids := make([]Key, 0, len(m.entries))
	for id := range m.entries {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, compareKeys)
	return ids
}

// Keys returns borrowed views of the keys in ascending order.
func (m *Map) Keys() []Value {
	m.check("Map.Keys")
	ids := m.sortedIDs()
	out := make([]Value, len(ids))
	for i, id := range ids {
		out[i] = m.entries[id].k
	}
	return out
}

// Range calls fn for every entry in ascending key order until fn returns
// false. Keys and values are borrowed.
func (m *Map) Range(fn func(k, v Value) bool) {
	m.check("Map.Range")
	for _, id := range m.sortedIDs() {
		e := m.entries[id]
		if !fn(e.k, e.v) {
			return
		}
	}
}

// Release frees the map and every key and value.
func (m *Map) Release() {
	if m == nil {
		panic(violation("Map.Release", "nil Map handle"))
	}
	for id, e := range m.entries {
		Release(e.k)
		Release(e.v)
		delete(m.entries, id)
	}
	m.release("Map.Release", "Map")
}

func (m *Map) transfer() Value {
	m.check("IntoRaw")
	moved := &Map{key: m.key, val: m.val, entries: m.entries}
	m.entries = nil
	m.released = true
	return moved
}

// MapFromPairs builds a map from ordered pairs, taking ownership of every key
// and value. Later pairs win over earlier pairs with an equal key. On error
// everything is released.
func MapFromPairs(key, val Kind, pairs []Pair) (*Map, error) {
	m, err := NewMap(key, val)
	if err != nil {
		for _, p := range pairs {
			Release(p.Key)
			Release(p.Value)
		}
		return nil, err
	}
	for i, p := range pairs {
		if err := m.Insert(p.Key, p.Value); err != nil {
			for _, rest := range pairs[i+1:] {
				Release(rest.Key)
				Release(rest.Value)
			}
			m.Release()
			return nil, err
		}
	}
	return m, nil
}

// MapFrom converts a Go map into a Map, all or nothing.
func MapFrom[K comparable, V any](src map[K]V, key, val Kind, kenc func(K) (Value, error), venc func(V) (Value, error)) (*Map, error) {
	m, err := NewMap(key, val)
	if err != nil {
		return nil, err
	}
	for k, v := range src {
		kv, err := kenc(k)
		if err != nil {
			m.Release()
			return nil, err
		}
		vv, err := venc(v)
		if err != nil {
			Release(kv)
			m.Release()
			return nil, err
		}
		if err := m.Insert(kv, vv); err != nil {
			m.Release()
			return nil, err
		}
	}
	return m, nil
}

// MapTo converts a Map into a Go map. The map is borrowed.
func MapTo[K comparable, V any](m *Map, kdec func(Value) (K, error), vdec func(Value) (V, error)) (map[K]V, error) {
	m.check("MapTo")
	out := make(map[K]V, len(m.entries))
	for _, e := range m.entries {
		k, err := kdec(e.k)
		if err != nil {
			return nil, err
		}
		v, err := vdec(e.v)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}
