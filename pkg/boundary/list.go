package boundary

// List is an owned, variable-length sequence whose elements all share one
// kind.
type List struct {
	handle
	elem  Kind
	items []Value
}

// NewList allocates an empty list of elem-kind elements.
func NewList(elem Kind) *List {
	if elem == KindInvalid || elem == KindUnit {
		panic(violation("NewList", "invalid element kind "+elem.String()))
	}
	track()
	return &List{elem: elem}
}

func (l *List) Kind() Kind { return KindList }

func (l *List) boundaryValue() {}

func (l *List) check(op string) {
	if l == nil {
		panic(violation(op, "nil List handle"))
	}
	l.handle.check(op, "List")
}

// Elem returns the element kind.
func (l *List) Elem() Kind {
	l.check("List.Elem")
	return l.elem
}

// Len returns the number of elements.
func (l *List) Len() int {
	l.check("List.Len")
	return len(l.items)
}

// Append adds v and takes ownership of it. A value of the wrong kind is
// released and rejected.
func (l *List) Append(v Value) error {
	l.check("List.Append")
	if v == nil {
		panic(violation("List.Append", "nil value"))
	}
	if v.Kind() != l.elem {
		Release(v)
		return &TypeMismatchError{Op: "List.Append", Want: l.elem.String(), Got: v.Kind().String()}
	}
	l.items = append(l.items, v)
	return nil
}

// At returns a borrowed view of element i.
func (l *List) At(i int) (Value, error) {
	l.check("List.At")
	if i < 0 || i >= len(l.items) {
		return nil, &IndexError{Index: i, Len: len(l.items)}
	}
	return l.items[i], nil
}

// Release frees the list and every element.
func (l *List) Release() {
	if l == nil {
		panic(violation("List.Release", "nil List handle"))
	}
	for i, v := range l.items {
		Release(v)
		l.items[i] = nil
	}
	l.items = nil
	l.release("List.Release", "List")
}

func (l *List) transfer() Value {
	l.check("IntoRaw")
	moved := &List{elem: l.elem, items: l.items}
	l.items = nil
	l.released = true
	return moved
}

// ListFrom converts a Go slice into a List. It either converts every element
// or returns an error with nothing left allocated.
func ListFrom[T any](xs []T, elem Kind, enc func(T) (Value, error)) (*List, error) {
	l := NewList(elem)
	for _, x := range xs {
		v, err := enc(x)
		if err != nil {
			l.Release()
			return nil, err
		}
		if err := l.Append(v); err != nil {
			l.Release()
			return nil, err
		}
	}
	return l, nil
}

// ListTo converts a List into a Go slice. The list is borrowed; the caller
// still releases it.
func ListTo[T any](l *List, dec func(Value) (T, error)) ([]T, error) {
	l.check("ListTo")
	out := make([]T, 0, len(l.items))
	for _, v := range l.items {
		x, err := dec(v)
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, nil
}
