package boundary

// Tuple is an owned, fixed-arity, heterogeneous sequence. Slots are filled
// once, positionally; the tuple owns its elements and releases them with
// itself.
type Tuple struct {
	handle
	elems []Value
}

// NewTuple allocates a tuple with arity empty slots.
func NewTuple(arity int) *Tuple {
	if arity < 0 {
		panic(violation("NewTuple", "negative arity"))
	}
	track()
	return &Tuple{elems: make([]Value, arity)}
}

// NewTupleFrom builds a tuple from element producers, in order. If any
// producer fails, everything built so far is released and no tuple is
// returned.
func NewTupleFrom(parts ...func() (Value, error)) (*Tuple, error) {
	t := NewTuple(len(parts))
	for i, part := range parts {
		v, err := part()
		if err != nil {
			t.Release()
			return nil, err
		}
		if err := t.Put(i, v); err != nil {
			t.Release()
			return nil, err
		}
	}
	return t, nil
}

func (t *Tuple) Kind() Kind { return KindTuple }

func (t *Tuple) boundaryValue() {}

func (t *Tuple) check(op string) {
	if t == nil {
		panic(violation(op, "nil Tuple handle"))
	}
	t.handle.check(op, "Tuple")
}

// Len returns the arity. It never fails on a live handle.
func (t *Tuple) Len() int {
	t.check("Tuple.Len")
	return len(t.elems)
}

// Put stores v in slot i and takes ownership of it. On error v is released.
func (t *Tuple) Put(i int, v Value) error {
	t.check("Tuple.Put")
	if v == nil {
		panic(violation("Tuple.Put", "nil value"))
	}
	if i < 0 || i >= len(t.elems) {
		Release(v)
		return &IndexError{Index: i, Len: len(t.elems)}
	}
	if t.elems[i] != nil {
		Release(v)
		return ErrSlotFilled
	}
	t.elems[i] = v
	return nil
}

// At returns a borrowed view of the element in slot i.
func (t *Tuple) At(i int) (Value, error) {
	t.check("Tuple.At")
	if i < 0 || i >= len(t.elems) {
		return nil, &IndexError{Index: i, Len: len(t.elems)}
	}
	if t.elems[i] == nil {
		return nil, ErrSlotEmpty
	}
	return t.elems[i], nil
}

// Int extracts slot i as a signed integer.
func (t *Tuple) Int(i int) (int64, error) {
	v, err := t.At(i)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case I8:
		return int64(x), nil
	case I16:
		return int64(x), nil
	case I32:
		return int64(x), nil
	case I64:
		return int64(x), nil
	}
	return 0, &TypeMismatchError{Op: "Tuple.Int", Want: "signed integer", Got: v.Kind().String()}
}

// Uint extracts slot i as an unsigned integer.
func (t *Tuple) Uint(i int) (uint64, error) {
	v, err := t.At(i)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case U8:
		return uint64(x), nil
	case U16:
		return uint64(x), nil
	case U32:
		return uint64(x), nil
	case U64:
		return uint64(x), nil
	}
	return 0, &TypeMismatchError{Op: "Tuple.Uint", Want: "unsigned integer", Got: v.Kind().String()}
}

// Float extracts slot i as a float.
func (t *Tuple) Float(i int) (float64, error) {
	v, err := t.At(i)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case F32:
		return float64(x), nil
	case F64:
		return float64(x), nil
	}
	return 0, &TypeMismatchError{Op: "Tuple.Float", Want: "float", Got: v.Kind().String()}
}

// Bool extracts slot i as a bool.
func (t *Tuple) Bool(i int) (bool, error) {
	v, err := t.At(i)
	if err != nil {
		return false, err
	}
	b, ok := v.(*Bool)
	if !ok {
		return false, &TypeMismatchError{Op: "Tuple.Bool", Want: "bool", Got: v.Kind().String()}
	}
	return b.Get(), nil
}

// Str extracts slot i as a string copy.
func (t *Tuple) Str(i int) (string, error) {
	v, err := t.At(i)
	if err != nil {
		return "", err
	}
	s, ok := v.(*String)
	if !ok {
		return "", &TypeMismatchError{Op: "Tuple.Str", Want: "str", Got: v.Kind().String()}
	}
	return s.View().String(), nil
}

// Cursor returns a fresh forward cursor over the elements. A cursor is not
// restartable; call Cursor again to iterate again.
func (t *Tuple) Cursor() *Cursor {
	t.check("Tuple.Cursor")
	return &Cursor{t: t, idx: -1}
}

// Release frees the tuple and every element it owns.
func (t *Tuple) Release() {
	if t == nil {
		panic(violation("Tuple.Release", "nil Tuple handle"))
	}
	for i, v := range t.elems {
		Release(v)
		t.elems[i] = nil
	}
	t.release("Tuple.Release", "Tuple")
}

func (t *Tuple) transfer() Value {
	t.check("IntoRaw")
	moved := &Tuple{elems: t.elems}
	t.elems = nil
	t.released = true
	return moved
}

// Cursor walks a tuple's elements once, front to back.
type Cursor struct {
	t   *Tuple
	idx int
}

// Next advances the cursor and returns a borrowed view of the next element.
// It returns false once the tuple is exhausted and keeps returning false.
func (c *Cursor) Next() (Value, bool) {
	c.t.check("Cursor.Next")
	if c.idx+1 >= len(c.t.elems) {
		c.idx = len(c.t.elems)
		return nil, false
	}
	c.idx++
	return c.t.elems[c.idx], true
}

// Index returns the position of the element last returned by Next: -1 before
// the first call and Len once exhausted.
func (c *Cursor) Index() int {
	return c.idx
}
