package boundary

// Bool is an owned boolean handle.
type Bool struct {
	handle
	v bool
}

// NewBool allocates a Bool from a small integer: 0 is false, anything else
// is true.
func NewBool(v int8) *Bool {
	track()
	return &Bool{v: v != 0}
}

// BoolOf allocates a Bool from a Go bool.
func BoolOf(v bool) *Bool {
	track()
	return &Bool{v: v}
}

func (b *Bool) Kind() Kind { return KindBool }

func (b *Bool) boundaryValue() {}

func (b *Bool) check(op string) {
	if b == nil {
		panic(violation(op, "nil Bool handle"))
	}
	b.handle.check(op, "Bool")
}

// Get returns the logical value.
func (b *Bool) Get() bool {
	b.check("Bool.Get")
	return b.v
}

// And returns the conjunction with another handle.
func (b *Bool) And(other *Bool) bool {
	b.check("Bool.And")
	other.check("Bool.And")
	return b.v && other.v
}

// Or returns the disjunction with another handle.
func (b *Bool) Or(other *Bool) bool {
	b.check("Bool.Or")
	other.check("Bool.Or")
	return b.v || other.v
}

// AndValue returns the conjunction with a primitive.
func (b *Bool) AndValue(v bool) bool {
	b.check("Bool.AndValue")
	return b.v && v
}

// OrValue returns the disjunction with a primitive.
func (b *Bool) OrValue(v bool) bool {
	b.check("Bool.OrValue")
	return b.v || v
}

// Not returns the negation.
func (b *Bool) Not() bool {
	b.check("Bool.Not")
	return !b.v
}

// Equal compares logical values, not handle identity.
func (b *Bool) Equal(other *Bool) bool {
	b.check("Bool.Equal")
	other.check("Bool.Equal")
	return b.v == other.v
}

// Release frees the handle.
func (b *Bool) Release() {
	if b == nil {
		panic(violation("Bool.Release", "nil Bool handle"))
	}
	b.release("Bool.Release", "Bool")
}

func (b *Bool) transfer() Value {
	b.check("IntoRaw")
	b.released = true
	return &Bool{v: b.v}
}
