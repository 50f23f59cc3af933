package boundary

import (
	"bytes"
	"unicode/utf8"
)

// String is an owned UTF-8 text handle.
type String struct {
	handle
	s string
}

// StrView is a borrowed, read-only view of a String. It cannot be released
// and must not outlive the handle it was taken from.
type StrView struct {
	s string
}

func (v StrView) String() string { return v.s }

// Len returns the length of the view in bytes.
func (v StrView) Len() int { return len(v.s) }

// NewString allocates a String from s.
func NewString(s string) (*String, error) {
	if !utf8.ValidString(s) {
		return nil, ErrInvalidEncoding
	}
	track()
	return &String{s: s}, nil
}

// NewStringFromBytes allocates a String from a length-delimited byte source.
func NewStringFromBytes(b []byte) (*String, error) {
	if !utf8.Valid(b) {
		return nil, ErrInvalidEncoding
	}
	track()
	return &String{s: string(b)}, nil
}

// NewStringFromC allocates a String from a NUL-terminated byte source. Bytes
// after the first NUL are ignored.
func NewStringFromC(b []byte) (*String, error) {
	n := bytes.IndexByte(b, 0)
	if n < 0 {
		return nil, ErrNotTerminated
	}
	return NewStringFromBytes(b[:n])
}

func (s *String) Kind() Kind { return KindString }

func (s *String) boundaryValue() {}

func (s *String) check(op string) {
	if s == nil {
		panic(violation(op, "nil String handle"))
	}
	s.handle.check(op, "String")
}

// View returns a borrowed view of the text.
func (s *String) View() StrView {
	s.check("String.View")
	return StrView{s: s.s}
}

// Len returns the length in bytes.
func (s *String) Len() int {
	s.check("String.Len")
	return len(s.s)
}

// Consume moves the text out of the handle. The handle is empty afterwards
// and must not be released.
func (s *String) Consume() string {
	s.check("String.Consume")
	out := s.s
	s.s = ""
	s.release("String.Consume", "String")
	return out
}

// Release frees the handle.
func (s *String) Release() {
	if s == nil {
		panic(violation("String.Release", "nil String handle"))
	}
	s.s = ""
	s.release("String.Release", "String")
}

func (s *String) transfer() Value {
	s.check("IntoRaw")
	moved := &String{s: s.s}
	s.s = ""
	s.released = true
	return moved
}
