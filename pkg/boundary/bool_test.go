package boundary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBool_FromSmallInteger(t *testing.T) {
	tests := []struct {
		in   int8
		want bool
	}{
		{0, false},
		{1, true},
		{-1, true},
		{42, true},
	}
	for _, tt := range tests {
		b := NewBool(tt.in)
		assert.Equal(t, tt.want, b.Get(), "NewBool(%d)", tt.in)
		b.Release()
	}
}

func TestBool_Logic(t *testing.T) {
	yes := BoolOf(true)
	no := BoolOf(false)
	defer yes.Release()
	defer no.Release()

	assert.False(t, yes.And(no))
	assert.True(t, yes.Or(no))
	assert.True(t, yes.AndValue(true))
	assert.False(t, no.OrValue(false))
	assert.False(t, yes.Not())
	assert.True(t, no.Not())
}

func TestBool_EqualComparesLogicalValue(t *testing.T) {
	a := NewBool(1)
	b := NewBool(7)
	c := NewBool(0)
	defer a.Release()
	defer b.Release()
	defer c.Release()

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestBool_UseAfterRelease(t *testing.T) {
	b := BoolOf(true)
	b.Release()
	assert.Panics(t, func() { b.Get() })
}
