package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkers_Match(t *testing.T) {
	m := DefaultMarkers(Py2Go)

	match, ok := m.Match("go_bind_add", nil)
	assert.True(t, ok)
	assert.Equal(t, Match{Name: "add", Prefix: "go_bind_"}, match)

	match, ok = m.Match("scale", []string{"pybridge.go_bind"})
	assert.True(t, ok)
	assert.Equal(t, Match{Name: "scale", Token: "go_bind"}, match)

	match, ok = m.Match("go_bind_both", []string{"go_bind"})
	assert.True(t, ok)
	assert.Equal(t, Match{Name: "both", Prefix: "go_bind_", Token: "go_bind"}, match)

	_, ok = m.Match("helper", []string{"staticmethod"})
	assert.False(t, ok)

	_, ok = m.Match("rust_bind_add", nil)
	assert.False(t, ok)
}

func TestMarkers_LongestPrefixWins(t *testing.T) {
	m := Markers{Prefixes: []string{"bind_", "bind_fast_"}}

	match, ok := m.Match("bind_fast_sum", nil)
	assert.True(t, ok)
	assert.Equal(t, "sum", match.Name)
	assert.Equal(t, "bind_fast_", match.Prefix)
}

func TestMarkers_WithPrefixes(t *testing.T) {
	m := DefaultMarkers(Go2Py).WithPrefixes("Export")

	_, ok := m.Match("PyBindAdd", nil)
	assert.False(t, ok, "explicit prefixes replace the default")

	match, ok := m.Match("ExportAdd", nil)
	assert.True(t, ok)
	assert.Equal(t, "Add", match.Name)

	match, ok = m.Match("Add", []string{"pybridge:bind"})
	assert.True(t, ok, "directive still applies")
	assert.Equal(t, "Add", match.Name)

	assert.Equal(t, DefaultMarkers(Go2Py), DefaultMarkers(Go2Py).WithPrefixes())
}
