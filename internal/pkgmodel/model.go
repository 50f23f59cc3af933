// Package pkgmodel arranges binding signatures into the namespace tree that
// both emitters render.
package pkgmodel

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/roach88/pybridge/internal/ir"
)

// CollisionError reports two members of one namespace with the same name.
type CollisionError struct {
	// Path is the namespace holding both members, starting at the root.
	Path []string
	Name string
	// Existing and Incoming describe the two members, e.g. "function add"
	// or "namespace add".
	Existing string
	Incoming string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("name collision in %s: %s conflicts with %s", strings.Join(e.Path, "."), e.Incoming, e.Existing)
}

// Node is one namespace: a package directory, a module file or the root.
type Node struct {
	Name     string
	children map[string]*Node
	funcs    map[string]*ir.Signature
}

func newNode(name string) *Node {
	return &Node{Name: name, children: map[string]*Node{}, funcs: map[string]*ir.Signature{}}
}

// Child returns the child namespace called name, or nil.
func (n *Node) Child(name string) *Node {
	return n.children[name]
}

// Func returns the function called name, or nil.
func (n *Node) Func(name string) *ir.Signature {
	return n.funcs[name]
}

// Children returns the child namespaces sorted by name.
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, len(n.children))
	for _, name := range sortedKeys(n.children) {
		out = append(out, n.children[name])
	}
	return out
}

// Funcs returns the functions of this namespace sorted by name.
func (n *Node) Funcs() []*ir.Signature {
	out := make([]*ir.Signature, 0, len(n.funcs))
	for _, name := range sortedKeys(n.funcs) {
		out = append(out, n.funcs[name])
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Model is the namespace tree of one scan.
type Model struct {
	root  *Node
	count int
}

// New creates an empty model whose root node is called rootName.
func New(rootName string) *Model {
	return &Model{root: newNode(rootName)}
}

// Root returns the root node.
func (m *Model) Root() *Node {
	return m.root
}

// Len returns the number of signatures in the model.
func (m *Model) Len() int {
	return m.count
}

// Insert adds sig to the node at path, relative to the root, creating
// intermediate nodes as needed. A function and a namespace, or two
// functions, may not share a name within one node.
func (m *Model) Insert(path []string, sig *ir.Signature) error {
	node := m.root
	full := []string{m.root.Name}
	for _, seg := range path {
		if _, clash := node.funcs[seg]; clash {
			return &CollisionError{
				Path:     full,
				Name:     seg,
				Existing: "function " + seg,
				Incoming: "namespace " + seg,
			}
		}
		child, ok := node.children[seg]
		if !ok {
			child = newNode(seg)
			node.children[seg] = child
		}
		node = child
		full = append(full, seg)
	}

	if existing, ok := node.funcs[sig.Name]; ok {
		return &CollisionError{
			Path:     full,
			Name:     sig.Name,
			Existing: "function " + existing.Symbol,
			Incoming: "function " + sig.Symbol,
		}
	}
	if _, ok := node.children[sig.Name]; ok {
		return &CollisionError{
			Path:     full,
			Name:     sig.Name,
			Existing: "namespace " + sig.Name,
			Incoming: "function " + sig.Symbol,
		}
	}
	node.funcs[sig.Name] = sig
	m.count++
	return nil
}

// Lookup returns the node at path, relative to the root.
func (m *Model) Lookup(path []string) (*Node, bool) {
	node := m.root
	for _, seg := range path {
		node = node.children[seg]
		if node == nil {
			return nil, false
		}
	}
	return node, true
}

// Walk yields every node with its full path from the root, depth first,
// parents before children and siblings in name order. Each call starts a
// fresh traversal.
func (m *Model) Walk() iter.Seq2[[]string, *Node] {
	return func(yield func([]string, *Node) bool) {
		walk(m.root, nil, yield)
	}
}

func walk(n *Node, parent []string, yield func([]string, *Node) bool) bool {
	path := append(slices.Clone(parent), n.Name)
	if !yield(path, n) {
		return false
	}
	for _, child := range n.Children() {
		if !walk(child, path, yield) {
			return false
		}
	}
	return true
}
