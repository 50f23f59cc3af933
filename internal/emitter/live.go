package emitter

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/pybridge/internal/ir"
	"github.com/roach88/pybridge/internal/pkgmodel"
	"github.com/roach88/pybridge/pkg/boundary"
)

var (
	// ErrArity means a callable was given the wrong number of arguments.
	ErrArity = errors.New("wrong number of arguments")
	// ErrNotFound means a dotted path names no namespace or function.
	ErrNotFound = errors.New("no such member")
)

// Library is a loaded Go library whose bound functions can be looked up by
// their declared name.
type Library interface {
	Lookup(symbol string) (Symbol, error)
}

// Symbol is one callable function of a Library. Invoke borrows args; the
// returned value is owned by the caller.
type Symbol interface {
	Invoke(args []boundary.Value) (boundary.Value, error)
}

// Scoped is implemented by libraries whose calls must run under an
// execution scope.
type Scoped interface {
	Acquire() boundary.ExecScope
}

// Namespace is one node of the live go2py graph.
type Namespace struct {
	name     string
	path     []string
	children map[string]*Namespace
	funcs    map[string]*Callable
}

// Callable invokes one bound Go function with host values.
type Callable struct {
	sig *ir.Signature
	sym Symbol
	lib Library
}

// Live builds the live namespace graph for a go2py model. Every symbol is
// looked up up front, so a missing symbol fails here rather than at call
// time.
func Live(model *pkgmodel.Model, lib Library) (*Namespace, error) {
	return liveNode(model.Root(), nil, lib)
}

func liveNode(n *pkgmodel.Node, parent []string, lib Library) (*Namespace, error) {
	path := append(append([]string(nil), parent...), n.Name)
	ns := &Namespace{
		name:     n.Name,
		path:     path,
		children: map[string]*Namespace{},
		funcs:    map[string]*Callable{},
	}
	for _, sig := range n.Funcs() {
		sym, err := lib.Lookup(sig.Symbol)
		if err != nil {
			return nil, fmt.Errorf("lookup %s.%s: %w", strings.Join(path, "."), sig.Symbol, err)
		}
		ns.funcs[sig.Name] = &Callable{sig: sig, sym: sym, lib: lib}
	}
	for _, child := range n.Children() {
		c, err := liveNode(child, path, lib)
		if err != nil {
			return nil, err
		}
		ns.children[child.Name] = c
	}
	return ns, nil
}

// Name returns the namespace's own name.
func (ns *Namespace) Name() string { return ns.name }

// Path returns the namespace's dotted path from the root.
func (ns *Namespace) Path() string { return strings.Join(ns.path, ".") }

// Child returns the child namespace called name, or nil.
func (ns *Namespace) Child(name string) *Namespace { return ns.children[name] }

// Func returns the function called name, or nil.
func (ns *Namespace) Func(name string) *Callable { return ns.funcs[name] }

// Children returns the names of the child namespaces, sorted.
func (ns *Namespace) Children() []string { return sortedKeys(ns.children) }

// Funcs returns the names of the functions, sorted.
func (ns *Namespace) Funcs() []string { return sortedKeys(ns.funcs) }

// Resolve finds a function by dotted path relative to ns, e.g. "text.Words".
func (ns *Namespace) Resolve(dotted string) (*Callable, error) {
	parts := strings.Split(dotted, ".")
	cur := ns
	for _, p := range parts[:len(parts)-1] {
		next := cur.children[p]
		if next == nil {
			return nil, fmt.Errorf("%s: %w: namespace %s in %s", dotted, ErrNotFound, p, cur.Path())
		}
		cur = next
	}
	fn := cur.funcs[parts[len(parts)-1]]
	if fn == nil {
		return nil, fmt.Errorf("%s: %w: function %s in %s", dotted, ErrNotFound, parts[len(parts)-1], cur.Path())
	}
	return fn, nil
}

// Signature returns the signature the callable was built from.
func (c *Callable) Signature() *ir.Signature { return c.sig }

// Call converts args into boundary values, invokes the symbol and converts
// the result back. For a Scoped library the execution scope is held from
// before the first conversion until every boundary value is released.
// Arguments are converted all or nothing.
func (c *Callable) Call(args ...any) (any, error) {
	if len(args) != len(c.sig.Params) {
		return nil, fmt.Errorf("%s: %w: want %d, got %d", c.sig.Name, ErrArity, len(c.sig.Params), len(args))
	}

	if scoped, ok := c.lib.(Scoped); ok {
		scope := scoped.Acquire()
		defer scope.Release()
	}

	vals := make([]boundary.Value, 0, len(args))
	defer func() {
		for _, v := range vals {
			boundary.Release(v)
		}
	}()
	for i, p := range c.sig.Params {
		v, err := ToBoundary(p.Type, args[i])
		if err != nil {
			return nil, fmt.Errorf("%s: argument %s: %w", c.sig.Name, p.Name, err)
		}
		vals = append(vals, v)
	}

	out, err := c.sym.Invoke(vals)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.sig.Name, err)
	}
	defer boundary.Release(out)

	res, err := FromBoundary(c.sig.Return, out)
	if err != nil {
		return nil, fmt.Errorf("%s: result: %w", c.sig.Name, err)
	}
	return res, nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
