package emitter

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/roach88/pybridge/internal/ir"
	"github.com/roach88/pybridge/pkg/boundary"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// FuncLibrary is an in-process Library of Go functions registered by name.
// Calls through it are serialized by its execution scope.
//
// Registered functions must use exact-width types (int64, not int) so that
// every parameter has exactly one boundary form. A trailing error result is
// returned as the call's error.
type FuncLibrary struct {
	exec  sync.Mutex
	mu    sync.RWMutex
	funcs map[string]*funcSymbol
}

// NewFuncLibrary creates an empty library.
func NewFuncLibrary() *FuncLibrary {
	return &FuncLibrary{funcs: map[string]*funcSymbol{}}
}

// Register adds fn under symbol.
func (l *FuncLibrary) Register(symbol string, fn any) error {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return fmt.Errorf("register %s: %T is not a function", symbol, fn)
	}
	ft := rv.Type()
	if ft.IsVariadic() {
		return fmt.Errorf("register %s: variadic functions are not supported", symbol)
	}
	sym := &funcSymbol{fn: rv}
	for i := range ft.NumIn() {
		d, err := descriptorOf(ft.In(i))
		if err != nil {
			return fmt.Errorf("register %s: parameter %d: %w", symbol, i, err)
		}
		sym.params = append(sym.params, d)
	}
	nout := ft.NumOut()
	if nout > 0 && ft.Out(nout-1) == errorType {
		sym.hasErr = true
		nout--
	}
	var results []ir.Descriptor
	for i := range nout {
		d, err := descriptorOf(ft.Out(i))
		if err != nil {
			return fmt.Errorf("register %s: result %d: %w", symbol, i, err)
		}
		results = append(results, d)
	}
	switch len(results) {
	case 0:
		sym.ret = ir.Unit{}
	case 1:
		sym.ret = results[0]
	default:
		sym.ret = ir.Tuple{Elems: results}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.funcs[symbol] = sym
	return nil
}

// MustRegister is like Register but panics on error.
func (l *FuncLibrary) MustRegister(symbol string, fn any) *FuncLibrary {
	if err := l.Register(symbol, fn); err != nil {
		panic(err)
	}
	return l
}

// Lookup implements Library.
func (l *FuncLibrary) Lookup(symbol string) (Symbol, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	sym, ok := l.funcs[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: symbol %s", ErrNotFound, symbol)
	}
	return sym, nil
}

// Acquire implements Scoped.
func (l *FuncLibrary) Acquire() boundary.ExecScope {
	l.exec.Lock()
	return unlockScope{&l.exec}
}

type unlockScope struct {
	mu *sync.Mutex
}

func (s unlockScope) Release() { s.mu.Unlock() }

// descriptorOf maps a Go type to its boundary descriptor. Only types that
// HostType maps back to themselves are accepted.
func descriptorOf(t reflect.Type) (ir.Descriptor, error) {
	for k, ht := range scalarHostTypes {
		if t == ht {
			return ir.Scalar{Kind: k}, nil
		}
	}
	switch t.Kind() {
	case reflect.Uintptr:
		return ir.Opaque{Hint: t.String()}, nil
	case reflect.Slice:
		if t == anySliceType {
			return nil, errors.New("[]any has no fixed element type")
		}
		e, err := descriptorOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return ir.List{Elem: e}, nil
	case reflect.Map:
		k, err := descriptorOf(t.Key())
		if err != nil {
			return nil, err
		}
		ks, ok := k.(ir.Scalar)
		if !ok {
			return nil, fmt.Errorf("map key %s is not a scalar", t.Key())
		}
		v, err := descriptorOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Mapping{Key: ks, Value: v}, nil
	}
	return nil, fmt.Errorf("type %s cannot cross the boundary", t)
}

type funcSymbol struct {
	fn     reflect.Value
	params []ir.Descriptor
	ret    ir.Descriptor
	hasErr bool
}

// Invoke implements Symbol.
func (s *funcSymbol) Invoke(args []boundary.Value) (boundary.Value, error) {
	if len(args) != len(s.params) {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrArity, len(s.params), len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, d := range s.params {
		x, err := FromBoundary(d, args[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		rv := reflect.ValueOf(x)
		if want := s.fn.Type().In(i); rv.Type() != want {
			rv = rv.Convert(want)
		}
		in[i] = rv
	}

	out := s.fn.Call(in)
	if s.hasErr {
		if err, _ := out[len(out)-1].Interface().(error); err != nil {
			return nil, err
		}
		out = out[:len(out)-1]
	}

	switch ret := s.ret.(type) {
	case ir.Unit:
		return boundary.Unit{}, nil
	case ir.Tuple:
		parts := make([]any, len(out))
		for i, o := range out {
			parts[i] = o.Interface()
		}
		return ToBoundary(ret, parts)
	}
	return ToBoundary(s.ret, out[0].Interface())
}
