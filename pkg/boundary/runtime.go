package boundary

// Interpreter is the Python runtime as seen by generated glue.
type Interpreter interface {
	// Acquire takes the interpreter's execution lock. The returned scope
	// must be released exactly once on every exit path.
	Acquire() ExecScope
	// Import loads the module with the given dotted path. Callers hold an
	// execution scope.
	Import(path string) (Module, error)
}

// ExecScope is a held execution lock.
type ExecScope interface {
	Release()
}

// Module is an imported Python module.
type Module interface {
	// Call invokes the named function. args is borrowed for the duration of
	// the call; the returned value is owned by the caller.
	Call(name string, args *Tuple) (Value, error)
}
