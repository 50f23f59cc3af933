package pysrc

import "strings"

// Expr is an annotation-level expression.
type Expr interface {
	expr()
}

// Name is a bare identifier.
type Name struct {
	ID string
}

// Attribute is value.attr.
type Attribute struct {
	Value Expr
	Attr  string
}

// Subscript is value[index, ...].
type Subscript struct {
	Value Expr
	Index []Expr
}

// Call is fn(args..., kw=value...).
type Call struct {
	Func     Expr
	Args     []Expr
	Keywords []Keyword
}

// Keyword is a keyword argument in a call.
type Keyword struct {
	Name  string
	Value Expr
}

// Str is a string literal; in an annotation it is a forward reference.
type Str struct {
	Value string
}

// Num is a numeric literal, kept as written.
type Num struct {
	Text string
}

// NoneLit is the None constant.
type NoneLit struct{}

// EllipsisLit is "...".
type EllipsisLit struct{}

// BinOr is left | right.
type BinOr struct {
	Left  Expr
	Right Expr
}

// ListExpr is [a, b, ...].
type ListExpr struct {
	Elts []Expr
}

// TupleExpr is a parenthesized tuple.
type TupleExpr struct {
	Elts []Expr
}

// Unknown stands in for an expression the reader does not model.
type Unknown struct {
	Text string
}

func (Name) expr()        {}
func (Attribute) expr()   {}
func (Subscript) expr()   {}
func (Call) expr()        {}
func (Str) expr()         {}
func (Num) expr()         {}
func (NoneLit) expr()     {}
func (EllipsisLit) expr() {}
func (BinOr) expr()       {}
func (ListExpr) expr()    {}
func (TupleExpr) expr()   {}
func (Unknown) expr()     {}

// Dotted returns the dotted path of a Name or Attribute chain, e.g.
// "typing.List".
func Dotted(e Expr) (string, bool) {
	switch x := e.(type) {
	case Name:
		return x.ID, true
	case Attribute:
		base, ok := Dotted(x.Value)
		if !ok {
			return "", false
		}
		return base + "." + x.Attr, true
	}
	return "", false
}

// Format renders e back to Python-like source text for diagnostics.
func Format(e Expr) string {
	switch x := e.(type) {
	case nil:
		return ""
	case Name:
		return x.ID
	case Attribute:
		return Format(x.Value) + "." + x.Attr
	case Subscript:
		return Format(x.Value) + "[" + formatList(x.Index) + "]"
	case Call:
		parts := []string{}
		for _, a := range x.Args {
			parts = append(parts, Format(a))
		}
		for _, kw := range x.Keywords {
			parts = append(parts, kw.Name+"="+Format(kw.Value))
		}
		return Format(x.Func) + "(" + strings.Join(parts, ", ") + ")"
	case Str:
		return "'" + x.Value + "'"
	case Num:
		return x.Text
	case NoneLit:
		return "None"
	case EllipsisLit:
		return "..."
	case BinOr:
		return Format(x.Left) + " | " + Format(x.Right)
	case ListExpr:
		return "[" + formatList(x.Elts) + "]"
	case TupleExpr:
		return "(" + formatList(x.Elts) + ")"
	case Unknown:
		return x.Text
	}
	return "?"
}

func formatList(es []Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = Format(e)
	}
	return strings.Join(parts, ", ")
}

// Stmt is a declaration found in a module.
type Stmt interface {
	stmt()
	Position() Pos
}

// Pos is a source position.
type Pos struct {
	Line int
	Col  int
}

// ParamKind distinguishes ordinary parameters from *args and **kwargs.
type ParamKind int

const (
	ParamPlain ParamKind = iota
	ParamVarArgs
	ParamKwArgs
	ParamKwOnly // after a bare * or *args
)

// Param is a function parameter.
type Param struct {
	Name       string
	Annotation Expr // nil when unannotated
	HasDefault bool
	Kind       ParamKind
}

// FuncDef is a def or async def.
type FuncDef struct {
	Name       string
	Params     []Param
	Returns    Expr // nil when there is no return annotation
	Decorators []Expr
	Async      bool
	// Enclosing lists the enclosing def and class names, outermost first.
	// It is empty for module-scope definitions.
	Enclosing []string
	Pos       Pos
}

// ClassDef is a class statement.
type ClassDef struct {
	Name      string
	Enclosing []string
	Pos       Pos
}

// Assign is a simple NAME = value or NAME: T = value statement.
type Assign struct {
	Target    string
	Value     Expr
	Enclosing []string
	Pos       Pos
}

// Import is an import or from-import statement. Names lists what it binds,
// in source order. A plain "import a.b" binds nothing worth rewriting and
// yields no names.
type Import struct {
	Names     []ImportName
	Enclosing []string
	Pos       Pos
}

// ImportName binds Local to the dotted Path it refers to, e.g.
// "from typing import List as L" binds L to typing.List. Relative paths
// keep their leading dots.
type ImportName struct {
	Local string
	Path  string
}

func (*FuncDef) stmt()  {}
func (*ClassDef) stmt() {}
func (*Assign) stmt()   {}
func (*Import) stmt()   {}

func (f *FuncDef) Position() Pos  { return f.Pos }
func (c *ClassDef) Position() Pos { return c.Pos }
func (a *Assign) Position() Pos   { return a.Pos }
func (i *Import) Position() Pos   { return i.Pos }

// ModuleScope reports whether the definition sits at module scope.
func (f *FuncDef) ModuleScope() bool { return len(f.Enclosing) == 0 }

// Module is the declaration view of one source file, in source order.
type Module struct {
	Stmts []Stmt
}
