package pysrc

import (
	"fmt"
	"strings"
)

// SyntaxError reports source the reader cannot make sense of.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Col, e.Msg)
}

type blockKind int

const (
	blockOther blockKind = iota
	blockDef
	blockClass
)

type block struct {
	kind blockKind
	name string
}

type parser struct {
	lex        *Lexer
	blocks     []block
	pending    block
	decorators []Expr
}

// Parse reads the declarations of one Python source file.
func Parse(source string) (*Module, error) {
	p := &parser{lex: NewLexer(source)}
	return p.module()
}

// ParseExpr parses a single annotation expression, such as the contents of
// a string forward reference.
func ParseExpr(source string) (Expr, error) {
	toks := Tokenize(strings.TrimSpace(source))
	var line []Token
	for _, t := range toks {
		switch t.Type {
		case ERROR:
			return nil, &SyntaxError{Line: t.Line, Col: t.Col, Msg: t.Value}
		case NEWLINE, EOF, INDENT, DEDENT:
			continue
		}
		line = append(line, t)
	}
	lp := &lineParser{toks: line}
	e, err := lp.expr()
	if err != nil {
		return nil, err
	}
	if !lp.atEnd() {
		return nil, lp.errorf("unexpected %q after expression", lp.cur().Lexeme)
	}
	return e, nil
}

func (p *parser) module() (*Module, error) {
	mod := &Module{}
	for {
		tok := p.lex.Next()
		switch tok.Type {
		case ERROR:
			return nil, &SyntaxError{Line: tok.Line, Col: tok.Col, Msg: tok.Value}
		case EOF:
			return mod, nil
		case NEWLINE:
		case INDENT:
			p.blocks = append(p.blocks, p.pending)
			p.pending = block{}
		case DEDENT:
			if len(p.blocks) > 0 {
				p.blocks = p.blocks[:len(p.blocks)-1]
			}
		default:
			line, err := p.readLine(tok)
			if err != nil {
				return nil, err
			}
			stmt, err := p.statement(line)
			if err != nil {
				return nil, err
			}
			if stmt != nil {
				mod.Stmts = append(mod.Stmts, stmt)
			}
		}
	}
}

// readLine collects the tokens of one logical line, without its NEWLINE.
func (p *parser) readLine(first Token) ([]Token, error) {
	line := []Token{first}
	for {
		tok := p.lex.Next()
		switch tok.Type {
		case ERROR:
			return nil, &SyntaxError{Line: tok.Line, Col: tok.Col, Msg: tok.Value}
		case NEWLINE, EOF:
			return line, nil
		}
		line = append(line, tok)
	}
}

func (p *parser) enclosing() []string {
	var names []string
	for _, b := range p.blocks {
		if b.kind != blockOther {
			names = append(names, b.name)
		}
	}
	return names
}

func (p *parser) statement(line []Token) (Stmt, error) {
	p.pending = block{}
	first := line[0]
	lp := &lineParser{toks: line}

	switch {
	case first.Type == OP && first.Lexeme == "@":
		lp.next()
		dec, err := lp.expr()
		if err != nil || !lp.atEnd() {
			dec = Unknown{Text: joinLexemes(line[1:])}
		}
		p.decorators = append(p.decorators, dec)
		return nil, nil
	case isKeyword(first, "def"):
		return p.funcDef(lp, false)
	case isKeyword(first, "async") && len(line) > 1 && isKeyword(line[1], "def"):
		lp.next()
		return p.funcDef(lp, true)
	case isKeyword(first, "class"):
		return p.classDef(lp)
	case isKeyword(first, "import"), isKeyword(first, "from"):
		p.decorators = nil
		imp, err := p.importStmt(lp)
		if err != nil {
			// an import the reader cannot follow binds nothing
			return nil, nil
		}
		return imp, nil
	}

	p.decorators = nil
	if first.Type == NAME && len(line) > 2 {
		if eq := assignIndex(line); eq > 0 {
			return p.assign(line, eq), nil
		}
	}
	return nil, nil
}

func (p *parser) funcDef(lp *lineParser, async bool) (Stmt, error) {
	defTok := lp.next()
	fn := &FuncDef{
		Async:      async,
		Decorators: p.decorators,
		Enclosing:  p.enclosing(),
		Pos:        Pos{Line: defTok.Line, Col: defTok.Col},
	}
	p.decorators = nil

	nameTok := lp.next()
	if nameTok.Type != NAME {
		return nil, &SyntaxError{Line: defTok.Line, Col: defTok.Col, Msg: "expected function name after def"}
	}
	fn.Name = nameTok.Lexeme
	if !lp.acceptOp("(") {
		return nil, lp.errorf("expected ( after def %s", fn.Name)
	}
	params, err := lp.params()
	if err != nil {
		return nil, err
	}
	fn.Params = params
	if lp.acceptOp("->") {
		fn.Returns = lp.annotation(":")
	}
	if !lp.acceptOp(":") {
		return nil, lp.errorf("expected : to end def %s", fn.Name)
	}
	p.pending = block{kind: blockDef, name: fn.Name}
	return fn, nil
}

func (p *parser) classDef(lp *lineParser) (Stmt, error) {
	classTok := lp.next()
	p.decorators = nil
	nameTok := lp.next()
	if nameTok.Type != NAME {
		return nil, &SyntaxError{Line: classTok.Line, Col: classTok.Col, Msg: "expected class name"}
	}
	cls := &ClassDef{
		Name:      nameTok.Lexeme,
		Enclosing: p.enclosing(),
		Pos:       Pos{Line: classTok.Line, Col: classTok.Col},
	}
	p.pending = block{kind: blockClass, name: cls.Name}
	return cls, nil
}

// importStmt reads "import a.b as c, d" and "from m import (x as y, z)".
// Star imports bind nothing.
func (p *parser) importStmt(lp *lineParser) (*Import, error) {
	kw := lp.next()
	imp := &Import{Enclosing: p.enclosing(), Pos: Pos{Line: kw.Line, Col: kw.Col}}

	if kw.Lexeme == "import" {
		for {
			path, err := lp.dottedName(false)
			if err != nil {
				return nil, err
			}
			if lp.acceptKeyword("as") {
				local := lp.next()
				if local.Type != NAME {
					return nil, lp.errorf("expected name after as")
				}
				imp.Names = append(imp.Names, ImportName{Local: local.Lexeme, Path: path})
			}
			if !lp.acceptOp(",") {
				break
			}
		}
		if !lp.atEnd() {
			return nil, lp.errorf("unexpected %q in import", lp.cur().Lexeme)
		}
		return imp, nil
	}

	module, err := lp.dottedName(true)
	if err != nil {
		return nil, err
	}
	if !lp.acceptKeyword("import") {
		return nil, lp.errorf("expected import after from %s", module)
	}
	if lp.acceptOp("*") {
		return imp, nil
	}
	paren := lp.acceptOp("(")
	for !lp.atEnd() && !lp.isOp(")") {
		name := lp.next()
		if name.Type != NAME {
			return nil, &SyntaxError{Line: name.Line, Col: name.Col, Msg: fmt.Sprintf("unexpected %q in import", name.Lexeme)}
		}
		local := name.Lexeme
		if lp.acceptKeyword("as") {
			alias := lp.next()
			if alias.Type != NAME {
				return nil, lp.errorf("expected name after as")
			}
			local = alias.Lexeme
		}
		path := module + "." + name.Lexeme
		if strings.HasSuffix(module, ".") {
			path = module + name.Lexeme
		}
		imp.Names = append(imp.Names, ImportName{Local: local, Path: path})
		if !lp.acceptOp(",") {
			break
		}
	}
	if paren && !lp.acceptOp(")") {
		return nil, lp.errorf("expected ) to close import list")
	}
	if !lp.atEnd() {
		return nil, lp.errorf("unexpected %q in import", lp.cur().Lexeme)
	}
	return imp, nil
}

func (p *parser) assign(line []Token, eq int) Stmt {
	value := line[eq+1:]
	lp := &lineParser{toks: value}
	e, err := lp.expr()
	if err != nil || !lp.atEnd() {
		e = Unknown{Text: joinLexemes(value)}
	}
	return &Assign{
		Target:    line[0].Lexeme,
		Value:     e,
		Enclosing: p.enclosing(),
		Pos:       Pos{Line: line[0].Line, Col: line[0].Col},
	}
}

// assignIndex returns the position of the "=" in NAME = value or
// NAME: annotation = value, or -1 for any other statement.
func assignIndex(line []Token) int {
	if line[1].Type != OP {
		return -1
	}
	switch line[1].Lexeme {
	case "=":
		return 1
	case ":":
		depth := 0
		for i := 2; i < len(line); i++ {
			t := line[i]
			if t.Type != OP {
				continue
			}
			switch t.Lexeme {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
			case "=":
				if depth == 0 {
					return i
				}
			}
		}
	}
	return -1
}

var keywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// IsKeyword reports whether name is a reserved Python keyword.
func IsKeyword(name string) bool { return keywords[name] }

func isKeyword(t Token, kw string) bool {
	return t.Type == NAME && t.Lexeme == kw
}

func joinLexemes(toks []Token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.Lexeme
	}
	return strings.Join(parts, " ")
}

// lineParser parses expressions out of the tokens of one logical line.
type lineParser struct {
	toks []Token
	i    int
}

func (lp *lineParser) atEnd() bool { return lp.i >= len(lp.toks) }

func (lp *lineParser) cur() Token {
	if lp.atEnd() {
		return Token{Type: EOF}
	}
	return lp.toks[lp.i]
}

func (lp *lineParser) next() Token {
	t := lp.cur()
	if !lp.atEnd() {
		lp.i++
	}
	return t
}

func (lp *lineParser) isOp(op string) bool {
	t := lp.cur()
	return t.Type == OP && t.Lexeme == op
}

func (lp *lineParser) acceptOp(op string) bool {
	if lp.isOp(op) {
		lp.i++
		return true
	}
	return false
}

func (lp *lineParser) acceptKeyword(kw string) bool {
	if isKeyword(lp.cur(), kw) {
		lp.i++
		return true
	}
	return false
}

// dottedName reads a.b.c. With relative set, leading dots are allowed and
// kept, and a bare run of dots is a complete name.
func (lp *lineParser) dottedName(relative bool) (string, error) {
	var b strings.Builder
	for relative && (lp.isOp(".") || lp.isOp("...")) {
		b.WriteString(lp.next().Lexeme)
	}
	if b.Len() > 0 && isKeyword(lp.cur(), "import") {
		return b.String(), nil
	}
	for {
		t := lp.next()
		if t.Type != NAME {
			return "", &SyntaxError{Line: t.Line, Col: t.Col, Msg: fmt.Sprintf("expected module name, got %q", t.Lexeme)}
		}
		b.WriteString(t.Lexeme)
		if !lp.acceptOp(".") {
			return b.String(), nil
		}
		b.WriteByte('.')
	}
}

func (lp *lineParser) errorf(format string, args ...any) *SyntaxError {
	t := lp.cur()
	if lp.atEnd() && len(lp.toks) > 0 {
		t = lp.toks[len(lp.toks)-1]
	}
	return &SyntaxError{Line: t.Line, Col: t.Col, Msg: fmt.Sprintf(format, args...)}
}

func (lp *lineParser) params() ([]Param, error) {
	var params []Param
	kwOnly := false
	for !lp.isOp(")") {
		if lp.atEnd() {
			return nil, lp.errorf("unterminated parameter list")
		}
		var param Param
		switch {
		case lp.acceptOp("/"):
			if !lp.acceptOp(",") && !lp.isOp(")") {
				return nil, lp.errorf("expected , after /")
			}
			continue
		case lp.acceptOp("**"):
			param.Kind = ParamKwArgs
		case lp.acceptOp("*"):
			if lp.cur().Type != NAME {
				if !lp.acceptOp(",") && !lp.isOp(")") {
					return nil, lp.errorf("expected , after *")
				}
				kwOnly = true
				continue
			}
			param.Kind = ParamVarArgs
		case kwOnly:
			param.Kind = ParamKwOnly
		}
		nameTok := lp.next()
		if nameTok.Type != NAME {
			return nil, &SyntaxError{Line: nameTok.Line, Col: nameTok.Col, Msg: fmt.Sprintf("unexpected %q in parameter list", nameTok.Lexeme)}
		}
		param.Name = nameTok.Lexeme
		if lp.acceptOp(":") {
			param.Annotation = lp.annotation(",", ")", "=")
		}
		if lp.acceptOp("=") {
			param.HasDefault = true
			lp.skipTo(",", ")")
		}
		params = append(params, param)
		if param.Kind == ParamVarArgs {
			kwOnly = true
		}
		if !lp.acceptOp(",") && !lp.isOp(")") {
			return nil, lp.errorf("expected , or ) in parameter list")
		}
	}
	lp.next()
	return params, nil
}

// annotation parses an annotation expression terminated by one of stops at
// bracket depth zero. Anything the expression grammar cannot model becomes
// Unknown so that the caller can report it per function instead of failing
// the whole file.
func (lp *lineParser) annotation(stops ...string) Expr {
	start := lp.i
	e, err := lp.expr()
	if err == nil && lp.atStop(stops) {
		return e
	}
	lp.i = start
	lp.skipTo(stops...)
	return Unknown{Text: joinLexemes(lp.toks[start:lp.i])}
}

func (lp *lineParser) atStop(stops []string) bool {
	t := lp.cur()
	if t.Type != OP {
		return false
	}
	for _, s := range stops {
		if t.Lexeme == s {
			return true
		}
	}
	return false
}

func (lp *lineParser) skipTo(stops ...string) {
	depth := 0
	for !lp.atEnd() {
		t := lp.cur()
		if t.Type == OP {
			switch t.Lexeme {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth == 0 {
					if lp.atStop(stops) {
						return
					}
				} else {
					depth--
				}
			default:
				if depth == 0 && lp.atStop(stops) {
					return
				}
			}
		}
		lp.i++
	}
}

func (lp *lineParser) expr() (Expr, error) {
	left, err := lp.postfix()
	if err != nil {
		return nil, err
	}
	for lp.acceptOp("|") {
		right, err := lp.postfix()
		if err != nil {
			return nil, err
		}
		left = BinOr{Left: left, Right: right}
	}
	return left, nil
}

func (lp *lineParser) postfix() (Expr, error) {
	e, err := lp.atom()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case lp.acceptOp("."):
			t := lp.next()
			if t.Type != NAME {
				return nil, lp.errorf("expected attribute name after .")
			}
			e = Attribute{Value: e, Attr: t.Lexeme}
		case lp.acceptOp("["):
			elts, err := lp.exprList("]")
			if err != nil {
				return nil, err
			}
			e = Subscript{Value: e, Index: elts}
		case lp.acceptOp("("):
			call, err := lp.callArgs(e)
			if err != nil {
				return nil, err
			}
			e = call
		default:
			return e, nil
		}
	}
}

func (lp *lineParser) atom() (Expr, error) {
	t := lp.next()
	switch t.Type {
	case NAME:
		if t.Lexeme == "None" {
			return NoneLit{}, nil
		}
		return Name{ID: t.Lexeme}, nil
	case STRING:
		value := t.Value
		for lp.cur().Type == STRING {
			value += lp.next().Value
		}
		return Str{Value: value}, nil
	case NUMBER:
		return Num{Text: t.Lexeme}, nil
	case OP:
		switch t.Lexeme {
		case "...":
			return EllipsisLit{}, nil
		case "-":
			n := lp.next()
			if n.Type != NUMBER {
				return nil, lp.errorf("expected number after -")
			}
			return Num{Text: "-" + n.Lexeme}, nil
		case "[":
			elts, err := lp.exprList("]")
			if err != nil {
				return nil, err
			}
			return ListExpr{Elts: elts}, nil
		case "(":
			if lp.acceptOp(")") {
				return TupleExpr{}, nil
			}
			first, err := lp.expr()
			if err != nil {
				return nil, err
			}
			if lp.acceptOp(")") {
				return first, nil
			}
			if !lp.acceptOp(",") {
				return nil, lp.errorf("expected , or ) in parenthesized expression")
			}
			rest, err := lp.exprList(")")
			if err != nil {
				return nil, err
			}
			return TupleExpr{Elts: append([]Expr{first}, rest...)}, nil
		}
	}
	return nil, &SyntaxError{Line: t.Line, Col: t.Col, Msg: fmt.Sprintf("unexpected %q in expression", t.Lexeme)}
}

// exprList parses comma-separated expressions up to and including close.
func (lp *lineParser) exprList(close string) ([]Expr, error) {
	var elts []Expr
	for !lp.acceptOp(close) {
		if lp.atEnd() {
			return nil, lp.errorf("expected %s", close)
		}
		e, err := lp.expr()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
		if !lp.acceptOp(",") && !lp.isOp(close) {
			return nil, lp.errorf("expected , or %s", close)
		}
	}
	return elts, nil
}

func (lp *lineParser) callArgs(fn Expr) (Expr, error) {
	call := Call{Func: fn}
	for !lp.acceptOp(")") {
		if lp.atEnd() {
			return nil, lp.errorf("expected )")
		}
		if lp.cur().Type == NAME && lp.i+1 < len(lp.toks) && lp.toks[lp.i+1].Type == OP && lp.toks[lp.i+1].Lexeme == "=" {
			name := lp.next().Lexeme
			lp.next()
			v, err := lp.expr()
			if err != nil {
				return nil, err
			}
			call.Keywords = append(call.Keywords, Keyword{Name: name, Value: v})
		} else {
			v, err := lp.expr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, v)
		}
		if !lp.acceptOp(",") && !lp.isOp(")") {
			return nil, lp.errorf("expected , or ) in call")
		}
	}
	return call, nil
}
