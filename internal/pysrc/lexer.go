package pysrc

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenType classifies a token.
type TokenType int

const (
	EOF TokenType = iota
	NEWLINE
	INDENT
	DEDENT
	NAME
	NUMBER
	STRING
	OP
	ERROR
)

var tokenNames = [...]string{
	EOF:     "EOF",
	NEWLINE: "NEWLINE",
	INDENT:  "INDENT",
	DEDENT:  "DEDENT",
	NAME:    "NAME",
	NUMBER:  "NUMBER",
	STRING:  "STRING",
	OP:      "OP",
	ERROR:   "ERROR",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is a lexical token. For STRING tokens Value holds the decoded
// contents; for ERROR tokens it holds the message.
type Token struct {
	Type   TokenType
	Lexeme string
	Value  string
	Line   int
	Col    int
}

// operators, longest first so that matching is greedy.
var operators = []string{
	"**=", "//=", ">>=", "<<=", "...",
	"->", ":=", "**", "//", "==", "!=", "<=", ">=", "<<", ">>",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "@=",
	"(", ")", "[", "]", "{", "}", ":", ",", ".", ";", "@", "=",
	"+", "-", "*", "/", "%", "<", ">", "&", "|", "^", "~", "!",
}

// Lexer turns Python source into tokens, synthesizing NEWLINE, INDENT and
// DEDENT the way the Python tokenizer does.
type Lexer struct {
	src  []rune
	pos  int
	line int
	col  int

	// indentation stack for significant whitespace
	indents     []int
	pending     []Token
	depth       int // open brackets; newlines inside brackets are ignored
	lineStart   bool
	lineHasToks bool
	done        bool
}

// NewLexer creates a lexer over source.
func NewLexer(source string) *Lexer {
	source = strings.TrimPrefix(source, "\ufeff")
	return &Lexer{
		src:       []rune(source),
		line:      1,
		col:       1,
		indents:   []int{0},
		lineStart: true,
	}
}

// Tokenize returns every token up to and including EOF, or the first ERROR.
func Tokenize(source string) []Token {
	l := NewLexer(source)
	var out []Token
	for {
		tok := l.Next()
		out = append(out, tok)
		if tok.Type == EOF || tok.Type == ERROR {
			return out
		}
	}
}

// Next returns the next token. After EOF or ERROR it keeps returning EOF.
func (l *Lexer) Next() Token {
	for {
		if len(l.pending) > 0 {
			tok := l.pending[0]
			l.pending = l.pending[1:]
			return tok
		}
		if l.done {
			return Token{Type: EOF, Line: l.line, Col: l.col}
		}

		if l.lineStart && l.depth == 0 {
			if tok, ok := l.indentation(); ok {
				return tok
			}
			continue
		}

		l.skipSpaces()
		if l.atEnd() {
			l.finish()
			continue
		}

		c := l.peek()
		switch {
		case c == '#':
			l.skipComment()
		case c == '\n' || c == '\r':
			l.consumeNewline()
			if l.depth == 0 {
				l.lineStart = true
				if l.lineHasToks {
					l.lineHasToks = false
					return Token{Type: NEWLINE, Lexeme: "\n", Line: l.line - 1, Col: 0}
				}
			}
		case c == '\\' && (l.peekAt(1) == '\n' || l.peekAt(1) == '\r'):
			l.advance()
			l.consumeNewline()
		case isIdentStart(c):
			l.lineHasToks = true
			return l.nameOrString()
		case unicode.IsDigit(c) || (c == '.' && unicode.IsDigit(l.peekAt(1))):
			l.lineHasToks = true
			return l.number()
		case c == '"' || c == '\'':
			l.lineHasToks = true
			return l.str(l.pos, l.line, l.col)
		default:
			l.lineHasToks = true
			return l.operator()
		}
	}
}

// indentation measures the leading whitespace of a new physical line.
// Blank and comment-only lines produce no tokens.
func (l *Lexer) indentation() (Token, bool) {
	width := 0
scan:
	for !l.atEnd() {
		switch l.peek() {
		case ' ':
			width++
		case '\t':
			width = (width/8 + 1) * 8
		case '\f':
			width = 0
		default:
			break scan
		}
		l.advance()
	}
	if l.atEnd() {
		l.lineStart = false
		return Token{}, false
	}
	switch l.peek() {
	case '#':
		l.skipComment()
		return Token{}, false
	case '\n', '\r':
		l.consumeNewline()
		return Token{}, false
	}
	l.lineStart = false

	top := l.indents[len(l.indents)-1]
	switch {
	case width > top:
		l.indents = append(l.indents, width)
		return Token{Type: INDENT, Line: l.line, Col: l.col}, true
	case width < top:
		for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
			l.indents = l.indents[:len(l.indents)-1]
			l.pending = append(l.pending, Token{Type: DEDENT, Line: l.line, Col: l.col})
		}
		if l.indents[len(l.indents)-1] != width {
			l.pending = append(l.pending, l.errorf("unindent does not match any outer indentation level"))
			l.done = true
		}
		return Token{}, false
	}
	return Token{}, false
}

// finish queues the tokens that close the file.
func (l *Lexer) finish() {
	if l.depth > 0 {
		l.pending = append(l.pending, l.errorf("unexpected EOF: unclosed bracket"))
		l.done = true
		return
	}
	if l.lineHasToks {
		l.lineHasToks = false
		l.pending = append(l.pending, Token{Type: NEWLINE, Line: l.line, Col: l.col})
	}
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.pending = append(l.pending, Token{Type: DEDENT, Line: l.line, Col: l.col})
	}
	l.done = true
}

func (l *Lexer) nameOrString() Token {
	startPos, line, col := l.pos, l.line, l.col
	for !l.atEnd() && isIdentPart(l.peek()) {
		l.advance()
	}
	word := string(l.src[startPos:l.pos])
	if !l.atEnd() && (l.peek() == '"' || l.peek() == '\'') && isStringPrefix(word) {
		return l.str(startPos, line, col)
	}
	return Token{Type: NAME, Lexeme: word, Line: line, Col: col}
}

func isStringPrefix(word string) bool {
	switch strings.ToLower(word) {
	case "r", "u", "b", "f", "br", "rb", "fr", "rf":
		return true
	}
	return false
}

func (l *Lexer) number() Token {
	startPos, line, col := l.pos, l.line, l.col
	for !l.atEnd() {
		c := l.peek()
		if isIdentPart(c) || c == '.' {
			l.advance()
			continue
		}
		if (c == '+' || c == '-') && l.pos > startPos {
			prev := unicode.ToLower(l.src[l.pos-1])
			if prev == 'e' && !strings.HasPrefix(strings.ToLower(string(l.src[startPos:l.pos])), "0x") {
				l.advance()
				continue
			}
		}
		break
	}
	return Token{Type: NUMBER, Lexeme: string(l.src[startPos:l.pos]), Line: line, Col: col}
}

// str scans a string literal whose prefix (if any) starts at startPos and
// whose opening quote is at the current position.
func (l *Lexer) str(startPos, line, col int) Token {
	prefix := strings.ToLower(string(l.src[startPos:l.pos]))
	raw := strings.Contains(prefix, "r")
	quote := l.peek()
	triple := l.peekAt(1) == quote && l.peekAt(2) == quote
	if triple {
		l.advance()
		l.advance()
	}
	l.advance()

	var value strings.Builder
	for {
		if l.atEnd() {
			return l.errorAt(line, col, "unterminated string literal")
		}
		c := l.peek()
		if c == '\\' {
			l.advance()
			if l.atEnd() {
				return l.errorAt(line, col, "unterminated string literal")
			}
			esc := l.peek()
			l.advanceAny()
			if raw {
				value.WriteRune('\\')
				value.WriteRune(esc)
				continue
			}
			value.WriteString(unescape(esc))
			continue
		}
		if c == quote {
			if !triple {
				l.advance()
				break
			}
			if l.peekAt(1) == quote && l.peekAt(2) == quote {
				l.advance()
				l.advance()
				l.advance()
				break
			}
		}
		if (c == '\n' || c == '\r') && !triple {
			return l.errorAt(line, col, "unterminated string literal")
		}
		value.WriteRune(c)
		l.advanceAny()
	}
	return Token{
		Type:   STRING,
		Lexeme: string(l.src[startPos:l.pos]),
		Value:  value.String(),
		Line:   line,
		Col:    col,
	}
}

func unescape(c rune) string {
	switch c {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case '0':
		return "\x00"
	case '\n':
		return ""
	case '\\', '\'', '"':
		return string(c)
	}
	return "\\" + string(c)
}

func (l *Lexer) operator() Token {
	line, col := l.line, l.col
	for _, op := range operators {
		if l.hasPrefix(op) {
			for range op {
				l.advance()
			}
			switch op {
			case "(", "[", "{":
				l.depth++
			case ")", "]", "}":
				if l.depth > 0 {
					l.depth--
				}
			}
			return Token{Type: OP, Lexeme: op, Line: line, Col: col}
		}
	}
	tok := l.errorf("unexpected character %q", l.peek())
	l.done = true
	return tok
}

func (l *Lexer) hasPrefix(op string) bool {
	i := 0
	for _, r := range op {
		if l.pos+i >= len(l.src) || l.src[l.pos+i] != r {
			return false
		}
		i++
	}
	return true
}

func (l *Lexer) skipSpaces() {
	for !l.atEnd() {
		switch l.peek() {
		case ' ', '\t', '\f':
			l.advance()
		case '\n', '\r':
			if l.depth == 0 {
				return
			}
			l.consumeNewline()
		default:
			return
		}
	}
}

func (l *Lexer) skipComment() {
	for !l.atEnd() && l.peek() != '\n' && l.peek() != '\r' {
		l.advance()
	}
}

func (l *Lexer) consumeNewline() {
	if l.peek() == '\r' {
		l.pos++
		if !l.atEnd() && l.peek() == '\n' {
			l.pos++
		}
	} else {
		l.pos++
	}
	l.line++
	l.col = 1
}

// advanceAny consumes one rune, tracking newlines inside triple-quoted
// strings.
func (l *Lexer) advanceAny() {
	if l.src[l.pos] == '\n' {
		l.pos++
		l.line++
		l.col = 1
		return
	}
	l.advance()
}

func (l *Lexer) advance() {
	l.pos++
	l.col++
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.src) }

func (l *Lexer) peek() rune { return l.src[l.pos] }

func (l *Lexer) peekAt(n int) rune {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

func (l *Lexer) errorf(format string, args ...any) Token {
	return l.errorAt(l.line, l.col, fmt.Sprintf(format, args...))
}

func (l *Lexer) errorAt(line, col int, msg string) Token {
	return Token{Type: ERROR, Value: msg, Line: line, Col: col}
}

func isIdentStart(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

func isIdentPart(c rune) bool {
	return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c) || unicode.Is(unicode.Mn, c) || unicode.Is(unicode.Mc, c)
}
