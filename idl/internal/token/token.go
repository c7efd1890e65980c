package token

import (
	"github.com/wippyai/mojom/errors"
)

type Type int

const (
	EOF Type = iota

	Name
	Ordinal
	IntDec
	IntHex
	Float
	String

	// Keywords
	Import
	Module
	Struct
	Interface
	Enum
	Const
	Handle
	True
	False
	Default

	// Punctuation
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	LAngle
	RAngle
	Semi
	Comma
	Dot
	Equals
	Amp
	Response

	// Expression operators
	Plus
	Minus
	Times
	Divide
	Mod
	Tilde
	Not
	LShift
	RShift
	LE
	GE
	EqEq
	NE
	Pipe
	Caret
	LAnd
	LOr
	Qstn
	Colon
)

var typeNames = map[Type]string{
	EOF:       "end of file",
	Name:      "name",
	Ordinal:   "ordinal",
	IntDec:    "decimal integer",
	IntHex:    "hex integer",
	Float:     "float",
	String:    "string literal",
	Import:    "'import'",
	Module:    "'module'",
	Struct:    "'struct'",
	Interface: "'interface'",
	Enum:      "'enum'",
	Const:     "'const'",
	Handle:    "'handle'",
	True:      "'true'",
	False:     "'false'",
	Default:   "'default'",
	LParen:    "'('",
	RParen:    "')'",
	LBracket:  "'['",
	RBracket:  "']'",
	LBrace:    "'{'",
	RBrace:    "'}'",
	LAngle:    "'<'",
	RAngle:    "'>'",
	Semi:      "';'",
	Comma:     "','",
	Dot:       "'.'",
	Equals:    "'='",
	Amp:       "'&'",
	Response:  "'=>'",
	Plus:      "'+'",
	Minus:     "'-'",
	Times:     "'*'",
	Divide:    "'/'",
	Mod:       "'%'",
	Tilde:     "'~'",
	Not:       "'!'",
	LShift:    "'<<'",
	RShift:    "'>>'",
	LE:        "'<='",
	GE:        "'>='",
	EqEq:      "'=='",
	NE:        "'!='",
	Pipe:      "'|'",
	Caret:     "'^'",
	LAnd:      "'&&'",
	LOr:       "'||'",
	Qstn:      "'?'",
	Colon:     "':'",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "unknown"
}

var keywords = map[string]Type{
	"import":    Import,
	"module":    Module,
	"struct":    Struct,
	"interface": Interface,
	"enum":      Enum,
	"const":     Const,
	"handle":    Handle,
	"true":      True,
	"false":     False,
	"default":   Default,
}

// Dialect selects the grammar variant. The dialects differ only in how the
// conditional operator is treated.
type Dialect int

const (
	// Modern rejects '?' as an illegal character.
	Modern Dialect = iota
	// Legacy lexes '?' and ':' and lets the parser keep conditional
	// expressions as unevaluated nodes.
	Legacy
)

func (d Dialect) String() string {
	if d == Legacy {
		return "legacy"
	}
	return "modern"
}

type Token struct {
	Value string
	Type  Type
	Line  int
}

// Tokenize splits source into tokens. Comments are dropped but still advance
// the line counter. String tokens keep their surrounding quotes.
func Tokenize(filename, input string, dialect Dialect) ([]Token, error) {
	l := &lexer{file: filename, src: input, line: 1, dialect: dialect}
	return l.run()
}

type lexer struct {
	file    string
	src     string
	tokens  []Token
	pos     int
	line    int
	dialect Dialect
}

func (l *lexer) emit(typ Type, start int) {
	l.tokens = append(l.tokens, Token{l.src[start:l.pos], typ, l.line})
}

func (l *lexer) peekAt(off int) byte {
	if l.pos+off < len(l.src) {
		return l.src[l.pos+off]
	}
	return 0
}

func (l *lexer) fail(kind errors.Kind, msg string) error {
	return errors.Lex(kind, l.file, l.line, msg)
}

func (l *lexer) run() ([]Token, error) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			l.pos++
		case c == '/' && l.peekAt(1) == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '/' && l.peekAt(1) == '*':
			if err := l.blockComment(); err != nil {
				return nil, err
			}
		case c == '@':
			if err := l.ordinal(); err != nil {
				return nil, err
			}
		case c == '"':
			if err := l.str(); err != nil {
				return nil, err
			}
		case isDigit(c) || (c == '.' && isDigit(l.peekAt(1))):
			l.number()
		case isLetter(c):
			start := l.pos
			for l.pos < len(l.src) && (isLetter(l.src[l.pos]) || isDigit(l.src[l.pos])) {
				l.pos++
			}
			typ := Name
			if kw, ok := keywords[l.src[start:l.pos]]; ok {
				typ = kw
			}
			l.emit(typ, start)
		default:
			if err := l.operator(c); err != nil {
				return nil, err
			}
		}
	}
	return l.tokens, nil
}

func (l *lexer) blockComment() error {
	startLine := l.line
	l.pos += 2
	for l.pos < len(l.src) {
		if l.src[l.pos] == '*' && l.peekAt(1) == '/' {
			l.pos += 2
			return nil
		}
		if l.src[l.pos] == '\n' {
			l.line++
		}
		l.pos++
	}
	return errors.Lex(errors.KindSyntax, l.file, startLine, "Unterminated comment")
}

func (l *lexer) ordinal() error {
	start := l.pos
	l.pos++
	if l.pos >= len(l.src) || !isDigit(l.src[l.pos]) {
		return l.fail(errors.KindInvalidOrdinal, "Missing ordinal value")
	}
	if l.src[l.pos] == '0' {
		next := l.peekAt(1)
		if isDigit(next) || next == 'x' || next == 'X' {
			return l.fail(errors.KindInvalidOrdinal, "Octal and hexadecimal ordinal values not allowed")
		}
	}
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	l.emit(Ordinal, start)
	return nil
}

func (l *lexer) str() error {
	start := l.pos
	l.pos++
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
			continue
		case '\n':
			return l.fail(errors.KindSyntax, "Unterminated string literal")
		case '"':
			l.pos++
			l.emit(String, start)
			return nil
		}
		l.pos++
	}
	return l.fail(errors.KindSyntax, "Unterminated string literal")
}

func (l *lexer) number() {
	start := l.pos
	if l.src[l.pos] == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') && isHex(l.peekAt(2)) {
		l.pos += 2
		for l.pos < len(l.src) && isHex(l.src[l.pos]) {
			l.pos++
		}
		l.emit(IntHex, start)
		return
	}

	isFloat := false
	if l.src[l.pos] == '0' && !isFloatTail(l.peekAt(1)) {
		l.pos++
	} else {
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		isFloat = true
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		off := 1
		if s := l.peekAt(1); s == '+' || s == '-' {
			off = 2
		}
		if isDigit(l.peekAt(off)) {
			isFloat = true
			l.pos += off
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.pos++
			}
		}
	}
	if isFloat {
		l.emit(Float, start)
		return
	}
	l.emit(IntDec, start)
}

// isFloatTail reports whether c may follow a leading zero in a float literal.
func isFloatTail(c byte) bool {
	return c == '.' || c == 'e' || c == 'E'
}

func (l *lexer) operator(c byte) error {
	start := l.pos
	two := func(typ Type) {
		l.pos += 2
		l.emit(typ, start)
	}
	one := func(typ Type) {
		l.pos++
		l.emit(typ, start)
	}
	next := l.peekAt(1)

	switch c {
	case '(':
		one(LParen)
	case ')':
		one(RParen)
	case '[':
		one(LBracket)
	case ']':
		one(RBracket)
	case '{':
		one(LBrace)
	case '}':
		one(RBrace)
	case ';':
		one(Semi)
	case ',':
		one(Comma)
	case '.':
		one(Dot)
	case '+':
		one(Plus)
	case '-':
		one(Minus)
	case '*':
		one(Times)
	case '/':
		one(Divide)
	case '%':
		one(Mod)
	case '~':
		one(Tilde)
	case '^':
		one(Caret)
	case '=':
		switch next {
		case '>':
			two(Response)
		case '=':
			two(EqEq)
		default:
			one(Equals)
		}
	case '!':
		if next == '=' {
			two(NE)
		} else {
			one(Not)
		}
	case '<':
		switch next {
		case '<':
			two(LShift)
		case '=':
			two(LE)
		default:
			one(LAngle)
		}
	case '>':
		switch next {
		case '>':
			two(RShift)
		case '=':
			two(GE)
		default:
			one(RAngle)
		}
	case '&':
		if next == '&' {
			two(LAnd)
		} else {
			one(Amp)
		}
	case '|':
		if next == '|' {
			two(LOr)
		} else {
			one(Pipe)
		}
	case '?':
		if l.dialect != Legacy {
			return l.fail(errors.KindSyntax, "Illegal character '?'")
		}
		one(Qstn)
	case ':':
		if l.dialect != Legacy {
			return l.fail(errors.KindSyntax, "Illegal character ':'")
		}
		one(Colon)
	default:
		return l.fail(errors.KindSyntax, "Illegal character '"+string(rune(c))+"'")
	}
	return nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}
