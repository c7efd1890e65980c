package parser

import (
	"strings"

	"github.com/wippyai/mojom/errors"
	"github.com/wippyai/mojom/idl/ast"
	"github.com/wippyai/mojom/idl/internal/token"
)

const (
	maxOrdinalValue = 0xffffffff
	maxArraySize    = 0xffffffff
)

type Parser struct {
	file   string
	lines  []string
	tokens []token.Token
	pos    int
}

func New(filename, source string, tokens []token.Token) *Parser {
	return &Parser{
		file:   filename,
		lines:  strings.Split(source, "\n"),
		tokens: tokens,
	}
}

func (p *Parser) Parse() (*ast.File, error) {
	return p.parseFile()
}

func (p *Parser) peek() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *Parser) peekIs(typ token.Type) bool {
	t := p.peek()
	return t != nil && t.Type == typ
}

func (p *Parser) next() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	t := &p.tokens[p.pos]
	p.pos++
	return t
}

func (p *Parser) expect(typ token.Type) (*token.Token, error) {
	t := p.next()
	if t == nil {
		return nil, errors.UnexpectedEOF(p.file)
	}
	if t.Type != typ {
		return nil, p.unexpected(t)
	}
	return t, nil
}

// unexpected reports t as the offending token; a nil token means the input
// ended early.
func (p *Parser) unexpected(t *token.Token) error {
	if t == nil {
		return errors.UnexpectedEOF(p.file)
	}
	return p.fail(errors.KindUnexpectedToken, t.Line, "Unexpected '%s':", t.Value)
}

func (p *Parser) fail(kind errors.Kind, line int, format string, args ...any) error {
	return errors.New(errors.PhaseParse, kind).
		File(p.file).
		Line(line).
		Snippet(p.snippet(line)).
		Detail(format, args...).
		Build()
}

func (p *Parser) snippet(line int) string {
	if line < 1 || line > len(p.lines) {
		return ""
	}
	return strings.TrimRight(p.lines[line-1], "\r")
}

// ParseExpr parses the token stream as a single constant expression.
func (p *Parser) ParseExpr() (ast.Expr, error) {
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if t := p.next(); t != nil {
		return nil, p.unexpected(t)
	}
	return x, nil
}
