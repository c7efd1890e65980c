package parser

import (
	"github.com/wippyai/mojom/idl/ast"
	"github.com/wippyai/mojom/idl/internal/token"
)

// Binary operator precedence, C ordering. Higher binds tighter.
var binaryPrec = map[token.Type]int{
	token.LOr:    1,
	token.LAnd:   2,
	token.Pipe:   3,
	token.Caret:  4,
	token.Amp:    5,
	token.EqEq:   6,
	token.NE:     6,
	token.LAngle: 7,
	token.RAngle: 7,
	token.LE:     7,
	token.GE:     7,
	token.LShift: 8,
	token.RShift: 8,
	token.Plus:   9,
	token.Minus:  9,
	token.Times:  10,
	token.Divide: 10,
	token.Mod:    10,
}

// parseExpr parses a constant expression. The conditional form only occurs
// when the lexer ran in the legacy dialect; the modern lexer never emits '?'.
func (p *Parser) parseExpr() (ast.Expr, error) {
	cond, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}
	if !p.peekIs(token.Qstn) {
		return cond, nil
	}
	p.next()
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Colon); err != nil {
		return nil, err
	}
	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Conditional{Cond: cond, Then: then, Else: els}, nil
}

func (p *Parser) parseBinary(minPrec int) (ast.Expr, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t == nil {
			return x, nil
		}
		prec, ok := binaryPrec[t.Type]
		if !ok || prec < minPrec {
			return x, nil
		}
		p.next()
		y, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		x = &ast.Binary{Op: t.Value, X: x, Y: y}
	}
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	t := p.peek()
	if t == nil {
		return nil, p.unexpected(nil)
	}
	switch t.Type {
	case token.Plus, token.Minus:
		// A sign directly on a numeric literal stays part of the literal.
		if p.pos+1 < len(p.tokens) {
			lit := p.tokens[p.pos+1]
			switch lit.Type {
			case token.IntDec, token.IntHex:
				p.pos += 2
				return &ast.Literal{Text: t.Value + lit.Value, Kind: ast.IntLiteral}, nil
			case token.Float:
				p.pos += 2
				return &ast.Literal{Text: t.Value + lit.Value, Kind: ast.FloatLiteral}, nil
			}
		}
		fallthrough
	case token.Tilde, token.Not:
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: t.Value, X: x}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	t := p.peek()
	if t == nil {
		return nil, p.unexpected(nil)
	}
	switch t.Type {
	case token.IntDec, token.IntHex:
		p.next()
		return &ast.Literal{Text: t.Value, Kind: ast.IntLiteral}, nil
	case token.Float:
		p.next()
		return &ast.Literal{Text: t.Value, Kind: ast.FloatLiteral}, nil
	case token.String:
		p.next()
		return &ast.Literal{Text: t.Value, Kind: ast.StringLiteral}, nil
	case token.True, token.False:
		p.next()
		return &ast.Literal{Text: t.Value, Kind: ast.BoolLiteral}, nil
	case token.Default:
		p.next()
		return &ast.Literal{Text: t.Value, Kind: ast.DefaultLiteral}, nil
	case token.Name:
		name, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		return &ast.Identifier{Name: name}, nil
	case token.LParen:
		p.next()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return x, nil
	}
	return nil, p.unexpected(t)
}
