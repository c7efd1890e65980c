package parser

import (
	"strconv"

	"github.com/wippyai/mojom/errors"
	"github.com/wippyai/mojom/idl/ast"
	"github.com/wippyai/mojom/idl/internal/token"
)

var handleKinds = map[string]bool{
	"data_pipe_consumer": true,
	"data_pipe_producer": true,
	"message_pipe":       true,
	"shared_buffer":      true,
}

// parseStruct handles STRUCT NAME LBRACE struct_body RBRACE SEMI.
func (p *Parser) parseStruct(attrs []*ast.Attribute) (*ast.Struct, error) {
	kw := p.next()
	name, err := p.expect(token.Name)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	s := &ast.Struct{Name: name.Value, Attributes: attrs, Line: kw.Line}
	for {
		t := p.peek()
		if t == nil {
			return nil, p.unexpected(nil)
		}
		if t.Type == token.RBrace {
			break
		}
		var n ast.Node
		switch t.Type {
		case token.Const:
			n, err = p.parseConst()
		case token.Enum:
			n, err = p.parseEnum()
		default:
			n, err = p.parseField()
		}
		if err != nil {
			return nil, err
		}
		s.Body = append(s.Body, n)
	}
	p.next()
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	return s, nil
}

// parseField handles typename NAME [ordinal] [EQUALS constant] SEMI.
func (p *Parser) parseField() (*ast.Field, error) {
	typ, err := p.parseTypename()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.Name)
	if err != nil {
		return nil, err
	}
	f := &ast.Field{Name: name.Value, Type: typ, Line: name.Line}
	if f.Ordinal, err = p.parseOrdinal(); err != nil {
		return nil, err
	}
	if p.peekIs(token.Equals) {
		p.next()
		if f.Default, err = p.parseExpr(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	return f, nil
}

// parseInterface handles INTERFACE NAME LBRACE interface_body RBRACE SEMI.
func (p *Parser) parseInterface(attrs []*ast.Attribute) (*ast.Interface, error) {
	kw := p.next()
	name, err := p.expect(token.Name)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	iface := &ast.Interface{Name: name.Value, Attributes: attrs, Line: kw.Line}
	for {
		t := p.peek()
		if t == nil {
			return nil, p.unexpected(nil)
		}
		if t.Type == token.RBrace {
			break
		}
		var n ast.Node
		switch t.Type {
		case token.Const:
			n, err = p.parseConst()
		case token.Enum:
			n, err = p.parseEnum()
		case token.Name:
			n, err = p.parseMethod()
		default:
			return nil, p.unexpected(t)
		}
		if err != nil {
			return nil, err
		}
		iface.Body = append(iface.Body, n)
	}
	p.next()
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	return iface, nil
}

// parseMethod handles NAME [ordinal] LPAREN params RPAREN [RESPONSE LPAREN params RPAREN] SEMI.
func (p *Parser) parseMethod() (*ast.Method, error) {
	name := p.next()
	m := &ast.Method{Name: name.Value, Line: name.Line}
	var err error
	if m.Ordinal, err = p.parseOrdinal(); err != nil {
		return nil, err
	}
	if m.Params, err = p.parseParameterList(); err != nil {
		return nil, err
	}
	if p.peekIs(token.Response) {
		p.next()
		m.HasResponse = true
		if m.Response, err = p.parseParameterList(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	return m, nil
}

func (p *Parser) parseParameterList() ([]*ast.Parameter, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	params := []*ast.Parameter{}
	if p.peekIs(token.RParen) {
		p.next()
		return params, nil
	}
	for {
		typ, err := p.parseTypename()
		if err != nil {
			return nil, err
		}
		name, err := p.expect(token.Name)
		if err != nil {
			return nil, err
		}
		param := &ast.Parameter{Name: name.Value, Type: typ, Line: name.Line}
		if param.Ordinal, err = p.parseOrdinal(); err != nil {
			return nil, err
		}
		params = append(params, param)

		t := p.next()
		if t == nil {
			return nil, p.unexpected(nil)
		}
		switch t.Type {
		case token.Comma:
			continue
		case token.RParen:
			return params, nil
		default:
			return nil, p.unexpected(t)
		}
	}
}

// parseEnum handles ENUM NAME LBRACE enum_value {COMMA enum_value} [COMMA] RBRACE SEMI.
func (p *Parser) parseEnum() (*ast.Enum, error) {
	kw := p.next()
	name, err := p.expect(token.Name)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	e := &ast.Enum{Name: name.Value, Line: kw.Line}
	for {
		vname, err := p.expect(token.Name)
		if err != nil {
			return nil, err
		}
		v := &ast.EnumValue{Name: vname.Value, Line: vname.Line}
		if p.peekIs(token.Equals) {
			p.next()
			if v.Value, err = p.parseExpr(); err != nil {
				return nil, err
			}
		}
		e.Values = append(e.Values, v)

		t := p.next()
		if t == nil {
			return nil, p.unexpected(nil)
		}
		if t.Type == token.RBrace {
			break
		}
		if t.Type != token.Comma {
			return nil, p.unexpected(t)
		}
		if p.peekIs(token.RBrace) {
			p.next()
			break
		}
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	return e, nil
}

// parseConst handles CONST typename NAME EQUALS constant SEMI.
func (p *Parser) parseConst() (*ast.Const, error) {
	kw := p.next()
	typ, err := p.parseTypename()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.Name)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Equals); err != nil {
		return nil, err
	}
	c := &ast.Const{Name: name.Value, Type: typ, Line: kw.Line}
	if c.Value, err = p.parseExpr(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	return c, nil
}

// parseTypename handles
//
//	typename : identifier [AMP] | HANDLE [LANGLE NAME RANGLE]
//	         | typename LBRACKET [INT_CONST_DEC] RBRACKET
func (p *Parser) parseTypename() (string, error) {
	t := p.peek()
	if t == nil {
		return "", p.unexpected(nil)
	}

	var typ string
	switch t.Type {
	case token.Handle:
		p.next()
		typ = "handle"
		if p.peekIs(token.LAngle) {
			p.next()
			kind, err := p.expect(token.Name)
			if err != nil {
				return "", err
			}
			if !handleKinds[kind.Value] {
				return "", p.fail(errors.KindInvalidHandle, t.Line, "Invalid handle type '%s':", kind.Value)
			}
			if _, err := p.expect(token.RAngle); err != nil {
				return "", err
			}
			typ = "handle<" + kind.Value + ">"
		}
	case token.Name:
		name, err := p.parseIdentifier()
		if err != nil {
			return "", err
		}
		typ = name
		if p.peekIs(token.Amp) {
			p.next()
			typ += "&"
		}
	default:
		return "", p.unexpected(t)
	}

	for p.peekIs(token.LBracket) {
		p.next()
		t := p.next()
		if t == nil {
			return "", p.unexpected(nil)
		}
		switch t.Type {
		case token.RBracket:
			typ += "[]"
		case token.IntDec:
			size, err := strconv.ParseUint(t.Value, 10, 64)
			if err != nil || size == 0 || size > maxArraySize {
				return "", p.fail(errors.KindInvalidArraySize, t.Line, "Fixed array size %s invalid", t.Value)
			}
			if _, err := p.expect(token.RBracket); err != nil {
				return "", err
			}
			typ += "[" + t.Value + "]"
		default:
			return "", p.unexpected(t)
		}
	}
	return typ, nil
}

// parseOrdinal reads an optional @N. A missing ordinal returns nil.
func (p *Parser) parseOrdinal() (*ast.Ordinal, error) {
	if !p.peekIs(token.Ordinal) {
		return nil, nil
	}
	t := p.next()
	digits := t.Value[1:]
	v, err := strconv.ParseUint(digits, 10, 64)
	if err != nil || v > maxOrdinalValue {
		return nil, p.fail(errors.KindInvalidOrdinal, t.Line, "Ordinal value %s too large:", digits)
	}
	return &ast.Ordinal{Value: uint32(v), Line: t.Line}, nil
}
