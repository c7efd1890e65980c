package parser

import (
	"strconv"

	"github.com/wippyai/mojom/idl/ast"
	"github.com/wippyai/mojom/idl/internal/token"
)

// parseFile handles
//
//	root : import_list [attrs] MODULE identifier LBRACE definition_list RBRACE
//	     | import_list definition_list
func (p *Parser) parseFile() (*ast.File, error) {
	f := &ast.File{Name: p.file}

	for p.peekIs(token.Import) {
		imp, err := p.parseImport()
		if err != nil {
			return nil, err
		}
		f.Imports = append(f.Imports, imp)
	}

	var attrs []*ast.Attribute
	if p.peekIs(token.LBracket) {
		var err error
		if attrs, err = p.parseAttributeSection(); err != nil {
			return nil, err
		}
	}

	if t := p.peek(); t != nil && t.Type == token.Module {
		mod, err := p.parseModule(attrs)
		if err != nil {
			return nil, err
		}
		f.Modules = append(f.Modules, mod)
		if t := p.next(); t != nil {
			return nil, p.unexpected(t)
		}
		return f, nil
	}

	mod := &ast.Module{Line: 1}
	defs, err := p.parseDefinitions(attrs, false)
	if err != nil {
		return nil, err
	}
	mod.Definitions = defs
	f.Modules = append(f.Modules, mod)
	return f, nil
}

func (p *Parser) parseImport() (*ast.Import, error) {
	kw := p.next()
	t, err := p.expect(token.String)
	if err != nil {
		return nil, err
	}
	path, err := strconv.Unquote(t.Value)
	if err != nil {
		return nil, p.unexpected(t)
	}
	return &ast.Import{Path: path, Line: kw.Line}, nil
}

func (p *Parser) parseModule(attrs []*ast.Attribute) (*ast.Module, error) {
	kw := p.next()
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	defs, err := p.parseDefinitions(nil, true)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	return &ast.Module{Name: name, Attributes: attrs, Definitions: defs, Line: kw.Line}, nil
}

// parseDefinitions reads definitions until end of input, or until a closing
// brace when nested inside a module. attrs, if set, belong to the first
// definition.
func (p *Parser) parseDefinitions(attrs []*ast.Attribute, nested bool) ([]ast.Definition, error) {
	var defs []ast.Definition
	for {
		t := p.peek()
		if t == nil {
			if nested {
				return nil, p.unexpected(nil)
			}
			if attrs != nil {
				return nil, p.unexpected(nil)
			}
			return defs, nil
		}
		if nested && t.Type == token.RBrace && attrs == nil {
			return defs, nil
		}

		var (
			def ast.Definition
			err error
		)
		switch t.Type {
		case token.LBracket:
			if attrs != nil {
				return nil, p.unexpected(t)
			}
			if attrs, err = p.parseAttributeSection(); err != nil {
				return nil, err
			}
			continue
		case token.Struct:
			def, err = p.parseStruct(attrs)
		case token.Interface:
			def, err = p.parseInterface(attrs)
		case token.Enum:
			def, err = p.parseEnum()
		case token.Const:
			def, err = p.parseConst()
		default:
			return nil, p.unexpected(t)
		}
		if err != nil {
			return nil, err
		}
		attrs = nil
		defs = append(defs, def)
	}
}

// parseAttributeSection handles LBRACKET [attribute {COMMA attribute}] RBRACKET.
// The result is non-nil even for an empty section.
func (p *Parser) parseAttributeSection() ([]*ast.Attribute, error) {
	if _, err := p.expect(token.LBracket); err != nil {
		return nil, err
	}
	attrs := []*ast.Attribute{}
	if p.peekIs(token.RBracket) {
		p.next()
		return attrs, nil
	}
	for {
		name, err := p.expect(token.Name)
		if err != nil {
			return nil, err
		}
		attr := &ast.Attribute{Name: name.Value, Line: name.Line}
		if p.peekIs(token.Equals) {
			p.next()
			if attr.Value, err = p.parseExpr(); err != nil {
				return nil, err
			}
		}
		attrs = append(attrs, attr)

		t := p.next()
		if t == nil {
			return nil, p.unexpected(nil)
		}
		switch t.Type {
		case token.Comma:
			continue
		case token.RBracket:
			return attrs, nil
		default:
			return nil, p.unexpected(t)
		}
	}
}

// parseIdentifier handles identifier : NAME {DOT NAME}.
func (p *Parser) parseIdentifier() (string, error) {
	t, err := p.expect(token.Name)
	if err != nil {
		return "", err
	}
	name := t.Value
	for p.peekIs(token.Dot) {
		p.next()
		part, err := p.expect(token.Name)
		if err != nil {
			return "", err
		}
		name += "." + part.Value
	}
	return name, nil
}
