package ast

import "strings"

// Expr is a constant expression: *Literal, *Identifier, *Unary, *Binary or
// *Conditional. Expressions are kept unevaluated; the module builder folds
// them where an integer is required.
type Expr interface {
	expr()
	String() string
}

type LiteralKind int

const (
	IntLiteral LiteralKind = iota
	FloatLiteral
	StringLiteral
	BoolLiteral
	DefaultLiteral
)

// Literal keeps the source text, including a leading sign and the quotes
// of string literals.
type Literal struct {
	Text string
	Kind LiteralKind
}

type Identifier struct {
	Name string
}

type Unary struct {
	X  Expr
	Op string
}

type Binary struct {
	X  Expr
	Y  Expr
	Op string
}

// Conditional is only produced by the legacy dialect.
type Conditional struct {
	Cond Expr
	Then Expr
	Else Expr
}

func (*Literal) expr()     {}
func (*Identifier) expr()  {}
func (*Unary) expr()       {}
func (*Binary) expr()      {}
func (*Conditional) expr() {}

func (l *Literal) String() string    { return l.Text }
func (i *Identifier) String() string { return i.Name }
func (u *Unary) String() string      { return u.Op + operand(u.X) }

func (b *Binary) String() string {
	return operand(b.X) + " " + b.Op + " " + operand(b.Y)
}

func (c *Conditional) String() string {
	return strings.Join([]string{operand(c.Cond), "?", operand(c.Then), ":", operand(c.Else)}, " ")
}

// operand renders compound subexpressions in parentheses so the text
// re-parses to the same tree.
func operand(e Expr) string {
	switch e.(type) {
	case *Binary, *Conditional:
		return "(" + e.String() + ")"
	}
	return e.String()
}
