package ast

// File is the root of a parsed IDL source. The parser always produces
// exactly one Module; a file without a module declaration yields a module
// with an empty name.
type File struct {
	Name    string
	Imports []*Import
	Modules []*Module
}

type Import struct {
	Path string
	Line int
}

type Module struct {
	Name        string
	Attributes  []*Attribute
	Definitions []Definition
	Line        int
}

// Node is any element that can appear in a definition body.
type Node interface {
	node()
}

// Definition is a top-level declaration: *Struct, *Interface, *Enum or *Const.
type Definition interface {
	Node
	definition()
}

type Attribute struct {
	Value Expr
	Name  string
	Line  int
}

type Struct struct {
	Name       string
	Attributes []*Attribute
	// Body holds *Field, *Enum and *Const in source order.
	Body []Node
	Line int
}

type Field struct {
	Default Expr
	Ordinal *Ordinal
	Name    string
	Type    string
	Line    int
}

type Interface struct {
	Name       string
	Attributes []*Attribute
	// Body holds *Method, *Enum and *Const in source order.
	Body []Node
	Line int
}

// Method is an interface method. HasResponse distinguishes a method without
// a response from one with an empty response parameter list.
type Method struct {
	Ordinal     *Ordinal
	Name        string
	Params      []*Parameter
	Response    []*Parameter
	HasResponse bool
	Line        int
}

type Parameter struct {
	Ordinal *Ordinal
	Name    string
	Type    string
	Line    int
}

type Ordinal struct {
	Value uint32
	Line  int
}

type Enum struct {
	Name   string
	Values []*EnumValue
	Line   int
}

type EnumValue struct {
	Value Expr
	Name  string
	Line  int
}

type Const struct {
	Value Expr
	Name  string
	Type  string
	Line  int
}

func (*Struct) node()    {}
func (*Interface) node() {}
func (*Enum) node()      {}
func (*Const) node()     {}
func (*Field) node()     {}
func (*Method) node()    {}

func (*Struct) definition()    {}
func (*Interface) definition() {}
func (*Enum) definition()      {}
func (*Const) definition()     {}

// Fields returns the struct's fields in declaration order.
func (s *Struct) Fields() []*Field {
	var out []*Field
	for _, n := range s.Body {
		if f, ok := n.(*Field); ok {
			out = append(out, f)
		}
	}
	return out
}

// Methods returns the interface's methods in declaration order.
func (i *Interface) Methods() []*Method {
	var out []*Method
	for _, n := range i.Body {
		if m, ok := n.(*Method); ok {
			out = append(out, m)
		}
	}
	return out
}

// Lookup returns the value of the last attribute with the given name, or nil.
func Lookup(attrs []*Attribute, name string) Expr {
	var out Expr
	for _, a := range attrs {
		if a.Name == name {
			out = a.Value
		}
	}
	return out
}
