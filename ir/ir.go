package ir

// Module is the normalized record for one mojom file.
type Module struct {
	// Name is the file name the module was translated from.
	Name       string      `yaml:"name"`
	Namespace  string      `yaml:"namespace"`
	Attributes []Attribute `yaml:"attributes,omitempty"`
	Imports    []Import    `yaml:"imports,omitempty"`
	Structs    []Struct    `yaml:"structs,omitempty"`
	Interfaces []Interface `yaml:"interfaces,omitempty"`
	Enums      []Enum      `yaml:"enums,omitempty"`
	Consts     []Const     `yaml:"consts,omitempty"`
}

type Import struct {
	Filename string `yaml:"filename"`
}

type Attribute struct {
	Name string `yaml:"name"`
	// Value is the expression text, empty for a bare attribute.
	Value string `yaml:"value,omitempty"`
}

type Struct struct {
	Name       string      `yaml:"name"`
	Attributes []Attribute `yaml:"attributes,omitempty"`
	Fields     []Field     `yaml:"fields"`
	Enums      []Enum      `yaml:"enums,omitempty"`
	Consts     []Const     `yaml:"consts,omitempty"`
}

// Field is a struct member. Kind is a spec string whose references are still
// unresolved names ("x:Foo", "x:other.ns.Foo").
type Field struct {
	Name    string  `yaml:"name"`
	Kind    string  `yaml:"kind"`
	Ordinal *uint32 `yaml:"ordinal,omitempty"`
	Default string  `yaml:"default,omitempty"`
}

type Interface struct {
	Name       string      `yaml:"name"`
	Peer       string      `yaml:"peer,omitempty"`
	Attributes []Attribute `yaml:"attributes,omitempty"`
	Methods    []Method    `yaml:"methods"`
	Enums      []Enum      `yaml:"enums,omitempty"`
	Consts     []Const     `yaml:"consts,omitempty"`
}

// Method describes one interface message. HasResponse separates a method
// without a reply from one whose reply carries no parameters.
type Method struct {
	Name               string      `yaml:"name"`
	Ordinal            *uint32     `yaml:"ordinal,omitempty"`
	Parameters         []Parameter `yaml:"parameters"`
	HasResponse        bool        `yaml:"has_response,omitempty"`
	ResponseParameters []Parameter `yaml:"response_parameters,omitempty"`
}

type Parameter struct {
	Name    string  `yaml:"name"`
	Kind    string  `yaml:"kind"`
	Ordinal *uint32 `yaml:"ordinal,omitempty"`
}

type Enum struct {
	Name   string      `yaml:"name"`
	Fields []EnumField `yaml:"fields"`
}

type EnumField struct {
	Name string `yaml:"name"`
	// Value is the initializer expression text; empty means previous + 1.
	Value string `yaml:"value,omitempty"`
}

type Const struct {
	Name  string `yaml:"name"`
	Kind  string `yaml:"kind"`
	Value string `yaml:"value"`
}

// Ordinal returns a pointer to v, for building records by hand.
func Ordinal(v uint32) *uint32 {
	return &v
}
