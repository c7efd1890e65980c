package module

import (
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"github.com/wippyai/mojom/idl/ast"
)

// Module is one resolved compilation unit.
type Module struct {
	// Name is the file the module was built from.
	Name       string
	Namespace  string
	Attributes []Attribute
	Imports    []*Import
	Structs    []*Struct
	Interfaces []*Interface
	Enums      []*Enum
	Consts     []*Const

	kinds map[string]Kind
}

// Import records a resolved import statement.
type Import struct {
	Filename string
	Module   *Module
}

type Attribute struct {
	Name  string
	Value string
}

// NewModule returns an empty module whose kind table holds the primitives.
func NewModule(name, namespace string) *Module {
	m := &Module{
		Name:      name,
		Namespace: namespace,
		kinds:     make(map[string]Kind, len(Primitives)),
	}
	for _, p := range Primitives {
		m.kinds[p.spec] = p
	}
	return m
}

// Kind looks up an interned kind by spec.
func (m *Module) Kind(spec string) (Kind, bool) {
	k, ok := m.kinds[spec]
	return k, ok
}

// KindSpecs returns the specs in the kind table, sorted.
func (m *Module) KindSpecs() []string {
	specs := make([]string, 0, len(m.kinds))
	for spec := range m.kinds {
		specs = append(specs, spec)
	}
	sort.Strings(specs)
	return specs
}

// intern returns the table entry for k's spec, adding k if absent.
func (m *Module) intern(k Kind) Kind {
	spec := k.Spec()
	if existing, ok := m.kinds[spec]; ok {
		return existing
	}
	m.kinds[spec] = k
	return k
}

// MethodStructs returns the parameter and response structs synthesized for
// every method, in interface and method order.
func (m *Module) MethodStructs() []*Struct {
	var out []*Struct
	for _, iface := range m.Interfaces {
		for _, method := range iface.Methods {
			out = append(out, method.Params)
			if method.ResponseParams != nil {
				out = append(out, method.ResponseParams)
			}
		}
	}
	return out
}

// AllStructs returns declared structs followed by the synthesized ones.
func (m *Module) AllStructs() []*Struct {
	out := make([]*Struct, 0, len(m.Structs))
	out = append(out, m.Structs...)
	return append(out, m.MethodStructs()...)
}

// Struct is a declared or synthesized struct. Packed, Bytes and Size are
// filled in by the packer.
type Struct struct {
	Name       string
	Module     *Module
	Attributes []Attribute
	Fields     []*Field
	Enums      []*Enum
	Consts     []*Const

	// Interface is set for the parameter structs synthesized from a method.
	Interface *Interface

	Packed *PackedStruct
	Bytes  []ByteInfo
	Size   uint32

	spec        string
	nextOrdinal uint64
}

// NewStruct returns a detached struct, for layouts built without a module.
func NewStruct(name string) *Struct {
	return &Struct{Name: name, spec: "x:" + name}
}

func (s *Struct) Spec() string { return s.spec }
func (*Struct) kind()          {}

// AddField appends a field with the next ordinal in declaration order. It
// panics when the previous field already took the largest ordinal; use
// NextOrdinal to check first.
func (s *Struct) AddField(name string, kind Kind) *Field {
	next, ok := s.NextOrdinal()
	if !ok {
		panic(fmt.Sprintf("module: struct %s has no ordinal left for field %s after %d",
			s.Name, name, uint32(math.MaxUint32)))
	}
	return s.addField(name, kind, next)
}

// NextOrdinal returns the ordinal AddField would assign. ok is false when
// the ordinals are exhausted.
func (s *Struct) NextOrdinal() (uint32, bool) {
	if s.nextOrdinal > math.MaxUint32 {
		return 0, false
	}
	return uint32(s.nextOrdinal), true
}

// AddFieldAt appends a field with an explicit ordinal. Later fields without
// one continue counting from ordinal+1.
func (s *Struct) AddFieldAt(name string, kind Kind, ordinal uint32) *Field {
	return s.addField(name, kind, ordinal)
}

func (s *Struct) addField(name string, kind Kind, ordinal uint32) *Field {
	f := &Field{Name: name, Kind: kind, Ordinal: ordinal}
	s.Fields = append(s.Fields, f)
	s.nextOrdinal = uint64(ordinal) + 1
	return f
}

// Field returns the field with the given name.
func (s *Struct) Field(name string) (*Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Field is a struct member.
type Field struct {
	Name    string
	Kind    Kind
	Ordinal uint32
	// Default is the initializer expression as written, nil when absent.
	Default ast.Expr
	// DefaultValue is Default evaluated against the field's kind.
	DefaultValue *Value
}

type Interface struct {
	Name       string
	Module     *Module
	Peer       string
	Attributes []Attribute
	Methods    []*Method
	Enums      []*Enum
	Consts     []*Const

	spec string
}

func (i *Interface) Spec() string { return i.spec }
func (*Interface) kind()          {}

// Method is one interface message. Params is always set; ResponseParams is
// nil when the method has no reply.
type Method struct {
	Name           string
	Ordinal        uint32
	Interface      *Interface
	Parameters     []*Parameter
	Response       []*Parameter
	HasResponse    bool
	Params         *Struct
	ResponseParams *Struct
}

type Parameter struct {
	Name    string
	Kind    Kind
	Ordinal uint32
}

type Enum struct {
	Name   string
	Module *Module
	Fields []*EnumField

	spec string
}

func (e *Enum) Spec() string { return e.spec }
func (*Enum) kind()          {}

// Value returns the numeric value of the named enumerator.
func (e *Enum) Value(name string) (int64, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return 0, false
}

type EnumField struct {
	Name string
	// Expr is the initializer as written, nil for an implicit value.
	Expr  ast.Expr
	Value int64
}

type Const struct {
	Name  string
	Kind  Kind
	Expr  ast.Expr
	Value Value
}

// PackedStruct is the byte layout of a struct's payload, fields ordered by
// offset then bit.
type PackedStruct struct {
	Struct *Struct
	Fields []*PackedField

	codec atomic.Value
}

// Codec returns the value attached with AttachCodec, or nil.
func (p *PackedStruct) Codec() any {
	return p.codec.Load()
}

// AttachCodec attaches v as the codec derived from this layout unless one is
// already attached, and returns the attached codec. The codec lives as long
// as the layout; repacking the struct drops it.
func (p *PackedStruct) AttachCodec(v any) any {
	if p.codec.CompareAndSwap(nil, v) {
		return v
	}
	return p.codec.Load()
}

// PackedField places one field. Bit is meaningful only for bool fields.
type PackedField struct {
	Field   *Field
	Ordinal uint32
	Offset  uint32
	Size    uint32
	Bit     uint8
}

// ByteInfo describes one payload byte.
type ByteInfo struct {
	IsPadding bool
	// Fields lists the packed fields that start at this byte.
	Fields []*PackedField
}
