package module

import (
	"strconv"
	"strings"
)

// Kind is a type descriptor. The set of implementations is closed:
// *Primitive, *Array, *Struct, *Interface, *InterfaceRequest, *Enum and
// *Nullable.
type Kind interface {
	// Spec returns the canonical spec string, the key of a module's kind table.
	Spec() string
	kind()
}

// Primitive covers the fixed-width scalars, string, and the handle family.
type Primitive struct {
	spec string
	name string
}

func (p *Primitive) Spec() string   { return p.spec }
func (p *Primitive) String() string { return p.name }
func (*Primitive) kind()            {}

var (
	Bool   = &Primitive{"b", "bool"}
	Int8   = &Primitive{"i8", "int8"}
	Int16  = &Primitive{"i16", "int16"}
	Int32  = &Primitive{"i32", "int32"}
	Int64  = &Primitive{"i64", "int64"}
	Uint8  = &Primitive{"u8", "uint8"}
	Uint16 = &Primitive{"u16", "uint16"}
	Uint32 = &Primitive{"u32", "uint32"}
	Uint64 = &Primitive{"u64", "uint64"}
	Float  = &Primitive{"f", "float"}
	Double = &Primitive{"d", "double"}
	String = &Primitive{"s", "string"}

	Handle           = &Primitive{"h", "handle"}
	DataPipeConsumer = &Primitive{"h:d:c", "handle<data_pipe_consumer>"}
	DataPipeProducer = &Primitive{"h:d:p", "handle<data_pipe_producer>"}
	MessagePipe      = &Primitive{"h:m", "handle<message_pipe>"}
	SharedBuffer     = &Primitive{"h:s", "handle<shared_buffer>"}
)

// Primitives lists every built-in kind in table-seeding order.
var Primitives = []*Primitive{
	Bool, Int8, Int16, Int32, Int64,
	Uint8, Uint16, Uint32, Uint64,
	Float, Double, String,
	Handle, DataPipeConsumer, DataPipeProducer, MessagePipe, SharedBuffer,
}

// Array is a variable-length array, or a fixed one when Length > 0.
type Array struct {
	Elem   Kind
	Length uint32
}

func NewArray(elem Kind, length uint32) *Array {
	return &Array{Elem: elem, Length: length}
}

func (a *Array) Spec() string {
	if a.Length > 0 {
		return "a" + strconv.FormatUint(uint64(a.Length), 10) + ":" + a.Elem.Spec()
	}
	return "a:" + a.Elem.Spec()
}

func (*Array) kind() {}

// InterfaceRequest is the receiving end of an interface, written Foo& in source.
type InterfaceRequest struct {
	Interface *Interface
}

func (r *InterfaceRequest) Spec() string { return "r:" + r.Interface.Spec() }
func (*InterfaceRequest) kind()          {}

// Nullable marks a reference kind as allowed to be absent on the wire.
type Nullable struct {
	Kind Kind
}

func (n *Nullable) Spec() string { return "?" + n.Kind.Spec() }
func (*Nullable) kind()          {}

// Unwrap strips a Nullable wrapper and reports whether one was present.
func Unwrap(k Kind) (Kind, bool) {
	if n, ok := k.(*Nullable); ok {
		return n.Kind, true
	}
	return k, false
}

// IsNullable reports whether k is a Nullable wrapper.
func IsNullable(k Kind) bool {
	_, ok := k.(*Nullable)
	return ok
}

// IsHandle reports whether k is carried in the handle table: a handle of any
// flavour, an interface, or an interface request.
func IsHandle(k Kind) bool {
	k, _ = Unwrap(k)
	switch k := k.(type) {
	case *Primitive:
		return strings.HasPrefix(k.spec, "h")
	case *Interface, *InterfaceRequest:
		return true
	}
	return false
}

// IsPointer reports whether k is stored out of line behind an 8-byte pointer.
func IsPointer(k Kind) bool {
	k, _ = Unwrap(k)
	switch k := k.(type) {
	case *Primitive:
		return k == String
	case *Array, *Struct:
		return true
	}
	return false
}

// CanBeNullable reports whether k accepts a Nullable wrapper.
func CanBeNullable(k Kind) bool {
	return IsPointer(k) || IsHandle(k)
}

// IsInteger reports whether k is one of the eight integer primitives.
func IsInteger(k Kind) bool {
	switch k {
	case Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64:
		return true
	}
	return false
}

// IsFloat reports whether k is float or double.
func IsFloat(k Kind) bool {
	return k == Float || k == Double
}
