package ir

import (
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/mojom/errors"
	"github.com/wippyai/mojom/idl/ast"
)

var kindSpecs = map[string]string{
	"bool":                       "b",
	"int8":                       "i8",
	"int16":                      "i16",
	"int32":                      "i32",
	"int64":                      "i64",
	"uint8":                      "u8",
	"uint16":                     "u16",
	"uint32":                     "u32",
	"uint64":                     "u64",
	"float":                      "f",
	"double":                     "d",
	"string":                     "s",
	"handle":                     "h",
	"handle<data_pipe_consumer>": "h:d:c",
	"handle<data_pipe_producer>": "h:d:p",
	"handle<message_pipe>":       "h:m",
	"handle<shared_buffer>":      "h:s",
}

// MapKind converts a source type name to its spec string. User-defined names
// map to "x:<name>" and are resolved later against the module graph.
//
//	int32[]     -> a:i32
//	int32[4]    -> a4:i32
//	Foo&        -> r:x:Foo
func MapKind(typename string) string {
	if strings.HasSuffix(typename, "]") {
		open := strings.LastIndexByte(typename, '[')
		if open > 0 {
			elem := MapKind(typename[:open])
			return "a" + typename[open+1:len(typename)-1] + ":" + elem
		}
	}
	if spec, ok := kindSpecs[typename]; ok {
		return spec
	}
	if strings.HasSuffix(typename, "&") {
		return "r:" + MapKind(strings.TrimSuffix(typename, "&"))
	}
	return "x:" + typename
}

// Translate converts a syntax tree to its IR record. name is recorded as the
// module's file name.
func Translate(f *ast.File, name string) (*Module, error) {
	if len(f.Modules) != 1 {
		return nil, errors.New(errors.PhaseTranslate, errors.KindInvalidInput).
			File(name).
			Detail("A mojom file must contain exactly 1 module.").
			Build()
	}
	src := f.Modules[0]

	m := &Module{
		Name:       name,
		Namespace:  src.Name,
		Attributes: mapAttributes(src.Attributes),
	}
	for _, imp := range f.Imports {
		m.Imports = append(m.Imports, Import{Filename: imp.Path})
	}
	for _, def := range src.Definitions {
		switch d := def.(type) {
		case *ast.Struct:
			m.Structs = append(m.Structs, mapStruct(d))
		case *ast.Interface:
			m.Interfaces = append(m.Interfaces, mapInterface(d))
		case *ast.Enum:
			m.Enums = append(m.Enums, mapEnum(d))
		case *ast.Const:
			m.Consts = append(m.Consts, mapConst(d))
		}
	}

	Logger().Debug("translated",
		zap.String("file", name),
		zap.String("namespace", m.Namespace),
		zap.Int("structs", len(m.Structs)),
		zap.Int("interfaces", len(m.Interfaces)),
		zap.Int("enums", len(m.Enums)))
	return m, nil
}

func mapStruct(s *ast.Struct) Struct {
	out := Struct{
		Name:       s.Name,
		Attributes: mapAttributes(s.Attributes),
		Fields:     []Field{},
	}
	for _, n := range s.Body {
		switch n := n.(type) {
		case *ast.Field:
			out.Fields = append(out.Fields, Field{
				Name:    n.Name,
				Kind:    MapKind(n.Type),
				Ordinal: mapOrdinal(n.Ordinal),
				Default: exprText(n.Default),
			})
		case *ast.Enum:
			out.Enums = append(out.Enums, mapEnum(n))
		case *ast.Const:
			out.Consts = append(out.Consts, mapConst(n))
		}
	}
	return out
}

func mapInterface(iface *ast.Interface) Interface {
	out := Interface{
		Name:       iface.Name,
		Peer:       exprText(ast.Lookup(iface.Attributes, "Peer")),
		Attributes: mapAttributes(iface.Attributes),
		Methods:    []Method{},
	}
	for _, n := range iface.Body {
		switch n := n.(type) {
		case *ast.Method:
			method := Method{
				Name:        n.Name,
				Ordinal:     mapOrdinal(n.Ordinal),
				Parameters:  mapParameters(n.Params),
				HasResponse: n.HasResponse,
			}
			if n.HasResponse {
				method.ResponseParameters = mapParameters(n.Response)
			}
			out.Methods = append(out.Methods, method)
		case *ast.Enum:
			out.Enums = append(out.Enums, mapEnum(n))
		case *ast.Const:
			out.Consts = append(out.Consts, mapConst(n))
		}
	}
	return out
}

func mapParameters(params []*ast.Parameter) []Parameter {
	out := make([]Parameter, 0, len(params))
	for _, p := range params {
		out = append(out, Parameter{
			Name:    p.Name,
			Kind:    MapKind(p.Type),
			Ordinal: mapOrdinal(p.Ordinal),
		})
	}
	return out
}

func mapEnum(e *ast.Enum) Enum {
	out := Enum{Name: e.Name, Fields: make([]EnumField, 0, len(e.Values))}
	for _, v := range e.Values {
		out.Fields = append(out.Fields, EnumField{Name: v.Name, Value: exprText(v.Value)})
	}
	return out
}

func mapConst(c *ast.Const) Const {
	return Const{Name: c.Name, Kind: MapKind(c.Type), Value: exprText(c.Value)}
}

func mapAttributes(attrs []*ast.Attribute) []Attribute {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]Attribute, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, Attribute{Name: a.Name, Value: exprText(a.Value)})
	}
	return out
}

func mapOrdinal(o *ast.Ordinal) *uint32 {
	if o == nil {
		return nil
	}
	return Ordinal(o.Value)
}

func exprText(e ast.Expr) string {
	if e == nil {
		return ""
	}
	return e.String()
}
