package pack

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/wippyai/mojom/internal/wire"
	"github.com/wippyai/mojom/module"
)

// FieldSize returns the number of bytes a field of kind k occupies in a
// struct payload. Booleans report 1 even though they share bytes.
func FieldSize(k module.Kind) uint32 {
	k, _ = module.Unwrap(k)
	switch k := k.(type) {
	case *module.Primitive:
		switch k {
		case module.Bool, module.Int8, module.Uint8:
			return 1
		case module.Int16, module.Uint16:
			return 2
		case module.Int32, module.Uint32, module.Float:
			return 4
		case module.Int64, module.Uint64, module.Double:
			return 8
		case module.String:
			return wire.PointerSize
		}
		return wire.HandleSize
	case *module.Enum, *module.Interface, *module.InterfaceRequest:
		return 4
	case *module.Array, *module.Struct:
		return wire.PointerSize
	}
	panic(fmt.Sprintf("pack: unexpected kind %T", k))
}

func isBool(pf *module.PackedField) bool {
	return pf.Field.Kind == module.Bool
}

// nextSlot returns where f goes when placed directly after last.
func nextSlot(f, last *module.PackedField) (uint32, uint8) {
	if isBool(f) && isBool(last) && last.Bit < 7 {
		return last.Offset, last.Bit + 1
	}
	return wire.AlignTo(last.Offset+last.Size, f.Size), 0
}

// Struct computes the payload layout of s. Fields are taken in ordinal
// order; each one fills the first hole between placed fields that can hold
// it at its natural alignment, and is appended otherwise.
func Struct(s *module.Struct) *module.PackedStruct {
	ps := &module.PackedStruct{Struct: s}
	if len(s.Fields) == 0 {
		return ps
	}

	fields := make([]*module.PackedField, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = &module.PackedField{Field: f, Ordinal: f.Ordinal, Size: FieldSize(f.Kind)}
	}
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Ordinal < fields[j].Ordinal
	})

	ps.Fields = append(ps.Fields, fields[0])
	for _, f := range fields[1:] {
		place(ps, f)
	}

	Logger().Debug("packed struct",
		zap.String("struct", s.Name),
		zap.Int("fields", len(ps.Fields)),
		zap.Uint32("payload", PayloadSize(ps)))
	return ps
}

func place(ps *module.PackedStruct, f *module.PackedField) {
	last := ps.Fields[0]
	for i := 1; i < len(ps.Fields); i++ {
		next := ps.Fields[i]
		offset, bit := nextSlot(f, last)
		if offset+f.Size <= next.Offset {
			f.Offset, f.Bit = offset, bit
			ps.Fields = append(ps.Fields, nil)
			copy(ps.Fields[i+1:], ps.Fields[i:])
			ps.Fields[i] = f
			return
		}
		last = next
	}
	f.Offset, f.Bit = nextSlot(f, last)
	ps.Fields = append(ps.Fields, f)
}

// PayloadSize returns the payload length of ps padded to 8 bytes, header
// excluded.
func PayloadSize(ps *module.PackedStruct) uint32 {
	if len(ps.Fields) == 0 {
		return 0
	}
	last := ps.Fields[len(ps.Fields)-1]
	return wire.AlignTo(last.Offset+last.Size, wire.Alignment)
}

// StructSize returns the encoded size of ps including its header.
func StructSize(ps *module.PackedStruct) uint32 {
	return wire.HeaderSize + PayloadSize(ps)
}

// ByteLayout describes every payload byte of ps: the fields starting there,
// or padding.
func ByteLayout(ps *module.PackedStruct) []module.ByteInfo {
	bytes := make([]module.ByteInfo, PayloadSize(ps))
	limit := uint32(0)
	for _, f := range ps.Fields {
		for i := limit; i < f.Offset; i++ {
			bytes[i].IsPadding = true
		}
		bytes[f.Offset].Fields = append(bytes[f.Offset].Fields, f)
		limit = f.Offset + f.Size
	}
	for i := limit; i < uint32(len(bytes)); i++ {
		bytes[i].IsPadding = true
	}
	return bytes
}

// Module packs every struct of m, the synthesized method structs included,
// and of every module m imports. Structs that already carry a layout are
// left alone.
func Module(m *module.Module) {
	packModule(m, make(map[*module.Module]bool))
}

func packModule(m *module.Module, seen map[*module.Module]bool) {
	if seen[m] {
		return
	}
	seen[m] = true
	for _, imp := range m.Imports {
		if imp.Module != nil {
			packModule(imp.Module, seen)
		}
	}
	for _, s := range m.AllStructs() {
		if s.Packed != nil {
			continue
		}
		Annotate(s)
	}
	Logger().Debug("packed module", zap.String("module", m.Name))
}

// Annotate packs s and stores the layout, byte view and size on it.
func Annotate(s *module.Struct) {
	s.Packed = Struct(s)
	s.Bytes = ByteLayout(s.Packed)
	s.Size = StructSize(s.Packed)
}
