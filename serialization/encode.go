package serialization

import (
	"encoding/binary"
	"math"
	"reflect"

	"github.com/wippyai/mojom/errors"
	"github.com/wippyai/mojom/internal/wire"
	"github.com/wippyai/mojom/module"
	"github.com/wippyai/mojom/pack"
)

type encoder struct {
	buf          []byte
	handles      []Handle
	handleOffset int
}

// grow appends n zero bytes and returns where they start.
func (e *encoder) grow(n uint32, path []string) (int, error) {
	if uint64(len(e.buf))+uint64(n) > wire.MaxAlloc {
		return 0, errors.New(errors.PhaseEncode, errors.KindOverflow).
			Path(path...).
			Detail("message exceeds %d bytes", wire.MaxAlloc).
			Build()
	}
	start := len(e.buf)
	e.buf = append(e.buf, make([]byte, n)...)
	return start, nil
}

func (e *encoder) encodeStruct(s *Serialization, inst *Instance, path []string) error {
	start, err := e.grow(s.Size, path)
	if err != nil {
		return err
	}
	wire.PutHeader(e.buf[start:], s.Size, s.Version)

	l := s.layout(s.Version)
	for i, g := range l.groups {
		pos := start + wire.HeaderSize + int(l.offsets[i])
		if g.IsBool() {
			var bits byte
			for _, pf := range g.Fields {
				if v, _ := inst.values[s.index[pf.Field]].(bool); v {
					bits |= 1 << pf.Bit
				}
			}
			e.buf[pos] = bits
			continue
		}
		f := g.Fields[0].Field
		if err := e.encodeField(f.Kind, inst.values[s.index[f]], pos, fieldPath(path, f.Name)); err != nil {
			return err
		}
	}
	return nil
}

// encodeField writes v into the slot at pos. Pointer kinds append their
// data to the end of the buffer.
func (e *encoder) encodeField(k module.Kind, v any, pos int, path []string) error {
	base, nullable := module.Unwrap(k)
	if p, ok := scalar(base); ok {
		if !putScalar(e.buf[pos:], p, v) {
			return errors.TypeMismatch(errors.PhaseEncode, path, wire.TypeName(v), k.Spec())
		}
		return nil
	}

	if module.IsHandle(base) {
		h, ok := v.(Handle)
		if v != nil && !ok {
			return errors.TypeMismatch(errors.PhaseEncode, path, wire.TypeName(v), k.Spec())
		}
		if !h.IsValid() {
			if !nullable {
				return errors.NilPointer(errors.PhaseEncode, path, k.Spec())
			}
			wire.PutInt32(e.buf[pos:], wire.NoHandle)
			return nil
		}
		idx := e.handleOffset + len(e.handles)
		if idx < 0 || idx > math.MaxInt32 {
			return errors.Overflow(errors.PhaseEncode, path, idx, k.Spec())
		}
		wire.PutInt32(e.buf[pos:], int32(idx))
		e.handles = append(e.handles, h)
		return nil
	}

	if v == nil {
		if !nullable {
			return errors.NilPointer(errors.PhaseEncode, path, k.Spec())
		}
		return nil
	}
	binary.LittleEndian.PutUint64(e.buf[pos:], uint64(len(e.buf)-pos))

	switch base := base.(type) {
	case *module.Primitive:
		s, ok := v.(string)
		if !ok {
			return errors.TypeMismatch(errors.PhaseEncode, path, wire.TypeName(v), k.Spec())
		}
		return e.encodeNative([]byte(s), uint32(len(s)), path)
	case *module.Struct:
		inst, ok := v.(*Instance)
		if !ok || inst.st != base {
			return errors.TypeMismatch(errors.PhaseEncode, path, wire.TypeName(v), k.Spec())
		}
		ser, err := New(base)
		if err != nil {
			return err
		}
		return e.encodeStruct(ser, inst, path)
	case *module.Array:
		return e.encodeArray(base, v, path)
	}
	return errors.Unsupported(errors.PhaseEncode, "kind "+k.Spec())
}

// encodeNative appends an array header and raw element bytes, padded to 8.
func (e *encoder) encodeNative(raw []byte, count uint32, path []string) error {
	body, ok := wire.SafeAddU32(wire.HeaderSize, uint32(len(raw)))
	if !ok || len(raw) > wire.MaxAlloc {
		return errors.Overflow(errors.PhaseEncode, path, len(raw), "array")
	}
	start, err := e.grow(wire.AlignTo(body, wire.Alignment), path)
	if err != nil {
		return err
	}
	wire.PutHeader(e.buf[start:], body, count)
	copy(e.buf[start+wire.HeaderSize:], raw)
	return nil
}

// encodeArray appends a canonical array value: bool arrays as a bit field,
// scalar arrays as raw little-endian elements, and everything else as a
// table of slots.
func (e *encoder) encodeArray(a *module.Array, v any, path []string) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return errors.TypeMismatch(errors.PhaseEncode, path, wire.TypeName(v), a.Spec())
	}
	n := rv.Len()
	if n > wire.MaxListLength {
		return errors.Overflow(errors.PhaseEncode, path, n, a.Spec())
	}
	if a.Length != 0 && uint32(n) != a.Length {
		return errors.New(errors.PhaseEncode, errors.KindInvalidData).
			Path(path...).
			Spec(a.Spec()).
			Detail("Incorrect array size").
			Build()
	}

	if p, ok := scalar(a.Elem); ok {
		if p == module.Bool {
			bools, ok := v.([]bool)
			if !ok {
				return errors.TypeMismatch(errors.PhaseEncode, path, wire.TypeName(v), a.Spec())
			}
			bits := make([]byte, (n+7)/8)
			for i, b := range bools {
				if b {
					bits[i/8] |= 1 << (i % 8)
				}
			}
			return e.encodeNative(bits, uint32(n), path)
		}
		if raw, ok := v.([]uint8); ok && p == module.Uint8 {
			return e.encodeNative(raw, uint32(n), path)
		}
		size := int(pack.FieldSize(p))
		raw := make([]byte, n*size)
		for i := 0; i < n; i++ {
			if !putScalar(raw[i*size:], p, rv.Index(i).Interface()) {
				return errors.TypeMismatch(errors.PhaseEncode, elemPath(path, i), wire.TypeName(rv.Index(i).Interface()), p.Spec())
			}
		}
		return e.encodeNative(raw, uint32(n), path)
	}

	size := pack.FieldSize(a.Elem)
	slots, ok := wire.SafeMulU32(size, uint32(n))
	if !ok {
		return errors.Overflow(errors.PhaseEncode, path, n, a.Spec())
	}
	body, ok := wire.SafeAddU32(wire.HeaderSize, slots)
	if !ok {
		return errors.Overflow(errors.PhaseEncode, path, n, a.Spec())
	}
	start, err := e.grow(wire.AlignTo(body, wire.Alignment), path)
	if err != nil {
		return err
	}
	wire.PutHeader(e.buf[start:], body, uint32(n))
	for i := 0; i < n; i++ {
		pos := start + wire.HeaderSize + i*int(size)
		if err := e.encodeField(a.Elem, rv.Index(i).Interface(), pos, elemPath(path, i)); err != nil {
			return err
		}
	}
	return nil
}

func fieldPath(path []string, name string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, name)
}
