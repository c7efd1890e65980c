package serialization

import (
	"encoding/binary"
	"reflect"
	"unicode/utf8"

	"github.com/wippyai/mojom/errors"
	"github.com/wippyai/mojom/internal/wire"
	"github.com/wippyai/mojom/module"
	"github.com/wippyai/mojom/pack"
)

// decoder walks a message depth first. Memory windows and handle indices
// must be claimed in non-decreasing order, which rejects overlapping or
// backward pointers.
type decoder struct {
	data       []byte
	handles    []Handle
	nextMemory uint64
	nextHandle int
}

func (d *decoder) invalid(path []string, detail string, args ...any) error {
	return errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Path(path...).
		Detail(detail, args...).
		Build()
}

func (d *decoder) claimMemory(start, size uint64, path []string) error {
	if start < d.nextMemory {
		return errors.OutOfOrder(path, "Accessing buffer out of order.")
	}
	d.nextMemory = start + size
	return nil
}

func (d *decoder) claimHandle(idx int32, path []string) (Handle, error) {
	if idx < 0 || int(idx) >= len(d.handles) {
		return Handle{}, errors.OutOfBounds(errors.PhaseDecode, path, int(idx), len(d.handles))
	}
	if int(idx) < d.nextHandle {
		return Handle{}, errors.OutOfOrder(path, "Accessing handles out of order.")
	}
	d.nextHandle = int(idx) + 1
	return d.handles[idx], nil
}

// header validates and claims the struct or array header at pos.
func (d *decoder) header(pos uint64, path []string) (uint32, uint32, error) {
	avail := uint64(len(d.data))
	if pos > avail || avail-pos < wire.HeaderSize {
		return 0, 0, d.invalid(path, "Available data too short to contain header.")
	}
	size, second, _ := wire.ReadHeader(d.data[pos:])
	if avail-pos < uint64(size) || size < wire.HeaderSize {
		return 0, 0, d.invalid(path, "Header size is incorrect.")
	}
	if err := d.claimMemory(pos, uint64(size), path); err != nil {
		return 0, 0, err
	}
	return size, second, nil
}

func (d *decoder) decodeStruct(s *Serialization, pos uint64, path []string) (*Instance, error) {
	size, version, err := d.header(pos, path)
	if err != nil {
		return nil, err
	}
	l := s.layout(version)
	if wire.HeaderSize+l.size > size {
		return nil, d.invalid(path, "Struct size %d is too small for version %d.", size, version)
	}

	inst := NewInstance(s.Struct)
	for i, g := range l.groups {
		at := pos + wire.HeaderSize + uint64(l.offsets[i])
		if g.IsBool() {
			bits := d.data[at]
			for _, pf := range g.Fields {
				inst.values[s.index[pf.Field]] = bits&(1<<pf.Bit) != 0
			}
			continue
		}
		f := g.Fields[0].Field
		v, err := d.decodeField(f.Kind, at, fieldPath(path, f.Name))
		if err != nil {
			return nil, err
		}
		inst.values[s.index[f]] = v
	}
	return inst, nil
}

// decodeField reads the slot at pos, which the caller has bounds checked.
func (d *decoder) decodeField(k module.Kind, pos uint64, path []string) (any, error) {
	base, nullable := module.Unwrap(k)
	if p, ok := scalar(base); ok {
		return readScalar(d.data[pos:], p), nil
	}

	if module.IsHandle(base) {
		idx := wire.ReadInt32(d.data[pos:])
		if idx == wire.NoHandle {
			if !nullable {
				return nil, errors.NilPointer(errors.PhaseDecode, path, k.Spec())
			}
			return Handle{}, nil
		}
		return d.claimHandle(idx, path)
	}

	off := binary.LittleEndian.Uint64(d.data[pos:])
	if off == 0 {
		if !nullable {
			return nil, errors.NilPointer(errors.PhaseDecode, path, k.Spec())
		}
		return nil, nil
	}
	if off > uint64(len(d.data)) {
		return nil, errors.OutOfBounds(errors.PhaseDecode, path, int(pos), len(d.data))
	}
	target := pos + off

	switch base := base.(type) {
	case *module.Primitive:
		raw, err := d.decodeBytes(target, path)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(raw) {
			return nil, d.invalid(path, "String is not valid UTF-8.")
		}
		return string(raw), nil
	case *module.Struct:
		ser, err := New(base)
		if err != nil {
			return nil, err
		}
		return d.decodeStruct(ser, target, path)
	case *module.Array:
		return d.decodeArray(base, target, path)
	}
	return nil, errors.Unsupported(errors.PhaseDecode, "kind "+k.Spec())
}

// elements validates an array header at pos and returns the element count
// and where the elements start. Each element takes elemBits bits.
func (d *decoder) elements(a *module.Array, pos uint64, elemBits uint64, path []string) (uint64, uint64, error) {
	size, count, err := d.header(pos, path)
	if err != nil {
		return 0, 0, err
	}
	if a != nil && a.Length != 0 && count != a.Length {
		return 0, 0, d.invalid(path, "Incorrect array size")
	}
	body := uint64(size) - wire.HeaderSize
	if (uint64(count)*elemBits+7)/8 > body {
		return 0, 0, d.invalid(path, "Array of %d elements does not fit in %d bytes.", count, body)
	}
	return uint64(count), pos + wire.HeaderSize, nil
}

func (d *decoder) decodeBytes(pos uint64, path []string) ([]byte, error) {
	n, start, err := d.elements(nil, pos, 8, path)
	if err != nil {
		return nil, err
	}
	return d.data[start : start+n], nil
}

func (d *decoder) decodeArray(a *module.Array, pos uint64, path []string) (any, error) {
	if p, ok := scalar(a.Elem); ok {
		if p == module.Bool {
			n, start, err := d.elements(a, pos, 1, path)
			if err != nil {
				return nil, err
			}
			out := make([]bool, n)
			for i := range out {
				out[i] = d.data[start+uint64(i/8)]&(1<<(i%8)) != 0
			}
			return out, nil
		}

		size := uint64(pack.FieldSize(p))
		n, start, err := d.elements(a, pos, size*8, path)
		if err != nil {
			return nil, err
		}
		if p == module.Uint8 {
			out := make([]uint8, n)
			copy(out, d.data[start:start+n])
			return out, nil
		}
		out := reflect.MakeSlice(sliceTypes[p], int(n), int(n))
		for i := uint64(0); i < n; i++ {
			out.Index(int(i)).Set(reflect.ValueOf(readScalar(d.data[start+i*size:], p)))
		}
		return out.Interface(), nil
	}

	size := uint64(pack.FieldSize(a.Elem))
	n, start, err := d.elements(a, pos, size*8, path)
	if err != nil {
		return nil, err
	}
	var out reflect.Value
	if st := sliceType(a.Elem); st != nil {
		out = reflect.MakeSlice(st, int(n), int(n))
	} else {
		out = reflect.ValueOf(make([]any, n))
	}
	for i := uint64(0); i < n; i++ {
		v, err := d.decodeField(a.Elem, start+i*size, elemPath(path, int(i)))
		if err != nil {
			return nil, err
		}
		if v != nil {
			out.Index(int(i)).Set(reflect.ValueOf(v))
		}
	}
	return out.Interface(), nil
}
