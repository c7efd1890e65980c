package serialization

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/mojom/errors"
	"github.com/wippyai/mojom/internal/wire"
	"github.com/wippyai/mojom/module"
)

// FieldGroup is the unit of inline encoding: a single field, or the
// booleans that share one byte.
type FieldGroup struct {
	Fields []*module.PackedField
	// Version is the first struct version that carries the group: the
	// field's ordinal, or the lowest ordinal among grouped booleans.
	Version uint32
	Size    uint32
}

func (g *FieldGroup) IsBool() bool {
	return g.Fields[0].Field.Kind == module.Bool
}

// FieldGroups splits a packed struct into groups, in packing order.
func FieldGroups(ps *module.PackedStruct) []*FieldGroup {
	var groups []*FieldGroup
	for _, pf := range ps.Fields {
		if pf.Field.Kind == module.Bool && len(groups) > 0 {
			last := groups[len(groups)-1]
			if last.IsBool() && last.Fields[0].Offset == pf.Offset {
				last.Fields = append(last.Fields, pf)
				if pf.Ordinal < last.Version {
					last.Version = pf.Ordinal
				}
				continue
			}
		}
		groups = append(groups, &FieldGroup{
			Fields:  []*module.PackedField{pf},
			Version: pf.Ordinal,
			Size:    pf.Size,
		})
	}
	return groups
}

// layout places groups one after another, each aligned to its own size.
type layout struct {
	groups  []*FieldGroup
	offsets []uint32
	size    uint32
}

func newLayout(groups []*FieldGroup) *layout {
	l := &layout{groups: groups, offsets: make([]uint32, len(groups))}
	pos := uint32(0)
	for i, g := range groups {
		pos = wire.AlignTo(pos, g.Size)
		l.offsets[i] = pos
		pos += g.Size
	}
	l.size = wire.AlignTo(pos, wire.Alignment)
	return l
}

// Serialization encodes and decodes instances of one struct. It is safe for
// concurrent use.
type Serialization struct {
	Struct *module.Struct
	// Version is the number of fields; data written by a struct with fewer
	// fields carries a lower version.
	Version uint32
	// Size is the encoded size of the struct body, header included.
	Size uint32

	groups []*FieldGroup
	index  map[*module.Field]int

	mu      sync.Mutex
	layouts map[uint32]*layout
}

// New returns the serialization of s, which must already be packed.
// Serializations are attached to the packed layout and freed with it.
func New(s *module.Struct) (*Serialization, error) {
	if s.Packed == nil {
		return nil, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Path(s.Name).
			Detail("struct %s has no layout", s.Name).
			Build()
	}
	if cached, ok := s.Packed.Codec().(*Serialization); ok {
		return cached, nil
	}

	groups := FieldGroups(s.Packed)
	full := newLayout(groups)
	ser := &Serialization{
		Struct:  s,
		Version: uint32(len(s.Fields)),
		Size:    wire.HeaderSize + full.size,
		groups:  groups,
		index:   make(map[*module.Field]int, len(s.Fields)),
		layouts: make(map[uint32]*layout),
	}
	ser.layouts[ser.Version] = full
	for i, f := range s.Fields {
		ser.index[f] = i
	}

	Logger().Debug("serialization created",
		zap.String("struct", s.Name),
		zap.Uint32("version", ser.Version),
		zap.Uint32("size", ser.Size),
		zap.Int("groups", len(groups)))

	return s.Packed.AttachCodec(ser).(*Serialization), nil
}

// Groups returns the field groups of the latest version, in wire order.
func (s *Serialization) Groups() []*FieldGroup {
	return s.groups
}

// layout returns the group layout for data of the given version. Versions
// above the struct's own are read with the latest layout.
func (s *Serialization) layout(version uint32) *layout {
	if version > s.Version {
		version = s.Version
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.layouts[version]; ok {
		return l
	}
	var groups []*FieldGroup
	for _, g := range s.groups {
		if g.Version < version {
			groups = append(groups, g)
		}
	}
	l := newLayout(groups)
	s.layouts[version] = l
	return l
}

// Offsets returns the payload offset of every group for data of the given
// version, header excluded.
func (s *Serialization) Offsets(version uint32) ([]*FieldGroup, []uint32) {
	l := s.layout(version)
	return l.groups, l.offsets
}

// NewInstance returns an instance of the struct with defaults applied.
func (s *Serialization) NewInstance() *Instance {
	return NewInstance(s.Struct)
}

// Encode serializes inst. Handles are numbered from handleOffset in the
// order they are encountered.
func (s *Serialization) Encode(inst *Instance, handleOffset int) ([]byte, []Handle, error) {
	if inst == nil {
		return nil, nil, errors.NilPointer(errors.PhaseEncode, []string{s.Struct.Name}, s.Struct.Spec())
	}
	if inst.st != s.Struct {
		return nil, nil, errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
			Path(s.Struct.Name).
			Detail("instance of %s is not an instance of %s", inst.st.Name, s.Struct.Name).
			Build()
	}

	bp := getBuf()
	e := &encoder{buf: (*bp)[:0], handleOffset: handleOffset}
	err := e.encodeStruct(s, inst, []string{s.Struct.Name})
	var out []byte
	if err == nil {
		out = make([]byte, len(e.buf))
		copy(out, e.buf)
	}
	*bp = e.buf
	putBuf(bp)
	if err != nil {
		return nil, nil, err
	}

	Logger().Debug("encoded struct",
		zap.String("struct", s.Struct.Name),
		zap.Int("bytes", len(out)),
		zap.Int("handles", len(e.handles)))
	return out, e.handles, nil
}

// Decode deserializes a struct from data. The result is a fresh instance;
// fields absent from older data keep their defaults.
func (s *Serialization) Decode(data []byte, handles []Handle) (*Instance, error) {
	d := &decoder{data: data, handles: handles}
	inst, err := d.decodeStruct(s, 0, []string{s.Struct.Name})
	if err != nil {
		Logger().Debug("decode failed", zap.String("struct", s.Struct.Name), zap.Error(err))
		return nil, err
	}
	Logger().Debug("decoded struct",
		zap.String("struct", s.Struct.Name),
		zap.Int("bytes", len(data)),
		zap.Int("handles", d.nextHandle))
	return inst, nil
}

// Encode serializes inst with the cached serialization of its struct.
func Encode(inst *Instance, handleOffset int) ([]byte, []Handle, error) {
	if inst == nil {
		return nil, nil, errors.NilPointer(errors.PhaseEncode, nil, "")
	}
	s, err := New(inst.st)
	if err != nil {
		return nil, nil, err
	}
	return s.Encode(inst, handleOffset)
}

// Decode deserializes an instance of st from data.
func Decode(st *module.Struct, data []byte, handles []Handle) (*Instance, error) {
	s, err := New(st)
	if err != nil {
		return nil, err
	}
	return s.Decode(data, handles)
}
