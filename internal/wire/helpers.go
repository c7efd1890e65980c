package wire

import (
	"encoding/binary"
	"math"
	"reflect"
)

const (
	// HeaderSize is the byte size of a struct or array header.
	HeaderSize = 8
	// PointerSize is the byte size of an out-of-line pointer slot.
	PointerSize = 8
	// HandleSize is the byte size of a handle index slot.
	HandleSize = 4
	// Alignment is the padding granularity of every struct and array.
	Alignment = 8
)

const (
	MaxAlloc      = 1 << 30 // 1 GB max single buffer
	MaxListLength = 1 << 27 // 128M max array elements
)

// NoHandle is the handle index of an absent nullable handle.
const NoHandle = -1

func SafeMulU32(a, b uint32) (uint32, bool) {
	if b != 0 && a > math.MaxUint32/b {
		return 0, false
	}
	return a * b, true
}

func SafeAddU32(a, b uint32) (uint32, bool) {
	if a > math.MaxUint32-b {
		return 0, false
	}
	return a + b, true
}

// TypeName returns "nil" for nil values, avoiding reflect.TypeOf(nil) panic.
func TypeName(value any) string {
	if value == nil {
		return "nil"
	}
	return reflect.TypeOf(value).String()
}

func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// PutHeader writes a (size, version) header, or (size, count) for arrays,
// at the start of buf.
func PutHeader(buf []byte, size, second uint32) {
	binary.LittleEndian.PutUint32(buf, size)
	binary.LittleEndian.PutUint32(buf[4:], second)
}

// ReadHeader reads the header at the start of buf. ok is false when buf is
// shorter than a header.
func ReadHeader(buf []byte) (size, second uint32, ok bool) {
	if len(buf) < HeaderSize {
		return 0, 0, false
	}
	return binary.LittleEndian.Uint32(buf), binary.LittleEndian.Uint32(buf[4:]), true
}

// PutInt32 writes a little-endian signed 32-bit value, as used for handle
// indices.
func PutInt32(b []byte, v int32) {
	binary.LittleEndian.PutUint32(b, uint32(v))
}

func ReadInt32(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b))
}
