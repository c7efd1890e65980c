package serialization

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/mojom/module"
)

// putScalar writes a canonical scalar value of kind p at the start of b. It
// reports false when v does not have p's canonical Go type.
func putScalar(b []byte, p *module.Primitive, v any) bool {
	le := binary.LittleEndian
	switch p {
	case module.Bool:
		x, ok := v.(bool)
		if ok && x {
			b[0] = 1
		}
		return ok
	case module.Int8:
		x, ok := v.(int8)
		b[0] = byte(x)
		return ok
	case module.Uint8:
		x, ok := v.(uint8)
		b[0] = x
		return ok
	case module.Int16:
		x, ok := v.(int16)
		le.PutUint16(b, uint16(x))
		return ok
	case module.Uint16:
		x, ok := v.(uint16)
		le.PutUint16(b, x)
		return ok
	case module.Int32:
		x, ok := v.(int32)
		le.PutUint32(b, uint32(x))
		return ok
	case module.Uint32:
		x, ok := v.(uint32)
		le.PutUint32(b, x)
		return ok
	case module.Int64:
		x, ok := v.(int64)
		le.PutUint64(b, uint64(x))
		return ok
	case module.Uint64:
		x, ok := v.(uint64)
		le.PutUint64(b, x)
		return ok
	case module.Float:
		x, ok := v.(float32)
		le.PutUint32(b, math.Float32bits(x))
		return ok
	case module.Double:
		x, ok := v.(float64)
		le.PutUint64(b, math.Float64bits(x))
		return ok
	}
	return false
}

// readScalar reads a value of kind p from the start of b in canonical form.
func readScalar(b []byte, p *module.Primitive) any {
	le := binary.LittleEndian
	switch p {
	case module.Bool:
		return b[0] != 0
	case module.Int8:
		return int8(b[0])
	case module.Uint8:
		return b[0]
	case module.Int16:
		return int16(le.Uint16(b))
	case module.Uint16:
		return le.Uint16(b)
	case module.Int32:
		return int32(le.Uint32(b))
	case module.Uint32:
		return le.Uint32(b)
	case module.Int64:
		return int64(le.Uint64(b))
	case module.Uint64:
		return le.Uint64(b)
	case module.Float:
		return math.Float32frombits(le.Uint32(b))
	case module.Double:
		return math.Float64frombits(le.Uint64(b))
	}
	return nil
}
