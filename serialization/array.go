package serialization

import (
	"go.uber.org/zap"

	"github.com/wippyai/mojom/errors"
	"github.com/wippyai/mojom/module"
)

// EncodeArray serializes a top-level array. value is converted first, so
// any slice Convert accepts for a may be passed.
func EncodeArray(a *module.Array, value any, handleOffset int) ([]byte, []Handle, error) {
	path := []string{a.Spec()}
	v, err := convert(a, value, path)
	if err != nil {
		return nil, nil, err
	}
	if v == nil {
		return nil, nil, errors.NilPointer(errors.PhaseEncode, path, a.Spec())
	}

	bp := getBuf()
	e := &encoder{buf: (*bp)[:0], handleOffset: handleOffset}
	err = e.encodeArray(a, v, path)
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

	Logger().Debug("encoded array",
		zap.String("kind", a.Spec()),
		zap.Int("bytes", len(out)),
		zap.Int("handles", len(e.handles)))
	return out, e.handles, nil
}

// DecodeArray deserializes a top-level array in canonical form.
func DecodeArray(a *module.Array, data []byte, handles []Handle) (any, error) {
	d := &decoder{data: data, handles: handles}
	v, err := d.decodeArray(a, 0, []string{a.Spec()})
	if err != nil {
		Logger().Debug("array decode failed", zap.String("kind", a.Spec()), zap.Error(err))
		return nil, err
	}
	return v, nil
}
