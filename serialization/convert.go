package serialization

import (
	"math"
	"reflect"
	"strconv"

	"github.com/wippyai/mojom/errors"
	"github.com/wippyai/mojom/internal/wire"
	"github.com/wippyai/mojom/module"
)

var intBounds = map[*module.Primitive][2]int64{
	module.Int8:  {math.MinInt8, math.MaxInt8},
	module.Int16: {math.MinInt16, math.MaxInt16},
	module.Int32: {math.MinInt32, math.MaxInt32},
	module.Int64: {math.MinInt64, math.MaxInt64},
}

var uintBounds = map[*module.Primitive]uint64{
	module.Uint8:  math.MaxUint8,
	module.Uint16: math.MaxUint16,
	module.Uint32: math.MaxUint32,
	module.Uint64: math.MaxUint64,
}

var (
	handleType = reflect.TypeOf(Handle{})
	sliceTypes = map[*module.Primitive]reflect.Type{
		module.Bool:   reflect.TypeOf([]bool(nil)),
		module.Int8:   reflect.TypeOf([]int8(nil)),
		module.Int16:  reflect.TypeOf([]int16(nil)),
		module.Int32:  reflect.TypeOf([]int32(nil)),
		module.Int64:  reflect.TypeOf([]int64(nil)),
		module.Uint8:  reflect.TypeOf([]uint8(nil)),
		module.Uint16: reflect.TypeOf([]uint16(nil)),
		module.Uint32: reflect.TypeOf([]uint32(nil)),
		module.Uint64: reflect.TypeOf([]uint64(nil)),
		module.Float:  reflect.TypeOf([]float32(nil)),
		module.Double: reflect.TypeOf([]float64(nil)),
	}
)

// scalar maps k to the primitive it is stored as inline: itself for the
// numeric primitives and bool, int32 for enums.
func scalar(k module.Kind) (*module.Primitive, bool) {
	switch k := k.(type) {
	case *module.Primitive:
		if _, ok := sliceTypes[k]; ok {
			return k, true
		}
	case *module.Enum:
		return module.Int32, true
	}
	return nil, false
}

// sliceType returns the Go slice type arrays of elem canonicalize to, or nil
// when they are held as []any.
func sliceType(elem module.Kind) reflect.Type {
	if p, ok := scalar(elem); ok {
		return sliceTypes[p]
	}
	if module.IsHandle(elem) {
		return reflect.SliceOf(handleType)
	}
	return nil
}

// Convert checks that value may be stored in a slot of kind k and returns
// its canonical form:
//
//	bool                   bool
//	int8 ... uint64        the Go type of the same width
//	float, double          float32, float64
//	enum                   int32
//	string                 string, or nil
//	handles, interfaces    Handle
//	struct                 *Instance of that struct, or nil
//	array                  a typed slice for scalar and handle elements,
//	                       []any otherwise, or nil
//
// Integers accept only Go integer values in range, floats accept any Go
// number, and strings accept only strings.
func Convert(k module.Kind, value any) (any, error) {
	return convert(k, value, nil)
}

func convert(k module.Kind, value any, path []string) (any, error) {
	base, _ := module.Unwrap(k)
	if p, ok := scalar(base); ok {
		if _, isEnum := base.(*module.Enum); isEnum {
			return convertInt(module.Int32, base, value, path)
		}
		return convertScalar(p, value, path)
	}

	switch base := base.(type) {
	case *module.Primitive:
		if base == module.String {
			if value == nil {
				return nil, nil
			}
			if s, ok := value.(string); ok {
				return s, nil
			}
			return nil, mismatch(path, k, value, "%v is not a string")
		}
		return convertHandle(k, value, path)
	case *module.Interface, *module.InterfaceRequest:
		return convertHandle(k, value, path)
	case *module.Struct:
		return convertStruct(base, k, value, path)
	case *module.Array:
		return convertArray(base, k, value, path)
	}
	return nil, errors.Unsupported(errors.PhaseConvert, "kind "+k.Spec())
}

func convertScalar(p *module.Primitive, value any, path []string) (any, error) {
	switch {
	case p == module.Bool:
		if value == nil {
			return false, nil
		}
		if b, ok := value.(bool); ok {
			return b, nil
		}
		if f, ok := wire.ToFloat64(value); ok {
			return f != 0, nil
		}
		return nil, mismatch(path, p, value, "%v is not a boolean")
	case module.IsFloat(p):
		if value == nil {
			return nil, mismatch(path, p, value, "nil is not a floating point number")
		}
		f, ok := wire.ToFloat64(value)
		if !ok {
			return nil, mismatch(path, p, value, "%v is not a numeric type")
		}
		if p == module.Float {
			return float32(f), nil
		}
		return f, nil
	}
	return convertInt(p, p, value, path)
}

func convertInt(p *module.Primitive, k module.Kind, value any, path []string) (any, error) {
	if value == nil {
		return nil, mismatch(path, k, value, "nil is not an integer")
	}
	if !wire.IsInteger(value) {
		return nil, mismatch(path, k, value, "%v is not an integer type")
	}

	if limit, ok := uintBounds[p]; ok {
		u, ok := wire.ToUint64(value)
		if !ok || u > limit {
			return nil, overflow(path, k, value, 0, limit)
		}
		switch p {
		case module.Uint8:
			return uint8(u), nil
		case module.Uint16:
			return uint16(u), nil
		case module.Uint32:
			return uint32(u), nil
		}
		return u, nil
	}

	bounds := intBounds[p]
	n, ok := wire.ToInt64(value)
	if !ok || n < bounds[0] || n > bounds[1] {
		return nil, overflow(path, k, value, bounds[0], bounds[1])
	}
	switch p {
	case module.Int8:
		return int8(n), nil
	case module.Int16:
		return int16(n), nil
	case module.Int32:
		return int32(n), nil
	}
	return n, nil
}

func convertHandle(k module.Kind, value any, path []string) (any, error) {
	if value == nil {
		return Handle{}, nil
	}
	if h, ok := value.(Handle); ok {
		return h, nil
	}
	return nil, mismatch(path, k, value, "%v is not a handle")
}

func convertStruct(s *module.Struct, k module.Kind, value any, path []string) (any, error) {
	if value == nil {
		return nil, nil
	}
	inst, ok := value.(*Instance)
	if !ok {
		return nil, mismatch(path, k, value, "%v is not a struct instance")
	}
	if inst == nil {
		return nil, nil
	}
	if inst.st != s {
		return nil, errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
			Path(path...).
			Spec(k.Spec()).
			Detail("instance of %s is not an instance of %s", inst.st.Name, s.Name).
			Build()
	}
	return inst, nil
}

func convertArray(a *module.Array, k module.Kind, value any, path []string) (any, error) {
	if value == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, mismatch(path, k, value, "%v is not an array")
	}
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return nil, nil
	}

	n := rv.Len()
	if n > wire.MaxListLength {
		return nil, errors.New(errors.PhaseConvert, errors.KindOverflow).
			Path(path...).
			Spec(k.Spec()).
			Detail("array of %d elements exceeds the limit", n).
			Build()
	}

	if st := sliceType(a.Elem); st != nil {
		if rv.Type() == st {
			return value, nil
		}
		out := reflect.MakeSlice(st, n, n)
		for i := 0; i < n; i++ {
			v, err := convert(a.Elem, rv.Index(i).Interface(), elemPath(path, i))
			if err != nil {
				return nil, err
			}
			out.Index(i).Set(reflect.ValueOf(v))
		}
		return out.Interface(), nil
	}

	out := make([]any, n)
	for i := 0; i < n; i++ {
		v, err := convert(a.Elem, rv.Index(i).Interface(), elemPath(path, i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func elemPath(path []string, i int) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, "["+strconv.Itoa(i)+"]")
}

func mismatch(path []string, k module.Kind, value any, format string) error {
	b := errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
		Path(path...).
		GoType(wire.TypeName(value)).
		Spec(k.Spec()).
		Value(value)
	if value == nil {
		return b.Detail("%s", format).Build()
	}
	return b.Detail(format, value).Build()
}

func overflow(path []string, k module.Kind, value, lo, hi any) error {
	return errors.New(errors.PhaseConvert, errors.KindOverflow).
		Path(path...).
		Spec(k.Spec()).
		Value(value).
		Detail("%v is not in the range [%v, %v]", value, lo, hi).
		Build()
}
