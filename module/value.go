package module

import (
	"math/big"
	"strconv"
)

type ValueKind uint8

const (
	IntValue ValueKind = iota
	FloatValue
	StringValue
	BoolValue
	// DefaultValue is the "default" keyword, valid only for struct fields.
	DefaultValue
)

func (k ValueKind) String() string {
	switch k {
	case IntValue:
		return "int"
	case FloatValue:
		return "float"
	case StringValue:
		return "string"
	case BoolValue:
		return "bool"
	case DefaultValue:
		return "default"
	}
	return "unknown"
}

// Value is an evaluated constant expression.
type Value struct {
	Int   *big.Int
	Str   string
	Float float64
	Kind  ValueKind
	Bool  bool
}

func intValue(x *big.Int) Value { return Value{Kind: IntValue, Int: x} }
func int64Value(n int64) Value { return intValue(big.NewInt(n)) }
func floatValue(f float64) Value { return Value{Kind: FloatValue, Float: f} }
func boolValue(b bool) Value { return Value{Kind: BoolValue, Bool: b} }
func stringValue(s string) Value { return Value{Kind: StringValue, Str: s} }

func (v Value) isNumeric() bool { return v.Kind == IntValue || v.Kind == FloatValue }

func (v Value) asFloat() float64 {
	if v.Kind == IntValue {
		f, _ := new(big.Float).SetInt(v.Int).Float64()
		return f
	}
	return v.Float
}

func (v Value) String() string {
	switch v.Kind {
	case IntValue:
		return v.Int.String()
	case FloatValue:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case StringValue:
		return strconv.Quote(v.Str)
	case BoolValue:
		return strconv.FormatBool(v.Bool)
	case DefaultValue:
		return "default"
	}
	return "?"
}

// Native returns the value as a plain Go value: int64 or uint64 for
// integers, float64, string, bool, or nil for the default keyword.
func (v Value) Native() any {
	switch v.Kind {
	case IntValue:
		if v.Int.IsInt64() {
			return v.Int.Int64()
		}
		if v.Int.IsUint64() {
			return v.Int.Uint64()
		}
		return new(big.Int).Set(v.Int)
	case FloatValue:
		return v.Float
	case StringValue:
		return v.Str
	case BoolValue:
		return v.Bool
	}
	return nil
}
