package module

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/wippyai/mojom/errors"
	"github.com/wippyai/mojom/idl/ast"
)

// binding is a lazily evaluated named constant: a const declaration or an
// enumerator.
type binding struct {
	name  string
	expr  ast.Expr
	kind  Kind
	scope *scope
	value *Value
	busy  bool

	// Enumerators without an initializer take prev + 1, or 0 when first.
	enum bool
	prev *binding
}

func (b *binding) resolve() (Value, error) {
	if b.value != nil {
		return *b.value, nil
	}
	if b.busy {
		return Value{}, errors.New(errors.PhaseBuild, errors.KindCycle).
			Detail("constant %s refers to itself", b.name).
			Build()
	}
	b.busy = true
	defer func() { b.busy = false }()

	var (
		v   Value
		err error
	)
	switch {
	case b.expr != nil:
		v, err = b.scope.eval(b.expr)
	case b.prev != nil:
		var prev Value
		if prev, err = b.prev.resolve(); err == nil {
			v = intValue(new(big.Int).Add(prev.Int, big.NewInt(1)))
		}
	default:
		v = int64Value(0)
	}
	if err != nil {
		return Value{}, err
	}

	if b.enum {
		if v.Kind != IntValue {
			return Value{}, errors.New(errors.PhaseBuild, errors.KindInvalidInput).
				Detail("enum value %s is not an integer: %s", b.name, v).
				Build()
		}
		if !v.Int.IsInt64() || v.Int.Int64() < math.MinInt32 || v.Int.Int64() > math.MaxInt32 {
			return Value{}, errors.New(errors.PhaseBuild, errors.KindOverflow).
				Detail("enum value %s out of int32 range: %s", b.name, v).
				Build()
		}
	} else if b.kind != nil {
		if v, err = coerceValue(v, b.kind, b.name); err != nil {
			return Value{}, err
		}
	}
	b.value = &v
	return v, nil
}

type scope struct {
	parent *scope
	names  map[string]*binding
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: make(map[string]*binding)}
}

func (s *scope) bind(name string, b *binding) {
	s.names[name] = b
}

func (s *scope) lookup(name string) (*binding, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if b, ok := sc.names[name]; ok {
			return b, true
		}
	}
	return nil, false
}

func (s *scope) eval(e ast.Expr) (Value, error) {
	switch e := e.(type) {
	case *ast.Literal:
		return evalLiteral(e)
	case *ast.Identifier:
		b, ok := s.lookup(e.Name)
		if !ok {
			return Value{}, errors.NotFound(errors.PhaseBuild, "constant", e.Name)
		}
		return b.resolve()
	case *ast.Unary:
		x, err := s.eval(e.X)
		if err != nil {
			return Value{}, err
		}
		return evalUnary(e.Op, x)
	case *ast.Binary:
		x, err := s.eval(e.X)
		if err != nil {
			return Value{}, err
		}
		y, err := s.eval(e.Y)
		if err != nil {
			return Value{}, err
		}
		return evalBinary(e.Op, x, y)
	case *ast.Conditional:
		return Value{}, errors.Unsupported(errors.PhaseBuild, "conditional expression "+e.String())
	}
	return Value{}, errors.Unsupported(errors.PhaseBuild, "expression")
}

func evalLiteral(l *ast.Literal) (Value, error) {
	switch l.Kind {
	case ast.IntLiteral:
		text := l.Text
		neg := false
		switch {
		case strings.HasPrefix(text, "-"):
			neg, text = true, text[1:]
		case strings.HasPrefix(text, "+"):
			text = text[1:]
		}
		base := 10
		if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
			base, text = 16, text[2:]
		}
		n, ok := new(big.Int).SetString(text, base)
		if !ok {
			return Value{}, invalidLiteral(l)
		}
		if neg {
			n.Neg(n)
		}
		return intValue(n), nil
	case ast.FloatLiteral:
		f, err := strconv.ParseFloat(l.Text, 64)
		if err != nil {
			return Value{}, invalidLiteral(l)
		}
		return floatValue(f), nil
	case ast.StringLiteral:
		s, err := strconv.Unquote(l.Text)
		if err != nil {
			return Value{}, invalidLiteral(l)
		}
		return stringValue(s), nil
	case ast.BoolLiteral:
		return boolValue(l.Text == "true"), nil
	case ast.DefaultLiteral:
		return Value{Kind: DefaultValue}, nil
	}
	return Value{}, invalidLiteral(l)
}

func invalidLiteral(l *ast.Literal) error {
	return errors.New(errors.PhaseBuild, errors.KindInvalidInput).
		Detail("invalid literal %s", l.Text).
		Build()
}

func evalUnary(op string, x Value) (Value, error) {
	switch op {
	case "+":
		if x.isNumeric() {
			return x, nil
		}
	case "-":
		switch x.Kind {
		case IntValue:
			return intValue(new(big.Int).Neg(x.Int)), nil
		case FloatValue:
			return floatValue(-x.Float), nil
		}
	case "~":
		if x.Kind == IntValue {
			return intValue(new(big.Int).Not(x.Int)), nil
		}
	case "!":
		if x.Kind == BoolValue {
			return boolValue(!x.Bool), nil
		}
		if x.Kind == IntValue {
			return boolValue(x.Int.Sign() == 0), nil
		}
	}
	return Value{}, operandError(op, x)
}

func evalBinary(op string, x, y Value) (Value, error) {
	switch op {
	case "&&", "||":
		if x.Kind != BoolValue || y.Kind != BoolValue {
			return Value{}, operandError(op, x, y)
		}
		if op == "&&" {
			return boolValue(x.Bool && y.Bool), nil
		}
		return boolValue(x.Bool || y.Bool), nil
	case "==", "!=", "<", "<=", ">", ">=":
		return compare(op, x, y)
	}

	if x.Kind == IntValue && y.Kind == IntValue {
		return intBinary(op, x.Int, y.Int)
	}
	if x.isNumeric() && y.isNumeric() {
		a, b := x.asFloat(), y.asFloat()
		switch op {
		case "+":
			return floatValue(a + b), nil
		case "-":
			return floatValue(a - b), nil
		case "*":
			return floatValue(a * b), nil
		case "/":
			return floatValue(a / b), nil
		}
	}
	if op == "+" && x.Kind == StringValue && y.Kind == StringValue {
		return stringValue(x.Str + y.Str), nil
	}
	return Value{}, operandError(op, x, y)
}

func intBinary(op string, a, b *big.Int) (Value, error) {
	z := new(big.Int)
	switch op {
	case "+":
		return intValue(z.Add(a, b)), nil
	case "-":
		return intValue(z.Sub(a, b)), nil
	case "*":
		return intValue(z.Mul(a, b)), nil
	case "/", "%":
		if b.Sign() == 0 {
			return Value{}, errors.New(errors.PhaseBuild, errors.KindInvalidInput).
				Detail("division by zero").
				Build()
		}
		// Truncated division, as in C.
		if op == "/" {
			return intValue(z.Quo(a, b)), nil
		}
		return intValue(z.Rem(a, b)), nil
	case "&":
		return intValue(z.And(a, b)), nil
	case "|":
		return intValue(z.Or(a, b)), nil
	case "^":
		return intValue(z.Xor(a, b)), nil
	case "<<", ">>":
		if b.Sign() < 0 || !b.IsInt64() || b.Int64() > 64 {
			return Value{}, errors.New(errors.PhaseBuild, errors.KindInvalidInput).
				Detail("invalid shift count %s", b).
				Build()
		}
		if op == "<<" {
			return intValue(z.Lsh(a, uint(b.Int64()))), nil
		}
		return intValue(z.Rsh(a, uint(b.Int64()))), nil
	}
	return Value{}, operandError(op, intValue(a), intValue(b))
}

func compare(op string, x, y Value) (Value, error) {
	var c int
	switch {
	case x.Kind == IntValue && y.Kind == IntValue:
		c = x.Int.Cmp(y.Int)
	case x.isNumeric() && y.isNumeric():
		a, b := x.asFloat(), y.asFloat()
		switch {
		case a < b:
			c = -1
		case a > b:
			c = 1
		}
	case x.Kind == StringValue && y.Kind == StringValue:
		c = strings.Compare(x.Str, y.Str)
	case x.Kind == BoolValue && y.Kind == BoolValue && (op == "==" || op == "!="):
		if x.Bool != y.Bool {
			c = 1
		}
	default:
		return Value{}, operandError(op, x, y)
	}
	switch op {
	case "==":
		return boolValue(c == 0), nil
	case "!=":
		return boolValue(c != 0), nil
	case "<":
		return boolValue(c < 0), nil
	case "<=":
		return boolValue(c <= 0), nil
	case ">":
		return boolValue(c > 0), nil
	}
	return boolValue(c >= 0), nil
}

func operandError(op string, operands ...Value) error {
	kinds := make([]string, len(operands))
	for i, v := range operands {
		kinds[i] = v.Kind.String()
	}
	return errors.New(errors.PhaseBuild, errors.KindTypeMismatch).
		Detail("operator %s does not apply to %s", op, strings.Join(kinds, ", ")).
		Build()
}

var intRanges = map[*Primitive][2]*big.Int{
	Int8:   {big.NewInt(math.MinInt8), big.NewInt(math.MaxInt8)},
	Int16:  {big.NewInt(math.MinInt16), big.NewInt(math.MaxInt16)},
	Int32:  {big.NewInt(math.MinInt32), big.NewInt(math.MaxInt32)},
	Int64:  {big.NewInt(math.MinInt64), big.NewInt(math.MaxInt64)},
	Uint8:  {big.NewInt(0), big.NewInt(math.MaxUint8)},
	Uint16: {big.NewInt(0), big.NewInt(math.MaxUint16)},
	Uint32: {big.NewInt(0), big.NewInt(math.MaxUint32)},
	Uint64: {big.NewInt(0), new(big.Int).SetUint64(math.MaxUint64)},
}

// coerceValue checks that v may initialize the slot name of kind k and
// returns it in the slot's representation.
func coerceValue(v Value, k Kind, name string) (Value, error) {
	base, _ := Unwrap(k)
	mismatch := func() (Value, error) {
		return Value{}, errors.New(errors.PhaseBuild, errors.KindTypeMismatch).
			Path(name).
			Spec(k.Spec()).
			Detail("%s value %s cannot initialize %s", v.Kind, v, k.Spec()).
			Build()
	}

	switch base := base.(type) {
	case *Primitive:
		switch {
		case base == Bool:
			if v.Kind == BoolValue {
				return v, nil
			}
		case IsInteger(base):
			if v.Kind != IntValue {
				return mismatch()
			}
			r := intRanges[base]
			if v.Int.Cmp(r[0]) < 0 || v.Int.Cmp(r[1]) > 0 {
				return Value{}, errors.New(errors.PhaseBuild, errors.KindOverflow).
					Path(name).
					Spec(k.Spec()).
					Detail("%s is not in the range [%s, %s]", v, r[0], r[1]).
					Build()
			}
			return v, nil
		case IsFloat(base):
			if v.isNumeric() {
				return floatValue(v.asFloat()), nil
			}
		case base == String:
			if v.Kind == StringValue {
				return v, nil
			}
		}
	case *Enum:
		if v.Kind == IntValue {
			return v, nil
		}
	case *Struct:
		if v.Kind == DefaultValue {
			return v, nil
		}
	case *Array, *Interface, *InterfaceRequest, *Nullable:
	}
	return mismatch()
}
