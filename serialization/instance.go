package serialization

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/wippyai/mojom/errors"
	"github.com/wippyai/mojom/module"
)

// Instance holds one value per field of a struct, in declaration order.
// Values are always in the canonical form Convert returns.
type Instance struct {
	st     *module.Struct
	values []any
}

// NewInstance returns an instance of s with every field at its default.
func NewInstance(s *module.Struct) *Instance {
	return newInstance(s, nil)
}

// newInstance fills defaults. A struct field declared "= default" gets a
// fresh instance unless its struct is already being built on this path.
func newInstance(s *module.Struct, building []*module.Struct) *Instance {
	inst := &Instance{st: s, values: make([]any, len(s.Fields))}
	building = append(building, s)
	for i, f := range s.Fields {
		inst.values[i] = defaultValue(f, building)
	}
	return inst
}

func defaultValue(f *module.Field, building []*module.Struct) any {
	base, _ := module.Unwrap(f.Kind)
	if f.DefaultValue == nil {
		v, err := Convert(base, nil)
		if err != nil {
			return zero(base)
		}
		return v
	}
	if f.DefaultValue.Kind == module.DefaultValue {
		s, ok := base.(*module.Struct)
		if !ok {
			return nil
		}
		for _, b := range building {
			if b == s {
				return nil
			}
		}
		return newInstance(s, building)
	}
	v, err := Convert(f.Kind, f.DefaultValue.Native())
	if err != nil {
		return zero(base)
	}
	return v
}

// zero returns the default of a numeric slot without an initializer.
func zero(k module.Kind) any {
	p, ok := scalar(k)
	if !ok {
		return nil
	}
	if p == module.Bool {
		return false
	}
	return reflect.Zero(sliceTypes[p].Elem()).Interface()
}

// Struct returns the struct this is an instance of.
func (i *Instance) Struct() *module.Struct { return i.st }

func (i *Instance) index(name string) int {
	for j, f := range i.st.Fields {
		if f.Name == name {
			return j
		}
	}
	return -1
}

// Set converts value for the named field and stores it.
func (i *Instance) Set(name string, value any) error {
	j := i.index(name)
	if j < 0 {
		return errors.FieldUnknown(errors.PhaseConvert, []string{i.st.Name}, name)
	}
	v, err := convert(i.st.Fields[j].Kind, value, []string{i.st.Name, name})
	if err != nil {
		return err
	}
	i.values[j] = v
	return nil
}

// Get returns the named field's value, or nil for an unknown field.
func (i *Instance) Get(name string) any {
	v, _ := i.Lookup(name)
	return v
}

// Lookup returns the named field's value and whether the field exists.
func (i *Instance) Lookup(name string) (any, bool) {
	j := i.index(name)
	if j < 0 {
		return nil, false
	}
	return i.values[j], true
}

// Equal reports whether o is an instance of the same struct holding equal
// values, comparing nested instances field by field.
func (i *Instance) Equal(o *Instance) bool {
	if i == nil || o == nil {
		return i == o
	}
	if i.st != o.st {
		return false
	}
	for j := range i.values {
		if !valueEqual(i.values[j], o.values[j]) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	switch a := a.(type) {
	case *Instance:
		b, ok := b.(*Instance)
		return ok && a.Equal(b)
	case []any:
		b, ok := b.([]any)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !valueEqual(a[i], b[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func (i *Instance) String() string {
	var b strings.Builder
	b.WriteString(i.st.Name)
	b.WriteByte('{')
	for j, f := range i.st.Fields {
		if j > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(formatValue(i.values[j]))
	}
	b.WriteByte('}')
	return b.String()
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = formatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprint(v)
}
