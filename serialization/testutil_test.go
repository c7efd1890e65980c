package serialization

import (
	"testing"

	"github.com/wippyai/mojom/errors"
	"github.com/wippyai/mojom/module"
	"github.com/wippyai/mojom/pack"
)

type fieldDef struct {
	name string
	kind module.Kind
}

// packed returns a detached struct with the given fields, packed.
func packed(name string, fields ...fieldDef) *module.Struct {
	s := module.NewStruct(name)
	for _, f := range fields {
		s.AddField(f.name, f.kind)
	}
	pack.Annotate(s)
	return s
}

func mustNew(t *testing.T, s *module.Struct) *Serialization {
	t.Helper()
	ser, err := New(s)
	if err != nil {
		t.Fatalf("New(%s) failed: %v", s.Name, err)
	}
	return ser
}

func mustSet(t *testing.T, inst *Instance, name string, value any) {
	t.Helper()
	if err := inst.Set(name, value); err != nil {
		t.Fatalf("Set(%s, %v) failed: %v", name, value, err)
	}
}

func checkErr(t *testing.T, err error, phase errors.Phase, kind errors.Kind, detail string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s/%s error, got nil", phase, kind)
	}
	if !errors.Is(err, &errors.Error{Phase: phase, Kind: kind}) {
		t.Fatalf("error = %v, want %s/%s", err, phase, kind)
	}
	var e *errors.Error
	if detail != "" && errors.As(err, &e) && e.Detail != detail {
		t.Errorf("detail = %q, want %q", e.Detail, detail)
	}
}
