package parser

import (
	"testing"

	"github.com/wippyai/mojom/idl/ast"
	"github.com/wippyai/mojom/idl/internal/token"
)

func parse(t *testing.T, source string) *ast.File {
	t.Helper()
	tokens, err := token.Tokenize("test.mojom", source, token.Modern)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	f, err := New("test.mojom", source, tokens).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return f
}

func TestParse_LineNumbers(t *testing.T) {
	source := "module a.b {\n\nstruct S {\n  int32 x@1;\n  bool y;\n};\n\ninterface I {\n  M(S s) => ();\n};\n}\n"
	f := parse(t, source)

	if len(f.Modules) != 1 || f.Modules[0].Name != "a.b" || f.Modules[0].Line != 1 {
		t.Fatalf("module = %+v", f.Modules)
	}
	s := f.Modules[0].Definitions[0].(*ast.Struct)
	if s.Line != 3 {
		t.Errorf("struct line = %d, want 3", s.Line)
	}
	fields := s.Fields()
	if len(fields) != 2 {
		t.Fatalf("fields = %d, want 2", len(fields))
	}
	if fields[0].Line != 4 || fields[0].Ordinal == nil || fields[0].Ordinal.Value != 1 {
		t.Errorf("field x = %+v", fields[0])
	}
	if fields[1].Line != 5 || fields[1].Ordinal != nil {
		t.Errorf("field y = %+v", fields[1])
	}

	iface := f.Modules[0].Definitions[1].(*ast.Interface)
	methods := iface.Methods()
	if len(methods) != 1 {
		t.Fatalf("methods = %d, want 1", len(methods))
	}
	m := methods[0]
	if m.Line != 9 || !m.HasResponse || m.Response == nil || len(m.Response) != 0 {
		t.Errorf("method = %+v", m)
	}
	if len(m.Params) != 1 || m.Params[0].Type != "S" {
		t.Errorf("params = %+v", m.Params)
	}
}

func TestParse_NestedDefinitions(t *testing.T) {
	source := "struct Outer {\n  enum Color { RED, GREEN = 3 };\n  const int32 kMax = 10;\n  Color c = GREEN;\n};"
	f := parse(t, source)
	s := f.Modules[0].Definitions[0].(*ast.Struct)
	if len(s.Body) != 3 {
		t.Fatalf("body = %d nodes, want 3", len(s.Body))
	}
	if _, ok := s.Body[0].(*ast.Enum); !ok {
		t.Errorf("body[0] = %T, want *ast.Enum", s.Body[0])
	}
	if _, ok := s.Body[1].(*ast.Const); !ok {
		t.Errorf("body[1] = %T, want *ast.Const", s.Body[1])
	}
	if len(s.Fields()) != 1 {
		t.Errorf("fields = %d, want 1", len(s.Fields()))
	}
}

func TestParse_Precedence(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"1 + 2 * 3", "1 + (2 * 3)"},
		{"(1 + 2) * 3", "(1 + 2) * 3"},
		{"1 - 2 - 3", "(1 - 2) - 3"},
		{"1 | 2 & 3", "1 | (2 & 3)"},
		{"1 << 2 + 1", "1 << (2 + 1)"},
		{"-(1)", "-1"},
		{"- X", "-X"},
		{"~X | 1", "~X | 1"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f := parse(t, "const int32 k = "+tt.expr+";")
			c := f.Modules[0].Definitions[0].(*ast.Const)
			if got := c.Value.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_AttributesWithoutValue(t *testing.T) {
	f := parse(t, "[Sync, Name=\"x\"]\nstruct S {};\n[]\nenum E { A };")
	s := f.Modules[0].Definitions[0].(*ast.Struct)
	if len(s.Attributes) != 2 || s.Attributes[0].Value != nil {
		t.Fatalf("attributes = %+v", s.Attributes)
	}
	if got := ast.Lookup(s.Attributes, "Name"); got == nil || got.String() != `"x"` {
		t.Errorf("Name = %v", got)
	}
}
