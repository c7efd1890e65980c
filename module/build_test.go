package module

import (
	"strings"
	"testing"

	"github.com/wippyai/mojom/errors"
	"github.com/wippyai/mojom/idl"
	"github.com/wippyai/mojom/ir"
)

func record(t *testing.T, name, source string) *ir.Module {
	t.Helper()
	f, err := idl.Parse(name, source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	rec, err := ir.Translate(f, name)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	return rec
}

func build(t *testing.T, source string, r Resolver) *Module {
	t.Helper()
	m, err := Build(record(t, "test.mojom", source), r)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return m
}

func buildErr(t *testing.T, source string, r Resolver) error {
	t.Helper()
	_, err := Build(record(t, "test.mojom", source), r)
	if err == nil {
		t.Fatal("expected build error")
	}
	return err
}

func TestBuild_EndToEnd(t *testing.T) {
	m := build(t, "struct MyStruct { int32 a; double b; };", nil)

	if m.Namespace != "" {
		t.Errorf("namespace = %q, want empty", m.Namespace)
	}
	if len(m.Structs) != 1 {
		t.Fatalf("structs = %d, want 1", len(m.Structs))
	}
	s := m.Structs[0]
	if s.Name != "MyStruct" || s.Spec() != "x:MyStruct" {
		t.Errorf("struct = %s %s", s.Name, s.Spec())
	}
	want := []struct {
		name    string
		spec    string
		ordinal uint32
	}{
		{"a", "i32", 0},
		{"b", "d", 1},
	}
	for i, w := range want {
		f := s.Fields[i]
		if f.Name != w.name || f.Kind.Spec() != w.spec || f.Ordinal != w.ordinal {
			t.Errorf("field %d = %s %s @%d, want %s %s @%d",
				i, f.Name, f.Kind.Spec(), f.Ordinal, w.name, w.spec, w.ordinal)
		}
	}
}

func TestBuild_Ordinals(t *testing.T) {
	m := build(t, `
struct S { int8 a; int8 b@5; int8 c; int8 d@2; int8 e; };
interface I {
  A();
  B@10(int32 x, int32 y@7, int32 z);
  C() => (bool ok@3, bool more);
};`, nil)

	fields := m.Structs[0].Fields
	wantFields := []uint32{0, 5, 6, 2, 3}
	for i, w := range wantFields {
		if fields[i].Ordinal != w {
			t.Errorf("field %s ordinal = %d, want %d", fields[i].Name, fields[i].Ordinal, w)
		}
	}

	methods := m.Interfaces[0].Methods
	wantMethods := []uint32{0, 10, 11}
	for i, w := range wantMethods {
		if methods[i].Ordinal != w {
			t.Errorf("method %s ordinal = %d, want %d", methods[i].Name, methods[i].Ordinal, w)
		}
	}

	params := methods[1].Parameters
	wantParams := []uint32{0, 7, 8}
	for i, w := range wantParams {
		if params[i].Ordinal != w {
			t.Errorf("param %s ordinal = %d, want %d", params[i].Name, params[i].Ordinal, w)
		}
	}
	resp := methods[2].Response
	if resp[0].Ordinal != 3 || resp[1].Ordinal != 4 {
		t.Errorf("response ordinals = %d, %d, want 3, 4", resp[0].Ordinal, resp[1].Ordinal)
	}
}

func TestBuild_KindInterning(t *testing.T) {
	m := build(t, `
module sample {
struct Point { int32 x; int32 y; };
struct Shape {
  Point[] points;
  Point[] more;
  Point origin;
  uint8[4] color;
  handle<message_pipe> pipe;
  Canvas& canvas;
  Canvas peer;
};
interface Canvas { Draw(Shape s); };
}`, nil)

	shape := m.Structs[1]
	points, _ := shape.Field("points")
	more, _ := shape.Field("more")
	if points.Kind != more.Kind {
		t.Error("a:x:sample.Point interned twice")
	}
	k, ok := m.Kind("a:x:sample.Point")
	if !ok || k != points.Kind {
		t.Error("kind table does not hold the array kind")
	}

	origin, _ := shape.Field("origin")
	if origin.Kind != m.Structs[0] {
		t.Errorf("origin kind = %v, want the Point struct", origin.Kind)
	}

	tests := []struct {
		field string
		spec  string
	}{
		{"points", "a:x:sample.Point"},
		{"origin", "x:sample.Point"},
		{"color", "a4:u8"},
		{"pipe", "h:m"},
		{"canvas", "r:x:sample.Canvas"},
		{"peer", "x:sample.Canvas"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			f, ok := shape.Field(tt.field)
			if !ok {
				t.Fatalf("field %s missing", tt.field)
			}
			if got := f.Kind.Spec(); got != tt.spec {
				t.Errorf("spec = %q, want %q", got, tt.spec)
			}
			if _, ok := m.Kind(tt.spec); !ok {
				t.Errorf("spec %q not in kind table", tt.spec)
			}
		})
	}

	color, _ := shape.Field("color")
	if arr, ok := color.Kind.(*Array); !ok || arr.Length != 4 || arr.Elem != Uint8 {
		t.Errorf("color kind = %#v", color.Kind)
	}
	req, _ := shape.Field("canvas")
	if r, ok := req.Kind.(*InterfaceRequest); !ok || r.Interface != m.Interfaces[0] {
		t.Errorf("canvas kind = %#v", req.Kind)
	}
}

func TestBuild_MethodStructs(t *testing.T) {
	m := build(t, `
module sample {
interface Server {
  Ping();
  Query(string q, int32 limit) => ();
  Fetch(int32 id) => (bool ok, string body);
};
}`, nil)

	var names []string
	for _, s := range m.MethodStructs() {
		names = append(names, s.Name)
	}
	want := "Server_Ping_Params Server_Query_Params Server_Query_ResponseParams " +
		"Server_Fetch_Params Server_Fetch_ResponseParams"
	if got := strings.Join(names, " "); got != want {
		t.Errorf("method structs = %q, want %q", got, want)
	}

	ping := m.Interfaces[0].Methods[0]
	if ping.HasResponse || ping.ResponseParams != nil {
		t.Error("Ping should have no response struct")
	}
	if len(ping.Params.Fields) != 0 {
		t.Errorf("Ping params fields = %d", len(ping.Params.Fields))
	}
	query := m.Interfaces[0].Methods[1]
	if query.ResponseParams == nil || len(query.ResponseParams.Fields) != 0 {
		t.Error("Query should have an empty response struct")
	}
	fetch := m.Interfaces[0].Methods[2]
	if fetch.Params.Interface != m.Interfaces[0] {
		t.Error("synthesized struct lost its interface")
	}
	if f, ok := fetch.ResponseParams.Field("body"); !ok || f.Kind != String || f.Ordinal != 1 {
		t.Errorf("body field = %+v", f)
	}
	if _, ok := m.Kind(fetch.Params.Spec()); ok {
		t.Error("synthesized structs must not enter the kind table")
	}
	if got := len(m.AllStructs()); got != 5 {
		t.Errorf("AllStructs = %d, want 5", got)
	}
}

func TestBuild_Enums(t *testing.T) {
	m := build(t, `
module sample {
const int32 kBase = 10;
enum Color {
  RED,
  GREEN,
  BLUE = 10,
  CYAN,
  MAGENTA = kBase * 2 + 1,
  YELLOW = MAGENTA << 1,
  BLACK = -1,
  WHITE,
};
struct Box {
  enum Size { SMALL = 0x10, LARGE = Color.BLUE };
  const uint8 kMax = 200;
  Color color = GREEN;
  Size size = Size.LARGE;
  uint8 limit = kMax;
  double ratio = 1;
  bool visible = true;
  string label = "box";
  Box child = default;
  int64 neg = -0x10;
};
}`, nil)

	color := m.Enums[0]
	want := map[string]int64{
		"RED": 0, "GREEN": 1, "BLUE": 10, "CYAN": 11,
		"MAGENTA": 21, "YELLOW": 42, "BLACK": -1, "WHITE": 0,
	}
	for name, v := range want {
		got, ok := color.Value(name)
		if !ok || got != v {
			t.Errorf("%s = %d (%v), want %d", name, got, ok, v)
		}
	}

	box := m.Structs[0]
	size := box.Enums[0]
	if size.Spec() != "x:sample.Box.Size" {
		t.Errorf("nested enum spec = %q", size.Spec())
	}
	if v, _ := size.Value("LARGE"); v != 10 {
		t.Errorf("LARGE = %d, want 10", v)
	}
	if v, _ := size.Value("SMALL"); v != 16 {
		t.Errorf("SMALL = %d, want 16", v)
	}

	defaults := map[string]string{
		"color":   "1",
		"size":    "10",
		"limit":   "200",
		"ratio":   "1",
		"visible": "true",
		"label":   `"box"`,
		"child":   "default",
		"neg":     "-16",
	}
	for name, want := range defaults {
		f, ok := box.Field(name)
		if !ok {
			t.Fatalf("field %s missing", name)
		}
		if f.DefaultValue == nil {
			t.Errorf("%s has no default", name)
			continue
		}
		if got := f.DefaultValue.String(); got != want {
			t.Errorf("%s default = %s, want %s", name, got, want)
		}
	}
	ratio, _ := box.Field("ratio")
	if ratio.DefaultValue.Kind != FloatValue {
		t.Errorf("double default kind = %s, want float", ratio.DefaultValue.Kind)
	}
	if len(box.Consts) != 1 || box.Consts[0].Value.String() != "200" {
		t.Errorf("consts = %+v", box.Consts)
	}
}

func TestBuild_ImportsShareKinds(t *testing.T) {
	dep := build(t, `
module geo {
const int32 kDims = 3;
struct Point { int32 x; int32 y; };
enum Unit { PX, EM };
}`, nil)

	resolver := ResolverFunc(func(importer, filename string) (*Module, error) {
		return dep, nil
	})

	m := build(t, `import "geo.mojom"
module draw {
struct Line {
  geo.Point from;
  Point to;
  geo.Unit unit = geo.Unit.EM;
  int32 dims = geo.kDims;
};
}`, resolver)

	line := m.Structs[0]
	from, _ := line.Field("from")
	to, _ := line.Field("to")
	if from.Kind != dep.Structs[0] || to.Kind != dep.Structs[0] {
		t.Error("imported struct kind is not shared")
	}
	unit, _ := line.Field("unit")
	if unit.Kind != dep.Enums[0] || unit.DefaultValue.String() != "1" {
		t.Errorf("unit = %v default %v", unit.Kind, unit.DefaultValue)
	}
	dims, _ := line.Field("dims")
	if dims.DefaultValue.String() != "3" {
		t.Errorf("dims default = %v", dims.DefaultValue)
	}
	if len(m.Imports) != 1 || m.Imports[0].Module != dep {
		t.Errorf("imports = %+v", m.Imports)
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		kind   errors.Kind
		detail string
	}{
		{
			"unknown kind",
			"struct S { Missing m; };",
			errors.KindNotFound,
			`kind "Missing" not found`,
		},
		{
			"duplicate struct",
			"struct S { int32 a; }; struct S { int32 b; };",
			errors.KindDuplicate,
			`duplicate struct "x:S"`,
		},
		{
			"duplicate field",
			"struct S { int32 a; int32 a; };",
			errors.KindDuplicate,
			`duplicate field "S.a"`,
		},
		{
			"duplicate ordinal",
			"struct S { int32 a@1; int32 b@1; };",
			errors.KindDuplicate,
			"ordinal 1 already used by a",
		},
		{
			"duplicate parameter",
			"interface I { M(int32 a, int32 a); };",
			errors.KindDuplicate,
			`duplicate parameter "I.M.a"`,
		},
		{
			"duplicate parameter ordinal",
			"interface I { M(int32 a@1, int32 b@1); };",
			errors.KindDuplicate,
			"ordinal 1 already used by a",
		},
		{
			"duplicate response ordinal",
			"interface I { M() => (int32 a@0, bool b@0); };",
			errors.KindDuplicate,
			"ordinal 0 already used by a",
		},
		{
			"duplicate method",
			"interface I { A(); A(); };",
			errors.KindDuplicate,
			`duplicate method "I.A"`,
		},
		{
			"duplicate method ordinal",
			"interface I { A@1(); B@1(); };",
			errors.KindDuplicate,
			"ordinal 1 already used by A",
		},
		{
			"non-integral enum",
			"enum E { A = 1.5 };",
			errors.KindInvalidInput,
			"enum value E.A is not an integer",
		},
		{
			"unknown constant",
			"enum E { A = kMissing };",
			errors.KindNotFound,
			`constant "kMissing" not found`,
		},
		{
			"self reference",
			"enum E { A = B, B = A };",
			errors.KindCycle,
			"refers to itself",
		},
		{
			"default overflow",
			"struct S { int8 a = 200; };",
			errors.KindOverflow,
			"200 is not in the range [-128, 127]",
		},
		{
			"default type mismatch",
			`struct S { int32 a = "x"; };`,
			errors.KindTypeMismatch,
			"cannot initialize i32",
		},
		{
			"request of struct",
			"struct T {}; struct S { T& t; };",
			errors.KindTypeMismatch,
			"x:T is not an interface",
		},
		{
			"unresolved import",
			"import \"nowhere.mojom\"\nstruct S {};",
			errors.KindNotFound,
			`import "nowhere.mojom" not found`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := buildErr(t, tt.source, nil)
			if !strings.Contains(err.Error(), tt.detail) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.detail)
			}
			if !errors.Is(err, &errors.Error{Phase: errors.PhaseBuild, Kind: tt.kind}) {
				t.Errorf("error %v is not build/%s", err, tt.kind)
			}
		})
	}
}

func TestBuild_AggregatesErrors(t *testing.T) {
	err := buildErr(t, "struct A { Nope x; }; struct B { Nada y; };", nil)
	msg := err.Error()
	if !strings.Contains(msg, `"Nope"`) || !strings.Contains(msg, `"Nada"`) {
		t.Errorf("error %q should report both unknown kinds", msg)
	}
}

func TestBuild_ConditionalRejected(t *testing.T) {
	f, err := idl.ParseDialect("test.mojom", "enum E { A = 1 ? 2 : 3 };", idl.Legacy)
	if err != nil {
		t.Fatalf("ParseDialect failed: %v", err)
	}
	rec, err := ir.Translate(f, "test.mojom")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	_, err = Build(rec, nil)
	if !errors.Is(err, &errors.Error{Phase: errors.PhaseBuild, Kind: errors.KindUnsupported}) {
		t.Errorf("error = %v, want build/unsupported", err)
	}
}

func TestBuild_NullableFromIR(t *testing.T) {
	rec := &ir.Module{
		Name: "hand.yaml",
		Structs: []ir.Struct{{
			Name: "S",
			Fields: []ir.Field{
				{Name: "name", Kind: "?s"},
				{Name: "items", Kind: "?a:i32"},
				{Name: "pipe", Kind: "?h:m"},
			},
		}},
	}
	m, err := Build(rec, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, f := range m.Structs[0].Fields {
		if !IsNullable(f.Kind) {
			t.Errorf("%s kind %s is not nullable", f.Name, f.Kind.Spec())
		}
	}

	rec.Structs[0].Fields = []ir.Field{{Name: "n", Kind: "?i32"}}
	if _, err := Build(rec, nil); err == nil || !strings.Contains(err.Error(), "i32 cannot be nullable") {
		t.Errorf("error = %v, want nullable rejection", err)
	}
}
