package pack

import (
	"strconv"
	"testing"

	"github.com/wippyai/mojom/idl"
	"github.com/wippyai/mojom/ir"
	"github.com/wippyai/mojom/module"
)

func names(ps *module.PackedStruct) []string {
	out := make([]string, len(ps.Fields))
	for i, f := range ps.Fields {
		out[i] = f.Field.Name
	}
	return out
}

// checkSequence adds one field per kind, named "1", "2", ..., and checks the
// packed order and offsets.
func checkSequence(t *testing.T, kinds []module.Kind, fields []int, offsets []uint32) {
	t.Helper()
	s := module.NewStruct("test")
	for i, k := range kinds {
		s.AddField(strconv.Itoa(i+1), k)
	}
	ps := Struct(s)
	if len(ps.Fields) != len(kinds) {
		t.Fatalf("packed %d fields, want %d", len(ps.Fields), len(kinds))
	}
	for i, pf := range ps.Fields {
		if want := strconv.Itoa(fields[i]); pf.Field.Name != want {
			t.Errorf("field %d = %s, want %s", i, pf.Field.Name, want)
		}
		if pf.Offset != offsets[i] {
			t.Errorf("field %d (%s) offset = %d, want %d", i, pf.Field.Name, pf.Offset, offsets[i])
		}
	}
}

func TestStruct_OrdinalOrder(t *testing.T) {
	s := module.NewStruct("test")
	s.AddFieldAt("testfield1", module.Int32, 2)
	s.AddFieldAt("testfield2", module.Int32, 1)
	ps := Struct(s)

	got := names(ps)
	if len(got) != 2 || got[0] != "testfield2" || got[1] != "testfield1" {
		t.Errorf("order = %v, want [testfield2 testfield1]", got)
	}
}

func TestStruct_ZeroFields(t *testing.T) {
	ps := Struct(module.NewStruct("test"))
	if len(ps.Fields) != 0 {
		t.Errorf("packed %d fields, want 0", len(ps.Fields))
	}
	if PayloadSize(ps) != 0 || StructSize(ps) != 8 {
		t.Errorf("payload = %d, size = %d; want 0, 8", PayloadSize(ps), StructSize(ps))
	}
}

func TestStruct_OneField(t *testing.T) {
	s := module.NewStruct("test")
	s.AddField("testfield1", module.Int8)
	ps := Struct(s)
	if len(ps.Fields) != 1 {
		t.Errorf("packed %d fields, want 1", len(ps.Fields))
	}
	if StructSize(ps) != 16 {
		t.Errorf("size = %d, want 16", StructSize(ps))
	}
}

func TestStruct_Padding(t *testing.T) {
	tests := []struct {
		name    string
		kinds   []module.Kind
		fields  []int
		offsets []uint32
	}{
		{
			name:    "in order",
			kinds:   []module.Kind{module.Int8, module.Uint8, module.Int32},
			fields:  []int{1, 2, 3},
			offsets: []uint32{0, 1, 4},
		},
		{
			name:    "out of order",
			kinds:   []module.Kind{module.Int8, module.Int32, module.Uint8},
			fields:  []int{1, 3, 2},
			offsets: []uint32{0, 1, 4},
		},
		{
			name:    "overflow",
			kinds:   []module.Kind{module.Int8, module.Int32, module.Int16, module.Int8, module.Int8},
			fields:  []int{1, 4, 3, 2, 5},
			offsets: []uint32{0, 1, 2, 4, 8},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkSequence(t, tt.kinds, tt.fields, tt.offsets)
		})
	}
}

func TestStruct_AllTypes(t *testing.T) {
	checkSequence(t,
		[]module.Kind{
			module.Bool, module.Int8, module.String, module.Uint8,
			module.Int16, module.Double, module.Uint16,
			module.Int32, module.Uint32, module.Int64,
			module.Float, module.String, module.Handle,
			module.Uint64, module.NewStruct("test"), module.NewArray(module.Int32, 0),
		},
		[]int{1, 2, 4, 5, 7, 3, 6, 8, 9, 10, 11, 13, 12, 14, 15, 16},
		[]uint32{0, 1, 2, 4, 6, 8, 16, 24, 28, 32, 40, 44, 48, 56, 64, 72},
	)
}

func TestStruct_OutOfOrderByOrdinal(t *testing.T) {
	s := module.NewStruct("test")
	s.AddField("testfield1", module.Int8)
	s.AddFieldAt("testfield3", module.Uint8, 3)
	s.AddFieldAt("testfield2", module.Int32, 2)
	ps := Struct(s)

	want := []struct {
		name   string
		offset uint32
	}{
		{"testfield1", 0},
		{"testfield3", 1},
		{"testfield2", 4},
	}
	if len(ps.Fields) != len(want) {
		t.Fatalf("packed %d fields, want %d", len(ps.Fields), len(want))
	}
	for i, w := range want {
		if pf := ps.Fields[i]; pf.Field.Name != w.name || pf.Offset != w.offset {
			t.Errorf("field %d = %s@%d, want %s@%d", i, pf.Field.Name, pf.Offset, w.name, w.offset)
		}
	}
}

func TestStruct_Bools(t *testing.T) {
	s := module.NewStruct("test")
	s.AddField("bit0", module.Bool)
	s.AddField("bit1", module.Bool)
	s.AddField("int", module.Int32)
	for i := 2; i <= 8; i++ {
		s.AddField("bit"+strconv.Itoa(i), module.Bool)
	}
	ps := Struct(s)
	if len(ps.Fields) != 10 {
		t.Fatalf("packed %d fields, want 10", len(ps.Fields))
	}

	for i := 0; i < 8; i++ {
		pf := ps.Fields[i]
		if pf.Field.Name != "bit"+strconv.Itoa(i) || pf.Offset != 0 || pf.Bit != uint8(i) {
			t.Errorf("field %d = %s@%d.%d, want bit%d@0.%d", i, pf.Field.Name, pf.Offset, pf.Bit, i, i)
		}
	}
	if pf := ps.Fields[8]; pf.Field.Name != "bit8" || pf.Offset != 1 || pf.Bit != 0 {
		t.Errorf("field 8 = %s@%d.%d, want bit8@1.0", pf.Field.Name, pf.Offset, pf.Bit)
	}
	if pf := ps.Fields[9]; pf.Field.Name != "int" || pf.Offset != 4 {
		t.Errorf("field 9 = %s@%d, want int@4", pf.Field.Name, pf.Offset)
	}
}

func TestStruct_Deterministic(t *testing.T) {
	build := func() []string {
		s := module.NewStruct("test")
		s.AddField("a", module.Int8)
		s.AddField("b", module.Int64)
		s.AddField("c", module.Int16)
		s.AddField("d", module.Bool)
		s.AddField("e", module.Float)
		return names(Struct(s))
	}
	first := build()
	for i := 0; i < 5; i++ {
		got := build()
		for j := range first {
			if got[j] != first[j] {
				t.Fatalf("run %d order = %v, want %v", i, got, first)
			}
		}
	}
}

func TestFieldSize(t *testing.T) {
	iface := &module.Interface{Name: "I"}
	tests := []struct {
		kind module.Kind
		want uint32
	}{
		{module.Bool, 1},
		{module.Uint8, 1},
		{module.Int16, 2},
		{module.Float, 4},
		{module.Int64, 8},
		{module.Double, 8},
		{module.String, 8},
		{module.MessagePipe, 4},
		{&module.Nullable{Kind: module.Handle}, 4},
		{&module.Nullable{Kind: module.String}, 8},
		{&module.Enum{Name: "E"}, 4},
		{iface, 4},
		{&module.InterfaceRequest{Interface: iface}, 4},
		{module.NewArray(module.Uint8, 4), 8},
		{module.NewStruct("S"), 8},
	}
	for _, tt := range tests {
		if got := FieldSize(tt.kind); got != tt.want {
			t.Errorf("FieldSize(%T) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestByteLayout(t *testing.T) {
	s := module.NewStruct("test")
	s.AddField("a", module.Int8)
	s.AddField("b", module.Int32)
	s.AddField("c", module.Bool)
	s.AddField("d", module.Bool)
	ps := Struct(s)
	bytes := ByteLayout(ps)

	// a@0 c@1.0 d@1.1 b@4
	if len(bytes) != 8 {
		t.Fatalf("layout has %d bytes, want 8", len(bytes))
	}
	padding := map[int]bool{2: true, 3: true}
	for i, b := range bytes {
		if b.IsPadding != padding[i] {
			t.Errorf("byte %d padding = %v, want %v", i, b.IsPadding, padding[i])
		}
	}
	if len(bytes[0].Fields) != 1 || bytes[0].Fields[0].Field.Name != "a" {
		t.Errorf("byte 0 fields = %d", len(bytes[0].Fields))
	}
	if len(bytes[1].Fields) != 2 {
		t.Errorf("byte 1 holds %d fields, want 2", len(bytes[1].Fields))
	}
	if len(bytes[4].Fields) != 1 || bytes[4].Fields[0].Field.Name != "b" {
		t.Errorf("byte 4 fields = %d", len(bytes[4].Fields))
	}
}

func TestByteLayout_TrailingPadding(t *testing.T) {
	s := module.NewStruct("test")
	s.AddField("a", module.Int16)
	bytes := ByteLayout(Struct(s))
	if len(bytes) != 8 {
		t.Fatalf("layout has %d bytes, want 8", len(bytes))
	}
	for i := 2; i < 8; i++ {
		if !bytes[i].IsPadding {
			t.Errorf("byte %d should be padding", i)
		}
	}
	if bytes[1].IsPadding {
		t.Error("byte 1 belongs to a")
	}
}

func TestModule(t *testing.T) {
	f, err := idl.Parse("test.mojom", `
module sample {
struct MyStruct { int32 a; double b; };
interface Echo { Echo(string text) => (string text, bool ok); };
}
`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	rec, err := ir.Translate(f, "test.mojom")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	m, err := module.Build(rec, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	Module(m)

	s := m.Structs[0]
	if s.Size != 24 {
		t.Errorf("MyStruct size = %d, want 24", s.Size)
	}
	if got := s.Packed.Fields[1].Offset; got != 8 {
		t.Errorf("b offset = %d, want 8", got)
	}
	if len(s.Bytes) != 16 {
		t.Errorf("MyStruct has %d layout bytes, want 16", len(s.Bytes))
	}

	for _, ms := range m.MethodStructs() {
		if ms.Packed == nil {
			t.Errorf("%s was not packed", ms.Name)
		}
	}
	resp := m.Interfaces[0].Methods[0].ResponseParams
	if resp.Size != 24 {
		t.Errorf("%s size = %d, want 24", resp.Name, resp.Size)
	}
}
