package wire

import (
	"math"
	"testing"
)

func TestSafeMulU32(t *testing.T) {
	tests := []struct {
		name   string
		a, b   uint32
		want   uint32
		wantOK bool
	}{
		{"zero * zero", 0, 0, 0, true},
		{"zero * max", 0, math.MaxUint32, 0, true},
		{"one * max", 1, math.MaxUint32, math.MaxUint32, true},
		{"small * small", 100, 200, 20000, true},
		{"overflow", math.MaxUint32, 2, 0, false},
		{"edge case ok", 65536, 65535, 65536 * 65535, true},
		{"edge case overflow", 65536, 65537, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SafeMulU32(tt.a, tt.b)
			if ok != tt.wantOK {
				t.Errorf("SafeMulU32(%d, %d) ok = %v, want %v", tt.a, tt.b, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("SafeMulU32(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSafeAddU32(t *testing.T) {
	if got, ok := SafeAddU32(math.MaxUint32-1, 1); !ok || got != math.MaxUint32 {
		t.Errorf("SafeAddU32(max-1, 1) = %d, %v", got, ok)
	}
	if _, ok := SafeAddU32(math.MaxUint32, 1); ok {
		t.Error("SafeAddU32(max, 1) should overflow")
	}
}

func TestAlignTo(t *testing.T) {
	tests := []struct {
		offset, align, want uint32
	}{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{9, 4, 12},
		{3, 1, 3},
		{5, 0, 5},
	}
	for _, tt := range tests {
		if got := AlignTo(tt.offset, tt.align); got != tt.want {
			t.Errorf("AlignTo(%d, %d) = %d, want %d", tt.offset, tt.align, got, tt.want)
		}
	}
}

func TestHeader(t *testing.T) {
	buf := make([]byte, HeaderSize)
	PutHeader(buf, 24, 3)
	if buf[0] != 24 || buf[4] != 3 {
		t.Fatalf("header bytes = %v", buf)
	}
	size, version, ok := ReadHeader(buf)
	if !ok || size != 24 || version != 3 {
		t.Errorf("ReadHeader = %d, %d, %v", size, version, ok)
	}
	if _, _, ok := ReadHeader(buf[:7]); ok {
		t.Error("ReadHeader should fail on a short buffer")
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		input any
		want  string
	}{
		{nil, "nil"},
		{42, "int"},
		{"hello", "string"},
		{[]int{1}, "[]int"},
		{new(int), "*int"},
	}
	for _, tt := range tests {
		if got := TypeName(tt.input); got != tt.want {
			t.Errorf("TypeName(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
