package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseEncode,
				Kind:   KindTypeMismatch,
				Path:   []string{"Point", "inner", "x"},
				GoType: "string",
				Spec:   "i32",
				Detail: "cannot convert",
			},
			contains: []string{"[encode]", "type_mismatch", "Point.inner.x", "string", "i32", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[decode]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindInvalidData,
				Detail: "read import",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[load]", "invalid_data", "read import", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Diagnostic(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "lex error",
			err:  Lex(KindSyntax, "my_file.mojom", 4, "Illegal character '?'"),
			want: "my_file.mojom:4: Error: Illegal character '?'",
		},
		{
			name: "parse error with snippet",
			err:  Parse(KindUnexpectedToken, "my_file.mojom", 4, "        asdf1", "Unexpected 'asdf1':"),
			want: "my_file.mojom:4: Error: Unexpected 'asdf1':\n        asdf1",
		},
		{
			name: "eof has no line",
			err:  UnexpectedEOF("my_file.mojom"),
			want: "my_file.mojom: Error: Unexpected end of file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseDecode,
		Kind:  KindOutOfOrder,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseDecode, Kind: KindOutOfOrder}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseEncode, Kind: KindOutOfOrder}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseDecode, Kind: KindOutOfOrder}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestIsAs_Joined(t *testing.T) {
	first := NotFound(PhaseBuild, "kind", "x:Missing")
	second := Duplicate(PhaseBuild, "field", "S.a")
	joined := errors.Join(first, second)

	if !Is(joined, &Error{Phase: PhaseBuild, Kind: KindDuplicate}) {
		t.Error("Is should find the duplicate error")
	}
	if Is(joined, &Error{Phase: PhaseDecode, Kind: KindDuplicate}) {
		t.Error("Is should not match a different phase")
	}

	var e *Error
	if !As(joined, &e) {
		t.Fatal("As should find an *Error")
	}
	if e != first {
		t.Errorf("As returned %v, want the first error", e)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseParse, KindInvalidHandle).
		Path("MyStruct", "foo").
		GoType("string").
		Spec("h").
		Value(42).
		Cause(cause).
		File("a.mojom").
		Line(2).
		Snippet("  handle<x> foo;").
		Detail("Invalid handle type %q:", "x").
		Build()

	if err.Phase != PhaseParse {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseParse)
	}
	if err.Kind != KindInvalidHandle {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidHandle)
	}
	if len(err.Path) != 2 || err.Path[0] != "MyStruct" || err.Path[1] != "foo" {
		t.Errorf("Path = %v, want [MyStruct foo]", err.Path)
	}
	if err.Spec != "h" {
		t.Errorf("Spec = %v, want 'h'", err.Spec)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.File != "a.mojom" || err.Line != 2 {
		t.Errorf("File/Line = %s:%d", err.File, err.Line)
	}
	if err.Detail != `Invalid handle type "x":` {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch(PhaseConvert, []string{"field"}, "string", "i32")
		if err.Kind != KindTypeMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
		}
		if err.GoType != "string" || err.Spec != "i32" {
			t.Errorf("GoType=%v Spec=%v", err.GoType, err.Spec)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseDecode, []string{"list"}, 10, 5)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != 10 {
			t.Errorf("Value = %v, want 10", err.Value)
		}
	})

	t.Run("NilPointer", func(t *testing.T) {
		enc := NilPointer(PhaseEncode, []string{"ptr"}, "s")
		if !strings.Contains(enc.Detail, "serialize null") {
			t.Errorf("encode detail = %q", enc.Detail)
		}
		dec := NilPointer(PhaseDecode, []string{"ptr"}, "s")
		if !strings.Contains(dec.Detail, "deserialize null") {
			t.Errorf("decode detail = %q", dec.Detail)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseConvert, []string{"val"}, 300, "u8")
		if err.Kind != KindOverflow {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOverflow)
		}
		if err.Value != 300 {
			t.Errorf("Value = %v, want 300", err.Value)
		}
	})

	t.Run("OutOfOrder", func(t *testing.T) {
		err := OutOfOrder(nil, "Accessing buffer out of order.")
		if err.Phase != PhaseDecode || err.Kind != KindOutOfOrder {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		err := Duplicate(PhaseBuild, "struct", "Foo")
		if !strings.Contains(err.Error(), `duplicate struct "Foo"`) {
			t.Errorf("Error() = %q", err.Error())
		}
	})
}
