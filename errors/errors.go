package errors

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLex       Phase = "lex"       // tokenizing IDL source
	PhaseParse     Phase = "parse"     // building the syntax tree
	PhaseTranslate Phase = "translate" // syntax tree to IR
	PhaseBuild     Phase = "build"     // IR to typed module graph
	PhasePack      Phase = "pack"      // struct layout
	PhaseEncode    Phase = "encode"    // value to wire bytes
	PhaseDecode    Phase = "decode"    // wire bytes to value
	PhaseConvert   Phase = "convert"   // value assignment checks
	PhaseLoad      Phase = "load"      // file and import resolution
	PhaseConfig    Phase = "config"    // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindSyntax           Kind = "syntax"
	KindUnexpectedToken  Kind = "unexpected_token"
	KindUnexpectedEOF    Kind = "unexpected_eof"
	KindInvalidOrdinal   Kind = "invalid_ordinal"
	KindInvalidHandle    Kind = "invalid_handle"
	KindInvalidArraySize Kind = "invalid_array_size"
	KindTypeMismatch     Kind = "type_mismatch"
	KindOutOfBounds      Kind = "out_of_bounds"
	KindOutOfOrder       Kind = "out_of_order"
	KindInvalidData      Kind = "invalid_data"
	KindUnsupported      Kind = "unsupported"
	KindOverflow         Kind = "overflow"
	KindNilPointer       Kind = "nil_pointer"
	KindFieldUnknown     Kind = "field_unknown"
	KindDuplicate        Kind = "duplicate"
	KindNotFound         Kind = "not_found"
	KindCycle            Kind = "cycle"
	KindInvalidInput     Kind = "invalid_input"
)

// Error is the structured error type used throughout the toolchain.
//
// Errors that carry a File render in diagnostic form:
//
//	file.mojom:4: Error: Unexpected 'asdf':
//	  asdf
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	GoType  string
	Spec    string
	Detail  string
	File    string
	Snippet string
	Path    []string
	Line    int
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.File != "" {
		return e.diagnostic()
	}

	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.Spec != "" {
		b.WriteString(": ")
		switch {
		case e.GoType != "" && e.Spec != "":
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", kind ")
			b.WriteString(e.Spec)
		case e.GoType != "":
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		default:
			b.WriteString("kind ")
			b.WriteString(e.Spec)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.Spec != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

func (e *Error) diagnostic() string {
	var b strings.Builder
	b.WriteString(e.File)
	if e.Line > 0 {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(e.Line))
	}
	b.WriteString(": Error: ")
	b.WriteString(e.Detail)
	if e.Snippet != "" {
		b.WriteByte('\n')
		b.WriteString(e.Snippet)
	}
	if e.Cause != nil {
		b.WriteString("\n(caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Spec sets the kind spec string
func (b *Builder) Spec(s string) *Builder {
	b.err.Spec = s
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// File sets the source file name, switching the message to diagnostic form
func (b *Builder) File(name string) *Builder {
	b.err.File = name
	return b
}

// Line sets the 1-based source line
func (b *Builder) Line(n int) *Builder {
	b.err.Line = n
	return b
}

// Snippet sets the offending source line
func (b *Builder) Snippet(s string) *Builder {
	b.err.Snippet = s
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Lex creates a lexer diagnostic
func Lex(kind Kind, file string, line int, msg string) *Error {
	return &Error{
		Phase:  PhaseLex,
		Kind:   kind,
		File:   file,
		Line:   line,
		Detail: msg,
	}
}

// Parse creates a parser diagnostic with the offending source line
func Parse(kind Kind, file string, line int, snippet, msg string) *Error {
	return &Error{
		Phase:   PhaseParse,
		Kind:    kind,
		File:    file,
		Line:    line,
		Snippet: snippet,
		Detail:  msg,
	}
}

// UnexpectedEOF creates the end-of-input parser diagnostic, which has no line
func UnexpectedEOF(file string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindUnexpectedEOF,
		File:   file,
		Detail: "Unexpected end of file",
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, spec string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		GoType: goType,
		Spec:   spec,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, offset, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("offset %d out of bounds (length %d)", offset, length),
		Value:  offset,
	}
}

// NilPointer creates a null-into-non-nullable error
func NilPointer(phase Phase, path []string, spec string) *Error {
	detail := "Trying to serialize null for non nullable type."
	if phase == PhaseDecode {
		detail = "Trying to deserialize null for non nullable type."
	}
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Path:   path,
		Spec:   spec,
		Detail: detail,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, spec string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Spec:   spec,
		Detail: fmt.Sprintf("value %v overflows %s", value, spec),
		Value:  value,
	}
}

// FieldUnknown creates an unknown field error
func FieldUnknown(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldUnknown,
		Path:   path,
		Detail: fmt.Sprintf("unknown field %q", fieldName),
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// OutOfOrder creates a claim ordering violation
func OutOfOrder(path []string, detail string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindOutOfOrder,
		Path:   path,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Duplicate creates a duplicate declaration error
func Duplicate(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicate,
		Detail: fmt.Sprintf("duplicate %s %q", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Load creates a module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// Is reports whether any error in err's tree matches target. An *Error
// target matches on Phase and Kind.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err, if any.
func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}
