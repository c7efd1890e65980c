// Package errors provides structured error types for the mojom toolchain.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, Go type, kind spec, source
// position and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
//		Path("Point", "x").
//		GoType("string").
//		Spec("i32").
//		Detail("cannot convert string to integer").
//		Build()
//
// Lexer and parser failures carry a file, line and snippet and render in
// diagnostic form:
//
//	my_file.mojom:2: Error: Invalid handle type 'wtf_is_this':
//	  handle<wtf_is_this> foo;
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
