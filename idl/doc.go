// Package idl parses mojom interface definition source into a syntax tree.
//
// Basic usage:
//
//	tree, err := idl.Parse("sample.mojom", `
//		module sample {
//		struct Point { int32 x; int32 y; };
//		interface Canvas { Draw@0(Point p) => (bool ok); };
//		}`)
//
// Grammar summary:
//   - Imports: import "path"
//   - Optional module wrapper: [attrs] module a.b { ... }
//   - Definitions: struct, interface, enum, const
//   - Types: identifiers, handle, handle<kind>, T[], T[N], Name&
//   - Ordinals: @N, decimal only, at most 0xFFFFFFFF
//   - Constant expressions with C operators and precedence
//   - Comments: line (//) and block (/* */)
//
// Lex and parse failures are *errors.Error values in diagnostic form,
// "file:line: Error: message", followed by the offending source line for
// parse errors. The syntax tree renders as tagged tuples with ast.Format.
package idl
