// Package mojom compiles mojom interface definitions and serializes values
// of the structs they declare.
//
// A definition file is lexed, parsed into a syntax tree, translated into a
// plain IR record, built into a graph of typed kinds and finally packed:
// every struct is given a byte layout with natural alignment, booleans
// folded into bit fields and fields placed in ordinal order.
//
// # Architecture Overview
//
//	mojom/               Root package with the Compile entry points
//	├── idl/             Lexer and recursive descent parser
//	│   └── ast/         Syntax tree and its tuple rendering
//	├── ir/              Syntax tree to IR record, YAML dump and load
//	├── module/          Kinds, name resolution and constant evaluation
//	├── pack/            Struct field packing and byte layouts
//	├── serialization/   Versioned wire encoding and validating decoding
//	├── handle/          Handle table for values sent beside messages
//	├── loader/          File system import resolution with caching
//	├── config/          mojom.toml settings
//	├── errors/          Structured error types
//	└── cmd/mojom/       Command line inspector
//
// # Quick Start
//
//	m, err := mojom.Compile("point.mojom", `
//	module geo {
//	struct Point { int32 x; int32 y; };
//	}`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	inst := serialization.NewInstance(m.Structs[0])
//	inst.Set("x", 3)
//	data, handles, err := serialization.Encode(inst, 0)
//
// # Wire Format
//
// Structs and arrays start with an 8-byte header holding their size in bytes
// and a version or element count. Scalars are little endian. Out-of-line
// data is reached through 8-byte pointers relative to the pointer's own
// position, where 0 is null. Handles are 4-byte indices into a side table,
// where -1 is none.
//
// # Error Handling
//
// All failures are *errors.Error values tagged with the phase and kind of
// the problem. Source diagnostics render as
//
//	file.mojom:3: Error: Unexpected '}':
//	  };
//
// and may be matched with errors.Is:
//
//	if errors.Is(err, &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindOutOfOrder}) {
//	    // reject the message
//	}
//
// # Logging
//
// Packages log through zap at debug level and are silent by default. Use
// SetLogger to install a logger in all of them at once.
package mojom
