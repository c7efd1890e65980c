// Package wire provides internal utilities shared by the packer and the
// serialization engine.
//
// # Contents
//
//   - helpers.go: alignment, checked arithmetic and the struct header
//   - coerce.go: extraction of Go numeric values for wire conversion
//
// This package is internal to the mojom module.
package wire
