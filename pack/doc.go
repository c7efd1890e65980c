// Package pack computes the wire layout of mojom structs.
//
// Fields are placed in ordinal order. Each field is aligned to its own size
// and goes into the first gap left by earlier fields that can hold it;
// consecutive booleans share a byte, one bit each, least significant first.
// The payload is padded to 8 bytes and follows an 8-byte header, so
//
//	struct MyStruct { int32 a; double b; };
//
// packs a at offset 0 and b at offset 8, for a total size of 24.
//
// Module annotates a built module in place, setting Packed, Bytes and Size
// on every struct including the synthesized method parameter structs.
package pack
