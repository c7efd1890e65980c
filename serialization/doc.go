// Package serialization encodes and decodes mojom struct values.
//
// A struct body is an 8-byte header (size, version) followed by its fields
// at the offsets computed by the pack package. Scalars are little-endian.
// Strings, arrays and structs are stored out of line: the slot holds the
// distance from the slot to the data, 0 meaning null, and the data is
// appended to the message. Handles are carried in a separate table and the
// slot holds their index, -1 meaning none.
//
// Values live in an Instance, which holds one canonical Go value per field
// (see Convert). Decoding validates the message as it goes: headers must be
// consistent, and memory and handles must be claimed in increasing order,
// so overlapping or backward pointers are rejected.
//
// # Versioning
//
// A struct's version is its field count. Data from an older struct is read
// using only the fields it carries, the rest keep their defaults; data from
// a newer struct is read with the latest layout and the extra fields are
// ignored.
//
// # Concurrency
//
// A Serialization is safe for concurrent use. Instances are not.
package serialization
