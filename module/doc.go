// Package module holds the typed, resolved graph of a mojom file.
//
// Build turns an ir.Module into a *Module. Every named definition becomes a
// Kind interned in the module's kind table under its spec string:
//
//	b i8 i16 i32 i64 u8 u16 u32 u64 f d   primitives
//	s                                     string
//	h h:d:c h:d:p h:m h:s                 handles
//	a:<elem>  a<N>:<elem>                 arrays, fixed arrays
//	x:<ns>.<Name>                         structs, interfaces, enums
//	r:<interface spec>                    interface requests
//	?<spec>                               nullable reference
//
// Two lookups of the same spec in one module return the same Kind value.
// Kinds declared by an import are shared by pointer with the importing module.
//
// The builder also assigns missing ordinals, evaluates enum values, constants
// and field defaults, and synthesizes the {Interface}_{Method}_Params and
// {Interface}_{Method}_ResponseParams structs for every method. Byte layout
// is attached afterwards by package pack.
package module
