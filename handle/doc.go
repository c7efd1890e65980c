// Package handle maps serialization handles to the Go values they stand for.
//
// Messages carry handles beside their bytes as indices into a handle list.
// A Table issues those handles for host values before encoding and resolves
// them again after decoding:
//
//	table := handle.NewTable()
//
//	// Issue a handle for a pipe end and store it in a message field
//	h, err := table.Insert(module.MessagePipe, pipe)
//	inst.Set("pipe", h)
//
//	data, handles, err := serialization.Encode(inst, 0)
//
//	// On the receiving side
//	msg, err := serialization.Decode(st, data, handles)
//	values, err := table.Resolve(handles)
//
// # Kinds
//
// Every entry records the handle kind it was inserted with. GetTyped only
// returns values whose kind matches; the generic module.Handle kind matches
// any entry.
//
// # Lifecycle
//
// Remove drops an entry and calls Drop on values implementing Dropper. Close
// drops every entry and rejects later inserts. Observers registered with
// Subscribe see every create and drop; the returned cancel func removes the
// registration.
//
// Handle values start at 1; the zero serialization.Handle is never issued.
package handle
