// Package layout describes struct layouts that may grow additively over time.
//
// A Descriptor lists a struct's fields split into a stable prefix (guaranteed
// present in every version of the struct) and an append-only suffix (fields
// added by later versions). The first suffix field is marked with the struct
// tag `abi:"suffix"`; structs without the tag have no suffix and every field
// is prefix.
//
// A View pairs a Descriptor with the field count actually stored by the
// instance at hand, which may be smaller than the declared count when the
// instance was built by an older component. Field access through a View is
// bounds-checked against the stored count; access past it panics with a
// MissingFieldError naming the field and both versions, because it indicates
// a version-compatibility contract violation by the caller.
//
// Descriptors are generated once per type, cached, and compared structurally
// (name, field layout, size, alignment) when deciding whether two
// independently compiled components agree on a type.
package layout
