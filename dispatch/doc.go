// Package dispatch builds and registers the function tables that erased
// containers call through.
//
// A Table is built once per (concrete type, capability descriptor, mode)
// tuple and lives for the process lifetime; the registry guarantees exactly
// one instance per tuple, so table addresses double as cheap identity.
//
// The table's function slots form an additively evolving struct: the first
// PrefixSlotCount slots are present in every version of the library, slots
// after them may be absent from tables built by older components. Prefix
// slots are accessed directly; suffix slot accessors are bounds-checked
// against the stored slot count and panic with an errors.MissingFieldError
// diagnostic on a version-contract violation.
//
// All slots take the erased object as an unsafe.Pointer; the builder closes
// each slot over the concrete type's reflect machinery, so the container
// never branches on what it holds.
package dispatch
