// Package typeid mints process-wide type identity keys and decides whether
// two keys refer to compatible types.
//
// A Key represents "this concrete type, compiled by this component". Keys
// minted for the same type within one component are the same pointer, so the
// common case compares by address. Keys minted by different components for
// what is "the same" source type are never trusted on name alone: the
// fallback compares the two types' layout descriptors structurally.
//
// Three checks exist on purpose and must not be unified:
//
//   - Compatible: address fast path, then structural layout comparison,
//     symmetric over the shared prefix of evolving types. Used for "same
//     type" questions that never touch memory (diagnostics, table reuse).
//   - ViewableAs: the directional check structural recovery requires. The
//     viewing type must not declare fields past what the instance stores, or
//     the reinterpreted pointer would read out of bounds.
//   - SameIdentity: the strict check ownership transfer and value-level
//     equality require. Both sides must agree on the full field set, not
//     just a shared prefix, because the recovered pointer's destructor and
//     comparison slots run under the caller's view of the type.
//
// A false result from any check is always safe: callers treat it as "cannot
// recover", never as license to reinterpret memory.
package typeid
