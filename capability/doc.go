// Package capability defines the compile-time configuration contract of an
// erased container: which operations it supports.
//
// A descriptor is a zero-sized struct type that embeds Base plus one mixin
// per capability it advertises:
//
//	type Ordered struct {
//		capability.Base
//		capability.Eq
//		capability.Ord
//		capability.Hash
//	}
//
// Each mixin contributes an unexported marker method, so the corresponding
// marker interface (HasEq, HasOrd, ...) is satisfied exactly by descriptors
// embedding the mixin. Generic operations in the root package constrain their
// descriptor type parameter on these markers, which makes using a capability
// the descriptor does not advertise a compile-time error, not a runtime one.
//
// Iteration mixins carry the item type as a type parameter (Iter[It],
// DoubleEnded[It]); the IterableOver[It] and DoubleEndedOver[It] constraints
// tie a container's item type to its descriptor.
//
// SpecOf summarizes a descriptor's flags at runtime for the dispatch table
// builder. The flags a descriptor advertises are fixed at its type
// definition; a container's capability set cannot be widened after
// construction.
package capability
