package anybox

import (
	"unsafe"

	"github.com/anybox/anybox/capability"
	"github.com/anybox/anybox/dispatch"
	"github.com/anybox/anybox/errors"
	"github.com/anybox/anybox/typeid"
)

// Container modes. The mode is a phantom type parameter: it never occupies
// storage, it only selects which free functions accept the container.
type (
	ownedMode     struct{}
	opaqueMode    struct{}
	sharedMode    struct{}
	exclusiveMode struct{}
)

// Mode is the full set of container modes.
type Mode interface {
	ownedMode | opaqueMode | sharedMode | exclusiveMode
}

// MutableMode covers containers whose value may be mutated through
// capability calls. Shared views are excluded.
type MutableMode interface {
	ownedMode | opaqueMode | exclusiveMode
}

// RecoverableMode covers containers whose concrete type may be recovered.
// Opaque containers are excluded.
type RecoverableMode interface {
	ownedMode | sharedMode | exclusiveMode
}

// CloneableMode covers containers Clone accepts: owners duplicate the value,
// shared views copy the view. Exclusive views are excluded, since
// duplicating a uniquely held reference would forfeit its exclusivity.
type CloneableMode interface {
	ownedMode | opaqueMode | sharedMode
}

// ExclusiveMode covers containers with exclusive access to their value.
type ExclusiveMode interface {
	ownedMode | exclusiveMode
}

const flagBorrowed uint8 = 1 << 0

type core struct {
	obj   unsafe.Pointer
	tbl   *dispatch.Table
	extra *dispatch.Table
	flags uint8
}

// Dyn is a type-erased container: an opaque pointer to a concrete value plus
// the dispatch table built for descriptor I. The mode parameter M selects
// the container kind; use the Box, Opaque, Ref, and RefMut aliases rather
// than naming Dyn directly.
type Dyn[I capability.Descriptor, M Mode] struct {
	core
}

type (
	// Box owns its value: Release calls the destructor and drops the storage.
	Box[I capability.Descriptor] = Dyn[I, ownedMode]
	// Opaque owns its value but has permanently forgotten its identity;
	// it has no recovery entry points and never matches another identity.
	Opaque[I capability.Descriptor] = Dyn[I, opaqueMode]
	// Ref is a borrowed shared view; Release never touches the value.
	Ref[I capability.Descriptor] = Dyn[I, sharedMode]
	// RefMut is a borrowed exclusive view; Release never touches the value.
	RefMut[I capability.Descriptor] = Dyn[I, exclusiveMode]
)

// PointerKind says whether a container owns its value or merely views it.
type PointerKind uint8

const (
	// SmartPointer containers own their value and destroy it on Release.
	SmartPointer PointerKind = iota
	// RawReference containers borrow a value owned elsewhere.
	RawReference
)

func (k PointerKind) String() string {
	if k == SmartPointer {
		return "smart_pointer"
	}
	return "raw_reference"
}

// ptr returns the object pointer, panicking if the container is zero-valued
// or already released.
func (d *Dyn[I, M]) ptr() unsafe.Pointer {
	if d.obj == nil {
		name := "<zero container>"
		if d.tbl != nil {
			name = d.tbl.Key().String()
		}
		panic(errors.NilPointer(errors.PhaseForward, name))
	}
	return d.obj
}

// Table returns the container's dispatch table.
func (d *Dyn[I, M]) Table() *dispatch.Table {
	return d.tbl
}

// ExtraTable returns the secondary table attached with WithExtraTable, or
// nil when none was attached.
func (d *Dyn[I, M]) ExtraTable() *dispatch.Table {
	return d.extra
}

// Key returns the identity key of the erased value.
func (d *Dyn[I, M]) Key() *typeid.Key {
	return d.tbl.Key()
}

// Spec reports the capabilities the container's descriptor advertises.
func (d *Dyn[I, M]) Spec() capability.Spec {
	return d.tbl.Spec()
}

// PointerKind reports whether the container owns or borrows its value.
func (d *Dyn[I, M]) PointerKind() PointerKind {
	if d.flags&flagBorrowed != 0 {
		return RawReference
	}
	return SmartPointer
}

// Sendable reports whether the descriptor marked the value safe to move to
// another goroutine.
func (d *Dyn[I, M]) Sendable() bool {
	return d.tbl.Spec().Send
}

// Shareable reports whether the descriptor marked the value safe to share
// between goroutines.
func (d *Dyn[I, M]) Shareable() bool {
	return d.tbl.Spec().Sync
}

// Alive reports whether the container still holds a value. Release and a
// successful IntoConcrete leave it empty.
func (d *Dyn[I, M]) Alive() bool {
	return d.obj != nil
}

// Release destroys the value of an owning container and empties the
// container. On borrowed views it only empties the view. Releasing an
// already empty container is a no-op, so double Release is safe.
func (d *Dyn[I, M]) Release() {
	if d.obj == nil {
		return
	}
	if d.flags&flagBorrowed == 0 {
		d.tbl.Drop()(d.obj, true, true)
	}
	d.obj = nil
}
