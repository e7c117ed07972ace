package anybox

import (
	"reflect"

	"github.com/anybox/anybox/capability"
	"github.com/anybox/anybox/dispatch"
	"github.com/anybox/anybox/errors"
	"github.com/anybox/anybox/typeid"
)

// Recovery turns an erased container back into its concrete type.
//
// IntoConcrete, AsConcrete, and AsConcreteMut pair with FromValue/FromPtr:
// they demand the exact identity those constructors minted, including the
// declared field count of evolving types, so ownership can be handed back to
// code that will run the value's destructor. The Any variants pair with
// FromAnyValue/FromAnyPtr and accept a structurally compatible type that
// declares no more fields than the stored instance, which is what tolerates
// additive layout evolution between components: an older compiled view can
// read a newer instance's stable prefix, never the other way around.
//
// A failed recovery returns *errors.RecoveryError and leaves the container
// exactly as it was.

// checkRecovery validates the container against the identity of T. exact
// selects SameIdentity over Compatible.
func checkRecovery[T any](c *core, iface capability.Descriptor, wantMode dispatch.Mode, exact bool, inner any) error {
	want := typeid.Mint[T]()
	found := c.tbl.Key()

	ok := c.tbl.Mode() == wantMode
	if ok && exact {
		ok = typeid.SameIdentity(found, want)
	} else if ok {
		// The recovered pointer is read as T, so only the direction where
		// T declares no more fields than the stored instance is safe.
		ok = typeid.ViewableAs(found, want)
	}
	if ok {
		return nil
	}

	var wantAddr uintptr
	if wt, built := dispatch.Lookup(reflect.TypeFor[T](), iface, wantMode); built {
		wantAddr = wt.Addr()
	}
	return errors.NewRecoveryError(inner, wantAddr, c.tbl.Addr(),
		want.String(), found.String(), want.Layout, found.Layout)
}

func recoverNil(c *core) error {
	name := "<zero container>"
	if c.tbl != nil {
		name = c.tbl.Key().String()
	}
	return errors.NilPointer(errors.PhaseRecover, name)
}

// IntoConcrete consumes the box, handing its value back out as *T. The box
// releases its claim on the storage without running the destructor; the
// caller owns the value from here. On failure the box is untouched.
func IntoConcrete[T any, I capability.Descriptor](d *Box[I]) (*T, error) {
	return intoConcrete[T](d, dispatch.ModeExact, true)
}

// IntoConcreteAny is IntoConcrete for boxes built with FromAnyValue or
// FromAnyPtr.
func IntoConcreteAny[T any, I capability.Descriptor](d *Box[I]) (*T, error) {
	return intoConcrete[T](d, dispatch.ModeAny, true)
}

func intoConcrete[T any, I capability.Descriptor](d *Box[I], mode dispatch.Mode, exact bool) (*T, error) {
	if d.obj == nil {
		return nil, recoverNil(&d.core)
	}
	var iface I
	if err := checkRecovery[T](&d.core, iface, mode, exact, d); err != nil {
		return nil, err
	}
	p := (*T)(d.obj)
	d.tbl.Drop()(d.obj, false, true)
	d.obj = nil
	return p, nil
}

// AsConcrete views the container's value as *T without consuming the
// container. Treat the result as read-only on shared views.
func AsConcrete[T any, I capability.Descriptor, M RecoverableMode](d *Dyn[I, M]) (*T, error) {
	return asConcrete[T](d, dispatch.ModeExact, true)
}

// AsConcreteAny is AsConcrete with the structural check; the container's
// value may be an evolved variant of T sharing its stable prefix.
func AsConcreteAny[T any, I capability.Descriptor, M RecoverableMode](d *Dyn[I, M]) (*T, error) {
	return asConcrete[T](d, dispatch.ModeAny, false)
}

// AsConcreteMut views an exclusively held value as *T for mutation.
func AsConcreteMut[T any, I capability.Descriptor, M ExclusiveMode](d *Dyn[I, M]) (*T, error) {
	return asConcrete[T](d, dispatch.ModeExact, true)
}

// AsConcreteMutAny is AsConcreteMut with the structural check.
func AsConcreteMutAny[T any, I capability.Descriptor, M ExclusiveMode](d *Dyn[I, M]) (*T, error) {
	return asConcrete[T](d, dispatch.ModeAny, false)
}

func asConcrete[T any, I capability.Descriptor, M Mode](d *Dyn[I, M], mode dispatch.Mode, exact bool) (*T, error) {
	if d.obj == nil {
		return nil, recoverNil(&d.core)
	}
	var iface I
	if err := checkRecovery[T](&d.core, iface, mode, exact, d); err != nil {
		return nil, err
	}
	return (*T)(d.obj), nil
}

// Reborrow produces a shared view of the container's value. The view is
// independent of the source container but never outlives the value: release
// the source only after the view is done. Opaque containers are excluded so
// that a Ref always comes from a recoverable identity; they reborrow with
// ReborrowOpaque instead.
func Reborrow[I capability.Descriptor, M RecoverableMode](d *Dyn[I, M]) *Ref[I] {
	return &Ref[I]{core: core{obj: d.ptr(), tbl: d.tbl, extra: d.extra, flags: d.flags | flagBorrowed}}
}

// ReborrowMut produces an exclusive view of the container's value. Only
// containers that themselves hold the value exclusively can hand one out.
func ReborrowMut[I capability.Descriptor, M ExclusiveMode](d *Dyn[I, M]) *RefMut[I] {
	return &RefMut[I]{core: core{obj: d.ptr(), tbl: d.tbl, extra: d.extra, flags: d.flags | flagBorrowed}}
}

// ReborrowOpaque produces a view of an opaque container. The view keeps the
// opaque mode, so it has no recovery entry points, same as its source.
func ReborrowOpaque[I capability.Descriptor](d *Opaque[I]) *Opaque[I] {
	return &Opaque[I]{core: core{obj: d.ptr(), tbl: d.tbl, extra: d.extra, flags: d.flags | flagBorrowed}}
}
