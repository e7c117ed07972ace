package typeid

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/anybox/anybox/layout"
)

// ComponentID identifies one loaded component. Minted once per process load;
// two loads of "the same" code get distinct IDs, which is what forces the
// structural fallback to carry the correctness argument across components.
type ComponentID = uuid.UUID

var componentID = uuid.New()

// Component returns this component's process-wide identity.
func Component() ComponentID {
	return componentID
}

// Key is the identity token minted per (concrete type × compiling component).
// Keys are comparable by address within one component; across components the
// Layout carries the identity.
type Key struct {
	// Name is the package-qualified type name, for diagnostics.
	Name string
	// Layout is the type's structural descriptor.
	Layout *layout.Descriptor
	// Component identifies the component that minted this key.
	Component ComponentID

	rtype reflect.Type
}

// GoType returns the reflect.Type the key was minted for.
func (k *Key) GoType() reflect.Type {
	return k.rtype
}

// String renders the key for diagnostics.
func (k *Key) String() string {
	return fmt.Sprintf("%s@%s", k.Name, k.Component)
}

var (
	mintMu sync.Mutex
	minted = map[reflect.Type]*Key{}
)

// MintType mints (or returns the already-minted) identity key for t.
// Deterministic within a component: equal types yield the same pointer.
func MintType(t reflect.Type) *Key {
	mintMu.Lock()
	defer mintMu.Unlock()
	if k, ok := minted[t]; ok {
		return k
	}
	k := &Key{
		Name:      t.String(),
		Layout:    layout.Describe(t),
		Component: componentID,
		rtype:     t,
	}
	minted[t] = k
	return k
}

// Mint is MintType for a type parameter.
func Mint[T any]() *Key {
	return MintType(reflect.TypeFor[T]())
}

// Compatible reports whether two keys refer to the same type for general
// purposes. Address equality is the fast path (always true for keys minted
// in one component); on mismatch the layouts are compared structurally.
// Compatible is symmetric over the shared prefix of evolving types, so it
// answers "same type" questions only; anything that reinterprets a pointer
// must use the directional ViewableAs instead.
func Compatible(a, b *Key) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.rtype != nil && a.rtype == b.rtype {
		return true
	}
	return layout.Equal(a.Layout, b.Layout)
}

// ViewableAs reports whether a value carrying identity instance can be
// safely read through the type behind view. Unlike Compatible this is
// directional: the viewing type must not declare fields beyond what the
// instance actually stores, or the reinterpreted pointer would read past the
// allocation. Structural recovery of evolving types must use this check.
func ViewableAs(instance, view *Key) bool {
	if instance == view {
		return true
	}
	if instance == nil || view == nil {
		return false
	}
	if instance.rtype != nil && instance.rtype == view.rtype {
		return true
	}
	return layout.ViewCompatible(instance.Layout, view.Layout)
}

// SameIdentity reports whether two keys agree exactly: same minted key, or
// structurally identical layouts with full field agreement. Recovery paths
// require this check because the recovered value's destructor runs under the
// caller's compiled view of the type.
func SameIdentity(a, b *Key) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.rtype != nil && a.rtype == b.rtype {
		return true
	}
	return layout.ExactEqual(a.Layout, b.Layout)
}
