package anybox

import (
	"errors"
	"testing"

	"github.com/anybox/anybox/capability"
	anyerrors "github.com/anybox/anybox/errors"
	payloadv1 "github.com/anybox/anybox/internal/evotest/v1"
	payloadv2 "github.com/anybox/anybox/internal/evotest/v2"
	"github.com/anybox/anybox/typeid"
)

// The two payload packages declare the same type name with different suffix
// lengths, standing in for two components built against different versions
// of one library.

type versioned struct {
	capability.Base
	capability.PartialEq
	capability.PartialOrd
}

func TestEvolution_StructuralRecoveryAcrossVersions(t *testing.T) {
	box := FromAnyValue(capability.Plain{}, payloadv2.Record{
		ID:   7,
		Name: "evolved",
		Note: "kept",
		Tags: []string{"a", "b"},
	})
	defer box.Release()

	// A component compiled against the shorter declaration can still view
	// the value through the shared fields.
	old, err := AsConcreteAny[payloadv1.Record](box)
	if err != nil {
		t.Fatalf("prefix view: %v", err)
	}
	if old.ID != 7 || old.Name != "evolved" || old.Note != "kept" {
		t.Fatalf("prefix view = %+v", *old)
	}
}

func TestEvolution_LongerViewOverShorterInstanceFails(t *testing.T) {
	box := FromAnyValue(capability.Plain{}, payloadv1.Record{
		ID:   3,
		Name: "short",
		Note: "v1",
	})
	defer box.Release()

	// The newer declaration stores a field the instance does not have;
	// viewing through it would read past the allocation.
	_, err := AsConcreteAny[payloadv2.Record](box)
	var rerr *anyerrors.RecoveryError
	if !errors.As(err, &rerr) {
		t.Fatalf("err = %v, want *errors.RecoveryError", err)
	}

	// The failed attempt must not have broken the box, and reading through
	// the declaration the instance was built with still works.
	got, err := AsConcreteAny[payloadv1.Record](box)
	if err != nil {
		t.Fatalf("same-version view: %v", err)
	}
	if got.Note != "v1" {
		t.Fatalf("view = %+v", *got)
	}
}

func TestEvolution_EqualityNeverCrossesVersions(t *testing.T) {
	a := FromAnyValue(versioned{}, payloadv1.Record{ID: 9, Name: "same"})
	defer a.Release()
	b := FromAnyValue(versioned{}, payloadv2.Record{ID: 9, Name: "same"})
	defer b.Release()

	// The Eq slot reads both referents under one compiled layout, so
	// prefix-compatible siblings must short-circuit before dispatch.
	if Equal(a, b) || Equal(b, a) {
		t.Fatal("values of different declared counts must never be equal")
	}

	// Ordering falls back to the table-address order: total, antisymmetric,
	// and never 0 for distinct tables.
	ab, ba := Compare(a, b), Compare(b, a)
	if ab == 0 || ab != -ba {
		t.Fatalf("cross-version order: Compare(a,b)=%d Compare(b,a)=%d", ab, ba)
	}

	c := FromAnyValue(versioned{}, payloadv1.Record{ID: 9, Name: "same"})
	defer c.Release()
	if !Equal(a, c) {
		t.Fatal("same version, same value must be equal")
	}
}

func TestEvolution_OwnershipTransferDemandsExactIdentity(t *testing.T) {
	box := FromAnyValue(capability.Plain{}, payloadv2.Record{ID: 1, Name: "x"})
	defer box.Release()

	// Handing ownership to code that declares fewer fields would run the
	// wrong destructor semantics; only the full declaration may take it.
	_, err := IntoConcreteAny[payloadv1.Record](box)
	var rerr *anyerrors.RecoveryError
	if !errors.As(err, &rerr) {
		t.Fatalf("err = %v, want *errors.RecoveryError", err)
	}
	if !box.Alive() {
		t.Fatal("failed transfer must leave the box intact")
	}

	got, err := IntoConcreteAny[payloadv2.Record](box)
	if err != nil {
		t.Fatalf("exact transfer: %v", err)
	}
	if got.ID != 1 {
		t.Fatalf("recovered %+v", *got)
	}
}

func TestEvolution_KeysAgreeWithRecovery(t *testing.T) {
	oldKey := typeid.Mint[payloadv1.Record]()
	newKey := typeid.Mint[payloadv2.Record]()

	if !typeid.Compatible(oldKey, newKey) {
		t.Fatal("versions sharing a prefix must be compatible")
	}
	if typeid.SameIdentity(oldKey, newKey) {
		t.Fatal("versions with different declared counts must not share identity")
	}

	// Viewability is directional: a shorter declaration can read a longer
	// instance, never the reverse.
	if !typeid.ViewableAs(newKey, oldKey) {
		t.Fatal("older view over newer instance must be allowed")
	}
	if typeid.ViewableAs(oldKey, newKey) {
		t.Fatal("newer view over older instance must be rejected")
	}
}
