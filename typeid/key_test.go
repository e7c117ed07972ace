package typeid

import (
	"testing"

	"github.com/anybox/anybox/layout"
)

type point struct {
	X, Y int
}

type pointAlias struct {
	X, Y int
}

func TestMint_Deterministic(t *testing.T) {
	a := Mint[point]()
	b := Mint[point]()
	if a != b {
		t.Fatal("minting the same type twice must yield the same key pointer")
	}
	if a.Component != Component() {
		t.Fatal("key must carry this component's identity")
	}
	if a.Layout == nil || a.Layout.FullName != a.Name {
		t.Fatalf("key layout mismatch: %v vs %q", a.Layout, a.Name)
	}
}

func TestCompatible_FastPathAndRejection(t *testing.T) {
	p := Mint[point]()
	q := Mint[pointAlias]()

	if !Compatible(p, p) {
		t.Fatal("a key must be compatible with itself")
	}
	// Same shape, different name: distinct types.
	if Compatible(p, q) {
		t.Fatal("distinct named types must not be compatible")
	}
	if Compatible(p, nil) || Compatible(nil, p) {
		t.Fatal("nil keys are compatible with nothing")
	}
}

func TestCompatible_StructuralFallback(t *testing.T) {
	p := Mint[point]()

	// Simulate the same type minted by another component: a distinct key
	// with no shared reflect.Type, carrying a structurally identical layout.
	foreignLayout := *p.Layout
	foreignLayout.Fields = append([]layout.Field(nil), p.Layout.Fields...)
	foreign := &Key{
		Name:      p.Name,
		Layout:    &foreignLayout,
		Component: ComponentID{0xAA},
	}

	if !Compatible(p, foreign) {
		t.Fatal("structurally identical foreign key must be compatible")
	}
	if !SameIdentity(p, foreign) {
		t.Fatal("full field agreement must satisfy the exact check")
	}
}

func TestSameIdentity_RequiresFullFieldAgreement(t *testing.T) {
	type evolving struct {
		A int
		B string `abi:"suffix"`
		C uint32
	}
	k := Mint[evolving]()

	// A foreign component compiled against a shorter suffix.
	older := *k.Layout
	older.Fields = k.Layout.Fields[:2]
	foreign := &Key{Name: k.Name, Layout: &older, Component: ComponentID{0xBB}}

	if !Compatible(k, foreign) {
		t.Fatal("shared-prefix agreement should be compatible for general use")
	}
	if SameIdentity(k, foreign) {
		t.Fatal("recovery-grade identity must reject partial field agreement")
	}
}
