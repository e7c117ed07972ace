package anybox

import (
	"errors"
	"testing"

	"github.com/anybox/anybox/capability"
	anyerrors "github.com/anybox/anybox/errors"
)

type dropTracked struct {
	N     int
	drops *int
}

func (d *dropTracked) Drop() {
	*d.drops++
}

type note struct {
	Text string
}

func (n note) String() string { return n.Text }

func (n note) MarshalBinary() ([]byte, error) {
	return []byte(n.Text), nil
}

type noteDesc struct {
	capability.Base
	capability.Display
	capability.Serialize
}

func (noteDesc) DeserializeOwned(data []byte) (any, error) {
	return note{Text: string(data)}, nil
}

func TestFromValue_RoundTrip(t *testing.T) {
	box := FromValue(capability.Ordered{}, 42)

	if box.PointerKind() != SmartPointer {
		t.Fatal("owned box must be a smart pointer")
	}
	if !box.Alive() {
		t.Fatal("fresh box must be alive")
	}

	n, err := IntoConcrete[int](box)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if *n != 42 {
		t.Fatalf("recovered %d, want 42", *n)
	}
	if box.Alive() {
		t.Fatal("recovery must consume the box")
	}
}

func TestFromPtr_RoundTrip(t *testing.T) {
	v := note{Text: "hi"}
	box := FromPtr(noteDesc{}, &v)

	got, err := IntoConcrete[note](box)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if got != &v {
		t.Fatal("FromPtr must erase the original pointer, not a copy")
	}
}

func TestFromAnyValue_RoundTrip(t *testing.T) {
	box := FromAnyValue(capability.Ordered{}, 7)

	if _, err := IntoConcrete[int](box); err == nil {
		t.Fatal("exact recovery must reject a structurally keyed box")
	}
	if _, err := IntoConcreteAny[int](FromValue(capability.Ordered{}, 7)); err == nil {
		t.Fatal("structural recovery must reject an exactly keyed box")
	}
	if !box.Alive() {
		t.Fatal("failed recovery must not consume the box")
	}

	n, err := IntoConcreteAny[int](box)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if *n != 7 {
		t.Fatalf("recovered %d, want 7", *n)
	}
}

func TestRecovery_WrongTypeLeavesBoxUsable(t *testing.T) {
	box := FromValue(capability.Ordered{}, 42)
	defer box.Release()

	_, err := IntoConcrete[string](box)
	if err == nil {
		t.Fatal("want recovery error")
	}
	var rerr *anyerrors.RecoveryError
	if !errors.As(err, &rerr) {
		t.Fatalf("error %T, want *errors.RecoveryError", err)
	}
	if rerr.FoundTableAddr != box.Table().Addr() {
		t.Fatal("diagnostic must carry the box's table address")
	}
	if rerr.IntoInner() != box {
		t.Fatal("inner value must be the untouched container")
	}

	// The failed attempt must not have broken the container.
	n, err := IntoConcrete[int](box)
	if err != nil {
		t.Fatalf("second recovery: %v", err)
	}
	if *n != 42 {
		t.Fatalf("recovered %d, want 42", *n)
	}
}

func TestOpaque_NeverRecovers(t *testing.T) {
	op := FromBorrowingValue(noteDesc{}, note{Text: "secret"})
	defer op.Release()

	if got := Display(op); got != "secret" {
		t.Fatalf("display = %q", got)
	}

	// Opaque containers have no recovery functions, and reborrowing keeps
	// the opaque mode, so the view has none either.
	v := ReborrowOpaque(op)
	if got := Display(v); got != "secret" {
		t.Fatalf("view display = %q", got)
	}
	if v.PointerKind() != RawReference {
		t.Fatal("opaque view must be a raw reference")
	}
	v.Release()
	if got := Display(op); got != "secret" {
		t.Fatalf("source after view release: display = %q", got)
	}
}

func TestRelease_RunsDestructorOnce(t *testing.T) {
	drops := 0
	box := FromValue(capability.Plain{}, dropTracked{N: 1, drops: &drops})

	box.Release()
	box.Release()
	if drops != 1 {
		t.Fatalf("drops = %d, want 1", drops)
	}
}

func TestReborrow_NoDoubleDestruction(t *testing.T) {
	drops := 0
	box := FromValue(capability.Plain{}, dropTracked{N: 1, drops: &drops})

	r := Reborrow(box)
	if r.PointerKind() != RawReference {
		t.Fatal("reborrowed view must be a raw reference")
	}
	m := ReborrowMut(box)

	r.Release()
	m.Release()
	if drops != 0 {
		t.Fatal("releasing views must not destroy the value")
	}

	box.Release()
	if drops != 1 {
		t.Fatalf("drops = %d, want 1", drops)
	}
}

func TestIntoConcrete_SkipsDestructor(t *testing.T) {
	drops := 0
	box := FromValue(capability.Plain{}, dropTracked{N: 1, drops: &drops})

	v, err := IntoConcrete[dropTracked](box)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	box.Release()
	if drops != 0 {
		t.Fatal("ownership transfer must not run the destructor")
	}
	if v.N != 1 {
		t.Fatalf("recovered N = %d", v.N)
	}
}

func TestAsConcreteMut_MutatesInPlace(t *testing.T) {
	box := FromValue(capability.Ordered{}, 10)
	defer box.Release()

	p, err := AsConcreteMut[int](box)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	*p = 11

	r := Reborrow(box)
	q, err := AsConcrete[int](r)
	if err != nil {
		t.Fatalf("view recover: %v", err)
	}
	if *q != 11 {
		t.Fatalf("view sees %d, want 11", *q)
	}
}

func TestDeserialize_RoundTrip(t *testing.T) {
	box, err := Deserialize(noteDesc{}, []byte("from the wire"))
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	defer box.Release()

	data, err := Serialize(box)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if string(data) != "from the wire" {
		t.Fatalf("round trip = %q", data)
	}

	n, err := IntoConcreteAny[note](box)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if n.Text != "from the wire" {
		t.Fatalf("recovered %q", n.Text)
	}
}

func TestWithExtraTable(t *testing.T) {
	box := FromValue(capability.Plain{}, note{Text: "plain"}, WithExtraTable(noteDesc{}))
	defer box.Release()

	extra := box.ExtraTable()
	if extra == nil {
		t.Fatal("extra table missing")
	}
	if !extra.Spec().Display || !extra.Spec().Serialize {
		t.Fatalf("extra capabilities = %s", extra.Spec())
	}
	if box.Table().Spec().Display {
		t.Fatal("primary table must keep the primary descriptor's capabilities")
	}
}

func TestUseAfterRelease_Panics(t *testing.T) {
	box := FromValue(noteDesc{}, note{Text: "gone"})
	box.Release()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("capability call after release must panic")
		}
		err, ok := r.(*anyerrors.Error)
		if !ok || err.Kind != anyerrors.KindNilPointer {
			t.Fatalf("panic value %v", r)
		}
	}()
	Display(box)
}
