package dispatch

import (
	"hash/maphash"
	"reflect"
	"strings"
	"testing"
	"unsafe"

	"github.com/anybox/anybox/capability"
	"github.com/anybox/anybox/errors"
)

type tracked struct {
	N       int
	dropped *int
}

func (t *tracked) Drop() {
	if t.dropped != nil {
		*t.dropped++
	}
}

type counter struct {
	N int
}

func (c counter) String() string { return "counter" }

func (c counter) Clone() counter { return counter{N: c.N + 100} }

func (c counter) MarshalBinary() ([]byte, error) {
	return []byte{byte(c.N)}, nil
}

type upto struct {
	Cur, Max int
}

func (u *upto) Next() (int, bool) {
	if u.Cur > u.Max {
		return 0, false
	}
	v := u.Cur
	u.Cur++
	return v, true
}

func (u *upto) NextBack() (int, bool) {
	if u.Max < u.Cur {
		return 0, false
	}
	v := u.Max
	u.Max--
	return v, true
}

func (u *upto) Len() int { return u.Max - u.Cur + 1 }

type serdes struct {
	capability.Base
	capability.Serialize
	capability.Display
	capability.Clone
	capability.Default
}

func TestSlotsLayout_PrefixSplit(t *testing.T) {
	d := SlotsLayout()
	if d.DeclaredFieldCount() != slotCount {
		t.Fatalf("declared slots = %d, want %d", d.DeclaredFieldCount(), slotCount)
	}
	if d.PrefixFieldCount != PrefixSlotCount {
		t.Fatalf("prefix = %d, want %d", d.PrefixFieldCount, PrefixSlotCount)
	}
	if f := d.Fields[SlotFmtWrite]; f.Name != "FmtWrite" {
		t.Fatalf("first suffix field = %q, want FmtWrite", f.Name)
	}
}

func TestForType_SingleInstancePerKey(t *testing.T) {
	a := For[counter](serdes{}, ModeExact)
	b := For[counter](serdes{}, ModeExact)
	if a != b {
		t.Fatal("same key tuple must return the same table pointer")
	}

	c := For[counter](serdes{}, ModeAny)
	if a == c {
		t.Fatal("differing mode must produce a distinct table")
	}
	if a.Mode() != ModeExact || c.Mode() != ModeAny {
		t.Fatalf("modes = %s/%s, want exact/any", a.Mode(), c.Mode())
	}
}

func TestTable_BasicSlots(t *testing.T) {
	tbl := For[counter](serdes{}, ModeExact)

	v := counter{N: 7}
	p := unsafe.Pointer(&v)

	if got := tbl.Display()(p); got != "counter" {
		t.Fatalf("display = %q", got)
	}

	data, err := tbl.Serialize()(p)
	if err != nil || len(data) != 1 || data[0] != 7 {
		t.Fatalf("serialize = %v, %v", data, err)
	}

	cp := tbl.Clone()(p)
	if got := (*counter)(cp).N; got != 107 {
		t.Fatalf("clone used wrong path: N = %d, want 107 via Clone method", got)
	}

	dp := tbl.DefaultNew()()
	if got := (*counter)(dp).N; got != 0 {
		t.Fatalf("default N = %d, want 0", got)
	}
}

func TestTable_CloneFallbackCopy(t *testing.T) {
	type pair struct{ A, B int }
	tbl := For[pair](capability.Cloneable{}, ModeExact)

	v := pair{A: 1, B: 2}
	cp := tbl.Clone()(unsafe.Pointer(&v))
	if *(*pair)(cp) != v {
		t.Fatal("fallback clone must copy the value")
	}
	(*pair)(cp).A = 9
	if v.A != 1 {
		t.Fatal("clone must not alias the source")
	}
}

func TestTable_EqCmpHash(t *testing.T) {
	tbl := For[int](capability.Ordered{}, ModeExact)

	a, b, c := 1, 1, 2
	pa, pb, pc := unsafe.Pointer(&a), unsafe.Pointer(&b), unsafe.Pointer(&c)

	if !tbl.Eq()(pa, pb) || tbl.Eq()(pa, pc) {
		t.Fatal("eq slot wrong")
	}
	if tbl.Cmp()(pa, pc) >= 0 || tbl.Cmp()(pc, pa) <= 0 || tbl.Cmp()(pa, pb) != 0 {
		t.Fatal("cmp slot wrong")
	}

	seed := maphash.MakeSeed()
	if tbl.Hash()(pa, seed) != tbl.Hash()(pb, seed) {
		t.Fatal("equal values must hash equal")
	}
}

func TestTable_IteratorSlots(t *testing.T) {
	tbl := For[upto](capability.DEIteration[int]{}, ModeExact)

	u := upto{Cur: 0, Max: 5}
	p := unsafe.Pointer(&u)

	if v, ok := tbl.IterNext()(p); !ok || v != 0 {
		t.Fatalf("next = %v, %v", v, ok)
	}
	if v, ok := tbl.IterNth()(p, 2); !ok || v != 3 {
		t.Fatalf("nth(2) = %v, %v, want 3", v, ok)
	}
	if v, ok := tbl.IterNextBack()(p); !ok || v != 5 {
		t.Fatalf("next_back = %v, %v, want 5", v, ok)
	}
	lo, hi, bounded := tbl.IterSizeHint()(p)
	if !bounded || lo != 1 || hi != 1 {
		t.Fatalf("size hint = %d,%d,%v, want 1,1,true via Len", lo, hi, bounded)
	}
}

func TestTable_DropFlags(t *testing.T) {
	tbl := For[tracked](capability.Plain{}, ModeExact)

	drops := 0
	v := tracked{N: 1, dropped: &drops}
	p := unsafe.Pointer(&v)

	tbl.Drop()(p, false, true)
	if drops != 0 {
		t.Fatal("destructor ran despite callDestructor=false")
	}
	tbl.Drop()(p, true, false)
	if drops != 1 {
		t.Fatal("destructor did not run")
	}
}

func TestBuild_OlderComponentTable(t *testing.T) {
	// Simulate a table built by a component compiled against the 1.0.0
	// prefix-only slot record.
	rt := reflect.TypeFor[strings.Builder]()
	old := build(rt, capability.TextWriter{}, ModeExact, PrefixSlotCount)

	if old.StoredFields() != PrefixSlotCount {
		t.Fatalf("stored = %d, want %d", old.StoredFields(), PrefixSlotCount)
	}

	// Prefix slots are accessible regardless of which version built the table.
	if old.Drop() == nil {
		t.Fatal("drop slot missing from prefix")
	}
	for i := 0; i < PrefixSlotCount; i++ {
		if _, ok := old.View().Field(i); !ok {
			t.Fatalf("prefix slot %d must be present", i)
		}
	}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("suffix access on an older table must panic")
		}
		err, ok := r.(*errors.MissingFieldError)
		if !ok {
			t.Fatalf("panic value %T, want *errors.MissingFieldError", r)
		}
		if err.FieldName != "FmtWrite" || err.FieldIndex != SlotFmtWrite {
			t.Fatalf("diagnostic names %q/%d, want FmtWrite/%d", err.FieldName, err.FieldIndex, SlotFmtWrite)
		}
		if err.FoundFieldCount != PrefixSlotCount || err.ExpectedFieldCount != slotCount {
			t.Fatalf("counts %d/%d, want %d/%d", err.FoundFieldCount, err.ExpectedFieldCount, PrefixSlotCount, slotCount)
		}
	}()
	old.FmtWrite()
}

func TestBuild_UnsatisfiableCapabilityPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected build panic for display on a non-Stringer")
		}
		err, ok := r.(*errors.Error)
		if !ok {
			t.Fatalf("panic value %T, want *errors.Error", r)
		}
		if err.Phase != errors.PhaseBuild || err.Kind != errors.KindUnsupported {
			t.Fatalf("panic error = %s/%s", err.Phase, err.Kind)
		}
	}()
	For[struct{ X int }](capability.Printable{}, ModeExact)
}

func TestTables_Snapshot(t *testing.T) {
	For[counter](serdes{}, ModeExact)

	infos := Tables()
	found := false
	for _, info := range infos {
		if info.Type == reflect.TypeFor[counter]().String() && info.Mode == "exact" {
			found = true
			if info.DeclaredSlots != slotCount || info.StoredSlots != slotCount {
				t.Fatalf("slot counts = %d/%d", info.StoredSlots, info.DeclaredSlots)
			}
		}
	}
	if !found {
		t.Fatal("snapshot missing registered table")
	}
}
