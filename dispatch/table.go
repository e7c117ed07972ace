package dispatch

import (
	"hash/maphash"
	"unsafe"

	"github.com/anybox/anybox/capability"
	"github.com/anybox/anybox/layout"
	"github.com/anybox/anybox/typeid"
)

// Mode records how strong an identity the table carries for later recovery.
type Mode uint8

const (
	// ModeExact tables name the exact source type; recovery through them
	// produces the best diagnostics.
	ModeExact Mode = iota
	// ModeAny tables are keyed by type and descriptor; recovery uses the
	// looser, descriptor-parameterized check where it can.
	ModeAny
	// ModeOpaque tables back containers that can never be recovered.
	ModeOpaque
)

// String renders the mode for diagnostics.
func (m Mode) String() string {
	switch m {
	case ModeExact:
		return "exact"
	case ModeAny:
		return "any"
	case ModeOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Slots is the function record of a dispatch table. It evolves additively:
// everything before FmtWrite is the stable prefix, guaranteed present in any
// version of the table; FmtWrite and later were appended by newer versions
// and must be accessed through the checked Table accessors.
//
// A slot is non-nil exactly when the table's capability descriptor
// advertises the matching capability.
type Slots struct {
	Drop         func(p unsafe.Pointer, callDestructor, releaseStorage bool)
	DefaultNew   func() unsafe.Pointer
	Clone        func(p unsafe.Pointer) unsafe.Pointer
	Display      func(p unsafe.Pointer) string
	Debug        func(p unsafe.Pointer) string
	Eq           func(a, b unsafe.Pointer) bool
	Cmp          func(a, b unsafe.Pointer) int
	Hash         func(p unsafe.Pointer, seed maphash.Seed) uint64
	IterNext     func(p unsafe.Pointer) (any, bool)
	IterNth      func(p unsafe.Pointer, n int) (any, bool)
	IterSizeHint func(p unsafe.Pointer) (lo, hi int, bounded bool)
	IterNextBack func(p unsafe.Pointer) (any, bool)

	FmtWrite   func(p unsafe.Pointer, s string) error `abi:"suffix"`
	IoWrite    func(p unsafe.Pointer, b []byte) (int, error)
	IoFlush    func(p unsafe.Pointer) error
	IoRead     func(p unsafe.Pointer, b []byte) (int, error)
	BufPeek    func(p unsafe.Pointer, n int) ([]byte, error)
	BufDiscard func(p unsafe.Pointer, n int) (int, error)
	IoSeek     func(p unsafe.Pointer, offset int64, whence int) (int64, error)
	Serialize  func(p unsafe.Pointer) ([]byte, error)
}

// Slot indexes, in Slots declaration order.
const (
	SlotDrop = iota
	SlotDefaultNew
	SlotClone
	SlotDisplay
	SlotDebug
	SlotEq
	SlotCmp
	SlotHash
	SlotIterNext
	SlotIterNth
	SlotIterSizeHint
	SlotIterNextBack

	SlotFmtWrite
	SlotIoWrite
	SlotIoFlush
	SlotIoRead
	SlotBufPeek
	SlotBufDiscard
	SlotIoSeek
	SlotSerialize

	slotCount
)

// PrefixSlotCount is the number of slots guaranteed present in every version
// of the table.
const PrefixSlotCount = SlotFmtWrite

// SlotsLayout returns the layout descriptor of the Slots record.
func SlotsLayout() *layout.Descriptor {
	return layout.DescribeFor[Slots]()
}

// Table pairs a concrete type's identity with the function slots
// implementing its advertised capabilities. Tables are immutable after
// construction and shared process-wide.
type Table struct {
	key    *typeid.Key
	spec   capability.Spec
	mode   Mode
	stored int
	slots  Slots
}

// Key returns the identity of the erased concrete type.
func (t *Table) Key() *typeid.Key {
	return t.key
}

// Spec returns the capability flags the table was built against.
func (t *Table) Spec() capability.Spec {
	return t.spec
}

// Mode returns the table's recovery mode.
func (t *Table) Mode() Mode {
	return t.mode
}

// StoredFields implements layout.Evolved: the true slot count of this
// instance, possibly smaller than slotCount when the table was built by an
// older component.
func (t *Table) StoredFields() int {
	return t.stored
}

// View returns the bounds-checked layout view over this table's slots.
func (t *Table) View() layout.View {
	return layout.NewView(SlotsLayout(), t.stored)
}

// Addr returns the table's address. Registry uniqueness makes it usable as
// cheap identity and as the arbitrary-but-total cross-type ordering key.
func (t *Table) Addr() uintptr {
	return uintptr(unsafe.Pointer(t))
}

// ensure panics with a MissingFieldError when slot i is past the stored
// count. Prefix slots never trip it.
func (t *Table) ensure(i int) {
	if i >= t.stored {
		t.View().MustField(i)
	}
}

// Prefix slot accessors.

func (t *Table) Drop() func(p unsafe.Pointer, callDestructor, releaseStorage bool) {
	return t.slots.Drop
}

func (t *Table) DefaultNew() func() unsafe.Pointer {
	return t.slots.DefaultNew
}

func (t *Table) Clone() func(p unsafe.Pointer) unsafe.Pointer {
	return t.slots.Clone
}

func (t *Table) Display() func(p unsafe.Pointer) string {
	return t.slots.Display
}

func (t *Table) Debug() func(p unsafe.Pointer) string {
	return t.slots.Debug
}

func (t *Table) Eq() func(a, b unsafe.Pointer) bool {
	return t.slots.Eq
}

func (t *Table) Cmp() func(a, b unsafe.Pointer) int {
	return t.slots.Cmp
}

func (t *Table) Hash() func(p unsafe.Pointer, seed maphash.Seed) uint64 {
	return t.slots.Hash
}

func (t *Table) IterNext() func(p unsafe.Pointer) (any, bool) {
	return t.slots.IterNext
}

func (t *Table) IterNth() func(p unsafe.Pointer, n int) (any, bool) {
	return t.slots.IterNth
}

func (t *Table) IterSizeHint() func(p unsafe.Pointer) (lo, hi int, bounded bool) {
	return t.slots.IterSizeHint
}

func (t *Table) IterNextBack() func(p unsafe.Pointer) (any, bool) {
	return t.slots.IterNextBack
}

// Suffix slot accessors: checked against the stored slot count.

func (t *Table) FmtWrite() func(p unsafe.Pointer, s string) error {
	t.ensure(SlotFmtWrite)
	return t.slots.FmtWrite
}

func (t *Table) IoWrite() func(p unsafe.Pointer, b []byte) (int, error) {
	t.ensure(SlotIoWrite)
	return t.slots.IoWrite
}

func (t *Table) IoFlush() func(p unsafe.Pointer) error {
	t.ensure(SlotIoFlush)
	return t.slots.IoFlush
}

func (t *Table) IoRead() func(p unsafe.Pointer, b []byte) (int, error) {
	t.ensure(SlotIoRead)
	return t.slots.IoRead
}

func (t *Table) BufPeek() func(p unsafe.Pointer, n int) ([]byte, error) {
	t.ensure(SlotBufPeek)
	return t.slots.BufPeek
}

func (t *Table) BufDiscard() func(p unsafe.Pointer, n int) (int, error) {
	t.ensure(SlotBufDiscard)
	return t.slots.BufDiscard
}

func (t *Table) IoSeek() func(p unsafe.Pointer, offset int64, whence int) (int64, error) {
	t.ensure(SlotIoSeek)
	return t.slots.IoSeek
}

func (t *Table) Serialize() func(p unsafe.Pointer) ([]byte, error) {
	t.ensure(SlotSerialize)
	return t.slots.Serialize
}
