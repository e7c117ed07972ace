package dispatch

import (
	"encoding"
	"fmt"
	"hash/maphash"
	"io"
	"reflect"
	"unsafe"

	"github.com/anybox/anybox/capability"
	"github.com/anybox/anybox/errors"
	"github.com/anybox/anybox/typeid"
)

// Dropper is the destructor hook for wrapped values. Values implementing
// neither Dropper nor io.Closer have a no-op destructor.
type Dropper interface {
	Drop()
}

type flusher interface {
	Flush() error
}

// peeker is the buffered-read surface; *bufio.Reader satisfies it.
type peeker interface {
	Peek(n int) ([]byte, error)
	Discard(n int) (int, error)
}

var (
	dropperType   = reflect.TypeFor[Dropper]()
	closerType    = reflect.TypeFor[io.Closer]()
	stringerType  = reflect.TypeFor[fmt.Stringer]()
	strWriterType = reflect.TypeFor[io.StringWriter]()
	writerType    = reflect.TypeFor[io.Writer]()
	readerType    = reflect.TypeFor[io.Reader]()
	seekerType    = reflect.TypeFor[io.Seeker]()
	flusherType   = reflect.TypeFor[flusher]()
	peekerType    = reflect.TypeFor[peeker]()
	marshalerType = reflect.TypeFor[encoding.BinaryMarshaler]()
	boolType      = reflect.TypeFor[bool]()
	intType       = reflect.TypeFor[int]()
)

// build constructs a table for rt against iface, populating the first
// stored slots. Production tables store every slot; a smaller count
// reproduces a table built by an older component.
func build(rt reflect.Type, iface capability.Descriptor, mode Mode, stored int) *Table {
	if stored < PrefixSlotCount {
		stored = PrefixSlotCount
	}
	if stored > slotCount {
		stored = slotCount
	}

	spec := capability.SpecOf(iface)
	t := &Table{
		key:    typeid.MintType(rt),
		spec:   spec,
		mode:   mode,
		stored: stored,
	}

	b := &slotBuilder{rt: rt, ptr: reflect.PointerTo(rt), iface: iface, spec: spec}

	t.slots.Drop = b.dropSlot()
	if spec.Default {
		t.slots.DefaultNew = b.defaultSlot()
	}
	if spec.Clone {
		t.slots.Clone = b.cloneSlot()
	}
	if spec.Display {
		t.slots.Display = b.displaySlot()
	}
	if spec.Debug {
		t.slots.Debug = b.debugSlot()
	}
	if spec.Eq || spec.PartialEq {
		t.slots.Eq = b.eqSlot()
	}
	if spec.Ord || spec.PartialOrd {
		t.slots.Cmp = b.cmpSlot()
	}
	if spec.Hash {
		t.slots.Hash = b.hashSlot()
	}
	if spec.Iterator {
		t.slots.IterNext = b.iterNextSlot()
		t.slots.IterNth = b.iterNthSlot(t.slots.IterNext)
		t.slots.IterSizeHint = b.iterSizeHintSlot()
	}
	if spec.DoubleEndedIterator {
		t.slots.IterNextBack = b.iterNextBackSlot()
	}

	// Suffix slots: only what this table's version stores.
	if spec.FmtWrite && SlotFmtWrite < stored {
		t.slots.FmtWrite = b.fmtWriteSlot()
	}
	if spec.Write && SlotIoWrite < stored {
		t.slots.IoWrite = b.ioWriteSlot()
	}
	if spec.Write && SlotIoFlush < stored {
		t.slots.IoFlush = b.ioFlushSlot()
	}
	if spec.Read && SlotIoRead < stored {
		t.slots.IoRead = b.ioReadSlot()
	}
	if spec.BufRead && SlotBufPeek < stored {
		t.slots.BufPeek, t.slots.BufDiscard = b.bufReadSlots()
	}
	if spec.Seek && SlotIoSeek < stored {
		t.slots.IoSeek = b.ioSeekSlot()
	}
	if spec.Serialize && SlotSerialize < stored {
		t.slots.Serialize = b.serializeSlot()
	}

	return t
}

type slotBuilder struct {
	rt    reflect.Type
	ptr   reflect.Type // *T
	iface capability.Descriptor
	spec  capability.Spec
}

// at reinterprets the erased pointer as *T.
func (b *slotBuilder) at(p unsafe.Pointer) reflect.Value {
	return reflect.NewAt(b.rt, p)
}

// unsatisfiable reports a capability the concrete type cannot provide. This
// is a programmer error in the construction call, not a runtime condition,
// so it panics.
func (b *slotBuilder) unsatisfiable(cap, needs string) {
	panic(errors.New(errors.PhaseBuild, errors.KindUnsupported).
		Path(cap).
		Expected(needs).
		Found(b.rt.String()).
		Detail("descriptor %T requires the %s capability", b.iface, cap).
		Build())
}

// requireIface panics the build when *T does not implement the interface a
// capability forwards through.
func (b *slotBuilder) requireIface(cap string, ifaceType reflect.Type) {
	if !b.ptr.Implements(ifaceType) {
		b.unsatisfiable(cap, ifaceType.String())
	}
}

func (b *slotBuilder) dropSlot() func(unsafe.Pointer, bool, bool) {
	hasDrop := b.ptr.Implements(dropperType)
	hasClose := b.ptr.Implements(closerType)
	return func(p unsafe.Pointer, callDestructor, releaseStorage bool) {
		// Releasing backing storage is the container's half of the contract:
		// it drops its reference and the collector reclaims the allocation.
		_ = releaseStorage
		if !callDestructor || p == nil {
			return
		}
		v := reflect.NewAt(b.rt, p)
		switch {
		case hasDrop:
			v.Interface().(Dropper).Drop()
		case hasClose:
			_ = v.Interface().(io.Closer).Close()
		}
	}
}

func (b *slotBuilder) defaultSlot() func() unsafe.Pointer {
	rt := b.rt
	return func() unsafe.Pointer {
		return reflect.New(rt).UnsafePointer()
	}
}

func (b *slotBuilder) cloneSlot() func(unsafe.Pointer) unsafe.Pointer {
	cloneIdx := -1
	if m, ok := b.ptr.MethodByName("Clone"); ok &&
		m.Type.NumIn() == 1 && m.Type.NumOut() == 1 && m.Type.Out(0) == b.rt {
		cloneIdx = m.Index
	}
	rt := b.rt
	return func(p unsafe.Pointer) unsafe.Pointer {
		dst := reflect.New(rt)
		src := reflect.NewAt(rt, p)
		if cloneIdx >= 0 {
			dst.Elem().Set(src.Method(cloneIdx).Call(nil)[0])
		} else {
			dst.Elem().Set(src.Elem())
		}
		return dst.UnsafePointer()
	}
}

func (b *slotBuilder) displaySlot() func(unsafe.Pointer) string {
	b.requireIface("display", stringerType)
	return func(p unsafe.Pointer) string {
		return b.at(p).Interface().(fmt.Stringer).String()
	}
}

func (b *slotBuilder) debugSlot() func(unsafe.Pointer) string {
	name := b.rt.String()
	return func(p unsafe.Pointer) string {
		return fmt.Sprintf("%s%+v", name, b.at(p).Elem().Interface())
	}
}

func (b *slotBuilder) eqSlot() func(a, bp unsafe.Pointer) bool {
	if b.rt.Comparable() {
		return func(a, bp unsafe.Pointer) bool {
			return b.at(a).Elem().Interface() == b.at(bp).Elem().Interface()
		}
	}
	if m, ok := b.ptr.MethodByName("Equal"); ok &&
		m.Type.NumIn() == 2 && m.Type.In(1) == b.rt &&
		m.Type.NumOut() == 1 && m.Type.Out(0) == boolType {
		idx := m.Index
		return func(a, bp unsafe.Pointer) bool {
			return b.at(a).Method(idx).Call([]reflect.Value{b.at(bp).Elem()})[0].Bool()
		}
	}
	b.unsatisfiable("eq", "comparable type or Equal method")
	return nil
}

func (b *slotBuilder) cmpSlot() func(a, bp unsafe.Pointer) int {
	if m, ok := b.ptr.MethodByName("Compare"); ok &&
		m.Type.NumIn() == 2 && m.Type.In(1) == b.rt &&
		m.Type.NumOut() == 1 && m.Type.Out(0) == intType {
		idx := m.Index
		return func(a, bp unsafe.Pointer) int {
			return int(b.at(a).Method(idx).Call([]reflect.Value{b.at(bp).Elem()})[0].Int())
		}
	}

	switch b.rt.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(a, bp unsafe.Pointer) int {
			x, y := b.at(a).Elem().Int(), b.at(bp).Elem().Int()
			return compareOrdered(x, y)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return func(a, bp unsafe.Pointer) int {
			x, y := b.at(a).Elem().Uint(), b.at(bp).Elem().Uint()
			return compareOrdered(x, y)
		}
	case reflect.Float32, reflect.Float64:
		return func(a, bp unsafe.Pointer) int {
			x, y := b.at(a).Elem().Float(), b.at(bp).Elem().Float()
			return compareOrdered(x, y)
		}
	case reflect.String:
		return func(a, bp unsafe.Pointer) int {
			x, y := b.at(a).Elem().String(), b.at(bp).Elem().String()
			return compareOrdered(x, y)
		}
	}

	b.unsatisfiable("ord", "ordered kind or Compare method")
	return nil
}

func compareOrdered[T int64 | uint64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (b *slotBuilder) hashSlot() func(unsafe.Pointer, maphash.Seed) uint64 {
	rt := b.rt
	return func(p unsafe.Pointer, seed maphash.Seed) uint64 {
		var h maphash.Hash
		h.SetSeed(seed)
		fmt.Fprintf(&h, "%v", reflect.NewAt(rt, p).Elem().Interface())
		return h.Sum64()
	}
}

// iterMethod validates a `func() (Item, bool)` iteration method against the
// descriptor's item type.
func (b *slotBuilder) iterMethod(cap, name string) int {
	m, ok := b.ptr.MethodByName(name)
	if !ok || m.Type.NumIn() != 1 || m.Type.NumOut() != 2 ||
		m.Type.Out(0) != b.spec.IterItem || m.Type.Out(1) != boolType {
		b.unsatisfiable(cap, fmt.Sprintf("method %s() (%s, bool)", name, b.spec.IterItem))
	}
	return m.Index
}

func (b *slotBuilder) iterNextSlot() func(unsafe.Pointer) (any, bool) {
	idx := b.iterMethod("iterator", "Next")
	rt := b.rt
	return func(p unsafe.Pointer) (any, bool) {
		out := reflect.NewAt(rt, p).Method(idx).Call(nil)
		return out[0].Interface(), out[1].Bool()
	}
}

func (b *slotBuilder) iterNextBackSlot() func(unsafe.Pointer) (any, bool) {
	idx := b.iterMethod("double_ended_iterator", "NextBack")
	rt := b.rt
	return func(p unsafe.Pointer) (any, bool) {
		out := reflect.NewAt(rt, p).Method(idx).Call(nil)
		return out[0].Interface(), out[1].Bool()
	}
}

func (b *slotBuilder) iterNthSlot(next func(unsafe.Pointer) (any, bool)) func(unsafe.Pointer, int) (any, bool) {
	if m, ok := b.ptr.MethodByName("Nth"); ok &&
		m.Type.NumIn() == 2 && m.Type.In(1) == intType &&
		m.Type.NumOut() == 2 && m.Type.Out(0) == b.spec.IterItem && m.Type.Out(1) == boolType {
		idx := m.Index
		rt := b.rt
		return func(p unsafe.Pointer, n int) (any, bool) {
			out := reflect.NewAt(rt, p).Method(idx).Call([]reflect.Value{reflect.ValueOf(n)})
			return out[0].Interface(), out[1].Bool()
		}
	}
	return func(p unsafe.Pointer, n int) (any, bool) {
		for ; n > 0; n-- {
			if _, ok := next(p); !ok {
				return nil, false
			}
		}
		return next(p)
	}
}

func (b *slotBuilder) iterSizeHintSlot() func(unsafe.Pointer) (int, int, bool) {
	rt := b.rt
	if m, ok := b.ptr.MethodByName("SizeHint"); ok &&
		m.Type.NumIn() == 1 && m.Type.NumOut() == 3 &&
		m.Type.Out(0) == intType && m.Type.Out(1) == intType && m.Type.Out(2) == boolType {
		idx := m.Index
		return func(p unsafe.Pointer) (int, int, bool) {
			out := reflect.NewAt(rt, p).Method(idx).Call(nil)
			return int(out[0].Int()), int(out[1].Int()), out[2].Bool()
		}
	}
	if m, ok := b.ptr.MethodByName("Len"); ok &&
		m.Type.NumIn() == 1 && m.Type.NumOut() == 1 && m.Type.Out(0) == intType {
		idx := m.Index
		return func(p unsafe.Pointer) (int, int, bool) {
			n := int(reflect.NewAt(rt, p).Method(idx).Call(nil)[0].Int())
			return n, n, true
		}
	}
	return func(unsafe.Pointer) (int, int, bool) {
		return 0, 0, false
	}
}

func (b *slotBuilder) fmtWriteSlot() func(unsafe.Pointer, string) error {
	b.requireIface("fmt_write", strWriterType)
	return func(p unsafe.Pointer, s string) error {
		_, err := b.at(p).Interface().(io.StringWriter).WriteString(s)
		return err
	}
}

func (b *slotBuilder) ioWriteSlot() func(unsafe.Pointer, []byte) (int, error) {
	b.requireIface("write", writerType)
	return func(p unsafe.Pointer, buf []byte) (int, error) {
		return b.at(p).Interface().(io.Writer).Write(buf)
	}
}

func (b *slotBuilder) ioFlushSlot() func(unsafe.Pointer) error {
	if !b.ptr.Implements(flusherType) {
		return func(unsafe.Pointer) error { return nil }
	}
	return func(p unsafe.Pointer) error {
		return b.at(p).Interface().(flusher).Flush()
	}
}

func (b *slotBuilder) ioReadSlot() func(unsafe.Pointer, []byte) (int, error) {
	b.requireIface("read", readerType)
	return func(p unsafe.Pointer, buf []byte) (int, error) {
		return b.at(p).Interface().(io.Reader).Read(buf)
	}
}

func (b *slotBuilder) bufReadSlots() (func(unsafe.Pointer, int) ([]byte, error), func(unsafe.Pointer, int) (int, error)) {
	b.requireIface("buf_read", peekerType)
	peek := func(p unsafe.Pointer, n int) ([]byte, error) {
		return b.at(p).Interface().(peeker).Peek(n)
	}
	discard := func(p unsafe.Pointer, n int) (int, error) {
		return b.at(p).Interface().(peeker).Discard(n)
	}
	return peek, discard
}

func (b *slotBuilder) ioSeekSlot() func(unsafe.Pointer, int64, int) (int64, error) {
	b.requireIface("seek", seekerType)
	return func(p unsafe.Pointer, offset int64, whence int) (int64, error) {
		return b.at(p).Interface().(io.Seeker).Seek(offset, whence)
	}
}

func (b *slotBuilder) serializeSlot() func(unsafe.Pointer) ([]byte, error) {
	b.requireIface("serialize", marshalerType)
	return func(p unsafe.Pointer) ([]byte, error) {
		return b.at(p).Interface().(encoding.BinaryMarshaler).MarshalBinary()
	}
}
