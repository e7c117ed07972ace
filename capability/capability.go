package capability

import "reflect"

// Descriptor is the contract satisfied by every capability descriptor.
// Implement it by embedding Base; descriptors are zero-sized and carry no
// runtime state.
type Descriptor interface {
	anyboxDescriptor()
}

// Base makes an embedding struct a Descriptor.
type Base struct{}

func (Base) anyboxDescriptor() {}

// Capability mixins. Embedding one advertises the capability; the matching
// Has* marker interface is satisfied only through the embedded mixin.

// Send advertises that containers may be handed to another goroutine.
type Send struct{}

func (Send) capSend() {}

// HasSend marks descriptors embedding Send.
type HasSend interface {
	Descriptor
	capSend()
}

// Sync advertises that containers may be shared between goroutines.
type Sync struct{}

func (Sync) capSync() {}

// HasSync marks descriptors embedding Sync.
type HasSync interface {
	Descriptor
	capSync()
}

// Clone advertises duplication of the wrapped value.
type Clone struct{}

func (Clone) capClone() {}

// HasClone marks descriptors embedding Clone.
type HasClone interface {
	Descriptor
	capClone()
}

// Default advertises construction of a fresh default value.
type Default struct{}

func (Default) capDefault() {}

// HasDefault marks descriptors embedding Default.
type HasDefault interface {
	Descriptor
	capDefault()
}

// Eq advertises total equality. It implies PartialEq.
type Eq struct {
	PartialEq
}

func (Eq) capEq() {}

// HasEq marks descriptors embedding Eq.
type HasEq interface {
	HasPartialEq
	capEq()
}

// PartialEq advertises partial equality.
type PartialEq struct{}

func (PartialEq) capPartialEq() {}

// HasPartialEq marks descriptors embedding PartialEq.
type HasPartialEq interface {
	Descriptor
	capPartialEq()
}

// Ord advertises total ordering. It implies PartialOrd.
type Ord struct {
	PartialOrd
}

func (Ord) capOrd() {}

// HasOrd marks descriptors embedding Ord.
type HasOrd interface {
	HasPartialOrd
	capOrd()
}

// PartialOrd advertises partial ordering.
type PartialOrd struct{}

func (PartialOrd) capPartialOrd() {}

// HasPartialOrd marks descriptors embedding PartialOrd.
type HasPartialOrd interface {
	Descriptor
	capPartialOrd()
}

// Hash advertises hashing.
type Hash struct{}

func (Hash) capHash() {}

// HasHash marks descriptors embedding Hash.
type HasHash interface {
	Descriptor
	capHash()
}

// Display advertises human-readable formatting (the value must be a
// fmt.Stringer).
type Display struct{}

func (Display) capDisplay() {}

// HasDisplay marks descriptors embedding Display.
type HasDisplay interface {
	Descriptor
	capDisplay()
}

// Debug advertises developer-facing formatting.
type Debug struct{}

func (Debug) capDebug() {}

// HasDebug marks descriptors embedding Debug.
type HasDebug interface {
	Descriptor
	capDebug()
}

// FmtWrite advertises formatted text writing (io.StringWriter).
type FmtWrite struct{}

func (FmtWrite) capFmtWrite() {}

// HasFmtWrite marks descriptors embedding FmtWrite.
type HasFmtWrite interface {
	Descriptor
	capFmtWrite()
}

// Write advertises byte writing (io.Writer).
type Write struct{}

func (Write) capWrite() {}

// HasWrite marks descriptors embedding Write.
type HasWrite interface {
	Descriptor
	capWrite()
}

// Read advertises byte reading (io.Reader).
type Read struct{}

func (Read) capRead() {}

// HasRead marks descriptors embedding Read.
type HasRead interface {
	Descriptor
	capRead()
}

// BufRead advertises buffered reading (Peek/Discard).
type BufRead struct{}

func (BufRead) capBufRead() {}

// HasBufRead marks descriptors embedding BufRead.
type HasBufRead interface {
	Descriptor
	capBufRead()
}

// Seek advertises stream seeking (io.Seeker).
type Seek struct{}

func (Seek) capSeek() {}

// HasSeek marks descriptors embedding Seek.
type HasSeek interface {
	Descriptor
	capSeek()
}

// Serialize advertises serialization via encoding.BinaryMarshaler.
type Serialize struct{}

func (Serialize) capSerialize() {}

// HasSerialize marks descriptors embedding Serialize.
type HasSerialize interface {
	Descriptor
	capSerialize()
}

// Iter advertises iteration with item type It.
type Iter[It any] struct{}

func (Iter[It]) capIterator()           {}
func (Iter[It]) capIteratorItem(It)     {}
func (Iter[It]) IterItem() reflect.Type { return reflect.TypeFor[It]() }

// HasIterator marks descriptors embedding Iter, erasing the item type.
type HasIterator interface {
	Descriptor
	capIterator()
	IterItem() reflect.Type
}

// IterableOver ties a descriptor to its iteration item type.
type IterableOver[It any] interface {
	HasIterator
	capIteratorItem(It)
}

// DoubleEnded advertises double-ended iteration with item type It.
// It implies Iter[It].
type DoubleEnded[It any] struct {
	Iter[It]
}

func (DoubleEnded[It]) capDoubleEnded()       {}
func (DoubleEnded[It]) capDoubleEndedItem(It) {}

// HasDoubleEnded marks descriptors embedding DoubleEnded.
type HasDoubleEnded interface {
	HasIterator
	capDoubleEnded()
}

// DoubleEndedOver ties a descriptor to its double-ended item type.
type DoubleEndedOver[It any] interface {
	IterableOver[It]
	capDoubleEnded()
	capDoubleEndedItem(It)
}

// DeserializerOwned is implemented by descriptors that can deserialize a
// byte slice into a fully owned concrete value. The descriptor, not the
// concrete type, owns deserialization, so version skew between components is
// the descriptor author's policy to resolve.
type DeserializerOwned interface {
	Descriptor
	DeserializeOwned(data []byte) (any, error)
}

// DeserializerBorrowed is implemented by descriptors whose deserialized
// values borrow from the input bytes; containers produced from them are
// permanently opaque.
type DeserializerBorrowed interface {
	Descriptor
	DeserializeBorrowed(data []byte) (any, error)
}
