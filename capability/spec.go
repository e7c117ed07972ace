package capability

import (
	"reflect"
	"strings"
)

// Spec is the runtime summary of a descriptor's advertised capabilities,
// consumed by the dispatch table builder. Construct it with SpecOf; the
// flags always agree with the descriptor's marker interfaces.
type Spec struct {
	Send bool
	Sync bool

	Iterator            bool
	DoubleEndedIterator bool
	// IterItem is the iteration item type; nil unless Iterator.
	IterItem reflect.Type

	Display bool
	Debug   bool

	Clone   bool
	Default bool

	Eq         bool
	PartialEq  bool
	Ord        bool
	PartialOrd bool
	Hash       bool

	FmtWrite bool
	Write    bool
	Read     bool
	BufRead  bool
	Seek     bool

	Serialize           bool
	DeserializeOwned    bool
	DeserializeBorrowed bool
}

// SpecOf derives the capability flags of a descriptor from the marker
// interfaces its mixins satisfy.
func SpecOf(d Descriptor) Spec {
	var s Spec

	if _, ok := d.(HasSend); ok {
		s.Send = true
	}
	if _, ok := d.(HasSync); ok {
		s.Sync = true
	}
	if it, ok := d.(HasIterator); ok {
		s.Iterator = true
		s.IterItem = it.IterItem()
	}
	if _, ok := d.(HasDoubleEnded); ok {
		s.DoubleEndedIterator = true
	}
	if _, ok := d.(HasDisplay); ok {
		s.Display = true
	}
	if _, ok := d.(HasDebug); ok {
		s.Debug = true
	}
	if _, ok := d.(HasClone); ok {
		s.Clone = true
	}
	if _, ok := d.(HasDefault); ok {
		s.Default = true
	}
	if _, ok := d.(HasEq); ok {
		s.Eq = true
		s.PartialEq = true
	}
	if _, ok := d.(HasPartialEq); ok {
		s.PartialEq = true
	}
	if _, ok := d.(HasOrd); ok {
		s.Ord = true
		s.PartialOrd = true
	}
	if _, ok := d.(HasPartialOrd); ok {
		s.PartialOrd = true
	}
	if _, ok := d.(HasHash); ok {
		s.Hash = true
	}
	if _, ok := d.(HasFmtWrite); ok {
		s.FmtWrite = true
	}
	if _, ok := d.(HasWrite); ok {
		s.Write = true
	}
	if _, ok := d.(HasRead); ok {
		s.Read = true
	}
	if _, ok := d.(HasBufRead); ok {
		s.BufRead = true
	}
	if _, ok := d.(HasSeek); ok {
		s.Seek = true
	}
	if _, ok := d.(HasSerialize); ok {
		s.Serialize = true
	}
	if _, ok := d.(DeserializerOwned); ok {
		s.DeserializeOwned = true
	}
	if _, ok := d.(DeserializerBorrowed); ok {
		s.DeserializeBorrowed = true
	}

	return s
}

// Names lists the enabled capabilities, for logging and diagnostics.
func (s Spec) Names() []string {
	var out []string
	add := func(on bool, name string) {
		if on {
			out = append(out, name)
		}
	}
	add(s.Send, "send")
	add(s.Sync, "sync")
	add(s.Iterator, "iterator")
	add(s.DoubleEndedIterator, "double_ended_iterator")
	add(s.Display, "display")
	add(s.Debug, "debug")
	add(s.Clone, "clone")
	add(s.Default, "default")
	add(s.Eq, "eq")
	add(s.PartialEq, "partial_eq")
	add(s.Ord, "ord")
	add(s.PartialOrd, "partial_ord")
	add(s.Hash, "hash")
	add(s.FmtWrite, "fmt_write")
	add(s.Write, "write")
	add(s.Read, "read")
	add(s.BufRead, "buf_read")
	add(s.Seek, "seek")
	add(s.Serialize, "serialize")
	add(s.DeserializeOwned, "deserialize_owned")
	add(s.DeserializeBorrowed, "deserialize_borrowed")
	return out
}

// String renders the enabled capabilities as a comma-separated list.
func (s Spec) String() string {
	return strings.Join(s.Names(), ",")
}
