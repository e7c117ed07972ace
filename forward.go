package anybox

import (
	"cmp"
	"hash/maphash"
	"io"

	"github.com/anybox/anybox/capability"
	"github.com/anybox/anybox/dispatch"
	"github.com/anybox/anybox/typeid"
)

// Free functions forwarding capability calls through the dispatch table.
// Each is gated at compile time on the descriptor's marker interface, so a
// call on a container whose descriptor lacks the capability does not build.

// Display formats the value the way its own Stringer would.
func Display[I capability.HasDisplay, M Mode](d *Dyn[I, M]) string {
	return d.tbl.Display()(d.ptr())
}

// Debug formats the value with its concrete type name and field values.
func Debug[I capability.HasDebug, M Mode](d *Dyn[I, M]) string {
	return d.tbl.Debug()(d.ptr())
}

// Equal compares two erased values. Values whose identities do not agree
// exactly are never equal; no capability call is made for them. Exact
// agreement, not prefix compatibility, is required because the Eq slot reads
// both referents under one compiled layout, and values erased by a borrowing
// constructor carry an identity that matches nothing, their own type
// included.
func Equal[I capability.HasPartialEq, MA, MB Mode](a *Dyn[I, MA], b *Dyn[I, MB]) bool {
	if !sameValueType(&a.core, &b.core) {
		return false
	}
	return a.tbl.Eq()(a.ptr(), b.ptr())
}

// Compare orders two erased values. Values of exactly the same identity
// order by their own comparison; everything else falls back to the address
// order of their dispatch tables, which is arbitrary but total and stable
// for the life of the process.
func Compare[I capability.HasPartialOrd, MA, MB Mode](a *Dyn[I, MA], b *Dyn[I, MB]) int {
	if sameValueType(&a.core, &b.core) {
		return a.tbl.Cmp()(a.ptr(), b.ptr())
	}
	return cmp.Compare(a.tbl.Addr(), b.tbl.Addr())
}

// sameValueType gates value-level Eq/Cmp dispatch. A suffix-evolved sibling
// sharing only the stable prefix must not be handed to a slot compiled for
// the full type, and opaque identities never match.
func sameValueType(a, b *core) bool {
	if a.tbl.Mode() == dispatch.ModeOpaque || b.tbl.Mode() == dispatch.ModeOpaque {
		return false
	}
	return typeid.SameIdentity(a.tbl.Key(), b.tbl.Key())
}

// Hash hashes the erased value with the given seed. Equal values produce
// equal hashes under the same seed.
func Hash[I capability.HasHash, M Mode](d *Dyn[I, M], seed maphash.Seed) uint64 {
	return d.tbl.Hash()(d.ptr(), seed)
}

// Clone duplicates the container. Owning containers get an independent copy
// of the value, produced by its Clone method when it has one. Borrowed views
// get another view of the same value.
func Clone[I capability.HasClone, M CloneableMode](d *Dyn[I, M]) *Dyn[I, M] {
	p := d.ptr()
	if d.flags&flagBorrowed != 0 {
		return &Dyn[I, M]{core: d.core}
	}
	obj := d.tbl.Clone()(p)
	return &Dyn[I, M]{core: core{obj: obj, tbl: d.tbl, extra: d.extra}}
}

// Default builds a new owned container holding the zero value of the same
// concrete type as d. Only owning containers can produce one; the result
// inherits d's identity mode, so recovery behaves the same on both.
func Default[I capability.HasDefault](d *Box[I]) *Box[I] {
	obj := d.tbl.DefaultNew()()
	return &Box[I]{core: core{obj: obj, tbl: d.tbl, extra: d.extra}}
}

// WriteString appends s to the erased text sink.
func WriteString[I capability.HasFmtWrite, M MutableMode](d *Dyn[I, M], s string) error {
	return d.tbl.FmtWrite()(d.ptr(), s)
}

// Write writes p to the erased byte sink.
func Write[I capability.HasWrite, M MutableMode](d *Dyn[I, M], p []byte) (int, error) {
	return d.tbl.IoWrite()(d.ptr(), p)
}

// WriteAll writes all of p, retrying short writes the way io.Writer
// contracts allow.
func WriteAll[I capability.HasWrite, M MutableMode](d *Dyn[I, M], p []byte) error {
	for len(p) > 0 {
		n, err := d.tbl.IoWrite()(d.ptr(), p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}

// Flush flushes the erased byte sink. Sinks without buffering treat it as a
// no-op.
func Flush[I capability.HasWrite, M MutableMode](d *Dyn[I, M]) error {
	return d.tbl.IoFlush()(d.ptr())
}

// Read reads into p from the erased byte source.
func Read[I capability.HasRead, M MutableMode](d *Dyn[I, M], p []byte) (int, error) {
	return d.tbl.IoRead()(d.ptr(), p)
}

// ReadFull reads exactly len(p) bytes, with io.ReadFull's error contract.
func ReadFull[I capability.HasRead, M MutableMode](d *Dyn[I, M], p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := d.tbl.IoRead()(d.ptr(), p[total:])
		total += n
		if err != nil {
			if err == io.EOF && total > 0 {
				return total, io.ErrUnexpectedEOF
			}
			return total, err
		}
	}
	return total, nil
}

// Peek returns the next n buffered bytes without consuming them.
func Peek[I capability.HasBufRead, M MutableMode](d *Dyn[I, M], n int) ([]byte, error) {
	return d.tbl.BufPeek()(d.ptr(), n)
}

// Discard consumes n buffered bytes, reporting how many were discarded.
func Discard[I capability.HasBufRead, M MutableMode](d *Dyn[I, M], n int) (int, error) {
	return d.tbl.BufDiscard()(d.ptr(), n)
}

// Seek repositions the erased stream.
func Seek[I capability.HasSeek, M MutableMode](d *Dyn[I, M], offset int64, whence int) (int64, error) {
	return d.tbl.IoSeek()(d.ptr(), offset, whence)
}

// Serialize encodes the erased value with its binary marshaler.
func Serialize[I capability.HasSerialize, M Mode](d *Dyn[I, M]) ([]byte, error) {
	return d.tbl.Serialize()(d.ptr())
}
