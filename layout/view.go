package layout

import (
	"github.com/anybox/anybox/errors"
)

// Evolved is implemented by instances of additively evolving structs that
// know how many of their declared fields were actually populated by the
// component that built them.
type Evolved interface {
	StoredFields() int
}

// View is a bounds-checked window over a possibly-shorter instance of an
// additively evolving struct: the caller's compiled Descriptor paired with
// the field count the instance actually stores.
type View struct {
	Desc *Descriptor
	// Stored is the true field count of the instance at hand. At most
	// Desc.DeclaredFieldCount(); smaller when the instance was built by an
	// older component.
	Stored int
}

// NewView builds a view over an instance storing the given field count.
// A stored count exceeding the declared count is clamped: the caller's view
// cannot name fields its own compiled descriptor does not declare.
func NewView(d *Descriptor, stored int) View {
	if stored > len(d.Fields) {
		stored = len(d.Fields)
	}
	if stored < 0 {
		stored = 0
	}
	return View{Desc: d, Stored: stored}
}

// ViewOf builds a view over v. If v implements Evolved, its stored field
// count is honored; otherwise the instance is assumed complete.
func ViewOf(d *Descriptor, v any) View {
	if e, ok := v.(Evolved); ok {
		return NewView(d, e.StoredFields())
	}
	return NewView(d, d.DeclaredFieldCount())
}

// FieldCount returns the true field count of the instance this view covers.
func (v View) FieldCount() int {
	return v.Stored
}

// Field returns the descriptor of field i if the instance stores it.
func (v View) Field(i int) (Field, bool) {
	if i < 0 || i >= v.Stored {
		return Field{}, false
	}
	return v.Desc.Fields[i], true
}

// MustField returns the descriptor of field i, panicking with a
// MissingFieldError when the instance does not store it. Accessing a
// statically-required field that is absent is a version-contract violation,
// not a recoverable condition: callers must check FieldCount (or use Field)
// for anything past the prefix.
func (v View) MustField(i int) Field {
	if f, ok := v.Field(i); ok {
		return f
	}
	panicMissingField(i, v.Desc, v)
	panic("unreachable")
}

// panicMissingField reports an access past the stored field count, carrying
// the full expected and actual layout context.
func panicMissingField(i int, expected *Descriptor, actual View) {
	e := &errors.MissingFieldError{
		FieldIndex:         i,
		StructType:         expected.FullName,
		Package:            expected.Meta.Package,
		ExpectedVersion:    expected.Version(),
		ExpectedFieldCount: expected.DeclaredFieldCount(),
		FoundVersion:       actual.Desc.Version(),
		FoundFieldCount:    actual.Stored,
	}
	if i >= 0 && i < len(expected.Fields) {
		e.FieldName = expected.Fields[i].Name
		e.FieldType = expected.Fields[i].Type
	}
	panic(e)
}

// Max returns whichever of the two views stores more fields. The views must
// already have been proven structurally compatible; Max does not check.
func Max(a, b View) View {
	if a.Stored < b.Stored {
		return b
	}
	return a
}

// MinMax returns the two views ordered by stored field count, fewest first.
// The views must already have been proven structurally compatible.
func MinMax(a, b View) (View, View) {
	if a.Stored < b.Stored {
		return a, b
	}
	return b, a
}
