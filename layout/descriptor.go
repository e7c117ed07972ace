package layout

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/coreos/go-semver/semver"
)

// SuffixTag marks the first append-only field of an additively evolving
// struct: `abi:"suffix"`. The tagged field and everything after it may be
// absent from instances built by older components.
const (
	tagName   = "abi"
	tagSuffix = "suffix"
)

// Meta carries package/version metadata for diagnostics.
type Meta struct {
	Package string
	Version *semver.Version
}

// Field describes one struct field.
type Field struct {
	Name string
	// Index is the declaration-order position, independent of byte offsets.
	Index int
	// Type is the printed Go type, for diagnostics and structural comparison.
	Type string
	// Layout is the field's own descriptor when the field is a struct,
	// enabling recursive structural comparison. Nil for non-struct fields.
	Layout *Descriptor
}

// Descriptor describes a struct's layout. Descriptors are generated once per
// type, never mutated, and referenced by address for fast identity checks.
type Descriptor struct {
	// FullName is the package-qualified type name, e.g. "dispatch.Table".
	FullName string
	Meta     Meta
	Size     uintptr
	Align    int
	Kind     reflect.Kind
	Fields   []Field
	// PrefixFieldCount is the index of the first suffix field. Fields below
	// it are present in every version of the type. Equal to len(Fields) when
	// the type has no suffix.
	PrefixFieldCount int
}

// DeclaredFieldCount returns the number of fields the describing component
// compiled against, prefix and suffix together.
func (d *Descriptor) DeclaredFieldCount() int {
	return len(d.Fields)
}

// HasSuffix reports whether the type evolves additively.
func (d *Descriptor) HasSuffix() bool {
	return d.PrefixFieldCount < len(d.Fields)
}

// Version returns the descriptor's package version string.
func (d *Descriptor) Version() string {
	if d.Meta.Version == nil {
		return "0.0.0"
	}
	return d.Meta.Version.String()
}

// String renders a one-line summary for diagnostics.
func (d *Descriptor) String() string {
	var b strings.Builder
	b.WriteString(d.FullName)
	fmt.Fprintf(&b, " (v%s, %d fields, prefix %d)", d.Version(), len(d.Fields), d.PrefixFieldCount)
	return b.String()
}

var (
	descMu    sync.Mutex
	descCache = map[reflect.Type]*Descriptor{}

	versionMu sync.RWMutex
	versions  = map[string]*semver.Version{}
)

// RegisterPackageVersion associates a semantic version with a package path.
// Descriptors for types in that package carry the version in their Meta and
// report it in missing-field diagnostics. Safe to call multiple times; the
// latest registration wins.
func RegisterPackageVersion(pkgPath, version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("register version for %s: %w", pkgPath, err)
	}
	versionMu.Lock()
	versions[pkgPath] = v
	versionMu.Unlock()
	return nil
}

func packageVersion(pkgPath string) *semver.Version {
	versionMu.RLock()
	defer versionMu.RUnlock()
	return versions[pkgPath]
}

// Describe returns the layout descriptor for t, generating and caching it on
// first use. Descriptors for the same type are the same pointer, so address
// comparison is the fast path for same-component identity.
func Describe(t reflect.Type) *Descriptor {
	descMu.Lock()
	defer descMu.Unlock()
	return describeLocked(t)
}

// DescribeFor is Describe for a type parameter.
func DescribeFor[T any]() *Descriptor {
	return Describe(reflect.TypeFor[T]())
}

func describeLocked(t reflect.Type) *Descriptor {
	if d, ok := descCache[t]; ok {
		return d
	}

	d := &Descriptor{
		FullName: typeName(t),
		Size:     t.Size(),
		Align:    t.Align(),
		Kind:     t.Kind(),
		Meta: Meta{
			Package: pkgPathOf(t),
		},
	}
	d.Meta.Version = packageVersion(d.Meta.Package)

	// Insert before walking fields so self-referential types resolve to the
	// descriptor under construction instead of recursing forever.
	descCache[t] = d

	if t.Kind() == reflect.Struct {
		firstSuffix := -1
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if firstSuffix < 0 && sf.Tag.Get(tagName) == tagSuffix {
				firstSuffix = i
			}
			f := Field{
				Name:  sf.Name,
				Index: i,
				Type:  sf.Type.String(),
			}
			if sf.Type.Kind() == reflect.Struct {
				f.Layout = describeLocked(sf.Type)
			}
			d.Fields = append(d.Fields, f)
		}
		if firstSuffix < 0 {
			firstSuffix = len(d.Fields)
		}
		d.PrefixFieldCount = firstSuffix
	}

	return d
}

// typeName uses reflect's short package qualifier, e.g. "dispatch.Table".
func typeName(t reflect.Type) string {
	return t.String()
}

func pkgPathOf(t reflect.Type) string {
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		t = t.Elem()
	}
	return t.PkgPath()
}
