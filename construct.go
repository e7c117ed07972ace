package anybox

import (
	"reflect"
	"unsafe"

	"github.com/anybox/anybox/capability"
	"github.com/anybox/anybox/dispatch"
	"github.com/anybox/anybox/errors"
)

// Option adjusts container construction.
type Option func(*options)

type options struct {
	extra capability.Descriptor
}

// WithExtraTable attaches a second dispatch table, built for the same
// concrete type against extra, alongside the primary one. Callers that know
// the richer descriptor can fetch it with ExtraTable.
func WithExtraTable(extra capability.Descriptor) Option {
	return func(o *options) {
		o.extra = extra
	}
}

func newCore(rt reflect.Type, iface capability.Descriptor, obj unsafe.Pointer, mode dispatch.Mode, opts []Option) core {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	c := core{obj: obj, tbl: dispatch.ForType(rt, iface, mode)}
	if o.extra != nil {
		c.extra = dispatch.ForType(rt, o.extra, mode)
	}
	return c
}

// FromValue copies v into a new owned container with exact identity, so it
// can later be recovered with IntoConcrete.
func FromValue[I capability.Descriptor, T any](iface I, v T, opts ...Option) *Box[I] {
	p := new(T)
	*p = v
	return &Box[I]{core: newCore(reflect.TypeFor[T](), iface, unsafe.Pointer(p), dispatch.ModeExact, opts)}
}

// FromPtr takes ownership of *p in a new owned container with exact
// identity. The caller must not use p afterwards.
func FromPtr[I capability.Descriptor, T any](iface I, p *T, opts ...Option) *Box[I] {
	if p == nil {
		panic(errors.NilPointer(errors.PhaseMint, reflect.TypeFor[T]().String()))
	}
	return &Box[I]{core: newCore(reflect.TypeFor[T](), iface, unsafe.Pointer(p), dispatch.ModeExact, opts)}
}

// FromAnyValue copies v into a new owned container whose identity admits
// structural recovery: IntoConcreteAny accepts any layout-compatible type.
func FromAnyValue[I capability.Descriptor, T any](iface I, v T, opts ...Option) *Box[I] {
	p := new(T)
	*p = v
	return &Box[I]{core: newCore(reflect.TypeFor[T](), iface, unsafe.Pointer(p), dispatch.ModeAny, opts)}
}

// FromAnyPtr is FromPtr with the structural identity of FromAnyValue.
func FromAnyPtr[I capability.Descriptor, T any](iface I, p *T, opts ...Option) *Box[I] {
	if p == nil {
		panic(errors.NilPointer(errors.PhaseMint, reflect.TypeFor[T]().String()))
	}
	return &Box[I]{core: newCore(reflect.TypeFor[T](), iface, unsafe.Pointer(p), dispatch.ModeAny, opts)}
}

// FromBorrowingValue copies v into an opaque container. The container still
// owns and destroys the copy, but its identity is erased for good: no
// recovery function will ever return the value.
func FromBorrowingValue[I capability.Descriptor, T any](iface I, v T, opts ...Option) *Opaque[I] {
	p := new(T)
	*p = v
	return &Opaque[I]{core: newCore(reflect.TypeFor[T](), iface, unsafe.Pointer(p), dispatch.ModeOpaque, opts)}
}

// FromBorrowingPtr is FromPtr into an opaque container.
func FromBorrowingPtr[I capability.Descriptor, T any](iface I, p *T, opts ...Option) *Opaque[I] {
	if p == nil {
		panic(errors.NilPointer(errors.PhaseMint, reflect.TypeFor[T]().String()))
	}
	return &Opaque[I]{core: newCore(reflect.TypeFor[T](), iface, unsafe.Pointer(p), dispatch.ModeOpaque, opts)}
}

// Deserialize asks the descriptor to rebuild a value from data and wraps the
// result in an owned container with structural identity. The descriptor may
// return either the value or a pointer to it.
func Deserialize[I capability.DeserializerOwned](iface I, data []byte, opts ...Option) (*Box[I], error) {
	rt, obj, err := deserialized(iface.DeserializeOwned(data))
	if err != nil {
		return nil, err
	}
	return &Box[I]{core: newCore(rt, iface, obj, dispatch.ModeAny, opts)}, nil
}

// DeserializeBorrowing is Deserialize for descriptors whose rebuilt values
// borrow from the input bytes; the result is permanently opaque.
func DeserializeBorrowing[I capability.DeserializerBorrowed](iface I, data []byte, opts ...Option) (*Opaque[I], error) {
	rt, obj, err := deserialized(iface.DeserializeBorrowed(data))
	if err != nil {
		return nil, err
	}
	return &Opaque[I]{core: newCore(rt, iface, obj, dispatch.ModeOpaque, opts)}, nil
}

func deserialized(v any, err error) (reflect.Type, unsafe.Pointer, error) {
	if err != nil {
		return nil, nil, errors.Wrap(errors.PhaseMint, errors.KindInvalidInput, err, "descriptor failed to deserialize")
	}
	if v == nil {
		return nil, nil, errors.InvalidInput(errors.PhaseMint, "descriptor deserialized to nil")
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil, errors.InvalidInput(errors.PhaseMint, "descriptor deserialized to a nil pointer")
		}
		return rv.Type().Elem(), rv.UnsafePointer(), nil
	}
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	return rv.Type(), p.UnsafePointer(), nil
}
