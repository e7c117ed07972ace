package dispatch

import (
	"reflect"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/anybox/anybox/capability"
)

type tableKey struct {
	rtype reflect.Type
	iface reflect.Type
	mode  Mode
}

var registry sync.Map // tableKey -> *Table

// ForType returns the process-wide table for (rt, iface, mode), building and
// registering it on first use. There is exactly one table per key tuple, so
// two calls with the same tuple return the same pointer.
func ForType(rt reflect.Type, iface capability.Descriptor, mode Mode) *Table {
	key := tableKey{rtype: rt, iface: reflect.TypeOf(iface), mode: mode}
	if cached, ok := registry.Load(key); ok {
		return cached.(*Table)
	}

	t := build(rt, iface, mode, slotCount)
	actual, loaded := registry.LoadOrStore(key, t)
	if !loaded {
		Logger().Debug("dispatch table built",
			zap.String("type", rt.String()),
			zap.String("mode", mode.String()),
			zap.String("capabilities", t.spec.String()),
			zap.Int("slots", t.stored),
		)
	}
	return actual.(*Table)
}

// For is ForType for a type parameter.
func For[T any](iface capability.Descriptor, mode Mode) *Table {
	return ForType(reflect.TypeFor[T](), iface, mode)
}

// Lookup returns the registered table for (rt, iface, mode) without building
// one. Recovery paths use it to report the expected table address when a
// check fails, where building could panic on an unsatisfiable capability.
func Lookup(rt reflect.Type, iface capability.Descriptor, mode Mode) (*Table, bool) {
	cached, ok := registry.Load(tableKey{rtype: rt, iface: reflect.TypeOf(iface), mode: mode})
	if !ok {
		return nil, false
	}
	return cached.(*Table), true
}

// Info is a diagnostic snapshot of one registered table.
type Info struct {
	Type          string
	Mode          string
	Capabilities  []string
	StoredSlots   int
	DeclaredSlots int
	Package       string
	Version       string
	Addr          uintptr
}

// Tables returns a snapshot of every registered table, sorted by type name
// then mode, for diagnostics and tooling.
func Tables() []Info {
	var out []Info
	registry.Range(func(_, v any) bool {
		t := v.(*Table)
		out = append(out, Info{
			Type:          t.key.Name,
			Mode:          t.mode.String(),
			Capabilities:  t.spec.Names(),
			StoredSlots:   t.stored,
			DeclaredSlots: slotCount,
			Package:       t.key.Layout.Meta.Package,
			Version:       t.key.Layout.Version(),
			Addr:          t.Addr(),
		})
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Mode < out[j].Mode
	})
	return out
}
