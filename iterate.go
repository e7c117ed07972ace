package anybox

import "github.com/anybox/anybox/capability"

// Iteration forwarding. The item type cannot be inferred from the container
// alone, so callers name it explicitly: anybox.Next[int](box).

// Next advances the erased iterator and returns its next item.
func Next[It any, I capability.IterableOver[It], M MutableMode](d *Dyn[I, M]) (It, bool) {
	return item[It](d.tbl.IterNext()(d.ptr()))
}

// NextBack consumes the erased iterator from its back end.
func NextBack[It any, I capability.DoubleEndedOver[It], M MutableMode](d *Dyn[I, M]) (It, bool) {
	return item[It](d.tbl.IterNextBack()(d.ptr()))
}

// Nth skips n items and returns the one after them.
func Nth[It any, I capability.IterableOver[It], M MutableMode](d *Dyn[I, M], n int) (It, bool) {
	return item[It](d.tbl.IterNth()(d.ptr(), n))
}

// SizeHint reports bounds on the number of remaining items. bounded is
// false when the iterator cannot say.
func SizeHint[It any, I capability.IterableOver[It], M Mode](d *Dyn[I, M]) (lo, hi int, bounded bool) {
	return d.tbl.IterSizeHint()(d.ptr())
}

// Skip consumes up to n items, reporting how many it consumed. Fewer than n
// means the iterator finished.
func Skip[It any, I capability.IterableOver[It], M MutableMode](d *Dyn[I, M], n int) int {
	next := d.tbl.IterNext()
	p := d.ptr()
	for i := 0; i < n; i++ {
		if _, ok := next(p); !ok {
			return i
		}
	}
	return n
}

// Count consumes the iterator and returns how many items it produced.
func Count[It any, I capability.IterableOver[It], M MutableMode](d *Dyn[I, M]) int {
	next := d.tbl.IterNext()
	p := d.ptr()
	n := 0
	for {
		if _, ok := next(p); !ok {
			return n
		}
		n++
	}
}

// Last consumes the iterator and returns its final item.
func Last[It any, I capability.IterableOver[It], M MutableMode](d *Dyn[I, M]) (It, bool) {
	next := d.tbl.IterNext()
	p := d.ptr()
	var last It
	found := false
	for {
		v, ok := next(p)
		if !ok {
			return last, found
		}
		last = v.(It)
		found = true
	}
}

// Collect drains the iterator front to back into a slice.
func Collect[It any, I capability.IterableOver[It], M MutableMode](d *Dyn[I, M]) []It {
	p := d.ptr()
	lo, _, _ := d.tbl.IterSizeHint()(p)
	out := make([]It, 0, lo)
	next := d.tbl.IterNext()
	for {
		v, ok := next(p)
		if !ok {
			return out
		}
		out = append(out, v.(It))
	}
}

// CollectBack drains the iterator back to front into a slice.
func CollectBack[It any, I capability.DoubleEndedOver[It], M MutableMode](d *Dyn[I, M]) []It {
	p := d.ptr()
	lo, _, _ := d.tbl.IterSizeHint()(p)
	out := make([]It, 0, lo)
	back := d.tbl.IterNextBack()
	for {
		v, ok := back(p)
		if !ok {
			return out
		}
		out = append(out, v.(It))
	}
}

func item[It any](v any, ok bool) (It, bool) {
	if !ok {
		var zero It
		return zero, false
	}
	return v.(It), true
}
