package layout

// Equal reports whether two descriptors describe structurally identical
// types: same name, size, alignment, kind, and, field by field, the same
// names and types, recursing into nested struct layouts.
//
// For additively evolving types the comparison is over the shared fields:
// the two components may have compiled against different suffix lengths and
// still agree structurally, as long as their prefix counts match and neither
// contradicts the other where both declare a field. Types without a suffix
// must agree on the exact field count.
func Equal(a, b *Descriptor) bool {
	return equal(a, b, map[descPair]bool{})
}

// ExactEqual is Equal with full field agreement: both descriptors must also
// declare the same total field count. Recovery of a concrete type requires
// this stronger check; structural compatibility over a shared prefix is only
// an availability optimization.
func ExactEqual(a, b *Descriptor) bool {
	if a == nil || b == nil {
		return a == b
	}
	return len(a.Fields) == len(b.Fields) && Equal(a, b)
}

// ViewCompatible reports whether memory laid out as instance can be safely
// read through view. Equal is symmetric over the shared prefix, which is
// right for "do these describe the same type" questions but not for
// reinterpreting a pointer: a view declaring fields past what the instance
// stores would read past the allocation. ViewCompatible is therefore
// directional: on top of structural agreement, view must not declare more
// fields than instance at any nesting level.
func ViewCompatible(instance, view *Descriptor) bool {
	return viewable(instance, view, map[descPair]bool{})
}

type descPair struct{ a, b *Descriptor }

func equal(a, b *Descriptor, seen map[descPair]bool) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	// Self-referential layouts: a pair already under comparison is assumed
	// equal; any real difference surfaces on another path.
	p := descPair{a, b}
	if seen[p] {
		return true
	}
	seen[p] = true

	if a.FullName != b.FullName || a.Kind != b.Kind || a.Align != b.Align {
		return false
	}
	if a.PrefixFieldCount != b.PrefixFieldCount {
		return false
	}

	evolving := a.HasSuffix() || b.HasSuffix()
	if !evolving {
		if len(a.Fields) != len(b.Fields) || a.Size != b.Size {
			return false
		}
	}

	shared := len(a.Fields)
	if len(b.Fields) < shared {
		shared = len(b.Fields)
	}
	for i := 0; i < shared; i++ {
		fa, fb := a.Fields[i], b.Fields[i]
		if fa.Name != fb.Name || fa.Type != fb.Type {
			return false
		}
		if (fa.Layout == nil) != (fb.Layout == nil) {
			return false
		}
		if fa.Layout != nil && !equal(fa.Layout, fb.Layout, seen) {
			return false
		}
	}
	return true
}

func viewable(instance, view *Descriptor, seen map[descPair]bool) bool {
	if instance == view {
		return true
	}
	if instance == nil || view == nil {
		return false
	}

	p := descPair{instance, view}
	if seen[p] {
		return true
	}
	seen[p] = true

	if instance.FullName != view.FullName || instance.Kind != view.Kind || instance.Align != view.Align {
		return false
	}
	if instance.PrefixFieldCount != view.PrefixFieldCount {
		return false
	}

	evolving := instance.HasSuffix() || view.HasSuffix()
	if !evolving {
		if len(instance.Fields) != len(view.Fields) || instance.Size != view.Size {
			return false
		}
	} else if len(view.Fields) > len(instance.Fields) {
		return false
	}

	for i := 0; i < len(view.Fields); i++ {
		fa, fb := instance.Fields[i], view.Fields[i]
		if fa.Name != fb.Name || fa.Type != fb.Type {
			return false
		}
		if (fa.Layout == nil) != (fb.Layout == nil) {
			return false
		}
		if fa.Layout != nil && !viewable(fa.Layout, fb.Layout, seen) {
			return false
		}
	}
	return true
}
