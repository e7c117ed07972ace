package capability

// Prebuilt descriptors for common capability sets.

// Plain advertises no capabilities beyond erasure itself.
type Plain struct {
	Base
}

// Cloneable advertises duplication only.
type Cloneable struct {
	Base
	Clone
}

// Ordered advertises equality, ordering, and hashing.
type Ordered struct {
	Base
	Eq
	Ord
	Hash
}

// Printable advertises Display and Debug formatting.
type Printable struct {
	Base
	Display
	Debug
}

// Iteration advertises iteration with item type It.
type Iteration[It any] struct {
	Base
	Iter[It]
}

// DEIteration advertises double-ended iteration with item type It.
type DEIteration[It any] struct {
	Base
	DoubleEnded[It]
}

// TextWriter advertises formatted text writing.
type TextWriter struct {
	Base
	FmtWrite
}

// ByteStream advertises byte-level read, write, and seek.
type ByteStream struct {
	Base
	Read
	Write
	Seek
}
