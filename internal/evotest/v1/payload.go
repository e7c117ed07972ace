// Package payload is the 1.x rendition of a test fixture type that evolves
// additively. The v2 sibling package declares the same type with one more
// suffix field, simulating two components compiled against different
// versions of one library.
package payload

type Record struct {
	ID   uint64
	Name string

	Note string `abi:"suffix"`
}

func (r Record) Equal(o Record) bool { return r.ID == o.ID && r.Name == o.Name }

func (r Record) Compare(o Record) int {
	switch {
	case r.ID < o.ID:
		return -1
	case r.ID > o.ID:
		return 1
	}
	return 0
}
