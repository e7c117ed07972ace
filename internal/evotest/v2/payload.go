// Package payload is the 2.x rendition of the evolving test fixture: the
// same stable prefix as v1 plus one appended suffix field.
package payload

type Record struct {
	ID   uint64
	Name string

	Note string `abi:"suffix"`
	Tags []string
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
