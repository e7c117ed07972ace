package errors

import "fmt"

// MissingFieldError describes an access past the stored field count of a
// struct that evolved additively: the caller's compiled view declares the
// field, but the instance at hand was built by an older component that does
// not carry it. This is a version-contract violation by the caller (it should
// have checked the stored count first), so it is delivered by panic rather
// than returned.
type MissingFieldError struct {
	FieldIndex int
	FieldName  string
	FieldType  string

	StructType string
	Package    string

	ExpectedVersion    string
	ExpectedFieldCount int
	FoundVersion       string
	FoundFieldCount    int
}

// Error implements the error interface
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf(`attempting to access nonexistent field:
    index: %d
    named: %s
    type: %s

Type: %s

Package: %q

Expected:
    Version (expected compatible): %s
    Field count: %d

Found:
    Version: %s
    Field count: %d`,
		e.FieldIndex,
		e.FieldName,
		e.FieldType,
		e.StructType,
		e.Package,
		e.ExpectedVersion,
		e.ExpectedFieldCount,
		e.FoundVersion,
		e.FoundFieldCount,
	)
}

// Is reports whether target matches this error
func (e *MissingFieldError) Is(target error) bool {
	_, ok := target.(*MissingFieldError)
	return ok
}
