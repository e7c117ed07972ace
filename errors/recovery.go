package errors

import "fmt"

// RecoveryError is returned when an erased container could not be converted
// back to the requested concrete type. It carries enough of both sides'
// identity to explain the mismatch, plus the original container so the
// failed attempt loses nothing.
type RecoveryError struct {
	inner any

	// ExpectedTableAddr is the address of the table registered for the
	// candidate concrete type, zero if none was ever built; FoundTableAddr is
	// the address of the table the container actually holds.
	ExpectedTableAddr uintptr
	FoundTableAddr    uintptr

	// ExpectedType and FoundType name the two concrete types, as minted.
	ExpectedType string
	FoundType    string

	// ExpectedLayout and FoundLayout are the structural descriptors of the
	// two types, debug-formattable for diagnostics.
	ExpectedLayout fmt.Stringer
	FoundLayout    fmt.Stringer
}

// NewRecoveryError builds a RecoveryError. The inner value is the container
// (or borrow) the caller would otherwise have lost.
func NewRecoveryError(inner any, expectedAddr, foundAddr uintptr, expectedType, foundType string, expectedLayout, foundLayout fmt.Stringer) *RecoveryError {
	return &RecoveryError{
		inner:             inner,
		ExpectedTableAddr: expectedAddr,
		FoundTableAddr:    foundAddr,
		ExpectedType:      expectedType,
		FoundType:         foundType,
		ExpectedLayout:    expectedLayout,
		FoundLayout:       foundLayout,
	}
}

// IntoInner extracts the original container, to handle the failed recovery.
func (e *RecoveryError) IntoInner() any {
	return e.inner
}

// Error implements the error interface
func (e *RecoveryError) Error() string {
	return fmt.Sprintf(
		"[recover] type_mismatch: expected %s (table 0x%x), found %s (table 0x%x)",
		e.ExpectedType, e.ExpectedTableAddr,
		e.FoundType, e.FoundTableAddr,
	)
}

// Is reports whether target matches this error
func (e *RecoveryError) Is(target error) bool {
	_, ok := target.(*RecoveryError)
	return ok
}
