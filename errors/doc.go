// Package errors provides structured error types for the anybox library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: expected/found type names,
// field path, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseRecover, errors.KindTypeMismatch).
//		Expected("mypkg.Config").
//		Found("mypkg.LegacyConfig").
//		Detail("layouts differ at field 2").
//		Build()
//
// The two externally observable error values of the core are also defined
// here: RecoveryError (failed recovery of a concrete type from an erased
// container, recoverable) and MissingFieldError (access past the stored field
// count of a layout-evolved struct, delivered by panic).
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
