package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDescribe Phase = "describe" // layout descriptor generation
	PhaseMint     Phase = "mint"     // type identity minting
	PhaseBuild    Phase = "build"    // dispatch table construction
	PhaseAccess   Phase = "access"   // field/slot access on an evolved struct
	PhaseRecover  Phase = "recover"  // recovery of a concrete type
	PhaseForward  Phase = "forward"  // capability call forwarding
)

// Kind categorizes the error
type Kind string

const (
	KindTypeMismatch  Kind = "type_mismatch"
	KindFieldMissing  Kind = "field_missing"
	KindNotPrefixType Kind = "not_prefix_type"
	KindUnsupported   Kind = "unsupported"
	KindNilPointer    Kind = "nil_pointer"
	KindInvalidInput  Kind = "invalid_input"
	KindNotFound      Kind = "not_found"
	KindBorrowed      Kind = "borrowed"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	Expected string
	Found    string
	Detail   string
	Path     []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Expected != "" || e.Found != "" {
		b.WriteString(": ")
		if e.Expected != "" && e.Found != "" {
			b.WriteString("expected ")
			b.WriteString(e.Expected)
			b.WriteString(", found ")
			b.WriteString(e.Found)
		} else if e.Expected != "" {
			b.WriteString("expected ")
			b.WriteString(e.Expected)
		} else {
			b.WriteString("found ")
			b.WriteString(e.Found)
		}
	}

	if e.Detail != "" {
		if e.Expected != "" || e.Found != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Expected sets the expected type name
func (b *Builder) Expected(t string) *Builder {
	b.err.Expected = t
	return b
}

// Found sets the type name actually found
func (b *Builder) Found(t string) *Builder {
	b.err.Found = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, expected, found string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindTypeMismatch,
		Expected: expected,
		Found:    found,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, goType string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindNilPointer,
		Expected: goType,
		Detail:   "nil pointer",
	}
}

// Unsupported creates an unsupported capability error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
