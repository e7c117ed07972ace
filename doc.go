// Package anybox provides type-erased containers that stay usable across
// separately compiled components.
//
// A container pairs an opaque pointer to a concrete Go value with a dispatch
// table built for a capability descriptor. Callers interact with the value
// only through free functions gated on the descriptor's capabilities, so a
// component can hand a value to code that was compiled against a different
// version of the value's package and still call it safely.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	anybox/          Root package with the erased containers and forwarding functions
//	├── capability/  Capability descriptors and their marker interfaces
//	├── dispatch/    Dispatch table construction and the process-wide registry
//	├── typeid/      Type identity keys and the two compatibility checks
//	├── layout/      Struct layout descriptors and additive evolution views
//	└── errors/      Structured error types for debugging
//
// # Quick Start
//
// Erase a value behind a descriptor, use it, and recover it:
//
//	box := anybox.FromValue(capability.Ordered{}, 42)
//	defer box.Release()
//
//	other := anybox.FromValue(capability.Ordered{}, 7)
//	if anybox.Compare(box, other) > 0 {
//	    fmt.Println("42 sorts after 7")
//	}
//
//	n, err := anybox.IntoConcrete[int](box)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(*n) // 42
//
// # Container Kinds
//
// Box owns its value and runs the destructor on Release. Opaque owns its
// value too but permanently forgets its identity: it has no recovery entry
// points, it never compares equal to anything, and its views (ReborrowOpaque)
// stay opaque. Ref and RefMut are borrowed views produced by Reborrow and
// ReborrowMut; releasing them never touches the underlying value.
//
// # Recovery
//
// IntoConcrete, AsConcrete, and AsConcreteMut demand the exact identity the
// container was built with, making it safe to transfer ownership back out.
// The Any variants accept a structurally compatible type that declares no
// more fields than the stored instance, which tolerates additive layout
// evolution between components without ever reading past the value. A failed
// recovery returns a RecoveryError and leaves the container untouched.
//
// # Thread Safety
//
// A container is NOT safe for concurrent use; synchronize access or keep it
// on one goroutine. The dispatch registry and table construction are safe
// for concurrent use from any goroutine.
package anybox
