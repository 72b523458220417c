// Package marker declares which types may be handed to, or shared with, an
// interrupt handler running on the same execution unit.
//
// The two predicates are interfaces with a single marker method. Implementing
// one is a trust declaration by the author of the type and is always written
// out explicitly, either by hand:
//
//	// ring is only touched with interrupts disabled.
//	func (*ring) HandlerShareable() {}
//
// or, for structs and sealed sum types, by irqmarkgen, which first asserts
// that every field satisfies the predicate:
//
//	//go:generate go run irqmask/cmd/irqmarkgen
//
//	//irqmask:derive transferable shareable
//	type sample struct {
//		clock uint32
//		value int16
//	}
//
// Types Go already considers safe for concurrent use need no declaration. Basic
// types match the Scalar constraint and the sync and sync/atomic primitives
// match SyncPrimitive; the generator checks such fields against those
// constraints instead.
//
// Derived sum types: an interface carrying the directive must embed the
// matching marker interface, and it satisfies a predicate exactly when every
// concrete type implementing it in its package does.
package marker

import (
	"sync"
	"sync/atomic"
)

// Transferable is implemented by types whose values may be moved into an
// interrupt handler on the same execution unit.
type Transferable interface {
	HandlerTransferable()
}

// Shareable is implemented by types that may be referenced concurrently by
// code and by an interrupt handler on the same execution unit.
type Shareable interface {
	HandlerShareable()
}

// Scalar matches the basic types. They carry no references and are both
// transferable and shareable.
type Scalar interface {
	~bool | ~string |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64 | ~complex64 | ~complex128
}

// SyncPrimitive matches the standard library types that are safe for
// concurrent use by construction.
type SyncPrimitive interface {
	sync.Mutex | sync.RWMutex | sync.Once | sync.WaitGroup | sync.Map |
		atomic.Bool | atomic.Int32 | atomic.Int64 |
		atomic.Uint32 | atomic.Uint64 | atomic.Uintptr | atomic.Value
}

// AssertTransferable compiles only if T implements Transferable.
func AssertTransferable[T Transferable]() {}

// AssertShareable compiles only if T implements Shareable.
func AssertShareable[T Shareable]() {}

// AssertScalar compiles only if T is a basic type.
func AssertScalar[T Scalar]() {}

// AssertSync compiles only if T is a concurrency-safe standard primitive.
func AssertSync[T SyncPrimitive]() {}
