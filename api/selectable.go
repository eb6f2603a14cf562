// File: api/selectable.go
// Package api defines the readiness/dispatch contract between pollable
// objects and the executor that owns the OS notification mechanism.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Op is a single readiness interest kind.
type Op uint32

// OpCollection is a set of Op values combined with bitwise OR.
type OpCollection = Op

const (
	// OpRead signals the handle has bytes (or EOF) available to read.
	OpRead Op = 1 << iota
	// OpWrite signals the handle can accept bytes without blocking.
	OpWrite
	// OpExcept signals an exceptional condition on the handle. It may be
	// reported unsolicited, regardless of the registered interest.
	OpExcept
	// OpRemoteClose signals the peer has shut down its side. Like OpExcept
	// it may be reported unsolicited.
	OpRemoteClose
)

// Has reports whether the set contains op.
func (c OpCollection) Has(op Op) bool { return c&op != 0 }

// Selectable is any object registrable with a poll loop. The executor polls
// NativeHandle for the interests in Interest and invokes Dispatch with the
// subset that became actionable.
//
// Dispatch must tolerate interests it never requested: OpExcept and
// OpRemoteClose may always arrive unsolicited and must be handled (typically
// by surfacing a failure or a closed completion).
type Selectable interface {
	// NativeHandle returns the OS-level descriptor to poll.
	NativeHandle() uintptr
	// Interest returns the set of ops currently wanted.
	Interest() OpCollection
	// Dispatch is invoked by the poll loop with the actionable ops.
	Dispatch(ops OpCollection)
}

// IOExecutor accepts Selectable registrations and drives their dispatch.
// Implementations own the OS readiness mechanism; they may run a single
// poll thread or a pool, but a given Selectable's Dispatch is invoked by
// exactly one thread at a time.
type IOExecutor interface {
	// Register adds s to the executor's interest set. The executor keeps
	// polling s until it is unregistered or reports itself resolved.
	Register(s Selectable) error
	// Unregister removes s; pending notifications for s are dropped.
	Unregister(s Selectable) error
}

// CompletionFunc receives the outcome of one asynchronous transfer: bytes
// moved and a failure, if any. n == 0 with err == nil means the peer closed.
// A completion fires exactly once per operation and never on the stack of
// the call that scheduled it.
type CompletionFunc func(n int, err error)
