// File: transport/tcp/iotask.go
//go:build unix

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ioTask implements api.Selectable for one pending asynchronous transfer.
// Dispatch resolves notifications in strict priority order: an exceptional
// condition first, then a peer close, then read, then write. An exceptional
// or peer-closed condition invalidates any read/write readiness reported in
// the same notification, so it must be consumed before the transfer is
// attempted.

package tcp

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/internal/netutil"
)

type taskDirection int

const (
	dirRecv taskDirection = iota
	dirSend
)

// Ensure compile-time interface compliance.
var _ api.Selectable = (*ioTask)(nil)

// ioTask is one in-flight recv or send. It holds a non-owning reference to
// its Socket and must not outlive it. The completion callback fires exactly
// once: never zero times, never twice, and never on the stack of the call
// that scheduled the task.
type ioTask struct {
	socket   *Socket
	dir      taskDirection
	buf      []byte
	callback api.CompletionFunc
	resolved atomic.Bool
}

func newIOTask(s *Socket, dir taskDirection, buf []byte, cb api.CompletionFunc) *ioTask {
	return &ioTask{socket: s, dir: dir, buf: buf, callback: cb}
}

// NativeHandle returns the owning socket's descriptor.
func (t *ioTask) NativeHandle() uintptr { return t.socket.NativeHandle() }

// Interest reports exactly the one direction the task waits on; a task
// never requests both.
func (t *ioTask) Interest() api.OpCollection {
	if t.dir == dirRecv {
		return api.OpRead
	}
	return api.OpWrite
}

// Dispatch consumes an actionable op set from the poll loop. Unsolicited
// OpExcept and OpRemoteClose are handled regardless of the registered
// interest. When the transfer would block, the task stays unresolved and
// the executor keeps polling it.
func (t *ioTask) Dispatch(ops api.OpCollection) {
	switch {
	case ops.Has(api.OpExcept):
		err := netutil.SocketError(t.socket.fd)
		if err == nil {
			err = api.ErrExceptional
		}
		t.complete(0, err)
	case ops.Has(api.OpRemoteClose):
		t.complete(0, nil)
	case ops.Has(api.OpRead) && t.dir == dirRecv:
		n, err := unix.Read(t.socket.fd, t.buf)
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return
		}
		if err != nil {
			t.complete(0, fmt.Errorf("read: %w", err))
			return
		}
		t.complete(n, nil)
	case ops.Has(api.OpWrite) && t.dir == dirSend:
		n, err := unix.Write(t.socket.fd, t.buf)
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return
		}
		if err != nil {
			t.complete(0, fmt.Errorf("write: %w", err))
			return
		}
		t.complete(n, nil)
	}
}

// Resolved reports whether the completion has fired. Executors retire
// resolved tasks; an unresolved task stays registered.
func (t *ioTask) Resolved() bool { return t.resolved.Load() }

func (t *ioTask) complete(n int, err error) {
	if t.resolved.CompareAndSwap(false, true) {
		t.callback(n, err)
	}
}

// failAsync resolves the task as failed off the caller's stack. Used when
// scheduling itself fails, so the completion contract still holds.
func (t *ioTask) failAsync(err error) {
	go t.complete(0, err)
}
