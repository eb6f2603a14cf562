// File: poller/epoll_linux_test.go
//go:build linux

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package poller

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-net/api"
)

// testSelectable is a one-shot selectable recording its dispatches.
type testSelectable struct {
	fd       int
	interest api.OpCollection
	oneShot  bool
	resolved atomic.Bool
	fired    chan api.OpCollection
}

func newTestSelectable(fd int, interest api.OpCollection, oneShot bool) *testSelectable {
	return &testSelectable{
		fd:       fd,
		interest: interest,
		oneShot:  oneShot,
		fired:    make(chan api.OpCollection, 16),
	}
}

func (s *testSelectable) NativeHandle() uintptr      { return uintptr(s.fd) }
func (s *testSelectable) Interest() api.OpCollection { return s.interest }
func (s *testSelectable) Resolved() bool             { return s.resolved.Load() }
func (s *testSelectable) Dispatch(ops api.OpCollection) {
	if s.oneShot {
		s.resolved.Store(true)
	}
	s.fired <- ops
}

func testPair(t *testing.T) (int, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	for _, fd := range fds {
		if err := unix.SetNonblock(fd, true); err != nil {
			t.Fatalf("set nonblock: %v", err)
		}
	}
	t.Cleanup(func() {
		_ = unix.Close(fds[0])
		_ = unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func newTestExecutor(t *testing.T) *EpollExecutor {
	t.Helper()
	p, err := NewEpollExecutor()
	if err != nil {
		t.Fatalf("NewEpollExecutor: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func waitDispatch(t *testing.T, sel *testSelectable) api.OpCollection {
	t.Helper()
	select {
	case ops := <-sel.fired:
		return ops
	case <-time.After(5 * time.Second):
		t.Fatal("no dispatch before timeout")
		return 0
	}
}

func TestEpollExecutorDispatchesWriteReadiness(t *testing.T) {
	local, _ := testPair(t)
	p := newTestExecutor(t)

	sel := newTestSelectable(local, api.OpWrite, true)
	if err := p.Register(sel); err != nil {
		t.Fatalf("Register: %v", err)
	}

	ops := waitDispatch(t, sel)
	if !ops.Has(api.OpWrite) {
		t.Errorf("dispatched ops %v do not include OpWrite", ops)
	}
}

func TestEpollExecutorDispatchesReadReadiness(t *testing.T) {
	local, peer := testPair(t)
	p := newTestExecutor(t)

	sel := newTestSelectable(local, api.OpRead, true)
	if err := p.Register(sel); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := unix.Write(peer, []byte("wake")); err != nil {
		t.Fatalf("peer write: %v", err)
	}

	ops := waitDispatch(t, sel)
	if !ops.Has(api.OpRead) {
		t.Errorf("dispatched ops %v do not include OpRead", ops)
	}
}

func TestEpollExecutorMasksDispatchToInterest(t *testing.T) {
	local, peer := testPair(t)
	p := newTestExecutor(t)

	// A read-only task on an always-writable socket must never see OpWrite.
	sel := newTestSelectable(local, api.OpRead, true)
	if err := p.Register(sel); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := unix.Write(peer, []byte("x")); err != nil {
		t.Fatalf("peer write: %v", err)
	}

	ops := waitDispatch(t, sel)
	if ops.Has(api.OpWrite) {
		t.Errorf("read task received OpWrite: %v", ops)
	}
}

func TestEpollExecutorUnregisterDropsNotifications(t *testing.T) {
	local, peer := testPair(t)
	p := newTestExecutor(t)

	sel := newTestSelectable(local, api.OpRead, false)
	if err := p.Register(sel); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := p.Unregister(sel); err != nil {
		t.Fatalf("Unregister: %v", err)
	}
	// Let the poll thread apply both commands before readiness arrives.
	time.Sleep(50 * time.Millisecond)

	if _, err := unix.Write(peer, []byte("late")); err != nil {
		t.Fatalf("peer write: %v", err)
	}

	select {
	case ops := <-sel.fired:
		t.Errorf("unregistered selectable dispatched with %v", ops)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestEpollExecutorReadAndWriteTasksShareDescriptor(t *testing.T) {
	local, peer := testPair(t)
	p := newTestExecutor(t)

	reader := newTestSelectable(local, api.OpRead, true)
	writer := newTestSelectable(local, api.OpWrite, true)
	if err := p.Register(reader); err != nil {
		t.Fatalf("register reader: %v", err)
	}
	if err := p.Register(writer); err != nil {
		t.Fatalf("register writer: %v", err)
	}

	if ops := waitDispatch(t, writer); !ops.Has(api.OpWrite) {
		t.Errorf("writer ops = %v", ops)
	}

	if _, err := unix.Write(peer, []byte("data")); err != nil {
		t.Fatalf("peer write: %v", err)
	}
	if ops := waitDispatch(t, reader); !ops.Has(api.OpRead) {
		t.Errorf("reader ops = %v", ops)
	}
}

func TestEpollExecutorBadDescriptorSurfacesAsExcept(t *testing.T) {
	p := newTestExecutor(t)

	// A descriptor that was never opened cannot be polled; the failure is
	// delivered through the selectable's own dispatch entry point.
	sel := newTestSelectable(1<<20, api.OpRead, true)
	if err := p.Register(sel); err != nil {
		t.Fatalf("Register: %v", err)
	}

	ops := waitDispatch(t, sel)
	if !ops.Has(api.OpExcept) {
		t.Errorf("bad registration dispatched %v, want OpExcept", ops)
	}
}

func TestEpollExecutorClosedRejectsRegistrations(t *testing.T) {
	local, _ := testPair(t)
	p, err := NewEpollExecutor()
	if err != nil {
		t.Fatalf("NewEpollExecutor: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}

	sel := newTestSelectable(local, api.OpRead, true)
	if err := p.Register(sel); !errors.Is(err, api.ErrExecutorClosed) {
		t.Errorf("Register on closed executor: err = %v, want ErrExecutorClosed", err)
	}
}
