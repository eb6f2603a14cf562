// File: transport/tcp/socket.go
//go:build unix

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Socket owns one non-blocking stream handle bound to a fixed protocol and
// remote endpoint. The handle is allocated eagerly at construction, is
// never exposed in blocking mode, and once closed is never reused by this
// instance: later operations fail with api.ErrNotOpen instead of touching
// a possibly reassigned descriptor.

package tcp

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/internal/netutil"
)

// ShutdownHow selects the direction of a Shutdown. The values mirror the
// OS SHUT_RD/SHUT_WR/SHUT_RDWR constants.
type ShutdownHow int

const (
	// ShutdownRead tears down the receive side.
	ShutdownRead ShutdownHow = ShutdownHow(unix.SHUT_RD)
	// ShutdownWrite tears down the send side.
	ShutdownWrite ShutdownHow = ShutdownHow(unix.SHUT_WR)
	// ShutdownBoth tears down both directions.
	ShutdownBoth ShutdownHow = ShutdownHow(unix.SHUT_RDWR)
)

const invalidHandle = -1

// Socket is a non-blocking TCP endpoint. Exactly one remote endpoint is
// associated with a Socket for its lifetime. At most one outstanding Recv
// and one outstanding Send per Socket is the supported usage; issuing two
// concurrent operations of the same direction is undefined.
type Socket struct {
	mu     sync.Mutex
	fd     int
	proto  api.Protocol
	remote api.Endpoint
	open   bool
}

// NewSocket allocates the handle for proto, switches it to non-blocking
// mode and binds remote as the connection target. Handle allocation
// failure is a construction failure; no half-built Socket is returned.
func NewSocket(proto api.Protocol, remote api.Endpoint) (*Socket, error) {
	fd, err := netutil.NewTCPSocket(proto.Family())
	if err != nil {
		return nil, err
	}
	return &Socket{
		fd:     fd,
		proto:  proto,
		remote: remote,
		open:   true,
	}, nil
}

// newSocketFromFD adopts an existing descriptor. It is used by tests that
// build sockets over socketpairs; fd must already be non-blocking.
func newSocketFromFD(fd int, proto api.Protocol, remote api.Endpoint) *Socket {
	return &Socket{fd: fd, proto: proto, remote: remote, open: true}
}

// NativeHandle returns the OS descriptor.
func (s *Socket) NativeHandle() uintptr { return uintptr(s.fd) }

// Protocol returns the protocol descriptor fixed at construction.
func (s *Socket) Protocol() api.Protocol { return s.proto }

// RemoteAddress returns the remote endpoint fixed at construction.
func (s *Socket) RemoteAddress() api.Endpoint { return s.remote }

// NonBlocking reports whether the handle is in non-blocking mode. It is
// always true for a constructed Socket; blocking mode is never exposed.
func (s *Socket) NonBlocking() bool { return true }

// IsOpen reports whether the handle is still owned and unclosed.
func (s *Socket) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Equal reports handle identity: two Sockets are equal iff their native
// handles are equal. The comparison is only meaningful while both handles
// remain open; equality of stale handles is not defined.
func (s *Socket) Equal(other *Socket) bool {
	return other != nil && s.fd == other.fd
}

// Connect attempts to establish the transport to the remote endpoint.
// Because the handle is non-blocking, api.ErrInProgress is a normal
// outcome meaning establishment continues in the background; the caller
// answers it with a readiness wait, not another Connect. An empty host
// resolves to the wildcard address of the socket's family.
func (s *Socket) Connect() error {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return api.ErrNotOpen
	}
	fd := s.fd
	s.mu.Unlock()

	sa, err := netutil.Sockaddr(s.proto, s.remote)
	if err != nil {
		return err
	}
	switch err := unix.Connect(fd, sa); err {
	case nil, unix.EISCONN:
		return nil
	case unix.EINPROGRESS, unix.EALREADY, unix.EINTR:
		return api.ErrInProgress
	default:
		return fmt.Errorf("connect %s: %w", s.remote, err)
	}
}

// Recv schedules an asynchronous receive into buf. The buffer is owned by
// the caller and must stay valid until cb fires; the Socket does not copy
// it. cb fires exactly once, never on the caller's stack: zero bytes with
// a nil error means the peer closed, a non-nil error reports the transfer
// failure.
func (s *Socket) Recv(buf []byte, exec api.IOExecutor, cb api.CompletionFunc) {
	s.schedule(dirRecv, buf, exec, cb)
}

// Send schedules an asynchronous send of buf. Buffer ownership and
// completion semantics match Recv; the completion reports how many bytes
// the single transfer attempt moved.
func (s *Socket) Send(buf []byte, exec api.IOExecutor, cb api.CompletionFunc) {
	s.schedule(dirSend, buf, exec, cb)
}

func (s *Socket) schedule(dir taskDirection, buf []byte, exec api.IOExecutor, cb api.CompletionFunc) {
	task := newIOTask(s, dir, buf, cb)
	s.mu.Lock()
	open := s.open
	s.mu.Unlock()
	if !open {
		task.failAsync(api.ErrNotOpen)
		return
	}
	if err := exec.Register(task); err != nil {
		task.failAsync(err)
	}
}

// Shutdown requests half- or full-duplex teardown of an open handle. An
// out-of-range direction or an unopened handle is a silent no-op; shutdown
// is best-effort and never fails.
func (s *Socket) Shutdown(how ShutdownHow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open || s.fd == invalidHandle || how < ShutdownRead || how > ShutdownBoth {
		return
	}
	_ = unix.Shutdown(s.fd, int(how))
}

// Close releases the OS handle. The first call on an open handle performs
// the release and propagates a release failure, since a failed close is a
// resource-leak signal the owner must observe. Later calls, and calls on a
// never-opened Socket, are no-ops.
func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open || s.fd == invalidHandle {
		return nil
	}
	s.open = false
	if err := unix.Close(s.fd); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}
