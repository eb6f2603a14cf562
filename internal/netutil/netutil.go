// File: internal/netutil/netutil.go
//go:build unix

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package netutil is the raw system-call shim under transport/tcp: handle
// allocation, the non-blocking mode toggle, socket address construction
// from api endpoint values, and pending-error retrieval.

package netutil

import (
	"fmt"
	"net/netip"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-net/api"
)

// AddressFamily maps an api.Family to the OS address family constant.
func AddressFamily(f api.Family) int {
	if f == api.FamilyV6 {
		return unix.AF_INET6
	}
	return unix.AF_INET
}

// NewTCPSocket allocates a stream socket for the family and switches it to
// non-blocking mode before returning. The descriptor is closed again if the
// mode toggle fails, so the caller never receives a blocking handle.
func NewTCPSocket(f api.Family) (int, error) {
	fd, err := unix.Socket(AddressFamily(f), unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return -1, fmt.Errorf("socket create: %w", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("set nonblock: %w", err)
	}
	return fd, nil
}

// SetNonblock toggles O_NONBLOCK on fd.
func SetNonblock(fd int, nonblock bool) error {
	return unix.SetNonblock(fd, nonblock)
}

// Sockaddr builds the OS socket address for an endpoint under the given
// protocol. An empty host yields the wildcard address of the family.
func Sockaddr(p api.Protocol, e api.Endpoint) (unix.Sockaddr, error) {
	switch p.Family() {
	case api.FamilyV6:
		sa := &unix.SockaddrInet6{Port: int(e.Port())}
		if host := e.Host(); host != "" {
			addr, err := netip.ParseAddr(host)
			if err != nil {
				return nil, fmt.Errorf("%w: host %q: %v", api.ErrInvalidArgument, host, err)
			}
			sa.Addr = addr.As16()
		}
		return sa, nil
	default:
		sa := &unix.SockaddrInet4{Port: int(e.Port())}
		if host := e.Host(); host != "" {
			addr, err := netip.ParseAddr(host)
			if err != nil || !addr.Is4() {
				return nil, fmt.Errorf("%w: host %q is not an IPv4 address", api.ErrInvalidArgument, host)
			}
			sa.Addr = addr.As4()
		}
		return sa, nil
	}
}

// SocketError fetches and clears the pending error on fd (SO_ERROR). It
// returns nil when no error is pending.
func SocketError(fd int) error {
	errno, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return fmt.Errorf("getsockopt SO_ERROR: %w", err)
	}
	if errno != 0 {
		return unix.Errno(errno)
	}
	return nil
}
