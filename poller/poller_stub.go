// File: poller/poller_stub.go
//go:build !linux

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stub executor for platforms without epoll.

package poller

import "github.com/momentics/hioload-net/api"

// EpollExecutor is unavailable on this platform.
type EpollExecutor struct{}

// NewEpollExecutor reports that no readiness executor exists here.
func NewEpollExecutor() (*EpollExecutor, error) {
	return nil, api.ErrNotSupported
}

// Register always fails on this platform.
func (p *EpollExecutor) Register(api.Selectable) error { return api.ErrNotSupported }

// Unregister always fails on this platform.
func (p *EpollExecutor) Unregister(api.Selectable) error { return api.ErrNotSupported }

// Close is a no-op on this platform.
func (p *EpollExecutor) Close() error { return nil }
