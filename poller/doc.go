// Copyright (c) 2026
// Author: momentics <momentics@gmail.com>

// Package poller provides the reference api.IOExecutor of hioload-net: a
// single-threaded epoll poll loop (Linux) that owns the OS readiness
// mechanism, accepts Selectable registrations from any goroutine, and
// dispatches actionable interest sets on its poll thread. Platforms
// without epoll get a stub constructor returning api.ErrNotSupported.
package poller
