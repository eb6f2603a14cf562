// File: transport/tcp/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package tcp provides the non-blocking TCP socket of hioload-net and the
// per-operation Selectable tasks that carry its asynchronous transfers.
//
// A Socket never blocks the calling goroutine: Connect returns
// api.ErrInProgress while establishment is pending, and Recv/Send hand a
// one-shot task to an api.IOExecutor which completes it from its poll loop.
package tcp
