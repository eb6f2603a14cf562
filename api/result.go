// File: api/result.go
// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Generic result types for handing completed work between threads.

package api

// Result wraps any payload or error.
type Result[T any] struct {
	Value T
	Err   error
}

// IOResult is the outcome of one completed asynchronous transfer as it
// travels from the dispatching thread to consumer threads, typically
// through a bounded queue.
type IOResult struct {
	// Bytes is the number of bytes transferred. Zero with a nil Err means
	// the peer closed.
	Bytes int
	// Err is the transfer failure, if any.
	Err error
}
