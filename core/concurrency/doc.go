// File: core/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package concurrency provides the generic primitives hioload-net schedules
// asynchronous I/O with: a fixed-capacity blocking FIFO queue for moving
// work and completed results between threads, a cancelable bounded-wait
// ticker, and a consumer pool draining a queue onto user handlers.
//
// All primitives are safe for concurrent use by any number of goroutines
// without external synchronization.
package concurrency
