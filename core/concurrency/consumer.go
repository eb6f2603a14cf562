// File: core/concurrency/consumer.go
// Package concurrency implements the queue-draining worker pool.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ConsumerPool is the standard consumer side of the executor hand-off: an
// I/O-driving thread pushes completed results into an ArrayBlockingQueue
// and the pool's workers invoke the handler on them. Workers use timed pops
// so Close never has to interrupt an indefinite block.

package concurrency

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// drainInterval is the per-pop wait bound; it caps Close latency.
const drainInterval = 10 * time.Millisecond

// ConsumerPool drains an ArrayBlockingQueue across a fixed set of worker
// goroutines, invoking handler once per element. Elements are handled in
// FIFO order of removal; with more than one worker, handler invocations of
// different elements may overlap.
type ConsumerPool[T any] struct {
	queue   *ArrayBlockingQueue[T]
	handler func(T)
	quit    chan struct{}
	wg      sync.WaitGroup
	closed  atomic.Bool
	workers int
}

// NewConsumerPool starts workers goroutines draining q. Worker counts below
// one default to the number of CPUs. The pool does not own q; producers
// keep pushing to it directly.
func NewConsumerPool[T any](q *ArrayBlockingQueue[T], workers int, handler func(T)) *ConsumerPool[T] {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := &ConsumerPool[T]{
		queue:   q,
		handler: handler,
		quit:    make(chan struct{}),
		workers: workers,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

// NumWorkers returns the number of worker goroutines.
func (p *ConsumerPool[T]) NumWorkers() int { return p.workers }

// Close stops the workers and waits for them to exit. Elements still queued
// after Close returns remain in the queue untouched. Idempotent.
func (p *ConsumerPool[T]) Close() {
	if p.closed.CompareAndSwap(false, true) {
		close(p.quit)
		p.wg.Wait()
	}
}

func (p *ConsumerPool[T]) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		default:
		}
		if ele, ok := p.queue.WaitPop(drainInterval); ok {
			p.safeHandle(ele)
		}
	}
}

func (p *ConsumerPool[T]) safeHandle(ele T) {
	defer func() { _ = recover() }()
	p.handler(ele)
}
