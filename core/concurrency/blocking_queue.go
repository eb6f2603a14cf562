// File: core/concurrency/blocking_queue.go
// Package concurrency implements the bounded blocking FIFO queue.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ArrayBlockingQueue is a fixed-capacity ring buffer guarded by one mutex
// and two wait conditions ("not full", "not empty"). Each successful push
// wakes exactly one blocked popper and vice versa; a waiter only ever needs
// one slot or one element to proceed, so broadcasting would be waste.

package concurrency

import (
	"sync"
	"time"
)

// ArrayBlockingQueue is a fixed-capacity, thread-safe FIFO ring buffer.
// Capacity is chosen at construction and never grows. A push never
// overwrites an occupied slot and a pop never reads an empty one; both
// block, fail, or time out instead, depending on the variant used.
//
// Any goroutine blocked in Push/Pop/WaitPush/WaitPop must have been released
// before the queue is abandoned; dropping a queue with live waiters leaks
// those goroutines.
type ArrayBlockingQueue[T any] struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond
	items    []T
	putIdx   int
	takeIdx  int
	count    int
}

// NewArrayBlockingQueue creates a queue of fixed capacity. Capacities below
// one are normalized to one.
func NewArrayBlockingQueue[T any](capacity int) *ArrayBlockingQueue[T] {
	if capacity < 1 {
		capacity = 1
	}
	q := &ArrayBlockingQueue[T]{items: make([]T, capacity)}
	q.notFull = sync.NewCond(&q.mu)
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Push inserts ele, blocking while the queue is full.
func (q *ArrayBlockingQueue[T]) Push(ele T) {
	q.mu.Lock()
	for q.full() {
		q.notFull.Wait()
	}
	q.insert(ele)
	q.mu.Unlock()
	q.notEmpty.Signal()
}

// TryPush inserts ele without blocking. It fails immediately when the queue
// is full or when the internal lock is momentarily held by another
// goroutine; callers that need a guaranteed attempt use WaitPush with a
// zero duration instead.
func (q *ArrayBlockingQueue[T]) TryPush(ele T) bool {
	if !q.mu.TryLock() {
		return false
	}
	if q.full() {
		q.mu.Unlock()
		return false
	}
	q.insert(ele)
	q.mu.Unlock()
	q.notEmpty.Signal()
	return true
}

// WaitPush inserts ele, waiting up to d for a free slot. It reports whether
// the element was inserted within the bound. A non-positive d performs one
// guaranteed check under the lock.
func (q *ArrayBlockingQueue[T]) WaitPush(ele T, d time.Duration) bool {
	deadline := time.Now().Add(d)
	q.mu.Lock()
	for q.full() {
		if !q.waitUntil(q.notFull, deadline) {
			q.mu.Unlock()
			return false
		}
	}
	q.insert(ele)
	q.mu.Unlock()
	q.notEmpty.Signal()
	return true
}

// Pop removes and returns the oldest element, blocking while the queue is
// empty.
func (q *ArrayBlockingQueue[T]) Pop() T {
	q.mu.Lock()
	for q.empty() {
		q.notEmpty.Wait()
	}
	ele := q.remove()
	q.mu.Unlock()
	q.notFull.Signal()
	return ele
}

// TryPop removes the oldest element without blocking. Like TryPush, a
// momentarily contended lock counts as an immediate failure.
func (q *ArrayBlockingQueue[T]) TryPop() (T, bool) {
	var zero T
	if !q.mu.TryLock() {
		return zero, false
	}
	if q.empty() {
		q.mu.Unlock()
		return zero, false
	}
	ele := q.remove()
	q.mu.Unlock()
	q.notFull.Signal()
	return ele, true
}

// WaitPop removes the oldest element, waiting up to d for one to arrive.
// It reports whether an element was obtained within the bound.
func (q *ArrayBlockingQueue[T]) WaitPop(d time.Duration) (T, bool) {
	deadline := time.Now().Add(d)
	q.mu.Lock()
	for q.empty() {
		if !q.waitUntil(q.notEmpty, deadline) {
			var zero T
			q.mu.Unlock()
			return zero, false
		}
	}
	ele := q.remove()
	q.mu.Unlock()
	q.notFull.Signal()
	return ele, true
}

// Size returns the number of free slots remaining, i.e. capacity minus
// occupancy. The inverted convention is kept from the queue this one
// descends from; use Len for the number of elements currently held.
func (q *ArrayBlockingQueue[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.count
}

// Len returns the number of elements currently held.
func (q *ArrayBlockingQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Cap returns the fixed capacity.
func (q *ArrayBlockingQueue[T]) Cap() int {
	return len(q.items)
}

// Empty reports whether the queue holds no elements.
func (q *ArrayBlockingQueue[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.empty()
}

// Full reports whether every slot is occupied.
func (q *ArrayBlockingQueue[T]) Full() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.full()
}

// waitUntil blocks on cond for one wakeup, bounded by deadline. It returns
// false once the deadline has already passed; after any wakeup the caller
// re-checks its predicate, so a signal racing the expiry still wins.
// Called with q.mu held. The expiry timer broadcasts so that every waiter
// re-checks its own deadline; between expiries, wakeups stay one-to-one
// via Signal.
func (q *ArrayBlockingQueue[T]) waitUntil(cond *sync.Cond, deadline time.Time) bool {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return false
	}
	t := time.AfterFunc(remaining, cond.Broadcast)
	cond.Wait()
	t.Stop()
	return true
}

func (q *ArrayBlockingQueue[T]) full() bool { return q.count == len(q.items) }

func (q *ArrayBlockingQueue[T]) empty() bool { return q.count == 0 }

// insert writes at the put index and advances it modulo capacity.
// Called with q.mu held and the queue not full.
func (q *ArrayBlockingQueue[T]) insert(ele T) {
	q.items[q.putIdx] = ele
	q.putIdx++
	if q.putIdx == len(q.items) {
		q.putIdx = 0
	}
	q.count++
}

// remove reads the take index and advances it modulo capacity.
// Called with q.mu held and the queue not empty. The vacated slot is
// zeroed so the queue does not pin references past removal.
func (q *ArrayBlockingQueue[T]) remove() T {
	var zero T
	ele := q.items[q.takeIdx]
	q.items[q.takeIdx] = zero
	q.takeIdx++
	if q.takeIdx == len(q.items) {
		q.takeIdx = 0
	}
	q.count--
	return ele
}
