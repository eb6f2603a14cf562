// File: core/concurrency/ticker.go
// Package concurrency implements the cancelable bounded wait.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// TimeTicker bounds how long a thread waits on an external readiness
// source. A plain sleep cannot be interrupted early; Tick waits on a
// dedicated wakeup channel next to the timer, so Cancel from any goroutine
// takes effect even while the wait is already blocked.

package concurrency

import "time"

// TimeTicker is a cancelable, bounded wait primitive. The zero timeout
// means "immediate poll": Tick only checks for a buffered cancel signal
// and returns.
type TimeTicker struct {
	timeout time.Duration
	signal  chan struct{}
}

// NewTimeTicker creates a ticker with the given timeout per Tick.
func NewTimeTicker(timeout time.Duration) *TimeTicker {
	return &TimeTicker{
		timeout: timeout,
		signal:  make(chan struct{}, 1),
	}
}

// Tick blocks until the timeout elapses or Cancel is called, whichever
// comes first. It returns true when the wait was canceled and false when
// it timed out. When cancellation and expiry are observable at the same
// moment, cancellation wins.
func (t *TimeTicker) Tick() bool {
	// Consume a signal buffered before the wait started.
	select {
	case <-t.signal:
		return true
	default:
	}
	if t.timeout <= 0 {
		return false
	}
	timer := time.NewTimer(t.timeout)
	defer timer.Stop()
	select {
	case <-t.signal:
		return true
	case <-timer.C:
		// The signal may have landed in the same instant the timer fired.
		select {
		case <-t.signal:
			return true
		default:
			return false
		}
	}
}

// Cancel wakes the goroutine blocked in Tick, if any. Safe to call from any
// goroutine; with no wait outstanding the signal is buffered and consumed
// by the next Tick. Repeated cancels before a Tick coalesce into one.
func (t *TimeTicker) Cancel() {
	select {
	case t.signal <- struct{}{}:
	default:
	}
}
