// File: poller/epoll_linux.go
//go:build linux

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux epoll implementation of api.IOExecutor. Registrations arrive from
// arbitrary goroutines through a FIFO command queue and are applied on the
// poll thread, so the epoll interest table is only ever touched by one
// goroutine. An eventfd interrupts the blocking wait whenever commands are
// queued or the executor shuts down.

package poller

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-net/api"
)

type cmdKind int

const (
	cmdRegister cmdKind = iota
	cmdUnregister
)

type command struct {
	kind cmdKind
	sel  api.Selectable
}

// resolvable lets the loop retire one-shot tasks after the dispatch that
// completed them. Selectables without it stay registered until explicitly
// unregistered.
type resolvable interface {
	Resolved() bool
}

// registration holds the up-to-two tasks sharing one descriptor: at most
// one reader and one writer, per the socket contract.
type registration struct {
	read  api.Selectable
	write api.Selectable
}

func (r *registration) empty() bool { return r.read == nil && r.write == nil }

func (r *registration) epollMask() uint32 {
	mask := uint32(unix.EPOLLRDHUP)
	if r.read != nil {
		mask |= unix.EPOLLIN
	}
	if r.write != nil {
		mask |= unix.EPOLLOUT
	}
	return mask
}

// Ensure compile-time interface compliance.
var _ api.IOExecutor = (*EpollExecutor)(nil)

// EpollExecutor is a single-threaded readiness executor. A given
// Selectable's Dispatch always runs on the poll goroutine, so it fires on
// exactly one thread.
type EpollExecutor struct {
	epfd   int
	wakefd int

	mu      sync.Mutex
	pending *queue.Queue // of command, drained on the poll thread

	tasks  map[int]*registration // poll-thread only
	closed atomic.Bool
	done   chan struct{}
}

// NewEpollExecutor creates the epoll and wakeup descriptors and starts the
// poll loop.
func NewEpollExecutor() (*EpollExecutor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	wakefd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		_ = unix.Close(epfd)
		return nil, fmt.Errorf("eventfd: %w", err)
	}
	ev := &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakefd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakefd, ev); err != nil {
		_ = unix.Close(wakefd)
		_ = unix.Close(epfd)
		return nil, fmt.Errorf("epoll ctl add wakefd: %w", err)
	}
	p := &EpollExecutor{
		epfd:    epfd,
		wakefd:  wakefd,
		pending: queue.New(),
		tasks:   make(map[int]*registration),
		done:    make(chan struct{}),
	}
	go p.loop()
	return p, nil
}

// Register queues s for registration on the poll thread. A registration
// that turns out to be unusable (e.g. a stale descriptor) is reported to s
// itself through a Dispatch of api.OpExcept, keeping the failure on the
// operation's own completion channel.
func (p *EpollExecutor) Register(s api.Selectable) error {
	return p.submit(command{kind: cmdRegister, sel: s})
}

// Unregister queues removal of s; pending notifications for it are dropped.
func (p *EpollExecutor) Unregister(s api.Selectable) error {
	return p.submit(command{kind: cmdUnregister, sel: s})
}

func (p *EpollExecutor) submit(cmd command) error {
	if p.closed.Load() {
		return api.ErrExecutorClosed
	}
	p.mu.Lock()
	p.pending.Add(cmd)
	p.mu.Unlock()
	return p.wake()
}

// Close stops the poll loop and releases the epoll and wakeup descriptors.
// Idempotent. Outstanding unresolved tasks are abandoned; their callbacks
// do not fire.
func (p *EpollExecutor) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	_ = p.wake()
	<-p.done
	_ = unix.Close(p.wakefd)
	if err := unix.Close(p.epfd); err != nil {
		return fmt.Errorf("close epoll: %w", err)
	}
	return nil
}

func (p *EpollExecutor) wake() error {
	var one [8]byte
	one[0] = 1
	_, err := unix.Write(p.wakefd, one[:])
	if err == unix.EAGAIN {
		// A wakeup is already pending; the loop will drain it.
		return nil
	}
	return err
}

func (p *EpollExecutor) loop() {
	defer close(p.done)
	events := make([]unix.EpollEvent, 128)
	var wakeBuf [8]byte
	for {
		p.apply()
		if p.closed.Load() {
			return
		}
		n, err := unix.EpollWait(p.epfd, events, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			log.Printf("[poller] epoll wait: %v", err)
			return
		}
		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			if fd == p.wakefd {
				for {
					if _, rerr := unix.Read(p.wakefd, wakeBuf[:]); rerr != nil {
						break
					}
				}
				continue
			}
			reg, ok := p.tasks[fd]
			if !ok {
				continue
			}
			p.dispatch(fd, reg, opsFromEpoll(events[i].Events))
		}
	}
}

// apply drains the command queue on the poll thread.
func (p *EpollExecutor) apply() {
	for {
		p.mu.Lock()
		if p.pending.Length() == 0 {
			p.mu.Unlock()
			return
		}
		cmd := p.pending.Remove().(command)
		p.mu.Unlock()

		switch cmd.kind {
		case cmdRegister:
			p.attach(cmd.sel)
		case cmdUnregister:
			p.detach(cmd.sel)
		}
	}
}

func (p *EpollExecutor) attach(s api.Selectable) {
	fd := int(s.NativeHandle())
	reg, exists := p.tasks[fd]
	if !exists {
		reg = &registration{}
	}
	if s.Interest().Has(api.OpRead) {
		reg.read = s
	} else {
		reg.write = s
	}

	ev := &unix.EpollEvent{Events: reg.epollMask(), Fd: int32(fd)}
	op := unix.EPOLL_CTL_ADD
	if exists {
		op = unix.EPOLL_CTL_MOD
	}
	if err := unix.EpollCtl(p.epfd, op, fd, ev); err != nil {
		// Surface the bad registration through the task's own channel.
		s.Dispatch(api.OpExcept)
		if !exists {
			return
		}
		if s.Interest().Has(api.OpRead) {
			reg.read = nil
		} else {
			reg.write = nil
		}
		return
	}
	p.tasks[fd] = reg
}

func (p *EpollExecutor) detach(s api.Selectable) {
	fd := int(s.NativeHandle())
	reg, ok := p.tasks[fd]
	if !ok {
		return
	}
	if reg.read == s {
		reg.read = nil
	}
	if reg.write == s {
		reg.write = nil
	}
	p.update(fd, reg)
}

// dispatch routes the actionable ops to the reader and writer tasks,
// masked to each task's own interest plus the always-reportable OpExcept
// and OpRemoteClose, then retires whichever tasks resolved.
func (p *EpollExecutor) dispatch(fd int, reg *registration, ops api.OpCollection) {
	if ops == 0 {
		return
	}
	const unsolicited = api.OpExcept | api.OpRemoteClose
	if reg.read != nil {
		if sub := ops & (unsolicited | api.OpRead); sub != 0 {
			reg.read.Dispatch(sub)
		}
	}
	if reg.write != nil {
		if sub := ops & (unsolicited | api.OpWrite); sub != 0 {
			reg.write.Dispatch(sub)
		}
	}

	changed := false
	if r, ok := reg.read.(resolvable); ok && r.Resolved() {
		reg.read = nil
		changed = true
	}
	if w, ok := reg.write.(resolvable); ok && w.Resolved() {
		reg.write = nil
		changed = true
	}
	if changed {
		p.update(fd, reg)
	}
}

// update re-arms or removes the epoll entry for fd after reg changed.
// Removal errors are ignored: a closed descriptor has already left the
// epoll set on its own.
func (p *EpollExecutor) update(fd int, reg *registration) {
	if reg.empty() {
		_ = unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
		delete(p.tasks, fd)
		return
	}
	ev := &unix.EpollEvent{Events: reg.epollMask(), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, ev); err != nil {
		log.Printf("[poller] epoll mod fd=%d: %v", fd, err)
	}
}

func opsFromEpoll(events uint32) api.OpCollection {
	var ops api.OpCollection
	if events&unix.EPOLLERR != 0 {
		ops |= api.OpExcept
	}
	if events&(unix.EPOLLRDHUP|unix.EPOLLHUP) != 0 {
		ops |= api.OpRemoteClose
	}
	if events&unix.EPOLLIN != 0 {
		ops |= api.OpRead
	}
	if events&unix.EPOLLOUT != 0 {
		ops |= api.OpWrite
	}
	return ops
}
