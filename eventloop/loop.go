// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package eventloop is the event loop adapter: a thin capability surface
// (timers, TCP, DNS resolution, signal handling) consumed by the peer and
// client packages. Every callback it delivers runs serially on the single
// goroutine that calls Loop.Run, giving the rest of the core the
// single-threaded cooperative scheduling model it's written against.
// Actual blocking I/O (socket reads, DNS lookups, OS timers) happens on
// background goroutines that do nothing but post a completed-event
// closure back onto the loop; they never touch shared state directly.
package eventloop

import (
	"sync"
)

// Loop serializes events from timers, TCP handles, and DNS requests onto
// one goroutine. It is the only place in this program where more than one
// goroutine is ever running concurrently; everywhere else is single
// threaded by construction.
type Loop struct {
	events chan func()

	mu      sync.Mutex
	handles map[handle]struct{}
	closed  bool
}

// handle is satisfied by every resource the loop tracks for Walk/shutdown
// purposes: timers, TCP handles, DNS requests.
type handle interface {
	closing() bool
}

// New returns a Loop ready to Run. queueDepth bounds how many pending
// posted events may queue up before a poster blocks; background
// goroutines (timer fires, socket reads) block on a full queue rather
// than drop events, so a very small queueDepth just adds backpressure,
// never event loss.
func New(queueDepth int) *Loop {
	if queueDepth <= 0 {
		queueDepth = 256
	}
	return &Loop{
		events:  make(chan func(), queueDepth),
		handles: make(map[handle]struct{}),
	}
}

// Post enqueues fn to run on the loop goroutine. Safe to call from any
// goroutine, including from within a running fn (posting a follow-up
// event).
func (l *Loop) Post(fn func()) {
	l.events <- fn
}

// Run drains posted events on the calling goroutine until Stop is
// called. It returns once the event channel is closed and drained.
func (l *Loop) Run() {
	for fn := range l.events {
		fn()
	}
}

// Stop closes the event channel, causing Run to return once any
// already-queued events have been processed. It does not itself close
// any handles; callers are expected to have walked and closed every live
// handle first (see Walk).
func (l *Loop) Stop() {
	close(l.events)
}

func (l *Loop) track(h handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handles[h] = struct{}{}
}

func (l *Loop) untrack(h handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.handles, h)
}

// Walk invokes fn once for every handle currently tracked by the loop:
// every timer, TCP handle, and DNS request that hasn't finished closing.
// It is intended only for final teardown.
func (l *Loop) Walk(fn func(h interface{})) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for h := range l.handles {
		fn(h)
	}
}
