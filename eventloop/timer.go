// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package eventloop

import (
	"sync"
	"time"
)

// Timer fires once per expiry on the owning Loop. A period of 0 makes it
// one-shot; a nonzero period makes it repeat until Stop.
type Timer struct {
	loop *Loop
	onFire func()

	mu      sync.Mutex
	timer   *time.Timer
	ticker  *time.Ticker
	stopCh  chan struct{}
	stopped bool
}

// StartTimer creates and arms a Timer that invokes onFire on the loop
// goroutine after delay, and every period thereafter if period > 0.
func (l *Loop) StartTimer(delay, period time.Duration, onFire func()) *Timer {
	t := &Timer{loop: l, onFire: onFire, stopCh: make(chan struct{})}
	l.track(t)

	if period <= 0 {
		t.timer = time.AfterFunc(delay, func() {
			l.Post(func() {
				t.mu.Lock()
				stopped := t.stopped
				t.mu.Unlock()
				if !stopped {
					onFire()
				}
			})
		})
		return t
	}

	go func() {
		first := time.NewTimer(delay)
		select {
		case <-first.C:
		case <-t.stopCh:
			first.Stop()
			return
		}
		l.Post(func() {
			t.mu.Lock()
			stopped := t.stopped
			t.mu.Unlock()
			if !stopped {
				onFire()
			}
		})

		ticker := time.NewTicker(period)
		t.mu.Lock()
		t.ticker = ticker
		t.mu.Unlock()
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				l.Post(func() {
					t.mu.Lock()
					stopped := t.stopped
					t.mu.Unlock()
					if !stopped {
						onFire()
					}
				})
			case <-t.stopCh:
				return
			}
		}
	}()

	return t
}

// Stop cancels future firings. It is idempotent.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
	}
	if t.ticker != nil {
		t.ticker.Stop()
	}
	close(t.stopCh)
	t.loop.untrack(t)
}

// Close is an alias for Stop; a Timer has no resources beyond the
// goroutine and OS timer Stop already releases.
func (t *Timer) Close() {
	t.Stop()
}

func (t *Timer) closing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
