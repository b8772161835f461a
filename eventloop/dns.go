// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package eventloop

import (
	"context"
	"net"
	"sync"
)

// DNSRequest is an in-flight hostname resolution.
type DNSRequest struct {
	loop   *Loop
	cancel context.CancelFunc

	mu   sync.Mutex
	done bool
}

// DNSCallbacks is delivered exactly once: either OnResolved with the
// addresses found, or OnError.
type DNSCallbacks struct {
	OnResolved func(ips []net.IP)
	OnError    func(err error)
}

// Resolve issues a non-blocking DNS lookup for hostname. The lookup runs
// on a background goroutine; only its outcome is posted to the loop.
func (l *Loop) Resolve(hostname string, cb DNSCallbacks) *DNSRequest {
	ctx, cancel := context.WithCancel(context.Background())
	req := &DNSRequest{loop: l, cancel: cancel}
	l.track(req)

	go func() {
		ips, err := net.DefaultResolver.LookupIP(ctx, "ip", hostname)
		l.Post(func() {
			req.mu.Lock()
			done := req.done
			req.mu.Unlock()
			if done {
				return
			}
			if err != nil {
				if cb.OnError != nil {
					cb.OnError(err)
				}
				return
			}
			if cb.OnResolved != nil {
				cb.OnResolved(ips)
			}
		})
	}()

	return req
}

// Cancel aborts the outstanding lookup. Idempotent; a lookup that has
// already completed is unaffected.
func (r *DNSRequest) Cancel() {
	r.mu.Lock()
	if r.done {
		r.mu.Unlock()
		return
	}
	r.done = true
	r.mu.Unlock()
	r.cancel()
	r.loop.untrack(r)
}

func (r *DNSRequest) closing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}
