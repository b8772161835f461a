// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package eventloop

import (
	"net"
	"sync"
	"time"

	"github.com/btcsuite/go-socks/socks"
)

// TCPEvent is the tagged union of events a TCPHandle can deliver.
type TCPEvent int

// Supported TCP events.
const (
	TCPConnect TCPEvent = iota
	TCPData
	TCPEnd
	TCPClose
	TCPError
)

// TCPCallbacks is the set of handlers a TCPHandle's owner supplies. Every
// callback runs on the owning Loop's goroutine.
type TCPCallbacks struct {
	OnConnect func()
	OnData    func(b []byte)
	OnEnd     func()
	OnClose   func()
	OnError   func(err error)
}

// TCPHandle wraps one TCP connection, translating its blocking read loop
// into events posted on the Loop.
type TCPHandle struct {
	loop *Loop
	cb   TCPCallbacks

	mu        sync.Mutex
	conn      net.Conn
	closed    bool
	isClosing bool
}

// ProxyConfig optionally routes TCP connects through a SOCKS proxy (Tor
// or otherwise) instead of dialing directly.
type ProxyConfig struct {
	Addr     string
	Username string
	Password string
}

// DialTCP opens a TCP connection to addr, dialing directly or through
// proxy if non-nil, and returns a handle that will deliver OnConnect (or
// OnError) once the attempt resolves. The dial itself runs on a
// background goroutine; only the resulting event is posted to the loop.
func (l *Loop) DialTCP(addr string, timeout time.Duration, proxy *ProxyConfig, cb TCPCallbacks) *TCPHandle {
	h := &TCPHandle{loop: l, cb: cb}
	l.track(h)

	go func() {
		conn, err := dial(addr, timeout, proxy)
		l.Post(func() {
			h.mu.Lock()
			if h.isClosing {
				h.mu.Unlock()
				if conn != nil {
					conn.Close()
				}
				return
			}
			if err != nil {
				h.mu.Unlock()
				if h.cb.OnError != nil {
					h.cb.OnError(err)
				}
				return
			}
			h.conn = conn
			h.mu.Unlock()
			if h.cb.OnConnect != nil {
				h.cb.OnConnect()
			}
			h.startReading()
		})
	}()

	return h
}

func dial(addr string, timeout time.Duration, proxy *ProxyConfig) (net.Conn, error) {
	if proxy == nil {
		return net.DialTimeout("tcp", addr, timeout)
	}
	dialer := &socks.Proxy{
		Addr:     proxy.Addr,
		Username: proxy.Username,
		Password: proxy.Password,
	}
	return dialer.Dial("tcp", addr)
}

// startReading launches the background read loop. Every chunk read, EOF,
// or error is posted back onto the loop as the matching callback.
func (h *TCPHandle) startReading() {
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := h.conn.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				h.loop.Post(func() {
					if h.cb.OnData != nil && !h.isClosed() {
						h.cb.OnData(chunk)
					}
				})
			}
			if err != nil {
				h.loop.Post(func() {
					if h.isClosed() {
						return
					}
					if err.Error() == "EOF" {
						if h.cb.OnEnd != nil {
							h.cb.OnEnd()
						}
						return
					}
					if h.cb.OnError != nil {
						h.cb.OnError(err)
					}
				})
				return
			}
		}
	}()
}

// Write sends b on the underlying socket. Bitcoin message writes are
// small and infrequent enough on an SPV client that a direct blocking
// write here (rather than a queued async write) never threatens the
// loop's latency budget.
func (h *TCPHandle) Write(b []byte) (int, error) {
	h.mu.Lock()
	conn := h.conn
	h.mu.Unlock()
	if conn == nil {
		return 0, net.ErrClosed
	}
	return conn.Write(b)
}

func (h *TCPHandle) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Closing reports whether Close has been called but the underlying
// socket teardown may not have fully completed.
func (h *TCPHandle) Closing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.isClosing
}

// Close tears down the connection. Idempotent.
func (h *TCPHandle) Close() {
	h.mu.Lock()
	if h.isClosing {
		h.mu.Unlock()
		return
	}
	h.isClosing = true
	conn := h.conn
	h.mu.Unlock()

	if conn != nil {
		conn.Close()
	}

	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	h.loop.untrack(h)

	if h.cb.OnClose != nil {
		h.cb.OnClose()
	}
}

func (h *TCPHandle) closing() bool {
	return h.Closing()
}
