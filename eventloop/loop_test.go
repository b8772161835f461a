// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package eventloop

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimerFiresOnLoopGoroutine(t *testing.T) {
	l := New(8)
	go l.Run()
	defer l.Stop()

	loopGoroutine := make(chan struct{})
	fired := make(chan struct{})

	l.Post(func() { close(loopGoroutine) })
	<-loopGoroutine

	var timer *Timer
	l.Post(func() {
		timer = l.StartTimer(10*time.Millisecond, 0, func() {
			close(fired)
		})
	})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
	_ = timer
}

func TestRepeatingTimerFiresMultipleTimes(t *testing.T) {
	l := New(8)
	go l.Run()
	defer l.Stop()

	count := make(chan struct{}, 8)
	var timer *Timer
	l.Post(func() {
		timer = l.StartTimer(5*time.Millisecond, 5*time.Millisecond, func() {
			select {
			case count <- struct{}{}:
			default:
			}
		})
	})

	for i := 0; i < 3; i++ {
		select {
		case <-count:
		case <-time.After(time.Second):
			t.Fatal("repeating timer did not fire enough times")
		}
	}
	l.Post(func() { timer.Stop() })
}

func TestTCPHandleLoopback(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		conn.Write([]byte("hello"))
		conn.Close()
	}()

	l := New(8)
	go l.Run()
	defer l.Stop()

	data := make(chan []byte, 1)
	closedCh := make(chan struct{})

	l.Post(func() {
		l.DialTCP(ln.Addr().String(), time.Second, nil, TCPCallbacks{
			OnData: func(b []byte) {
				data <- append([]byte{}, b...)
			},
			OnEnd: func() {
				close(closedCh)
			},
		})
	})

	select {
	case got := <-data:
		require.Equal(t, "hello", string(got))
	case <-time.After(2 * time.Second):
		t.Fatal("never received data")
	}

	select {
	case <-closedCh:
	case <-time.After(2 * time.Second):
		t.Fatal("never observed end of stream")
	}
}

func TestResolveLocalhost(t *testing.T) {
	l := New(8)
	go l.Run()
	defer l.Stop()

	resolved := make(chan []net.IP, 1)
	l.Post(func() {
		l.Resolve("localhost", DNSCallbacks{
			OnResolved: func(ips []net.IP) { resolved <- ips },
			OnError:    func(err error) { resolved <- nil },
		})
	})

	select {
	case ips := <-resolved:
		require.NotEmpty(t, ips)
	case <-time.After(5 * time.Second):
		t.Fatal("resolve never completed")
	}
}
