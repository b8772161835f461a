// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"bytes"
	"math/rand"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/btcspv/spvnode/eventloop"
	"github.com/btcspv/spvnode/wire"
)

// fakeNotifier records every callback it receives behind a mutex, so
// tests can poll without racing the loop goroutine.
type fakeNotifier struct {
	mu       sync.Mutex
	ready    int
	noAddr   int
	errs     []error
	closed   int
	headers  [][]*wire.BlockHeader
	addrSeen [][]wire.NetAddress
	addrNew  bool
}

func (f *fakeNotifier) NotifyAddr(c *Connection, addrs []wire.NetAddress) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addrSeen = append(f.addrSeen, addrs)
	return f.addrNew
}

func (f *fakeNotifier) NotifyHeaders(c *Connection, headers []*wire.BlockHeader) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.headers = append(f.headers, headers)
}

func (f *fakeNotifier) NotifyReady(c *Connection) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ready++
}

func (f *fakeNotifier) NotifyNoAddr(c *Connection) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.noAddr++
}

func (f *fakeNotifier) NotifyError(c *Connection, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = append(f.errs, err)
}

func (f *fakeNotifier) NotifyClosed(c *Connection) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
}

func (f *fakeNotifier) readyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ready
}

func (f *fakeNotifier) errCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.errs)
}

func (f *fakeNotifier) closedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// remoteFixture runs a bare TCP listener standing in for a peer, giving
// the test direct control over what bytes come back and when.
type remoteFixture struct {
	ln   net.Listener
	conn net.Conn
}

func newRemoteFixture(t *testing.T) *remoteFixture {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return &remoteFixture{ln: ln}
}

func (r *remoteFixture) accept(t *testing.T) {
	conn, err := r.ln.Accept()
	require.NoError(t, err)
	r.conn = conn
}

func (r *remoteFixture) send(t *testing.T, msg wire.Message, net_ wire.BitcoinNet) {
	var buf bytes.Buffer
	require.NoError(t, wire.WriteMessage(&buf, msg, wire.ProtocolVersion, net_))
	_, err := r.conn.Write(buf.Bytes())
	require.NoError(t, err)
}

func (r *remoteFixture) readMessage(t *testing.T, net_ wire.BitcoinNet) wire.Message {
	r.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	hdr := make([]byte, wire.MessageHeaderSize)
	_, err := readFull(r.conn, hdr)
	require.NoError(t, err)

	// Decode the rest using the accumulator-based decoder: read payload
	// length out of the header's bytes 16..20, little-endian.
	plen := int(hdr[16]) | int(hdr[17])<<8 | int(hdr[18])<<16 | int(hdr[19])<<24
	payload := make([]byte, plen)
	if plen > 0 {
		_, err = readFull(r.conn, payload)
		require.NoError(t, err)
	}

	full := append(append([]byte{}, hdr...), payload...)
	msg, _, err := wire.DecodeMessage(full, wire.ProtocolVersion, net_)
	require.NoError(t, err)
	return msg
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func newTestConfig() Config {
	return Config{
		ProtocolVersion: wire.ProtocolVersion,
		UserAgent:       "/spvnode-test:0.1/",
		Services:        0,
		StartHeight:     0,
		Net:             wire.TestNet3,
		Nonce:           1234,
		Rand:            rand.New(rand.NewSource(1)),
	}
}

func TestHandshakeSequence(t *testing.T) {
	r := newRemoteFixture(t)
	defer r.ln.Close()

	loop := eventloop.New(8)
	go loop.Run()
	defer loop.Stop()

	notifier := &fakeNotifier{}

	var conn *Connection
	loop.Post(func() {
		conn = Dial(loop, addrFromListener(r.ln), newTestConfig(), notifier)
	})

	r.accept(t)

	versionMsg := r.readMessage(t, wire.TestNet3)
	require.Equal(t, wire.CmdVersion, versionMsg.Command())

	r.send(t, wire.NewMsgVersion(wire.NewAddress(nil, 0), wire.NewAddress(nil, 0), 99, "/remote:0.1/", 0, time.Now().Unix()), wire.TestNet3)
	r.send(t, &wire.MsgVerAck{}, wire.TestNet3)

	verack := r.readMessage(t, wire.TestNet3)
	require.Equal(t, wire.CmdVerAck, verack.Command())

	getaddr := r.readMessage(t, wire.TestNet3)
	require.Equal(t, wire.CmdGetAddr, getaddr.Command())

	require.Eventually(t, func() bool {
		return notifier.readyCount() == 1
	}, time.Second, 10*time.Millisecond)

	loop.Post(func() {
		require.Equal(t, StateConnected, conn.State())
	})
}

func addrFromListener(ln net.Listener) wire.Address {
	tcpAddr := ln.Addr().(*net.TCPAddr)
	return wire.NewAddress(tcpAddr.IP, uint16(tcpAddr.Port))
}

func TestRejectsHeadersBeforeHandshake(t *testing.T) {
	r := newRemoteFixture(t)
	defer r.ln.Close()

	loop := eventloop.New(8)
	go loop.Run()
	defer loop.Stop()

	notifier := &fakeNotifier{}
	loop.Post(func() {
		Dial(loop, addrFromListener(r.ln), newTestConfig(), notifier)
	})

	r.accept(t)
	r.readMessage(t, wire.TestNet3) // our version

	// Send headers before we've even sent verack: a clear protocol
	// violation in NeedVersion.
	r.send(t, &wire.MsgHeaders{}, wire.TestNet3)

	require.Eventually(t, func() bool {
		return notifier.errCount() >= 1 && notifier.closedCount() >= 1
	}, time.Second, 10*time.Millisecond)
}

func TestPongNonceMismatchDisconnects(t *testing.T) {
	r := newRemoteFixture(t)
	defer r.ln.Close()

	loop := eventloop.New(8)
	go loop.Run()
	defer loop.Stop()

	notifier := &fakeNotifier{}
	var conn *Connection
	loop.Post(func() {
		conn = Dial(loop, addrFromListener(r.ln), newTestConfig(), notifier)
	})

	r.accept(t)
	r.readMessage(t, wire.TestNet3) // version
	r.send(t, wire.NewMsgVersion(wire.NewAddress(nil, 0), wire.NewAddress(nil, 0), 99, "/remote:0.1/", 0, time.Now().Unix()), wire.TestNet3)
	r.send(t, &wire.MsgVerAck{}, wire.TestNet3)
	r.readMessage(t, wire.TestNet3) // our verack
	r.readMessage(t, wire.TestNet3) // our getaddr

	require.Eventually(t, func() bool { return notifier.readyCount() == 1 }, time.Second, 10*time.Millisecond)

	nonceCh := make(chan uint64, 1)
	loop.Post(func() {
		conn.sendPing()
		nonceCh <- conn.pingNonce
	})

	ping := r.readMessage(t, wire.TestNet3)
	pingMsg, ok := ping.(*wire.MsgPing)
	require.True(t, ok)
	_ = pingMsg

	nonce := <-nonceCh
	r.send(t, &wire.MsgPong{Nonce: nonce + 1}, wire.TestNet3)

	require.Eventually(t, func() bool {
		return notifier.errCount() >= 1 && notifier.closedCount() >= 1
	}, time.Second, 10*time.Millisecond)
}
