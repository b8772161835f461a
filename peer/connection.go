// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"bytes"
	"math/rand"
	"time"

	"github.com/btcspv/spvnode/eventloop"
	"github.com/btcspv/spvnode/wire"
)

// Config carries the fields a Connection needs to perform its own side
// of the handshake and the parameters governing its wire encoding. It is
// supplied by the Client, which is the component that owns "our" Peer
// identity (per the design note against implicit global state, nothing
// here is read from process-wide mutable state).
type Config struct {
	ProtocolVersion uint32
	UserAgent       string
	Services        wire.ServiceFlag
	StartHeight     int32
	Net             wire.BitcoinNet
	Nonce           uint64
	Proxy           *eventloop.ProxyConfig
	Rand            *rand.Rand
}

// Connection owns one TCP socket bound to one remote address, and
// translates socket bytes into typed messages via the wire codec.
type Connection struct {
	loop     *eventloop.Loop
	handle   *eventloop.TCPHandle
	cfg      Config
	notifier Notifier

	state   State
	readBuf []byte
	peer    Info

	handshakeTimer *eventloop.Timer
	getAddrTimer   *eventloop.Timer
	pingTimer      *eventloop.Timer
	pongTimer      *eventloop.Timer

	pingNonce uint64
}

// Dial opens a connection to addr and returns a Connection that will
// drive the handshake once the TCP connect completes. A failed connect
// is reported through NotifyError alone, with no NotifyClosed after it;
// the Client's NotifyError handling removes and replaces the connection.
func Dial(loop *eventloop.Loop, addr wire.Address, cfg Config, notifier Notifier) *Connection {
	c := &Connection{
		loop:     loop,
		cfg:      cfg,
		notifier: notifier,
		state:    StateNeedVersion,
		peer:     Info{Addr: addr},
	}

	c.handle = loop.DialTCP(addr.String(), time.Second, cfg.Proxy, eventloop.TCPCallbacks{
		OnConnect: c.onConnect,
		OnData:    c.onData,
		OnEnd:     c.onEnd,
		OnClose:   c.onClose,
		OnError:   c.onError,
	})

	return c
}

// State returns the Connection's current handshake state.
func (c *Connection) State() State { return c.state }

// PeerInfo returns what's known about the remote peer.
func (c *Connection) PeerInfo() Info { return c.peer }

func (c *Connection) onConnect() {
	c.sendVersion()
	c.handshakeTimer = c.loop.StartTimer(handshakeTimeout, 0, c.onHandshakeTimeout)
}

func (c *Connection) sendVersion() {
	msg := wire.NewMsgVersion(
		c.peer.Addr,
		wire.NewAddress(nil, 0), // addr_from: unknown, the conventional zero value.
		c.cfg.Nonce,
		c.cfg.UserAgent,
		c.cfg.StartHeight,
		time.Now().Unix(),
	)
	msg.ProtocolVersion = c.cfg.ProtocolVersion
	msg.Services = c.cfg.Services
	c.send(msg)
}

func (c *Connection) onHandshakeTimeout() {
	c.fail(protocolErrorf("handshake did not complete within %s", handshakeTimeout))
}

// onData is invoked once per chunk read off the socket; it feeds the
// accumulator and decodes as many complete frames as are available.
func (c *Connection) onData(b []byte) {
	if c.state == StateClosing {
		return
	}
	c.readBuf = append(c.readBuf, b...)

	for {
		msg, consumed, err := wire.DecodeMessage(c.readBuf, c.cfg.ProtocolVersion, c.cfg.Net)
		if consumed > 0 {
			c.readBuf = c.readBuf[consumed:]
		}
		if err != nil {
			if err == wire.ErrIncomplete {
				return
			}
			// Unknown command: the frame was still fully consumed, so
			// log and keep reading. Any other decode failure (bad
			// magic, bad checksum, oversized or malformed payload) is a
			// protocol violation that tears the connection down.
			if _, unknown := err.(*wire.UnknownMessageError); unknown {
				log.Debugf("%s: dropping message: %v", c.peer.Addr, err)
				continue
			}
			c.fail(protocolErrorf("%v", err))
			return
		}
		c.dispatch(msg)
		if c.state == StateClosing {
			return
		}
	}
}

func (c *Connection) onEnd() {
	c.notifier.NotifyClosed(c)
}

func (c *Connection) onError(err error) {
	c.notifier.NotifyError(c, err)
}

func (c *Connection) onClose() {
	c.notifier.NotifyClosed(c)
}

// dispatch routes a decoded message to its handler, enforcing the
// handshake ordering invariant: no command other than version/verack is
// accepted before Connected.
func (c *Connection) dispatch(msg wire.Message) {
	switch c.state {
	case StateNeedVersion:
		v, ok := msg.(*wire.MsgVersion)
		if !ok {
			c.fail(protocolErrorf("expected version, got %q", msg.Command()))
			return
		}
		c.handleVersion(v)
		return

	case StateNeedVerack:
		if _, ok := msg.(*wire.MsgVerAck); !ok {
			c.fail(protocolErrorf("expected verack, got %q", msg.Command()))
			return
		}
		c.handleVerAck()
		return
	}

	switch m := msg.(type) {
	case *wire.MsgAddr:
		c.handleAddr(m)
	case *wire.MsgHeaders:
		c.handleHeaders(m)
	case *wire.MsgPing:
		c.handlePing(m)
	case *wire.MsgPong:
		c.handlePong(m)
	case *wire.MsgReject:
		log.Errorf("%s: reject: %s %s", c.peer.Addr, m.Message, m.Reason)
	case *wire.MsgGetAddr, *wire.MsgGetBlocks, *wire.MsgGetHeaders,
		*wire.MsgMemPool, *wire.MsgSendHeaders, *wire.MsgInv:
		log.Debugf("%s: dropping %s (serving data is out of scope)", c.peer.Addr, msg.Command())
	default:
		log.Debugf("%s: dropping unhandled %s", c.peer.Addr, msg.Command())
	}
}

func (c *Connection) handleVersion(v *wire.MsgVersion) {
	c.peer.ProtocolVersion = v.ProtocolVersion
	c.peer.Services = v.Services
	c.peer.UserAgent = v.UserAgent
	c.peer.Nonce = v.Nonce
	c.peer.StartHeight = v.StartHeight
	c.peer.LastSeen = time.Now()

	c.send(&wire.MsgVerAck{})
	c.state = StateNeedVerack
}

func (c *Connection) handleVerAck() {
	c.handshakeTimer.Stop()
	c.state = StateConnected

	c.send(&wire.MsgGetAddr{})
	c.getAddrTimer = c.loop.StartTimer(getAddrTimeout, 0, c.onGetAddrTimeout)

	c.pingTimer = c.loop.StartTimer(pingInterval, pingInterval, c.sendPing)

	c.notifier.NotifyReady(c)
}

func (c *Connection) onGetAddrTimeout() {
	c.getAddrTimer = nil
	c.notifier.NotifyNoAddr(c)
}

func (c *Connection) sendPing() {
	c.pingNonce = c.cfg.Rand.Uint64()
	c.send(&wire.MsgPing{Nonce: c.pingNonce})
	c.pongTimer = c.loop.StartTimer(pongTimeout, 0, c.onPongTimeout)
}

func (c *Connection) onPongTimeout() {
	c.fail(protocolErrorf("no pong within %s", pongTimeout))
}

func (c *Connection) handlePing(m *wire.MsgPing) {
	c.send(&wire.MsgPong{Nonce: m.Nonce})
}

func (c *Connection) handlePong(m *wire.MsgPong) {
	if m.Nonce != c.pingNonce {
		c.fail(protocolErrorf("pong nonce mismatch: want %x, got %x", c.pingNonce, m.Nonce))
		return
	}
	if c.pongTimer != nil {
		c.pongTimer.Stop()
		c.pongTimer = nil
	}
}

func (c *Connection) handleAddr(m *wire.MsgAddr) {
	anyNew := c.notifier.NotifyAddr(c, m.AddrList)
	if anyNew && c.getAddrTimer != nil {
		c.getAddrTimer.Stop()
		c.getAddrTimer = nil
	}
}

func (c *Connection) handleHeaders(m *wire.MsgHeaders) {
	c.notifier.NotifyHeaders(c, m.Headers)
}

// SendMessage writes an already-constructed message on this connection.
// Exported for the Client to issue getheaders and any future outbound
// request without Connection needing to know the Client's sync logic.
func (c *Connection) SendMessage(msg wire.Message) {
	c.send(msg)
}

func (c *Connection) send(msg wire.Message) {
	var buf bytes.Buffer
	if err := wire.WriteMessage(&buf, msg, c.cfg.ProtocolVersion, c.cfg.Net); err != nil {
		log.Errorf("%s: encode %s: %v", c.peer.Addr, msg.Command(), err)
		return
	}
	if _, err := c.handle.Write(buf.Bytes()); err != nil {
		c.fail(err)
	}
}

// fail tears the connection down after reporting err to the Notifier.
// Used for both protocol violations and write-path transient errors.
func (c *Connection) fail(err error) {
	c.notifier.NotifyError(c, err)
	c.Shutdown()
}

// Shutdown cancels every owned timer and closes the socket. Idempotent.
func (c *Connection) Shutdown() {
	if c.state == StateClosing {
		return
	}
	c.state = StateClosing

	if c.handshakeTimer != nil {
		c.handshakeTimer.Stop()
	}
	if c.getAddrTimer != nil {
		c.getAddrTimer.Stop()
	}
	if c.pingTimer != nil {
		c.pingTimer.Stop()
	}
	if c.pongTimer != nil {
		c.pongTimer.Stop()
	}
	c.handle.Close()
}
