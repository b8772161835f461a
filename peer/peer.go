// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package peer implements the per-peer connection state machine: a single
// TCP socket, the version/verack handshake, heartbeat ping/pong and
// getaddr timers, and the dispatch of decoded messages to handlers. A
// Connection never touches the chain store directly; everything it learns
// is reported to its owner through the Notifier interface.
package peer

import (
	"time"

	"github.com/btcspv/spvnode/wire"
)

// State is a Connection's position in the handshake state machine.
type State int

// Connection states.
const (
	StateNeedVersion State = iota
	StateNeedVerack
	StateConnected
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateNeedVersion:
		return "need-version"
	case StateNeedVerack:
		return "need-verack"
	case StateConnected:
		return "connected"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Info is what's known about the remote end of a Connection. An Info
// with only Addr populated is legal (a not-yet-dialed or not-yet-shaken
// peer); the rest fills in once the handshake completes.
type Info struct {
	Addr            wire.Address
	ProtocolVersion uint32
	Services        wire.ServiceFlag
	UserAgent       string
	Nonce           uint64
	StartHeight     int32
	LastSeen        time.Time
}

// Handshake timeouts and heartbeat intervals, per the spec's concrete
// values.
const (
	handshakeTimeout = 5 * time.Second
	getAddrTimeout   = 5 * time.Second
	pingInterval     = 60 * time.Second
	pongTimeout      = 5 * time.Second
)
