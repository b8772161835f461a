// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import "github.com/btcspv/spvnode/wire"

// Notifier is the Client's side of the contract a Connection talks
// through. A Connection holds a non-owning reference to its Notifier; the
// Client outlives every Connection it owns.
type Notifier interface {
	// NotifyAddr reports addresses learned from an addr message.
	// anyNew tells the Connection whether at least one of them was new
	// to the Client's known-peer set, which governs whether the
	// Connection cancels its pending getaddr timer.
	NotifyAddr(c *Connection, addrs []wire.NetAddress) (anyNew bool)

	// NotifyHeaders reports a headers message's contents, driving chain
	// sync.
	NotifyHeaders(c *Connection, headers []*wire.BlockHeader)

	// NotifyReady reports that the Connection has completed its
	// handshake and is available for the Client to issue requests
	// through.
	NotifyReady(c *Connection)

	// NotifyNoAddr reports that no addr reply arrived within the
	// getaddr timeout; the Client may try a different seed peer.
	NotifyNoAddr(c *Connection)

	// NotifyError reports a protocol violation or transient network
	// error. The Client removes the Connection and attempts
	// replacement.
	NotifyError(c *Connection, err error)

	// NotifyClosed reports that the Connection's socket has fully
	// closed, after NotifyError or on a peer-initiated close/EOF with
	// no error.
	NotifyClosed(c *Connection)
}
