// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/btcspv/spvnode/chaincfg/chainhash"
)

// MsgGetBlocks implements the Message interface and requests an inv message
// carrying block hashes after the last locator hash the peer recognizes.
// This node never follows up a getblocks reply (it only downloads
// headers); the message type is kept for completeness and for reply
// compatibility with peers that send it to us, which we simply drop.
type MsgGetBlocks struct {
	locatorRequest
}

// Command returns the protocol command string for the message.
func (m *MsgGetBlocks) Command() string { return CmdGetBlocks }

// AddBlockLocatorHash appends a hash to the locator list.
func (m *MsgGetBlocks) AddBlockLocatorHash(hash chainhash.Hash) error {
	return m.addBlockLocatorHash(hash)
}

// Encode serializes m's payload fields to w.
func (m *MsgGetBlocks) Encode(w io.Writer, pver uint32) error { return m.encode(w) }

// Decode deserializes m's payload fields from r.
func (m *MsgGetBlocks) Decode(r io.Reader, pver uint32) error { return m.decode(r) }
